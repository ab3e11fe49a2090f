package reorder

import "errors"

// Sentinel kinds for reorder errors.
var (
	ErrInvalidIndex   = errors.New("invalid index")
	ErrUnknownID      = errors.New("unknown item id")
	ErrNotPermutation = errors.New("ordering is not a permutation of the item set")
)
