package share

import "errors"

// ErrImageEncode is returned when the share card cannot be encoded.
var ErrImageEncode = errors.New("share image encode failed")
