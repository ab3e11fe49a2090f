package repository

import "errors"

// Sentinel kinds for round store errors.
var (
	ErrNotFound = errors.New("round not found")
	ErrExists   = errors.New("round already exists")
)
