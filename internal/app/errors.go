package service

import "errors"

// Sentinel error kinds for the service.
var (
	ErrNotStarted       = errors.New("service not started")
	ErrAlreadySubmitted = errors.New("round already submitted")
	ErrNotPerfect       = errors.New("round is not an exact match")
	ErrStreamClosed     = errors.New("reveal stream closed")
)
