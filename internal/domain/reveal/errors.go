package reveal

import "errors"

// Sentinel kinds for reveal session errors.
var (
	ErrAlreadyStarted = errors.New("reveal session already started")
	ErrTornDown       = errors.New("reveal session torn down")
	ErrMachine        = errors.New("reveal state machine build failed")
)
