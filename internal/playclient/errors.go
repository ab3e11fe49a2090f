package playclient

import (
	"errors"
	"fmt"
)

var (
	// ErrClipboardWrite is returned when the share text cannot be copied.
	ErrClipboardWrite = errors.New("could not copy to the clipboard")
	// ErrUnexpectedStatus is returned for any non-success API response.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrNoQuestions is returned when the service lists no questions.
	ErrNoQuestions = errors.New("no questions available")
	// ErrStreamEnded is returned when the reveal stream stops before its end event.
	ErrStreamEnded = errors.New("reveal stream ended early")
)

// APIError carries the error body the service returns.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return ErrUnexpectedStatus }
