package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/babellm/internal/adapters/mq/queue"
	"github.com/okian/babellm/internal/adapters/repository"
	"github.com/okian/babellm/internal/adapters/session"
	service "github.com/okian/babellm/internal/app"
	"github.com/okian/babellm/internal/domain/model"
	"github.com/okian/babellm/internal/domain/reorder"
	"github.com/okian/babellm/internal/domain/share"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest     = errors.New("bad request")
	ErrStreamingUnsup = errors.New("streaming unsupported")
)

// User-facing messages.
const (
	msgNoResults   = "No results found. Please try translating a question first."
	msgBackToStart = "The requested data is not available. Please go back to the start and pick a question."
	msgRetry       = "Could not generate the share image. Please try again."
)

type failure struct {
	status  int
	code    string
	message string
}

// classify maps error kinds to HTTP status codes. An empty message means
// the error text is shown.
func classify(err error) failure {
	switch {
	case errors.Is(err, session.ErrStorageRead):
		return failure{http.StatusNotFound, "no_results", msgNoResults}
	case errors.Is(err, model.ErrMissingFixture):
		return failure{http.StatusNotFound, "missing_fixture", msgBackToStart}
	case errors.Is(err, repository.ErrNotFound):
		return failure{http.StatusNotFound, "not_found", msgBackToStart}
	case errors.Is(err, reorder.ErrInvalidIndex):
		return failure{http.StatusBadRequest, "invalid_index", ""}
	case errors.Is(err, reorder.ErrUnknownID):
		return failure{http.StatusBadRequest, "unknown_id", ""}
	case errors.Is(err, ErrBadRequest):
		return failure{http.StatusBadRequest, "bad_request", ""}
	case errors.Is(err, service.ErrAlreadySubmitted):
		return failure{http.StatusConflict, "already_submitted", ""}
	case errors.Is(err, service.ErrNotPerfect):
		return failure{http.StatusConflict, "not_perfect", ""}
	case errors.Is(err, queue.ErrBackpressure):
		return failure{http.StatusTooManyRequests, "backpressure", ""}
	case errors.Is(err, share.ErrImageEncode):
		return failure{http.StatusInternalServerError, "image_encode", msgRetry}
	case errors.Is(err, queue.ErrClosed), errors.Is(err, service.ErrNotStarted):
		return failure{http.StatusServiceUnavailable, "unavailable", ""}
	case errors.Is(err, context.DeadlineExceeded):
		return failure{http.StatusGatewayTimeout, "timeout", ""}
	default:
		return failure{http.StatusInternalServerError, "internal_error", ""}
	}
}

func badRequest(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrBadRequest, err)
}
