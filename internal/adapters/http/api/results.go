package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/babellm/internal/domain/types"
	"github.com/okian/babellm/pkg/logger"
)

// ResultDependencies drives the results flow.
type ResultDependencies interface {
	Results(ctx context.Context, id string) (types.Results, error)
	Reveal(ctx context.Context, id string) (RevealStream, error)
}

// ResultsHandler serves results and the reveal event stream.
type ResultsHandler struct {
	deps ResultDependencies
	log  logger.Logger
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps ResultDependencies, log logger.Logger) *ResultsHandler {
	return &ResultsHandler{deps: deps, log: log}
}

// HandleResults handles GET /rounds/{id}/results requests.
func (h *ResultsHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.Results(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(r.Context(), w, h.log, "api.results", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleReveal handles GET /rounds/{id}/reveal requests as server-sent
// events. The session is torn down when the client goes away.
func (h *ResultsHandler) HandleReveal(w http.ResponseWriter, r *http.Request) {
	const op = "api.reveal"
	ctx := r.Context()

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal_error", ErrStreamingUnsup)
		return
	}

	stream, err := h.deps.Reveal(ctx, r.PathValue("id"))
	if err != nil {
		writeFailure(ctx, w, h.log, op, err)
		return
	}
	defer stream.Close()

	// The stream outlives the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		ev, err := stream.Next(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				h.log.Warn(ctx, "reveal stream stopped", logger.Error(err))
			}
			return
		}
		if err := writeEvent(w, ev); err != nil {
			h.log.Debug(ctx, "reveal client gone", logger.Error(err))
			return
		}
		flusher.Flush()
	}
}

func writeEvent(w io.Writer, ev types.RevealEvent) error { //nolint:gocritic // hugeParam
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
	return err
}
