package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/babellm/internal/domain/types"
	"github.com/okian/babellm/pkg/logger"
)

// ShareDependencies produces share text and the share card.
type ShareDependencies interface {
	ShareText(ctx context.Context, id string) (types.ShareText, error)
	ShareImage(ctx context.Context, id string) ([]byte, error)
}

// ShareHandler handles share requests.
type ShareHandler struct {
	deps ShareDependencies
	log  logger.Logger
}

// NewShareHandler creates a new share handler.
func NewShareHandler(deps ShareDependencies, log logger.Logger) *ShareHandler {
	return &ShareHandler{deps: deps, log: log}
}

// HandleText handles GET /rounds/{id}/share requests.
func (h *ShareHandler) HandleText(w http.ResponseWriter, r *http.Request) {
	st, err := h.deps.ShareText(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(r.Context(), w, h.log, "api.share_text", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleImage handles GET /rounds/{id}/share.png requests.
func (h *ShareHandler) HandleImage(w http.ResponseWriter, r *http.Request) {
	png, err := h.deps.ShareImage(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(r.Context(), w, h.log, "api.share_image", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Content-Disposition", `inline; filename="babellm-results.png"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
