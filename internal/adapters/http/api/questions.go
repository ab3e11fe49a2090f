package api

import (
	"context"
	"net/http"

	"github.com/okian/babellm/internal/domain/types"
	"github.com/okian/babellm/pkg/logger"
)

// QuestionDependencies lists the start screen questions.
type QuestionDependencies interface {
	Questions(ctx context.Context) ([]types.QuestionEntry, error)
}

// QuestionsHandler handles question listing.
type QuestionsHandler struct {
	deps QuestionDependencies
	log  logger.Logger
}

// NewQuestionsHandler creates a new questions handler.
func NewQuestionsHandler(deps QuestionDependencies, log logger.Logger) *QuestionsHandler {
	return &QuestionsHandler{deps: deps, log: log}
}

// HandleList handles GET /questions requests.
func (h *QuestionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	qs, err := h.deps.Questions(r.Context())
	if err != nil {
		writeFailure(r.Context(), w, h.log, "api.list_questions", err)
		return
	}
	writeJSON(w, http.StatusOK, qs)
}
