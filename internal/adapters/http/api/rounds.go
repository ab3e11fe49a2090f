package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/babellm/internal/domain/types"
	"github.com/okian/babellm/pkg/logger"
)

// RoundDependencies drives the translate flow.
type RoundDependencies interface {
	CreateRound(ctx context.Context, questionID string) (types.Round, error)
	Round(ctx context.Context, id string) (types.Round, error)
	Move(ctx context.Context, id string, req types.MoveRequest) (types.Round, error)
	Submit(ctx context.Context, id string) (types.SubmitResponse, error)
}

// createRoundRequest mirrors the OpenAPI schema for POST /rounds.
type createRoundRequest struct {
	QuestionID string `json:"question_id"`
}

func (c createRoundRequest) validate() error {
	if strings.TrimSpace(c.QuestionID) == "" {
		return errors.New("missing question_id")
	}
	return nil
}

func validateMove(m types.MoveRequest) error {
	switch {
	case m.From == nil && strings.TrimSpace(m.ID) == "":
		return errors.New("one of from or id is required")
	case m.From != nil && m.ID != "":
		return errors.New("from and id are mutually exclusive")
	}
	return nil
}

// RoundsHandler handles round creation, reordering and submission.
type RoundsHandler struct {
	deps RoundDependencies
	log  logger.Logger
}

// NewRoundsHandler creates a new rounds handler.
func NewRoundsHandler(deps RoundDependencies, log logger.Logger) *RoundsHandler {
	return &RoundsHandler{deps: deps, log: log}
}

// HandleCreate handles POST /rounds requests.
func (h *RoundsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_round"
	var req createRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(r.Context(), w, h.log, op, badRequest(op, err))
		return
	}
	if err := req.validate(); err != nil {
		writeFailure(r.Context(), w, h.log, op, badRequest(op, err))
		return
	}
	round, err := h.deps.CreateRound(r.Context(), req.QuestionID)
	if err != nil {
		writeFailure(r.Context(), w, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, round)
}

// HandleGet handles GET /rounds/{id} requests.
func (h *RoundsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	round, err := h.deps.Round(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(r.Context(), w, h.log, "api.get_round", err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

// HandleMove handles POST /rounds/{id}/move requests.
func (h *RoundsHandler) HandleMove(w http.ResponseWriter, r *http.Request) {
	const op = "api.move"
	var req types.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(r.Context(), w, h.log, op, badRequest(op, err))
		return
	}
	if err := validateMove(req); err != nil {
		writeFailure(r.Context(), w, h.log, op, badRequest(op, err))
		return
	}
	round, err := h.deps.Move(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeFailure(r.Context(), w, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

// HandleSubmit handles POST /rounds/{id}/submit requests.
func (h *RoundsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ack, err := h.deps.Submit(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(r.Context(), w, h.log, "api.submit", err)
		return
	}
	writeJSON(w, http.StatusAccepted, ack)
}
