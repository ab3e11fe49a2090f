// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/babellm/internal/domain/types"
	"github.com/okian/babellm/pkg/logger"
)

// RevealStream yields reveal events until io.EOF. Close tears the session down.
type RevealStream interface {
	Next(ctx context.Context) (types.RevealEvent, error)
	Close()
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	QuestionDependencies
	RoundDependencies
	ResultDependencies
	ShareDependencies
	StatsProvider
}

// Server wires HTTP routes for the quiz API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	questionsHandler *QuestionsHandler
	roundsHandler    *RoundsHandler
	resultsHandler   *ResultsHandler
	shareHandler     *ShareHandler
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	log logger.Logger
}

// WithLogger sets the logger handed to every handler.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := serverOptions{log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(deps),
		questionsHandler: NewQuestionsHandler(deps, o.log),
		roundsHandler:    NewRoundsHandler(deps, o.log),
		resultsHandler:   NewResultsHandler(deps, o.log),
		shareHandler:     NewShareHandler(deps, o.log),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /questions", MetricsMiddleware(s.questionsHandler.HandleList, "questions"))

	mux.HandleFunc("POST /rounds", MetricsMiddleware(s.roundsHandler.HandleCreate, "rounds_create"))
	mux.HandleFunc("GET /rounds/{id}", MetricsMiddleware(s.roundsHandler.HandleGet, "rounds_get"))
	mux.HandleFunc("POST /rounds/{id}/move", MetricsMiddleware(s.roundsHandler.HandleMove, "rounds_move"))
	mux.HandleFunc("POST /rounds/{id}/submit", MetricsMiddleware(s.roundsHandler.HandleSubmit, "rounds_submit"))

	mux.HandleFunc("GET /rounds/{id}/results", MetricsMiddleware(s.resultsHandler.HandleResults, "results"))
	mux.HandleFunc("GET /rounds/{id}/reveal", MetricsMiddleware(s.resultsHandler.HandleReveal, "reveal"))

	mux.HandleFunc("GET /rounds/{id}/share", MetricsMiddleware(s.shareHandler.HandleText, "share_text"))
	mux.HandleFunc("GET /rounds/{id}/share.png", MetricsMiddleware(s.shareHandler.HandleImage, "share_image"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps a service error onto its status and error body.
func writeFailure(ctx context.Context, w http.ResponseWriter, log logger.Logger, op string, err error) {
	f := classify(err)
	if f.status >= statusInternalError {
		log.Error(ctx, "request failed", logger.String("op", op), logger.Error(err))
	} else {
		log.Debug(ctx, "request rejected", logger.String("op", op), logger.Int("status", f.status), logger.Error(err))
	}
	msg := f.message
	if msg == "" {
		msg = err.Error()
	}
	writeJSON(w, f.status, errorResponse{Code: f.code, Message: msg})
}
