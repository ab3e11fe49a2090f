// Package session stores the translate-to-results handoff: the submitted
// results, the question text and the question id, keyed per round.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/babellm/internal/domain/types"
	"github.com/okian/babellm/pkg/logger"
	"github.com/okian/babellm/pkg/metrics"
)

// Handoff keys.
const (
	KeyResults    = "translationResults"
	KeyQuestion   = "translationQuestion"
	KeyQuestionID = "questionId"
)

// DefaultTTL bounds how long a handoff survives.
const DefaultTTL = time.Hour

// Backend persists string values grouped by session id.
type Backend interface {
	// SetAll writes values for a session, replacing previous ones.
	SetAll(ctx context.Context, sessionID string, values map[string]string, ttl time.Duration) error
	// Get returns one value; a missing value is ErrStorageRead. Any other
	// error is a backend failure.
	Get(ctx context.Context, sessionID, key string) (string, error)
	Delete(ctx context.Context, sessionID string) error
	Close() error
}

// Provider reads handoff values for one session. Missing values are
// reported as ErrStorageRead, as with Backend.Get.
type Provider interface {
	Get(ctx context.Context, key string) (string, error)
}

// Handoff is the decoded handoff.
type Handoff struct {
	Results    []types.HandoffResult
	Question   string
	QuestionID string
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the handoff lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Store encodes handoffs onto a Backend.
type Store struct {
	backend Backend
	ttl     time.Duration
	log     logger.Logger
}

// NewStore wraps backend.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{backend: backend, ttl: DefaultTTL, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save writes all three handoff keys for sessionID.
func (s *Store) Save(ctx context.Context, sessionID string, h Handoff) error {
	results, err := json.Marshal(h.Results)
	if err != nil {
		metrics.RecordHandoff("save", "error")
		return fmt.Errorf("%w: encode results: %v", ErrStorageWrite, err)
	}
	values := map[string]string{
		KeyResults:    string(results),
		KeyQuestion:   h.Question,
		KeyQuestionID: h.QuestionID,
	}
	if err := s.backend.SetAll(ctx, sessionID, values, s.ttl); err != nil {
		metrics.RecordHandoff("save", "error")
		s.log.Error(ctx, "handoff save failed", logger.String("session_id", sessionID), logger.Error(err))
		return err
	}
	metrics.RecordHandoff("save", "ok")
	return nil
}

// Provider returns a reader bound to sessionID.
func (s *Store) Provider(sessionID string) Provider {
	return sessionProvider{backend: s.backend, id: sessionID}
}

// Delete drops every key of sessionID.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	return s.backend.Delete(ctx, sessionID)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

type sessionProvider struct {
	backend Backend
	id      string
}

func (p sessionProvider) Get(ctx context.Context, key string) (string, error) {
	return p.backend.Get(ctx, p.id, key)
}

// Read decodes a handoff through p. Missing or malformed values yield
// ErrStorageRead; backend failures are returned with their cause.
func Read(ctx context.Context, p Provider) (Handoff, error) {
	var h Handoff

	raw, err := p.Get(ctx, KeyResults)
	if err != nil {
		return h, getFailed(KeyResults, err)
	}
	if err := json.Unmarshal([]byte(raw), &h.Results); err != nil {
		return h, readFailed(KeyResults, err)
	}
	if len(h.Results) == 0 {
		return h, readFailed(KeyResults, errors.New("no results"))
	}
	if h.Question, err = p.Get(ctx, KeyQuestion); err != nil {
		return h, getFailed(KeyQuestion, err)
	}
	if h.QuestionID, err = p.Get(ctx, KeyQuestionID); err != nil {
		return h, getFailed(KeyQuestionID, err)
	}
	metrics.RecordHandoff("read", "ok")
	return h, nil
}

// getFailed passes backend failures through and keeps absent values as
// ErrStorageRead.
func getFailed(key string, err error) error {
	if errors.Is(err, ErrStorageRead) {
		metrics.RecordHandoff("read", "error")
		return err
	}
	metrics.RecordHandoff("read", "backend_error")
	return fmt.Errorf("read %s: %w", key, err)
}

func readFailed(key string, err error) error {
	metrics.RecordHandoff("read", "error")
	if errors.Is(err, ErrStorageRead) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrStorageRead, key, err)
}
