package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/babellm/internal/adapters/session"
	"github.com/okian/babellm/internal/domain/model"
	"github.com/okian/babellm/internal/domain/reorder"
	"github.com/okian/babellm/internal/domain/types"
	"github.com/okian/babellm/pkg/logger"
	"github.com/okian/babellm/pkg/metrics"
)

// Handoff placeholders: the translate flow ranks by submitted position.
const (
	handoffPositionStep = 0.15
	handoffScoreStep    = 1.5
)

// Questions lists every question in fixture order.
func (s *Service) Questions(_ context.Context) ([]types.QuestionEntry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	qs := s.fixtures.Questions()
	out := make([]types.QuestionEntry, len(qs))
	for i, q := range qs {
		out[i] = types.QuestionEntry{ID: q.ID, Text: q.TextEn}
	}
	return out, nil
}

// CreateRound picks languages for questionID and stores a new round in the
// order they were picked.
func (s *Service) CreateRound(ctx context.Context, questionID string) (types.Round, error) {
	if err := s.ready(); err != nil {
		return types.Round{}, err
	}

	q, err := s.fixtures.Question(questionID)
	if err != nil {
		return types.Round{}, err
	}

	s.rngMu.Lock()
	langs, err := s.fixtures.PickLanguages(questionID, s.itemsPerRound, s.rng)
	s.rngMu.Unlock()
	if err != nil {
		return types.Round{}, err
	}

	items := make([]model.Item, 0, len(langs))
	for _, lang := range langs {
		tr, err := s.fixtures.Translation(questionID, lang.Code)
		if err != nil {
			return types.Round{}, err
		}
		items = append(items, model.Item{ID: lang.Code, Text: tr.Text, FlagCode: lang.CountryCode})
	}

	r := model.Round{
		ID:         s.newID(),
		QuestionID: q.ID,
		Question:   q.TextEn,
		Items:      items,
		Order:      model.IDs(items),
	}
	if err := s.rounds.Create(ctx, r); err != nil {
		return types.Round{}, err
	}
	metrics.RecordRoundCreated()
	s.logger.Debug(ctx, "round created",
		logger.String("round_id", r.ID),
		logger.String("question_id", q.ID),
		logger.Strings("languages", r.Order))

	return s.roundView(r), nil
}

// Round returns the current state of a round.
func (s *Service) Round(ctx context.Context, id string) (types.Round, error) {
	if err := s.ready(); err != nil {
		return types.Round{}, err
	}
	r, err := s.rounds.Get(ctx, id)
	if err != nil {
		return types.Round{}, err
	}
	return s.roundView(r), nil
}

// Move applies one drag gesture. The ordering is replaced wholesale; an
// invalid index or unknown id leaves it untouched.
func (s *Service) Move(ctx context.Context, id string, req types.MoveRequest) (types.Round, error) {
	if err := s.ready(); err != nil {
		return types.Round{}, err
	}

	r, err := s.rounds.Update(ctx, id, func(r *model.Round) error {
		if r.Submitted {
			return ErrAlreadySubmitted
		}
		var (
			next model.Ordering
			err  error
		)
		if req.From != nil {
			next, err = reorder.MoveItem(r.Order, *req.From, req.To)
		} else {
			next, err = reorder.MoveID(r.Order, req.ID, req.To)
		}
		if err != nil {
			return err
		}
		r.Order = next
		return nil
	})
	switch {
	case err == nil:
		metrics.RecordMove("ok")
	case errors.Is(err, reorder.ErrInvalidIndex), errors.Is(err, reorder.ErrUnknownID):
		metrics.RecordMove("rejected")
		return types.Round{}, err
	default:
		metrics.RecordMove("error")
		return types.Round{}, err
	}
	return s.roundView(r), nil
}

// Submit freezes the ordering and writes the handoff the results flow reads.
// A round can be submitted once.
func (s *Service) Submit(ctx context.Context, id string) (types.SubmitResponse, error) {
	if err := s.ready(); err != nil {
		return types.SubmitResponse{}, err
	}

	if !s.guard.Claim(ctx, id) {
		metrics.RecordSubmission("duplicate")
		return types.SubmitResponse{}, ErrAlreadySubmitted
	}

	r, err := s.rounds.Update(ctx, id, func(r *model.Round) error {
		if r.Submitted {
			return ErrAlreadySubmitted
		}
		r.Submitted = true
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrAlreadySubmitted) {
			s.guard.Release(ctx, id)
		}
		metrics.RecordSubmission("rejected")
		return types.SubmitResponse{}, err
	}

	if err := s.sessions.Save(ctx, r.ID, handoff(r)); err != nil {
		// Leave the round editable so the player can retry.
		if _, uerr := s.rounds.Update(ctx, id, func(r *model.Round) error {
			r.Submitted = false
			return nil
		}); uerr != nil {
			s.logger.Warn(ctx, "submission rollback failed", logger.String("round_id", id), logger.Error(uerr))
		}
		s.guard.Release(ctx, id)
		metrics.RecordSubmission("error")
		metrics.RecordErrorByComponent("service", "handoff_save")
		return types.SubmitResponse{}, fmt.Errorf("save handoff: %w", err)
	}

	metrics.RecordSubmission("ok")
	s.logger.Debug(ctx, "round submitted",
		logger.String("round_id", r.ID),
		logger.Strings("order", r.Order))
	return types.SubmitResponse{RoundID: r.ID, Status: "submitted"}, nil
}

// handoff encodes the submitted order the way the translate flow always has:
// each result carries a descending placeholder position and score.
func handoff(r model.Round) session.Handoff { //nolint:gocritic // hugeParam
	results := make([]types.HandoffResult, 0, len(r.Order))
	for idx, id := range r.Order {
		it, _ := r.Item(id)
		results = append(results, types.HandoffResult{
			LanguageCode: it.ID,
			Text:         it.Text,
			Position:     1 - float64(idx)*handoffPositionStep,
			Score:        model.MaxScore - float64(idx)*handoffScoreStep,
			FlagCode:     it.FlagCode,
		})
	}
	return session.Handoff{Results: results, Question: r.Question, QuestionID: r.QuestionID}
}

func (s *Service) roundView(r model.Round) types.Round { //nolint:gocritic // hugeParam
	items := make([]types.RoundItem, 0, len(r.Order))
	for _, id := range r.Order {
		it, _ := r.Item(id)
		items = append(items, types.RoundItem{
			LanguageCode: it.ID,
			LanguageName: s.languageName(it.ID),
			FlagCode:     it.FlagCode,
			Text:         it.Text,
		})
	}
	return types.Round{
		RoundID:    r.ID,
		QuestionID: r.QuestionID,
		Question:   r.Question,
		Items:      items,
		Order:      []string(r.Order.Clone()),
		Submitted:  r.Submitted,
	}
}

func (s *Service) languageName(code string) string {
	lang, err := s.fixtures.Language(code)
	if err != nil {
		return code
	}
	return lang.Name
}
