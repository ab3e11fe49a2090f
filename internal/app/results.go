package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/babellm/internal/adapters/mq/queue"
	"github.com/okian/babellm/internal/adapters/session"
	"github.com/okian/babellm/internal/domain/model"
	"github.com/okian/babellm/internal/domain/ranking"
	"github.com/okian/babellm/internal/domain/share"
	"github.com/okian/babellm/internal/domain/types"
	"github.com/okian/babellm/pkg/logger"
	"github.com/okian/babellm/pkg/metrics"
)

// Results reads the handoff for round id, scores it and compares the
// submitted order with the truth order. Items come back in truth order.
func (s *Service) Results(ctx context.Context, id string) (types.Results, error) {
	if err := s.ready(); err != nil {
		return types.Results{}, err
	}
	return s.results(ctx, id)
}

func (s *Service) results(ctx context.Context, id string) (types.Results, error) {
	r, err := s.rounds.Get(ctx, id)
	if err != nil {
		return types.Results{}, err
	}

	h, err := session.Read(ctx, s.sessions.Provider(id))
	if err != nil {
		s.logger.Debug(ctx, "no handoff for round", logger.String("round_id", id), logger.Error(err))
		return types.Results{}, err
	}

	submitted := make(model.Ordering, len(h.Results))
	byID := make(map[string]types.HandoffResult, len(h.Results))
	for i, res := range h.Results {
		submitted[i] = res.LanguageCode
		byID[res.LanguageCode] = res
	}

	scored := r.Scored
	fresh := len(scored) == 0
	if fresh {
		if scored, err = s.analyze(ctx, id, h.QuestionID, submitted); err != nil {
			return types.Results{}, err
		}
	}

	cmp := s.comparator.Compare(submitted, scored)
	if fresh && cmp.IsExactMatch {
		metrics.RecordExactMatch()
	}

	scores := make(map[string]float64, len(scored))
	for _, sc := range scored {
		scores[sc.ID] = sc.Score
	}

	positions := ranking.Positions(submitted, cmp.TruthOrder)
	items := make([]types.ResultItem, len(positions))
	for i, p := range positions {
		res := byID[p.ID]
		items[i] = types.ResultItem{
			LanguageCode:      p.ID,
			LanguageName:      s.languageName(p.ID),
			FlagCode:          res.FlagCode,
			Text:              res.Text,
			Score:             scores[p.ID],
			PredictedPosition: p.Predicted,
			ActualPosition:    p.Actual,
			Correct:           p.Correct(),
		}
	}

	return types.Results{
		RoundID:        id,
		QuestionID:     h.QuestionID,
		Question:       h.Question,
		SubmittedOrder: []string(submitted),
		TruthOrder:     []string(cmp.TruthOrder),
		IsExactMatch:   cmp.IsExactMatch,
		Items:          items,
	}, nil
}

// analyze scores the submitted languages once per round and caches the
// outcome on the round.
func (s *Service) analyze(ctx context.Context, roundID, questionID string, codes model.Ordering) ([]model.ScoredID, error) {
	scored, err := s.analyzer.Analyze(ctx, questionID, codes)
	if err != nil {
		return nil, err
	}
	r, err := s.rounds.Update(ctx, roundID, func(r *model.Round) error {
		if len(r.Scored) == 0 {
			r.Scored = scored
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Scored, nil
}

// ShareText builds the share and invite texts. Only exact matches can share.
func (s *Service) ShareText(ctx context.Context, id string) (types.ShareText, error) {
	if err := s.ready(); err != nil {
		return types.ShareText{}, err
	}
	res, err := s.results(ctx, id)
	if err != nil {
		return types.ShareText{}, err
	}
	if !res.IsExactMatch {
		return types.ShareText{}, ErrNotPerfect
	}

	entries := make([]share.Entry, len(res.Items))
	texts := make([]string, len(res.Items))
	for i, it := range res.Items {
		entries[i] = share.Entry{Name: it.LanguageName, Text: it.Text, Score: it.Score}
		texts[i] = it.Text
	}
	metrics.RecordShareText()
	return types.ShareText{
		Text:   share.Build(res.Question, entries),
		Invite: share.BuildInvite(texts),
	}, nil
}

// ShareImage renders the share card on the worker pool and waits for the
// PNG. A full queue fails fast with queue.ErrBackpressure.
func (s *Service) ShareImage(ctx context.Context, id string) ([]byte, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	res, err := s.results(ctx, id)
	if err != nil {
		return nil, err
	}
	if !res.IsExactMatch {
		return nil, ErrNotPerfect
	}

	card := share.Card{Question: res.Question, Rows: make([]share.Row, len(res.Items))}
	for i, it := range res.Items {
		card.Rows[i] = share.Row{
			FlagCode: it.FlagCode,
			Text:     it.Text,
			Fallback: it.LanguageName,
			Score:    it.Score,
		}
	}

	done := make(chan queue.Result, 1)
	job := queue.Job{
		ID:       s.newID(),
		Card:     card,
		Done:     func(r queue.Result) { done <- r },
		Enqueued: time.Now(),
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		metrics.RecordShareImage("rejected")
		return nil, err
	}

	select {
	case r := <-done:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.PNG, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("share image: %w", ctx.Err())
	}
}
