// Package analysis simulates the model "thinking" about a round: it waits a
// random latency and then reads precomputed scores from the score table.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/babellm/internal/domain/model"
	"github.com/okian/babellm/pkg/logger"
	"github.com/okian/babellm/pkg/metrics"
)

// Defaults.
const (
	DefaultScore      = 5.0
	defaultMinLatency = 300 * time.Millisecond
	defaultMaxLatency = 800 * time.Millisecond
)

// ScoreSource looks up the stored score for a translation.
type ScoreSource interface {
	Score(questionID, languageCode string) (model.Score, error)
}

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithLatencyRange sets the simulated latency range. A zero range disables the wait.
func WithLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(a *Analyzer) {
		if minLatency >= 0 && maxLatency >= minLatency {
			a.minLatency = minLatency
			a.maxLatency = maxLatency
		}
	}
}

// WithSeed makes latency draws reproducible.
func WithSeed(seed int64) Option {
	return func(a *Analyzer) {
		a.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // latency jitter only
	}
}

// WithLogger sets the analyzer logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.log = l
		}
	}
}

// Analyzer returns scores for the languages of a round.
type Analyzer struct {
	source     ScoreSource
	minLatency time.Duration
	maxLatency time.Duration

	mu  sync.Mutex
	rng *rand.Rand

	log logger.Logger
}

// New creates an analyzer backed by source.
func New(source ScoreSource, opts ...Option) *Analyzer {
	a := &Analyzer{
		source:     source,
		minLatency: defaultMinLatency,
		maxLatency: defaultMaxLatency,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // latency jitter only
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze waits the simulated latency, honoring ctx, then returns one
// ScoredID per language code in input order. Languages without a stored
// score get DefaultScore.
func (a *Analyzer) Analyze(ctx context.Context, questionID string, codes []string) ([]model.ScoredID, error) {
	latency := a.latency()
	start := time.Now()

	if latency > 0 {
		timer := time.NewTimer(latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("analysis cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	out := make([]model.ScoredID, 0, len(codes))
	for _, code := range codes {
		score, err := a.source.Score(questionID, code)
		switch {
		case err == nil:
			out = append(out, model.ScoredID{ID: code, Score: score.Score})
		case errors.Is(err, model.ErrMissingFixture):
			a.log.Warn(ctx, "score missing, using default",
				logger.String("question_id", questionID),
				logger.String("language", code))
			out = append(out, model.ScoredID{ID: code, Score: DefaultScore})
		default:
			metrics.RecordErrorByComponent("analysis", "score_lookup")
			return nil, fmt.Errorf("score lookup for %s/%s: %w", questionID, code, err)
		}
	}

	metrics.RecordAnalysisLatency(float64(time.Since(start).Milliseconds()))
	return out, nil
}

func (a *Analyzer) latency() time.Duration {
	span := a.maxLatency - a.minLatency
	if span <= 0 {
		return a.minLatency
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.minLatency + time.Duration(a.rng.Int63n(int64(span)))
}
