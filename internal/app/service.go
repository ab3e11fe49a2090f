// Package service wires the quiz together: fixtures, rounds, the session
// handoff, analysis, the reveal sequencer and share rendering. It implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/babellm/internal/adapters/fixtures"
	"github.com/okian/babellm/internal/adapters/mq/queue"
	"github.com/okian/babellm/internal/adapters/mq/worker"
	"github.com/okian/babellm/internal/adapters/repository"
	"github.com/okian/babellm/internal/adapters/session"
	"github.com/okian/babellm/internal/domain/analysis"
	"github.com/okian/babellm/internal/domain/ranking"
	"github.com/okian/babellm/internal/domain/reveal"
	"github.com/okian/babellm/internal/domain/share"
	"github.com/okian/babellm/internal/domain/submission"
	"github.com/okian/babellm/internal/domain/types"
	"github.com/okian/babellm/pkg/clock"
	"github.com/okian/babellm/pkg/logger"
	"github.com/okian/babellm/pkg/metrics"
)

// DefaultItemsPerRound is how many languages a round offers.
const DefaultItemsPerRound = 3

// Service implements the API dependencies for the quiz.
type Service struct {
	mu sync.RWMutex

	// Core components
	fixtures   *fixtures.Store
	rounds     *repository.MemoryStore
	sessions   *session.Store
	analyzer   *analysis.Analyzer
	comparator *ranking.Comparator
	guard      submission.Guard
	queue      *queue.InMemoryQueue
	pool       *worker.Pool
	renderer   *share.Renderer
	sched      clock.Scheduler

	// Configuration
	dataDir       string
	itemsPerRound int
	roundTTL      time.Duration
	backend       session.Backend
	backendName   string
	sessionTTL    time.Duration
	renderWorkers int
	renderQueue   int
	guardSize     int
	analysisMin   time.Duration
	analysisMax   time.Duration
	revealDelay   time.Duration
	revealAnim    time.Duration
	celebDelay    time.Duration
	celebDuration time.Duration
	burstInterval time.Duration
	seed          int64
	newID         func() string

	rngMu sync.Mutex
	rng   *rand.Rand

	activeReveals atomic.Int64

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithFixtures uses an already loaded fixture store.
func WithFixtures(store *fixtures.Store) Option {
	return func(s *Service) { s.fixtures = store }
}

// WithDataDir loads fixtures from dir instead of the embedded set.
func WithDataDir(dir string) Option {
	return func(s *Service) { s.dataDir = dir }
}

// WithItemsPerRound sets how many languages each round offers.
func WithItemsPerRound(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.itemsPerRound = n
		}
	}
}

// WithRoundTTL sets how long an idle round is kept.
func WithRoundTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.roundTTL = ttl
		}
	}
}

// WithSessionBackend stores handoffs in backend. name is reported in stats.
func WithSessionBackend(name string, backend session.Backend) Option {
	return func(s *Service) {
		if backend != nil {
			s.backend = backend
			s.backendName = name
		}
	}
}

// WithSessionTTL sets the handoff lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithScheduler drives reveal sessions from sched.
func WithScheduler(sched clock.Scheduler) Option {
	return func(s *Service) {
		if sched != nil {
			s.sched = sched
		}
	}
}

// WithRevealTiming sets the per-item reveal delay and bar animation length.
func WithRevealTiming(delay, animation time.Duration) Option {
	return func(s *Service) {
		if delay >= 0 && animation >= 0 {
			s.revealDelay = delay
			s.revealAnim = animation
		}
	}
}

// WithCelebration sets the confetti start delay, run length and burst interval.
func WithCelebration(delay, duration, interval time.Duration) Option {
	return func(s *Service) {
		if delay >= 0 && duration >= 0 && interval > 0 {
			s.celebDelay = delay
			s.celebDuration = duration
			s.burstInterval = interval
		}
	}
}

// WithAnalysisLatency sets the simulated analysis latency range.
func WithAnalysisLatency(minLatency, maxLatency time.Duration) Option {
	return func(s *Service) {
		if minLatency >= 0 && maxLatency >= minLatency {
			s.analysisMin = minLatency
			s.analysisMax = maxLatency
		}
	}
}

// WithRenderPool sets the share render worker count and queue capacity.
func WithRenderPool(workers, queueSize int) Option {
	return func(s *Service) {
		if workers > 0 {
			s.renderWorkers = workers
		}
		if queueSize > 0 {
			s.renderQueue = queueSize
		}
	}
}

// WithSubmissionGuardSize bounds the submitted-round set.
func WithSubmissionGuardSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.guardSize = size
		}
	}
}

// WithSeed makes language picks and confetti placement reproducible.
func WithSeed(seed int64) Option {
	return func(s *Service) { s.seed = seed }
}

// WithIDGenerator replaces uuid round ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		itemsPerRound: DefaultItemsPerRound,
		roundTTL:      time.Hour,
		backendName:   "memory",
		sessionTTL:    session.DefaultTTL,
		renderWorkers: runtime.NumCPU(),
		renderQueue:   64,
		guardSize:     50000,
		analysisMin:   300 * time.Millisecond,
		analysisMax:   800 * time.Millisecond,
		revealDelay:   reveal.DefaultDelay,
		revealAnim:    reveal.DefaultAnimationDuration,
		celebDelay:    reveal.DefaultCelebrationDelay,
		celebDuration: reveal.DefaultCelebrationDuration,
		burstInterval: reveal.DefaultBurstInterval,
		seed:          time.Now().UnixNano(),
		newID:         uuid.NewString,
		logger:        nil, // replaced when the service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	s.rng = rand.New(rand.NewSource(s.seed)) //nolint:gosec // language picks, not secrets
	return s
}

// Start loads fixtures and starts the service components. The render pool
// and the round sweeper run until ctx is done or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting quiz service...")

	if s.fixtures == nil {
		opts := []fixtures.Option{fixtures.WithLogger(s.logger.Named("fixtures"))}
		if s.dataDir != "" {
			opts = append(opts, fixtures.WithDir(s.dataDir))
		}
		store, err := fixtures.Load(ctx, opts...)
		if err != nil {
			return fmt.Errorf("load fixtures: %w", err)
		}
		s.fixtures = store
	}
	if s.sched == nil {
		s.sched = clock.NewReal()
	}
	if s.backend == nil {
		s.backend = session.NewMemoryBackend()
		s.backendName = "memory"
	}

	s.rounds = repository.NewMemoryStore(ctx, repository.WithTTL(s.roundTTL))
	s.sessions = session.NewStore(s.backend,
		session.WithTTL(s.sessionTTL),
		session.WithLogger(s.logger.Named("session")))
	s.analyzer = analysis.New(s.fixtures,
		analysis.WithLatencyRange(s.analysisMin, s.analysisMax),
		analysis.WithSeed(s.seed),
		analysis.WithLogger(s.logger.Named("analysis")))
	s.comparator = ranking.NewComparator(s.fixtures.LanguageOrder())
	s.guard = submission.NewMemoryGuard(submission.WithMaxSize(s.guardSize))
	s.renderer = share.NewRenderer()

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.renderQueue))
	s.pool = worker.NewPool(s.renderWorkers, s.queue, s.renderer,
		worker.WithPoolLogger(s.logger.Named("render")))
	s.pool.Start(ctx)
	metrics.UpdateRenderQueueCapacity(s.queue.Cap())

	s.started = true
	st := s.fixtures.Stats()
	s.logger.Info(ctx, "quiz service started",
		logger.Int("questions", st.Questions),
		logger.Int("languages", st.Languages),
		logger.Int("itemsPerRound", s.itemsPerRound),
		logger.Int("renderWorkers", s.pool.Size()),
		logger.String("sessionBackend", s.backendName),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping quiz service...")

	var firstErr error
	if err := s.pool.Shutdown(ctx); err != nil {
		firstErr = err
	}
	if err := s.rounds.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.sessions.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	s.started = false
	s.logger.Info(ctx, "quiz service stopped")
	return firstErr
}

// ready returns ErrNotStarted until Start has succeeded.
func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats(ctx context.Context) types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := types.Stats{
		Started:        s.started,
		ActiveReveals:  s.activeReveals.Load(),
		RenderQueueCap: s.renderQueue,
		RenderWorkers:  s.renderWorkers,
		SessionBackend: s.backendName,
	}
	if !s.started {
		return st
	}

	fx := s.fixtures.Stats()
	st.Languages = fx.Languages
	st.Questions = fx.Questions
	st.Translations = fx.Translations
	st.Scores = fx.Scores
	st.ActiveRounds = s.rounds.Count(ctx)
	st.SubmittedRounds = s.guard.Len()
	st.RenderQueueDepth = s.queue.Len(ctx)
	st.RenderQueueCap = s.queue.Cap()
	st.RenderWorkers = s.pool.Size()

	metrics.UpdateActiveRounds(st.ActiveRounds)
	metrics.UpdateRenderQueueSize(st.RenderQueueDepth)
	return st
}

func (s *Service) nextSeed() int64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Int63()
}
