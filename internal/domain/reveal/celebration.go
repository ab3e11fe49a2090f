package reveal

import (
	"math/rand"
	"sync"
	"time"

	"github.com/okian/babellm/internal/domain/types"
	"github.com/okian/babellm/pkg/clock"
)

// Confetti defaults.
const (
	DefaultCelebrationDelay    = 500 * time.Millisecond
	DefaultCelebrationDuration = 3000 * time.Millisecond
	DefaultBurstInterval       = 250 * time.Millisecond
	DefaultParticleCount       = 50
	DefaultStartVelocity       = 30
	DefaultSpread              = 360
)

// Celebrator plays a celebration on sched and returns its cancel func.
type Celebrator interface {
	Celebrate(sched clock.Scheduler) clock.CancelFunc
}

// NopCelebrator does nothing.
type NopCelebrator struct{}

// Celebrate implements Celebrator.
func (NopCelebrator) Celebrate(clock.Scheduler) clock.CancelFunc { return func() {} }

// ConfettiOption configures a Confetti.
type ConfettiOption func(*Confetti)

// WithCelebrationDelay sets the pause between completion and the first burst window.
func WithCelebrationDelay(d time.Duration) ConfettiOption {
	return func(c *Confetti) { c.delay = d }
}

// WithCelebrationDuration sets how long bursts keep firing.
func WithCelebrationDuration(d time.Duration) ConfettiOption {
	return func(c *Confetti) { c.duration = d }
}

// WithBurstInterval sets the gap between bursts.
func WithBurstInterval(d time.Duration) ConfettiOption {
	return func(c *Confetti) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithRand sets the random source used for burst origins.
func WithRand(r *rand.Rand) ConfettiOption {
	return func(c *Confetti) {
		if r != nil {
			c.rng = r
		}
	}
}

// Confetti emits randomly placed bursts at a fixed interval for a bounded time.
type Confetti struct {
	mu       sync.Mutex
	delay    time.Duration
	duration time.Duration
	interval time.Duration
	rng      *rand.Rand
	emit     func(types.Burst)
}

// NewConfetti returns a celebrator that passes every burst to emit.
func NewConfetti(emit func(types.Burst), opts ...ConfettiOption) *Confetti {
	c := &Confetti{
		delay:    DefaultCelebrationDelay,
		duration: DefaultCelebrationDuration,
		interval: DefaultBurstInterval,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		emit:     emit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Celebrate implements Celebrator.
func (c *Confetti) Celebrate(sched clock.Scheduler) clock.CancelFunc {
	run := &confettiRun{c: c, sched: sched}

	run.mu.Lock()
	run.pending = sched.After(c.delay, run.begin)
	run.mu.Unlock()

	return run.cancel
}

type confettiRun struct {
	mu        sync.Mutex
	c         *Confetti
	sched     clock.Scheduler
	end       time.Time
	pending   clock.CancelFunc
	cancelled bool
}

func (r *confettiRun) begin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelled {
		return
	}
	r.end = r.sched.Now().Add(r.c.duration)
	r.pending = r.sched.After(r.c.interval, r.tick)
}

func (r *confettiRun) tick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelled {
		return
	}

	if !r.sched.Now().Before(r.end) {
		r.pending = nil
		return
	}

	if r.c.emit != nil {
		r.c.emit(r.c.burst())
	}
	r.pending = r.sched.After(r.c.interval, r.tick)
}

func (r *confettiRun) cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelled {
		return
	}
	r.cancelled = true
	if r.pending != nil {
		r.pending()
		r.pending = nil
	}
}

func (c *Confetti) burst() types.Burst {
	c.mu.Lock()
	defer c.mu.Unlock()

	return types.Burst{
		ParticleCount: DefaultParticleCount,
		StartVelocity: DefaultStartVelocity,
		Spread:        DefaultSpread,
		OriginX:       0.1 + c.rng.Float64()*0.8,
		OriginY:       c.rng.Float64() - 0.2,
	}
}
