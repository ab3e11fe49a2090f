// Package reveal drives the staggered results reveal: items appear one at a
// time, each bar animates from zero to its score, and a single completion
// signal fires once every final value is visible.
package reveal

import (
	"context"
	"sync"
	"time"

	"github.com/okian/babellm/internal/domain/model"
	"github.com/okian/babellm/pkg/clock"
	"github.com/okian/babellm/pkg/logger"
)

// Reveal timing defaults.
const (
	DefaultDelay             = 1500 * time.Millisecond
	DefaultAnimationDuration = 1500 * time.Millisecond
	// FullWidth is the bar width for a perfect score, in percent.
	FullWidth = 100.0
)

// Item is one entry to reveal, given in truth order.
type Item struct {
	ID    string
	Score float64
}

// ItemState is the visible state of one item.
type ItemState struct {
	ID              string
	Score           float64
	Revealed        bool
	Progress        float64
	TargetWidth     float64
	BarWidth        float64
	FinalValueShown bool
}

// Observer is told about every visible change. It runs with the sequencer
// lock held and must not call back into the Sequencer.
type Observer func(index int, state ItemState)

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithDelay sets the gap between consecutive item reveals.
func WithDelay(d time.Duration) Option {
	return func(s *Sequencer) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithAnimationDuration sets how long each bar takes to fill.
func WithAnimationDuration(d time.Duration) Option {
	return func(s *Sequencer) {
		if d >= 0 {
			s.duration = d
		}
	}
}

// WithObserver registers a change observer.
func WithObserver(o Observer) Option {
	return func(s *Sequencer) { s.observer = o }
}

// WithOnAllRevealed registers the completion callback. It fires at most once.
func WithOnAllRevealed(fn func()) Option {
	return func(s *Sequencer) { s.onAllRevealed = fn }
}

// WithCelebration starts c after completion when the round was an exact match.
func WithCelebration(exactMatch bool, c Celebrator) Option {
	return func(s *Sequencer) {
		s.exactMatch = exactMatch
		if c != nil {
			s.celebrator = c
		}
	}
}

// WithLogger sets the sequencer logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Sequencer) {
		if l != nil {
			s.log = l
		}
	}
}

// Sequencer owns one reveal session. All timers and frame callbacks it
// schedules are cancelled by Stop, and none mutate state afterwards.
type Sequencer struct {
	mu sync.Mutex

	sched    clock.Scheduler
	delay    time.Duration
	duration time.Duration
	log      logger.Logger

	machine *phaseMachine
	items   []ItemState
	current int
	shown   int
	startAt time.Time

	timers      []clock.CancelFunc
	frames      map[int]clock.CancelFunc
	celebration clock.CancelFunc

	observer      Observer
	onAllRevealed func()
	notified      bool
	exactMatch    bool
	celebrator    Celebrator
}

// New builds an idle sequencer over items in truth order.
func New(sched clock.Scheduler, items []Item, opts ...Option) (*Sequencer, error) {
	machine, err := newPhaseMachine(len(items))
	if err != nil {
		return nil, err
	}

	s := &Sequencer{
		sched:      sched,
		delay:      DefaultDelay,
		duration:   DefaultAnimationDuration,
		log:        logger.Nop(),
		machine:    machine,
		items:      make([]ItemState, len(items)),
		current:    -1,
		frames:     make(map[int]clock.CancelFunc),
		celebrator: NopCelebrator{},
	}
	for _, opt := range opts {
		opt(s)
	}

	for i, it := range items {
		s.items[i] = ItemState{
			ID:          it.ID,
			Score:       it.Score,
			TargetWidth: TargetWidth(it.Score),
		}
	}
	return s, nil
}

// TargetWidth maps a score to its full bar width.
func TargetWidth(score float64) float64 {
	if score <= 0 {
		return 0
	}
	if score >= model.MaxScore {
		return FullWidth
	}
	return score / model.MaxScore * FullWidth
}

// Start schedules item i to be revealed at i*delay. Each reveal schedules the
// next one, so items appear in truth order even when timers tie.
func (s *Sequencer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.machine.current() {
	case PhaseTornDown:
		return ErrTornDown
	case PhaseIdle:
	default:
		return ErrAlreadyStarted
	}

	s.machine.send(eventStart)
	s.log.Debug(context.Background(), "reveal started",
		logger.Int("items", len(s.items)),
		logger.Duration("delay", s.delay),
		logger.Duration("animation", s.duration))

	if len(s.items) == 0 {
		s.completeLocked()
		return nil
	}

	s.startAt = s.sched.Now()
	s.scheduleLocked(0)
	return nil
}

// scheduleLocked arms the reveal of item i at startAt + i*delay.
func (s *Sequencer) scheduleLocked(i int) {
	wait := s.startAt.Add(time.Duration(i) * s.delay).Sub(s.sched.Now())
	if wait < 0 {
		wait = 0
	}
	s.timers = append(s.timers, s.sched.After(wait, func() { s.reveal(i) }))
}

func (s *Sequencer) reveal(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine.current() != PhaseRevealing || s.items[i].Revealed {
		return
	}
	if i > 0 && !s.items[i-1].Revealed {
		return
	}

	s.items[i].Revealed = true
	s.current = i
	s.notifyLocked(i)
	if i+1 < len(s.items) {
		s.scheduleLocked(i + 1)
	}

	start := s.sched.Now()
	s.frames[i] = s.sched.OnNextFrame(func(now time.Time) { s.frame(i, start, now) })
}

func (s *Sequencer) frame(i int, start, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine.current() == PhaseTornDown || s.items[i].FinalValueShown {
		return
	}

	progress := 1.0
	if s.duration > 0 {
		progress = float64(now.Sub(start)) / float64(s.duration)
	}
	if progress > 1 {
		progress = 1
	}
	it := &s.items[i]
	if progress < it.Progress {
		return
	}
	it.Progress = progress
	it.BarWidth = it.TargetWidth * progress

	if progress >= 1 {
		it.FinalValueShown = true
		if cancel, ok := s.frames[i]; ok {
			cancel()
			delete(s.frames, i)
		}
		s.shown++
	}
	s.notifyLocked(i)

	if s.shown == len(s.items) {
		s.completeLocked()
	}
}

func (s *Sequencer) completeLocked() {
	if !s.machine.send(eventComplete) && s.machine.current() != PhaseAllRevealed {
		return
	}
	if s.notified {
		return
	}
	s.notified = true

	s.log.Debug(context.Background(), "reveal complete",
		logger.Int("items", len(s.items)),
		logger.Bool("exact_match", s.exactMatch))

	if s.onAllRevealed != nil {
		s.onAllRevealed()
	}
	if s.exactMatch {
		s.celebration = s.celebrator.Celebrate(s.sched)
	}
}

func (s *Sequencer) notifyLocked(i int) {
	if s.observer != nil {
		s.observer(i, s.items[i])
	}
}

// Stop tears the session down. Pending reveals, running animations and the
// celebration are cancelled. Calling Stop more than once is a no-op.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine.current() == PhaseTornDown {
		return
	}
	s.machine.send(eventTeardown)

	for _, cancel := range s.timers {
		cancel()
	}
	s.timers = nil
	for i, cancel := range s.frames {
		cancel()
		delete(s.frames, i)
	}
	if s.celebration != nil {
		s.celebration()
		s.celebration = nil
	}
}

// Phase returns the current session phase.
func (s *Sequencer) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.current()
}

// Current returns the most recently revealed index, or -1.
func (s *Sequencer) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Snapshot copies the per-item state.
func (s *Sequencer) Snapshot() []ItemState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ItemState, len(s.items))
	copy(out, s.items)
	return out
}

// AllRevealed reports whether every final value has been shown.
func (s *Sequencer) AllRevealed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notified
}
