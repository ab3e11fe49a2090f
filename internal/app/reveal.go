package service

import (
	"context"
	"io"
	"math/rand"
	"sync"

	"github.com/okian/babellm/internal/domain/reveal"
	"github.com/okian/babellm/internal/domain/types"
	"github.com/okian/babellm/pkg/clock"
	"github.com/okian/babellm/pkg/logger"
	"github.com/okian/babellm/pkg/metrics"
)

// RevealStream delivers the events of one reveal session in order. Events are
// queued without blocking the sequencer; Next hands them out one at a time.
// Close tears the session down.
type RevealStream struct {
	seq *reveal.Sequencer

	mu     sync.Mutex
	events []types.RevealEvent
	ended  bool
	closed bool
	finish clock.CancelFunc
	notify chan struct{}

	closeOnce sync.Once
	onClose   func(completed bool)
}

// Reveal starts a reveal session for round id. The first event carries the
// results; frames follow in truth order, then all_revealed, any celebration
// bursts and a final end event.
func (s *Service) Reveal(ctx context.Context, id string) (*RevealStream, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	res, err := s.results(ctx, id)
	if err != nil {
		return nil, err
	}

	st := &RevealStream{notify: make(chan struct{}, 1)}
	st.push(types.RevealEvent{Type: types.RevealEventStart, Results: &res})

	items := make([]reveal.Item, len(res.Items))
	for i, it := range res.Items {
		items[i] = reveal.Item{ID: it.LanguageCode, Score: it.Score}
	}

	confetti := reveal.NewConfetti(func(b types.Burst) {
		metrics.RecordCelebrationBurst()
		st.push(types.RevealEvent{Type: types.RevealEventBurst, Burst: &b})
	},
		reveal.WithCelebrationDelay(s.celebDelay),
		reveal.WithCelebrationDuration(s.celebDuration),
		reveal.WithBurstInterval(s.burstInterval),
		reveal.WithRand(rand.New(rand.NewSource(s.nextSeed()))), //nolint:gosec // cosmetic placement
	)

	exact := res.IsExactMatch
	tail := s.celebDelay + s.celebDuration
	seq, err := reveal.New(s.sched, items,
		reveal.WithDelay(s.revealDelay),
		reveal.WithAnimationDuration(s.revealAnim),
		reveal.WithCelebration(exact, confetti),
		reveal.WithLogger(s.logger.Named("reveal")),
		reveal.WithObserver(func(i int, state reveal.ItemState) {
			st.push(types.RevealEvent{Type: types.RevealEventFrame, Frame: frameOf(i, state)})
		}),
		reveal.WithOnAllRevealed(func() {
			metrics.RecordRevealSession("completed")
			st.push(types.RevealEvent{Type: types.RevealEventAllRevealed, IsExactMatch: exact})
			if !exact {
				st.end()
				return
			}
			st.setFinish(s.sched.After(tail, st.end))
		}),
	)
	if err != nil {
		return nil, err
	}
	st.seq = seq

	s.activeReveals.Add(1)
	metrics.AddActiveReveals(1)
	metrics.RecordRevealSession("started")
	st.onClose = func(completed bool) {
		s.activeReveals.Add(-1)
		metrics.AddActiveReveals(-1)
		if !completed {
			metrics.RecordRevealSession("torn_down")
		}
	}

	if err := seq.Start(); err != nil {
		st.Close()
		return nil, err
	}
	s.logger.Debug(ctx, "reveal session started",
		logger.String("round_id", id),
		logger.Int("items", len(items)),
		logger.Bool("exact_match", exact))
	return st, nil
}

func frameOf(i int, state reveal.ItemState) *types.RevealFrame { //nolint:gocritic // hugeParam
	f := &types.RevealFrame{
		Index:           i,
		LanguageCode:    state.ID,
		Revealed:        state.Revealed,
		Progress:        state.Progress,
		BarWidth:        state.BarWidth,
		FinalValueShown: state.FinalValueShown,
	}
	if state.FinalValueShown {
		f.Score = state.Score
	}
	return f
}

// Next blocks until the next event is available. It returns io.EOF after the
// end event has been delivered, and ErrStreamClosed once Close was called.
func (st *RevealStream) Next(ctx context.Context) (types.RevealEvent, error) {
	for {
		st.mu.Lock()
		switch {
		case st.closed:
			st.mu.Unlock()
			return types.RevealEvent{}, ErrStreamClosed
		case len(st.events) > 0:
			ev := st.events[0]
			st.events[0] = types.RevealEvent{}
			st.events = st.events[1:]
			st.mu.Unlock()
			return ev, nil
		case st.ended:
			st.mu.Unlock()
			return types.RevealEvent{}, io.EOF
		}
		st.mu.Unlock()

		select {
		case <-st.notify:
		case <-ctx.Done():
			return types.RevealEvent{}, ctx.Err()
		}
	}
}

// Done reports whether every event, including end, has been handed out.
func (st *RevealStream) Done() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.ended && len(st.events) == 0
}

// Close stops the sequencer and any celebration. It is safe to call more
// than once.
func (st *RevealStream) Close() {
	st.closeOnce.Do(func() {
		if st.seq != nil {
			st.seq.Stop()
		}

		st.mu.Lock()
		completed := st.ended
		st.closed = true
		finish := st.finish
		st.finish = nil
		st.mu.Unlock()

		if finish != nil {
			finish()
		}
		st.wake()
		if st.onClose != nil {
			st.onClose(completed)
		}
	})
}

func (st *RevealStream) push(ev types.RevealEvent) { //nolint:gocritic // hugeParam
	st.mu.Lock()
	if st.ended || st.closed {
		st.mu.Unlock()
		return
	}
	st.events = append(st.events, ev)
	st.mu.Unlock()
	st.wake()
}

func (st *RevealStream) end() {
	st.mu.Lock()
	if st.ended || st.closed {
		st.mu.Unlock()
		return
	}
	st.events = append(st.events, types.RevealEvent{Type: types.RevealEventEnd})
	st.ended = true
	st.finish = nil
	st.mu.Unlock()
	st.wake()
}

func (st *RevealStream) setFinish(cancel clock.CancelFunc) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.ended || st.closed {
		cancel()
		return
	}
	st.finish = cancel
}

func (st *RevealStream) wake() {
	select {
	case st.notify <- struct{}{}:
	default:
	}
}
