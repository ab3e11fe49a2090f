// Package clock provides the suspension points used by timed UI sequences:
// one-shot delays and repeating frame callbacks.
package clock

import (
	"sync"
	"time"
)

// DefaultFrameInterval approximates a 60Hz display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

// CancelFunc stops a pending delay or frame subscription. It is safe to call
// more than once.
type CancelFunc func()

// Scheduler schedules callbacks against a clock.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time

	// After runs fn once, d after the call.
	After(d time.Duration, fn func()) CancelFunc

	// OnNextFrame runs fn on every frame until cancelled.
	OnNextFrame(fn func(now time.Time)) CancelFunc
}

// Real is a Scheduler backed by the wall clock.
type Real struct {
	frameInterval time.Duration
}

// Option applies a configuration option to Real.
type Option func(*Real)

// WithFrameInterval sets the interval between frame callbacks.
func WithFrameInterval(d time.Duration) Option {
	return func(r *Real) {
		if d > 0 {
			r.frameInterval = d
		}
	}
}

// NewReal creates a wall-clock scheduler.
func NewReal(opts ...Option) *Real {
	r := &Real{frameInterval: DefaultFrameInterval}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FrameInterval reports the configured frame interval.
func (r *Real) FrameInterval() time.Duration { return r.frameInterval }

// Now returns time.Now.
func (r *Real) Now() time.Time { return time.Now() }

// After wraps time.AfterFunc.
func (r *Real) After(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// OnNextFrame starts a ticker goroutine that calls fn each frame. A frame
// already in flight when the CancelFunc runs may still complete; callers that
// mutate shared state must check their own teardown flag.
func (r *Real) OnNextFrame(fn func(now time.Time)) CancelFunc {
	ticker := time.NewTicker(r.frameInterval)
	stop := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				select {
				case <-stop:
					return
				default:
				}
				fn(now)
			}
		}
	}()

	return func() {
		once.Do(func() { close(stop) })
	}
}
