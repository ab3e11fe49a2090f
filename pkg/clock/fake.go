package clock

import (
	"sync"
	"time"
)

// Fake is a manually advanced Scheduler for tests. Callbacks run on the
// goroutine calling Advance, in due-time order; ties run in scheduling order.
type Fake struct {
	mu            sync.Mutex
	now           time.Time
	frameInterval time.Duration
	seq           uint64
	entries       []*fakeEntry
}

type fakeEntry struct {
	due       time.Time
	seq       uint64
	once      func()
	frame     func(time.Time)
	cancelled bool
}

// NewFake creates a fake scheduler starting at start. A non-positive frame
// interval falls back to DefaultFrameInterval.
func NewFake(start time.Time, frameInterval time.Duration) *Fake {
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}
	return &Fake{now: start, frameInterval: frameInterval}
}

// Now returns the fake time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// After schedules fn at Now()+d.
func (f *Fake) After(d time.Duration, fn func()) CancelFunc {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.add(&fakeEntry{due: f.now.Add(d), once: fn})
}

// OnNextFrame schedules fn every frame interval, starting one interval from now.
func (f *Fake) OnNextFrame(fn func(now time.Time)) CancelFunc {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.add(&fakeEntry{due: f.now.Add(f.frameInterval), frame: fn})
}

func (f *Fake) add(e *fakeEntry) CancelFunc {
	f.seq++
	e.seq = f.seq
	f.entries = append(f.entries, e)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		e.cancelled = true
	}
}

// Advance moves the clock forward by d, firing every callback that falls due.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		next := f.nextDue(target)
		if next == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		f.now = next.due
		now := f.now
		if next.frame != nil {
			f.seq++
			next.seq = f.seq
			next.due = next.due.Add(f.frameInterval)
		} else {
			next.cancelled = true
		}
		f.mu.Unlock()

		if next.frame != nil {
			next.frame(now)
		} else {
			next.once()
		}
	}
}

// nextDue returns the earliest live entry due at or before target and
// compacts cancelled entries. Must be called with f.mu held.
func (f *Fake) nextDue(target time.Time) *fakeEntry {
	live := f.entries[:0]
	var best *fakeEntry
	for _, e := range f.entries {
		if e.cancelled {
			continue
		}
		live = append(live, e)
		if e.due.After(target) {
			continue
		}
		if best == nil || e.due.Before(best.due) || (e.due.Equal(best.due) && e.seq < best.seq) {
			best = e
		}
	}
	for i := len(live); i < len(f.entries); i++ {
		f.entries[i] = nil
	}
	f.entries = live
	return best
}

// Pending reports how many delays and frame subscriptions are still live.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.entries {
		if !e.cancelled {
			n++
		}
	}
	return n
}
