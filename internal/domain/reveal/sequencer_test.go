package reveal

import (
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"

	"github.com/okian/babellm/internal/domain/types"
	"github.com/okian/babellm/pkg/clock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func threeItems() []Item {
	return []Item{{ID: "fr", Score: 9}, {ID: "es", Score: 7}, {ID: "de", Score: 5}}
}

type recorder struct {
	mu     sync.Mutex
	events []ItemState
}

func (r *recorder) observe(_ int, st ItemState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, st)
}

func TestSequencerTimeline(t *testing.T) {
	Convey("Given three items with a 500ms delay and a 1000ms animation", t, func() {
		fake := clock.NewFake(epoch, 10*time.Millisecond)
		completions := 0
		seq, err := New(fake, threeItems(),
			WithDelay(500*time.Millisecond),
			WithAnimationDuration(1000*time.Millisecond),
			WithOnAllRevealed(func() { completions++ }),
		)
		So(err, ShouldBeNil)
		So(seq.Phase(), ShouldEqual, PhaseIdle)
		So(seq.Current(), ShouldEqual, -1)

		So(seq.Start(), ShouldBeNil)
		So(seq.Phase(), ShouldEqual, PhaseRevealing)

		Convey("The first item is revealed immediately", func() {
			fake.Advance(0)
			snap := seq.Snapshot()
			So(snap[0].Revealed, ShouldBeTrue)
			So(snap[1].Revealed, ShouldBeFalse)
			So(seq.Current(), ShouldEqual, 0)
		})

		Convey("Items are revealed at multiples of the delay", func() {
			fake.Advance(499 * time.Millisecond)
			So(seq.Snapshot()[1].Revealed, ShouldBeFalse)
			fake.Advance(1 * time.Millisecond)
			So(seq.Snapshot()[1].Revealed, ShouldBeTrue)
			So(seq.Current(), ShouldEqual, 1)
			fake.Advance(500 * time.Millisecond)
			So(seq.Snapshot()[2].Revealed, ShouldBeTrue)
			So(seq.Current(), ShouldEqual, 2)
		})

		Convey("Bars grow in proportion to elapsed animation time", func() {
			fake.Advance(500 * time.Millisecond)
			first := seq.Snapshot()[0]
			So(first.TargetWidth, ShouldAlmostEqual, 90.0)
			So(first.Progress, ShouldAlmostEqual, 0.5)
			So(first.BarWidth, ShouldAlmostEqual, 45.0)
			So(first.FinalValueShown, ShouldBeFalse)

			fake.Advance(500 * time.Millisecond)
			first = seq.Snapshot()[0]
			So(first.Progress, ShouldEqual, 1.0)
			So(first.BarWidth, ShouldAlmostEqual, 90.0)
			So(first.FinalValueShown, ShouldBeTrue)
		})

		Convey("Completion fires once, after the last bar finishes", func() {
			fake.Advance(1990 * time.Millisecond)
			So(seq.AllRevealed(), ShouldBeFalse)
			So(completions, ShouldEqual, 0)

			fake.Advance(10 * time.Millisecond)
			So(seq.AllRevealed(), ShouldBeTrue)
			So(seq.Phase(), ShouldEqual, PhaseAllRevealed)
			So(completions, ShouldEqual, 1)

			fake.Advance(5 * time.Second)
			So(completions, ShouldEqual, 1)
			So(fake.Pending(), ShouldEqual, 0)

			for _, st := range seq.Snapshot() {
				So(st.FinalValueShown, ShouldBeTrue)
				So(st.BarWidth, ShouldAlmostEqual, st.TargetWidth)
			}
		})

		Convey("Start twice is rejected", func() {
			So(seq.Start(), ShouldEqual, ErrAlreadyStarted)
		})
	})
}

func TestSequencerObserver(t *testing.T) {
	Convey("Given an observer", t, func() {
		fake := clock.NewFake(epoch, 100*time.Millisecond)
		rec := &recorder{}
		seq, err := New(fake, []Item{{ID: "ja", Score: 4}},
			WithAnimationDuration(300*time.Millisecond),
			WithObserver(rec.observe),
		)
		So(err, ShouldBeNil)
		So(seq.Start(), ShouldBeNil)
		fake.Advance(time.Second)

		Convey("It sees the reveal and each frame with non-decreasing progress", func() {
			So(len(rec.events), ShouldEqual, 4)
			So(rec.events[0].Revealed, ShouldBeTrue)
			So(rec.events[0].Progress, ShouldEqual, 0)
			last := 0.0
			for _, ev := range rec.events {
				So(ev.Progress, ShouldBeGreaterThanOrEqualTo, last)
				last = ev.Progress
			}
			So(rec.events[3].FinalValueShown, ShouldBeTrue)
			So(rec.events[3].BarWidth, ShouldAlmostEqual, 40.0)
		})
	})
}

func TestSequencerStop(t *testing.T) {
	Convey("Given a running reveal", t, func() {
		fake := clock.NewFake(epoch, 10*time.Millisecond)
		rec := &recorder{}
		completed := false
		seq, err := New(fake, threeItems(),
			WithObserver(rec.observe),
			WithOnAllRevealed(func() { completed = true }),
		)
		So(err, ShouldBeNil)
		So(seq.Start(), ShouldBeNil)
		fake.Advance(600 * time.Millisecond)

		Convey("Stop cancels every pending timer and frame", func() {
			seq.Stop()
			So(seq.Phase(), ShouldEqual, PhaseTornDown)
			So(fake.Pending(), ShouldEqual, 0)

			before := len(rec.events)
			snapshot := seq.Snapshot()
			fake.Advance(10 * time.Second)

			So(len(rec.events), ShouldEqual, before)
			So(seq.Snapshot(), ShouldResemble, snapshot)
			So(completed, ShouldBeFalse)
		})

		Convey("Stop is idempotent and Start afterwards fails", func() {
			seq.Stop()
			seq.Stop()
			So(seq.Start(), ShouldEqual, ErrTornDown)
		})
	})

	Convey("Stop before Start leaves nothing scheduled", t, func() {
		fake := clock.NewFake(epoch, 0)
		seq, err := New(fake, threeItems())
		So(err, ShouldBeNil)
		seq.Stop()
		So(seq.Start(), ShouldEqual, ErrTornDown)
		So(fake.Pending(), ShouldEqual, 0)
	})
}

func TestSequencerEdges(t *testing.T) {
	Convey("An empty reveal completes on Start", t, func() {
		fake := clock.NewFake(epoch, 0)
		done := 0
		seq, err := New(fake, nil, WithOnAllRevealed(func() { done++ }))
		So(err, ShouldBeNil)
		So(seq.Start(), ShouldBeNil)
		So(done, ShouldEqual, 1)
		So(seq.Phase(), ShouldEqual, PhaseAllRevealed)
	})

	Convey("A zero animation shows the final value on the first frame", t, func() {
		fake := clock.NewFake(epoch, 16*time.Millisecond)
		seq, err := New(fake, []Item{{ID: "ar", Score: 10}}, WithAnimationDuration(0))
		So(err, ShouldBeNil)
		So(seq.Start(), ShouldBeNil)
		fake.Advance(16 * time.Millisecond)
		st := seq.Snapshot()[0]
		So(st.FinalValueShown, ShouldBeTrue)
		So(st.BarWidth, ShouldEqual, FullWidth)
	})

	Convey("Target widths are clamped to the bar", t, func() {
		So(TargetWidth(-1), ShouldEqual, 0)
		So(TargetWidth(0), ShouldEqual, 0)
		So(TargetWidth(2.5), ShouldAlmostEqual, 25.0)
		So(TargetWidth(12), ShouldEqual, FullWidth)
	})
}

func TestCelebration(t *testing.T) {
	Convey("Given an exact match with confetti", t, func() {
		fake := clock.NewFake(epoch, 10*time.Millisecond)
		var bursts []types.Burst
		confetti := NewConfetti(func(b types.Burst) { bursts = append(bursts, b) })
		seq, err := New(fake, threeItems(),
			WithDelay(500*time.Millisecond),
			WithAnimationDuration(time.Second),
			WithCelebration(true, confetti),
		)
		So(err, ShouldBeNil)
		So(seq.Start(), ShouldBeNil)
		fake.Advance(2 * time.Second)
		So(seq.AllRevealed(), ShouldBeTrue)

		Convey("Bursts fire every interval for the celebration window", func() {
			fake.Advance(500 * time.Millisecond)
			So(bursts, ShouldBeEmpty)
			fake.Advance(250 * time.Millisecond)
			So(len(bursts), ShouldEqual, 1)
			fake.Advance(5 * time.Second)
			So(len(bursts), ShouldEqual, 11)
			for _, b := range bursts {
				So(b.ParticleCount, ShouldEqual, DefaultParticleCount)
				So(b.OriginX, ShouldBeBetweenOrEqual, 0.1, 0.9)
			}
			So(fake.Pending(), ShouldEqual, 0)
		})

		Convey("Stop cancels the celebration", func() {
			fake.Advance(800 * time.Millisecond)
			n := len(bursts)
			seq.Stop()
			fake.Advance(5 * time.Second)
			So(len(bursts), ShouldEqual, n)
			So(fake.Pending(), ShouldEqual, 0)
		})
	})

	Convey("A near miss does not celebrate", t, func() {
		fake := clock.NewFake(epoch, 10*time.Millisecond)
		called := false
		confetti := NewConfetti(func(types.Burst) { called = true })
		seq, err := New(fake, threeItems(), WithCelebration(false, confetti))
		So(err, ShouldBeNil)
		So(seq.Start(), ShouldBeNil)
		fake.Advance(10 * time.Second)
		So(called, ShouldBeFalse)
	})
}

func TestSequencerRealClock(t *testing.T) {
	Convey("With the real scheduler, Stop leaves no goroutines behind", t, func() {
		sched := clock.NewReal(clock.WithFrameInterval(time.Millisecond))
		done := make(chan struct{})
		seq, err := New(sched, threeItems(),
			WithDelay(5*time.Millisecond),
			WithAnimationDuration(10*time.Millisecond),
			WithOnAllRevealed(func() { close(done) }),
		)
		So(err, ShouldBeNil)
		So(seq.Start(), ShouldBeNil)

		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
		seq.Stop()
		So(seq.AllRevealed(), ShouldBeTrue)
	})
}

func TestSequencerRealClockOrder(t *testing.T) {
	sixItems := func() []Item {
		return []Item{
			{ID: "fr", Score: 9}, {ID: "es", Score: 8}, {ID: "de", Score: 7},
			{ID: "it", Score: 6}, {ID: "pt", Score: 5}, {ID: "nl", Score: 4},
		}
	}

	for _, delay := range []time.Duration{0, time.Microsecond} {
		Convey("With the real scheduler and a delay of "+delay.String()+", items are revealed in truth order", t, func() {
			for run := 0; run < 50; run++ {
				var (
					mu    sync.Mutex
					order []int
					seen  = map[int]bool{}
				)
				done := make(chan struct{})
				seq, err := New(clock.NewReal(clock.WithFrameInterval(time.Millisecond)), sixItems(),
					WithDelay(delay),
					WithAnimationDuration(2*time.Millisecond),
					WithObserver(func(i int, st ItemState) {
						mu.Lock()
						defer mu.Unlock()
						if st.Revealed && !seen[i] {
							seen[i] = true
							order = append(order, i)
						}
					}),
					WithOnAllRevealed(func() { close(done) }),
				)
				So(err, ShouldBeNil)
				So(seq.Start(), ShouldBeNil)

				select {
				case <-done:
				case <-time.After(2 * time.Second):
				}
				seq.Stop()

				mu.Lock()
				got := append([]int(nil), order...)
				mu.Unlock()
				So(got, ShouldResemble, []int{0, 1, 2, 3, 4, 5})
			}
		})
	}
}
