package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"

	"github.com/okian/babellm/internal/adapters/mq/queue"
	"github.com/okian/babellm/internal/adapters/mq/worker"
	"github.com/okian/babellm/internal/domain/share"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeRenderer struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (f *fakeRenderer) Render(c share.Card) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return nil, share.ErrImageEncode
	}
	return []byte("png:" + c.Question), nil
}

func collect(n int) (func(queue.Result), func() []queue.Result) {
	var mu sync.Mutex
	var wg sync.WaitGroup
	var results []queue.Result
	wg.Add(n)
	done := func(r queue.Result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
		wg.Done()
	}
	wait := func() []queue.Result {
		wg.Wait()
		mu.Lock()
		defer mu.Unlock()
		return results
	}
	return done, wait
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of two workers", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		r := &fakeRenderer{}
		pool := worker.NewPool(2, q, r)
		pool.Start(ctx)

		convey.Convey("Every job reaches its completion callback", func() {
			done, wait := collect(5)
			for i := 0; i < 5; i++ {
				convey.So(q.Enqueue(ctx, queue.Job{ID: "job", Card: share.Card{Question: "Q"}, Done: done}), convey.ShouldBeNil)
			}
			results := wait()
			convey.So(len(results), convey.ShouldEqual, 5)
			for _, res := range results {
				convey.So(res.Err, convey.ShouldBeNil)
				convey.So(string(res.PNG), convey.ShouldEqual, "png:Q")
			}
			convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)
		})

		convey.Convey("Render failures are delivered, not swallowed", func() {
			r.mu.Lock()
			r.fail = true
			r.mu.Unlock()
			done, wait := collect(1)
			convey.So(q.Enqueue(ctx, queue.Job{ID: "bad", Done: done}), convey.ShouldBeNil)
			res := wait()[0]
			convey.So(errors.Is(res.Err, share.ErrImageEncode), convey.ShouldBeTrue)
			convey.So(res.PNG, convey.ShouldBeNil)
			convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)
		})

		convey.Convey("Shutdown drains queued jobs and rejects new ones", func() {
			done, wait := collect(3)
			for i := 0; i < 3; i++ {
				_ = q.Enqueue(ctx, queue.Job{ID: "drain", Done: done})
			}
			convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)
			convey.So(len(wait()), convey.ShouldEqual, 3)
			convey.So(errors.Is(q.Enqueue(ctx, queue.Job{ID: "late"}), queue.ErrClosed), convey.ShouldBeTrue)
		})
	})

	convey.Convey("A pool that was never started shuts down at once", t, func() {
		q := queue.NewInMemoryQueue()
		pool := worker.NewPool(2, q, &fakeRenderer{})
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)
		convey.So(ctx.Err(), convey.ShouldBeNil)
		convey.So(q.IsClosed(), convey.ShouldBeTrue)
	})

	convey.Convey("A worker stops when its context is cancelled", t, func() {
		q := queue.NewInMemoryQueue()
		w := worker.NewInMemoryWorker(q, &fakeRenderer{})
		ctx, cancel := context.WithCancel(context.Background())
		finished := make(chan struct{})
		go func() {
			w.Run(ctx)
			close(finished)
		}()
		cancel()
		select {
		case <-finished:
		case <-time.After(time.Second):
		}
		convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
	})
}
