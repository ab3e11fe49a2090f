package queue_test

import (
	"context"
	"errors"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/babellm/internal/adapters/mq/queue"
)

func TestInMemoryQueue(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a queue with capacity 2", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))

		convey.Convey("Jobs are accepted until it is full", func() {
			convey.So(q.Enqueue(ctx, queue.Job{ID: "a"}), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, queue.Job{ID: "b"}), convey.ShouldBeNil)
			convey.So(q.Len(ctx), convey.ShouldEqual, 2)

			err := q.Enqueue(ctx, queue.Job{ID: "c"})
			convey.So(errors.Is(err, queue.ErrBackpressure), convey.ShouldBeTrue)
		})

		convey.Convey("Jobs come out in order with an enqueue time", func() {
			_ = q.Enqueue(ctx, queue.Job{ID: "a"})
			_ = q.Enqueue(ctx, queue.Job{ID: "b"})
			jobs := q.Dequeue(ctx)
			first := <-jobs
			convey.So(first.ID, convey.ShouldEqual, "a")
			convey.So(first.Enqueued.IsZero(), convey.ShouldBeFalse)
			convey.So((<-jobs).ID, convey.ShouldEqual, "b")
		})

		convey.Convey("A cancelled context is rejected", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			err := q.Enqueue(cctx, queue.Job{ID: "a"})
			convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
		})

		convey.Convey("Close drains and then rejects", func() {
			_ = q.Enqueue(ctx, queue.Job{ID: "a"})
			convey.So(q.Close(), convey.ShouldBeNil)
			convey.So(q.Close(), convey.ShouldBeNil)
			convey.So(q.IsClosed(), convey.ShouldBeTrue)
			convey.So(errors.Is(q.Enqueue(ctx, queue.Job{ID: "b"}), queue.ErrClosed), convey.ShouldBeTrue)

			jobs := q.Dequeue(ctx)
			j, ok := <-jobs
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(j.ID, convey.ShouldEqual, "a")
			_, ok = <-jobs
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}
