package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"

	"github.com/okian/babellm/internal/adapters/repository"
	"github.com/okian/babellm/internal/domain/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func sampleRound(id string) model.Round {
	return model.Round{
		ID:         id,
		QuestionID: "q1",
		Items:      []model.Item{{ID: "fr"}, {ID: "es"}},
		Order:      model.Ordering{"fr", "es"},
	}
}

func TestMemoryStore(t *testing.T) {
	convey.Convey("Given a memory store", t, func() {
		ctx := context.Background()
		clk := &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
		s := repository.NewMemoryStore(ctx, repository.WithTTL(time.Minute), repository.WithNow(clk.Now))
		defer func() { _ = s.Close() }()

		convey.So(s.Create(ctx, sampleRound("r1")), convey.ShouldBeNil)

		convey.Convey("Rounds read back as independent copies", func() {
			r, err := s.Get(ctx, "r1")
			convey.So(err, convey.ShouldBeNil)
			r.Order[0] = "zz"
			again, _ := s.Get(ctx, "r1")
			convey.So(again.Order, convey.ShouldResemble, model.Ordering{"fr", "es"})
			convey.So(again.CreatedAt.Equal(clk.Now()), convey.ShouldBeTrue)
		})

		convey.Convey("Duplicate ids are rejected", func() {
			err := s.Create(ctx, sampleRound("r1"))
			convey.So(errors.Is(err, repository.ErrExists), convey.ShouldBeTrue)
		})

		convey.Convey("Update applies changes atomically", func() {
			r, err := s.Update(ctx, "r1", func(r *model.Round) error {
				r.Order = model.Ordering{"es", "fr"}
				return nil
			})
			convey.So(err, convey.ShouldBeNil)
			convey.So(r.Order, convey.ShouldResemble, model.Ordering{"es", "fr"})
		})

		convey.Convey("A failing update leaves the round untouched", func() {
			boom := errors.New("boom")
			_, err := s.Update(ctx, "r1", func(r *model.Round) error {
				r.Submitted = true
				return boom
			})
			convey.So(err, convey.ShouldEqual, boom)
			r, _ := s.Get(ctx, "r1")
			convey.So(r.Submitted, convey.ShouldBeFalse)
		})

		convey.Convey("Unknown rounds are ErrNotFound", func() {
			_, err := s.Get(ctx, "nope")
			convey.So(errors.Is(err, repository.ErrNotFound), convey.ShouldBeTrue)
			_, err = s.Update(ctx, "nope", func(*model.Round) error { return nil })
			convey.So(errors.Is(err, repository.ErrNotFound), convey.ShouldBeTrue)
		})

		convey.Convey("Rounds expire after the TTL and are swept", func() {
			clk.Add(2 * time.Minute)
			_, err := s.Get(ctx, "r1")
			convey.So(errors.Is(err, repository.ErrNotFound), convey.ShouldBeTrue)
			convey.So(s.Sweep(), convey.ShouldEqual, 1)
			convey.So(s.Count(ctx), convey.ShouldEqual, 0)
		})

		convey.Convey("Updates refresh the expiry", func() {
			clk.Add(50 * time.Second)
			_, err := s.Update(ctx, "r1", func(*model.Round) error { return nil })
			convey.So(err, convey.ShouldBeNil)
			clk.Add(50 * time.Second)
			_, err = s.Get(ctx, "r1")
			convey.So(err, convey.ShouldBeNil)
		})

		convey.Convey("Delete removes the round", func() {
			convey.So(s.Delete(ctx, "r1"), convey.ShouldBeNil)
			convey.So(s.Count(ctx), convey.ShouldEqual, 0)
		})
	})
}
