// Package queue holds share card render jobs until a worker picks them up.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/babellm/internal/domain/share"
	"github.com/okian/babellm/pkg/metrics"
)

const defaultQueueCapacity = 64

// Result is the outcome of one render job.
type Result struct {
	JobID string
	PNG   []byte
	Err   error
}

// Job asks for one share card. Done receives the result exactly once, on
// the worker goroutine.
type Job struct {
	ID       string
	Card     share.Card
	Done     func(Result)
	Enqueued time.Time
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job or fails fast with ErrBackpressure or ErrClosed.
	Enqueue(ctx context.Context, j Job) error

	// Dequeue returns the channel workers read from. It is closed by Close.
	Dequeue(ctx context.Context) <-chan Job

	Len(ctx context.Context) int
	Cap() int

	// Close stops accepting jobs. Jobs already queued can still be drained.
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateRenderQueueCapacity(q.capacity)
	metrics.UpdateRenderQueueSize(0)
	return q
}

// Enqueue adds a job to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) error { //nolint:gocritic // hugeParam: Job is passed by value into the channel
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordErrorByComponent("render_queue", "closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordErrorByComponent("render_queue", "context_cancelled")
		return fmt.Errorf("enqueue %s: %w", j.ID, err)
	}
	if j.Enqueued.IsZero() {
		j.Enqueued = time.Now()
	}

	select {
	case q.jobs <- j:
		metrics.UpdateRenderQueueSize(len(q.jobs))
		return nil
	default:
		metrics.RecordErrorByComponent("render_queue", "queue_full")
		return ErrBackpressure
	}
}

// Dequeue returns the job channel.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Job {
	return q.jobs
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len(_ context.Context) int {
	n := len(q.jobs)
	metrics.UpdateRenderQueueSize(n)
	return n
}

// Cap returns the queue capacity.
func (q *InMemoryQueue) Cap() int { return q.capacity }

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
