// Package worker renders queued share cards on a fixed pool of goroutines.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/babellm/internal/adapters/mq/queue"
	"github.com/okian/babellm/internal/domain/share"
	"github.com/okian/babellm/pkg/logger"
	"github.com/okian/babellm/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Renderer turns a card into PNG bytes.
type Renderer interface {
	Render(c share.Card) ([]byte, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes render jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled, Shutdown is called
	// or the queue is closed and drained.
	Run(ctx context.Context)

	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	renderer Renderer
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, renderer Renderer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		renderer: renderer,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) { //nolint:gocritic // hugeParam: Job arrives by value from the channel
	start := time.Now()
	png, err := w.renderer.Render(job.Card)
	metrics.RecordRenderLatency(float64(time.Since(start).Milliseconds()))

	if err != nil {
		metrics.RecordShareImage("error")
		metrics.RecordErrorByComponent("render_worker", "encode")
		metrics.RecordErrorByType("image_encode", "medium")
		w.logger.Error(ctx, "share card render failed",
			logger.String("job_id", job.ID),
			logger.Error(err))
	} else {
		metrics.RecordShareImage("ok")
		w.logger.Debug(ctx, "share card rendered",
			logger.String("job_id", job.ID),
			logger.Int("bytes", len(png)),
			logger.Duration("queued", start.Sub(job.Enqueued)))
	}

	if job.Done != nil {
		job.Done(queue.Result{JobID: job.ID, PNG: png, Err: err})
	}
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
	started atomic.Bool
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithPoolLogger sets the pool logger; workers derive named loggers from it.
func WithPoolLogger(l logger.Logger) PoolOption {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPool creates workerCount workers. A count below 1 uses runtime.NumCPU().
func NewPool(workerCount int, q Queue, renderer Renderer, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewInMemoryWorker(q, renderer,
			WithName("render-worker-"+strconv.Itoa(i)),
			WithLogger(p.logger))
	}
	metrics.UpdateRenderWorkers(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "render pool started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the queue and waits for workers to drain it. A pool that
// was never started only closes the queue.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	if !p.started.Load() {
		metrics.UpdateRenderWorkers(0)
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("render pool shutdown: %w", shutdownCtx.Err())
		}
	}
	metrics.UpdateRenderWorkers(0)
	return nil
}
