package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/babellm/internal/domain/model"
	"github.com/okian/babellm/pkg/metrics"
)

const (
	defaultTTL           = time.Hour
	defaultSweepInterval = time.Minute
)

// MemoryStore holds rounds in a map and sweeps expired ones in the background.
type MemoryStore struct {
	mu     sync.RWMutex
	rounds map[string]model.Round

	ttl           time.Duration
	sweepInterval time.Duration
	now           func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs a store and starts its sweeper, which runs until
// ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		rounds:        make(map[string]model.Round),
		ttl:           defaultTTL,
		sweepInterval: defaultSweepInterval,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()

	metrics.UpdateActiveRounds(0)
	return s
}

// Close stops the sweeper.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) Create(_ context.Context, r model.Round) error { //nolint:gocritic // hugeParam
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rounds[r.ID]; ok {
		return fmt.Errorf("%w: %s", ErrExists, r.ID)
	}
	now := s.now()
	r = r.Clone()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	s.rounds[r.ID] = r
	metrics.UpdateActiveRounds(len(s.rounds))
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (model.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rounds[id]
	if !ok || s.expired(r) {
		return model.Round{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.Clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, id string, fn func(*model.Round) error) (model.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rounds[id]
	if !ok || s.expired(r) {
		return model.Round{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	work := r.Clone()
	if err := fn(&work); err != nil {
		return r.Clone(), err
	}
	work.ID = id
	work.UpdatedAt = s.now()
	s.rounds[id] = work
	return work.Clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rounds, id)
	metrics.UpdateActiveRounds(len(s.rounds))
	return nil
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rounds)
}

// Sweep removes expired rounds and returns how many were dropped.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for id, r := range s.rounds {
		if s.expired(r) {
			delete(s.rounds, id)
			dropped++
		}
	}
	metrics.UpdateActiveRounds(len(s.rounds))
	return dropped
}

// expired must be called with s.mu held.
func (s *MemoryStore) expired(r model.Round) bool { //nolint:gocritic // hugeParam
	return s.now().Sub(r.UpdatedAt) >= s.ttl
}
