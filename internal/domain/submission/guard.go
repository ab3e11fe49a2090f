// Package submission guards rounds against being submitted twice.
package submission

import (
	"container/list"
	"context"
	"sync"
)

const defaultMaxSize = 50000

// Guard records which rounds have been submitted.
type Guard interface {
	// Claim records id and reports whether this call was the first for it.
	Claim(ctx context.Context, id string) bool

	// Release forgets id so the round can be submitted again. Used when the
	// work following a claim fails.
	Release(ctx context.Context, id string)

	Len() int
}

// memoryGuard keeps claims in insertion order so the oldest can be evicted.
type memoryGuard struct {
	mu      sync.Mutex
	claims  map[string]*list.Element
	order   *list.List
	maxSize int
}

// NewMemoryGuard creates an in-memory guard.
func NewMemoryGuard(opts ...Option) Guard {
	g := &memoryGuard{
		claims:  make(map[string]*list.Element),
		order:   list.New(),
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *memoryGuard) Claim(_ context.Context, id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.claims[id]; ok {
		return false
	}
	if g.maxSize > 0 && g.order.Len() >= g.maxSize {
		oldest := g.order.Back()
		g.order.Remove(oldest)
		delete(g.claims, oldest.Value.(string))
	}
	g.claims[id] = g.order.PushFront(id)
	return true
}

func (g *memoryGuard) Release(_ context.Context, id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if el, ok := g.claims[id]; ok {
		g.order.Remove(el)
		delete(g.claims, id)
	}
}

func (g *memoryGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.order.Len()
}
