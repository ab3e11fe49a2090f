package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	values  map[string]string
	expires time.Time
}

// MemoryBackend keeps sessions in a map. Expired sessions are dropped on access.
type MemoryBackend struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{sessions: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryBackend) SetAll(_ context.Context, sessionID string, values map[string]string, ttl time.Duration) error {
	cp := make(map[string]string, len(values))
	for k, v := range values {
		cp[k] = v
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = memoryEntry{values: cp, expires: m.now().Add(ttl)}
	return nil
}

func (m *MemoryBackend) Get(_ context.Context, sessionID, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[sessionID]
	if ok && !m.now().Before(entry.expires) {
		delete(m.sessions, sessionID)
		ok = false
	}
	if !ok {
		return "", fmt.Errorf("%w: session %q not found", ErrStorageRead, sessionID)
	}
	v, ok := entry.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s not set", ErrStorageRead, key)
	}
	return v, nil
}

func (m *MemoryBackend) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

// Len reports live and not yet collected sessions.
func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *MemoryBackend) Close() error { return nil }
