package cache

import (
	"context"
	"fmt"
	"sync"
)

// Key identifies one cached most-recent-value resolution.
type Key struct {
	// Database is the source database id.
	Database int

	// Concept is the dimension concept the value belongs to (e.g. "time").
	Concept string
}

// String generates a deterministic storage key.
// Format: wb:mrv:<database>:<concept>
func (k Key) String() string {
	return fmt.Sprintf("wb:mrv:%d:%s", k.Database, k.Concept)
}

// Store resolves and caches the most recent value token per key. The second
// return of Get distinguishes a miss from an empty cached value.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key Key) (string, bool, error)
	Set(ctx context.Context, key Key, value string) error
	Invalidate(ctx context.Context, key Key) error
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
	}
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, key Key) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key.String()]
	if !ok {
		CacheMisses.Inc()
		return "", false, nil
	}
	CacheHits.WithLabelValues("memory").Inc()
	return value, true, nil
}

// Set implements Store.
func (s *MemoryStore) Set(ctx context.Context, key Key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key.String()] = value
	return nil
}

// Invalidate implements Store.
func (s *MemoryStore) Invalidate(ctx context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key.String())
	return nil
}
