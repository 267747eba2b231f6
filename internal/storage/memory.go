package storage

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Durable used for development and tests.
// Entries do not survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
	writes  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (ms *MemoryStore) Read(_ context.Context, key string) ([]byte, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	v, ok := ms.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (ms *MemoryStore) Write(_ context.Context, key string, value []byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.entries[key] = append([]byte(nil), value...)
	ms.writes++
	return nil
}

func (ms *MemoryStore) Clear(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.entries, key)
	return nil
}

// Writes reports how many times Write has been called.
func (ms *MemoryStore) Writes() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.writes
}

func (ms *MemoryStore) Close() error { return nil }
