package session

import (
	"context"
	"sync"
)

// MemoryStore keeps selections in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	assets map[int64]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{assets: make(map[int64]string)}
}

func (m *MemoryStore) Get(_ context.Context, chatID int64) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assets[chatID]
	return a, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, chatID int64, asset string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets[chatID] = asset
	return nil
}

func (m *MemoryStore) Close() error { return nil }
