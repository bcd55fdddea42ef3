package cache

import (
	"context"
	"sync"
	"time"
)

// MockSeenCache provides an in-memory implementation for tests and for
// running without Redis.
type MockSeenCache struct {
	mu   sync.Mutex
	data map[string]struct{}
}

func NewMockSeenCache() *MockSeenCache {
	return &MockSeenCache{data: make(map[string]struct{})}
}

func (m *MockSeenCache) Close() error {
	return nil
}

func (m *MockSeenCache) IsSeen(ctx context.Context, uniqueID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.data[uniqueID]
	return exists, nil
}

func (m *MockSeenCache) MarkSeen(ctx context.Context, uniqueID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[uniqueID] = struct{}{}
	return nil
}

func (m *MockSeenCache) ClearSeen(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]struct{})
	return nil
}
