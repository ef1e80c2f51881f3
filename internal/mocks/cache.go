package mocks

import (
	"sync"
	"time"

	"github.com/cradoe/indigene/internal/cache"
)

// MockCache is an in-memory cache.Store. TTLs are honored by deadline
// so expiry-sensitive flows can be tested with short durations.
type MockCache struct {
	mu      sync.Mutex
	values  map[string]string
	expires map[string]time.Time
}

func NewMockCache() *MockCache {
	return &MockCache{
		values:  make(map[string]string),
		expires: make(map[string]time.Time),
	}
}

func (m *MockCache) Set(key string, value string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	m.expires[key] = time.Now().Add(expiration)
	return nil
}

func (m *MockCache) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.values[key]
	if !ok || time.Now().After(m.expires[key]) {
		return "", cache.ErrNotFound
	}
	return value, nil
}

func (m *MockCache) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	delete(m.expires, key)
	return nil
}

func (m *MockCache) Exists(key string) (bool, error) {
	_, err := m.Get(key)
	if err != nil {
		return false, nil
	}
	return true, nil
}
