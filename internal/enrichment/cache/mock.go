package cache

import (
	"context"
	"sync"
	"time"
)

// MockStore is an in-memory Store for testing.
type MockStore struct {
	mu      sync.Mutex
	entries map[string]mockEntry
	ttl     time.Duration

	// Optional overrides for failure injection.
	GetFunc func(ctx context.Context, key string) (string, bool, error)
	SetFunc func(ctx context.Context, key, value string) error

	SetCalls int
	GetCalls int
}

type mockEntry struct {
	value     string
	createdAt time.Time
	expiresAt time.Time
}

// NewMockStore creates an empty mock store with the default TTL.
func NewMockStore() *MockStore {
	return &MockStore{
		entries: make(map[string]mockEntry),
		ttl:     DefaultTTL,
	}
}

// Get implements Store.
func (m *MockStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	m.GetCalls++
	m.mu.Unlock()
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok || !time.Now().Before(entry.expiresAt) {
		return "", false, nil
	}
	return entry.value, true, nil
}

// Set implements Store.
func (m *MockStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	m.SetCalls++
	m.mu.Unlock()
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	m.entries[key] = mockEntry{value: value, createdAt: now, expiresAt: now.Add(m.ttl)}
	return nil
}

// Expire forces an entry's expiration into the past.
func (m *MockStore) Expire(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.entries[key]; ok {
		entry.expiresAt = time.Now().Add(-time.Minute)
		m.entries[key] = entry
	}
}

// CleanupExpired implements Store.
func (m *MockStore) CleanupExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	now := time.Now()
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Clear implements Store.
func (m *MockStore) Clear(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := int64(len(m.entries))
	m.entries = make(map[string]mockEntry)
	return removed, nil
}

// Stats implements Store.
func (m *MockStore) Stats(_ context.Context) (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &Stats{TTL: m.ttl}
	now := time.Now()
	for _, entry := range m.entries {
		stats.TotalEntries++
		if now.Before(entry.expiresAt) {
			stats.ValidEntries++
			created := entry.createdAt
			if stats.OldestEntry == nil || created.Before(*stats.OldestEntry) {
				c := created
				stats.OldestEntry = &c
			}
			if stats.NewestEntry == nil || created.After(*stats.NewestEntry) {
				c := created
				stats.NewestEntry = &c
			}
		} else {
			stats.ExpiredEntries++
		}
	}
	return stats, nil
}

// Close implements Store.
func (m *MockStore) Close() error { return nil }
