package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore implements Store using in-memory storage. This is the
// default backend; counters do not survive a restart.
//
// MemoryStore is thread-safe and supports concurrent access using
// sync.RWMutex.
type MemoryStore struct {
	// days maps day string to per-model counts.
	days map[string]map[string]int64

	// mu protects access to the days map.
	mu sync.RWMutex
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		days: make(map[string]map[string]int64),
	}
}

// Save replaces the stored counts for a day with the given snapshot.
func (m *MemoryStore) Save(ctx context.Context, day string, counts map[string]int64) error {
	if day == "" {
		return fmt.Errorf("day cannot be empty")
	}

	snapshot := make(map[string]int64, len(counts))
	for model, count := range counts {
		snapshot[model] = count
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.days[day] = snapshot
	return nil
}

// Load returns the stored counts for a day.
func (m *MemoryStore) Load(ctx context.Context, day string) (map[string]int64, error) {
	if day == "" {
		return nil, fmt.Errorf("day cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64, len(m.days[day]))
	for model, count := range m.days[day] {
		counts[model] = count
	}

	return counts, nil
}

// Cleanup removes counts for days before the cutoff day. Day strings
// sort chronologically, so this is a plain string comparison.
func (m *MemoryStore) Cleanup(ctx context.Context, before string) (int64, error) {
	if before == "" {
		return 0, fmt.Errorf("cutoff day cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for day, counts := range m.days {
		if day < before {
			deleted += int64(len(counts))
			delete(m.days, day)
		}
	}

	return deleted, nil
}

// Close releases any resources held by the store.
func (m *MemoryStore) Close() error {
	return nil
}

// Days returns the number of stored days. This is useful for testing.
func (m *MemoryStore) Days() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.days)
}
