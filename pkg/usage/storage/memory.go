package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/w93163red/LivCap-Translate/pkg/usage"
)

// MemoryStore keeps usage records in a slice. It backs tests and has no
// durability; production deployments use SQLiteStore.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*usage.Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Store appends a copy of the record.
func (m *MemoryStore) Store(ctx context.Context, record *usage.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *record
	m.records = append(m.records, &clone)
	return nil
}

// Query retrieves usage records matching the query filters, newest first.
func (m *MemoryStore) Query(ctx context.Context, query *usage.Query) ([]*usage.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := []*usage.Record{}
	for _, record := range m.records {
		if query.Matches(record) {
			clone := *record
			matched = append(matched, &clone)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if query.Offset > len(matched) {
		return []*usage.Record{}, nil
	}
	matched = matched[query.Offset:]
	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

// Count returns the number of usage records matching the query filters.
func (m *MemoryStore) Count(ctx context.Context, query *usage.Query) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, record := range m.records {
		if query.Matches(record) {
			n++
		}
	}
	return n, nil
}

// DeleteBefore removes records created before the cutoff.
func (m *MemoryStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var kept []*usage.Record
	var removed int64
	for _, record := range m.records {
		if record.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, record)
	}
	m.records = kept
	return removed, nil
}

// Close drops all records.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = nil
	return nil
}

// Size reports how many records are held. Tests use it to assert on
// retention behavior without running a query.
func (m *MemoryStore) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.records)
}
