package storage

import "context"

// Store persists per-day, per-model request counts.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save replaces the stored counts for a day with the given snapshot.
	Save(ctx context.Context, day string, counts map[string]int64) error

	// Load returns the stored counts for a day. A day with no counts
	// yields an empty map, not an error.
	Load(ctx context.Context, day string) (map[string]int64, error)

	// Cleanup removes counts for days before the cutoff day and returns
	// how many rows were removed.
	Cleanup(ctx context.Context, before string) (int64, error)

	// Close releases the backing store.
	Close() error
}
