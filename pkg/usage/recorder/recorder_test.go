package recorder

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/w93163red/LivCap-Translate/pkg/usage"
	"github.com/w93163red/LivCap-Translate/pkg/usage/storage"
)

func TestRecorderWritesRecord(t *testing.T) {
	store := storage.NewMemoryStore()
	rec := NewRecorder(store, nil)

	rec.Record(&usage.Record{
		RequestID: "req-1",
		Model:     "gemini-3.0-flash",
		Status:    usage.StatusOK,
	})

	if err := rec.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if store.Size() != 1 {
		t.Fatalf("Stored records = %v, want 1", store.Size())
	}

	records, err := store.Query(context.Background(), &usage.Query{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if records[0].RequestID != "req-1" {
		t.Errorf("RequestID = %v, want req-1", records[0].RequestID)
	}
}

func TestRecorderAssignsIDAndTime(t *testing.T) {
	store := storage.NewMemoryStore()
	rec := NewRecorder(store, nil)

	record := &usage.Record{RequestID: "req-1", Status: usage.StatusOK}
	rec.Record(record)
	rec.Close()

	if record.ID == "" {
		t.Fatal("Record ID not assigned")
	}
	if _, err := uuid.Parse(record.ID); err != nil {
		t.Errorf("Record ID %q is not a valid UUID: %v", record.ID, err)
	}
	if record.CreatedAt.IsZero() {
		t.Error("CreatedAt not assigned")
	}
}

func TestRecorderKeepsCallerID(t *testing.T) {
	store := storage.NewMemoryStore()
	rec := NewRecorder(store, nil)

	record := &usage.Record{ID: "fixed-id", RequestID: "req-1", Status: usage.StatusOK}
	rec.Record(record)
	rec.Close()

	if record.ID != "fixed-id" {
		t.Errorf("Record ID = %v, want fixed-id", record.ID)
	}
}

func TestRecorderDisabled(t *testing.T) {
	store := storage.NewMemoryStore()
	rec := NewRecorder(store, &Config{Enabled: false})

	rec.Record(&usage.Record{RequestID: "req-1"})
	rec.Close()

	if store.Size() != 0 {
		t.Errorf("Stored records = %v, want 0", store.Size())
	}
}

func TestRecorderCloseDrainsBuffer(t *testing.T) {
	store := storage.NewMemoryStore()
	rec := NewRecorder(store, &Config{Enabled: true, QueueSize: 100, WriteTimeout: time.Second})

	for i := 0; i < 20; i++ {
		rec.Record(&usage.Record{RequestID: "req", Status: usage.StatusOK})
	}
	rec.Close()

	if store.Size() != 20 {
		t.Errorf("Stored records = %v, want 20", store.Size())
	}
	if rec.Dropped() != 0 {
		t.Errorf("Dropped() = %v, want 0", rec.Dropped())
	}
}

func TestRecorderDropsWhenBufferFull(t *testing.T) {
	store := newBlockingStorage()
	rec := NewRecorder(store, &Config{Enabled: true, QueueSize: 1, WriteTimeout: time.Second})

	// First record occupies the worker inside Store.
	rec.Record(&usage.Record{RequestID: "req-1", Status: usage.StatusOK})
	<-store.started

	// Second record fills the buffer; third has nowhere to go.
	rec.Record(&usage.Record{RequestID: "req-2", Status: usage.StatusOK})
	rec.Record(&usage.Record{RequestID: "req-3", Status: usage.StatusOK})

	if rec.Dropped() != 1 {
		t.Errorf("Dropped() = %v, want 1", rec.Dropped())
	}

	close(store.release)
	rec.Close()

	if got := store.stored.Size(); got != 2 {
		t.Errorf("Stored records = %v, want 2", got)
	}
}

func TestRecorderCloseIdempotent(t *testing.T) {
	rec := NewRecorder(storage.NewMemoryStore(), nil)

	if err := rec.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func TestRecorderRecordAfterClose(t *testing.T) {
	store := storage.NewMemoryStore()
	rec := NewRecorder(store, nil)
	rec.Close()

	// Must not panic or write.
	rec.Record(&usage.Record{RequestID: "late"})

	if store.Size() != 0 {
		t.Errorf("Stored records = %v, want 0", store.Size())
	}
}

// blockingStorage parks every Store call until release is closed, signalling
// each entry on started.
type blockingStorage struct {
	stored  *storage.MemoryStore
	started chan struct{}
	release chan struct{}
}

func newBlockingStorage() *blockingStorage {
	return &blockingStorage{
		stored:  storage.NewMemoryStore(),
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (s *blockingStorage) Store(ctx context.Context, record *usage.Record) error {
	s.started <- struct{}{}
	<-s.release
	return s.stored.Store(ctx, record)
}

func (s *blockingStorage) Query(ctx context.Context, query *usage.Query) ([]*usage.Record, error) {
	return s.stored.Query(ctx, query)
}

func (s *blockingStorage) Count(ctx context.Context, query *usage.Query) (int64, error) {
	return s.stored.Count(ctx, query)
}

func (s *blockingStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.stored.DeleteBefore(ctx, cutoff)
}

func (s *blockingStorage) Close() error {
	return s.stored.Close()
}
