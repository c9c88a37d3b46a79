package limits

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/w93163red/LivCap-Translate/pkg/limits/storage"
)

func TestTrackerUnlimitedByDefault(t *testing.T) {
	tracker, err := NewTracker(Config{})
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}
	defer tracker.Close()

	for i := 0; i < 100; i++ {
		if err := tracker.Allow("gemini-3.0-flash"); err != nil {
			t.Fatalf("Allow() error = %v on request %d, want nil", err, i)
		}
	}

	if got := tracker.Usage("gemini-3.0-flash"); got != 100 {
		t.Errorf("Usage() = %d, want 100", got)
	}
}

func TestTrackerEnforcesDailyCap(t *testing.T) {
	tracker, err := NewTracker(Config{DailyCap: 2})
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}
	defer tracker.Close()

	if err := tracker.Allow("gemini-3.0-flash"); err != nil {
		t.Fatalf("Allow() #1 error = %v, want nil", err)
	}
	if err := tracker.Allow("gemini-3.0-flash"); err != nil {
		t.Fatalf("Allow() #2 error = %v, want nil", err)
	}

	err = tracker.Allow("gemini-3.0-flash")
	if err == nil {
		t.Fatal("Allow() #3 error = nil, want ExceededError")
	}

	var exceeded *ExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("Allow() error = %T, want *ExceededError", err)
	}
	if exceeded.Model != "gemini-3.0-flash" {
		t.Errorf("ExceededError.Model = %q, want %q", exceeded.Model, "gemini-3.0-flash")
	}
	if exceeded.Cap != 2 || exceeded.Used != 2 {
		t.Errorf("ExceededError = %d/%d, want 2/2", exceeded.Used, exceeded.Cap)
	}
	if exceeded.ResetAt.IsZero() {
		t.Error("ExceededError.ResetAt is zero, want next UTC midnight")
	}
}

func TestTrackerCapsModelsIndependently(t *testing.T) {
	tracker, err := NewTracker(Config{DailyCap: 1})
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}
	defer tracker.Close()

	if err := tracker.Allow("gemini-3.0-flash"); err != nil {
		t.Fatalf("Allow(flash) error = %v, want nil", err)
	}
	if err := tracker.Allow("gemini-3.0-pro"); err != nil {
		t.Fatalf("Allow(pro) error = %v, want nil", err)
	}
	if err := tracker.Allow("gemini-3.0-flash"); err == nil {
		t.Error("Allow(flash) #2 error = nil, want ExceededError")
	}
}

func TestTrackerPerModelOverride(t *testing.T) {
	tracker, err := NewTracker(Config{
		DailyCap: 1,
		PerModel: map[string]int64{
			"gemini-3.0-pro":            3,
			"gemini-3.0-flash-thinking": 0,
		},
	})
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}
	defer tracker.Close()

	for i := 0; i < 3; i++ {
		if err := tracker.Allow("gemini-3.0-pro"); err != nil {
			t.Fatalf("Allow(pro) #%d error = %v, want nil", i+1, err)
		}
	}
	if err := tracker.Allow("gemini-3.0-pro"); err == nil {
		t.Error("Allow(pro) #4 error = nil, want ExceededError")
	}

	// 0 override disables the cap for that model
	for i := 0; i < 10; i++ {
		if err := tracker.Allow("gemini-3.0-flash-thinking"); err != nil {
			t.Fatalf("Allow(thinking) error = %v, want nil", err)
		}
	}
}

func TestTrackerRollsOverAtMidnight(t *testing.T) {
	tracker, err := NewTracker(Config{DailyCap: 1})
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}
	defer tracker.Close()

	clock := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	tracker.now = func() time.Time { return clock }

	if err := tracker.Allow("gemini-3.0-flash"); err != nil {
		t.Fatalf("Allow() before midnight error = %v, want nil", err)
	}
	if err := tracker.Allow("gemini-3.0-flash"); err == nil {
		t.Fatal("Allow() at cap error = nil, want ExceededError")
	}

	clock = time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC)

	if err := tracker.Allow("gemini-3.0-flash"); err != nil {
		t.Errorf("Allow() after midnight error = %v, want nil", err)
	}
	if got := tracker.Usage("gemini-3.0-flash"); got != 1 {
		t.Errorf("Usage() after rollover = %d, want 1", got)
	}
}

func TestTrackerPersistsCountsToStore(t *testing.T) {
	store := storage.NewMemoryStore()

	tracker, err := NewTracker(Config{DailyCap: 10, Store: store})
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := tracker.Allow("gemini-3.0-flash"); err != nil {
			t.Fatalf("Allow() error = %v, want nil", err)
		}
	}

	// Close flushes pending counts
	if err := tracker.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	revived, err := NewTracker(Config{DailyCap: 10, Store: store})
	if err != nil {
		t.Fatalf("NewTracker() after restart error = %v", err)
	}
	defer revived.Close()

	if got := revived.Usage("gemini-3.0-flash"); got != 3 {
		t.Errorf("Usage() after restart = %d, want 3", got)
	}
}

func TestTrackerCloseIdempotent(t *testing.T) {
	tracker, err := NewTracker(Config{Store: storage.NewMemoryStore()})
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}

	if err := tracker.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := tracker.Close(); err != nil {
		t.Fatalf("Close() second call error = %v", err)
	}
}

func TestTrackerCountsReturnsCopy(t *testing.T) {
	tracker, err := NewTracker(Config{})
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}
	defer tracker.Close()

	if err := tracker.Allow("gemini-3.0-flash"); err != nil {
		t.Fatalf("Allow() error = %v", err)
	}

	counts := tracker.Counts()
	counts["gemini-3.0-flash"] = 999

	if got := tracker.Usage("gemini-3.0-flash"); got != 1 {
		t.Errorf("Usage() after mutating Counts() copy = %d, want 1", got)
	}
}

func TestTrackerLoadFailureSurfaces(t *testing.T) {
	store := failingStore{}

	if _, err := NewTracker(Config{Store: store}); err == nil {
		t.Error("NewTracker() error = nil, want load failure")
	}
}

type failingStore struct{}

func (failingStore) Save(ctx context.Context, day string, counts map[string]int64) error {
	return errors.New("store down")
}

func (failingStore) Load(ctx context.Context, day string) (map[string]int64, error) {
	return nil, errors.New("store down")
}

func (failingStore) Cleanup(ctx context.Context, before string) (int64, error) {
	return 0, errors.New("store down")
}

func (failingStore) Close() error { return nil }
