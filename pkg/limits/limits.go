package limits

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/w93163red/LivCap-Translate/pkg/limits/storage"
)

const dayFormat = "2006-01-02"

// ExceededError reports that a model's daily request cap is exhausted.
type ExceededError struct {
	Model   string
	Cap     int64
	Used    int64
	ResetAt time.Time
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("daily request cap reached for model %q: %d/%d, resets at %s",
		e.Model, e.Used, e.Cap, e.ResetAt.Format(time.RFC3339))
}

// Config configures a Tracker.
type Config struct {
	// DailyCap is the number of requests each model may serve per UTC
	// day. 0 disables the cap.
	DailyCap int64

	// PerModel overrides DailyCap for specific models. A 0 entry makes
	// that model unlimited.
	PerModel map[string]int64

	// Store persists counters across restarts. nil keeps counters in
	// memory only.
	Store storage.Store

	// SnapshotInterval is how often dirty counters are persisted.
	// Default: 30 seconds. Ignored when Store is nil.
	SnapshotInterval time.Duration
}

// Tracker counts requests per model per UTC day and admits or rejects
// them against the configured caps. It is safe for concurrent use.
type Tracker struct {
	config Config
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	day    string
	counts map[string]int64
	dirty  bool

	done      chan struct{}
	closeOnce sync.Once
}

// NewTracker creates a Tracker. When a store is configured, today's
// counters are loaded from it so a restart does not reset the day.
func NewTracker(config Config) (*Tracker, error) {
	if config.SnapshotInterval == 0 {
		config.SnapshotInterval = 30 * time.Second
	}

	t := &Tracker{
		config: config,
		logger: slog.Default().With("component", "limits"),
		now:    time.Now,
		counts: make(map[string]int64),
		done:   make(chan struct{}),
	}
	t.day = t.today()

	if config.Store != nil {
		counts, err := config.Store.Load(context.Background(), t.day)
		if err != nil {
			return nil, fmt.Errorf("failed to load daily counts: %w", err)
		}
		for model, count := range counts {
			t.counts[model] = count
		}
		go t.snapshotLoop()
	}

	return t, nil
}

// Allow admits one request for the model, or returns an
// *ExceededError when the model's cap for the current UTC day is
// already spent. The count is taken before the request runs, so a
// failed request still consumes cap.
func (t *Tracker) Allow(model string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rolloverLocked()

	limit := t.capFor(model)
	used := t.counts[model]
	if limit > 0 && used >= limit {
		return &ExceededError{
			Model:   model,
			Cap:     limit,
			Used:    used,
			ResetAt: t.nextReset(),
		}
	}

	t.counts[model] = used + 1
	t.dirty = true
	return nil
}

// Usage returns the number of requests counted for the model today.
func (t *Tracker) Usage(model string) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rolloverLocked()
	return t.counts[model]
}

// Counts returns a copy of today's per-model counts.
func (t *Tracker) Counts() map[string]int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rolloverLocked()
	counts := make(map[string]int64, len(t.counts))
	for model, count := range t.counts {
		counts[model] = count
	}
	return counts
}

// Close stops the snapshot loop, flushes pending counts, and closes
// the store. Close is idempotent.
func (t *Tracker) Close() error {
	var closeErr error

	t.closeOnce.Do(func() {
		close(t.done)

		if t.config.Store != nil {
			t.snapshot()
			closeErr = t.config.Store.Close()
		}
	})

	return closeErr
}

// capFor resolves the effective cap for a model.
func (t *Tracker) capFor(model string) int64 {
	if limit, ok := t.config.PerModel[model]; ok {
		return limit
	}
	return t.config.DailyCap
}

// today returns the current UTC day string.
func (t *Tracker) today() string {
	return t.now().UTC().Format(dayFormat)
}

// nextReset returns the next UTC midnight.
func (t *Tracker) nextReset() time.Time {
	now := t.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
}

// rolloverLocked resets counters when the UTC day has changed. The
// outgoing day's counts are persisted off the lock so a slow store
// does not stall admission. Caller must hold mu.
func (t *Tracker) rolloverLocked() {
	today := t.today()
	if today == t.day {
		return
	}

	if t.config.Store != nil && len(t.counts) > 0 {
		day := t.day
		counts := t.counts
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := t.config.Store.Save(ctx, day, counts); err != nil {
				t.logger.Warn("failed to persist outgoing day counts",
					"day", day,
					"error", err)
			}
		}()
	}

	t.logger.Info("daily counters rolled over",
		"previous_day", t.day,
		"day", today)

	t.day = today
	t.counts = make(map[string]int64)
	t.dirty = false
}

// snapshot persists the current counters if they changed since the
// last save.
func (t *Tracker) snapshot() {
	t.mu.Lock()
	if !t.dirty {
		t.mu.Unlock()
		return
	}
	day := t.day
	counts := make(map[string]int64, len(t.counts))
	for model, count := range t.counts {
		counts[model] = count
	}
	t.dirty = false
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := t.config.Store.Save(ctx, day, counts); err != nil {
		t.logger.Warn("failed to snapshot daily counts",
			"day", day,
			"error", err)
		t.mu.Lock()
		t.dirty = true
		t.mu.Unlock()
	}
}

// snapshotLoop periodically persists dirty counters.
func (t *Tracker) snapshotLoop() {
	ticker := time.NewTicker(t.config.SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.snapshot()
		case <-t.done:
			return
		}
	}
}
