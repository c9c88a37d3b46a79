package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/w93163red/LivCap-Translate/pkg/usage"
)

// Policy controls how much usage history is kept.
type Policy struct {
	// MaxAgeDays removes records older than this many days. Zero keeps
	// records regardless of age.
	MaxAgeDays int

	// MaxRows caps the total number of stored records, trimming from the
	// oldest end when exceeded. Zero means no cap.
	MaxRows int64

	// Schedule is a cron expression for recurring sweeps, e.g. "0 3 * * *"
	// for daily at 3 AM. Empty disables recurring sweeps.
	Schedule string
}

// active reports whether the policy removes anything at all.
func (p Policy) active() bool {
	return p.MaxAgeDays > 0 || p.MaxRows > 0
}

// Janitor applies a retention policy to stored usage records. Sweeps run
// on demand through Sweep, or recur on a cron cadence once armed with
// Start.
type Janitor struct {
	store  usage.Storage
	policy Policy
	logger *slog.Logger

	mu    sync.Mutex
	timer *cron.Cron
	armed bool
}

// NewJanitor creates a janitor that enforces policy on store.
func NewJanitor(store usage.Storage, policy Policy) *Janitor {
	return &Janitor{
		store:  store,
		policy: policy,
		logger: slog.Default().With("component", "usage.retention"),
	}
}

// Sweep removes every record the policy no longer allows and reports how
// many were deleted. The age bound is applied first, the row cap to
// whatever remains.
func (j *Janitor) Sweep(ctx context.Context) (int64, error) {
	var removed int64

	if j.policy.MaxAgeDays > 0 {
		horizon := time.Now().AddDate(0, 0, -j.policy.MaxAgeDays)
		n, err := j.store.DeleteBefore(ctx, horizon)
		if err != nil {
			return removed, fmt.Errorf("age sweep: %w", err)
		}
		removed += n
	}

	if j.policy.MaxRows > 0 {
		n, err := j.trimOverflow(ctx)
		if err != nil {
			return removed, fmt.Errorf("row cap sweep: %w", err)
		}
		removed += n
	}

	if removed > 0 {
		j.logger.Info("swept usage records",
			"removed", removed,
			"max_age_days", j.policy.MaxAgeDays,
			"max_rows", j.policy.MaxRows,
		)
	}
	return removed, nil
}

// trimOverflow deletes the oldest rows until at most MaxRows remain.
func (j *Janitor) trimOverflow(ctx context.Context) (int64, error) {
	total, err := j.store.Count(ctx, &usage.Query{})
	if err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	if total <= j.policy.MaxRows {
		return 0, nil
	}

	// Query orders newest first, so the row at offset MaxRows-1 is the
	// oldest survivor; anything created before it is excess.
	edge, err := j.store.Query(ctx, &usage.Query{
		Limit:  1,
		Offset: int(j.policy.MaxRows) - 1,
	})
	if err != nil {
		return 0, fmt.Errorf("locate row cap edge: %w", err)
	}
	if len(edge) == 0 {
		return 0, nil
	}

	return j.store.DeleteBefore(ctx, edge[0].CreatedAt)
}

// Start arms recurring sweeps on the policy's cron schedule. It returns
// immediately and keeps sweeping until Stop is called or ctx is
// cancelled. An empty schedule or a policy that keeps everything leaves
// the janitor unarmed, which is not an error.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.policy.Schedule == "" {
		j.logger.Debug("no sweep schedule configured")
		return nil
	}
	if !j.policy.active() {
		j.logger.Info("retention policy keeps everything, sweeps not armed")
		return nil
	}

	timer := cron.New()
	_, err := timer.AddFunc(j.policy.Schedule, func() {
		if _, err := j.Sweep(ctx); err != nil {
			j.logger.Error("scheduled sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("bad sweep schedule %q: %w", j.policy.Schedule, err)
	}

	timer.Start()
	j.timer = timer
	j.armed = true

	j.logger.Info("usage sweeps armed",
		"schedule", j.policy.Schedule,
		"max_age_days", j.policy.MaxAgeDays,
		"max_rows", j.policy.MaxRows,
	)

	go func() {
		<-ctx.Done()
		j.Stop()
	}()

	return nil
}

// Stop disarms the schedule and waits for an in-flight sweep to finish.
// Calling Stop on an unarmed janitor is a no-op.
func (j *Janitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.armed {
		return
	}
	<-j.timer.Stop().Done()
	j.armed = false
	j.logger.Info("usage sweeps disarmed")
}

// Armed reports whether recurring sweeps are scheduled.
func (j *Janitor) Armed() bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.armed
}

// NextSweep returns when the next scheduled sweep fires, or nil while the
// janitor is unarmed.
func (j *Janitor) NextSweep() *time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.armed {
		return nil
	}
	entries := j.timer.Entries()
	if len(entries) == 0 {
		return nil
	}

	at := entries[0].Next
	return &at
}
