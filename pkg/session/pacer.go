package session

import (
	"context"
	"sync"
	"time"
)

// Pacer enforces a minimum wall-clock spacing between the starts of
// successive backend invocations, for any number of concurrent callers.
//
// # Algorithm
//
//  1. Acquire the gate mutex
//  2. Compute the remaining wait from the last recorded start
//  3. Sleep out the remainder (cancellable via context)
//  4. Record the new start time and release
//
// The mutex is held across the sleep on purpose. Waiters queue on the gate
// and each one re-derives its wait from the stamp the previous caller just
// wrote, so two callers can never observe the same stamp and wake together.
// The stamp is written when the gate opens, immediately before the caller
// proceeds to the backend, which makes the spacing a property of invocation
// starts rather than completions.
type Pacer struct {
	interval time.Duration // Minimum spacing between invocation starts
	now      func() time.Time
	mu       sync.Mutex
	last     time.Time // Start time of the most recent invocation
}

// NewPacer creates a pacer with the given minimum spacing. An interval of
// zero or less disables pacing entirely.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{
		interval: interval,
		now:      time.Now,
	}
}

// Wait blocks until the caller is allowed to start an invocation, then
// records the start. Returns the context error if the caller gives up
// while queued; in that case no stamp is written for it.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.interval <= 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if !p.last.IsZero() {
		if remaining := p.interval - now.Sub(p.last); remaining > 0 {
			timer := time.NewTimer(remaining)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return ctx.Err()
			}
			now = p.now()
		}
	}

	p.last = now
	return nil
}

// Interval returns the configured minimum spacing.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// LastStart returns the recorded start time of the most recent invocation,
// or the zero time if none has started yet.
func (p *Pacer) LastStart() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
