// Package limits enforces daily request caps per model.
//
// The gateway fronts a quota-limited backend, so an optional cap on
// requests per model per UTC day keeps a noisy client from burning the
// whole day's quota. Counters live in memory and roll over at UTC
// midnight; an optional storage backend snapshots them periodically so
// caps survive restarts.
//
// A cap of 0 (the default) disables enforcement for that model, so a
// Tracker with no configuration admits everything.
package limits
