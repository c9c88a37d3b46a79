// Package storage provides persistence backends for daily request
// counters, so caps survive gateway restarts.
//
// Two backends are available: SQLiteStore for durable single-instance
// deployments and MemoryStore for tests and cap-less setups. Counters
// are keyed by UTC date string ("2006-01-02"), which sorts
// chronologically and makes retention a plain string comparison.
package storage
