// Package storage provides storage backends for usage records.
//
// Two implementations satisfy the usage.Storage interface:
//
//   - SQLiteStore: durable embedded storage with WAL journaling and
//     indexes on the queried columns
//   - MemoryStore: in-memory storage for testing
//
// OpenSQLite creates missing tables on first open and stamps a schema
// version for future migrations. All backends are safe for concurrent use.
package storage
