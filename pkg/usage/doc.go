// Package usage records per-request metadata for operational visibility:
// what ran, against which model, how long it took, and how it ended.
//
// # Records
//
// Each usage record captures:
//   - Model names (requested and resolved)
//   - Request shape (message count, streaming or not)
//   - Outcome (status, wire error type, delta count)
//   - Timing (total latency, completion time)
//
// Records deliberately carry no message or response content. The gateway
// never persists conversations.
//
// # Write Path
//
// Recording is asynchronous so a slow disk never stalls a request:
//
//	Chat Handler → Recorder.Record (non-blocking)
//	     ↓
//	Buffered channel
//	     ↓
//	Background worker
//	     ↓
//	Storage backend (SQLite, WAL mode)
//
// When the buffer is full the record is dropped and the drop is logged;
// the request itself is never delayed.
//
// # Standalone Use
//
//	store, err := storage.OpenSQLite(storage.SQLiteConfig{Path: "data/usage.db"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	rec := recorder.NewRecorder(store, nil)
//	defer rec.Close()
//
//	rec.Record(&usage.Record{Model: "gemini-3.0-flash", Status: usage.StatusOK})
//
// # Retention
//
// Old records are swept out on a cron schedule by the retention package;
// see retention.Janitor.
package usage
