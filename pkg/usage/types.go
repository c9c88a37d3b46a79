package usage

import (
	"context"
	"time"
)

// Record captures the metadata of one completed chat completion request.
// It deliberately carries no message or response content: usage records
// exist for operational visibility (what ran, how long, how it ended),
// not for conversation capture.
type Record struct {
	// ID is a UUID assigned by the recorder when the record is accepted.
	ID string `json:"id"`

	// RequestID is the per-request identifier from the HTTP layer.
	RequestID string `json:"request_id"`

	// Model is the native model name the request resolved to.
	Model string `json:"model"`

	// RequestedModel is the model name as it appeared in the request,
	// before alias resolution. Equal to Model for native names.
	RequestedModel string `json:"requested_model"`

	// Messages is the number of conversation turns in the request.
	Messages int `json:"messages"`

	// Stream reports whether the response was delivered over SSE.
	Stream bool `json:"stream"`

	// Status is "ok" for a completed response, "error" otherwise.
	Status string `json:"status"`

	// ErrorType is the wire error type for failed requests ("" on success).
	ErrorType string `json:"error_type,omitempty"`

	// Chunks is the number of non-empty deltas sent (0 for non-stream).
	Chunks int `json:"chunks"`

	// Latency is the total time spent serving the request.
	Latency time.Duration `json:"latency"`

	// CreatedAt is when the request completed.
	CreatedAt time.Time `json:"created_at"`
}

// Record status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Query filters records for retrieval and counting.
type Query struct {
	// Since and Until bound CreatedAt (inclusive); zero means unbounded.
	Since time.Time
	Until time.Time

	// Model filters by native model name; empty matches all.
	Model string

	// Status filters by record status; empty matches all.
	Status string

	// Limit caps the number of returned records; 0 means no cap.
	Limit int

	// Offset skips the first N matching records.
	Offset int
}

// Matches reports whether the record passes the query's filters. Limit and
// Offset are pagination, not filters, and are ignored here.
func (q *Query) Matches(r *Record) bool {
	if !q.Since.IsZero() && r.CreatedAt.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && r.CreatedAt.After(q.Until) {
		return false
	}
	if q.Model != "" && r.Model != q.Model {
		return false
	}
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	return true
}

// Storage persists usage records. Implementations must be safe for
// concurrent use.
type Storage interface {
	// Store persists one record.
	Store(ctx context.Context, record *Record) error

	// Query returns records matching the query, newest first.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the query.
	Count(ctx context.Context, query *Query) (int64, error)

	// DeleteBefore removes records created before the cutoff and
	// returns how many were removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases the backing store.
	Close() error
}
