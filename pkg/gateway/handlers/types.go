package handlers

import (
	"context"
	"time"

	"github.com/w93163red/LivCap-Translate/pkg/backend"
	"github.com/w93163red/LivCap-Translate/pkg/usage"
)

// SessionInvoker is the slice of the session manager the handlers use.
// Invoke and InvokeStream lazily initialize the shared backend session
// and space invocation starts; Ready reports liveness without blocking.
type SessionInvoker interface {
	Invoke(ctx context.Context, req *backend.GenerateRequest) (string, error)
	InvokeStream(ctx context.Context, req *backend.GenerateRequest) (<-chan *backend.StreamChunk, error)
	Ready() bool
}

// ModelResolver maps request model names to native backend names and
// backs the model catalog.
type ModelResolver interface {
	Resolve(name string) (string, error)
	List() []string
	Created() time.Time
}

// UsageLimiter admits requests against daily request caps.
type UsageLimiter interface {
	Allow(model string) error
}

// UsageRecorder accepts completed request records. Implementations
// must not block the request path.
type UsageRecorder interface {
	Record(record *usage.Record)
}

// CompletionMetrics counts completion outcomes and stream traffic.
// Implementations must be safe for concurrent use.
type CompletionMetrics interface {
	// RecordCompletion counts one backend-touching completion attempt.
	// mode is "bulk" or "stream"; errorType is empty on success.
	RecordCompletion(model, mode, errorType string, duration time.Duration)

	// RecordStreamDelta counts one delta event delivered to a client.
	RecordStreamDelta(model string)
}
