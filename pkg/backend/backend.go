package backend

import "context"

// Session is the contract every Gemini session implementation must satisfy.
// The gateway holds exactly one Session and shares it across all requests;
// implementations must be safe for concurrent Generate calls but may assume
// Init and Close are serialized by the caller.
//
// All methods accept a context.Context for cancellation and timeout control
// and must return promptly when the context is cancelled.
type Session interface {
	// Init performs session setup: credential handling and client
	// construction. It is idempotent; calling Init on a live session is a
	// no-op. Returns a typed error from this package when setup fails.
	Init(ctx context.Context) error

	// Alive reports whether the session handle exists and still considers
	// itself usable. A false result tells the caller to re-initialize
	// before the next generation call.
	Alive() bool

	// Generate runs one blocking completion and returns the full text.
	// An empty string with a nil error is a legal outcome: the model
	// produced no text.
	Generate(ctx context.Context, req *GenerateRequest) (string, error)

	// GenerateStream runs one streaming completion. It returns a channel
	// that yields incremental chunks as they arrive and closes when the
	// stream ends. A mid-stream failure is delivered in-band as the final
	// chunk's Error field; the channel still closes afterwards.
	//
	// The returned error is non-nil only when the stream could not be
	// opened at all.
	GenerateStream(ctx context.Context, req *GenerateRequest) (<-chan *StreamChunk, error)

	// Close tears the session down and releases its resources. It is
	// idempotent. After Close the session reports Alive() == false until
	// the next Init.
	Close() error
}

// GenerateRequest carries one generation call across the session boundary.
type GenerateRequest struct {
	// Model is the resolved backend model identifier. Callers resolve
	// aliases before building the request; the session passes this
	// through verbatim.
	Model string

	// Prompt is the flattened conversation text.
	Prompt string

	// Temperature overrides the backend sampling temperature when set.
	Temperature *float64

	// MaxTokens caps the generated output length when set.
	MaxTokens *int
}

// StreamChunk is a single increment of a streaming generation.
type StreamChunk struct {
	// Delta is the incremental text carried by this chunk. Implementations
	// only emit chunks whose Delta came from the backend; an empty Delta
	// is legal and the consumer decides whether to surface it.
	Delta string

	// Error is set when the stream failed after it was opened. A chunk
	// carrying an error is always the last one before the channel closes.
	Error error
}
