// Package backend defines the abstract contract between the gateway and the
// Gemini session that produces completions.
//
// The gateway core never talks to the Google SDK directly. It depends on the
// Session interface declared here, which exposes lifecycle control (Init,
// Close, Alive) and the two generation modes (Generate, GenerateStream).
// The production implementation lives in the gemini subpackage; tests use
// the scripted implementation in backendtest.
//
// Failures cross this boundary as the typed errors declared in errors.go
// (AuthError, RateLimitError, ModelInvalidError, TimeoutError,
// UpstreamError). The gateway's error mapper matches on these types with
// errors.As, so implementations must return them rather than flattening
// everything into opaque strings.
package backend
