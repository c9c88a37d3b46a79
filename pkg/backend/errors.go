package backend

import (
	"fmt"
	"time"
)

// UpstreamError is the catch-all for Gemini failures that carry no more
// specific classification. StatusCode holds the HTTP status when the API
// reported one and is zero otherwise.
type UpstreamError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("gemini error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gemini error: %s", e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// AuthError means the backend rejected the API key (HTTP 401 or 403).
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("gemini authentication failed: %s", e.Message)
}

// RateLimitError is a usage limit or temporary block (HTTP 429).
// RetryAfter is zero when the backend named no wait time.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("gemini rate limit exceeded (retry after %s): %s",
			e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("gemini rate limit exceeded: %s", e.Message)
}

// TimeoutError is a backend invocation that ran past its deadline.
// Timeout records the deadline, zero when unknown.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("gemini request timeout after %s", e.Timeout)
	}
	return "gemini request timeout"
}

// ModelInvalidError is the backend's own rejection of a model identifier,
// raised after alias resolution already succeeded on the gateway side.
type ModelInvalidError struct {
	Model   string
	Message string
}

func (e *ModelInvalidError) Error() string {
	return fmt.Sprintf("gemini rejected model %q: %s", e.Model, e.Message)
}
