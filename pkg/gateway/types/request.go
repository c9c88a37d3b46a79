package types

import "fmt"

// ChatCompletionRequest is the body of POST /v1/chat/completions. The
// shape tracks the OpenAI Chat Completions API so existing OpenAI SDKs
// and tools work against the gateway unchanged.
type ChatCompletionRequest struct {
	// Model is the requested model name (e.g. "gemini-3.0-flash", "gpt-4o").
	// Names are resolved through the alias table before use.
	Model string `json:"model"`

	// Messages is the conversation history as a list of turns.
	Messages []Message `json:"messages"`

	// Temperature steers sampling randomness. Optional; the backend
	// default applies when unset.
	Temperature *float64 `json:"temperature,omitempty"`

	// MaxTokens caps the number of tokens to generate. Optional.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// Stream switches the response to server-sent events.
	Stream bool `json:"stream,omitempty"`

	// User is an opaque end-user identifier. Accepted for SDK
	// compatibility; the gateway does not interpret it.
	User string `json:"user,omitempty"`
}

// Message represents a single turn in the conversation history.
type Message struct {
	// Role is the author of the turn: "system", "user", or "assistant".
	Role string `json:"role"`

	// Content is the turn content. Usually a string; OpenAI SDKs may send
	// an array of typed parts for multimodal input, so this stays untyped
	// until prompt building flattens it.
	Content interface{} `json:"content"`

	// Name is an optional author name for this turn.
	Name string `json:"name,omitempty"`
}

// Validate checks that the request is well-formed. It returns a
// *ValidationError naming the offending field, or nil. An empty model is
// legal here; the handler substitutes the default model before resolution.
func (r *ChatCompletionRequest) Validate() error {
	if len(r.Messages) == 0 {
		return &ValidationError{
			Field:   "messages",
			Message: "messages cannot be empty",
		}
	}

	for i, msg := range r.Messages {
		if msg.Role == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("messages[%d].role", i),
				Message: "every message needs a role",
			}
		}
		if msg.Content == nil {
			return &ValidationError{
				Field:   fmt.Sprintf("messages[%d].content", i),
				Message: "every message needs content",
			}
		}
	}

	if r.Temperature != nil && (*r.Temperature < 0 || *r.Temperature > 2) {
		return &ValidationError{
			Field:   "temperature",
			Message: "temperature out of range, expected 0 to 2",
		}
	}

	if r.MaxTokens != nil && *r.MaxTokens <= 0 {
		return &ValidationError{
			Field:   "max_tokens",
			Message: "max_tokens must be a positive integer",
		}
	}

	return nil
}

// ValidationError reports the first well-formedness failure found in a
// request body.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the message alone; the field travels separately as the
// error response param.
func (e *ValidationError) Error() string {
	return e.Message
}
