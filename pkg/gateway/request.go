package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/w93163red/LivCap-Translate/pkg/gateway/types"
)

// MaxRequestBodySize limits request bodies to 10MB to prevent memory
// exhaustion from oversized payloads.
const MaxRequestBodySize = 10 * 1024 * 1024

// Request error codes carried in the error response Code field.
const (
	CodeInvalidJSON      = "invalid_json"
	CodeRequestTooLarge  = "request_too_large"
	CodeInvalidValue     = "invalid_value"
	CodeMethodNotAllowed = "method_not_allowed"
)

// RequestError represents a failure to parse or validate a request.
// It always maps to an invalid_request_error payload.
type RequestError struct {
	Message string
	Code    string
	Param   string
}

func (e *RequestError) Error() string {
	return e.Message
}

// Response renders the request error as a caller-facing payload.
func (e *RequestError) Response() *types.ErrorResponse {
	return types.NewInvalidRequestError(e.Message, e.Param, e.Code)
}

// DecodeChatRequest reads, decodes, and validates a chat completion
// request body. All failures come back as *RequestError so the caller
// can format them without inspecting causes.
func DecodeChatRequest(r *http.Request) (*types.ChatCompletionRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		return nil, &RequestError{
			Message: fmt.Sprintf("failed to read request body: %v", err),
			Code:    CodeInvalidJSON,
		}
	}

	if len(body) > MaxRequestBodySize {
		return nil, &RequestError{
			Message: fmt.Sprintf("request body exceeds maximum size of %d bytes", MaxRequestBodySize),
			Code:    CodeRequestTooLarge,
			Param:   "body",
		}
	}

	var req types.ChatCompletionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &RequestError{
			Message: fmt.Sprintf("invalid JSON in request body: %v", err),
			Code:    CodeInvalidJSON,
		}
	}

	if err := req.Validate(); err != nil {
		var vErr *types.ValidationError
		if errors.As(err, &vErr) {
			return nil, &RequestError{
				Message: vErr.Message,
				Code:    CodeInvalidValue,
				Param:   vErr.Field,
			}
		}
		return nil, &RequestError{
			Message: err.Error(),
			Code:    CodeInvalidValue,
		}
	}

	return &req, nil
}
