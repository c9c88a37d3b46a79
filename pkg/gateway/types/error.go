package types

// ErrorResponse is the envelope every failure travels in, matching the
// {"error": {...}} shape OpenAI SDKs raise typed exceptions from.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail is the inside of the envelope.
type ErrorDetail struct {
	// Message is a human-readable description of the error.
	Message string `json:"message"`

	// Type is the error category, e.g. "invalid_request_error".
	Type string `json:"type"`

	// Param is the request parameter that caused the error, if any.
	Param string `json:"param,omitempty"`

	// Code is a machine-readable marker within the type, if any.
	Code string `json:"code,omitempty"`
}

// Error types in the caller-facing taxonomy. Every failure the gateway can
// produce resolves to exactly one of these.
const (
	// ErrorTypeInvalidRequest covers malformed bodies, failed validation,
	// and model names the alias table cannot resolve.
	ErrorTypeInvalidRequest = "invalid_request_error"

	// ErrorTypeAuthentication covers backend credential failures.
	ErrorTypeAuthentication = "authentication_error"

	// ErrorTypeRateLimit covers backend usage limits and temporary blocks.
	ErrorTypeRateLimit = "rate_limit_error"

	// ErrorTypeUpstream covers failures raised by the Gemini backend:
	// timeouts, transport errors, and anything unclassified.
	ErrorTypeUpstream = "upstream_error"

	// ErrorTypeAPI covers internal gateway errors (panics, write timeouts).
	ErrorTypeAPI = "api_error"
)

// Error codes carried in ErrorDetail.Code. Codes refine the type; an
// unclassified upstream failure carries no code at all.
const (
	// ErrorCodeAuth marks a backend authentication failure.
	ErrorCodeAuth = "auth_error"

	// ErrorCodeRateLimit marks a backend usage limit or temporary block.
	ErrorCodeRateLimit = "rate_limit"

	// ErrorCodeModelInvalid marks a model the backend itself rejected.
	ErrorCodeModelInvalid = "model_invalid"

	// ErrorCodeInvalidModel marks a model name the gateway's alias table
	// could not resolve. Distinct from ErrorCodeModelInvalid: this failure
	// happens before the backend is ever contacted.
	ErrorCodeInvalidModel = "invalid_model"

	// ErrorCodeTimeout marks a backend invocation that exceeded its deadline.
	ErrorCodeTimeout = "timeout"

	// ErrorCodeGemini marks a generic Gemini failure with no finer class.
	ErrorCodeGemini = "gemini_error"
)

// NewErrorResponse creates an error response with the given details.
func NewErrorResponse(message, errorType, param, code string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Message: message,
			Type:    errorType,
			Param:   param,
			Code:    code,
		},
	}
}

// NewInvalidRequestError creates a 400-class error response.
func NewInvalidRequestError(message, param, code string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeInvalidRequest, param, code)
}

// NewAuthenticationError creates a 401-class error response.
func NewAuthenticationError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeAuthentication, "", ErrorCodeAuth)
}

// NewRateLimitError creates a 429-class error response.
func NewRateLimitError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeRateLimit, "", ErrorCodeRateLimit)
}

// NewUpstreamError creates a 502-class error response. An empty code is
// legal and means the failure could not be classified further.
func NewUpstreamError(message, code string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeUpstream, "", code)
}

// NewServerError creates a 500-class error response for internal failures.
func NewServerError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeAPI, "", "")
}

// HTTPStatusCode returns the HTTP status code matching the error type.
func (e *ErrorDetail) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeInvalidRequest:
		return 400
	case ErrorTypeAuthentication:
		return 401
	case ErrorTypeRateLimit:
		return 429
	case ErrorTypeUpstream:
		return 502
	case ErrorTypeAPI:
		return 500
	default:
		return 500
	}
}
