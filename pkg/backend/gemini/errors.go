package gemini

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/w93163red/LivCap-Translate/pkg/backend"
)

// classifyError converts an SDK error into the backend taxonomy. The mapping
// is total: anything unrecognized becomes an *backend.UpstreamError, so no
// failure leaves this package unclassified.
//
// The Gemini API reports bad API keys as 400 INVALID_ARGUMENT rather than
// 401, so the 400 branch inspects the message before deciding.
func classifyError(err error, model string, timeout time.Duration) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &backend.TimeoutError{Timeout: timeout}
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Status
		}
		switch {
		case apiErr.Code == 401 || apiErr.Code == 403:
			return &backend.AuthError{Message: msg}
		case apiErr.Code == 400 && mentionsAPIKey(msg):
			return &backend.AuthError{Message: msg}
		case apiErr.Code == 429:
			return &backend.RateLimitError{Message: msg}
		case apiErr.Code == 404:
			return &backend.ModelInvalidError{Model: model, Message: msg}
		case apiErr.Code == 400 && mentionsModel(msg):
			return &backend.ModelInvalidError{Model: model, Message: msg}
		case apiErr.Code == 504:
			return &backend.TimeoutError{Timeout: timeout}
		default:
			return &backend.UpstreamError{StatusCode: apiErr.Code, Message: msg, Cause: err}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &backend.TimeoutError{Timeout: timeout}
	}

	return &backend.UpstreamError{Message: err.Error(), Cause: err}
}

func mentionsAPIKey(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "api key")
}

func mentionsModel(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "model")
}
