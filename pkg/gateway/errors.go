package gateway

import (
	"context"
	"errors"

	"github.com/w93163red/LivCap-Translate/pkg/backend"
	"github.com/w93163red/LivCap-Translate/pkg/gateway/types"
	"github.com/w93163red/LivCap-Translate/pkg/limits"
	"github.com/w93163red/LivCap-Translate/pkg/models"
)

// MapError converts any error raised on the request path into a
// caller-facing error response. The mapping is total: request errors and
// unknown model names become invalid_request_error, exhausted daily caps
// join backend rate limits as rate_limit_error, the typed backend errors
// map onto their fixed outcomes, and anything unclassified falls through
// to a bare upstream_error with no code. No error is ever dropped.
func MapError(err error) *types.ErrorResponse {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Response()
	}

	var unknownModel *models.UnknownModelError
	if errors.As(err, &unknownModel) {
		return types.NewInvalidRequestError(unknownModel.Error(), "model", types.ErrorCodeInvalidModel)
	}

	var exceededErr *limits.ExceededError
	if errors.As(err, &exceededErr) {
		return types.NewRateLimitError(exceededErr.Error())
	}

	var authErr *backend.AuthError
	if errors.As(err, &authErr) {
		return types.NewAuthenticationError(authErr.Error())
	}

	var rateLimitErr *backend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return types.NewRateLimitError(rateLimitErr.Error())
	}

	var modelErr *backend.ModelInvalidError
	if errors.As(err, &modelErr) {
		return types.NewInvalidRequestError(modelErr.Error(), "model", types.ErrorCodeModelInvalid)
	}

	var timeoutErr *backend.TimeoutError
	if errors.As(err, &timeoutErr) {
		return types.NewUpstreamError(timeoutErr.Error(), types.ErrorCodeTimeout)
	}

	var upstreamErr *backend.UpstreamError
	if errors.As(err, &upstreamErr) {
		return types.NewUpstreamError(upstreamErr.Error(), types.ErrorCodeGemini)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewUpstreamError(err.Error(), types.ErrorCodeTimeout)
	}

	return types.NewUpstreamError(err.Error(), "")
}
