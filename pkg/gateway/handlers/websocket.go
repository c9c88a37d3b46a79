package handlers

import (
	"net/http"

	"github.com/w93163red/LivCap-Translate/pkg/gateway"
	"github.com/w93163red/LivCap-Translate/pkg/gateway/types"
)

// WebSocketHandler answers the websocket upgrade path with a pointer back
// to SSE. The gateway streams over Server-Sent Events only; clients that
// probe for a websocket transport get a 501 naming the alternative.
type WebSocketHandler struct{}

// NewWebSocketHandler creates the stub handler.
func NewWebSocketHandler() *WebSocketHandler {
	return &WebSocketHandler{}
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := types.NewErrorResponse(
		"websocket transport is not supported, stream over SSE by setting stream=true",
		types.ErrorTypeInvalidRequest,
		"",
		"not_implemented",
	)
	_ = gateway.RespondJSON(w, http.StatusNotImplemented, resp)
}
