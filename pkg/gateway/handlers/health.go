package handlers

import (
	"net/http"

	"github.com/w93163red/LivCap-Translate/pkg/gateway"
)

// ReadyReporter reports backend session readiness without blocking.
type ReadyReporter interface {
	Ready() bool
}

// HealthHandler answers liveness probes. The gateway itself is alive
// whenever it can answer; client_ready reports whether the shared
// backend session is initialized and live.
type HealthHandler struct {
	sessions ReadyReporter
}

// NewHealthHandler creates a health probe handler.
func NewHealthHandler(sessions ReadyReporter) *HealthHandler {
	return &HealthHandler{sessions: sessions}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "health checks only accept GET", http.StatusMethodNotAllowed)
		return
	}

	_ = gateway.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"client_ready": h.sessions.Ready(),
	})
}
