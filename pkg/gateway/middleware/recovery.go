package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/w93163red/LivCap-Translate/pkg/gateway/types"
)

// Recovery converts handler panics into a 500 in the wire error format.
// The panic value and stack go to the log, never to the client.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			slog.ErrorContext(r.Context(), "handler panicked",
				"panic", rec,
				"request_id", RequestIDFrom(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(types.NewServerError(
				"The gateway hit an internal error while handling this request.",
			))
		}()

		next.ServeHTTP(w, r)
	})
}
