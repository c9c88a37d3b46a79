package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// statusRecorder remembers the status code a handler wrote. Flush passes
// through so SSE streaming keeps working under the middleware chain.
type statusRecorder struct {
	http.ResponseWriter
	code  int
	wrote bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.wrote {
		return
	}
	sr.code = code
	sr.wrote = true
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.wrote {
		sr.WriteHeader(http.StatusOK)
	}
	return sr.ResponseWriter.Write(b)
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Logging emits one structured line per request: method, path, status,
// latency, and correlation ID. The level tracks the status class, so a
// quiet log means a healthy gateway: INFO below 400, WARN for 4xx, ERROR
// for 5xx.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		began := time.Now()
		sr := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

		slog.DebugContext(r.Context(), "request received",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestIDFrom(r.Context()),
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(sr, r)

		level := slog.LevelInfo
		switch {
		case sr.code >= 500:
			level = slog.LevelError
		case sr.code >= 400:
			level = slog.LevelWarn
		}

		slog.Log(r.Context(), level, "request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sr.code,
			"latency_ms", time.Since(began).Milliseconds(),
			"request_id", RequestIDFrom(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}
