package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORSPolicy lists what cross-origin callers may do.
type CORSPolicy struct {
	// Origins that may call the gateway. "*" allows any.
	Origins []string

	// Methods and Headers advertised on preflight responses.
	Methods []string
	Headers []string

	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int
}

// AllowLocalTools is the default policy: wide open, since the gateway
// serves loopback tooling rather than public traffic.
func AllowLocalTools() CORSPolicy {
	return CORSPolicy{
		Origins: []string{"*"},
		Methods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		Headers: []string{"Authorization", "Content-Type", RequestIDHeader},
		MaxAge:  3600,
	}
}

func (p CORSPolicy) allows(origin string) bool {
	return slices.Contains(p.Origins, "*") || slices.Contains(p.Origins, origin)
}

// CORS stamps allow headers per the policy and answers preflight OPTIONS
// requests with 204 before they reach the handlers.
func CORS(policy CORSPolicy) func(http.Handler) http.Handler {
	anyOrigin := slices.Contains(policy.Origins, "*")
	methods := strings.Join(policy.Methods, ", ")
	headers := strings.Join(policy.Headers, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case origin != "" && policy.allows(origin):
				w.Header().Set("Access-Control-Allow-Origin", origin)
			case anyOrigin:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}

			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			if methods != "" {
				w.Header().Set("Access-Control-Allow-Methods", methods)
			}
			if headers != "" {
				w.Header().Set("Access-Control-Allow-Headers", headers)
			}
			if policy.MaxAge > 0 {
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(policy.MaxAge))
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
