package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

var (
	corsMethods = strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
	}, ", ")
	corsHeaders = strings.Join([]string{"Accept", "Authorization", "Content-Type", CorrelationIDHeader}, ", ")
	corsExposed = strings.Join([]string{CorrelationIDHeader, "Retry-After"}, ", ")
)

// CORSConfig holds configuration for the CORS middleware.
type CORSConfig struct {
	// AllowedOrigins lists the browser origins of the storefront SPA. "*"
	// allows any origin.
	AllowedOrigins []string

	// AllowCredentials lets the SPA send cookies. With a wildcard origin the
	// request origin is echoed, since browsers reject "*" with credentials.
	AllowCredentials bool

	// MaxAge is how long, in seconds, preflight results may be cached.
	// Defaults to 3600.
	MaxAge int
}

// DefaultCORSConfig allows every origin without credentials. Suitable for
// local development only.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{AllowedOrigins: []string{"*"}, MaxAge: 3600}
}

// CORS returns middleware that handles Cross-Origin Resource Sharing headers
// based on the provided configuration.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 3600
	}
	wildcard := slices.Contains(cfg.AllowedOrigins, "*")
	maxAge := strconv.Itoa(cfg.MaxAge)

	allowOrigin := func(origin string) string {
		switch {
		case wildcard && !cfg.AllowCredentials:
			return "*"
		case origin == "":
			return ""
		case wildcard || slices.Contains(cfg.AllowedOrigins, origin):
			return origin
		default:
			return ""
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			allowed := allowOrigin(r.Header.Get("Origin"))
			if allowed != "*" {
				h.Add("Vary", "Origin")
			}
			if allowed != "" {
				h.Set("Access-Control-Allow-Origin", allowed)
				h.Set("Access-Control-Allow-Methods", corsMethods)
				h.Set("Access-Control-Allow-Headers", corsHeaders)
				h.Set("Access-Control-Expose-Headers", corsExposed)
				h.Set("Access-Control-Max-Age", maxAge)
				if cfg.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}

			// Preflight requests end here.
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
