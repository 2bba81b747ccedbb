package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds configuration for the CORS middleware. The dashboard
// frontend is the only expected cross-origin caller, so the surface is kept
// deliberately small: an origin allow-list plus fixed method and header sets.
type CORSConfig struct {
	// AllowedOrigins lists origins allowed to make cross-origin requests.
	// ["*"] allows every origin.
	AllowedOrigins []string

	// MaxAge indicates how long (in seconds) preflight results may be cached.
	MaxAge int
}

// DefaultCORSConfig returns the default CORS configuration for the given
// origin allow-list.
func DefaultCORSConfig(origins []string) CORSConfig {
	return CORSConfig{
		AllowedOrigins: origins,
		MaxAge:         86400,
	}
}

var (
	corsAllowedMethods = strings.Join([]string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
		http.MethodOptions,
	}, ", ")

	corsAllowedHeaders = strings.Join([]string{
		"Accept",
		"Content-Type",
		"X-Request-ID",
	}, ", ")
)

// CORS returns middleware that handles cross-origin resource sharing for the
// dashboard frontend. Requests from origins not in the allow-list pass
// through without CORS headers; the browser blocks them on the client side.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	maxAgeStr := strconv.Itoa(config.MaxAge)

	originSet := make(map[string]bool, len(config.AllowedOrigins))
	allowAll := false
	for _, origin := range config.AllowedOrigins {
		if origin == "*" {
			allowAll = true
			continue
		}
		originSet[strings.ToLower(origin)] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			// No Origin header means same-origin or non-browser request.
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !allowAll && !originSet[strings.ToLower(origin)] {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Origin")
			if allowAll {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", corsAllowedMethods)
				w.Header().Set("Access-Control-Allow-Headers", corsAllowedHeaders)
				if config.MaxAge > 0 {
					w.Header().Set("Access-Control-Max-Age", maxAgeStr)
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
