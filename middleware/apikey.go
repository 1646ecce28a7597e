package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"radio-artwork-go/logcolors"

	log "github.com/sirupsen/logrus"
)

type apiKeyContextKey struct{}

// IsAuthenticated reports whether the request carried a valid X-API-Key
func IsAuthenticated(ctx context.Context) bool {
	ok, _ := ctx.Value(apiKeyContextKey{}).(bool)
	return ok
}

// ValidAPIKey compares a provided key against the configured one in constant time.
// An empty configured key never matches.
func ValidAPIKey(provided, configured string) bool {
	if provided == "" || configured == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(configured)) == 1
}

// isPublicPath matches exact paths, or prefixes for entries ending with *
func isPublicPath(path string, publicPaths []string) bool {
	for _, p := range publicPaths {
		if prefix, ok := strings.CutSuffix(p, "*"); ok {
			if strings.HasPrefix(path, prefix) {
				return true
			}
			continue
		}
		if p == path {
			return true
		}
	}
	return false
}

// APIKeyMiddleware marks requests carrying a valid X-API-Key as authenticated.
// When required is true, requests to non-public paths without a valid key get 401.
// If required is true but apiKey is empty, requests are let through with a warning.
func APIKeyMiddleware(apiKey string, required bool, publicPaths []string) func(http.Handler) http.Handler {
	if required && apiKey == "" {
		log.Warnf("%s API key required but not configured, allowing all requests", logcolors.LogAPIKey)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			providedKey := r.Header.Get("X-API-Key")
			if ValidAPIKey(providedKey, apiKey) {
				ctx := context.WithValue(r.Context(), apiKeyContextKey{}, true)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if !required || apiKey == "" || isPublicPath(r.URL.Path, publicPaths) {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			if providedKey == "" {
				log.Warnf("%s Missing API key from %s for %s", logcolors.LogAPIKey, ClientIP(r), r.URL.Path)
				w.Write([]byte(`{"error":"API key required","message":"Provide a valid API key via X-API-Key header"}`))
				return
			}
			log.Warnf("%s Invalid API key from %s for %s", logcolors.LogAPIKey, ClientIP(r), r.URL.Path)
			w.Write([]byte(`{"error":"Invalid API key","message":"The provided API key is not valid"}`))
		})
	}
}
