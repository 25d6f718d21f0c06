package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// BearerAuth guards the admin surface with a constant-time token check.
func BearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) || subtle.ConstantTimeCompare([]byte(auth[len(prefix):]), []byte(token)) != 1 {
				httpError(w, http.StatusUnauthorized, "authentication_error", "invalid or missing bearer token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// verifyPIN compares the submitted PIN against the configured one in
// constant time. An empty configured PIN always fails, which disables
// private mode.
func verifyPIN(configured, submitted string) bool {
	if configured == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(submitted)) == 1
}
