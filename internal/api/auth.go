package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// BearerAuth checks requests against the configured API key. An empty
// key disables the check entirely, which is the demo default.
func BearerAuth(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) || subtle.ConstantTimeCompare([]byte(auth[len(prefix):]), []byte(key)) != 1 {
				w.Header().Set("WWW-Authenticate", "Bearer")
				httpError(w, http.StatusUnauthorized, "authentication_error", "invalid or missing bearer token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
