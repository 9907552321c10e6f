package api

import (
	"net/http"
	"strings"
)

// RequireMasterKey returns a middleware that requires the master key for
// mutating routes. If masterKey is empty, auth is disabled (dev mode).
func RequireMasterKey(masterKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if masterKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := extractBearer(r)
			if token != masterKey {
				respondError(w, http.StatusUnauthorized, "invalid or missing master key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractBearer(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return auth[7:]
	}
	return auth
}
