package middleware

import (
	"crypto/subtle"
	"net/http"
)

const AdminSecretHeader = "X-Admin-Secret"

// AdminSecret gates a route on the X-Admin-Secret header. An empty secret
// disables the route entirely.
func AdminSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			given := r.Header.Get(AdminSecretHeader)
			if secret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
				GetLogger(r.Context()).Warn("admin request rejected", "client_ip", GetClientIP(r))
				respondUnauthorized(w, r, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
