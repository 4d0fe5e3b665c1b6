package api

import (
	"net/http"
	"strings"

	"github.com/leca/menudesk/internal/notify"
)

// AuthMiddleware returns middleware that validates the Bearer token.
// If token is empty, any request carrying a Bearer token is accepted.
// If token is non-empty, the Bearer token must match exactly.
func AuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const prefix = "Bearer "
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, prefix) {
				Unauthorized(w)
				return
			}
			bearerValue := authHeader[len(prefix):]
			if bearerValue == "" || (token != "" && bearerValue != token) {
				Unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NoticeMiddleware attaches a notify.Collector to the request context so
// handlers can return the notices raised while serving it.
func NoticeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, _ := notify.WithCollector(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
