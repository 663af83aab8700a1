// Package admin guards operator-only endpoints such as /metrics with a static token.
package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	request "casetrack/pkg/platform/middleware/request"
)

// HeaderAdminToken carries the operator token for manual calls. Scrapers
// may send the same token as a bearer credential instead.
const HeaderAdminToken = "X-Admin-Token"

// RequireAdminToken compares the presented token against expectedToken in
// constant time.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := presentedToken(r)
			if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"path", r.URL.Path,
					"request_id", request.GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin token required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func presentedToken(r *http.Request) string {
	if token := r.Header.Get(HeaderAdminToken); token != "" {
		return token
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
