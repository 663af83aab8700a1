// Package requesttime captures one "now" per request so created_at values,
// audit timestamps and dashboard reads within a request agree.
package requesttime

import (
	"net/http"
	"time"

	"casetrack/pkg/requestcontext"
)

// Middleware stores the request start time in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
