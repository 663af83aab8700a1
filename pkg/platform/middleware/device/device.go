// Package device classifies the calling client from its User-Agent.
package device

import (
	"log/slog"
	"net/http"

	"github.com/mssola/useragent"

	"casetrack/pkg/requestcontext"
)

// Class is a coarse client category used as a metrics label. It never
// identifies the reporter.
type Class string

const (
	ClassDesktop Class = "desktop"
	ClassMobile  Class = "mobile"
	ClassBot     Class = "bot"
	ClassUnknown Class = "unknown"
)

// Classify maps a raw User-Agent to a Class.
func Classify(userAgent string) Class {
	if userAgent == "" {
		return ClassUnknown
	}
	ua := useragent.New(userAgent)
	switch {
	case ua.Bot():
		return ClassBot
	case ua.Mobile():
		return ClassMobile
	default:
		return ClassDesktop
	}
}

// RejectBots refuses requests from self-identified crawlers. It reads the
// User-Agent stored by the metadata middleware.
func RejectBots(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if Classify(requestcontext.UserAgent(ctx)) == ClassBot {
				logger.WarnContext(ctx, "rejected automated client",
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"automated submissions are not accepted"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
