package testutil

import (
	"net/http"

	id "casetrack/pkg/domain"
	"casetrack/pkg/requestcontext"
)

// WithCitizen attaches an authenticated citizen principal to the request,
// as the auth middleware would.
func WithCitizen(req *http.Request, email string) *http.Request {
	return WithPrincipal(req, id.NewUserID(), email, "citizen")
}

// WithOfficer attaches an authenticated officer principal to the request.
func WithOfficer(req *http.Request, email string) *http.Request {
	return WithPrincipal(req, id.NewUserID(), email, "officer")
}

// WithPrincipal attaches an arbitrary principal to the request.
func WithPrincipal(req *http.Request, userID id.UserID, email, role string) *http.Request {
	ctx := requestcontext.WithPrincipal(req.Context(), userID, email, role)
	return req.WithContext(ctx)
}
