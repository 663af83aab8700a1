package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"casetrack/pkg/requestcontext"
	"casetrack/pkg/testutil"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*JWTClaims, error) {
	return s.claims, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequireAuth(t *testing.T) {
	userID := uuid.NewString()
	valid := stubValidator{claims: &JWTClaims{UserID: userID, Email: "a@x.com", Role: "citizen"}}

	var seenEmail string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenEmail = requestcontext.Email(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("missing header is 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireAuth(valid, discardLogger())(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token is 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/dashboard/", nil)
		req.Header.Set("Authorization", "Bearer bad")
		RequireAuth(stubValidator{err: errors.New("bad")}, discardLogger())(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token attaches principal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/dashboard/", nil)
		req.Header.Set("Authorization", "Bearer good")
		RequireAuth(valid, discardLogger())(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "a@x.com", seenEmail)
	})
}

func TestOptionalAuth(t *testing.T) {
	var authenticated bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authenticated = requestcontext.IsAuthenticated(r.Context())
	})

	rec := httptest.NewRecorder()
	OptionalAuth(stubValidator{}, discardLogger())(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?q=OB/1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, authenticated)
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	valid := func(role string) stubValidator {
		return stubValidator{claims: &JWTClaims{UserID: uuid.NewString(), Email: "o@x.com", Role: role}}
	}

	for _, tc := range []struct {
		role string
		want int
	}{
		{"officer", http.StatusOK},
		{"citizen", http.StatusForbidden},
	} {
		t.Run(tc.role, func(t *testing.T) {
			h := RequireAuth(valid(tc.role), discardLogger())(RequireRole("officer", discardLogger())(next))
			req := httptest.NewRequest(http.MethodGet, "/cases/", nil)
			req.Header.Set("Authorization", "Bearer token")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRequireRoleReadsPrincipalFromContext(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RequireRole("officer", discardLogger())(next)

	officer := testutil.WithOfficer(httptest.NewRequest(http.MethodGet, "/cases/", nil), "o@police.go.ke")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, officer)
	assert.Equal(t, http.StatusOK, rec.Code)

	citizen := testutil.WithCitizen(httptest.NewRequest(http.MethodGet, "/cases/", nil), "c@example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, citizen)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
