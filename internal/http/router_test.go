package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casetrack/internal/platform/metrics"
	"casetrack/pkg/platform/middleware/request"
	"casetrack/pkg/requestcontext"
	"casetrack/pkg/testutil"
)

type pingHandler struct{}

func (pingHandler) Register(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if requestcontext.RequestID(ctx) == "" || requestcontext.Now(ctx).IsZero() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func newRouter(checks map[string]HealthCheck) http.Handler {
	reg := prometheus.NewRegistry()
	return NewRouter(Config{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:      metrics.New(reg),
		Gatherer:     reg,
		MetricsToken: "ops-token",
		HealthChecks: checks,
	}, pingHandler{})
}

func TestRouterAppliesRequestContext(t *testing.T) {
	rr := testutil.DoRequest(newRouter(nil), testutil.NewRequest(t, http.MethodGet, "/ping"))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(request.HeaderRequestID))
}

func TestHealthz(t *testing.T) {
	t.Run("all dependencies up", func(t *testing.T) {
		router := newRouter(map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
		})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[healthResponse](t, rr)
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "ok", resp.Checks["postgres"])
	})

	t.Run("one dependency down", func(t *testing.T) {
		router := newRouter(map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		resp := testutil.UnmarshalResponse[healthResponse](t, rr)
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "unavailable", resp.Checks["redis"])
		assert.NotContains(t, rr.Body.String(), "connection refused")
	})
}

func TestMetricsRequiresToken(t *testing.T) {
	router := newRouter(nil)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/ping"))
	req := testutil.NewRequest(t, http.MethodGet, "/metrics")
	req.Header.Set("X-Admin-Token", "ops-token")
	rr = testutil.DoRequest(router, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "casetrack_http_requests_total")
}
