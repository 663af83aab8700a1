// Package httpapi assembles the chi router shared by every module handler.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"casetrack/internal/platform/metrics"
	"casetrack/internal/platform/middleware"
	"casetrack/pkg/platform/httputil"
	"casetrack/pkg/platform/middleware/admin"
	"casetrack/pkg/platform/middleware/metadata"
	"casetrack/pkg/platform/middleware/request"
	"casetrack/pkg/platform/middleware/requesttime"
)

const (
	defaultRequestTimeout = 30 * time.Second
	healthCheckTimeout    = 2 * time.Second
)

// Registrar is implemented by every module handler.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Config struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	MetricsToken   string
	RequestTimeout time.Duration
	HealthChecks   map[string]HealthCheck
}

// NewRouter wires the global middleware chain, operational endpoints and the
// module handlers.
func NewRouter(cfg Config, handlers ...Registrar) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.LatencyMiddleware(cfg.Metrics))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/healthz", healthHandler(cfg.HealthChecks))

	// /metrics stays closed when no token is configured.
	if cfg.MetricsToken != "" {
		r.Group(func(r chi.Router) {
			r.Use(admin.RequireAdminToken(cfg.MetricsToken, cfg.Logger))
			r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
		})
	}

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
		status := http.StatusOK
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
