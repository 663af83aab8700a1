package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	rlMetrics "casetrack/internal/ratelimit/metrics"
	"casetrack/internal/ratelimit/models"
	"casetrack/pkg/platform/httputil"
	"casetrack/pkg/requestcontext"
)

// BucketStore counts requests per key.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

type Middleware struct {
	primary  BucketStore
	fallback BucketStore
	breaker  *storeBreaker
	limits   map[models.EndpointClass]models.Limit
	logger   *slog.Logger
	metrics  *rlMetrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// WithFallback sets the store used while the primary store is failing.
func WithFallback(store BucketStore) Option {
	return func(m *Middleware) {
		m.fallback = store
	}
}

func WithMetrics(m *rlMetrics.Metrics) Option {
	return func(mw *Middleware) {
		mw.metrics = m
	}
}

// WithBreaker sets how many consecutive primary store errors switch checks
// to the fallback and how long to wait before probing the primary again.
func WithBreaker(failureThreshold int, cooldown time.Duration) Option {
	return func(m *Middleware) {
		m.breaker = newStoreBreaker(failureThreshold, cooldown)
	}
}

// WithLimit overrides the limit for one endpoint class.
func WithLimit(class models.EndpointClass, limit models.Limit) Option {
	return func(m *Middleware) {
		m.limits[class] = limit
	}
}

func New(primary BucketStore, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		primary: primary,
		breaker: newStoreBreaker(5, 10*time.Second),
		limits: map[models.EndpointClass]models.Limit{
			models.ClassReport: {RequestsPerWindow: 5, Window: time.Minute},
			models.ClassLookup: {RequestsPerWindow: 60, Window: time.Minute},
			models.ClassSignup: {RequestsPerWindow: 10, Window: time.Minute},
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit limits requests per client IP for the endpoint class.
// Store failures fail open unless a fallback store is configured.
func (m *Middleware) RateLimit(class models.EndpointClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)
			result, degraded, err := m.check(ctx, class, ip)
			if err != nil {
				m.metrics.IncrementStoreErrors()
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"error", err,
					"class", string(class),
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if degraded {
				m.metrics.IncrementFallbackChecks()
				w.Header().Set("X-RateLimit-Status", "degraded")
			}
			m.metrics.RecordDecision(string(class), result.Allowed)
			if !result.Allowed {
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"class", string(class),
					"request_id", requestcontext.RequestID(ctx),
				)
				writeRateLimitExceeded(w, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) check(ctx context.Context, class models.EndpointClass, ip string) (*models.RateLimitResult, bool, error) {
	limit, ok := m.limits[class]
	if !ok {
		return &models.RateLimitResult{Allowed: true}, false, nil
	}
	key := models.NewIPKey(class, ip)

	if m.fallback == nil {
		result, err := m.primary.Allow(ctx, key, limit.RequestsPerWindow, limit.Window)
		return result, false, err
	}

	if m.breaker.usePrimary() {
		result, err := m.primary.Allow(ctx, key, limit.RequestsPerWindow, limit.Window)
		if err == nil {
			if m.breaker.success() {
				m.logger.InfoContext(ctx, "rate limit store recovered")
			}
			return result, false, nil
		}
		if m.breaker.failure() {
			m.logger.WarnContext(ctx, "rate limit store failing, using in-memory fallback", "error", err)
		}
	}
	result, err := m.fallback.Allow(ctx, key, limit.RequestsPerWindow, limit.Window)
	return result, true, err
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	if result == nil || result.Limit == 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:            "rate_limited",
		ErrorDescription: "Too many requests from this IP address. Please try again later.",
		RetryAfter:       result.RetryAfter,
	})
}
