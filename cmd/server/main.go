package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"casetrack/internal/app"
	"casetrack/internal/audit"
	casesHandler "casetrack/internal/cases/handler"
	dashboardHandler "casetrack/internal/dashboard/handler"
	httpapi "casetrack/internal/http"
	identityHandler "casetrack/internal/identity/handler"
	jwttoken "casetrack/internal/jwt_token"
	"casetrack/internal/platform/config"
	"casetrack/internal/platform/httpserver"
	"casetrack/internal/platform/kafka"
	"casetrack/internal/platform/logger"
	"casetrack/internal/platform/metrics"
	"casetrack/internal/platform/redis"
	rlMetrics "casetrack/internal/ratelimit/metrics"
	rlMiddleware "casetrack/internal/ratelimit/middleware"
	rlModels "casetrack/internal/ratelimit/models"
	"casetrack/internal/ratelimit/store/bucket"
	reportsHandler "casetrack/internal/reports/handler"
	subsHandler "casetrack/internal/subscriptions/handler"
)

const (
	jwtIssuer       = "casetrack"
	jwtAudience     = "casetrack-api"
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env file", "error", err)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	m := metrics.New(prometheus.DefaultRegisterer)

	stores, err := app.OpenStores(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Warn("closing database failed", "error", err)
		}
	}()

	healthChecks := map[string]httpapi.HealthCheck{"database": stores.Ping}

	limiter, redisClient, err := buildRateLimiter(ctx, cfg, log)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		healthChecks["redis"] = redisClient.Health
	}

	publisher, closePublisher, err := buildPublisher(ctx, cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer closePublisher()

	auditPublisher := audit.NewPublisher(1024, log)
	auditWorker := audit.NewWorker(audit.NewTopicSink(publisher, cfg.Kafka.AuditTopic), auditPublisher.Inbox(), log)

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, jwtIssuer, jwtAudience)
	validator := jwttoken.NewMiddlewareValidator(tokens)

	svcs := app.NewServices(stores, app.Deps{
		Logger:             log,
		Metrics:            m,
		Audit:              auditPublisher,
		Publisher:          publisher,
		NotificationsTopic: cfg.Kafka.NotificationsTopic,
		Tokens:             tokens,
		TokenTTL:           cfg.TokenTTL,
	})

	router := httpapi.NewRouter(httpapi.Config{
		Logger:         log,
		Metrics:        m,
		MetricsToken:   cfg.MetricsToken,
		RequestTimeout: cfg.RequestTimeout,
		HealthChecks:   healthChecks,
	},
		casesHandler.New(svcs.Cases, log, validator,
			casesHandler.WithLookupLimiter(limiter.RateLimit(rlModels.ClassLookup))),
		subsHandler.New(svcs.Subscriptions, log, validator),
		dashboardHandler.New(svcs.Dashboard, log, validator),
		reportsHandler.New(svcs.Reports, log, validator,
			reportsHandler.WithLimiter(limiter.RateLimit(rlModels.ClassReport))),
		identityHandler.New(svcs.Identity, log,
			identityHandler.WithLimiter(limiter.RateLimit(rlModels.ClassSignup))),
	)
	srv := httpserver.New(cfg.Addr, router, cfg.RequestTimeout)

	g, gctx := errgroup.WithContext(ctx)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	g.Go(func() error {
		return auditWorker.Run(workerCtx)
	})
	g.Go(func() error {
		log.Info("starting casetrack", "addr", cfg.Addr, "demo_mode", cfg.DemoMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// In-flight requests are done; flush remaining audit events.
		stopWorker()
		return err
	})
	return g.Wait()
}

// buildRateLimiter prefers Redis and keeps an in-memory store as the
// fallback while Redis is failing.
func buildRateLimiter(ctx context.Context, cfg config.Server, log *slog.Logger) (*rlMiddleware.Middleware, *redis.Client, error) {
	limits := []rlMiddleware.Option{
		rlMiddleware.WithDisabled(cfg.RateLimits.Disabled),
		rlMiddleware.WithMetrics(rlMetrics.New(prometheus.DefaultRegisterer)),
		rlMiddleware.WithBreaker(cfg.RateLimits.BreakerFailures, cfg.RateLimits.BreakerCooldown),
		rlMiddleware.WithLimit(rlModels.ClassReport, rlModels.Limit{RequestsPerWindow: cfg.RateLimits.ReportsPerWindow, Window: cfg.RateLimits.Window}),
		rlMiddleware.WithLimit(rlModels.ClassLookup, rlModels.Limit{RequestsPerWindow: cfg.RateLimits.LookupsPerWindow, Window: cfg.RateLimits.Window}),
		rlMiddleware.WithLimit(rlModels.ClassSignup, rlModels.Limit{RequestsPerWindow: cfg.RateLimits.SignupsPerWindow, Window: cfg.RateLimits.Window}),
	}

	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	memory := bucket.NewInMemoryBucketStore()
	if client == nil {
		log.Info("REDIS_URL not set, rate limiting in process memory")
		return rlMiddleware.New(memory, log, limits...), nil, nil
	}
	limits = append(limits, rlMiddleware.WithFallback(memory))
	return rlMiddleware.New(bucket.NewRedisBucketStore(client), log, limits...), client, nil
}

type messagePublisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// buildPublisher connects to Kafka when brokers are configured and falls
// back to logging every record.
func buildPublisher(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger) (messagePublisher, func(), error) {
	if !cfg.Enabled() {
		log.Info("KAFKA_BROKERS not set, events are logged only")
		return kafka.NewLogPublisher(log), func() {}, nil
	}
	producer, err := kafka.NewProducer(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	if err := producer.EnsureTopics(ctx, cfg.AuditTopic, cfg.NotificationsTopic); err != nil {
		producer.Close()
		return nil, nil, err
	}
	return producer, producer.Close, nil
}
