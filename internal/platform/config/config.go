package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration for the HTTP server and the
// admin CLI.
type Server struct {
	Addr           string
	DatabaseURL    string
	JWTSigningKey  string
	TokenTTL       time.Duration
	RequestTimeout time.Duration
	MetricsToken   string
	LogLevel       string
	DemoMode       bool
	Redis          RedisConfig
	Kafka          KafkaConfig
	RateLimits     RateLimitConfig
}

// RedisConfig configures the optional Redis client. An empty URL disables
// Redis and the rate limiter falls back to process memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional event publisher. No brokers means
// audit events and notifications stay in process.
type KafkaConfig struct {
	Brokers            []string
	AuditTopic         string
	NotificationsTopic string
	ClientID           string
}

// Enabled reports whether any broker was configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// RateLimitConfig holds per-window limits for each endpoint class.
type RateLimitConfig struct {
	Disabled         bool
	ReportsPerWindow int
	LookupsPerWindow int
	SignupsPerWindow int
	Window           time.Duration
	BreakerFailures  int
	BreakerCooldown  time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:          envOr("CASETRACK_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: os.Getenv("JWT_SIGNING_KEY"),
		MetricsToken:  os.Getenv("METRICS_TOKEN"),
		LogLevel:      envOr("LOG_LEVEL", "info"),
		DemoMode:      os.Getenv("DEMO_MODE") == "true",
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		RateLimits: RateLimitConfig{
			Disabled: os.Getenv("RATE_LIMIT_DISABLED") == "true",
		},
		Kafka: KafkaConfig{
			Brokers:            splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic:         envOr("KAFKA_AUDIT_TOPIC", "casetrack.audit"),
			NotificationsTopic: envOr("KAFKA_NOTIFICATIONS_TOPIC", "casetrack.notifications"),
			ClientID:           envOr("KAFKA_CLIENT_ID", "casetrack"),
		},
	}

	var err error
	if cfg.TokenTTL, err = envDuration("TOKEN_TTL", 12*time.Hour); err != nil {
		return Server{}, err
	}
	if cfg.RequestTimeout, err = envDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Redis.PoolSize, err = envInt("REDIS_POOL_SIZE", 10); err != nil {
		return Server{}, err
	}
	if cfg.Redis.MinIdleConns, err = envInt("REDIS_MIN_IDLE_CONNS", 2); err != nil {
		return Server{}, err
	}
	if cfg.Redis.DialTimeout, err = envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Redis.ReadTimeout, err = envDuration("REDIS_READ_TIMEOUT", 3*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Redis.WriteTimeout, err = envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.RateLimits.ReportsPerWindow, err = envInt("RATE_LIMIT_REPORTS", 5); err != nil {
		return Server{}, err
	}
	if cfg.RateLimits.LookupsPerWindow, err = envInt("RATE_LIMIT_LOOKUPS", 60); err != nil {
		return Server{}, err
	}
	if cfg.RateLimits.SignupsPerWindow, err = envInt("RATE_LIMIT_SIGNUPS", 10); err != nil {
		return Server{}, err
	}
	if cfg.RateLimits.Window, err = envDuration("RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return Server{}, err
	}
	if cfg.RateLimits.BreakerFailures, err = envInt("RATE_LIMIT_BREAKER_FAILURES", 5); err != nil {
		return Server{}, err
	}
	if cfg.RateLimits.BreakerCooldown, err = envDuration("RATE_LIMIT_BREAKER_COOLDOWN", 10*time.Second); err != nil {
		return Server{}, err
	}

	if cfg.JWTSigningKey == "" {
		if !cfg.DemoMode {
			return Server{}, fmt.Errorf("JWT_SIGNING_KEY is required outside demo mode")
		}
		cfg.JWTSigningKey = "demo-signing-key-not-for-production"
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", key, raw)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
