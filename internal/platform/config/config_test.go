package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Run("demo mode fills defaults", func(t *testing.T) {
		t.Setenv("DEMO_MODE", "true")
		t.Setenv("JWT_SIGNING_KEY", "")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.NotEmpty(t, cfg.JWTSigningKey)
		assert.Equal(t, 12*time.Hour, cfg.TokenTTL)
		assert.Equal(t, 5, cfg.RateLimits.ReportsPerWindow)
		assert.Equal(t, time.Minute, cfg.RateLimits.Window)
		assert.False(t, cfg.Kafka.Enabled())
	})

	t.Run("signing key required outside demo mode", func(t *testing.T) {
		t.Setenv("DEMO_MODE", "")
		t.Setenv("JWT_SIGNING_KEY", "")

		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("parses brokers and overrides", func(t *testing.T) {
		t.Setenv("JWT_SIGNING_KEY", "k")
		t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,,")
		t.Setenv("RATE_LIMIT_REPORTS", "2")
		t.Setenv("TOKEN_TTL", "30m")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
		assert.True(t, cfg.Kafka.Enabled())
		assert.Equal(t, 2, cfg.RateLimits.ReportsPerWindow)
		assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	})

	t.Run("rejects malformed numbers", func(t *testing.T) {
		t.Setenv("JWT_SIGNING_KEY", "k")
		t.Setenv("RATE_LIMIT_WINDOW", "soon")

		_, err := FromEnv()
		require.Error(t, err)
	})
}
