package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"casetrack/internal/ratelimit/models"
)

// RedisBucketStore is a fixed-window limiter shared by every instance.
// The first INCR in a window sets the expiry; later ones only count.
type RedisBucketStore struct {
	client redis.Cmdable
}

func NewRedisBucketStore(client redis.Cmdable) *RedisBucketStore {
	return &RedisBucketStore{client: client}
}

func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		ttl = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis rate limit %s: %w", key, err)
	}

	count := int(incr.Val())
	remainingTTL := ttl.Val()
	if remainingTTL <= 0 {
		remainingTTL = window
	}
	resetAt := time.Now().Add(remainingTTL)

	if count <= limit {
		return &models.RateLimitResult{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit - count,
			ResetAt:   resetAt,
		}, nil
	}
	return &models.RateLimitResult{
		Allowed:    false,
		Limit:      limit,
		Remaining:  0,
		ResetAt:    resetAt,
		RetryAfter: retryAfterSeconds(remainingTTL),
	}, nil
}

func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis reset %s: %w", key, err)
	}
	return nil
}
