//go:build integration

package bucket_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"casetrack/internal/ratelimit/store/bucket"
	"casetrack/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *bucket.RedisBucketStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = bucket.NewRedisBucketStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

// TestConcurrentAllow verifies the shared counter admits exactly limit requests.
func (s *RedisStoreSuite) TestConcurrentAllow() {
	ctx := context.Background()
	const (
		limit      = 10
		goroutines = 50
	)
	var wg sync.WaitGroup
	var allowed, denied atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.store.Allow(ctx, "casetrack:rl:report:ip:10.0.0.1", limit, time.Minute)
			if err != nil {
				return
			}
			if result.Allowed {
				allowed.Add(1)
			} else {
				denied.Add(1)
			}
		}()
	}
	wg.Wait()
	s.Equal(int32(limit), allowed.Load())
	s.Equal(int32(goroutines-limit), denied.Load())
}

func (s *RedisStoreSuite) TestWindowExpiry() {
	ctx := context.Background()
	key := "casetrack:rl:lookup:ip:10.0.0.2"

	first, err := s.store.Allow(ctx, key, 1, time.Second)
	s.Require().NoError(err)
	s.True(first.Allowed)

	second, err := s.store.Allow(ctx, key, 1, time.Second)
	s.Require().NoError(err)
	s.False(second.Allowed)
	s.GreaterOrEqual(second.RetryAfter, 1)

	s.Eventually(func() bool {
		r, err := s.store.Allow(ctx, key, 1, time.Second)
		return err == nil && r.Allowed
	}, 5*time.Second, 200*time.Millisecond)
}

func (s *RedisStoreSuite) TestReset() {
	ctx := context.Background()
	key := "casetrack:rl:signup:ip:10.0.0.3"
	_, err := s.store.Allow(ctx, key, 1, time.Minute)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Reset(ctx, key))

	r, err := s.store.Allow(ctx, key, 1, time.Minute)
	s.Require().NoError(err)
	s.True(r.Allowed)
}
