//go:build integration

package bucket_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"docverify/internal/ratelimit/models"
	"docverify/internal/ratelimit/store/bucket"
	"docverify/pkg/testutil/containers"
)

type RedisBucketStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *bucket.RedisBucketStore
}

func TestRedisBucketStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisBucketStoreSuite))
}

func (s *RedisBucketStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = bucket.NewRedisBucketStore(s.redis.Client)
}

func (s *RedisBucketStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.Reset(context.Background()))
}

func (s *RedisBucketStoreSuite) TestLimitEnforced() {
	ctx := context.Background()
	key := models.VerificationIPKey("192.0.2.50")

	for range 5 {
		res, err := s.store.Allow(ctx, key, 5, time.Hour)
		s.Require().NoError(err)
		s.True(res.Allowed)
	}
	res, err := s.store.Allow(ctx, key, 5, time.Hour)
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.Positive(res.RetryAfter)

	count, err := s.store.GetCurrentCount(ctx, key)
	s.Require().NoError(err)
	s.Equal(5, count)
}

func (s *RedisBucketStoreSuite) TestConcurrentAllowsExactlyLimit() {
	ctx := context.Background()
	key := models.VerificationIPKey("192.0.2.51")
	var allowed atomic.Int32
	var wg sync.WaitGroup
	for range 60 {
		wg.Go(func() {
			res, err := s.store.Allow(ctx, key, 40, time.Hour)
			if err == nil && res.Allowed {
				allowed.Add(1)
			}
		})
	}
	wg.Wait()
	s.Equal(int32(40), allowed.Load())
}

func (s *RedisBucketStoreSuite) TestReset() {
	ctx := context.Background()
	key := models.VerificationIPKey("192.0.2.52")
	_, err := s.store.AllowN(ctx, key, 3, 3, time.Hour)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Reset(ctx, key))

	res, err := s.store.Allow(ctx, key, 3, time.Hour)
	s.Require().NoError(err)
	s.True(res.Allowed)
}
