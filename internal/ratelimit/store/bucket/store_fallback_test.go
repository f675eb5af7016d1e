package bucket

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docverify/internal/ratelimit/models"
	"docverify/pkg/platform/circuit"
)

type flakyStore struct {
	err   error
	calls int
}

func (f *flakyStore) Allow(_ context.Context, _ string, limit int, _ time.Duration) (*models.RateLimitResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.RateLimitResult{Allowed: true, Limit: limit, Remaining: limit - 1}, nil
}

func TestFallbackBucketStore(t *testing.T) {
	ctx := context.Background()
	// The breaker stamps its open time from the wall clock.
	now := time.Now()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	newStore := func(primary *flakyStore) *FallbackBucketStore {
		s, err := NewFallbackBucketStore(primary,
			WithFallbackLogger(quiet),
			WithFallbackClock(func() time.Time { return now }),
			WithBreaker(circuit.New("test",
				circuit.WithFailureThreshold(2),
				circuit.WithSuccessThreshold(1),
				circuit.WithCooldown(time.Minute))),
		)
		require.NoError(t, err)
		return s
	}

	t.Run("requires a primary", func(t *testing.T) {
		_, err := NewFallbackBucketStore(nil)
		assert.Error(t, err)
	})

	t.Run("healthy primary answers", func(t *testing.T) {
		primary := &flakyStore{}
		s := newStore(primary)

		res, err := s.Allow(ctx, "ip:a", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 1, primary.calls)
		assert.False(t, s.Degraded())
	})

	t.Run("primary errors are absorbed and limits still enforced", func(t *testing.T) {
		primary := &flakyStore{err: errors.New("connection refused")}
		s := newStore(primary)

		for range 3 {
			res, err := s.Allow(ctx, "ip:b", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, res.Allowed)
		}
		res, err := s.Allow(ctx, "ip:b", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, res.Allowed, "in-memory window keeps counting")
		assert.True(t, s.Degraded())
		assert.Equal(t, 2, primary.calls, "open breaker stops calling the primary")
	})

	t.Run("a trial call after cooldown closes the breaker", func(t *testing.T) {
		primary := &flakyStore{err: errors.New("timeout")}
		s := newStore(primary)
		for range 2 {
			_, _ = s.Allow(ctx, "ip:c", 10, time.Minute)
		}
		require.True(t, s.Degraded())

		primary.err = nil
		now = now.Add(2 * time.Minute)
		_, err := s.Allow(ctx, "ip:c", 10, time.Minute)
		require.NoError(t, err)
		assert.False(t, s.Degraded())
		assert.Equal(t, 3, primary.calls)
	})

	t.Run("prune clears windows the outage left in memory", func(t *testing.T) {
		local := NewInMemoryBucketStore(WithClock(func() time.Time { return now }))
		s, err := NewFallbackBucketStore(&flakyStore{err: errors.New("down")},
			WithFallbackLogger(quiet),
			WithFallbackStore(local),
		)
		require.NoError(t, err)
		for _, key := range []string{"ip:d", "ip:e", "ip:f"} {
			_, err := s.Allow(ctx, key, 5, time.Minute)
			require.NoError(t, err)
		}
		require.Equal(t, 3, local.Len())

		now = now.Add(2 * time.Minute)
		n, err := s.Prune(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Zero(t, local.Len())
	})
}
