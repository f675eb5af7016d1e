package bucket

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"docverify/internal/ratelimit/models"
	"docverify/pkg/platform/circuit"
)

// Limiter is the single-hit contract shared by the bucket stores.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

// Pruner drops emptied windows from a process-local store.
type Pruner interface {
	Prune(ctx context.Context) (int, error)
}

// FallbackBucketStore answers from an in-process store while the primary
// (normally Redis) keeps failing. Limits stay enforced per instance during an
// outage instead of failing every verification.
type FallbackBucketStore struct {
	primary   Limiter
	secondary Limiter
	breaker   *circuit.Breaker
	logger    *slog.Logger
	now       func() time.Time
}

type FallbackOption func(*FallbackBucketStore)

func WithFallbackLogger(logger *slog.Logger) FallbackOption {
	return func(s *FallbackBucketStore) {
		s.logger = logger
	}
}

func WithBreaker(b *circuit.Breaker) FallbackOption {
	return func(s *FallbackBucketStore) {
		s.breaker = b
	}
}

// WithFallbackStore replaces the default in-memory secondary.
func WithFallbackStore(secondary Limiter) FallbackOption {
	return func(s *FallbackBucketStore) {
		s.secondary = secondary
	}
}

func WithFallbackClock(now func() time.Time) FallbackOption {
	return func(s *FallbackBucketStore) {
		s.now = now
	}
}

func NewFallbackBucketStore(primary Limiter, opts ...FallbackOption) (*FallbackBucketStore, error) {
	if primary == nil {
		return nil, errors.New("primary bucket store is required")
	}
	s := &FallbackBucketStore{primary: primary, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.secondary == nil {
		s.secondary = NewInMemoryBucketStore()
	}
	if s.breaker == nil {
		s.breaker = circuit.New("ratelimit-store")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Allow tries the primary unless the breaker is open. A primary error is
// never returned to the caller; the secondary answers instead.
func (s *FallbackBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	if s.breaker.Allow(s.now()) {
		res, err := s.primary.Allow(ctx, key, limit, window)
		if err == nil {
			if _, change := s.breaker.RecordSuccess(); change.Closed {
				s.logger.InfoContext(ctx, "rate limit store recovered", "breaker", s.breaker.Name())
			}
			return res, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		_, change := s.breaker.RecordFailure()
		if change.Opened {
			s.logger.WarnContext(ctx, "rate limit store unavailable, using in-memory windows",
				"breaker", s.breaker.Name(), "error", err)
		} else {
			s.logger.DebugContext(ctx, "rate limit store call failed", "error", err)
		}
	}
	return s.secondary.Allow(ctx, key, limit, window)
}

// Prune clears emptied windows from the secondary. The primary expires its
// own keys.
func (s *FallbackBucketStore) Prune(ctx context.Context) (int, error) {
	if p, ok := s.secondary.(Pruner); ok {
		return p.Prune(ctx)
	}
	return 0, nil
}

// Degraded reports whether calls currently bypass the primary.
func (s *FallbackBucketStore) Degraded() bool {
	return s.breaker.IsOpen()
}
