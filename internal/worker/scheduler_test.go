package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_RejectsInvalidJobs(t *testing.T) {
	s := New()
	noop := func(context.Context, time.Time) error { return nil }

	assert.Error(t, s.Register("", time.Second, noop))
	assert.Error(t, s.Register("sweep", 0, noop))
	assert.Error(t, s.Register("sweep", time.Second, nil))
	assert.NoError(t, s.Register("sweep", time.Second, noop))
}

func TestRun_TicksUntilCancelled(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return fixed }))

	var runs atomic.Int32
	var seen atomic.Value
	require.NoError(t, s.Register("sessions", 5*time.Millisecond, func(_ context.Context, now time.Time) error {
		seen.Store(now)
		runs.Add(1)
		return nil
	}))
	var failing atomic.Int32
	require.NoError(t, s.Register("fraud", 5*time.Millisecond, func(context.Context, time.Time) error {
		failing.Add(1)
		return errors.New("history unavailable")
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return runs.Load() >= 3 && failing.Load() >= 3
	}, time.Second, 5*time.Millisecond, "jobs keep their schedule after failures")

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
	assert.Equal(t, fixed, seen.Load())
}

func TestRun_NoJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, New().Run(ctx), context.Canceled)
}
