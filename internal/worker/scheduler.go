// Package worker runs periodic maintenance jobs (session expiry, fraud
// pattern sweeps) until the process context is cancelled.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// JobFunc performs one pass of a periodic job.
type JobFunc func(ctx context.Context, now time.Time) error

type job struct {
	name     string
	interval time.Duration
	fn       JobFunc
}

// Scheduler runs registered jobs on independent tickers. A failing pass is
// logged and the job keeps its schedule.
type Scheduler struct {
	jobs   []job
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Scheduler)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithClock overrides the time passed to each job.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Register adds a job. Jobs must be registered before Run.
func (s *Scheduler) Register(name string, interval time.Duration, fn JobFunc) error {
	if name == "" {
		return errors.New("job name is required")
	}
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}
	if fn == nil {
		return fmt.Errorf("job %s: function is required", name)
	}
	s.jobs = append(s.jobs, job{name: name, interval: interval, fn: fn})
	return nil
}

// Jobs lists registered job names in registration order.
func (s *Scheduler) Jobs() []string {
	names := make([]string, 0, len(s.jobs))
	for _, j := range s.jobs {
		names = append(names, j.name)
	}
	return names
}

// Run blocks until ctx is cancelled and every job goroutine has returned.
func (s *Scheduler) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, j := range s.jobs {
		wg.Go(func() {
			s.loop(ctx, j)
		})
	}
	s.logger.InfoContext(ctx, "worker scheduler started", "jobs", len(s.jobs))
	<-ctx.Done()
	wg.Wait()
	return ctx.Err()
}

func (s *Scheduler) loop(ctx context.Context, j job) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx, j)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, j job) {
	start := time.Now()
	if err := j.fn(ctx, s.now()); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.ErrorContext(ctx, "worker job failed", "job", j.name, "error", err)
		return
	}
	s.logger.DebugContext(ctx, "worker job completed", "job", j.name, "duration", time.Since(start))
}
