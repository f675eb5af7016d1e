package alerting

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"docverify/pkg/requestcontext"
)

// DefaultBufferSize is the queue capacity when none is configured.
const DefaultBufferSize = 256

// Sink receives alerts drained from the dispatcher.
type Sink interface {
	Deliver(ctx context.Context, alert Alert) error
}

// Dispatcher owns the alert queue. Publish is safe for concurrent use; Run
// must be called exactly once.
type Dispatcher struct {
	queue   chan Alert
	sinks   []Sink
	logger  *slog.Logger
	metrics *Metrics
	dropped atomic.Int64
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

func WithBufferSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan Alert, n)
		}
	}
}

func NewDispatcher(sinks []Sink, opts ...Option) (*Dispatcher, error) {
	if len(sinks) == 0 {
		return nil, errors.New("at least one alert sink is required")
	}
	d := &Dispatcher{
		queue: make(chan Alert, DefaultBufferSize),
		sinks: sinks,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d, nil
}

// Publish enqueues alert without blocking. It returns false when the queue
// is full and the alert was dropped.
func (d *Dispatcher) Publish(ctx context.Context, alert Alert) bool {
	if alert.At.IsZero() {
		alert.At = requestcontext.Now(ctx)
	}
	if alert.RequestID == "" {
		alert.RequestID = requestcontext.RequestID(ctx)
	}
	select {
	case d.queue <- alert:
		d.metrics.incPublished(alert.Kind)
		d.metrics.setDepth(len(d.queue))
		return true
	default:
		d.dropped.Add(1)
		d.metrics.incDropped(alert.Kind)
		d.logger.WarnContext(ctx, "alert queue full, dropping alert",
			"kind", alert.Kind,
			"subject", alert.Subject,
		)
		return false
	}
}

// Dropped returns the number of alerts dropped since start.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Run delivers queued alerts until ctx is cancelled, then flushes what is
// already queued using a short grace period.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.flush()
			return ctx.Err()
		case alert := <-d.queue:
			d.metrics.setDepth(len(d.queue))
			d.deliver(ctx, alert)
		}
	}
}

func (d *Dispatcher) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		select {
		case alert := <-d.queue:
			d.deliver(ctx, alert)
		default:
			d.metrics.setDepth(0)
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, alert Alert) {
	for _, sink := range d.sinks {
		if err := sink.Deliver(ctx, alert); err != nil {
			d.metrics.incSinkFailure()
			d.logger.ErrorContext(ctx, "alert delivery failed",
				"kind", alert.Kind,
				"subject", alert.Subject,
				"error", err,
			)
		}
	}
}
