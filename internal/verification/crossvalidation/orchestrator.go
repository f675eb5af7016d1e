package crossvalidation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"docverify/internal/verification/metrics"
	"docverify/internal/verification/models"
	"docverify/pkg/platform/circuit"
)

// DefaultTimeout bounds each registry call when no per-registry timeout is set.
const DefaultTimeout = 3 * time.Second

type Orchestrator struct {
	registries []Registry
	breakers   map[string]*circuit.Breaker
	timeout    time.Duration
	timeouts   map[string]time.Duration
	breakerOps []circuit.Option
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	now        func() time.Time
}

type Option func(*Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRegistryTimeout overrides the timeout for a single registry.
func WithRegistryTimeout(name string, d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeouts[name] = d
		}
	}
}

// WithBreakerOptions configures every per-registry circuit breaker.
func WithBreakerOptions(opts ...circuit.Option) Option {
	return func(o *Orchestrator) {
		o.breakerOps = append(o.breakerOps, opts...)
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) {
		o.tracer = t
	}
}

func New(registries []Registry, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		breakers: make(map[string]*circuit.Breaker, len(registries)),
		timeout:  DefaultTimeout,
		timeouts: map[string]time.Duration{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	for _, r := range registries {
		if r == nil {
			return nil, errors.New("nil registry")
		}
		name := r.Name()
		if _, dup := o.breakers[name]; dup {
			return nil, fmt.Errorf("registry %s registered twice", name)
		}
		o.breakers[name] = circuit.New(name, o.breakerOps...)
		o.registries = append(o.registries, r)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer("docverify/crossvalidation")
	}
	return o, nil
}

// Registries lists the configured registry names in call order.
func (o *Orchestrator) Registries() []string {
	names := make([]string, 0, len(o.registries))
	for _, r := range o.registries {
		names = append(names, r.Name())
	}
	return names
}

func (o *Orchestrator) applicable(docType models.DocumentType) []Registry {
	out := make([]Registry, 0, len(o.registries))
	for _, r := range o.registries {
		if r.Name() == models.RegistryPKDCertificateChain && !docType.IsTravel() {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Validate calls every applicable registry concurrently and waits for all
// of them. A slow or failing registry never cancels its siblings.
func (o *Orchestrator) Validate(ctx context.Context, subject Subject) *models.CrossValidationReport {
	ctx, span := o.tracer.Start(ctx, "crossvalidation.validate", trace.WithAttributes(
		attribute.String("document.type", string(subject.DocumentType)),
	))
	defer span.End()

	targets := o.applicable(subject.DocumentType)
	results := make([]models.CrossValidationResult, len(targets))

	var g errgroup.Group
	for i, r := range targets {
		g.Go(func() error {
			results[i] = o.call(ctx, r, subject)
			return nil
		})
	}
	_ = g.Wait()

	report := aggregate(results)
	span.SetAttributes(
		attribute.Int("registries.succeeded", report.Succeeded),
		attribute.Int("registries.failed", report.Failed),
		attribute.Int("registries.timed_out", report.TimedOut),
	)
	return report
}

func (o *Orchestrator) call(ctx context.Context, r Registry, subject Subject) models.CrossValidationResult {
	name := r.Name()
	ctx, span := o.tracer.Start(ctx, "registry."+name)
	defer span.End()

	result := models.CrossValidationResult{Registry: name}
	breaker := o.breakers[name]

	if !breaker.Allow(o.now()) {
		result.Status = models.RegistryFailed
		result.Error = ErrCircuitOpen.Error()
		span.SetStatus(codes.Error, result.Error)
		o.metrics.ObserveRegistryLatency(name, string(result.Status), 0)
		return result
	}

	timeout := o.timeout
	if d, ok := o.timeouts[name]; ok {
		timeout = d
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := r.Validate(callCtx, subject)
	result.ResponseTime = time.Since(start)

	if err == nil && resp == nil {
		err = NewRegistryError(ErrorBadData, name, "empty response", nil)
	}
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) || CategoryOf(err) == ErrorTimeout {
			result.Status = models.RegistryTimeout
			result.Error = "registry timed out"
		} else {
			result.Status = models.RegistryFailed
			result.Error = string(CategoryOf(err))
		}
		if _, change := breaker.RecordFailure(); change.Opened {
			o.logger.WarnContext(ctx, "registry circuit opened", "registry", name)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, result.Error)
		o.logger.DebugContext(ctx, "registry call failed",
			"registry", name,
			"status", result.Status,
			"error", err,
		)
	} else {
		result.Status = models.RegistrySuccess
		result.IsValid = resp.IsValid
		result.Confidence = resp.Confidence
		if _, change := breaker.RecordSuccess(); change.Closed {
			o.logger.InfoContext(ctx, "registry circuit closed", "registry", name)
		}
	}

	o.metrics.ObserveRegistryLatency(name, string(result.Status), result.ResponseTime)
	return result
}

func aggregate(results []models.CrossValidationResult) *models.CrossValidationReport {
	report := &models.CrossValidationReport{Results: results}
	var total float64
	consistent := true
	for _, r := range results {
		switch r.Status {
		case models.RegistrySuccess:
			report.Succeeded++
			total += r.Confidence
			if !r.IsValid {
				consistent = false
			}
		case models.RegistryTimeout:
			report.TimedOut++
		default:
			report.Failed++
		}
	}
	if report.Succeeded > 0 {
		report.OverallConfidence = total / float64(report.Succeeded)
	}
	report.Consistent = consistent && report.Succeeded > 0
	return report
}

// SubjectFromRecord builds the registry subject for a record.
func SubjectFromRecord(r *models.VerificationRecord) Subject {
	return Subject{
		RecordID:         r.ID.String(),
		VerificationCode: r.VerificationCode,
		DocumentType:     r.DocumentType,
		DocumentNumber:   r.DocumentNumber,
		DocumentHash:     r.DocumentHash,
		IssuedAt:         r.IssuedAt,
	}
}
