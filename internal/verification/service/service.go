// Package service is the verification engine: it routes each attempt through
// validation, rate limiting, record resolution, fraud scoring, lifecycle
// checks and optional cross-validation, and records the outcome.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"docverify/internal/alerting"
	"docverify/internal/verification/codegen"
	"docverify/internal/verification/crossvalidation"
	"docverify/internal/verification/fraud"
	"docverify/internal/verification/metrics"
	"docverify/internal/verification/models"
	"docverify/internal/verification/ports"
	"docverify/internal/verification/session"
	id "docverify/pkg/domain"
)

const (
	DefaultBatchMax     = 50
	DefaultHistoryLimit = 10
	batchConcurrency    = 8
)

// Sessions attaches attempts to sessions and enforces the verification caps.
type Sessions interface {
	Attach(ctx context.Context, meta models.RequestMeta) (*models.VerificationSession, error)
	CheckRateLimit(ctx context.Context, ip string, sess *models.VerificationSession) (*session.RateLimitDecision, error)
	Remaining(sess *models.VerificationSession) int
}

type FraudAssessor interface {
	Assess(ctx context.Context, subject fraud.Subject) (*fraud.Assessment, error)
}

type CrossValidator interface {
	Validate(ctx context.Context, subject crossvalidation.Subject) *models.CrossValidationReport
}

type HistoryLogger interface {
	Log(ctx context.Context, entry *models.HistoryEntry)
	RecentForRecord(ctx context.Context, recordID id.RecordID, limit int) ([]models.HistoryView, error)
}

// APIKeyAccess authenticates a key and consumes one unit of its quota.
type APIKeyAccess interface {
	Access(ctx context.Context, keyID, secret string) (*models.APIKey, error)
}

type AlertPublisher = fraud.AlertPublisher

type Service struct {
	records   ports.RecordStore
	sessions  Sessions
	fraud     FraudAssessor
	history   HistoryLogger
	generator *codegen.Generator

	apiKeys   APIKeyAccess
	validator CrossValidator
	alerts    AlertPublisher
	reporter  ports.ErrorReporter

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer

	batchMax       int
	historyLimit   int
	requestTimeout time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAPIKeys enables the api modality. Without it every api attempt is
// denied.
func WithAPIKeys(a APIKeyAccess) Option {
	return func(s *Service) {
		s.apiKeys = a
	}
}

func WithCrossValidator(v CrossValidator) Option {
	return func(s *Service) {
		s.validator = v
	}
}

func WithAlerts(p AlertPublisher) Option {
	return func(s *Service) {
		s.alerts = p
	}
}

func WithErrorReporter(r ports.ErrorReporter) Option {
	return func(s *Service) {
		s.reporter = r
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func WithBatchMax(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchMax = n
		}
	}
}

// WithHistoryLimit caps the entries returned when a result includes history.
func WithHistoryLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// WithRequestTimeout bounds a whole verification, cross-validation included.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.requestTimeout = d
	}
}

func New(
	records ports.RecordStore,
	sessions Sessions,
	assessor FraudAssessor,
	history HistoryLogger,
	generator *codegen.Generator,
	opts ...Option,
) (*Service, error) {
	if records == nil {
		return nil, errors.New("record store is required")
	}
	if sessions == nil {
		return nil, errors.New("session manager is required")
	}
	if assessor == nil {
		return nil, errors.New("fraud assessor is required")
	}
	if history == nil {
		return nil, errors.New("history logger is required")
	}
	if generator == nil {
		return nil, errors.New("code generator is required")
	}

	s := &Service{
		records:      records,
		sessions:     sessions,
		fraud:        assessor,
		history:      history,
		generator:    generator,
		batchMax:     DefaultBatchMax,
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("docverify/verification")
	}
	return s, nil
}

func (s *Service) report(ctx context.Context, err error, attrs ...any) {
	if s.reporter != nil {
		s.reporter.Report(ctx, err, attrs...)
		return
	}
	s.logger.ErrorContext(ctx, "verification infrastructure error", append(attrs, "error", err)...)
}

func (s *Service) publish(ctx context.Context, alert alerting.Alert) {
	if s.alerts != nil {
		s.alerts.Publish(ctx, alert)
	}
}
