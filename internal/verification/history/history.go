// Package history records every verification attempt. Writes are best
// effort: a failed write is reported and never changes the outcome.
package history

import (
	"context"
	"errors"
	"log/slog"

	"docverify/internal/verification/metrics"
	"docverify/internal/verification/models"
	"docverify/internal/verification/ports"
	id "docverify/pkg/domain"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/requestcontext"
)

type Logger struct {
	history  ports.HistoryStore
	reporter ports.ErrorReporter
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Logger)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Logger) {
		l.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Logger) {
		l.metrics = m
	}
}

func WithErrorReporter(r ports.ErrorReporter) Option {
	return func(l *Logger) {
		l.reporter = r
	}
}

func New(history ports.HistoryStore, opts ...Option) (*Logger, error) {
	if history == nil {
		return nil, errors.New("history store is required")
	}
	l := &Logger{history: history}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.reporter == nil {
		l.reporter = NewLogReporter(l.logger)
	}
	return l, nil
}

// Log appends entry. Session counters are reserved by the rate limiter
// before the attempt runs, not here.
func (l *Logger) Log(ctx context.Context, entry *models.HistoryEntry) {
	if entry.ID == (id.HistoryID{}) {
		entry.ID = id.NewHistoryID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = requestcontext.Now(ctx)
	}

	if err := l.history.Append(ctx, entry); err != nil {
		l.metrics.IncrementHistoryWriteFailures()
		l.reporter.Report(ctx, err,
			"operation", "history_append",
			"method", entry.VerificationMethod,
			"error_code", entry.ErrorCode,
		)
	}
}

// RecentForRecord returns up to limit public history views, newest first.
func (l *Logger) RecentForRecord(ctx context.Context, recordID id.RecordID, limit int) ([]models.HistoryView, error) {
	entries, err := l.history.ListByRecord(ctx, recordID, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification history")
	}
	views := make([]models.HistoryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, models.HistoryView{
			Method:       e.VerificationMethod,
			IsSuccessful: e.IsSuccessful,
			ErrorCode:    e.ErrorCode,
			Location:     e.Location,
			CreatedAt:    e.CreatedAt,
		})
	}
	return views, nil
}

// LogReporter reports infrastructure errors as error-level log lines.
type LogReporter struct {
	logger *slog.Logger
}

func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Report(ctx context.Context, err error, attrs ...any) {
	attrs = append(attrs, "error", err)
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}
	r.logger.ErrorContext(ctx, "infrastructure error", attrs...)
}
