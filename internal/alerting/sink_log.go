package alerting

import (
	"context"
	"log/slog"
)

// LogSink writes alerts as structured log lines.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Deliver(ctx context.Context, alert Alert) error {
	level := slog.LevelWarn
	if alert.Severity == SeverityCritical {
		level = slog.LevelError
	}
	attrs := []any{
		"kind", alert.Kind,
		"severity", alert.Severity,
		"subject", alert.Subject,
		"at", alert.At,
		"log_type", "security_alert",
	}
	if alert.RequestID != "" {
		attrs = append(attrs, "request_id", alert.RequestID)
	}
	if len(alert.Details) > 0 {
		attrs = append(attrs, "details", alert.Details)
	}
	s.logger.Log(ctx, level, alert.Message, attrs...)
	return nil
}
