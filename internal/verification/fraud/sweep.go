package fraud

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"time"

	"docverify/internal/alerting"
	"docverify/internal/verification/ports"
	id "docverify/pkg/domain"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/privacy"
)

// AlertPublisher accepts alerts without blocking.
type AlertPublisher interface {
	Publish(ctx context.Context, alert alerting.Alert) bool
}

// SweepReport summarises one pass over the recent history window.
type SweepReport struct {
	WindowStart   time.Time
	WindowEnd     time.Time
	Attempts      int
	Failures      int
	BurstIPs      []string
	SpreadRecords []string
	FailureRatio  float64
	Alerts        int
}

// Sweeper looks for abuse patterns across many attempts. It only reads
// history and publishes alerts.
type Sweeper struct {
	history   ports.HistoryStore
	publisher AlertPublisher
	policy    Policy
	logger    *slog.Logger
}

func NewSweeper(history ports.HistoryStore, publisher AlertPublisher, policy Policy, logger *slog.Logger) (*Sweeper, error) {
	if history == nil {
		return nil, errors.New("history store is required")
	}
	if publisher == nil {
		return nil, errors.New("alert publisher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{history: history, publisher: publisher, policy: policy, logger: logger}, nil
}

func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (*SweepReport, error) {
	start := now.Add(-s.policy.SweepWindow)
	entries, err := s.history.ListSince(ctx, start)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read history window")
	}

	report := &SweepReport{WindowStart: start, WindowEnd: now, Attempts: len(entries)}
	perIP := map[string]int{}
	ipsPerRecord := map[id.RecordID]map[string]struct{}{}

	for _, e := range entries {
		if !e.IsSuccessful {
			report.Failures++
		}
		if e.IPAddress != "" {
			perIP[e.IPAddress]++
		}
		if e.VerificationRecordID != nil && e.IPAddress != "" {
			set := ipsPerRecord[*e.VerificationRecordID]
			if set == nil {
				set = map[string]struct{}{}
				ipsPerRecord[*e.VerificationRecordID] = set
			}
			set[e.IPAddress] = struct{}{}
		}
	}

	for _, ip := range slices.Sorted(maps.Keys(perIP)) {
		n := perIP[ip]
		if n <= s.policy.IPThreshold {
			continue
		}
		masked := privacy.AnonymizeIP(ip)
		report.BurstIPs = append(report.BurstIPs, masked)
		s.publish(ctx, report, alerting.Alert{
			Kind:     alerting.KindSuspiciousActivity,
			Severity: alerting.SeverityWarning,
			Subject:  masked,
			Message:  "verification burst from a single address",
			Details:  map[string]any{"pattern": "ip_burst", "attempts": n, "window": s.policy.SweepWindow.String()},
			At:       now,
		})
	}

	for recordID, ips := range ipsPerRecord {
		if len(ips) < s.policy.DistinctIPThreshold {
			continue
		}
		subject := recordID.String()
		report.SpreadRecords = append(report.SpreadRecords, subject)
		s.publish(ctx, report, alerting.Alert{
			Kind:     alerting.KindSuspiciousActivity,
			Severity: alerting.SeverityWarning,
			Subject:  subject,
			Message:  "document verified from many addresses",
			Details:  map[string]any{"pattern": "distributed_verification", "distinct_ips": len(ips)},
			At:       now,
		})
	}
	slices.Sort(report.SpreadRecords)

	if report.Attempts > 0 {
		report.FailureRatio = float64(report.Failures) / float64(report.Attempts)
	}
	if report.Attempts >= s.policy.MinAttemptsForRatio && report.FailureRatio > s.policy.FailureRatioThreshold {
		s.publish(ctx, report, alerting.Alert{
			Kind:     alerting.KindSuspiciousActivity,
			Severity: alerting.SeverityCritical,
			Subject:  "window:" + start.UTC().Format(time.RFC3339),
			Message:  "high verification failure ratio",
			Details: map[string]any{
				"pattern":  "failure_ratio",
				"attempts": report.Attempts,
				"failures": report.Failures,
				"ratio":    report.FailureRatio,
			},
			At: now,
		})
	}

	s.logger.InfoContext(ctx, "fraud sweep completed",
		"attempts", report.Attempts,
		"failures", report.Failures,
		"burst_ips", len(report.BurstIPs),
		"spread_records", len(report.SpreadRecords),
		"alerts", report.Alerts,
	)
	return report, nil
}

func (s *Sweeper) publish(ctx context.Context, report *SweepReport, alert alerting.Alert) {
	if s.publisher.Publish(ctx, alert) {
		report.Alerts++
	}
}
