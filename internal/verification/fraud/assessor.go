// Package fraud scores verification attempts and sweeps recent history for
// abuse patterns.
package fraud

import (
	"context"
	"errors"
	"log/slog"

	"docverify/internal/verification/metrics"
	"docverify/internal/verification/models"
	"docverify/internal/verification/ports"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/sentinel"
	"docverify/pkg/requestcontext"
)

// Subject is everything the assessor knows about one attempt. Record and
// Session may be nil.
type Subject struct {
	Meta    models.RequestMeta
	Session *models.VerificationSession
	Record  *models.VerificationRecord
}

// Assessment is the scored attempt plus the behavioural profile that is
// stored with the history entry.
type Assessment struct {
	*models.FraudAssessment
	Profile map[string]any
	Anomaly map[string]any
}

type Assessor struct {
	history ports.HistoryStore
	scorer  PatternScorer
	policy  Policy
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Assessor)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Assessor) {
		a.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Assessor) {
		a.metrics = m
	}
}

func WithPolicy(p Policy) Option {
	return func(a *Assessor) {
		a.policy = p
	}
}

func WithScorer(scorer PatternScorer) Option {
	return func(a *Assessor) {
		a.scorer = scorer
	}
}

func NewAssessor(history ports.HistoryStore, opts ...Option) (*Assessor, error) {
	if history == nil {
		return nil, errors.New("history store is required")
	}
	a := &Assessor{
		history: history,
		scorer:  NewRuleBasedScorer(),
		policy:  DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a, nil
}

// Assess scores one attempt. Store failures are returned; the caller decides
// whether to fail closed.
func (a *Assessor) Assess(ctx context.Context, subject Subject) (*Assessment, error) {
	now := requestcontext.Now(ctx)
	var signals []string
	anomaly := map[string]any{}

	if ip := subject.Meta.IPAddress; ip != "" {
		n, err := a.history.CountByIPSince(ctx, ip, now.Add(-a.policy.IPLookback))
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count ip attempts")
		}
		anomaly["ip_attempts"] = n
		if n > a.policy.IPThreshold {
			signals = append(signals, SignalHighIPFrequency)
		}
	}

	if a.policy.isHighRisk(subject.Meta.Country) {
		signals = append(signals, SignalHighRiskCountry)
	}
	if a.policy.notAllowed(subject.Meta.Country) {
		signals = append(signals, SignalCountryNotAllowed)
	}

	if s := subject.Session; s != nil && s.CurrentVerifications > a.policy.SessionMax {
		signals = append(signals, SignalSessionLimitExceeded)
	}

	if r := subject.Record; r != nil {
		if r.VerificationCount > a.policy.RecordCountThreshold {
			signals = append(signals, SignalExcessiveRecordUse)
		}
		latest, err := a.history.LatestForRecord(ctx, r.ID)
		switch {
		case err == nil:
			since := now.Sub(latest.CreatedAt)
			anomaly["seconds_since_last_verification"] = int(since.Seconds())
			if since >= 0 && since < a.policy.RapidWindow {
				signals = append(signals, SignalRapidReverification)
			}
		case errors.Is(err, sentinel.ErrNotFound):
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load latest history")
		}
	}

	pattern := a.scorer.Score(ctx, subject)
	if pattern.Confidence < a.policy.PatternConfidenceMin {
		signals = append(signals, SignalLowPatternConfidence)
	}

	fa := build(signals, pattern)
	a.metrics.ObserveRisk(fa.RiskScore, string(fa.RiskLevel))
	if fa.RiskLevel != models.RiskLow {
		a.logger.InfoContext(ctx, "elevated fraud risk",
			"risk_score", fa.RiskScore,
			"risk_level", fa.RiskLevel,
			"indicators", fa.FraudIndicators,
		)
	}
	return &Assessment{FraudAssessment: fa, Profile: pattern.Profile, Anomaly: anomaly}, nil
}

func build(signals []string, pattern PatternScore) *models.FraudAssessment {
	fa := &models.FraudAssessment{
		FraudIndicators:      []string{},
		BehavioralAnomalies:  []string{},
		GeoTemporalAnomalies: []string{},
		SuspiciousPatterns:   append([]string{}, pattern.Signals...),
		RecommendedActions:   []string{},
		PatternConfidence:    pattern.Confidence,
	}
	score := 0
	for _, sig := range signals {
		score += Weight(sig)
		fa.FraudIndicators = append(fa.FraudIndicators, sig)
		switch sig {
		case SignalHighRiskCountry, SignalCountryNotAllowed, SignalRapidReverification:
			fa.GeoTemporalAnomalies = append(fa.GeoTemporalAnomalies, sig)
		default:
			fa.BehavioralAnomalies = append(fa.BehavioralAnomalies, sig)
		}
	}
	fa.RiskScore = ClampScore(score)
	fa.RiskLevel = LevelFor(fa.RiskScore)
	fa.RecommendedActions = ActionsFor(fa.RiskLevel)
	return fa
}

// ClampScore bounds a raw additive score to [0,100].
func ClampScore(score int) int {
	return max(0, min(100, score))
}

// LevelFor maps a clamped score to its risk level.
func LevelFor(score int) models.RiskLevel {
	switch {
	case score >= 90:
		return models.RiskCritical
	case score >= 70:
		return models.RiskHigh
	case score >= 40:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func ActionsFor(level models.RiskLevel) []string {
	switch level {
	case models.RiskCritical:
		return []string{ActionBlockVerification, ActionEscalateSecurityTeam}
	case models.RiskHigh:
		return []string{ActionSecondaryVerification, ActionManualReview}
	case models.RiskMedium:
		return []string{ActionEnhancedLogging}
	default:
		return []string{}
	}
}
