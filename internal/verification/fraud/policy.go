package fraud

import (
	"slices"
	"strings"
	"time"
)

// Signal names and their additive weights.
const (
	SignalHighIPFrequency      = "high_ip_frequency"
	SignalHighRiskCountry      = "high_risk_country"
	SignalCountryNotAllowed    = "country_not_allowed"
	SignalSessionLimitExceeded = "session_limit_exceeded"
	SignalExcessiveRecordUse   = "excessive_record_verifications"
	SignalRapidReverification  = "rapid_reverification"
	SignalLowPatternConfidence = "low_pattern_confidence"
)

var weights = map[string]int{
	SignalHighIPFrequency:      25,
	SignalHighRiskCountry:      30,
	SignalCountryNotAllowed:    20,
	SignalSessionLimitExceeded: 35,
	SignalExcessiveRecordUse:   15,
	SignalRapidReverification:  20,
	SignalLowPatternConfidence: 40,
}

// Weight returns the score contribution of a signal, or 0 for unknown names.
func Weight(signal string) int {
	return weights[signal]
}

// Recommended actions per risk level.
const (
	ActionBlockVerification     = "block_verification"
	ActionEscalateSecurityTeam  = "escalate_security_team"
	ActionSecondaryVerification = "require_secondary_verification"
	ActionManualReview          = "manual_review"
	ActionEnhancedLogging       = "enhanced_logging"
)

// Policy holds the thresholds used by the assessor and the sweep.
type Policy struct {
	// IPThreshold is the per-IP attempt count over IPLookback above which
	// high_ip_frequency fires.
	IPThreshold          int
	IPLookback           time.Duration
	SessionMax           int
	HighRiskCountries    []string
	AllowedCountries     []string
	RecordCountThreshold int64
	RapidWindow          time.Duration
	PatternConfidenceMin float64

	SweepWindow           time.Duration
	DistinctIPThreshold   int
	FailureRatioThreshold float64
	MinAttemptsForRatio   int
}

func DefaultPolicy() Policy {
	return Policy{
		IPThreshold:           100,
		IPLookback:            24 * time.Hour,
		SessionMax:            50,
		RecordCountThreshold:  1000,
		RapidWindow:           time.Minute,
		PatternConfidenceMin:  0.75,
		SweepWindow:           15 * time.Minute,
		DistinctIPThreshold:   10,
		FailureRatioThreshold: 0.5,
		MinAttemptsForRatio:   20,
	}
}

func (p Policy) isHighRisk(country string) bool {
	return country != "" && slices.Contains(p.HighRiskCountries, strings.ToUpper(country))
}

// notAllowed is false when no allow-list is configured or country is unknown.
func (p Policy) notAllowed(country string) bool {
	if country == "" || len(p.AllowedCountries) == 0 {
		return false
	}
	return !slices.Contains(p.AllowedCountries, strings.ToUpper(country))
}
