package fraud

import (
	"context"
	"strings"

	"github.com/mssola/useragent"
)

// PatternScore is a scorer's confidence that an attempt looks like ordinary
// client behaviour, in [0,1], with the signals that lowered it.
type PatternScore struct {
	Confidence float64
	Signals    []string
	Profile    map[string]any
}

// PatternScorer rates how ordinary an attempt looks.
type PatternScorer interface {
	Score(ctx context.Context, subject Subject) PatternScore
}

// RuleBasedScorer derives confidence from the user agent, the device
// fingerprint and the session's recent volume.
type RuleBasedScorer struct {
	// SessionVolume is the per-session attempt count treated as heavy use.
	SessionVolume int
}

func NewRuleBasedScorer() *RuleBasedScorer {
	return &RuleBasedScorer{SessionVolume: 20}
}

const (
	patternMissingUserAgent   = "missing_user_agent"
	patternAutomatedClient    = "automated_client"
	patternUnknownBrowser     = "unrecognised_browser"
	patternMissingFingerprint = "missing_device_fingerprint"
	patternUserAgentChanged   = "user_agent_changed"
	patternHighSessionVolume  = "high_session_volume"
)

var penalties = map[string]float64{
	patternMissingUserAgent:   0.5,
	patternAutomatedClient:    0.5,
	patternUnknownBrowser:     0.15,
	patternMissingFingerprint: 0.1,
	patternUserAgentChanged:   0.2,
	patternHighSessionVolume:  0.15,
}

func (r *RuleBasedScorer) Score(_ context.Context, subject Subject) PatternScore {
	var signals []string
	profile := map[string]any{}

	raw := strings.TrimSpace(subject.Meta.UserAgent)
	if raw == "" {
		signals = append(signals, patternMissingUserAgent)
	} else {
		ua := useragent.New(raw)
		name, version := ua.Browser()
		profile["browser"] = name
		profile["browser_version"] = version
		profile["os"] = ua.OS()
		profile["mobile"] = ua.Mobile()
		profile["bot"] = ua.Bot()

		switch {
		case ua.Bot():
			signals = append(signals, patternAutomatedClient)
		case name == "":
			signals = append(signals, patternUnknownBrowser)
		}
	}

	if strings.TrimSpace(subject.Meta.DeviceFingerprint) == "" {
		signals = append(signals, patternMissingFingerprint)
	}

	if s := subject.Session; s != nil {
		if raw != "" && s.UserAgent != "" && s.UserAgent != raw {
			signals = append(signals, patternUserAgentChanged)
		}
		volume := r.SessionVolume
		if volume <= 0 {
			volume = 20
		}
		if s.CurrentVerifications >= volume {
			signals = append(signals, patternHighSessionVolume)
		}
		profile["session_verifications"] = s.CurrentVerifications
	}

	confidence := 1.0
	for _, sig := range signals {
		confidence -= penalties[sig]
	}
	confidence = max(0, min(1, confidence))
	profile["confidence"] = confidence

	return PatternScore{Confidence: confidence, Signals: signals, Profile: profile}
}
