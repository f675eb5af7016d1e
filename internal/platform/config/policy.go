package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	strutil "docverify/pkg/platform/strings"
)

// FraudPolicy is the optional YAML override for country lists and
// thresholds. Zero values leave the environment configuration untouched.
//
//	high_risk_countries: [XX, YY]
//	allowed_countries: [AA, BB]
//	record_count_threshold: 1000
//	pattern_confidence_min: 0.75
type FraudPolicy struct {
	HighRiskCountries    []string `yaml:"high_risk_countries"`
	AllowedCountries     []string `yaml:"allowed_countries"`
	RecordCountThreshold int64    `yaml:"record_count_threshold"`
	PatternConfidenceMin float64  `yaml:"pattern_confidence_min"`
}

// LoadFraudPolicy reads and decodes a policy file.
func LoadFraudPolicy(path string) (*FraudPolicy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fraud policy: %w", err)
	}
	defer f.Close()

	var policy FraudPolicy
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&policy); err != nil {
		return nil, fmt.Errorf("decode fraud policy %s: %w", path, err)
	}
	return &policy, nil
}

// Apply overlays the policy onto fraud configuration.
func (p *FraudPolicy) Apply(f *Fraud) {
	if p == nil {
		return
	}
	if len(p.HighRiskCountries) > 0 {
		f.HighRiskCountries = strutil.DedupeAndTrimUpper(p.HighRiskCountries)
	}
	if len(p.AllowedCountries) > 0 {
		f.AllowedCountries = strutil.DedupeAndTrimUpper(p.AllowedCountries)
	}
	if p.RecordCountThreshold > 0 {
		f.RecordCountThreshold = p.RecordCountThreshold
	}
	if p.PatternConfidenceMin > 0 {
		f.PatternConfidenceMin = p.PatternConfidenceMin
	}
}
