package models

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// FraudAssessment is the scored view of one attempt.
type FraudAssessment struct {
	RiskScore            int       `json:"riskScore"`
	RiskLevel            RiskLevel `json:"riskLevel"`
	FraudIndicators      []string  `json:"fraudIndicators"`
	BehavioralAnomalies  []string  `json:"behavioralAnomalies"`
	GeoTemporalAnomalies []string  `json:"geoTemporalAnomalies"`
	SuspiciousPatterns   []string  `json:"suspiciousPatterns"`
	RecommendedActions   []string  `json:"recommendedActions"`
	PatternConfidence    float64   `json:"patternConfidence"`
}

func (a *FraudAssessment) IsCritical() bool {
	return a != nil && a.RiskLevel == RiskCritical
}
