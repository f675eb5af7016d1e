// Package alerting delivers security alerts through an explicit, bounded
// channel. Producers never block: a full queue drops the alert and counts it.
package alerting

import (
	"time"
)

type Kind string

const (
	KindFraudDetected      Kind = "fraud_detected"
	KindSuspiciousActivity Kind = "suspicious_activity"
	KindRateLimitExceeded  Kind = "rate_limit_exceeded"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is one security notification. Subject identifies what the alert is
// about (a verification code, an anonymised IP, a sweep window) and doubles
// as the partition key on the Kafka sink.
type Alert struct {
	Kind      Kind           `json:"kind"`
	Severity  Severity       `json:"severity"`
	Subject   string         `json:"subject"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
	At        time.Time      `json:"at"`
}
