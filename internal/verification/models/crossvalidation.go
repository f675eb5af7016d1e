package models

import "time"

type RegistryStatus string

const (
	RegistrySuccess RegistryStatus = "success"
	RegistryFailed  RegistryStatus = "failed"
	RegistryTimeout RegistryStatus = "timeout"
)

// Registry names.
const (
	RegistryPopulation           = "population"
	RegistryBiometric            = "biometric"
	RegistryDocumentAuthenticity = "document_authenticity"
	RegistryPKDCertificateChain  = "pkd_certificate_chain"
)

// CrossValidationResult is one registry's answer.
type CrossValidationResult struct {
	Registry     string         `json:"registry"`
	Status       RegistryStatus `json:"status"`
	IsValid      bool           `json:"isValid"`
	Confidence   float64        `json:"confidence"`
	ResponseTime time.Duration  `json:"responseTimeNs"`
	Error        string         `json:"error,omitempty"`
}

// CrossValidationReport aggregates all registries consulted for one attempt.
// It is advisory and never changes a verification outcome.
type CrossValidationReport struct {
	Results           []CrossValidationResult `json:"results"`
	Succeeded         int                     `json:"succeeded"`
	Failed            int                     `json:"failed"`
	TimedOut          int                     `json:"timedOut"`
	OverallConfidence float64                 `json:"overallConfidence"`
	Consistent        bool                    `json:"consistent"`
}
