package models

import (
	"encoding/json"
	"time"
)

// PublicRecord is the record view returned to verifiers.
type PublicRecord struct {
	DocumentType      DocumentType     `json:"documentType"`
	DocumentNumber    string           `json:"documentNumber"`
	IssuingOffice     string           `json:"issuingOffice"`
	IssuingOfficer    string           `json:"issuingOfficer"`
	IssuedAt          time.Time        `json:"issuedAt"`
	ExpiryDate        *time.Time       `json:"expiryDate,omitempty"`
	VerificationCount int64            `json:"verificationCount"`
	LastVerifiedAt    *time.Time       `json:"lastVerifiedAt,omitempty"`
	IsActive          bool             `json:"isActive"`
	RevokedAt         *time.Time       `json:"revokedAt,omitempty"`
	RevocationReason  string           `json:"revocationReason,omitempty"`
	SecurityFeatures  SecurityFeatures `json:"securityFeatures,omitempty"`
	Hashtags          []string         `json:"hashtags,omitempty"`
	DocumentData      json.RawMessage  `json:"documentData,omitempty"`
}

// HistoryView is the public shape of a history entry.
type HistoryView struct {
	Method       Method    `json:"method"`
	IsSuccessful bool      `json:"isSuccessful"`
	ErrorCode    ErrorCode `json:"errorCode,omitempty"`
	Location     string    `json:"location,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// VerificationResult is the terminal outcome of one attempt. Errors are
// carried in ErrorCode; the Go error return is reserved for programming
// mistakes.
type VerificationResult struct {
	IsValid          bool                   `json:"isValid"`
	Message          string                 `json:"message"`
	ErrorCode        ErrorCode              `json:"errorCode,omitempty"`
	Method           Method                 `json:"method"`
	VerificationCode string                 `json:"verificationCode,omitempty"`
	Record           *PublicRecord          `json:"record,omitempty"`
	FraudAssessment  *FraudAssessment       `json:"fraudAssessment,omitempty"`
	CrossValidation  *CrossValidationReport `json:"crossValidation,omitempty"`
	History          []HistoryView          `json:"history,omitempty"`
	SessionID        string                 `json:"sessionId,omitempty"`
	RetryAfter       int                    `json:"retryAfterSeconds,omitempty"`
	VerifiedAt       time.Time              `json:"verifiedAt"`
}

// BatchResult carries one result per submitted document, in order.
type BatchResult struct {
	BatchID      string               `json:"batchId"`
	IsValid      bool                 `json:"isValid"`
	Message      string               `json:"message"`
	ErrorCode    ErrorCode            `json:"errorCode,omitempty"`
	Total        int                  `json:"total"`
	ValidCount   int                  `json:"validCount"`
	InvalidCount int                  `json:"invalidCount"`
	Results      []VerificationResult `json:"results"`
	SessionID    string               `json:"sessionId,omitempty"`
	VerifiedAt   time.Time            `json:"verifiedAt"`
}
