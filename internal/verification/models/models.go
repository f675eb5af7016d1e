// Package models holds the verification domain entities.
package models

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	id "docverify/pkg/domain"
	dErrors "docverify/pkg/domain-errors"
)

// DocumentType is the closed catalog of issuable documents.
type DocumentType string

const (
	DocumentPassport            DocumentType = "passport"
	DocumentNationalID          DocumentType = "national_id"
	DocumentDriversLicense      DocumentType = "drivers_license"
	DocumentResidencePermit     DocumentType = "residence_permit"
	DocumentVisa                DocumentType = "visa"
	DocumentTravelDocument      DocumentType = "travel_document"
	DocumentBirthCertificate    DocumentType = "birth_certificate"
	DocumentMarriageCertificate DocumentType = "marriage_certificate"
	DocumentDeathCertificate    DocumentType = "death_certificate"
	DocumentAcademicCertificate DocumentType = "academic_certificate"
	DocumentBusinessLicense     DocumentType = "business_license"
	DocumentPoliceClearance     DocumentType = "police_clearance"
)

var documentTypes = []DocumentType{
	DocumentPassport,
	DocumentNationalID,
	DocumentDriversLicense,
	DocumentResidencePermit,
	DocumentVisa,
	DocumentTravelDocument,
	DocumentBirthCertificate,
	DocumentMarriageCertificate,
	DocumentDeathCertificate,
	DocumentAcademicCertificate,
	DocumentBusinessLicense,
	DocumentPoliceClearance,
}

// DocumentTypes returns the catalog in a stable order.
func DocumentTypes() []DocumentType {
	return slices.Clone(documentTypes)
}

func (t DocumentType) IsValid() bool {
	return slices.Contains(documentTypes, t)
}

// IsTravel reports whether the type carries an ICAO chip and PKD chain.
func (t DocumentType) IsTravel() bool {
	switch t {
	case DocumentPassport, DocumentVisa, DocumentTravelDocument:
		return true
	}
	return false
}

func (t DocumentType) String() string { return string(t) }

// ParseDocumentType normalises and validates a document type name.
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return "", dErrors.New(dErrors.CodeValidation, "document type is required")
	}
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "unknown document type: "+string(t))
	}
	return t, nil
}

// SecurityFeatures names the physical and digital protections of a document.
type SecurityFeatures map[string]bool

// VerificationRecord is an issued document as known to the engine.
// Records are never deleted; revocation is terminal.
type VerificationRecord struct {
	ID                id.RecordID
	VerificationCode  string
	DocumentHash      string
	DocumentType      DocumentType
	DocumentNumber    string
	DocumentData      json.RawMessage
	IssuingOffice     string
	IssuingOfficer    string
	IssuedAt          time.Time
	ExpiryDate        *time.Time
	VerificationCount int64
	LastVerifiedAt    *time.Time
	IsActive          bool
	RevokedAt         *time.Time
	RevocationReason  string
	SecurityFeatures  SecurityFeatures
	Hashtags          []string
}

func (r *VerificationRecord) IsRevoked() bool {
	return r.RevokedAt != nil
}

// IsExpired reports whether the expiry date lies strictly before now.
func (r *VerificationRecord) IsExpired(now time.Time) bool {
	return r.ExpiryDate != nil && r.ExpiryDate.Before(now)
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (r *VerificationRecord) Clone() *VerificationRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.DocumentData = slices.Clone(r.DocumentData)
	c.Hashtags = slices.Clone(r.Hashtags)
	c.ExpiryDate = cloneTime(r.ExpiryDate)
	c.LastVerifiedAt = cloneTime(r.LastVerifiedAt)
	c.RevokedAt = cloneTime(r.RevokedAt)
	if r.SecurityFeatures != nil {
		c.SecurityFeatures = make(SecurityFeatures, len(r.SecurityFeatures))
		for k, v := range r.SecurityFeatures {
			c.SecurityFeatures[k] = v
		}
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

type SessionStatus string

const (
	SessionActive  SessionStatus = "active"
	SessionExpired SessionStatus = "expired"
)

// VerificationSession groups attempts from one client.
type VerificationSession struct {
	SessionID            id.SessionID
	IPAddress            string
	UserAgent            string
	UserID               string
	Status               SessionStatus
	CurrentVerifications int
	CreatedAt            time.Time
	LastActivity         time.Time
}

func (s *VerificationSession) IsActive() bool {
	return s.Status == SessionActive
}

// Method is the verification modality.
type Method string

const (
	MethodManualEntry    Method = "manual_entry"
	MethodQRScan         Method = "qr_scan"
	MethodDocumentLookup Method = "document_lookup"
	MethodAPI            Method = "api"
	MethodBatch          Method = "batch"
)

func (m Method) IsValid() bool {
	switch m {
	case MethodManualEntry, MethodQRScan, MethodDocumentLookup, MethodAPI, MethodBatch:
		return true
	}
	return false
}

// HistoryEntry is one immutable verification attempt.
type HistoryEntry struct {
	ID                   id.HistoryID
	VerificationRecordID *id.RecordID
	VerificationMethod   Method
	SessionID            *id.SessionID
	IPAddress            string
	UserAgent            string
	Location             string
	IsSuccessful         bool
	ErrorCode            ErrorCode
	FraudIndicators      []string
	BehavioralAnalysis   map[string]any
	AnomalyDetection     map[string]any
	CreatedAt            time.Time
}

// APIKey grants programmatic verification access within a monthly quota.
type APIKey struct {
	ID           id.APIKeyID
	Name         string
	SecretHash   string
	IsActive     bool
	MonthlyLimit int64
	CurrentUsage int64
	PeriodStart  time.Time
	PeriodEnd    time.Time
	CreatedAt    time.Time
}

// RollPeriod advances the quota period until it contains now, resetting usage
// whenever a period boundary is crossed.
func (k *APIKey) RollPeriod(now time.Time) {
	for !now.Before(k.PeriodEnd) {
		k.PeriodStart = k.PeriodEnd
		k.PeriodEnd = k.PeriodStart.AddDate(0, 1, 0)
		k.CurrentUsage = 0
	}
}
