package models

import (
	"encoding/json"
	"strings"
	"time"
)

// RequestMeta describes the client behind an attempt. All fields are optional.
// IPAddress is the peer the server observed and drives rate limiting and
// fraud scoring. ReportedIP is whatever the caller claimed, for example an
// end-user address forwarded by an API client; it is only recorded.
type RequestMeta struct {
	IPAddress         string
	ReportedIP        string
	UserAgent         string
	Location          string
	Country           string
	DeviceFingerprint string
	SessionID         string
	UserID            string
}

// Normalize trims fields and upper-cases the country code.
func (m *RequestMeta) Normalize() {
	m.IPAddress = strings.TrimSpace(m.IPAddress)
	m.ReportedIP = strings.TrimSpace(m.ReportedIP)
	if m.ReportedIP == m.IPAddress {
		m.ReportedIP = ""
	}
	m.UserAgent = strings.TrimSpace(m.UserAgent)
	m.Location = strings.TrimSpace(m.Location)
	m.Country = strings.ToUpper(strings.TrimSpace(m.Country))
	m.DeviceFingerprint = strings.TrimSpace(m.DeviceFingerprint)
	m.SessionID = strings.TrimSpace(m.SessionID)
	m.UserID = strings.TrimSpace(m.UserID)
}

// VerificationRequest is a single-document attempt. Which fields are
// required depends on Method.
type VerificationRequest struct {
	Method           Method
	VerificationCode string
	QRData           string
	DocumentNumber   string
	DocumentType     string
	APIKeyID         string
	APIKeySecret     string
	CrossValidate    bool
	Anonymize        bool
	IncludeHistory   bool
	Meta             RequestMeta
}

// BatchDocument identifies one document inside a batch, by code or by
// number and type.
type BatchDocument struct {
	VerificationCode string
	DocumentNumber   string
	DocumentType     string
}

type BatchRequest struct {
	BatchID   string
	Documents []BatchDocument
	Meta      RequestMeta
}

// RegisterDocumentRequest is sent by the document generation collaborator.
type RegisterDocumentRequest struct {
	DocumentType     string
	DocumentNumber   string
	DocumentData     json.RawMessage
	IssuingOffice    string
	IssuingOfficer   string
	IssuedAt         time.Time
	ExpiryDate       *time.Time
	SecurityFeatures SecurityFeatures
	Hashtags         []string
}

// RegisteredDocument is what the issuer prints on the document.
type RegisteredDocument struct {
	RecordID         string       `json:"recordId"`
	VerificationCode string       `json:"verificationCode"`
	VerificationURL  string       `json:"verificationUrl"`
	DocumentHash     string       `json:"documentHash"`
	DocumentType     DocumentType `json:"documentType"`
	QRPayloads       QRPayloads   `json:"qrPayloads"`
}

// QRPayloads are the three accepted QR encodings of one code.
type QRPayloads struct {
	Bare string `json:"bare"`
	JSON string `json:"json"`
	URL  string `json:"url"`
}

type IntegrityReport struct {
	VerificationCode string `json:"verificationCode"`
	Intact           bool   `json:"intact"`
	StoredHash       string `json:"storedHash"`
	ComputedHash     string `json:"computedHash"`
}
