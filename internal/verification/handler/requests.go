package handler

import (
	"encoding/json"
	"strings"
	"time"

	"docverify/internal/verification/models"
	dErrors "docverify/pkg/domain-errors"
	strutil "docverify/pkg/platform/strings"
)

// ClientFields are the optional client descriptors every verification body
// may carry. Missing values fall back to what the middleware captured.
type ClientFields struct {
	IPAddress         string `json:"ipAddress"`
	UserAgent         string `json:"userAgent"`
	Location          string `json:"location"`
	Country           string `json:"country"`
	DeviceFingerprint string `json:"deviceFingerprint"`
	SessionID         string `json:"sessionId"`
	UserID            string `json:"userId"`
}

type ManualRequest struct {
	VerificationCode string `json:"verificationCode"`
	IncludeHistory   bool   `json:"includeHistory"`
	ClientFields
}

type QRRequest struct {
	QRData         string `json:"qrData"`
	IncludeHistory bool   `json:"includeHistory"`
	ClientFields
}

type LookupRequest struct {
	DocumentNumber string `json:"documentNumber"`
	DocumentType   string `json:"documentType"`
	IncludeHistory bool   `json:"includeHistory"`
	ClientFields
}

type APIRequest struct {
	VerificationCode string `json:"verificationCode"`
	CrossValidate    bool   `json:"crossValidate"`
	Anonymize        bool   `json:"anonymize"`
	IncludeHistory   bool   `json:"includeHistory"`
	ClientFields
}

type BatchDocument struct {
	VerificationCode string `json:"verificationCode"`
	DocumentNumber   string `json:"documentNumber"`
	DocumentType     string `json:"documentType"`
}

type BatchRequest struct {
	BatchID   string          `json:"batchId"`
	Documents []BatchDocument `json:"documents"`
	ClientFields
}

// RegisterRequest is sent by the document generation system.
type RegisterRequest struct {
	DocumentType     string                  `json:"documentType"`
	DocumentNumber   string                  `json:"documentNumber"`
	DocumentData     json.RawMessage         `json:"documentData"`
	IssuingOffice    string                  `json:"issuingOffice"`
	IssuingOfficer   string                  `json:"issuingOfficer"`
	IssuedAt         *time.Time              `json:"issuedAt"`
	ExpiryDate       *time.Time              `json:"expiryDate"`
	SecurityFeatures models.SecurityFeatures `json:"securityFeatures"`
	Hashtags         []string                `json:"hashtags"`
}

func (r *RegisterRequest) Normalize() {
	r.DocumentType = strings.TrimSpace(r.DocumentType)
	r.DocumentNumber = strings.TrimSpace(r.DocumentNumber)
	r.IssuingOffice = strings.TrimSpace(r.IssuingOffice)
	r.IssuingOfficer = strings.TrimSpace(r.IssuingOfficer)
	r.Hashtags = strutil.DedupeAndTrim(r.Hashtags)
}

func (r *RegisterRequest) Validate() error {
	if len(r.DocumentData) == 0 {
		return dErrors.New(dErrors.CodeValidation, "documentData is required")
	}
	if len(r.Hashtags) > 20 {
		return dErrors.New(dErrors.CodeValidation, "at most 20 hashtags are allowed")
	}
	return nil
}

func (r *RegisterRequest) toModel() models.RegisterDocumentRequest {
	out := models.RegisterDocumentRequest{
		DocumentType:     r.DocumentType,
		DocumentNumber:   r.DocumentNumber,
		DocumentData:     r.DocumentData,
		IssuingOffice:    r.IssuingOffice,
		IssuingOfficer:   r.IssuingOfficer,
		ExpiryDate:       r.ExpiryDate,
		SecurityFeatures: r.SecurityFeatures,
	}
	if len(r.Hashtags) > 0 {
		out.Hashtags = r.Hashtags
	}
	if r.IssuedAt != nil {
		out.IssuedAt = *r.IssuedAt
	}
	return out
}

type RevokeRequest struct {
	Reason string `json:"reason"`
}

func (r *RevokeRequest) Validate() error {
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	if len(r.Reason) > 500 {
		return dErrors.New(dErrors.CodeValidation, "reason must be at most 500 characters")
	}
	return nil
}

type IntegrityRequest struct {
	DocumentData json.RawMessage `json:"documentData"`
}

func (r *IntegrityRequest) Validate() error {
	if len(r.DocumentData) == 0 {
		return dErrors.New(dErrors.CodeValidation, "documentData is required")
	}
	return nil
}
