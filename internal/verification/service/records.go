package service

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"time"

	"docverify/internal/verification/models"
	"docverify/internal/verification/qr"
	id "docverify/pkg/domain"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/audit"
	"docverify/pkg/platform/sentinel"
	"docverify/pkg/requestcontext"
)

const codeAttempts = 3

// RegisterDocument stores a newly issued document and returns the code, URL
// and QR payloads the issuer prints on it.
func (s *Service) RegisterDocument(ctx context.Context, req models.RegisterDocumentRequest) (*models.RegisteredDocument, error) {
	docType, err := models.ParseDocumentType(req.DocumentType)
	if err != nil {
		return nil, err
	}
	number := normalizeDocumentNumber(req.DocumentNumber)
	if number == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "document number is required")
	}
	if len(number) > maxDocumentNumber {
		return nil, dErrors.New(dErrors.CodeValidation, "document number is too long")
	}
	if len(req.DocumentData) == 0 || !json.Valid(req.DocumentData) {
		return nil, dErrors.New(dErrors.CodeValidation, "document data must be valid JSON")
	}

	now := requestcontext.Now(ctx)
	issuedAt := req.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = now
	}
	if req.ExpiryDate != nil && !req.ExpiryDate.After(issuedAt) {
		return nil, dErrors.New(dErrors.CodeValidation, "expiry date must be after issue date")
	}

	if _, err := s.records.GetByDocumentNumber(ctx, number, docType); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "document number already registered for this type")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check document number")
	}

	hash, err := s.generator.GenerateDocumentHash(req.DocumentData)
	if err != nil {
		return nil, err
	}

	record := &models.VerificationRecord{
		ID:               id.NewRecordID(),
		DocumentHash:     hash,
		DocumentType:     docType,
		DocumentNumber:   number,
		DocumentData:     slices.Clone(req.DocumentData),
		IssuingOffice:    strings.TrimSpace(req.IssuingOffice),
		IssuingOfficer:   strings.TrimSpace(req.IssuingOfficer),
		IssuedAt:         issuedAt,
		ExpiryDate:       req.ExpiryDate,
		IsActive:         true,
		SecurityFeatures: req.SecurityFeatures,
		Hashtags:         req.Hashtags,
	}

	// A code collision is retried with a nudged timestamp.
	for attempt := range codeAttempts {
		stamp := now.Add(time.Duration(attempt) * time.Nanosecond)
		code, err := s.generator.GenerateVerificationCode(req.DocumentData, string(docType), stamp)
		if err != nil {
			return nil, err
		}
		record.VerificationCode = code

		err = s.records.Create(ctx, record)
		if err == nil {
			break
		}
		if !errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store record")
		}
		if attempt == codeAttempts-1 {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "could not allocate a unique verification code")
		}
	}

	s.metrics.IncrementRegistered(string(docType))
	audit.LogAudit(ctx, s.logger, audit.EventRecordRegistered,
		"record_id", record.ID.String(),
		"verification_code", record.VerificationCode,
		"document_type", string(docType),
		"officer_id", requestcontext.OfficerID(ctx),
	)

	base := s.generator.BaseURL()
	return &models.RegisteredDocument{
		RecordID:         record.ID.String(),
		VerificationCode: record.VerificationCode,
		VerificationURL:  s.generator.GenerateVerificationURL(record.VerificationCode),
		DocumentHash:     hash,
		DocumentType:     docType,
		QRPayloads: models.QRPayloads{
			Bare: qr.EncodeBare(record.VerificationCode),
			JSON: qr.EncodeJSON(record.VerificationCode),
			URL:  qr.EncodeURL(base, record.VerificationCode),
		},
	}, nil
}

// RevokeDocument is terminal; revoking twice is a conflict.
func (s *Service) RevokeDocument(ctx context.Context, code, reason string) (*models.PublicRecord, error) {
	record, err := s.lookupByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "revocation reason is required")
	}

	revoked, err := s.records.Revoke(ctx, record.ID, reason, requestcontext.Now(ctx))
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, dErrors.New(dErrors.CodeConflict, "document is already revoked")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke record")
	}

	s.metrics.IncrementRevoked()
	audit.LogAudit(ctx, s.logger, audit.EventRecordRevoked,
		"record_id", revoked.ID.String(),
		"verification_code", revoked.VerificationCode,
		"reason", reason,
		"officer_id", requestcontext.OfficerID(ctx),
	)
	return publicRecord(revoked, false), nil
}

// CheckIntegrity re-hashes data and compares it with the stored hash.
func (s *Service) CheckIntegrity(ctx context.Context, code string, data json.RawMessage) (*models.IntegrityReport, error) {
	record, err := s.lookupByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	computed, err := s.generator.GenerateDocumentHash(data)
	if err != nil {
		return nil, err
	}
	intact, err := s.generator.VerifyDocumentHash(data, record.DocumentHash)
	if err != nil {
		return nil, err
	}

	audit.LogAudit(ctx, s.logger, audit.EventIntegrityChecked,
		"verification_code", record.VerificationCode,
		"intact", intact,
	)
	return &models.IntegrityReport{
		VerificationCode: record.VerificationCode,
		Intact:           intact,
		StoredHash:       record.DocumentHash,
		ComputedHash:     computed,
	}, nil
}

// RecordHistory lists the most recent attempts for the record behind code.
func (s *Service) RecordHistory(ctx context.Context, code string, limit int) ([]models.HistoryView, error) {
	record, err := s.lookupByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.historyLimit
	}
	return s.history.RecentForRecord(ctx, record.ID, min(limit, 100))
}

func (s *Service) lookupByCode(ctx context.Context, raw string) (*models.VerificationRecord, error) {
	code, err := id.ParseVerificationCode(raw)
	if err != nil {
		return nil, err
	}
	record, err := s.records.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load record")
	}
	return record, nil
}
