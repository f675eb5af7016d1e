package service

import (
	"maps"
	"strings"

	"docverify/internal/verification/models"
	"docverify/pkg/platform/privacy"
)

func (a *attempt) result(valid bool, code models.ErrorCode, msg string) *models.VerificationResult {
	if msg == "" {
		msg = code.DefaultMessage()
	}
	res := &models.VerificationResult{
		IsValid:          valid,
		Message:          msg,
		ErrorCode:        code,
		Method:           a.req.Method,
		VerificationCode: a.code,
		VerifiedAt:       a.now,
	}
	if a.session != nil {
		res.SessionID = a.session.SessionID.String()
	}
	if a.assessment != nil {
		res.FraudAssessment = a.assessment.FraudAssessment
	}
	return res
}

func (a *attempt) fail(code models.ErrorCode, msg string) *models.VerificationResult {
	return a.result(false, code, msg)
}

// withRecord attaches the public view of the resolved record to res.
func (s *Service) withRecord(a *attempt, res *models.VerificationResult) *models.VerificationResult {
	if a.record != nil {
		res.Record = publicRecord(a.record, a.req.Method == models.MethodAPI && a.req.Anonymize)
	}
	return res
}

func publicRecord(r *models.VerificationRecord, anonymize bool) *models.PublicRecord {
	c := r.Clone()
	pub := &models.PublicRecord{
		DocumentType:      c.DocumentType,
		DocumentNumber:    c.DocumentNumber,
		IssuingOffice:     c.IssuingOffice,
		IssuingOfficer:    c.IssuingOfficer,
		IssuedAt:          c.IssuedAt,
		ExpiryDate:        c.ExpiryDate,
		VerificationCount: c.VerificationCount,
		LastVerifiedAt:    c.LastVerifiedAt,
		IsActive:          c.IsActive,
		RevokedAt:         c.RevokedAt,
		RevocationReason:  c.RevocationReason,
		SecurityFeatures:  c.SecurityFeatures,
		Hashtags:          c.Hashtags,
		DocumentData:      c.DocumentData,
	}
	if anonymize {
		pub.DocumentData = nil
		pub.IssuingOfficer = mask(pub.IssuingOfficer)
	}
	return pub
}

// mask keeps the first character of each word.
func mask(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		words[i] = string(r[0]) + strings.Repeat("*", len(r)-1)
	}
	return strings.Join(words, " ")
}

func (a *attempt) historyEntry(res *models.VerificationResult) *models.HistoryEntry {
	entry := &models.HistoryEntry{
		VerificationMethod: a.req.Method,
		IPAddress:          a.req.Meta.IPAddress,
		UserAgent:          a.req.Meta.UserAgent,
		Location:           a.req.Meta.Location,
		IsSuccessful:       res.IsValid,
		ErrorCode:          res.ErrorCode,
		CreatedAt:          a.now,
	}
	if a.record != nil {
		recordID := a.record.ID
		entry.VerificationRecordID = &recordID
	}
	if a.session != nil {
		sessionID := a.session.SessionID
		entry.SessionID = &sessionID
	}
	if a.assessment != nil {
		entry.FraudIndicators = a.assessment.FraudIndicators
		entry.BehavioralAnalysis = maps.Clone(a.assessment.Profile)
		entry.AnomalyDetection = a.assessment.Anomaly
	}
	if reported := a.req.Meta.ReportedIP; reported != "" {
		if entry.BehavioralAnalysis == nil {
			entry.BehavioralAnalysis = map[string]any{}
		}
		entry.BehavioralAnalysis["reported_ip"] = privacy.AnonymizeIP(reported)
	}
	return entry
}

func rejectBatch(b *models.BatchResult, code models.ErrorCode, msg string) *models.BatchResult {
	if msg == "" {
		msg = code.DefaultMessage()
	}
	b.ErrorCode = code
	b.Message = msg
	b.InvalidCount = b.Total
	return b
}
