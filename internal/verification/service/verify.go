package service

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"docverify/internal/alerting"
	"docverify/internal/verification/crossvalidation"
	"docverify/internal/verification/fraud"
	"docverify/internal/verification/models"
	"docverify/internal/verification/qr"
	id "docverify/pkg/domain"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/audit"
	"docverify/pkg/platform/privacy"
	"docverify/pkg/platform/sentinel"
	"docverify/pkg/requestcontext"
)

const maxDocumentNumber = 64

// attempt carries the state of one verification through the router.
type attempt struct {
	req        models.VerificationRequest
	now        time.Time
	code       string
	docType    models.DocumentType
	session    *models.VerificationSession
	record     *models.VerificationRecord
	assessment *fraud.Assessment
	// loggable is false only for requests rejected before any lookup.
	loggable bool
}

// Verify runs one single-document attempt. Every outcome, including
// infrastructure failures, is reported inside the result; the error return
// is only set when ctx is already done.
func (s *Service) Verify(ctx context.Context, req models.VerificationRequest) (*models.VerificationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	ctx, span := s.tracer.Start(ctx, "verification.verify", trace.WithAttributes(
		attribute.String("verification.method", string(req.Method)),
	))
	defer span.End()

	start := time.Now()
	req.Meta.Normalize()
	a := &attempt{req: req, now: requestcontext.Now(ctx)}

	result := s.route(ctx, a)
	if a.loggable {
		s.history.Log(ctx, a.historyEntry(result))
	}

	span.SetAttributes(
		attribute.Bool("verification.valid", result.IsValid),
		attribute.String("verification.error_code", string(result.ErrorCode)),
	)
	if result.ErrorCode == models.ErrorVerification {
		span.SetStatus(codes.Error, result.Message)
	}
	s.metrics.IncrementOutcome(string(req.Method), outcomeLabel(result))
	s.metrics.ObserveVerifyLatency(string(req.Method), time.Since(start))
	return result, nil
}

func (s *Service) route(ctx context.Context, a *attempt) *models.VerificationResult {
	if err := s.validate(a); err != nil {
		return a.fail(models.ErrorValidation, dErrors.Message(err))
	}
	a.loggable = true

	sess, err := s.sessions.Attach(ctx, a.req.Meta)
	if err != nil {
		return s.infraFailure(ctx, a, err, "session_attach")
	}
	a.session = sess

	decision, err := s.sessions.CheckRateLimit(ctx, a.req.Meta.IPAddress, sess)
	if err != nil {
		return s.infraFailure(ctx, a, err, "rate_limit_check")
	}
	if !decision.Allowed {
		s.publish(ctx, alerting.Alert{
			Kind:     alerting.KindRateLimitExceeded,
			Severity: alerting.SeverityWarning,
			Subject:  privacy.AnonymizeIP(a.req.Meta.IPAddress),
			Message:  "verification rate limit exceeded",
			Details:  map[string]any{"scope": decision.Scope, "limit": decision.Limit},
		})
		res := a.fail(models.ErrorRateLimitExceeded, "")
		res.RetryAfter = decision.RetryAfter
		return res
	}

	if a.req.Method == models.MethodAPI {
		if res := s.checkAPIAccess(ctx, a); res != nil {
			return res
		}
	}

	if res := s.resolve(ctx, a); res != nil {
		return res
	}

	assessment, err := s.fraud.Assess(ctx, fraud.Subject{Meta: a.req.Meta, Session: a.session, Record: a.record})
	if err != nil {
		return s.infraFailure(ctx, a, err, "fraud_assessment")
	}
	a.assessment = assessment
	if assessment.IsCritical() {
		return s.block(ctx, a)
	}

	if res := s.lifecycleFailure(a); res != nil {
		return res
	}

	count, err := s.records.IncrementVerificationCount(ctx, a.record.ID, a.now)
	if err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return s.lostLifecycleRace(ctx, a)
		}
		return s.infraFailure(ctx, a, err, "increment_verification_count")
	}
	a.record.VerificationCount = count
	verifiedAt := a.now
	a.record.LastVerifiedAt = &verifiedAt

	var res *models.VerificationResult
	if a.record.IsExpired(a.now) {
		res = a.fail(models.ErrorNone, "document has expired")
	} else {
		res = a.result(true, models.ErrorNone, "document is valid")
	}

	if a.req.Method == models.MethodAPI && a.req.CrossValidate && s.validator != nil {
		res.CrossValidation = s.validator.Validate(ctx, crossvalidation.SubjectFromRecord(a.record))
	}

	s.withRecord(a, res)
	if a.req.IncludeHistory {
		views, err := s.history.RecentForRecord(ctx, a.record.ID, s.historyLimit)
		if err != nil {
			s.report(ctx, err, "operation", "history_read")
		} else {
			res.History = views
		}
	}
	return res
}

// lifecycleFailure returns nil for a record that may still verify.
func (s *Service) lifecycleFailure(a *attempt) *models.VerificationResult {
	switch {
	case a.record.IsRevoked():
		return s.withRecord(a, a.fail(models.ErrorDocumentRevoked, ""))
	case !a.record.IsActive:
		return s.withRecord(a, a.fail(models.ErrorDocumentInactive, ""))
	}
	return nil
}

// lostLifecycleRace handles a record revoked or deactivated between lookup
// and increment. The record is read again so the result reflects its
// current state.
func (s *Service) lostLifecycleRace(ctx context.Context, a *attempt) *models.VerificationResult {
	current, err := s.records.GetByCode(ctx, a.record.VerificationCode)
	if err != nil {
		return s.infraFailure(ctx, a, err, "record_reload")
	}
	a.record = current
	if res := s.lifecycleFailure(a); res != nil {
		return res
	}
	return s.withRecord(a, a.fail(models.ErrorDocumentInactive, ""))
}

func (s *Service) validate(a *attempt) error {
	req := &a.req
	if ip := req.Meta.IPAddress; ip != "" && net.ParseIP(ip) == nil {
		return dErrors.New(dErrors.CodeValidation, "invalid ip address")
	}
	if ip := req.Meta.ReportedIP; ip != "" && net.ParseIP(ip) == nil {
		return dErrors.New(dErrors.CodeValidation, "invalid ip address")
	}

	switch req.Method {
	case models.MethodManualEntry, models.MethodAPI:
		code, err := id.ParseVerificationCode(req.VerificationCode)
		if err != nil {
			return err
		}
		a.code = code
	case models.MethodQRScan:
		if strings.TrimSpace(req.QRData) == "" {
			return dErrors.New(dErrors.CodeValidation, "qr data is required")
		}
	case models.MethodDocumentLookup:
		number := normalizeDocumentNumber(req.DocumentNumber)
		if number == "" {
			return dErrors.New(dErrors.CodeValidation, "document number is required")
		}
		if len(number) > maxDocumentNumber {
			return dErrors.New(dErrors.CodeValidation, "document number is too long")
		}
		docType, err := models.ParseDocumentType(req.DocumentType)
		if err != nil {
			return err
		}
		req.DocumentNumber = number
		a.docType = docType
	case models.MethodBatch:
		return dErrors.New(dErrors.CodeValidation, "batch requests must use the batch endpoint")
	default:
		return dErrors.New(dErrors.CodeValidation, "unknown verification method")
	}
	return nil
}

func (s *Service) checkAPIAccess(ctx context.Context, a *attempt) *models.VerificationResult {
	if s.apiKeys == nil || a.req.APIKeyID == "" || a.req.APIKeySecret == "" {
		return a.fail(models.ErrorAPIAccessDenied, "")
	}
	if _, err := s.apiKeys.Access(ctx, a.req.APIKeyID, a.req.APIKeySecret); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			return s.infraFailure(ctx, a, err, "api_key_access")
		}
		msg := models.ErrorAPIAccessDenied.DefaultMessage()
		if dErrors.HasCode(err, dErrors.CodeRateLimited) {
			msg = "API quota exceeded"
		}
		return a.fail(models.ErrorAPIAccessDenied, msg)
	}
	return nil
}

func (s *Service) resolve(ctx context.Context, a *attempt) *models.VerificationResult {
	var (
		record *models.VerificationRecord
		err    error
	)
	switch a.req.Method {
	case models.MethodQRScan:
		code, _, decodeErr := qr.Decode(a.req.QRData)
		if decodeErr != nil {
			return a.fail(models.ErrorInvalidQRCode, "")
		}
		a.code = id.NormalizeCode(code)
		record, err = s.records.GetByCode(ctx, a.code)
	case models.MethodDocumentLookup:
		record, err = s.records.GetByDocumentNumber(ctx, a.req.DocumentNumber, a.docType)
	default:
		record, err = s.records.GetByCode(ctx, a.code)
	}
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return a.fail(models.ErrorDocumentNotFound, "")
		}
		return s.infraFailure(ctx, a, err, "record_lookup")
	}
	a.record = record
	a.code = record.VerificationCode
	return nil
}

func (s *Service) block(ctx context.Context, a *attempt) *models.VerificationResult {
	details := map[string]any{
		"risk_score": a.assessment.RiskScore,
		"indicators": a.assessment.FraudIndicators,
		"method":     a.req.Method,
		"ip":         privacy.AnonymizeIP(a.req.Meta.IPAddress),
	}
	s.publish(ctx, alerting.Alert{
		Kind:     alerting.KindFraudDetected,
		Severity: alerting.SeverityCritical,
		Subject:  a.code,
		Message:  "critical fraud risk, verification blocked",
		Details:  details,
	})
	audit.LogAudit(ctx, s.logger, audit.EventVerificationBlocked,
		"verification_code", a.code,
		"risk_score", a.assessment.RiskScore,
		"ip", privacy.AnonymizeIP(a.req.Meta.IPAddress),
	)
	return a.fail(models.ErrorFraudDetected, "")
}

// infraFailure hides err behind a generic VERIFICATION_ERROR.
func (s *Service) infraFailure(ctx context.Context, a *attempt, err error, op string) *models.VerificationResult {
	s.report(ctx, err, "operation", op, "method", a.req.Method)
	return a.fail(models.ErrorVerification, "")
}

func normalizeDocumentNumber(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func outcomeLabel(res *models.VerificationResult) string {
	if res.ErrorCode != models.ErrorNone {
		return string(res.ErrorCode)
	}
	if res.IsValid {
		return "VALID"
	}
	return "EXPIRED"
}
