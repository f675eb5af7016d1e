package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"docverify/internal/verification/models"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/middleware/metadata"
)

type fakeService struct {
	lastVerify models.VerificationRequest
	lastBatch  models.BatchRequest
	lastReg    models.RegisterDocumentRequest
	revokeErr  error
	verifyErr  error
	historyArg int
}

func (f *fakeService) Verify(_ context.Context, req models.VerificationRequest) (*models.VerificationResult, error) {
	f.lastVerify = req
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &models.VerificationResult{IsValid: true, Message: "document is valid", Method: req.Method}, nil
}

func (f *fakeService) VerifyBatch(_ context.Context, req models.BatchRequest) (*models.BatchResult, error) {
	f.lastBatch = req
	return &models.BatchResult{BatchID: req.BatchID, Total: len(req.Documents), IsValid: true}, nil
}

func (f *fakeService) RegisterDocument(_ context.Context, req models.RegisterDocumentRequest) (*models.RegisteredDocument, error) {
	f.lastReg = req
	return &models.RegisteredDocument{VerificationCode: "07357BBCAFEF"}, nil
}

func (f *fakeService) RevokeDocument(_ context.Context, code, reason string) (*models.PublicRecord, error) {
	if f.revokeErr != nil {
		return nil, f.revokeErr
	}
	return &models.PublicRecord{RevocationReason: reason}, nil
}

func (f *fakeService) CheckIntegrity(_ context.Context, code string, _ json.RawMessage) (*models.IntegrityReport, error) {
	return &models.IntegrityReport{VerificationCode: code, Intact: true}, nil
}

func (f *fakeService) RecordHistory(_ context.Context, _ string, limit int) ([]models.HistoryView, error) {
	f.historyArg = limit
	return []models.HistoryView{{Method: models.MethodQRScan}}, nil
}

type HandlerSuite struct {
	suite.Suite
	service *fakeService
	router  http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.service = &fakeService{}
	h := New(s.service, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	r := chi.NewRouter()
	r.Use(metadata.ClientMetadata(nil))
	h.Register(r)
	h.RegisterOfficer(r)
	s.router = r
}

func (s *HandlerSuite) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent/1.0")
	req.RemoteAddr = "192.0.2.10:5555"
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestVerifyByURL() {
	s.Run("path", func() {
		rec := s.do(http.MethodGet, "/verify/07357bbcafef", "")
		s.Equal(http.StatusOK, rec.Code)
		s.Equal(models.MethodManualEntry, s.service.lastVerify.Method)
		s.Equal("07357bbcafef", s.service.lastVerify.VerificationCode)
		s.Equal("192.0.2.10", s.service.lastVerify.Meta.IPAddress)
		s.Equal("test-agent/1.0", s.service.lastVerify.Meta.UserAgent)
	})

	s.Run("query", func() {
		rec := s.do(http.MethodGet, "/verify?code=07357BBCAFEF", "", HeaderSessionID, "sess-1")
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("07357BBCAFEF", s.service.lastVerify.VerificationCode)
		s.Equal("sess-1", s.service.lastVerify.Meta.SessionID)
	})
}

func (s *HandlerSuite) TestModalities() {
	rec := s.do(http.MethodPost, "/v1/verifications/qr", `{"qrData":"07357BBCAFEF","ipAddress":"198.51.100.3","country":"gb"}`)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(models.MethodQRScan, s.service.lastVerify.Method)
	s.Equal("192.0.2.10", s.service.lastVerify.Meta.IPAddress, "body ipAddress never replaces the observed peer")
	s.Equal("198.51.100.3", s.service.lastVerify.Meta.ReportedIP)
	s.Equal("gb", s.service.lastVerify.Meta.Country)

	rec = s.do(http.MethodPost, "/v1/verifications/lookup", `{"documentNumber":"P1","documentType":"passport"}`)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(models.MethodDocumentLookup, s.service.lastVerify.Method)

	rec = s.do(http.MethodPost, "/v1/verifications/manual", `{"verificationCode":"07357BBCAFEF","includeHistory":true}`,
		metadata.HeaderDeviceFingerprint, "fp-1")
	s.Equal(http.StatusOK, rec.Code)
	s.True(s.service.lastVerify.IncludeHistory)
	s.Equal("fp-1", s.service.lastVerify.Meta.DeviceFingerprint)

	var res models.VerificationResult
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&res))
	s.True(res.IsValid)
}

func (s *HandlerSuite) TestAPIKeyHeader() {
	rec := s.do(http.MethodPost, "/v1/verifications/api", `{"verificationCode":"07357BBCAFEF"}`)
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/v1/verifications/api", `{"verificationCode":"07357BBCAFEF","crossValidate":true,"anonymize":true}`,
		HeaderAPIKey, "key-id.secret")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("key-id", s.service.lastVerify.APIKeyID)
	s.Equal("secret", s.service.lastVerify.APIKeySecret)
	s.True(s.service.lastVerify.CrossValidate)
	s.True(s.service.lastVerify.Anonymize)
}

func (s *HandlerSuite) TestBatch() {
	rec := s.do(http.MethodPost, "/v1/verifications/batch",
		`{"batchId":"b1","documents":[{"verificationCode":"07357BBCAFEF"},{"documentNumber":"P1","documentType":"passport"}]}`)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("b1", s.service.lastBatch.BatchID)
	s.Len(s.service.lastBatch.Documents, 2)
	s.Equal("P1", s.service.lastBatch.Documents[1].DocumentNumber)
}

func (s *HandlerSuite) TestMalformedBody() {
	rec := s.do(http.MethodPost, "/v1/verifications/manual", `{"verificationCode":`)
	s.Equal(http.StatusBadRequest, rec.Code)
	rec = s.do(http.MethodPost, "/v1/verifications/manual", "")
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestCancelledVerification() {
	s.service.verifyErr = context.DeadlineExceeded
	rec := s.do(http.MethodGet, "/verify/07357BBCAFEF", "")
	s.Equal(http.StatusGatewayTimeout, rec.Code)
}

func (s *HandlerSuite) TestRecords() {
	rec := s.do(http.MethodPost, "/v1/records",
		`{"documentType":"passport","documentNumber":" P1 ","documentData":{"a":1},"hashtags":[" uk ",""]}`)
	s.Equal(http.StatusCreated, rec.Code)
	s.Equal("P1", s.service.lastReg.DocumentNumber)
	s.Equal([]string{"uk"}, s.service.lastReg.Hashtags)

	rec = s.do(http.MethodPost, "/v1/records", `{"documentType":"passport","documentNumber":"P1"}`)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/v1/records/07357BBCAFEF/revoke", `{"reason":"stolen"}`)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/v1/records/07357BBCAFEF/revoke", `{"reason":" "}`)
	s.Equal(http.StatusBadRequest, rec.Code)

	s.service.revokeErr = dErrors.New(dErrors.CodeConflict, "document is already revoked")
	rec = s.do(http.MethodPost, "/v1/records/07357BBCAFEF/revoke", `{"reason":"again"}`)
	s.Equal(http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/v1/records/07357BBCAFEF/integrity", `{"documentData":{"a":1}}`)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/v1/records/07357BBCAFEF/history?limit=5", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(5, s.service.historyArg)

	rec = s.do(http.MethodGet, "/v1/records/07357BBCAFEF/history?limit=zero", "")
	s.Equal(http.StatusBadRequest, rec.Code)
}
