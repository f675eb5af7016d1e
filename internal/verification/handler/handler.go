// Package handler exposes the verification engine over HTTP. Verification
// endpoints always answer 200 with the outcome inside the result; only
// malformed bodies and failed authentication use error statuses.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"docverify/internal/apikey"
	"docverify/internal/verification/models"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/httputil"
	"docverify/pkg/requestcontext"
)

const (
	HeaderAPIKey    = "X-API-Key"
	HeaderSessionID = "X-Session-ID"
)

type Service interface {
	Verify(ctx context.Context, req models.VerificationRequest) (*models.VerificationResult, error)
	VerifyBatch(ctx context.Context, req models.BatchRequest) (*models.BatchResult, error)
	RegisterDocument(ctx context.Context, req models.RegisterDocumentRequest) (*models.RegisteredDocument, error)
	RevokeDocument(ctx context.Context, code, reason string) (*models.PublicRecord, error)
	CheckIntegrity(ctx context.Context, code string, data json.RawMessage) (*models.IntegrityReport, error)
	RecordHistory(ctx context.Context, code string, limit int) ([]models.HistoryView, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Register mounts the public verification endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/verify", h.HandleVerifyQuery)
	r.Get("/verify/{code}", h.HandleVerifyPath)
	r.Route("/v1/verifications", func(r chi.Router) {
		r.Post("/manual", h.HandleManual)
		r.Post("/qr", h.HandleQR)
		r.Post("/lookup", h.HandleLookup)
		r.Post("/api", h.HandleAPI)
		r.Post("/batch", h.HandleBatch)
	})
}

// RegisterOfficer mounts the record administration endpoints. The caller
// guards r with officer authentication.
func (h *Handler) RegisterOfficer(r chi.Router) {
	r.Route("/v1/records", func(r chi.Router) {
		r.Post("/", h.HandleRegister)
		r.Post("/{code}/revoke", h.HandleRevoke)
		r.Post("/{code}/integrity", h.HandleIntegrity)
		r.Get("/{code}/history", h.HandleHistory)
	})
}

func (h *Handler) HandleVerifyPath(w http.ResponseWriter, r *http.Request) {
	h.verifyCode(w, r, chi.URLParam(r, "code"))
}

func (h *Handler) HandleVerifyQuery(w http.ResponseWriter, r *http.Request) {
	h.verifyCode(w, r, r.URL.Query().Get("code"))
}

func (h *Handler) verifyCode(w http.ResponseWriter, r *http.Request, code string) {
	h.verify(w, r, models.VerificationRequest{
		Method:           models.MethodManualEntry,
		VerificationCode: code,
		Meta:             requestMeta(r, ClientFields{}),
	})
}

func (h *Handler) HandleManual(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[ManualRequest](w, r, h.logger, r.Context(), requestcontext.RequestID(r.Context()))
	if !ok {
		return
	}
	h.verify(w, r, models.VerificationRequest{
		Method:           models.MethodManualEntry,
		VerificationCode: req.VerificationCode,
		IncludeHistory:   req.IncludeHistory,
		Meta:             requestMeta(r, req.ClientFields),
	})
}

func (h *Handler) HandleQR(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[QRRequest](w, r, h.logger, r.Context(), requestcontext.RequestID(r.Context()))
	if !ok {
		return
	}
	h.verify(w, r, models.VerificationRequest{
		Method:         models.MethodQRScan,
		QRData:         req.QRData,
		IncludeHistory: req.IncludeHistory,
		Meta:           requestMeta(r, req.ClientFields),
	})
}

func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[LookupRequest](w, r, h.logger, r.Context(), requestcontext.RequestID(r.Context()))
	if !ok {
		return
	}
	h.verify(w, r, models.VerificationRequest{
		Method:         models.MethodDocumentLookup,
		DocumentNumber: req.DocumentNumber,
		DocumentType:   req.DocumentType,
		IncludeHistory: req.IncludeHistory,
		Meta:           requestMeta(r, req.ClientFields),
	})
}

// HandleAPI requires an X-API-Key header of the form "<id>.<secret>".
func (h *Handler) HandleAPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	keyID, secret, err := apikey.ParseToken(r.Header.Get(HeaderAPIKey))
	if err != nil {
		h.logger.WarnContext(ctx, "api verification without usable key",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[APIRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	h.verify(w, r, models.VerificationRequest{
		Method:           models.MethodAPI,
		VerificationCode: req.VerificationCode,
		APIKeyID:         keyID,
		APIKeySecret:     secret,
		CrossValidate:    req.CrossValidate,
		Anonymize:        req.Anonymize,
		IncludeHistory:   req.IncludeHistory,
		Meta:             requestMeta(r, req.ClientFields),
	})
}

func (h *Handler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[BatchRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	docs := make([]models.BatchDocument, 0, len(req.Documents))
	for _, d := range req.Documents {
		docs = append(docs, models.BatchDocument(d))
	}

	result, err := h.service.VerifyBatch(ctx, models.BatchRequest{
		BatchID:   req.BatchID,
		Documents: docs,
		Meta:      requestMeta(r, req.ClientFields),
	})
	if err != nil {
		h.serviceFailure(w, r, "batch verification aborted", err)
		return
	}
	h.logger.InfoContext(ctx, "batch verified",
		"request_id", requestcontext.RequestID(ctx),
		"batch_id", result.BatchID,
		"total", result.Total,
		"valid", result.ValidCount,
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request, req models.VerificationRequest) {
	ctx := r.Context()
	result, err := h.service.Verify(ctx, req)
	if err != nil {
		h.serviceFailure(w, r, "verification aborted", err)
		return
	}
	h.logger.InfoContext(ctx, "document verification",
		"request_id", requestcontext.RequestID(ctx),
		"method", req.Method,
		"valid", result.IsValid,
		"error_code", result.ErrorCode,
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// serviceFailure only happens when the client went away or the deadline hit.
func (h *Handler) serviceFailure(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg,
		"request_id", requestcontext.RequestID(r.Context()),
		"error", err,
	)
	httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeTimeout, "request cancelled"))
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	doc, err := h.service.RegisterDocument(ctx, req.toModel())
	if err != nil {
		h.logger.WarnContext(ctx, "document registration failed",
			"request_id", requestID,
			"document_type", req.DocumentType,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, doc)
}

func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[RevokeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	record, err := h.service.RevokeDocument(ctx, chi.URLParam(r, "code"), req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) HandleIntegrity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[IntegrityRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	report, err := h.service.CheckIntegrity(ctx, chi.URLParam(r, "code"), req.DocumentData)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be a positive integer"))
			return
		}
		limit = n
	}
	views, err := h.service.RecordHistory(r.Context(), chi.URLParam(r, "code"), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"history": views})
}

// requestMeta merges body-supplied client fields over the values the
// metadata middleware captured. The client IP always comes from the
// middleware; a body ipAddress is kept as ReportedIP.
func requestMeta(r *http.Request, f ClientFields) models.RequestMeta {
	ctx := r.Context()
	meta := models.RequestMeta{
		IPAddress:         strings.TrimSpace(requestcontext.ClientIP(ctx)),
		ReportedIP:        strings.TrimSpace(f.IPAddress),
		UserAgent:         firstNonEmpty(f.UserAgent, requestcontext.UserAgent(ctx)),
		Location:          f.Location,
		Country:           f.Country,
		DeviceFingerprint: firstNonEmpty(f.DeviceFingerprint, requestcontext.DeviceFingerprint(ctx)),
		SessionID:         firstNonEmpty(f.SessionID, r.Header.Get(HeaderSessionID)),
		UserID:            f.UserID,
	}
	if meta.IPAddress == "unknown" {
		meta.IPAddress = ""
	}
	return meta
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
