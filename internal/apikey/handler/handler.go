package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"docverify/internal/apikey"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/httputil"
	"docverify/pkg/requestcontext"
)

type Service interface {
	Issue(ctx context.Context, name string, monthlyLimit int64) (*apikey.Issued, error)
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

// Register mounts key issuance. The caller guards r with officer
// authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/api-keys", h.HandleIssue)
}

type IssueRequest struct {
	Name         string `json:"name"`
	MonthlyLimit int64  `json:"monthlyLimit"`
}

func (r *IssueRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r *IssueRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.MonthlyLimit < 0 {
		return dErrors.New(dErrors.CodeValidation, "monthlyLimit cannot be negative")
	}
	return nil
}

// HandleIssue returns the token once; it cannot be recovered later.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[IssueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	issued, err := h.service.Issue(ctx, req.Name, req.MonthlyLimit)
	if err != nil {
		h.logger.ErrorContext(ctx, "api key issuance failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, issued)
}
