// Package audit writes audit-class log lines for security-relevant actions:
// record registration and revocation, API key issuance, blocked attempts.
package audit

import (
	"context"
	"log/slog"

	"docverify/pkg/attrs"
	"docverify/pkg/requestcontext"
)

// Event names emitted by the services.
const (
	EventRecordRegistered    = "record_registered"
	EventRecordRevoked       = "record_revoked"
	EventIntegrityChecked    = "record_integrity_checked"
	EventAPIKeyIssued        = "api_key_issued"
	EventAPIKeyDenied        = "api_key_denied"
	EventAPIKeyQuotaExceeded = "api_key_quota_exceeded"
	EventVerificationBlocked = "verification_blocked"
	EventRateLimitExceeded   = "verification_rate_limited"
	EventSessionsExpired     = "sessions_expired"
)

// LogAudit logs event with log_type=audit. The request and officer ids from
// ctx are added unless the caller already supplied them.
func LogAudit(ctx context.Context, logger *slog.Logger, event string, kv ...any) {
	if logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" && !attrs.Has(kv, "request_id") {
		kv = append(kv, "request_id", requestID)
	}
	if officer := requestcontext.OfficerID(ctx); officer != "" && !attrs.Has(kv, "officer_id") {
		kv = append(kv, "officer_id", officer)
	}
	kv = append(kv, "event", event, "log_type", "audit")
	logger.InfoContext(ctx, event, kv...)
}
