// Package ports defines the storage contract the verification engine
// consumes. Adapters live under internal/verification/store.
//
// Stores return pkg/platform/sentinel errors (ErrNotFound, ErrConflict,
// ErrInvalidState, ErrLimitExceeded), optionally wrapped; services translate
// them.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	rlmodels "docverify/internal/ratelimit/models"
	"docverify/internal/verification/models"
	id "docverify/pkg/domain"
)

// RecordStore persists issued documents.
type RecordStore interface {
	// Create fails with ErrConflict when the code or (type, number) is taken.
	Create(ctx context.Context, record *models.VerificationRecord) error
	GetByCode(ctx context.Context, code string) (*models.VerificationRecord, error)
	GetByDocumentNumber(ctx context.Context, number string, docType models.DocumentType) (*models.VerificationRecord, error)
	// IncrementVerificationCount atomically adds one and stamps LastVerifiedAt
	// on an active, unrevoked record. Any other record fails with
	// ErrInvalidState and is left untouched.
	IncrementVerificationCount(ctx context.Context, recordID id.RecordID, at time.Time) (int64, error)
	// Revoke fails with ErrInvalidState when the record is already revoked.
	Revoke(ctx context.Context, recordID id.RecordID, reason string, at time.Time) (*models.VerificationRecord, error)
}

// HistoryStore is the append-only attempt log.
type HistoryStore interface {
	Append(ctx context.Context, entry *models.HistoryEntry) error
	// ListByRecord returns newest first, at most limit entries.
	ListByRecord(ctx context.Context, recordID id.RecordID, limit int) ([]*models.HistoryEntry, error)
	// LatestForRecord fails with ErrNotFound when the record has no history.
	LatestForRecord(ctx context.Context, recordID id.RecordID) (*models.HistoryEntry, error)
	CountByIPSince(ctx context.Context, ip string, since time.Time) (int, error)
	// ListSince returns entries created at or after since, oldest first.
	ListSince(ctx context.Context, since time.Time) ([]*models.HistoryEntry, error)
}

// SessionStore persists verification sessions.
type SessionStore interface {
	Create(ctx context.Context, session *models.VerificationSession) error
	Get(ctx context.Context, sessionID id.SessionID) (*models.VerificationSession, error)
	Touch(ctx context.Context, sessionID id.SessionID, at time.Time) error
	// IncrementVerifications atomically adds one and returns the new count.
	// With a positive limit the add only happens while the count is below
	// it; a full session fails with ErrLimitExceeded and is left unchanged.
	IncrementVerifications(ctx context.Context, sessionID id.SessionID, limit int, at time.Time) (int, error)
	// ExpireIdle marks active sessions idle since before cutoff as expired.
	ExpireIdle(ctx context.Context, cutoff time.Time) (int, error)
}

// APIKeyStore persists API keys and their monthly usage.
type APIKeyStore interface {
	Create(ctx context.Context, key *models.APIKey) error
	Get(ctx context.Context, keyID id.APIKeyID) (*models.APIKey, error)
	// ConsumeQuota rolls the period forward if needed and adds one use.
	// It fails with ErrLimitExceeded, leaving usage unchanged, when the
	// monthly limit is reached.
	ConsumeQuota(ctx context.Context, keyID id.APIKeyID, now time.Time) (*models.APIKey, error)
}

// RateLimitStore is a sliding-window counter keyed by string.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*rlmodels.RateLimitResult, error)
}

// ErrorReporter receives infrastructure failures that must not change an
// outcome, such as a failed history write.
type ErrorReporter interface {
	Report(ctx context.Context, err error, attrs ...any)
}
