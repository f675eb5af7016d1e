// Package apikey issues API keys for programmatic verification and enforces
// their monthly quotas.
package apikey

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"docverify/internal/verification/models"
	"docverify/internal/verification/ports"
	id "docverify/pkg/domain"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/audit"
	"docverify/pkg/platform/sentinel"
	"docverify/pkg/requestcontext"
)

const maxNameLength = 100

// Issued is returned once at creation; the secret is never stored in clear.
type Issued struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Token        string    `json:"token"`
	MonthlyLimit int64     `json:"monthlyLimit"`
	PeriodEnd    time.Time `json:"periodEnd"`
}

type Service struct {
	keys       ports.APIKeyStore
	logger     *slog.Logger
	cost       int
	dummyHash  string
	defaultCap int64
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithBcryptCost lowers the hashing cost in tests.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.cost = cost
	}
}

// WithDefaultLimit sets the monthly limit used when Issue is given none.
func WithDefaultLimit(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultCap = n
		}
	}
}

func New(keys ports.APIKeyStore, opts ...Option) (*Service, error) {
	if keys == nil {
		return nil, errors.New("api key store is required")
	}
	s := &Service{
		keys:       keys,
		cost:       bcrypt.DefaultCost,
		defaultCap: 10000,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	dummy, err := hashSecret("docverify-unknown-key", s.cost)
	if err != nil {
		return nil, err
	}
	s.dummyHash = dummy
	return s, nil
}

// Issue creates a key for a client. The quota period is the current
// calendar month in UTC.
func (s *Service) Issue(ctx context.Context, name string, monthlyLimit int64) (*Issued, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(name) > maxNameLength {
		return nil, dErrors.New(dErrors.CodeValidation, "name must be at most 100 characters")
	}
	if monthlyLimit < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "monthly limit cannot be negative")
	}
	if monthlyLimit == 0 {
		monthlyLimit = s.defaultCap
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate api key")
	}
	hash, err := hashSecret(secret, s.cost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash api key")
	}

	now := requestcontext.Now(ctx).UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	key := &models.APIKey{
		ID:           id.NewAPIKeyID(),
		Name:         name,
		SecretHash:   hash,
		IsActive:     true,
		MonthlyLimit: monthlyLimit,
		PeriodStart:  start,
		PeriodEnd:    start.AddDate(0, 1, 0),
		CreatedAt:    now,
	}
	if err := s.keys.Create(ctx, key); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store api key")
	}

	audit.LogAudit(ctx, s.logger, audit.EventAPIKeyIssued,
		"api_key_id", key.ID.String(),
		"name", name,
		"monthly_limit", monthlyLimit,
	)
	return &Issued{
		ID:           key.ID.String(),
		Name:         name,
		Token:        FormatToken(key.ID.String(), secret),
		MonthlyLimit: monthlyLimit,
		PeriodEnd:    key.PeriodEnd,
	}, nil
}

// Authenticate checks the credential without consuming quota.
func (s *Service) Authenticate(ctx context.Context, rawID, secret string) (*models.APIKey, error) {
	keyID, err := id.ParseAPIKeyID(rawID)
	if err != nil {
		_ = verifySecret(secret, s.dummyHash)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid api key")
	}
	key, err := s.keys.Get(ctx, keyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			_ = verifySecret(secret, s.dummyHash)
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid api key")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load api key")
	}
	if err := verifySecret(secret, key.SecretHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify api key")
	}
	if !key.IsActive {
		return nil, dErrors.New(dErrors.CodeForbidden, "api key is inactive")
	}
	return key, nil
}

// Access authenticates the key and consumes one unit of its monthly quota.
// Denials are CodeUnauthorized, CodeForbidden or CodeRateLimited.
func (s *Service) Access(ctx context.Context, rawID, secret string) (*models.APIKey, error) {
	key, err := s.Authenticate(ctx, rawID, secret)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeInternal) {
			audit.LogAudit(ctx, s.logger, audit.EventAPIKeyDenied,
				"api_key_id", rawID,
				"reason", dErrors.Message(err),
			)
		}
		return nil, err
	}

	updated, err := s.keys.ConsumeQuota(ctx, key.ID, requestcontext.Now(ctx))
	if err != nil {
		if errors.Is(err, sentinel.ErrLimitExceeded) {
			audit.LogAudit(ctx, s.logger, audit.EventAPIKeyQuotaExceeded,
				"api_key_id", key.ID.String(),
				"monthly_limit", key.MonthlyLimit,
			)
			return nil, dErrors.New(dErrors.CodeRateLimited, "monthly api quota exceeded")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record api usage")
	}
	return updated, nil
}
