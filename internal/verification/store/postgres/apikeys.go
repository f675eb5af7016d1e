package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"docverify/internal/verification/models"
	id "docverify/pkg/domain"
	"docverify/pkg/platform/sentinel"
	"docverify/pkg/platform/tx"
)

const apiKeyColumns = `id, name, secret_hash, is_active, monthly_limit, current_usage, period_start, period_end, created_at`

type APIKeyStore struct {
	db *sql.DB
}

func NewAPIKeyStore(db *sql.DB) *APIKeyStore {
	return &APIKeyStore{db: db}
}

func (s *APIKeyStore) Create(ctx context.Context, k *models.APIKey) error {
	query := `INSERT INTO api_keys (` + apiKeyColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := tx.Querier(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(k.ID), k.Name, k.SecretHash, k.IsActive, k.MonthlyLimit,
		k.CurrentUsage, k.PeriodStart, k.PeriodEnd, k.CreatedAt,
	)
	if err != nil {
		return wrap("create api key", err)
	}
	return nil
}

func (s *APIKeyStore) Get(ctx context.Context, keyID id.APIKeyID) (*models.APIKey, error) {
	k, err := scanAPIKey(tx.Querier(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE id = $1`, uuid.UUID(keyID)))
	if err != nil {
		return nil, wrap("get api key", err)
	}
	return k, nil
}

// ConsumeQuota rolls the period under a row lock, then applies a guarded
// increment so concurrent callers cannot exceed the limit.
func (s *APIKeyStore) ConsumeQuota(ctx context.Context, keyID id.APIKeyID, now time.Time) (*models.APIKey, error) {
	var k *models.APIKey
	err := tx.Run(ctx, s.db, func(ctx context.Context) error {
		q := tx.Querier(ctx, s.db)
		var err error
		k, err = scanAPIKey(q.QueryRowContext(ctx,
			`SELECT `+apiKeyColumns+` FROM api_keys WHERE id = $1 FOR UPDATE`, uuid.UUID(keyID)))
		if err != nil {
			return wrap("consume quota", err)
		}
		k.RollPeriod(now)

		res, err := q.ExecContext(ctx, `
			UPDATE api_keys
			SET current_usage = $2::bigint + 1, period_start = $3, period_end = $4
			WHERE id = $1 AND $2::bigint < monthly_limit
		`, uuid.UUID(keyID), k.CurrentUsage, k.PeriodStart, k.PeriodEnd)
		if err != nil {
			return wrap("consume quota", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return wrap("consume quota", err)
		}
		if n == 0 {
			return fmt.Errorf("consume quota: %w", sentinel.ErrLimitExceeded)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	k.CurrentUsage++
	return k, nil
}

func scanAPIKey(row scanner) (*models.APIKey, error) {
	var (
		k     models.APIKey
		rawID uuid.UUID
	)
	err := row.Scan(&rawID, &k.Name, &k.SecretHash, &k.IsActive, &k.MonthlyLimit,
		&k.CurrentUsage, &k.PeriodStart, &k.PeriodEnd, &k.CreatedAt)
	if err != nil {
		return nil, err
	}
	k.ID = id.APIKeyID(rawID)
	return &k, nil
}
