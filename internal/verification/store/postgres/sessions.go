package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"docverify/internal/verification/models"
	id "docverify/pkg/domain"
	"docverify/pkg/platform/sentinel"
	"docverify/pkg/platform/tx"
)

const sessionColumns = `session_id, ip_address, user_agent, user_id, status, current_verifications, created_at, last_activity`

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Create(ctx context.Context, sess *models.VerificationSession) error {
	query := `
		INSERT INTO verification_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := tx.Querier(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(sess.SessionID),
		sess.IPAddress,
		sess.UserAgent,
		sess.UserID,
		string(sess.Status),
		sess.CurrentVerifications,
		sess.CreatedAt,
		sess.LastActivity,
	)
	if err != nil {
		return wrap("create session", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, sessionID id.SessionID) (*models.VerificationSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM verification_sessions WHERE session_id = $1`
	var (
		sess   models.VerificationSession
		rawID  uuid.UUID
		status string
	)
	err := tx.Querier(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(sessionID)).Scan(
		&rawID, &sess.IPAddress, &sess.UserAgent, &sess.UserID, &status,
		&sess.CurrentVerifications, &sess.CreatedAt, &sess.LastActivity,
	)
	if err != nil {
		return nil, wrap("get session", err)
	}
	sess.SessionID = id.SessionID(rawID)
	sess.Status = models.SessionStatus(status)
	return &sess, nil
}

func (s *SessionStore) Touch(ctx context.Context, sessionID id.SessionID, at time.Time) error {
	res, err := tx.Querier(ctx, s.db).ExecContext(ctx,
		`UPDATE verification_sessions SET last_activity = $2 WHERE session_id = $1`,
		uuid.UUID(sessionID), at,
	)
	if err != nil {
		return wrap("touch session", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("touch session", err)
	}
	if n == 0 {
		return fmt.Errorf("touch session: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *SessionStore) IncrementVerifications(ctx context.Context, sessionID id.SessionID, limit int, at time.Time) (int, error) {
	query := `
		UPDATE verification_sessions
		SET current_verifications = current_verifications + 1, last_activity = GREATEST(last_activity, $2)
		WHERE session_id = $1 AND ($3::int <= 0 OR current_verifications < $3::int)
		RETURNING current_verifications
	`
	q := tx.Querier(ctx, s.db)
	var n int
	err := q.QueryRowContext(ctx, query, uuid.UUID(sessionID), at, limit).Scan(&n)
	if err == nil {
		return n, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, wrap("increment session verifications", err)
	}

	// Either the session is missing or it is full.
	if err := q.QueryRowContext(ctx,
		`SELECT current_verifications FROM verification_sessions WHERE session_id = $1`, uuid.UUID(sessionID),
	).Scan(&n); err != nil {
		return 0, wrap("increment session verifications", err)
	}
	return n, fmt.Errorf("increment session verifications: %w", sentinel.ErrLimitExceeded)
}

func (s *SessionStore) ExpireIdle(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := tx.Querier(ctx, s.db).ExecContext(ctx,
		`UPDATE verification_sessions SET status = $1 WHERE status = $2 AND last_activity < $3`,
		string(models.SessionExpired), string(models.SessionActive), cutoff,
	)
	if err != nil {
		return 0, wrap("expire idle sessions", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrap("expire idle sessions", err)
	}
	return int(n), nil
}
