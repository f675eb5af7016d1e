package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"docverify/internal/verification/models"
	id "docverify/pkg/domain"
	"docverify/pkg/platform/tx"
)

const historyColumns = `
	id, verification_record_id, verification_method, session_id, ip_address, user_agent,
	location, is_successful, error_code, to_jsonb(fraud_indicators), behavioral_analysis,
	anomaly_detection, created_at`

// HistoryStore is append-only; there is no update or delete.
type HistoryStore struct {
	db *sql.DB
}

func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

func (s *HistoryStore) Append(ctx context.Context, e *models.HistoryEntry) error {
	behavioral, err := marshalMap(e.BehavioralAnalysis)
	if err != nil {
		return fmt.Errorf("encode behavioral analysis: %w", err)
	}
	anomaly, err := marshalMap(e.AnomalyDetection)
	if err != nil {
		return fmt.Errorf("encode anomaly detection: %w", err)
	}
	indicators := e.FraudIndicators
	if indicators == nil {
		indicators = []string{}
	}

	var recordID, sessionID any
	if e.VerificationRecordID != nil {
		recordID = uuid.UUID(*e.VerificationRecordID)
	}
	if e.SessionID != nil {
		sessionID = uuid.UUID(*e.SessionID)
	}

	query := `
		INSERT INTO verification_history (
			id, verification_record_id, verification_method, session_id, ip_address, user_agent,
			location, is_successful, error_code, fraud_indicators, behavioral_analysis,
			anomaly_detection, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = tx.Querier(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(e.ID),
		recordID,
		string(e.VerificationMethod),
		sessionID,
		e.IPAddress,
		e.UserAgent,
		e.Location,
		e.IsSuccessful,
		string(e.ErrorCode),
		pq.Array(indicators),
		behavioral,
		anomaly,
		e.CreatedAt,
	)
	if err != nil {
		return wrap("append history", err)
	}
	return nil
}

func (s *HistoryStore) ListByRecord(ctx context.Context, recordID id.RecordID, limit int) ([]*models.HistoryEntry, error) {
	query := `SELECT ` + historyColumns + `
		FROM verification_history
		WHERE verification_record_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	return s.list(ctx, "list history by record", query, uuid.UUID(recordID), max(limit, 0))
}

func (s *HistoryStore) LatestForRecord(ctx context.Context, recordID id.RecordID) (*models.HistoryEntry, error) {
	query := `SELECT ` + historyColumns + `
		FROM verification_history
		WHERE verification_record_id = $1
		ORDER BY created_at DESC
		LIMIT 1`
	e, err := scanHistory(tx.Querier(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(recordID)))
	if err != nil {
		return nil, wrap("latest history for record", err)
	}
	return e, nil
}

func (s *HistoryStore) CountByIPSince(ctx context.Context, ip string, since time.Time) (int, error) {
	var n int
	err := tx.Querier(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM verification_history WHERE ip_address = $1 AND created_at >= $2`,
		ip, since,
	).Scan(&n)
	if err != nil {
		return 0, wrap("count history by ip", err)
	}
	return n, nil
}

func (s *HistoryStore) ListSince(ctx context.Context, since time.Time) ([]*models.HistoryEntry, error) {
	query := `SELECT ` + historyColumns + `
		FROM verification_history
		WHERE created_at >= $1
		ORDER BY created_at ASC`
	return s.list(ctx, "list history since", query, since)
}

func (s *HistoryStore) list(ctx context.Context, op, query string, args ...any) ([]*models.HistoryEntry, error) {
	rows, err := tx.Querier(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	var out []*models.HistoryEntry
	for rows.Next() {
		e, err := scanHistory(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return out, nil
}

func scanHistory(row scanner) (*models.HistoryEntry, error) {
	var (
		e          models.HistoryEntry
		rawID      uuid.UUID
		recordID   uuid.NullUUID
		sessionID  uuid.NullUUID
		method     string
		errorCode  string
		indicators []byte
		behavioral []byte
		anomaly    []byte
	)
	err := row.Scan(
		&rawID, &recordID, &method, &sessionID, &e.IPAddress, &e.UserAgent,
		&e.Location, &e.IsSuccessful, &errorCode, &indicators, &behavioral,
		&anomaly, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.ID = id.HistoryID(rawID)
	e.VerificationMethod = models.Method(method)
	e.ErrorCode = models.ErrorCode(errorCode)
	if recordID.Valid {
		rid := id.RecordID(recordID.UUID)
		e.VerificationRecordID = &rid
	}
	if sessionID.Valid {
		sid := id.SessionID(sessionID.UUID)
		e.SessionID = &sid
	}
	if e.FraudIndicators, err = unmarshalStrings(indicators); err != nil {
		return nil, fmt.Errorf("decode fraud indicators: %w", err)
	}
	if e.BehavioralAnalysis, err = unmarshalMap(behavioral); err != nil {
		return nil, fmt.Errorf("decode behavioral analysis: %w", err)
	}
	if e.AnomalyDetection, err = unmarshalMap(anomaly); err != nil {
		return nil, fmt.Errorf("decode anomaly detection: %w", err)
	}
	return &e, nil
}

func marshalMap(m map[string]any) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}

func unmarshalMap(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
