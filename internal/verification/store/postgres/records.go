package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"docverify/internal/verification/models"
	id "docverify/pkg/domain"
	"docverify/pkg/platform/sentinel"
	"docverify/pkg/platform/tx"
)

const recordColumns = `
	id, verification_code, document_hash, document_type, document_number, document_data,
	issuing_office, issuing_officer, issued_at, expiry_date, verification_count, last_verified_at,
	is_active, revoked_at, revocation_reason, security_features, to_jsonb(hashtags)`

type RecordStore struct {
	db *sql.DB
}

func NewRecordStore(db *sql.DB) *RecordStore {
	return &RecordStore{db: db}
}

func (s *RecordStore) Create(ctx context.Context, r *models.VerificationRecord) error {
	features, err := marshalJSON(r.SecurityFeatures)
	if err != nil {
		return fmt.Errorf("encode security features: %w", err)
	}
	if features == nil {
		features = []byte(`{}`)
	}
	hashtags := r.Hashtags
	if hashtags == nil {
		hashtags = []string{}
	}
	query := `
		INSERT INTO verification_records (
			id, verification_code, document_hash, document_type, document_number, document_data,
			issuing_office, issuing_officer, issued_at, expiry_date, is_active, security_features, hashtags
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = tx.Querier(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(r.ID),
		r.VerificationCode,
		r.DocumentHash,
		string(r.DocumentType),
		r.DocumentNumber,
		[]byte(r.DocumentData),
		r.IssuingOffice,
		r.IssuingOfficer,
		r.IssuedAt,
		r.ExpiryDate,
		r.IsActive,
		features,
		pq.Array(hashtags),
	)
	if err != nil {
		return wrap("create record", err)
	}
	return nil
}

func (s *RecordStore) GetByCode(ctx context.Context, code string) (*models.VerificationRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM verification_records WHERE verification_code = $1`
	r, err := scanRecord(tx.Querier(ctx, s.db).QueryRowContext(ctx, query, code))
	if err != nil {
		return nil, wrap("get record by code", err)
	}
	return r, nil
}

func (s *RecordStore) GetByDocumentNumber(ctx context.Context, number string, docType models.DocumentType) (*models.VerificationRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM verification_records WHERE document_type = $1 AND document_number = $2`
	r, err := scanRecord(tx.Querier(ctx, s.db).QueryRowContext(ctx, query, string(docType), number))
	if err != nil {
		return nil, wrap("get record by number", err)
	}
	return r, nil
}

func (s *RecordStore) IncrementVerificationCount(ctx context.Context, recordID id.RecordID, at time.Time) (int64, error) {
	query := `
		UPDATE verification_records
		SET verification_count = verification_count + 1, last_verified_at = $2
		WHERE id = $1 AND revoked_at IS NULL AND is_active
		RETURNING verification_count
	`
	var count int64
	err := tx.Querier(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(recordID), at).Scan(&count)
	if err == nil {
		return count, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, wrap("increment verification count", err)
	}
	if err := s.requireExists(ctx, recordID, "increment verification count"); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("record not verifiable: %w", sentinel.ErrInvalidState)
}

// Revoke only touches unrevoked rows; a miss is disambiguated with a lookup.
func (s *RecordStore) Revoke(ctx context.Context, recordID id.RecordID, reason string, at time.Time) (*models.VerificationRecord, error) {
	query := `
		UPDATE verification_records
		SET revoked_at = $2, revocation_reason = $3, is_active = FALSE
		WHERE id = $1 AND revoked_at IS NULL
		RETURNING ` + recordColumns
	r, err := scanRecord(tx.Querier(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(recordID), at, reason))
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, wrap("revoke record", err)
	}

	if err := s.requireExists(ctx, recordID, "revoke record"); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("record already revoked: %w", sentinel.ErrInvalidState)
}

// requireExists tells a guarded UPDATE that matched no row apart from a
// missing record.
func (s *RecordStore) requireExists(ctx context.Context, recordID id.RecordID, op string) error {
	var exists bool
	if err := tx.Querier(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM verification_records WHERE id = $1)`, uuid.UUID(recordID),
	).Scan(&exists); err != nil {
		return wrap(op, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
	}
	return nil
}

func scanRecord(row scanner) (*models.VerificationRecord, error) {
	var (
		r        models.VerificationRecord
		rawID    uuid.UUID
		docType  string
		data     []byte
		features []byte
		hashtags []byte
	)
	err := row.Scan(
		&rawID, &r.VerificationCode, &r.DocumentHash, &docType, &r.DocumentNumber, &data,
		&r.IssuingOffice, &r.IssuingOfficer, &r.IssuedAt, &r.ExpiryDate, &r.VerificationCount, &r.LastVerifiedAt,
		&r.IsActive, &r.RevokedAt, &r.RevocationReason, &features, &hashtags,
	)
	if err != nil {
		return nil, err
	}
	r.ID = id.RecordID(rawID)
	r.DocumentType = models.DocumentType(docType)
	r.DocumentData = json.RawMessage(data)
	if len(features) > 0 {
		if err := json.Unmarshal(features, &r.SecurityFeatures); err != nil {
			return nil, fmt.Errorf("decode security features: %w", err)
		}
		if len(r.SecurityFeatures) == 0 {
			r.SecurityFeatures = nil
		}
	}
	if r.Hashtags, err = unmarshalStrings(hashtags); err != nil {
		return nil, fmt.Errorf("decode hashtags: %w", err)
	}
	return &r, nil
}
