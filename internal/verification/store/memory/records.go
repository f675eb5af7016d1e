// Package memory implements the verification stores with mutex-guarded maps.
// It backs tests and single-instance development runs.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"docverify/internal/verification/models"
	id "docverify/pkg/domain"
	"docverify/pkg/platform/sentinel"
)

type documentKey struct {
	docType models.DocumentType
	number  string
}

// RecordStore keeps records by id with code and document-number indexes.
type RecordStore struct {
	mu       sync.RWMutex
	records  map[id.RecordID]*models.VerificationRecord
	byCode   map[string]id.RecordID
	byNumber map[documentKey]id.RecordID
}

func NewRecordStore() *RecordStore {
	return &RecordStore{
		records:  make(map[id.RecordID]*models.VerificationRecord),
		byCode:   make(map[string]id.RecordID),
		byNumber: make(map[documentKey]id.RecordID),
	}
}

func (s *RecordStore) Create(_ context.Context, record *models.VerificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byCode[record.VerificationCode]; exists {
		return fmt.Errorf("verification code taken: %w", sentinel.ErrConflict)
	}
	key := documentKey{docType: record.DocumentType, number: record.DocumentNumber}
	if _, exists := s.byNumber[key]; exists {
		return fmt.Errorf("document number taken: %w", sentinel.ErrConflict)
	}
	s.records[record.ID] = record.Clone()
	s.byCode[record.VerificationCode] = record.ID
	s.byNumber[key] = record.ID
	return nil
}

func (s *RecordStore) GetByCode(_ context.Context, code string) (*models.VerificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recordID, ok := s.byCode[code]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.records[recordID].Clone(), nil
}

func (s *RecordStore) GetByDocumentNumber(_ context.Context, number string, docType models.DocumentType) (*models.VerificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recordID, ok := s.byNumber[documentKey{docType: docType, number: number}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.records[recordID].Clone(), nil
}

func (s *RecordStore) IncrementVerificationCount(_ context.Context, recordID id.RecordID, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[recordID]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	if r.RevokedAt != nil || !r.IsActive {
		return 0, fmt.Errorf("record not verifiable: %w", sentinel.ErrInvalidState)
	}
	r.VerificationCount++
	stamp := at
	r.LastVerifiedAt = &stamp
	return r.VerificationCount, nil
}

func (s *RecordStore) Revoke(_ context.Context, recordID id.RecordID, reason string, at time.Time) (*models.VerificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[recordID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if r.RevokedAt != nil {
		return nil, fmt.Errorf("record already revoked: %w", sentinel.ErrInvalidState)
	}
	stamp := at
	r.RevokedAt = &stamp
	r.RevocationReason = reason
	r.IsActive = false
	return r.Clone(), nil
}
