package memory

import (
	"context"
	"sync"
	"time"

	"docverify/internal/verification/models"
	id "docverify/pkg/domain"
	"docverify/pkg/platform/sentinel"
)

type APIKeyStore struct {
	mu   sync.Mutex
	keys map[id.APIKeyID]*models.APIKey
}

func NewAPIKeyStore() *APIKeyStore {
	return &APIKeyStore{keys: make(map[id.APIKeyID]*models.APIKey)}
}

func (s *APIKeyStore) Create(_ context.Context, key *models.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.keys[key.ID]; exists {
		return sentinel.ErrConflict
	}
	c := *key
	s.keys[key.ID] = &c
	return nil
}

func (s *APIKeyStore) Get(_ context.Context, keyID id.APIKeyID) (*models.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[keyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *k
	return &c, nil
}

func (s *APIKeyStore) ConsumeQuota(_ context.Context, keyID id.APIKeyID, now time.Time) (*models.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[keyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	k.RollPeriod(now)
	if k.MonthlyLimit > 0 && k.CurrentUsage >= k.MonthlyLimit {
		c := *k
		return &c, sentinel.ErrLimitExceeded
	}
	k.CurrentUsage++
	c := *k
	return &c, nil
}
