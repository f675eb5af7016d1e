package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"docverify/internal/verification/models"
	id "docverify/pkg/domain"
	"docverify/pkg/platform/sentinel"
)

// HistoryStore is an append-only slice ordered by insertion.
type HistoryStore struct {
	mu      sync.RWMutex
	entries []*models.HistoryEntry
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

func (s *HistoryStore) Append(_ context.Context, entry *models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := *entry
	e.FraudIndicators = slices.Clone(entry.FraudIndicators)
	s.entries = append(s.entries, &e)
	return nil
}

func (s *HistoryStore) ListByRecord(_ context.Context, recordID id.RecordID, limit int) ([]*models.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.HistoryEntry
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.VerificationRecordID != nil && *e.VerificationRecordID == recordID {
			c := *e
			out = append(out, &c)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *HistoryStore) LatestForRecord(ctx context.Context, recordID id.RecordID) (*models.HistoryEntry, error) {
	entries, err := s.ListByRecord(ctx, recordID, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return entries[0], nil
}

func (s *HistoryStore) CountByIPSince(_ context.Context, ip string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, e := range s.entries {
		if e.IPAddress == ip && !e.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *HistoryStore) ListSince(_ context.Context, since time.Time) ([]*models.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.HistoryEntry
	for _, e := range s.entries {
		if !e.CreatedAt.Before(since) {
			c := *e
			out = append(out, &c)
		}
	}
	slices.SortStableFunc(out, func(a, b *models.HistoryEntry) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}
