package memory

import (
	"context"
	"sync"
	"time"

	"docverify/internal/verification/models"
	id "docverify/pkg/domain"
	"docverify/pkg/platform/sentinel"
)

type SessionStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*models.VerificationSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[id.SessionID]*models.VerificationSession)}
}

func (s *SessionStore) Create(_ context.Context, session *models.VerificationSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.SessionID]; exists {
		return sentinel.ErrConflict
	}
	c := *session
	s.sessions[session.SessionID] = &c
	return nil
}

func (s *SessionStore) Get(_ context.Context, sessionID id.SessionID) (*models.VerificationSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *sess
	return &c, nil
}

func (s *SessionStore) Touch(_ context.Context, sessionID id.SessionID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if at.After(sess.LastActivity) {
		sess.LastActivity = at
	}
	return nil
}

func (s *SessionStore) IncrementVerifications(_ context.Context, sessionID id.SessionID, limit int, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	if limit > 0 && sess.CurrentVerifications >= limit {
		return sess.CurrentVerifications, sentinel.ErrLimitExceeded
	}
	sess.CurrentVerifications++
	if at.After(sess.LastActivity) {
		sess.LastActivity = at
	}
	return sess.CurrentVerifications, nil
}

func (s *SessionStore) ExpireIdle(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sess := range s.sessions {
		if sess.Status == models.SessionActive && sess.LastActivity.Before(cutoff) {
			sess.Status = models.SessionExpired
			n++
		}
	}
	return n, nil
}
