// Package session persists the server-side records behind bearer tokens.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"partnerdash/internal/identity/models"
	id "partnerdash/pkg/domain"
	"partnerdash/pkg/platform/sentinel"
)

// InMemorySessionStore keeps sessions in process memory. It is used in
// development and tests; multi-instance deployments use RedisStore.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*models.Session
}

func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[id.SessionID]*models.Session)}
}

func (s *InMemorySessionStore) Create(_ context.Context, session *models.Session) error {
	if session == nil {
		return fmt.Errorf("session is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return fmt.Errorf("session %s: %w", session.ID, sentinel.ErrAlreadyExists)
	}
	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

func (s *InMemorySessionStore) FindByID(_ context.Context, sessionID id.SessionID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, sentinel.ErrNotFound)
	}
	copied := *session
	return &copied, nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (s *InMemorySessionStore) Delete(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *InMemorySessionStore) DeleteByUser(_ context.Context, userID id.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for sid, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, sid)
			removed++
		}
	}
	return removed, nil
}

func (s *InMemorySessionStore) SetMFAVerified(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session %s: %w", sessionID, sentinel.ErrNotFound)
	}
	session.MFAVerified = true
	return nil
}

// DeleteExpired drops sessions whose expiry is at or before now.
func (s *InMemorySessionStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for sid, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, sid)
			removed++
		}
	}
	return removed, nil
}
