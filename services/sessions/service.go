// Package sessions issues and validates bearer tokens for logged-in profiles.
// Sessions live in memory only; a restart logs everyone out.
package sessions

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"cinewatch/models"
)

var ErrInvalidSession = errors.New("invalid or expired session")

const defaultTTL = 30 * 24 * time.Hour

type Service struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	ttl      time.Duration
	now      func() time.Time
}

func NewService(ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Service{
		sessions: make(map[string]models.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create mints a new session token for the user.
func (s *Service) Create(userID string) models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	session := models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.sessions[session.Token] = session
	s.pruneLocked(now)
	return session
}

// Validate resolves a token to its user. Expired tokens are removed as a
// side effect.
func (s *Service) Validate(token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return "", ErrInvalidSession
	}
	if session.Expired(s.now()) {
		delete(s.sessions, token)
		return "", ErrInvalidSession
	}
	return session.UserID, nil
}

// Revoke removes a token. Revoking an unknown token is a no-op.
func (s *Service) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// RevokeUser removes every session belonging to the user.
func (s *Service) RevokeUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, token)
		}
	}
}

func (s *Service) pruneLocked(now time.Time) {
	for token, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, token)
		}
	}
}
