package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrSessionNotFound is returned when a state is unknown, already
// consumed or expired. The user has to restart the login.
var ErrSessionNotFound = errors.New("authorization session not found")

const (
	stateBytes    = 32
	verifierBytes = 64
)

type pkceSession struct {
	codeVerifier string
	createdAt    time.Time
}

// SessionStore issues and consumes single-use PKCE authorization
// sessions. Entries are process-local: a restart invalidates in-flight
// logins, which is acceptable for this flow.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]pkceSession
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a store with the given session TTL.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]pkceSession),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create generates a fresh authorization session and returns the state,
// the code verifier and the S256 code challenge derived from it.
func (s *SessionStore) Create() (state, codeVerifier, codeChallenge string, err error) {
	state, err = randomToken(stateBytes)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to generate state: %w", err)
	}

	codeVerifier, err = randomToken(verifierBytes)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to generate code verifier: %w", err)
	}

	h := sha256.Sum256([]byte(codeVerifier))
	codeChallenge = base64.RawURLEncoding.EncodeToString(h[:])

	s.mu.Lock()
	s.evictExpiredLocked()
	s.sessions[state] = pkceSession{
		codeVerifier: codeVerifier,
		createdAt:    s.now(),
	}
	s.mu.Unlock()

	return state, codeVerifier, codeChallenge, nil
}

// Consume atomically removes the session for state and returns its code
// verifier. At most one caller succeeds per state; later calls and
// calls after the TTL fail with ErrSessionNotFound.
func (s *SessionStore) Consume(state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[state]
	if !ok {
		return "", ErrSessionNotFound
	}
	delete(s.sessions, state)

	if s.now().Sub(sess.createdAt) > s.ttl {
		return "", ErrSessionNotFound
	}

	return sess.codeVerifier, nil
}

// Len reports the number of live sessions. Used by diagnostics.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) evictExpiredLocked() {
	cutoff := s.now().Add(-s.ttl)
	for state, sess := range s.sessions {
		if sess.createdAt.Before(cutoff) {
			delete(s.sessions, state)
		}
	}
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
