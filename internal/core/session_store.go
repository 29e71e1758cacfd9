package core

// session_store.go keeps workflow sessions in memory, keyed by random IDs.
//
// Sessions idle for longer than the TTL are removed by Sweep, which the
// janitor goroutine runs on a ticker until its context is cancelled.

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// DefaultSessionTTL is how long an idle session is kept.
const DefaultSessionTTL = 2 * time.Hour

type sessionEntry struct {
	session    *Session
	lastAccess time.Time
}

// SessionStore maps session IDs to sessions.
type SessionStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// NewSessionStore creates an empty store. ttl <= 0 uses DefaultSessionTTL.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

// Create starts a new session on the home page.
func (s *SessionStore) Create() *Session {
	sess := NewSession(uuid.New().String())

	s.mu.Lock()
	s.sessions[sess.ID] = &sessionEntry{session: sess, lastAccess: s.now()}
	s.mu.Unlock()

	return sess
}

// Get returns the session for id and refreshes its last access time.
func (s *SessionStore) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := s.now()
	if now.Sub(entry.lastAccess) > s.ttl {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	entry.lastAccess = now
	return entry.session, nil
}

// GetOrCreate returns the session for id, or a new one when id is unknown or expired.
func (s *SessionStore) GetOrCreate(id string) (*Session, bool) {
	if sess, err := s.Get(id); err == nil {
		return sess, false
	}
	return s.Create(), true
}

// Delete removes a session.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions idle since before now-ttl and returns how many it removed.
func (s *SessionStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, entry := range s.sessions {
		if now.Sub(entry.lastAccess) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// StartJanitor sweeps expired sessions every interval until ctx is cancelled.
// It blocks; run it in its own goroutine.
func (s *SessionStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.ttl / 4
	}
	slog.Info("session janitor started", "ttl", s.ttl, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return
		case <-ticker.C:
			start := time.Now()
			removed := s.Sweep(s.now())
			if removed > 0 {
				slog.Info("expired sessions removed",
					"removed", removed,
					"remaining", s.Len(),
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}
		}
	}
}
