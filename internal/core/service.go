package core

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// ParseTimeout bounds a single upload parse.
var ParseTimeout = 2 * time.Minute

// Service ties sessions to file parsing. Web handlers and tests use it to drive
// the workflow without reaching into the store or limiter directly.
type Service struct {
	sessions *SessionStore
	limiter  *ParseLimiter
}

// NewService creates a Service. Nil arguments get defaults.
func NewService(sessions *SessionStore, limiter *ParseLimiter) *Service {
	if sessions == nil {
		sessions = NewSessionStore(DefaultSessionTTL)
	}
	if limiter == nil {
		limiter = NewParseLimiter(DefaultMaxConcurrentParses, DefaultMaxWaitTime)
	}
	return &Service{sessions: sessions, limiter: limiter}
}

// Sessions returns the session store.
func (s *Service) Sessions() *SessionStore {
	return s.sessions
}

// Limiter returns the parse limiter.
func (s *Service) Limiter() *ParseLimiter {
	return s.limiter
}

// LoadUpload parses an uploaded file and loads it into sess.
// Parsing waits for a limiter slot and is abandoned once ParseTimeout elapses.
// On any error sess keeps its previous dataset.
func (s *Service) LoadUpload(ctx context.Context, sess *Session, fileName string, r io.Reader) (*Dataset, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, ParseTimeout)
	defer cancel()

	start := time.Now()
	ds, err := LoadFile(ctx, fileName, r)
	if err != nil {
		return nil, err
	}
	if err := sess.Load(ds); err != nil {
		return nil, err
	}

	slog.Info("dataset loaded",
		"session_id", sess.ID,
		"file", fileName,
		"columns", len(ds.Columns),
		"rows", ds.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return ds, nil
}
