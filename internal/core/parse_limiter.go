package core

// parse_limiter.go caps how many uploads are parsed at once.
//
// A whole file is held in memory while it is parsed, so parallel uploads are
// bounded by a weighted semaphore. When every slot is taken, new requests wait up
// to maxWait before failing with ErrTooManyParses.
//
// WaitForDrain blocks until in-flight parses finish, for graceful shutdown.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyParses is returned when all parse slots are occupied and the wait
// timeout expires. Clients should retry after a short delay.
var ErrTooManyParses = errors.New("too many concurrent uploads, please try again later")

// DefaultMaxConcurrentParses is the default limit for parallel parses.
const DefaultMaxConcurrentParses = 5

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// ParseLimiter controls concurrent file parsing.
type ParseLimiter struct {
	sem     *semaphore.Weighted
	max     int
	maxWait time.Duration
	active  atomic.Int64
}

// NewParseLimiter creates a limiter that allows at most maxConcurrent parses.
// Requests that cannot acquire a slot within maxWait receive ErrTooManyParses.
func NewParseLimiter(maxConcurrent int, maxWait time.Duration) *ParseLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentParses
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &ParseLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		max:     maxConcurrent,
		maxWait: maxWait,
	}
}

// Acquire waits for a parse slot.
// The caller MUST call Release when parsing completes (use defer).
func (l *ParseLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyParses
	}
	l.active.Add(1)
	return nil
}

// Release returns a slot taken by Acquire.
func (l *ParseLimiter) Release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// ActiveCount returns the number of parses in flight.
func (l *ParseLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the slot count.
func (l *ParseLimiter) MaxConcurrent() int {
	return l.max
}

// Available returns the number of free slots.
func (l *ParseLimiter) Available() int {
	return l.max - l.ActiveCount()
}

// WaitForDrain blocks until all active parses complete or ctx is cancelled.
func (l *ParseLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ParseLimiterStatus is a snapshot of the limiter for the health endpoint.
type ParseLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state.
func (l *ParseLimiter) Status() ParseLimiterStatus {
	active := l.ActiveCount()
	return ParseLimiterStatus{
		Active:        active,
		Available:     l.max - active,
		MaxConcurrent: l.max,
	}
}
