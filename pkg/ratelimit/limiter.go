// Package ratelimit provides a caller-configured request throttle. The
// engine itself imposes no rate limit; a Limiter only spaces out requests
// when the caller asks for a minimum interval between them.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum interval between consecutive requests.
// A nil Limiter or a zero interval disables throttling entirely.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// New creates a limiter with the given minimum interval. Pass 0 to disable.
func New(interval time.Duration) *Limiter {
	if interval <= 0 {
		return nil
	}
	return &Limiter{interval: interval}
}

// Wait blocks until the next request slot is available or the context is
// cancelled. Safe for concurrent use.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	now := time.Now()
	slot := l.next
	if slot.Before(now) {
		slot = now
	}
	l.next = slot.Add(l.interval)
	l.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
