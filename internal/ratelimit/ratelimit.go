// Package ratelimit implements per-identifier sliding-window admission control
// for endpoints that authenticate or reset credentials.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks attempt timestamps per caller identifier inside a trailing
// window. Prune, check and append happen in a single critical section so
// concurrent bursts from the same identifier cannot undercount.
type Limiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

// New creates a limiter allowing limit attempts per identifier within window.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		attempts: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Allow records an attempt for the identifier and reports whether it is
// admitted. Attempts older than the window are pruned first; a denied attempt
// is not recorded.
func (l *Limiter) Allow(identifier string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	live := l.attempts[identifier][:0]
	for _, t := range l.attempts[identifier] {
		if t.After(cutoff) {
			live = append(live, t)
		}
	}

	if len(live) >= l.limit {
		l.attempts[identifier] = live
		return false
	}

	l.attempts[identifier] = append(live, now)
	return true
}

// Reap drops identifiers whose every attempt has aged out of the window.
// Without it the per-identifier map grows for the life of the process; main
// runs it on a ticker.
func (l *Limiter) Reap() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	for id, times := range l.attempts {
		alive := false
		for _, t := range times {
			if t.After(cutoff) {
				alive = true
				break
			}
		}
		if !alive {
			delete(l.attempts, id)
		}
	}
}

// Len returns the number of tracked identifiers.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attempts)
}
