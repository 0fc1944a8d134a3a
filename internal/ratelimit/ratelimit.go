// Package ratelimit provides a per-key sliding-window request limiter.
package ratelimit

import (
	"sync"
	"time"
)

// Defaults allow 10 requests per domain per minute.
const (
	DefaultMaxRequests = 10
	DefaultWindow      = time.Minute
)

// Limiter admits at most maxRequests per key within any trailing window.
// Keys whose window empties are removed.
type Limiter struct {
	mu          sync.Mutex
	windows     map[string][]time.Time
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

// New creates a Limiter. Non-positive arguments fall back to the defaults.
func New(maxRequests int, window time.Duration) *Limiter {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		windows:     make(map[string][]time.Time),
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// WithClock replaces the clock, for tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow reports whether a request for key may proceed and records it if so.
// Rejected requests are not recorded.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	recent := l.prune(key, now)
	if len(recent) >= l.maxRequests {
		return false
	}
	l.windows[key] = append(recent, now)
	return true
}

// Remaining returns how many more requests key may make in the current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return max(l.maxRequests-len(l.prune(key, l.now())), 0)
}

// prune drops timestamps outside the window and returns what is left.
// Caller holds mu.
func (l *Limiter) prune(key string, now time.Time) []time.Time {
	stamps, ok := l.windows[key]
	if !ok {
		return nil
	}
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	stamps = stamps[i:]
	if len(stamps) == 0 {
		delete(l.windows, key)
		return nil
	}
	l.windows[key] = stamps
	return stamps
}

// Keys returns the number of keys with a non-empty window.
func (l *Limiter) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
