package ratelimit

import (
	"sync"
	"time"
)

// Result represents the outcome of an admission check.
type Result struct {
	Allowed    bool          `json:"allowed"`
	Limit      int           `json:"limit"`
	Remaining  int           `json:"remaining"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
}

// Limiter admits requests per session over a sliding window. Sessions never
// share quota.
type Limiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	windows map[string][]time.Time
	now     func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces the time source. Tests use this to slide windows
// without sleeping.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New creates a limiter admitting at most limit requests per session within
// any window-sized interval.
func New(limit int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		limit:   limit,
		window:  window,
		windows: make(map[string][]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow checks and records one request for the session. Timestamps older
// than the window are dropped first; the request is admitted and recorded
// only when the retained count is below the limit. A rejected request is
// not recorded. The first request of an unseen session is always admitted.
func (l *Limiter) Allow(sessionID string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	old := l.windows[sessionID]
	kept := old[:0]
	for _, ts := range old {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.limit {
		l.windows[sessionID] = kept
		result := Result{Allowed: false, Limit: l.limit}
		if len(kept) > 0 {
			// The slot frees when the oldest retained timestamp leaves
			// the window.
			result.RetryAfter = kept[0].Add(l.window).Sub(now)
		}
		return result
	}

	kept = append(kept, now)
	l.windows[sessionID] = kept
	return Result{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit - len(kept),
	}
}

// Reset clears recorded requests for the session.
func (l *Limiter) Reset(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, sessionID)
}
