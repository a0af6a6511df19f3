package ai

import (
	"sync"
	"time"
)

// RateLimiter enforces global and per-user limits on LLM calls.
type RateLimiter struct {
	mu              sync.Mutex
	perMinute       []time.Time
	perHour         []time.Time
	maxPerMinute    int
	maxPerHour      int
	minUserCooldown time.Duration
	lastByUser      map[string]time.Time
}

// DefaultRateLimiter returns a limiter: 20/min, 200/hour, 2s per-user cooldown.
// Per-user load is one call per dialog turn, so the cooldown mostly catches
// double-sent messages.
func DefaultRateLimiter() *RateLimiter {
	return &RateLimiter{
		perMinute:       make([]time.Time, 0, 32),
		perHour:         make([]time.Time, 0, 256),
		maxPerMinute:    20,
		maxPerHour:      200,
		minUserCooldown: 2 * time.Second,
		lastByUser:      make(map[string]time.Time),
	}
}

// Allow returns true if an LLM call is allowed for this user at now.
func (l *RateLimiter) Allow(userID string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if last, ok := l.lastByUser[userID]; ok && now.Sub(last) < l.minUserCooldown {
		return false
	}

	cutMin := now.Add(-1 * time.Minute)
	cutHour := now.Add(-1 * time.Hour)
	var nm []time.Time
	for _, t := range l.perMinute {
		if t.After(cutMin) {
			nm = append(nm, t)
		}
	}
	l.perMinute = nm
	var nh []time.Time
	for _, t := range l.perHour {
		if t.After(cutHour) {
			nh = append(nh, t)
		}
	}
	l.perHour = nh

	if len(l.perMinute) >= l.maxPerMinute || len(l.perHour) >= l.maxPerHour {
		return false
	}
	return true
}

// Record records that an LLM call was made for userID at now. Call after a
// successful Generate.
func (l *RateLimiter) Record(userID string, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.perMinute = append(l.perMinute, now)
	l.perHour = append(l.perHour, now)
	l.lastByUser[userID] = now
}
