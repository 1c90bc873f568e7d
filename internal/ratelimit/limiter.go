// Package ratelimit throttles repeated attempts per key.
package ratelimit

import (
	"sync"
	"time"

	"grimm.is/wingwifi/internal/clock"
)

// Limiter manages fixed-window limits for multiple keys.
type Limiter struct {
	limiters map[string]*bucket
	mu       sync.Mutex
	clock    clock.Clock
}

type bucket struct {
	tokens   int
	limit    int
	interval time.Duration
	lastFill time.Time
}

// NewLimiter creates a limiter. A nil clock uses the real clock.
func NewLimiter(clk clock.Clock) *Limiter {
	return &Limiter{
		limiters: make(map[string]*bucket),
		clock:    clock.OrDefault(clk),
	}
}

// Allow takes one token for key. At most limit calls succeed per interval.
func (l *Limiter) Allow(key string, limit int, interval time.Duration) bool {
	return l.AllowN(key, limit, interval, 1)
}

// AllowN takes n tokens for key.
func (l *Limiter) AllowN(key string, limit int, interval time.Duration, n int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	b, exists := l.limiters[key]
	if !exists {
		b = &bucket{tokens: limit, limit: limit, interval: interval, lastFill: now}
		l.limiters[key] = b
	}

	if now.Sub(b.lastFill) >= b.interval {
		b.tokens = b.limit
		b.lastFill = now
	}
	if b.tokens < n {
		return false
	}
	b.tokens -= n
	return true
}

// Reset clears the limit for key, e.g. after a successful login.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.limiters, key)
}

// CleanupExpired removes buckets whose window started more than maxAge ago.
func (l *Limiter) CleanupExpired(maxAge time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	removed := 0
	for key, b := range l.limiters {
		if now.Sub(b.lastFill) > maxAge {
			delete(l.limiters, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
