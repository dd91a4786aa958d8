// Package ratelimit provides per-client token buckets for the HTTP API.
package ratelimit

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	xhttp "AstroCore/pkg/http"
)

type bucket struct {
	tokens float64
	last   time.Time
}

// Limiter keeps one token bucket per key. Idle buckets are dropped by Sweep.
type Limiter struct {
	mu       sync.Mutex
	m        map[string]*bucket
	rate     float64 // tokens per second
	capacity float64
	now      func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New creates a limiter refilling rate tokens per second up to burst.
func New(rate float64, burst int, opts ...Option) *Limiter {
	if burst < 1 {
		burst = 1
	}
	l := &Limiter{
		m:        make(map[string]*bucket),
		rate:     rate,
		capacity: float64(burst),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.m[key]
	if !ok {
		b = &bucket{tokens: l.capacity, last: now}
		l.m[key] = b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens += elapsed * l.rate
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Sweep drops buckets untouched for longer than idle and returns how many.
func (l *Limiter) Sweep(idle time.Duration) int {
	cutoff := l.now().Add(-idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, b := range l.m {
		if b.last.Before(cutoff) {
			delete(l.m, k)
			n++
		}
	}
	return n
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}

// Middleware rejects requests over the limit with 429, keyed by client IP.
// A non-positive rate disables limiting.
func (l *Limiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if l.rate <= 0 || l.Allow(c.RealIP()) {
				return next(c)
			}
			c.Response().Header().Set("Retry-After", "1")
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded"))
		}
	}
}
