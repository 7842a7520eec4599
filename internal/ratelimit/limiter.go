// Package ratelimit throttles activity injected into a running station from
// outside the session (MCP tools, the monitor's inject endpoint).
package ratelimit

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/nvandessel/ox500/internal/constants"
)

// ErrLimited is returned by Check when a key has no tokens left.
var ErrLimited = errors.New("rate limit exceeded")

// Limiter is a per-key token bucket. Unlike the in-session cooldowns it is
// called from request goroutines, so it is safe for concurrent use.
type Limiter[K comparable] struct {
	mu      sync.Mutex
	buckets map[K]*bucket
	rate    float64          // tokens per second
	burst   int              // max burst size (also initial token count)
	nowFunc func() time.Time // injectable clock for testing
}

type bucket struct {
	tokens    float64
	lastCheck time.Time
}

// NewLimiter creates a limiter with the given rate (tokens/sec) and burst size.
func NewLimiter[K comparable](rate float64, burst int) *Limiter[K] {
	return &Limiter[K]{
		buckets: make(map[K]*bucket),
		rate:    rate,
		burst:   burst,
		nowFunc: time.Now,
	}
}

// refill must be called with mu held.
func (l *Limiter[K]) refill(key K, now time.Time) *bucket {
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.burst), lastCheck: now}
		l.buckets[key] = b
		return b
	}
	if elapsed := now.Sub(b.lastCheck).Seconds(); elapsed > 0 {
		b.tokens = math.Min(b.tokens+l.rate*elapsed, float64(l.burst))
		b.lastCheck = now
	}
	return b
}

// Allow consumes a token for key if one is available.
func (l *Limiter[K]) Allow(key K) bool {
	ok, _ := l.Reserve(key)
	return ok
}

// Reserve consumes a token for key if one is available. When it is not,
// retryAfter is how long until the next token arrives (zero if the bucket
// never refills).
func (l *Limiter[K]) Reserve(key K) (ok bool, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.refill(key, l.nowFunc())
	if b.tokens >= 1.0 {
		b.tokens--
		return true, 0
	}
	if l.rate <= 0 {
		return false, 0
	}
	wait := (1.0 - b.tokens) / l.rate
	return false, time.Duration(math.Ceil(wait*1000)) * time.Millisecond
}

// LimitedError is the error Check returns. It matches ErrLimited.
type LimitedError struct {
	Key        string
	RetryAfter time.Duration // zero if the bucket never refills
}

func (e *LimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s for %s, retry in %s", ErrLimited, e.Key, e.RetryAfter)
	}
	return fmt.Sprintf("%s for %s", ErrLimited, e.Key)
}

// Is reports whether target is ErrLimited.
func (e *LimitedError) Is(target error) bool { return target == ErrLimited }

// Check is Allow with an error naming the key.
func (l *Limiter[K]) Check(key K) error {
	ok, retry := l.Reserve(key)
	if ok {
		return nil
	}
	return &LimitedError{Key: fmt.Sprint(key), RetryAfter: retry}
}

// NewActivityLimiter returns the default limiter for injected activity:
// 20 per minute per kind with a burst of 4. Glitches are also charged to the
// whisper bucket by callers that treat them as one channel.
func NewActivityLimiter() *Limiter[constants.Activity] {
	return NewLimiter[constants.Activity](20.0/60.0, 4)
}
