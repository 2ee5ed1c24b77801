package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter provides rate limiting functionality
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// TokenBucketLimiter keeps one token bucket per key in process memory
type TokenBucketLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewTokenBucketLimiter creates a limiter that refills requestsPerMinute
// tokens a minute up to burst. A burst of zero or less allows a full
// minute's worth at once.
func NewTokenBucketLimiter(requestsPerMinute, burst int) *TokenBucketLimiter {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(requestsPerMinute))
	}
	if burst <= 0 {
		burst = requestsPerMinute
	}
	return &TokenBucketLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		burst:   burst,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
}

// Allow checks if a request is allowed
func (l *TokenBucketLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.idleTTL {
		l.sweep(now)
	}

	b, exists := l.buckets[key]
	if !exists {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	return b.limiter.AllowN(now, 1), nil
}

// Reset resets the rate limit for a key
func (l *TokenBucketLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.buckets, key)
	return nil
}

// sweep drops buckets idle for longer than idleTTL. Caller holds mu.
func (l *TokenBucketLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idleTTL {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// AuthorRateLimiter wraps a rate limiter for per-author limiting
type AuthorRateLimiter struct {
	limiter           RateLimiter
	requestsPerMinute int
}

// NewAuthorRateLimiter creates an in-process per-author limiter
func NewAuthorRateLimiter(requestsPerMinute, burst int) *AuthorRateLimiter {
	return &AuthorRateLimiter{
		limiter:           NewTokenBucketLimiter(requestsPerMinute, burst),
		requestsPerMinute: requestsPerMinute,
	}
}

// NewAuthorRateLimiterWith wraps an existing limiter such as the
// DynamoDB-backed one
func NewAuthorRateLimiterWith(limiter RateLimiter, requestsPerMinute int) *AuthorRateLimiter {
	return &AuthorRateLimiter{limiter: limiter, requestsPerMinute: requestsPerMinute}
}

// Allow checks if a request from an author is allowed
func (l *AuthorRateLimiter) Allow(ctx context.Context, authorID string) (bool, error) {
	return l.limiter.Allow(ctx, fmt.Sprintf("author:%s", authorID))
}

// Reset clears the author's bucket
func (l *AuthorRateLimiter) Reset(ctx context.Context, authorID string) error {
	return l.limiter.Reset(ctx, fmt.Sprintf("author:%s", authorID))
}

// RequestsPerMinute returns the configured sustained rate
func (l *AuthorRateLimiter) RequestsPerMinute() int {
	return l.requestsPerMinute
}
