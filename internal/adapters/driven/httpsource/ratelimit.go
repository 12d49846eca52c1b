package httpsource

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// defaultBackoff applies when a 429 response carries no Retry-After.
const defaultBackoff = 30 * time.Second

// RateLimiter throttles requests with a token bucket. After a 429 it
// rejects requests until the server's Retry-After has passed, so callers
// fall back immediately instead of queueing behind the backoff.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	now     func() time.Time
}

// NewRateLimiter creates a limiter allowing rps sustained requests per
// second with the given burst. burst below 1 is treated as 1.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		now:     time.Now,
	}
}

// Wait blocks until the token bucket allows a request. It fails fast while
// a server-requested backoff is in effect.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if now := r.now(); now.Before(retryAt) {
		return fmt.Errorf("rate limited by source, retry in %s", retryAt.Sub(now).Round(time.Second))
	}
	return r.limiter.Wait(ctx)
}

// RecordRateLimit starts a backoff from a 429 response.
func (r *RateLimiter) RecordRateLimit(resp *http.Response) {
	backoff := defaultBackoff
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			backoff = time.Duration(secs) * time.Second
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt = r.now().Add(backoff)
}
