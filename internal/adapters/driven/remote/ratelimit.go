package remote

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HeaderRetryAfter is the retry-after header (seconds or HTTP date).
const HeaderRetryAfter = "Retry-After"

// RateLimiter paces requests with a token bucket and honours Retry-After.
type RateLimiter struct {
	mu         sync.Mutex
	bucket     *rate.Limiter
	retryAfter time.Time
}

// NewRateLimiter allows perSecond requests per second. Zero or less
// disables proactive throttling.
func NewRateLimiter(perSecond float64) *RateLimiter {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &RateLimiter{bucket: rate.NewLimiter(limit, 1)}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	until := r.retryAfter
	r.mu.Unlock()

	if d := time.Until(until); d > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}
	}
	return nil
}

// CheckResponse records a Retry-After deadline and returns a
// RateLimitError for 429 responses.
func (r *RateLimiter) CheckResponse(resp *http.Response) error {
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		return nil
	}

	retryAt := time.Now().Add(time.Second)
	if v := resp.Header.Get(HeaderRetryAfter); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			retryAt = time.Now().Add(time.Duration(seconds) * time.Second)
		} else if t, err := http.ParseTime(v); err == nil {
			retryAt = t
		}
	}

	r.mu.Lock()
	r.retryAfter = retryAt
	r.mu.Unlock()

	return &RateLimitError{RetryAt: retryAt}
}

// RetryAfter returns the current backoff deadline, zero if none.
func (r *RateLimiter) RetryAfter() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retryAfter
}
