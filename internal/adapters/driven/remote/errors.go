package remote

import (
	"fmt"
	"net/http"
	"time"
)

// APIError is a non-2xx response from the SSP backend.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote: API error %d (URL: %s)", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("remote: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// Status implements domain.StatusError.
func (e *APIError) Status() int { return e.StatusCode }

// ServerMessage implements domain.StatusError.
func (e *APIError) ServerMessage() string { return e.Message }

// RateLimitError is returned when the backend answers 429.
type RateLimitError struct {
	RetryAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("remote: rate limited, retry at %s", e.RetryAt.Format(time.RFC3339))
}

// Status implements domain.StatusError.
func (e *RateLimitError) Status() int { return http.StatusTooManyRequests }

// ServerMessage implements domain.StatusError.
func (e *RateLimitError) ServerMessage() string { return "rate limited" }
