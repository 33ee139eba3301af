// Package webclient wraps outbound HTTP for the Google endpoints the
// service depends on (tokeninfo, Gemini). Retries cover 429 and 5xx;
// anything else is the caller's problem.
package webclient

import (
	"context"
	"net/http"
	"time"
)

func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// AttemptFunc runs one request and reports the status it got.
type AttemptFunc func() (status int, body []byte, err error)

const maxRetryDelay = 8 * time.Second

// DoWithRetry runs fn up to attempts times, backing off exponentially
// between transient failures (non-nil error, 429, or 5xx). The last
// attempt's outcome is returned as-is.
func DoWithRetry(ctx context.Context, attempts int, initialDelay time.Duration, fn AttemptFunc) (int, []byte, error) {
	if attempts <= 0 {
		attempts = 1
	}
	if initialDelay <= 0 {
		initialDelay = 500 * time.Millisecond
	}
	delay := initialDelay

	var (
		status int
		body   []byte
		err    error
	)
	for i := 0; i < attempts; i++ {
		status, body, err = fn()
		if err == nil && status != http.StatusTooManyRequests && status < 500 {
			return status, body, nil
		}
		if i == attempts-1 {
			break
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return status, body, ctx.Err()
		case <-t.C:
		}
		if delay < maxRetryDelay {
			delay *= 2
		}
	}
	return status, body, err
}
