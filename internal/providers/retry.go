package providers

import (
	"context"
	"errors"
	"time"
)

// RateLimitError marks a retryable provider failure.
type RateLimitError struct {
	Provider string
}

func (e *RateLimitError) Error() string { return e.Provider + ": rate limited" }

// AuthError marks a terminal credential failure; never retried.
type AuthError struct {
	Provider string
	Message  string
}

func (e *AuthError) Error() string {
	return e.Provider + ": authentication error: " + e.Message
}

// IsAuthError reports whether err is a credential failure.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// retryWithBackoff runs fn up to maxRetries+1 times, doubling the delay
// after each rate-limited attempt. Auth errors and other non-retryable
// failures return immediately. Context cancellation is honored between
// attempts.
func retryWithBackoff(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		var rle *RateLimitError
		if !errors.As(lastErr, &rle) {
			return lastErr
		}

		if attempt < maxRetries {
			backoff := baseDelay * time.Duration(1<<uint(attempt))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return lastErr
}
