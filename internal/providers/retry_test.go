package providers

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryWithBackoffRetriesRateLimits(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return &RateLimitError{Provider: "test"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryWithBackoffGivesUp(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), 2, time.Millisecond, func() error {
		calls++
		return &RateLimitError{Provider: "test"}
	})

	var rle *RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want maxRetries+1 = 3", calls)
	}
}

func TestRetryWithBackoffNeverRetriesAuthErrors(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return &AuthError{Provider: "test", Message: "bad key"}
	})

	if !IsAuthError(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (auth is terminal)", calls)
	}
}

func TestRetryWithBackoffStopsOnOtherErrors(t *testing.T) {
	calls := 0
	sentinel := errors.New("parse failure")
	err := retryWithBackoff(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryWithBackoffHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retryWithBackoff(ctx, 3, time.Hour, func() error {
		return &RateLimitError{Provider: "test"}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
