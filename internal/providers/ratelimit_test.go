package providers

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterAllowsBurst(t *testing.T) {
	limiter := NewRateLimiter(10)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if err := limiter.Wait(ctx); err != nil {
			t.Fatalf("wait %d failed: %v", i, err)
		}
	}

	status := limiter.Status()
	if status.TotalConsumed != 10 {
		t.Errorf("consumed = %d, want 10", status.TotalConsumed)
	}
	if status.TokensLimit != 10 {
		t.Errorf("limit = %d, want 10", status.TokensLimit)
	}
}

func TestRateLimiterBlocksWhenExhausted(t *testing.T) {
	limiter := NewRateLimiter(1)

	ctx := context.Background()
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	// The bucket is empty; the next wait must respect cancellation.
	cancelCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(cancelCtx); err == nil {
		t.Error("expected context error on exhausted bucket")
	}
}

func TestRateLimiterDefaultsOnBadLimit(t *testing.T) {
	limiter := NewRateLimiter(0)
	if limiter.Status().TokensLimit != 150 {
		t.Errorf("limit = %d, want default 150", limiter.Status().TokensLimit)
	}
}
