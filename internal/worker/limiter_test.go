package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "actor"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "deadline"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(1, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "actor"); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	if limiter.Allow("actor") {
		t.Errorf("expected allow to fail (exhausted tokens)")
	}

	// Other keys have their own bucket
	if !limiter.Allow("issue") {
		t.Errorf("expected allow for other key")
	}
}

func TestLimiter_ZeroRateIsUnlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)

	start := time.Now()
	for i := 0; i < 100; i++ {
		if !limiter.Allow("actor") {
			t.Fatalf("call %d was throttled with rate 0", i)
		}
	}
	if time.Since(start) > time.Second {
		t.Errorf("unlimited limiter took %v", time.Since(start))
	}
}

func TestLimiter_SetRate(t *testing.T) {
	limiter := NewLimiter(10, 10)

	limiter.SetRate("memory_event", 0.1, 1)

	if !limiter.Allow("memory_event") {
		t.Errorf("first request should pass")
	}
	if limiter.Allow("memory_event") {
		t.Errorf("second request should fail")
	}
	if !limiter.Allow("actor") {
		t.Errorf("other key should pass")
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	if !limiter.Allow("actor") {
		t.Fatal("first request should pass")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, "actor"); err == nil {
		t.Error("expected an error once the context expires")
	}
}
