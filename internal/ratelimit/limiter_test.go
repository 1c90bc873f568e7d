package ratelimit

import (
	"testing"
	"time"

	"grimm.is/wingwifi/internal/clock"
)

func newTestLimiter() (*Limiter, *clock.MockClock) {
	mock := clock.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return NewLimiter(mock), mock
}

func TestLimiter_Allow_Basic(t *testing.T) {
	l, _ := newTestLimiter()

	// First 3 requests should succeed
	for i := 0; i < 3; i++ {
		if !l.Allow("test-key", 3, time.Minute) {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	if l.Allow("test-key", 3, time.Minute) {
		t.Error("4th request should be denied (over limit)")
	}
}

func TestLimiter_Allow_DifferentKeys(t *testing.T) {
	l, _ := newTestLimiter()

	for i := 0; i < 2; i++ {
		if !l.Allow("key1", 2, time.Minute) {
			t.Errorf("key1 request %d should be allowed", i+1)
		}
		if !l.Allow("key2", 2, time.Minute) {
			t.Errorf("key2 request %d should be allowed", i+1)
		}
	}

	if l.Allow("key1", 2, time.Minute) {
		t.Error("key1 should be rate limited")
	}
	if l.Allow("key2", 2, time.Minute) {
		t.Error("key2 should be rate limited")
	}
}

func TestLimiter_Allow_Refill(t *testing.T) {
	l, mock := newTestLimiter()

	for i := 0; i < 2; i++ {
		l.Allow("k", 2, time.Minute)
	}
	if l.Allow("k", 2, time.Minute) {
		t.Fatal("should be limited before the window ends")
	}

	mock.Advance(59 * time.Second)
	if l.Allow("k", 2, time.Minute) {
		t.Error("should still be limited at 59s")
	}

	mock.Advance(time.Second)
	if !l.Allow("k", 2, time.Minute) {
		t.Error("should be allowed after the window")
	}
	if !l.Allow("k", 2, time.Minute) {
		t.Error("second request of the new window should be allowed")
	}
	if l.Allow("k", 2, time.Minute) {
		t.Error("third request of the new window should be denied")
	}
}

func TestLimiter_AllowN(t *testing.T) {
	l, _ := newTestLimiter()

	if !l.AllowN("k", 5, time.Minute, 3) {
		t.Error("3 of 5 should be allowed")
	}
	if l.AllowN("k", 5, time.Minute, 3) {
		t.Error("another 3 of 5 should be denied")
	}
	if !l.AllowN("k", 5, time.Minute, 2) {
		t.Error("remaining 2 should be allowed")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l, _ := newTestLimiter()

	l.Allow("k", 1, time.Minute)
	if l.Allow("k", 1, time.Minute) {
		t.Fatal("should be limited")
	}
	l.Reset("k")
	if !l.Allow("k", 1, time.Minute) {
		t.Error("should be allowed after Reset")
	}
	if l.Len() != 1 {
		t.Errorf("Len = %d, want 1", l.Len())
	}
}

func TestLimiter_CleanupExpired(t *testing.T) {
	l, mock := newTestLimiter()

	l.Allow("old", 1, time.Minute)
	mock.Advance(10 * time.Minute)
	l.Allow("new", 1, time.Minute)

	if removed := l.CleanupExpired(5 * time.Minute); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if l.Len() != 1 {
		t.Errorf("Len = %d, want 1", l.Len())
	}
}
