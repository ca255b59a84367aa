package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock is a controllable time source for window tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestFirstRequestAllowed(t *testing.T) {
	l := New(1, time.Minute)

	result := l.Allow("fresh-session")
	if !result.Allowed {
		t.Fatal("expected first request of an unseen session to be admitted")
	}
	if result.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", result.Remaining)
	}
}

func TestLimitRejected(t *testing.T) {
	clock := newFakeClock()
	l := New(3, time.Minute, WithClock(clock.Now))

	for i := 1; i <= 3; i++ {
		result := l.Allow("s1")
		if !result.Allowed {
			t.Fatalf("expected request %d to be admitted", i)
		}
		if want := 3 - i; result.Remaining != want {
			t.Errorf("request %d: Remaining = %d, want %d", i, result.Remaining, want)
		}
	}

	result := l.Allow("s1")
	if result.Allowed {
		t.Fatal("expected request over the limit to be rejected")
	}
	if result.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", result.Remaining)
	}
	if result.RetryAfter <= 0 {
		t.Errorf("RetryAfter = %v, want > 0", result.RetryAfter)
	}
}

func TestWindowSlides(t *testing.T) {
	clock := newFakeClock()
	l := New(2, 60*time.Second, WithClock(clock.Now))

	if !l.Allow("s1").Allowed {
		t.Fatal("expected first request to be admitted")
	}
	clock.Advance(1 * time.Second)
	if !l.Allow("s1").Allowed {
		t.Fatal("expected second request to be admitted")
	}
	clock.Advance(1 * time.Second)
	if l.Allow("s1").Allowed {
		t.Fatal("expected third request inside the window to be rejected")
	}

	// 61s after the first request its timestamp has left the window.
	clock.Advance(59 * time.Second)
	result := l.Allow("s1")
	if !result.Allowed {
		t.Fatal("expected admission after the oldest timestamp expired")
	}
}

func TestRejectionNotRecorded(t *testing.T) {
	clock := newFakeClock()
	l := New(1, time.Minute, WithClock(clock.Now))

	l.Allow("s1")

	// Hammer while throttled; none of these should extend the quota.
	for i := 0; i < 10; i++ {
		clock.Advance(time.Second)
		if l.Allow("s1").Allowed {
			t.Fatalf("expected rejection %d inside the window", i+1)
		}
	}

	// 10s of rejections later the original timestamp still expires on
	// schedule, 60s after it was recorded.
	clock.Advance(51 * time.Second)
	if !l.Allow("s1").Allowed {
		t.Fatal("expected admission once the admitted timestamp expired")
	}
}

func TestRetryAfter(t *testing.T) {
	clock := newFakeClock()
	l := New(1, 60*time.Second, WithClock(clock.Now))

	l.Allow("s1")
	clock.Advance(10 * time.Second)

	result := l.Allow("s1")
	if result.Allowed {
		t.Fatal("expected rejection")
	}
	if want := 50 * time.Second; result.RetryAfter != want {
		t.Errorf("RetryAfter = %v, want %v", result.RetryAfter, want)
	}
}

func TestSeparateSessions(t *testing.T) {
	l := New(2, time.Minute)

	l.Allow("s1")
	l.Allow("s1")
	if l.Allow("s1").Allowed {
		t.Fatal("expected s1 to be throttled")
	}

	if !l.Allow("s2").Allowed {
		t.Fatal("expected s2 to keep its own quota")
	}
}

func TestReset(t *testing.T) {
	l := New(1, time.Minute)

	l.Allow("s1")
	if l.Allow("s1").Allowed {
		t.Fatal("expected s1 to be throttled")
	}

	l.Reset("s1")

	if !l.Allow("s1").Allowed {
		t.Fatal("expected admission after reset")
	}
}

func TestConcurrentAllow(t *testing.T) {
	l := New(1000, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l.Allow("shared")
				l.Allow(fmt.Sprintf("s%d", j))
			}
		}()
	}
	wg.Wait()

	result := l.Allow("shared")
	if !result.Allowed {
		t.Fatal("expected admission below the limit")
	}
	// 10 goroutines * 50 requests, plus this one.
	if want := 1000 - 501; result.Remaining != want {
		t.Errorf("Remaining = %d, want %d", result.Remaining, want)
	}
}

func TestRateLimitError(t *testing.T) {
	result := Result{Allowed: false, Limit: 10, RetryAfter: 42 * time.Second}
	err := NewRateLimitError("s1", result)

	if !errors.Is(err, ErrRateLimited) {
		t.Error("expected errors.Is to match the sentinel")
	}
	if !IsRateLimitError(err) {
		t.Error("expected IsRateLimitError to report true")
	}

	wrapped := fmt.Errorf("pipeline: %w", err)
	got := GetRateLimitError(wrapped)
	if got == nil {
		t.Fatal("expected GetRateLimitError to unwrap the typed error")
	}
	if got.SessionID != "s1" {
		t.Errorf("SessionID = %q, want %q", got.SessionID, "s1")
	}
	if got.RetryAfter != 42*time.Second {
		t.Errorf("RetryAfter = %v, want %v", got.RetryAfter, 42*time.Second)
	}

	if IsRateLimitError(nil) {
		t.Error("expected false for nil error")
	}
	if IsRateLimitError(errors.New("other")) {
		t.Error("expected false for unrelated error")
	}
	if GetRateLimitError(errors.New("other")) != nil {
		t.Error("expected nil for unrelated error")
	}
}
