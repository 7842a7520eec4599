package ratelimit

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nvandessel/ox500/internal/constants"
)

func TestNewLimiter(t *testing.T) {
	l := NewLimiter[string](10.0, 5)
	if l == nil {
		t.Fatal("NewLimiter returned nil")
	}
	if l.rate != 10.0 {
		t.Errorf("rate = %f, want 10.0", l.rate)
	}
	if l.burst != 5 {
		t.Errorf("burst = %d, want 5", l.burst)
	}
}

func TestAllow_ExceedsBurst(t *testing.T) {
	l := NewLimiter[constants.Activity](1.0, 2)

	for i := 0; i < 2; i++ {
		if !l.Allow(constants.ActivityFeed) {
			t.Errorf("request %d should be allowed (within burst)", i+1)
		}
	}
	if l.Allow(constants.ActivityFeed) {
		t.Error("request after burst exhaustion should be rejected")
	}
	if !l.Allow(constants.ActivityLog) {
		t.Error("other kinds have their own bucket")
	}
}

func TestReserve_RetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLimiter[string](2.0, 1) // one token every 500ms
	l.nowFunc = func() time.Time { return now }

	if ok, _ := l.Reserve("k"); !ok {
		t.Fatal("first reserve should succeed")
	}
	ok, retry := l.Reserve("k")
	if ok {
		t.Fatal("second reserve should fail")
	}
	if retry != 500*time.Millisecond {
		t.Errorf("retryAfter = %v, want 500ms", retry)
	}

	now = now.Add(200 * time.Millisecond)
	if _, retry = l.Reserve("k"); retry != 300*time.Millisecond {
		t.Errorf("retryAfter = %v, want 300ms", retry)
	}

	now = now.Add(300 * time.Millisecond)
	if ok, _ = l.Reserve("k"); !ok {
		t.Error("expected allow after refill")
	}
}

func TestAllow_BurstDoesNotExceedMax(t *testing.T) {
	now := time.Now()
	l := NewLimiter[string](100.0, 3)
	l.nowFunc = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		l.Allow("k")
	}
	now = now.Add(10 * time.Second)

	for i := 0; i < 3; i++ {
		if !l.Allow("k") {
			t.Errorf("request %d should be allowed after refill capped at burst", i+1)
		}
	}
	if l.Allow("k") {
		t.Error("4th request should be rejected (burst cap)")
	}
}

func TestCheck_ZeroRate(t *testing.T) {
	l := NewLimiter[constants.Activity](0, 1)
	if err := l.Check(constants.ActivityGlitch); err != nil {
		t.Fatalf("first check: %v", err)
	}
	err := l.Check(constants.ActivityGlitch)
	if !errors.Is(err, ErrLimited) {
		t.Errorf("err = %v, want ErrLimited", err)
	}
}

func TestAllow_ConcurrentAccess(t *testing.T) {
	l := NewLimiter[string](0, 100)

	var wg sync.WaitGroup
	allowed := make(chan bool, 200)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed <- l.Allow("concurrent")
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for a := range allowed {
		if a {
			count++
		}
	}
	if count != 100 {
		t.Errorf("allowed %d requests, want exactly the burst of 100", count)
	}
}

func TestNewActivityLimiter(t *testing.T) {
	l := NewActivityLimiter()
	if l.burst != 4 {
		t.Errorf("burst = %d, want 4", l.burst)
	}
}

func TestCheck_LimitedError(t *testing.T) {
	l := NewLimiter[constants.Activity](1, 1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.nowFunc = func() time.Time { return now }

	if err := l.Check(constants.ActivityFeed); err != nil {
		t.Fatalf("first check: %v", err)
	}
	err := l.Check(constants.ActivityFeed)
	var le *LimitedError
	if !errors.As(err, &le) {
		t.Fatalf("err = %v, want *LimitedError", err)
	}
	if le.Key != "feed" || le.RetryAfter != time.Second {
		t.Errorf("LimitedError = %+v, want key feed retry 1s", le)
	}
	if got := err.Error(); got != "rate limit exceeded for feed, retry in 1s" {
		t.Errorf("Error() = %q", got)
	}
}
