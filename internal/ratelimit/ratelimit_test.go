package ratelimit

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestAllowWithinLimit(t *testing.T) {
	clock := newClock()
	l := New(10, time.Minute).WithClock(clock.Now)

	for i := 0; i < 10; i++ {
		if !l.Allow("example.com") {
			t.Fatalf("request %d rejected, want allowed", i+1)
		}
		clock.Advance(time.Second)
	}
	if l.Allow("example.com") {
		t.Error("11th request within window allowed")
	}
	if l.Allow("example.com") {
		t.Error("rejected requests should not free up the window")
	}
}

func TestAllowSlidingWindow(t *testing.T) {
	clock := newClock()
	l := New(2, time.Minute).WithClock(clock.Now)

	l.Allow("a.com")
	clock.Advance(30 * time.Second)
	l.Allow("a.com")

	if l.Allow("a.com") {
		t.Fatal("third request allowed inside window")
	}

	// First timestamp leaves the window.
	clock.Advance(31 * time.Second)
	if !l.Allow("a.com") {
		t.Error("request rejected after oldest timestamp expired")
	}
	if l.Allow("a.com") {
		t.Error("request allowed while window is full again")
	}
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := New(1, time.Minute).WithClock(newClock().Now)

	if !l.Allow("a.com") || !l.Allow("b.com") {
		t.Fatal("first request per key should be allowed")
	}
	if l.Allow("a.com") {
		t.Error("a.com allowed twice")
	}
}

func TestRemaining(t *testing.T) {
	clock := newClock()
	l := New(3, time.Minute).WithClock(clock.Now)

	tests := []struct {
		name    string
		action  func()
		wantRem int
	}{
		{"unused key", func() {}, 3},
		{"after one", func() { l.Allow("x") }, 2},
		{"after three", func() { l.Allow("x"); l.Allow("x") }, 0},
		{"after window", func() { clock.Advance(2 * time.Minute) }, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.action()
			if got := l.Remaining("x"); got != tt.wantRem {
				t.Errorf("Remaining() = %d, want %d", got, tt.wantRem)
			}
		})
	}
}

func TestEmptyWindowRemovesKey(t *testing.T) {
	clock := newClock()
	l := New(5, time.Minute).WithClock(clock.Now)

	l.Allow("a.com")
	l.Allow("b.com")
	if got := l.Keys(); got != 2 {
		t.Fatalf("Keys() = %d, want 2", got)
	}

	clock.Advance(2 * time.Minute)
	l.Remaining("a.com")
	l.Remaining("b.com")
	if got := l.Keys(); got != 0 {
		t.Errorf("Keys() = %d after expiry, want 0", got)
	}
}

func TestAllowConcurrent(t *testing.T) {
	l := New(50, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("busy.com") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("allowed = %d, want 50", allowed)
	}
}

func TestNewDefaults(t *testing.T) {
	l := New(0, 0)
	if l.maxRequests != DefaultMaxRequests || l.window != DefaultWindow {
		t.Errorf("New(0, 0) = %d/%v, want defaults", l.maxRequests, l.window)
	}
}
