package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(config *Config) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(config)
	l.now = clock.Now
	return l, clock
}

func TestLimiter_BurstThenDeny(t *testing.T) {
	l, _ := newTestLimiter(EvaluationConfig(30, 5, nil))
	defer l.Stop()

	for i := 0; i < 5; i++ {
		allowed, info := l.Allow("10.0.0.1", "/evaluate", "POST")
		if !allowed {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
		if info.Remaining != 4-i {
			t.Errorf("Request %d: expected %d remaining, got %d", i+1, 4-i, info.Remaining)
		}
		if info.Limit != 30 {
			t.Errorf("Expected limit 30, got %d", info.Limit)
		}
	}

	allowed, info := l.Allow("10.0.0.1", "/evaluate", "POST")
	if allowed {
		t.Fatal("Expected 6th request to be denied")
	}
	if info.Remaining != 0 {
		t.Errorf("Expected 0 remaining, got %d", info.Remaining)
	}
	// 30/min refills one token every 2s
	if info.RetryAfter != 2*time.Second {
		t.Errorf("Expected RetryAfter 2s, got %v", info.RetryAfter)
	}
}

func TestLimiter_Refill(t *testing.T) {
	l, clock := newTestLimiter(EvaluationConfig(60, 1, nil))
	defer l.Stop()

	if allowed, _ := l.Allow("client", "/evaluate", "POST"); !allowed {
		t.Fatal("Expected first request to be allowed")
	}
	if allowed, _ := l.Allow("client", "/evaluate", "POST"); allowed {
		t.Fatal("Expected second request to be denied")
	}

	clock.Advance(time.Second)

	if allowed, _ := l.Allow("client", "/evaluate", "POST"); !allowed {
		t.Error("Expected request to be allowed after refill")
	}
}

func TestLimiter_ResetTime(t *testing.T) {
	l, clock := newTestLimiter(EvaluationConfig(60, 3, nil))
	defer l.Stop()

	var info Info
	for i := 0; i < 3; i++ {
		_, info = l.Allow("client", "/api/evaluations", "POST")
	}

	want := clock.Now().Add(3 * time.Second)
	if !info.ResetTime.Equal(want) {
		t.Errorf("Expected reset at %v, got %v", want, info.ResetTime)
	}
}

func TestLimiter_PerClientIsolation(t *testing.T) {
	l, _ := newTestLimiter(EvaluationConfig(60, 1, nil))
	defer l.Stop()

	if allowed, _ := l.Allow("a", "/evaluate", "POST"); !allowed {
		t.Fatal("Expected client a to be allowed")
	}
	if allowed, _ := l.Allow("a", "/evaluate", "POST"); allowed {
		t.Fatal("Expected client a to be limited")
	}
	if allowed, _ := l.Allow("b", "/evaluate", "POST"); !allowed {
		t.Error("Expected client b to have its own bucket")
	}
}

func TestLimiter_PerEndpointBuckets(t *testing.T) {
	l, _ := newTestLimiter(EvaluationConfig(60, 1, nil))
	defer l.Stop()

	l.Allow("a", "/evaluate", "POST")
	if allowed, _ := l.Allow("a", "/api/evaluations", "POST"); !allowed {
		t.Error("Expected separate bucket per endpoint")
	}
}

func TestLimiter_UnlimitedEndpoints(t *testing.T) {
	l, _ := newTestLimiter(EvaluationConfig(60, 1, nil))
	defer l.Stop()

	paths := []struct {
		path   string
		method string
	}{
		{"/", "GET"},
		{"/health", "GET"},
		{"/api/evaluations", "GET"},
		{"/metrics", "GET"},
	}

	for _, p := range paths {
		for i := 0; i < 10; i++ {
			allowed, info := l.Allow("a", p.path, p.method)
			if !allowed {
				t.Fatalf("%s %s: expected unlimited, denied at request %d", p.method, p.path, i+1)
			}
			if info.Limit != 0 {
				t.Errorf("%s %s: expected no limit info, got %d", p.method, p.path, info.Limit)
			}
		}
	}
}

func TestLimiter_Disabled(t *testing.T) {
	l, _ := newTestLimiter(EvaluationConfig(0, 0, nil))
	defer l.Stop()

	for i := 0; i < 100; i++ {
		if allowed, _ := l.Allow("a", "/evaluate", "POST"); !allowed {
			t.Fatalf("Expected disabled limiter to allow request %d", i+1)
		}
	}
}

func TestLimiter_NilConfig(t *testing.T) {
	l := NewLimiter(nil)
	defer l.Stop()

	if allowed, _ := l.Allow("a", "/evaluate", "POST"); !allowed {
		t.Error("Expected nil config to disable limiting")
	}
}

func TestLimiter_Whitelist(t *testing.T) {
	l, _ := newTestLimiter(EvaluationConfig(60, 1, []string{"127.0.0.1"}))
	defer l.Stop()

	for i := 0; i < 10; i++ {
		if allowed, _ := l.Allow("127.0.0.1", "/evaluate", "POST"); !allowed {
			t.Fatalf("Expected whitelisted client to be allowed, denied at %d", i+1)
		}
	}
	if l.Clients() != 0 {
		t.Errorf("Expected whitelisted client not to be tracked, got %d limiters", l.Clients())
	}
}

func TestLimiter_CleanupIdle(t *testing.T) {
	config := EvaluationConfig(60, 1, nil)
	config.IdleTTL = time.Minute
	l, clock := newTestLimiter(config)
	defer l.Stop()

	l.Allow("old", "/evaluate", "POST")
	clock.Advance(2 * time.Minute)
	l.Allow("new", "/evaluate", "POST")

	l.cleanupIdle()

	if l.Clients() != 1 {
		t.Errorf("Expected 1 limiter after cleanup, got %d", l.Clients())
	}
}

func TestLimiter_StopTwice(t *testing.T) {
	l := NewLimiter(EvaluationConfig(60, 1, nil))
	l.Stop()
	l.Stop()
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(EvaluationConfig(60, 10, nil))
	defer l.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := l.Allow("shared", "/evaluate", "POST"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowedCount != 10 {
		t.Errorf("Expected exactly 10 allowed requests, got %d", allowedCount)
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/evaluate", Method: "POST", Limit: 1},
		{Path: "/api/", Method: "POST", Limit: 2},
		{Path: "/api/evaluations/stream", Method: "POST", Limit: 3},
	}

	tests := []struct {
		path      string
		method    string
		wantLimit int
	}{
		{"/evaluate", "POST", 1},
		{"/evaluate", "GET", 0},
		{"/api/evaluations/stream", "POST", 3},
		{"/api/other", "POST", 2},
		{"/health", "GET", 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s", tt.method, tt.path), func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantLimit == 0 {
				if got != nil {
					t.Errorf("Expected no match, got %+v", got)
				}
				return
			}
			if got == nil || got.Limit != tt.wantLimit {
				t.Errorf("Expected limit %d, got %+v", tt.wantLimit, got)
			}
		})
	}
}

func TestParseIPList(t *testing.T) {
	got := ParseIPList(" 10.0.0.1, ,192.168.1.1 ")
	if len(got) != 2 || !got["10.0.0.1"] || !got["192.168.1.1"] {
		t.Errorf("Unexpected parse result: %v", got)
	}
}
