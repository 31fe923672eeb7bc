package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestBucket_Take(t *testing.T) {
	b := newBucket(10, 10*time.Second, 0) // burst defaults to limit, 1 token per second
	now := time.Now()

	for i := 0; i < 10; i++ {
		allowed, remaining, _, _ := b.take(now)
		if !allowed {
			t.Errorf("Expected token %d to be available", i+1)
		}
		if remaining != 9-i {
			t.Errorf("Expected remaining %d, got %d", 9-i, remaining)
		}
	}

	allowed, remaining, reset, retryAfter := b.take(now)
	if allowed {
		t.Error("Expected empty bucket to refuse")
	}
	if remaining != 0 {
		t.Errorf("Expected remaining 0, got %d", remaining)
	}
	if retryAfter != time.Second {
		t.Errorf("Expected retry after 1s, got %v", retryAfter)
	}
	if got := reset.Sub(now); got != 10*time.Second {
		t.Errorf("Expected bucket full after 10s, got %v", got)
	}
}

func TestBucket_Refill(t *testing.T) {
	b := newBucket(10, 10*time.Second, 10)
	now := time.Now()

	for i := 0; i < 10; i++ {
		b.take(now)
	}

	// Two seconds later two tokens have been earned.
	later := now.Add(2 * time.Second)
	for i := 0; i < 2; i++ {
		if allowed, _, _, _ := b.take(later); !allowed {
			t.Errorf("Expected refilled token %d to be available", i+1)
		}
	}
	if allowed, _, _, _ := b.take(later); allowed {
		t.Error("Expected only two tokens after two seconds")
	}
}

func TestBucket_IdleSince(t *testing.T) {
	b := newBucket(1, time.Minute, 1)
	now := time.Now()
	b.take(now)

	if b.idleSince(now.Add(-time.Minute)) {
		t.Error("Expected recently used bucket not to be idle")
	}
	if !b.idleSince(now.Add(time.Minute)) {
		t.Error("Expected bucket to be idle after the cutoff")
	}
}

func TestLimiter_Allow(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	clientID := "127.0.0.1"
	endpoint := "/test"
	method := "GET"

	// Should allow requests up to limit
	for i := 0; i < 10; i++ {
		allowed, rateInfo := limiter.Allow(clientID, endpoint, method)
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if rateInfo.Limit != 10 {
			t.Errorf("Expected limit 10, got %d", rateInfo.Limit)
		}
		if rateInfo.Remaining != 9-i {
			t.Errorf("Expected remaining %d, got %d", 9-i, rateInfo.Remaining)
		}
	}

	// 11th request should be denied
	allowed, rateInfo := limiter.Allow(clientID, endpoint, method)
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if rateInfo.Remaining != 0 {
		t.Errorf("Expected remaining 0, got %d", rateInfo.Remaining)
	}
	if rateInfo.RetryAfter <= 0 {
		t.Error("Expected retry after to be positive")
	}
}

func TestLimiter_Whitelist(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"127.0.0.1": true},
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	// Whitelisted IP should always be allowed
	for i := 0; i < 100; i++ {
		allowed, rateInfo := limiter.Allow("127.0.0.1", "/test", "GET")
		if !allowed {
			t.Errorf("Expected whitelisted request %d to be allowed", i+1)
		}
		if rateInfo.Limit != 0 {
			t.Errorf("Expected limit 0 for whitelisted, got %d", rateInfo.Limit)
		}
	}
}

func TestLimiter_Blacklist(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		Blacklist:     map[string]bool{"192.168.1.1": true},
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	// Blacklisted IP should always be denied
	allowed, _ := limiter.Allow("192.168.1.1", "/test", "GET")
	if allowed {
		t.Error("Expected blacklisted request to be denied")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	config := &Config{
		Enabled: false,
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	// When disabled, all requests should be allowed
	for i := 0; i < 100; i++ {
		allowed, rateInfo := limiter.Allow("127.0.0.1", "/test", "GET")
		if !allowed {
			t.Errorf("Expected request %d to be allowed when disabled", i+1)
		}
		if rateInfo.Limit != 0 {
			t.Errorf("Expected limit 0 when disabled, got %d", rateInfo.Limit)
		}
	}
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Name: "export", Path: "/export", Method: "POST", Limit: 5, Window: time.Hour, Burst: 5},
		},
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	clientID := "127.0.0.1"

	// Test endpoint-specific limit (burst allows 5 immediately)
	for i := 0; i < 5; i++ {
		allowed, rateInfo := limiter.Allow(clientID, "/export", "POST")
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if rateInfo.Limit != 5 {
			t.Errorf("Expected limit 5, got %d", rateInfo.Limit)
		}
	}

	// 6th request should be denied (limit reached)
	allowed, rateInfo := limiter.Allow(clientID, "/export", "POST")
	if allowed {
		t.Error("Expected 6th request to be denied")
	}
	if rateInfo.Limit != 5 {
		t.Errorf("Expected limit 5, got %d", rateInfo.Limit)
	}

	// Different endpoint should use default limit
	allowed, rateInfo = limiter.Allow(clientID, "/other", "GET")
	if !allowed {
		t.Error("Expected different endpoint to be allowed")
	}
	if rateInfo.Limit != 1000 {
		t.Errorf("Expected default limit 1000, got %d", rateInfo.Limit)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	clientID := "127.0.0.1"
	endpoint := "/test"
	method := "GET"

	var wg sync.WaitGroup
	allowedCount := 0
	var mu sync.Mutex

	// Make 200 concurrent requests (should only allow 100)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, _ := limiter.Allow(clientID, endpoint, method)
			if allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	// Should have allowed exactly 100 requests
	if allowedCount != 100 {
		t.Errorf("Expected 100 allowed requests, got %d", allowedCount)
	}
}

func TestLimiter_DropIdle(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Hour,
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/document", "GET")
	}

	// Nothing is idle yet.
	limiter.dropIdle(time.Now().Add(-time.Minute))
	if allowed, _ := limiter.Allow("127.0.0.1", "/document", "GET"); allowed {
		t.Error("Expected bucket to survive cleanup and stay empty")
	}

	// Everything is idle: buckets are dropped and clients start fresh.
	limiter.dropIdle(time.Now().Add(time.Minute))
	for i := 0; i < 3; i++ {
		clientID := fmt.Sprintf("127.0.0.%d", i+1)
		if allowed, _ := limiter.Allow(clientID, "/document", "GET"); !allowed {
			t.Errorf("Expected %s to get a fresh bucket", clientID)
		}
	}
}

func TestLimiter_Burst(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/burst", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
		},
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	clientID := "127.0.0.1"

	// Should allow burst of 5 requests immediately
	for i := 0; i < 5; i++ {
		allowed, _ := limiter.Allow(clientID, "/burst", "POST")
		if !allowed {
			t.Errorf("Expected burst request %d to be allowed", i+1)
		}
	}

	// 6th request should be denied (burst exhausted, no refill yet)
	allowed, _ := limiter.Allow(clientID, "/burst", "POST")
	if allowed {
		t.Error("Expected request after burst to be denied")
	}
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	if limiter == nil {
		t.Error("Expected limiter to be created with nil config")
	}

	// Should use defaults
	allowed, rateInfo := limiter.Allow("127.0.0.1", "/test", "GET")
	if !allowed {
		t.Error("Expected request to be allowed with default config")
	}
	if rateInfo.Limit != 1000 {
		t.Errorf("Expected default limit 1000, got %d", rateInfo.Limit)
	}
}

func TestLimiter_DocumentPathsShareDefaultBucket(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  3,
		DefaultWindow: time.Minute,
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	paths := []string{"/document/skills/0/value", "/document/skills/1/value", "/document/fields/name"}
	for _, path := range paths {
		allowed, info := limiter.Allow("127.0.0.1", path, "PUT")
		if !allowed {
			t.Errorf("Expected %s to be allowed", path)
		}
		if info.Limiter != LimiterDefault {
			t.Errorf("Expected limiter %q, got %q", LimiterDefault, info.Limiter)
		}
	}

	allowed, _ := limiter.Allow("127.0.0.1", "/document/skills/2/value", "PUT")
	if allowed {
		t.Error("Expected fourth edit to be denied regardless of path")
	}

	// Another client has its own bucket.
	allowed, _ = limiter.Allow("10.0.0.1", "/document/skills/2/value", "PUT")
	if !allowed {
		t.Error("Expected a different client to be allowed")
	}
}

func TestLimiter_UnlimitedEndpoints(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Hour,
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	for _, path := range []string{"/health", "/metrics", "/events"} {
		for i := 0; i < 5; i++ {
			allowed, info := limiter.Allow("127.0.0.1", path, "GET")
			if !allowed {
				t.Errorf("Expected %s request %d to be allowed", path, i+1)
			}
			if info.Limit != 0 {
				t.Errorf("Expected no limit for %s, got %d", path, info.Limit)
			}
		}
	}
}

type recordingObserver struct {
	mu        sync.Mutex
	decisions map[string][]bool
}

func (o *recordingObserver) ObserveRateLimit(limiter string, allowed bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.decisions == nil {
		o.decisions = make(map[string][]bool)
	}
	o.decisions[limiter] = append(o.decisions[limiter], allowed)
}

func TestLimiter_Observer(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		Blacklist:     map[string]bool{"192.168.1.1": true},
		EndpointConfigs: []EndpointConfig{
			{Name: LimiterExport, Path: "/export", Method: "POST", Limit: 1, Window: time.Hour, Burst: 1},
		},
	}
	obs := &recordingObserver{}
	limiter := NewLimiter(config, WithObserver(obs))
	defer limiter.Stop()

	limiter.Allow("127.0.0.1", "/export", "POST")
	limiter.Allow("127.0.0.1", "/export", "POST")
	limiter.Allow("127.0.0.1", "/document", "GET")
	limiter.Allow("192.168.1.1", "/document", "GET")
	limiter.Allow("127.0.0.1", "/health", "GET")

	want := map[string][]bool{
		LimiterExport:    {true, false},
		LimiterDefault:   {true},
		LimiterBlacklist: {false},
	}
	if len(obs.decisions) != len(want) {
		t.Fatalf("Expected %d limiters observed, got %v", len(want), obs.decisions)
	}
	for name, decisions := range want {
		got := obs.decisions[name]
		if fmt.Sprint(got) != fmt.Sprint(decisions) {
			t.Errorf("Limiter %s: expected %v, got %v", name, decisions, got)
		}
	}
}

func TestLimiter_StopTwice(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, CleanupInterval: time.Minute})
	limiter.Stop()
	limiter.Stop()
}
