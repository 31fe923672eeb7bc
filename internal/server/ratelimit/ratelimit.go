// Package ratelimit provides per-client token-bucket rate limiting for the
// HTTP server.
package ratelimit

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// idleTTL is how long an unused bucket is kept before cleanup drops it.
const idleTTL = time.Hour

// bucket is one client's token bucket for one limiter.
type bucket struct {
	lim      *rate.Limiter
	interval time.Duration // time to earn one token
	lastSeen atomic.Int64  // unix nanos of the last request
}

func newBucket(limit int, window time.Duration, burst int) *bucket {
	if burst <= 0 {
		burst = limit
	}
	interval := window / time.Duration(limit)
	return &bucket{
		lim:      rate.NewLimiter(rate.Every(interval), burst),
		interval: interval,
	}
}

// take consumes a token if one is available and reports the bucket state
// afterwards: whole tokens left, when the bucket is full again, and how long
// until the next token when the request was refused.
func (b *bucket) take(now time.Time) (allowed bool, remaining int, reset time.Time, retryAfter time.Duration) {
	b.lastSeen.Store(now.UnixNano())

	allowed = b.lim.AllowN(now, 1)
	tokens := max(b.lim.TokensAt(now), 0)

	remaining = int(tokens)
	reset = now.Add(time.Duration((float64(b.lim.Burst()) - tokens) * float64(b.interval)))
	if !allowed {
		retryAfter = time.Duration((1 - tokens) * float64(b.interval))
	}
	return allowed, remaining, reset, retryAfter
}

func (b *bucket) idleSince(cutoff time.Time) bool {
	return time.Unix(0, b.lastSeen.Load()).Before(cutoff)
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limiter    string // Name of the limiter that decided
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter names reported in Info and to the Observer.
const (
	LimiterDefault   = "default"
	LimiterBlacklist = "blacklist"
)

// Observer is told about every decision made by a limited endpoint.
type Observer interface {
	ObserveRateLimit(limiter string, allowed bool)
}

// Limiter hands out one bucket per client and limiter name.
type Limiter struct {
	config   *Config
	observer Observer
	buckets  sync.Map // "clientID:limiter" -> *bucket

	stop     chan struct{}
	stopOnce sync.Once
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithObserver reports every limited decision to o.
func WithObserver(o Observer) Option {
	return func(l *Limiter) { l.observer = o }
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewLimiter creates a limiter. A nil config allows 1000 requests a minute
// per client.
func NewLimiter(config *Config, opts ...Option) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		}
	}

	l := &Limiter{config: config, stop: make(chan struct{})}
	for _, opt := range opts {
		opt(l)
	}

	if config.Enabled && config.CleanupInterval > 0 {
		go l.cleanup(config.CleanupInterval)
	}
	return l
}

// Allow reports whether a request from clientID to method+endpoint may
// proceed, consuming a token if so.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}

	if l.config.Blacklist[clientID] {
		l.observe(LimiterBlacklist, false)
		return false, Info{Limiter: LimiterBlacklist}
	}

	endpointConfig := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if endpointConfig == nil {
		endpointConfig = &EndpointConfig{
			Name:   LimiterDefault,
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}

	// Unlimited endpoint (e.g., health check)
	if endpointConfig.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	// Document routes carry indices and field names in the path, so buckets
	// are keyed by limiter rather than by raw path.
	name := endpointConfig.limiterName()
	b := l.bucketFor(clientID+":"+name, endpointConfig)

	allowed, remaining, reset, retryAfter := b.take(time.Now())
	l.observe(name, allowed)

	return allowed, Info{
		Allowed:    allowed,
		Limiter:    name,
		Limit:      endpointConfig.Limit,
		Remaining:  remaining,
		ResetTime:  reset,
		RetryAfter: retryAfter,
	}
}

func (l *Limiter) bucketFor(key string, ec *EndpointConfig) *bucket {
	if b, ok := l.buckets.Load(key); ok {
		return b.(*bucket)
	}
	b, _ := l.buckets.LoadOrStore(key, newBucket(ec.Limit, ec.Window, ec.Burst))
	return b.(*bucket)
}

// cleanup drops buckets idle for longer than idleTTL until Stop is called.
func (l *Limiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			l.dropIdle(now.Add(-idleTTL))
		case <-l.stop:
			return
		}
	}
}

func (l *Limiter) dropIdle(cutoff time.Time) {
	l.buckets.Range(func(key, value any) bool {
		if value.(*bucket).idleSince(cutoff) {
			l.buckets.Delete(key)
		}
		return true
	})
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) observe(limiter string, allowed bool) {
	if l.observer != nil {
		l.observer.ObserveRateLimit(limiter, allowed)
	}
}
