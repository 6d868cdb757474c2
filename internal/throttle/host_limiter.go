package throttle

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateSettings describes a token bucket: Requests per Window for each host.
type RateSettings struct {
	Requests int
	Window   time.Duration
}

// HostLimiter enforces a minimum delay between requests to the same host and,
// optionally, a per-host request rate. A nil HostLimiter never waits.
type HostLimiter struct {
	delay       time.Duration
	rate        RateSettings
	rateEnabled bool

	mu       sync.Mutex
	last     map[string]time.Time
	limiters map[string]*rate.Limiter
}

// NewHostLimiter creates a limiter with a per-host delay and optional rate.
func NewHostLimiter(delay time.Duration, rateCfg RateSettings) *HostLimiter {
	l := &HostLimiter{
		delay: delay,
		last:  make(map[string]time.Time),
	}
	if rateCfg.Requests > 0 && rateCfg.Window > 0 {
		l.rateEnabled = true
		l.rate = rateCfg
		l.limiters = make(map[string]*rate.Limiter)
	}
	return l
}

// Enabled reports whether Wait can ever block.
func (l *HostLimiter) Enabled() bool {
	return l != nil && (l.delay > 0 || l.rateEnabled)
}

// Wait blocks until a request to host is allowed or ctx is done.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	if !l.Enabled() || host == "" {
		return nil
	}
	host = strings.ToLower(host)

	var sleep time.Duration
	var limiter *rate.Limiter

	l.mu.Lock()
	now := time.Now()
	if l.delay > 0 {
		next := now
		if last, ok := l.last[host]; ok && last.Add(l.delay).After(now) {
			next = last.Add(l.delay)
			sleep = next.Sub(now)
		}
		// Reserve the slot before sleeping so concurrent callers queue behind it.
		l.last[host] = next
	}
	if l.rateEnabled {
		limiter = l.limiterLocked(host)
	}
	l.mu.Unlock()

	if sleep > 0 {
		timer := time.NewTimer(sleep)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if limiter != nil {
		return limiter.Wait(ctx)
	}
	return nil
}

func (l *HostLimiter) limiterLocked(host string) *rate.Limiter {
	if limiter, ok := l.limiters[host]; ok {
		return limiter
	}
	interval := l.rate.Window / time.Duration(l.rate.Requests)
	if interval <= 0 {
		interval = time.Millisecond
	}
	limiter := rate.NewLimiter(rate.Every(interval), l.rate.Requests)
	l.limiters[host] = limiter
	return limiter
}
