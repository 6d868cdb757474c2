package robots

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// DefaultCacheTTL is how long fetched rules stay valid.
const DefaultCacheTTL = 30 * time.Minute

// Agent evaluates robots.txt rules with caching and host overrides.
type Agent struct {
	client    *http.Client
	userAgent string
	ttl       time.Duration

	mu        sync.RWMutex
	cache     map[string]cacheEntry
	overrides map[string]struct{}
}

type cacheEntry struct {
	fetched time.Time
	rules   *robotstxt.RobotsData
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithHTTPClient sets the client used to download robots.txt.
func WithHTTPClient(client *http.Client) AgentOption {
	return func(a *Agent) {
		if client != nil {
			a.client = client
		}
	}
}

// WithCacheTTL sets how long rules are cached per host.
func WithCacheTTL(ttl time.Duration) AgentOption {
	return func(a *Agent) {
		if ttl > 0 {
			a.ttl = ttl
		}
	}
}

// WithOverrides lists hosts whose robots.txt is ignored.
func WithOverrides(hosts []string) AgentOption {
	return func(a *Agent) {
		for _, host := range hosts {
			host = strings.ToLower(strings.TrimSpace(host))
			if host == "" {
				continue
			}
			a.overrides[host] = struct{}{}
		}
	}
}

// NewAgent creates an Agent that matches rules against userAgent.
func NewAgent(userAgent string, opts ...AgentOption) *Agent {
	a := &Agent{
		client:    &http.Client{Timeout: 10 * time.Second},
		userAgent: userAgent,
		ttl:       DefaultCacheTTL,
		cache:     make(map[string]cacheEntry),
		overrides: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allowed reports whether target may be fetched.
func (a *Agent) Allowed(ctx context.Context, target *url.URL) bool {
	if target == nil || !target.IsAbs() {
		return false
	}

	if _, ok := a.overrides[strings.ToLower(target.Hostname())]; ok {
		return true
	}

	rules, err := a.rules(ctx, target)
	if err != nil {
		return true
	}

	group := rules.FindGroup(a.userAgent)
	if group == nil {
		return true
	}
	path := target.EscapedPath()
	if path == "" {
		path = "/"
	}
	return group.Test(path)
}

// CrawlDelay returns the Crawl-delay declared for the agent on target's host,
// or zero when none is known.
func (a *Agent) CrawlDelay(ctx context.Context, target *url.URL) time.Duration {
	if target == nil || !target.IsAbs() {
		return 0
	}
	rules, err := a.rules(ctx, target)
	if err != nil {
		return 0
	}
	if group := rules.FindGroup(a.userAgent); group != nil {
		return group.CrawlDelay
	}
	return 0
}

func (a *Agent) rules(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, error) {
	host := strings.ToLower(target.Host)

	a.mu.RLock()
	entry, ok := a.cache[host]
	a.mu.RUnlock()
	if ok && time.Since(entry.fetched) < a.ttl {
		return entry.rules, nil
	}

	robotsURL := target.Scheme + "://" + target.Host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build robots request: %w", err)
	}
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	a.mu.Lock()
	a.cache[host] = cacheEntry{fetched: time.Now(), rules: data}
	a.mu.Unlock()

	return data, nil
}

// Purge evicts cached rules for a host.
func (a *Agent) Purge(host string) {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return
	}
	a.mu.Lock()
	delete(a.cache, host)
	a.mu.Unlock()
}
