package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/sitescan/internal/extract"
	"github.com/nao1215/sitescan/internal/fetcher"
	"github.com/nao1215/sitescan/internal/model"
	"github.com/nao1215/sitescan/internal/throttle"
	"github.com/nao1215/sitescan/internal/urlutil"
)

const (
	// DefaultMaxDepth is the depth used when WithMaxDepth is not given.
	DefaultMaxDepth = 2

	// DefaultConcurrency is the in-flight fetch limit used when neither
	// WithConcurrency nor WithGate is given.
	DefaultConcurrency = 10

	// DefaultTimeout bounds a single fetch.
	DefaultTimeout = 30 * time.Second
)

// RobotsPolicy decides whether a URL may be fetched.
// *robots.Agent satisfies it.
type RobotsPolicy interface {
	Allowed(ctx context.Context, target *url.URL) bool
}

// Spider crawls a site from a seed URL.
// Calls to Crawl on the same Spider run one after another; each call starts a
// fresh session and discards the previous one.
type Spider struct {
	fetcher   fetcher.Fetcher
	extractor extract.Extractor
	logger    *slog.Logger

	// maxDepth limits how far from the seed the crawl goes.
	// 0 means only the seed, 1 means the seed and the pages it links to.
	maxDepth int

	// sameDomainOnly restricts followed links to the seed's host.
	sameDomainOnly bool

	// maxPages caps the number of URLs claimed per session. 0 means no cap.
	maxPages int

	// timeout bounds each fetch. A fetch that times out is a failure.
	timeout time.Duration

	gate    *throttle.Gate
	limiter *throttle.HostLimiter
	delay   time.Duration
	rate    throttle.RateSettings
	robots  RobotsPolicy
	filter  pathFilter

	// crawlMu serializes Crawl calls.
	crawlMu sync.Mutex

	// mu protects last.
	mu   sync.Mutex
	last *session
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxDepth sets the maximum crawl depth.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		s.maxDepth = depth
	}
}

// WithSameDomainOnly restricts the crawl to the seed's host.
func WithSameDomainOnly(sameDomainOnly bool) SpiderOption {
	return func(s *Spider) {
		s.sameDomainOnly = sameDomainOnly
	}
}

// WithMaxPages sets the maximum number of URLs fetched per crawl.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithTimeout sets the per-fetch timeout. Zero disables it.
func WithTimeout(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.timeout = d
	}
}

// WithConcurrency caps the number of in-flight fetches. Zero or less means
// unbounded.
func WithConcurrency(limit int) SpiderOption {
	return func(s *Spider) {
		s.gate = throttle.NewGate(limit)
	}
}

// WithGate makes the Spider share a concurrency gate with other components,
// such as a link checker.
func WithGate(gate *throttle.Gate) SpiderOption {
	return func(s *Spider) {
		if gate != nil {
			s.gate = gate
		}
	}
}

// WithDelay sets the minimum delay between requests to the same host.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithRateLimit allows at most requests per window to each host.
func WithRateLimit(requests int, window time.Duration) SpiderOption {
	return func(s *Spider) {
		s.rate = throttle.RateSettings{Requests: requests, Window: window}
	}
}

// WithHostLimiter sets a prebuilt per-host limiter. It takes precedence over
// WithDelay and WithRateLimit.
func WithHostLimiter(limiter *throttle.HostLimiter) SpiderOption {
	return func(s *Spider) {
		s.limiter = limiter
	}
}

// WithIgnorePatterns sets URL path patterns to skip during crawling.
// Patterns use glob syntax (e.g., "/admin/*", "*.pdf", "/logout*").
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.filter.ignore = patterns
	}
}

// WithFollowPatterns sets URL path patterns to follow during crawling.
// If set, only URLs matching at least one pattern are crawled.
func WithFollowPatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.filter.follow = patterns
	}
}

// WithRobots makes the Spider skip URLs disallowed by policy.
func WithRobots(policy RobotsPolicy) SpiderOption {
	return func(s *Spider) {
		s.robots = policy
	}
}

// WithExtractor replaces the default HTML extractor.
func WithExtractor(e extract.Extractor) SpiderOption {
	return func(s *Spider) {
		if e != nil {
			s.extractor = e
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSpider creates a Spider that retrieves documents through f.
func NewSpider(f fetcher.Fetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:        f,
		extractor:      extract.NewHTMLExtractor(),
		logger:         slog.Default(),
		maxDepth:       DefaultMaxDepth,
		sameDomainOnly: true,
		timeout:        DefaultTimeout,
		gate:           throttle.NewGate(DefaultConcurrency),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.limiter == nil {
		s.limiter = throttle.NewHostLimiter(s.delay, s.rate)
	}

	return s
}

// session is the state of one Crawl call.
type session struct {
	seedHost string
	visited  *visitedSet

	mu          sync.Mutex
	pages       []*model.Page
	failures    *multierror.Error
	failedURLs  []string
	interrupted bool
}

// branchOutcome is what a single branch reports back to the session.
// Exactly one of page and err is set, or neither when the branch was skipped.
type branchOutcome struct {
	page *model.Page
	err  error
}

func (ss *session) record(o branchOutcome) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	switch {
	case o.page != nil:
		ss.pages = append(ss.pages, o.page)
	case o.err != nil:
		ss.failures = multierror.Append(ss.failures, o.err)
		var fe *FetchError
		var ee *ExtractError
		switch {
		case errors.As(o.err, &fe):
			ss.failedURLs = append(ss.failedURLs, fe.URL)
		case errors.As(o.err, &ee):
			ss.failedURLs = append(ss.failedURLs, ee.URL)
		}
	}
}

// frontierEntry is a claimed URL waiting to be fetched.
type frontierEntry struct {
	url   *url.URL
	key   string
	depth int
}

// Crawl fetches seedURL and, recursively and concurrently, every link that
// passes the filters up to the configured depth. It returns after every
// branch has finished.
//
// An invalid seed returns ErrInvalidSeed and a negative depth returns
// ErrNegativeDepth, both before anything is fetched. Failures of individual
// pages do not fail the crawl; see Failures. When ctx is cancelled Crawl
// returns the pages gathered so far and a nil error.
func (s *Spider) Crawl(ctx context.Context, seedURL string) ([]*model.Page, error) {
	if s.maxDepth < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeDepth, s.maxDepth)
	}

	seed, err := urlutil.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidSeed, seedURL, err)
	}
	seed = urlutil.Canonicalize(seed)

	s.crawlMu.Lock()
	defer s.crawlMu.Unlock()

	ss := &session{
		seedHost: seed.Host,
		visited:  newVisitedSet(s.maxPages),
	}
	s.mu.Lock()
	s.last = ss
	s.mu.Unlock()

	s.logger.Info("starting crawl",
		"url", seed.String(),
		"max_depth", s.maxDepth,
		"same_domain_only", s.sameDomainOnly,
		"concurrency", s.gate.Limit(),
	)
	started := time.Now()

	root := frontierEntry{url: seed, key: seed.String(), depth: 0}
	if ss.visited.tryClaim(root.key) {
		s.expand(ctx, ss, []frontierEntry{root})
	}

	if ctx.Err() != nil {
		ss.mu.Lock()
		ss.interrupted = true
		ss.mu.Unlock()
		s.logger.Warn("crawl interrupted", "url", seed.String(), "error", ctx.Err())
	}

	pages := s.Pages()
	s.logger.Info("crawl finished",
		"url", seed.String(),
		"pages", len(pages),
		"visited", ss.visited.len(),
		"duration", time.Since(started),
	)

	return pages, nil
}

// expand crawls the frontier one depth at a time. All entries of a depth are
// fetched concurrently, and links found at that depth are claimed only after
// every one of them has finished, so each URL is claimed at its shortest
// distance from the seed.
func (s *Spider) expand(ctx context.Context, ss *session, frontier []frontierEntry) {
	for len(frontier) > 0 {
		found := make([][]string, len(frontier))

		var g errgroup.Group
		for i, entry := range frontier {
			g.Go(func() error {
				outcome, links := s.process(ctx, entry)
				ss.record(outcome)
				found[i] = links
				return nil
			})
		}
		_ = g.Wait()

		depth := frontier[0].depth + 1
		if depth > s.maxDepth || ctx.Err() != nil {
			return
		}

		var next []frontierEntry
		for _, links := range found {
			next = append(next, s.claimChildren(ss, links, depth)...)
		}
		frontier = next
	}
}

// claimChildren filters links and claims the ones that should be crawled.
func (s *Spider) claimChildren(ss *session, links []string, depth int) []frontierEntry {
	children := make([]frontierEntry, 0, len(links))
	for _, link := range links {
		u, err := urlutil.Parse(link)
		if err != nil {
			continue
		}
		u = urlutil.Canonicalize(u)

		if s.sameDomainOnly && u.Host != ss.seedHost {
			continue
		}
		if !s.filter.allows(u) {
			continue
		}

		key := u.String()
		if !ss.visited.tryClaim(key) {
			continue
		}
		children = append(children, frontierEntry{url: u, key: key, depth: depth})
	}
	return children
}

// process fetches and extracts a single entry. It returns the links of the
// page so the caller can expand them.
func (s *Spider) process(ctx context.Context, entry frontierEntry) (branchOutcome, []string) {
	if ctx.Err() != nil {
		return branchOutcome{}, nil
	}

	if s.robots != nil && !s.robots.Allowed(ctx, entry.url) {
		s.logger.Debug("disallowed by robots.txt", "url", entry.key)
		return branchOutcome{}, nil
	}

	resp, err := s.fetch(ctx, entry)
	if err != nil {
		if ctx.Err() != nil {
			return branchOutcome{}, nil
		}
		s.logger.Warn("fetch failed", "url", entry.key, "depth", entry.depth, "error", err)
		return branchOutcome{err: &FetchError{URL: entry.key, Depth: entry.depth, Err: err}}, nil
	}

	page := &model.Page{
		URL:         entry.key,
		Depth:       entry.depth,
		StatusCode:  resp.StatusCode,
		ContentType: resp.ContentType,
		Hash:        model.ContentHash(resp.Body),
		CapturedAt:  time.Now(),
		Links:       []string{},
		Images:      []string{},
	}

	if isHTML(resp.ContentType) {
		base := resp.URL
		if base == "" {
			base = entry.key
		}
		doc, err := s.extractor.Extract(resp.Body, base)
		if err != nil {
			s.logger.Warn("extract failed", "url", entry.key, "depth", entry.depth, "error", err)
			return branchOutcome{err: &ExtractError{URL: entry.key, Depth: entry.depth, Err: err}}, nil
		}
		page.Title = doc.Title
		page.Text = doc.Text
		page.Metadata = doc.Metadata
		if doc.Links != nil {
			page.Links = doc.Links
		}
		if doc.Images != nil {
			page.Images = doc.Images
		}
	}

	s.logger.Debug("page crawled",
		"url", entry.key,
		"depth", entry.depth,
		"links", len(page.Links),
		"images", len(page.Images),
	)

	return branchOutcome{page: page}, page.Links
}

// fetch waits for politeness and a concurrency slot, then fetches entry.
func (s *Spider) fetch(ctx context.Context, entry frontierEntry) (*fetcher.Response, error) {
	if err := s.limiter.Wait(ctx, entry.url.Host); err != nil {
		return nil, err
	}

	if err := s.gate.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.gate.Release()

	opCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		opCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.fetcher.Fetch(opCtx, entry.key)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errors.New("fetcher returned no response")
	}
	return resp, nil
}

// isHTML reports whether contentType should go through the extractor.
// An empty content type is treated as HTML.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
}

// current returns the latest session, or nil before the first Crawl.
func (s *Spider) current() *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Pages returns the pages of the latest crawl ordered by depth, then URL.
func (s *Spider) Pages() []*model.Page {
	ss := s.current()
	if ss == nil {
		return []*model.Page{}
	}
	ss.mu.Lock()
	pages := slices.Clone(ss.pages)
	ss.mu.Unlock()

	slices.SortFunc(pages, func(a, b *model.Page) int {
		if a.Depth != b.Depth {
			return a.Depth - b.Depth
		}
		return strings.Compare(a.URL, b.URL)
	})
	if pages == nil {
		pages = []*model.Page{}
	}
	return pages
}

// Statistics summarizes the latest crawl.
func (s *Spider) Statistics() model.Statistics {
	ss := s.current()
	if ss == nil {
		return model.ComputeStatistics(nil, 0)
	}
	ss.mu.Lock()
	pages := slices.Clone(ss.pages)
	ss.mu.Unlock()
	return model.ComputeStatistics(pages, ss.visited.len())
}

// Failures returns the fetch and extraction failures of the latest crawl as
// a *multierror.Error, or nil when every branch succeeded.
func (s *Spider) Failures() error {
	ss := s.current()
	if ss == nil {
		return nil
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.failures.ErrorOrNil()
}

// FailedURLs returns the URLs that failed in the latest crawl, sorted.
func (s *Spider) FailedURLs() []string {
	ss := s.current()
	if ss == nil {
		return []string{}
	}
	ss.mu.Lock()
	urls := slices.Clone(ss.failedURLs)
	ss.mu.Unlock()
	slices.Sort(urls)
	if urls == nil {
		urls = []string{}
	}
	return urls
}

// Visited reports whether rawURL was claimed in the latest crawl.
func (s *Spider) Visited(rawURL string) bool {
	ss := s.current()
	if ss == nil {
		return false
	}
	key, err := urlutil.Normalize(rawURL)
	if err != nil {
		return false
	}
	return ss.visited.contains(key)
}

// Interrupted reports whether the latest crawl was cut short by cancellation.
func (s *Spider) Interrupted() bool {
	ss := s.current()
	if ss == nil {
		return false
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.interrupted
}

// Gate returns the concurrency gate used for fetches.
func (s *Spider) Gate() *throttle.Gate {
	return s.gate
}

// Reset discards the state of the latest crawl.
func (s *Spider) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = nil
}
