package linkcheck

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/sitescan/internal/model"
	"github.com/nao1215/sitescan/internal/throttle"
	"github.com/nao1215/sitescan/internal/urlutil"
)

// DefaultTimeout bounds a single probe.
const DefaultTimeout = 10 * time.Second

// Checker checks batches of links concurrently and remembers the results of
// the last completed batch.
type Checker struct {
	prober  Prober
	gate    *throttle.Gate
	timeout time.Duration
	logger  *slog.Logger

	mu   sync.Mutex
	last map[string]model.LinkStatus
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithGate bounds the number of in-flight probes, possibly together with
// other components sharing the same gate.
func WithGate(gate *throttle.Gate) CheckerOption {
	return func(c *Checker) {
		c.gate = gate
	}
}

// WithConcurrency bounds the number of in-flight probes.
func WithConcurrency(limit int) CheckerOption {
	return func(c *Checker) {
		c.gate = throttle.NewGate(limit)
	}
}

// WithTimeout sets the per-probe timeout. A probe that times out is NOT_FOUND.
func WithTimeout(d time.Duration) CheckerOption {
	return func(c *Checker) {
		c.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) CheckerOption {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewChecker creates a Checker that probes links with p.
func NewChecker(p Prober, opts ...CheckerOption) *Checker {
	c := &Checker{
		prober:  p,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
		last:    make(map[string]model.LinkStatus),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckLinks checks every URL in urls and returns a status per distinct URL.
// The map is keyed by the strings exactly as given.
//
// If ctx is cancelled before the batch completes, CheckLinks returns the
// context error and the previous batch stays the last completed one.
func (c *Checker) CheckLinks(ctx context.Context, urls []string) (map[string]model.LinkStatus, error) {
	var (
		mu      sync.Mutex
		results = make(map[string]model.LinkStatus, len(urls))
		g       errgroup.Group
	)

	seen := make(map[string]struct{}, len(urls))
	for _, raw := range urls {
		if _, ok := seen[raw]; ok {
			continue
		}
		seen[raw] = struct{}{}

		if !urlutil.IsValid(raw) {
			results[raw] = model.LinkStatusInvalid
			continue
		}

		g.Go(func() error {
			status, err := c.check(ctx, raw)
			if err != nil {
				return err
			}
			mu.Lock()
			results[raw] = status
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.last = maps.Clone(results)
	c.mu.Unlock()

	c.logger.Debug("link check finished", "links", len(results))
	return results, nil
}

// check probes one valid URL. It returns an error only when ctx is done.
func (c *Checker) check(ctx context.Context, raw string) (model.LinkStatus, error) {
	if err := c.gate.Acquire(ctx); err != nil {
		return 0, err
	}
	defer c.gate.Release()

	opCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		opCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	status, err := c.prober.Probe(opCtx, raw)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		c.logger.Debug("link probe failed", "url", raw, "error", err)
		return model.LinkStatusNotFound, nil
	}
	return status, nil
}

// BrokenLinks returns the NOT_FOUND and INVALID URLs of the last completed
// batch, sorted.
func (c *Checker) BrokenLinks() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	broken := make([]string, 0)
	for raw, status := range c.last {
		if status.IsBroken() {
			broken = append(broken, raw)
		}
	}
	slices.Sort(broken)
	return broken
}

// LastResults returns a copy of the last completed batch.
func (c *Checker) LastResults() map[string]model.LinkStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.last)
}
