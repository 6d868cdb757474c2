package throttle

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Gate is a counting gate shared by every goroutine that talks to the network.
// A nil Gate, or one created with a non-positive limit, never blocks.
type Gate struct {
	sem   *semaphore.Weighted
	limit int

	mu       sync.Mutex
	inFlight int
	peak     int
}

// NewGate creates a Gate admitting at most limit concurrent holders.
// A limit of zero or less means unbounded.
func NewGate(limit int) *Gate {
	g := &Gate{limit: limit}
	if limit > 0 {
		g.sem = semaphore.NewWeighted(int64(limit))
	}
	return g
}

// Acquire blocks until a slot is free or ctx is done.
func (g *Gate) Acquire(ctx context.Context) error {
	if g == nil {
		return ctx.Err()
	}
	if g.sem != nil {
		if err := g.sem.Acquire(ctx, 1); err != nil {
			return err
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	g.inFlight++
	if g.inFlight > g.peak {
		g.peak = g.inFlight
	}
	g.mu.Unlock()
	return nil
}

// Release frees a slot taken by Acquire.
func (g *Gate) Release() {
	if g == nil {
		return
	}
	g.mu.Lock()
	g.inFlight--
	g.mu.Unlock()
	if g.sem != nil {
		g.sem.Release(1)
	}
}

// Do runs fn while holding a slot.
func (g *Gate) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := g.Acquire(ctx); err != nil {
		return err
	}
	defer g.Release()
	return fn(ctx)
}

// Limit returns the configured limit, or 0 when unbounded.
func (g *Gate) Limit() int {
	if g == nil || g.limit < 0 {
		return 0
	}
	return g.limit
}

// InFlight returns the number of current holders.
func (g *Gate) InFlight() int {
	if g == nil {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight
}

// Peak returns the highest number of simultaneous holders seen so far.
func (g *Gate) Peak() int {
	if g == nil {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.peak
}
