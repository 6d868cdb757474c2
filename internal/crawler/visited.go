package crawler

import "sync"

// visitedSet holds the canonical URLs claimed for fetching in one session.
type visitedSet struct {
	mu    sync.Mutex
	urls  map[string]struct{}
	limit int
}

func newVisitedSet(limit int) *visitedSet {
	return &visitedSet{
		urls:  make(map[string]struct{}),
		limit: limit,
	}
}

// tryClaim inserts key and reports true if it was absent and the set still
// had room. The test and the insert happen under one lock.
func (v *visitedSet) tryClaim(key string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.urls[key]; ok {
		return false
	}
	if v.limit > 0 && len(v.urls) >= v.limit {
		return false
	}
	v.urls[key] = struct{}{}
	return true
}

func (v *visitedSet) contains(key string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.urls[key]
	return ok
}

func (v *visitedSet) len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.urls)
}
