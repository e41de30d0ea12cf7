package market

import (
	"sync"
	"time"
)

// snapshotCache holds the last snapshot for a bounded time. Market data
// moves slowly enough that a stale-by-minutes snapshot is acceptable and
// keeps dashboard hits off the upstream APIs.
type snapshotCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	snapshot *Snapshot
	fetched  time.Time
}

func newSnapshotCache(ttl time.Duration) *snapshotCache {
	return &snapshotCache{ttl: ttl}
}

func (c *snapshotCache) get() (*Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot == nil || time.Since(c.fetched) >= c.ttl {
		return nil, false
	}
	return c.snapshot, true
}

func (c *snapshotCache) put(s *Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = s
	c.fetched = time.Now()
}

func (c *snapshotCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = nil
}
