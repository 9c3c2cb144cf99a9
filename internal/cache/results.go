// Package cache provides the in-process result cache for resolved flavor
// queries. Entries expire lazily against an injected clock so tests can drive
// time explicitly.
package cache

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/alr-main/better-beans-server/internal/domain/catalog"
)

const (
	// DefaultTTL is the result expiration window.
	DefaultTTL = 10 * time.Minute
	// DefaultSize bounds the number of distinct tag sets held at once.
	DefaultSize = 512
)

// Clock supplies the current time. time.Now in production.
type Clock func() time.Time

type entry struct {
	set     catalog.ResultSet
	created time.Time
}

// Results caches full (pre-slice) result sets keyed by the sorted tag set.
// Writes are last-writer-wins; concurrent duplicate resolution of the same
// key is acceptable.
type Results struct {
	store *lru.Cache[string, entry]
	ttl   time.Duration
	now   Clock
}

// NewResults creates a result cache. size and ttl fall back to defaults when
// non-positive; now falls back to time.Now when nil.
func NewResults(size int, ttl time.Duration, now Clock) (*Results, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}

	store, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("create result cache: %w", err)
	}
	return &Results{store: store, ttl: ttl, now: now}, nil
}

// Get returns a live cached result set. Expired entries are evicted on the
// spot and reported as misses.
func (c *Results) Get(key string) (catalog.ResultSet, bool) {
	e, ok := c.store.Get(key)
	if !ok {
		return catalog.ResultSet{}, false
	}
	if c.now().Sub(e.created) >= c.ttl {
		c.store.Remove(key)
		return catalog.ResultSet{}, false
	}
	return e.set, true
}

// Put stores a result set under key with the current timestamp.
func (c *Results) Put(key string, set catalog.ResultSet) {
	c.store.Add(key, entry{set: set, created: c.now()})
}

// Len returns the number of entries currently held, including any not yet
// lazily evicted.
func (c *Results) Len() int { return c.store.Len() }
