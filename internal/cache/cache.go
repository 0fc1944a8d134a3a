// Package cache holds analysed palettes keyed by normalised URL.
package cache

import (
	"slices"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jmylchreest/palettesniffer/internal/colour"
)

// Defaults keep 100 palettes for 30 minutes.
const (
	DefaultTTL        = 30 * time.Minute
	DefaultMaxEntries = 100

	// cleanupInterval is how often expired entries are purged in the background.
	cleanupInterval = 5 * time.Minute
)

type entry struct {
	palette   *colour.Palette
	createdAt time.Time
}

// ResultCache is a TTL cache that evicts in insertion order once it holds more
// than maxEntries palettes.
type ResultCache struct {
	mu         sync.Mutex
	store      *gocache.Cache
	order      []string
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// New creates a ResultCache. Non-positive arguments fall back to the defaults.
func New(ttl time.Duration, maxEntries int) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &ResultCache{
		store:      gocache.New(ttl, cleanupInterval),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// WithClock replaces the clock used for entry ages, for tests.
func (c *ResultCache) WithClock(now func() time.Time) *ResultCache {
	c.now = now
	return c
}

// Get returns the palette for key while it is younger than the TTL.
// Expired entries are deleted.
func (c *ResultCache) Get(key string) (*colour.Palette, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	e := v.(entry)
	if c.now().Sub(e.createdAt) >= c.ttl {
		c.remove(key)
		return nil, false
	}
	return e.palette, true
}

// Set stores palette under key. Re-setting a key refreshes its age but keeps
// its insertion position.
func (c *ResultCache) Set(key string, palette *colour.Palette) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store.Get(key); !exists {
		if i := slices.Index(c.order, key); i >= 0 {
			c.order = slices.Delete(c.order, i, i+1)
		}
		c.order = append(c.order, key)
	}
	c.store.Set(key, entry{palette: palette, createdAt: c.now()}, gocache.DefaultExpiration)

	if len(c.order) > c.maxEntries {
		c.compact()
	}
	for len(c.order) > 0 && c.store.ItemCount() > c.maxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		c.store.Delete(oldest)
	}
}

// Len returns the number of stored entries, including any not yet purged.
func (c *ResultCache) Len() int {
	return c.store.ItemCount()
}

// Clear removes every entry.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Flush()
	c.order = nil
}

// remove deletes key from the store and the order. Caller holds mu.
func (c *ResultCache) remove(key string) {
	c.store.Delete(key)
	if i := slices.Index(c.order, key); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
}

// compact drops keys the background janitor already purged. Caller holds mu.
func (c *ResultCache) compact() {
	c.order = slices.DeleteFunc(c.order, func(key string) bool {
		_, ok := c.store.Get(key)
		return !ok
	})
}
