package formula

import (
	"sync"
	"sync/atomic"

	"github.com/zeebo/xxh3"
)

// Cache memoizes compiled programs by source text. It is safe for
// concurrent use; each source is compiled at most once. The zero value is
// ready to use.
type Cache struct {
	entries sync.Map // xxh3 hash -> *cacheEntry
	size    atomic.Int64
	hits    atomic.Uint64
	misses  atomic.Uint64
}

type cacheEntry struct {
	once sync.Once
	src  string
	prog *Program
	err  error
}

// NewCache returns an empty cache.
func NewCache() *Cache { return &Cache{} }

// Compile returns the cached program for src, compiling it on first use.
// Parse errors are cached as well.
func (c *Cache) Compile(src string) (*Program, error) {
	key := xxh3.HashString(src)

	v, loaded := c.entries.LoadOrStore(key, &cacheEntry{src: src})
	ent := v.(*cacheEntry)

	// Hash collision: compile without caching.
	if ent.src != src {
		c.misses.Add(1)

		return Compile(src)
	}

	if loaded {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
		c.size.Add(1)
	}

	ent.once.Do(func() { ent.prog, ent.err = Compile(src) })

	return ent.prog, ent.err
}

// Len returns the number of cached sources.
func (c *Cache) Len() int { return int(c.size.Load()) }

// Stats returns the number of lookups that found, and did not find, a
// cached entry.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Reset drops every entry.
func (c *Cache) Reset() {
	c.entries.Range(func(k, _ any) bool {
		if _, ok := c.entries.LoadAndDelete(k); ok {
			c.size.Add(-1)
		}

		return true
	})
}
