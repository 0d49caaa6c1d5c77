package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// TTLCache is a size-bounded LRU whose entries also expire after a fixed
// duration. A zero ttl disables expiry. Safe for concurrent use.
type TTLCache[K comparable, V any] struct {
	mu      sync.Mutex
	entries *lru.Cache[K, entry[V]]
	ttl     time.Duration
	now     func() time.Time
	// dropping is set while entries are removed deliberately so the evict
	// callback only counts capacity evictions.
	dropping bool

	hits    uint64
	misses  uint64
	evicted uint64
	expired uint64
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func New[K comparable, V any](size int, ttl time.Duration, opts ...Option) (*TTLCache[K, V], error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	c := &TTLCache[K, V]{ttl: ttl, now: o.now}
	entries, err := lru.NewWithEvict[K, entry[V]](size, func(K, entry[V]) {
		if !c.dropping {
			c.evicted++
		}
	})
	if err != nil {
		return nil, err
	}
	c.entries = entries
	return c, nil
}

// Get returns the live value for key. Expired entries are dropped.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries.Get(key)
	if !ok {
		c.misses++
		return zero, false
	}
	if c.ttl > 0 && c.now().After(e.expiresAt) {
		c.drop(key)
		c.expired++
		c.misses++
		return zero, false
	}
	c.hits++
	return e.value, true
}

func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry[V]{value: value}
	if c.ttl > 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}
	c.entries.Add(key, e)
}

func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drop(key)
}

func (c *TTLCache[K, V]) drop(key K) {
	c.dropping = true
	c.entries.Remove(key)
	c.dropping = false
}

func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Purge drops every entry without counting evictions.
func (c *TTLCache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropping = true
	c.entries.Purge()
	c.dropping = false
}

type Stats struct {
	Hits    uint64
	Misses  uint64
	Evicted uint64
	Expired uint64
	Size    int
	HitRate float64
}

func (c *TTLCache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Hits:    c.hits,
		Misses:  c.misses,
		Evicted: c.evicted,
		Expired: c.expired,
		Size:    c.entries.Len(),
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}
