package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func TestTTLCache_GetSet(t *testing.T) {
	c, err := New[string, int](4, 0)
	require.NoError(t, err)

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("b")
	assert.False(t, ok)

	s := c.Stats()
	assert.Equal(t, uint64(1), s.Hits)
	assert.Equal(t, uint64(1), s.Misses)
	assert.InDelta(t, 0.5, s.HitRate, 1e-12)
}

func TestTTLCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New[int, string](2, 0)
	require.NoError(t, err)

	c.Set(1, "one")
	c.Set(2, "two")
	_, _ = c.Get(1)
	c.Set(3, "three")

	_, ok := c.Get(2)
	assert.False(t, ok, "2 was least recently used")
	_, ok = c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), c.Stats().Evicted)
	assert.Equal(t, 2, c.Len())
}

func TestTTLCache_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	c, err := New[string, int](4, time.Minute, WithClock(clock.now))
	require.NoError(t, err)

	c.Set("k", 7)
	clock.advance(30 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	clock.advance(31 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)

	s := c.Stats()
	assert.Equal(t, uint64(1), s.Expired)
	assert.Zero(t, s.Evicted, "expiry is not a capacity eviction")
	assert.Zero(t, s.Size)
}

func TestTTLCache_DeleteAndPurgeDoNotCountEvictions(t *testing.T) {
	c, err := New[string, int](4, 0)
	require.NoError(t, err)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Delete("a")
	c.Purge()

	assert.Zero(t, c.Len())
	assert.Zero(t, c.Stats().Evicted)
}

func TestTTLCache_InvalidSize(t *testing.T) {
	_, err := New[string, int](0, time.Minute)
	assert.Error(t, err)
}

func TestTTLCache_ConcurrentAccess(t *testing.T) {
	c, err := New[int, int](64, time.Minute)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				c.Set(i%100, g)
				_, _ = c.Get((i + g) % 100)
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 64)
}
