package repository

import (
	"context"
	"slices"
	"time"

	"github.com/depotcb/cbagent/internal/cache"
	"github.com/depotcb/cbagent/internal/domain"
)

type loadKind string

const (
	loadMetrics    loadKind = "metrics"
	loadOrders     loadKind = "orders"
	loadAssortment loadKind = "assortment"
)

// cacheKey identifies one load at one table version. Bumping the version on
// import makes older entries unreachable.
type cacheKey struct {
	kind    loadKind
	depotID string
	start   string
	end     string
	version int64
}

// CachedLoader memoizes loads of an inner loader.
type CachedLoader struct {
	inner SnapshotLoader
	cache *cache.TTLCache[cacheKey, any]
}

// NewCachedLoader wraps inner with a cache of size entries living ttl.
func NewCachedLoader(inner SnapshotLoader, size int, ttl time.Duration) (*CachedLoader, error) {
	c, err := cache.New[cacheKey, any](size, ttl)
	if err != nil {
		return nil, err
	}
	return &CachedLoader{inner: inner, cache: c}, nil
}

// Stats reports cache counters.
func (c *CachedLoader) Stats() cache.Stats { return c.cache.Stats() }

func (c *CachedLoader) key(ctx context.Context, kind loadKind, depotID string, start, end time.Time) (cacheKey, error) {
	v, err := c.inner.TableVersion(ctx)
	if err != nil {
		return cacheKey{}, err
	}
	k := cacheKey{kind: kind, depotID: depotID, start: start.Format(domain.DateLayout), version: v}
	if !end.IsZero() {
		k.end = end.Format(domain.DateLayout)
	}
	return k, nil
}

func (c *CachedLoader) Metrics(ctx context.Context, depotID string, rng domain.DateRange) ([]domain.MetricRow, error) {
	k, err := c.key(ctx, loadMetrics, depotID, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	if v, ok := c.cache.Get(k); ok {
		return slices.Clone(v.([]domain.MetricRow)), nil
	}
	rows, err := c.inner.Metrics(ctx, depotID, rng)
	if err != nil {
		return nil, err
	}
	c.cache.Set(k, slices.Clone(rows))
	return rows, nil
}

func (c *CachedLoader) Orders(ctx context.Context, depotID string, rng domain.DateRange) ([]domain.OrderDetailRow, error) {
	k, err := c.key(ctx, loadOrders, depotID, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	if v, ok := c.cache.Get(k); ok {
		return slices.Clone(v.([]domain.OrderDetailRow)), nil
	}
	rows, err := c.inner.Orders(ctx, depotID, rng)
	if err != nil {
		return nil, err
	}
	c.cache.Set(k, slices.Clone(rows))
	return rows, nil
}

func (c *CachedLoader) Assortment(ctx context.Context, depotID string, asOf time.Time) ([]domain.AssortmentRow, error) {
	k, err := c.key(ctx, loadAssortment, depotID, asOf, time.Time{})
	if err != nil {
		return nil, err
	}
	if v, ok := c.cache.Get(k); ok {
		return slices.Clone(v.([]domain.AssortmentRow)), nil
	}
	rows, err := c.inner.Assortment(ctx, depotID, asOf)
	if err != nil {
		return nil, err
	}
	c.cache.Set(k, slices.Clone(rows))
	return rows, nil
}

func (c *CachedLoader) TableVersion(ctx context.Context) (int64, error) {
	return c.inner.TableVersion(ctx)
}

func (c *CachedLoader) On(store MetricsStore) SnapshotLoader {
	return &CachedLoader{inner: c.inner.On(store), cache: c.cache}
}

var _ SnapshotLoader = (*CachedLoader)(nil)
