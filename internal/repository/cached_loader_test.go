package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depotcb/cbagent/internal/domain"
	"github.com/depotcb/cbagent/internal/repository"
	"github.com/depotcb/cbagent/internal/testutil"
)

type countingLoader struct {
	version    int64
	metrics    int
	orders     int
	assortment int
}

func (c *countingLoader) Metrics(_ context.Context, depotID string, rng domain.DateRange) ([]domain.MetricRow, error) {
	c.metrics++
	return testutil.MetricWindow(depotID, rng), nil
}

func (c *countingLoader) Orders(_ context.Context, depotID string, _ domain.DateRange) ([]domain.OrderDetailRow, error) {
	c.orders++
	return []domain.OrderDetailRow{testutil.NewOrderLine(depotID, "X")}, nil
}

func (c *countingLoader) Assortment(_ context.Context, depotID string, _ time.Time) ([]domain.AssortmentRow, error) {
	c.assortment++
	return []domain.AssortmentRow{testutil.NewAssortmentRow(depotID, "X", true)}, nil
}

func (c *countingLoader) TableVersion(context.Context) (int64, error) { return c.version, nil }

func (c *countingLoader) On(repository.MetricsStore) repository.SnapshotLoader { return c }

func TestCachedLoader_HitsUntilVersionChanges(t *testing.T) {
	ctx := context.Background()
	inner := &countingLoader{}
	cl, err := repository.NewCachedLoader(inner, 16, time.Minute)
	require.NoError(t, err)

	rng := testutil.Range("2025-06-01", "2025-06-07")
	first, err := cl.Metrics(ctx, "7634", rng)
	require.NoError(t, err)
	second, err := cl.Metrics(ctx, "7634", rng)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.metrics)

	_, err = cl.Metrics(ctx, "9001", rng)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.metrics, "different depot is a different key")

	inner.version++
	_, err = cl.Metrics(ctx, "7634", rng)
	require.NoError(t, err)
	assert.Equal(t, 3, inner.metrics, "version bump invalidates")

	stats := cl.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
}

func TestCachedLoader_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	inner := &countingLoader{}
	cl, err := repository.NewCachedLoader(inner, 16, time.Minute)
	require.NoError(t, err)

	rng := testutil.Range("2025-06-01", "2025-06-01")
	rows, err := cl.Orders(ctx, "7634", rng)
	require.NoError(t, err)
	rows[0].ItemID = "mutated"

	again, err := cl.Orders(ctx, "7634", rng)
	require.NoError(t, err)
	assert.Equal(t, "X", again[0].ItemID)
	assert.Equal(t, 1, inner.orders)
}

func TestCachedLoader_OnSharesCache(t *testing.T) {
	ctx := context.Background()
	inner := &countingLoader{}
	cl, err := repository.NewCachedLoader(inner, 16, time.Minute)
	require.NoError(t, err)

	asOf := testutil.Date("2025-06-07")
	_, err = cl.Assortment(ctx, "7634", asOf)
	require.NoError(t, err)
	_, err = cl.On(nil).Assortment(ctx, "7634", asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.assortment)
}
