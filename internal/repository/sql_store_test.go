package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depotcb/cbagent/internal/app"
	"github.com/depotcb/cbagent/internal/domain"
	"github.com/depotcb/cbagent/internal/planner"
	"github.com/depotcb/cbagent/internal/repository"
	"github.com/depotcb/cbagent/internal/testutil"
)

func seededStore(t *testing.T) (*repository.SQLStore, *repository.SQLiteSnapshotRepo) {
	t.Helper()
	ctx := context.Background()
	database := testutil.NewTestDB(t)
	writer := repository.NewSQLiteSnapshotRepo(database)

	require.NoError(t, writer.UpsertMetrics(ctx, []domain.MetricRow{
		testutil.NewMetricRow("7634", "2025-06-01"),
		testutil.NewMetricRow("7634", "2025-06-02", testutil.WithCounts(1000, 700)),
		testutil.NewMetricRow("7634", "2025-06-03", testutil.WithCounts(0, 0)),
		testutil.NewMetricRow("9001", "2025-06-01"),
	}))
	require.NoError(t, writer.UpsertOrders(ctx, []domain.OrderDetailRow{
		testutil.NewOrderLine("7634", "X", testutil.WithOrderID("O1")),
		testutil.NewOrderLine("7634", "X", testutil.WithOrderID("O2"), testutil.SubstitutedBy("Y")),
	}))
	require.NoError(t, writer.UpsertAssortment(ctx, []domain.AssortmentRow{
		testutil.NewAssortmentRow("7634", "X", false),
		testutil.NewAssortmentRow("7634", "A", true),
	}))

	return repository.NewSQLStore(database, planner.DialectSQLite), writer
}

func TestLoader_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := seededStore(t)
	loader, err := repository.NewLoader(store, planner.DefaultTables(), nil)
	require.NoError(t, err)

	metrics, err := loader.Metrics(ctx, "7634", testutil.Range("2025-06-01", "2025-06-03"))
	require.NoError(t, err)
	require.Len(t, metrics, 3)
	require.NotNil(t, metrics[1].CBPercent)
	assert.InDelta(t, 70.0, *metrics[1].CBPercent, 1e-9)
	assert.Nil(t, metrics[2].CBPercent)

	orders, err := loader.Orders(ctx, "7634", testutil.Range("2025-06-01", "2025-06-30"))
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "O1", orders[0].OrderID)
	assert.False(t, orders[0].Substituted)
	assert.True(t, orders[1].Substituted)
	assert.Equal(t, "Y", orders[1].SubstituteItemID)

	assortment, err := loader.Assortment(ctx, "7634", testutil.Date("2025-06-30"))
	require.NoError(t, err)
	active := domain.ActiveItems(assortment)
	assert.True(t, active["A"])
	assert.False(t, active["X"])
}

func TestLoader_TableVersionFollowsBumps(t *testing.T) {
	ctx := context.Background()
	store, writer := seededStore(t)
	loader, err := repository.NewLoader(store, planner.DefaultTables(), nil)
	require.NoError(t, err)

	v, err := loader.TableVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	bumped, err := writer.BumpVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), bumped)

	v, err = loader.TableVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestSQLStore_FetchRejectedQuery(t *testing.T) {
	store, _ := seededStore(t)
	_, err := store.Fetch(context.Background(), domain.Query{Text: "SELECT * FROM no_such_table"})
	require.Error(t, err)
	assert.True(t, app.IsCode(err, app.ErrStoreQueryRejected))
}

func TestSQLStore_FetchCanceledContext(t *testing.T) {
	store, _ := seededStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := store.Fetch(ctx, domain.Query{Text: "SELECT 1"})
	require.Error(t, err)
	assert.True(t, app.IsCode(err, app.ErrStoreUnavailable))
}

func TestSQLStore_FetchRendersPlan(t *testing.T) {
	store, _ := seededStore(t)
	r, err := planner.NewRenderer(planner.DialectSQLite, planner.DefaultTables())
	require.NoError(t, err)

	plan, err := planner.Plan("Show CB% trend for depot 7634 from 2025-06-01 to 2025-06-03", planner.Context{})
	require.NoError(t, err)
	q, err := r.Render(plan)
	require.NoError(t, err)

	rs, err := store.Fetch(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, rs.Rows, 3)
	assert.NotEmpty(t, rs.Columns)
}

func TestSQLStore_WithinSnapshot(t *testing.T) {
	ctx := context.Background()
	store, _ := seededStore(t)
	loader, err := repository.NewLoader(store, planner.DefaultTables(), nil)
	require.NoError(t, err)

	var n int
	err = store.WithinSnapshot(ctx, func(ctx context.Context, s repository.MetricsStore) error {
		rows, err := loader.On(s).Metrics(ctx, "9001", testutil.Range("2025-06-01", "2025-06-01"))
		n = len(rows)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpenSQLStore_UnknownDriver(t *testing.T) {
	_, err := repository.OpenSQLStore(context.Background(), "oracle", "x")
	require.Error(t, err)
	assert.True(t, app.IsCode(err, app.ErrInvalidArgument))
}

func TestSnapshotRepo_RecordAndListImports(t *testing.T) {
	ctx := context.Background()
	_, writer := seededStore(t)

	require.NoError(t, writer.RecordImport(ctx, repository.ImportRecord{
		ID: "snap-1", Source: "june.json", TableVersion: 1,
		MetricRows: 4, Depots: []string{"7634", "9001"},
		ImportedAt: testutil.Date("2025-06-04"),
	}))

	recs, err := writer.ListImports(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "snap-1", recs[0].ID)
	assert.Equal(t, []string{"7634", "9001"}, recs[0].Depots)
	assert.Equal(t, 4, recs[0].MetricRows)
}
