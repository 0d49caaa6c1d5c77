package repository

import (
	"context"
	"time"

	"github.com/depotcb/cbagent/internal/app"
	"github.com/depotcb/cbagent/internal/domain"
	"github.com/depotcb/cbagent/internal/planner"
)

// ResultSet is one fetched result with its column order preserved.
type ResultSet struct {
	Columns []string
	Rows    []app.Row
}

// MetricsStore is the read side of the metrics warehouse. Failures come
// back as STORE_UNAVAILABLE or STORE_QUERY_REJECTED and are never retried.
type MetricsStore interface {
	Fetch(ctx context.Context, q domain.Query) (ResultSet, error)
	Dialect() planner.Dialect
}

// Snapshotter runs fn against a store view in which every read sees the
// same committed state.
type Snapshotter interface {
	WithinSnapshot(ctx context.Context, fn func(ctx context.Context, store MetricsStore) error) error
}

// SnapshotLoader loads typed rows for one depot.
type SnapshotLoader interface {
	Metrics(ctx context.Context, depotID string, rng domain.DateRange) ([]domain.MetricRow, error)
	Orders(ctx context.Context, depotID string, rng domain.DateRange) ([]domain.OrderDetailRow, error)
	Assortment(ctx context.Context, depotID string, asOf time.Time) ([]domain.AssortmentRow, error)
	TableVersion(ctx context.Context) (int64, error)
	// On returns a loader reading through store, sharing any cache.
	On(store MetricsStore) SnapshotLoader
}

// ImportRecord is the audit row written for each imported snapshot.
type ImportRecord struct {
	ID             string
	Source         string
	TableVersion   int64
	MetricRows     int
	OrderRows      int
	AssortmentRows int
	Depots         []string
	ImportedAt     time.Time
}

// SnapshotWriter persists imported rows into the local store.
type SnapshotWriter interface {
	UpsertMetrics(ctx context.Context, rows []domain.MetricRow) error
	UpsertOrders(ctx context.Context, rows []domain.OrderDetailRow) error
	UpsertAssortment(ctx context.Context, rows []domain.AssortmentRow) error
	BumpVersion(ctx context.Context) (int64, error)
	RecordImport(ctx context.Context, rec ImportRecord) error
}
