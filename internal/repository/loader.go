package repository

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/depotcb/cbagent/internal/app"
	"github.com/depotcb/cbagent/internal/domain"
	"github.com/depotcb/cbagent/internal/planner"
)

const tableVersionQuery = "SELECT table_version FROM snapshot_meta WHERE id = 1"

// Loader reads typed rows through a MetricsStore using rendered loads.
type Loader struct {
	store    MetricsStore
	renderer planner.Renderer
	logger   *slog.Logger
	// noVersion is shared by loaders derived through On. Once the version
	// table is known to be missing it is not queried again, so a failed
	// probe never aborts a later transaction.
	noVersion *atomic.Bool
}

// NewLoader builds a loader rendering for the store's dialect.
func NewLoader(store MetricsStore, tables planner.Tables, logger *slog.Logger) (*Loader, error) {
	r, err := planner.NewRenderer(store.Dialect(), tables)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loader{store: store, renderer: r, logger: logger, noVersion: new(atomic.Bool)}, nil
}

func (l *Loader) Renderer() planner.Renderer { return l.renderer }

func (l *Loader) Metrics(ctx context.Context, depotID string, rng domain.DateRange) ([]domain.MetricRow, error) {
	rs, err := l.store.Fetch(ctx, l.renderer.MetricRows(depotID, rng))
	if err != nil {
		return nil, err
	}
	return DecodeMetricRows(rs)
}

func (l *Loader) Orders(ctx context.Context, depotID string, rng domain.DateRange) ([]domain.OrderDetailRow, error) {
	rs, err := l.store.Fetch(ctx, l.renderer.OrderDetails(depotID, rng))
	if err != nil {
		return nil, err
	}
	return DecodeOrderDetails(rs)
}

func (l *Loader) Assortment(ctx context.Context, depotID string, asOf time.Time) ([]domain.AssortmentRow, error) {
	rs, err := l.store.Fetch(ctx, l.renderer.Assortment(depotID, asOf))
	if err != nil {
		return nil, err
	}
	return DecodeAssortment(rs)
}

// TableVersion reads the snapshot version. Stores without the version table
// report 0.
func (l *Loader) TableVersion(ctx context.Context) (int64, error) {
	if l.noVersion.Load() {
		return 0, nil
	}
	rs, err := l.store.Fetch(ctx, domain.Query{Text: tableVersionQuery})
	if err != nil {
		if app.IsCode(err, app.ErrStoreQueryRejected) {
			l.noVersion.Store(true)
			l.logger.Debug("table version unavailable", slog.String("error", err.Error()))
			return 0, nil
		}
		return 0, err
	}
	if len(rs.Rows) == 0 {
		return 0, nil
	}
	v, err := rowInt(rs.Rows[0], "table_version")
	if err != nil {
		return 0, app.WrapError(app.ErrStoreQueryRejected, err, "decoding table version")
	}
	return v, nil
}

func (l *Loader) On(store MetricsStore) SnapshotLoader {
	return &Loader{store: store, renderer: l.renderer, logger: l.logger, noVersion: l.noVersion}
}

var _ SnapshotLoader = (*Loader)(nil)
