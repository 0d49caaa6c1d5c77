package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/depotcb/cbagent/internal/db"
	"github.com/depotcb/cbagent/internal/domain"
)

// SQLiteSnapshotRepo writes imported snapshots into the local store.
type SQLiteSnapshotRepo struct {
	db db.DBTX
}

func NewSQLiteSnapshotRepo(db db.DBTX) *SQLiteSnapshotRepo {
	return &SQLiteSnapshotRepo{db: db}
}

func (r *SQLiteSnapshotRepo) UpsertMetrics(ctx context.Context, rows []domain.MetricRow) error {
	const q = `
		INSERT INTO cb_daily_metrics
			(depot_id, metric_date, catchment_count, entitled_count, attained_count, cb_percent)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (depot_id, metric_date) DO UPDATE SET
			catchment_count = excluded.catchment_count,
			entitled_count = excluded.entitled_count,
			attained_count = excluded.attained_count,
			cb_percent = excluded.cb_percent`
	for _, m := range rows {
		var cb any
		if v := m.Recompute(); v != nil {
			cb = *v
		}
		if _, err := r.db.ExecContext(ctx, q,
			m.DepotID, m.Date.Format(domain.DateLayout),
			m.CatchmentCount, m.EntitledCount, m.AttainedCount, cb,
		); err != nil {
			return fmt.Errorf("upserting metric %s %s: %w", m.DepotID, m.Date.Format(domain.DateLayout), err)
		}
	}
	return nil
}

func (r *SQLiteSnapshotRepo) UpsertOrders(ctx context.Context, rows []domain.OrderDetailRow) error {
	const q = `
		INSERT INTO order_details
			(depot_id, order_date, order_id, item_id, substituted, substitute_item_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (depot_id, order_id, item_id) DO UPDATE SET
			order_date = excluded.order_date,
			substituted = excluded.substituted,
			substitute_item_id = excluded.substitute_item_id`
	for _, o := range rows {
		var sub any
		if o.SubstituteItemID != "" {
			sub = o.SubstituteItemID
		}
		if _, err := r.db.ExecContext(ctx, q,
			o.DepotID, o.Date.Format(domain.DateLayout), o.OrderID, o.ItemID, o.Substituted, sub,
		); err != nil {
			return fmt.Errorf("upserting order %s/%s: %w", o.OrderID, o.ItemID, err)
		}
	}
	return nil
}

func (r *SQLiteSnapshotRepo) UpsertAssortment(ctx context.Context, rows []domain.AssortmentRow) error {
	const q = `
		INSERT INTO assortment (depot_id, item_id, active, effective_date)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (depot_id, item_id, effective_date) DO UPDATE SET
			active = excluded.active`
	for _, a := range rows {
		if _, err := r.db.ExecContext(ctx, q,
			a.DepotID, a.ItemID, a.Active, a.EffectiveDate.Format(domain.DateLayout),
		); err != nil {
			return fmt.Errorf("upserting assortment %s/%s: %w", a.DepotID, a.ItemID, err)
		}
	}
	return nil
}

// BumpVersion increments the snapshot version and returns the new value.
func (r *SQLiteSnapshotRepo) BumpVersion(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO snapshot_meta (id, table_version, updated_at) VALUES (1, 1, ?)
		ON CONFLICT (id) DO UPDATE SET
			table_version = table_version + 1,
			updated_at = excluded.updated_at`, now); err != nil {
		return 0, fmt.Errorf("bumping table version: %w", err)
	}
	var v int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT table_version FROM snapshot_meta WHERE id = 1`).Scan(&v); err != nil {
		return 0, fmt.Errorf("reading table version: %w", err)
	}
	return v, nil
}

func (r *SQLiteSnapshotRepo) RecordImport(ctx context.Context, rec ImportRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO snapshot_imports
			(id, source, table_version, metric_rows, order_rows, assortment_rows, depots, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Source, rec.TableVersion,
		rec.MetricRows, rec.OrderRows, rec.AssortmentRows,
		strings.Join(rec.Depots, ","), rec.ImportedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording import %s: %w", rec.ID, err)
	}
	return nil
}

// ListImports returns recorded imports, newest first.
func (r *SQLiteSnapshotRepo) ListImports(ctx context.Context, limit int) ([]ImportRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, source, table_version, metric_rows, order_rows, assortment_rows,
			COALESCE(depots, ''), imported_at
		FROM snapshot_imports
		ORDER BY table_version DESC, imported_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing imports: %w", err)
	}
	defer rows.Close()

	var out []ImportRecord
	for rows.Next() {
		var rec ImportRecord
		var depots, at string
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.TableVersion,
			&rec.MetricRows, &rec.OrderRows, &rec.AssortmentRows, &depots, &at); err != nil {
			return nil, fmt.Errorf("scanning import: %w", err)
		}
		if depots != "" {
			rec.Depots = strings.Split(depots, ",")
		}
		if t, err := time.Parse(time.RFC3339, at); err == nil {
			rec.ImportedAt = t
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

var _ SnapshotWriter = (*SQLiteSnapshotRepo)(nil)
