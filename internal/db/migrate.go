package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent and re-run
// on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillCBPercent(db); err != nil {
		return fmt.Errorf("backfilling cb_percent: %w", err)
	}
	return nil
}

// migrateBackfillCBPercent derives cb_percent for rows imported without it
// and clears values stored against a zero entitled count.
func migrateBackfillCBPercent(db *sql.DB) error {
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting backfill transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		UPDATE cb_daily_metrics
		SET cb_percent = 100.0 * attained_count / entitled_count
		WHERE cb_percent IS NULL AND entitled_count > 0`); err != nil {
		return fmt.Errorf("deriving missing cb_percent: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE cb_daily_metrics
		SET cb_percent = NULL
		WHERE cb_percent IS NOT NULL AND entitled_count = 0`); err != nil {
		return fmt.Errorf("clearing undefined cb_percent: %w", err)
	}
	return tx.Commit()
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS cb_daily_metrics (
		depot_id TEXT NOT NULL,
		metric_date TEXT NOT NULL,
		catchment_count INTEGER NOT NULL DEFAULT 0 CHECK (catchment_count >= 0),
		entitled_count INTEGER NOT NULL DEFAULT 0 CHECK (entitled_count >= 0),
		attained_count INTEGER NOT NULL DEFAULT 0 CHECK (attained_count >= 0),
		cb_percent REAL,
		PRIMARY KEY (depot_id, metric_date)
	)`,
	`CREATE TABLE IF NOT EXISTS order_details (
		depot_id TEXT NOT NULL,
		order_date TEXT NOT NULL,
		order_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		substituted BOOLEAN NOT NULL DEFAULT FALSE,
		substitute_item_id TEXT,
		PRIMARY KEY (depot_id, order_id, item_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_details_depot_date ON order_details(depot_id, order_date)`,
	`CREATE TABLE IF NOT EXISTS assortment (
		depot_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		active BOOLEAN NOT NULL,
		effective_date TEXT NOT NULL,
		PRIMARY KEY (depot_id, item_id, effective_date)
	)`,
	`CREATE TABLE IF NOT EXISTS snapshot_meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		table_version INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT
	)`,
	`INSERT OR IGNORE INTO snapshot_meta (id, table_version) VALUES (1, 0)`,
	`CREATE TABLE IF NOT EXISTS snapshot_imports (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		table_version INTEGER NOT NULL,
		metric_rows INTEGER NOT NULL DEFAULT 0,
		order_rows INTEGER NOT NULL DEFAULT 0,
		assortment_rows INTEGER NOT NULL DEFAULT 0,
		imported_at TEXT NOT NULL
	)`,
	`ALTER TABLE snapshot_imports ADD COLUMN depots TEXT`,
}
