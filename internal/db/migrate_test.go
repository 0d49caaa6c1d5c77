package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM snapshot_meta`).Scan(&n))
	assert.Equal(t, 1, n, "meta row is seeded once")
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{"cb_daily_metrics", "order_details", "assortment", "snapshot_meta", "snapshot_imports"}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}

	var idx string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name='idx_order_details_depot_date'`).Scan(&idx)
	require.NoError(t, err)
}

func TestMigrate_ImportsDepotsColumn(t *testing.T) {
	db := openTestDB(t)

	rows, err := db.Query(`PRAGMA table_info(snapshot_imports)`)
	require.NoError(t, err)
	defer rows.Close()

	found := false
	for rows.Next() {
		var cid, notNull, pk int
		var name, typ string
		var dflt sql.NullString
		require.NoError(t, rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk))
		if name == "depots" {
			found = true
		}
	}
	require.NoError(t, rows.Err())
	assert.True(t, found)
}

func TestMigrate_BackfillsCBPercent(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO cb_daily_metrics (depot_id, metric_date, catchment_count, entitled_count, attained_count, cb_percent)
		VALUES ('7634', '2025-06-01', 1200, 1000, 720, NULL),
		       ('7634', '2025-06-02', 40, 0, 0, 0.0)`)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	var filled sql.NullFloat64
	require.NoError(t, db.QueryRow(`SELECT cb_percent FROM cb_daily_metrics WHERE metric_date = '2025-06-01'`).Scan(&filled))
	require.True(t, filled.Valid)
	assert.InDelta(t, 72.0, filled.Float64, 1e-9)

	var cleared sql.NullFloat64
	require.NoError(t, db.QueryRow(`SELECT cb_percent FROM cb_daily_metrics WHERE metric_date = '2025-06-02'`).Scan(&cleared))
	assert.False(t, cleared.Valid, "zero entitled means undefined, not zero")
}

func TestMigrate_RejectsNegativeCounts(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`INSERT INTO cb_daily_metrics (depot_id, metric_date, entitled_count) VALUES ('1', '2025-06-01', -1)`)
	require.Error(t, err)
}
