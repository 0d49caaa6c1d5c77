package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/depotcb/cbagent/internal/db"
)

// storeTables are the tables created by db.Migrate.
var storeTables = map[string]bool{
	"cb_daily_metrics": true,
	"order_details":    true,
	"assortment":       true,
	"snapshot_meta":    true,
	"snapshot_imports": true,
}

// NewTestDB opens a private in-memory metrics store with the CB% tables
// migrated and the table version at 0. It is closed on test cleanup.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err, "opening in-memory store")
	t.Cleanup(func() { database.Close() })
	return database
}

// NewTestUoW returns the transaction runner imports write through.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLUnitOfWork(database)
}

// CountRows returns the row count of one store table.
func CountRows(t *testing.T, database *sql.DB, table string) int {
	t.Helper()
	require.True(t, storeTables[table], "unknown store table %q", table)
	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}
