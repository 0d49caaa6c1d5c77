package repository_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depotcb/cbagent/internal/domain"
	"github.com/depotcb/cbagent/internal/planner"
	"github.com/depotcb/cbagent/internal/repository"
)

func TestPostgresStore_Fetch(t *testing.T) {
	dsn := os.Getenv("CBAGENT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CBAGENT_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	store, err := repository.OpenPostgresStore(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, planner.DialectPostgres, store.Dialect())

	err = store.WithinSnapshot(ctx, func(ctx context.Context, s repository.MetricsStore) error {
		rs, err := s.Fetch(ctx, domain.Query{Text: "SELECT $1::int AS n, 72.5::numeric AS cb", Args: []any{3}})
		if err != nil {
			return err
		}
		require.Len(t, rs.Rows, 1)
		assert.Equal(t, []string{"n", "cb"}, rs.Columns)
		return nil
	})
	require.NoError(t, err)
}
