package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/depotcb/cbagent/internal/app"
	"github.com/depotcb/cbagent/internal/domain"
	"github.com/depotcb/cbagent/internal/planner"
)

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore is a MetricsStore over a pgx connection pool.
type PostgresStore struct {
	q    querier
	pool *pgxpool.Pool
	opts storeOptions
}

// OpenPostgresStore creates the pool and verifies connectivity.
func OpenPostgresStore(ctx context.Context, connStr string, opts ...StoreOption) (*PostgresStore, error) {
	o := newStoreOptions(opts)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, app.WrapError(app.ErrStoreUnavailable, err, "creating postgres pool")
	}

	pingCtx, cancel := o.withTimeout(ctx)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, classify("connecting to postgres", err)
	}

	return &PostgresStore{q: pool, pool: pool, opts: o}, nil
}

func (p *PostgresStore) Dialect() planner.Dialect { return planner.DialectPostgres }

func (p *PostgresStore) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *PostgresStore) Fetch(ctx context.Context, q domain.Query) (ResultSet, error) {
	ctx, cancel := p.opts.withTimeout(ctx)
	defer cancel()

	p.opts.logger.Debug("executing query",
		slog.String("dialect", string(planner.DialectPostgres)),
		slog.String("query", truncateQuery(q.Text)),
		slog.Int("args", len(q.Args)),
	)
	start := time.Now()

	rows, err := p.q.Query(ctx, q.Text, q.Args...)
	if err != nil {
		return ResultSet{}, classify("executing query", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}

	rs := ResultSet{Columns: cols, Rows: []app.Row{}}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return ResultSet{}, classify("scanning row", err)
		}
		row := make(app.Row, len(cols))
		for i, c := range cols {
			row[c] = normalizeValue(vals[i])
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return ResultSet{}, classify("iterating rows", err)
	}

	p.opts.logger.Info("query complete",
		slog.String("dialect", string(planner.DialectPostgres)),
		slog.Int("rows", len(rs.Rows)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return rs, nil
}

// WithinSnapshot runs fn inside a read-only repeatable-read transaction.
func (p *PostgresStore) WithinSnapshot(ctx context.Context, fn func(ctx context.Context, store MetricsStore) error) error {
	if p.pool == nil {
		return fn(ctx, p)
	}
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return classify("beginning snapshot", err)
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	if err := fn(ctx, &PostgresStore{q: tx, opts: p.opts}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return classify("committing snapshot", err)
	}
	return nil
}

var (
	_ MetricsStore = (*PostgresStore)(nil)
	_ Snapshotter  = (*PostgresStore)(nil)
)
