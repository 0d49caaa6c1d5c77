package repository

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/depotcb/cbagent/internal/app"
	"github.com/depotcb/cbagent/internal/db"
	"github.com/depotcb/cbagent/internal/domain"
	"github.com/depotcb/cbagent/internal/planner"
)

// DefaultTimeout bounds a single store call.
const DefaultTimeout = 300 * time.Second

// maxLoggedQuery caps the query text written to debug logs.
const maxLoggedQuery = 500

// StoreOption configures a store adapter.
type StoreOption func(*storeOptions)

type storeOptions struct {
	logger  *slog.Logger
	timeout time.Duration
}

func WithLogger(l *slog.Logger) StoreOption {
	return func(o *storeOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTimeout sets the per-call timeout. A non-positive value disables it.
func WithTimeout(d time.Duration) StoreOption {
	return func(o *storeOptions) { o.timeout = d }
}

func newStoreOptions(opts []StoreOption) storeOptions {
	o := storeOptions{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o storeOptions) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, o.timeout)
}

func truncateQuery(text string) string {
	if len(text) <= maxLoggedQuery {
		return text
	}
	return text[:maxLoggedQuery] + "..."
}

// SQLStore is a MetricsStore over database/sql (sqlite or mysql).
type SQLStore struct {
	q       db.DBTX
	conn    *sql.DB
	uow     db.UnitOfWork
	dialect planner.Dialect
	opts    storeOptions
}

// NewSQLStore wraps an open connection pool.
func NewSQLStore(conn *sql.DB, dialect planner.Dialect, opts ...StoreOption) *SQLStore {
	return &SQLStore{
		q:       conn,
		conn:    conn,
		uow:     db.NewSQLUnitOfWork(conn),
		dialect: dialect,
		opts:    newStoreOptions(opts),
	}
}

// OpenSQLStore opens a store for driver ("sqlite" or "mysql").
// The sqlite path is migrated; mysql DSNs may use mariadb:// or mysql:// URLs.
func OpenSQLStore(ctx context.Context, driver, dsn string, opts ...StoreOption) (*SQLStore, error) {
	switch planner.Dialect(driver) {
	case planner.DialectSQLite:
		conn, err := db.OpenDB(dsn)
		if err != nil {
			return nil, app.WrapError(app.ErrStoreUnavailable, err, "opening sqlite store")
		}
		return NewSQLStore(conn, planner.DialectSQLite, opts...), nil

	case planner.DialectMySQL:
		native, err := MySQLDSN(dsn)
		if err != nil {
			return nil, app.WrapError(app.ErrInvalidArgument, err, "parsing mysql dsn")
		}
		conn, err := sql.Open("mysql", native)
		if err != nil {
			return nil, app.WrapError(app.ErrStoreUnavailable, err, "opening mysql store")
		}
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(10)
		conn.SetConnMaxLifetime(30 * time.Minute)

		store := NewSQLStore(conn, planner.DialectMySQL, opts...)
		pingCtx, cancel := store.opts.withTimeout(ctx)
		defer cancel()
		if err := conn.PingContext(pingCtx); err != nil {
			conn.Close()
			return nil, classify("connecting to mysql", err)
		}
		return store, nil
	}
	return nil, app.NewError(app.ErrInvalidArgument, "unsupported sql driver %q", driver)
}

func (s *SQLStore) Dialect() planner.Dialect { return s.dialect }

// DB exposes the pool for writers sharing the connection.
func (s *SQLStore) DB() *sql.DB { return s.conn }

func (s *SQLStore) UnitOfWork() db.UnitOfWork { return s.uow }

func (s *SQLStore) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Fetch runs q and returns every row keyed by column name.
func (s *SQLStore) Fetch(ctx context.Context, q domain.Query) (ResultSet, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	s.opts.logger.Debug("executing query",
		slog.String("dialect", string(s.dialect)),
		slog.String("query", truncateQuery(q.Text)),
		slog.Int("args", len(q.Args)),
	)
	start := time.Now()

	rows, err := s.q.QueryContext(ctx, q.Text, q.Args...)
	if err != nil {
		return ResultSet{}, classify("executing query", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return ResultSet{}, classify("reading columns", err)
	}

	rs := ResultSet{Columns: cols, Rows: []app.Row{}}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
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

	s.opts.logger.Info("query complete",
		slog.String("dialect", string(s.dialect)),
		slog.Int("rows", len(rs.Rows)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return rs, nil
}

// WithinSnapshot runs fn against a store bound to one read-only transaction.
func (s *SQLStore) WithinSnapshot(ctx context.Context, fn func(ctx context.Context, store MetricsStore) error) error {
	if s.uow == nil {
		return fn(ctx, s)
	}
	err := s.uow.WithinReadTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &SQLStore{q: tx, dialect: s.dialect, opts: s.opts})
	})
	if err != nil && app.CodeOf(err) == "" {
		return classify("reading snapshot", err)
	}
	return err
}

var (
	_ MetricsStore = (*SQLStore)(nil)
	_ Snapshotter  = (*SQLStore)(nil)
)
