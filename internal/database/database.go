package database

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/evidenceledger/credstore/internal/config"
	"github.com/evidenceledger/credstore/internal/errl"
	"github.com/evidenceledger/credstore/internal/secret"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect selects placeholder syntax, column types and error classification.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// Database manages the relational store behind the credential, certificate
// and verification-log repositories.
//
// The underlying *sql.DB is a connection pool and is safe for concurrent use.
// A Tx obtained from WithTx is not; it belongs to the goroutine running fn.
type Database struct {
	db      *sql.DB
	dialect Dialect
	timeout time.Duration
	hasher  *secret.Hasher
}

// Open connects to the store described by cfg and pings it within
// cfg.ConnectTimeout. Failure to reach the store is an errl.ErrConnection.
func Open(ctx context.Context, cfg config.Database, hasher *secret.Hasher) (*Database, error) {
	driver, dialect := "pgx", Postgres
	if cfg.Driver == config.DriverSQLite {
		driver, dialect = "sqlite3", SQLite
	}

	db, err := sql.Open(driver, cfg.ConnString())
	if err != nil {
		return nil, errl.Errorf("failed to open database: %w", err)
	}

	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errl.Connection("connect", err)
	}

	slog.Info("Database connected", "driver", driver)
	return New(db, dialect, cfg.QueryTimeout, hasher), nil
}

// New wraps an already opened *sql.DB. A non-positive queryTimeout disables
// the per-operation deadline.
func New(db *sql.DB, dialect Dialect, queryTimeout time.Duration, hasher *secret.Hasher) *Database {
	if hasher == nil {
		hasher = secret.New(0)
	}
	return &Database{
		db:      db,
		dialect: dialect,
		timeout: queryTimeout,
		hasher:  hasher,
	}
}

// Initialize creates the tables if they do not exist yet.
func (d *Database) Initialize(ctx context.Context) error {
	if err := d.createTables(ctx); err != nil {
		return errl.Errorf("failed to create tables: %w", err)
	}

	slog.Info("Database initialized")
	return nil
}

// Ping checks that the store is reachable.
func (d *Database) Ping(ctx context.Context) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	if err := d.db.PingContext(ctx); err != nil {
		return errl.Connection("ping", err)
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Admins returns the admin credential repository.
func (d *Database) Admins() *Admins {
	return &Admins{principals: d.principals(d.db, adminTable)}
}

// Students returns the student credential repository.
func (d *Database) Students() *Students {
	return &Students{principals: d.principals(d.db, studentTable)}
}

// Universities returns the university repository.
func (d *Database) Universities() *Universities {
	return &Universities{conn: d.conn(d.db)}
}

// Certificates returns the certificate integrity record repository.
func (d *Database) Certificates() *Certificates {
	return &Certificates{conn: d.conn(d.db)}
}

// VerificationLogs returns the append-only verification log.
func (d *Database) VerificationLogs() *VerificationLogs {
	return &VerificationLogs{conn: d.conn(d.db)}
}

// Tx scopes repositories to one transaction.
type Tx struct {
	d  *Database
	tx *sql.Tx
}

// Admins returns the admin repository bound to the transaction.
func (t *Tx) Admins() *Admins {
	return &Admins{principals: t.d.principals(t.tx, adminTable)}
}

// Students returns the student repository bound to the transaction.
func (t *Tx) Students() *Students {
	return &Students{principals: t.d.principals(t.tx, studentTable)}
}

// Universities returns the university repository bound to the transaction.
func (t *Tx) Universities() *Universities {
	return &Universities{conn: t.d.conn(t.tx)}
}

// Certificates returns the certificate repository bound to the transaction.
func (t *Tx) Certificates() *Certificates {
	return &Certificates{conn: t.d.conn(t.tx)}
}

// VerificationLogs returns the verification log bound to the transaction.
func (t *Tx) VerificationLogs() *VerificationLogs {
	return &VerificationLogs{conn: t.d.conn(t.tx)}
}

// WithTx runs fn inside a transaction. It commits if fn returns nil and
// rolls back otherwise. The transaction is not bounded by the per-operation
// query timeout; each statement inside it is.
func (d *Database) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin transaction", "", err, d.dialect)
	}

	if err := fn(&Tx{d: d, tx: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			slog.Error("Failed to roll back transaction", "error", rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return classify("commit transaction", "", err, d.dialect)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn runs parameterized statements against a querier with the dialect's
// placeholders and the configured deadline.
type conn struct {
	q       querier
	dialect Dialect
	timeout time.Duration
}

func (d *Database) conn(q querier) conn {
	return conn{q: q, dialect: d.dialect, timeout: d.timeout}
}

func (d *Database) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(ctx, d.timeout)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()
	return c.q.ExecContext(ctx, c.rebind(query), args...)
}

// get scans a single row into dest. It returns sql.ErrNoRows unchanged.
func (c conn) get(ctx context.Context, query string, args []any, dest ...any) error {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()
	return c.q.QueryRowContext(ctx, c.rebind(query), args...).Scan(dest...)
}

// each calls fn for every row of the result set.
func (c conn) each(ctx context.Context, query string, args []any, fn func(rows *sql.Rows) error) error {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	rows, err := c.q.QueryContext(ctx, c.rebind(query), args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// rebind rewrites ? placeholders to $n for postgres.
func (c conn) rebind(query string) string {
	return rebind(c.dialect, query)
}

func rebind(dialect Dialect, query string) string {
	if dialect != Postgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// now returns the timestamp stored for created_at and verified_at columns:
// UTC wall clock, microsecond precision.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
