package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"cyberguard-portal/config"
	"cyberguard-portal/core/utils"
)

const (
	maxConnectAttempts = 3
	connectBackoff     = time.Second
)

// DB owns the pooled database handle. It is constructed once and handed to the
// stores; nothing in the repo reaches for a package-level connection.
type DB struct {
	mu     sync.Mutex
	handle *sql.DB
	driver string
	dsn    string
	logger *utils.Logger
}

// NewDB opens and probes the configured database, retrying a fixed number of
// times with a fixed backoff before giving up with a *ConnectionError.
func NewDB(cfg *config.AppConfig, logger *utils.Logger) (*DB, error) {
	driver, dsn, err := resolveDSN(cfg)
	if err != nil {
		return nil, err
	}
	db := &DB{driver: driver, dsn: dsn, logger: logger}
	if err := db.connect(context.Background()); err != nil {
		return nil, err
	}
	return db, nil
}

func resolveDSN(cfg *config.AppConfig) (driver, dsn string, err error) {
	switch strings.TrimSpace(cfg.DBDriver) {
	case "", "sqlite":
		path := cfg.DBPath
		if path == "" {
			path = "data/cyberguard.db"
		}
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", "", fmt.Errorf("create db directory: %w", err)
			}
		}
		return "sqlite", "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", nil
	case "postgres":
		if strings.TrimSpace(cfg.DBURL) == "" {
			return "", "", errors.New("db_url is required for the postgres driver")
		}
		return "pgx", cfg.DBURL, nil
	default:
		return "", "", fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
}

// connect opens and probes a fresh pool. Callers serialize through mu.
func (db *DB) connect(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= maxConnectAttempts; attempt++ {
		handle, err := sql.Open(db.driver, db.dsn)
		if err == nil {
			if err = handle.PingContext(ctx); err == nil {
				db.handle = handle
				db.logger.Infof("db: connected driver=%s (attempt %d)", db.driver, attempt)
				return nil
			}
			_ = handle.Close()
		}
		lastErr = err
		db.logger.Errorf("db: connection attempt %d/%d failed: %v", attempt, maxConnectAttempts, err)
		if attempt < maxConnectAttempts {
			time.Sleep(connectBackoff)
		}
	}
	return &ConnectionError{Attempts: maxConnectAttempts, Err: lastErr}
}

// Handle returns the live pool, transparently re-establishing it when the
// liveness probe fails. The retry counter starts fresh on every reconnect.
func (db *DB) Handle(ctx context.Context) (*sql.DB, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.handle != nil {
		if err := db.handle.PingContext(ctx); err == nil {
			return db.handle, nil
		}
		db.logger.Errorf("db: liveness probe failed, reconnecting")
		_ = db.handle.Close()
		db.handle = nil
	}
	if err := db.connect(ctx); err != nil {
		return nil, err
	}
	return db.handle, nil
}

func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.handle == nil {
		return nil
	}
	err := db.handle.Close()
	db.handle = nil
	return err
}

// QueryContext executes a parameterized statement. Caller data is only ever
// bound, never interpolated into the SQL text. Failures are logged with the
// statement and wrapped in *QueryError; they are never retried here.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	h, err := db.Handle(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := h.QueryContext(ctx, query, args...)
	if err != nil {
		qe := &QueryError{Query: query, Err: err}
		db.logger.Errorf("db: %v", qe)
		return nil, qe
	}
	return rows, nil
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	h, err := db.Handle(ctx)
	if err != nil {
		return nil, err
	}
	res, err := h.ExecContext(ctx, query, args...)
	if err != nil {
		qe := &QueryError{Query: query, Err: err}
		db.logger.Errorf("db: %v", qe)
		return nil, qe
	}
	return res, nil
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) (*sql.Row, error) {
	h, err := db.Handle(ctx)
	if err != nil {
		return nil, err
	}
	return h.QueryRowContext(ctx, query, args...), nil
}

// FetchAll returns every result row as a column-name-to-value map.
func (db *DB) FetchAll(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &QueryError{Query: query, Err: err}
		}
		rec := make(map[string]any, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			rec[col] = v
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	return out, nil
}

// FetchOne returns the first result row as a map, or ErrNotFound.
func (db *DB) FetchOne(ctx context.Context, query string, args ...any) (map[string]any, error) {
	rows, err := db.FetchAll(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// BeginTx opens a transaction on the live handle. The submission workflow is
// the only multi-statement caller.
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	h, err := db.Handle(ctx)
	if err != nil {
		return nil, err
	}
	return h.BeginTx(ctx, nil)
}

// Health probes the database and reports a dashboard-consumable status:
// healthy when the probe succeeds, critical when a connection cannot be
// established at all, error when the handle is live but the probe fails.
func (db *DB) Health(ctx context.Context) map[string]any {
	row, err := db.FetchOne(ctx, `SELECT 'CyberGuard DB connection test' AS test_message, CURRENT_TIMESTAMP AS test_time`)
	if err != nil {
		var connErr *ConnectionError
		if errors.As(err, &connErr) {
			return map[string]any{
				"status":  "critical",
				"message": "Cannot establish database connection",
				"error":   connErr.Error(),
			}
		}
		return map[string]any{
			"status":  "error",
			"message": "Database connection failed",
			"error":   err.Error(),
		}
	}
	return map[string]any{
		"status":  "healthy",
		"message": "Database connection is working properly",
		"details": row,
	}
}
