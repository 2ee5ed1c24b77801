package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Options configures the connection pool
type Options struct {
	Dialect         Dialect
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to the database and verifies connectivity
func Open(ctx context.Context, opts Options) (*sql.DB, error) {
	dsn := opts.DSN
	if opts.Dialect == DialectSQLite {
		dsn = SQLiteDSN(dsn)
	}

	db, err := sql.Open(opts.Dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// SQLiteDSN adds the pragmas the store relies on to a database path: a busy
// timeout for concurrent writers, foreign keys and a sortable time format.
func SQLiteDSN(path string) string {
	base, query := path, ""
	if i := strings.IndexByte(path, '?'); i >= 0 {
		base, query = path[:i], path[i+1:]
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		values = url.Values{}
	}
	pragmas := strings.Join(values["_pragma"], ",")
	if !strings.Contains(pragmas, "busy_timeout") {
		values.Add("_pragma", "busy_timeout(5000)")
	}
	if !strings.Contains(pragmas, "foreign_keys") {
		values.Add("_pragma", "foreign_keys(1)")
	}
	if values.Get("_time_format") == "" {
		values.Set("_time_format", "sqlite")
	}
	return base + "?" + values.Encode()
}
