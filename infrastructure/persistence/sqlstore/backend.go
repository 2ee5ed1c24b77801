// Package sqlstore is the relational persistence backend for PostgreSQL
// (lib/pq) and SQLite (modernc.org/sqlite).
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"crux-backend/application/ports"
	"crux-backend/infrastructure/persistence/schema"

	"go.uber.org/zap"
)

// querier is satisfied by *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Backend implements ports.Backend on database/sql
type Backend struct {
	db            *sql.DB
	dialect       Dialect
	transactional bool
	logger        *zap.Logger
}

// NewBackend wraps an open database. With transactional false units of work
// write straight through and Rollback has nothing to undo.
func NewBackend(db *sql.DB, dialect Dialect, transactional bool, logger *zap.Logger) *Backend {
	return &Backend{
		db:            db,
		dialect:       dialect,
		transactional: transactional,
		logger:        logger,
	}
}

// DB exposes the pool
func (b *Backend) DB() *sql.DB {
	return b.db
}

// Dialect returns the configured dialect
func (b *Backend) Dialect() Dialect {
	return b.dialect
}

// Migrator returns a migrator loaded with this backend's schema
func (b *Backend) Migrator() (*schema.Migrator, error) {
	m := schema.NewMigrator(b.db, b.dialect.Rebind, b.logger)
	if err := m.Register(Migrations(b.dialect)...); err != nil {
		return nil, err
	}
	return m, nil
}

// Migrate applies pending schema migrations
func (b *Backend) Migrate(ctx context.Context) (int, error) {
	m, err := b.Migrator()
	if err != nil {
		return 0, err
	}
	return m.Up(ctx)
}

// Close closes the pool
func (b *Backend) Close() error {
	return b.db.Close()
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

func (b *Backend) Dimensions() ports.DimensionRepository {
	return &dimensionRepository{q: b.db, d: b.dialect}
}

func (b *Backend) Tags() ports.TagRepository {
	return &tagRepository{q: b.db, d: b.dialect}
}

func (b *Backend) Cruxes() ports.CruxRepository {
	return &cruxRepository{q: b.db, d: b.dialect}
}

func (b *Backend) Resources() ports.ResourceResolver {
	return &resourceResolver{q: b.db, d: b.dialect}
}

// Begin starts a transaction, or a pass-through unit of work when the
// backend is not transactional
func (b *Backend) Begin(ctx context.Context) (ports.UnitOfWork, error) {
	if !b.transactional {
		return &unitOfWork{q: b.db, d: b.dialect}, nil
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &unitOfWork{q: tx, tx: tx, d: b.dialect, logger: b.logger}, nil
}

type unitOfWork struct {
	q      querier
	tx     *sql.Tx
	d      Dialect
	done   bool
	logger *zap.Logger
}

func (u *unitOfWork) Dimensions() ports.DimensionRepository {
	return &dimensionRepository{q: u.q, d: u.d}
}

func (u *unitOfWork) Tags() ports.TagRepository {
	return &tagRepository{q: u.q, d: u.d}
}

func (u *unitOfWork) Cruxes() ports.CruxRepository {
	return &cruxRepository{q: u.q, d: u.d}
}

func (u *unitOfWork) Resources() ports.ResourceResolver {
	return &resourceResolver{q: u.q, d: u.d}
}

func (u *unitOfWork) Commit(context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	if u.tx == nil {
		return nil
	}
	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true
	if u.tx == nil {
		return nil
	}
	if err := u.tx.Rollback(); err != nil {
		u.logger.Warn("Rollback failed", zap.Error(err))
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}

var (
	_ ports.Backend    = (*Backend)(nil)
	_ ports.UnitOfWork = (*unitOfWork)(nil)
)
