// Package schema applies versioned SQL migrations and records them in a
// schema_migrations table.
package schema

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Migration is one forward-only schema step
type Migration struct {
	Version     int
	Description string
	Statements  []string
}

// Checksum identifies the statements of a migration
func (m Migration) Checksum() string {
	sum := sha256.Sum256([]byte(strings.Join(m.Statements, ";\n")))
	return hex.EncodeToString(sum[:])
}

// AppliedVersion is a row of schema_migrations
type AppliedVersion struct {
	Version     int
	Description string
	Checksum    string
	AppliedAt   time.Time
}

// Migrator applies registered migrations in version order
type Migrator struct {
	db         *sql.DB
	rebind     func(string) string
	migrations []Migration
	logger     *zap.Logger
}

// NewMigrator creates a migrator. rebind rewrites `?` placeholders for the
// target database.
func NewMigrator(db *sql.DB, rebind func(string) string, logger *zap.Logger) *Migrator {
	if rebind == nil {
		rebind = func(q string) string { return q }
	}
	return &Migrator{db: db, rebind: rebind, logger: logger}
}

// Register adds migrations. Versions must be positive and unique.
func (m *Migrator) Register(migrations ...Migration) error {
	for _, migration := range migrations {
		if migration.Version <= 0 {
			return fmt.Errorf("invalid migration version %d", migration.Version)
		}
		if len(migration.Statements) == 0 {
			return fmt.Errorf("migration %d has no statements", migration.Version)
		}
		for _, existing := range m.migrations {
			if existing.Version == migration.Version {
				return fmt.Errorf("migration %d already registered", migration.Version)
			}
		}
		m.migrations = append(m.migrations, migration)
	}
	sort.Slice(m.migrations, func(i, j int) bool {
		return m.migrations[i].Version < m.migrations[j].Version
	})
	return nil
}

// Latest returns the highest registered version
func (m *Migrator) Latest() int {
	if len(m.migrations) == 0 {
		return 0
	}
	return m.migrations[len(m.migrations)-1].Version
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		checksum TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}
	return nil
}

// History returns the applied versions in ascending order
func (m *Migrator) History(ctx context.Context) ([]AppliedVersion, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}

	rows, err := m.db.QueryContext(ctx,
		`SELECT version, description, checksum, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("reading schema_migrations: %w", err)
	}
	defer rows.Close()

	var history []AppliedVersion
	for rows.Next() {
		var v AppliedVersion
		var appliedAt Timestamp
		if err := rows.Scan(&v.Version, &v.Description, &v.Checksum, &appliedAt); err != nil {
			return nil, fmt.Errorf("scanning schema_migrations: %w", err)
		}
		v.AppliedAt = appliedAt.Time
		history = append(history, v)
	}
	return history, rows.Err()
}

// CurrentVersion returns the highest applied version, 0 on a fresh database
func (m *Migrator) CurrentVersion(ctx context.Context) (int, error) {
	history, err := m.History(ctx)
	if err != nil {
		return 0, err
	}
	if len(history) == 0 {
		return 0, nil
	}
	return history[len(history)-1].Version, nil
}

// Up applies every pending migration, each in its own transaction, and
// returns how many were applied. An applied migration whose statements have
// changed is an error.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	history, err := m.History(ctx)
	if err != nil {
		return 0, err
	}

	applied := make(map[int]string, len(history))
	for _, v := range history {
		applied[v.Version] = v.Checksum
	}

	count := 0
	for _, migration := range m.migrations {
		if checksum, ok := applied[migration.Version]; ok {
			if checksum != migration.Checksum() {
				return count, fmt.Errorf("migration %d was modified after being applied", migration.Version)
			}
			continue
		}
		if err := m.apply(ctx, migration); err != nil {
			return count, err
		}
		count++
		m.logger.Info("Applied migration",
			zap.Int("version", migration.Version),
			zap.String("description", migration.Description))
	}
	return count, nil
}

func (m *Migrator) apply(ctx context.Context, migration Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration %d: begin: %w", migration.Version, err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range migration.Statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: statement %d: %w", migration.Version, i+1, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		m.rebind(`INSERT INTO schema_migrations (version, description, checksum, applied_at) VALUES (?, ?, ?, ?)`),
		migration.Version, migration.Description, migration.Checksum(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("migration %d: recording version: %w", migration.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migration %d: commit: %w", migration.Version, err)
	}
	return nil
}
