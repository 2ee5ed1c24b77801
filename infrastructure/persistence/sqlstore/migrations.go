package sqlstore

import (
	"fmt"
	"strings"

	"crux-backend/domain/core/valueobjects"
	"crux-backend/infrastructure/persistence/schema"
)

func quoted[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = "'" + string(v) + "'"
	}
	return strings.Join(parts, ", ")
}

// Migrations returns the schema for the dialect
func Migrations(d Dialect) []schema.Migration {
	ts := d.timestampType()

	referenceTable := func(name string) string {
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			key TEXT NOT NULL UNIQUE,
			deleted %s
		)`, name, ts)
	}

	return []schema.Migration{
		{
			Version:     1,
			Description: "cruxes, dimensions and tags",
			Statements: []string{
				fmt.Sprintf(`CREATE TABLE IF NOT EXISTS cruxes (
					id TEXT PRIMARY KEY,
					key TEXT NOT NULL UNIQUE,
					author_id TEXT NOT NULL,
					home_id TEXT NOT NULL DEFAULT '',
					created %[1]s NOT NULL,
					updated %[1]s NOT NULL,
					deleted %[1]s
				)`, ts),
				fmt.Sprintf(`CREATE TABLE IF NOT EXISTS dimensions (
					id TEXT PRIMARY KEY,
					key TEXT NOT NULL UNIQUE,
					source_id TEXT NOT NULL,
					target_id TEXT NOT NULL,
					type TEXT NOT NULL CHECK (type IN (%[2]s)),
					weight INTEGER CHECK (weight IS NULL OR weight >= 0),
					note TEXT,
					author_id TEXT NOT NULL,
					home_id TEXT NOT NULL DEFAULT '',
					created %[1]s NOT NULL,
					updated %[1]s NOT NULL,
					deleted %[1]s
				)`, ts, quoted(valueobjects.DimensionTypes)),
				`CREATE INDEX IF NOT EXISTS idx_dimensions_source ON dimensions (source_id)`,
				`CREATE INDEX IF NOT EXISTS idx_dimensions_target ON dimensions (target_id)`,
				`CREATE INDEX IF NOT EXISTS idx_dimensions_author ON dimensions (author_id)`,
				fmt.Sprintf(`CREATE TABLE IF NOT EXISTS tags (
					id TEXT PRIMARY KEY,
					key TEXT NOT NULL UNIQUE,
					resource_type TEXT NOT NULL CHECK (resource_type IN (%[2]s)),
					resource_id TEXT NOT NULL,
					label TEXT NOT NULL,
					author_id TEXT NOT NULL DEFAULT '',
					home_id TEXT NOT NULL DEFAULT '',
					system BOOLEAN NOT NULL DEFAULT FALSE,
					created %[1]s NOT NULL,
					updated %[1]s NOT NULL,
					deleted %[1]s
				)`, ts, quoted(valueobjects.ResourceTypes)),
				`CREATE INDEX IF NOT EXISTS idx_tags_resource ON tags (resource_type, resource_id)`,
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_tags_active_label ON tags (resource_type, resource_id, label) WHERE deleted IS NULL`,
			},
		},
		{
			Version:     2,
			Description: "externally owned taggable resources",
			Statements: []string{
				referenceTable("authors"),
				referenceTable("paths"),
				referenceTable("themes"),
			},
		},
		{
			Version:     3,
			Description: "active views",
			Statements: []string{
				d.createView("active_cruxes", activeOnly("cruxes")),
				d.createView("active_dimensions", activeOnly("dimensions")),
				d.createView("active_tags", activeOnly("tags")),
			},
		},
	}
}

// activeOnly is the single definition of "not soft-deleted"
func activeOnly(table string) string {
	return fmt.Sprintf("SELECT * FROM %s WHERE deleted IS NULL", table)
}
