package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"crux-backend/application/ports"
	"crux-backend/domain/core/entities"
	"crux-backend/domain/core/valueobjects"
	"crux-backend/infrastructure/persistence/schema"
)

type cruxRepository struct {
	q querier
	d Dialect
}

func (r *cruxRepository) FindByKey(ctx context.Context, key string) (*entities.Crux, error) {
	return r.findOne(ctx, `key`, key)
}

func (r *cruxRepository) FindByID(ctx context.Context, id string) (*entities.Crux, error) {
	return r.findOne(ctx, `id`, id)
}

func (r *cruxRepository) findOne(ctx context.Context, column, value string) (*entities.Crux, error) {
	query := r.d.Rebind(`SELECT ` + cruxColumns + ` FROM active_cruxes WHERE ` + column + ` = ?`)
	crux, err := scanCrux(r.q.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying crux: %w", err)
	}
	return crux, nil
}

func (r *cruxRepository) Create(ctx context.Context, crux *entities.Crux) error {
	query := r.d.Rebind(`INSERT INTO cruxes (` + cruxColumns + `) VALUES (` + Placeholders(7) + `)`)
	_, err := r.q.ExecContext(ctx, query,
		crux.ID(), crux.Key(), crux.AuthorID(), crux.HomeID(),
		crux.CreatedAt().UTC(), crux.UpdatedAt().UTC(), schema.NullTimestamp(crux.DeletedAt()))
	if err != nil {
		return fmt.Errorf("inserting crux: %w", err)
	}
	return nil
}

func (r *cruxRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	query := r.d.Rebind(`UPDATE cruxes SET deleted = ?, updated = ? WHERE id = ? AND deleted IS NULL`)
	res, err := r.q.ExecContext(ctx, query, at.UTC(), at.UTC(), id)
	if err != nil {
		return fmt.Errorf("deleting crux: %w", err)
	}
	return expectAffected(res)
}

// resourceResolver looks keys up in the table owning each resource type
type resourceResolver struct {
	q querier
	d Dialect
}

var resourceTables = map[valueobjects.ResourceType]string{
	valueobjects.ResourceAuthor:    "authors",
	valueobjects.ResourceCrux:      "cruxes",
	valueobjects.ResourceDimension: "dimensions",
	valueobjects.ResourcePath:      "paths",
	valueobjects.ResourceTag:       "tags",
	valueobjects.ResourceTheme:     "themes",
}

func (r *resourceResolver) ResolveID(ctx context.Context, resourceType valueobjects.ResourceType, key string) (string, error) {
	table, ok := resourceTables[resourceType]
	if !ok {
		return "", fmt.Errorf("unknown resource type %q", resourceType)
	}

	var id string
	query := r.d.Rebind(`SELECT id FROM ` + table + ` WHERE key = ? AND deleted IS NULL`)
	err := r.q.QueryRowContext(ctx, query, key).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ports.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolving %s key: %w", resourceType, err)
	}
	return id, nil
}

// RegisterResource records an externally owned taggable resource (author,
// path or theme) so its key can be resolved
func (b *Backend) RegisterResource(ctx context.Context, resourceType valueobjects.ResourceType, id, key string) error {
	table, ok := resourceTables[resourceType]
	if !ok {
		return fmt.Errorf("unknown resource type %q", resourceType)
	}
	switch resourceType {
	case valueobjects.ResourceAuthor, valueobjects.ResourcePath, valueobjects.ResourceTheme:
	default:
		return fmt.Errorf("%s rows are owned by this service", resourceType)
	}

	query := b.dialect.Rebind(`INSERT INTO ` + table + ` (id, key) VALUES (?, ?)`)
	if _, err := b.db.ExecContext(ctx, query, id, key); err != nil {
		return fmt.Errorf("registering %s: %w", resourceType, err)
	}
	return nil
}
