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

// ErrDuplicateLabel is returned when an active tag with the same label
// already exists on the resource
var ErrDuplicateLabel = errors.New("duplicate active label")

type tagRepository struct {
	q querier
	d Dialect
}

func (r *tagRepository) ListByResource(ctx context.Context, resourceType valueobjects.ResourceType, resourceID string) ([]*entities.Tag, error) {
	query := r.d.Rebind(`SELECT ` + tagColumns + ` FROM active_tags
		WHERE resource_type = ? AND resource_id = ? ORDER BY label`)
	rows, err := r.q.QueryContext(ctx, query, string(resourceType), resourceID)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	var tags []*entities.Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}
	return tags, nil
}

func (r *tagRepository) FindByKey(ctx context.Context, key string) (*entities.Tag, error) {
	query := r.d.Rebind(`SELECT ` + tagColumns + ` FROM active_tags WHERE key = ?`)
	tag, err := scanTag(r.q.QueryRowContext(ctx, query, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying tag: %w", err)
	}
	return tag, nil
}

func (r *tagRepository) Create(ctx context.Context, tag *entities.Tag) error {
	query := r.d.Rebind(`INSERT INTO tags (` + tagColumns + `) VALUES (` + Placeholders(11) + `)`)
	_, err := r.q.ExecContext(ctx, query,
		tag.ID(), tag.Key(), string(tag.ResourceType()), tag.ResourceID(), tag.Label(),
		tag.AuthorID(), tag.HomeID(), tag.IsSystem(),
		tag.CreatedAt().UTC(), tag.UpdatedAt().UTC(), schema.NullTimestamp(tag.DeletedAt()))
	if isUniqueViolation(err) {
		return fmt.Errorf("inserting tag %q: %w", tag.Label(), ErrDuplicateLabel)
	}
	if err != nil {
		return fmt.Errorf("inserting tag: %w", err)
	}
	return nil
}

func (r *tagRepository) UpdateLabel(ctx context.Context, tag *entities.Tag) error {
	query := r.d.Rebind(`UPDATE tags SET label = ?, updated = ? WHERE id = ? AND deleted IS NULL`)
	res, err := r.q.ExecContext(ctx, query, tag.Label(), tag.UpdatedAt().UTC(), tag.ID())
	if isUniqueViolation(err) {
		return fmt.Errorf("relabelling tag %q: %w", tag.Label(), ErrDuplicateLabel)
	}
	if err != nil {
		return fmt.Errorf("relabelling tag: %w", err)
	}
	return expectAffected(res)
}

func (r *tagRepository) SoftDelete(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	args := make([]interface{}, 0, len(ids)+2)
	args = append(args, at.UTC(), at.UTC())
	for _, id := range ids {
		args = append(args, id)
	}

	query := r.d.Rebind(`UPDATE tags SET deleted = ?, updated = ?
		WHERE deleted IS NULL AND id IN (` + Placeholders(len(ids)) + `)`)
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting tags: %w", err)
	}
	return nil
}
