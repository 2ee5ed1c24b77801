package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"crux-backend/application/ports"
	"crux-backend/domain/core/entities"
	"crux-backend/infrastructure/persistence/schema"
)

type dimensionRepository struct {
	q querier
	d Dialect
}

func (r *dimensionRepository) Create(ctx context.Context, dim *entities.Dimension) error {
	query := r.d.Rebind(`INSERT INTO dimensions (` + dimensionColumns + `) VALUES (` + Placeholders(12) + `)`)
	_, err := r.q.ExecContext(ctx, query,
		dim.ID(), dim.Key(), dim.SourceID(), dim.TargetID(), string(dim.Type()),
		nullInt(dim.Weight()), nullString(dim.Note()), dim.AuthorID(), dim.HomeID(),
		dim.CreatedAt().UTC(), dim.UpdatedAt().UTC(), schema.NullTimestamp(dim.DeletedAt()))
	if err != nil {
		return fmt.Errorf("inserting dimension: %w", err)
	}
	return nil
}

func (r *dimensionRepository) Update(ctx context.Context, dim *entities.Dimension) error {
	query := r.d.Rebind(`UPDATE dimensions SET type = ?, weight = ?, note = ?, updated = ?
		WHERE id = ? AND deleted IS NULL`)
	res, err := r.q.ExecContext(ctx, query,
		string(dim.Type()), nullInt(dim.Weight()), nullString(dim.Note()), dim.UpdatedAt().UTC(), dim.ID())
	if err != nil {
		return fmt.Errorf("updating dimension: %w", err)
	}
	return expectAffected(res)
}

func (r *dimensionRepository) FindByKey(ctx context.Context, key string) (*entities.Dimension, error) {
	query := r.d.Rebind(`SELECT ` + dimensionColumns + ` FROM active_dimensions WHERE key = ?`)
	return r.findOne(ctx, query, key)
}

func (r *dimensionRepository) FindByKeyAndAuthor(ctx context.Context, key, authorID string) (*entities.Dimension, error) {
	query := r.d.Rebind(`SELECT ` + dimensionColumns + ` FROM active_dimensions WHERE key = ? AND author_id = ?`)
	return r.findOne(ctx, query, key, authorID)
}

func (r *dimensionRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entities.Dimension, error) {
	dim, err := scanDimension(r.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying dimension: %w", err)
	}
	return dim, nil
}

func (r *dimensionRepository) ListBySource(ctx context.Context, sourceID string, filter ports.DimensionFilter) ([]*entities.Dimension, int, error) {
	where := ` WHERE source_id = ?`
	args := []interface{}{sourceID}
	if filter.Type != nil {
		where += ` AND type = ?`
		args = append(args, string(*filter.Type))
	}

	var total int
	if err := r.q.QueryRowContext(ctx, r.d.Rebind(`SELECT COUNT(*) FROM active_dimensions`+where), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting dimensions: %w", err)
	}

	query := `SELECT ` + dimensionColumns + ` FROM active_dimensions` + where + ` ORDER BY created DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.q.QueryContext(ctx, r.d.Rebind(query), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing dimensions: %w", err)
	}
	defer rows.Close()

	dims, err := collectDimensions(rows)
	if err != nil {
		return nil, 0, err
	}
	return dims, total, nil
}

func (r *dimensionRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	query := r.d.Rebind(`UPDATE dimensions SET deleted = ?, updated = ? WHERE id = ? AND deleted IS NULL`)
	res, err := r.q.ExecContext(ctx, query, at.UTC(), at.UTC(), id)
	if err != nil {
		return fmt.Errorf("deleting dimension: %w", err)
	}
	return expectAffected(res)
}

func (r *dimensionRepository) SoftDeleteByNodeAndAuthor(ctx context.Context, nodeID, authorID string, at time.Time) ([]*entities.Dimension, error) {
	query := r.d.Rebind(`UPDATE dimensions SET deleted = ?, updated = ?
		WHERE deleted IS NULL AND author_id = ? AND (source_id = ? OR target_id = ?)
		RETURNING ` + dimensionColumns)
	rows, err := r.q.QueryContext(ctx, query, at.UTC(), at.UTC(), authorID, nodeID, nodeID)
	if err != nil {
		return nil, fmt.Errorf("cascading dimension deletion: %w", err)
	}
	defer rows.Close()

	return collectDimensions(rows)
}

func collectDimensions(rows *sql.Rows) ([]*entities.Dimension, error) {
	var dims []*entities.Dimension
	for rows.Next() {
		dim, err := scanDimension(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning dimension: %w", err)
		}
		dims = append(dims, dim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dimensions: %w", err)
	}
	return dims, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}
