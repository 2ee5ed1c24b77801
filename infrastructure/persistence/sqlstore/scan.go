package sqlstore

import (
	"database/sql"

	"crux-backend/domain/core/entities"
	"crux-backend/domain/core/valueobjects"
	"crux-backend/infrastructure/persistence/schema"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

const dimensionColumns = `id, key, source_id, target_id, type, weight, note, author_id, home_id, created, updated, deleted`

func scanDimension(s rowScanner) (*entities.Dimension, error) {
	var (
		id, key, sourceID, targetID, dimensionType, authorID, homeID string
		weight                                                       sql.NullInt64
		note                                                         sql.NullString
		created, updated, deleted                                    schema.Timestamp
	)
	if err := s.Scan(&id, &key, &sourceID, &targetID, &dimensionType, &weight, &note,
		&authorID, &homeID, &created, &updated, &deleted); err != nil {
		return nil, err
	}

	var w *int
	if weight.Valid {
		v := int(weight.Int64)
		w = &v
	}
	var n *string
	if note.Valid {
		v := note.String
		n = &v
	}
	return entities.ReconstructDimension(id, key, sourceID, targetID,
		valueobjects.DimensionType(dimensionType), w, n, authorID, homeID,
		created.Time, updated.Time, deleted.Ptr()), nil
}

const tagColumns = `id, key, resource_type, resource_id, label, author_id, home_id, system, created, updated, deleted`

func scanTag(s rowScanner) (*entities.Tag, error) {
	var (
		id, key, resourceType, resourceID, label, authorID, homeID string
		system                                                     bool
		created, updated, deleted                                  schema.Timestamp
	)
	if err := s.Scan(&id, &key, &resourceType, &resourceID, &label, &authorID, &homeID,
		&system, &created, &updated, &deleted); err != nil {
		return nil, err
	}
	return entities.ReconstructTag(id, key, valueobjects.ResourceType(resourceType), resourceID,
		label, authorID, homeID, system, created.Time, updated.Time, deleted.Ptr()), nil
}

const cruxColumns = `id, key, author_id, home_id, created, updated, deleted`

func scanCrux(s rowScanner) (*entities.Crux, error) {
	var (
		id, key, authorID, homeID string
		created, updated, deleted schema.Timestamp
	)
	if err := s.Scan(&id, &key, &authorID, &homeID, &created, &updated, &deleted); err != nil {
		return nil, err
	}
	return entities.ReconstructCrux(id, key, authorID, homeID, created.Time, updated.Time, deleted.Ptr()), nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
