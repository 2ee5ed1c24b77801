package memory

import (
	"context"
	"sort"
	"time"

	"crux-backend/application/ports"
	"crux-backend/domain/core/entities"
	"crux-backend/domain/core/valueobjects"
)

type dimensionRow struct {
	ID, Key, SourceID, TargetID string
	Type                        valueobjects.DimensionType
	Weight                      *int
	Note                        *string
	AuthorID, HomeID            string
	Created, Updated            time.Time
	Deleted                     *time.Time
}

func (r dimensionRow) active() bool { return r.Deleted == nil }

func (r dimensionRow) entity() *entities.Dimension {
	return entities.ReconstructDimension(r.ID, r.Key, r.SourceID, r.TargetID, r.Type,
		r.Weight, r.Note, r.AuthorID, r.HomeID, r.Created, r.Updated, r.Deleted)
}

func dimensionRowFrom(d *entities.Dimension) dimensionRow {
	return dimensionRow{
		ID: d.ID(), Key: d.Key(), SourceID: d.SourceID(), TargetID: d.TargetID(),
		Type: d.Type(), Weight: d.Weight(), Note: d.Note(),
		AuthorID: d.AuthorID(), HomeID: d.HomeID(),
		Created: d.CreatedAt(), Updated: d.UpdatedAt(), Deleted: d.DeletedAt(),
	}
}

type tagRow struct {
	ID, Key          string
	ResourceType     valueobjects.ResourceType
	ResourceID       string
	Label            string
	AuthorID, HomeID string
	System           bool
	Created, Updated time.Time
	Deleted          *time.Time
}

func (r tagRow) active() bool { return r.Deleted == nil }

func (r tagRow) entity() *entities.Tag {
	return entities.ReconstructTag(r.ID, r.Key, r.ResourceType, r.ResourceID, r.Label,
		r.AuthorID, r.HomeID, r.System, r.Created, r.Updated, r.Deleted)
}

func tagRowFrom(t *entities.Tag) tagRow {
	return tagRow{
		ID: t.ID(), Key: t.Key(), ResourceType: t.ResourceType(), ResourceID: t.ResourceID(),
		Label: t.Label(), AuthorID: t.AuthorID(), HomeID: t.HomeID(), System: t.IsSystem(),
		Created: t.CreatedAt(), Updated: t.UpdatedAt(), Deleted: t.DeletedAt(),
	}
}

type cruxRow struct {
	ID, Key, AuthorID, HomeID string
	Created, Updated          time.Time
	Deleted                   *time.Time
}

func (r cruxRow) active() bool { return r.Deleted == nil }

func (r cruxRow) entity() *entities.Crux {
	return entities.ReconstructCrux(r.ID, r.Key, r.AuthorID, r.HomeID, r.Created, r.Updated, r.Deleted)
}

// dimensionRepository

type dimensionRepository struct {
	backend *Backend
	with    accessor
}

func (r *dimensionRepository) Create(_ context.Context, d *entities.Dimension) error {
	return r.with(func(s *state) error {
		if err := r.backend.fail("dimensions.create"); err != nil {
			return err
		}
		s.dimensions[d.ID()] = dimensionRowFrom(d)
		return nil
	})
}

func (r *dimensionRepository) Update(_ context.Context, d *entities.Dimension) error {
	return r.with(func(s *state) error {
		if err := r.backend.fail("dimensions.update"); err != nil {
			return err
		}
		row, ok := s.dimensions[d.ID()]
		if !ok || !row.active() {
			return ports.ErrNotFound
		}
		row.Type, row.Weight, row.Note, row.Updated = d.Type(), d.Weight(), d.Note(), d.UpdatedAt()
		s.dimensions[d.ID()] = row
		return nil
	})
}

func (r *dimensionRepository) FindByKey(ctx context.Context, key string) (*entities.Dimension, error) {
	return r.find(func(row dimensionRow) bool { return row.Key == key })
}

func (r *dimensionRepository) FindByKeyAndAuthor(ctx context.Context, key, authorID string) (*entities.Dimension, error) {
	return r.find(func(row dimensionRow) bool { return row.Key == key && row.AuthorID == authorID })
}

func (r *dimensionRepository) find(match func(dimensionRow) bool) (*entities.Dimension, error) {
	var found *entities.Dimension
	err := r.with(func(s *state) error {
		if err := r.backend.fail("dimensions.find"); err != nil {
			return err
		}
		for _, row := range s.dimensions {
			if row.active() && match(row) {
				found = row.entity()
				return nil
			}
		}
		return ports.ErrNotFound
	})
	return found, err
}

func (r *dimensionRepository) ListBySource(_ context.Context, sourceID string, filter ports.DimensionFilter) ([]*entities.Dimension, int, error) {
	var rows []dimensionRow
	err := r.with(func(s *state) error {
		if err := r.backend.fail("dimensions.list"); err != nil {
			return err
		}
		for _, row := range s.dimensions {
			if !row.active() || row.SourceID != sourceID {
				continue
			}
			if filter.Type != nil && row.Type != *filter.Type {
				continue
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Created.Equal(rows[j].Created) {
			return rows[i].Created.After(rows[j].Created)
		}
		return rows[i].ID > rows[j].ID
	})

	total := len(rows)
	start := filter.Offset
	if start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}

	page := make([]*entities.Dimension, 0, end-start)
	for _, row := range rows[start:end] {
		page = append(page, row.entity())
	}
	return page, total, nil
}

func (r *dimensionRepository) SoftDelete(_ context.Context, id string, at time.Time) error {
	return r.with(func(s *state) error {
		if err := r.backend.fail("dimensions.delete"); err != nil {
			return err
		}
		row, ok := s.dimensions[id]
		if !ok || !row.active() {
			return ports.ErrNotFound
		}
		row.Deleted, row.Updated = &at, at
		s.dimensions[id] = row
		return nil
	})
}

func (r *dimensionRepository) SoftDeleteByNodeAndAuthor(_ context.Context, nodeID, authorID string, at time.Time) ([]*entities.Dimension, error) {
	var affected []*entities.Dimension
	err := r.with(func(s *state) error {
		if err := r.backend.fail("dimensions.cascade"); err != nil {
			return err
		}
		for id, row := range s.dimensions {
			if !row.active() || row.AuthorID != authorID {
				continue
			}
			if row.SourceID != nodeID && row.TargetID != nodeID {
				continue
			}
			row.Deleted, row.Updated = &at, at
			s.dimensions[id] = row
			affected = append(affected, row.entity())
		}
		return nil
	})
	return affected, err
}

// tagRepository

type tagRepository struct {
	backend *Backend
	with    accessor
}

func (r *tagRepository) ListByResource(_ context.Context, resourceType valueobjects.ResourceType, resourceID string) ([]*entities.Tag, error) {
	var rows []tagRow
	err := r.with(func(s *state) error {
		if err := r.backend.fail("tags.list"); err != nil {
			return err
		}
		for _, row := range s.tags {
			if row.active() && row.ResourceType == resourceType && row.ResourceID == resourceID {
				rows = append(rows, row)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Label < rows[j].Label })
	tags := make([]*entities.Tag, 0, len(rows))
	for _, row := range rows {
		tags = append(tags, row.entity())
	}
	return tags, nil
}

func (r *tagRepository) FindByKey(_ context.Context, key string) (*entities.Tag, error) {
	var found *entities.Tag
	err := r.with(func(s *state) error {
		if err := r.backend.fail("tags.find"); err != nil {
			return err
		}
		for _, row := range s.tags {
			if row.active() && row.Key == key {
				found = row.entity()
				return nil
			}
		}
		return ports.ErrNotFound
	})
	return found, err
}

func (r *tagRepository) Create(_ context.Context, t *entities.Tag) error {
	return r.with(func(s *state) error {
		if err := r.backend.fail("tags.create"); err != nil {
			return err
		}
		for _, row := range s.tags {
			if row.active() && row.ResourceType == t.ResourceType() &&
				row.ResourceID == t.ResourceID() && row.Label == t.Label() {
				return errDuplicateLabel
			}
		}
		s.tags[t.ID()] = tagRowFrom(t)
		return nil
	})
}

func (r *tagRepository) UpdateLabel(_ context.Context, t *entities.Tag) error {
	return r.with(func(s *state) error {
		if err := r.backend.fail("tags.update"); err != nil {
			return err
		}
		row, ok := s.tags[t.ID()]
		if !ok || !row.active() {
			return ports.ErrNotFound
		}
		row.Label, row.Updated = t.Label(), t.UpdatedAt()
		s.tags[t.ID()] = row
		return nil
	})
}

func (r *tagRepository) SoftDelete(_ context.Context, ids []string, at time.Time) error {
	return r.with(func(s *state) error {
		if err := r.backend.fail("tags.delete"); err != nil {
			return err
		}
		for _, id := range ids {
			row, ok := s.tags[id]
			if !ok || !row.active() {
				continue
			}
			row.Deleted, row.Updated = &at, at
			s.tags[id] = row
		}
		return nil
	})
}

// cruxRepository

type cruxRepository struct {
	backend *Backend
	with    accessor
}

func (r *cruxRepository) FindByKey(_ context.Context, key string) (*entities.Crux, error) {
	return r.find(func(row cruxRow) bool { return row.Key == key })
}

func (r *cruxRepository) FindByID(_ context.Context, id string) (*entities.Crux, error) {
	return r.find(func(row cruxRow) bool { return row.ID == id })
}

func (r *cruxRepository) find(match func(cruxRow) bool) (*entities.Crux, error) {
	var found *entities.Crux
	err := r.with(func(s *state) error {
		if err := r.backend.fail("cruxes.find"); err != nil {
			return err
		}
		for _, row := range s.cruxes {
			if row.active() && match(row) {
				found = row.entity()
				return nil
			}
		}
		return ports.ErrNotFound
	})
	return found, err
}

func (r *cruxRepository) Create(_ context.Context, c *entities.Crux) error {
	return r.with(func(s *state) error {
		if err := r.backend.fail("cruxes.create"); err != nil {
			return err
		}
		s.cruxes[c.ID()] = cruxRow{
			ID: c.ID(), Key: c.Key(), AuthorID: c.AuthorID(), HomeID: c.HomeID(),
			Created: c.CreatedAt(), Updated: c.UpdatedAt(), Deleted: c.DeletedAt(),
		}
		return nil
	})
}

func (r *cruxRepository) SoftDelete(_ context.Context, id string, at time.Time) error {
	return r.with(func(s *state) error {
		if err := r.backend.fail("cruxes.delete"); err != nil {
			return err
		}
		row, ok := s.cruxes[id]
		if !ok || !row.active() {
			return ports.ErrNotFound
		}
		row.Deleted, row.Updated = &at, at
		s.cruxes[id] = row
		return nil
	})
}

// resourceResolver

type resourceResolver struct {
	with accessor
}

func (r *resourceResolver) ResolveID(_ context.Context, resourceType valueobjects.ResourceType, key string) (string, error) {
	var id string
	err := r.with(func(s *state) error {
		switch resourceType {
		case valueobjects.ResourceCrux:
			for _, row := range s.cruxes {
				if row.active() && row.Key == key {
					id = row.ID
					return nil
				}
			}
		case valueobjects.ResourceDimension:
			for _, row := range s.dimensions {
				if row.active() && row.Key == key {
					id = row.ID
					return nil
				}
			}
		case valueobjects.ResourceTag:
			for _, row := range s.tags {
				if row.active() && row.Key == key {
					id = row.ID
					return nil
				}
			}
		default:
			if found, ok := s.external[resourceType][key]; ok {
				id = found
				return nil
			}
		}
		return ports.ErrNotFound
	})
	return id, err
}
