package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"crux-backend/application/ports"
	"crux-backend/domain/core/entities"
	"crux-backend/domain/core/valueobjects"
	"crux-backend/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"go.uber.org/zap"
)

// ErrDuplicateLabel is returned when an active tag with the same label
// already exists on the resource
var ErrDuplicateLabel = errors.New("duplicate active label")

// dimensionRepository

type dimensionRepository struct {
	backend *Backend
}

func (r *dimensionRepository) Create(ctx context.Context, d *entities.Dimension) error {
	return r.backend.put(ctx, dimensionItem(d))
}

func (r *dimensionRepository) Update(ctx context.Context, d *entities.Dimension) error {
	update := expression.Set(expression.Name("DimensionType"), expression.Value(string(d.Type()))).
		Set(expression.Name("Updated"), expression.Value(utils.FormatTimestamp(d.UpdatedAt())))
	if w := d.Weight(); w != nil {
		update = update.Set(expression.Name("Weight"), expression.Value(*w))
	} else {
		update = update.Remove(expression.Name("Weight"))
	}
	if n := d.Note(); n != nil {
		update = update.Set(expression.Name("Note"), expression.Value(*n))
	} else {
		update = update.Remove(expression.Name("Note"))
	}
	return r.backend.updateActive(ctx, entityPK(entityDimension, d.ID()), update)
}

func (r *dimensionRepository) FindByKey(ctx context.Context, key string) (*entities.Dimension, error) {
	it, err := r.backend.findByLookupKey(ctx, lookupKey(entityDimension, key))
	if err != nil {
		return nil, err
	}
	return it.dimension()
}

func (r *dimensionRepository) FindByKeyAndAuthor(ctx context.Context, key, authorID string) (*entities.Dimension, error) {
	it, err := r.backend.findByLookupKey(ctx, lookupKey(entityDimension, key),
		expression.Name("AuthorID").Equal(expression.Value(authorID)))
	if err != nil {
		return nil, err
	}
	return it.dimension()
}

func (r *dimensionRepository) ListBySource(ctx context.Context, sourceID string, filter ports.DimensionFilter) ([]*entities.Dimension, int, error) {
	qb := newQuery(r.backend.tableName, SourceIndex).
		partition("SourcePK", sourcePK(sourceID)).
		where(activeOnly()).
		descending()
	if filter.Type != nil {
		qb.whereEquals("DimensionType", string(*filter.Type))
	}

	// The total needs every match, so the page is cut client-side
	items, err := queryAll(ctx, r.backend.client, qb, 0)
	if err != nil {
		return nil, 0, wrap("query "+SourceIndex, err)
	}

	total := len(items)
	start := filter.Offset
	if start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}

	dims := make([]*entities.Dimension, 0, end-start)
	for _, it := range items[start:end] {
		d, err := it.dimension()
		if err != nil {
			return nil, 0, err
		}
		dims = append(dims, d)
	}
	return dims, total, nil
}

func (r *dimensionRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	return r.backend.updateActive(ctx, entityPK(entityDimension, id), softDeletion(at))
}

// SoftDeleteByNodeAndAuthor queries both edge indexes and soft-deletes each
// match individually. An edge deleted concurrently is skipped.
func (r *dimensionRepository) SoftDeleteByNodeAndAuthor(ctx context.Context, nodeID, authorID string, at time.Time) ([]*entities.Dimension, error) {
	byAuthor := expression.Name("AuthorID").Equal(expression.Value(authorID))

	outgoing, err := queryAll(ctx, r.backend.client, newQuery(r.backend.tableName, SourceIndex).
		partition("SourcePK", sourcePK(nodeID)).where(activeOnly()).where(byAuthor), 0)
	if err != nil {
		return nil, wrap("query "+SourceIndex, err)
	}
	incoming, err := queryAll(ctx, r.backend.client, newQuery(r.backend.tableName, TargetIndex).
		partition("TargetPK", targetPK(nodeID)).where(activeOnly()).where(byAuthor), 0)
	if err != nil {
		return nil, wrap("query "+TargetIndex, err)
	}

	seen := make(map[string]bool)
	var affected []*entities.Dimension
	for _, it := range append(outgoing, incoming...) {
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true

		err := r.backend.updateActive(ctx, it.PK, softDeletion(at))
		if errors.Is(err, ports.ErrNotFound) {
			r.backend.logger.Debug("Dimension already deleted during cascade", zap.String("dimensionID", it.ID))
			continue
		}
		if err != nil {
			return affected, err
		}

		ts := utils.FormatTimestamp(at)
		it.Deleted, it.Updated = &ts, ts
		d, err := it.dimension()
		if err != nil {
			return affected, err
		}
		affected = append(affected, d)
	}
	return affected, nil
}

func softDeletion(at time.Time) expression.UpdateBuilder {
	ts := utils.FormatTimestamp(at)
	return expression.Set(expression.Name("Deleted"), expression.Value(ts)).
		Set(expression.Name("Updated"), expression.Value(ts))
}

// tagRepository

type tagRepository struct {
	backend *Backend
}

func (r *tagRepository) ListByResource(ctx context.Context, resourceType valueobjects.ResourceType, resourceID string) ([]*entities.Tag, error) {
	items, err := queryAll(ctx, r.backend.client, newQuery(r.backend.tableName, ResourceIndex).
		partition("ResourcePK", resourcePK(resourceType, resourceID)).
		where(activeOnly()), 0)
	if err != nil {
		return nil, wrap("query "+ResourceIndex, err)
	}

	tags := make([]*entities.Tag, 0, len(items))
	for _, it := range items {
		t, err := it.tag()
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	sort.SliceStable(tags, func(i, j int) bool { return tags[i].Label() < tags[j].Label() })
	return tags, nil
}

func (r *tagRepository) FindByKey(ctx context.Context, key string) (*entities.Tag, error) {
	it, err := r.backend.findByLookupKey(ctx, lookupKey(entityTag, key))
	if err != nil {
		return nil, err
	}
	return it.tag()
}

// Create checks for an active tag with the same label first. DynamoDB has
// no partial unique index, so two concurrent creates can both pass.
func (r *tagRepository) Create(ctx context.Context, t *entities.Tag) error {
	existing, err := r.ListByResource(ctx, t.ResourceType(), t.ResourceID())
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.Label() == t.Label() {
			return fmt.Errorf("creating tag %q: %w", t.Label(), ErrDuplicateLabel)
		}
	}
	return r.backend.put(ctx, tagItem(t))
}

func (r *tagRepository) UpdateLabel(ctx context.Context, t *entities.Tag) error {
	update := expression.Set(expression.Name("Label"), expression.Value(t.Label())).
		Set(expression.Name("ResourceSK"), expression.Value(t.Label()+"#"+t.ID())).
		Set(expression.Name("Updated"), expression.Value(utils.FormatTimestamp(t.UpdatedAt())))
	return r.backend.updateActive(ctx, entityPK(entityTag, t.ID()), update)
}

func (r *tagRepository) SoftDelete(ctx context.Context, ids []string, at time.Time) error {
	for _, id := range ids {
		err := r.backend.updateActive(ctx, entityPK(entityTag, id), softDeletion(at))
		if err != nil && !errors.Is(err, ports.ErrNotFound) {
			return err
		}
	}
	return nil
}

// cruxRepository

type cruxRepository struct {
	backend *Backend
}

func (r *cruxRepository) FindByKey(ctx context.Context, key string) (*entities.Crux, error) {
	it, err := r.backend.findByLookupKey(ctx, lookupKey(entityCrux, key))
	if err != nil {
		return nil, err
	}
	return it.crux()
}

func (r *cruxRepository) FindByID(ctx context.Context, id string) (*entities.Crux, error) {
	it, err := r.backend.getActive(ctx, entityPK(entityCrux, id))
	if err != nil {
		return nil, err
	}
	return it.crux()
}

func (r *cruxRepository) Create(ctx context.Context, c *entities.Crux) error {
	return r.backend.put(ctx, cruxItem(c))
}

func (r *cruxRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	return r.backend.updateActive(ctx, entityPK(entityCrux, id), softDeletion(at))
}

// resourceResolver

type resourceResolver struct {
	backend *Backend
}

func (r *resourceResolver) ResolveID(ctx context.Context, resourceType valueobjects.ResourceType, key string) (string, error) {
	if !resourceType.IsValid() {
		return "", fmt.Errorf("unknown resource type %q", resourceType)
	}
	it, err := r.backend.findByLookupKey(ctx, lookupKey(externalEntity(resourceType), key))
	if err != nil {
		return "", err
	}
	return it.ID, nil
}
