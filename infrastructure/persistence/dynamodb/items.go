package dynamodb

import (
	"fmt"
	"strings"
	"time"

	"crux-backend/domain/core/entities"
	"crux-backend/domain/core/valueobjects"
	"crux-backend/pkg/utils"
)

// Index names of the single-table layout
const (
	KeyIndex      = "KeyIndex"
	SourceIndex   = "SourceIndex"
	TargetIndex   = "TargetIndex"
	ResourceIndex = "ResourceIndex"
)

const (
	metadataSK = "METADATA"

	entityCrux      = "CRUX"
	entityDimension = "DIMENSION"
	entityTag       = "TAG"
)

// item is the stored shape of every entity. Attributes that only apply to
// one entity type are omitted for the others.
type item struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	LookupKey  string `dynamodbav:"LookupKey"`
	ID         string `dynamodbav:"ID"`
	EntityKey  string `dynamodbav:"EntityKey"`

	SourcePK   string `dynamodbav:"SourcePK,omitempty"`
	SourceSK   string `dynamodbav:"SourceSK,omitempty"`
	TargetPK   string `dynamodbav:"TargetPK,omitempty"`
	TargetSK   string `dynamodbav:"TargetSK,omitempty"`
	ResourcePK string `dynamodbav:"ResourcePK,omitempty"`
	ResourceSK string `dynamodbav:"ResourceSK,omitempty"`

	SourceID      string  `dynamodbav:"SourceID,omitempty"`
	TargetID      string  `dynamodbav:"TargetID,omitempty"`
	DimensionType string  `dynamodbav:"DimensionType,omitempty"`
	Weight        *int    `dynamodbav:"Weight,omitempty"`
	Note          *string `dynamodbav:"Note,omitempty"`

	ResourceType string `dynamodbav:"ResourceType,omitempty"`
	ResourceID   string `dynamodbav:"ResourceID,omitempty"`
	Label        string `dynamodbav:"Label,omitempty"`
	System       bool   `dynamodbav:"System,omitempty"`

	AuthorID string  `dynamodbav:"AuthorID,omitempty"`
	HomeID   string  `dynamodbav:"HomeID,omitempty"`
	Created  string  `dynamodbav:"Created,omitempty"`
	Updated  string  `dynamodbav:"Updated,omitempty"`
	Deleted  *string `dynamodbav:"Deleted,omitempty"`
}

func entityPK(entityType, id string) string {
	return entityType + "#" + id
}

func lookupKey(entityType, key string) string {
	return entityType + "#" + key
}

func sourcePK(nodeID string) string { return "SOURCE#" + nodeID }
func targetPK(nodeID string) string { return "TARGET#" + nodeID }

func resourcePK(rt valueobjects.ResourceType, resourceID string) string {
	return "RESOURCE#" + string(rt) + "#" + resourceID
}

// edgeSK orders edges by creation time and breaks ties by id
func edgeSK(created time.Time, id string) string {
	return utils.FormatTimestamp(created) + "#" + id
}

// externalEntity names the partition prefix of resources owned elsewhere
func externalEntity(rt valueobjects.ResourceType) string {
	return strings.ToUpper(string(rt))
}

func dimensionItem(d *entities.Dimension) item {
	return item{
		PK:            entityPK(entityDimension, d.ID()),
		SK:            metadataSK,
		EntityType:    entityDimension,
		LookupKey:     lookupKey(entityDimension, d.Key()),
		ID:            d.ID(),
		EntityKey:     d.Key(),
		SourcePK:      sourcePK(d.SourceID()),
		SourceSK:      edgeSK(d.CreatedAt(), d.ID()),
		TargetPK:      targetPK(d.TargetID()),
		TargetSK:      edgeSK(d.CreatedAt(), d.ID()),
		SourceID:      d.SourceID(),
		TargetID:      d.TargetID(),
		DimensionType: string(d.Type()),
		Weight:        d.Weight(),
		Note:          d.Note(),
		AuthorID:      d.AuthorID(),
		HomeID:        d.HomeID(),
		Created:       utils.FormatTimestamp(d.CreatedAt()),
		Updated:       utils.FormatTimestamp(d.UpdatedAt()),
		Deleted:       utils.FormatOptionalTimestamp(d.DeletedAt()),
	}
}

func (it item) dimension() (*entities.Dimension, error) {
	created, updated, deleted, err := it.times()
	if err != nil {
		return nil, err
	}
	return entities.ReconstructDimension(it.ID, it.EntityKey, it.SourceID, it.TargetID,
		valueobjects.DimensionType(it.DimensionType), it.Weight, it.Note,
		it.AuthorID, it.HomeID, created, updated, deleted), nil
}

func tagItem(t *entities.Tag) item {
	return item{
		PK:           entityPK(entityTag, t.ID()),
		SK:           metadataSK,
		EntityType:   entityTag,
		LookupKey:    lookupKey(entityTag, t.Key()),
		ID:           t.ID(),
		EntityKey:    t.Key(),
		ResourcePK:   resourcePK(t.ResourceType(), t.ResourceID()),
		ResourceSK:   t.Label() + "#" + t.ID(),
		ResourceType: string(t.ResourceType()),
		ResourceID:   t.ResourceID(),
		Label:        t.Label(),
		System:       t.IsSystem(),
		AuthorID:     t.AuthorID(),
		HomeID:       t.HomeID(),
		Created:      utils.FormatTimestamp(t.CreatedAt()),
		Updated:      utils.FormatTimestamp(t.UpdatedAt()),
		Deleted:      utils.FormatOptionalTimestamp(t.DeletedAt()),
	}
}

func (it item) tag() (*entities.Tag, error) {
	created, updated, deleted, err := it.times()
	if err != nil {
		return nil, err
	}
	return entities.ReconstructTag(it.ID, it.EntityKey, valueobjects.ResourceType(it.ResourceType),
		it.ResourceID, it.Label, it.AuthorID, it.HomeID, it.System, created, updated, deleted), nil
}

func cruxItem(c *entities.Crux) item {
	return item{
		PK:         entityPK(entityCrux, c.ID()),
		SK:         metadataSK,
		EntityType: entityCrux,
		LookupKey:  lookupKey(entityCrux, c.Key()),
		ID:         c.ID(),
		EntityKey:  c.Key(),
		AuthorID:   c.AuthorID(),
		HomeID:     c.HomeID(),
		Created:    utils.FormatTimestamp(c.CreatedAt()),
		Updated:    utils.FormatTimestamp(c.UpdatedAt()),
		Deleted:    utils.FormatOptionalTimestamp(c.DeletedAt()),
	}
}

func (it item) crux() (*entities.Crux, error) {
	created, updated, deleted, err := it.times()
	if err != nil {
		return nil, err
	}
	return entities.ReconstructCrux(it.ID, it.EntityKey, it.AuthorID, it.HomeID, created, updated, deleted), nil
}

func (it item) times() (created, updated time.Time, deleted *time.Time, err error) {
	if created, err = utils.ParseRFC3339(it.Created); err != nil {
		return created, updated, nil, fmt.Errorf("item %s: created: %w", it.PK, err)
	}
	if updated, err = utils.ParseRFC3339(it.Updated); err != nil {
		return created, updated, nil, fmt.Errorf("item %s: updated: %w", it.PK, err)
	}
	if it.Deleted != nil {
		d, err := utils.ParseRFC3339(*it.Deleted)
		if err != nil {
			return created, updated, nil, fmt.Errorf("item %s: deleted: %w", it.PK, err)
		}
		deleted = &d
	}
	return created, updated, deleted, nil
}
