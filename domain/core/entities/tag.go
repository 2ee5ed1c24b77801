package entities

import (
	"time"

	"crux-backend/domain/core/valueobjects"
	pkgerrors "crux-backend/pkg/errors"
)

// Tag attaches one lowercase label to one resource. A tag's label is fixed
// for synchronization: changing the label set creates and soft-deletes rows.
type Tag struct {
	id           string
	key          string
	resourceType valueobjects.ResourceType
	resourceID   string
	label        string
	authorID     string
	homeID       string
	system       bool
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// TagParams carries the fields needed to attach a label to a resource
type TagParams struct {
	ResourceType valueobjects.ResourceType
	ResourceID   string
	Label        string
	AuthorID     string
	HomeID       string
	System       bool
}

// NewTag validates params and creates a tag with fresh id and key.
// The label is normalized before it is stored.
func NewTag(p TagParams, now time.Time) (*Tag, error) {
	if !p.ResourceType.IsValid() {
		return nil, pkgerrors.NewValidationError("invalid resource type")
	}
	if p.ResourceID == "" {
		return nil, pkgerrors.NewValidationError("resource id cannot be empty")
	}
	label, err := valueobjects.NormalizeLabel(p.Label)
	if err != nil {
		return nil, err
	}

	return &Tag{
		id:           valueobjects.NewID(),
		key:          valueobjects.NewKey(),
		resourceType: p.ResourceType,
		resourceID:   p.ResourceID,
		label:        label,
		authorID:     p.AuthorID,
		homeID:       p.HomeID,
		system:       p.System,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructTag rebuilds a tag from stored data
func ReconstructTag(
	id, key string,
	resourceType valueobjects.ResourceType,
	resourceID, label, authorID, homeID string,
	system bool,
	createdAt, updatedAt time.Time,
	deletedAt *time.Time,
) *Tag {
	return &Tag{
		id:           id,
		key:          key,
		resourceType: resourceType,
		resourceID:   resourceID,
		label:        label,
		authorID:     authorID,
		homeID:       homeID,
		system:       system,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
		deletedAt:    deletedAt,
	}
}

func (t *Tag) ID() string                              { return t.id }
func (t *Tag) Key() string                             { return t.key }
func (t *Tag) ResourceType() valueobjects.ResourceType { return t.resourceType }
func (t *Tag) ResourceID() string                      { return t.resourceID }
func (t *Tag) Label() string                           { return t.label }
func (t *Tag) AuthorID() string                        { return t.authorID }
func (t *Tag) HomeID() string                          { return t.homeID }
func (t *Tag) IsSystem() bool                          { return t.system }
func (t *Tag) CreatedAt() time.Time                    { return t.createdAt }
func (t *Tag) UpdatedAt() time.Time                    { return t.updatedAt }
func (t *Tag) DeletedAt() *time.Time                   { return copyTime(t.deletedAt) }
func (t *Tag) IsDeleted() bool                         { return t.deletedAt != nil }

// Relabel replaces the label. Only the admin surface calls this.
func (t *Tag) Relabel(raw string, now time.Time) error {
	if t.system {
		return pkgerrors.NewForbiddenError("system tags cannot be modified")
	}
	label, err := valueobjects.NormalizeLabel(raw)
	if err != nil {
		return err
	}
	if label == t.label {
		return nil
	}
	t.label = label
	t.updatedAt = now
	return nil
}

// SoftDelete marks the tag deleted. System tags are immutable.
func (t *Tag) SoftDelete(now time.Time) error {
	if t.system {
		return pkgerrors.NewForbiddenError("system tags cannot be removed")
	}
	if t.IsDeleted() {
		return nil
	}
	t.deletedAt = &now
	t.updatedAt = now
	return nil
}
