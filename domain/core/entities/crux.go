package entities

import (
	"time"

	"crux-backend/domain/core/valueobjects"
	pkgerrors "crux-backend/pkg/errors"
)

// Crux is the content node that dimensions connect. Its content lives
// elsewhere; this core only needs identity, ownership and deletion state.
type Crux struct {
	id        string
	key       string
	authorID  string
	homeID    string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewCrux creates a crux reference with fresh id and key
func NewCrux(authorID, homeID string, now time.Time) (*Crux, error) {
	if authorID == "" {
		return nil, pkgerrors.NewValidationError("author id cannot be empty")
	}
	return &Crux{
		id:        valueobjects.NewID(),
		key:       valueobjects.NewKey(),
		authorID:  authorID,
		homeID:    homeID,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructCrux rebuilds a crux reference from stored data
func ReconstructCrux(id, key, authorID, homeID string, createdAt, updatedAt time.Time, deletedAt *time.Time) *Crux {
	return &Crux{
		id:        id,
		key:       key,
		authorID:  authorID,
		homeID:    homeID,
		createdAt: createdAt,
		updatedAt: updatedAt,
		deletedAt: deletedAt,
	}
}

func (c *Crux) ID() string            { return c.id }
func (c *Crux) Key() string           { return c.key }
func (c *Crux) AuthorID() string      { return c.authorID }
func (c *Crux) HomeID() string        { return c.homeID }
func (c *Crux) CreatedAt() time.Time  { return c.createdAt }
func (c *Crux) UpdatedAt() time.Time  { return c.updatedAt }
func (c *Crux) DeletedAt() *time.Time { return copyTime(c.deletedAt) }
func (c *Crux) IsDeleted() bool       { return c.deletedAt != nil }

// SoftDelete marks the crux deleted on behalf of actingAuthorID
func (c *Crux) SoftDelete(actingAuthorID string, now time.Time) error {
	if c.authorID != actingAuthorID {
		return pkgerrors.NewForbiddenError("only the author of a crux can delete it")
	}
	if c.IsDeleted() {
		return pkgerrors.NewNotFoundError("crux")
	}
	c.deletedAt = &now
	c.updatedAt = now
	return nil
}
