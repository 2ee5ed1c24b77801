package entities

import (
	"fmt"
	"time"

	"crux-backend/domain/core/valueobjects"
	"crux-backend/domain/events"
	pkgerrors "crux-backend/pkg/errors"
)

// Dimension is a typed, directed edge between two cruxes.
// Only its author may change or remove it; a deleted dimension stays
// stored with its deletion time set.
type Dimension struct {
	id            string
	key           string
	sourceID      string
	targetID      string
	dimensionType valueobjects.DimensionType
	weight        *int
	note          *string
	authorID      string
	homeID        string
	createdAt     time.Time
	updatedAt     time.Time
	deletedAt     *time.Time

	events []events.DomainEvent
}

// DimensionParams carries the fields needed to create a dimension
type DimensionParams struct {
	SourceID string
	TargetID string
	Type     valueobjects.DimensionType
	Weight   *int
	Note     *string
	AuthorID string
	HomeID   string
}

// DimensionUpdate lists the mutable fields; nil means unchanged. An empty
// note clears it.
type DimensionUpdate struct {
	Type   *valueobjects.DimensionType
	Weight *int
	Note   *string
}

// IsEmpty reports whether the update changes nothing
func (u DimensionUpdate) IsEmpty() bool {
	return u.Type == nil && u.Weight == nil && u.Note == nil
}

// NewDimension validates params and creates a dimension with fresh id and key
func NewDimension(p DimensionParams, now time.Time) (*Dimension, error) {
	if p.SourceID == "" {
		return nil, pkgerrors.NewValidationError("source id cannot be empty")
	}
	if p.TargetID == "" {
		return nil, pkgerrors.NewValidationError("target id cannot be empty")
	}
	if !p.Type.IsValid() {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("invalid dimension type %q", p.Type))
	}
	if err := validateWeight(p.Weight); err != nil {
		return nil, err
	}
	if p.AuthorID == "" {
		return nil, pkgerrors.NewValidationError("author id cannot be empty")
	}

	d := &Dimension{
		id:            valueobjects.NewID(),
		key:           valueobjects.NewKey(),
		sourceID:      p.SourceID,
		targetID:      p.TargetID,
		dimensionType: p.Type,
		weight:        copyInt(p.Weight),
		note:          normalizeNote(p.Note),
		authorID:      p.AuthorID,
		homeID:        p.HomeID,
		createdAt:     now,
		updatedAt:     now,
	}

	d.addEvent(events.NewDimensionCreated(d.id, d.key, d.sourceID, d.targetID, string(d.dimensionType), d.authorID, d.homeID, now))
	return d, nil
}

// ReconstructDimension rebuilds a dimension from stored data
func ReconstructDimension(
	id, key, sourceID, targetID string,
	dimensionType valueobjects.DimensionType,
	weight *int,
	note *string,
	authorID, homeID string,
	createdAt, updatedAt time.Time,
	deletedAt *time.Time,
) *Dimension {
	return &Dimension{
		id:            id,
		key:           key,
		sourceID:      sourceID,
		targetID:      targetID,
		dimensionType: dimensionType,
		weight:        weight,
		note:          note,
		authorID:      authorID,
		homeID:        homeID,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		deletedAt:     deletedAt,
	}
}

func (d *Dimension) ID() string                        { return d.id }
func (d *Dimension) Key() string                       { return d.key }
func (d *Dimension) SourceID() string                  { return d.sourceID }
func (d *Dimension) TargetID() string                  { return d.targetID }
func (d *Dimension) Type() valueobjects.DimensionType  { return d.dimensionType }
func (d *Dimension) Weight() *int                      { return copyInt(d.weight) }
func (d *Dimension) Note() *string                     { return copyString(d.note) }
func (d *Dimension) AuthorID() string                  { return d.authorID }
func (d *Dimension) HomeID() string                    { return d.homeID }
func (d *Dimension) CreatedAt() time.Time              { return d.createdAt }
func (d *Dimension) UpdatedAt() time.Time              { return d.updatedAt }
func (d *Dimension) DeletedAt() *time.Time             { return copyTime(d.deletedAt) }
func (d *Dimension) IsDeleted() bool                   { return d.deletedAt != nil }
func (d *Dimension) IsAuthoredBy(authorID string) bool { return d.authorID == authorID }

// Touches reports whether nodeID is either endpoint of the dimension
func (d *Dimension) Touches(nodeID string) bool {
	return d.sourceID == nodeID || d.targetID == nodeID
}

// ApplyUpdate changes type, weight or note on behalf of actingAuthorID
func (d *Dimension) ApplyUpdate(actingAuthorID string, u DimensionUpdate, now time.Time) error {
	if !d.IsAuthoredBy(actingAuthorID) {
		return pkgerrors.NewForbiddenError("only the author of a dimension can change it")
	}
	if d.IsDeleted() {
		return pkgerrors.NewNotFoundError("dimension")
	}

	var changed []string
	if u.Type != nil {
		if !u.Type.IsValid() {
			return pkgerrors.NewValidationError(fmt.Sprintf("invalid dimension type %q", *u.Type))
		}
		if *u.Type != d.dimensionType {
			d.dimensionType = *u.Type
			changed = append(changed, "type")
		}
	}
	if u.Weight != nil {
		if err := validateWeight(u.Weight); err != nil {
			return err
		}
		d.weight = copyInt(u.Weight)
		changed = append(changed, "weight")
	}
	if u.Note != nil {
		d.note = normalizeNote(u.Note)
		changed = append(changed, "note")
	}

	if len(changed) == 0 {
		return nil
	}
	d.updatedAt = now
	d.addEvent(events.NewDimensionUpdated(d.id, d.key, changed, now))
	return nil
}

// SoftDelete marks the dimension deleted. Deleting twice is a no-op.
func (d *Dimension) SoftDelete(reason events.DeletionReason, now time.Time) {
	if d.IsDeleted() {
		return
	}
	d.deletedAt = &now
	d.updatedAt = now
	d.addEvent(events.NewDimensionDeleted(d.id, d.key, d.sourceID, d.targetID, reason, now))
}

// GetUncommittedEvents returns events raised since the last commit
func (d *Dimension) GetUncommittedEvents() []events.DomainEvent {
	return d.events
}

// MarkEventsAsCommitted clears the pending events
func (d *Dimension) MarkEventsAsCommitted() {
	d.events = nil
}

func (d *Dimension) addEvent(event events.DomainEvent) {
	d.events = append(d.events, event)
}

func validateWeight(w *int) error {
	if w != nil && *w < 0 {
		return pkgerrors.NewValidationError("weight cannot be negative")
	}
	return nil
}

func normalizeNote(note *string) *string {
	if note == nil || *note == "" {
		return nil
	}
	return copyString(note)
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
