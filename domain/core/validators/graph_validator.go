package validators

import (
	"fmt"
	"unicode/utf8"

	"crux-backend/domain/config"
	"crux-backend/domain/core/entities"
	"crux-backend/pkg/errors"
)

// DimensionValidator enforces the configurable limits on dimensions
type DimensionValidator struct {
	maxNoteLength  int
	allowSelfLinks bool
}

// NewDimensionValidator creates a validator from the domain configuration
func NewDimensionValidator(cfg *config.DomainConfig) *DimensionValidator {
	return &DimensionValidator{
		maxNoteLength:  cfg.MaxNoteLength,
		allowSelfLinks: cfg.AllowSelfLinks,
	}
}

// ValidateParams checks creation input beyond the entity's own invariants
func (v *DimensionValidator) ValidateParams(p entities.DimensionParams) error {
	if !v.allowSelfLinks && p.SourceID != "" && p.SourceID == p.TargetID {
		return errors.NewValidationError("a dimension cannot link a crux to itself")
	}
	return v.validateNote(p.Note)
}

// ValidateUpdate checks update input
func (v *DimensionValidator) ValidateUpdate(u entities.DimensionUpdate) error {
	if u.IsEmpty() {
		return errors.NewValidationError("update must change type, weight or note")
	}
	return v.validateNote(u.Note)
}

func (v *DimensionValidator) validateNote(note *string) error {
	if note == nil {
		return nil
	}
	if utf8.RuneCountInString(*note) > v.maxNoteLength {
		return errors.NewValidationError(fmt.Sprintf("note must be at most %d characters", v.maxNoteLength))
	}
	return nil
}

// TagValidator enforces the configurable limits on tag synchronization
type TagValidator struct {
	maxLabels int
}

// NewTagValidator creates a validator from the domain configuration
func NewTagValidator(cfg *config.DomainConfig) *TagValidator {
	return &TagValidator{maxLabels: cfg.MaxLabelsPerSync}
}

// ValidateLabelCount rejects oversized desired label sets
func (v *TagValidator) ValidateLabelCount(labels []string) error {
	if len(labels) > v.maxLabels {
		return errors.NewValidationError(fmt.Sprintf("at most %d labels can be applied to a resource", v.maxLabels))
	}
	return nil
}
