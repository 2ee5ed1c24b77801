package valueobjects

import (
	"fmt"
	"strings"

	pkgerrors "crux-backend/pkg/errors"
)

// DimensionType classifies the relationship a dimension expresses.
type DimensionType string

const (
	DimensionGate   DimensionType = "gate"
	DimensionGarden DimensionType = "garden"
	DimensionGrowth DimensionType = "growth"
	DimensionGraft  DimensionType = "graft"
)

// DimensionTypes lists every accepted dimension type.
var DimensionTypes = []DimensionType{DimensionGate, DimensionGarden, DimensionGrowth, DimensionGraft}

// ParseDimensionType maps raw input onto the closed set of types.
func ParseDimensionType(raw string) (DimensionType, error) {
	t := DimensionType(strings.TrimSpace(raw))
	if !t.IsValid() {
		return "", pkgerrors.NewValidationError(
			fmt.Sprintf("invalid dimension type %q: must be one of gate, garden, growth, graft", raw))
	}
	return t, nil
}

// IsValid reports whether t is one of the four dimension types.
func (t DimensionType) IsValid() bool {
	switch t {
	case DimensionGate, DimensionGarden, DimensionGrowth, DimensionGraft:
		return true
	default:
		return false
	}
}

func (t DimensionType) String() string {
	return string(t)
}
