package valueobjects

import (
	"fmt"

	pkgerrors "crux-backend/pkg/errors"
)

// ResourceType names a kind of resource that can carry tags.
type ResourceType string

const (
	ResourceAuthor    ResourceType = "author"
	ResourceCrux      ResourceType = "crux"
	ResourceDimension ResourceType = "dimension"
	ResourcePath      ResourceType = "path"
	ResourceTag       ResourceType = "tag"
	ResourceTheme     ResourceType = "theme"
)

// ResourceTypes lists every taggable resource kind.
var ResourceTypes = []ResourceType{
	ResourceAuthor,
	ResourceCrux,
	ResourceDimension,
	ResourcePath,
	ResourceTag,
	ResourceTheme,
}

// ParseResourceType validates a singular resource type name.
func ParseResourceType(raw string) (ResourceType, error) {
	rt := ResourceType(raw)
	if !rt.IsValid() {
		return "", pkgerrors.NewValidationError(fmt.Sprintf("unknown resource type %q", raw))
	}
	return rt, nil
}

// ResourceTypeFromCollection maps a URL collection segment ("cruxes",
// "themes", ...) onto its resource type.
func ResourceTypeFromCollection(segment string) (ResourceType, error) {
	for _, rt := range ResourceTypes {
		if rt.Collection() == segment {
			return rt, nil
		}
	}
	return "", pkgerrors.NewValidationError(fmt.Sprintf("unknown resource collection %q", segment))
}

// IsValid reports whether rt belongs to the closed set.
func (rt ResourceType) IsValid() bool {
	switch rt {
	case ResourceAuthor, ResourceCrux, ResourceDimension, ResourcePath, ResourceTag, ResourceTheme:
		return true
	default:
		return false
	}
}

// Collection returns the plural URL segment for the resource type.
func (rt ResourceType) Collection() string {
	if rt == ResourceCrux {
		return "cruxes"
	}
	return string(rt) + "s"
}

func (rt ResourceType) String() string {
	return string(rt)
}
