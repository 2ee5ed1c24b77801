package handlers

import (
	"crux-backend/domain/core/entities"
	"crux-backend/pkg/utils"
)

// CreateDimensionRequest represents the request body for creating a dimension
type CreateDimensionRequest struct {
	TargetID string  `json:"targetId" validate:"required,uuid"`
	Type     string  `json:"type" validate:"required,oneof=gate garden growth graft"`
	Weight   *int    `json:"weight,omitempty" validate:"omitempty,min=0"`
	Note     *string `json:"note,omitempty" validate:"omitempty,max=2000"`
}

// UpdateDimensionRequest represents the request body for updating a
// dimension. Omitted fields stay unchanged; an empty note clears it.
type UpdateDimensionRequest struct {
	Type   *string `json:"type,omitempty" validate:"omitempty,dimensiontype"`
	Weight *int    `json:"weight,omitempty" validate:"omitempty,min=0"`
	Note   *string `json:"note,omitempty" validate:"omitempty,max=2000"`
}

// SyncTagsRequest carries the complete desired label set of a resource.
// Labels must be present; an explicit empty list clears every tag.
type SyncTagsRequest struct {
	Labels []string `json:"labels" validate:"required,max=100,dive,label"`
}

// UpdateTagRequest relabels one tag
type UpdateTagRequest struct {
	Label string `json:"label" validate:"required,label"`
}

// DimensionResponse is the wire form of a dimension
type DimensionResponse struct {
	ID        string  `json:"id"`
	Key       string  `json:"key"`
	SourceID  string  `json:"sourceId"`
	TargetID  string  `json:"targetId"`
	Type      string  `json:"type"`
	Weight    *int    `json:"weight,omitempty"`
	Note      *string `json:"note,omitempty"`
	AuthorID  string  `json:"authorId"`
	HomeID    string  `json:"homeId,omitempty"`
	CreatedAt string  `json:"created"`
	UpdatedAt string  `json:"updated"`
}

// TagResponse is the wire form of a tag
type TagResponse struct {
	ID           string `json:"id"`
	Key          string `json:"key"`
	ResourceType string `json:"resourceType"`
	ResourceID   string `json:"resourceId"`
	Label        string `json:"label"`
	AuthorID     string `json:"authorId"`
	HomeID       string `json:"homeId,omitempty"`
	System       bool   `json:"system"`
	CreatedAt    string `json:"created"`
	UpdatedAt    string `json:"updated"`
}

// SyncTagsResponse reports the synchronized set and what changed
type SyncTagsResponse struct {
	Tags    []TagResponse `json:"tags"`
	Added   []string      `json:"added"`
	Removed []string      `json:"removed"`
}

// DeleteCruxResponse reports the cascade
type DeleteCruxResponse struct {
	Key                string `json:"key"`
	CascadedDimensions int    `json:"cascadedDimensions"`
}

func toDimensionResponse(d *entities.Dimension) DimensionResponse {
	return DimensionResponse{
		ID:        d.ID(),
		Key:       d.Key(),
		SourceID:  d.SourceID(),
		TargetID:  d.TargetID(),
		Type:      d.Type().String(),
		Weight:    d.Weight(),
		Note:      d.Note(),
		AuthorID:  d.AuthorID(),
		HomeID:    d.HomeID(),
		CreatedAt: utils.FormatTimestamp(d.CreatedAt()),
		UpdatedAt: utils.FormatTimestamp(d.UpdatedAt()),
	}
}

func toDimensionResponses(ds []*entities.Dimension) []DimensionResponse {
	out := make([]DimensionResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, toDimensionResponse(d))
	}
	return out
}

func toTagResponse(t *entities.Tag) TagResponse {
	return TagResponse{
		ID:           t.ID(),
		Key:          t.Key(),
		ResourceType: t.ResourceType().String(),
		ResourceID:   t.ResourceID(),
		Label:        t.Label(),
		AuthorID:     t.AuthorID(),
		HomeID:       t.HomeID(),
		System:       t.IsSystem(),
		CreatedAt:    utils.FormatTimestamp(t.CreatedAt()),
		UpdatedAt:    utils.FormatTimestamp(t.UpdatedAt()),
	}
}

func toTagResponses(ts []*entities.Tag) []TagResponse {
	out := make([]TagResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTagResponse(t))
	}
	return out
}
