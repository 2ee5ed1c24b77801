package events

import (
	"time"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// SourceBackend is the event source name of this service
const SourceBackend = "crux-backend"

const (
	TypeDimensionCreated = "dimension.created"
	TypeDimensionUpdated = "dimension.updated"
	TypeDimensionDeleted = "dimension.deleted"
	TypeCruxDeleted      = "crux.deleted"
)

// DeletionReason records why a dimension left the active graph.
type DeletionReason string

const (
	DeletedDirectly  DeletionReason = "direct"
	DeletedByCascade DeletionReason = "cascade"
)

// Dimension Events

// DimensionCreated is raised when an author links two cruxes
type DimensionCreated struct {
	BaseEvent
	DimensionKey string `json:"dimension_key"`
	SourceID     string `json:"source_id"`
	TargetID     string `json:"target_id"`
	Type         string `json:"type"`
	AuthorID     string `json:"author_id"`
	HomeID       string `json:"home_id"`
}

// NewDimensionCreated creates a DimensionCreated event
func NewDimensionCreated(id, key, sourceID, targetID, dimensionType, authorID, homeID string, timestamp time.Time) DimensionCreated {
	return DimensionCreated{
		BaseEvent: BaseEvent{
			AggregateID: id,
			EventType:   TypeDimensionCreated,
			Timestamp:   timestamp,
			Version:     1,
		},
		DimensionKey: key,
		SourceID:     sourceID,
		TargetID:     targetID,
		Type:         dimensionType,
		AuthorID:     authorID,
		HomeID:       homeID,
	}
}

// DimensionUpdated is raised when the author changes type, weight or note
type DimensionUpdated struct {
	BaseEvent
	DimensionKey  string   `json:"dimension_key"`
	ChangedFields []string `json:"changed_fields"`
}

// NewDimensionUpdated creates a DimensionUpdated event
func NewDimensionUpdated(id, key string, changed []string, timestamp time.Time) DimensionUpdated {
	return DimensionUpdated{
		BaseEvent: BaseEvent{
			AggregateID: id,
			EventType:   TypeDimensionUpdated,
			Timestamp:   timestamp,
			Version:     1,
		},
		DimensionKey:  key,
		ChangedFields: changed,
	}
}

// DimensionDeleted is raised when a dimension is soft-deleted
type DimensionDeleted struct {
	BaseEvent
	DimensionKey string         `json:"dimension_key"`
	SourceID     string         `json:"source_id"`
	TargetID     string         `json:"target_id"`
	Reason       DeletionReason `json:"reason"`
}

// NewDimensionDeleted creates a DimensionDeleted event
func NewDimensionDeleted(id, key, sourceID, targetID string, reason DeletionReason, timestamp time.Time) DimensionDeleted {
	return DimensionDeleted{
		BaseEvent: BaseEvent{
			AggregateID: id,
			EventType:   TypeDimensionDeleted,
			Timestamp:   timestamp,
			Version:     1,
		},
		DimensionKey: key,
		SourceID:     sourceID,
		TargetID:     targetID,
		Reason:       reason,
	}
}

// Crux Events

// CruxDeleted is raised after a crux and its same-author dimensions are
// soft-deleted
type CruxDeleted struct {
	BaseEvent
	CruxKey            string `json:"crux_key"`
	AuthorID           string `json:"author_id"`
	CascadedDimensions int    `json:"cascaded_dimensions"`
}

// NewCruxDeleted creates a CruxDeleted event
func NewCruxDeleted(id, key, authorID string, cascaded int, timestamp time.Time) CruxDeleted {
	return CruxDeleted{
		BaseEvent: BaseEvent{
			AggregateID: id,
			EventType:   TypeCruxDeleted,
			Timestamp:   timestamp,
			Version:     1,
		},
		CruxKey:            key,
		AuthorID:           authorID,
		CascadedDimensions: cascaded,
	}
}
