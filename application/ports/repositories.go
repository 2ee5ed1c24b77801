package ports

import (
	"context"
	"errors"
	"time"

	"crux-backend/domain/core/entities"
	"crux-backend/domain/core/valueobjects"
	"crux-backend/domain/events"
)

// ErrNotFound is returned by repositories when no active row matches
var ErrNotFound = errors.New("not found")

// All reads below see only active rows: anything soft-deleted is invisible
// unless a method says otherwise.

// DimensionFilter narrows and pages a listing of outgoing dimensions
type DimensionFilter struct {
	Type   *valueobjects.DimensionType
	Offset int
	Limit  int
}

// DimensionRepository persists dimensions
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type DimensionRepository interface {
	// Create inserts a new dimension
	Create(ctx context.Context, dimension *entities.Dimension) error

	// Update writes type, weight, note and updated of an existing dimension
	Update(ctx context.Context, dimension *entities.Dimension) error

	// FindByKey returns the active dimension with the given key
	FindByKey(ctx context.Context, key string) (*entities.Dimension, error)

	// FindByKeyAndAuthor returns the active dimension with the given key
	// created by authorID
	FindByKeyAndAuthor(ctx context.Context, key, authorID string) (*entities.Dimension, error)

	// ListBySource returns active dimensions leaving sourceID, newest first,
	// and the total number matching the filter before paging
	ListBySource(ctx context.Context, sourceID string, filter DimensionFilter) ([]*entities.Dimension, int, error)

	// SoftDelete sets deleted and updated on one dimension
	SoftDelete(ctx context.Context, id string, at time.Time) error

	// SoftDeleteByNodeAndAuthor soft-deletes every active dimension that has
	// nodeID as source or target and was created by authorID, returning the
	// affected dimensions
	SoftDeleteByNodeAndAuthor(ctx context.Context, nodeID, authorID string, at time.Time) ([]*entities.Dimension, error)
}

// TagRepository persists tags
type TagRepository interface {
	// ListByResource returns the active tags of one resource ordered by label
	ListByResource(ctx context.Context, resourceType valueobjects.ResourceType, resourceID string) ([]*entities.Tag, error)

	// FindByKey returns the active tag with the given key
	FindByKey(ctx context.Context, key string) (*entities.Tag, error)

	// Create inserts a new tag
	Create(ctx context.Context, tag *entities.Tag) error

	// UpdateLabel writes a relabelled tag
	UpdateLabel(ctx context.Context, tag *entities.Tag) error

	// SoftDelete sets deleted and updated on the given tags
	SoftDelete(ctx context.Context, ids []string, at time.Time) error
}

// CruxRepository reads and soft-deletes content nodes. Creating and editing
// cruxes belongs to the content service.
type CruxRepository interface {
	// FindByKey returns the active crux with the given key
	FindByKey(ctx context.Context, key string) (*entities.Crux, error)

	// FindByID returns the active crux with the given id
	FindByID(ctx context.Context, id string) (*entities.Crux, error)

	// Create inserts a crux reference
	Create(ctx context.Context, crux *entities.Crux) error

	// SoftDelete sets deleted and updated on one crux
	SoftDelete(ctx context.Context, id string, at time.Time) error
}

// ResourceResolver maps public keys of taggable resources to internal ids
type ResourceResolver interface {
	// ResolveID returns the id of the active resource with the given key
	ResolveID(ctx context.Context, resourceType valueobjects.ResourceType, key string) (string, error)
}

// Store groups the repositories of one backend
type Store interface {
	Dimensions() DimensionRepository
	Tags() TagRepository
	Cruxes() CruxRepository
	Resources() ResourceResolver
}

// UnitOfWork is a Store whose writes become visible together on Commit
type UnitOfWork interface {
	Store

	// Commit commits the unit of work
	Commit(ctx context.Context) error

	// Rollback discards the unit of work. Calling it after Commit is a no-op.
	Rollback() error
}

// UnitOfWorkFactory starts units of work
type UnitOfWorkFactory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

// Backend is a complete persistence implementation
type Backend interface {
	Store
	UnitOfWorkFactory

	// Ping checks connectivity
	Ping(ctx context.Context) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// MetricsRecorder receives domain counters
type MetricsRecorder interface {
	DimensionsCreated(n int)
	DimensionsDeleted(reason events.DeletionReason, n int)
	TagsSynchronized(resourceType valueobjects.ResourceType, added, removed int)
}
