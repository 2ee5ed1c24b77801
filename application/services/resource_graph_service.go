package services

import (
	"context"
	"errors"

	"crux-backend/application/ports"
	"crux-backend/domain/core/entities"
	"crux-backend/domain/core/valueobjects"
	"crux-backend/domain/events"
	"crux-backend/pkg/common"
	pkgerrors "crux-backend/pkg/errors"
	"crux-backend/pkg/utils"

	"go.uber.org/zap"
)

// ResourceGraphService is the entry point used by the HTTP layer. It turns
// public keys into internal ids and composes the dimension manager and the
// tag synchronizer, publishing domain events once writes are committed.
type ResourceGraphService struct {
	backend    ports.Backend
	dimensions *DimensionManager
	tags       *TagSynchronizer
	publisher  ports.EventPublisher
	clock      utils.Clock
	logger     *zap.Logger
}

// NewResourceGraphService creates a new resource graph service
func NewResourceGraphService(
	backend ports.Backend,
	dimensions *DimensionManager,
	tags *TagSynchronizer,
	publisher ports.EventPublisher,
	clock utils.Clock,
	logger *zap.Logger,
) *ResourceGraphService {
	return &ResourceGraphService{
		backend:    backend,
		dimensions: dimensions,
		tags:       tags,
		publisher:  publisher,
		clock:      clock,
		logger:     logger,
	}
}

// CreateDimensionInput is the caller-supplied part of a new dimension
type CreateDimensionInput struct {
	TargetID string
	Type     valueobjects.DimensionType
	Weight   *int
	Note     *string
}

// CreateDimension links the crux identified by sourceKey to TargetID
func (s *ResourceGraphService) CreateDimension(ctx context.Context, sourceKey string, input CreateDimensionInput, actor common.Actor) (*entities.Dimension, error) {
	if actor.AuthorID == "" {
		return nil, pkgerrors.NewUnauthorizedError("acting author is required")
	}

	var dimension *entities.Dimension
	err := runInUnitOfWork(ctx, s.backend, s.logger, func(store ports.Store) error {
		source, err := findCrux(ctx, store.Cruxes(), sourceKey)
		if err != nil {
			return err
		}

		if _, err := store.Cruxes().FindByID(ctx, input.TargetID); err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				return pkgerrors.NewNotFoundError("target crux")
			}
			return pkgerrors.NewPersistenceError("find target crux", err)
		}

		dimension, err = s.dimensions.WithStore(store).Create(ctx, entities.DimensionParams{
			SourceID: source.ID(),
			TargetID: input.TargetID,
			Type:     input.Type,
			Weight:   input.Weight,
			Note:     input.Note,
			AuthorID: actor.AuthorID,
			HomeID:   actor.HomeID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, dimension.GetUncommittedEvents()...)
	dimension.MarkEventsAsCommitted()

	s.logger.Info("Dimension created",
		zap.String("dimensionKey", dimension.Key()),
		zap.String("sourceKey", sourceKey),
		zap.String("authorID", actor.AuthorID),
	)
	return dimension, nil
}

// GetDimension returns one active dimension
func (s *ResourceGraphService) GetDimension(ctx context.Context, key string) (*entities.Dimension, error) {
	return s.dimensions.FindByKey(ctx, key)
}

// ListDimensions returns one page of the active dimensions leaving the crux
// identified by sourceKey, plus the unpaged total
func (s *ResourceGraphService) ListDimensions(
	ctx context.Context,
	sourceKey string,
	dimensionType *valueobjects.DimensionType,
	page common.PageRequest,
) ([]*entities.Dimension, int, error) {
	source, err := findCrux(ctx, s.backend.Cruxes(), sourceKey)
	if err != nil {
		return nil, 0, err
	}

	return s.dimensions.ListBySource(ctx, source.ID(), ports.DimensionFilter{
		Type:   dimensionType,
		Offset: page.Offset(),
		Limit:  page.PerPage,
	})
}

// UpdateDimension changes a dimension on behalf of its author
func (s *ResourceGraphService) UpdateDimension(ctx context.Context, key string, update entities.DimensionUpdate, actor common.Actor) (*entities.Dimension, error) {
	dimension, err := s.dimensions.Update(ctx, key, update, actor.AuthorID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, dimension.GetUncommittedEvents()...)
	dimension.MarkEventsAsCommitted()
	return dimension, nil
}

// DeleteDimension soft-deletes a dimension on behalf of its author
func (s *ResourceGraphService) DeleteDimension(ctx context.Context, key string, actor common.Actor) error {
	dimension, err := s.dimensions.Delete(ctx, key, actor.AuthorID)
	if err != nil {
		return err
	}
	s.publish(ctx, dimension.GetUncommittedEvents()...)
	dimension.MarkEventsAsCommitted()
	return nil
}

// DeleteCrux soft-deletes a crux and, in the same unit of work, every
// dimension its author drew to or from it. It returns how many dimensions
// were removed.
func (s *ResourceGraphService) DeleteCrux(ctx context.Context, key string, actor common.Actor) (int, error) {
	var crux *entities.Crux
	var cascaded int

	err := runInUnitOfWork(ctx, s.backend, s.logger, func(store ports.Store) error {
		var err error
		crux, err = findCrux(ctx, store.Cruxes(), key)
		if err != nil {
			return err
		}

		now := s.clock()
		if err := crux.SoftDelete(actor.AuthorID, now); err != nil {
			return err
		}
		if err := store.Cruxes().SoftDelete(ctx, crux.ID(), now); err != nil {
			return pkgerrors.NewPersistenceError("delete crux", err)
		}

		cascaded, err = s.dimensions.WithStore(store).CascadeOnNodeDeletion(ctx, crux.ID(), crux.AuthorID())
		return err
	})
	if err != nil {
		return 0, err
	}

	s.publish(ctx, events.NewCruxDeleted(crux.ID(), crux.Key(), crux.AuthorID(), cascaded, s.clock()))

	s.logger.Info("Crux deleted",
		zap.String("cruxKey", key),
		zap.String("authorID", actor.AuthorID),
		zap.Int("cascadedDimensions", cascaded),
	)
	return cascaded, nil
}

// SyncTags replaces the label set of the resource identified by key
func (s *ResourceGraphService) SyncTags(
	ctx context.Context,
	resourceType valueobjects.ResourceType,
	key string,
	labels []string,
	actor common.Actor,
) (*SyncResult, error) {
	resourceID, err := s.resolve(ctx, resourceType, key)
	if err != nil {
		return nil, err
	}
	return s.tags.Synchronize(ctx, resourceType, resourceID, labels, actor)
}

// ListTags returns the active tags of the resource identified by key
func (s *ResourceGraphService) ListTags(ctx context.Context, resourceType valueobjects.ResourceType, key string) ([]*entities.Tag, error) {
	resourceID, err := s.resolve(ctx, resourceType, key)
	if err != nil {
		return nil, err
	}
	return s.tags.List(ctx, resourceType, resourceID)
}

// GetTag returns one active tag
func (s *ResourceGraphService) GetTag(ctx context.Context, key string) (*entities.Tag, error) {
	return s.tags.Get(ctx, key)
}

// UpdateTag relabels one tag. Admin only.
func (s *ResourceGraphService) UpdateTag(ctx context.Context, key, label string, actor common.Actor) (*entities.Tag, error) {
	return s.tags.Relabel(ctx, key, label, actor)
}

// DeleteTag soft-deletes one tag. Admin only.
func (s *ResourceGraphService) DeleteTag(ctx context.Context, key string, actor common.Actor) error {
	return s.tags.Remove(ctx, key, actor)
}

// Ping checks the persistence backend
func (s *ResourceGraphService) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

func (s *ResourceGraphService) resolve(ctx context.Context, resourceType valueobjects.ResourceType, key string) (string, error) {
	if !resourceType.IsValid() {
		return "", pkgerrors.NewValidationError("unknown resource type")
	}
	id, err := s.backend.Resources().ResolveID(ctx, resourceType, key)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return "", pkgerrors.NewNotFoundError(resourceType.String())
		}
		return "", pkgerrors.NewPersistenceError("resolve resource", err)
	}
	return id, nil
}

func (s *ResourceGraphService) publish(ctx context.Context, evts ...events.DomainEvent) {
	if len(evts) == 0 {
		return
	}
	if err := s.publisher.PublishBatch(ctx, evts); err != nil {
		s.logger.Warn("Failed to publish domain events",
			zap.Int("count", len(evts)),
			zap.Error(err),
		)
	}
}

func findCrux(ctx context.Context, repo ports.CruxRepository, key string) (*entities.Crux, error) {
	crux, err := repo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, pkgerrors.NewNotFoundError("crux")
		}
		return nil, pkgerrors.NewPersistenceError("find crux", err)
	}
	return crux, nil
}
