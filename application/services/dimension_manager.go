package services

import (
	"context"
	"errors"

	"crux-backend/application/ports"
	"crux-backend/domain/config"
	"crux-backend/domain/core/entities"
	"crux-backend/domain/core/validators"
	"crux-backend/domain/events"
	pkgerrors "crux-backend/pkg/errors"
	"crux-backend/pkg/utils"

	"go.uber.org/zap"
)

// DimensionManager owns the lifecycle of dimensions: creation, author-only
// mutation and the cascade that follows a crux deletion.
type DimensionManager struct {
	store     ports.Store
	uow       ports.UnitOfWorkFactory
	bound     bool
	validator *validators.DimensionValidator
	metrics   ports.MetricsRecorder
	clock     utils.Clock
	logger    *zap.Logger
}

// NewDimensionManager creates a new dimension manager
func NewDimensionManager(
	backend ports.Backend,
	cfg *config.DomainConfig,
	metrics ports.MetricsRecorder,
	clock utils.Clock,
	logger *zap.Logger,
) *DimensionManager {
	return &DimensionManager{
		store:     backend,
		uow:       backend,
		validator: validators.NewDimensionValidator(cfg),
		metrics:   metrics,
		clock:     clock,
		logger:    logger,
	}
}

// WithStore returns a manager that runs every operation against store,
// typically an open unit of work owned by the caller.
func (m *DimensionManager) WithStore(store ports.Store) *DimensionManager {
	bound := *m
	bound.store = store
	bound.bound = true
	return &bound
}

func (m *DimensionManager) transact(ctx context.Context, fn func(repo ports.DimensionRepository) error) error {
	if m.bound {
		return fn(m.store.Dimensions())
	}
	return runInUnitOfWork(ctx, m.uow, m.logger, func(store ports.Store) error {
		return fn(store.Dimensions())
	})
}

// Create validates params and stores a new dimension. Node existence is
// the caller's concern.
func (m *DimensionManager) Create(ctx context.Context, params entities.DimensionParams) (*entities.Dimension, error) {
	if err := m.validator.ValidateParams(params); err != nil {
		return nil, err
	}

	dimension, err := entities.NewDimension(params, m.clock())
	if err != nil {
		return nil, err
	}

	if err := m.store.Dimensions().Create(ctx, dimension); err != nil {
		return nil, pkgerrors.NewPersistenceError("create dimension", err)
	}

	m.metrics.DimensionsCreated(1)
	m.logger.Debug("Dimension created",
		zap.String("dimensionKey", dimension.Key()),
		zap.String("sourceID", dimension.SourceID()),
		zap.String("targetID", dimension.TargetID()),
		zap.String("type", dimension.Type().String()),
	)
	return dimension, nil
}

// FindByKey returns the active dimension with the given key
func (m *DimensionManager) FindByKey(ctx context.Context, key string) (*entities.Dimension, error) {
	dimension, err := m.store.Dimensions().FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, pkgerrors.NewNotFoundError("dimension")
		}
		return nil, pkgerrors.NewPersistenceError("find dimension", err)
	}
	return dimension, nil
}

// ListBySource returns one page of active dimensions leaving sourceID,
// newest first, together with the unpaged total
func (m *DimensionManager) ListBySource(ctx context.Context, sourceID string, filter ports.DimensionFilter) ([]*entities.Dimension, int, error) {
	if filter.Type != nil && !filter.Type.IsValid() {
		return nil, 0, pkgerrors.NewValidationError("invalid dimension type filter")
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	dimensions, total, err := m.store.Dimensions().ListBySource(ctx, sourceID, filter)
	if err != nil {
		return nil, 0, pkgerrors.NewPersistenceError("list dimensions", err)
	}
	return dimensions, total, nil
}

// Update changes type, weight or note. Lookup is scoped to the acting
// author, so a dimension that is missing and one that belongs to someone
// else are both reported as forbidden.
func (m *DimensionManager) Update(ctx context.Context, key string, update entities.DimensionUpdate, actingAuthorID string) (*entities.Dimension, error) {
	if err := m.validator.ValidateUpdate(update); err != nil {
		return nil, err
	}

	var dimension *entities.Dimension
	err := m.transact(ctx, func(repo ports.DimensionRepository) error {
		var err error
		dimension, err = findOwned(ctx, repo, key, actingAuthorID)
		if err != nil {
			return err
		}
		if err := dimension.ApplyUpdate(actingAuthorID, update, m.clock()); err != nil {
			return err
		}
		if err := repo.Update(ctx, dimension); err != nil {
			return pkgerrors.NewPersistenceError("update dimension", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("Dimension updated", zap.String("dimensionKey", key))
	return dimension, nil
}

// Delete soft-deletes one dimension on behalf of its author
func (m *DimensionManager) Delete(ctx context.Context, key, actingAuthorID string) (*entities.Dimension, error) {
	var dimension *entities.Dimension
	err := m.transact(ctx, func(repo ports.DimensionRepository) error {
		var err error
		dimension, err = findOwned(ctx, repo, key, actingAuthorID)
		if err != nil {
			return err
		}
		now := m.clock()
		dimension.SoftDelete(events.DeletedDirectly, now)
		if err := repo.SoftDelete(ctx, dimension.ID(), now); err != nil {
			return pkgerrors.NewPersistenceError("delete dimension", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.metrics.DimensionsDeleted(events.DeletedDirectly, 1)
	m.logger.Debug("Dimension deleted", zap.String("dimensionKey", key))
	return dimension, nil
}

// CascadeOnNodeDeletion soft-deletes every active dimension touching nodeID
// that was created by nodeAuthorID. Dimensions other authors drew to or
// from the node stay active; readers treat them as orphaned.
func (m *DimensionManager) CascadeOnNodeDeletion(ctx context.Context, nodeID, nodeAuthorID string) (int, error) {
	var count int
	err := m.transact(ctx, func(repo ports.DimensionRepository) error {
		affected, err := repo.SoftDeleteByNodeAndAuthor(ctx, nodeID, nodeAuthorID, m.clock())
		if err != nil {
			return pkgerrors.NewPersistenceError("cascade dimension deletion", err)
		}
		count = len(affected)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if count > 0 {
		m.metrics.DimensionsDeleted(events.DeletedByCascade, count)
	}
	m.logger.Info("Cascaded dimension deletion",
		zap.String("nodeID", nodeID),
		zap.String("nodeAuthorID", nodeAuthorID),
		zap.Int("count", count),
	)
	return count, nil
}

func findOwned(ctx context.Context, repo ports.DimensionRepository, key, authorID string) (*entities.Dimension, error) {
	dimension, err := repo.FindByKeyAndAuthor(ctx, key, authorID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, pkgerrors.NewForbiddenError("dimension does not exist or belongs to another author")
		}
		return nil, pkgerrors.NewPersistenceError("find dimension", err)
	}
	return dimension, nil
}
