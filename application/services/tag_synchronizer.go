package services

import (
	"context"
	"errors"
	"fmt"

	"crux-backend/application/ports"
	"crux-backend/domain/config"
	"crux-backend/domain/core/entities"
	"crux-backend/domain/core/validators"
	"crux-backend/domain/core/valueobjects"
	"crux-backend/pkg/common"
	pkgerrors "crux-backend/pkg/errors"
	"crux-backend/pkg/utils"

	"go.uber.org/zap"
)

// TagSynchronizer reconciles the stored tags of a resource with a desired
// label set. It never relabels a row: removed labels are soft-deleted and
// new labels get new rows.
type TagSynchronizer struct {
	store     ports.Store
	uow       ports.UnitOfWorkFactory
	validator *validators.TagValidator
	metrics   ports.MetricsRecorder
	clock     utils.Clock
	logger    *zap.Logger
}

// NewTagSynchronizer creates a new tag synchronizer
func NewTagSynchronizer(
	backend ports.Backend,
	cfg *config.DomainConfig,
	metrics ports.MetricsRecorder,
	clock utils.Clock,
	logger *zap.Logger,
) *TagSynchronizer {
	return &TagSynchronizer{
		store:     backend,
		uow:       backend,
		validator: validators.NewTagValidator(cfg),
		metrics:   metrics,
		clock:     clock,
		logger:    logger,
	}
}

// SyncResult describes one synchronization
type SyncResult struct {
	Tags    []*entities.Tag
	Added   []string
	Removed []string
}

// Synchronize makes the active labels of (resourceType, resourceID) equal to
// desiredLabels and returns the resulting tag set ordered by label.
// Labels are lowercased and must match ^[a-z0-9-]{1,50}$; duplicates collapse.
// Removals run before additions. System tags are left alone.
func (s *TagSynchronizer) Synchronize(
	ctx context.Context,
	resourceType valueobjects.ResourceType,
	resourceID string,
	desiredLabels []string,
	actor common.Actor,
) (*SyncResult, error) {
	if !resourceType.IsValid() {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("unknown resource type %q", resourceType))
	}
	if resourceID == "" {
		return nil, pkgerrors.NewValidationError("resource id cannot be empty")
	}
	if actor.AuthorID == "" {
		return nil, pkgerrors.NewUnauthorizedError("acting author is required")
	}

	labels, err := valueobjects.NormalizeLabels(desiredLabels)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateLabelCount(labels); err != nil {
		return nil, err
	}

	var result *SyncResult
	err = runInUnitOfWork(ctx, s.uow, s.logger, func(store ports.Store) error {
		var syncErr error
		result, syncErr = s.synchronize(ctx, store.Tags(), resourceType, resourceID, labels, actor)
		return syncErr
	})
	if err != nil {
		s.logger.Error("Tag synchronization failed",
			zap.String("resourceType", resourceType.String()),
			zap.String("resourceID", resourceID),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.TagsSynchronized(resourceType, len(result.Added), len(result.Removed))
	s.logger.Debug("Tags synchronized",
		zap.String("resourceType", resourceType.String()),
		zap.String("resourceID", resourceID),
		zap.Strings("added", result.Added),
		zap.Strings("removed", result.Removed),
	)
	return result, nil
}

func (s *TagSynchronizer) synchronize(
	ctx context.Context,
	repo ports.TagRepository,
	resourceType valueobjects.ResourceType,
	resourceID string,
	labels []string,
	actor common.Actor,
) (*SyncResult, error) {
	existing, err := repo.ListByResource(ctx, resourceType, resourceID)
	if err != nil {
		return nil, pkgerrors.NewPersistenceError("list tags", err)
	}

	desired := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		desired[label] = struct{}{}
	}

	present := make(map[string]struct{}, len(existing))
	var removeIDs []string
	var removed []string
	for _, tag := range existing {
		present[tag.Label()] = struct{}{}
		if _, keep := desired[tag.Label()]; keep || tag.IsSystem() {
			continue
		}
		removeIDs = append(removeIDs, tag.ID())
		removed = append(removed, tag.Label())
	}

	now := s.clock()
	if len(removeIDs) > 0 {
		if err := repo.SoftDelete(ctx, removeIDs, now); err != nil {
			return nil, pkgerrors.NewPersistenceError("remove tags", err)
		}
	}

	var added []string
	for _, label := range labels {
		if _, ok := present[label]; ok {
			continue
		}
		tag, err := entities.NewTag(entities.TagParams{
			ResourceType: resourceType,
			ResourceID:   resourceID,
			Label:        label,
			AuthorID:     actor.AuthorID,
			HomeID:       actor.HomeID,
		}, now)
		if err != nil {
			return nil, err
		}
		if err := repo.Create(ctx, tag); err != nil {
			return nil, pkgerrors.NewPersistenceError("create tag", err)
		}
		added = append(added, label)
	}

	snapshot, err := repo.ListByResource(ctx, resourceType, resourceID)
	if err != nil {
		return nil, pkgerrors.NewPersistenceError("list tags", err)
	}

	return &SyncResult{Tags: snapshot, Added: added, Removed: removed}, nil
}

// List returns the active tags of a resource
func (s *TagSynchronizer) List(ctx context.Context, resourceType valueobjects.ResourceType, resourceID string) ([]*entities.Tag, error) {
	tags, err := s.store.Tags().ListByResource(ctx, resourceType, resourceID)
	if err != nil {
		return nil, pkgerrors.NewPersistenceError("list tags", err)
	}
	return tags, nil
}

// Get returns one active tag by key
func (s *TagSynchronizer) Get(ctx context.Context, key string) (*entities.Tag, error) {
	tag, err := s.store.Tags().FindByKey(ctx, key)
	if err != nil {
		return nil, tagLookupError(err)
	}
	return tag, nil
}

// Relabel changes the label of a single tag. Admin only.
func (s *TagSynchronizer) Relabel(ctx context.Context, key, label string, actor common.Actor) (*entities.Tag, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.NewForbiddenError("only administrators can edit tags directly")
	}

	var tag *entities.Tag
	err := runInUnitOfWork(ctx, s.uow, s.logger, func(store ports.Store) error {
		var err error
		tag, err = store.Tags().FindByKey(ctx, key)
		if err != nil {
			return tagLookupError(err)
		}
		if err := tag.Relabel(label, s.clock()); err != nil {
			return err
		}

		siblings, err := store.Tags().ListByResource(ctx, tag.ResourceType(), tag.ResourceID())
		if err != nil {
			return pkgerrors.NewPersistenceError("list tags", err)
		}
		for _, sibling := range siblings {
			if sibling.ID() != tag.ID() && sibling.Label() == tag.Label() {
				return pkgerrors.NewValidationError(fmt.Sprintf("label %q is already applied to this resource", tag.Label()))
			}
		}

		if err := store.Tags().UpdateLabel(ctx, tag); err != nil {
			return pkgerrors.NewPersistenceError("update tag", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Tag relabelled", zap.String("tagKey", key), zap.String("label", tag.Label()))
	return tag, nil
}

// Remove soft-deletes a single tag. Admin only.
func (s *TagSynchronizer) Remove(ctx context.Context, key string, actor common.Actor) error {
	if !actor.IsAdmin() {
		return pkgerrors.NewForbiddenError("only administrators can delete tags directly")
	}

	err := runInUnitOfWork(ctx, s.uow, s.logger, func(store ports.Store) error {
		tag, err := store.Tags().FindByKey(ctx, key)
		if err != nil {
			return tagLookupError(err)
		}
		now := s.clock()
		if err := tag.SoftDelete(now); err != nil {
			return err
		}
		if err := store.Tags().SoftDelete(ctx, []string{tag.ID()}, now); err != nil {
			return pkgerrors.NewPersistenceError("delete tag", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Tag removed", zap.String("tagKey", key))
	return nil
}

func tagLookupError(err error) error {
	if errors.Is(err, ports.ErrNotFound) {
		return pkgerrors.NewNotFoundError("tag")
	}
	return pkgerrors.NewPersistenceError("find tag", err)
}
