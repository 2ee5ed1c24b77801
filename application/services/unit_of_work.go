package services

import (
	"context"

	"crux-backend/application/ports"
	pkgerrors "crux-backend/pkg/errors"

	"go.uber.org/zap"
)

// runInUnitOfWork runs fn against a fresh unit of work, committing when fn
// succeeds and rolling back when it fails or panics.
func runInUnitOfWork(ctx context.Context, factory ports.UnitOfWorkFactory, logger *zap.Logger, fn func(store ports.Store) error) error {
	uow, err := factory.Begin(ctx)
	if err != nil {
		return pkgerrors.NewPersistenceError("begin unit of work", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := uow.Rollback(); rbErr != nil {
			logger.Error("Failed to roll back unit of work", zap.Error(rbErr))
		}
	}()

	if err := fn(uow); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return pkgerrors.NewPersistenceError("commit unit of work", err)
	}
	committed = true
	return nil
}
