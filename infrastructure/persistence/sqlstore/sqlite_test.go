package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"crux-backend/application/ports"
	"crux-backend/application/services"
	"crux-backend/domain/config"
	"crux-backend/domain/core/entities"
	"crux-backend/domain/core/valueobjects"
	"crux-backend/domain/events"
	"crux-backend/pkg/common"
	"crux-backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var base = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func newSQLiteBackend(t *testing.T, transactional bool) *Backend {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, Options{Dialect: DialectSQLite, DSN: filepath.Join(t.TempDir(), "crux.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	backend := NewBackend(db, DialectSQLite, transactional, zap.NewNop())
	applied, err := backend.Migrate(ctx)
	require.NoError(t, err)
	require.Equal(t, len(Migrations(DialectSQLite)), applied)
	return backend
}

func seedCrux(t *testing.T, store ports.Store, authorID string) *entities.Crux {
	t.Helper()
	crux, err := entities.NewCrux(authorID, "home-1", base)
	require.NoError(t, err)
	require.NoError(t, store.Cruxes().Create(context.Background(), crux))
	return crux
}

func seedDimension(t *testing.T, store ports.Store, src, dst, authorID string, dt valueobjects.DimensionType, at time.Time) *entities.Dimension {
	t.Helper()
	dim, err := entities.NewDimension(entities.DimensionParams{
		SourceID: src, TargetID: dst, Type: dt, AuthorID: authorID, HomeID: "home-1",
	}, at)
	require.NoError(t, err)
	require.NoError(t, store.Dimensions().Create(context.Background(), dim))
	return dim
}

func TestMigrate_IsIdempotent(t *testing.T) {
	backend := newSQLiteBackend(t, true)
	ctx := context.Background()

	applied, err := backend.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, applied)

	migrator, err := backend.Migrator()
	require.NoError(t, err)
	version, err := migrator.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, migrator.Latest(), version)
}

func TestDimensionRepository_RoundTrip(t *testing.T) {
	backend := newSQLiteBackend(t, true)
	ctx := context.Background()
	weight := 3
	note := "because"

	dim, err := entities.NewDimension(entities.DimensionParams{
		SourceID: "crux-x", TargetID: "crux-y", Type: valueobjects.DimensionGarden,
		Weight: &weight, Note: &note, AuthorID: "author-alice", HomeID: "home-1",
	}, base)
	require.NoError(t, err)
	require.NoError(t, backend.Dimensions().Create(ctx, dim))

	found, err := backend.Dimensions().FindByKey(ctx, dim.Key())
	require.NoError(t, err)
	assert.Equal(t, dim.ID(), found.ID())
	assert.Equal(t, valueobjects.DimensionGarden, found.Type())
	require.NotNil(t, found.Weight())
	assert.Equal(t, 3, *found.Weight())
	require.NotNil(t, found.Note())
	assert.Equal(t, "because", *found.Note())
	assert.True(t, base.Equal(found.CreatedAt()))
	assert.Nil(t, found.DeletedAt())

	_, err = backend.Dimensions().FindByKeyAndAuthor(ctx, dim.Key(), "author-bob")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	newType := valueobjects.DimensionGraft
	require.NoError(t, found.ApplyUpdate("author-alice", entities.DimensionUpdate{Type: &newType}, base.Add(time.Minute)))
	require.NoError(t, backend.Dimensions().Update(ctx, found))

	updated, err := backend.Dimensions().FindByKeyAndAuthor(ctx, dim.Key(), "author-alice")
	require.NoError(t, err)
	assert.Equal(t, valueobjects.DimensionGraft, updated.Type())
	assert.True(t, base.Add(time.Minute).Equal(updated.UpdatedAt()))
}

func TestDimensionRepository_ListBySource(t *testing.T) {
	backend := newSQLiteBackend(t, true)
	ctx := context.Background()

	first := seedDimension(t, backend, "crux-x", "crux-a", "author-alice", valueobjects.DimensionGate, base)
	second := seedDimension(t, backend, "crux-x", "crux-b", "author-alice", valueobjects.DimensionGrowth, base.Add(time.Second))
	third := seedDimension(t, backend, "crux-x", "crux-c", "author-bob", valueobjects.DimensionGate, base.Add(2*time.Second))
	seedDimension(t, backend, "crux-other", "crux-x", "author-alice", valueobjects.DimensionGate, base)

	t.Run("newest first with total", func(t *testing.T) {
		dims, total, err := backend.Dimensions().ListBySource(ctx, "crux-x", ports.DimensionFilter{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, dims, 2)
		assert.Equal(t, third.ID(), dims[0].ID())
		assert.Equal(t, second.ID(), dims[1].ID())
	})

	t.Run("second page", func(t *testing.T) {
		dims, total, err := backend.Dimensions().ListBySource(ctx, "crux-x", ports.DimensionFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, dims, 1)
		assert.Equal(t, first.ID(), dims[0].ID())
	})

	t.Run("type filter", func(t *testing.T) {
		gate := valueobjects.DimensionGate
		dims, total, err := backend.Dimensions().ListBySource(ctx, "crux-x", ports.DimensionFilter{Type: &gate, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, dims, 2)
	})
}

func TestDimensionRepository_SoftDeleteKeepsRow(t *testing.T) {
	backend := newSQLiteBackend(t, true)
	ctx := context.Background()
	dim := seedDimension(t, backend, "crux-x", "crux-y", "author-alice", valueobjects.DimensionGate, base)

	require.NoError(t, backend.Dimensions().SoftDelete(ctx, dim.ID(), base.Add(time.Hour)))

	_, err := backend.Dimensions().FindByKey(ctx, dim.Key())
	assert.ErrorIs(t, err, ports.ErrNotFound)
	dims, total, err := backend.Dimensions().ListBySource(ctx, "crux-x", ports.DimensionFilter{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, dims)

	var stored int
	require.NoError(t, backend.DB().QueryRow(`SELECT COUNT(*) FROM dimensions WHERE id = ? AND deleted IS NOT NULL`, dim.ID()).Scan(&stored))
	assert.Equal(t, 1, stored)

	err = backend.Dimensions().SoftDelete(ctx, dim.ID(), base.Add(2*time.Hour))
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestDimensionRepository_CascadeIsAuthorScoped(t *testing.T) {
	backend := newSQLiteBackend(t, true)
	ctx := context.Background()

	d1 := seedDimension(t, backend, "crux-x", "crux-y", "author-alice", valueobjects.DimensionGate, base)
	d2 := seedDimension(t, backend, "crux-y", "crux-x", "author-bob", valueobjects.DimensionGate, base)
	d3 := seedDimension(t, backend, "crux-z", "crux-x", "author-alice", valueobjects.DimensionGarden, base)
	unrelated := seedDimension(t, backend, "crux-y", "crux-z", "author-alice", valueobjects.DimensionGate, base)

	affected, err := backend.Dimensions().SoftDeleteByNodeAndAuthor(ctx, "crux-x", "author-alice", base.Add(time.Hour))
	require.NoError(t, err)

	ids := make([]string, 0, len(affected))
	for _, d := range affected {
		ids = append(ids, d.ID())
		assert.True(t, d.IsDeleted())
	}
	assert.ElementsMatch(t, []string{d1.ID(), d3.ID()}, ids)

	for _, kept := range []*entities.Dimension{d2, unrelated} {
		_, err := backend.Dimensions().FindByKey(ctx, kept.Key())
		assert.NoError(t, err)
	}

	again, err := backend.Dimensions().SoftDeleteByNodeAndAuthor(ctx, "crux-x", "author-alice", base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestTagRepository_PartialUniqueIndex(t *testing.T) {
	backend := newSQLiteBackend(t, true)
	ctx := context.Background()

	newTag := func(label string) *entities.Tag {
		tag, err := entities.NewTag(entities.TagParams{
			ResourceType: valueobjects.ResourceCrux, ResourceID: "crux-x", Label: label, AuthorID: "author-alice",
		}, base)
		require.NoError(t, err)
		return tag
	}

	golang := newTag("golang")
	require.NoError(t, backend.Tags().Create(ctx, golang))
	require.NoError(t, backend.Tags().Create(ctx, newTag("api")))

	err := backend.Tags().Create(ctx, newTag("golang"))
	assert.ErrorIs(t, err, ErrDuplicateLabel)

	require.NoError(t, backend.Tags().SoftDelete(ctx, []string{golang.ID()}, base.Add(time.Minute)))
	require.NoError(t, backend.Tags().Create(ctx, newTag("golang")))

	tags, err := backend.Tags().ListByResource(ctx, valueobjects.ResourceCrux, "crux-x")
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "api", tags[0].Label())
	assert.Equal(t, "golang", tags[1].Label())
	assert.NotEqual(t, golang.ID(), tags[1].ID())

	_, err = backend.Tags().FindByKey(ctx, golang.Key())
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestUnitOfWork_RollbackDiscardsWrites(t *testing.T) {
	backend := newSQLiteBackend(t, true)
	ctx := context.Background()

	uow, err := backend.Begin(ctx)
	require.NoError(t, err)
	crux := seedCrux(t, uow, "author-alice")
	require.NoError(t, uow.Rollback())
	require.NoError(t, uow.Rollback())

	_, err = backend.Cruxes().FindByID(ctx, crux.ID())
	assert.ErrorIs(t, err, ports.ErrNotFound)

	uow, err = backend.Begin(ctx)
	require.NoError(t, err)
	crux = seedCrux(t, uow, "author-alice")
	require.NoError(t, uow.Commit(ctx))
	require.NoError(t, uow.Rollback())

	found, err := backend.Cruxes().FindByKey(ctx, crux.Key())
	require.NoError(t, err)
	assert.Equal(t, crux.ID(), found.ID())
}

func TestUnitOfWork_PassThroughKeepsWrites(t *testing.T) {
	backend := newSQLiteBackend(t, false)
	ctx := context.Background()

	uow, err := backend.Begin(ctx)
	require.NoError(t, err)
	crux := seedCrux(t, uow, "author-alice")
	require.NoError(t, uow.Rollback())

	_, err = backend.Cruxes().FindByID(ctx, crux.ID())
	assert.NoError(t, err)
}

func TestResourceResolver(t *testing.T) {
	backend := newSQLiteBackend(t, true)
	ctx := context.Background()
	crux := seedCrux(t, backend, "author-alice")
	require.NoError(t, backend.RegisterResource(ctx, valueobjects.ResourceTheme, "theme-1", "dark"))

	id, err := backend.Resources().ResolveID(ctx, valueobjects.ResourceCrux, crux.Key())
	require.NoError(t, err)
	assert.Equal(t, crux.ID(), id)

	id, err = backend.Resources().ResolveID(ctx, valueobjects.ResourceTheme, "dark")
	require.NoError(t, err)
	assert.Equal(t, "theme-1", id)

	_, err = backend.Resources().ResolveID(ctx, valueobjects.ResourcePath, "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	err = backend.RegisterResource(ctx, valueobjects.ResourceCrux, "crux-1", "nope")
	assert.Error(t, err)
}

type nopMetrics struct{}

func (nopMetrics) DimensionsCreated(int)                                {}
func (nopMetrics) DimensionsDeleted(events.DeletionReason, int)         {}
func (nopMetrics) TagsSynchronized(valueobjects.ResourceType, int, int) {}

func TestTagSynchronizer_OnSQLite(t *testing.T) {
	// Arrange
	backend := newSQLiteBackend(t, true)
	ctx := context.Background()
	crux := seedCrux(t, backend, "author-alice")
	actor := common.Actor{AuthorID: "author-alice", HomeID: "home-1"}
	syncer := services.NewTagSynchronizer(backend, config.DefaultDomainConfig(), nopMetrics{}, utils.SystemClock, zap.NewNop())

	// Act
	first, err := syncer.Synchronize(ctx, valueobjects.ResourceCrux, crux.ID(), []string{"Go", "api", "go"}, actor)
	require.NoError(t, err)
	second, err := syncer.Synchronize(ctx, valueobjects.ResourceCrux, crux.ID(), []string{"go", "api"}, actor)
	require.NoError(t, err)
	third, err := syncer.Synchronize(ctx, valueobjects.ResourceCrux, crux.ID(), []string{"go"}, actor)
	require.NoError(t, err)

	// Assert
	assert.Len(t, first.Tags, 2)
	assert.Empty(t, second.Added)
	assert.Empty(t, second.Removed)
	require.Len(t, third.Tags, 1)
	assert.Equal(t, "go", third.Tags[0].Label())
	assert.Equal(t, first.Tags[1].ID(), third.Tags[0].ID())

	var rows int
	require.NoError(t, backend.DB().QueryRow(`SELECT COUNT(*) FROM tags`).Scan(&rows))
	assert.Equal(t, 2, rows)
}
