package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"crux-backend/application/ports"
	"crux-backend/domain/core/entities"
	"crux-backend/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newDimension(t *testing.T, source, target, author string, created time.Time) *entities.Dimension {
	t.Helper()
	d, err := entities.NewDimension(entities.DimensionParams{
		SourceID: source,
		TargetID: target,
		Type:     valueobjects.DimensionGarden,
		AuthorID: author,
	}, created)
	require.NoError(t, err)
	return d
}

func TestUnitOfWork_CommitAndRollback(t *testing.T) {
	ctx := context.Background()
	b := NewBackend(zap.NewNop())

	uow, err := b.Begin(ctx)
	require.NoError(t, err)
	d := newDimension(t, "a", "b", "author-1", t0)
	require.NoError(t, uow.Dimensions().Create(ctx, d))
	require.NoError(t, uow.Rollback())

	_, err = b.Dimensions().FindByKey(ctx, d.Key())
	assert.ErrorIs(t, err, ports.ErrNotFound)

	uow, err = b.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Dimensions().Create(ctx, d))
	require.NoError(t, uow.Commit(ctx))
	require.NoError(t, uow.Rollback())

	found, err := b.Dimensions().FindByKey(ctx, d.Key())
	require.NoError(t, err)
	assert.Equal(t, d.ID(), found.ID())
}

func TestDimensionRepository_ListBySource(t *testing.T) {
	ctx := context.Background()
	b := NewBackend(zap.NewNop())
	repo := b.Dimensions()

	old := newDimension(t, "src", "t1", "author-1", t0)
	mid := newDimension(t, "src", "t2", "author-1", t0.Add(time.Minute))
	recent := newDimension(t, "src", "t3", "author-1", t0.Add(2*time.Minute))
	other := newDimension(t, "elsewhere", "t1", "author-1", t0)
	for _, d := range []*entities.Dimension{old, mid, recent, other} {
		require.NoError(t, repo.Create(ctx, d))
	}
	require.NoError(t, repo.SoftDelete(ctx, mid.ID(), t0.Add(time.Hour)))

	items, total, err := repo.ListBySource(ctx, "src", ports.DimensionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, recent.ID(), items[0].ID())
	assert.Equal(t, old.ID(), items[1].ID())

	items, total, err = repo.ListBySource(ctx, "src", ports.DimensionFilter{Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 1)
	assert.Equal(t, old.ID(), items[0].ID())

	gate := valueobjects.DimensionGate
	items, total, err = repo.ListBySource(ctx, "src", ports.DimensionFilter{Type: &gate})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestDimensionRepository_SoftDeleteByNodeAndAuthor(t *testing.T) {
	ctx := context.Background()
	b := NewBackend(zap.NewNop())
	repo := b.Dimensions()

	outgoing := newDimension(t, "node", "x", "author-1", t0)
	incoming := newDimension(t, "y", "node", "author-1", t0)
	foreign := newDimension(t, "z", "node", "author-2", t0)
	unrelated := newDimension(t, "x", "y", "author-1", t0)
	for _, d := range []*entities.Dimension{outgoing, incoming, foreign, unrelated} {
		require.NoError(t, repo.Create(ctx, d))
	}

	affected, err := repo.SoftDeleteByNodeAndAuthor(ctx, "node", "author-1", t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, affected, 2)

	_, err = repo.FindByKey(ctx, outgoing.Key())
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = repo.FindByKey(ctx, incoming.Key())
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = repo.FindByKey(ctx, foreign.Key())
	assert.NoError(t, err)
	_, err = repo.FindByKey(ctx, unrelated.Key())
	assert.NoError(t, err)
}

func TestTagRepository_RejectsDuplicateActiveLabel(t *testing.T) {
	ctx := context.Background()
	b := NewBackend(zap.NewNop())

	first, err := entities.NewTag(entities.TagParams{ResourceType: valueobjects.ResourceCrux, ResourceID: "c1", Label: "go"}, t0)
	require.NoError(t, err)
	second, err := entities.NewTag(entities.TagParams{ResourceType: valueobjects.ResourceCrux, ResourceID: "c1", Label: "go"}, t0)
	require.NoError(t, err)

	require.NoError(t, b.Tags().Create(ctx, first))
	assert.Error(t, b.Tags().Create(ctx, second))

	require.NoError(t, b.Tags().SoftDelete(ctx, []string{first.ID()}, t0))
	assert.NoError(t, b.Tags().Create(ctx, second))
}

func TestResourceResolver(t *testing.T) {
	ctx := context.Background()
	b := NewBackend(zap.NewNop())

	crux, err := entities.NewCrux("author-1", "home-1", t0)
	require.NoError(t, err)
	require.NoError(t, b.Cruxes().Create(ctx, crux))
	b.RegisterResource(valueobjects.ResourceTheme, "theme-id", "theme-key")

	id, err := b.Resources().ResolveID(ctx, valueobjects.ResourceCrux, crux.Key())
	require.NoError(t, err)
	assert.Equal(t, crux.ID(), id)

	id, err = b.Resources().ResolveID(ctx, valueobjects.ResourceTheme, "theme-key")
	require.NoError(t, err)
	assert.Equal(t, "theme-id", id)

	_, err = b.Resources().ResolveID(ctx, valueobjects.ResourcePath, "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestInjectFailure(t *testing.T) {
	ctx := context.Background()
	b := NewBackend(zap.NewNop())
	boom := errors.New("boom")

	b.InjectFailure("dimensions.list", boom)
	_, _, err := b.Dimensions().ListBySource(ctx, "src", ports.DimensionFilter{})
	assert.ErrorIs(t, err, boom)

	b.InjectFailure("dimensions.list", nil)
	_, _, err = b.Dimensions().ListBySource(ctx, "src", ports.DimensionFilter{})
	assert.NoError(t, err)
}
