package entities

import (
	"testing"
	"time"

	"crux-backend/domain/core/valueobjects"
	"crux-backend/domain/events"
	pkgerrors "crux-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func validParams() DimensionParams {
	return DimensionParams{
		SourceID: valueobjects.NewID(),
		TargetID: valueobjects.NewID(),
		Type:     valueobjects.DimensionGate,
		Weight:   intPtr(3),
		Note:     strPtr("leads to"),
		AuthorID: "author-1",
		HomeID:   "home-1",
	}
}

func TestNewDimension(t *testing.T) {
	t.Run("valid params", func(t *testing.T) {
		d, err := NewDimension(validParams(), now)
		require.NoError(t, err)
		assert.NotEmpty(t, d.ID())
		assert.Len(t, d.Key(), valueobjects.KeyLength)
		assert.Equal(t, 3, *d.Weight())
		assert.Equal(t, now, d.CreatedAt())
		assert.False(t, d.IsDeleted())

		evts := d.GetUncommittedEvents()
		require.Len(t, evts, 1)
		assert.Equal(t, events.TypeDimensionCreated, evts[0].GetEventType())
	})

	tests := []struct {
		name   string
		mutate func(*DimensionParams)
	}{
		{"missing source", func(p *DimensionParams) { p.SourceID = "" }},
		{"missing target", func(p *DimensionParams) { p.TargetID = "" }},
		{"unknown type", func(p *DimensionParams) { p.Type = "orbit" }},
		{"negative weight", func(p *DimensionParams) { p.Weight = intPtr(-1) }},
		{"missing author", func(p *DimensionParams) { p.AuthorID = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			_, err := NewDimension(p, now)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))
		})
	}
}

func TestDimension_ApplyUpdate(t *testing.T) {
	d, err := NewDimension(validParams(), now)
	require.NoError(t, err)
	d.MarkEventsAsCommitted()

	later := now.Add(time.Minute)
	growth := valueobjects.DimensionGrowth

	t.Run("other author is forbidden", func(t *testing.T) {
		err := d.ApplyUpdate("author-2", DimensionUpdate{Type: &growth}, later)
		assert.True(t, pkgerrors.IsForbidden(err))
		assert.Equal(t, valueobjects.DimensionGate, d.Type())
	})

	t.Run("author changes type and clears note", func(t *testing.T) {
		err := d.ApplyUpdate("author-1", DimensionUpdate{Type: &growth, Note: strPtr("")}, later)
		require.NoError(t, err)
		assert.Equal(t, valueobjects.DimensionGrowth, d.Type())
		assert.Nil(t, d.Note())
		assert.Equal(t, later, d.UpdatedAt())
		require.Len(t, d.GetUncommittedEvents(), 1)
	})

	t.Run("negative weight rejected", func(t *testing.T) {
		err := d.ApplyUpdate("author-1", DimensionUpdate{Weight: intPtr(-5)}, later)
		assert.True(t, pkgerrors.IsValidation(err))
	})
}

func TestDimension_SoftDelete(t *testing.T) {
	d, err := NewDimension(validParams(), now)
	require.NoError(t, err)
	d.MarkEventsAsCommitted()

	d.SoftDelete(events.DeletedByCascade, now)
	d.SoftDelete(events.DeletedByCascade, now.Add(time.Hour))

	require.True(t, d.IsDeleted())
	assert.Equal(t, now, *d.DeletedAt())
	require.Len(t, d.GetUncommittedEvents(), 1)
	deleted := d.GetUncommittedEvents()[0].(events.DimensionDeleted)
	assert.Equal(t, events.DeletedByCascade, deleted.Reason)
}

func TestNewTag_NormalizesLabel(t *testing.T) {
	tag, err := NewTag(TagParams{
		ResourceType: valueobjects.ResourceCrux,
		ResourceID:   "crux-1",
		Label:        "GoLang",
		AuthorID:     "author-1",
		HomeID:       "home-1",
	}, now)
	require.NoError(t, err)
	assert.Equal(t, "golang", tag.Label())
	assert.False(t, tag.IsSystem())

	_, err = NewTag(TagParams{ResourceType: "home", ResourceID: "x", Label: "a"}, now)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestTag_SystemTagsAreImmutable(t *testing.T) {
	tag := ReconstructTag("id", "key", valueobjects.ResourceTheme, "theme-1", "featured", "", "", true, now, now, nil)

	assert.True(t, pkgerrors.IsForbidden(tag.Relabel("other", now)))
	assert.True(t, pkgerrors.IsForbidden(tag.SoftDelete(now)))
	assert.False(t, tag.IsDeleted())
}

func TestCrux_SoftDelete(t *testing.T) {
	c, err := NewCrux("author-1", "home-1", now)
	require.NoError(t, err)

	assert.True(t, pkgerrors.IsForbidden(c.SoftDelete("author-2", now)))
	require.NoError(t, c.SoftDelete("author-1", now))
	assert.True(t, c.IsDeleted())
	assert.True(t, pkgerrors.IsNotFound(c.SoftDelete("author-1", now)))
}
