package valueobjects

import (
	"strings"
	"testing"

	pkgerrors "crux-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDimensionType(t *testing.T) {
	for _, raw := range []string{"gate", "garden", "growth", "graft"} {
		t.Run(raw, func(t *testing.T) {
			dt, err := ParseDimensionType(raw)
			require.NoError(t, err)
			assert.Equal(t, raw, dt.String())
		})
	}

	_, err := ParseDimensionType("orbit")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = ParseDimensionType("")
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestResourceTypes(t *testing.T) {
	tests := []struct {
		segment string
		want    ResourceType
	}{
		{"authors", ResourceAuthor},
		{"cruxes", ResourceCrux},
		{"dimensions", ResourceDimension},
		{"paths", ResourcePath},
		{"tags", ResourceTag},
		{"themes", ResourceTheme},
	}
	for _, tt := range tests {
		t.Run(tt.segment, func(t *testing.T) {
			rt, err := ResourceTypeFromCollection(tt.segment)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rt)
			assert.Equal(t, tt.segment, rt.Collection())
		})
	}

	_, err := ResourceTypeFromCollection("homes")
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = ParseResourceType("home")
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"lowercase passes", "golang", "golang", false},
		{"uppercase is folded", "JavaScript", "javascript", false},
		{"hyphens and digits", "web-3-0", "web-3-0", false},
		{"max length", strings.Repeat("a", 50), strings.Repeat("a", 50), false},
		{"too long", strings.Repeat("a", 51), "", true},
		{"empty", "", "", true},
		{"space", "two words", "", true},
		{"underscore", "snake_case", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeLabel(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeLabels_CollapsesDuplicates(t *testing.T) {
	labels, err := NormalizeLabels([]string{"JavaScript", "javascript", "go", "GO"})
	require.NoError(t, err)
	assert.Equal(t, []string{"javascript", "go"}, labels)

	_, err = NormalizeLabels([]string{"ok", "not ok"})
	assert.Error(t, err)
}

func TestIsValidRawLabel(t *testing.T) {
	assert.True(t, IsValidRawLabel("JavaScript"))
	assert.False(t, IsValidRawLabel("java script"))
}

func TestNewKey(t *testing.T) {
	a, b := NewKey(), NewKey()
	assert.Len(t, a, KeyLength)
	assert.NotEqual(t, a, b)
	assert.True(t, IsValidKey(a))
	assert.False(t, IsValidKey("bad key"))
	assert.True(t, IsValidID(NewID()))
}
