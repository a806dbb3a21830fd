package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPredefinedDiskGeometry_KnownSlug(t *testing.T) {
	g, err := GetPredefinedDiskGeometry("3.5-hd")
	require.NoError(t, err)
	assert.Equal(t, "3.5-hd", g.Slug)
	assert.EqualValues(t, 512, g.SectorSizeBytes())
	assert.EqualValues(t, 1474560, g.TotalSizeBytes())
}

func TestGetPredefinedDiskGeometry_UnknownSlug(t *testing.T) {
	_, err := GetPredefinedDiskGeometry("does-not-exist")
	assert.Error(t, err)
}

func TestFallbackSectorSize(t *testing.T) {
	assert.EqualValues(t, 512, FallbackSectorSize())
}
