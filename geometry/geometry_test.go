package geometry_test

import (
	"testing"

	"github.com/hubert-he/disklabel/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFirstLastSectorFromCylinder checks the S3 scenario: secpercyl=1008,
// first cylinder 2, last cylinder 5 -> offset=1008, size=4032.
func TestFirstLastSectorFromCylinder(t *testing.T) {
	const secPerCyl = 1008

	first := geometry.FirstSectorFromCylinder(2, secPerCyl)
	last := geometry.LastSectorFromCylinder(5, secPerCyl)

	assert.EqualValues(t, 1008, first)
	assert.EqualValues(t, 5039, last)
	assert.EqualValues(t, 4032, last-first+1)
}

func TestSecPerCyl_ZeroForced(t *testing.T) {
	assert.EqualValues(t, 1, geometry.SecPerCyl(0, 0))
	assert.EqualValues(t, 1008, geometry.SecPerCyl(16, 63))
}

func TestDisplayStart_NoMarkerOnExactBoundary(t *testing.T) {
	cyl, marker := geometry.DisplayStart(1008, 1008)
	assert.EqualValues(t, 2, cyl)
	assert.False(t, marker)
}

func TestDisplayStart_MarkerOnPartialCylinder(t *testing.T) {
	cyl, marker := geometry.DisplayStart(1000, 1008)
	assert.EqualValues(t, 1, cyl)
	assert.True(t, marker)
}

func TestDisplayEnd_NoMarkerOnExactBoundary(t *testing.T) {
	// offset=0, size=2016 -> end=2016, 2016/1008 = 2 exactly.
	cyl, marker := geometry.DisplayEnd(0, 2016, 1008)
	assert.EqualValues(t, 2, cyl)
	assert.False(t, marker)
}

func TestDisplayEnd_MarkerOnPartialCylinder(t *testing.T) {
	cyl, marker := geometry.DisplayEnd(0, 2000, 1008)
	assert.EqualValues(t, 2, cyl)
	assert.True(t, marker)
}

func TestPromptBounds(t *testing.T) {
	low, high := geometry.PromptBounds(1032192)
	assert.EqualValues(t, 0, low)
	assert.EqualValues(t, 1032191, high)
}

func TestPresetBySlug_Found(t *testing.T) {
	preset, err := geometry.PresetBySlug("floppy-1.44m")
	require.NoError(t, err)
	assert.EqualValues(t, 2, preset.Heads)
	assert.EqualValues(t, 18, preset.Sectors)
	assert.EqualValues(t, 80, preset.Cylinders)
	assert.EqualValues(t, 36, preset.SecPerCyl())
	assert.EqualValues(t, 2880, preset.SecPerUnit())
}

func TestPresetBySlug_NotFound(t *testing.T) {
	_, err := geometry.PresetBySlug("does-not-exist")
	assert.Error(t, err)
}

func TestFormatBound(t *testing.T) {
	assert.Equal(t, "5", geometry.FormatBound(5, false))
	assert.Equal(t, "5*", geometry.FormatBound(5, true))
}
