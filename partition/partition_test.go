package partition_test

import (
	"testing"

	"github.com/hubert-he/disklabel"
	"github.com/hubert-he/disklabel/disktest"
	"github.com/hubert-he/disklabel/partition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freshLabel(secPerCyl, secPerUnit uint32) *disklabel.Label {
	return &disklabel.Label{
		Magic:      disklabel.DiskMagic,
		Magic2:     disklabel.DiskMagic,
		SecPerCyl:  secPerCyl,
		SecPerUnit: secPerUnit,
	}
}

// TestInitDefaults_NonNested checks the S1 scenario's partition layout.
func TestInitDefaults_NonNested(t *testing.T) {
	label := freshLabel(1008, 1032192)
	e := partition.NewEditor(label)

	e.InitDefaults(nil, false)

	assert.EqualValues(t, 3, label.NPartitions)
	assert.Equal(t, disklabel.Partition{Offset: 0, Size: 1032192, FSType: disklabel.FSUnused}, label.Partitions[2])
	assert.True(t, e.IsUsed(2))
	assert.False(t, e.IsUsed(0))
	assert.False(t, e.IsUsed(1))
}

// TestInitDefaults_Nested checks the S2 scenario.
func TestInitDefaults_Nested(t *testing.T) {
	label := freshLabel(1008, 1032192)
	e := partition.NewEditor(label)
	parent := disktest.ParentPartitionStub{Start: 2048, Size: 20480}

	e.InitDefaults(parent, true)

	assert.EqualValues(t, 4, label.NPartitions)
	assert.Equal(t, disklabel.Partition{Offset: 2048, Size: 20480, FSType: disklabel.FSUnused}, label.Partitions[2])
	assert.Equal(t, disklabel.Partition{Offset: 0, Size: 1032192, FSType: disklabel.FSUnused}, label.Partitions[3])
}

// TestAdd_CylinderMode checks the S3 scenario.
func TestAdd_CylinderMode(t *testing.T) {
	label := freshLabel(1008, 1032192)
	e := partition.NewEditor(label)
	ctx := disktest.NewContext(disktest.CreateRandomImage(t, 1<<20), 512, 16, 63, 1024).
		WithDisplayMode(disklabel.DisplayModeCylinders)
	prompts := &disktest.ScriptedPrompts{Numbers: []int64{2, 5}}

	require.NoError(t, e.Add(ctx, prompts, 4))

	assert.EqualValues(t, 1008, label.Partitions[4].Offset)
	assert.EqualValues(t, 4032, label.Partitions[4].Size)
	assert.EqualValues(t, 5, label.NPartitions)
	assert.True(t, e.Dirty)
}

// TestAdd_SectorMode checks invariant 3 of §8.1: reported start/end equal
// the raw inputs in sector mode.
func TestAdd_SectorMode(t *testing.T) {
	label := freshLabel(1008, 1032192)
	e := partition.NewEditor(label)
	ctx := disktest.NewContext(disktest.CreateRandomImage(t, 1<<20), 512, 16, 63, 1024)
	prompts := &disktest.ScriptedPrompts{Numbers: []int64{100, 299}}

	require.NoError(t, e.Add(ctx, prompts, 0))

	view, err := e.Get(0, label.SecPerCyl, disklabel.DisplayModeSectors)
	require.NoError(t, err)
	assert.True(t, view.Used)
	assert.EqualValues(t, 100, view.DisplayStart)
	assert.EqualValues(t, 299, view.DisplayEnd)
}

// TestDelete_ShrinksNPartitions checks the S4 scenario.
func TestDelete_ShrinksNPartitions(t *testing.T) {
	label := freshLabel(1008, 1032192)
	label.NPartitions = 5
	label.Partitions[4] = disklabel.Partition{Offset: 10, Size: 10, FSType: disklabel.FSUnused}
	e := partition.NewEditor(label)

	require.NoError(t, e.Delete(4))

	assert.EqualValues(t, 0, label.NPartitions)
}

// TestLink checks the S5 scenario.
func TestLink(t *testing.T) {
	label := freshLabel(1008, 1032192)
	e := partition.NewEditor(label)
	parent := disktest.ParentPartitionStub{Start: 100, Size: 200, SysVal: 0x07}

	require.NoError(t, e.Link(parent, 5))

	assert.Equal(t, disklabel.Partition{Offset: 100, Size: 200, FSType: disklabel.FSHPFS}, label.Partitions[5])
	assert.GreaterOrEqual(t, int(label.NPartitions), 6)
}

func TestLink_MSDOSMapping(t *testing.T) {
	label := freshLabel(1008, 1032192)
	e := partition.NewEditor(label)
	for _, sysByte := range []byte{0x01, 0x04, 0x06, 0xe1, 0xe3, 0xf2} {
		parent := disktest.ParentPartitionStub{Start: 1, Size: 1, SysVal: sysByte}
		require.NoError(t, e.Link(parent, 6))
		assert.Equal(t, disklabel.FSMSDOSOrExt2, label.Partitions[6].FSType)
	}
}

func TestLink_OtherMapping(t *testing.T) {
	label := freshLabel(1008, 1032192)
	e := partition.NewEditor(label)
	parent := disktest.ParentPartitionStub{Start: 1, Size: 1, SysVal: 0x83}
	require.NoError(t, e.Link(parent, 6))
	assert.Equal(t, disklabel.FSOther, label.Partitions[6].FSType)
}

func TestSetType_NoopWhenUnchanged(t *testing.T) {
	label := freshLabel(1008, 1032192)
	label.NPartitions = 1
	label.Partitions[0] = disklabel.Partition{Offset: 0, Size: 10, FSType: disklabel.FSSwap}
	e := partition.NewEditor(label)

	require.NoError(t, e.SetType(0, disklabel.FSSwap))
	assert.False(t, e.Dirty)

	require.NoError(t, e.SetType(0, disklabel.FSBSDFFS))
	assert.True(t, e.Dirty)
	assert.Equal(t, disklabel.FSBSDFFS, label.Partitions[0].FSType)
}

func TestGet_FragmentFieldsOnlyForUnusedAndFFS(t *testing.T) {
	label := freshLabel(1008, 1032192)
	label.NPartitions = 2
	label.Partitions[0] = disklabel.Partition{Offset: 0, Size: 10, FSType: disklabel.FSBSDFFS, FSize: 1024, Frag: 8, CPG: 16}
	label.Partitions[1] = disklabel.Partition{Offset: 10, Size: 10, FSType: disklabel.FSSwap}
	e := partition.NewEditor(label)

	ffsView, err := e.Get(0, label.SecPerCyl, disklabel.DisplayModeSectors)
	require.NoError(t, err)
	require.NotNil(t, ffsView.FSize)
	require.NotNil(t, ffsView.Bsize)
	require.NotNil(t, ffsView.CPG)
	assert.EqualValues(t, 8192, *ffsView.Bsize)

	swapView, err := e.Get(1, label.SecPerCyl, disklabel.DisplayModeSectors)
	require.NoError(t, err)
	assert.Nil(t, swapView.FSize)
	assert.Nil(t, swapView.CPG)
}

func TestValidate_CatchesOutOfRangeNPartitions(t *testing.T) {
	label := freshLabel(1008, 1032192)
	label.NPartitions = disklabel.MaxPartitions + 1
	e := partition.NewEditor(label)
	assert.Error(t, e.Validate())
}

func TestValidate_CleanLabel(t *testing.T) {
	label := freshLabel(1008, 1032192)
	e := partition.NewEditor(label)
	e.InitDefaults(nil, false)
	assert.NoError(t, e.Validate())
}

// TestIsUsed_TracksOccupancyBitmap checks that IsUsed (and, by extension,
// Get's View.Used) reads the occupancy bitmap rather than re-deriving
// occupancy from Partition.Used each call: a direct mutation of the
// underlying partition slice, bypassing every editor mutator, must not
// change what IsUsed reports, and Validate must flag the resulting
// disagreement.
func TestIsUsed_TracksOccupancyBitmap(t *testing.T) {
	label := freshLabel(1008, 1032192)
	e := partition.NewEditor(label)
	e.InitDefaults(nil, false)
	require.True(t, e.IsUsed(2))

	label.Partitions[2] = disklabel.Partition{}

	assert.True(t, e.IsUsed(2), "IsUsed must track the editor's own bitmap, not Partition.Used")
	assert.Error(t, e.Validate(), "Validate must catch the bitmap/slice disagreement")
}
