package store_test

import (
	"testing"

	"github.com/hubert-he/disklabel"
	"github.com/hubert-he/disklabel/disktest"
	"github.com/hubert-he/disklabel/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBaseOffset_NonNested checks invariant 6 of §8.1 for the non-nested
// case: base offset is always 0.
func TestBaseOffset_NonNested(t *testing.T) {
	image := disktest.CreateRandomImage(t, 1<<20)
	ctx := disktest.NewContext(image, 512, 4, 32, 64)
	assert.EqualValues(t, 0, store.BaseOffset(ctx))
}

// TestBaseOffset_Nested checks invariant 6 of §8.1 for the nested case:
// base offset is dos_start_sector * ctx.SectorSize().
func TestBaseOffset_Nested(t *testing.T) {
	image := disktest.CreateRandomImage(t, 1<<20)
	parent := disktest.ParentPartitionStub{Start: 63, Size: 1000, SysVal: 0xA5}
	ctx := disktest.NewContext(image, 512, 4, 32, 64).WithParent(parent)
	assert.EqualValues(t, 63*512, store.BaseOffset(ctx))
}

func TestWriteThenRead_RoundTrips(t *testing.T) {
	image := disktest.CreateRandomImage(t, 1<<20)
	ctx := disktest.NewContext(image, 512, 4, 32, 64)

	want := disklabel.NewBootBlockBuffer(ctx.BBSize())
	for i := range want {
		want[i] = byte(i % 251)
	}

	require.NoError(t, store.Write(ctx, want))

	got, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteThenRead_Nested_UsesBaseOffset(t *testing.T) {
	image := disktest.CreateRandomImage(t, 1<<20)
	parent := disktest.ParentPartitionStub{Start: 63, Size: 1000}
	ctx := disktest.NewContext(image, 512, 4, 32, 64).WithParent(parent)

	want := disklabel.NewBootBlockBuffer(ctx.BBSize())
	for i := range want {
		want[i] = byte(0xCC)
	}
	require.NoError(t, store.Write(ctx, want))

	got, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWrite_WrongSizeBufferIsInvalidArgument(t *testing.T) {
	image := disktest.CreateRandomImage(t, 1<<20)
	ctx := disktest.NewContext(image, 512, 4, 32, 64)

	err := store.Write(ctx, disklabel.NewBootBlockBuffer(ctx.BBSize()-1))
	assert.ErrorIs(t, err, disklabel.ErrInvalidArgument)
}

func TestRead_ShortDeviceIsIOFailed(t *testing.T) {
	// An image shorter than BBSize forces io.ReadFull into io.ErrUnexpectedEOF.
	image := disktest.CreateRandomImage(t, 100)
	ctx := disktest.NewContext(image, 512, 4, 32, 64)

	_, err := store.Read(ctx)
	assert.ErrorIs(t, err, disklabel.ErrIOFailed)
}
