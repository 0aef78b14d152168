package codec_test

import (
	"testing"

	"github.com/hubert-he/disklabel"
	"github.com/hubert-he/disklabel/checksum"
	"github.com/hubert-he/disklabel/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freshLabel() *disklabel.Label {
	label := &disklabel.Label{
		Magic:       disklabel.DiskMagic,
		Magic2:      disklabel.DiskMagic,
		SecSize:     512,
		NSectors:    63,
		NTracks:     16,
		NCylinders:  1024,
		SecPerCyl:   1008,
		SecPerUnit:  1032192,
		BBSize:      disklabel.DefaultBBSize,
		SBSize:      disklabel.DefaultSBSize,
		NPartitions: 3,
	}
	label.Partitions[2] = disklabel.Partition{Offset: 0, Size: 1032192, FSType: disklabel.FSUnused}
	return label
}

// TestRoundTrip checks invariant 1 of §8.1: parse(serialize(L)) == L.
func TestRoundTrip(t *testing.T) {
	label := freshLabel()
	buf := make([]byte, disklabel.DefaultBBSize)

	require.NoError(t, codec.Serialize(label, buf, disklabel.DefaultLabelSector, disklabel.DefaultLabelOffset))

	parsed, clamped, err := codec.Parse(buf, disklabel.DefaultLabelSector, disklabel.DefaultLabelOffset)
	require.NoError(t, err)
	assert.False(t, clamped)
	assert.Equal(t, *label, *parsed)
}

// TestChecksumZeroAfterSerialize checks invariant 2 of §8.1.
func TestChecksumZeroAfterSerialize(t *testing.T) {
	label := freshLabel()
	buf := make([]byte, disklabel.DefaultBBSize)
	require.NoError(t, codec.Serialize(label, buf, disklabel.DefaultLabelSector, disklabel.DefaultLabelOffset))

	off := codec.LabelByteOffset(disklabel.DefaultLabelSector, disklabel.DefaultLabelOffset)
	headerAndLiveParts := codec.RawLabelSize() - (disklabel.MaxPartitions-int(label.NPartitions))*16
	assert.EqualValues(t, 0, checksum.XOR16(buf[off:off+headerAndLiveParts]))
}

func TestParse_NoMagicIsNotFound(t *testing.T) {
	buf := make([]byte, disklabel.DefaultBBSize)
	_, _, err := codec.Parse(buf, disklabel.DefaultLabelSector, disklabel.DefaultLabelOffset)
	assert.ErrorIs(t, err, disklabel.ErrNotFound)
}

func TestParse_Magic2MismatchIsCorrupt(t *testing.T) {
	label := freshLabel()
	buf := make([]byte, disklabel.DefaultBBSize)
	require.NoError(t, codec.Serialize(label, buf, disklabel.DefaultLabelSector, disklabel.DefaultLabelOffset))

	// Corrupt magic2 in place: it's the 4 bytes right before the 2-byte
	// checksum field, which in turn precedes the 2-byte npartitions field.
	off := codec.LabelByteOffset(disklabel.DefaultLabelSector, disklabel.DefaultLabelOffset)
	magic2Off := off + codec.RawLabelSize() - disklabel.MaxPartitions*16 - 2 - 2 - 4
	buf[magic2Off] ^= 0xFF

	_, _, err := codec.Parse(buf, disklabel.DefaultLabelSector, disklabel.DefaultLabelOffset)
	assert.ErrorIs(t, err, disklabel.ErrCorrupt)
}

func TestParse_ClampsExcessPartitions(t *testing.T) {
	label := freshLabel()
	label.NPartitions = disklabel.MaxPartitions + 5
	buf := make([]byte, disklabel.DefaultBBSize)

	// Serialize clamps internally too, so force the on-disk value directly
	// by serializing then patching the NPartitions field back up.
	require.NoError(t, codec.Serialize(label, buf, disklabel.DefaultLabelSector, disklabel.DefaultLabelOffset))

	off := codec.LabelByteOffset(disklabel.DefaultLabelSector, disklabel.DefaultLabelOffset)
	npartOff := off + codec.RawLabelSize() - disklabel.MaxPartitions*16 - 2
	buf[npartOff] = 0xFF
	buf[npartOff+1] = 0xFF

	parsed, clamped, err := codec.Parse(buf, disklabel.DefaultLabelSector, disklabel.DefaultLabelOffset)
	require.NoError(t, err)
	assert.True(t, clamped)
	assert.EqualValues(t, disklabel.MaxPartitions, parsed.NPartitions)
}

func TestVerifyChecksum(t *testing.T) {
	label := freshLabel()
	buf := make([]byte, disklabel.DefaultBBSize)
	require.NoError(t, codec.Serialize(label, buf, disklabel.DefaultLabelSector, disklabel.DefaultLabelOffset))

	ok, err := codec.VerifyChecksum(buf, disklabel.DefaultLabelSector, disklabel.DefaultLabelOffset)
	require.NoError(t, err)
	assert.True(t, ok)

	off := codec.LabelByteOffset(disklabel.DefaultLabelSector, disklabel.DefaultLabelOffset)
	buf[off+20] ^= 0xFF // perturb a header byte outside the magic fields

	ok, err = codec.VerifyChecksum(buf, disklabel.DefaultLabelSector, disklabel.DefaultLabelOffset)
	require.NoError(t, err)
	assert.False(t, ok)
}
