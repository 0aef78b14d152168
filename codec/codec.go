// Package codec implements LabelCodec: serializing and parsing the
// disklabel record at its fixed offset within a [disklabel.BootBlockBuffer]
// (§4.3).
package codec

import (
	"bytes"
	"encoding/binary"

	"github.com/hubert-he/disklabel"
	"github.com/hubert-he/disklabel/checksum"
	"github.com/noxer/bytewriter"
)

// rawHeader is the on-disk layout of everything in a label except the
// partition table, defined explicitly per the design note in §9 rather
// than relying on Go's struct-layout behavior. All multi-byte fields are
// little-endian.
type rawHeader struct {
	Magic       uint32
	DiskType    uint32
	TypeName    [16]byte
	PackName    [16]byte
	Flags       uint32
	SecSize     uint32
	NSectors    uint32
	NTracks     uint32
	NCylinders  uint32
	SecPerCyl   uint32
	SecPerUnit  uint32
	RPM         uint16
	Interleave  uint16
	TrackSkew   uint16
	CylSkew     uint16
	HeadSwitch  uint32
	TrkSeek     uint32
	BBSize      uint32
	SBSize      uint32
	Magic2      uint32
	Checksum    uint16
	NPartitions uint16
}

// rawPartition is the fixed 16-byte on-disk layout of one partition table
// entry.
type rawPartition struct {
	Offset uint32
	Size   uint32
	FSize  uint32
	FSType uint8
	Frag   uint8
	CPG    uint16
}

func headerSize() int {
	return binary.Size(rawHeader{})
}

func partitionSize() int {
	return binary.Size(rawPartition{})
}

// LabelByteOffset returns the byte offset of the disklabel header within
// its BootBlockBuffer: LABELSECTOR*512 + LABELOFFSET (§6.1), independent of
// the underlying device's native sector size (§4.1).
func LabelByteOffset(labelSector, labelOffset int) int {
	return labelSector*disklabel.DefaultSectorSize + labelOffset
}

// RawLabelSize returns the total serialized size of a label: header plus
// MaxPartitions partition entries.
func RawLabelSize() int {
	return headerSize() + disklabel.MaxPartitions*partitionSize()
}

// Parse copies the label at LabelByteOffset(labelSector, labelOffset)
// within buf into a [disklabel.Label]. It verifies both magic numbers,
// zeroes unused partition slots, and clamps NPartitions to
// [disklabel.MaxPartitions].
//
// If no magic is found at all, the error is [disklabel.ErrNotFound] (a
// soft "this isn't a disklabel" outcome, not an I/O failure). If the
// primary magic matches but the secondary one doesn't, or the buffer is
// too small to hold a label, the error is [disklabel.ErrCorrupt].
//
// The returned bool is true if NPartitions exceeded MaxPartitions and had
// to be clamped; callers should surface that as a warning.
func Parse(buf []byte, labelSector, labelOffset int) (*disklabel.Label, bool, error) {
	off := LabelByteOffset(labelSector, labelOffset)
	hSize := headerSize()
	pSize := partitionSize()

	if off+hSize+disklabel.MaxPartitions*pSize > len(buf) {
		return nil, false, disklabel.ErrCorrupt.WithMessage(
			"boot block too small to hold a label at this offset")
	}

	var raw rawHeader
	if err := binary.Read(bytes.NewReader(buf[off:off+hSize]), binary.LittleEndian, &raw); err != nil {
		return nil, false, disklabel.ErrIOFailed.Wrap(err)
	}

	if raw.Magic != disklabel.DiskMagic {
		return nil, false, disklabel.ErrNotFound.WithMessage("no disklabel magic found")
	}
	if raw.Magic2 != disklabel.DiskMagic {
		return nil, false, disklabel.ErrCorrupt.WithMessage("magic2 does not match magic")
	}

	label := &disklabel.Label{
		Magic:       raw.Magic,
		Magic2:      raw.Magic2,
		DiskType:    disklabel.DiskType(raw.DiskType),
		TypeName:    raw.TypeName,
		PackName:    raw.PackName,
		Flags:       disklabel.LabelFlags(raw.Flags),
		SecSize:     raw.SecSize,
		NSectors:    raw.NSectors,
		NTracks:     raw.NTracks,
		NCylinders:  raw.NCylinders,
		SecPerCyl:   raw.SecPerCyl,
		SecPerUnit:  raw.SecPerUnit,
		RPM:         raw.RPM,
		Interleave:  raw.Interleave,
		TrackSkew:   raw.TrackSkew,
		CylSkew:     raw.CylSkew,
		HeadSwitch:  raw.HeadSwitch,
		TrkSeek:     raw.TrkSeek,
		BBSize:      raw.BBSize,
		SBSize:      raw.SBSize,
		NPartitions: raw.NPartitions,
		Checksum:    raw.Checksum,
	}

	partBuf := buf[off+hSize : off+hSize+disklabel.MaxPartitions*pSize]
	pr := bytes.NewReader(partBuf)
	for i := 0; i < disklabel.MaxPartitions; i++ {
		var rp rawPartition
		if err := binary.Read(pr, binary.LittleEndian, &rp); err != nil {
			return nil, false, disklabel.ErrIOFailed.Wrap(err)
		}
		label.Partitions[i] = disklabel.Partition{
			Offset: rp.Offset,
			Size:   rp.Size,
			FSize:  rp.FSize,
			FSType: disklabel.FSType(rp.FSType),
			Frag:   uint32(rp.Frag),
			CPG:    uint32(rp.CPG),
		}
	}

	clamped := label.ClampPartitionCount()
	return label, clamped, nil
}

// Serialize zeroes label.Checksum, computes the §4.2 XOR checksum over the
// header through the live partition entries, stores the result back into
// label.Checksum, and writes the full label (header plus all
// MaxPartitions partition slots, trailing ones zero-filled) into buf at
// LabelByteOffset(labelSector, labelOffset).
func Serialize(label *disklabel.Label, buf []byte, labelSector, labelOffset int) error {
	off := LabelByteOffset(labelSector, labelOffset)
	hSize := headerSize()
	pSize := partitionSize()

	if off+hSize+disklabel.MaxPartitions*pSize > len(buf) {
		return disklabel.ErrInvalidArgument.WithMessage(
			"boot block too small to hold a label at this offset")
	}

	label.ClampPartitionCount()
	label.Checksum = 0

	toRaw := func(checksum uint16) rawHeader {
		return rawHeader{
			Magic:       label.Magic,
			DiskType:    uint32(label.DiskType),
			TypeName:    label.TypeName,
			PackName:    label.PackName,
			Flags:       uint32(label.Flags),
			SecSize:     label.SecSize,
			NSectors:    label.NSectors,
			NTracks:     label.NTracks,
			NCylinders:  label.NCylinders,
			SecPerCyl:   label.SecPerCyl,
			SecPerUnit:  label.SecPerUnit,
			RPM:         label.RPM,
			Interleave:  label.Interleave,
			TrackSkew:   label.TrackSkew,
			CylSkew:     label.CylSkew,
			HeadSwitch:  label.HeadSwitch,
			TrkSeek:     label.TrkSeek,
			BBSize:      label.BBSize,
			SBSize:      label.SBSize,
			Magic2:      label.Magic2,
			Checksum:    checksum,
			NPartitions: label.NPartitions,
		}
	}

	partsBuf := make([]byte, disklabel.MaxPartitions*pSize)
	w := bytewriter.New(partsBuf)
	for i := 0; i < disklabel.MaxPartitions; i++ {
		p := label.Partitions[i]
		rp := rawPartition{
			Offset: p.Offset,
			Size:   p.Size,
			FSize:  p.FSize,
			FSType: uint8(p.FSType),
			Frag:   uint8(p.Frag),
			CPG:    uint16(p.CPG),
		}
		if err := binary.Write(w, binary.LittleEndian, rp); err != nil {
			return disklabel.ErrIOFailed.Wrap(err)
		}
	}

	headerBuf := make([]byte, hSize)
	if err := binary.Write(bytewriter.New(headerBuf), binary.LittleEndian, toRaw(0)); err != nil {
		return disklabel.ErrIOFailed.Wrap(err)
	}

	// Checksum range per §4.2: label start through &partitions[npartitions],
	// i.e. the header plus only the live partition entries.
	liveParts := partsBuf[:int(label.NPartitions)*pSize]
	sum := checksum.XOR16(append(append([]byte(nil), headerBuf...), liveParts...))
	label.Checksum = sum

	if err := binary.Write(bytewriter.New(headerBuf), binary.LittleEndian, toRaw(sum)); err != nil {
		return disklabel.ErrIOFailed.Wrap(err)
	}

	copy(buf[off:off+hSize], headerBuf)
	copy(buf[off+hSize:off+hSize+len(partsBuf)], partsBuf)
	return nil
}

// VerifyChecksum reports whether the label currently stored at the given
// offset has a checksum consistent with its own contents, letting callers
// (notably probe) distinguish a garbled header from one with an honest
// magic but a stale/corrupt checksum.
func VerifyChecksum(buf []byte, labelSector, labelOffset int) (bool, error) {
	label, _, err := Parse(buf, labelSector, labelOffset)
	if err != nil {
		return false, err
	}
	stored := label.Checksum

	scratch := make([]byte, len(buf))
	copy(scratch, buf)
	if err := Serialize(label, scratch, labelSector, labelOffset); err != nil {
		return false, err
	}
	return label.Checksum == stored, nil
}
