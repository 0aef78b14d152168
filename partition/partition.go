// Package partition implements PartitionEditor (§4.5): create, delete, edit,
// and link partitions while maintaining npartitions and the MBR-to-BSD
// filesystem-type mapping. The slot-occupancy tracking is grounded on the
// teacher's drivers/common.Allocator bitmap pattern.
package partition

import (
	"fmt"

	"github.com/boljen/go-bitmap"
	"github.com/hashicorp/go-multierror"
	"github.com/hubert-he/disklabel"
	"github.com/hubert-he/disklabel/geometry"
)

// Editor wraps a [disklabel.Label] and tracks which partition slots are
// occupied with a bitmap, mirroring the teacher's block allocator. This
// bitmap, not Partition.Used, is the authoritative occupancy record that
// IsUsed/Get/Validate read from.
type Editor struct {
	label    *disklabel.Label
	occupied bitmap.Bitmap
	Dirty    bool
}

// NewEditor wraps label, seeding the occupancy bitmap from its current
// partition table.
func NewEditor(label *disklabel.Label) *Editor {
	e := &Editor{
		label:    label,
		occupied: bitmap.New(disklabel.MaxPartitions),
	}
	for i := 0; i < disklabel.MaxPartitions; i++ {
		e.occupied.Set(i, label.Partitions[i].Used())
	}
	return e
}

// View is the read-only projection of a partition slot returned by Get,
// including the display-mode conversions from §4.4 and the fragment hints
// populated per §4.5.
type View struct {
	Index  int
	Letter byte
	Used   bool
	Offset uint32
	Size   uint32
	FSType disklabel.FSType

	DisplayStart       uint64
	DisplayStartMarker bool
	DisplayEnd         uint64
	DisplayEndMarker   bool

	FSize *uint32
	Bsize *uint32
	CPG   *uint32
}

// InitDefaults sets up the initial partition conventions of §4.5: if
// nested, npartitions=4 with slot 2 mirroring the DOS parent and slot 3
// spanning the whole disk; otherwise npartitions=3 with slot 2 spanning the
// whole disk. All other initial slots are left unused.
func (e *Editor) InitDefaults(parent disklabel.ParentPartition, nested bool) {
	for i := range e.label.Partitions {
		e.label.Partitions[i] = disklabel.Partition{}
		e.occupied.Set(i, false)
	}

	whole := disklabel.Partition{Offset: 0, Size: e.label.SecPerUnit, FSType: disklabel.FSUnused}

	if nested {
		e.label.NPartitions = 4
		e.label.Partitions[2] = disklabel.Partition{
			Offset: uint32(parent.StartSector()),
			Size:   uint32(parent.SizeSectors()),
			FSType: disklabel.FSUnused,
		}
		e.label.Partitions[3] = whole
		e.occupied.Set(2, true)
		e.occupied.Set(3, true)
	} else {
		e.label.NPartitions = 3
		e.label.Partitions[2] = whole
		e.occupied.Set(2, true)
	}
	e.Dirty = true
}

// Add prompts for the first/last sector of a new partition within the
// allowed window (§4.4), sets partitions[index] accordingly, and extends
// npartitions to max(npartitions, index+1). index must be below
// [disklabel.MaxPartitions].
func (e *Editor) Add(ctx disklabel.Context, prompts disklabel.PromptService, index int) error {
	if index < 0 || index >= disklabel.MaxPartitions {
		return disklabel.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("partition index %d out of range", index))
	}

	low, high := geometry.PromptBounds(uint64(e.label.SecPerUnit))
	if parent, nested := ctx.Parent(); nested {
		low = parent.StartSector()
		high = parent.StartSector() + parent.SizeSectors() - 1
	}

	secPerCyl := uint64(e.label.SecPerCyl)
	letter := string(disklabel.PartitionLetter(index))

	firstEntry, err := prompts.AskNumber(int64(low), int64(low), int64(high),
		"first sector for partition "+letter)
	if err != nil {
		return err
	}
	lastEntry, err := prompts.AskNumber(int64(low), int64(high), int64(high),
		"last sector for partition "+letter)
	if err != nil {
		return err
	}

	first := uint64(firstEntry)
	last := uint64(lastEntry)
	if ctx.DisplayMode() == disklabel.DisplayModeCylinders {
		first = geometry.FirstSectorFromCylinder(uint64(firstEntry), secPerCyl)
		last = geometry.LastSectorFromCylinder(uint64(lastEntry), secPerCyl)
	}
	if last < first {
		return disklabel.ErrInvalidArgument.WithMessage("last sector precedes first sector")
	}

	e.label.Partitions[index] = disklabel.Partition{
		Offset: uint32(first),
		Size:   uint32(last-first) + 1,
		FSType: disklabel.FSUnused,
	}
	e.occupied.Set(index, true)
	if int(e.label.NPartitions) < index+1 {
		e.label.NPartitions = uint16(index + 1)
	}
	e.Dirty = true
	return nil
}

// Delete clears slot index. If it was the last live slot, npartitions
// shrinks past every trailing zero-sized slot (§4.5, invariant 4 of §8.1).
func (e *Editor) Delete(index int) error {
	if index < 0 || index >= disklabel.MaxPartitions {
		return disklabel.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("partition index %d out of range", index))
	}

	e.label.Partitions[index] = disklabel.Partition{}
	e.occupied.Set(index, false)

	for int(e.label.NPartitions) > 0 && !e.occupied.Get(int(e.label.NPartitions)-1) {
		e.label.NPartitions--
	}
	e.Dirty = true
	return nil
}

// Get returns a [View] of slot index, populating fsize/bsize/cpg per §4.5
// and the display-mode conversions from secPerCyl.
func (e *Editor) Get(index int, secPerCyl uint32, mode disklabel.DisplayMode) (View, error) {
	if index < 0 || index >= disklabel.MaxPartitions {
		return View{}, disklabel.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("partition index %d out of range", index))
	}

	p := e.label.Partitions[index]
	view := View{
		Index:  index,
		Letter: disklabel.PartitionLetter(index),
		Used:   e.occupied.Get(index),
		Offset: p.Offset,
		Size:   p.Size,
		FSType: p.FSType,
	}

	if mode == disklabel.DisplayModeCylinders {
		view.DisplayStart, view.DisplayStartMarker = geometry.DisplayStart(uint64(p.Offset), uint64(secPerCyl))
		view.DisplayEnd, view.DisplayEndMarker = geometry.DisplayEnd(uint64(p.Offset), uint64(p.Size), uint64(secPerCyl))
	} else {
		view.DisplayStart = uint64(p.Offset)
		if p.Size > 0 {
			view.DisplayEnd = uint64(p.Offset) + uint64(p.Size) - 1
		}
	}

	if p.FSType.HasFragmentFields() {
		fsize := p.FSize
		view.FSize = &fsize
		bsize := p.BlockSize()
		view.Bsize = &bsize
		if p.FSType == disklabel.FSBSDFFS {
			cpg := p.CPG
			view.CPG = &cpg
		}
	}

	return view, nil
}

// SetType updates slot index's fstype. It is a no-op if the type is
// unchanged; otherwise it marks the editor dirty.
func (e *Editor) SetType(index int, fstype disklabel.FSType) error {
	if index < 0 || index >= int(e.label.NPartitions) {
		return disklabel.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("partition index %d not in use", index))
	}

	if e.label.Partitions[index].FSType == fstype {
		return nil
	}
	e.label.Partitions[index].FSType = fstype
	e.Dirty = true
	return nil
}

// mbrSysByteToFSType translates an MBR partition-type byte to a BSD fstype
// per §4.5.
func mbrSysByteToFSType(sysByte byte) disklabel.FSType {
	switch sysByte {
	case 0x01, 0x04, 0x06, 0xe1, 0xe3, 0xf2:
		return disklabel.FSMSDOSOrExt2
	case 0x07:
		return disklabel.FSHPFS
	default:
		return disklabel.FSOther
	}
}

// Link copies offset/size from an MBR partition into partitions[bsdIndex],
// translating the MBR system byte to a BSD fstype via
// [mbrSysByteToFSType], and extends npartitions as needed.
func (e *Editor) Link(parent disklabel.ParentPartition, bsdIndex int) error {
	if bsdIndex < 0 || bsdIndex >= disklabel.MaxPartitions {
		return disklabel.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("partition index %d out of range", bsdIndex))
	}

	e.label.Partitions[bsdIndex] = disklabel.Partition{
		Offset: uint32(parent.StartSector()),
		Size:   uint32(parent.SizeSectors()),
		FSType: mbrSysByteToFSType(parent.SystemByte()),
	}
	e.occupied.Set(bsdIndex, true)
	if int(e.label.NPartitions) < bsdIndex+1 {
		e.label.NPartitions = uint16(bsdIndex + 1)
	}
	e.Dirty = true
	return nil
}

// IsUsed reports whether slot index holds a live partition. The occupancy
// bitmap, not Partition.Used, is the source of truth here: every mutator in
// this file (Add, Delete, Link, InitDefaults) updates it, so it reflects the
// editor's own bookkeeping even if label.Partitions is later inspected or
// patched directly by a caller outside this package.
func (e *Editor) IsUsed(index int) bool {
	if index < 0 || index >= disklabel.MaxPartitions {
		return false
	}
	return e.occupied.Get(index)
}

// Validate checks the partition table for internal consistency, aggregating
// every violation found via multierror rather than stopping at the first.
func (e *Editor) Validate() error {
	var result *multierror.Error

	if e.label.NPartitions > disklabel.MaxPartitions {
		result = multierror.Append(result, fmt.Errorf(
			"npartitions %d exceeds MaxPartitions %d", e.label.NPartitions, disklabel.MaxPartitions))
	}
	for i := int(e.label.NPartitions); i < disklabel.MaxPartitions; i++ {
		if e.occupied.Get(i) {
			result = multierror.Append(result, fmt.Errorf(
				"slot %d beyond npartitions is not zero-filled", i))
		}
	}
	for i, p := range e.label.Partitions {
		// The occupancy bitmap must agree with the partition slice itself;
		// a mismatch means something outside this editor's mutators changed
		// label.Partitions without going through Add/Delete/Link.
		if e.occupied.Get(i) != p.Used() {
			result = multierror.Append(result, fmt.Errorf(
				"slot %d occupancy bitmap disagrees with partition table", i))
		}
		if p.Used() && uint64(p.Offset)+uint64(p.Size) > uint64(e.label.SecPerUnit) {
			result = multierror.Append(result, fmt.Errorf(
				"slot %d extends past secperunit", i))
		}
	}
	return result.ErrorOrNil()
}
