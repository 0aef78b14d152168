// Package lifecycle implements LabelLifecycle (§4.6): the probe, create,
// read, write, and edit state machine over a single disklabel instance, and
// the label-driver vtable (§6.4/§9) that the surrounding partitioning
// framework holds as a capability set, grounded on the teacher's
// driver.BaseDriver orchestration pattern.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/hubert-he/disklabel"
	"github.com/hubert-he/disklabel/checksum"
	"github.com/hubert-he/disklabel/codec"
	"github.com/hubert-he/disklabel/geometry"
	"github.com/hubert-he/disklabel/partition"
	"github.com/hubert-he/disklabel/store"
)

// State is a label instance's position in the §4.6 state machine.
type State int

const (
	StateNone State = iota
	StateFresh
	StateLoaded
	StateDirty
)

// maxPromptValue bounds the edit-time performance-hint prompts, none of
// which are semantically load-bearing (§3.1).
const maxPromptValue = 1<<31 - 1

func isBSDFamilySystemByte(b byte) bool {
	switch b {
	case 0xA5, 0xA5 ^ 0x10, 0xA9, 0xA9 ^ 0x10, 0xA6, 0xA6 ^ 0x10:
		return true
	}
	return false
}

// validateGeometryFields checks secsize/nsectors/ntracks/ncylinders
// together, aggregating every violation with multierror rather than
// stopping at the first, so [Label.Edit] can reject the whole prompted
// set before committing any of it to the label (§4.6).
func validateGeometryFields(secsize, nsectors, ntracks, ncylinders int64) error {
	var result *multierror.Error
	if secsize <= 0 {
		result = multierror.Append(result, fmt.Errorf("sector size %d must be positive", secsize))
	}
	if nsectors <= 0 {
		result = multierror.Append(result, fmt.Errorf("sectors per track %d must be positive", nsectors))
	}
	if ntracks <= 0 {
		result = multierror.Append(result, fmt.Errorf("tracks %d must be positive", ntracks))
	}
	if ncylinders <= 0 {
		result = multierror.Append(result, fmt.Errorf("cylinders %d must be positive", ncylinders))
	}
	if err := result.ErrorOrNil(); err != nil {
		return disklabel.ErrInvalidArgument.Wrap(err)
	}
	return nil
}

// Driver is the capability set (§9 "Polymorphism via vtable") the generic
// partitioning framework holds against a BSD label instance.
type Driver interface {
	Probe(ctx disklabel.Context) (bool, error)
	Create(ctx disklabel.Context, prompts disklabel.PromptService) (bool, error)
	Write() error
	List() []partition.View
	PartAdd(prompts disklabel.PromptService, index int) error
	PartDelete(index int) error
	GetPart(index int) (partition.View, error)
	PartSetType(index int, fstype disklabel.FSType) error
	PartIsUsed(index int) bool
}

// Label is a single disklabel instance bound to a device [disklabel.Context],
// tracking its position in the §4.6 state machine.
type Label struct {
	ctx    disklabel.Context
	sink   disklabel.InfoSink
	label  *disklabel.Label
	editor *partition.Editor
	state  State
}

// New creates a Label bound to ctx, in [StateNone]. sink may be nil.
func New(ctx disklabel.Context, sink disklabel.InfoSink) *Label {
	return &Label{ctx: ctx, sink: sink, state: StateNone}
}

// State reports the label's current lifecycle state.
func (l *Label) State() State { return l.state }

// Raw exposes the underlying [disklabel.Label] for callers that need direct
// field access (e.g. display or serialization helpers outside this package).
func (l *Label) Raw() *disklabel.Label { return l.label }

func (l *Label) warn(message string) {
	if l.sink != nil {
		l.sink.Warn(l.ctx.DevicePath(), message)
	}
}

// Probe checks, for a nested context, that the bound parent partition is a
// BSD-family type with a non-zero start sector, then delegates to Read.
// A negative BSD-family check or a read that finds no magic both report
// (false, nil): probe failure is a soft outcome, never an error (§7).
func (l *Label) Probe(ctx disklabel.Context) (bool, error) {
	if parent, nested := ctx.Parent(); nested {
		if !isBSDFamilySystemByte(parent.SystemByte()) {
			return false, nil
		}
		if parent.StartSector() == 0 {
			l.warn("nested BSD partition candidate has start sector 0")
			return false, nil
		}
	}
	return l.Read(ctx)
}

// Read loads and parses the label at ctx. A "no magic" outcome is reported
// as (false, nil) rather than an error, per §7.
func (l *Label) Read(ctx disklabel.Context) (bool, error) {
	buf, err := store.Read(ctx)
	if err != nil {
		return false, err
	}

	parsed, clamped, err := codec.Parse(buf, ctx.LabelSector(), ctx.LabelOffset())
	if errors.Is(err, disklabel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if clamped {
		l.warn("npartitions exceeded MaxPartitions on read; extra slots discarded")
	}

	l.ctx = ctx
	l.label = parsed
	l.editor = partition.NewEditor(parsed)
	l.state = StateLoaded
	return true, nil
}

// Create asks the user for confirmation, initializes a fresh label using
// ctx's own geometry and the §4.5 partition conventions, and transitions to
// [StateFresh]. A "no" answer is a non-error no-op per §4.6.
func (l *Label) Create(ctx disklabel.Context, prompts disklabel.PromptService) (bool, error) {
	return l.create(ctx, prompts, ctx.Heads(), ctx.Sectors(), ctx.Cylinders(), ctx.SectorSize())
}

// CreatePreset is [Create], except the heads/sectors/cylinders/sector-size
// geometry comes from the preset that [geometry.PresetBySlug] finds instead of
// ctx's own geometry (§10.2, §12.5: "create may be given a preset name
// instead of raw geometry numbers"). An unknown slug fails with
// [disklabel.ErrNotFound] before any confirmation prompt is shown.
func (l *Label) CreatePreset(ctx disklabel.Context, prompts disklabel.PromptService, presetSlug string) (bool, error) {
	preset, err := geometry.PresetBySlug(presetSlug)
	if err != nil {
		return false, err
	}
	return l.create(ctx, prompts, preset.Heads, preset.Sectors, preset.Cylinders, preset.SecSize)
}

func (l *Label) create(
	ctx disklabel.Context,
	prompts disklabel.PromptService,
	heads, sectors, cylinders, secSize uint32,
) (bool, error) {
	confirmed, err := prompts.AskYesNo("create a new disklabel on "+ctx.DevicePath()+"?", false)
	if err != nil {
		return false, err
	}
	if !confirmed {
		return false, nil
	}

	parent, nested := ctx.Parent()
	if nested && !isBSDFamilySystemByte(parent.SystemByte()) {
		return false, disklabel.ErrInvalidArgument.WithMessage(
			"nested context's parent partition is not a BSD-family type")
	}

	secPerCyl := geometry.SecPerCyl(heads, sectors)
	label := &disklabel.Label{
		Magic:      disklabel.DiskMagic,
		Magic2:     disklabel.DiskMagic,
		Flags:      disklabel.DefaultFlags(ctx.Platform()),
		SecSize:    secSize,
		NSectors:   sectors,
		NTracks:    heads,
		NCylinders: cylinders,
		SecPerCyl:  secPerCyl,
		BBSize:     ctx.BBSize(),
		SBSize:     disklabel.DefaultSBSize,
	}
	label.SecPerUnit = label.SecPerCyl * label.NCylinders

	l.ctx = ctx
	l.label = label
	l.editor = partition.NewEditor(label)
	l.editor.InitDefaults(parent, nested)
	l.state = StateFresh
	return true, nil
}

// Write serializes and stores the label, preserving any bootstrap bytes
// already present outside the label region, recomputes the Alpha
// boot-block checksum when LabelSector()==0 on an Alpha context, and always
// syncs afterward (§4.6, §5).
func (l *Label) Write() error {
	buf, err := store.Read(l.ctx)
	if err != nil {
		return err
	}

	if err := codec.Serialize(l.label, buf, l.ctx.LabelSector(), l.ctx.LabelOffset()); err != nil {
		return err
	}

	if l.ctx.LabelSector() == 0 && l.ctx.Platform() == disklabel.PlatformAlpha {
		if err := checksum.AlphaBootChecksum(buf[:512]); err != nil {
			return err
		}
	}

	if err := store.Write(l.ctx, buf); err != nil {
		return err
	}
	sync(l.ctx)

	l.state = StateLoaded
	if l.editor != nil {
		l.editor.Dirty = false
	}
	return nil
}

// syncer is satisfied by devices that support an explicit flush, e.g.
// *os.File. Devices that don't (such as in-memory test doubles) make Sync
// a no-op, consistent with its best-effort, non-correctness-bearing role
// (§5).
type syncer interface {
	Sync() error
}

func sync(ctx disklabel.Context) {
	if s, ok := ctx.Device().(syncer); ok {
		_ = s.Sync()
	}
}

// Edit prompts for the performance hints and, on Alpha/ia64 platforms, the
// raw geometry fields, recomputing secperunit afterward (§4.6). It marks
// the label dirty.
func (l *Label) Edit(prompts disklabel.PromptService) error {
	if l.ctx.Platform().UsesExtraGeometryPrompts() {
		secsize, err := prompts.AskNumber(1, int64(l.label.SecSize), maxPromptValue, "sector size")
		if err != nil {
			return err
		}
		nsectors, err := prompts.AskNumber(1, int64(l.label.NSectors), maxPromptValue, "sectors per track")
		if err != nil {
			return err
		}
		ntracks, err := prompts.AskNumber(1, int64(l.label.NTracks), maxPromptValue, "tracks")
		if err != nil {
			return err
		}
		ncylinders, err := prompts.AskNumber(1, int64(l.label.NCylinders), maxPromptValue, "cylinders")
		if err != nil {
			return err
		}

		if err := validateGeometryFields(secsize, nsectors, ntracks, ncylinders); err != nil {
			return err
		}

		l.label.SecSize = uint32(secsize)
		l.label.NSectors = uint32(nsectors)
		l.label.NTracks = uint32(ntracks)
		l.label.NCylinders = uint32(ncylinders)
	}

	secPerCylDefault := int64(l.label.NSectors) * int64(l.label.NTracks)
	secPerCyl, err := prompts.AskNumber(1, secPerCylDefault, maxPromptValue, "sectors per cylinder")
	if err != nil {
		return err
	}
	rpm, err := prompts.AskNumber(0, int64(l.label.RPM), maxPromptValue, "rpm")
	if err != nil {
		return err
	}
	interleave, err := prompts.AskNumber(0, int64(l.label.Interleave), maxPromptValue, "interleave")
	if err != nil {
		return err
	}
	trackskew, err := prompts.AskNumber(0, int64(l.label.TrackSkew), maxPromptValue, "track skew")
	if err != nil {
		return err
	}
	cylskew, err := prompts.AskNumber(0, int64(l.label.CylSkew), maxPromptValue, "cylinder skew")
	if err != nil {
		return err
	}
	headswitch, err := prompts.AskNumber(0, int64(l.label.HeadSwitch), maxPromptValue, "head switch time")
	if err != nil {
		return err
	}
	trkseek, err := prompts.AskNumber(0, int64(l.label.TrkSeek), maxPromptValue, "track-to-track seek time")
	if err != nil {
		return err
	}

	l.label.SecPerCyl = uint32(secPerCyl)
	l.label.RPM = uint16(rpm)
	l.label.Interleave = uint16(interleave)
	l.label.TrackSkew = uint16(trackskew)
	l.label.CylSkew = uint16(cylskew)
	l.label.HeadSwitch = uint32(headswitch)
	l.label.TrkSeek = uint32(trkseek)
	l.label.SecPerUnit = l.label.SecPerCyl * l.label.NCylinders

	l.state = StateDirty
	if l.editor != nil {
		l.editor.Dirty = true
	}
	return nil
}

// List returns a view of every partition slot up to NPartitions.
func (l *Label) List() []partition.View {
	views := make([]partition.View, 0, l.label.NPartitions)
	for i := 0; i < int(l.label.NPartitions); i++ {
		view, err := l.editor.Get(i, l.label.SecPerCyl, l.ctx.DisplayMode())
		if err != nil {
			continue
		}
		views = append(views, view)
	}
	return views
}

// PartAdd delegates to the partition editor and marks the label dirty.
func (l *Label) PartAdd(prompts disklabel.PromptService, index int) error {
	if err := l.editor.Add(l.ctx, prompts, index); err != nil {
		return err
	}
	l.state = StateDirty
	return nil
}

// PartDelete delegates to the partition editor and marks the label dirty.
func (l *Label) PartDelete(index int) error {
	if err := l.editor.Delete(index); err != nil {
		return err
	}
	l.state = StateDirty
	return nil
}

// GetPart delegates to the partition editor.
func (l *Label) GetPart(index int) (partition.View, error) {
	return l.editor.Get(index, l.label.SecPerCyl, l.ctx.DisplayMode())
}

// PartSetType delegates to the partition editor and marks the label dirty
// if the type actually changed.
func (l *Label) PartSetType(index int, fstype disklabel.FSType) error {
	if err := l.editor.SetType(index, fstype); err != nil {
		return err
	}
	if l.editor.Dirty {
		l.state = StateDirty
	}
	return nil
}

// PartIsUsed delegates to the partition editor.
func (l *Label) PartIsUsed(index int) bool {
	return l.editor.IsUsed(index)
}

// LinkPartition delegates to the partition editor's Link operation and
// marks the label dirty; it is one of the top-level entry points named in
// §6.4.
func (l *Label) LinkPartition(parent disklabel.ParentPartition, bsdIndex int) error {
	if err := l.editor.Link(parent, bsdIndex); err != nil {
		return err
	}
	l.state = StateDirty
	return nil
}

var _ Driver = (*Label)(nil)
