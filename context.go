package disklabel

import "io"

// DisplayMode selects how sector offsets are presented to and accepted
// from the user, per §4.4.
type DisplayMode int

const (
	DisplayModeSectors DisplayMode = iota
	DisplayModeCylinders
)

// ParentPartition is a non-owning reference to an MBR partition record
// owned by a parent label (§9 "Parent/child relation"). It is the stable
// struct accessor contract consumed from the parent MBR driver, an
// external collaborator per §6.3; this module never parses or duplicates
// MBR data itself.
type ParentPartition interface {
	// StartSector is the partition's first sector, in the device's native
	// sector size, relative to the start of the whole disk.
	StartSector() uint64
	// SizeSectors is the partition's length in the device's native sector
	// size.
	SizeSectors() uint64
	// SystemByte is the MBR partition-type byte.
	SystemByte() byte
}

// Context is the external collaborator that owns a device file descriptor,
// its geometry, and the optional parent MBR partition a label is nested
// in. Exactly one Context exists per device; operations against it are not
// reentrant (§5).
type Context interface {
	// Device returns the open, seekable stream for the underlying device
	// or image file. The Context owns this descriptor for its entire
	// lifetime; callers must not close it.
	Device() io.ReadWriteSeeker
	// DevicePath is used purely for diagnostics surfaced through InfoSink.
	DevicePath() string
	// SectorSize is the device's native sector size in bytes. It may
	// exceed [DefaultSectorSize]; on-disk label offsets are always in
	// 512-byte units regardless (§4.1).
	SectorSize() uint32
	// Heads, Sectors, and Cylinders give the device's native geometry, used
	// to seed a freshly initialized label.
	Heads() uint32
	Sectors() uint32
	Cylinders() uint32
	// Platform selects architecture-specific behavior (§flags.go).
	Platform() Platform
	// DisplayMode selects cylinder-mode vs sector-mode prompts and display.
	DisplayMode() DisplayMode
	// LabelSector and LabelOffset locate the embedded disklabel inside the
	// boot block; see [DefaultLabelSector] / [DefaultLabelOffset].
	LabelSector() int
	LabelOffset() int
	// BBSize is the boot-block size in bytes for this device.
	BBSize() uint32
	// Parent returns the containing MBR partition if this label is nested,
	// or (nil, false) if the label sits at the start of the whole device.
	Parent() (ParentPartition, bool)
}

// PromptService is the generic "ask the user" collaborator (§6.3). All
// operations may fail with [ErrUserCancel], which callers must propagate
// without changing any label state.
type PromptService interface {
	AskNumber(low, def, high int64, prompt string) (int64, error)
	AskYesNo(prompt string, def bool) (bool, error)
	AskString(prompt, def string) (string, error)
	AskPartNum(prompt string) (int, error)
}

// InfoSink is the external collaborator that surfaces warn/info/success
// messages keyed by device path (§6.3).
type InfoSink interface {
	Warn(devicePath, message string)
	Info(devicePath, message string)
	Success(devicePath, message string)
}
