package disklabel

// Platform distinguishes the handful of behaviors that differ by CPU
// architecture: the boot-block checksum variant, the default label flags,
// and the MSDOS/ext2 fstype display-name aliasing (see the Open Question in
// DESIGN.md).
type Platform int

const (
	PlatformGeneric Platform = iota
	PlatformAlpha
	PlatformIA64
)

// UsesExtraGeometryPrompts reports whether lifecycle.Label.Edit should
// additionally prompt for secsize/nsectors/ntracks/ncylinders, per §4.6.
func (p Platform) UsesExtraGeometryPrompts() bool {
	return p == PlatformAlpha || p == PlatformIA64
}

// DiskType is the small display-only enum naming the kind of physical
// drive a label describes.
type DiskType uint16

const (
	DiskTypeSMD DiskType = iota + 1
	DiskTypeMSCP
	DiskTypeDEC
	DiskTypeSCSI
	DiskTypeESDI
	DiskTypeST506
	DiskTypeHPIB
	DiskTypeHPFL
	DiskTypeType9
	DiskTypeFloppy
)

func (t DiskType) String() string {
	switch t {
	case DiskTypeSMD:
		return "SMD"
	case DiskTypeMSCP:
		return "MSCP"
	case DiskTypeDEC:
		return "DEC"
	case DiskTypeSCSI:
		return "SCSI"
	case DiskTypeESDI:
		return "ESDI"
	case DiskTypeST506:
		return "ST506"
	case DiskTypeHPIB:
		return "HP-IB"
	case DiskTypeHPFL:
		return "HP-FL"
	case DiskTypeType9:
		return "type 9"
	case DiskTypeFloppy:
		return "floppy"
	default:
		return "unknown"
	}
}

// LabelFlags is the d_flags bitfield.
type LabelFlags uint32

const (
	// FlagRemovable marks a removable-media device.
	FlagRemovable LabelFlags = 1 << iota
	// FlagECC indicates the drive supports ECC.
	FlagECC
	// FlagBadSect indicates the drive does bad-sector forwarding.
	FlagBadSect
	// FlagDOSPart is set by default when initializing a label on every
	// platform except Alpha; it records that the label may coexist with a
	// DOS partition table.
	FlagDOSPart
)

// DefaultFlags returns the flags a freshly initialized label should carry
// for the given platform: Alpha does not set FlagDOSPart by default.
func DefaultFlags(platform Platform) LabelFlags {
	if platform == PlatformAlpha {
		return 0
	}
	return FlagDOSPart
}

// FSType is the one-byte filesystem-type tag stored in a partition entry.
// The numeric values are fixed by the on-disk format; only the display
// name varies by platform (BSD_FS_MSDOS vs BSD_FS_EXT2 share the same
// code, per the Open Question in §9 of the spec).
type FSType uint8

const (
	FSUnused FSType = iota
	FSSwap
	FSV6
	FSV7
	FSSysV
	FS41BSD
	FSV8
	FSBSDFFS
	FSMSDOSOrExt2 // BSD_FS_MSDOS on non-Alpha, BSD_FS_EXT2 on Alpha
	FSBSDLFS
	FSOther
	FSHPFS
	FSISO9660
	FSBoot
	FSAdos
	FSHFS
	FSAdvFS
)

// Name returns the platform-appropriate display name for the fstype,
// resolving the FSMSDOSOrExt2 alias per platform.
func (t FSType) Name(platform Platform) string {
	if t == FSMSDOSOrExt2 {
		if platform == PlatformAlpha {
			return "ext2"
		}
		return "MSDOS"
	}
	switch t {
	case FSUnused:
		return "unused"
	case FSSwap:
		return "swap"
	case FSV6:
		return "V6"
	case FSV7:
		return "V7"
	case FSV8:
		return "V8"
	case FSBSDFFS:
		return "4.2BSD"
	case FSSysV:
		return "SysV"
	case FS41BSD:
		return "4.1BSD"
	case FSOther:
		return "other"
	case FSHPFS:
		return "HPFS"
	case FSISO9660:
		return "ISO9660"
	case FSBoot:
		return "boot"
	case FSAdos:
		return "ADOS"
	case FSHFS:
		return "HFS"
	case FSBSDLFS:
		return "4.4LFS"
	case FSAdvFS:
		return "AdvFS"
	default:
		return "unknown"
	}
}

// HasFragmentFields reports whether fsize/frag/cpg are meaningful for this
// fstype, per §3.1: only UNUSED and BSDFFS populate them.
func (t FSType) HasFragmentFields() bool {
	return t == FSUnused || t == FSBSDFFS
}

// PartitionLetter returns the user-facing letter ('a'+index) for a
// zero-based partition slot index, per §4.5.
func PartitionLetter(index int) byte {
	return byte('a' + index)
}

// PartitionIndex is the inverse of [PartitionLetter].
func PartitionIndex(letter byte) (int, error) {
	if letter < 'a' || int(letter-'a') >= MaxPartitions {
		return 0, ErrInvalidArgument.WithMessage("partition letter out of range")
	}
	return int(letter - 'a'), nil
}
