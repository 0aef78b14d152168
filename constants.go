package disklabel

// DiskMagic is the fixed 32-bit sentinel that must appear as both d_magic
// and d_magic2 on every valid on-disk label.
const DiskMagic uint32 = 0x82564557

// MaxPartitions is the fixed upper bound on partition slots in a label,
// named "a" through "p".
const MaxPartitions = 16

// DefaultBBSize is the default boot-block size in bytes: the unit of I/O
// for a label plus its surrounding bootstrap code.
const DefaultBBSize = 8192

// DefaultSBSize is the default super-block size in bytes, carried in the
// label purely for informational purposes.
const DefaultSBSize = 8192

// DefaultSectorSize is the sector size, in bytes, that all on-disk label
// offsets and partition fields are expressed in, regardless of the
// underlying device's native sector size.
const DefaultSectorSize = 512

// DefaultLabelSector and DefaultLabelOffset locate the disklabel header
// inside the boot block on the most common platform layout. Other
// platforms locate it differently; see [Context.LabelSector] and
// [Context.LabelOffset].
const (
	DefaultLabelSector = 1
	DefaultLabelOffset = 0
)
