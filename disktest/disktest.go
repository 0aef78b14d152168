// Package disktest provides an in-memory [disklabel.Context] and supporting
// test doubles, grounded on the teacher's testing.LoadDiskImage /
// CreateRandomImage helpers: a byte slice wrapped with
// [bytesextra.NewReadWriteSeeker] stands in for a real block device so
// every other package's tests can exercise LabelStore/LabelCodec/
// LabelLifecycle without touching the filesystem.
package disktest

import (
	"crypto/rand"
	"io"
	"testing"

	"github.com/hubert-he/disklabel"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

// CreateRandomImage returns totalBytes of random data, failing t if the
// system RNG errors.
func CreateRandomImage(t *testing.T, totalBytes uint) []byte {
	backingData := make([]byte, totalBytes)
	_, err := rand.Read(backingData)
	require.NoErrorf(t, err, "failed to initialize %d random bytes", totalBytes)
	return backingData
}

// ParentPartitionStub is a fixed [disklabel.ParentPartition] for tests that
// need a nested label.
type ParentPartitionStub struct {
	Start  uint64
	Size   uint64
	SysVal byte
}

func (p ParentPartitionStub) StartSector() uint64 { return p.Start }
func (p ParentPartitionStub) SizeSectors() uint64 { return p.Size }
func (p ParentPartitionStub) SystemByte() byte    { return p.SysVal }

// Context is an in-memory implementation of [disklabel.Context] backed by a
// plain byte slice, for use in tests only.
type Context struct {
	device      io.ReadWriteSeeker
	devicePath  string
	sectorSize  uint32
	heads       uint32
	sectors     uint32
	cylinders   uint32
	platform    disklabel.Platform
	displayMode disklabel.DisplayMode
	labelSector int
	labelOffset int
	bbSize      uint32
	parent      disklabel.ParentPartition
}

// NewContext creates a non-nested in-memory context with the given device
// image and geometry.
func NewContext(image []byte, sectorSize, heads, sectors, cylinders uint32) *Context {
	return &Context{
		device:      bytesextra.NewReadWriteSeeker(image),
		devicePath:  "/dev/test0",
		sectorSize:  sectorSize,
		heads:       heads,
		sectors:     sectors,
		cylinders:   cylinders,
		platform:    disklabel.PlatformGeneric,
		displayMode: disklabel.DisplayModeSectors,
		labelSector: disklabel.DefaultLabelSector,
		labelOffset: disklabel.DefaultLabelOffset,
		bbSize:      disklabel.DefaultBBSize,
	}
}

// WithParent returns a copy of ctx nested inside the given parent MBR
// partition.
func (c *Context) WithParent(parent disklabel.ParentPartition) *Context {
	clone := *c
	clone.parent = parent
	return &clone
}

// WithPlatform returns a copy of ctx tagged with the given platform.
func (c *Context) WithPlatform(p disklabel.Platform) *Context {
	clone := *c
	clone.platform = p
	return &clone
}

// WithDisplayMode returns a copy of ctx using the given display mode.
func (c *Context) WithDisplayMode(m disklabel.DisplayMode) *Context {
	clone := *c
	clone.displayMode = m
	return &clone
}

// WithLabelLocation returns a copy of ctx with a different LABELSECTOR/
// LABELOFFSET pair.
func (c *Context) WithLabelLocation(sector, offset int) *Context {
	clone := *c
	clone.labelSector = sector
	clone.labelOffset = offset
	return &clone
}

func (c *Context) Device() io.ReadWriteSeeker { return c.device }

func (c *Context) DevicePath() string            { return c.devicePath }
func (c *Context) SectorSize() uint32             { return c.sectorSize }
func (c *Context) Heads() uint32                  { return c.heads }
func (c *Context) Sectors() uint32                { return c.sectors }
func (c *Context) Cylinders() uint32              { return c.cylinders }
func (c *Context) Platform() disklabel.Platform   { return c.platform }
func (c *Context) DisplayMode() disklabel.DisplayMode {
	return c.displayMode
}
func (c *Context) LabelSector() int { return c.labelSector }
func (c *Context) LabelOffset() int { return c.labelOffset }
func (c *Context) BBSize() uint32   { return c.bbSize }

func (c *Context) Parent() (disklabel.ParentPartition, bool) {
	if c.parent == nil {
		return nil, false
	}
	return c.parent, true
}

// RecordingSink is an [disklabel.InfoSink] that just remembers every
// message it was given, for assertions.
type RecordingSink struct {
	Warnings  []string
	Infos     []string
	Successes []string
}

func (s *RecordingSink) Warn(devicePath, message string) {
	s.Warnings = append(s.Warnings, devicePath+": "+message)
}

func (s *RecordingSink) Info(devicePath, message string) {
	s.Infos = append(s.Infos, devicePath+": "+message)
}

func (s *RecordingSink) Success(devicePath, message string) {
	s.Successes = append(s.Successes, devicePath+": "+message)
}

// ScriptedPrompts is a [disklabel.PromptService] that answers each Ask*
// call with a pre-programmed value, in call order, for deterministic
// tests. If it runs out of scripted answers it returns the prompt's
// default value rather than failing, except AskPartNum, which has no
// default and returns [disklabel.ErrUserCancel].
type ScriptedPrompts struct {
	Numbers  []int64
	YesNo    []bool
	Strings  []string
	PartNums []int
	Cancel   bool
}

func (s *ScriptedPrompts) AskNumber(low, def, high int64, prompt string) (int64, error) {
	if s.Cancel {
		return 0, disklabel.ErrUserCancel
	}
	if len(s.Numbers) == 0 {
		return def, nil
	}
	v := s.Numbers[0]
	s.Numbers = s.Numbers[1:]
	return v, nil
}

func (s *ScriptedPrompts) AskYesNo(prompt string, def bool) (bool, error) {
	if s.Cancel {
		return false, disklabel.ErrUserCancel
	}
	if len(s.YesNo) == 0 {
		return def, nil
	}
	v := s.YesNo[0]
	s.YesNo = s.YesNo[1:]
	return v, nil
}

func (s *ScriptedPrompts) AskString(prompt, def string) (string, error) {
	if s.Cancel {
		return "", disklabel.ErrUserCancel
	}
	if len(s.Strings) == 0 {
		return def, nil
	}
	v := s.Strings[0]
	s.Strings = s.Strings[1:]
	return v, nil
}

func (s *ScriptedPrompts) AskPartNum(prompt string) (int, error) {
	if s.Cancel {
		return 0, disklabel.ErrUserCancel
	}
	if len(s.PartNums) == 0 {
		return 0, disklabel.ErrUserCancel
	}
	v := s.PartNums[0]
	s.PartNums = s.PartNums[1:]
	return v, nil
}
