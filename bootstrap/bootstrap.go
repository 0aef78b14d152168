// Package bootstrap implements BootstrapInstaller (§4.7): composing a
// two-stage boot program into a [disklabel.BootBlockBuffer] while
// preserving the embedded disklabel that occupies the same byte range,
// grounded on the teacher's cmd/unzipimage file-open idiom for reading the
// stage files.
package bootstrap

import (
	"io"
	"os"
	"path/filepath"

	"github.com/hubert-he/disklabel"
	"github.com/hubert-he/disklabel/checksum"
	"github.com/hubert-he/disklabel/codec"
	"github.com/hubert-he/disklabel/store"
)

// DefaultBaseName returns "sd" for SCSI disk types and "wd" otherwise, per
// §4.7's default base-name-from-dtype rule.
func DefaultBaseName(diskType disklabel.DiskType) string {
	if diskType == disklabel.DiskTypeSCSI {
		return "sd"
	}
	return "wd"
}

// Installer composes a first-stage and second-stage boot program into a
// device's boot block, per the exact ordering required by §4.7: the
// embedded disklabel region is saved, zeroed, checked for second-stage
// overlap, and restored before anything is written back to the device.
type Installer struct {
	// Dir is the directory containing the bootstrap stage files.
	Dir string
}

// Install reads "<baseName>boot" as the first stage and "boot<baseName>" as
// the second stage, composes them into ctx's boot block around the
// existing embedded label, and writes the result via [store.Write].
//
// Step ordering follows §4.7 precisely: on a detected overlap the device is
// never written, leaving it untouched (S6).
func (installer *Installer) Install(ctx disklabel.Context, baseName string) error {
	secSize := int(ctx.SectorSize())
	bbSize := int(ctx.BBSize())

	firstStagePath := filepath.Join(installer.Dir, baseName+"boot")
	firstStage, err := readExactly(firstStagePath, secSize)
	if err != nil {
		return err
	}

	secondStagePath := filepath.Join(installer.Dir, "boot"+baseName)
	secondStage, err := readExactly(secondStagePath, bbSize-secSize)
	if err != nil {
		return err
	}

	buf, err := store.Read(ctx)
	if err != nil {
		return err
	}

	labelOff := codec.LabelByteOffset(ctx.LabelSector(), ctx.LabelOffset())
	labelSize := codec.RawLabelSize()
	labelEnd := labelOff + labelSize

	copy(buf[:secSize], firstStage)

	// Step 2-3: save the label region, then zero it, before the second
	// stage is laid down over the same bytes.
	savedLabel := make([]byte, labelSize)
	copy(savedLabel, buf[labelOff:labelEnd])
	for i := labelOff; i < labelEnd; i++ {
		buf[i] = 0
	}

	copy(buf[secSize:bbSize], secondStage)

	// Step 5: any non-zero byte now present in the label region means the
	// second stage spilled into it.
	for i := labelOff; i < labelEnd; i++ {
		if buf[i] != 0 {
			return disklabel.ErrOverlap.WithMessage(
				"second-stage bootstrap overlaps the embedded disklabel region")
		}
	}

	// Step 6: restore the label bytes now that overlap has been ruled out.
	copy(buf[labelOff:labelEnd], savedLabel)

	if ctx.Platform() == disklabel.PlatformAlpha {
		if err := checksum.AlphaBootChecksum(buf[:512]); err != nil {
			return err
		}
	}

	if err := store.Write(ctx, buf); err != nil {
		return err
	}
	syncDevice(ctx)
	return nil
}

func readExactly(path string, size int) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, disklabel.ErrIOFailed.Wrap(err)
	}
	defer file.Close()

	buf := make([]byte, size)
	if _, err := io.ReadFull(file, buf); err != nil {
		return nil, disklabel.ErrIOFailed.WithMessage(
			"short read of bootstrap file " + path + ": " + err.Error())
	}
	return buf, nil
}

type syncer interface {
	Sync() error
}

func syncDevice(ctx disklabel.Context) {
	if s, ok := ctx.Device().(syncer); ok {
		_ = s.Sync()
	}
}
