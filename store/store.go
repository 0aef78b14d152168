// Package store implements LabelStore: reading and writing a
// [disklabel.BootBlockBuffer] at the correct byte offset on the underlying
// device, accounting for DOS nesting (§4.1).
package store

import (
	"io"

	"github.com/hubert-he/disklabel"
)

// BaseOffset returns the byte offset on the device at which the boot block
// begins: dos_start_sector * ctx.SectorSize() if ctx is nested inside a
// parent MBR partition, or 0 otherwise.
func BaseOffset(ctx disklabel.Context) int64 {
	parent, nested := ctx.Parent()
	if !nested {
		return 0
	}
	return int64(parent.StartSector()) * int64(ctx.SectorSize())
}

// Read reads exactly ctx.BBSize() bytes from ctx's device at [BaseOffset]
// and returns them as a [disklabel.BootBlockBuffer]. Seek failures, short
// reads, and other I/O errors are wrapped as [disklabel.ErrIOFailed].
func Read(ctx disklabel.Context) (disklabel.BootBlockBuffer, error) {
	device := ctx.Device()

	if _, err := device.Seek(BaseOffset(ctx), io.SeekStart); err != nil {
		return nil, disklabel.ErrIOFailed.WithMessage(
			"seek failed on " + ctx.DevicePath() + ": " + err.Error())
	}

	buf := disklabel.NewBootBlockBuffer(ctx.BBSize())
	if _, err := io.ReadFull(device, buf); err != nil {
		return nil, disklabel.ErrIOFailed.WithMessage(
			"short read on " + ctx.DevicePath() + ": " + err.Error())
	}
	return buf, nil
}

// Write writes buf to ctx's device at [BaseOffset]. buf must be exactly
// ctx.BBSize() bytes; a short or failed write is wrapped as
// [disklabel.ErrIOFailed]. Per §5, a write error leaves the device in an
// indeterminate state — this function does not attempt to roll anything
// back.
func Write(ctx disklabel.Context, buf disklabel.BootBlockBuffer) error {
	if uint32(len(buf)) != ctx.BBSize() {
		return disklabel.ErrInvalidArgument.WithMessage(
			"boot block buffer size does not match context BBSize")
	}

	device := ctx.Device()
	if _, err := device.Seek(BaseOffset(ctx), io.SeekStart); err != nil {
		return disklabel.ErrIOFailed.WithMessage(
			"seek failed on " + ctx.DevicePath() + ": " + err.Error())
	}

	n, err := device.Write(buf)
	if err != nil {
		return disklabel.ErrIOFailed.WithMessage(
			"write failed on " + ctx.DevicePath() + ": " + err.Error())
	}
	if n != len(buf) {
		return disklabel.ErrIOFailed.WithMessage(
			"short write on " + ctx.DevicePath())
	}
	return nil
}
