// Package checksum implements the BSD disklabel's two checksum disciplines:
// the 16-bit XOR over the label header (§4.2) and the Alpha-only 64-bit
// additive boot-block checksum.
package checksum

import (
	"encoding/binary"

	"github.com/hubert-he/disklabel"
)

// XOR16 treats data as a sequence of little-endian 16-bit words and XORs
// them together. len(data) must be even; a trailing odd byte is ignored
// since the on-disk layout this is used against is always word-aligned.
func XOR16(data []byte) uint16 {
	var result uint16
	for i := 0; i+1 < len(data); i += 2 {
		result ^= binary.LittleEndian.Uint16(data[i : i+2])
	}
	return result
}

// AlphaBootChecksum implements the Alpha boot-block checksum: the first
// 504 bytes of buf are treated as 63 little-endian 64-bit words, summed
// with wrapping addition, and the result is written into the 64th
// (final) word, buf[504:512]. buf must be at least 512 bytes long.
func AlphaBootChecksum(buf []byte) error {
	const wordCount = 63
	const wordSize = 8

	if len(buf) < wordCount*wordSize+wordSize {
		return disklabel.ErrInvalidArgument.WithMessage(
			"buffer too short for alpha boot checksum")
	}

	var sum uint64
	for i := 0; i < wordCount; i++ {
		sum += binary.LittleEndian.Uint64(buf[i*wordSize : i*wordSize+wordSize])
	}

	binary.LittleEndian.PutUint64(buf[wordCount*wordSize:wordCount*wordSize+wordSize], sum)
	return nil
}
