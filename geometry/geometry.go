// Package geometry implements Geometry & Coordinates (§4.4): conversions
// between sector indices and cylinder indices under the two user-visible
// display modes, plus a CSV-backed table of named geometry presets,
// grounded on the teacher's disks.DiskGeometry.
package geometry

import (
	"fmt"
	"math"
	"strings"

	_ "embed"

	"github.com/gocarina/gocsv"
	"github.com/hubert-he/disklabel"
)

// SecPerCyl returns heads*sectors, forced to 1 if the product is zero, since
// it is used as a division denominator throughout this package.
func SecPerCyl(heads, sectors uint32) uint32 {
	spc := heads * sectors
	if spc == 0 {
		return 1
	}
	return spc
}

// FirstSectorFromCylinder converts a user-entered first-cylinder value into
// a sector offset: (c - 1) * secpercyl. In sector mode callers should use
// the raw entry directly instead of calling this.
func FirstSectorFromCylinder(cylinder, secPerCyl uint64) uint64 {
	if cylinder == 0 {
		return 0
	}
	return (cylinder - 1) * secPerCyl
}

// LastSectorFromCylinder converts a user-entered last-cylinder value into a
// sector offset: c * secpercyl - 1.
func LastSectorFromCylinder(cylinder, secPerCyl uint64) uint64 {
	if cylinder == 0 || secPerCyl == 0 {
		return 0
	}
	return cylinder*secPerCyl - 1
}

// DisplayStart converts a partition's on-disk offset to a cylinder-mode
// display value and reports whether a '*' truncation marker is required
// (offset % secpercyl != 0).
func DisplayStart(offset, secPerCyl uint64) (cylinder uint64, marker bool) {
	if secPerCyl == 0 {
		return 0, false
	}
	return offset/secPerCyl + 1, offset%secPerCyl != 0
}

// DisplayEnd converts a partition's on-disk (offset+size) to a cylinder-mode
// display value and reports whether a '*' truncation marker is required
// ((offset+size) % secpercyl != 0).
func DisplayEnd(offset, size, secPerCyl uint64) (cylinder uint64, marker bool) {
	if secPerCyl == 0 {
		return 0, false
	}
	end := offset + size
	cyl := uint64(math.Ceil(float64(end) / float64(secPerCyl)))
	return cyl, end%secPerCyl != 0
}

// FormatBound renders a sector-mode or cylinder-mode bound with its
// trailing '*' marker, for use by the display package and interactive
// prompts.
func FormatBound(value uint64, marker bool) string {
	if marker {
		return fmt.Sprintf("%d*", value)
	}
	return fmt.Sprintf("%d", value)
}

// PromptBounds returns the low/high sector values the first/last-sector
// prompts of a non-nested label are constrained to: the full addressable
// range of the device, [0, secperunit-1]. A nested label uses its parent
// partition's range instead, which this function does not compute.
func PromptBounds(secPerUnit uint64) (low, high uint64) {
	if secPerUnit == 0 {
		return 0, 0
	}
	return 0, secPerUnit - 1
}

// Preset is one row of the named geometry preset table (additive sugar per
// §10.2; not an on-disk field).
type Preset struct {
	Slug      string `csv:"slug"`
	Name      string `csv:"name"`
	Heads     uint32 `csv:"heads"`
	Sectors   uint32 `csv:"sectors_per_track"`
	Cylinders uint32 `csv:"cylinders"`
	SecSize   uint32 `csv:"sector_size"`
}

// SecPerCyl returns heads*sectors for this preset.
func (p Preset) SecPerCyl() uint32 {
	return SecPerCyl(p.Heads, p.Sectors)
}

// SecPerUnit returns heads*sectors*cylinders for this preset.
func (p Preset) SecPerUnit() uint64 {
	return uint64(p.SecPerCyl()) * uint64(p.Cylinders)
}

//go:embed geometry-presets.csv
var presetsRawCSV string

var presets map[string]Preset

func init() {
	presets = make(map[string]Preset)
	err := gocsv.UnmarshalToCallback(
		strings.NewReader(presetsRawCSV),
		func(row Preset) error {
			if _, exists := presets[row.Slug]; exists {
				return fmt.Errorf("duplicate geometry preset slug %q", row.Slug)
			}
			presets[row.Slug] = row
			return nil
		},
	)
	if err != nil {
		panic(err)
	}
}

// PresetBySlug looks up a named geometry preset, returning
// [disklabel.ErrNotFound] if slug is unknown.
func PresetBySlug(slug string) (Preset, error) {
	preset, ok := presets[slug]
	if !ok {
		return Preset{}, disklabel.ErrNotFound.WithMessage(
			fmt.Sprintf("no geometry preset named %q", slug))
	}
	return preset, nil
}
