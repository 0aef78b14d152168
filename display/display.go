// Package display implements the §6.5 fixed partition-table column set,
// grounded on the teacher's BasicFormatterOptions/DiskGeometry text
// rendering conventions in disks/disks.go.
package display

import (
	"fmt"
	"strings"

	"github.com/hubert-he/disklabel"
	"github.com/hubert-he/disklabel/geometry"
	"github.com/hubert-he/disklabel/partition"
)

// columns is the fixed ordered set from §6.5; numeric columns are
// right-aligned.
var columns = []string{"Slice", "Start", "End", "Size", "Type", "Fsize", "Bsize", "Cpg"}

// Table renders a partition table as fixed-width text.
type Table struct {
	Platform disklabel.Platform
}

// Render formats views into the §6.5 column layout, skipping unused slots.
// Start/End are printed from each view's DisplayStart/DisplayEnd as
// already computed by the partition editor (sector or cylinder units),
// with the '*' truncation marker from §4.4 where the view sets it.
func (t Table) Render(views []partition.View) string {
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		if !v.Used {
			continue
		}
		rows = append(rows, []string{
			string(v.Letter),
			formatBound(v.DisplayStart, v.DisplayStartMarker),
			formatBound(v.DisplayEnd, v.DisplayEndMarker),
			fmt.Sprintf("%d", v.Size),
			v.FSType.Name(t.Platform),
			optionalUint32(v.FSize),
			optionalUint32(v.Bsize),
			optionalUint32(v.CPG),
		})
	}

	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeRow(&b, widths, columns)
	for _, row := range rows {
		writeRow(&b, widths, row)
	}
	return b.String()
}

func writeRow(b *strings.Builder, widths []int, cells []string) {
	for i, cell := range cells {
		fmt.Fprintf(b, "%*s  ", widths[i], cell)
	}
	b.WriteString("\n")
}

func formatBound(v uint64, marker bool) string {
	return geometry.FormatBound(v, marker)
}

func optionalUint32(v *uint32) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
