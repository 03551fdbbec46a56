// Package report renders human-readable summaries of tileset descriptors.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/cory-johannsen/tileset/internal/lint"
	"github.com/cory-johannsen/tileset/internal/tileset"
)

// WriteSummary writes an aligned overview of d to w: a header, one row per
// wang set, one row per color and the number of tiles no wang set uses.
//
// Precondition: d must be a valid descriptor.
func WriteSummary(w io.Writer, d *tileset.Descriptor) error {
	var b strings.Builder
	fmt.Fprintf(&b, "tileset %s: %d tiles, %d columns, %dx%d px\n",
		d.Name, d.TileCount, d.Columns, d.TileWidth, d.TileHeight)
	fmt.Fprintf(&b, "image %s: %dx%d px\n", d.Image.Source, d.Image.Width, d.Image.Height)

	for _, ws := range d.WangSets {
		b.WriteByte('\n')
		writeTable(&b, "", [][]string{
			{"WANG SET", "TYPE", "COLORS", "TILES"},
			{ws.Name, string(ws.Type), strconv.Itoa(len(ws.Colors)), strconv.Itoa(len(ws.Tiles))},
		})
		rows := [][]string{{"#", "COLOR", "HEX", "PROBABILITY"}}
		for i, c := range ws.Colors {
			rows = append(rows, []string{
				strconv.Itoa(i + 1), c.Name, c.Color,
				strconv.FormatFloat(c.Weight(), 'g', -1, 64),
			})
		}
		writeTable(&b, "  ", rows)
	}

	fmt.Fprintf(&b, "\nunused tiles: %d\n", len(lint.UnusedTiles(d)))
	_, err := io.WriteString(w, b.String())
	return err
}

// writeTable pads every column but the last to its widest cell, measured in
// terminal cells.
func writeTable(b *strings.Builder, indent string, rows [][]string) {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i == len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for _, row := range rows {
		b.WriteString(indent)
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString("  ")
		}
		b.WriteByte('\n')
	}
}
