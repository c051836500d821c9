package acquire

import (
	"math"
	"sort"
	"strings"
)

// Glyph is a positioned text run on a page, in PDF user space (Y grows upward).
type Glyph struct {
	X, Y, W  float64
	FontSize float64
	S        string
}

const (
	rowTolerance = 2.0 // points; runs closer than this in Y share a row
	cellGapRatio = 1.5 // gaps wider than this many font sizes start a new cell
	spaceRatio   = 0.2 // gaps wider than this many font sizes insert a space
)

// CellDelimiter joins reconstructed cells within a row.
const CellDelimiter = " | "

// ReconstructRows groups glyphs into rows by baseline and splits each row into
// cells on wide horizontal gaps. Rows come out top to bottom.
func ReconstructRows(glyphs []Glyph) [][]string {
	gs := make([]Glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if strings.TrimSpace(g.S) != "" || g.S == " " {
			gs = append(gs, g)
		}
	}
	if len(gs) == 0 {
		return nil
	}
	sort.SliceStable(gs, func(i, j int) bool { return gs[i].Y > gs[j].Y })

	var rows [][]string
	start := 0
	for i := 1; i <= len(gs); i++ {
		if i == len(gs) || math.Abs(gs[i].Y-gs[start].Y) > rowTolerance {
			line := append([]Glyph(nil), gs[start:i]...)
			sort.SliceStable(line, func(a, b int) bool { return line[a].X < line[b].X })
			if cells := splitCells(line); len(cells) > 0 {
				rows = append(rows, cells)
			}
			start = i
		}
	}
	return rows
}

func splitCells(line []Glyph) []string {
	var cells []string
	var cur strings.Builder
	flush := func() {
		if s := strings.Join(strings.Fields(cur.String()), " "); s != "" {
			cells = append(cells, s)
		}
		cur.Reset()
	}

	prevEnd := math.Inf(-1)
	for _, g := range line {
		size := g.FontSize
		if size <= 0 {
			size = 10
		}
		gap := g.X - prevEnd
		switch {
		case gap > cellGapRatio*size:
			flush()
		case gap > spaceRatio*size:
			cur.WriteByte(' ')
		}
		cur.WriteString(g.S)
		end := g.X + g.W
		if end > prevEnd {
			prevEnd = end
		}
	}
	flush()
	return cells
}

// RowsText renders rows one per line with cells joined by CellDelimiter.
func RowsText(rows [][]string) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, strings.Join(r, CellDelimiter))
	}
	return strings.Join(lines, "\n")
}
