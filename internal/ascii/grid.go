// Package ascii turns pixel buffers into glyph grids, optionally
// colorized with ANSI escape sequences.
package ascii

import "strings"

// Grid is a rendered frame: a 2D array of glyphs with fixed geometry.
// It is produced fresh per frame and consumed immediately by a sink.
type Grid struct {
	Width  int
	Height int
	cells  []rune // row-major, len == Width*Height
}

func newGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		cells:  make([]rune, width*height),
	}
}

// At returns the glyph at (x, y).
func (g *Grid) At(x, y int) rune {
	return g.cells[y*g.Width+x]
}

func (g *Grid) set(x, y int, glyph rune) {
	g.cells[y*g.Width+x] = glyph
}

// String serializes the grid as newline-separated rows of glyphs.
func (g *Grid) String() string {
	var b strings.Builder
	b.Grow(g.Height * (g.Width + 1) * 2)
	for y := 0; y < g.Height; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		row := g.cells[y*g.Width : (y+1)*g.Width]
		for _, glyph := range row {
			b.WriteRune(glyph)
		}
	}
	return b.String()
}
