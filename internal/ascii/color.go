package ascii

import (
	"fmt"
	"image"
	"math"
	"strings"
)

const colorReset = "\x1b[0m"

// Mode selects the terminal color representation.
type Mode int

const (
	Mode16 Mode = iota
	Mode256
	ModeTrue
)

// ParseMode maps a configuration value ("16", "256", "true") to a Mode.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "16":
		return Mode16, nil
	case "256":
		return Mode256, nil
	case "true":
		return ModeTrue, nil
	}
	return 0, fmt.Errorf("unknown color mode %q", name)
}

// Quantizer maps RGB triples into one of the terminal color spaces and
// wraps glyphs in the matching escape sequences. The mode is fixed at
// construction.
type Quantizer struct {
	mode Mode
}

// NewQuantizer creates a quantizer for the given mode.
func NewQuantizer(mode Mode) *Quantizer {
	return &Quantizer{mode: mode}
}

// ANSI16 maps an RGB triple to a basic ANSI foreground code (30-37).
//
// The decision procedure is a coarse brightness/dominance heuristic.
// The branch order is load-bearing: rendered output must stay
// byte-identical across versions.
func ANSI16(r, g, b uint8) int {
	brightness := (int(r) + int(g) + int(b)) / 3

	switch {
	case brightness < 50:
		return 30 // black
	case brightness > 200:
		return 37 // white
	case r > g && r > b:
		return 31 // red
	case g > r && g > b:
		return 32 // green
	case b > r && b > g:
		return 34 // blue
	case r > b:
		return 33 // yellow (red + green)
	case g > b:
		return 32 // green
	default:
		return 34 // blue
	}
}

// Cube256 maps an RGB triple into the xterm 6x6x6 color cube [16,231].
func Cube256(r, g, b uint8) int {
	rq := int(math.Round(float64(r) / 255 * 5))
	gq := int(math.Round(float64(g) / 255 * 5))
	bq := int(math.Round(float64(b) / 255 * 5))
	return 16 + 36*rq + 6*gq + bq
}

// Wrap decorates a single glyph with the mode's color directive and a
// trailing reset, so adjacent glyphs never bleed color.
func (q *Quantizer) Wrap(glyph rune, r, g, b uint8) string {
	var sb strings.Builder
	q.writeCell(&sb, glyph, r, g, b)
	return sb.String()
}

func (q *Quantizer) writeCell(sb *strings.Builder, glyph rune, r, g, b uint8) {
	switch q.mode {
	case ModeTrue:
		fmt.Fprintf(sb, "\x1b[38;2;%d;%d;%dm", r, g, b)
	case Mode256:
		fmt.Fprintf(sb, "\x1b[38;5;%dm", Cube256(r, g, b))
	default:
		fmt.Fprintf(sb, "\x1b[%dm", ANSI16(r, g, b))
	}
	sb.WriteRune(glyph)
	sb.WriteString(colorReset)
}

// Colorize serializes the grid with per-glyph color taken from the
// source frame. The frame is resized to the grid geometry with the
// same interpolation as the luminance path, and the whole output is
// assembled in a single pass over the resized buffer.
func (q *Quantizer) Colorize(grid *Grid, frame image.Image, conv *Converter) string {
	rgba := conv.resizeRGBA(frame, grid.Width, grid.Height)

	var sb strings.Builder
	// Worst case per cell: truecolor escape (~20 bytes) + glyph + reset.
	sb.Grow(grid.Height * grid.Width * 28)
	for y := 0; y < grid.Height; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+grid.Width*4]
		for x := 0; x < grid.Width; x++ {
			px := row[x*4 : x*4+4]
			q.writeCell(&sb, grid.At(x, y), px[0], px[1], px[2])
		}
	}
	return sb.String()
}
