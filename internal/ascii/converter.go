package ascii

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"
)

// aspectCorrection compensates for terminal character cells being
// taller than they are wide.
const aspectCorrection = 0.55

// Converter maps frames to glyph grids using a fixed output width and
// a dark-to-light charset. It is immutable after construction.
type Converter struct {
	width   int
	charset []rune
}

// NewConverter creates a converter with the given output width in
// characters and glyph palette (darkest first, at least 2 glyphs).
func NewConverter(width int, charset string) (*Converter, error) {
	glyphs := []rune(charset)
	if len(glyphs) < 2 {
		return nil, fmt.Errorf("charset must contain at least 2 glyphs, got %d", len(glyphs))
	}
	if width < 1 {
		return nil, fmt.Errorf("width must be at least 1, got %d", width)
	}
	return &Converter{width: width, charset: glyphs}, nil
}

// Width returns the configured output width in characters.
func (c *Converter) Width() int {
	return c.width
}

// TargetHeight computes the output height in rows for a source frame of
// the given pixel dimensions, corrected for the character cell aspect.
func (c *Converter) TargetHeight(frameWidth, frameHeight int) int {
	if frameWidth <= 0 || frameHeight <= 0 {
		return 1
	}
	aspect := float64(frameHeight) / float64(frameWidth)
	h := int(math.Round(float64(c.width) * aspect * aspectCorrection))
	if h < 1 {
		h = 1
	}
	return h
}

// MapLuminance maps a luminance sample in [0,255] to a glyph. The
// mapping is monotonic: a brighter sample never yields a darker glyph.
func (c *Converter) MapLuminance(v uint8) rune {
	n := len(c.charset)
	idx := int(float64(v) / 255.0 * float64(n-1))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return c.charset[idx]
}

// resizeGray scales the frame to the output geometry and reduces it to
// a single luminance channel. Bilinear interpolation; the gray
// conversion uses the standard channel weights of the image/color model.
func (c *Converter) resizeGray(frame image.Image) *image.Gray {
	h := c.TargetHeight(frame.Bounds().Dx(), frame.Bounds().Dy())
	dst := image.NewGray(image.Rect(0, 0, c.width, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), frame, frame.Bounds(), draw.Src, nil)
	return dst
}

// resizeRGBA scales the frame to the grid geometry, keeping color.
// Used by the quantizer so glyphs and colors share the same sampling.
func (c *Converter) resizeRGBA(frame image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), frame, frame.Bounds(), draw.Src, nil)
	return dst
}

// ToGrid converts a frame into a glyph grid with no color attached.
func (c *Converter) ToGrid(frame image.Image) *Grid {
	gray := c.resizeGray(frame)
	grid := newGrid(c.width, gray.Bounds().Dy())
	for y := 0; y < grid.Height; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+grid.Width]
		for x, v := range row {
			grid.set(x, y, c.MapLuminance(v))
		}
	}
	return grid
}
