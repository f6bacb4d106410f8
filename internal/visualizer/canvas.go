package visualizer

import (
	"fmt"
	"strings"
)

const (
	brailleBase = 0x2800
	canvasRows  = 4
)

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][canvasRows]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

// Canvas is a one-line dot raster. Each cell is a Braille character holding
// a 2x4 dot grid, so a canvas of n cells is 2n dots wide and 4 dots tall.
type Canvas struct {
	cells []uint8
}

// NewCanvas creates a blank canvas of the given number of cells.
func NewCanvas(cells int) *Canvas {
	if cells < 0 {
		cells = 0
	}
	return &Canvas{cells: make([]uint8, cells)}
}

// Cells returns the number of glyphs the canvas renders to.
func (c *Canvas) Cells() int { return len(c.cells) }

// Width returns the number of addressable dot columns.
func (c *Canvas) Width() int { return len(c.cells) * 2 }

// Set lights the dot at column x, row y. Out of range coordinates are a
// caller bug and panic.
func (c *Canvas) Set(x, y int) {
	if x < 0 || x >= c.Width() || y < 0 || y >= canvasRows {
		panic(fmt.Sprintf("visualizer: dot (%d,%d) outside %dx%d canvas", x, y, c.Width(), canvasRows))
	}
	c.cells[x/2] |= 1 << brailleBits[x%2][y]
}

// Reset clears every dot.
func (c *Canvas) Reset() {
	clear(c.cells)
}

// String renders one Braille glyph per cell.
func (c *Canvas) String() string {
	var sb strings.Builder
	sb.Grow(len(c.cells) * 3)
	c.writeTo(&sb)
	return sb.String()
}

func (c *Canvas) writeTo(sb *strings.Builder) {
	for _, mask := range c.cells {
		sb.WriteRune(rune(brailleBase + int(mask)))
	}
}
