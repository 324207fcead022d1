package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille patterns pack 2x4 dots into one cell:
//
//	1 4
//	2 5
//	3 6
//	7 8
var pixelMap = [4][2]uint8{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBase = 0x2800

// Ink tags what drew into a cell. Higher values win when marks overlap.
type Ink uint8

const (
	InkNone Ink = iota
	InkFrame
	InkFluid
	InkCursor
)

type cell struct {
	dots uint8
	ink  Ink
	heat float64
}

// Canvas is a braille dot canvas of Width x Height cells, addressed in dots
// ((Width*2) x (Height*4)).
type Canvas struct {
	Width, Height int
	cells         []cell
}

func NewCanvas(w, h int) *Canvas {
	return &Canvas{Width: w, Height: h, cells: make([]cell, w*h)}
}

// Dots returns the canvas size in dots.
func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

// Set marks a frame dot at (x, y).
func (c *Canvas) Set(x, y int) { c.Plot(x, y, InkFrame, 0) }

// Plot marks a dot and records ink and heat on its cell. Heat keeps the
// maximum over the dots in the cell.
func (c *Canvas) Plot(x, y int, ink Ink, heat float64) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	cl := &c.cells[row*c.Width+col]
	cl.dots |= pixelMap[y%4][x%2]
	if ink > cl.ink {
		cl.ink = ink
		cl.heat = heat
	} else if ink == cl.ink && heat > cl.heat {
		cl.heat = heat
	}
}

func (c *Canvas) Clear() { clear(c.cells) }

// Line draws a segment with Bresenham's algorithm.
func (c *Canvas) Line(x0, y0, x1, y1 int, ink Ink) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		c.Plot(x0, y0, ink, 0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// String renders the canvas without color.
func (c *Canvas) String() string {
	var b strings.Builder
	for row := range c.Height {
		for col := range c.Width {
			b.WriteRune(rune(brailleBase + int(c.cells[row*c.Width+col].dots)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Render colors every non-empty cell with the style chosen by shade.
func (c *Canvas) Render(shade func(ink Ink, heat float64) lipgloss.Style) string {
	var b strings.Builder
	for row := range c.Height {
		for col := range c.Width {
			cl := c.cells[row*c.Width+col]
			r := string(rune(brailleBase + int(cl.dots)))
			if cl.ink == InkNone {
				b.WriteString(r)
				continue
			}
			b.WriteString(shade(cl.ink, cl.heat).Render(r))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
