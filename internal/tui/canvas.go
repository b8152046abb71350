package tui

import (
	"strings"

	"github.com/1broseidon/multiview/internal/geom"
)

type boxStyle int

const (
	boxLight boxStyle = iota
	boxHeavy
	boxDouble
)

// corners and edges: top-left, top-right, bottom-left, bottom-right, horizontal, vertical
var boxRunes = map[boxStyle][6]rune{
	boxLight:  {'┌', '┐', '└', '┘', '─', '│'},
	boxHeavy:  {'┏', '┓', '┗', '┛', '━', '┃'},
	boxDouble: {'╔', '╗', '╚', '╝', '═', '║'},
}

// canvas maps a virtual screen onto a grid of terminal cells.
type canvas struct {
	cells  [][]rune
	width  int
	height int
	screen geom.Rect
}

func newCanvas(width, height int, screen geom.Rect) *canvas {
	width = max(width, 1)
	height = max(height, 1)
	cells := make([][]rune, height)
	for i := range cells {
		cells[i] = []rune(strings.Repeat(" ", width))
	}
	return &canvas{cells: cells, width: width, height: height, screen: screen}
}

// toCell converts a screen rectangle to inclusive cell coordinates.
func (c *canvas) toCell(r geom.Rect) (x1, y1, x2, y2 int) {
	sw := max(c.screen.Width, 1)
	sh := max(c.screen.Height, 1)
	x1 = (r.X - c.screen.X) * c.width / sw
	y1 = (r.Y - c.screen.Y) * c.height / sh
	x2 = (r.Right()-c.screen.X)*c.width/sw - 1
	y2 = (r.Bottom()-c.screen.Y)*c.height/sh - 1
	return x1, y1, x2, y2
}

// toScreen converts a cell to the screen point at its centre.
func (c *canvas) toScreen(col, row int) geom.Point {
	return geom.Point{
		X: c.screen.X + (2*col+1)*c.screen.Width/(2*c.width),
		Y: c.screen.Y + (2*row+1)*c.screen.Height/(2*c.height),
	}
}

func (c *canvas) set(x, y int, r rune) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	c.cells[y][x] = r
}

// fill paints r over every cell the rectangle touches.
func (c *canvas) fill(rect geom.Rect, r rune) {
	x1, y1, x2, y2 := c.toCell(rect)
	x2 = max(x2, x1)
	y2 = max(y2, y1)
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			c.set(x, y, r)
		}
	}
}

// box draws an outlined rectangle with a centred label. Rectangles smaller
// than 2x2 cells degrade to a fill.
func (c *canvas) box(rect geom.Rect, style boxStyle, label string) {
	x1, y1, x2, y2 := c.toCell(rect)
	if x2 <= x1 || y2 <= y1 {
		c.fill(rect, boxRunes[style][5])
		return
	}
	rs := boxRunes[style]

	for y := y1 + 1; y < y2; y++ {
		for x := x1 + 1; x < x2; x++ {
			c.set(x, y, ' ')
		}
	}
	for x := x1; x <= x2; x++ {
		c.set(x, y1, rs[4])
		c.set(x, y2, rs[4])
	}
	for y := y1; y <= y2; y++ {
		c.set(x1, y, rs[5])
		c.set(x2, y, rs[5])
	}
	c.set(x1, y1, rs[0])
	c.set(x2, y1, rs[1])
	c.set(x1, y2, rs[2])
	c.set(x2, y2, rs[3])

	c.label(rect, label)
}

// label writes text centred inside the rectangle's interior.
func (c *canvas) label(rect geom.Rect, text string) {
	x1, y1, x2, y2 := c.toCell(rect)
	labelRunes := []rune(text)
	inner := x2 - x1 - 1
	if len(labelRunes) == 0 || inner < 1 || y2-y1 < 2 {
		return
	}
	if len(labelRunes) > inner {
		labelRunes = labelRunes[:inner]
	}
	cy := (y1 + y2) / 2
	start := x1 + 1 + (inner-len(labelRunes))/2
	for i, r := range labelRunes {
		c.set(start+i, cy, r)
	}
}

func (c *canvas) lines() []string {
	out := make([]string, c.height)
	for i, row := range c.cells {
		out[i] = string(row)
	}
	return out
}

func (c *canvas) String() string {
	return strings.Join(c.lines(), "\n")
}
