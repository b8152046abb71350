package geom

import (
	"math"

	"github.com/BurntSushi/xgbutil/xrect"
)

// Point is a position in screen coordinates.
type Point struct {
	X int
	Y int
}

// Size is a width/height pair.
type Size struct {
	Width  int
	Height int
}

// Empty reports whether either dimension is non-positive.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect represents a window position and size
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Margins are per-edge insets.
type Margins struct {
	Top    int
	Bottom int
	Left   int
	Right  int
}

// Horizontal returns Left+Right.
func (m Margins) Horizontal() int { return m.Left + m.Right }

// Vertical returns Top+Bottom.
func (m Margins) Vertical() int { return m.Top + m.Bottom }

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Area returns Width*Height, or 0 for empty rectangles.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

// Size returns the rectangle dimensions.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Center returns the integer center point.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether p lies inside r. The right and bottom edges are exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// ContainsRect reports whether o lies entirely within r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Intersects reports whether r and o share any area. Rectangles that only
// touch along an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Intersect returns the overlapping part of r and o (empty if none).
func (r Rect) Intersect(o Rect) Rect {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.Right(), o.Right())
	y2 := min(r.Bottom(), o.Bottom())
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Union returns the bounding box of r and o. Empty rectangles are ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x1 := min(r.X, o.X)
	y1 := min(r.Y, o.Y)
	x2 := max(r.Right(), o.Right())
	y2 := max(r.Bottom(), o.Bottom())
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Translate moves the rectangle by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Grow expands every edge outward by n pixels. Negative n shrinks.
func (r Rect) Grow(n int) Rect {
	return Rect{X: r.X - n, Y: r.Y - n, Width: r.Width + 2*n, Height: r.Height + 2*n}
}

// Inset shrinks the rectangle by the given margins, clamping at zero size.
func (r Rect) Inset(m Margins) Rect {
	out := Rect{
		X:      r.X + m.Left,
		Y:      r.Y + m.Top,
		Width:  r.Width - m.Horizontal(),
		Height: r.Height - m.Vertical(),
	}
	if out.Width < 0 {
		out.Width = 0
	}
	if out.Height < 0 {
		out.Height = 0
	}
	return out
}

// AspectRatio returns Width/Height, or 0 when the height is not positive.
func (r Rect) AspectRatio() float64 {
	if r.Height <= 0 || r.Width <= 0 {
		return 0
	}
	return float64(r.Width) / float64(r.Height)
}

// ValidAspect reports whether an aspect ratio can be laid out.
func ValidAspect(aspect float64) bool {
	return aspect > 0 && !math.IsNaN(aspect) && !math.IsInf(aspect, 0)
}

// WidthForHeight returns the width that keeps aspect at the given height.
func WidthForHeight(aspect float64, height int) int {
	return int(float64(height) * aspect)
}

// HeightForWidth returns the height that keeps aspect at the given width.
func HeightForWidth(aspect float64, width int) int {
	if aspect <= 0 {
		return 0
	}
	return int(float64(width) / aspect)
}

// FitAspect returns the largest rectangle with the given aspect ratio that
// fits inside within, centered.
func FitAspect(aspect float64, within Rect) Rect {
	if within.Empty() || !ValidAspect(aspect) {
		return Rect{X: within.X, Y: within.Y}
	}
	w := within.Width
	h := HeightForWidth(aspect, w)
	if h > within.Height {
		h = within.Height
		w = WidthForHeight(aspect, h)
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return CenterIn(Size{Width: w, Height: h}, within)
}

// CenterIn places a rectangle of size s centered inside within.
func CenterIn(s Size, within Rect) Rect {
	return Rect{
		X:      within.X + (within.Width-s.Width)/2,
		Y:      within.Y + (within.Height-s.Height)/2,
		Width:  s.Width,
		Height: s.Height,
	}
}

// Lerp interpolates between from and to at t in [0,1], rounding each edge.
func Lerp(from, to Rect, t float64) Rect {
	if t <= 0 {
		return from
	}
	if t >= 1 {
		return to
	}
	mix := func(a, b int) int {
		return int(math.Round(float64(a) + float64(b-a)*t))
	}
	return Rect{
		X:      mix(from.X, to.X),
		Y:      mix(from.Y, to.Y),
		Width:  mix(from.Width, to.Width),
		Height: mix(from.Height, to.Height),
	}
}

// FromXRect converts an xgbutil rectangle.
func FromXRect(r xrect.Rect) Rect {
	x, y, w, h := r.Pieces()
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// XRect converts r to an xgbutil rectangle.
func (r Rect) XRect() xrect.Rect {
	return xrect.New(r.X, r.Y, r.Width, r.Height)
}
