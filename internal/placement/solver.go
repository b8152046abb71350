// Package placement arranges windows of fixed aspect ratio inside an area
// without overlap, growing every window as far as its neighbours allow.
package placement

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/1broseidon/multiview/internal/geom"
)

// DefaultMaxIterations bounds the number of growth rounds.
const DefaultMaxIterations = 600

// ErrDegenerateAspect is returned for windows whose aspect ratio is zero,
// negative or undefined. Callers are expected to filter those out first.
var ErrDegenerateAspect = errors.New("degenerate aspect ratio")

// Item is one window to place.
type Item[K cmp.Ordered] struct {
	ID     K
	Aspect float64
}

// Options tune the solver.
type Options struct {
	// BorderMargin is the minimum gap kept between windows and between a
	// window and the edge of the area.
	BorderMargin int
	// MaxIterations caps growth rounds; <= 0 uses DefaultMaxIterations.
	MaxIterations int
}

// Solution maps window ids to their target rectangles.
type Solution[K cmp.Ordered] map[K]geom.Rect

// Bounds returns the bounding box of every rectangle in the solution.
func (s Solution[K]) Bounds() geom.Rect {
	var bounds geom.Rect
	for _, r := range s {
		bounds = bounds.Union(r)
	}
	return bounds
}

// Coverage returns the fraction of area covered by the solution's rectangles.
func (s Solution[K]) Coverage(area geom.Rect) float64 {
	if area.Area() == 0 {
		return 0
	}
	total := 0
	for _, r := range s {
		total += r.Intersect(area).Area()
	}
	return float64(total) / float64(area.Area())
}

// Grid picks a rows×cols grid for n windows that roughly follows the aspect
// ratio of area: rows = ceil(sqrt(n*h/w)), cols = ceil(n/rows).
func Grid(n int, area geom.Rect) (rows, cols int) {
	if n <= 0 {
		return 0, 0
	}
	if area.Empty() {
		return 1, n
	}
	rows = int(math.Ceil(math.Sqrt(float64(n) * float64(area.Height) / float64(area.Width))))
	if rows < 1 {
		rows = 1
	}
	if rows > n {
		rows = n
	}
	cols = int(math.Ceil(float64(n) / float64(rows)))
	return rows, cols
}

// slot is the growth state of one window.
type slot[K cmp.Ordered] struct {
	id     K
	aspect float64
	cx, cy float64
	height float64
	step   float64
	frozen bool
	rect   geom.Rect
}

func (s *slot[K]) rectAt(height float64) geom.Rect {
	h := int(height)
	if h < 1 {
		h = 1
	}
	w := geom.WidthForHeight(s.aspect, h)
	if w < 1 {
		w = 1
	}
	return geom.Rect{
		X:      int(math.Round(s.cx - float64(w)/2)),
		Y:      int(math.Round(s.cy - float64(h)/2)),
		Width:  w,
		Height: h,
	}
}

// Solve computes a non-overlapping rectangle for every item inside area.
//
// Windows are seeded at the centres of a grid matched to the area's shape and
// grown in rounds. A window whose next growth step would overlap a neighbour
// (expanded by the border margin) or leave the area halves its step; once the
// step drops below half a pixel the window is frozen. The group is centred in
// area at the end. The result is deterministic: items are processed in id order.
func Solve[K cmp.Ordered](items []Item[K], area geom.Rect, opts Options) (Solution[K], error) {
	for _, it := range items {
		if !geom.ValidAspect(it.Aspect) {
			return nil, fmt.Errorf("window %v: %w (%v)", it.ID, ErrDegenerateAspect, it.Aspect)
		}
	}

	solution := make(Solution[K], len(items))
	if len(items) == 0 {
		return solution, nil
	}

	border := max(opts.BorderMargin, 0)
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b Item[K]) int { return cmp.Compare(a.ID, b.ID) })

	if len(sorted) == 1 {
		solution[sorted[0].ID] = geom.FitAspect(sorted[0].Aspect, innerArea(area, border))
		return solution, nil
	}

	inner, slots, border := seedWithBorder(sorted, area, border)

	fits := func(i int, candidate geom.Rect) bool {
		if !inner.ContainsRect(candidate) {
			return false
		}
		padded := candidate.Grow(border)
		for j := range slots {
			if j != i && padded.Intersects(slots[j].rect) {
				return false
			}
		}
		return true
	}

	for i := range slots {
		if !fits(i, slots[i].rect) {
			slots[i].frozen = true
		}
	}

	for iter := 0; iter < maxIter; iter++ {
		growing := 0
		for i := range slots {
			s := &slots[i]
			if s.frozen {
				continue
			}
			growing++
			candidate := s.rectAt(s.height + s.step)
			if fits(i, candidate) {
				s.height += s.step
				s.rect = candidate
				continue
			}
			s.step /= 2
			if s.step < 0.5 {
				s.frozen = true
			}
		}
		if growing == 0 {
			break
		}
	}

	for _, s := range slots {
		solution[s.id] = s.rect
	}
	centerGroup(solution, area)
	return solution, nil
}

func innerArea(area geom.Rect, border int) geom.Rect {
	inner := area.Grow(-border)
	if inner.Empty() {
		return area
	}
	return inner
}

// seedWithBorder seeds the grid with the largest border, up to the requested
// one, at which every seed can grow by at least a pixel. Too many windows for
// the area would otherwise start out violating the border and never grow.
func seedWithBorder[K cmp.Ordered](items []Item[K], area geom.Rect, border int) (geom.Rect, []slot[K], int) {
	for b := border; ; b-- {
		inner := innerArea(area, b)
		slots := seed(items, inner)
		if b <= 0 || seedsClear(slots, inner, b) {
			return inner, slots, b
		}
	}
}

func seedsClear[K cmp.Ordered](slots []slot[K], inner geom.Rect, border int) bool {
	next := make([]geom.Rect, len(slots))
	for i := range slots {
		next[i] = slots[i].rectAt(slots[i].height + 1)
		if !inner.ContainsRect(next[i]) {
			return false
		}
	}
	for i := range next {
		padded := next[i].Grow(border)
		for j := i + 1; j < len(next); j++ {
			if padded.Intersects(next[j]) {
				return false
			}
		}
	}
	return true
}

// seed places every window at a one pixel tall rectangle centred in its grid
// cell. A short last row is centred horizontally.
func seed[K cmp.Ordered](items []Item[K], inner geom.Rect) []slot[K] {
	n := len(items)
	rows, cols := Grid(n, inner)
	cellW := float64(inner.Width) / float64(cols)
	cellH := float64(inner.Height) / float64(rows)

	step := max(float64(inner.Height)/16, 1)

	slots := make([]slot[K], n)
	for i, it := range items {
		row := i / cols
		col := i % cols
		inRow := cols
		if row == rows-1 {
			inRow = n - row*cols
		}
		offset := float64(cols-inRow) * cellW / 2

		s := slot[K]{
			id:     it.ID,
			aspect: it.Aspect,
			cx:     float64(inner.X) + offset + (float64(col)+0.5)*cellW,
			cy:     float64(inner.Y) + (float64(row)+0.5)*cellH,
			height: 1,
			step:   step,
		}
		s.rect = s.rectAt(s.height)
		slots[i] = s
	}
	return slots
}

// centerGroup translates every rectangle so the group's bounding box is
// centred in area.
func centerGroup[K cmp.Ordered](solution Solution[K], area geom.Rect) {
	bounds := solution.Bounds()
	if bounds.Empty() {
		return
	}
	dx := area.X + (area.Width-bounds.Width)/2 - bounds.X
	dy := area.Y + (area.Height-bounds.Height)/2 - bounds.Y
	if dx == 0 && dy == 0 {
		return
	}
	for id, r := range solution {
		solution[id] = r.Translate(dx, dy)
	}
}

// SolveAspects places anonymous windows given only their aspect ratios.
// The result is in input order.
func SolveAspects(aspects []float64, area geom.Rect, opts Options) ([]geom.Rect, error) {
	items := make([]Item[int], len(aspects))
	for i, a := range aspects {
		items[i] = Item[int]{ID: i, Aspect: a}
	}
	sol, err := Solve(items, area, opts)
	if err != nil {
		return nil, err
	}
	out := make([]geom.Rect, len(aspects))
	for i := range aspects {
		out[i] = sol[i]
	}
	return out, nil
}
