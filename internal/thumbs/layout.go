// Package thumbs lays out the row of desktop thumbnails shown above the
// overview, plus the optional "add desktop" button.
package thumbs

import (
	"github.com/1broseidon/multiview/internal/desktop"
	"github.com/1broseidon/multiview/internal/geom"
	"github.com/1broseidon/multiview/internal/placement"
)

const fallbackAspect = 16.0 / 9.0

// Params describe one strip layout. Two equal Params always produce the same
// Layout.
type Params struct {
	// Count is the number of desktops.
	Count int
	// Container is the strip area, usually the top desktop margin.
	Container geom.Rect
	// ScreenAspect is the primary display's width/height.
	ScreenAspect float64
	// Spacing is the gap between thumbnails and around the row.
	Spacing int
	// HeightPercent is the thumbnail height as a percentage of the container.
	HeightPercent int
	// PlusButton reserves a slot after the last thumbnail.
	PlusButton bool
}

// Layout is the computed strip.
type Layout struct {
	// Thumbs holds one rectangle per desktop; Thumbs[0] is desktop 1.
	Thumbs []geom.Rect
	// Plus is the add-desktop button, empty when hidden.
	Plus geom.Rect
}

// Compute lays out p.Count thumbnails of identical size in a centred row.
// Thumbnails keep the screen aspect ratio; when the row does not fit at the
// requested height every thumbnail shrinks evenly.
func Compute(p Params) Layout {
	if p.Count <= 0 || p.Container.Empty() {
		return Layout{}
	}
	aspect := p.ScreenAspect
	if !geom.ValidAspect(aspect) {
		aspect = fallbackAspect
	}
	percent := p.HeightPercent
	if percent <= 0 || percent > 100 {
		percent = 100
	}
	spacing := max(p.Spacing, 0)

	slots := p.Count
	if p.PlusButton {
		slots++
	}

	h := p.Container.Height * percent / 100
	w := geom.WidthForHeight(aspect, h)
	avail := p.Container.Width - (slots+1)*spacing
	if slots*w > avail {
		w = avail / slots
		h = geom.HeightForWidth(aspect, w)
	}
	if w < 1 || h < 1 {
		return Layout{}
	}

	total := slots*w + (slots-1)*spacing
	x := p.Container.X + (p.Container.Width-total)/2
	y := p.Container.Y + (p.Container.Height-h)/2

	out := Layout{Thumbs: make([]geom.Rect, p.Count)}
	for i := range out.Thumbs {
		out.Thumbs[i] = geom.Rect{X: x + i*(w+spacing), Y: y, Width: w, Height: h}
	}
	if p.PlusButton {
		slot := geom.Rect{X: x + p.Count*(w+spacing), Y: y, Width: w, Height: h}
		side := max(min(w, h)/2, 1)
		out.Plus = geom.CenterIn(geom.Size{Width: side, Height: side}, slot)
	}
	return out
}

// Rect returns the thumbnail of desktop (1-based).
func (l Layout) Rect(desktop int) (geom.Rect, bool) {
	if desktop < 1 || desktop > len(l.Thumbs) {
		return geom.Rect{}, false
	}
	return l.Thumbs[desktop-1], true
}

// DesktopIndexAt hit-tests p against the thumbnails. It returns the 1-based
// desktop index, or 0 when p is over no thumbnail.
func (l Layout) DesktopIndexAt(p geom.Point) int {
	for i, r := range l.Thumbs {
		if r.Contains(p) {
			return i + 1
		}
	}
	return 0
}

// PlusButtonAt reports whether p is over the add-desktop button.
func (l Layout) PlusButtonAt(p geom.Point) bool {
	return !l.Plus.Empty() && l.Plus.Contains(p)
}

// WindowSource is the read side of the desktop registry.
type WindowSource interface {
	WindowsOn(desktop int) []desktop.Window
}

// Strip caches a Layout and recomputes it only when its parameters change.
type Strip struct {
	source WindowSource
	params Params
	layout Layout
	valid  bool
}

// NewStrip creates a strip reading window membership from source.
func NewStrip(source WindowSource) *Strip {
	return &Strip{source: source}
}

// Update recomputes the layout if p differs from the previous parameters and
// reports whether it did.
func (s *Strip) Update(p Params) bool {
	if s.valid && p == s.params {
		return false
	}
	s.params = p
	s.layout = Compute(p)
	s.valid = true
	return true
}

// Invalidate forces the next Update to recompute.
func (s *Strip) Invalidate() { s.valid = false }

// Layout returns the cached layout.
func (s *Strip) Layout() Layout { return s.layout }

// WindowsFor returns the windows currently on desktop, ordered by id.
func (s *Strip) WindowsFor(desktop int) []desktop.Window {
	if s.source == nil {
		return nil
	}
	return s.source.WindowsOn(desktop)
}

// DesktopIndexAt hit-tests p against the cached thumbnails.
func (s *Strip) DesktopIndexAt(p geom.Point) int { return s.layout.DesktopIndexAt(p) }

// PlusButtonAt reports whether p is over the add-desktop button.
func (s *Strip) PlusButtonAt(p geom.Point) bool { return s.layout.PlusButtonAt(p) }

// Miniature lays out desktop's windows inside its thumbnail. The border is
// scaled down by the ratio between the thumbnail and screen heights.
func (s *Strip) Miniature(desktopIndex int, screen geom.Rect, opts placement.Options) (placement.Solution[desktop.WindowID], error) {
	r, ok := s.layout.Rect(desktopIndex)
	if !ok {
		return placement.Solution[desktop.WindowID]{}, nil
	}
	windows := s.WindowsFor(desktopIndex)
	items := make([]placement.Item[desktop.WindowID], 0, len(windows))
	for _, w := range windows {
		items = append(items, placement.Item[desktop.WindowID]{ID: w.ID, Aspect: w.Aspect})
	}
	if screen.Height > 0 {
		opts.BorderMargin = max(opts.BorderMargin*r.Height/screen.Height, 1)
	}
	return placement.Solve(items, r, opts)
}
