package thumbs

import (
	"testing"

	"github.com/1broseidon/multiview/internal/desktop"
	"github.com/1broseidon/multiview/internal/geom"
	"github.com/1broseidon/multiview/internal/placement"
)

func stripParams(count int) Params {
	return Params{
		Count:         count,
		Container:     geom.Rect{Width: 1920, Height: 150},
		ScreenAspect:  16.0 / 9.0,
		Spacing:       24,
		HeightPercent: 70,
	}
}

func TestComputeUniformAndEvenlySpaced(t *testing.T) {
	for count := 1; count <= 6; count++ {
		l := Compute(stripParams(count))
		if len(l.Thumbs) != count {
			t.Fatalf("count %d: got %d thumbnails", count, len(l.Thumbs))
		}
		first := l.Thumbs[0]
		for i, r := range l.Thumbs {
			if r.Width != first.Width || r.Height != first.Height {
				t.Fatalf("count %d: thumbnail %d size %dx%d differs from %dx%d", count, i, r.Width, r.Height, first.Width, first.Height)
			}
			if r.Y != first.Y {
				t.Fatalf("count %d: thumbnail %d not aligned", count, i)
			}
			if i > 0 {
				gap := r.X - l.Thumbs[i-1].Right()
				if gap != 24 {
					t.Fatalf("count %d: gap %d between %d and %d, want 24", count, gap, i-1, i)
				}
			}
			if !(geom.Rect{Width: 1920, Height: 150}).ContainsRect(r) {
				t.Fatalf("count %d: thumbnail %+v escapes container", count, r)
			}
		}
		if first.Height != 105 {
			t.Fatalf("count %d: expected height 105, got %d", count, first.Height)
		}
	}
}

func TestComputeCentresRow(t *testing.T) {
	l := Compute(stripParams(3))
	left := l.Thumbs[0].X
	right := 1920 - l.Thumbs[2].Right()
	if d := left - right; d < -1 || d > 1 {
		t.Fatalf("row not centred: left margin %d, right margin %d", left, right)
	}
}

func TestComputeShrinksWhenRowOverflows(t *testing.T) {
	p := stripParams(12)
	l := Compute(p)
	if len(l.Thumbs) != 12 {
		t.Fatalf("expected 12 thumbnails")
	}
	last := l.Thumbs[11]
	if l.Thumbs[0].X < 24 || last.Right() > 1920-24 {
		t.Fatalf("row does not fit with outer spacing: first %+v last %+v", l.Thumbs[0], last)
	}
	if l.Thumbs[0].Height >= 105 {
		t.Fatalf("expected thumbnails to shrink, height %d", l.Thumbs[0].Height)
	}
}

func TestComputeEmpty(t *testing.T) {
	if l := Compute(stripParams(0)); len(l.Thumbs) != 0 {
		t.Fatalf("expected no thumbnails for zero desktops")
	}
	p := stripParams(2)
	p.Container = geom.Rect{}
	if l := Compute(p); len(l.Thumbs) != 0 {
		t.Fatalf("expected no thumbnails for empty container")
	}
}

func TestPlusButton(t *testing.T) {
	p := stripParams(2)
	p.PlusButton = true
	l := Compute(p)
	if l.Plus.Empty() {
		t.Fatalf("expected plus button")
	}
	if l.Plus.X <= l.Thumbs[1].Right() {
		t.Fatalf("plus button %+v should follow last thumbnail %+v", l.Plus, l.Thumbs[1])
	}
	if !l.PlusButtonAt(l.Plus.Center()) {
		t.Fatalf("plus button hit-test failed")
	}
	if l.DesktopIndexAt(l.Plus.Center()) != 0 {
		t.Fatalf("plus button must not hit a desktop")
	}
}

func TestDesktopIndexAt(t *testing.T) {
	l := Compute(stripParams(3))
	for i, r := range l.Thumbs {
		if got := l.DesktopIndexAt(r.Center()); got != i+1 {
			t.Fatalf("centre of thumbnail %d hit desktop %d", i+1, got)
		}
	}
	gap := geom.Point{X: l.Thumbs[0].Right() + 5, Y: l.Thumbs[0].Center().Y}
	if got := l.DesktopIndexAt(gap); got != 0 {
		t.Fatalf("gap hit desktop %d", got)
	}
	if got := l.DesktopIndexAt(geom.Point{X: 960, Y: 500}); got != 0 {
		t.Fatalf("point below strip hit desktop %d", got)
	}
}

func TestStripRecomputesOnlyOnChange(t *testing.T) {
	s := NewStrip(nil)
	if !s.Update(stripParams(2)) {
		t.Fatalf("first update must compute")
	}
	if s.Update(stripParams(2)) {
		t.Fatalf("identical params must not recompute")
	}
	if !s.Update(stripParams(3)) {
		t.Fatalf("count change must recompute")
	}
	p := stripParams(3)
	p.Container.Width = 1280
	if !s.Update(p) {
		t.Fatalf("container change must recompute")
	}
	if len(s.Layout().Thumbs) != 3 {
		t.Fatalf("expected 3 cached thumbnails")
	}
}

func TestStripWindowsForAndMiniature(t *testing.T) {
	reg := desktop.NewRegistry(2, 0)
	_ = reg.Add(1, geom.Rect{Width: 800, Height: 600}, 1)
	_ = reg.Add(2, geom.Rect{Width: 1280, Height: 720}, 1)
	_ = reg.Add(3, geom.Rect{Width: 600, Height: 800}, 2)

	s := NewStrip(reg)
	s.Update(stripParams(2))

	if got := s.WindowsFor(1); len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("unexpected windows for desktop 1: %+v", got)
	}

	screen := geom.Rect{Width: 1920, Height: 1080}
	mini, err := s.Miniature(1, screen, placement.Options{BorderMargin: 10})
	if err != nil {
		t.Fatalf("miniature: %v", err)
	}
	thumb, _ := s.Layout().Rect(1)
	if len(mini) != 2 {
		t.Fatalf("expected 2 miniature windows, got %d", len(mini))
	}
	for id, r := range mini {
		if !thumb.ContainsRect(r) {
			t.Fatalf("miniature window %d %+v escapes thumbnail %+v", id, r, thumb)
		}
	}
	if mini, _ := s.Miniature(9, screen, placement.Options{}); len(mini) != 0 {
		t.Fatalf("unknown desktop should produce empty miniature")
	}
}
