package geom

import (
	"math"
	"testing"
)

func TestRectIntersects_EdgeTouchIsNotOverlap(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"touching right edge", Rect{X: 100, Y: 0, Width: 50, Height: 50}, false},
		{"touching bottom edge", Rect{X: 0, Y: 100, Width: 50, Height: 50}, false},
		{"one pixel overlap", Rect{X: 99, Y: 99, Width: 10, Height: 10}, true},
		{"contained", Rect{X: 10, Y: 10, Width: 10, Height: 10}, true},
		{"empty", Rect{X: 10, Y: 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersects(tt.b); got != tt.want {
				t.Fatalf("Intersects(%+v) = %v, want %v", tt.b, got, tt.want)
			}
		})
	}
}

func TestRectGrowAndInset(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 50}
	g := r.Grow(5)
	if g != (Rect{X: 5, Y: 15, Width: 110, Height: 60}) {
		t.Fatalf("unexpected grow result %+v", g)
	}
	in := r.Inset(Margins{Top: 10, Bottom: 10, Left: 60, Right: 60})
	if in.Width != 0 || in.Height != 30 {
		t.Fatalf("expected clamped inset, got %+v", in)
	}
}

func TestFitAspect_PreservesRatioAndFills(t *testing.T) {
	area := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	for _, aspect := range []float64{0.5, 0.75, 1, 1.33, 16.0 / 9.0, 3} {
		r := FitAspect(aspect, area)
		if !area.ContainsRect(r) {
			t.Fatalf("aspect %.2f: %+v not inside area", aspect, r)
		}
		if r.Width != area.Width && r.Height != area.Height {
			t.Fatalf("aspect %.2f: %+v does not touch the area on either axis", aspect, r)
		}
		if math.Abs(r.AspectRatio()-aspect)/aspect > 0.01 {
			t.Fatalf("aspect %.2f: got ratio %.4f", aspect, r.AspectRatio())
		}
	}
}

func TestLerp(t *testing.T) {
	from := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	to := Rect{X: 100, Y: 50, Width: 200, Height: 50}
	if got := Lerp(from, to, 0); got != from {
		t.Fatalf("t=0: got %+v", got)
	}
	if got := Lerp(from, to, 1); got != to {
		t.Fatalf("t=1: got %+v", got)
	}
	mid := Lerp(from, to, 0.5)
	if mid != (Rect{X: 50, Y: 25, Width: 150, Height: 75}) {
		t.Fatalf("t=0.5: got %+v", mid)
	}
}

func TestXRectRoundTrip(t *testing.T) {
	r := Rect{X: -5, Y: 7, Width: 30, Height: 40}
	if got := FromXRect(r.XRect()); got != r {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestValidAspect(t *testing.T) {
	if ValidAspect(0) || ValidAspect(-1) || ValidAspect(math.NaN()) || ValidAspect(math.Inf(1)) {
		t.Fatalf("expected degenerate ratios to be invalid")
	}
	if !ValidAspect(1.5) {
		t.Fatalf("expected 1.5 to be valid")
	}
}
