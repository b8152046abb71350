package placement

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/1broseidon/multiview/internal/geom"
)

func assertValidSolution(t *testing.T, sol Solution[uint32], area geom.Rect, border int) {
	t.Helper()
	ids := make([]uint32, 0, len(sol))
	for id, r := range sol {
		if r.Empty() {
			t.Fatalf("window %d has empty rect %+v", id, r)
		}
		if !area.ContainsRect(r) {
			t.Fatalf("window %d rect %+v escapes area %+v", id, r, area)
		}
		ids = append(ids, id)
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := sol[ids[i]], sol[ids[j]]
			if a.Grow(border).Intersects(b) {
				t.Fatalf("windows %d %+v and %d %+v are closer than border %d", ids[i], a, ids[j], b, border)
			}
		}
	}
}

func TestGrid(t *testing.T) {
	wide := geom.Rect{Width: 1920, Height: 1080}
	tests := []struct {
		n          int
		rows, cols int
	}{
		{0, 0, 0},
		{1, 1, 1},
		{2, 2, 1},
		{3, 2, 2},
		{4, 2, 2},
		{5, 2, 3},
		{9, 3, 3},
	}
	for _, tt := range tests {
		rows, cols := Grid(tt.n, wide)
		if rows != tt.rows || cols != tt.cols {
			t.Errorf("Grid(%d) = %dx%d, want %dx%d", tt.n, rows, cols, tt.rows, tt.cols)
		}
		if tt.n > 0 && rows*cols < tt.n {
			t.Errorf("Grid(%d) = %dx%d cannot hold every window", tt.n, rows, cols)
		}
	}
}

func TestSolve_ZeroWindows(t *testing.T) {
	sol, err := Solve[uint32](nil, geom.Rect{Width: 800, Height: 600}, Options{BorderMargin: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sol) != 0 {
		t.Fatalf("expected empty solution, got %v", sol)
	}
}

func TestSolve_RejectsDegenerateAspect(t *testing.T) {
	items := []Item[uint32]{{ID: 1, Aspect: 1}, {ID: 2, Aspect: 0}}
	_, err := Solve(items, geom.Rect{Width: 800, Height: 600}, Options{})
	if !errors.Is(err, ErrDegenerateAspect) {
		t.Fatalf("expected ErrDegenerateAspect, got %v", err)
	}
	_, err = Solve([]Item[uint32]{{ID: 1, Aspect: math.NaN()}}, geom.Rect{Width: 800, Height: 600}, Options{})
	if !errors.Is(err, ErrDegenerateAspect) {
		t.Fatalf("expected ErrDegenerateAspect for NaN, got %v", err)
	}
}

func TestSolve_SingleWindowFillsArea(t *testing.T) {
	areas := []geom.Rect{
		{Width: 1920, Height: 1080},
		{X: 100, Y: 50, Width: 640, Height: 1200},
		{Width: 333, Height: 333},
	}
	for _, area := range areas {
		for _, aspect := range []float64{0.5, 1, 1.6, 2.4} {
			sol, err := Solve([]Item[uint32]{{ID: 1, Aspect: aspect}}, area, Options{BorderMargin: 10})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			r := sol[1]
			inner := area.Grow(-10)
			if !inner.ContainsRect(r) {
				t.Fatalf("area %+v aspect %.2f: %+v escapes %+v", area, aspect, r, inner)
			}
			if r.Width != inner.Width && r.Height != inner.Height {
				t.Fatalf("area %+v aspect %.2f: %+v is not maximal in %+v", area, aspect, r, inner)
			}
			if got := r.AspectRatio(); math.Abs(got-aspect)/aspect > 0.01 {
				t.Fatalf("area %+v aspect %.2f: got ratio %.4f", area, aspect, got)
			}
		}
	}
}

func TestSolve_NoOverlapProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	areas := []geom.Rect{
		{Width: 1920, Height: 1080},
		{X: 0, Y: 150, Width: 1920, Height: 930},
		{Width: 1080, Height: 1920},
		{X: 30, Y: 40, Width: 1280, Height: 800},
	}
	for round := 0; round < 60; round++ {
		n := rng.Intn(13)
		items := make([]Item[uint32], n)
		for i := range items {
			items[i] = Item[uint32]{ID: uint32(rng.Intn(1 << 20)), Aspect: 0.3 + rng.Float64()*2.7}
		}
		area := areas[round%len(areas)]
		border := rng.Intn(25)
		sol, err := Solve(items, area, Options{BorderMargin: border})
		if err != nil {
			t.Fatalf("round %d: unexpected error: %v", round, err)
		}
		assertValidSolution(t, sol, area, border)
	}
}

func TestSolve_Deterministic(t *testing.T) {
	items := []Item[uint32]{
		{ID: 11, Aspect: 1.2}, {ID: 4, Aspect: 0.8}, {ID: 7, Aspect: 1.78},
		{ID: 2, Aspect: 1.0}, {ID: 9, Aspect: 2.1},
	}
	area := geom.Rect{Width: 1920, Height: 1080}
	first, err := Solve(items, area, Options{BorderMargin: 12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _ := Solve(items, area, Options{BorderMargin: 12})
		for id, r := range first {
			if again[id] != r {
				t.Fatalf("run %d: window %d got %+v, first run %+v", i, id, again[id], r)
			}
		}
	}

	reversed := make([]Item[uint32], len(items))
	for i, it := range items {
		reversed[len(items)-1-i] = it
	}
	other, _ := Solve(reversed, area, Options{BorderMargin: 12})
	for id, r := range first {
		if other[id] != r {
			t.Fatalf("input order changed window %d: %+v vs %+v", id, other[id], r)
		}
	}
}

func TestSolve_FourWindowCoverage(t *testing.T) {
	items := []Item[uint32]{
		{ID: 1, Aspect: 1.0},
		{ID: 2, Aspect: 1.33},
		{ID: 3, Aspect: 1.78},
		{ID: 4, Aspect: 0.75},
	}
	area := geom.Rect{Width: 1920, Height: 1080}
	sol, err := Solve(items, area, Options{BorderMargin: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sol) != 4 {
		t.Fatalf("expected 4 rects, got %d", len(sol))
	}
	assertValidSolution(t, sol, area, 10)
	if cov := sol.Coverage(area); cov < 0.60 {
		t.Fatalf("expected coverage >= 60%%, got %.1f%%", cov*100)
	}
	for _, it := range items {
		r := sol[it.ID]
		if math.Abs(r.AspectRatio()-it.Aspect)/it.Aspect > 0.02 {
			t.Fatalf("window %d lost its aspect ratio: %+v", it.ID, r)
		}
	}
}

func TestSolve_IterationCapStillNonOverlapping(t *testing.T) {
	items := []Item[uint32]{{ID: 1, Aspect: 1}, {ID: 2, Aspect: 1}, {ID: 3, Aspect: 1}}
	area := geom.Rect{Width: 1000, Height: 600}
	sol, err := Solve(items, area, Options{BorderMargin: 8, MaxIterations: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertValidSolution(t, sol, area, 8)

	full, _ := Solve(items, area, Options{BorderMargin: 8})
	if sol.Coverage(area) >= full.Coverage(area) {
		t.Fatalf("capped run should not beat the uncapped one")
	}
}

func TestSolve_CrowdedAreaShrinksBorder(t *testing.T) {
	items := make([]Item[uint32], 64)
	for i := range items {
		items[i] = Item[uint32]{ID: uint32(i + 1), Aspect: 1}
	}
	area := geom.Rect{Width: 100, Height: 100}
	sol, err := Solve(items, area, Options{BorderMargin: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sol) != len(items) {
		t.Fatalf("got %d rects, want %d", len(sol), len(items))
	}
	for id, r := range sol {
		if r.Width < 2 || r.Height < 2 {
			t.Fatalf("window %d never grew: %+v", id, r)
		}
	}
	// The grid cannot keep 10px apart, but a reduced border still holds.
	assertValidSolution(t, sol, area, 5)
}

func TestSeedWithBorderKeepsBorderWhenRoomy(t *testing.T) {
	items := []Item[uint32]{{ID: 1, Aspect: 1.5}, {ID: 2, Aspect: 1}, {ID: 3, Aspect: 0.7}}
	_, _, border := seedWithBorder(items, geom.Rect{Width: 1280, Height: 800}, 24)
	if border != 24 {
		t.Fatalf("border = %d, want 24", border)
	}
}

func TestSolve_GroupIsCentered(t *testing.T) {
	items := []Item[uint32]{{ID: 1, Aspect: 0.5}, {ID: 2, Aspect: 0.5}}
	area := geom.Rect{Width: 1920, Height: 1080}
	sol, err := Solve(items, area, Options{BorderMargin: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := sol.Bounds()
	left := b.X - area.X
	right := area.Right() - b.Right()
	if d := left - right; d < -1 || d > 1 {
		t.Fatalf("group not centred horizontally: left=%d right=%d", left, right)
	}
	top := b.Y - area.Y
	bottom := area.Bottom() - b.Bottom()
	if d := top - bottom; d < -1 || d > 1 {
		t.Fatalf("group not centred vertically: top=%d bottom=%d", top, bottom)
	}
}

func TestSolveAspects_KeepsInputOrder(t *testing.T) {
	area := geom.Rect{Width: 1600, Height: 900}
	rects, err := SolveAspects([]float64{16.0 / 9, 0.5, 1}, area, Options{BorderMargin: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rects) != 3 {
		t.Fatalf("expected 3 rects, got %d", len(rects))
	}
	for i, want := range []float64{16.0 / 9, 0.5, 1} {
		got := rects[i].AspectRatio()
		if math.Abs(got-want)/want > 0.05 {
			t.Fatalf("rect %d aspect %.3f, want %.3f", i, got, want)
		}
	}

	if _, err := SolveAspects([]float64{1, 0}, area, Options{}); !errors.Is(err, ErrDegenerateAspect) {
		t.Fatalf("expected ErrDegenerateAspect, got %v", err)
	}
}
