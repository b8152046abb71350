package motion

import (
	"testing"
	"time"

	"github.com/1broseidon/multiview/internal/geom"
)

func TestTickZeroDoesNotMove(t *testing.T) {
	m := NewManager[uint32](200*time.Millisecond, EaseLinear)
	m.Add(1, geom.Rect{X: 0, Y: 0, Width: 100, Height: 100})
	m.SetTarget(1, geom.Rect{X: 500, Y: 500, Width: 200, Height: 200})

	before, _ := m.Current(1)
	m.Tick(0)
	after, _ := m.Current(1)
	if before != after {
		t.Fatalf("Tick(0) moved window: %+v -> %+v", before, after)
	}
}

func TestTickReachesTargetAfterDuration(t *testing.T) {
	m := NewManager[uint32](100*time.Millisecond, EaseLinear)
	target := geom.Rect{X: 100, Y: 0, Width: 100, Height: 100}
	m.Add(1, geom.Rect{X: 0, Y: 0, Width: 100, Height: 100})
	m.SetTarget(1, target)

	m.Tick(50 * time.Millisecond)
	mid, _ := m.Current(1)
	if mid.X != 50 {
		t.Fatalf("expected halfway X=50, got %d", mid.X)
	}
	if !m.IsAnimating() {
		t.Fatalf("expected animation in flight")
	}

	m.Tick(60 * time.Millisecond)
	end, _ := m.Current(1)
	if end != target {
		t.Fatalf("expected target %+v, got %+v", target, end)
	}
	if m.IsAnimating() {
		t.Fatalf("expected animation to be settled")
	}
}

func TestSetTargetMidFlightContinuesFromCurrent(t *testing.T) {
	m := NewManager[uint32](100*time.Millisecond, EaseLinear)
	m.Add(1, geom.Rect{X: 0, Y: 0, Width: 10, Height: 10})
	m.SetTarget(1, geom.Rect{X: 100, Y: 0, Width: 10, Height: 10})
	m.Tick(50 * time.Millisecond)

	m.SetTarget(1, geom.Rect{X: 0, Y: 0, Width: 10, Height: 10})
	cur, _ := m.Current(1)
	if cur.X != 50 {
		t.Fatalf("retarget must not reset current position, got X=%d", cur.X)
	}
	m.Tick(50 * time.Millisecond)
	cur, _ = m.Current(1)
	if cur.X != 25 {
		t.Fatalf("expected X=25 halfway back, got %d", cur.X)
	}
}

func TestSetTargetWithinUsesGivenDuration(t *testing.T) {
	m := NewManager[uint32](300*time.Millisecond, EaseLinear)
	home := geom.Rect{X: 0, Y: 0, Width: 10, Height: 10}
	m.Add(1, home)
	m.SetTarget(1, geom.Rect{X: 300, Y: 0, Width: 10, Height: 10})
	m.Tick(60 * time.Millisecond)

	m.SetTargetWithin(1, home, 60*time.Millisecond)
	m.Tick(30 * time.Millisecond)
	if cur, _ := m.Current(1); cur.X != 30 {
		t.Fatalf("expected X=30 halfway back, got %d", cur.X)
	}
	m.Tick(30 * time.Millisecond)
	if cur, _ := m.Current(1); cur != home {
		t.Fatalf("expected home after the short duration, got %+v", cur)
	}

	m.SetTarget(1, geom.Rect{X: 300, Y: 0, Width: 10, Height: 10})
	m.Tick(150 * time.Millisecond)
	if cur, _ := m.Current(1); cur.X != 150 {
		t.Fatalf("later retargets should use the manager duration, got X=%d", cur.X)
	}
}

func TestSetTargetWithinZeroSnaps(t *testing.T) {
	m := NewManager[uint32](300*time.Millisecond, EaseLinear)
	m.Add(1, geom.Rect{Width: 10, Height: 10})
	target := geom.Rect{X: 40, Width: 10, Height: 10}
	m.SetTargetWithin(1, target, 0)
	if cur, _ := m.Current(1); cur != target {
		t.Fatalf("zero duration should snap, got %+v", cur)
	}
}

func TestRemoveDoesNotAffectOthers(t *testing.T) {
	m := NewManager[uint32](100*time.Millisecond, EaseLinear)
	m.Add(1, geom.Rect{Width: 10, Height: 10})
	m.Add(2, geom.Rect{Width: 10, Height: 10})
	m.SetTarget(1, geom.Rect{X: 100, Width: 10, Height: 10})
	m.SetTarget(2, geom.Rect{X: 100, Width: 10, Height: 10})
	m.Tick(30 * time.Millisecond)

	m.Remove(1)
	m.Tick(20 * time.Millisecond)
	cur, ok := m.Current(2)
	if !ok || cur.X != 50 {
		t.Fatalf("expected window 2 at X=50, got %+v (ok=%v)", cur, ok)
	}
	if m.Has(1) {
		t.Fatalf("window 1 should be gone")
	}
}

func TestZeroDurationSnaps(t *testing.T) {
	m := NewManager[uint32](0, nil)
	m.Add(7, geom.Rect{Width: 10, Height: 10})
	target := geom.Rect{X: 40, Y: 40, Width: 20, Height: 20}
	m.SetTarget(7, target)
	if cur, _ := m.Current(7); cur != target {
		t.Fatalf("expected snap to target, got %+v", cur)
	}
}

func TestIDsSorted(t *testing.T) {
	m := NewManager[uint32](time.Second, nil)
	for _, id := range []uint32{9, 3, 5} {
		m.Add(id, geom.Rect{})
	}
	ids := m.IDs()
	if len(ids) != 3 || ids[0] != 3 || ids[1] != 5 || ids[2] != 9 {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestEasingByName(t *testing.T) {
	for _, name := range EasingNames() {
		e, ok := EasingByName(name)
		if !ok {
			t.Fatalf("easing %q not registered", name)
		}
		if e(0) != 0 || e(1) != 1 {
			t.Fatalf("easing %q must map 0->0 and 1->1, got %v %v", name, e(0), e(1))
		}
	}
	if _, ok := EasingByName("bounce"); ok {
		t.Fatalf("unexpected easing bounce")
	}
}
