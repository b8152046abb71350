package activation

import (
	"math"
	"testing"
	"time"

	"github.com/1broseidon/multiview/internal/motion"
)

var allowed = map[Transition]bool{
	{Closed, Opening}:  true,
	{Opening, Open}:    true,
	{Open, Closing}:    true,
	{Closing, Closed}:  true,
	{Opening, Closing}: true, // reversal
	{Closing, Opening}: true, // reversal
}

func TestFullCycle(t *testing.T) {
	m := New(100*time.Millisecond, motion.EaseLinear)
	if m.Phase() != Closed {
		t.Fatalf("expected Closed initially, got %s", m.Phase())
	}

	tr, ok := m.Toggle()
	if !ok || tr != (Transition{Closed, Opening}) {
		t.Fatalf("expected Closed->Opening, got %+v (ok=%v)", tr, ok)
	}
	if _, ok := m.Tick(50 * time.Millisecond); ok {
		t.Fatalf("no transition expected halfway")
	}
	if got := m.Progress(); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("expected progress 0.5, got %v", got)
	}
	tr, ok = m.Tick(50 * time.Millisecond)
	if !ok || tr != (Transition{Opening, Open}) {
		t.Fatalf("expected Opening->Open, got %+v (ok=%v)", tr, ok)
	}
	if m.Visibility() != 1 {
		t.Fatalf("expected full visibility when open")
	}

	tr, ok = m.SetActive(false)
	if !ok || tr != (Transition{Open, Closing}) {
		t.Fatalf("expected Open->Closing, got %+v", tr)
	}
	tr, ok = m.Tick(200 * time.Millisecond)
	if !ok || tr != (Transition{Closing, Closed}) {
		t.Fatalf("expected Closing->Closed, got %+v", tr)
	}
	if m.Visibility() != 0 || m.Active() {
		t.Fatalf("expected hidden after closing")
	}
}

func TestToggleWhileOpeningReverses(t *testing.T) {
	m := New(100*time.Millisecond, motion.EaseLinear)
	m.Toggle()
	m.Tick(30 * time.Millisecond)
	before := m.Visibility()

	tr, ok := m.Toggle()
	if !ok || tr != (Transition{Opening, Closing}) {
		t.Fatalf("expected Opening->Closing reversal, got %+v", tr)
	}
	if got := m.Visibility(); got != before {
		t.Fatalf("reversal jumped visibility %v -> %v", before, got)
	}
	if got := m.Progress(); math.Abs(got-0.7) > 1e-9 {
		t.Fatalf("expected closing progress 0.7, got %v", got)
	}

	tr, ok = m.Tick(30 * time.Millisecond)
	if !ok || tr != (Transition{Closing, Closed}) {
		t.Fatalf("expected to reach Closed without passing Open, got %+v (ok=%v)", tr, ok)
	}
}

func TestReversalIsContinuousForAsymmetricEasing(t *testing.T) {
	m := New(300*time.Millisecond, motion.EaseOutCubic)
	m.SetActive(true)
	m.Tick(100 * time.Millisecond)
	before := m.Visibility()
	m.SetActive(false)
	if after := m.Visibility(); after != before {
		t.Fatalf("visibility jumped on reversal: %v -> %v", before, after)
	}
	m.SetActive(true)
	if after := m.Visibility(); after != before {
		t.Fatalf("visibility jumped on second reversal: %v -> %v", before, after)
	}
}

func TestRemaining(t *testing.T) {
	m := New(300*time.Millisecond, motion.EaseLinear)
	if got := m.Remaining(); got != 0 {
		t.Fatalf("closed machine should have nothing remaining, got %v", got)
	}
	m.SetActive(true)
	m.Tick(100 * time.Millisecond)
	if got := m.Remaining(); got < 199*time.Millisecond || got > 200*time.Millisecond {
		t.Fatalf("expected ~200ms left while opening, got %v", got)
	}

	m.Toggle()
	left := m.Remaining()
	if left < 99*time.Millisecond || left > 100*time.Millisecond {
		t.Fatalf("expected ~100ms to close again, got %v", left)
	}
	if tr, ok := m.Tick(left + time.Nanosecond); !ok || tr.To != Closed {
		t.Fatalf("ticking the remaining time should close, got %v %v (phase %s)", tr, ok, m.Phase())
	}
	if got := m.Remaining(); got != 0 {
		t.Fatalf("expected 0 after closing, got %v", got)
	}
}

func TestRedundantRequestsAreNoops(t *testing.T) {
	m := New(100*time.Millisecond, nil)
	if _, ok := m.SetActive(false); ok {
		t.Fatalf("SetActive(false) while Closed must be a no-op")
	}
	m.SetActive(true)
	if _, ok := m.SetActive(true); ok {
		t.Fatalf("SetActive(true) while Opening must be a no-op")
	}
}

func TestTickZeroIsNoop(t *testing.T) {
	m := New(100*time.Millisecond, nil)
	m.SetActive(true)
	if _, ok := m.Tick(0); ok {
		t.Fatalf("Tick(0) produced a transition")
	}
	if m.Progress() != 0 {
		t.Fatalf("Tick(0) advanced the timeline")
	}
}

func TestZeroDurationStillPassesThroughOpening(t *testing.T) {
	m := New(0, nil)
	tr, _ := m.SetActive(true)
	if tr.To != Opening {
		t.Fatalf("expected Opening, got %s", tr.To)
	}
	tr, ok := m.Tick(time.Millisecond)
	if !ok || tr.To != Open {
		t.Fatalf("expected Open after one tick, got %+v", tr)
	}
}

func TestManySmallTicksComplete(t *testing.T) {
	m := New(100*time.Millisecond, nil)
	m.SetActive(true)
	for i := 0; i < 10; i++ {
		m.Tick(10 * time.Millisecond)
	}
	if m.Phase() != Open {
		t.Fatalf("expected Open after ten 10ms ticks, got %s", m.Phase())
	}
}

func TestOnlyAllowedTransitions(t *testing.T) {
	m := New(50*time.Millisecond, nil)
	ops := []func() (Transition, bool){
		m.Toggle,
		func() (Transition, bool) { return m.SetActive(true) },
		func() (Transition, bool) { return m.SetActive(false) },
		func() (Transition, bool) { return m.Tick(7 * time.Millisecond) },
		func() (Transition, bool) { return m.Tick(20 * time.Millisecond) },
		func() (Transition, bool) { return m.Tick(60 * time.Millisecond) },
	}
	seq := []int{0, 3, 3, 1, 4, 2, 3, 0, 5, 5, 2, 1, 4, 0, 3, 0, 4, 4, 5, 2, 5, 0, 3, 3, 3, 3}
	for i, op := range seq {
		tr, ok := ops[op]()
		if ok && !allowed[tr] {
			t.Fatalf("step %d: illegal transition %s -> %s", i, tr.From, tr.To)
		}
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		p    Phase
		want string
	}{
		{Closed, "closed"},
		{Opening, "opening"},
		{Open, "open"},
		{Closing, "closing"},
		{Phase(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.p, got, tt.want)
		}
	}
}
