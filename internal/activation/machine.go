// Package activation holds the overview's lifecycle and the timeline that
// drives its opening and closing animation.
package activation

import (
	"time"

	"github.com/1broseidon/multiview/internal/motion"
)

// epsilon absorbs float drift from summing many frame steps.
const epsilon = 1e-9

// Phase represents the lifecycle stage of the overview
type Phase int

const (
	// Closed means the overview is hidden
	Closed Phase = iota
	// Opening means the overview is animating in
	Opening
	// Open means the overview is fully shown and accepts selection input
	Open
	// Closing means the overview is animating out
	Closing
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case Closed:
		return "closed"
	case Opening:
		return "opening"
	case Open:
		return "open"
	case Closing:
		return "closing"
	default:
		return "unknown"
	}
}

// Transition records a phase change.
type Transition struct {
	From Phase
	To   Phase
}

// Machine is the activation state machine. The timeline is stored as the
// amount the overview is shown, 0 when closed and 1 when open, so reversing
// mid-animation keeps the visuals continuous.
type Machine struct {
	phase    Phase
	shown    float64
	duration time.Duration
	easing   motion.Easing
}

// New creates a closed machine. A nil easing defaults to smoothstep.
func New(duration time.Duration, easing motion.Easing) *Machine {
	if easing == nil {
		easing = motion.EaseSmoothstep
	}
	return &Machine{duration: duration, easing: easing}
}

// SetDuration changes the animation length.
func (m *Machine) SetDuration(d time.Duration) { m.duration = d }

// SetEasing changes the easing applied by Visibility. Nil is ignored.
func (m *Machine) SetEasing(e motion.Easing) {
	if e != nil {
		m.easing = e
	}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase { return m.phase }

// Active reports whether the overview is anything but Closed.
func (m *Machine) Active() bool { return m.phase != Closed }

// Progress returns the timeline value of the current phase in [0,1]: how far
// Opening or Closing has advanced. It is 0 when Closed and 1 when Open.
func (m *Machine) Progress() float64 {
	switch m.phase {
	case Opening, Open:
		return m.shown
	case Closing:
		return 1 - m.shown
	default:
		return 0
	}
}

// Remaining is how long the running animation needs to finish at the
// current duration. It is 0 while Closed or Open. The value is rounded
// down so anything timed with it finishes no later than the machine.
func (m *Machine) Remaining() time.Duration {
	var left float64
	switch m.phase {
	case Opening:
		left = 1 - m.shown
	case Closing:
		left = m.shown
	default:
		return 0
	}
	if m.duration <= 0 || left <= 0 {
		return 0
	}
	return time.Duration(left * float64(m.duration))
}

// Visibility returns the eased amount the overview is shown, 0 when closed
// and 1 when open. It depends only on the shown amount, so a reversal never
// jumps.
func (m *Machine) Visibility() float64 {
	switch {
	case m.shown <= 0:
		return 0
	case m.shown >= 1:
		return 1
	}
	return m.easing(m.shown)
}

// SetActive requests the overview to be shown or hidden. It reports the
// resulting transition, if any. Requests that match the current direction
// are no-ops; requests against an in-flight animation reverse it in place.
func (m *Machine) SetActive(active bool) (Transition, bool) {
	from := m.phase
	switch {
	case active && (from == Closed || from == Closing):
		m.phase = Opening
	case !active && (from == Open || from == Opening):
		m.phase = Closing
	default:
		return Transition{}, false
	}
	return Transition{From: from, To: m.phase}, true
}

// Toggle flips the requested direction.
func (m *Machine) Toggle() (Transition, bool) {
	return m.SetActive(m.phase == Closed || m.phase == Closing)
}

// Tick advances the timeline. It reports a transition when an animation
// completes. A zero or negative elapsed is a no-op.
func (m *Machine) Tick(elapsed time.Duration) (Transition, bool) {
	if elapsed <= 0 {
		return Transition{}, false
	}
	from := m.phase
	switch from {
	case Opening:
		m.shown += m.step(elapsed)
		if m.shown >= 1-epsilon {
			m.finish()
		}
	case Closing:
		m.shown -= m.step(elapsed)
		if m.shown <= epsilon {
			m.finish()
		}
	}
	if m.phase != from {
		return Transition{From: from, To: m.phase}, true
	}
	return Transition{}, false
}

func (m *Machine) step(elapsed time.Duration) float64 {
	if m.duration <= 0 {
		return 1
	}
	return float64(elapsed) / float64(m.duration)
}

func (m *Machine) finish() {
	switch m.phase {
	case Opening:
		m.phase = Open
		m.shown = 1
	case Closing:
		m.phase = Closed
		m.shown = 0
	}
}
