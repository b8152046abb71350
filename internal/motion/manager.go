package motion

import (
	"cmp"
	"slices"
	"time"

	"github.com/1broseidon/multiview/internal/geom"
)

// pair tracks one window's animation from start toward target.
type pair struct {
	start    geom.Rect
	current  geom.Rect
	target   geom.Rect
	elapsed  time.Duration
	duration time.Duration
}

// Manager interpolates a set of windows toward their target rectangles.
// It is not safe for concurrent use; the owner drives it from the frame loop.
type Manager[K cmp.Ordered] struct {
	duration time.Duration
	easing   Easing
	pairs    map[K]*pair
}

// NewManager creates a motion manager. A nil easing defaults to smoothstep.
func NewManager[K cmp.Ordered](duration time.Duration, easing Easing) *Manager[K] {
	if easing == nil {
		easing = EaseSmoothstep
	}
	return &Manager[K]{
		duration: duration,
		easing:   easing,
		pairs:    make(map[K]*pair),
	}
}

// SetDuration changes the duration used by subsequent retargets.
func (m *Manager[K]) SetDuration(d time.Duration) { m.duration = d }

// SetEasing changes the easing curve. Nil is ignored.
func (m *Manager[K]) SetEasing(e Easing) {
	if e != nil {
		m.easing = e
	}
}

// Add starts tracking id at initial. Re-adding an existing id resets it.
func (m *Manager[K]) Add(id K, initial geom.Rect) {
	m.pairs[id] = &pair{start: initial, current: initial, target: initial, duration: m.duration}
}

// Remove stops tracking id. Other windows are unaffected.
func (m *Manager[K]) Remove(id K) {
	delete(m.pairs, id)
}

// Clear drops every tracked window.
func (m *Manager[K]) Clear() {
	clear(m.pairs)
}

// Has reports whether id is tracked.
func (m *Manager[K]) Has(id K) bool {
	_, ok := m.pairs[id]
	return ok
}

// Len returns the number of tracked windows.
func (m *Manager[K]) Len() int { return len(m.pairs) }

// IDs returns the tracked ids in ascending order.
func (m *Manager[K]) IDs() []K {
	ids := make([]K, 0, len(m.pairs))
	for id := range m.pairs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// SetTarget retargets id without resetting its current position, so an
// in-flight animation continues smoothly toward the new destination.
func (m *Manager[K]) SetTarget(id K, target geom.Rect) bool {
	return m.SetTargetWithin(id, target, m.duration)
}

// SetTargetWithin is SetTarget with the move taking d instead of the
// manager's duration. Callers use it to land on target together with a
// timeline that is already part way through.
func (m *Manager[K]) SetTargetWithin(id K, target geom.Rect, d time.Duration) bool {
	p, ok := m.pairs[id]
	if !ok {
		return false
	}
	if p.target == target {
		return true
	}
	p.start = p.current
	p.target = target
	p.elapsed = 0
	p.duration = d
	if d <= 0 {
		p.current = target
	}
	return true
}

// Place moves id's current rectangle directly, keeping its target. The next
// ticks animate from rect back toward the target.
func (m *Manager[K]) Place(id K, rect geom.Rect) bool {
	p, ok := m.pairs[id]
	if !ok {
		return false
	}
	p.start = rect
	p.current = rect
	p.elapsed = 0
	p.duration = m.duration
	return true
}

// Current returns id's interpolated rectangle.
func (m *Manager[K]) Current(id K) (geom.Rect, bool) {
	p, ok := m.pairs[id]
	if !ok {
		return geom.Rect{}, false
	}
	return p.current, true
}

// Target returns id's destination rectangle.
func (m *Manager[K]) Target(id K) (geom.Rect, bool) {
	p, ok := m.pairs[id]
	if !ok {
		return geom.Rect{}, false
	}
	return p.target, true
}

// Settled reports whether id has reached its target.
func (m *Manager[K]) Settled(id K) bool {
	p, ok := m.pairs[id]
	return !ok || p.current == p.target
}

// IsAnimating reports whether any window is still moving.
func (m *Manager[K]) IsAnimating() bool {
	for _, p := range m.pairs {
		if p.current != p.target {
			return true
		}
	}
	return false
}

// Tick advances every window by elapsed. A zero or negative elapsed is a no-op.
func (m *Manager[K]) Tick(elapsed time.Duration) {
	if elapsed <= 0 {
		return
	}
	for _, p := range m.pairs {
		if p.current == p.target {
			continue
		}
		if p.duration <= 0 {
			p.current = p.target
			continue
		}
		p.elapsed += elapsed
		t := clamp01(float64(p.elapsed) / float64(p.duration))
		if t >= 1 {
			p.current = p.target
			continue
		}
		p.current = geom.Lerp(p.start, p.target, m.easing(t))
	}
}
