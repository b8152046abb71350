// Package desktop tracks virtual desktops and the windows assigned to them.
//
// Windows are owned by the host. The registry only stores what the overview
// needs to lay them out: geometry, aspect ratio and a back-reference to the
// desktop that holds them. Desktop indices are 1-based and contiguous.
package desktop

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/1broseidon/multiview/internal/geom"
)

var (
	// ErrDegenerateAspect rejects windows with zero height or width.
	ErrDegenerateAspect = errors.New("degenerate aspect ratio")
	// ErrUnknownWindow is returned for ids the registry does not track.
	ErrUnknownWindow = errors.New("unknown window")
	// ErrDesktopLimit is returned by Append when the maximum is reached.
	ErrDesktopLimit = errors.New("desktop limit reached")
)

// WindowID is the host's opaque window handle.
type WindowID uint32

// Window is one tracked window.
type Window struct {
	ID      WindowID
	Rect    geom.Rect
	Aspect  float64
	Desktop int
}

// Registry is the arena of windows plus the desktop set. It is not safe for
// concurrent use.
type Registry struct {
	windows     map[WindowID]*Window
	count       int
	current     int
	max         int
	highlighted WindowID
	hasHigh     bool
}

// NewRegistry creates a registry with count desktops (at least one). A max of
// zero means unlimited.
func NewRegistry(count, limit int) *Registry {
	r := &Registry{
		windows: make(map[WindowID]*Window),
		count:   1,
		current: 1,
		max:     limit,
	}
	r.SetCount(count)
	return r
}

// Count returns the number of desktops.
func (r *Registry) Count() int { return r.count }

// Current returns the committed current desktop.
func (r *Registry) Current() int { return r.current }

// Max returns the desktop limit (0 = unlimited).
func (r *Registry) Max() int { return r.max }

// SetMax changes the desktop limit. Existing desktops are kept.
func (r *Registry) SetMax(limit int) { r.max = limit }

// CanAppend reports whether another desktop may be appended.
func (r *Registry) CanAppend() bool {
	return r.max <= 0 || r.count < r.max
}

// Clamp maps index onto the nearest valid desktop.
func (r *Registry) Clamp(index int) int {
	return min(max(index, 1), r.count)
}

// Add tracks a window, or updates it if already present.
func (r *Registry) Add(id WindowID, rect geom.Rect, desktop int) error {
	aspect := rect.AspectRatio()
	if !geom.ValidAspect(aspect) {
		return fmt.Errorf("window %d (%dx%d): %w", id, rect.Width, rect.Height, ErrDegenerateAspect)
	}
	r.windows[id] = &Window{
		ID:      id,
		Rect:    rect,
		Aspect:  aspect,
		Desktop: r.Clamp(desktop),
	}
	return nil
}

// RemoveWindow stops tracking id. It reports whether the window was present.
func (r *Registry) RemoveWindow(id WindowID) bool {
	if _, ok := r.windows[id]; !ok {
		return false
	}
	delete(r.windows, id)
	if r.hasHigh && r.highlighted == id {
		r.hasHigh = false
	}
	return true
}

// Has reports whether id is tracked.
func (r *Registry) Has(id WindowID) bool {
	_, ok := r.windows[id]
	return ok
}

// Window returns a copy of the tracked window.
func (r *Registry) Window(id WindowID) (Window, bool) {
	w, ok := r.windows[id]
	if !ok {
		return Window{}, false
	}
	return *w, true
}

// Len returns the number of tracked windows.
func (r *Registry) Len() int { return len(r.windows) }

// UpdateGeometry records a new rectangle for id. A degenerate rectangle is
// rejected and the previous geometry kept.
func (r *Registry) UpdateGeometry(id WindowID, rect geom.Rect) error {
	w, ok := r.windows[id]
	if !ok {
		return fmt.Errorf("update window %d: %w", id, ErrUnknownWindow)
	}
	aspect := rect.AspectRatio()
	if !geom.ValidAspect(aspect) {
		return fmt.Errorf("window %d (%dx%d): %w", id, rect.Width, rect.Height, ErrDegenerateAspect)
	}
	w.Rect = rect
	w.Aspect = aspect
	return nil
}

// MoveWindow assigns id to desktop, clamped to the valid range.
func (r *Registry) MoveWindow(id WindowID, desktop int) error {
	w, ok := r.windows[id]
	if !ok {
		return fmt.Errorf("move window %d: %w", id, ErrUnknownWindow)
	}
	w.Desktop = r.Clamp(desktop)
	return nil
}

// SetHighlighted highlights id, clearing any previous highlight.
func (r *Registry) SetHighlighted(id WindowID) error {
	if _, ok := r.windows[id]; !ok {
		return fmt.Errorf("highlight window %d: %w", id, ErrUnknownWindow)
	}
	r.highlighted = id
	r.hasHigh = true
	return nil
}

// ClearHighlight removes the highlight.
func (r *Registry) ClearHighlight() { r.hasHigh = false }

// Highlighted returns the highlighted window, if any.
func (r *Registry) Highlighted() (WindowID, bool) {
	return r.highlighted, r.hasHigh
}

// IDs returns every tracked id in ascending order.
func (r *Registry) IDs() []WindowID {
	ids := make([]WindowID, 0, len(r.windows))
	for id := range r.windows {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// WindowsOn returns the windows on desktop, ordered by id.
func (r *Registry) WindowsOn(desktop int) []Window {
	var out []Window
	for _, w := range r.windows {
		if w.Desktop == desktop {
			out = append(out, *w)
		}
	}
	slices.SortFunc(out, func(a, b Window) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Append adds a desktop at the end and returns its index.
func (r *Registry) Append() (int, error) {
	if !r.CanAppend() {
		return r.count, fmt.Errorf("append desktop %d of max %d: %w", r.count+1, r.max, ErrDesktopLimit)
	}
	r.count++
	return r.count, nil
}

// Remove deletes desktop index and re-indexes the desktops above it.
//
// The removed desktop's windows move to the desktop that occupies its former
// position after re-indexing, or to the new last desktop when the removed one
// was last. The current desktop follows the same rule. Removing an absent
// index or the only desktop is a no-op and reports false.
func (r *Registry) Remove(index int) bool {
	if index < 1 || index > r.count || r.count <= 1 {
		return false
	}
	newCount := r.count - 1
	dest := min(index, newCount)
	for _, w := range r.windows {
		switch {
		case w.Desktop == index:
			w.Desktop = dest
		case w.Desktop > index:
			w.Desktop--
		}
	}
	switch {
	case r.current == index:
		r.current = dest
	case r.current > index:
		r.current--
	}
	r.count = newCount
	return true
}

// SetCurrent commits index as the current desktop, clamped, and returns the
// resulting current desktop.
func (r *Registry) SetCurrent(index int) int {
	r.current = r.Clamp(index)
	return r.current
}

// SetCount resizes the desktop set as reported by the host. Windows left on
// desktops that no longer exist move to the new last desktop.
func (r *Registry) SetCount(n int) {
	n = max(n, 1)
	r.count = n
	for _, w := range r.windows {
		if w.Desktop > n {
			w.Desktop = n
		}
	}
	r.current = r.Clamp(r.current)
}

// Assignments returns the desktop of every tracked window.
func (r *Registry) Assignments() map[WindowID]int {
	out := make(map[WindowID]int, len(r.windows))
	for id, w := range r.windows {
		out[id] = w.Desktop
	}
	return out
}
