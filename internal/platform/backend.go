package platform

import (
	"github.com/1broseidon/multiview/internal/effect"
	"github.com/1broseidon/multiview/internal/geom"
)

// WindowID is a platform-neutral window identifier.
type WindowID = effect.WindowID

// Input receives grabbed pointer and keyboard input translated to the
// overview's vocabulary. Implementations must be safe to call from the
// backend's event goroutine.
type Input interface {
	Pointer(ev effect.PointerEvent)
	Key(k effect.Key)
}

// Backend abstracts the window system the overview drives. Desktop indices
// are one-based on this side of the interface.
type Backend interface {
	// Snapshot reads the screen, windows and desktops.
	Snapshot() (effect.Snapshot, error)
	MoveResize(id WindowID, bounds geom.Rect) error
	SetOpacity(id WindowID, opacity float64) error
	Activate(id WindowID) error
	SetDesktopCount(count int) error
	SetCurrentDesktop(desktop int) error
	MoveToDesktop(id WindowID, desktop int) error

	// GrabInput routes pointer and keyboard to in until ReleaseInput.
	GrabInput(in Input) error
	ReleaseInput()

	// DrawOverlay renders the thumbnail strip and highlight for frame.
	DrawOverlay(frame effect.Frame) error
	HideOverlay()

	// BindToggle registers a global hotkey.
	BindToggle(sequence string, fn func()) error
	UnbindAll()

	// EventLoop blocks dispatching window system events until Stop.
	EventLoop()
	Stop()
	Close()
}
