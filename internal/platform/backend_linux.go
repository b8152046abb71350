//go:build linux

package platform

import (
	"fmt"
	"sort"
	"sync"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/multiview/internal/activation"
	"github.com/1broseidon/multiview/internal/effect"
	"github.com/1broseidon/multiview/internal/geom"
	"github.com/1broseidon/multiview/internal/x11"
)

// LinuxBackend drives an X11 session through EWMH.
type LinuxBackend struct {
	conn    *x11.Connection
	grab    *x11.InputGrab
	overlay *x11.Overlay

	mu     sync.Mutex
	input  Input
	screen geom.Rect
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend wraps an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	b := &LinuxBackend{conn: conn}
	b.grab = x11.NewInputGrab(conn, b)
	b.overlay = x11.NewOverlay(conn)
	return b
}

// NewLinuxBackendFromDisplay opens a fresh X11 connection to display.
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn), nil
}

// Snapshot reads the screen under the pointer and every normal client.
// Sticky windows are skipped; they belong to no single desktop.
func (b *LinuxBackend) Snapshot() (effect.Snapshot, error) {
	count, err := b.conn.DesktopCount()
	if err != nil {
		return effect.Snapshot{}, err
	}
	current, err := b.conn.CurrentDesktop()
	if err != nil {
		return effect.Snapshot{}, err
	}
	clients, err := b.conn.Clients()
	if err != nil {
		return effect.Snapshot{}, err
	}

	screen := b.conn.Screen()
	b.mu.Lock()
	b.screen = screen
	b.mu.Unlock()

	snap := effect.Snapshot{
		Screen:         screen,
		DesktopCount:   count,
		CurrentDesktop: current + 1,
		Windows:        make([]effect.WindowInfo, 0, len(clients)),
	}
	for _, c := range clients {
		if c.Desktop == x11.Sticky {
			continue
		}
		snap.Windows = append(snap.Windows, effect.WindowInfo{
			ID:      WindowID(c.ID),
			Rect:    c.Rect,
			Desktop: c.Desktop + 1,
		})
	}
	sort.Slice(snap.Windows, func(i, j int) bool { return snap.Windows[i].ID < snap.Windows[j].ID })
	return snap, nil
}

func (b *LinuxBackend) MoveResize(id WindowID, bounds geom.Rect) error {
	return b.conn.MoveResizeWindow(xproto.Window(id), bounds)
}

func (b *LinuxBackend) SetOpacity(id WindowID, opacity float64) error {
	return b.conn.SetOpacity(xproto.Window(id), opacity)
}

func (b *LinuxBackend) Activate(id WindowID) error {
	return b.conn.ActivateWindow(xproto.Window(id))
}

func (b *LinuxBackend) SetDesktopCount(count int) error {
	return b.conn.SetDesktopCount(count)
}

func (b *LinuxBackend) SetCurrentDesktop(desktop int) error {
	return b.conn.SetCurrentDesktop(desktop - 1)
}

func (b *LinuxBackend) MoveToDesktop(id WindowID, desktop int) error {
	return b.conn.SetWindowDesktop(xproto.Window(id), desktop-1)
}

func (b *LinuxBackend) GrabInput(in Input) error {
	b.mu.Lock()
	b.input = in
	b.mu.Unlock()
	return b.grab.Grab()
}

func (b *LinuxBackend) ReleaseInput() {
	b.grab.Release()
	b.mu.Lock()
	b.input = nil
	b.mu.Unlock()
}

func (b *LinuxBackend) DrawOverlay(frame effect.Frame) error {
	b.mu.Lock()
	screen := b.screen
	b.mu.Unlock()
	return b.overlay.Render(SceneFromFrame(frame, screen))
}

func (b *LinuxBackend) HideOverlay() {
	b.overlay.HideAll()
}

func (b *LinuxBackend) BindToggle(sequence string, fn func()) error {
	return b.conn.BindHotkey(sequence, fn)
}

func (b *LinuxBackend) UnbindAll() {
	b.conn.UnbindHotkeys()
}

func (b *LinuxBackend) EventLoop() { b.conn.EventLoop() }

func (b *LinuxBackend) Stop() { b.conn.Quit() }

// Close destroys overlay and grab windows and disconnects.
func (b *LinuxBackend) Close() {
	b.overlay.Cleanup()
	b.grab.Destroy()
	b.conn.Close()
}

// x11.InputSink

func (b *LinuxBackend) Key(keysym xproto.Keysym) {
	k := KeyFromKeysym(keysym)
	if k == effect.KeyNone {
		return
	}
	if in := b.currentInput(); in != nil {
		in.Key(k)
	}
}

func (b *LinuxBackend) PointerMoved(p geom.Point) {
	if in := b.currentInput(); in != nil {
		in.Pointer(effect.PointerEvent{Kind: effect.PointerMove, Pos: p})
	}
}

func (b *LinuxBackend) ButtonPressed(p geom.Point, button int) {
	if in := b.currentInput(); in != nil {
		in.Pointer(effect.PointerEvent{Kind: effect.PointerPress, Pos: p, Button: button})
	}
}

func (b *LinuxBackend) ButtonReleased(p geom.Point, button int) {
	if in := b.currentInput(); in != nil {
		in.Pointer(effect.PointerEvent{Kind: effect.PointerRelease, Pos: p, Button: button})
	}
}

func (b *LinuxBackend) currentInput() Input {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.input
}

// KeyFromKeysym maps X keysyms onto overview keys.
func KeyFromKeysym(keysym xproto.Keysym) effect.Key {
	switch keysym {
	case x11.KeysymLeft:
		return effect.KeyLeft
	case x11.KeysymRight:
		return effect.KeyRight
	case x11.KeysymReturn, x11.KeysymKPEnter:
		return effect.KeyReturn
	case x11.KeysymEscape:
		return effect.KeyEscape
	default:
		return effect.KeyNone
	}
}

var overviewHint = []string{
	"Overview",
	"Left/Right  browse desktops",
	"Return      switch to desktop",
	"Click       pick window",
	"Drag        move to desktop",
	"Esc         close",
}

// stripPadding surrounds the thumbnails with the strip background.
const stripPadding = 8

// SceneFromFrame turns a frame into overlay boxes: strip background,
// thumbnails with their miniatures, the plus button and the highlight.
func SceneFromFrame(f effect.Frame, screen geom.Rect) x11.Scene {
	scene := x11.Scene{Bounds: screen}
	if f.Phase == activation.Closed || len(f.Thumbnails) == 0 {
		return scene
	}

	strip := f.Thumbnails[0].Rect
	for _, th := range f.Thumbnails[1:] {
		strip = strip.Union(th.Rect)
	}
	if !f.PlusButton.Empty() {
		strip = strip.Union(f.PlusButton)
	}
	strip = strip.Grow(stripPadding).Intersect(screen)
	scene.Boxes = append(scene.Boxes, x11.Box{Rect: strip, Color: x11.ColorStripBg})
	scene.Avoid = append(scene.Avoid, strip)

	for _, th := range f.Thumbnails {
		scene.Boxes = append(scene.Boxes, x11.Box{Rect: th.Rect, Color: x11.ColorThumb})
		for _, mini := range th.Windows {
			scene.Boxes = append(scene.Boxes, x11.Box{Rect: mini.Rect, Color: x11.ColorMini})
		}
		edge := uint32(x11.ColorThumbEdge)
		switch {
		case th.Target:
			edge = x11.ColorTarget
		case th.Current:
			edge = x11.ColorCurrent
		}
		scene.Boxes = append(scene.Boxes, x11.Box{Rect: th.Rect, Color: edge, Outlined: true})
	}

	if p := f.PlusButton; !p.Empty() {
		scene.Boxes = append(scene.Boxes, x11.Box{Rect: p, Color: x11.ColorPlus})
		bar := max(p.Width/8, 2)
		arm := p.Width / 2
		c := p.Center()
		scene.Boxes = append(scene.Boxes,
			x11.Box{Rect: geom.Rect{X: c.X - arm/2, Y: c.Y - bar/2, Width: arm, Height: bar}, Color: x11.ColorHintText},
			x11.Box{Rect: geom.Rect{X: c.X - bar/2, Y: c.Y - arm/2, Width: bar, Height: arm}, Color: x11.ColorHintText},
		)
	}

	for _, w := range f.Windows {
		scene.Avoid = append(scene.Avoid, w.Rect)
		if w.Highlighted {
			scene.Boxes = append(scene.Boxes, x11.Box{Rect: w.Rect, Color: x11.ColorHighlight, Outlined: true})
		}
	}

	if f.Phase == activation.Open {
		scene.Hint = overviewHint
	}
	return scene
}
