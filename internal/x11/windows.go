package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/multiview/internal/geom"
)

// Client is a managed top-level window.
type Client struct {
	ID      xproto.Window
	Desktop int // zero-based, or Sticky
	Rect    geom.Rect
	Class   string
}

// Clients lists normal, visible windows from _NET_CLIENT_LIST with their
// decorated geometry. Windows whose geometry cannot be read are skipped.
func (c *Connection) Clients() ([]Client, error) {
	ids, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}

	out := make([]Client, 0, len(ids))
	for _, id := range ids {
		if !c.IsNormalWindow(id) || c.isHidden(id) {
			continue
		}
		desktop, err := c.WindowDesktop(id)
		if err != nil {
			continue
		}
		rect, err := c.WindowRect(id)
		if err != nil {
			continue
		}
		out = append(out, Client{
			ID:      id,
			Desktop: desktop,
			Rect:    rect,
			Class:   c.windowClass(id),
		})
	}
	return out, nil
}

// WindowRect returns the frame geometry including decorations.
func (c *Connection) WindowRect(id xproto.Window) (geom.Rect, error) {
	r, err := xwindow.New(c.XUtil, id).DecorGeometry()
	if err != nil {
		return geom.Rect{}, err
	}
	return geom.FromXRect(r), nil
}

// MoveResizeWindow places the decorated frame of id at r.
func (c *Connection) MoveResizeWindow(id xproto.Window, r geom.Rect) error {
	if r.Empty() {
		return fmt.Errorf("refusing to resize window %d to %dx%d", id, r.Width, r.Height)
	}
	// Maximized windows ignore resize requests on most window managers.
	_ = c.unmaximizeWindow(id)

	win := xwindow.New(c.XUtil, id)
	if err := win.WMMoveResize(r.X, r.Y, r.Width, r.Height); err != nil {
		win.MoveResize(r.X, r.Y, r.Width, r.Height)
	}
	return nil
}

// SetOpacity sets _NET_WM_WINDOW_OPACITY, honoured by compositing managers.
// Fully opaque removes the property.
func (c *Connection) SetOpacity(id xproto.Window, opacity float64) error {
	if opacity >= 1 {
		atom, err := xprop.Atm(c.XUtil, "_NET_WM_WINDOW_OPACITY")
		if err != nil {
			return err
		}
		return xproto.DeletePropertyChecked(c.XUtil.Conn(), id, atom).Check()
	}
	opacity = max(opacity, 0)
	return xprop.ChangeProp32(c.XUtil, id, "_NET_WM_WINDOW_OPACITY", "CARDINAL", uint(opacity*0xffffffff))
}

func (c *Connection) unmaximizeWindow(id xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, id)
	if err != nil {
		return err
	}
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT":
			if err := ewmh.WmStateReq(c.XUtil, id, ewmh.StateRemove, state); err != nil {
				return err
			}
		}
	}
	return nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(id xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, id)
	if err != nil {
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return len(types) == 0
}

func (c *Connection) isHidden(id xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.XUtil, id)
	if err != nil {
		return false
	}
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_HIDDEN", "_NET_WM_STATE_FULLSCREEN", "_NET_WM_STATE_SKIP_PAGER":
			return true
		}
	}
	return false
}

func (c *Connection) windowClass(id xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, id)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}
