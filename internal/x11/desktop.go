package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Desktop numbers below are EWMH's zero-based indices. Callers convert to
// the overview's one-based desktops.

// Sticky is returned by WindowDesktop for windows shown on every desktop.
const Sticky = -1

// sourcePager marks client messages as coming from a pager.
const sourcePager = 2

// CurrentDesktop reads _NET_CURRENT_DESKTOP.
func (c *Connection) CurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// DesktopCount reads _NET_NUMBER_OF_DESKTOPS.
func (c *Connection) DesktopCount() (int, error) {
	count, err := ewmh.NumberOfDesktopsGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get desktop count: %w", err)
	}
	return int(count), nil
}

// WindowDesktop reads _NET_WM_DESKTOP. Sticky windows report Sticky.
func (c *Connection) WindowDesktop(win xproto.Window) (int, error) {
	desktop, err := ewmh.WmDesktopGet(c.XUtil, win)
	if err != nil {
		return 0, fmt.Errorf("failed to get window desktop: %w", err)
	}
	if desktop == 0xFFFFFFFF {
		return Sticky, nil
	}
	return int(desktop), nil
}

// SetDesktopCount asks the window manager to resize the desktop set.
func (c *Connection) SetDesktopCount(count int) error {
	if count < 1 {
		return fmt.Errorf("desktop count must be >= 1, got %d", count)
	}
	return c.sendRootMessage(c.Root, "_NET_NUMBER_OF_DESKTOPS", uint32(count))
}

// SetCurrentDesktop switches to desktop.
func (c *Connection) SetCurrentDesktop(desktop int) error {
	return c.sendRootMessage(c.Root, "_NET_CURRENT_DESKTOP", uint32(desktop), uint32(xproto.TimeCurrentTime))
}

// SetWindowDesktop moves win to desktop.
func (c *Connection) SetWindowDesktop(win xproto.Window, desktop int) error {
	return c.sendRootMessage(win, "_NET_WM_DESKTOP", uint32(desktop), sourcePager)
}

// ActivateWindow raises and focuses win via _NET_ACTIVE_WINDOW.
func (c *Connection) ActivateWindow(win xproto.Window) error {
	return c.sendRootMessage(win, "_NET_ACTIVE_WINDOW", sourcePager, uint32(xproto.TimeCurrentTime))
}

// ActiveWindow reads _NET_ACTIVE_WINDOW.
func (c *Connection) ActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// sendRootMessage sends an EWMH client message about win to the root
// window. The message is built by hand because some xgbutil ewmh request
// helpers panic on uint/int assertions.
func (c *Connection) sendRootMessage(win xproto.Window, atom string, data ...uint32) error {
	reply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len(atom)), atom).Reply()
	if err != nil {
		return fmt.Errorf("failed to intern %s: %w", atom, err)
	}

	payload := make([]uint32, 5)
	copy(payload, data)
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   reply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New(payload),
	}

	err = xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
	if err != nil {
		return fmt.Errorf("send %s: %w", atom, err)
	}
	return nil
}
