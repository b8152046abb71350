package effect

import (
	"github.com/1broseidon/multiview/internal/activation"
	"github.com/1broseidon/multiview/internal/geom"
)

// pressState tracks a primary button press until release.
type pressState struct {
	origin    geom.Point
	pointer   geom.Point
	window    WindowID
	hasWindow bool
	startRect geom.Rect
	dragging  bool
}

// HandlePointer routes a pointer event. Events are ignored while Closed;
// clicks are only interpreted while Open. It reports whether the event was
// consumed.
func (c *Controller) HandlePointer(ev PointerEvent) bool {
	if !c.machine.Active() {
		return false
	}
	switch ev.Kind {
	case PointerMove:
		c.pointerMoved(ev.Pos)
	case PointerPress:
		if ev.Button == ButtonPrimary && c.machine.Phase() == activation.Open {
			c.pointerPressed(ev.Pos)
		}
	case PointerRelease:
		if ev.Button == ButtonPrimary {
			c.pointerReleased(ev.Pos)
		}
	}
	return true
}

// HandleKey routes a key press. Keys act only while Open; they are still
// consumed during Opening and Closing.
func (c *Controller) HandleKey(k Key) bool {
	if !c.machine.Active() {
		return false
	}
	if c.machine.Phase() != activation.Open {
		return true
	}
	switch k {
	case KeyLeft:
		c.cycleTarget(-1)
	case KeyRight:
		c.cycleTarget(1)
	case KeyReturn:
		c.commit()
	case KeyEscape:
		c.cancel()
	default:
		return false
	}
	return true
}

func (c *Controller) pointerMoved(p geom.Point) {
	if press := c.press; press != nil {
		press.pointer = p
		if press.hasWindow && !press.dragging && beyond(press.origin, p, c.opts.DragThreshold) {
			press.dragging = true
			c.logger.Debug("window drag started", "window", press.window)
		}
		if press.dragging {
			c.motion.Place(press.window, c.dragRect())
			return
		}
	}
	if c.machine.Phase() == activation.Closing {
		return
	}
	if id, ok := c.windowAt(p); ok {
		_ = c.reg.SetHighlighted(id)
	} else {
		c.reg.ClearHighlight()
	}
}

func (c *Controller) pointerPressed(p geom.Point) {
	c.press = &pressState{origin: p, pointer: p}
	if id, ok := c.windowAt(p); ok {
		c.press.window = id
		c.press.hasWindow = true
		c.press.startRect, _ = c.motion.Current(id)
	}
}

func (c *Controller) pointerReleased(p geom.Point) {
	press := c.press
	c.press = nil
	if press == nil || c.machine.Phase() != activation.Open {
		return
	}
	if press.dragging {
		c.dropWindow(press.window, p)
		return
	}

	switch {
	case c.strip.PlusButtonAt(press.origin):
		_, _ = c.AppendDesktop()
	case c.strip.DesktopIndexAt(press.origin) > 0:
		c.ChangeCurrentDesktop(c.strip.DesktopIndexAt(press.origin))
	case press.hasWindow:
		c.selectWindow(press.window)
	default:
		c.SetActive(false)
	}
}

// dragRect follows the pointer with the window grabbed at its press offset.
func (c *Controller) dragRect() geom.Rect {
	p := c.press
	return p.startRect.Translate(p.pointer.X-p.origin.X, p.pointer.Y-p.origin.Y)
}

// dropWindow moves a dragged window to the thumbnail under p. Dropped
// anywhere else it animates back to its slot.
func (c *Controller) dropWindow(id WindowID, p geom.Point) {
	w, ok := c.reg.Window(id)
	if !ok {
		return
	}
	d := c.strip.DesktopIndexAt(p)
	if d == 0 || d == w.Desktop {
		return
	}
	if err := c.reg.MoveWindow(id, d); err != nil {
		return
	}
	c.queue(Command{Kind: CmdMoveWindowToDesktop, Window: id, Desktop: d})
	c.dirty = true
	c.logger.Debug("window moved to desktop", "window", id, "from", w.Desktop, "to", d)
}

// selectWindow highlights id and closes the overview with it raised. If the
// overview was browsing another desktop, that desktop is committed.
func (c *Controller) selectWindow(id WindowID) {
	_ = c.reg.SetHighlighted(id)
	if c.targetDesktop != c.reg.Current() {
		c.reg.SetCurrent(c.targetDesktop)
		c.queue(Command{Kind: CmdSetCurrentDesktop, Desktop: c.targetDesktop})
	}
	c.queue(Command{Kind: CmdActivateWindow, Window: id})
	c.SetActive(false)
}

// cycleTarget moves the displayed desktop left or right, wrapping, without
// committing it.
func (c *Controller) cycleTarget(delta int) {
	n := c.reg.Count()
	next := ((c.targetDesktop-1+delta)%n+n)%n + 1
	if next == c.targetDesktop {
		return
	}
	c.targetDesktop = next
	c.reg.ClearHighlight()
	c.dirty = true
}

// commit makes the displayed desktop current, raises the highlighted window
// if there is one, and closes.
func (c *Controller) commit() {
	if c.targetDesktop != c.reg.Current() {
		c.reg.SetCurrent(c.targetDesktop)
		c.queue(Command{Kind: CmdSetCurrentDesktop, Desktop: c.targetDesktop})
	}
	if id, ok := c.reg.Highlighted(); ok {
		c.queue(Command{Kind: CmdActivateWindow, Window: id})
	}
	c.SetActive(false)
}

// cancel discards the browsed desktop and closes.
func (c *Controller) cancel() {
	if c.targetDesktop != c.reg.Current() {
		c.targetDesktop = c.reg.Current()
		c.dirty = true
	}
	c.SetActive(false)
}

func (c *Controller) windowAt(p geom.Point) (WindowID, bool) {
	for _, id := range c.motion.IDs() {
		if r, ok := c.motion.Current(id); ok && r.Contains(p) {
			return id, true
		}
	}
	return 0, false
}

func beyond(a, b geom.Point, threshold int) bool {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dx*dx+dy*dy > threshold*threshold
}
