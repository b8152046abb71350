package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/multiview/internal/geom"
)

// Keysyms the overview reacts to.
const (
	KeysymLeft    = 0xff51
	KeysymRight   = 0xff53
	KeysymReturn  = 0xff0d
	KeysymEscape  = 0xff1b
	KeysymKPEnter = 0xff8d
)

// InputSink receives grabbed input. Callbacks run on the X event loop
// goroutine.
type InputSink interface {
	Key(keysym xproto.Keysym)
	PointerMoved(p geom.Point)
	ButtonPressed(p geom.Point, button int)
	ButtonReleased(p geom.Point, button int)
}

// InputGrab owns an InputOnly window that receives keyboard and pointer
// events while the overview is shown.
type InputGrab struct {
	conn    *Connection
	sink    InputSink
	window  xproto.Window
	grabbed bool
}

// NewInputGrab creates the grab target. Nothing is grabbed until Grab.
func NewInputGrab(conn *Connection, sink InputSink) *InputGrab {
	return &InputGrab{conn: conn, sink: sink}
}

// Grab takes the keyboard and pointer.
func (g *InputGrab) Grab() error {
	if g.grabbed {
		return nil
	}
	if err := g.ensureWindow(); err != nil {
		return err
	}
	xu := g.conn.XUtil

	grab := func() (*xproto.GrabKeyboardReply, error) {
		return xproto.GrabKeyboard(
			xu.Conn(),
			false,
			g.conn.Root,
			xproto.TimeCurrentTime,
			xproto.GrabModeAsync,
			xproto.GrabModeAsync,
		).Reply()
	}
	reply, err := grab()
	if err != nil {
		return err
	}
	// Entered from the toggle hotkey the keyboard may already be ours.
	if reply.Status == xproto.GrabStatusAlreadyGrabbed {
		xproto.UngrabKeyboard(xu.Conn(), xproto.TimeCurrentTime)
		if reply, err = grab(); err != nil {
			return err
		}
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("keyboard grab failed with status %d", reply.Status)
	}
	xevent.RedirectKeyEvents(xu, g.window)

	ok, err := mousebind.GrabPointer(xu, g.window, 0, 0)
	if err != nil || !ok {
		g.releaseKeyboard()
		if err == nil {
			err = fmt.Errorf("pointer already grabbed")
		}
		return fmt.Errorf("pointer grab: %w", err)
	}

	g.grabbed = true
	return nil
}

// Release returns keyboard and pointer to the window manager.
func (g *InputGrab) Release() {
	if !g.grabbed {
		return
	}
	mousebind.UngrabPointer(g.conn.XUtil)
	g.releaseKeyboard()
	g.grabbed = false
}

// Grabbed reports whether input is currently held.
func (g *InputGrab) Grabbed() bool { return g.grabbed }

// Destroy releases input and destroys the grab window.
func (g *InputGrab) Destroy() {
	g.Release()
	if g.window != 0 {
		xevent.Detach(g.conn.XUtil, g.window)
		mousebind.Detach(g.conn.XUtil, g.window)
		xproto.DestroyWindow(g.conn.XUtil.Conn(), g.window)
		g.window = 0
	}
}

func (g *InputGrab) releaseKeyboard() {
	xu := g.conn.XUtil
	xproto.UngrabKeyboard(xu.Conn(), xproto.TimeCurrentTime)
	xevent.RedirectKeyEvents(xu, 0)
}

func (g *InputGrab) ensureWindow() error {
	if g.window != 0 {
		return nil
	}
	xu := g.conn.XUtil
	conn := xu.Conn()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return err
	}
	err = xproto.CreateWindowChecked(
		conn,
		0,
		wid,
		g.conn.Root,
		0, 0,
		1, 1,
		0,
		xproto.WindowClassInputOnly,
		xproto.Visualid(0),
		xproto.CwEventMask,
		[]uint32{uint32(xproto.EventMaskKeyPress | xproto.EventMaskButtonPress |
			xproto.EventMaskButtonRelease | xproto.EventMaskPointerMotion)},
	).Check()
	if err != nil {
		return err
	}
	xproto.MapWindow(conn, wid)
	g.window = wid

	xevent.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		g.sink.Key(keybind.KeysymGet(xu, ev.Detail, 0))
	}).Connect(xu, wid)
	xevent.MotionNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		g.sink.PointerMoved(geom.Point{X: int(ev.RootX), Y: int(ev.RootY)})
	}).Connect(xu, wid)

	for _, button := range []string{"1", "2", "3"} {
		if err := g.connectButton(wid, button); err != nil {
			return err
		}
	}
	return nil
}

func (g *InputGrab) connectButton(wid xproto.Window, button string) error {
	xu := g.conn.XUtil
	err := mousebind.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		g.sink.ButtonPressed(geom.Point{X: int(ev.RootX), Y: int(ev.RootY)}, int(ev.Detail))
	}).Connect(xu, wid, button, false, false)
	if err != nil {
		return fmt.Errorf("bind button %s: %w", button, err)
	}
	err = mousebind.ButtonReleaseFun(func(xu *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		g.sink.ButtonReleased(geom.Point{X: int(ev.RootX), Y: int(ev.RootY)}, int(ev.Detail))
	}).Connect(xu, wid, button, false, false)
	if err != nil {
		return fmt.Errorf("bind button %s release: %w", button, err)
	}
	return nil
}

var ignoreModsOnce sync.Once

// BindHotkey registers a global key sequence such as "Mod4-w" on the root
// window. CapsLock, NumLock and ScrollLock are ignored.
func (c *Connection) BindHotkey(sequence string, fn func()) error {
	ignoreModsOnce.Do(func() { configureIgnoreMods(c.XUtil) })
	err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		fn()
	}).Connect(c.XUtil, c.Root, sequence, true)
	if err != nil {
		return fmt.Errorf("bind hotkey %q: %w", sequence, err)
	}
	return nil
}

// UnbindHotkeys drops every root window key binding.
func (c *Connection) UnbindHotkeys() {
	keybind.Detach(c.XUtil, c.Root)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	base := []uint16{uint16(xproto.ModMaskLock)}
	for _, keysym := range []string{"Num_Lock", "Scroll_Lock"} {
		if mask := modMaskForKeysym(xu, keysym); mask != 0 && !containsMask(base, mask) {
			base = append(base, mask)
		}
	}

	ignore := []uint16{0}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		ignore = append(ignore, mask)
	}
	xevent.IgnoreMods = ignore
}

func containsMask(masks []uint16, mask uint16) bool {
	for _, m := range masks {
		if m == mask {
			return true
		}
	}
	return false
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
