package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/multiview/internal/geom"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	Bounds geom.Rect
}

// Monitors lists active CRTCs via XRandR.
func (c *Connection) Monitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}
		monitors = append(monitors, Monitor{
			ID:   i,
			Name: name,
			Bounds: geom.Rect{
				X:      int(info.X),
				Y:      int(info.Y),
				Width:  int(info.Width),
				Height: int(info.Height),
			},
		})
	}
	return monitors, nil
}

// Screen is the overview's screen rectangle: the monitor under the pointer
// clipped to the EWMH work area. Without RandR it falls back to the root
// window.
func (c *Connection) Screen() geom.Rect {
	w, h := c.ScreenSize()
	screen := geom.Rect{Width: w, Height: h}

	if monitors, err := c.Monitors(); err == nil && len(monitors) > 0 {
		screen = monitors[0].Bounds
		if p, ok := c.pointer(); ok {
			for _, m := range monitors {
				if m.Bounds.Contains(p) {
					screen = m.Bounds
					break
				}
			}
		}
	}

	if area, ok := c.workArea(); ok {
		if clipped := screen.Intersect(area); !clipped.Empty() {
			screen = clipped
		}
	}
	return screen
}

func (c *Connection) pointer() (geom.Point, bool) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return geom.Point{}, false
	}
	return geom.Point{X: int(reply.RootX), Y: int(reply.RootY)}, true
}

func (c *Connection) workArea() (geom.Rect, bool) {
	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return geom.Rect{}, false
	}
	i := 0
	if cur, err := c.CurrentDesktop(); err == nil && cur >= 0 && cur < len(areas) {
		i = cur
	}
	wa := areas[i]
	return geom.Rect{X: wa.X, Y: wa.Y, Width: int(wa.Width), Height: int(wa.Height)}, true
}
