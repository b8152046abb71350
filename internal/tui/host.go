package tui

import (
	"math/rand/v2"
	"slices"

	"github.com/1broseidon/multiview/internal/effect"
	"github.com/1broseidon/multiview/internal/geom"
)

var spawnAspects = []float64{16.0 / 9, 4.0 / 3, 1, 3.0 / 4, 21.0 / 9, 9.0 / 16}

type simWindow struct {
	id      effect.WindowID
	rect    geom.Rect
	desktop int
}

// simHost stands in for a window manager: it owns window geometry and
// desktops and carries out controller commands.
type simHost struct {
	screen  geom.Rect
	windows []simWindow
	count   int
	current int
	focused effect.WindowID
	grabbed bool
	nextID  effect.WindowID
	rng     *rand.Rand
}

func newSimHost(screen geom.Rect, desktops int, seed uint64) *simHost {
	return &simHost{
		screen:  screen,
		count:   max(desktops, 1),
		current: 1,
		nextID:  1,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (h *simHost) snapshot() effect.Snapshot {
	s := effect.Snapshot{
		Screen:         h.screen,
		DesktopCount:   h.count,
		CurrentDesktop: h.current,
		Windows:        make([]effect.WindowInfo, 0, len(h.windows)),
	}
	for _, w := range h.windows {
		s.Windows = append(s.Windows, effect.WindowInfo{ID: w.id, Rect: w.rect, Desktop: w.desktop})
	}
	return s
}

// spawn opens a window of random shape on desktop and focuses it.
func (h *simHost) spawn(desktop int) effect.WindowID {
	aspect := spawnAspects[h.rng.IntN(len(spawnAspects))]
	width := h.screen.Width/5 + h.rng.IntN(h.screen.Width/3)
	height := geom.HeightForWidth(aspect, width)
	if height > h.screen.Height*3/4 {
		height = h.screen.Height * 3 / 4
		width = geom.WidthForHeight(aspect, height)
	}
	x := h.screen.X + h.rng.IntN(max(h.screen.Width-width, 1))
	y := h.screen.Y + h.rng.IntN(max(h.screen.Height-height, 1))

	id := h.nextID
	h.nextID++
	h.windows = append(h.windows, simWindow{
		id:      id,
		rect:    geom.Rect{X: x, Y: y, Width: width, Height: height},
		desktop: min(max(desktop, 1), h.count),
	})
	h.focused = id
	return id
}

func (h *simHost) close(id effect.WindowID) bool {
	i := slices.IndexFunc(h.windows, func(w simWindow) bool { return w.id == id })
	if i < 0 {
		return false
	}
	h.windows = slices.Delete(h.windows, i, i+1)
	if h.focused == id {
		h.focused = 0
		if top, ok := h.topmost(h.current); ok {
			h.focused = top
		}
	}
	return true
}

// topmost returns the most recently opened window on desktop.
func (h *simHost) topmost(desktop int) (effect.WindowID, bool) {
	for i := len(h.windows) - 1; i >= 0; i-- {
		if h.windows[i].desktop == desktop {
			return h.windows[i].id, true
		}
	}
	return 0, false
}

func (h *simHost) windowsOn(desktop int) []simWindow {
	var out []simWindow
	for _, w := range h.windows {
		if w.desktop == desktop {
			out = append(out, w)
		}
	}
	return out
}

func (h *simHost) execute(cmd effect.Command) {
	switch cmd.Kind {
	case effect.CmdActivateWindow:
		i := slices.IndexFunc(h.windows, func(w simWindow) bool { return w.id == cmd.Window })
		if i < 0 {
			return
		}
		// Raise to the top of the stacking order.
		w := h.windows[i]
		h.windows = append(slices.Delete(h.windows, i, i+1), w)
		h.focused = w.id
		h.current = w.desktop
	case effect.CmdSetDesktopCount:
		h.count = max(cmd.Count, 1)
		h.current = min(h.current, h.count)
		for i := range h.windows {
			h.windows[i].desktop = min(h.windows[i].desktop, h.count)
		}
	case effect.CmdSetCurrentDesktop:
		h.current = min(max(cmd.Desktop, 1), h.count)
	case effect.CmdMoveWindowToDesktop:
		for i := range h.windows {
			if h.windows[i].id == cmd.Window {
				h.windows[i].desktop = min(max(cmd.Desktop, 1), h.count)
			}
		}
	case effect.CmdGrabInput:
		h.grabbed = true
	case effect.CmdReleaseInput:
		h.grabbed = false
	}
}
