// Package effect coordinates the overview: it owns the desktop registry, the
// activation machine and the motion model, and turns host frames and input
// into render data and host commands.
package effect

import (
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/1broseidon/multiview/internal/activation"
	"github.com/1broseidon/multiview/internal/desktop"
	"github.com/1broseidon/multiview/internal/geom"
	"github.com/1broseidon/multiview/internal/motion"
	"github.com/1broseidon/multiview/internal/placement"
	"github.com/1broseidon/multiview/internal/thumbs"
)

var _ Handler = (*Controller)(nil)

// Controller is the frame-driven overview engine. It is single-threaded: the
// host calls every method from its frame loop.
type Controller struct {
	opts   Options
	logger *slog.Logger

	reg     *desktop.Registry
	machine *activation.Machine
	motion  *motion.Manager[WindowID]
	strip   *thumbs.Strip

	screen        geom.Rect
	targetDesktop int
	dirty         bool
	solution      placement.Solution[WindowID]
	miniatures    map[int]placement.Solution[WindowID]
	rejected      map[WindowID]bool
	pending       []Command
	restore       []WindowPaint

	press *pressState
	// frameStep is the elapsed time OnFrame has given the timeline but not
	// yet the motion model.
	frameStep time.Duration
}

// New creates a closed controller with a single desktop. A nil logger uses
// slog.Default().
func New(opts Options, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	reg := desktop.NewRegistry(1, opts.MaxDesktops)
	return &Controller{
		opts:          opts,
		logger:        logger,
		reg:           reg,
		machine:       activation.New(opts.Duration, opts.Easing),
		motion:        motion.NewManager[WindowID](opts.Duration, opts.Easing),
		strip:         thumbs.NewStrip(reg),
		targetDesktop: 1,
		rejected:      make(map[WindowID]bool),
	}
}

// SetOptions applies new tuning, e.g. after a config reload.
func (c *Controller) SetOptions(opts Options) {
	c.opts = opts
	c.machine.SetDuration(opts.Duration)
	c.machine.SetEasing(opts.Easing)
	c.motion.SetDuration(opts.Duration)
	c.motion.SetEasing(opts.Easing)
	c.reg.SetMax(opts.MaxDesktops)
	c.strip.Invalidate()
	c.dirty = true
}

// Phase returns the activation phase.
func (c *Controller) Phase() activation.Phase { return c.machine.Phase() }

// TargetDesktop returns the desktop currently displayed by the overview.
func (c *Controller) TargetDesktop() int { return c.targetDesktop }

// Target returns the motion target of a displayed window.
func (c *Controller) Target(id WindowID) (geom.Rect, bool) { return c.motion.Target(id) }

// Current returns the interpolated rectangle of a displayed window.
func (c *Controller) Current(id WindowID) (geom.Rect, bool) { return c.motion.Current(id) }

// Window returns the registry record of id.
func (c *Controller) Window(id WindowID) (desktop.Window, bool) { return c.reg.Window(id) }

// Status summarises the controller.
func (c *Controller) Status() Status {
	s := Status{
		Phase:          c.machine.Phase().String(),
		Progress:       c.machine.Progress(),
		DesktopCount:   c.reg.Count(),
		CurrentDesktop: c.reg.Current(),
		TargetDesktop:  c.targetDesktop,
		Windows:        c.reg.Len(),
		Displayed:      c.motion.Len(),
	}
	if id, ok := c.reg.Highlighted(); ok {
		s.Highlighted = id
	}
	return s
}

// OnFrame advances the overview by elapsed and returns the frame to render.
// A nil snapshot means nothing changed on the host side.
//
// Within a frame the timeline advances first, then a pending layout
// recompute runs, then the motion model interpolates.
func (c *Controller) OnFrame(elapsed time.Duration, snap *Snapshot) Frame {
	if snap != nil {
		c.applySnapshot(snap)
	}

	if tr, ok := c.machine.Tick(elapsed); ok {
		c.onTransition(tr)
	}

	c.frameStep = max(elapsed, 0)
	if c.machine.Active() && c.dirty {
		c.recompute()
	}

	c.motion.Tick(elapsed)
	c.frameStep = 0
	if c.press != nil && c.press.dragging {
		c.motion.Place(c.press.window, c.dragRect())
	}

	return c.emit()
}

// SetActive shows or hides the overview. It reports whether the phase changed.
func (c *Controller) SetActive(active bool) bool {
	tr, ok := c.machine.SetActive(active)
	if ok {
		c.onTransition(tr)
	}
	return ok
}

// ToggleActive flips the overview, reversing an in-flight animation.
func (c *Controller) ToggleActive() bool {
	tr, ok := c.machine.Toggle()
	if ok {
		c.onTransition(tr)
	}
	return ok
}

// AppendDesktop adds a desktop at the end. At the configured maximum it is
// a no-op and returns desktop.ErrDesktopLimit.
func (c *Controller) AppendDesktop() (int, error) {
	idx, err := c.reg.Append()
	if err != nil {
		c.logger.Info("append desktop ignored", "count", c.reg.Count(), "max", c.reg.Max())
		return idx, err
	}
	c.queue(Command{Kind: CmdSetDesktopCount, Count: idx})
	c.dirty = true
	c.logger.Debug("desktop appended", "desktop", idx)
	return idx, nil
}

// RemoveDesktop deletes desktop index. Windows on it move to the desktop
// that takes its place. Absent indices are a no-op.
func (c *Controller) RemoveDesktop(index int) bool {
	before := c.reg.Assignments()
	oldCurrent := c.reg.Current()
	if !c.reg.Remove(index) {
		return false
	}

	after := c.reg.Assignments()
	ids := make([]WindowID, 0, len(after))
	for id := range after {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if after[id] != before[id] {
			c.queue(Command{Kind: CmdMoveWindowToDesktop, Window: id, Desktop: after[id]})
		}
	}
	c.queue(Command{Kind: CmdSetDesktopCount, Count: c.reg.Count()})
	if c.reg.Current() != oldCurrent {
		c.queue(Command{Kind: CmdSetCurrentDesktop, Desktop: c.reg.Current()})
	}

	switch {
	case c.targetDesktop == index:
		c.targetDesktop = min(index, c.reg.Count())
	case c.targetDesktop > index:
		c.targetDesktop--
	}
	c.dirty = true
	c.logger.Debug("desktop removed", "desktop", index, "count", c.reg.Count())
	return true
}

// ChangeCurrentDesktop commits index, clamped to the valid range, as the
// current desktop and displays it. It returns the resulting desktop.
func (c *Controller) ChangeCurrentDesktop(index int) int {
	d := c.reg.Clamp(index)
	if d != c.reg.Current() {
		c.reg.SetCurrent(d)
		c.queue(Command{Kind: CmdSetCurrentDesktop, Desktop: d})
	}
	if c.targetDesktop != d {
		c.targetDesktop = d
		c.reg.ClearHighlight()
		c.dirty = true
	}
	return d
}

// WindowAdded admits a new window. Windows with a degenerate aspect ratio
// are filtered out and logged once.
func (c *Controller) WindowAdded(id WindowID, rect geom.Rect, desk int) {
	if err := c.reg.Add(id, rect, desk); err != nil {
		c.reject(id, err)
		return
	}
	delete(c.rejected, id)
	c.dirty = true
}

// WindowClosed forgets a window immediately. Other windows keep animating.
func (c *Controller) WindowClosed(id WindowID) {
	if !c.reg.RemoveWindow(id) {
		return
	}
	c.motion.Remove(id)
	if c.press != nil && c.press.hasWindow && c.press.window == id {
		c.press = nil
	}
	c.dirty = true
}

// WindowGeometryChanged records a resize or move reported by the host.
func (c *Controller) WindowGeometryChanged(id WindowID, rect geom.Rect) {
	err := c.reg.UpdateGeometry(id, rect)
	switch {
	case err == nil:
		c.dirty = true
	case errors.Is(err, desktop.ErrDegenerateAspect):
		c.reg.RemoveWindow(id)
		c.motion.Remove(id)
		c.reject(id, err)
		c.dirty = true
	}
}

// WindowDesktopChanged records a desktop move reported by the host.
func (c *Controller) WindowDesktopChanged(id WindowID, desk int) {
	if err := c.reg.MoveWindow(id, desk); err == nil {
		c.dirty = true
	}
}

// DesktopCountChanged records the host's desktop count.
func (c *Controller) DesktopCountChanged(n int) {
	c.reg.SetCount(n)
	c.targetDesktop = c.reg.Clamp(c.targetDesktop)
	c.dirty = true
}

// CurrentDesktopChanged records the host's current desktop. While the
// overview is shown the displayed desktop is left alone.
func (c *Controller) CurrentDesktopChanged(d int) {
	c.reg.SetCurrent(d)
	if !c.machine.Active() {
		c.targetDesktop = c.reg.Current()
	}
	c.dirty = true
}

func (c *Controller) reject(id WindowID, err error) {
	if c.rejected[id] {
		return
	}
	c.rejected[id] = true
	c.logger.Warn("window filtered from overview", "window", id, "error", err)
}

func (c *Controller) queue(cmd Command) {
	c.pending = append(c.pending, cmd)
}

// applySnapshot diffs the host snapshot against the registry. While the
// overview is shown the controller owns window geometry and desktop
// assignment, so only windows appearing or disappearing are applied.
func (c *Controller) applySnapshot(s *Snapshot) {
	if !s.Screen.Empty() && s.Screen != c.screen {
		c.screen = s.Screen
		c.strip.Invalidate()
		c.dirty = true
	}

	active := c.machine.Active()
	if !active {
		if s.DesktopCount > 0 && s.DesktopCount != c.reg.Count() {
			c.DesktopCountChanged(s.DesktopCount)
		}
		if s.CurrentDesktop > 0 && s.CurrentDesktop != c.reg.Current() {
			c.CurrentDesktopChanged(s.CurrentDesktop)
		}
	}

	seen := make(map[WindowID]bool, len(s.Windows))
	for _, w := range s.Windows {
		seen[w.ID] = true
		existing, ok := c.reg.Window(w.ID)
		if !ok {
			c.WindowAdded(w.ID, w.Rect, w.Desktop)
			continue
		}
		if active {
			continue
		}
		if existing.Rect != w.Rect {
			c.WindowGeometryChanged(w.ID, w.Rect)
		}
		if existing.Desktop != w.Desktop {
			c.WindowDesktopChanged(w.ID, w.Desktop)
		}
	}
	for _, id := range c.reg.IDs() {
		if !seen[id] {
			c.WindowClosed(id)
		}
	}
	for id := range c.rejected {
		if !seen[id] {
			delete(c.rejected, id)
		}
	}
}

func (c *Controller) onTransition(tr activation.Transition) {
	c.logger.Debug("overview phase changed", "from", tr.From.String(), "to", tr.To.String())

	switch {
	case tr.From == activation.Closed && tr.To == activation.Opening:
		c.targetDesktop = c.reg.Current()
		c.motion.Clear()
		c.restore = nil
		c.syncDisplayed()
		c.strip.Invalidate()
		c.dirty = true
		c.queue(Command{Kind: CmdGrabInput})

	case tr.To == activation.Opening:
		c.dirty = true

	case tr.To == activation.Closing:
		c.press = nil
		c.retargetOriginals()

	case tr.To == activation.Closed:
		c.restore = c.originalPaints()
		c.motion.Clear()
		c.reg.ClearHighlight()
		c.press = nil
		c.solution = nil
		c.miniatures = nil
		c.targetDesktop = c.reg.Current()
		c.queue(Command{Kind: CmdReleaseInput})
	}
}

// syncDisplayed makes the motion model track exactly the windows of the
// displayed desktop. Newcomers start at their own rectangle.
func (c *Controller) syncDisplayed() {
	want := c.reg.WindowsOn(c.targetDesktop)
	keep := make(map[WindowID]bool, len(want))
	for _, w := range want {
		keep[w.ID] = true
		if !c.motion.Has(w.ID) {
			c.motion.Add(w.ID, w.Rect)
		}
	}
	for _, id := range c.motion.IDs() {
		if !keep[id] {
			c.motion.Remove(id)
		}
	}
}

func (c *Controller) retargetOriginals() {
	for _, id := range c.motion.IDs() {
		if w, ok := c.reg.Window(id); ok {
			c.retarget(id, w.Rect)
		}
	}
}

// retarget moves id toward r. While opening or closing the move is timed to
// land when the timeline does, so a reversal mid-animation ends exactly on
// the restored or solved rectangles.
func (c *Controller) retarget(id WindowID, r geom.Rect) {
	switch c.machine.Phase() {
	case activation.Opening, activation.Closing:
		c.motion.SetTargetWithin(id, r, c.machine.Remaining()+c.frameStep)
	default:
		c.motion.SetTarget(id, r)
	}
}

func (c *Controller) originalPaints() []WindowPaint {
	ids := c.motion.IDs()
	out := make([]WindowPaint, 0, len(ids))
	for _, id := range ids {
		w, ok := c.reg.Window(id)
		if !ok {
			continue
		}
		out = append(out, WindowPaint{ID: id, Rect: w.Rect, Opacity: 1, Scale: 1})
	}
	return out
}

// LayoutArea is the screen minus the desktop margins.
func (c *Controller) LayoutArea() geom.Rect {
	area := c.screen.Inset(c.opts.DesktopMargins)
	if area.Empty() {
		return c.screen
	}
	return area
}

func (c *Controller) stripContainer() geom.Rect {
	return geom.Rect{
		X:      c.screen.X,
		Y:      c.screen.Y,
		Width:  c.screen.Width,
		Height: min(c.opts.DesktopMargins.Top, c.screen.Height),
	}
}

func (c *Controller) placementOptions() placement.Options {
	return placement.Options{BorderMargin: c.opts.BorderMargin, MaxIterations: c.opts.MaxIterations}
}

// recompute refreshes the thumbnail strip and, unless closing, solves the
// displayed desktop's layout. A failed solve keeps the previous targets.
func (c *Controller) recompute() {
	c.dirty = false
	c.syncDisplayed()

	c.strip.Update(thumbs.Params{
		Count:         c.reg.Count(),
		Container:     c.stripContainer(),
		ScreenAspect:  c.screen.AspectRatio(),
		Spacing:       c.opts.ThumbSpacing,
		HeightPercent: c.opts.ThumbHeightPercent,
		PlusButton:    c.opts.PlusButton && c.reg.CanAppend(),
	})
	c.miniatures = make(map[int]placement.Solution[WindowID], c.reg.Count())
	for d := 1; d <= c.reg.Count(); d++ {
		mini, err := c.strip.Miniature(d, c.screen, c.placementOptions())
		if err != nil {
			c.logger.Warn("thumbnail layout failed", "desktop", d, "error", err)
			continue
		}
		c.miniatures[d] = mini
	}

	if c.machine.Phase() == activation.Closing {
		c.retargetOriginals()
		return
	}

	windows := c.reg.WindowsOn(c.targetDesktop)
	items := make([]placement.Item[WindowID], 0, len(windows))
	for _, w := range windows {
		items = append(items, placement.Item[WindowID]{ID: w.ID, Aspect: w.Aspect})
	}
	sol, err := placement.Solve(items, c.LayoutArea(), c.placementOptions())
	if err != nil {
		c.logger.Warn("placement failed, keeping previous layout", "desktop", c.targetDesktop, "error", err)
		return
	}
	c.solution = sol
	for id, r := range sol {
		c.retarget(id, r)
	}
}

func (c *Controller) emit() Frame {
	f := Frame{
		Phase:          c.machine.Phase(),
		Progress:       c.machine.Progress(),
		Visibility:     c.machine.Visibility(),
		DesktopCount:   c.reg.Count(),
		CurrentDesktop: c.reg.Current(),
		TargetDesktop:  c.targetDesktop,
	}
	f.Animating = c.motion.IsAnimating() || f.Phase == activation.Opening || f.Phase == activation.Closing

	switch {
	case c.restore != nil:
		f.Windows = c.restore
		c.restore = nil
	case c.machine.Active():
		f.Windows = c.windowPaints(f.Visibility)
		f.Thumbnails = c.thumbnailPaints()
		f.PlusButton = c.strip.Layout().Plus
	}

	f.Commands = c.pending
	c.pending = nil
	return f
}

func (c *Controller) windowPaints(visibility float64) []WindowPaint {
	high, hasHigh := c.reg.Highlighted()
	ids := c.motion.IDs()
	out := make([]WindowPaint, 0, len(ids))
	for _, id := range ids {
		cur, _ := c.motion.Current(id)
		w, _ := c.reg.Window(id)
		p := WindowPaint{
			ID:      id,
			Rect:    cur,
			Opacity: 1 - (1-c.opts.DimOpacity)*visibility,
			Scale:   1,
		}
		if hasHigh && high == id {
			p.Highlighted = true
			p.Opacity = 1
		}
		if w.Rect.Width > 0 {
			p.Scale = float64(cur.Width) / float64(w.Rect.Width)
		}
		out = append(out, p)
	}
	return out
}

func (c *Controller) thumbnailPaints() []ThumbnailPaint {
	layout := c.strip.Layout()
	out := make([]ThumbnailPaint, 0, len(layout.Thumbs))
	for i, r := range layout.Thumbs {
		d := i + 1
		tp := ThumbnailPaint{
			Desktop: d,
			Rect:    r,
			Current: d == c.reg.Current(),
			Target:  d == c.targetDesktop,
		}
		mini := c.miniatures[d]
		ids := make([]WindowID, 0, len(mini))
		for id := range mini {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			tp.Windows = append(tp.Windows, MiniWindow{ID: id, Rect: mini[id]})
		}
		out = append(out, tp)
	}
	return out
}
