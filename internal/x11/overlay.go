package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/multiview/internal/geom"
)

// Overlay colors
const (
	ColorStripBg    = 0x1f2933
	ColorThumb      = 0x323f4b
	ColorThumbEdge  = 0x7f8c8d
	ColorCurrent    = 0x27ae60
	ColorTarget     = 0x3498db
	ColorMini       = 0x95a5a6
	ColorPlus       = 0x52606d
	ColorHighlight  = 0x3498db
	ColorHintText   = 0xf5f7fa
	ColorHintBg     = 0x1f2933
	BorderThickness = 3
)

const (
	hintMargin     = 12
	hintPaddingX   = 10
	hintPaddingY   = 8
	hintLineHeight = 16
	hintCharWidth  = 7
	hintMinWidth   = 220
)

// Box is one overlay element. Outlined boxes are drawn as four bars so the
// window underneath stays visible.
type Box struct {
	Rect     geom.Rect
	Color    uint32
	Outlined bool
}

// Scene is everything the overlay shows for one frame, bottom to top.
type Scene struct {
	Boxes  []Box
	Hint   []string
	Bounds geom.Rect
	Avoid  []geom.Rect
}

type panel struct {
	window xproto.Window
	mapped bool
}

type outline struct {
	bars   [4]xproto.Window
	mapped bool
}

type hintOverlay struct {
	window   xproto.Window
	gc       xproto.Gcontext
	font     xproto.Font
	created  bool
	mapped   bool
	disabled bool
}

// Overlay draws the thumbnail strip, miniatures and highlight with
// override-redirect windows. It keeps pools and only grows them.
type Overlay struct {
	xu   *xgbutil.XUtil
	root xproto.Window

	panels   []*panel
	outlines []*outline
	hint     hintOverlay
}

func NewOverlay(conn *Connection) *Overlay {
	return &Overlay{xu: conn.XUtil, root: conn.Root}
}

// Render shows scene, reusing windows from the previous frame.
func (o *Overlay) Render(scene Scene) error {
	var filled, outlined int
	for _, box := range scene.Boxes {
		if box.Outlined {
			outlined++
		} else {
			filled++
		}
	}
	if err := o.ensurePanels(filled); err != nil {
		return err
	}
	if err := o.ensureOutlines(outlined); err != nil {
		return err
	}

	var pi, oi int
	for _, box := range scene.Boxes {
		if box.Rect.Empty() {
			continue
		}
		if box.Outlined {
			o.showOutline(o.outlines[oi], box.Rect, box.Color)
			oi++
			continue
		}
		o.updateWindow(o.panels[pi].window, box.Rect, box.Color)
		xproto.MapWindow(o.xu.Conn(), o.panels[pi].window)
		o.panels[pi].mapped = true
		pi++
	}
	for ; pi < len(o.panels); pi++ {
		o.hidePanel(o.panels[pi])
	}
	for ; oi < len(o.outlines); oi++ {
		o.hideOutline(o.outlines[oi])
	}

	o.renderHint(scene.Hint, scene.Bounds, scene.Avoid)
	return nil
}

// HideAll unmaps every overlay window without destroying it.
func (o *Overlay) HideAll() {
	for _, p := range o.panels {
		o.hidePanel(p)
	}
	for _, ol := range o.outlines {
		o.hideOutline(ol)
	}
	o.hideHint()
}

// Cleanup destroys all overlay windows.
func (o *Overlay) Cleanup() {
	conn := o.xu.Conn()
	for _, p := range o.panels {
		xproto.DestroyWindow(conn, p.window)
	}
	for _, ol := range o.outlines {
		for _, bar := range ol.bars {
			xproto.DestroyWindow(conn, bar)
		}
	}
	o.destroyHint()
	o.panels = nil
	o.outlines = nil
}

func (o *Overlay) ensurePanels(count int) error {
	for len(o.panels) < count {
		wid, err := o.createOverrideRedirectWindow()
		if err != nil {
			return err
		}
		o.panels = append(o.panels, &panel{window: wid})
	}
	return nil
}

func (o *Overlay) ensureOutlines(count int) error {
	for len(o.outlines) < count {
		ol := &outline{}
		for i := range ol.bars {
			wid, err := o.createOverrideRedirectWindow()
			if err != nil {
				return err
			}
			ol.bars[i] = wid
		}
		o.outlines = append(o.outlines, ol)
	}
	return nil
}

func (o *Overlay) showOutline(ol *outline, r geom.Rect, color uint32) {
	for i, bar := range outlineBars(r, BorderThickness) {
		o.updateWindow(ol.bars[i], bar, color)
		xproto.MapWindow(o.xu.Conn(), ol.bars[i])
	}
	ol.mapped = true
}

// outlineBars splits r's border into top, bottom, left and right bars.
func outlineBars(r geom.Rect, t int) [4]geom.Rect {
	inner := max(r.Height-2*t, 1)
	return [4]geom.Rect{
		{X: r.X, Y: r.Y, Width: r.Width, Height: t},
		{X: r.X, Y: r.Bottom() - t, Width: r.Width, Height: t},
		{X: r.X, Y: r.Y + t, Width: t, Height: inner},
		{X: r.Right() - t, Y: r.Y + t, Width: t, Height: inner},
	}
}

func (o *Overlay) hidePanel(p *panel) {
	if !p.mapped {
		return
	}
	xproto.UnmapWindow(o.xu.Conn(), p.window)
	p.mapped = false
}

func (o *Overlay) hideOutline(ol *outline) {
	if !ol.mapped {
		return
	}
	for _, bar := range ol.bars {
		xproto.UnmapWindow(o.xu.Conn(), bar)
	}
	ol.mapped = false
}

func (o *Overlay) createOverrideRedirectWindow() (xproto.Window, error) {
	conn := o.xu.Conn()
	screen := o.xu.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		o.root,
		0, 0,
		1, 1,
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect,
		// Values follow mask bit order: back_pixel, override_redirect.
		[]uint32{0, 1},
	).Check()
	if err != nil {
		return 0, err
	}
	return wid, nil
}

func (o *Overlay) updateWindow(wid xproto.Window, r geom.Rect, color uint32) {
	conn := o.xu.Conn()
	xproto.ConfigureWindow(
		conn,
		wid,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(r.X),
			uint32(r.Y),
			uint32(max(r.Width, 1)),
			uint32(max(r.Height, 1)),
			xproto.StackModeAbove,
		},
	)
	xproto.ChangeWindowAttributes(conn, wid, xproto.CwBackPixel, []uint32{color})
	xproto.ClearArea(conn, false, wid, 0, 0, 0, 0)
}

func (o *Overlay) renderHint(lines []string, bounds geom.Rect, avoid []geom.Rect) {
	if len(lines) == 0 || bounds.Empty() || !o.ensureHintResources() {
		o.hideHint()
		return
	}

	width, height := hintDimensions(lines)
	width = min(width, max(bounds.Width-2*hintMargin, 1))
	height = min(height, max(bounds.Height-2*hintMargin, 1))
	pos := chooseHintPosition(bounds, avoid, width, height)

	conn := o.xu.Conn()
	o.updateWindow(o.hint.window, geom.Rect{X: pos.X, Y: pos.Y, Width: width, Height: height}, ColorHintBg)

	baseline := hintPaddingY + hintLineHeight - 4
	for i, line := range lines {
		if line == "" {
			continue
		}
		if len(line) > 255 {
			line = line[:255]
		}
		xproto.ImageText8(
			conn,
			byte(len(line)),
			xproto.Drawable(o.hint.window),
			o.hint.gc,
			int16(hintPaddingX),
			int16(baseline+i*hintLineHeight),
			line,
		)
	}
	xproto.MapWindow(conn, o.hint.window)
	o.hint.mapped = true
}

func (o *Overlay) ensureHintResources() bool {
	if o.hint.disabled {
		return false
	}
	if o.hint.created {
		return true
	}
	conn := o.xu.Conn()

	wid, err := o.createOverrideRedirectWindow()
	if err != nil {
		o.hint.disabled = true
		return false
	}
	font, err := xproto.NewFontId(conn)
	if err != nil {
		xproto.DestroyWindow(conn, wid)
		o.hint.disabled = true
		return false
	}
	opened := false
	for _, name := range []string{"fixed", "9x15", "8x13", "6x13"} {
		if xproto.OpenFontChecked(conn, font, uint16(len(name)), name).Check() == nil {
			opened = true
			break
		}
	}
	if !opened {
		xproto.DestroyWindow(conn, wid)
		o.hint.disabled = true
		return false
	}
	gc, err := xproto.NewGcontextId(conn)
	if err == nil {
		err = xproto.CreateGCChecked(
			conn,
			gc,
			xproto.Drawable(wid),
			xproto.GcForeground|xproto.GcBackground|xproto.GcFont|xproto.GcGraphicsExposures,
			[]uint32{ColorHintText, ColorHintBg, uint32(font), 0},
		).Check()
	}
	if err != nil {
		xproto.CloseFont(conn, font)
		xproto.DestroyWindow(conn, wid)
		o.hint.disabled = true
		return false
	}

	o.hint = hintOverlay{window: wid, gc: gc, font: font, created: true}
	return true
}

func (o *Overlay) hideHint() {
	if !o.hint.mapped {
		return
	}
	xproto.UnmapWindow(o.xu.Conn(), o.hint.window)
	o.hint.mapped = false
}

func (o *Overlay) destroyHint() {
	if !o.hint.created {
		return
	}
	conn := o.xu.Conn()
	xproto.FreeGC(conn, o.hint.gc)
	xproto.CloseFont(conn, o.hint.font)
	xproto.DestroyWindow(conn, o.hint.window)
	o.hint = hintOverlay{}
}

func hintDimensions(lines []string) (width, height int) {
	maxChars := 0
	for _, line := range lines {
		maxChars = max(maxChars, len(line))
	}
	width = max(maxChars*hintCharWidth+2*hintPaddingX, hintMinWidth)
	height = len(lines)*hintLineHeight + 2*hintPaddingY
	return width, height
}

// chooseHintPosition tries the four corners of bounds, top-right first, and
// picks the first that overlaps nothing in avoid.
func chooseHintPosition(bounds geom.Rect, avoid []geom.Rect, width, height int) geom.Point {
	width = max(width, 1)
	height = max(height, 1)

	left := bounds.X + hintMargin
	right := max(bounds.Right()-hintMargin-width, left)
	top := bounds.Y + hintMargin
	bottom := max(bounds.Bottom()-hintMargin-height, top)

	corners := []geom.Point{
		{X: right, Y: top},
		{X: left, Y: top},
		{X: right, Y: bottom},
		{X: left, Y: bottom},
	}
	for _, p := range corners {
		candidate := geom.Rect{X: p.X, Y: p.Y, Width: width, Height: height}
		clear := true
		for _, a := range avoid {
			if candidate.Intersects(a) {
				clear = false
				break
			}
		}
		if clear {
			return clampHintOrigin(p, bounds, width, height)
		}
	}
	return clampHintOrigin(corners[0], bounds, width, height)
}

func clampHintOrigin(p geom.Point, bounds geom.Rect, width, height int) geom.Point {
	left := bounds.X + hintMargin
	right := bounds.Right() - hintMargin - width
	if right < left {
		left = bounds.X
		right = max(bounds.Right()-width, left)
	}
	top := bounds.Y + hintMargin
	bottom := bounds.Bottom() - hintMargin - height
	if bottom < top {
		top = bounds.Y
		bottom = max(bounds.Bottom()-height, top)
	}
	return geom.Point{
		X: min(max(p.X, left), right),
		Y: min(max(p.Y, top), bottom),
	}
}
