package ui

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"InkReader/internal/annotate"
	"InkReader/internal/geom"
	"InkReader/internal/render"
	"InkReader/internal/stroke"
	"InkReader/internal/view"
)

// Viewer is one scrollable viewport over the page stack. Two viewers
// may share a session side by side; a view.Link keeps them in step.
type Viewer struct {
	widget.BaseWidget
	session *Session
	coord   *view.Coordinator
	scroll  *container.Scroll
	stack   *pageStack

	// mods mirrors the held keyboard modifiers; wheel events do not
	// carry them, so the shell tracks key state for us.
	mods *view.Modifiers

	// OnRegion fires when an alt-drag selection completes.
	OnRegion func(page int, r geom.Rect)
}

// NewViewer builds a viewport over a session. mods is the shared
// modifier state maintained by the window shell.
func NewViewer(s *Session, mods *view.Modifiers) *Viewer {
	v := &Viewer{session: s, mods: mods}
	v.coord = view.NewCoordinator(s.Layout(), s.Engine())
	v.stack = newPageStack(v)
	v.scroll = container.NewScroll(v.stack)

	v.coord.OnPan = func(dx, dy float64) {
		z := float32(v.coord.Zoom())
		v.setOffset(v.scroll.Offset.X-float32(dx)*z, v.scroll.Offset.Y-float32(dy)*z)
	}
	v.coord.OnZoom = func(float64) {
		v.stack.Refresh()
		v.scroll.Refresh()
		v.RequestVisible()
	}
	v.coord.OnLiveStroke = func(page int) { v.stack.invalidate(page) }
	v.coord.OnScrollTo = func(fx, fy float64) {
		w, h := v.overflow()
		v.setOffset(float32(fx)*w, float32(fy)*h)
	}
	v.coord.OnRegionSelected = func(page int, r geom.Rect) {
		if v.OnRegion != nil {
			v.OnRegion(page, r)
		}
	}
	v.scroll.OnScrolled = func(off fyne.Position) {
		w, h := v.overflow()
		var fx, fy float64
		if w > 0 {
			fx = float64(off.X / w)
		}
		if h > 0 {
			fy = float64(off.Y / h)
		}
		v.coord.NotifyScrolled(fx, fy)
		v.RequestVisible()
	}

	s.Listen(func(page int) { v.stack.invalidate(page) })
	v.ExtendBaseWidget(v)
	return v
}

func (v *Viewer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.scroll)
}

// Coordinator exposes the gesture state machine for toolbar wiring and
// viewport linking.
func (v *Viewer) Coordinator() *view.Coordinator { return v.coord }

// CurrentPage is the page under the viewport center.
func (v *Viewer) CurrentPage() int {
	centerY := (float64(v.scroll.Offset.Y) + float64(v.scroll.Size().Height)/2) / v.coord.Zoom()
	return v.coord.CurrentPage(centerY)
}

// ScrollToPage jumps the viewport to the top of a page.
func (v *Viewer) ScrollToPage(page int) {
	g := v.session.Layout().Page(page)
	v.setOffset(v.scroll.Offset.X, float32((g.Y-render.PagePadding/2)*v.coord.Zoom()))
	v.RequestVisible()
}

// RequestVisible queues renders for the pages in and around the
// viewport.
func (v *Viewer) RequestVisible() {
	z := v.coord.Zoom()
	top := float64(v.scroll.Offset.Y) / z
	bottom := (float64(v.scroll.Offset.Y) + float64(v.scroll.Size().Height)) / z
	first := v.session.Layout().PageAt(top)
	last := v.session.Layout().PageAt(bottom)
	if first < 0 {
		return
	}
	for p := first - 1; p <= last+1; p++ {
		v.session.Request(p)
	}
}

// overflow is how far the content extends past the viewport, the
// denominator for scroll fractions.
func (v *Viewer) overflow() (float32, float32) {
	c := v.stack.MinSize()
	s := v.scroll.Size()
	w, h := c.Width-s.Width, c.Height-s.Height
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return w, h
}

func (v *Viewer) setOffset(x, y float32) {
	w, h := v.overflow()
	if x < 0 {
		x = 0
	}
	if x > w {
		x = w
	}
	if y < 0 {
		y = 0
	}
	if y > h {
		y = h
	}
	v.scroll.Offset = fyne.NewPos(x, y)
	v.scroll.Refresh()
}

// pageStack is the content widget inside the scroll container. It owns
// pointer input and paints the stacked pages with their annotation
// overlays.
type pageStack struct {
	widget.BaseWidget
	v         *Viewer
	overlays  map[int]image.Image
	lastScene stroke.Point
}

var _ desktop.Mouseable = (*pageStack)(nil)
var _ fyne.Draggable = (*pageStack)(nil)
var _ fyne.Scrollable = (*pageStack)(nil)

func newPageStack(v *Viewer) *pageStack {
	p := &pageStack{v: v, overlays: map[int]image.Image{}}
	p.ExtendBaseWidget(p)
	return p
}

func (p *pageStack) invalidate(page int) {
	delete(p.overlays, page)
	p.Refresh()
}

// overlay returns the page's stroke layer, rendered lazily and cached
// until the page's strokes change.
func (p *pageStack) overlay(page int) image.Image {
	if img, ok := p.overlays[page]; ok {
		return img
	}
	eng := p.v.session.Engine()
	strokes := eng.StrokesOn(page)
	var live *stroke.Stroke
	if cur := eng.Current(); cur != nil && cur.Page == page {
		live = cur
	}
	if len(strokes) == 0 && live == nil {
		return nil
	}
	g := p.v.session.Layout().Page(page)
	img := annotate.RenderOverlay(int(g.W), int(g.H), 1, strokes, live)
	p.overlays[page] = img
	return img
}

func (p *pageStack) scenePos(pos fyne.Position) stroke.Point {
	return p.v.coord.ToScene(float64(pos.X), float64(pos.Y))
}

func (p *pageStack) MouseDown(e *desktop.MouseEvent) {
	btn := view.ButtonLeft
	if e.Button == desktop.MouseButtonSecondary {
		btn = view.ButtonRight
	}
	mods := view.Modifiers{
		Ctrl:  e.Modifier&fyne.KeyModifierControl != 0,
		Shift: e.Modifier&fyne.KeyModifierShift != 0,
		Alt:   e.Modifier&fyne.KeyModifierAlt != 0,
	}
	p.lastScene = p.scenePos(e.Position)
	p.v.coord.PointerDown(btn, mods, p.lastScene)
}

func (p *pageStack) MouseUp(e *desktop.MouseEvent) {
	p.v.coord.PointerUp(p.scenePos(e.Position))
}

func (p *pageStack) Dragged(e *fyne.DragEvent) {
	p.lastScene = p.scenePos(e.Position)
	p.v.coord.PointerMove(p.lastScene)
}

func (p *pageStack) DragEnd() {
	p.v.coord.PointerUp(p.lastScene)
}

func (p *pageStack) MouseIn(*desktop.MouseEvent)    {}
func (p *pageStack) MouseOut()                      {}
func (p *pageStack) MouseMoved(*desktop.MouseEvent) {}

// Scrolled gives the coordinator first refusal on the wheel; zoom and
// brush sizing consume it, anything else scrolls the viewport.
func (p *pageStack) Scrolled(e *fyne.ScrollEvent) {
	if p.v.coord.Wheel(*p.v.mods, float64(e.Scrolled.DY)) {
		return
	}
	v := p.v
	v.setOffset(v.scroll.Offset.X-e.Scrolled.DX, v.scroll.Offset.Y-e.Scrolled.DY)
	if v.scroll.OnScrolled != nil {
		v.scroll.OnScrolled(v.scroll.Offset)
	}
}

func (p *pageStack) CreateRenderer() fyne.WidgetRenderer {
	return &stackRenderer{
		stack:      p,
		background: canvas.NewRectangle(color.Gray{Y: 110}),
	}
}

type stackRenderer struct {
	stack      *pageStack
	background *canvas.Rectangle
}

// Objects rebuilds the page canvases each refresh: raster or white
// placeholder per page, overlay image on top where strokes exist.
func (r *stackRenderer) Objects() []fyne.CanvasObject {
	v := r.stack.v
	z := v.coord.Zoom()
	layout := v.session.Layout()
	objects := []fyne.CanvasObject{r.background}
	for i := 0; i < layout.Len(); i++ {
		g := layout.Page(i)
		pos := fyne.NewPos(float32(g.X*z), float32(g.Y*z))
		size := fyne.NewSize(float32(g.W*z), float32(g.H*z))

		var page fyne.CanvasObject
		if raster := v.session.Raster(i); raster != nil {
			img := canvas.NewImageFromImage(raster)
			img.FillMode = canvas.ImageFillStretch
			img.ScaleMode = canvas.ImageScaleFastest
			page = img
		} else {
			page = canvas.NewRectangle(color.White)
		}
		page.Resize(size)
		page.Move(pos)
		objects = append(objects, page)

		if ov := r.stack.overlay(i); ov != nil {
			img := canvas.NewImageFromImage(ov)
			img.FillMode = canvas.ImageFillStretch
			img.Resize(size)
			img.Move(pos)
			objects = append(objects, img)
		}
	}
	return objects
}

func (r *stackRenderer) MinSize() fyne.Size {
	w, h := r.stack.v.session.Layout().Size()
	z := r.stack.v.coord.Zoom()
	return fyne.NewSize(float32(w*z), float32(h*z))
}

func (r *stackRenderer) Layout(size fyne.Size) { r.background.Resize(size) }
func (r *stackRenderer) Refresh()              { canvas.Refresh(r.stack) }
func (r *stackRenderer) Destroy()              {}
