// Package view translates raw pointer and wheel input into document
// actions: panning, zooming, brush gestures and region selection. It
// owns no widgets; the UI layer feeds it events and reacts through
// callbacks, which keeps every gesture rule testable headlessly.
package view

import (
	"InkReader/internal/annotate"
	"InkReader/internal/geom"
	"InkReader/internal/render"
	"InkReader/internal/stroke"
)

const (
	// DefaultBaseScale is the PDF-point to base-pixel factor pages are
	// rasterized at. On-screen zoom multiplies on top of it.
	DefaultBaseScale = 2.5

	MinZoom  = 0.2
	MaxZoom  = 10.0
	ZoomStep = 1.1

	// brushWheelStep is how much one shift+wheel notch changes the brush.
	brushWheelStep = 2.0
)

// Gesture is the exclusive interaction a drag is committed to. It is
// decided on the press and never changes until release.
type Gesture int

const (
	GestureNone Gesture = iota
	GesturePan
	GestureDraw
	GestureErase
	GestureSelect
)

// Button is the pressed pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
)

// Modifiers is the keyboard chord held during an input event.
type Modifiers struct {
	Ctrl, Shift, Alt bool
}

// Coordinator runs the gesture state machine for one viewport.
type Coordinator struct {
	layout *render.Layout
	engine *annotate.Engine

	zoom    float64
	enabled bool

	gesture   Gesture
	gestPage  int
	lastScene stroke.Point
	selStart  stroke.Point

	link *Link

	// OnPan receives scene-space drag deltas during a pan gesture.
	OnPan func(dx, dy float64)
	// OnZoom fires whenever the zoom factor changes, locally or from a
	// linked peer.
	OnZoom func(zoom float64)
	// OnBrushWidth fires when shift+wheel resizes the brush.
	OnBrushWidth func(width float64)
	// OnRegionSelected fires when an alt-drag completes, with the
	// page-local selection rectangle.
	OnRegionSelected func(page int, r geom.Rect)
	// OnScrollTo receives scroll fractions broadcast by a linked peer.
	OnScrollTo func(fx, fy float64)
	// OnLiveStroke fires while a draw gesture grows, naming the page to
	// repaint.
	OnLiveStroke func(page int)
}

// NewCoordinator wires a coordinator over a page layout and annotation
// engine, starting at 1x zoom with annotation disabled.
func NewCoordinator(layout *render.Layout, engine *annotate.Engine) *Coordinator {
	return &Coordinator{layout: layout, engine: engine, zoom: 1, gestPage: -1}
}

func (c *Coordinator) Zoom() float64    { return c.zoom }
func (c *Coordinator) Gesture() Gesture { return c.gesture }

func (c *Coordinator) SetAnnotationEnabled(on bool) { c.enabled = on }
func (c *Coordinator) AnnotationEnabled() bool      { return c.enabled }

// ToScene converts widget pixels to scene coordinates at base scale.
func (c *Coordinator) ToScene(wx, wy float64) stroke.Point {
	return stroke.Point{X: wx / c.zoom, Y: wy / c.zoom}
}

// PagePoint maps a scene point onto the page under it, returning the
// page-local point. ok is false over padding or outside the stack.
func (c *Coordinator) PagePoint(scene stroke.Point) (page int, p stroke.Point, ok bool) {
	for i := 0; i < c.layout.Len(); i++ {
		g := c.layout.Page(i)
		if scene.X >= g.X && scene.X <= g.X+g.W && scene.Y >= g.Y && scene.Y <= g.Y+g.H {
			return i, stroke.Point{X: scene.X - g.X, Y: scene.Y - g.Y}, true
		}
	}
	return -1, stroke.Point{}, false
}

// CurrentPage is the page whose vertical span contains the viewport
// center.
func (c *Coordinator) CurrentPage(centerSceneY float64) int {
	return c.layout.PageAt(centerSceneY)
}

// PointerDown opens a gesture. The decision table: right button pans;
// alt+left selects text; left draws or erases while annotation is
// enabled, with shift forcing the eraser; anything else is inert.
func (c *Coordinator) PointerDown(btn Button, mods Modifiers, scene stroke.Point) Gesture {
	if c.gesture != GestureNone {
		return c.gesture
	}
	c.lastScene = scene

	switch {
	case btn == ButtonRight:
		c.gesture = GesturePan

	case btn == ButtonLeft && mods.Alt:
		c.gesture = GestureSelect
		c.selStart = scene

	case btn == ButtonLeft && c.enabled:
		page, p, ok := c.PagePoint(scene)
		if !ok {
			return GestureNone
		}
		c.gestPage = page
		if c.engine.Mode() == annotate.ModeErase || mods.Shift {
			c.gesture = GestureErase
			c.engine.EraseAt(page, p)
		} else {
			c.gesture = GestureDraw
			c.engine.StartStroke(page, p)
			c.notifyLive()
		}
	}
	return c.gesture
}

// PointerMove advances the open gesture.
func (c *Coordinator) PointerMove(scene stroke.Point) {
	switch c.gesture {
	case GesturePan:
		if c.OnPan != nil {
			c.OnPan(scene.X-c.lastScene.X, scene.Y-c.lastScene.Y)
		}
	case GestureDraw:
		if p, ok := c.onGesturePage(scene); ok {
			c.engine.ExtendStroke(p)
			c.notifyLive()
		}
	case GestureErase:
		if p, ok := c.onGesturePage(scene); ok {
			c.engine.EraseAt(c.gestPage, p)
		}
	}
	c.lastScene = scene
}

// PointerUp closes the gesture and commits its effect.
func (c *Coordinator) PointerUp(scene stroke.Point) {
	switch c.gesture {
	case GestureDraw:
		c.engine.CommitStroke()
		c.notifyLive()
	case GestureErase:
		c.engine.CommitErase()
	case GestureSelect:
		c.finishSelection(scene)
	}
	c.gesture = GestureNone
	c.gestPage = -1
}

// Wheel handles a scroll notch. It reports true when the event was
// consumed; an unconsumed wheel falls through to normal scrolling.
func (c *Coordinator) Wheel(mods Modifiers, dy float64) bool {
	switch {
	case mods.Ctrl:
		if dy > 0 {
			c.setZoom(c.zoom*ZoomStep, true)
		} else if dy < 0 {
			c.setZoom(c.zoom/ZoomStep, true)
		}
		return true
	case mods.Shift && c.enabled:
		step := brushWheelStep
		if dy < 0 {
			step = -brushWheelStep
		}
		w := c.engine.AdjustBrushWidth(step)
		if c.OnBrushWidth != nil {
			c.OnBrushWidth(w)
		}
		return true
	}
	return false
}

// NotifyScrolled is called by the UI after its own scroll position
// changed, so a linked peer can follow.
func (c *Coordinator) NotifyScrolled(fx, fy float64) {
	if c.link != nil {
		c.link.broadcastScroll(c, fx, fy)
	}
}

func (c *Coordinator) setZoom(z float64, broadcast bool) {
	if z < MinZoom {
		z = MinZoom
	}
	if z > MaxZoom {
		z = MaxZoom
	}
	if z == c.zoom {
		return
	}
	c.zoom = z
	if c.OnZoom != nil {
		c.OnZoom(z)
	}
	if broadcast && c.link != nil {
		c.link.broadcastZoom(c, z)
	}
}

func (c *Coordinator) onGesturePage(scene stroke.Point) (stroke.Point, bool) {
	if c.gestPage < 0 {
		return stroke.Point{}, false
	}
	g := c.layout.Page(c.gestPage)
	p := stroke.Point{X: scene.X - g.X, Y: scene.Y - g.Y}
	// The gesture stays on its page even when the pointer wanders; the
	// point is clamped to the page rather than dropped mid-stroke.
	if p.X < 0 {
		p.X = 0
	}
	if p.X > g.W {
		p.X = g.W
	}
	if p.Y < 0 {
		p.Y = 0
	}
	if p.Y > g.H {
		p.Y = g.H
	}
	return p, true
}

func (c *Coordinator) finishSelection(scene stroke.Point) {
	if c.OnRegionSelected == nil {
		return
	}
	r := geom.Bounds([]stroke.Point{c.selStart, scene})
	page, _, ok := c.PagePoint(stroke.Point{
		X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2,
	})
	if !ok {
		return
	}
	g := c.layout.Page(page)
	c.OnRegionSelected(page, geom.Rect{
		MinX: r.MinX - g.X, MinY: r.MinY - g.Y,
		MaxX: r.MaxX - g.X, MaxY: r.MaxY - g.Y,
	})
}

func (c *Coordinator) notifyLive() {
	if c.OnLiveStroke != nil && c.gestPage >= 0 {
		c.OnLiveStroke(c.gestPage)
	}
}

// Link keeps two side-by-side viewports in step: scroll fractions and
// zoom propagate from one to the other, with a re-entrancy guard so the
// echo never loops back.
type Link struct {
	peers   []*Coordinator
	syncing bool
}

// NewLink joins coordinators into one synchronized group.
func NewLink(peers ...*Coordinator) *Link {
	l := &Link{peers: peers}
	for _, c := range peers {
		c.link = l
	}
	return l
}

func (l *Link) broadcastScroll(from *Coordinator, fx, fy float64) {
	if l.syncing {
		return
	}
	l.syncing = true
	defer func() { l.syncing = false }()
	for _, c := range l.peers {
		if c != from && c.OnScrollTo != nil {
			c.OnScrollTo(fx, fy)
		}
	}
}

func (l *Link) broadcastZoom(from *Coordinator, z float64) {
	if l.syncing {
		return
	}
	l.syncing = true
	defer func() { l.syncing = false }()
	for _, c := range l.peers {
		if c != from {
			c.setZoom(z, false)
		}
	}
}
