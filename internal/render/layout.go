package render

// PagePadding is the vertical gap between stacked pages, in base-scale
// pixels.
const PagePadding = 20.0

// A4 page size in PDF points, the placeholder fallback when neither
// document metadata nor a cached raster can size a page.
const (
	a4WidthPts  = 595.0
	a4HeightPts = 842.0
)

// FallbackPageSize returns the A4 placeholder dimensions at a scale.
func FallbackPageSize(scale float64) (w, h float64) {
	return a4WidthPts * scale, a4HeightPts * scale
}

// PageGeom is one page's slot in the stacked scene: pixel size at base
// scale, scene offset, and accumulated rotation.
type PageGeom struct {
	W, H     float64
	X, Y     float64
	Rotation int
}

// Layout stacks pages vertically with fixed padding, centering each
// horizontally against the widest page.
type Layout struct {
	pages []PageGeom
}

// NewLayout builds the initial geometry from per-page sizes.
func NewLayout(sizes [][2]float64) *Layout {
	l := &Layout{pages: make([]PageGeom, len(sizes))}
	for i, wh := range sizes {
		l.pages[i].W, l.pages[i].H = wh[0], wh[1]
	}
	l.reflow()
	return l
}

// Page returns the geometry of one page.
func (l *Layout) Page(i int) PageGeom {
	if i < 0 || i >= len(l.pages) {
		return PageGeom{}
	}
	return l.pages[i]
}

// Len returns the page count.
func (l *Layout) Len() int { return len(l.pages) }

// SetSize replaces a page's dimensions, as when a real raster arrives
// for a placeholder-sized page, and reflows the stack.
func (l *Layout) SetSize(i int, w, h float64) {
	if i < 0 || i >= len(l.pages) {
		return
	}
	l.pages[i].W, l.pages[i].H = w, h
	l.reflow()
}

// Rotate turns a page 90 degrees clockwise: dimensions swap, every page
// below shifts, and the whole stack re-centers.
func (l *Layout) Rotate(i int) int {
	if i < 0 || i >= len(l.pages) {
		return 0
	}
	p := &l.pages[i]
	p.W, p.H = p.H, p.W
	p.Rotation = (p.Rotation + 90) % 360
	l.reflow()
	return p.Rotation
}

// SetRotation replays a persisted rotation on load. Only multiples of
// 90 are meaningful; others are ignored.
func (l *Layout) SetRotation(i, degrees int) {
	if i < 0 || i >= len(l.pages) || degrees%90 != 0 {
		return
	}
	p := &l.pages[i]
	for p.Rotation != ((degrees%360)+360)%360 {
		p.W, p.H = p.H, p.W
		p.Rotation = (p.Rotation + 90) % 360
	}
	l.reflow()
}

// Size returns the scene extents enclosing every page plus padding.
func (l *Layout) Size() (w, h float64) {
	for _, p := range l.pages {
		if p.W > w {
			w = p.W
		}
		h = p.Y + p.H + PagePadding
	}
	return w, h
}

// PageAt returns the index of the page whose vertical span contains y,
// or the nearest page when y falls in padding. -1 with no pages.
func (l *Layout) PageAt(y float64) int {
	if len(l.pages) == 0 {
		return -1
	}
	for i, p := range l.pages {
		if y < p.Y+p.H+PagePadding/2 {
			return i
		}
	}
	return len(l.pages) - 1
}

func (l *Layout) reflow() {
	var maxW float64
	for _, p := range l.pages {
		if p.W > maxW {
			maxW = p.W
		}
	}
	y := PagePadding / 2
	for i := range l.pages {
		p := &l.pages[i]
		p.X = (maxW - p.W) / 2
		p.Y = y
		y += p.H + PagePadding
	}
}
