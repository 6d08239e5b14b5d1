// Package ui is the fyne shell: one Session per open document, a
// scrollable page Viewer (optionally two, linked), the annotation
// toolbar and the contents sidebar.
package ui

import (
	"image"
	"log"
	"strings"
	"time"

	"fyne.io/fyne/v2"

	"InkReader/internal/annotate"
	"InkReader/internal/doc"
	"InkReader/internal/export"
	"InkReader/internal/geom"
	"InkReader/internal/ocr"
	"InkReader/internal/render"
	"InkReader/internal/stroke"
	"InkReader/internal/view"
)

// rotationReplayDelay is how long after open persisted page rotations
// are replayed, giving the first rasters a chance to arrive unrotated.
const rotationReplayDelay = 500 * time.Millisecond

// OpenRequest names the document and its per-document sidecar files.
type OpenRequest struct {
	DocumentPath   string
	CacheDir       string
	AnnotationPath string
	RotationPath   string
	TOCPath        string

	BaseScale  float64
	Workers    int
	BrushWidth float64
	BrushColor stroke.Color
}

// Session owns everything tied to one open document: the render
// pipeline, the page layout, the annotation engine and the sidecars.
// All methods run on the interactive goroutine; pipeline results are
// marshalled onto it through fyne.Do before they touch the session.
type Session struct {
	req    OpenRequest
	file   *doc.File
	cache  *render.Cache
	layout *render.Layout
	engine *annotate.Engine
	pipe   *render.Pipeline

	toc       []doc.TOCEntry
	rotations doc.Rotations
	rasters   map[int]image.Image

	listeners []func(page int)
	closed    bool
}

// NewSession opens the document, restores the sidecars and starts the
// render pipeline.
func NewSession(req OpenRequest) (*Session, error) {
	if req.BaseScale <= 0 {
		req.BaseScale = view.DefaultBaseScale
	}
	f, err := doc.Open(req.DocumentPath, req.BaseScale)
	if err != nil {
		return nil, err
	}
	s := &Session{
		req:       req,
		file:      f,
		cache:     render.NewCache(req.CacheDir),
		rotations: doc.LoadRotations(req.RotationPath),
		rasters:   map[int]image.Image{},
	}
	s.layout = render.NewLayout(s.pageSizes())

	s.engine = annotate.NewEngine(req.AnnotationPath)
	if req.BrushWidth > 0 {
		s.engine.AdjustBrushWidth(req.BrushWidth - s.engine.BrushWidth())
	}
	if req.BrushColor != (stroke.Color{}) {
		s.engine.SetBrushColor(req.BrushColor)
	}
	s.engine.OnPagesChanged = func(pages []int) {
		for _, p := range pages {
			s.notify(p)
		}
	}

	s.toc = doc.MergeTOC(doc.LoadTOC(req.TOCPath), f.ExtractTOC())
	if len(s.toc) > 0 {
		doc.SaveTOC(req.TOCPath, s.toc)
	}

	s.pipe = render.New(
		doc.RenderOpener(req.DocumentPath, req.BaseScale),
		s.cache, f.PageCount(), req.Workers, s.deliver,
	)
	s.pipe.Start()

	if len(s.rotations) > 0 {
		time.AfterFunc(rotationReplayDelay, func() {
			fyne.Do(s.replayRotations)
		})
	}
	log.Printf("NewSession: opened %s, %d pages", f.Title(), f.PageCount())
	return s, nil
}

func (s *Session) Title() string            { return s.file.Title() }
func (s *Session) PageCount() int           { return s.file.PageCount() }
func (s *Session) Layout() *render.Layout   { return s.layout }
func (s *Session) Engine() *annotate.Engine { return s.engine }
func (s *Session) TOC() []doc.TOCEntry      { return s.toc }

// Raster returns the display-ready raster for a page, already rotated,
// or nil while the page is a placeholder.
func (s *Session) Raster(page int) image.Image { return s.rasters[page] }

// Request asks the pipeline for a page raster.
func (s *Session) Request(page int) { s.pipe.Request(page) }

// Listen registers a callback invoked whenever a page's raster or
// overlay content changed.
func (s *Session) Listen(fn func(page int)) {
	s.listeners = append(s.listeners, fn)
}

// pageSizes sizes every page from document metadata, then from the
// cached raster header, then the A4 placeholder.
func (s *Session) pageSizes() [][2]float64 {
	sizes := make([][2]float64, s.file.PageCount())
	for i := range sizes {
		if w, h, err := s.file.PageSizePts(i); err == nil {
			sizes[i] = [2]float64{w * s.req.BaseScale, h * s.req.BaseScale}
			continue
		}
		if w, h, ok := s.cache.SizeOf(i); ok {
			sizes[i] = [2]float64{float64(w), float64(h)}
			continue
		}
		sizes[i][0], sizes[i][1] = render.FallbackPageSize(s.req.BaseScale)
	}
	return sizes
}

// deliver runs on the pipeline consumer goroutine; the session state is
// only touched after hopping to the interactive side, where the closed
// check drops results racing a teardown.
func (s *Session) deliver(res render.Result) {
	fyne.Do(func() {
		if s.closed || res.Err != nil {
			return
		}
		img := res.Image
		if rot := s.layout.Page(res.Page).Rotation; rot != 0 {
			img = render.Rotate(img, rot)
		}
		s.rasters[res.Page] = img
		b := img.Bounds()
		s.layout.SetSize(res.Page, float64(b.Dx()), float64(b.Dy()))
		s.notify(res.Page)
	})
}

func (s *Session) replayRotations() {
	if s.closed {
		return
	}
	for page, deg := range s.rotations {
		s.layout.SetRotation(page, deg)
		if img, ok := s.rasters[page]; ok {
			s.rasters[page] = render.Rotate(img, deg)
		}
		s.notify(page)
	}
}

// RotatePage turns a page 90 degrees clockwise, rotates its raster in
// place and persists the rotation sidecar.
func (s *Session) RotatePage(page int) {
	if page < 0 || page >= s.layout.Len() {
		return
	}
	rot := s.layout.Rotate(page)
	if img, ok := s.rasters[page]; ok {
		s.rasters[page] = render.Rotate(img, 90)
	}
	if rot == 0 {
		delete(s.rotations, page)
	} else {
		s.rotations[page] = rot
	}
	doc.SaveRotations(s.req.RotationPath, s.rotations)
	s.notify(page)
}

// ExtractRegion pulls the text under a selection rectangle, page-local
// to the anchor page. A rectangle spilling onto neighbouring pages
// collects them too, joined with blank lines. Pages without a text
// layer fall back to OCR when that was compiled in.
func (s *Session) ExtractRegion(page int, r geom.Rect) string {
	if page < 0 || page >= s.layout.Len() {
		return ""
	}
	anchor := s.layout.Page(page)
	scene := geom.Rect{
		MinX: r.MinX + anchor.X, MinY: r.MinY + anchor.Y,
		MaxX: r.MaxX + anchor.X, MaxY: r.MaxY + anchor.Y,
	}
	var parts []string
	for i := 0; i < s.layout.Len(); i++ {
		g := s.layout.Page(i)
		local := geom.Rect{
			MinX: clamp(scene.MinX-g.X, 0, g.W),
			MinY: clamp(scene.MinY-g.Y, 0, g.H),
			MaxX: clamp(scene.MaxX-g.X, 0, g.W),
			MaxY: clamp(scene.MaxY-g.Y, 0, g.H),
		}
		if local.MaxX <= local.MinX || local.MaxY <= local.MinY {
			continue
		}
		if text := s.regionText(i, local, g); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (s *Session) regionText(page int, r geom.Rect, g render.PageGeom) string {
	src := unrotateRect(r, g.Rotation, g.W, g.H)
	text, err := s.file.RegionText(page, src.MinX, src.MinY, src.MaxX, src.MaxY)
	if err != nil {
		log.Printf("ExtractRegion: page %d: %v", page, err)
		return ""
	}
	text = strings.TrimSpace(text)
	if text != "" || !ocr.Available() {
		return text
	}
	return s.ocrRegion(page, r)
}

func (s *Session) ocrRegion(page int, r geom.Rect) string {
	img, ok := s.rasters[page]
	if !ok {
		return ""
	}
	si, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	})
	if !ok {
		return ""
	}
	rect := image.Rect(int(r.MinX), int(r.MinY), int(r.MaxX), int(r.MaxY)).
		Intersect(img.Bounds())
	if rect.Empty() {
		return ""
	}
	text, err := ocr.ImageText(si.SubImage(rect))
	if err != nil {
		log.Printf("ExtractRegion: ocr page %d: %v", page, err)
		return ""
	}
	return text
}

// unrotateRect maps a rectangle from the displayed page frame back into
// the unrotated source frame. w and h are the displayed page
// dimensions.
func unrotateRect(r geom.Rect, rot int, w, h float64) geom.Rect {
	switch ((rot % 360) + 360) % 360 {
	case 90:
		return geom.Rect{MinX: r.MinY, MinY: w - r.MaxX, MaxX: r.MaxY, MaxY: w - r.MinX}
	case 180:
		return geom.Rect{MinX: w - r.MaxX, MinY: h - r.MaxY, MaxX: w - r.MinX, MaxY: h - r.MinY}
	case 270:
		return geom.Rect{MinX: h - r.MaxY, MinY: r.MinX, MaxX: h - r.MinY, MaxY: r.MaxX}
	}
	return r
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ExportAnnotated writes the document with its annotations to a new
// PDF. Pages never rendered are emitted blank with their strokes.
func (s *Session) ExportAnnotated(path string) error {
	pages := make([]export.Page, s.layout.Len())
	for i := range pages {
		g := s.layout.Page(i)
		pages[i] = export.Page{
			Image:   s.rasters[i],
			WPts:    g.W / s.req.BaseScale,
			HPts:    g.H / s.req.BaseScale,
			Strokes: s.engine.StrokesOn(i),
		}
	}
	return export.AnnotatedPDF(path, pages, s.req.BaseScale)
}

// Close tears down the pipeline and the document handle. Late pipeline
// results are dropped by the closed check in deliver.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.pipe.Stop()
	if err := s.file.Close(); err != nil {
		log.Printf("Close: %v", err)
	}
}

func (s *Session) notify(page int) {
	for _, fn := range s.listeners {
		fn(page)
	}
}
