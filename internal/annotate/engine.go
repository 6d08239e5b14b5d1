// Package annotate owns the freehand annotation state of one open
// document: the stroke set, the live drawing gesture, erasing with
// polygon subtraction, undo, and sidecar persistence. All methods must
// be called from the interactive goroutine.
package annotate

import (
	"log"

	"InkReader/internal/geom"
	"InkReader/internal/stroke"
)

// Mode selects what a left drag does while annotation is enabled.
type Mode int

const (
	ModeDisabled Mode = iota
	ModeDraw
	ModeErase
)

const (
	MinBrushWidth     = 1.0
	MaxBrushWidth     = 50.0
	DefaultBrushWidth = 25.0
)

// emptyAreaThreshold is the area below which an erased stroke counts as
// fully gone and is removed instead of kept as crumbs.
const emptyAreaThreshold = 1e-6

// undoRecord reverses one committed mutation: delete the strokes it
// added, put back the snapshots it modified or removed.
type undoRecord struct {
	added   []string
	restore []*stroke.Stroke
}

// Engine holds the annotation state for one document.
type Engine struct {
	path    string
	strokes []*stroke.Stroke

	mode       Mode
	brushWidth float64
	brushColor stroke.Color

	current *stroke.Stroke

	// Per erase gesture, cleared by CommitErase.
	lastErase *stroke.Point
	snapshots map[string]*stroke.Stroke
	dirty     bool

	undo []undoRecord

	// OnPagesChanged is invoked after any mutation with the pages whose
	// overlays need repainting. Optional.
	OnPagesChanged func(pages []int)
}

// NewEngine loads the sidecar at path (missing file means a fresh set)
// and starts with the default brush.
func NewEngine(path string) *Engine {
	e := &Engine{
		path:       path,
		strokes:    stroke.Load(path),
		brushWidth: DefaultBrushWidth,
		brushColor: stroke.DefaultColor,
		snapshots:  map[string]*stroke.Stroke{},
	}
	if n := len(e.strokes); n > 0 {
		log.Printf("NewEngine: loaded %d strokes from %s", n, path)
	}
	return e
}

func (e *Engine) Mode() Mode        { return e.mode }
func (e *Engine) SetMode(m Mode)    { e.mode = m }
func (e *Engine) BrushWidth() float64 { return e.brushWidth }

func (e *Engine) SetBrushColor(c stroke.Color) { e.brushColor = c }
func (e *Engine) BrushColor() stroke.Color     { return e.brushColor }

// AdjustBrushWidth nudges the brush size by delta, clamped to the legal
// range, and returns the new width. The same width drives the eraser.
func (e *Engine) AdjustBrushWidth(delta float64) float64 {
	e.brushWidth += delta
	if e.brushWidth < MinBrushWidth {
		e.brushWidth = MinBrushWidth
	}
	if e.brushWidth > MaxBrushWidth {
		e.brushWidth = MaxBrushWidth
	}
	return e.brushWidth
}

// Strokes returns the full stroke set in draw order.
func (e *Engine) Strokes() []*stroke.Stroke { return e.strokes }

// StrokesOn returns the strokes anchored to one page, in draw order.
func (e *Engine) StrokesOn(page int) []*stroke.Stroke {
	var out []*stroke.Stroke
	for _, s := range e.strokes {
		if s.Page == page {
			out = append(out, s)
		}
	}
	return out
}

// Current returns the in-progress draw stroke, or nil.
func (e *Engine) Current() *stroke.Stroke { return e.current }

// StartStroke begins a draw gesture on a page. A no-op unless the
// engine is in draw mode; gating lives here, not only in the input
// layer.
func (e *Engine) StartStroke(page int, p stroke.Point) {
	if e.mode != ModeDraw {
		return
	}
	e.current = stroke.New(page, e.brushColor, e.brushWidth)
	e.current.Append(p)
}

// ExtendStroke adds a sample to the in-progress stroke.
func (e *Engine) ExtendStroke(p stroke.Point) {
	if e.current != nil {
		e.current.Append(p)
	}
}

// CommitStroke finishes the draw gesture. A stroke that never grew past
// a single sample is discarded. Committed strokes persist immediately.
func (e *Engine) CommitStroke() *stroke.Stroke {
	s := e.current
	e.current = nil
	if s == nil || !s.Valid() {
		return nil
	}
	e.strokes = append(e.strokes, s)
	e.undo = append(e.undo, undoRecord{added: []string{s.ID}})
	e.persist()
	e.notify(s.Page)
	return s
}

// EraseAt applies one eraser sample on a page. The swept region between
// the previous and current sample is subtracted from every stroke it
// touches; a stroke's first touch in a gesture snapshots it for undo and
// converts a polyline to its painted outline shape. Persistence waits
// for CommitErase.
func (e *Engine) EraseAt(page int, p stroke.Point) {
	// Shift-forced erasing runs with the engine still in draw mode, so
	// only the disabled state is inert.
	if e.mode == ModeDisabled {
		return
	}
	region := geom.EraserRegion(p, e.lastErase, e.brushWidth)
	e.lastErase = &stroke.Point{X: p.X, Y: p.Y}
	regionBounds := geom.Bounds(region)

	var kept []*stroke.Stroke
	changed := false
	for _, s := range e.strokes {
		if s.Page != page ||
			!geom.StrokeBounds(s).Overlaps(regionBounds) ||
			!geom.StrokeIntersects(s, region) {
			kept = append(kept, s)
			continue
		}
		if _, ok := e.snapshots[s.ID]; !ok {
			e.snapshots[s.ID] = s.Clone()
		}
		if pts := s.Points(); pts != nil {
			s.Geom = stroke.Shape(geom.Outline(pts, s.Width))
		}
		loops := geom.Subtract(s.Loops(), region)
		changed = true
		if len(loops) == 0 || geom.Area(loops) < emptyAreaThreshold {
			continue
		}
		s.Geom = stroke.Shape(loops)
		kept = append(kept, s)
	}
	if changed {
		e.strokes = kept
		e.dirty = true
		e.notify(page)
	}
}

// CommitErase ends the erase gesture: one batched save for however many
// strokes the sweep touched, one undo record for the whole gesture.
func (e *Engine) CommitErase() {
	e.lastErase = nil
	if !e.dirty {
		return
	}
	rec := undoRecord{restore: make([]*stroke.Stroke, 0, len(e.snapshots))}
	for _, snap := range e.snapshots {
		rec.restore = append(rec.restore, snap)
	}
	e.undo = append(e.undo, rec)
	e.snapshots = map[string]*stroke.Stroke{}
	e.dirty = false
	e.persist()
}

// Undo reverses the most recent committed draw, erase gesture or clear.
// It reports whether anything was undone.
func (e *Engine) Undo() bool {
	if len(e.undo) == 0 {
		return false
	}
	rec := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]

	pages := map[int]bool{}
	if len(rec.added) > 0 {
		drop := map[string]bool{}
		for _, id := range rec.added {
			drop[id] = true
		}
		var kept []*stroke.Stroke
		for _, s := range e.strokes {
			if drop[s.ID] {
				pages[s.Page] = true
				continue
			}
			kept = append(kept, s)
		}
		e.strokes = kept
	}
	for _, snap := range rec.restore {
		pages[snap.Page] = true
		replaced := false
		for i, s := range e.strokes {
			if s.ID == snap.ID {
				e.strokes[i] = snap
				replaced = true
				break
			}
		}
		if !replaced {
			e.strokes = append(e.strokes, snap)
		}
	}
	e.persist()
	for p := range pages {
		e.notify(p)
	}
	return true
}

// Clear removes every stroke. One undo step brings them all back.
func (e *Engine) Clear() {
	if len(e.strokes) == 0 {
		return
	}
	rec := undoRecord{restore: make([]*stroke.Stroke, 0, len(e.strokes))}
	pages := map[int]bool{}
	for _, s := range e.strokes {
		rec.restore = append(rec.restore, s.Clone())
		pages[s.Page] = true
	}
	e.undo = append(e.undo, rec)
	e.strokes = nil
	e.persist()
	for p := range pages {
		e.notify(p)
	}
}

func (e *Engine) persist() {
	if e.path == "" {
		return
	}
	if !stroke.Save(e.path, e.strokes) {
		log.Printf("persist: annotations not saved, in-memory set kept")
	}
}

func (e *Engine) notify(page int) {
	if e.OnPagesChanged != nil {
		e.OnPagesChanged([]int{page})
	}
}
