package stroke

import (
	"github.com/google/uuid"
)

// Point is a position in page-local coordinates.
type Point struct{ X, Y float64 }

// Color is an RGBA brush color. Highlighter colors are expected to carry
// partial alpha so underlying text stays readable.
type Color struct{ R, G, B, A uint8 }

// DefaultColor is the semi-transparent yellow highlighter.
var DefaultColor = Color{R: 255, G: 255, B: 0, A: 100}

// Geometry is the shape of a stroke. Exactly one concrete representation
// exists at a time: a Polyline while the stroke is fresh, a Shape once an
// eraser has touched it. The conversion is one-way; only an undo snapshot
// can bring the polyline back.
type Geometry interface {
	isGeometry()
}

// Polyline is the ordered point sequence of an un-erased stroke, painted
// at the stroke's width with round caps and joins.
type Polyline []Point

func (Polyline) isGeometry() {}

// Shape is a set of closed loops describing a filled area. Outer loops
// wind positively, holes negatively, so the area fills correctly under the
// non-zero rule.
type Shape [][]Point

func (Shape) isGeometry() {}

// Stroke is one continuous annotation mark anchored to a single page.
type Stroke struct {
	ID    string
	Page  int
	Color Color
	Width float64
	Geom  Geometry
}

// New creates an empty draw stroke with a fresh id.
func New(page int, c Color, width float64) *Stroke {
	return &Stroke{
		ID:    uuid.NewString(),
		Page:  page,
		Color: c,
		Width: width,
		Geom:  Polyline(nil),
	}
}

// Points returns the polyline points, or nil if the stroke has been
// converted to a shape.
func (s *Stroke) Points() []Point {
	if p, ok := s.Geom.(Polyline); ok {
		return p
	}
	return nil
}

// Loops returns the shape loops, or nil while the stroke is still a
// polyline.
func (s *Stroke) Loops() [][]Point {
	if sh, ok := s.Geom.(Shape); ok {
		return sh
	}
	return nil
}

// Append adds a point to a polyline stroke. It is a no-op on shapes.
func (s *Stroke) Append(p Point) {
	if pl, ok := s.Geom.(Polyline); ok {
		s.Geom = append(pl, p)
	}
}

// Valid reports whether the geometry satisfies the model invariants:
// a polyline of at least two points, or a shape whose loops are all
// non-empty.
func (s *Stroke) Valid() bool {
	switch g := s.Geom.(type) {
	case Polyline:
		return len(g) >= 2
	case Shape:
		if len(g) == 0 {
			return false
		}
		for _, loop := range g {
			if len(loop) < 3 {
				return false
			}
		}
		return true
	}
	return false
}

// Clone makes a deep copy, used for pre-erase snapshots.
func (s *Stroke) Clone() *Stroke {
	c := *s
	switch g := s.Geom.(type) {
	case Polyline:
		pts := make(Polyline, len(g))
		copy(pts, g)
		c.Geom = pts
	case Shape:
		loops := make(Shape, len(g))
		for i, loop := range g {
			loops[i] = append([]Point(nil), loop...)
		}
		c.Geom = loops
	}
	return &c
}
