// Package geom implements the plane geometry behind brush annotation:
// eraser region shapes, stroke outline expansion and boolean clipping of
// polygon loops. Loops follow the non-zero winding convention: outer
// boundaries have positive signed area, holes negative.
package geom

import (
	"math"

	"InkReader/internal/stroke"
)

// Rect is an axis-aligned bounding box.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Overlaps reports whether two boxes intersect.
func (r Rect) Overlaps(o Rect) bool {
	return !(r.MaxX < o.MinX || o.MaxX < r.MinX ||
		r.MaxY < o.MinY || o.MaxY < r.MinY)
}

// Inflate grows the box by d on every side.
func (r Rect) Inflate(d float64) Rect {
	return Rect{MinX: r.MinX - d, MinY: r.MinY - d, MaxX: r.MaxX + d, MaxY: r.MaxY + d}
}

// Bounds returns the bounding box of a point sequence.
func Bounds(pts []stroke.Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	r := Rect{MinX: pts[0].X, MinY: pts[0].Y, MaxX: pts[0].X, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		r.MinX = math.Min(r.MinX, p.X)
		r.MinY = math.Min(r.MinY, p.Y)
		r.MaxX = math.Max(r.MaxX, p.X)
		r.MaxY = math.Max(r.MaxY, p.Y)
	}
	return r
}

// LoopsBounds returns the bounding box of a set of loops.
func LoopsBounds(loops [][]stroke.Point) Rect {
	var r Rect
	first := true
	for _, loop := range loops {
		if len(loop) == 0 {
			continue
		}
		b := Bounds(loop)
		if first {
			r = b
			first = false
			continue
		}
		r.MinX = math.Min(r.MinX, b.MinX)
		r.MinY = math.Min(r.MinY, b.MinY)
		r.MaxX = math.Max(r.MaxX, b.MaxX)
		r.MaxY = math.Max(r.MaxY, b.MaxY)
	}
	return r
}

// StrokeBounds returns the bounding box of a stroke's painted area,
// whichever representation it currently has.
func StrokeBounds(s *stroke.Stroke) Rect {
	if pts := s.Points(); pts != nil {
		return Bounds(pts).Inflate(s.Width / 2)
	}
	return LoopsBounds(s.Loops())
}

func dist(a, b stroke.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// shoelace returns twice the signed area of a loop.
func shoelace(loop []stroke.Point) float64 {
	var sum float64
	for i, p := range loop {
		q := loop[(i+1)%len(loop)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum
}

// orient reverses the loop in place if its signed area is negative, so
// generator shapes always come out as positive outer boundaries.
func orient(loop []stroke.Point) []stroke.Point {
	if shoelace(loop) < 0 {
		for i, j := 0, len(loop)-1; i < j; i, j = i+1, j-1 {
			loop[i], loop[j] = loop[j], loop[i]
		}
	}
	return loop
}

func reversed(pts []stroke.Point) []stroke.Point {
	out := make([]stroke.Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// dedupe drops consecutive points closer than tol, keeping the first.
func dedupe(pts []stroke.Point, tol float64) []stroke.Point {
	if len(pts) == 0 {
		return nil
	}
	out := pts[:1]
	for _, p := range pts[1:] {
		if dist(out[len(out)-1], p) > tol {
			out = append(out, p)
		}
	}
	return out
}

// segSegDistance returns the minimum distance between segments a1a2 and b1b2.
func segSegDistance(a1, a2, b1, b2 stroke.Point) float64 {
	if _, _, ok := segIntersect(a1, a2, b1, b2); ok {
		return 0
	}
	d := pointSegDistance(a1, b1, b2)
	d = math.Min(d, pointSegDistance(a2, b1, b2))
	d = math.Min(d, pointSegDistance(b1, a1, a2))
	d = math.Min(d, pointSegDistance(b2, a1, a2))
	return d
}

// pointSegDistance returns the distance from p to segment ab.
func pointSegDistance(p, a, b stroke.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return dist(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return dist(p, stroke.Point{X: a.X + t*dx, Y: a.Y + t*dy})
}
