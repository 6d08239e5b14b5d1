package geom

import (
	"math"

	"InkReader/internal/stroke"
)

// circleSegments is the polygonization density for round caps, joins and
// eraser tips. 32 keeps the area error under 0.2% at any radius.
const circleSegments = 32

// regionEpsilon inflates eraser regions a hair beyond the brush radius.
// It keeps boundary crossings transversal when an eraser of the same
// width sweeps straight along a stroke, the common "retrace to erase"
// gesture.
const regionEpsilon = 1e-4

// flankShrink pulls the straight flanks of an expanded stroke outline
// fractionally inside the cap circles so flank endpoints never land on a
// circle boundary.
const flankShrink = 1e-4

// Circle returns a positively wound polygon approximating a circle.
func Circle(c stroke.Point, r float64) []stroke.Point {
	loop := make([]stroke.Point, circleSegments)
	for i := range loop {
		a := 2 * math.Pi * float64(i) / circleSegments
		loop[i] = stroke.Point{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
	}
	return orient(loop)
}

// Capsule returns the swept disc between a and b at radius r: two half
// circles joined by straight flanks.
func Capsule(a, b stroke.Point, r float64) []stroke.Point {
	if dist(a, b) < 1e-9 {
		return Circle(a, r)
	}
	phi := math.Atan2(b.Y-a.Y, b.X-a.X)
	loop := make([]stroke.Point, 0, circleSegments+2)
	half := circleSegments / 2
	for i := 0; i <= half; i++ {
		t := phi - math.Pi/2 + math.Pi*float64(i)/float64(half)
		loop = append(loop, stroke.Point{X: b.X + r*math.Cos(t), Y: b.Y + r*math.Sin(t)})
	}
	for i := 0; i <= half; i++ {
		t := phi + math.Pi/2 + math.Pi*float64(i)/float64(half)
		loop = append(loop, stroke.Point{X: a.X + r*math.Cos(t), Y: a.Y + r*math.Sin(t)})
	}
	return orient(dedupe(loop, 1e-9))
}

// EraserRegion returns the area covered by one erase step: the swept
// capsule from prev to cur, or a plain disc when no previous sample
// exists. The radius carries the transversality epsilon.
func EraserRegion(cur stroke.Point, prev *stroke.Point, width float64) []stroke.Point {
	r := width/2 + regionEpsilon
	if prev != nil {
		return Capsule(*prev, cur, r)
	}
	return Circle(cur, r)
}

// segmentRect is the rectangle swept by a segment at half-width h,
// positively wound.
func segmentRect(a, b stroke.Point, h float64) []stroke.Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	nx, ny := -dy/l*h, dx/l*h
	return orient([]stroke.Point{
		{X: a.X - nx, Y: a.Y - ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: a.X + nx, Y: a.Y + ny},
	})
}

// Outline expands a polyline into the filled shape it paints at the
// given width: round caps and joins, self-crossings merged. Built as an
// incremental union of a disc per vertex and a rectangle per segment;
// the joint discs go in first so every rectangle flank crosses the
// accumulated boundary transversally on a cap arc.
func Outline(pts []stroke.Point, width float64) [][]stroke.Point {
	pts = dedupe(pts, 1e-6)
	if len(pts) == 0 {
		return nil
	}
	r := width / 2
	region := [][]stroke.Point{Circle(pts[0], r)}
	for _, p := range pts[1:] {
		region = Union(region, Circle(p, r))
	}
	for i := 0; i+1 < len(pts); i++ {
		region = Union(region, segmentRect(pts[i], pts[i+1], r*(1-flankShrink)))
	}
	return region
}
