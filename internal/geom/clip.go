package geom

import (
	"math"

	"github.com/gogpu/gg"

	"InkReader/internal/stroke"
)

// Boolean clipping of loop sets against a single convex-ish clip loop.
//
// The algorithm splits both boundaries at their mutual edge crossings,
// classifies each fragment by whether its midpoint lies inside the other
// operand, keeps the fragments the operation calls for, and stitches them
// back into closed loops by matching endpoints. Eraser regions are
// epsilon-inflated by the caller, so crossings are transversal and no
// fragment midpoint sits on a boundary.

type boolOp int

const (
	opUnion boolOp = iota
	opDifference
)

// Subtract removes the area of clip from the subject loops.
func Subtract(subject [][]stroke.Point, clip []stroke.Point) [][]stroke.Point {
	return clipLoops(subject, clip, opDifference)
}

// Union merges the area of clip into the subject loops.
func Union(subject [][]stroke.Point, clip []stroke.Point) [][]stroke.Point {
	return clipLoops(subject, clip, opUnion)
}

// Contains reports whether p lies inside the area described by loops
// under the non-zero winding rule.
func Contains(loops [][]stroke.Point, p stroke.Point) bool {
	return loopsPath(loops).Winding(gg.Pt(p.X, p.Y)) != 0
}

// Area returns the absolute net area of a loop set. Holes, wound
// opposite to their outers, subtract from the total.
func Area(loops [][]stroke.Point) float64 {
	return math.Abs(loopsPath(loops).Area())
}

func loopsPath(loops [][]stroke.Point) *gg.Path {
	path := gg.NewPath()
	for _, loop := range loops {
		if len(loop) < 3 {
			continue
		}
		path.MoveTo(loop[0].X, loop[0].Y)
		for _, p := range loop[1:] {
			path.LineTo(p.X, p.Y)
		}
		path.Close()
	}
	return path
}

// segIntersect intersects segments a1a2 and b1b2, returning the curve
// parameters on each. Only proper interior crossings count: parallel and
// endpoint-touching cases report no intersection.
func segIntersect(a1, a2, b1, b2 stroke.Point) (t, u float64, ok bool) {
	d1x, d1y := a2.X-a1.X, a2.Y-a1.Y
	d2x, d2y := b2.X-b1.X, b2.Y-b1.Y
	den := d1x*d2y - d1y*d2x
	if math.Abs(den) < 1e-12 {
		return 0, 0, false
	}
	ex, ey := b1.X-a1.X, b1.Y-a1.Y
	t = (ex*d2y - ey*d2x) / den
	u = (ex*d1y - ey*d1x) / den
	const eps = 1e-12
	ok = t > eps && t < 1-eps && u > eps && u < 1-eps
	return t, u, ok
}

// fragment is a run of boundary between two crossings, or a whole loop
// when the loop has no crossings.
type fragment struct {
	pts    []stroke.Point
	closed bool
}

// midpoint returns a representative interior point of the fragment for
// containment classification.
func (f fragment) midpoint() stroke.Point {
	i := (len(f.pts) - 1) / 2
	a, b := f.pts[i], f.pts[i+1]
	return stroke.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

type crossing struct {
	t float64
	p stroke.Point
}

// splitLoop cuts a loop at the crossings recorded per edge. With no
// crossings the loop comes back whole, flagged closed.
func splitLoop(loop []stroke.Point, xings map[int][]crossing) []fragment {
	n := len(loop)
	var pts []stroke.Point
	var frags []fragment
	var started bool
	var firstTail []stroke.Point

	total := 0
	for _, xs := range xings {
		total += len(xs)
	}
	if total == 0 {
		return []fragment{{pts: append(append([]stroke.Point(nil), loop...), loop[0]), closed: true}}
	}

	for i := 0; i < n; i++ {
		pts = append(pts, loop[i])
		xs := xings[i]
		sortCrossings(xs)
		for _, x := range xs {
			pts = append(pts, x.p)
			if !started {
				// Everything before the first crossing joins the last
				// fragment once the walk wraps around.
				firstTail = pts
				started = true
			} else {
				frags = append(frags, fragment{pts: pts})
			}
			pts = []stroke.Point{x.p}
		}
	}
	// Close the wrap-around fragment through the loop start.
	pts = append(pts, firstTail...)
	frags = append(frags, fragment{pts: pts})
	return frags
}

func sortCrossings(xs []crossing) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j].t < xs[j-1].t; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}

func clipLoops(subject [][]stroke.Point, clip []stroke.Point, op boolOp) [][]stroke.Point {
	clip = dedupe(clip, 1e-9)
	if len(clip) < 3 {
		return subject
	}

	// Crossings per subject loop/edge and per clip edge, shared points so
	// stitching matches endpoints exactly.
	subjXings := make([]map[int][]crossing, len(subject))
	clipXings := map[int][]crossing{}
	for li, loop := range subject {
		subjXings[li] = map[int][]crossing{}
		for i := 0; i < len(loop); i++ {
			a1, a2 := loop[i], loop[(i+1)%len(loop)]
			for j := 0; j < len(clip); j++ {
				b1, b2 := clip[j], clip[(j+1)%len(clip)]
				t, u, ok := segIntersect(a1, a2, b1, b2)
				if !ok {
					continue
				}
				p := stroke.Point{X: a1.X + t*(a2.X-a1.X), Y: a1.Y + t*(a2.Y-a1.Y)}
				subjXings[li][i] = append(subjXings[li][i], crossing{t: t, p: p})
				clipXings[j] = append(clipXings[j], crossing{t: u, p: p})
			}
		}
	}

	subjPath := loopsPath(subject)
	clipPath := loopsPath([][]stroke.Point{clip})
	insideSubject := func(p stroke.Point) bool { return subjPath.Winding(gg.Pt(p.X, p.Y)) != 0 }
	insideClip := func(p stroke.Point) bool { return clipPath.Winding(gg.Pt(p.X, p.Y)) != 0 }

	var keepClosed [][]stroke.Point
	var open []fragment

	for li, loop := range subject {
		if len(loop) < 3 {
			continue
		}
		for _, f := range splitLoop(loop, subjXings[li]) {
			if f.closed {
				// Untouched loop: in or out of the clip as a whole.
				in := insideClip(loop[0])
				if !in {
					keepClosed = append(keepClosed, loop)
				}
				continue
			}
			if !insideClip(f.midpoint()) {
				open = append(open, f)
			}
		}
	}

	for _, f := range splitLoop(clip, clipXings) {
		if f.closed {
			in := insideSubject(clip[0])
			switch op {
			case opDifference:
				// A swallowed clip region punches a hole.
				if in {
					keepClosed = append(keepClosed, reversed(clip))
				}
			case opUnion:
				if !in {
					keepClosed = append(keepClosed, append([]stroke.Point(nil), clip...))
				}
			}
			continue
		}
		in := insideSubject(f.midpoint())
		switch op {
		case opDifference:
			if in {
				open = append(open, fragment{pts: reversed(f.pts)})
			}
		case opUnion:
			if !in {
				open = append(open, f)
			}
		}
	}

	return append(keepClosed, stitch(open)...)
}

// stitch chains open fragments end to start into closed loops. Chains
// that cannot be closed are discarded rather than emitted malformed.
func stitch(frags []fragment) [][]stroke.Point {
	type key [2]int64
	quant := func(p stroke.Point) key {
		return key{int64(math.Round(p.X * 1e7)), int64(math.Round(p.Y * 1e7))}
	}
	byStart := map[key][]int{}
	for i, f := range frags {
		byStart[quant(f.pts[0])] = append(byStart[quant(f.pts[0])], i)
	}
	used := make([]bool, len(frags))
	take := func(k key) int {
		for _, i := range byStart[k] {
			if !used[i] {
				used[i] = true
				return i
			}
		}
		return -1
	}

	var out [][]stroke.Point
	for i := range frags {
		if used[i] {
			continue
		}
		used[i] = true
		loop := append([]stroke.Point(nil), frags[i].pts...)
		start := quant(loop[0])
		closed := false
		for range frags {
			end := quant(loop[len(loop)-1])
			if end == start {
				closed = true
				break
			}
			j := take(end)
			if j < 0 {
				break
			}
			loop = append(loop, frags[j].pts[1:]...)
		}
		if !closed && quant(loop[len(loop)-1]) == start {
			closed = true
		}
		if !closed {
			continue
		}
		loop = dedupe(loop[:len(loop)-1], 1e-9)
		if len(loop) >= 3 && math.Abs(shoelace(loop)/2) > 1e-9 {
			out = append(out, loop)
		}
	}
	return out
}
