package geom

import (
	"math"
	"testing"

	"InkReader/internal/stroke"
)

func near(t *testing.T, got, want, relTol float64) {
	t.Helper()
	if math.Abs(got-want) > relTol*want {
		t.Errorf("got %.3f, want %.3f (±%.1f%%)", got, want, relTol*100)
	}
}

func TestCircleArea(t *testing.T) {
	c := Circle(stroke.Point{X: 3, Y: -2}, 10)
	near(t, Area([][]stroke.Point{c}), math.Pi*100, 0.01)
	if shoelace(c) <= 0 {
		t.Error("circle loop not positively wound")
	}
}

func TestCapsuleArea(t *testing.T) {
	cap := Capsule(stroke.Point{X: 0, Y: 0}, stroke.Point{X: 40, Y: 0}, 10)
	near(t, Area([][]stroke.Point{cap}), math.Pi*100+2*10*40, 0.01)
	if shoelace(cap) <= 0 {
		t.Error("capsule loop not positively wound")
	}
}

func TestCapsuleDegeneratesToCircle(t *testing.T) {
	p := stroke.Point{X: 5, Y: 5}
	cap := Capsule(p, p, 8)
	near(t, Area([][]stroke.Point{cap}), math.Pi*64, 0.01)
}

func TestEraserRegion(t *testing.T) {
	cur := stroke.Point{X: 30, Y: 10}
	prev := stroke.Point{X: 10, Y: 10}
	circle := EraserRegion(cur, nil, 20)
	swept := EraserRegion(cur, &prev, 20)
	if Area([][]stroke.Point{swept}) <= Area([][]stroke.Point{circle}) {
		t.Error("swept region no larger than the stationary one")
	}
}

func TestBoundsInflateOverlaps(t *testing.T) {
	a := Bounds([]stroke.Point{{X: 0, Y: 0}, {X: 10, Y: 5}})
	b := Bounds([]stroke.Point{{X: 11, Y: 0}, {X: 20, Y: 5}})
	if a.Overlaps(b) {
		t.Error("disjoint boxes reported overlapping")
	}
	if !a.Inflate(1).Overlaps(b) {
		t.Error("inflated boxes should touch")
	}
}

func TestContains(t *testing.T) {
	donut := [][]stroke.Point{
		Circle(stroke.Point{}, 50),
		reversed(Circle(stroke.Point{}, 10)),
	}
	tests := []struct {
		p    stroke.Point
		want bool
	}{
		{stroke.Point{X: 30, Y: 0}, true},
		{stroke.Point{X: 0, Y: 0}, false},
		{stroke.Point{X: 60, Y: 0}, false},
	}
	for _, tt := range tests {
		if got := Contains(donut, tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestPolylineIntersects(t *testing.T) {
	axis := []stroke.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}
	tests := []struct {
		name string
		clip []stroke.Point
		want bool
	}{
		{"too far", Circle(stroke.Point{X: 50, Y: 30}, 10), false},
		{"within reach", Circle(stroke.Point{X: 50, Y: 15}, 10), true},
		{"axis inside clip", Circle(stroke.Point{X: 50, Y: 0}, 200), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PolylineIntersects(axis, 20, tt.clip); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOutlineStraight(t *testing.T) {
	loops := Outline([]stroke.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}, 20)
	if len(loops) != 1 {
		t.Fatalf("got %d loops, want 1", len(loops))
	}
	near(t, Area(loops), 100*20+math.Pi*100, 0.02)
	b := LoopsBounds(loops)
	if b.MinX > -9.5 || b.MaxX < 109.5 {
		t.Errorf("caps missing from bounds %+v", b)
	}
}

func TestOutlineMergesDuplicatePoints(t *testing.T) {
	loops := Outline([]stroke.Point{
		{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 50, Y: 0}, {X: 50, Y: 0},
	}, 10)
	if len(loops) != 1 {
		t.Fatalf("got %d loops, want 1", len(loops))
	}
	near(t, Area(loops), 50*10+math.Pi*25, 0.02)
}

func TestOutlineSelfCrossing(t *testing.T) {
	// An X figure: both diagonals of a square. The crossing must merge
	// into a single connected region.
	loops := Outline([]stroke.Point{
		{X: 0, Y: 0}, {X: 100, Y: 100}, {X: 100, Y: 0}, {X: 0, Y: 100},
	}, 10)
	got := Area(loops)
	single := 10 * math.Hypot(100, 100)
	if got < 2*single {
		t.Errorf("crossing region area %.1f implausibly small", got)
	}
	for _, p := range []stroke.Point{{X: 50, Y: 50}, {X: 2, Y: 2}, {X: 98, Y: 2}} {
		if !Contains(loops, p) {
			t.Errorf("point %v should be covered", p)
		}
	}
}
