package stroke

import "testing"

func TestNewStrokeDefaults(t *testing.T) {
	a := New(3, DefaultColor, 25)
	b := New(3, DefaultColor, 25)
	if a.ID == "" || a.ID == b.ID {
		t.Error("ids must be unique and non-empty")
	}
	if a.Valid() {
		t.Error("empty polyline must not be valid")
	}
	a.Append(Point{X: 1, Y: 1})
	if a.Valid() {
		t.Error("single point must not be valid")
	}
	a.Append(Point{X: 2, Y: 2})
	if !a.Valid() {
		t.Error("two points should be valid")
	}
}

func TestAppendIgnoredOnShape(t *testing.T) {
	s := &Stroke{ID: "x", Geom: Shape{{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}}}
	s.Append(Point{X: 9, Y: 9})
	if s.Points() != nil {
		t.Error("shape stroke must stay a shape")
	}
	if len(s.Loops()) != 1 {
		t.Error("loops lost")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := New(0, DefaultColor, 25)
	s.Append(Point{X: 1, Y: 1})
	s.Append(Point{X: 2, Y: 2})
	c := s.Clone()
	s.Append(Point{X: 3, Y: 3})
	if len(c.Points()) != 2 {
		t.Error("clone shares polyline storage")
	}

	sh := &Stroke{ID: "y", Geom: Shape{{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}}}
	ch := sh.Clone()
	sh.Loops()[0][0].X = 99
	if ch.Loops()[0][0].X == 99 {
		t.Error("clone shares loop storage")
	}
}
