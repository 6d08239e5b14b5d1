package stroke

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "doc.annotations")

	s := New(0, DefaultColor, 20)
	s.Append(Point{X: 10, Y: 10})
	s.Append(Point{X: 50, Y: 10})
	s.Append(Point{X: 50, Y: 50})

	if !Save(path, []*Stroke{s}) {
		t.Fatal("Save failed")
	}
	got := Load(path)
	if len(got) != 1 {
		t.Fatalf("loaded %d strokes, want 1", len(got))
	}
	if diff := cmp.Diff(s, got[0]); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLoadShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.annotations")

	s := &Stroke{
		ID: "abc", Page: 2, Color: Color{R: 10, G: 20, B: 30, A: 40}, Width: 12,
		Geom: Shape{
			{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}},
			{{X: 2, Y: 2}, {X: 2, Y: 4}, {X: 4, Y: 4}},
		},
	}
	Save(path, []*Stroke{s})
	got := Load(path)
	if len(got) != 1 {
		t.Fatalf("loaded %d strokes, want 1", len(got))
	}
	if diff := cmp.Diff(s, got[0]); diff != "" {
		t.Errorf("shape round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if got := Load(filepath.Join(t.TempDir(), "nope.annotations")); len(got) != 0 {
		t.Errorf("missing file should load empty, got %d strokes", len(got))
	}
}

func TestLoadGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.annotations")
	os.WriteFile(path, []byte("{not json"), 0o644)
	if got := Load(path); len(got) != 0 {
		t.Errorf("garbage file should load empty, got %d strokes", len(got))
	}
}

func TestLoadDropsMalformedStrokes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.annotations")
	data := `{"strokes":[
		{"id":"good","points":[[0,0],[5,5]],"color":[255,255,0,100],"width":25,"page_num":0},
		{"id":"short","points":[[1,1]],"color":[255,255,0,100],"width":25,"page_num":0},
		{"id":"","points":[[0,0],[5,5]],"color":[255,255,0,100],"width":25,"page_num":0}
	]}`
	os.WriteFile(path, []byte(data), 0o644)
	got := Load(path)
	if len(got) != 1 || got[0].ID != "good" {
		t.Errorf("want only the well-formed stroke, got %d", len(got))
	}
}

func TestPathDataWinsOverPoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.annotations")
	data := `{"strokes":[{"id":"x",
		"points":[[0,0],[5,5]],
		"path_data":[[[0,0],[10,0],[10,10]]],
		"color":[255,255,0,100],"width":25,"page_num":1}]}`
	os.WriteFile(path, []byte(data), 0o644)
	got := Load(path)
	if len(got) != 1 {
		t.Fatalf("loaded %d strokes, want 1", len(got))
	}
	if got[0].Loops() == nil || got[0].Points() != nil {
		t.Error("path_data should take precedence over points")
	}
}
