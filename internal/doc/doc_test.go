package doc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tsawler/tabula/text"
)

func TestTOCSidecarRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.toc")
	want := []TOCEntry{
		{Level: 1, Title: "Introduction", Page: 1},
		{Level: 2, Title: "History", Page: 3},
		{Level: 1, Title: "Methods", Page: 7},
	}
	if !SaveTOC(path, want) {
		t.Fatal("SaveTOC failed")
	}
	if diff := cmp.Diff(want, LoadTOC(path)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestTOCEncodesAsArrays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.toc")
	SaveTOC(path, []TOCEntry{{Level: 1, Title: "A", Page: 2}})
	data, _ := os.ReadFile(path)
	want := "[\n  [\n    1,\n    \"A\",\n    2\n  ]\n]"
	if string(data) != want {
		t.Errorf("sidecar encoding:\n%s\nwant:\n%s", data, want)
	}
}

func TestLoadTOCMissingOrGarbage(t *testing.T) {
	dir := t.TempDir()
	if got := LoadTOC(filepath.Join(dir, "none.toc")); got != nil {
		t.Error("missing sidecar should load nil")
	}
	bad := filepath.Join(dir, "bad.toc")
	os.WriteFile(bad, []byte("[[1,2,3]]"), 0o644)
	if got := LoadTOC(bad); got != nil {
		t.Error("type-mismatched sidecar should load nil")
	}
}

func TestMergeTOCSavedWins(t *testing.T) {
	saved := []TOCEntry{{Level: 1, Title: "Edited", Page: 5}}
	extracted := []TOCEntry{{Level: 1, Title: "Original", Page: 1}}
	if got := MergeTOC(saved, extracted); got[0].Title != "Edited" {
		t.Error("saved sidecar should win")
	}
	if got := MergeTOC(nil, extracted); got[0].Title != "Original" {
		t.Error("extraction should fill an empty sidecar")
	}
}

func TestRotationsRoundTripOmitsZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.rotation")
	SaveRotations(path, Rotations{0: 90, 3: 0, 7: 450})

	got := LoadRotations(path)
	want := Rotations{0: 90, 7: 90}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	data, _ := os.ReadFile(path)
	if string(data) == "" || len(data) > 60 {
		t.Errorf("sidecar unexpectedly large: %s", data)
	}
}

func TestLoadRotationsSkipsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.rotation")
	os.WriteFile(path, []byte(`{"2":180,"x":90,"5":45}`), 0o644)
	got := LoadRotations(path)
	if diff := cmp.Diff(Rotations{2: 180}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleRegion(t *testing.T) {
	// A 100x200pt page; PDF y grows upward. Two lines near the top plus
	// one fragment far below the selection.
	frags := []text.TextFragment{
		{Text: "world", X: 40, Y: 180, Width: 20, Height: 10},
		{Text: "hello", X: 10, Y: 180, Width: 20, Height: 10},
		{Text: "again", X: 10, Y: 160, Width: 20, Height: 10},
		{Text: "footer", X: 10, Y: 10, Width: 20, Height: 10},
	}
	got := assembleRegion(frags, 200, RectPts{MinX: 0, MinY: 0, MaxX: 100, MaxY: 60})
	want := "hello world\nagain"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAssembleRegionExcludesOutside(t *testing.T) {
	frags := []text.TextFragment{
		{Text: "in", X: 10, Y: 180, Width: 10, Height: 10},
		{Text: "right-of", X: 90, Y: 180, Width: 10, Height: 10},
		{Text: "  ", X: 12, Y: 180, Width: 4, Height: 10},
	}
	got := assembleRegion(frags, 200, RectPts{MinX: 0, MinY: 0, MaxX: 50, MaxY: 40})
	if got != "in" {
		t.Errorf("got %q, want %q", got, "in")
	}
}
