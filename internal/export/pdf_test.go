package export

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"InkReader/internal/stroke"
)

func TestAnnotatedPDFWritesFile(t *testing.T) {
	raster := image.NewRGBA(image.Rect(0, 0, 100, 150))
	for y := 0; y < 150; y++ {
		for x := 0; x < 100; x++ {
			raster.Set(x, y, color.White)
		}
	}

	line := stroke.New(0, stroke.DefaultColor, 10)
	line.Append(stroke.Point{X: 10, Y: 10})
	line.Append(stroke.Point{X: 80, Y: 120})

	blob := stroke.New(1, stroke.Color{R: 0, G: 200, B: 255, A: 120}, 10)
	blob.Geom = stroke.Shape{{
		{X: 10, Y: 10}, {X: 60, Y: 10}, {X: 60, Y: 60}, {X: 10, Y: 60},
	}}

	pages := []Page{
		{Image: raster, WPts: 40, HPts: 60, Strokes: []*stroke.Stroke{line}},
		{Image: nil, WPts: 40, HPts: 60, Strokes: []*stroke.Stroke{blob}},
	}

	path := filepath.Join(t.TempDir(), "out.pdf")
	if err := AnnotatedPDF(path, pages, 2.5); err != nil {
		t.Fatalf("AnnotatedPDF: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF header")
	}
	if len(data) < 500 {
		t.Errorf("output suspiciously small: %d bytes", len(data))
	}
}

func TestAnnotatedPDFRejectsBadScale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	if err := AnnotatedPDF(path, nil, 0); err == nil {
		t.Fatal("want error for zero scale")
	}
}
