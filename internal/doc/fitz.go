// Package doc is the document access layer: MuPDF rasterization via
// go-fitz, positioned text via tabula, and the TOC and rotation
// sidecars.
package doc

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"

	"InkReader/internal/render"
)

// File is the interactive-side document handle, used for metadata, page
// sizing and outline extraction. Render workers never share it; they
// open their own handles through RenderOpener.
type File struct {
	path  string
	scale float64
	doc   *fitz.Document
}

// Open loads the document at path. scale converts PDF points to the
// base raster resolution.
func Open(path string, scale float64) (*File, error) {
	d, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &File{path: path, scale: scale, doc: d}, nil
}

func (f *File) Path() string   { return f.path }
func (f *File) Scale() float64 { return f.scale }

func (f *File) PageCount() int { return f.doc.NumPage() }

// PageSizePts returns a page's media box size in PDF points.
func (f *File) PageSizePts(page int) (w, h float64, err error) {
	b, err := f.doc.Bound(page)
	if err != nil {
		return 0, 0, fmt.Errorf("bound page %d: %w", page, err)
	}
	return float64(b.Dx()), float64(b.Dy()), nil
}

// Title returns the document metadata title, falling back to the file
// name.
func (f *File) Title() string {
	if t := strings.TrimSpace(f.doc.Metadata()["title"]); t != "" {
		return t
	}
	return filepath.Base(f.path)
}

func (f *File) Close() error { return f.doc.Close() }

// handle is a worker-private render handle. fitz documents are not
// thread safe, so each one belongs to exactly one worker.
type handle struct {
	doc   *fitz.Document
	scale float64
}

func (h *handle) PageCount() int { return h.doc.NumPage() }

func (h *handle) RenderPage(page int) (image.Image, error) {
	return h.doc.ImageDPI(page, 72*h.scale)
}

func (h *handle) Close() error { return h.doc.Close() }

// RenderOpener adapts a document path to the pipeline's opener
// contract.
func RenderOpener(path string, scale float64) render.OpenFunc {
	return func() (render.Document, error) {
		d, err := fitz.New(path)
		if err != nil {
			return nil, fmt.Errorf("open render handle for %s: %w", path, err)
		}
		return &handle{doc: d, scale: scale}, nil
	}
}
