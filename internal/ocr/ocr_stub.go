//go:build !ocr

// Package ocr recognizes text in rendered page regions, the fallback
// for scan-only pages that carry no extractable text layer.
//
// This is the stub used without the "ocr" build tag; recognition
// reports ErrNotEnabled. Rebuild with -tags ocr (tesseract installed)
// to enable it.
package ocr

import (
	"errors"
	"image"
)

// ErrNotEnabled is returned when OCR support was not compiled in.
var ErrNotEnabled = errors.New("ocr support not enabled; rebuild with -tags ocr")

// Available reports whether OCR support was compiled in.
func Available() bool { return false }

// ImageText always fails in the stub build.
func ImageText(image.Image) (string, error) {
	return "", ErrNotEnabled
}
