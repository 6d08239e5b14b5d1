//go:build ocr

// Package ocr recognizes text in rendered page regions, the fallback
// for scan-only pages that carry no extractable text layer. It wraps
// Tesseract via gosseract and needs the system tesseract libraries;
// build with -tags ocr to enable it.
package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Available reports whether OCR support was compiled in.
func Available() bool { return true }

// ImageText recognizes the text in a raster, typically a cropped page
// region.
func ImageText(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode region: %w", err)
	}
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("set region image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize region: %w", err)
	}
	return strings.TrimSpace(text), nil
}
