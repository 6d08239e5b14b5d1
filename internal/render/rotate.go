package render

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Rotate returns img turned clockwise by degrees, which must be a
// multiple of 90. Rotation happens on the already-rendered bitmap; the
// source document is never re-rasterized for it.
func Rotate(img image.Image, degrees int) image.Image {
	degrees = ((degrees % 360) + 360) % 360
	if degrees == 0 || img == nil {
		return img
	}
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	var m f64.Aff3
	var dst *image.RGBA
	switch degrees {
	case 90:
		m = f64.Aff3{0, -1, h, 1, 0, 0}
		dst = image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	case 180:
		m = f64.Aff3{-1, 0, w, 0, -1, h}
		dst = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	case 270:
		m = f64.Aff3{0, 1, 0, -1, 0, w}
		dst = image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	default:
		return img
	}
	draw.NearestNeighbor.Transform(dst, m, img, b, draw.Src, nil)
	return dst
}

// Thumbnail downscales a page raster to maxW pixels wide, preserving
// aspect ratio. Rasters already narrower are returned as-is.
func Thumbnail(img image.Image, maxW int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxW || maxW <= 0 {
		return img
	}
	h := b.Dy() * maxW / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxW, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
