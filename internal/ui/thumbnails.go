package ui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"InkReader/internal/render"
)

const thumbWidth = 120

// newThumbStrip builds the page thumbnail list. Thumbnails are
// downscaled from the session rasters as they arrive; unrendered pages
// show empty slots until then.
func newThumbStrip(s *Session, onTap func(page int)) fyne.CanvasObject {
	thumbs := map[int]image.Image{}

	list := widget.NewList(
		func() int { return s.PageCount() },
		func() fyne.CanvasObject {
			img := canvas.NewImageFromImage(nil)
			img.FillMode = canvas.ImageFillContain
			img.SetMinSize(fyne.NewSize(thumbWidth, thumbWidth*1.4))
			return img
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			img := obj.(*canvas.Image)
			t, ok := thumbs[id]
			if !ok {
				if raster := s.Raster(id); raster != nil {
					t = render.Thumbnail(raster, thumbWidth)
					thumbs[id] = t
				}
			}
			img.Image = t
			img.Refresh()
		},
	)
	list.OnSelected = func(id widget.ListItemID) {
		onTap(id)
		list.UnselectAll()
	}
	s.Listen(func(page int) {
		delete(thumbs, page)
		list.Refresh()
	})
	return list
}
