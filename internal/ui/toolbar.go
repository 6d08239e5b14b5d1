package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"InkReader/internal/annotate"
	"InkReader/internal/stroke"
)

// Highlighter palette. Partial alpha keeps the text underneath
// readable.
var palette = []stroke.Color{
	{R: 255, G: 255, B: 0, A: 100},
	{R: 0, G: 220, B: 80, A: 100},
	{R: 255, G: 105, B: 180, A: 100},
	{R: 0, G: 150, B: 255, A: 100},
}

// --- Custom widget for color swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Color    stroke.Color
	OnTapped func(stroke.Color)
}

func newColorSwatch(c stroke.Color, tapped func(stroke.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(color.NRGBA{R: s.Color.R, G: s.Color.G, B: s.Color.B, A: 255})
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// toolbarActions are the shell hooks the toolbar drives.
type toolbarActions struct {
	rotate func()
	export func()
	split  func()
	status func(string)
}

// --- The main toolbar ---
func newToolbar(v *Viewer, s *Session, actions toolbarActions) fyne.CanvasObject {
	eng := s.Engine()
	setMode := func(m annotate.Mode, label string) {
		eng.SetMode(m)
		v.Coordinator().SetAnnotationEnabled(m != annotate.ModeDisabled)
		actions.status(label)
	}

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() {
			setMode(annotate.ModeDraw, "Highlighter")
		}),
		widget.NewToolbarAction(theme.ContentClearIcon(), func() {
			setMode(annotate.ModeErase, "Eraser")
		}),
		widget.NewToolbarAction(theme.CancelIcon(), func() {
			setMode(annotate.ModeDisabled, "Reading")
		}),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), func() {
			if !eng.Undo() {
				actions.status("Nothing to undo")
			}
		}),
		widget.NewToolbarAction(theme.DeleteIcon(), func() {
			eng.Clear()
		}),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), actions.rotate),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), actions.export),
		widget.NewToolbarAction(theme.ViewRestoreIcon(), actions.split),
	)

	// --- Color palette ---
	colorBox := container.NewHBox()
	for _, c := range palette {
		colorBox.Add(newColorSwatch(c, func(c stroke.Color) {
			eng.SetBrushColor(c)
		}))
	}

	// --- Brush width slider ---
	widthSlider := widget.NewSlider(annotate.MinBrushWidth, annotate.MaxBrushWidth)
	widthSlider.SetValue(eng.BrushWidth())
	widthSlider.OnChanged = func(val float64) {
		eng.AdjustBrushWidth(val - eng.BrushWidth())
	}
	// shift+wheel resizes the brush too; keep the slider in step.
	v.Coordinator().OnBrushWidth = func(w float64) {
		widthSlider.SetValue(w)
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), widthSlider)

	// --- Assemble everything ---
	return container.NewHBox(
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		layout.NewSpacer(),
	)
}
