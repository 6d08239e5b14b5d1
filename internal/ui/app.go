package ui

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"InkReader/internal/bridge"
	"InkReader/internal/doc"
	"InkReader/internal/geom"
	"InkReader/internal/view"
)

// RunApp opens the document and runs the reader window until it is
// closed. br may be nil when the panel bridge could not start.
func RunApp(req OpenRequest, br *bridge.Server) error {
	session, err := NewSession(req)
	if err != nil {
		return err
	}

	a := app.New()
	win := a.NewWindow(session.Title())
	win.Resize(fyne.NewSize(1200, 850))

	mods := &view.Modifiers{}
	trackModifiers(win, mods)

	status := widget.NewLabel(fmt.Sprintf("%s, %d pages", session.Title(), session.PageCount()))
	setStatus := func(text string) { status.SetText(text) }

	// Selected text goes to the clipboard and out to attached panels.
	onRegion := func(page int, r geom.Rect) {
		text := session.ExtractRegion(page, r)
		if text == "" {
			setStatus("No text in selection")
			return
		}
		win.Clipboard().SetContent(text)
		if br != nil {
			br.PublishText(text)
		}
		setStatus(fmt.Sprintf("Copied %d characters", len(text)))
	}

	primary := NewViewer(session, mods)
	primary.OnRegion = onRegion

	center := container.NewStack(primary)
	var secondary *Viewer
	toggleSplit := func() {
		if secondary != nil {
			secondary = nil
			view.NewLink(primary.Coordinator())
			center.Objects = []fyne.CanvasObject{primary}
			center.Refresh()
			setStatus("Single view")
			return
		}
		secondary = NewViewer(session, mods)
		secondary.OnRegion = onRegion
		view.NewLink(primary.Coordinator(), secondary.Coordinator())
		center.Objects = []fyne.CanvasObject{container.NewHSplit(primary, secondary)}
		center.Refresh()
		secondary.RequestVisible()
		setStatus("Dual view")
	}

	exportAnnotated := func() {
		out := strings.TrimSuffix(req.DocumentPath, filepath.Ext(req.DocumentPath)) +
			".annotated.pdf"
		if err := session.ExportAnnotated(out); err != nil {
			log.Printf("RunApp: export: %v", err)
			setStatus("Export failed")
			return
		}
		setStatus("Exported " + filepath.Base(out))
	}

	toolbar := newToolbar(primary, session, toolbarActions{
		rotate: func() { session.RotatePage(primary.CurrentPage()) },
		export: exportAnnotated,
		split:  toggleSplit,
		status: setStatus,
	})

	sidebar := container.NewAppTabs(
		container.NewTabItem("Contents", newTOCList(session.TOC(), primary.ScrollToPage)),
		container.NewTabItem("Pages", newThumbStrip(session, primary.ScrollToPage)),
	)

	win.SetContent(container.NewBorder(toolbar, status, sidebar, nil, center))
	win.SetCloseIntercept(func() {
		session.Close()
		win.Close()
	})

	primary.RequestVisible()
	win.ShowAndRun()
	return nil
}

// newTOCList builds the outline sidebar; tapping an entry jumps to its
// page.
func newTOCList(entries []doc.TOCEntry, onTap func(page int)) fyne.CanvasObject {
	list := widget.NewList(
		func() int { return len(entries) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			e := entries[id]
			indent := e.Level - 1
			if indent < 0 {
				indent = 0
			}
			obj.(*widget.Label).SetText(strings.Repeat("  ", indent) + e.Title)
		},
	)
	list.OnSelected = func(id widget.ListItemID) {
		// Outline page numbers are 1-based.
		page := entries[id].Page - 1
		if page < 0 {
			page = 0
		}
		onTap(page)
		list.UnselectAll()
	}
	return list
}

// trackModifiers keeps the shared modifier state current from raw key
// events; scroll events carry no modifier mask of their own.
func trackModifiers(win fyne.Window, mods *view.Modifiers) {
	c, ok := win.Canvas().(desktop.Canvas)
	if !ok {
		return
	}
	set := func(name fyne.KeyName, down bool) {
		switch name {
		case desktop.KeyControlLeft, desktop.KeyControlRight:
			mods.Ctrl = down
		case desktop.KeyShiftLeft, desktop.KeyShiftRight:
			mods.Shift = down
		case desktop.KeyAltLeft, desktop.KeyAltRight:
			mods.Alt = down
		}
	}
	c.SetOnKeyDown(func(e *fyne.KeyEvent) { set(e.Name, true) })
	c.SetOnKeyUp(func(e *fyne.KeyEvent) { set(e.Name, false) })
}
