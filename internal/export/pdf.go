// Package export writes the annotated document out as a new PDF: each
// page raster with its strokes painted on top at overlay transparency.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/jung-kurt/gofpdf"

	"InkReader/internal/stroke"
)

// Page is one page of an export job. Image may be nil when the page was
// never rendered; the page is then emitted blank with its annotations.
type Page struct {
	Image   image.Image
	WPts    float64
	HPts    float64
	Strokes []*stroke.Stroke
}

// exportOpacity matches the on-screen overlay so the file looks like
// the reader did.
const exportOpacity = 0.5

// AnnotatedPDF writes pages to path. scale is the point-to-pixel factor
// the rasters and strokes were produced at; coordinates divide by it
// back into page points.
func AnnotatedPDF(path string, pages []Page, scale float64) error {
	if scale <= 0 {
		return fmt.Errorf("export scale %v out of range", scale)
	}
	p := gofpdf.New("P", "pt", "A4", "")
	p.SetLineCapStyle("round")
	p.SetLineJoinStyle("round")

	for i, page := range pages {
		p.AddPageFormat("P", gofpdf.SizeType{Wd: page.WPts, Ht: page.HPts})

		if page.Image != nil {
			var buf bytes.Buffer
			if err := png.Encode(&buf, page.Image); err != nil {
				return fmt.Errorf("encode page %d raster: %w", i, err)
			}
			name := fmt.Sprintf("page-%d", i)
			opts := gofpdf.ImageOptions{ImageType: "PNG"}
			p.RegisterImageOptionsReader(name, opts, &buf)
			p.ImageOptions(name, 0, 0, page.WPts, page.HPts, false, opts, 0, "")
		}

		for _, s := range page.Strokes {
			drawStroke(p, s, scale)
		}
		p.SetAlpha(1, "Normal")
	}
	if err := p.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func drawStroke(p *gofpdf.Fpdf, s *stroke.Stroke, scale float64) {
	p.SetAlpha(float64(s.Color.A)/255*exportOpacity, "Normal")

	if loops := s.Loops(); loops != nil {
		p.SetFillColor(int(s.Color.R), int(s.Color.G), int(s.Color.B))
		for _, loop := range loops {
			if len(loop) < 3 {
				continue
			}
			p.MoveTo(loop[0].X/scale, loop[0].Y/scale)
			for _, pt := range loop[1:] {
				p.LineTo(pt.X/scale, pt.Y/scale)
			}
			p.ClosePath()
		}
		// PDF fills with the non-zero rule, so reverse-wound hole
		// loops subtract on their own.
		p.DrawPath("f")
		return
	}

	pts := s.Points()
	if len(pts) < 2 {
		return
	}
	p.SetDrawColor(int(s.Color.R), int(s.Color.G), int(s.Color.B))
	p.SetLineWidth(s.Width / scale)
	for i := 1; i < len(pts); i++ {
		p.Line(
			pts[i-1].X/scale, pts[i-1].Y/scale,
			pts[i].X/scale, pts[i].Y/scale,
		)
	}
}
