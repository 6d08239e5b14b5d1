package annotate

import (
	"image"

	"github.com/gogpu/gg"

	"InkReader/internal/stroke"
)

// overlayOpacity is applied on top of each stroke's own alpha, so the
// highlighter never fully hides the page underneath.
const overlayOpacity = 0.5

// RenderOverlay rasterizes one page's strokes into a transparent
// w×h layer. Page-local stroke coordinates are mapped to pixels by
// scale. live, when non-nil, is the in-progress polyline painted on top.
func RenderOverlay(w, h int, scale float64, strokes []*stroke.Stroke, live *stroke.Stroke) image.Image {
	ctx := gg.NewContext(w, h)
	ctx.Scale(scale, scale)
	for _, s := range strokes {
		paintStroke(ctx, s)
	}
	if live != nil {
		paintStroke(ctx, live)
	}
	return ctx.Image()
}

func paintStroke(ctx *gg.Context, s *stroke.Stroke) {
	ctx.SetRGBA(
		float64(s.Color.R)/255,
		float64(s.Color.G)/255,
		float64(s.Color.B)/255,
		float64(s.Color.A)/255*overlayOpacity,
	)
	if pts := s.Points(); pts != nil {
		if len(pts) < 2 {
			return
		}
		ctx.MoveTo(pts[0].X, pts[0].Y)
		for _, p := range pts[1:] {
			ctx.LineTo(p.X, p.Y)
		}
		ctx.SetStroke(gg.DefaultStroke().
			WithWidth(s.Width).
			WithCap(gg.LineCapRound).
			WithJoin(gg.LineJoinRound))
		ctx.Stroke()
		return
	}
	loops := s.Loops()
	if len(loops) == 0 {
		return
	}
	for _, loop := range loops {
		if len(loop) < 3 {
			continue
		}
		ctx.NewSubPath()
		ctx.MoveTo(loop[0].X, loop[0].Y)
		for _, p := range loop[1:] {
			ctx.LineTo(p.X, p.Y)
		}
		ctx.ClosePath()
	}
	ctx.SetFillRule(gg.FillRuleNonZero)
	ctx.Fill()
}
