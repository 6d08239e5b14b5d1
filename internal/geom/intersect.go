package geom

import (
	"InkReader/internal/stroke"
)

// ShapeIntersects reports whether a loop set's area overlaps the clip
// region: boundaries cross, or either fully contains the other.
func ShapeIntersects(loops [][]stroke.Point, clip []stroke.Point) bool {
	for _, loop := range loops {
		for i := 0; i < len(loop); i++ {
			a1, a2 := loop[i], loop[(i+1)%len(loop)]
			for j := 0; j < len(clip); j++ {
				if _, _, ok := segIntersect(a1, a2, clip[j], clip[(j+1)%len(clip)]); ok {
					return true
				}
			}
		}
	}
	if len(clip) > 0 && Contains(loops, clip[0]) {
		return true
	}
	for _, loop := range loops {
		if len(loop) > 0 && Contains([][]stroke.Point{clip}, loop[0]) {
			return true
		}
	}
	return false
}

// PolylineIntersects reports whether the area painted by a polyline at
// the given width touches the clip region. The painted area reaches
// width/2 from the polyline axis, so it touches whenever the axis comes
// that close to the clip boundary, or starts inside the clip outright.
func PolylineIntersects(pts []stroke.Point, width float64, clip []stroke.Point) bool {
	r := width / 2
	for i := 0; i+1 < len(pts); i++ {
		for j := 0; j < len(clip); j++ {
			if segSegDistance(pts[i], pts[i+1], clip[j], clip[(j+1)%len(clip)]) <= r {
				return true
			}
		}
	}
	return len(pts) > 0 && Contains([][]stroke.Point{clip}, pts[0])
}

// StrokeIntersects dispatches on the stroke's current representation.
func StrokeIntersects(s *stroke.Stroke, clip []stroke.Point) bool {
	if pts := s.Points(); pts != nil {
		return PolylineIntersects(pts, s.Width, clip)
	}
	return ShapeIntersects(s.Loops(), clip)
}
