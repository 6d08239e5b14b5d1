package stroke

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
)

// Sidecar file format. Field names match the annotation files written by
// earlier releases: a stroke carries either "points" or "path_data",
// never both.
type strokeJSON struct {
	ID       string           `json:"id"`
	Points   [][2]float64     `json:"points,omitempty"`
	PathData [][][2]float64   `json:"path_data,omitempty"`
	Color    [4]uint8         `json:"color"`
	Width    float64          `json:"width"`
	Page     int              `json:"page_num"`
}

type fileJSON struct {
	Strokes []strokeJSON `json:"strokes"`
}

// Save writes the full stroke set to path, creating parent directories as
// needed. Failures are logged and swallowed: losing one write must never
// take the session down, and the in-memory set stays authoritative.
func Save(path string, strokes []*Stroke) bool {
	if path == "" {
		return false
	}
	out := fileJSON{Strokes: make([]strokeJSON, 0, len(strokes))}
	for _, s := range strokes {
		out.Strokes = append(out.Strokes, encodeStroke(s))
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Printf("Save: marshal annotations: %v", err)
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("Save: create annotation dir: %v", err)
		return false
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("Save: write %s: %v", path, err)
		return false
	}
	return true
}

// Load reads a stroke set from path. A missing or unparsable file yields
// an empty set; strokes with malformed geometry are dropped individually.
func Load(path string) []*Stroke {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Load: read %s: %v", path, err)
		}
		return nil
	}
	var in fileJSON
	if err := json.Unmarshal(data, &in); err != nil {
		log.Printf("Load: parse %s: %v", path, err)
		return nil
	}
	strokes := make([]*Stroke, 0, len(in.Strokes))
	for _, sj := range in.Strokes {
		s := decodeStroke(sj)
		if s == nil || !s.Valid() {
			log.Printf("Load: dropping malformed stroke %q", sj.ID)
			continue
		}
		strokes = append(strokes, s)
	}
	return strokes
}

func encodeStroke(s *Stroke) strokeJSON {
	sj := strokeJSON{
		ID:    s.ID,
		Color: [4]uint8{s.Color.R, s.Color.G, s.Color.B, s.Color.A},
		Width: s.Width,
		Page:  s.Page,
	}
	switch g := s.Geom.(type) {
	case Polyline:
		sj.Points = make([][2]float64, len(g))
		for i, p := range g {
			sj.Points[i] = [2]float64{p.X, p.Y}
		}
	case Shape:
		sj.PathData = make([][][2]float64, len(g))
		for i, loop := range g {
			sj.PathData[i] = make([][2]float64, len(loop))
			for j, p := range loop {
				sj.PathData[i][j] = [2]float64{p.X, p.Y}
			}
		}
	}
	return sj
}

func decodeStroke(sj strokeJSON) *Stroke {
	if sj.ID == "" {
		return nil
	}
	s := &Stroke{
		ID:    sj.ID,
		Page:  sj.Page,
		Color: Color{R: sj.Color[0], G: sj.Color[1], B: sj.Color[2], A: sj.Color[3]},
		Width: sj.Width,
	}
	// path_data wins when both are present: points become stale the moment
	// a stroke is erased into a shape.
	if len(sj.PathData) > 0 {
		loops := make(Shape, 0, len(sj.PathData))
		for _, lj := range sj.PathData {
			loop := make([]Point, len(lj))
			for i, p := range lj {
				loop[i] = Point{X: p[0], Y: p[1]}
			}
			loops = append(loops, loop)
		}
		s.Geom = loops
		return s
	}
	pts := make(Polyline, len(sj.Points))
	for i, p := range sj.Points {
		pts[i] = Point{X: p[0], Y: p[1]}
	}
	s.Geom = pts
	return s
}
