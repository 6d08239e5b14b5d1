package doc

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/tsawler/tabula"
	"github.com/tsawler/tabula/text"
)

// RectPts is a page-local rectangle in PDF points with a top-down y
// axis, matching stroke and viewport coordinates.
type RectPts struct {
	MinX, MinY, MaxX, MaxY float64
}

// lineMergeTol groups fragments whose baselines sit within this many
// points into the same output line.
const lineMergeTol = 2.0

// RegionText extracts the text whose fragments fall inside a page-local
// rectangle, given in base-scale pixels. page is zero-based.
func (f *File) RegionText(page int, minX, minY, maxX, maxY float64) (string, error) {
	_, pageH, err := f.PageSizePts(page)
	if err != nil {
		return "", err
	}
	r := RectPts{
		MinX: minX / f.scale, MinY: minY / f.scale,
		MaxX: maxX / f.scale, MaxY: maxY / f.scale,
	}
	frags, warnings, err := tabula.Open(f.path).Pages(page + 1).Fragments()
	if err != nil {
		return "", fmt.Errorf("fragments page %d: %w", page, err)
	}
	if len(warnings) > 0 {
		log.Printf("RegionText: page %d: %s", page, tabula.FormatWarnings(warnings))
	}
	return assembleRegion(frags, pageH, r), nil
}

// assembleRegion filters fragments to those centered in r and stitches
// them back into reading order. Fragment positions are PDF-native with
// y growing upward; they are flipped against the page height before the
// top-down selection rectangle applies.
func assembleRegion(frags []text.TextFragment, pageH float64, r RectPts) string {
	type placed struct {
		x, y float64
		text string
	}
	var hits []placed
	for _, fr := range frags {
		cx := fr.X + fr.Width/2
		cy := pageH - (fr.Y + fr.Height/2)
		if cx < r.MinX || cx > r.MaxX || cy < r.MinY || cy > r.MaxY {
			continue
		}
		if strings.TrimSpace(fr.Text) == "" {
			continue
		}
		hits = append(hits, placed{x: fr.X, y: cy, text: fr.Text})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if diff := hits[i].y - hits[j].y; diff < -lineMergeTol || diff > lineMergeTol {
			return hits[i].y < hits[j].y
		}
		return hits[i].x < hits[j].x
	})

	var b strings.Builder
	lastY := 0.0
	for i, h := range hits {
		if i > 0 {
			if h.y-lastY > lineMergeTol {
				b.WriteString("\n")
			} else {
				b.WriteString(" ")
			}
		}
		b.WriteString(h.text)
		lastY = h.y
	}
	return b.String()
}
