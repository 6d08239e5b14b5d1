package doc

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

// Rotations maps page index to clockwise degrees. The sidecar uses
// string keys and omits unrotated pages.
type Rotations map[int]int

// LoadRotations reads the rotation sidecar. Missing file or garbage
// yields an empty map; malformed keys are skipped.
func LoadRotations(path string) Rotations {
	rot := Rotations{}
	data, err := os.ReadFile(path)
	if err != nil {
		return rot
	}
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("LoadRotations: parse %s: %v", path, err)
		return rot
	}
	for k, v := range raw {
		page, err := strconv.Atoi(k)
		if err != nil || v%90 != 0 {
			log.Printf("LoadRotations: skipping entry %q=%d", k, v)
			continue
		}
		if v = ((v % 360) + 360) % 360; v != 0 {
			rot[page] = v
		}
	}
	return rot
}

// SaveRotations writes the sidecar, dropping zero entries.
func SaveRotations(path string, rot Rotations) bool {
	raw := map[string]int{}
	for page, deg := range rot {
		if deg = ((deg % 360) + 360) % 360; deg != 0 {
			raw[strconv.Itoa(page)] = deg
		}
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		log.Printf("SaveRotations: marshal: %v", err)
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("SaveRotations: create dir: %v", err)
		return false
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("SaveRotations: write %s: %v", path, err)
		return false
	}
	return true
}
