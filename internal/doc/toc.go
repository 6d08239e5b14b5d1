package doc

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// TOCEntry is one outline row. The sidecar encodes each entry as the
// array [level, title, pageNumber].
type TOCEntry struct {
	Level int
	Title string
	Page  int
}

func (e TOCEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]any{e.Level, e.Title, e.Page})
}

func (e *TOCEntry) UnmarshalJSON(data []byte) error {
	var raw [3]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &e.Level); err != nil {
		return fmt.Errorf("toc level: %w", err)
	}
	if err := json.Unmarshal(raw[1], &e.Title); err != nil {
		return fmt.Errorf("toc title: %w", err)
	}
	if err := json.Unmarshal(raw[2], &e.Page); err != nil {
		return fmt.Errorf("toc page: %w", err)
	}
	return nil
}

// ExtractTOC reads the embedded outline. Documents without one yield an
// empty list, not an error.
func (f *File) ExtractTOC() []TOCEntry {
	outlines, err := f.doc.ToC()
	if err != nil {
		log.Printf("ExtractTOC: %s: %v", f.path, err)
		return nil
	}
	entries := make([]TOCEntry, 0, len(outlines))
	for _, o := range outlines {
		entries = append(entries, TOCEntry{Level: o.Level, Title: o.Title, Page: o.Page})
	}
	return entries
}

// LoadTOC reads the TOC sidecar; missing or unparsable means none.
func LoadTOC(path string) []TOCEntry {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var entries []TOCEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("LoadTOC: parse %s: %v", path, err)
		return nil
	}
	return entries
}

// SaveTOC writes the sidecar, best effort.
func SaveTOC(path string, entries []TOCEntry) bool {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		log.Printf("SaveTOC: marshal: %v", err)
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("SaveTOC: create dir: %v", err)
		return false
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("SaveTOC: write %s: %v", path, err)
		return false
	}
	return true
}

// MergeTOC combines a saved sidecar with a freshly extracted outline.
// Anything the user saved wins outright; extraction only fills the gap
// when no sidecar exists yet.
func MergeTOC(saved, extracted []TOCEntry) []TOCEntry {
	if len(saved) > 0 {
		return saved
	}
	return extracted
}
