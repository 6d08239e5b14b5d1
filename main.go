package main

import (
	"crypto/sha1"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"InkReader/internal/bridge"
	"InkReader/internal/config"
	"InkReader/internal/stroke"
	"InkReader/internal/ui"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: inkreader <document.pdf>")
		os.Exit(2)
	}
	docPath, err := filepath.Abs(os.Args[1])
	if err != nil {
		log.Fatalf("resolve %s: %v", os.Args[1], err)
	}

	cfg := config.Load(configPath())
	dir := documentDir(cfg.CacheRoot, docPath)

	br, err := bridge.Start(cfg.BridgePort)
	if err != nil {
		log.Printf("main: panel bridge unavailable: %v", err)
		br = nil
	} else {
		defer br.Close()
	}

	req := ui.OpenRequest{
		DocumentPath:   docPath,
		CacheDir:       filepath.Join(dir, "pages"),
		AnnotationPath: filepath.Join(dir, "annotations.json"),
		RotationPath:   filepath.Join(dir, "rotation.json"),
		TOCPath:        filepath.Join(dir, "toc.json"),
		BaseScale:      cfg.BaseScale,
		Workers:        cfg.MaxWorkers,
		BrushWidth:     cfg.BrushWidth,
		BrushColor: stroke.Color{
			R: cfg.BrushColor[0], G: cfg.BrushColor[1],
			B: cfg.BrushColor[2], A: cfg.BrushColor[3],
		},
	}
	if err := ui.RunApp(req, br); err != nil {
		log.Fatalf("open %s: %v", docPath, err)
	}
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "inkreader", "config.toml")
}

// documentDir keys the cache and sidecar directory by the absolute
// document path, so two documents with the same file name never share
// annotations.
func documentDir(root, docPath string) string {
	sum := sha1.Sum([]byte(docPath))
	return filepath.Join(root, fmt.Sprintf("%x", sum[:8]))
}
