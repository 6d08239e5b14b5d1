// Package config loads the reader's TOML configuration file. Every
// field has a working default; a missing or broken file never stops
// startup.
package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the user-tunable runtime configuration.
type Config struct {
	// CacheRoot holds per-document cache directories and sidecars.
	CacheRoot string `toml:"cache_root"`
	// BaseScale is the PDF-point to raster-pixel factor pages render at.
	BaseScale float64 `toml:"base_scale"`
	// MaxWorkers caps concurrent page renders.
	MaxWorkers int `toml:"max_workers"`
	// BrushWidth is the starting brush size.
	BrushWidth float64 `toml:"brush_width"`
	// BrushColor is the starting highlighter color as r,g,b,a bytes.
	BrushColor [4]uint8 `toml:"brush_color"`
	// BridgePort is the panel event bridge port; 0 picks a free one.
	BridgePort int `toml:"bridge_port"`
}

// Default returns the built-in configuration.
func Default() Config {
	cacheRoot := "inkreader-cache"
	if dir, err := os.UserCacheDir(); err == nil {
		cacheRoot = filepath.Join(dir, "inkreader")
	}
	return Config{
		CacheRoot:  cacheRoot,
		BaseScale:  2.5,
		MaxWorkers: 3,
		BrushWidth: 25,
		BrushColor: [4]uint8{255, 255, 0, 100},
		BridgePort: 0,
	}
}

// Load reads path over the defaults. Fields absent from the file keep
// their default; an unreadable or unparsable file yields pure defaults.
func Load(path string) Config {
	cfg := Default()
	if path == "" {
		return cfg
	}
	if _, err := os.Stat(path); err != nil {
		return cfg
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		log.Printf("Load: config %s: %v, using defaults", path, err)
		return Default()
	}
	if cfg.BaseScale <= 0 {
		cfg.BaseScale = Default().BaseScale
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = Default().MaxWorkers
	}
	return cfg
}
