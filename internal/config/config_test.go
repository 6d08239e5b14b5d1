package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "nope.toml"))
	want := Default()
	if cfg.BaseScale != want.BaseScale || cfg.MaxWorkers != want.MaxWorkers {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoadPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte(`
base_scale = 3.0
brush_color = [0, 200, 255, 120]
`), 0o644)

	cfg := Load(path)
	if cfg.BaseScale != 3.0 {
		t.Errorf("base_scale %v, want 3.0", cfg.BaseScale)
	}
	if cfg.BrushColor != [4]uint8{0, 200, 255, 120} {
		t.Errorf("brush_color %v", cfg.BrushColor)
	}
	if cfg.MaxWorkers != Default().MaxWorkers {
		t.Errorf("max_workers %v should keep the default", cfg.MaxWorkers)
	}
}

func TestLoadGarbageFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte("base_scale = [what"), 0o644)
	if cfg := Load(path); cfg.BaseScale != Default().BaseScale {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoadRejectsNonPositiveTuning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte("base_scale = -1.0\nmax_workers = 0\n"), 0o644)
	cfg := Load(path)
	if cfg.BaseScale != Default().BaseScale || cfg.MaxWorkers != Default().MaxWorkers {
		t.Errorf("got %+v, want sanitized defaults", cfg)
	}
}
