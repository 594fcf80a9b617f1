package config

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/san-kum/chladni/internal/dynamo"
	"github.com/san-kum/chladni/internal/plate"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Shape != plate.Square {
		t.Errorf("expected square, got %s", cfg.Shape)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Particles <= 0 {
		t.Error("particles should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestPlateAspect(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shape = plate.RectangleWide
	if got := cfg.PlateAspect(); got != (plate.Aspect{X: 2, Y: 1}) {
		t.Errorf("expected shape default 2x1, got %+v", got)
	}

	cfg.Aspect = AspectConfig{X: 3, Y: 0.5}
	if got := cfg.PlateAspect(); got != (plate.Aspect{X: 3, Y: 0.5}) {
		t.Errorf("expected explicit aspect, got %+v", got)
	}
}

func TestPlateAspectPerAxisFallback(t *testing.T) {
	tests := []struct {
		name   string
		shape  plate.Shape
		aspect AspectConfig
		want   plate.Aspect
	}{
		{"only x set", plate.Square, AspectConfig{X: 3}, plate.Aspect{X: 3, Y: 1}},
		{"only y set", plate.Square, AspectConfig{Y: 0.5}, plate.Aspect{X: 1, Y: 0.5}},
		{"only x on tall", plate.RectangleTall, AspectConfig{X: 0.25}, plate.Aspect{X: 0.25, Y: 2}},
		{"only y on wide", plate.RectangleWide, AspectConfig{Y: 3}, plate.Aspect{X: 2, Y: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Shape = tt.shape
			cfg.Aspect = tt.aspect
			if got := cfg.PlateAspect(); got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plate.yaml")
	data := []byte("shape: hexagon\nmode:\n  n: 2\n  m: 3\n  a: 1\n  b: 0.5\nk_force: 0.4\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Shape != plate.Hexagon {
		t.Errorf("expected hexagon, got %s", cfg.Shape)
	}
	if cfg.Mode.M != 3 || cfg.Mode.B != 0.5 {
		t.Errorf("mode not loaded: %+v", cfg.Mode)
	}
	if cfg.KForce != 0.4 {
		t.Errorf("expected k_force 0.4, got %v", cfg.KForce)
	}
	if cfg.Dt != DefaultDt {
		t.Errorf("expected default dt, got %v", cfg.Dt)
	}
}

func TestLoadRejectsUnknownShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plate.yaml")
	if err := os.WriteFile(path, []byte("shape: triangle\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown shape")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := DefaultConfig()
	cfg.Shape = plate.Circle
	cfg.Seed = 99
	cfg.Workers = 4

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"bad shape", func(c *Config) { c.Shape = plate.Shape(9) }, dynamo.ErrInvalidShape},
		{"negative particles", func(c *Config) { c.Particles = -1 }, dynamo.ErrInvalidConfig},
		{"negative dt", func(c *Config) { c.Dt = -0.1 }, dynamo.ErrInvalidConfig},
		{"negative aspect", func(c *Config) { c.Aspect = AspectConfig{X: -1, Y: 1} }, dynamo.ErrInvalidConfig},
		{"negative steps", func(c *Config) { c.Steps = -5 }, dynamo.ErrInvalidConfig},
		{"empty pattern", func(c *Config) { c.Pattern.Width = 0 }, dynamo.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestToSimConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shape = plate.RectangleTall
	sc := cfg.ToSimConfig()

	if sc.Aspect != (plate.Aspect{X: 1, Y: 2}) {
		t.Errorf("expected tall aspect, got %+v", sc.Aspect)
	}
	if sc.Params.KForce != cfg.KForce || sc.Seed != cfg.Seed {
		t.Error("params not carried over")
	}
	if err := sc.Validate(); err != nil {
		t.Errorf("sim config invalid: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("rings")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Shape != plate.Circle {
		t.Errorf("expected circle, got %s", cfg.Shape)
	}
	if cfg.Dt != DefaultDt {
		t.Error("preset should inherit defaults")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	if !sort.StringsAreSorted(names) {
		t.Error("presets should be sorted")
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}
