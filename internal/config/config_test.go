package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Layout != LayoutRandom {
		t.Errorf("expected layout random, got %s", cfg.Layout)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(c *Config)
	}{
		{"no balls", func(c *Config) { c.Balls = 0 }},
		{"narrow table", func(c *Config) { c.Table.Width = 1 }},
		{"short table", func(c *Config) { c.Table.Height = 0.5 }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative duration", func(c *Config) { c.Duration = -1 }},
		{"unknown layout", func(c *Config) { c.Layout = "diamond" }},
		{"oversized rack", func(c *Config) { c.Layout = LayoutRack; c.Balls = 17 }},
		{"velocity out of range", func(c *Config) { c.Velocities = []VelocityConfig{{Ball: 16}} }},
		{"negative velocity index", func(c *Config) { c.Velocities = []VelocityConfig{{Ball: -1}} }},
		{"negative speed", func(c *Config) { c.Speed = -2 }},
		{"zero record interval", func(c *Config) { c.RecordEvery = 0 }},
		{"negative placement attempts", func(c *Config) { c.MaxPlacementAttempts = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "break.yaml")
	want := GetPreset("break")

	if err := Save(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if got.Layout != want.Layout || got.Balls != want.Balls || got.Duration != want.Duration {
		t.Errorf("loaded %+v, want %+v", got, want)
	}
	if len(got.Velocities) != 1 || got.Velocities[0] != want.Velocities[0] {
		t.Errorf("velocities = %v, want %v", got.Velocities, want.Velocities)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("balls: 3\nseed: 9\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Balls != 3 || cfg.Seed != 9 {
		t.Errorf("balls = %d seed = %d, want 3 and 9", cfg.Balls, cfg.Seed)
	}
	if cfg.Layout != LayoutRandom || cfg.Dt != DefaultDt {
		t.Errorf("layout = %q dt = %v, want defaults", cfg.Layout, cfg.Dt)
	}
}

func TestLoadIntoKeepsBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	if err := os.WriteFile(path, []byte("duration: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	base := GetPreset("break")
	cfg, err := LoadInto(path, base)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Duration != 3 {
		t.Errorf("duration = %v, want 3", cfg.Duration)
	}
	if cfg.Layout != LayoutRack || len(cfg.Velocities) != 1 || cfg.Velocities[0].VZ != -30 {
		t.Errorf("preset values lost: layout %q velocities %v", cfg.Layout, cfg.Velocities)
	}
	if base.Duration != 15 {
		t.Errorf("base modified: duration %v", base.Duration)
	}
}

func TestLoadRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("balls: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("break")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Layout != LayoutRack {
		t.Errorf("expected rack layout, got %s", cfg.Layout)
	}

	cfg.Velocities[0].VZ = 1
	if Presets["break"].Velocities[0].VZ == 1 {
		t.Error("GetPreset should return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsAreValid(t *testing.T) {
	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	want := []string{"break", "crowded", "scatter", "single"}
	if len(presets) != len(want) {
		t.Fatalf("presets = %v, want %v", presets, want)
	}
	for i := range want {
		if presets[i] != want[i] {
			t.Errorf("presets[%d] = %s, want %s", i, presets[i], want[i])
		}
	}
}

func TestSet(t *testing.T) {
	cfg := DefaultConfig()
	for name, v := range map[string]float64{
		"balls": 4, "width": 6, "height": 12, "dt": 0.01, "duration": 3, "speed": 2.5, "seed": 99,
	} {
		if err := cfg.Set(name, v); err != nil {
			t.Fatalf("Set(%s): %v", name, err)
		}
	}

	if cfg.Balls != 4 || cfg.Table.Width != 6 || cfg.Table.Height != 12 {
		t.Errorf("shape not applied: %+v", cfg)
	}
	if cfg.Dt != 0.01 || cfg.Duration != 3 || cfg.Speed != 2.5 || cfg.Seed != 99 {
		t.Errorf("run params not applied: %+v", cfg)
	}

	if err := cfg.Set("gravity", 9.8); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
	if got := len(Params()); got != 7 {
		t.Errorf("expected 7 params, got %d", got)
	}
}

func TestPlacementAttempts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPlacementAttempts = 0
	if got := cfg.PlacementAttempts(); got != DefaultAttempts {
		t.Errorf("zero attempts = %d, want %d", got, DefaultAttempts)
	}
	cfg.MaxPlacementAttempts = 25
	if got := cfg.PlacementAttempts(); got != 25 {
		t.Errorf("attempts = %d, want 25", got)
	}
	for name, p := range Presets {
		if p.MaxPlacementAttempts <= 0 {
			t.Errorf("preset %s has no placement bound", name)
		}
	}
}
