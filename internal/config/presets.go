package config

import "sort"

var Presets = map[string]*Config{
	"break": {
		Layout: LayoutRack, Balls: 16, Table: TableConfig{Width: 10, Height: 20},
		Dt: DefaultDt, Duration: 15, MaxPlacementAttempts: DefaultAttempts,
		RecordEvery: 1, ValidateState: true,
		Velocities: []VelocityConfig{{Ball: 0, VX: 0.3, VZ: -30}},
	},
	"scatter": {
		Layout: LayoutRandom, Balls: 16, Table: TableConfig{Width: 10, Height: 20},
		Dt: DefaultDt, Duration: 20, Seed: 42, Speed: 8,
		MaxPlacementAttempts: DefaultAttempts, RecordEvery: 1, ValidateState: true,
	},
	"crowded": {
		Layout: LayoutRandom, Balls: 40, Table: TableConfig{Width: 12, Height: 24},
		Dt: DefaultDt, Duration: 20, Seed: 7, Speed: 5,
		MaxPlacementAttempts: DefaultAttempts, RecordEvery: 2, ValidateState: true,
	},
	"single": {
		Layout: LayoutRandom, Balls: 1, Table: TableConfig{Width: 10, Height: 20},
		Dt: DefaultDt, Duration: 30, Seed: 1,
		MaxPlacementAttempts: DefaultAttempts, RecordEvery: 1, ValidateState: true,
		Velocities: []VelocityConfig{{Ball: 0, VX: 6, VZ: 0}},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
