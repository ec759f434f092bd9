package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultLayout      = "random"
	DefaultBalls       = 16
	DefaultWidth       = 10.0
	DefaultHeight      = 20.0
	DefaultDt          = 1.0 / 60
	DefaultDuration    = 10.0
	DefaultAttempts    = 10000
	DefaultRecordEvery = 1
)

// Layout names understood by the experiment registry.
const (
	LayoutRandom = "random"
	LayoutRack   = "rack"
)

const rackCapacity = 16

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Layout               string           `yaml:"layout"`
	Balls                int              `yaml:"balls"`
	Table                TableConfig      `yaml:"table"`
	Dt                   float64          `yaml:"dt"`
	Duration             float64          `yaml:"duration"`
	Seed                 int64            `yaml:"seed"`
	MaxPlacementAttempts int              `yaml:"max_placement_attempts"`
	Speed                float64          `yaml:"speed"`
	Velocities           []VelocityConfig `yaml:"velocities,omitempty"`
	RecordEvery          int              `yaml:"record_every"`
	ValidateState        bool             `yaml:"validate_state"`
}

type TableConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// VelocityConfig sets one ball's horizontal velocity after layout.
type VelocityConfig struct {
	Ball int     `yaml:"ball"`
	VX   float64 `yaml:"vx"`
	VZ   float64 `yaml:"vz"`
}

func DefaultConfig() *Config {
	return &Config{
		Layout:               DefaultLayout,
		Balls:                DefaultBalls,
		Table:                TableConfig{Width: DefaultWidth, Height: DefaultHeight},
		Dt:                   DefaultDt,
		Duration:             DefaultDuration,
		MaxPlacementAttempts: DefaultAttempts,
		RecordEvery:          DefaultRecordEvery,
		ValidateState:        true,
	}
}

func Load(path string) (*Config, error) {
	return LoadInto(path, DefaultConfig())
}

// LoadInto decodes the file over a copy of base. Keys the file leaves out
// keep base's values; a velocities list replaces base's list.
func LoadInto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Balls < 1:
		return invalid("balls must be at least 1, got %d", c.Balls)
	case c.Table.Width <= 1 || c.Table.Height <= 1:
		return invalid("table must be larger than 1x1, got %gx%g", c.Table.Width, c.Table.Height)
	case c.Dt <= 0:
		return invalid("dt must be positive, got %g", c.Dt)
	case c.Duration <= 0:
		return invalid("duration must be positive, got %g", c.Duration)
	case c.Speed < 0:
		return invalid("speed must not be negative, got %g", c.Speed)
	case c.RecordEvery < 1:
		return invalid("record_every must be at least 1, got %d", c.RecordEvery)
	case c.MaxPlacementAttempts < 0:
		return invalid("max_placement_attempts must not be negative, got %d", c.MaxPlacementAttempts)
	}

	switch c.Layout {
	case LayoutRandom:
	case LayoutRack:
		if c.Balls > rackCapacity {
			return invalid("rack holds at most %d balls, got %d", rackCapacity, c.Balls)
		}
	default:
		return invalid("unknown layout %q", c.Layout)
	}

	for _, v := range c.Velocities {
		if v.Ball < 0 || v.Ball >= c.Balls {
			return invalid("velocity for ball %d, have %d balls", v.Ball, c.Balls)
		}
	}
	return nil
}

// PlacementAttempts is the per-ball cap random layout uses. Zero selects
// DefaultAttempts, so a config never places without a bound.
func (c *Config) PlacementAttempts() int {
	if c.MaxPlacementAttempts <= 0 {
		return DefaultAttempts
	}
	return c.MaxPlacementAttempts
}

func (c *Config) Clone() *Config {
	out := *c
	out.Velocities = append([]VelocityConfig(nil), c.Velocities...)
	return &out
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidConfig)
}
