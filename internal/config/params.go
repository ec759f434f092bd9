package config

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownParam is returned by Set for a name outside Params.
var ErrUnknownParam = errors.New("config: unknown parameter")

var setters = map[string]func(c *Config, v float64){
	"balls":    func(c *Config, v float64) { c.Balls = int(v) },
	"width":    func(c *Config, v float64) { c.Table.Width = v },
	"height":   func(c *Config, v float64) { c.Table.Height = v },
	"dt":       func(c *Config, v float64) { c.Dt = v },
	"duration": func(c *Config, v float64) { c.Duration = v },
	"speed":    func(c *Config, v float64) { c.Speed = v },
	"seed":     func(c *Config, v float64) { c.Seed = int64(v) },
}

// Set assigns a numeric parameter by name. It does not validate.
func (c *Config) Set(name string, v float64) error {
	set, ok := setters[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownParam)
	}
	set(c, v)
	return nil
}

// Params lists the names Set accepts.
func Params() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
