package experiment

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/san-kum/poolsim/internal/config"
	"github.com/san-kum/poolsim/internal/dynamo"
	"github.com/san-kum/poolsim/internal/metrics"
	"github.com/san-kum/poolsim/internal/physics"
)

// LayoutFunc arranges the balls of s. rng is the experiment's seeded source.
type LayoutFunc func(s *physics.State, rng *rand.Rand, cfg *config.Config) error

type Registry struct {
	layouts map[string]LayoutFunc
}

func NewRegistry() *Registry {
	r := &Registry{
		layouts: make(map[string]LayoutFunc),
	}

	r.layouts[config.LayoutRandom] = func(s *physics.State, rng *rand.Rand, cfg *config.Config) error {
		return physics.InitializeN(s, rng, cfg.PlacementAttempts())
	}
	r.layouts[config.LayoutRack] = func(s *physics.State, _ *rand.Rand, _ *config.Config) error {
		return physics.Rack(s)
	}

	return r
}

func (r *Registry) Register(name string, fn LayoutFunc) {
	r.layouts[name] = fn
}

func (r *Registry) GetLayout(name string) (LayoutFunc, error) {
	fn, ok := r.layouts[name]
	if !ok {
		return nil, fmt.Errorf("unknown layout: %s", name)
	}
	return fn, nil
}

func (r *Registry) ListLayouts() []string {
	names := make([]string, 0, len(r.layouts))
	for name := range r.layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []dynamo.Metric {
	return metrics.Defaults()
}
