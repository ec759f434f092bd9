package experiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/poolsim/internal/config"
	"github.com/san-kum/poolsim/internal/dynamo"
	"github.com/san-kum/poolsim/internal/physics"
)

var ErrNotSetup = errors.New("experiment: not set up")

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	simulator *dynamo.Simulator
	initial   *physics.State
}

func New(cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Experiment{
		cfg:      cfg.Clone(),
		registry: NewRegistry(),
	}, nil
}

// WithRegistry replaces the layout registry. Call before Setup.
func (e *Experiment) WithRegistry(r *Registry) *Experiment {
	e.registry = r
	return e
}

// Setup builds the initial state and the simulator with the default metrics.
func (e *Experiment) Setup() error {
	s, err := Build(e.cfg, e.registry, e.cfg.Seed)
	if err != nil {
		return err
	}

	e.initial = s
	e.simulator = dynamo.New(physics.NewStepper(len(s.Balls)))
	for _, m := range e.registry.DefaultMetrics() {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, ErrNotSetup
	}
	return e.simulator.Run(ctx, e.initial, e.SimConfig())
}

// SimConfig is the dynamo view of the experiment configuration.
func (e *Experiment) SimConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            e.cfg.Dt,
		Duration:      e.cfg.Duration,
		RecordEvery:   e.cfg.RecordEvery,
		ValidateState: e.cfg.ValidateState,
	}
}

// InitialState returns a copy of the state built by Setup, or nil.
func (e *Experiment) InitialState() *physics.State {
	if e.initial == nil {
		return nil
	}
	return e.initial.Clone()
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *dynamo.Simulator {
	return e.simulator
}

func (e *Experiment) Config() *config.Config {
	return e.cfg
}

// Build lays out a fresh state for cfg using seed. Speed draws come from the
// same source as placement, after it.
func Build(cfg *config.Config, r *Registry, seed int64) (*physics.State, error) {
	layout, err := r.GetLayout(cfg.Layout)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	s := physics.NewState(cfg.Balls, physics.Table{Width: cfg.Table.Width, Height: cfg.Table.Height})
	if err := layout(s, rng, cfg); err != nil {
		return nil, fmt.Errorf("layout %s: %w", cfg.Layout, err)
	}

	if cfg.Speed > 0 {
		for i := range s.Balls {
			a := rng.Float64() * 2 * math.Pi
			s.Balls[i].Velocity = mgl64.Vec3{cfg.Speed * math.Cos(a), 0, cfg.Speed * math.Sin(a)}
		}
	}
	for _, v := range cfg.Velocities {
		if v.Ball < 0 || v.Ball >= len(s.Balls) {
			return nil, fmt.Errorf("velocity for ball %d: %w", v.Ball, config.ErrInvalidConfig)
		}
		s.Balls[v.Ball].Velocity = mgl64.Vec3{v.VX, 0, v.VZ}
	}
	return s, nil
}

// NewEnsemble runs the experiment's configuration over numRuns seeds
// starting at the configured one.
func (e *Experiment) NewEnsemble(numRuns int) *dynamo.Ensemble {
	cfg := e.cfg
	return dynamo.NewEnsemble(func(seed int64) (*physics.State, error) {
		return Build(cfg, e.registry, seed)
	}, numRuns, cfg.Seed).WithMetrics(e.registry.DefaultMetrics)
}
