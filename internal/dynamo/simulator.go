package dynamo

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/poolsim/internal/physics"
)

type Simulator struct {
	stepper   Stepper
	metrics   []Metric
	observers []Observer
}

func New(stepper Stepper) *Simulator {
	return &Simulator{
		stepper:   stepper,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Metrics returns the metrics registered on s.
func (s *Simulator) Metrics() []Metric { return s.metrics }

// Run advances a copy of s0 for cfg.Duration. The input state is not
// modified. States are recorded every cfg.RecordEvery steps, and the last
// state is always recorded.
func (s *Simulator) Run(ctx context.Context, s0 *physics.State, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := stepCount(cfg)
	every := cfg.RecordEvery
	if every < 1 {
		every = 1
	}

	result := &Result{
		States:  make([]*physics.State, 0, steps/every+2),
		Times:   make([]float64, 0, steps/every+2),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := s0.Clone()
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, x.Time)

	initialEnergy := x.KineticEnergy()
	recorded := 0

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, x, initialEnergy)
			return result, fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		default:
		}

		for _, m := range s.metrics {
			m.Observe(x)
		}
		for _, obs := range s.observers {
			obs.OnStep(x)
		}

		t := x.Time
		s.stepper.Advance(x, cfg.Dt)

		if cfg.ValidateState && !x.IsValid() {
			result.Errors = append(result.Errors, SimError{Step: i, Time: t, Err: ErrInvalidState})
			break
		}

		result.StepsTaken++
		if result.StepsTaken%every == 0 {
			result.States = append(result.States, x.Clone())
			result.Times = append(result.Times, x.Time)
			recorded = result.StepsTaken
		}
	}

	if x.IsValid() {
		for _, m := range s.metrics {
			m.Observe(x)
		}
		if recorded != result.StepsTaken {
			result.States = append(result.States, x.Clone())
			result.Times = append(result.Times, x.Time)
		}
	}

	s.finish(result, x, initialEnergy)
	return result, nil
}

func (s *Simulator) finish(result *Result, x *physics.State, initialEnergy float64) {
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(x.KineticEnergy()-initialEnergy) / initialEnergy
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// RunWithCallback advances st in place and hands it to callback after every
// step. Returning false from the callback ends the run early.
func (s *Simulator) RunWithCallback(ctx context.Context, st *physics.State, cfg Config, callback func(*physics.State) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	steps := stepCount(cfg)
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		default:
		}

		t := st.Time
		s.stepper.Advance(st, cfg.Dt)

		if cfg.ValidateState && !st.IsValid() {
			return SimError{Step: i, Time: t, Err: ErrInvalidState}
		}

		if !callback(st) {
			return nil
		}
	}

	return nil
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 || math.IsNaN(cfg.Dt) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("dt must be positive, got %f: %w", cfg.Dt, ErrParameterBounds)
	}
	if cfg.Duration <= 0 || math.IsNaN(cfg.Duration) || math.IsInf(cfg.Duration, 0) {
		return fmt.Errorf("duration must be positive, got %f: %w", cfg.Duration, ErrParameterBounds)
	}
	if cfg.RecordEvery < 0 {
		return fmt.Errorf("record_every must not be negative, got %d: %w", cfg.RecordEvery, ErrParameterBounds)
	}
	return nil
}

// stepCount tolerates durations that are not an exact float multiple of dt.
func stepCount(cfg Config) int {
	return int(math.Floor(cfg.Duration/cfg.Dt + 1e-9))
}
