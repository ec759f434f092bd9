package dynamo

import "github.com/san-kum/poolsim/internal/physics"

// Stepper advances a state by one timestep. *physics.Stepper implements it.
type Stepper interface {
	Advance(s *physics.State, dt float64)
}

// Metric accumulates a scalar over the states it observes: the state before
// every step, then the final state once if it is valid.
type Metric interface {
	Name() string
	Observe(s *physics.State)
	Value() float64
	Reset()
}

// Observer sees the state before every step. It must not modify it.
type Observer interface {
	OnStep(s *physics.State)
}

type Config struct {
	Dt            float64
	Duration      float64
	RecordEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0 / 60,
		Duration:      10.0,
		RecordEvery:   1,
		ValidateState: true,
	}
}

type Result struct {
	States      []*physics.State
	Times       []float64
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
}

// Final returns the last recorded state, or nil when nothing was recorded.
func (r *Result) Final() *physics.State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}
