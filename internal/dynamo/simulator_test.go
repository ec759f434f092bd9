package dynamo

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/poolsim/internal/physics"
)

func headOn() *physics.State {
	s := physics.NewState(2, physics.Table{Width: 10, Height: 20})
	s.Balls[0].Position = mgl64.Vec3{-4, physics.RestHeight, 0}
	s.Balls[0].Velocity = mgl64.Vec3{2, 0, 0}
	s.Balls[1].Position = mgl64.Vec3{4, physics.RestHeight, 0}
	s.Balls[1].Velocity = mgl64.Vec3{-2, 0, 0}
	return s
}

func TestSimulatorRun(t *testing.T) {
	s0 := headOn()
	sim := New(physics.NewStepper(2))

	cfg := Config{Dt: 0.1, Duration: 1.0, RecordEvery: 1}
	result, err := sim.Run(context.Background(), s0, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != 11 {
		t.Errorf("expected 11 states, got %d", len(result.States))
	}
	if len(result.Times) != 11 {
		t.Errorf("expected 11 times, got %d", len(result.Times))
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}
	if got := result.Final().Time; math.Abs(got-1.0) > 1e-9 {
		t.Errorf("final time = %v, want 1.0", got)
	}
	if s0.Time != 0 || s0.Balls[0].Position.X() != -4 {
		t.Error("input state was modified")
	}
}

func TestSimulatorRecordEvery(t *testing.T) {
	sim := New(physics.NewStepper(2))

	result, err := sim.Run(context.Background(), headOn(), Config{Dt: 0.1, Duration: 1.0, RecordEvery: 3})
	if err != nil {
		t.Fatal(err)
	}

	// initial, steps 3, 6, 9 and the final step 10
	want := []float64{0, 0.3, 0.6, 0.9, 1.0}
	if len(result.Times) != len(want) {
		t.Fatalf("times = %v, want %v", result.Times, want)
	}
	for i := range want {
		if math.Abs(result.Times[i]-want[i]) > 1e-9 {
			t.Errorf("times[%d] = %v, want %v", i, result.Times[i], want[i])
		}
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(physics.NewStepper(2))

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"NaN dt", Config{Dt: math.NaN(), Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
		{"negative record interval", Config{Dt: 0.1, Duration: 1.0, RecordEvery: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), headOn(), tt.cfg)
			if !errors.Is(err, ErrParameterBounds) {
				t.Errorf("err = %v, want ErrParameterBounds", err)
			}
		})
	}
}

func TestSimulatorStopsOnInvalidState(t *testing.T) {
	s0 := physics.NewState(2, physics.Table{Width: 10, Height: 20})
	s0.Balls[0].Velocity = mgl64.Vec3{1, 0, 0}

	sim := New(physics.NewStepper(2))
	result, err := sim.Run(context.Background(), s0, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v, want one", result.Errors)
	}
	var simErr SimError
	if !errors.As(result.Errors[0], &simErr) || simErr.Step != 0 {
		t.Errorf("error = %v, want SimError at step 0", result.Errors[0])
	}
	if !errors.Is(result.Errors[0], ErrInvalidState) {
		t.Errorf("error = %v, want ErrInvalidState", result.Errors[0])
	}
	if result.StepsTaken != 0 || len(result.States) != 1 {
		t.Errorf("steps = %d states = %d, want only the initial state", result.StepsTaken, len(result.States))
	}
}

func TestSimulatorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := New(physics.NewStepper(2))
	result, err := sim.Run(ctx, headOn(), DefaultConfig())
	if !errors.Is(err, ErrContextCanceled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want ErrContextCanceled wrapping context.Canceled", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Errorf("expected partial result with no steps, got %+v", result)
	}
}

type countMetric struct {
	count int
	sum   float64
}

func (c *countMetric) Name() string { return "count" }
func (c *countMetric) Observe(s *physics.State) {
	c.count++
	c.sum += s.KineticEnergy()
}
func (c *countMetric) Value() float64 { return float64(c.count) }
func (c *countMetric) Reset() {
	c.count = 0
	c.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	sim := New(physics.NewStepper(2))
	metric := &countMetric{}
	sim.AddMetric(metric)

	result, err := sim.Run(context.Background(), headOn(), Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if got, ok := result.Metrics["count"]; !ok || got != 11 {
		t.Errorf("count metric = %v (present %v), want 11", got, ok)
	}
	// Head-on equal speeds exchange velocities, so energy is unchanged.
	if result.EnergyDrift > 1e-12 {
		t.Errorf("energy drift = %v, want 0", result.EnergyDrift)
	}
}

type lastTime struct{ t float64 }

func (l *lastTime) Name() string { return "last_time" }
func (l *lastTime) Observe(s *physics.State) { l.t = s.Time }
func (l *lastTime) Value() float64 { return l.t }
func (l *lastTime) Reset() { l.t = -1 }

func TestSimulatorMetricsSeeFinalState(t *testing.T) {
	sim := New(physics.NewStepper(2))
	sim.AddMetric(&lastTime{})

	result, err := sim.Run(context.Background(), headOn(), Config{Dt: 0.1, Duration: 1.0, RecordEvery: 4})
	if err != nil {
		t.Fatal(err)
	}
	if got := result.Metrics["last_time"]; math.Abs(got-1.0) > 1e-9 {
		t.Errorf("last observed time = %v, want 1.0", got)
	}
}

func TestSimulatorMetricsSkipInvalidFinalState(t *testing.T) {
	s0 := physics.NewState(2, physics.Table{Width: 10, Height: 20})
	s0.Balls[0].Velocity = mgl64.Vec3{1, 0, 0}

	sim := New(physics.NewStepper(2))
	metric := &countMetric{}
	sim.AddMetric(metric)
	result, err := sim.Run(context.Background(), s0, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if result.Metrics["count"] != 1 {
		t.Errorf("count = %v, want only the pre-step observation", result.Metrics["count"])
	}
}

type recorder struct{ times []float64 }

func (r *recorder) OnStep(s *physics.State) { r.times = append(r.times, s.Time) }

func TestSimulatorObserver(t *testing.T) {
	sim := New(physics.NewStepper(2))
	rec := &recorder{}
	sim.AddObserver(rec)

	if _, err := sim.Run(context.Background(), headOn(), Config{Dt: 0.5, Duration: 2}); err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 0.5, 1, 1.5}
	if len(rec.times) != len(want) {
		t.Fatalf("observed %v, want %v", rec.times, want)
	}
}

func TestRunWithCallback(t *testing.T) {
	st := headOn()
	sim := New(physics.NewStepper(2))

	calls := 0
	err := sim.RunWithCallback(context.Background(), st, Config{Dt: 0.1, Duration: 10}, func(s *physics.State) bool {
		calls++
		return calls < 5
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 5 {
		t.Errorf("calls = %d, want 5", calls)
	}
	if math.Abs(st.Time-0.5) > 1e-9 {
		t.Errorf("time = %v, want 0.5 after five steps in place", st.Time)
	}
}

func TestEnsemble(t *testing.T) {
	build := func(seed int64) (*physics.State, error) {
		s := physics.NewState(6, physics.Table{Width: 10, Height: 20})
		rng := rand.New(rand.NewSource(seed))
		if err := physics.Initialize(s, rng); err != nil {
			return nil, err
		}
		s.Balls[0].Velocity = mgl64.Vec3{5, 0, 3}
		return s, nil
	}

	ens := NewEnsemble(build, 4, 10).
		WithWorkers(2).
		WithMetrics(func() []Metric { return []Metric{&countMetric{}} })

	results, err := ens.Run(context.Background(), Config{Dt: 0.05, Duration: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("results = %d, want 4", len(results))
	}
	for i, r := range results {
		if r.Metrics["count"] != 21 {
			t.Errorf("run %d observed %v states, want 21", i, r.Metrics["count"])
		}
	}

	again, err := build(10)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].States[0].Balls[3] != again.Balls[3] {
		t.Error("first run should start from the first seed's layout")
	}
}

func TestEnsembleBuildError(t *testing.T) {
	boom := errors.New("boom")
	ens := NewEnsemble(func(seed int64) (*physics.State, error) {
		if seed == 2 {
			return nil, boom
		}
		return headOn(), nil
	}, 3, 0)

	if _, err := ens.Run(context.Background(), DefaultConfig()); !errors.Is(err, boom) {
		t.Errorf("err = %v, want build error", err)
	}
}
