package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/poolsim/internal/config"
	"github.com/san-kum/poolsim/internal/dynamo"
	"github.com/san-kum/poolsim/internal/experiment"
	"github.com/san-kum/poolsim/internal/physics"
	"github.com/san-kum/poolsim/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run in a scenario. Config, when present, replaces
// the preset; Duration and Seed override whichever was chosen.
type ScenarioStep struct {
	Preset   string         `yaml:"preset"`
	Config   *config.Config `yaml:"config"`
	Duration float64        `yaml:"duration"`
	Seed     int64          `yaml:"seed"`
	SaveAs   string         `yaml:"save_as"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}

	return &scenario, nil
}

// Resolve returns the validated configuration the step runs with.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	cfg := config.DefaultConfig()
	switch {
	case s.Config != nil:
		cfg = s.Config.Clone()
	case s.Preset != "":
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q: %w", s.Preset, config.ErrInvalidConfig)
		}
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	return cfg, cfg.Validate()
}

// RunScenario executes all steps in a scenario. Steps with SaveAs are written
// to store when it is not nil.
func RunScenario(ctx context.Context, scenario *Scenario, store *storage.Store, logger *log.Logger) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		logger.Info("running step", "step", i+1, "of", len(scenario.Steps), "layout", cfg.Layout, "balls", cfg.Balls)

		exp, err := experiment.New(cfg)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, result)

		if step.SaveAs == "" || store == nil {
			continue
		}
		runID, err := store.Save(storage.RunMetadata{
			Name:     step.SaveAs,
			Layout:   cfg.Layout,
			Seed:     cfg.Seed,
			Dt:       cfg.Dt,
			Duration: cfg.Duration,
			Balls:    cfg.Balls,
			Table:    storage.TableMeta{Width: cfg.Table.Width, Height: cfg.Table.Height},
		}, result)
		if err != nil {
			return results, fmt.Errorf("step %d save: %w", i+1, err)
		}
		logger.Info("saved step", "step", i+1, "run", runID)
	}

	return results, nil
}

// ParameterSweep runs simulations across a range of one config parameter
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue float64
	FinalState *physics.State
	MaxEnergy  float64
	MinEnergy  float64
	Metrics    map[string]float64
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, logger *log.Logger) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep steps %d: %w", sweep.NumSteps, dynamo.ErrParameterBounds)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := sweep.Base.Clone()
		if err := cfg.Set(sweep.ParamName, paramVal); err != nil {
			return nil, err
		}

		exp, err := experiment.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}
		if err := exp.Setup(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		minE, maxE := energyRange(result.States)
		results = append(results, SweepResult{
			ParamValue: paramVal,
			FinalState: result.Final(),
			MaxEnergy:  maxE,
			MinEnergy:  minE,
			Metrics:    result.Metrics,
		})

		logger.Debug("sweep", "step", i+1, "of", sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}

func energyRange(states []*physics.State) (minE, maxE float64) {
	if len(states) == 0 {
		return 0, 0
	}
	minE, maxE = math.Inf(1), math.Inf(-1)
	for _, s := range states {
		e := s.KineticEnergy()
		minE = math.Min(minE, e)
		maxE = math.Max(maxE, e)
	}
	return minE, maxE
}

// MonteCarloConfig defines Monte Carlo simulation parameters. Every trial
// starts from the layout Base builds and jitters each ball's velocity by up
// to Perturbation per axis.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
}

// MonteCarloResult holds the outcome of one trial
type MonteCarloResult struct {
	TrialID    int
	InitState  *physics.State
	FinalState *physics.State
	Stable     bool // finite and every ball still on the table
}

// RunMonteCarlo executes multiple trials with random perturbations
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, logger *log.Logger) ([]MonteCarloResult, error) {
	if err := cfg.Base.Validate(); err != nil {
		return nil, err
	}

	base, err := experiment.Build(cfg.Base, experiment.NewRegistry(), cfg.Base.Seed)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	simCfg := dynamo.Config{
		Dt:            cfg.Base.Dt,
		Duration:      cfg.Base.Duration,
		RecordEvery:   cfg.Base.RecordEvery,
		ValidateState: true,
	}

	for trial := 0; trial < cfg.NumTrials; trial++ {
		init := base.Clone()
		for i := range init.Balls {
			jitter := mgl64.Vec3{
				(rng.Float64() - 0.5) * 2 * cfg.Perturbation,
				0,
				(rng.Float64() - 0.5) * 2 * cfg.Perturbation,
			}
			init.Balls[i].Velocity = init.Balls[i].Velocity.Add(jitter)
		}

		sim := dynamo.New(physics.NewStepper(len(init.Balls)))
		result, err := sim.Run(ctx, init, simCfg)
		if err != nil {
			return results, err
		}

		final := result.Final()
		results = append(results, MonteCarloResult{
			TrialID:    trial,
			InitState:  init,
			FinalState: final,
			Stable:     len(result.Errors) == 0 && final != nil && onTable(final),
		})

		if (trial+1)%10 == 0 {
			logger.Info("monte carlo", "done", trial+1, "of", cfg.NumTrials)
		}
	}

	return results, nil
}

// onTable reports whether every center lies within the table edges. Centers
// may sit past the wall bounds for a step after a fast impact.
func onTable(s *physics.State) bool {
	for _, b := range s.Balls {
		if math.Abs(b.Position.X()) > s.Table.Width || math.Abs(b.Position.Z()) > s.Table.Height {
			return false
		}
	}
	return true
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
