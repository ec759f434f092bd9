package dynamo

import (
	"context"
	"runtime"
	"sync"

	"github.com/san-kum/poolsim/internal/physics"
)

// Builder produces the initial state for one run of an ensemble.
type Builder func(seed int64) (*physics.State, error)

// Ensemble runs one configuration across consecutive seeds. Every run gets
// its own state, stepper and metrics.
type Ensemble struct {
	build     Builder
	metrics   func() []Metric
	numRuns   int
	seedStart int64
	workers   int
}

func NewEnsemble(build Builder, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{
		build:     build,
		numRuns:   numRuns,
		seedStart: seedStart,
		workers:   runtime.GOMAXPROCS(0),
	}
}

// WithMetrics sets a factory for the metrics attached to every run.
func (e *Ensemble) WithMetrics(factory func() []Metric) *Ensemble {
	e.metrics = factory
	return e
}

// WithWorkers caps the number of runs in flight.
func (e *Ensemble) WithWorkers(n int) *Ensemble {
	if n > 0 {
		e.workers = n
	}
	return e
}

// Run returns results in seed order. The first failing run's error is
// returned and the results are discarded.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			s0, err := e.build(e.seedStart + int64(idx))
			if err != nil {
				errs[idx] = err
				return
			}

			sim := New(physics.NewStepper(len(s0.Balls)))
			if e.metrics != nil {
				for _, m := range e.metrics() {
					sim.AddMetric(m)
				}
			}

			results[idx], errs[idx] = sim.Run(ctx, s0, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
