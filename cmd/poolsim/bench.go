package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/san-kum/poolsim/internal/config"
	"github.com/san-kum/poolsim/internal/dynamo"
	"github.com/san-kum/poolsim/internal/experiment"
	"github.com/san-kum/poolsim/internal/physics"
	"github.com/spf13/cobra"
)

var benchSizes = []int{1, 4, 16, 32, 64, 128}

// benchTable sizes the table so random placement of n balls succeeds
// quickly.
func benchTable(n int) config.TableConfig {
	w := math.Max(config.DefaultWidth, 3*math.Sqrt(float64(n)))
	return config.TableConfig{Width: w, Height: 2 * w}
}

func bench(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()

	fmt.Printf("stepping %d times per size...\n\n", benchSteps)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BALLS\tTOTAL\tPER STEP\tSTEPS/S\tCONTACTS")

	for _, n := range benchSizes {
		cfg := config.DefaultConfig()
		cfg.Balls = n
		cfg.Table = benchTable(n)
		cfg.Seed = 1
		cfg.Speed = 10

		s, err := experiment.Build(cfg, registry, cfg.Seed)
		if err != nil {
			return fmt.Errorf("%d balls: %w", n, err)
		}

		st := physics.NewStepper(n)
		contacts := 0
		start := time.Now()
		for i := 0; i < benchSteps; i++ {
			st.Advance(s, cfg.Dt)
			stats := st.LastStats()
			contacts += stats.BallContacts + stats.WallContacts
		}
		elapsed := time.Since(start)

		perStep := elapsed / time.Duration(benchSteps)
		fmt.Fprintf(w, "%d\t%v\t%v\t%.0f\t%d\n",
			n, elapsed, perStep, float64(benchSteps)/elapsed.Seconds(), contacts)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if benchRuns <= 0 {
		return nil
	}

	cfg := config.GetPreset("scatter")
	cfg.Duration = float64(benchSteps) * cfg.Dt
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	logger.Debug("running ensemble", "runs", benchRuns, "steps", benchSteps)
	start := time.Now()
	results, err := exp.NewEnsemble(benchRuns).Run(cmd.Context(), exp.SimConfig())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("\nensemble: %d runs of %d balls in %v (%.0f steps/s)\n",
		benchRuns, cfg.Balls, elapsed, float64(benchRuns*benchSteps)/elapsed.Seconds())
	printEnsembleDrift(results)
	return nil
}

func printEnsembleDrift(results []*dynamo.Result) {
	worst := 0.0
	for _, r := range results {
		worst = math.Max(worst, r.EnergyDrift)
	}
	fmt.Printf("worst energy drift: %.3e\n", worst)
}
