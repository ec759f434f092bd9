package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/san-kum/poolsim/internal/experiment"
	"github.com/san-kum/poolsim/internal/storage"
	"github.com/spf13/cobra"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	if err := exp.Setup(); err != nil {
		return err
	}

	logger.Info("running simulation", "layout", cfg.Layout, "balls", cfg.Balls, "seed", cfg.Seed, "duration", cfg.Duration)
	start := time.Now()

	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	for _, e := range result.Errors {
		logger.Warn("simulation stopped early", "err", e)
	}

	meta := storage.RunMetadata{
		Name:     runName(cfg),
		Layout:   cfg.Layout,
		Seed:     cfg.Seed,
		Dt:       cfg.Dt,
		Duration: cfg.Duration,
		Balls:    cfg.Balls,
		Table:    storage.TableMeta{Width: cfg.Table.Width, Height: cfg.Table.Height},
	}
	runID, err := st.Save(meta, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("samples: %d\n", len(result.States))
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for n := range result.Metrics {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("  %s: %.6f\n", n, result.Metrics[n])
	}

	return nil
}
