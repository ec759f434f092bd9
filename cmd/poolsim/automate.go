package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/poolsim/internal/automation"
	"github.com/san-kum/poolsim/internal/optim"
	"github.com/san-kum/poolsim/internal/storage"
	"github.com/spf13/cobra"
)

var (
	sweepParam  string
	sweepMin    float64
	sweepMax    float64
	sweepSteps  int
	mcTrials    int
	mcPerturb   float64
	gridParams  []string
	optimMetric string
)

func addAutomationCommands(root *cobra.Command) {
	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one parameter and report energy",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "speed", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 10, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	mcCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb initial velocities and count runs that stay on the table",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addSimFlags(mcCmd)
	mcCmd.Flags().IntVar(&mcTrials, "trials", 20, "number of trials")
	mcCmd.Flags().Float64Var(&mcPerturb, "perturb", 0.5, "velocity perturbation per axis")

	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "grid search for the configuration minimizing a metric",
		Args:  cobra.NoArgs,
		RunE:  runOptimize,
	}
	addSimFlags(optimizeCmd)
	optimizeCmd.Flags().StringArrayVar(&gridParams, "grid", nil, "name=v1,v2,... (repeatable)")
	optimizeCmd.Flags().StringVar(&optimMetric, "metric", "energy_drift", "metric to minimize")

	root.AddCommand(scenarioCmd, sweepCmd, mcCmd, optimizeCmd)
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	logger.Info("running scenario", "name", sc.Name, "steps", len(sc.Steps))
	results, err := automation.RunScenario(cmd.Context(), sc, st, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSTEPS\tENERGY\tDRIFT")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%.4f\t%.3e\n", i+1, r.StepsTaken, r.Metrics["kinetic_energy"], r.EnergyDrift)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Base:      cfg,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
	}, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMIN ENERGY\tMAX ENERGY\tMIN SEPARATION\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%.4f\t%.4f\t%.4f\n", r.ParamValue, r.MinEnergy, r.MaxEnergy, r.Metrics["min_separation"])
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: mcPerturb,
		NumTrials:    mcTrials,
		Seed:         cfg.Seed,
	}, logger)
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("trials: %d\n", len(results))
	fmt.Printf("stable: %d\n", stable)
	fmt.Printf("unstable: %d\n", unstable)
	return nil
}

// parseGrid reads "name=v1,v2,..." entries.
func parseGrid(entries []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(entries))
	ranges := make([][]float64, 0, len(entries))
	for _, e := range entries {
		name, list, ok := strings.Cut(e, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, fmt.Errorf("grid entry %q: want name=v1,v2", e)
		}
		var vals []float64
		for _, f := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid entry %q: %w", e, err)
			}
			vals = append(vals, v)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(gridParams)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("at least one --grid entry is required")
	}

	params, best, err := optim.NewGridSearch(names, ranges).Search(cmd.Context(), optim.ConfigBuilder(cfg), optimMetric)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("best %s: %.6f\n", optimMetric, best)
	for _, k := range keys {
		fmt.Printf("  %s = %g\n", k, params[k])
	}
	return nil
}
