package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/poolsim/internal/config"
	"github.com/san-kum/poolsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string

	configFile string
	preset     string
	layout     string
	balls      int
	width      float64
	height     float64
	dt         float64
	duration   float64
	seed       int64
	speed      float64
	name       string

	// plot / analyze / export-svg
	ballIdx    int
	trajectory bool
	braille    bool
	outFile    string
	scale      float64

	// live / serve
	gifPath   string
	addr      string
	frameRate int

	// bench
	benchSteps int
	benchRuns  int
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
	Prefix:          "poolsim",
})

func main() {
	rootCmd := &cobra.Command{
		Use:           "poolsim",
		Short:         "rigid sphere billiard simulation lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := log.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			logger.SetLevel(lvl)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to the interactive picker when no command given
			return viz.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".poolsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation and store the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&name, "name", "", "run name (defaults to the preset or layout)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot kinetic energy and one ball's position",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&ballIdx, "ball", 0, "ball to plot")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and divergence analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&ballIdx, "ball", 0, "ball to analyze")

	svgCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the final table or a trajectory as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().IntVar(&ballIdx, "ball", 0, "ball for --trajectory")
	svgCmd.Flags().BoolVar(&trajectory, "trajectory", false, "draw the path of --ball instead of the final table")
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	svgCmd.Flags().Float64Var(&scale, "scale", 20, "pixels per table unit")
	svgCmd.Flags().BoolVar(&braille, "braille", false, "render the final table as the terminal canvas sees it, with --ball as trail")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().StringVar(&gifPath, "gif", "", "record from the start and save this GIF on quit or g")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream frames to websocket clients",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	addSimFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().IntVar(&frameRate, "fps", 60, "frames per second")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure step throughput for several ball counts",
		Args:  cobra.NoArgs,
		RunE:  bench,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 2000, "steps per measurement")
	benchCmd.Flags().IntVar(&benchRuns, "runs", 8, "ensemble size for the parallel measurement")

	rootCmd.AddCommand(runCmd, listCmd, exportCmd, plotCmd, analyzeCmd, svgCmd, liveCmd, serveCmd, presetsCmd, benchCmd)
	addAutomationCommands(rootCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&layout, "layout", config.DefaultLayout, "initial layout (random, rack)")
	cmd.Flags().IntVar(&balls, "balls", config.DefaultBalls, "number of balls")
	cmd.Flags().Float64Var(&width, "width", config.DefaultWidth, "table half width")
	cmd.Flags().Float64Var(&height, "height", config.DefaultHeight, "table half height")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().Float64Var(&speed, "speed", 0, "random initial speed per ball")
}

// loadConfig layers defaults, preset, config file and changed flags, in
// that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadInto(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("layout") {
		cfg.Layout = layout
	}
	if flags.Changed("balls") {
		cfg.Balls = balls
		cfg.Velocities = dropVelocitiesBeyond(cfg.Velocities, balls)
	}
	if flags.Changed("width") {
		cfg.Table.Width = width
	}
	if flags.Changed("height") {
		cfg.Table.Height = height
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("speed") {
		cfg.Speed = speed
	}

	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func dropVelocitiesBeyond(vs []config.VelocityConfig, n int) []config.VelocityConfig {
	out := vs[:0:0]
	for _, v := range vs {
		if v.Ball < n {
			out = append(out, v)
		}
	}
	return out
}

func runName(cfg *config.Config) string {
	switch {
	case name != "":
		return name
	case preset != "":
		return preset
	default:
		return cfg.Layout
	}
}
