package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/poolsim/internal/analysis"
	"github.com/san-kum/poolsim/internal/config"
	"github.com/san-kum/poolsim/internal/export"
	"github.com/san-kum/poolsim/internal/physics"
	"github.com/san-kum/poolsim/internal/storage"
	"github.com/san-kum/poolsim/internal/viz"
	"github.com/spf13/cobra"
)

const brailleCols = 60

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLAYOUT\tBALLS\tTIME\tDURATION\tDT\tSEED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%.2fs\t%.4fs\t%d\n",
			run.ID,
			run.Layout,
			run.Balls,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Seed,
		)
	}

	return w.Flush()
}

func output() (io.WriteCloser, error) {
	if outFile == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outFile)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportRun(cmd *cobra.Command, args []string) error {
	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()

	return storage.New(dataDir).Export(w, args[0])
}

// loadRun reads a stored run and checks it has samples.
func loadRun(runID string) (*storage.RunMetadata, [][]float64, []float64, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(states) == 0 {
		return nil, nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, states, times, nil
}

func tableOf(meta *storage.RunMetadata) physics.Table {
	return physics.Table{Width: meta.Table.Width, Height: meta.Table.Height}
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, states, times, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("layout: %s, balls: %d\n", meta.Layout, meta.Balls)
	fmt.Printf("samples: %d\n\n", len(states))

	energy := make([]float64, len(states))
	for i, row := range states {
		s, err := storage.StateFromRow(row, tableOf(meta), times[i])
		if err != nil {
			return err
		}
		energy[i] = s.KineticEnergy()
	}

	fmt.Println(asciigraph.Plot(energy,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("kinetic energy"),
	))
	fmt.Println()

	for _, field := range []string{"x", "z"} {
		data, err := storage.Column(states, ballIdx, field)
		if err != nil {
			return err
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("ball %d %s", ballIdx, field)),
		))
		fmt.Println()
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, states, times, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(times) < 2 {
		return fmt.Errorf("run %s needs at least two samples", meta.ID)
	}

	xs, err := storage.Column(states, ballIdx, "x")
	if err != nil {
		return err
	}
	sampleDt := times[1] - times[0]

	spectrum := analysis.PowerSpectrum(xs)
	plotData := spectrum
	if len(plotData) > 100 {
		plotData = plotData[:100]
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("ball: %d, samples: %d, sample dt: %.4fs\n\n", ballIdx, len(xs), sampleDt)

	fmt.Println(asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (ball %d x)", ballIdx)),
	))

	freq := analysis.DominantFrequency(xs, sampleDt)
	fmt.Printf("\ndominant frequency: %.4f Hz", freq)
	if freq > 0 {
		fmt.Printf(" (period %.3fs)", 1/freq)
	}
	fmt.Println()

	s0, err := storage.StateFromRow(states[0], tableOf(meta), times[0])
	if err != nil {
		return err
	}
	lambda := analysis.Divergence(s0, ballIdx, 1e-6, meta.Dt, meta.Duration)
	fmt.Printf("divergence rate: %.4f /s\n", lambda)

	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, states, times, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var svg string
	if trajectory {
		xs, err := storage.Column(states, ballIdx, "x")
		if err != nil {
			return err
		}
		zs, err := storage.Column(states, ballIdx, "z")
		if err != nil {
			return err
		}
		points := make([]struct{ X, Y float64 }, len(xs))
		for i := range xs {
			points[i].X, points[i].Y = xs[i], zs[i]
		}
		w := int(2 * meta.Table.Width * scale)
		h := int(2 * meta.Table.Height * scale)
		svg = export.TrajectoryToSVG(points, w, h, "#00ff88")
		if svg == "" {
			return fmt.Errorf("run %s has too few samples for a trajectory", meta.ID)
		}
	} else {
		last := len(states) - 1
		s, err := storage.StateFromRow(states[last], tableOf(meta), times[last])
		if err != nil {
			return err
		}
		if braille {
			svg, err = brailleSVG(s, states, meta.Table.Width, meta.Table.Height)
			if err != nil {
				return err
			}
		} else {
			svg = export.TableToSVG(s, scale)
		}
	}

	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()

	if _, err := io.WriteString(w, svg); err != nil {
		return err
	}
	if outFile != "" {
		logger.Info("wrote svg", "path", outFile)
	}
	return nil
}

// brailleSVG renders the final table through the terminal canvas, with the
// path of --ball as its trail, and scales each sub-pixel to an SVG dot.
func brailleSVG(s *physics.State, states [][]float64, width, height float64) (string, error) {
	xs, err := storage.Column(states, ballIdx, "x")
	if err != nil {
		return "", err
	}
	zs, err := storage.Column(states, ballIdx, "z")
	if err != nil {
		return "", err
	}
	trail := make([]mgl64.Vec3, len(xs))
	for i := range xs {
		trail[i] = mgl64.Vec3{xs[i], 0, zs[i]}
	}

	rows := int(math.Ceil(brailleCols * 2 * height / width / 4))
	canvas := viz.NewCanvas(brailleCols, max(rows, 1))
	viz.DrawTable(canvas, s, trail)
	return export.CanvasToSVG(canvas, scale/4, "#f5f5dc"), nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tLAYOUT\tBALLS\tTABLE\tDURATION")
	for _, p := range config.ListPresets() {
		cfg := config.GetPreset(p)
		fmt.Fprintf(w, "%s\t%s\t%d\t%gx%g\t%.1fs\n",
			p, cfg.Layout, cfg.Balls, cfg.Table.Width, cfg.Table.Height, cfg.Duration)
	}
	return w.Flush()
}
