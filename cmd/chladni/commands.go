package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/chladni/internal/analysis"
	"github.com/san-kum/chladni/internal/config"
	"github.com/san-kum/chladni/internal/dynamo"
	"github.com/san-kum/chladni/internal/export"
	"github.com/san-kum/chladni/internal/integrators"
	"github.com/san-kum/chladni/internal/metrics"
	"github.com/san-kum/chladni/internal/physics"
	"github.com/san-kum/chladni/internal/plate"
	"github.com/san-kum/chladni/internal/sim"
	"github.com/san-kum/chladni/internal/storage"
	"github.com/san-kum/chladni/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if writeConfig != "" {
		if err := config.Save(writeConfig, cfg); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	sc := cfg.ToSimConfig()
	if runs > 1 {
		return runEnsemble(sc, cfg.Workers)
	}

	s := newSimulator(cfg.Workers, sc)
	s.AddObserver(sim.NewProgressLogger(slog.Default(), sc.Steps, 10))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s plate, %d particles, n=%g m=%g...\n", sc.Shape, sc.Particles, sc.Mode.N, sc.Mode.M)
	start := time.Now()
	result, err := s.Run(ctx, sc)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d (rejected %d)\n", result.StepsTaken, result.Rejected)

	if !noSave {
		runID, err := saveRun(sc, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	if analysis.Converged(result.Series["nodal_residual"], 50, 1e-4) {
		fmt.Println("\npattern settled")
	}
	return nil
}

func newSimulator(workers int, sc sim.Config) *sim.Simulator {
	s := sim.New(integrators.NewParallelEuler(workers), slog.Default())
	for _, m := range metrics.Defaults(sc.Mode, sc.Shape, sc.Aspect) {
		s.AddMetric(m)
	}
	return s
}

func saveRun(sc sim.Config, result *sim.Result) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	return st.Save(sc, result)
}

// runEnsemble repeats the run under seeds sc.Seed, sc.Seed+1, ... in
// parallel and stores each one.
func runEnsemble(sc sim.Config, workers int) error {
	ens := sim.NewEnsemble(func() *sim.Simulator { return newSimulator(workers, sc) }, runs, sc.Seed)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %d x %s plate, %d particles, n=%g m=%g...\n", runs, sc.Shape, sc.Particles, sc.Mode.N, sc.Mode.M)
	start := time.Now()
	results, err := ens.Run(ctx, sc)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tRUN ID\tRESIDUAL\tSPREAD")
	residuals := make([]float64, 0, len(results))
	for i, result := range results {
		runCfg := sc
		runCfg.Seed = sc.Seed + uint64(i)
		runID := "-"
		if !noSave {
			if runID, err = saveRun(runCfg, result); err != nil {
				return err
			}
		}
		residuals = append(residuals, result.Metrics["nodal_residual"])
		fmt.Fprintf(w, "%d\t%s\t%.6f\t%.6f\n", runCfg.Seed, runID, result.Metrics["nodal_residual"], result.Metrics["spread"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	mean, std := stat.MeanStdDev(residuals, nil)
	fmt.Printf("\nnodal residual: mean %.6f  std %.6f\n", mean, std)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	return viz.Run(viz.LiveConfig{
		Shape:     cfg.Shape,
		Aspect:    cfg.PlateAspect(),
		Particles: cfg.Particles,
		Mode:      cfg.Mode,
		Params:    cfg.Params(),
		Seed:      cfg.Seed,
		Workers:   cfg.Workers,
		Theme:     themeName,
		FPS:       frameRate,
	})
}

func renderPattern(cmd *cobra.Command, args []string) error {
	mode := config.DefaultConfig().Mode
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		mode = p.Mode
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		mode = loaded.Mode
		if !cmd.Flags().Changed("width") {
			patternWidth = loaded.Pattern.Width
		}
		if !cmd.Flags().Changed("height") {
			patternHeight = loaded.Pattern.Height
		}
		if !cmd.Flags().Changed("threshold") {
			patternThreshold = loaded.Pattern.Threshold
		}
	}
	setMode(cmd.Flags().Changed, &mode)

	return withOutput(func(w io.Writer) error {
		switch patternFormat {
		case "png":
			return export.PatternPNG(w, patternWidth, patternHeight, mode, patternThreshold)
		case "rgba":
			buf, err := physics.RenderPattern(patternWidth, patternHeight, mode, patternThreshold)
			if err != nil {
				return err
			}
			_, err = w.Write(buf)
			return err
		case "ascii":
			mask, err := physics.NodalMask(patternWidth, patternHeight, mode, patternThreshold)
			if err != nil {
				return err
			}
			var sb strings.Builder
			for j := 0; j < patternHeight; j++ {
				for i := 0; i < patternWidth; i++ {
					if mask[j*patternWidth+i] {
						sb.WriteByte('#')
					} else {
						sb.WriteByte(' ')
					}
				}
				sb.WriteByte('\n')
			}
			_, err = io.WriteString(w, sb.String())
			return err
		default:
			return fmt.Errorf("unknown format: %s (want ascii, png or rgba)", patternFormat)
		}
	})
}

// withOutput runs fn against --out, or stdout when it is empty.
func withOutput(fn func(io.Writer) error) error {
	if outPath == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", outPath)
	return nil
}

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
	fmt.Fprintln(w, "ID\tSHAPE\tTIME\tPARTICLES\tMODE\tSTEPS\tRESIDUAL")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t(%g,%g,%g,%g)\t%d\t%.4f\n",
			run.ID,
			run.Shape,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Mode.N, run.Mode.M, run.Mode.A, run.Mode.B,
			run.StepsTaken,
			run.Metrics["nodal_residual"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("shape: %s\n", meta.Shape)
	fmt.Printf("steps: %d\n\n", meta.StepsTaken)

	for _, name := range sortedKeys(series) {
		data := series[name]
		if len(data) == 0 {
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(strings.ReplaceAll(name, "_", " ")),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	snaps, err := st.LoadSnapshots(args[0])
	if err != nil {
		return err
	}
	if atStep >= 0 {
		snap, err := findSnapshot(snaps, atStep)
		if err != nil {
			return err
		}
		snaps = []sim.Snapshot{snap}
	}
	return withOutput(func(w io.Writer) error {
		return storage.WriteSnapshotsCSV(w, snaps)
	})
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return withOutput(func(w io.Writer) error {
		return st.ExportJSON(w, args[0])
	})
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, snap, err := loadSnapshot(args[0], atStep)
	if err != nil {
		return err
	}
	svg, err := export.ParticlesToSVG(snap.Particles, meta.Shape, meta.Aspect, svgSize, "#f4d58d")
	if err != nil {
		return err
	}
	return withOutput(func(w io.Writer) error {
		_, err := io.WriteString(w, svg)
		return err
	})
}

func densityRun(cmd *cobra.Command, args []string) error {
	meta, snap, err := loadSnapshot(args[0], atStep)
	if err != nil {
		return err
	}

	grid := analysis.NewDensityGrid(snap.Particles, meta.Aspect, gridW, gridH)
	if grid == nil {
		return fmt.Errorf("invalid grid size %dx%d", gridW, gridH)
	}
	fmt.Printf("run: %s  step: %d  particles: %d\n\n", meta.ID, snap.Step, len(snap.Particles))
	fmt.Print(grid.ToASCII())
	fmt.Printf("\noccupancy: %.1f%%  peak cell: %.0f\n\n", grid.Occupancy()*100, grid.Max())

	prof := analysis.RadialProfile(snap.Particles, meta.Aspect, bins)
	if prof == nil {
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RADIUS\tDENSITY")
	for i, d := range prof.Density {
		fmt.Fprintf(w, "%.2f-%.2f\t%.4f\n", prof.Edges[i], prof.Edges[i+1], d)
	}
	return w.Flush()
}

func loadSnapshot(runID string, step int) (*storage.RunMetadata, sim.Snapshot, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, sim.Snapshot{}, err
	}
	snaps, err := st.LoadSnapshots(runID)
	if err != nil {
		return nil, sim.Snapshot{}, err
	}
	if len(snaps) == 0 {
		return nil, sim.Snapshot{}, fmt.Errorf("run %s has no snapshots", runID)
	}
	if step < 0 {
		return meta, snaps[len(snaps)-1], nil
	}
	snap, err := findSnapshot(snaps, step)
	return meta, snap, err
}

func findSnapshot(snaps []sim.Snapshot, step int) (sim.Snapshot, error) {
	available := make([]int, 0, len(snaps))
	for _, s := range snaps {
		if s.Step == step {
			return s, nil
		}
		available = append(available, s.Step)
	}
	return sim.Snapshot{}, fmt.Errorf("no snapshot at step %d (available: %v)", step, available)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSHAPE\tN\tM\tA\tB")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%g\t%g\n", name, p.Shape, p.Mode.N, p.Mode.M, p.Mode.A, p.Mode.B)
	}
	return w.Flush()
}

func listShapes(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tASPECT\tAREA")
	for _, s := range plate.Shapes() {
		a := plate.DefaultAspect(s)
		fmt.Fprintf(w, "%d\t%s\t%gx%g\t%.4f\n", uint8(s), s, a.X, a.Y, plate.Area(s, a))
	}
	return w.Flush()
}

func benchStep(cmd *cobra.Command, args []string) error {
	n := workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	mode := config.DefaultConfig().Mode
	params := config.DefaultConfig().Params()
	counts := []int{1000, 10000, 100000}

	fmt.Printf("benchmarking %d steps per run\n\n", benchSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SHAPE\tPARTICLES\tWORKERS\tTIME\tSTEPS/SEC\tPARTICLE-STEPS/SEC")

	for _, s := range []plate.Shape{plate.Square, plate.Circle, plate.Hexagon} {
		a := plate.DefaultAspect(s)
		for _, count := range counts {
			for _, wk := range []int{1, n} {
				src := dynamo.NewJitter(42)
				ps, err := plate.Seed(count, s, a, src)
				if err != nil {
					return err
				}
				stepper := integrators.NewParallelEuler(wk)

				start := time.Now()
				for i := 0; i < benchSteps; i++ {
					ps = stepper.Step(ps, mode, params, s, a, src)
				}
				elapsed := time.Since(start)

				perSec := float64(benchSteps) / elapsed.Seconds()
				fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.1f\t%.3g\n",
					s, count, wk, elapsed.Round(time.Microsecond), perSec, perSec*float64(count))
				if n == 1 {
					break
				}
			}
		}
	}
	return w.Flush()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
