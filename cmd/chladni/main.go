package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/chladni/internal/config"
	"github.com/san-kum/chladni/internal/physics"
	"github.com/san-kum/chladni/internal/plate"
)

var (
	dataDir   string
	logLevel  string
	logFormat string

	configFile  string
	preset      string
	shapeName   string
	aspectX     float64
	aspectY     float64
	particles   int
	modeN       float64
	modeM       float64
	ampA        float64
	ampB        float64
	dt          float64
	kForce      float64
	jitter      float64
	steps       int
	seed        uint64
	workers     int
	snapEvery   int
	writeConfig string
	noSave      bool
	runs        int

	frameRate  int
	themeName  string
	benchSteps int

	patternWidth     int
	patternHeight    int
	patternThreshold float64
	patternFormat    string

	outPath string
	atStep  int
	svgSize int
	gridW   int
	gridH   int
	bins    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "chladni",
		Short:         "chladni plate particle simulation lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel, logFormat)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".chladni", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text|json)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a batch simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addPlateFlags(runCmd)
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	runCmd.Flags().IntVar(&snapEvery, "snapshot-every", 0, "record a snapshot every N steps (0: first and last only)")
	runCmd.Flags().StringVar(&writeConfig, "write-config", "", "write the effective config to this yaml file")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().IntVar(&runs, "runs", 1, "repeat the run under consecutive seeds in parallel")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal viewer",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addPlateFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().StringVar(&themeName, "theme", "brass", "color theme")

	patternCmd := &cobra.Command{
		Use:   "pattern",
		Short: "render the nodal pattern of a mode",
		Args:  cobra.NoArgs,
		RunE:  renderPattern,
	}
	patternCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	patternCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	patternCmd.Flags().Float64Var(&modeN, "n", 0, "mode number n")
	patternCmd.Flags().Float64Var(&modeM, "m", 0, "mode number m")
	patternCmd.Flags().Float64Var(&ampA, "a", 0, "amplitude a")
	patternCmd.Flags().Float64Var(&ampB, "b", 0, "amplitude b")
	patternCmd.Flags().IntVar(&patternWidth, "width", config.DefaultWidth, "width in pixels")
	patternCmd.Flags().IntVar(&patternHeight, "height", config.DefaultHeight, "height in pixels")
	patternCmd.Flags().Float64Var(&patternThreshold, "threshold", config.DefaultThreshold, "nodal threshold on |h|")
	patternCmd.Flags().StringVar(&patternFormat, "format", "ascii", "output format (ascii|png|rgba)")
	patternCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot metric series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export particle snapshots to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().IntVar(&atStep, "step", -1, "only this snapshot step (-1: all)")
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw a snapshot as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&atStep, "step", -1, "snapshot step (-1: last)")
	exportSVGCmd.Flags().IntVar(&svgSize, "size", 600, "longer side in pixels")
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	densityCmd := &cobra.Command{
		Use:   "density [run_id]",
		Short: "particle density of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  densityRun,
	}
	densityCmd.Flags().IntVar(&atStep, "step", -1, "snapshot step (-1: last)")
	densityCmd.Flags().IntVar(&gridW, "width", 60, "grid columns")
	densityCmd.Flags().IntVar(&gridH, "height", 30, "grid rows")
	densityCmd.Flags().IntVar(&bins, "bins", 8, "radial profile bins")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	shapesCmd := &cobra.Command{
		Use:   "shapes",
		Short: "list plate shapes",
		RunE:  listShapes,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the step",
		RunE:  benchStep,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 50, "steps per measurement")
	benchCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0: all CPUs)")

	rootCmd.AddCommand(runCmd, liveCmd, patternCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, densityCmd, presetsCmd, shapesCmd, benchCmd, newSweepCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addPlateFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&shapeName, "shape", def.Shape.String(), "plate shape")
	cmd.Flags().Float64Var(&aspectX, "aspect-x", 0, "plate half-width (0: shape default)")
	cmd.Flags().Float64Var(&aspectY, "aspect-y", 0, "plate half-height (0: shape default)")
	cmd.Flags().IntVar(&particles, "particles", def.Particles, "particle count")
	cmd.Flags().Float64Var(&modeN, "n", def.Mode.N, "mode number n")
	cmd.Flags().Float64Var(&modeM, "m", def.Mode.M, "mode number m")
	cmd.Flags().Float64Var(&ampA, "a", def.Mode.A, "amplitude a")
	cmd.Flags().Float64Var(&ampB, "b", def.Mode.B, "amplitude b")
	cmd.Flags().Float64Var(&dt, "dt", def.Dt, "time step")
	cmd.Flags().Float64Var(&kForce, "k", def.KForce, "force gain")
	cmd.Flags().Float64Var(&jitter, "jitter", def.Jitter, "jitter amplitude")
	cmd.Flags().Uint64Var(&seed, "seed", def.Seed, "random seed")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0: sequential)")
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("shape") {
		s, err := plate.ParseShape(shapeName)
		if err != nil {
			return nil, err
		}
		cfg.Shape = s
	}
	if flags.Changed("aspect-x") {
		cfg.Aspect.X = aspectX
	}
	if flags.Changed("aspect-y") {
		cfg.Aspect.Y = aspectY
	}
	if flags.Changed("particles") {
		cfg.Particles = particles
	}
	setMode(flags.Changed, &cfg.Mode)
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("k") {
		cfg.KForce = kForce
	}
	if flags.Changed("jitter") {
		cfg.Jitter = jitter
	}
	if flags.Lookup("steps") != nil && flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Lookup("snapshot-every") != nil && flags.Changed("snapshot-every") {
		cfg.SnapshotEvery = snapEvery
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setMode(changed func(string) bool, mode *physics.Mode) {
	if changed("n") {
		mode.N = modeN
	}
	if changed("m") {
		mode.M = modeM
	}
	if changed("a") {
		mode.A = ampA
	}
	if changed("b") {
		mode.B = ampB
	}
}

func setupLogging(level, format string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("invalid log format %q (want text or json)", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}
