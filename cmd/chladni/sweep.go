package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/chladni/internal/config"
	"github.com/san-kum/chladni/internal/integrators"
	"github.com/san-kum/chladni/internal/metrics"
	"github.com/san-kum/chladni/internal/optim"
	"github.com/san-kum/chladni/internal/sim"
)

var (
	sweepParams []string
	sweepMetric string
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sweep",
		Short:   "grid search over mode and step parameters",
		Example: "  chladni sweep --param n=1,2,3 --param k_force=0.1,0.2 --steps 200",
		Args:    cobra.NoArgs,
		RunE:    runSweep,
	}
	addPlateFlags(cmd)
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps per trial")
	cmd.Flags().StringArrayVar(&sweepParams, "param", nil, "name=v1,v2,... (repeatable)")
	cmd.Flags().StringVar(&sweepMetric, "metric", "nodal_residual", "metric to minimize")
	return cmd
}

func parseSweep(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, arg := range specs {
		name, list, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, nil, fmt.Errorf("invalid --param %q (want name=v1,v2)", arg)
		}
		values := make([]float64, 0)
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("parameter %s: %w", name, err)
			}
			values = append(values, v)
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	names, ranges, err := parseSweep(sweepParams)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no parameters to sweep (use --param, known: %v)", optim.Parameters())
	}
	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	// Per-trial logs only show up at debug level.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		logger = slog.Default()
	}
	run := func(ctx context.Context, sc sim.Config) (*sim.Result, error) {
		s := sim.New(integrators.NewParallelEuler(cfg.Workers), logger)
		s.SetStrict(true)
		for _, m := range metrics.Defaults(sc.Mode, sc.Shape, sc.Aspect) {
			s.AddMetric(m)
		}
		return s.Run(ctx, sc)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %d configurations, minimizing %s\n\n", g.Size(), sweepMetric)
	best, value, trials, err := g.Search(ctx, cfg.ToSimConfig(), run, sweepMetric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(sweepMetric))
	for _, tr := range trials {
		cells := make([]string, 0, len(names)+1)
		for _, name := range names {
			cells = append(cells, strconv.FormatFloat(tr.Params[name], 'g', -1, 64))
		}
		if tr.Err != nil {
			cells = append(cells, "error: "+tr.Err.Error())
		} else {
			cells = append(cells, fmt.Sprintf("%.6f", tr.Value))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%g", name, best[name]))
	}
	fmt.Printf("\nbest: %s (%s %.6f)\n", strings.Join(parts, " "), sweepMetric, value)
	return nil
}
