package optim

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/san-kum/chladni/internal/dynamo"
	"github.com/san-kum/chladni/internal/metrics"
	"github.com/san-kum/chladni/internal/physics"
	"github.com/san-kum/chladni/internal/plate"
	"github.com/san-kum/chladni/internal/sim"
)

func baseConfig() sim.Config {
	return sim.Config{
		Shape:     plate.Square,
		Aspect:    plate.Aspect{X: 1, Y: 1},
		Particles: 200,
		Mode:      physics.Mode{N: 2, M: 1, A: 1, B: 1},
		Params:    dynamo.StepParams{Dt: 0.01, KForce: 0.2},
		Steps:     100,
		Seed:      7,
	}
}

func TestApply(t *testing.T) {
	cfg, err := Apply(baseConfig(), map[string]float64{"n": 3, "k_force": 0.5, "jitter": 0.1})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode.N != 3 || cfg.Params.KForce != 0.5 || cfg.Params.Jitter != 0.1 {
		t.Errorf("parameters not applied: %+v", cfg)
	}
	if cfg.Mode.M != 1 {
		t.Error("untouched fields should keep their base value")
	}

	if _, err := Apply(baseConfig(), map[string]float64{"theta": 1}); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestNewGridSearchValidates(t *testing.T) {
	if _, err := NewGridSearch([]string{"n"}, nil); err == nil {
		t.Error("expected error for mismatched ranges")
	}
	if _, err := NewGridSearch([]string{"omega"}, [][]float64{{1}}); err == nil {
		t.Error("expected error for unknown parameter")
	}
	if _, err := NewGridSearch([]string{"n"}, [][]float64{{}}); err == nil {
		t.Error("expected error for empty range")
	}
}

func TestGridSearchFindsMinimum(t *testing.T) {
	g, err := NewGridSearch([]string{"n", "k_force"}, [][]float64{{1, 2, 3}, {0.1, 0.2}})
	if err != nil {
		t.Fatal(err)
	}
	if g.Size() != 6 {
		t.Errorf("expected 6 grid points, got %d", g.Size())
	}

	// Score is a known function of the parameters.
	run := func(_ context.Context, cfg sim.Config) (*sim.Result, error) {
		score := (cfg.Mode.N-2)*(cfg.Mode.N-2) + cfg.Params.KForce
		return &sim.Result{Metrics: map[string]float64{"score": score}}, nil
	}

	best, value, trials, err := g.Search(context.Background(), baseConfig(), run, "score")
	if err != nil {
		t.Fatal(err)
	}
	if best["n"] != 2 || best["k_force"] != 0.1 {
		t.Errorf("unexpected best %v", best)
	}
	if value != 0.1 {
		t.Errorf("expected 0.1, got %v", value)
	}
	if len(trials) != 6 {
		t.Errorf("expected 6 trials, got %d", len(trials))
	}
}

func TestGridSearchSkipsFailures(t *testing.T) {
	g, _ := NewGridSearch([]string{"n"}, [][]float64{{1, 2}})
	run := func(_ context.Context, cfg sim.Config) (*sim.Result, error) {
		if cfg.Mode.N == 1 {
			return nil, errors.New("boom")
		}
		return &sim.Result{Metrics: map[string]float64{"score": 5}}, nil
	}

	best, value, trials, err := g.Search(context.Background(), baseConfig(), run, "score")
	if err != nil {
		t.Fatal(err)
	}
	if best["n"] != 2 || value != 5 {
		t.Errorf("expected n=2 with 5, got %v %v", best, value)
	}
	if trials[0].Err == nil {
		t.Error("failed trial should carry its error")
	}

	_, _, _, err = g.Search(context.Background(), baseConfig(), run, "missing")
	if err == nil {
		t.Error("expected error when no trial records the metric")
	}
}

func TestGridSearchCanceled(t *testing.T) {
	g, _ := NewGridSearch([]string{"n"}, [][]float64{{1, 2, 3}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run := func(ctx context.Context, cfg sim.Config) (*sim.Result, error) {
		return &sim.Result{Metrics: map[string]float64{"score": 1}}, nil
	}
	if _, _, _, err := g.Search(ctx, baseConfig(), run, "score"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGridSearchWithSimulator(t *testing.T) {
	g, err := NewGridSearch([]string{"k_force"}, [][]float64{{0, 0.2}})
	if err != nil {
		t.Fatal(err)
	}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	run := func(ctx context.Context, cfg sim.Config) (*sim.Result, error) {
		s := sim.New(nil, quiet)
		s.AddMetric(metrics.NewNodalResidual(cfg.Mode, cfg.Aspect))
		return s.Run(ctx, cfg)
	}

	best, _, _, err := g.Search(context.Background(), baseConfig(), run, "nodal_residual")
	if err != nil {
		t.Fatal(err)
	}
	if best["k_force"] != 0.2 {
		t.Errorf("a pulling force should beat no force, got %v", best)
	}
}
