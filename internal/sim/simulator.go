package sim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/chladni/internal/dynamo"
	"github.com/san-kum/chladni/internal/integrators"
	"github.com/san-kum/chladni/internal/plate"
)

// Simulator drives repeated stateless steps for a batch run. It keeps no
// particle state between runs.
type Simulator struct {
	stepper   Stepper
	metrics   []Metric
	observers []Observer
	logger    *slog.Logger
	strict    bool
}

func New(stepper Stepper, logger *slog.Logger) *Simulator {
	if stepper == nil {
		stepper = integrators.NewEuler()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{
		stepper:   stepper,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    logger,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// SetStrict makes Run fail with ErrStepRejected instead of counting steps
// that left the collection unchanged.
func (s *Simulator) SetStrict(strict bool) { s.strict = strict }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	src := dynamo.NewJitter(cfg.Seed)
	ps, err := plate.Seed(cfg.Particles, cfg.Shape, cfg.Aspect, src)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Snapshots: make([]Snapshot, 0),
		Series:    make(map[string][]float64),
		Metrics:   make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
		result.Series[m.Name()] = make([]float64, 0, cfg.Steps)
	}

	s.logger.Info("simulation started",
		"shape", cfg.Shape.String(),
		"particles", cfg.Particles,
		"steps", cfg.Steps,
		"n", cfg.Mode.N, "m", cfg.Mode.M,
		"seed", cfg.Seed,
	)

	s.snapshot(result, cfg, 0, ps)

	accepted := integrators.Accepts(cfg.Mode, cfg.Params, cfg.Shape, cfg.Aspect)
	for i := 1; i <= cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			result.Final = ps
			return result, &dynamo.SimulationError{Step: i, Wrapped: fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())}
		default:
		}

		if !accepted && s.strict {
			result.Final = ps
			return result, &dynamo.SimulationError{Step: i, Wrapped: dynamo.ErrStepRejected}
		}
		next := s.stepper.Step(ps, cfg.Mode, cfg.Params, cfg.Shape, cfg.Aspect, src)
		if !accepted {
			result.Rejected++
			s.logger.Debug("step rejected", "step", i, "error", dynamo.ErrStepRejected)
		}

		for _, m := range s.metrics {
			m.Observe(ps, next)
			result.Series[m.Name()] = append(result.Series[m.Name()], m.Value())
		}
		for _, o := range s.observers {
			o.OnStep(i, next)
		}

		ps = next
		result.StepsTaken++
		s.snapshot(result, cfg, i, ps)
	}

	result.Final = ps
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Info("simulation finished", "steps", result.StepsTaken, "rejected", result.Rejected)
	return result, nil
}

func (s *Simulator) snapshot(result *Result, cfg Config, step int, ps dynamo.Particles) {
	if cfg.SnapshotEvery <= 0 {
		if step != 0 && step != cfg.Steps {
			return
		}
	} else if step%cfg.SnapshotEvery != 0 && step != cfg.Steps {
		return
	}
	result.Snapshots = append(result.Snapshots, Snapshot{Step: step, Particles: ps.Clone()})
}
