package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/chladni/internal/sim"
)

// Runner runs one configuration and returns its result.
type Runner func(ctx context.Context, cfg sim.Config) (*sim.Result, error)

// Trial is one grid point and the metric it scored.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("got %d parameters but %d ranges", len(params), len(ranges))
	}
	for i, name := range params {
		if _, err := Apply(sim.Config{}, map[string]float64{name: 0}); err != nil {
			return nil, err
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("parameter %s has no values", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs every grid point on top of base and returns the point with
// the lowest final value of metricName, plus all trials in grid order.
// Failed trials are kept with their error and never win.
func (g *GridSearch) Search(ctx context.Context, base sim.Config, run Runner, metricName string) (map[string]float64, float64, []Trial, error) {
	best := math.Inf(1)
	var bestParams map[string]float64
	trials := make([]Trial, 0, g.Size())

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) error {
		trial := Trial{Params: params, Value: math.NaN()}
		cfg, err := Apply(base, params)
		if err == nil {
			var result *sim.Result
			result, err = run(ctx, cfg)
			if err == nil {
				v, ok := result.Metrics[metricName]
				if !ok {
					err = fmt.Errorf("metric %s not recorded", metricName)
				}
				trial.Value = v
			}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		trial.Err = err
		trials = append(trials, trial)
		if err == nil && trial.Value < best {
			best = trial.Value
			bestParams = params
		}
		return nil
	})
	if err != nil {
		return bestParams, best, trials, err
	}
	if bestParams == nil {
		return nil, best, trials, fmt.Errorf("no trial succeeded")
	}
	return bestParams, best, trials, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64) error) error {
	if depth == len(g.paramNames) {
		return visit(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, visit); err != nil {
			return err
		}
	}
	return nil
}

// Parameters lists the names Apply understands.
func Parameters() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var setters = map[string]func(*sim.Config, float64){
	"n":       func(c *sim.Config, v float64) { c.Mode.N = v },
	"m":       func(c *sim.Config, v float64) { c.Mode.M = v },
	"a":       func(c *sim.Config, v float64) { c.Mode.A = v },
	"b":       func(c *sim.Config, v float64) { c.Mode.B = v },
	"dt":      func(c *sim.Config, v float64) { c.Params.Dt = v },
	"k_force": func(c *sim.Config, v float64) { c.Params.KForce = v },
	"jitter":  func(c *sim.Config, v float64) { c.Params.Jitter = v },
}

// Apply returns base with the named parameters overridden.
func Apply(base sim.Config, params map[string]float64) (sim.Config, error) {
	cfg := base
	for name, v := range params {
		set, ok := setters[name]
		if !ok {
			return base, fmt.Errorf("unknown parameter: %s (known: %v)", name, Parameters())
		}
		set(&cfg, v)
	}
	return cfg, nil
}
