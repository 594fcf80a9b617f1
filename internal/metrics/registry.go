package metrics

import (
	"fmt"
	"sort"

	"github.com/san-kum/chladni/internal/dynamo"
	"github.com/san-kum/chladni/internal/physics"
	"github.com/san-kum/chladni/internal/plate"
)

// Metric mirrors sim.Metric so this package does not import sim.
type Metric interface {
	Name() string
	Observe(prev, next dynamo.Particles)
	Value() float64
	Reset()
}

type factory func(physics.Mode, plate.Shape, plate.Aspect) Metric

var registry = map[string]factory{
	"nodal_residual": func(m physics.Mode, _ plate.Shape, a plate.Aspect) Metric { return NewNodalResidual(m, a) },
	"spread":         func(m physics.Mode, _ plate.Shape, a plate.Aspect) Metric { return NewSpread(m, a) },
	"displacement":   func(physics.Mode, plate.Shape, plate.Aspect) Metric { return NewDisplacement() },
	"containment":    func(_ physics.Mode, s plate.Shape, a plate.Aspect) Metric { return NewContainment(s, a) },
}

// Names lists the registered metrics in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Get(name string, mode physics.Mode, s plate.Shape, a plate.Aspect) (Metric, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(mode, s, a), nil
}

// Defaults returns every registered metric for a run.
func Defaults(mode physics.Mode, s plate.Shape, a plate.Aspect) []Metric {
	out := make([]Metric, 0, len(registry))
	for _, name := range Names() {
		m, _ := Get(name, mode, s, a)
		out = append(out, m)
	}
	return out
}
