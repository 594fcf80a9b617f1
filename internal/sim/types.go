package sim

import (
	"fmt"

	"github.com/san-kum/chladni/internal/dynamo"
	"github.com/san-kum/chladni/internal/physics"
	"github.com/san-kum/chladni/internal/plate"
)

// Stepper advances a particle collection by one time step.
type Stepper interface {
	Step(ps dynamo.Particles, mode physics.Mode, params dynamo.StepParams, s plate.Shape, a plate.Aspect, src dynamo.JitterSource) dynamo.Particles
}

// Metric observes consecutive collections and reports its latest value.
type Metric interface {
	Name() string
	Observe(prev, next dynamo.Particles)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(step int, ps dynamo.Particles)
}

type Config struct {
	Shape         plate.Shape
	Aspect        plate.Aspect
	Particles     int
	Mode          physics.Mode
	Params        dynamo.StepParams
	Steps         int
	Seed          uint64
	SnapshotEvery int
}

func (c Config) Validate() error {
	if c.Particles < 0 {
		return fmt.Errorf("%w: particle count %d", dynamo.ErrInvalidConfig, c.Particles)
	}
	if !c.Shape.Valid() {
		return fmt.Errorf("%w: %d", dynamo.ErrInvalidShape, uint8(c.Shape))
	}
	if !c.Aspect.Valid() {
		return fmt.Errorf("%w: aspect %+v", dynamo.ErrInvalidConfig, c.Aspect)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", dynamo.ErrInvalidConfig, c.Steps)
	}
	if c.SnapshotEvery < 0 {
		return fmt.Errorf("%w: snapshot interval must be non-negative, got %d", dynamo.ErrInvalidConfig, c.SnapshotEvery)
	}
	return nil
}

// Snapshot is the collection after Step steps.
type Snapshot struct {
	Step      int              `json:"step"`
	Particles dynamo.Particles `json:"particles"`
}

type Result struct {
	Snapshots  []Snapshot
	Final      dynamo.Particles
	Series     map[string][]float64
	Metrics    map[string]float64
	StepsTaken int
	Rejected   int
}
