package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/san-kum/chladni/internal/dynamo"
	"github.com/san-kum/chladni/internal/integrators"
	"github.com/san-kum/chladni/internal/physics"
	"github.com/san-kum/chladni/internal/plate"
)

// Engine exposes the two flat-buffer entry points. All particle state is
// passed in and returned on every call; the engine owns only the jitter
// source, so it is not safe for concurrent use.
type Engine struct {
	src     dynamo.JitterSource
	stepper Stepper
}

func NewEngine(seed uint64) *Engine {
	return &Engine{src: dynamo.NewJitter(seed), stepper: integrators.NewEuler()}
}

// NewEngineWith uses a caller-supplied jitter source and stepper.
func NewEngineWith(src dynamo.JitterSource, stepper Stepper) *Engine {
	return &Engine{src: src, stepper: stepper}
}

// InitParticles seeds count particles on the plate and returns them as
// [x0, y0, x1, y1, ...].
func (e *Engine) InitParticles(count int, shape plate.Shape, scaleX, scaleY float64) ([]float64, error) {
	ps, err := plate.Seed(count, shape, plate.Aspect{X: scaleX, Y: scaleY}, e.src)
	if err != nil {
		return nil, err
	}
	return ps.Flatten(), nil
}

// UpdateParticles integrates one step over a flat buffer. Malformed buffers,
// unknown shapes and invalid scale factors are refused. Non-finite or
// negative step scalars leave the particles where they are.
func (e *Engine) UpdateParticles(flat []float64, n, m, a, b, dt, kForce float64, shape plate.Shape, scaleX, scaleY, jitter float64) ([]float64, error) {
	if !shape.Valid() {
		return nil, fmt.Errorf("%w: %d", dynamo.ErrInvalidShape, uint8(shape))
	}
	aspect := plate.Aspect{X: scaleX, Y: scaleY}
	if !aspect.Valid() {
		return nil, fmt.Errorf("%w: aspect %+v", dynamo.ErrInvalidConfig, aspect)
	}
	ps, err := dynamo.FromFlat(flat)
	if err != nil {
		return nil, err
	}

	mode := physics.Mode{N: n, M: m, A: a, B: b}
	params := dynamo.StepParams{Dt: dt, KForce: kForce, Jitter: jitter}
	return e.stepper.Step(ps, mode, params, shape, aspect, e.src).Flatten(), nil
}

var (
	defaultMu     sync.Mutex
	defaultEngine = NewEngine(uint64(time.Now().UnixNano()))
)

// InitParticles calls Engine.InitParticles on a shared, time-seeded engine.
func InitParticles(count int, shape plate.Shape, scaleX, scaleY float64) ([]float64, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultEngine.InitParticles(count, shape, scaleX, scaleY)
}

// UpdateParticles calls Engine.UpdateParticles on the shared engine.
func UpdateParticles(flat []float64, n, m, a, b, dt, kForce float64, shape plate.Shape, scaleX, scaleY, jitter float64) ([]float64, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultEngine.UpdateParticles(flat, n, m, a, b, dt, kForce, shape, scaleX, scaleY, jitter)
}
