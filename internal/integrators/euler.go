package integrators

import (
	"github.com/san-kum/chladni/internal/dynamo"
	"github.com/san-kum/chladni/internal/physics"
	"github.com/san-kum/chladni/internal/plate"
)

// defaultMinChunk keeps goroutine overhead below the per-particle work.
const defaultMinChunk = 256

// Euler advances particles with an explicit forward-Euler step down the
// gradient of the squared field height, plus per-axis uniform jitter.
//
// With Workers > 1 the collection is split into chunks, each drawing jitter
// from its own source derived from the caller's source before fan-out.
type Euler struct {
	Workers  int
	MinChunk int
}

func NewEuler() *Euler {
	return &Euler{}
}

func NewParallelEuler(workers int) *Euler {
	return &Euler{Workers: workers, MinChunk: defaultMinChunk}
}

// Accepts reports whether a step with these inputs would move particles.
// Rejected steps return the input collection unchanged.
func Accepts(mode physics.Mode, params dynamo.StepParams, s plate.Shape, a plate.Aspect) bool {
	return mode.IsFinite() && params.Valid() && s.Valid() && a.Valid()
}

// Step returns the next collection. The input is never mutated; the output
// has the same length and order and every particle lies on the plate. src
// may be nil when params.Jitter is zero.
func (e *Euler) Step(ps dynamo.Particles, mode physics.Mode, params dynamo.StepParams, s plate.Shape, a plate.Aspect, src dynamo.JitterSource) dynamo.Particles {
	if !Accepts(mode, params, s, a) {
		return ps.Clone()
	}

	next := make(dynamo.Particles, len(ps))
	if params.Jitter == 0 {
		src = nil
	}

	if e.Workers <= 1 {
		advance(ps, next, 0, len(ps), mode, params, s, a, src)
		return next
	}

	minChunk := e.MinChunk
	if minChunk <= 0 {
		minChunk = defaultMinChunk
	}
	bounds := dynamo.Chunks(len(ps), e.Workers, minChunk)
	srcs := make([]dynamo.JitterSource, len(bounds))
	if src != nil {
		srcs = dynamo.Split(src, len(bounds))
	}

	dynamo.ParallelFor(len(ps), e.Workers, minChunk, func(k, start, end int) {
		advance(ps, next, start, end, mode, params, s, a, srcs[k])
	})
	return next
}

func advance(ps, next dynamo.Particles, start, end int, mode physics.Mode, params dynamo.StepParams, s plate.Shape, a plate.Aspect, src dynamo.JitterSource) {
	j := params.Jitter
	for i := start; i < end; i++ {
		p := ps[i]

		// Field lives on the unit domain; chain rule back to plate units.
		gu, gv := physics.PotentialGradient(unscale(p.X, a.X), unscale(p.Y, a.Y), mode)
		fx := -params.KForce * unscale(gu, a.X)
		fy := -params.KForce * unscale(gv, a.Y)

		var jx, jy float64
		if src != nil {
			jx = src.Uniform(-j, j)
			jy = src.Uniform(-j, j)
		}

		q := dynamo.Particle{
			X: p.X + params.Dt*(fx+jx),
			Y: p.Y + params.Dt*(fy+jy),
		}
		next[i] = plate.Correct(s, q, p, a)
	}
}

func unscale(v, scale float64) float64 {
	if scale == 0 {
		return 0
	}
	return v / scale
}
