package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/chladni/internal/dynamo"
	"github.com/san-kum/chladni/internal/physics"
	"github.com/san-kum/chladni/internal/plate"
)

// heights fills buf with |h| at each particle, evaluated in normalized plate
// coordinates.
func heights(buf []float64, ps dynamo.Particles, mode physics.Mode, a plate.Aspect) []float64 {
	buf = buf[:0]
	for _, p := range ps {
		u, v := 0.0, 0.0
		if a.X != 0 {
			u = p.X / a.X
		}
		if a.Y != 0 {
			v = p.Y / a.Y
		}
		buf = append(buf, math.Abs(physics.Height(u, v, mode)))
	}
	return buf
}

// NodalResidual is the mean |h| over all particles; it falls toward zero as
// the pattern forms.
type NodalResidual struct {
	mode   physics.Mode
	aspect plate.Aspect
	buf    []float64
	value  float64
}

func NewNodalResidual(mode physics.Mode, a plate.Aspect) *NodalResidual {
	return &NodalResidual{mode: mode, aspect: a}
}

func (n *NodalResidual) Name() string { return "nodal_residual" }

func (n *NodalResidual) Observe(_, next dynamo.Particles) {
	if len(next) == 0 {
		n.value = 0
		return
	}
	n.buf = heights(n.buf, next, n.mode, n.aspect)
	n.value = stat.Mean(n.buf, nil)
}

func (n *NodalResidual) Value() float64 { return n.value }

func (n *NodalResidual) Reset() { n.value = 0 }

// Spread is the standard deviation of |h| over all particles.
type Spread struct {
	mode   physics.Mode
	aspect plate.Aspect
	buf    []float64
	value  float64
}

func NewSpread(mode physics.Mode, a plate.Aspect) *Spread {
	return &Spread{mode: mode, aspect: a}
}

func (s *Spread) Name() string { return "spread" }

func (s *Spread) Observe(_, next dynamo.Particles) {
	if len(next) < 2 {
		s.value = 0
		return
	}
	s.buf = heights(s.buf, next, s.mode, s.aspect)
	s.value = stat.StdDev(s.buf, nil)
}

func (s *Spread) Value() float64 { return s.value }

func (s *Spread) Reset() { s.value = 0 }
