package dynamo

import (
	"fmt"
	"math"
)

// Particle is a position in the plate-local coordinate frame.
type Particle struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsFinite reports whether both coordinates are finite.
func (p Particle) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

// Particles is the ordered particle collection. Index i refers to the same
// logical particle for the whole run.
type Particles []Particle

func (ps Particles) Clone() Particles {
	c := make(Particles, len(ps))
	copy(c, ps)
	return c
}

func (ps Particles) IsValid() bool {
	for _, p := range ps {
		if !p.IsFinite() {
			return false
		}
	}
	return true
}

// Flatten lays the collection out as [x0, y0, x1, y1, ...].
func (ps Particles) Flatten() []float64 {
	flat := make([]float64, 2*len(ps))
	for i, p := range ps {
		flat[2*i] = p.X
		flat[2*i+1] = p.Y
	}
	return flat
}

// FromFlat parses an interleaved coordinate buffer.
func FromFlat(flat []float64) (Particles, error) {
	if len(flat)%2 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrOddBuffer, len(flat))
	}
	ps := make(Particles, len(flat)/2)
	for i := range ps {
		ps[i] = Particle{X: flat[2*i], Y: flat[2*i+1]}
	}
	return ps, nil
}

// StepParams are the externally supplied integration scalars.
type StepParams struct {
	Dt     float64
	KForce float64
	Jitter float64
}

// Valid reports whether every parameter is finite and non-negative.
func (p StepParams) Valid() bool {
	for _, v := range []float64{p.Dt, p.KForce, p.Jitter} {
		if !isFinite(v) || v < 0 {
			return false
		}
	}
	return true
}

// JitterSource supplies the per-axis noise drawn during a step.
type JitterSource interface {
	// Uniform returns a sample from [lo, hi).
	Uniform(lo, hi float64) float64
	// Uint64 returns raw bits, used to derive independent child sources.
	Uint64() uint64
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsFinite reports whether every value is neither NaN nor Inf.
func IsFinite(vals ...float64) bool {
	for _, v := range vals {
		if !isFinite(v) {
			return false
		}
	}
	return true
}
