package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/chladni/internal/dynamo"
	"github.com/san-kum/chladni/internal/plate"
)

// Displacement is the mean distance a particle moved in the last step.
type Displacement struct {
	buf   []float64
	value float64
	max   float64
}

func NewDisplacement() *Displacement {
	return &Displacement{}
}

func (d *Displacement) Name() string { return "displacement" }

func (d *Displacement) Observe(prev, next dynamo.Particles) {
	n := len(next)
	if len(prev) < n {
		n = len(prev)
	}
	if n == 0 {
		d.value = 0
		return
	}
	d.buf = d.buf[:0]
	for i := 0; i < n; i++ {
		d.buf = append(d.buf, math.Hypot(next[i].X-prev[i].X, next[i].Y-prev[i].Y))
	}
	d.value = stat.Mean(d.buf, nil)
	d.max = math.Max(d.max, floats.Max(d.buf))
}

func (d *Displacement) Value() float64 { return d.value }

// Max is the largest single-particle step seen since Reset.
func (d *Displacement) Max() float64 { return d.max }

func (d *Displacement) Reset() {
	d.value = 0
	d.max = 0
}

// Containment is the fraction of particles on the plate. Anything below 1
// is a bug in the domain policy.
type Containment struct {
	shape  plate.Shape
	aspect plate.Aspect
	value  float64
}

func NewContainment(s plate.Shape, a plate.Aspect) *Containment {
	return &Containment{shape: s, aspect: a, value: 1}
}

func (c *Containment) Name() string { return "containment" }

func (c *Containment) Observe(_, next dynamo.Particles) {
	if len(next) == 0 {
		c.value = 1
		return
	}
	in := 0
	for _, p := range next {
		if plate.Contains(c.shape, p, c.aspect) {
			in++
		}
	}
	c.value = float64(in) / float64(len(next))
}

func (c *Containment) Value() float64 { return c.value }

func (c *Containment) Reset() { c.value = 1 }
