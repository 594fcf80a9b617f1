package plate

import (
	"math"

	"github.com/san-kum/chladni/internal/dynamo"
)

// hexEps absorbs rounding in the half-plane tests so projected boundary
// points always test inside.
const hexEps = 1e-12

var (
	hexApothem  = math.Sqrt(3) / 2
	hexNormals  [6][2]float64
	hexVertices [6][2]float64
	shrink      = [...]float64{1 - 1e-12, 1 - 1e-9, 1 - 1e-6}
)

func init() {
	for k := 0; k < 6; k++ {
		s, c := math.Sincos(math.Pi/6 + float64(k)*math.Pi/3)
		hexNormals[k] = [2]float64{c, s}
		s, c = math.Sincos(float64(k) * math.Pi / 3)
		hexVertices[k] = [2]float64{c, s}
	}
}

// Contains reports whether p lies on the plate (boundary inclusive).
func Contains(s Shape, p dynamo.Particle, a Aspect) bool {
	if !p.IsFinite() {
		return false
	}
	switch s {
	case Square, RectangleWide, RectangleTall:
		return math.Abs(p.X) <= a.X && math.Abs(p.Y) <= a.Y
	case Circle:
		u, v, ok := normalize(p, a)
		return ok && u*u+v*v <= 1
	case Hexagon:
		u, v, ok := normalize(p, a)
		return ok && inHexagon(u, v)
	}
	return false
}

// Correct returns p if it is on the plate, otherwise the clamped position.
// The result always satisfies Contains for a valid aspect: when projection
// cannot produce an inside point, prev is used, then the centroid.
func Correct(s Shape, p, prev dynamo.Particle, a Aspect) dynamo.Particle {
	if Contains(s, p, a) {
		return p
	}
	if p.IsFinite() {
		q := project(s, p, a)
		if Contains(s, q, a) {
			return q
		}
		for _, f := range shrink {
			r := dynamo.Particle{X: q.X * f, Y: q.Y * f}
			if Contains(s, r, a) {
				return r
			}
		}
	}
	if Contains(s, prev, a) {
		return prev
	}
	return dynamo.Particle{}
}

func project(s Shape, p dynamo.Particle, a Aspect) dynamo.Particle {
	switch s {
	case Square, RectangleWide, RectangleTall:
		return dynamo.Particle{X: clamp(p.X, -a.X, a.X), Y: clamp(p.Y, -a.Y, a.Y)}
	}

	u, v := scaleDown(p.X, a.X), scaleDown(p.Y, a.Y)
	switch s {
	case Circle:
		if r := math.Hypot(u, v); r > 1 {
			u, v = u/r, v/r
		}
	case Hexagon:
		u, v = nearestOnHexagon(u, v)
	}
	return dynamo.Particle{X: u * a.X, Y: v * a.Y}
}

func inHexagon(u, v float64) bool {
	for _, n := range hexNormals {
		if !(u*n[0]+v*n[1] <= hexApothem+hexEps) {
			return false
		}
	}
	return true
}

func nearestOnHexagon(u, v float64) (float64, float64) {
	if inHexagon(u, v) {
		return u, v
	}
	best := math.Inf(1)
	var bu, bv float64
	for k := 0; k < 6; k++ {
		p0, p1 := hexVertices[k], hexVertices[(k+1)%6]
		ex, ey := p1[0]-p0[0], p1[1]-p0[1]
		t := ((u-p0[0])*ex + (v-p0[1])*ey) / (ex*ex + ey*ey)
		t = clamp(t, 0, 1)
		cu, cv := p0[0]+t*ex, p0[1]+t*ey
		if d := (u-cu)*(u-cu) + (v-cv)*(v-cv); d < best {
			best, bu, bv = d, cu, cv
		}
	}
	return bu, bv
}

// normalize maps p into the unit shape's frame. A zero scale collapses its
// axis: only coordinate 0 is on the plate there.
func normalize(p dynamo.Particle, a Aspect) (u, v float64, ok bool) {
	if u, ok = axis(p.X, a.X); !ok {
		return 0, 0, false
	}
	v, ok = axis(p.Y, a.Y)
	return u, v, ok
}

func axis(c, s float64) (float64, bool) {
	if s == 0 {
		return 0, c == 0
	}
	return c / s, true
}

func scaleDown(c, s float64) float64 {
	if s == 0 {
		return 0
	}
	return c / s
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
