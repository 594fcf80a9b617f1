package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/chladni/internal/dynamo"
	"github.com/san-kum/chladni/internal/plate"
)

type Profile struct {
	// Edges has len(Density)+1 entries in normalized radius.
	Edges   []float64
	Density []float64
}

// RadialProfile bins particles by normalized radius hypot(x/sx, y/sy) and
// divides each bin by its annulus area, so a uniform disc gives a flat
// profile.
func RadialProfile(ps dynamo.Particles, a plate.Aspect, bins int) *Profile {
	if bins <= 0 {
		return nil
	}
	r := make([]float64, 0, len(ps))
	for _, p := range ps {
		if !p.IsFinite() {
			continue
		}
		u, v := 0.0, 0.0
		if a.X != 0 {
			u = p.X / a.X
		}
		if a.Y != 0 {
			v = p.Y / a.Y
		}
		r = append(r, math.Hypot(u, v))
	}

	limit := 1.0
	if len(r) > 0 {
		limit = math.Max(limit, floats.Max(r))
	}
	limit = math.Nextafter(limit, math.Inf(1))

	edges := make([]float64, bins+1)
	floats.Span(edges, 0, limit)
	counts := make([]float64, bins)
	if len(r) > 0 {
		sort.Float64s(r)
		stat.Histogram(counts, edges, r, nil)
	}

	n := float64(len(r))
	for i := range counts {
		area := math.Pi * (edges[i+1]*edges[i+1] - edges[i]*edges[i])
		if n > 0 && area > 0 {
			counts[i] /= n * area
		}
	}
	return &Profile{Edges: edges, Density: counts}
}
