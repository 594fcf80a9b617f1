package analysis

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/chladni/internal/dynamo"
	"github.com/san-kum/chladni/internal/plate"
)

// DensityGrid counts particles per cell over the plate's bounding box.
// Row 0 is the top of the plate.
type DensityGrid struct {
	Width, Height int
	Counts        []float64
}

func NewDensityGrid(ps dynamo.Particles, a plate.Aspect, width, height int) *DensityGrid {
	if width <= 0 || height <= 0 {
		return nil
	}
	g := &DensityGrid{
		Width:  width,
		Height: height,
		Counts: make([]float64, width*height),
	}
	for _, p := range ps {
		if !p.IsFinite() {
			continue
		}
		col := cell(p.X, a.X, width)
		row := height - 1 - cell(p.Y, a.Y, height)
		g.Counts[row*width+col]++
	}
	return g
}

// cell maps v in [-s, s] onto [0, n).
func cell(v, s float64, n int) int {
	if s == 0 {
		return n / 2
	}
	i := int((v + s) / (2 * s) * float64(n))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (g *DensityGrid) At(row, col int) float64 {
	return g.Counts[row*g.Width+col]
}

func (g *DensityGrid) Max() float64 {
	if len(g.Counts) == 0 {
		return 0
	}
	return floats.Max(g.Counts)
}

func (g *DensityGrid) Total() float64 {
	return floats.Sum(g.Counts)
}

// Occupancy is the fraction of cells holding at least one particle.
func (g *DensityGrid) Occupancy() float64 {
	if len(g.Counts) == 0 {
		return 0
	}
	n := 0
	for _, c := range g.Counts {
		if c > 0 {
			n++
		}
	}
	return float64(n) / float64(len(g.Counts))
}

var ramp = []rune(" .:-=+*#%@")

func (g *DensityGrid) ToASCII() string {
	max := g.Max()
	var sb strings.Builder
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			c := g.At(row, col)
			idx := 0
			if max > 0 && c > 0 {
				idx = 1 + int(c/max*float64(len(ramp)-2)+0.5)
				if idx >= len(ramp) {
					idx = len(ramp) - 1
				}
			}
			sb.WriteRune(ramp[idx])
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Converged reports whether the last window values of series stay within tol
// of each other.
func Converged(series []float64, window int, tol float64) bool {
	if window <= 0 || len(series) < window {
		return false
	}
	tail := series[len(series)-window:]
	for _, v := range tail {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return floats.Max(tail)-floats.Min(tail) <= tol
}
