package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/chladni/internal/dynamo"
	"github.com/san-kum/chladni/internal/plate"
)

var unit = plate.Aspect{X: 1, Y: 1}

func TestDensityGridCounts(t *testing.T) {
	ps := dynamo.Particles{{X: -0.9, Y: 0.9}, {X: -0.9, Y: 0.9}, {X: 0.9, Y: -0.9}, {X: 1, Y: 1}}
	g := NewDensityGrid(ps, unit, 4, 4)

	if g.Total() != 4 {
		t.Errorf("expected 4 particles, got %v", g.Total())
	}
	if g.At(0, 0) != 2 {
		t.Errorf("expected 2 in top-left, got %v", g.At(0, 0))
	}
	if g.At(3, 3) != 1 {
		t.Errorf("expected 1 in bottom-right, got %v", g.At(3, 3))
	}
	if g.At(0, 3) != 1 {
		t.Errorf("boundary point should land in the top-right cell, got %v", g.At(0, 3))
	}
	if g.Max() != 2 {
		t.Errorf("expected max 2, got %v", g.Max())
	}
	if math.Abs(g.Occupancy()-3.0/16) > 1e-12 {
		t.Errorf("expected occupancy 3/16, got %v", g.Occupancy())
	}
}

func TestDensityGridSkipsNonFinite(t *testing.T) {
	ps := dynamo.Particles{{X: math.NaN(), Y: 0}, {X: 0, Y: 0}}
	g := NewDensityGrid(ps, unit, 3, 3)
	if g.Total() != 1 {
		t.Errorf("expected 1 counted particle, got %v", g.Total())
	}
}

func TestDensityGridInvalidSize(t *testing.T) {
	if NewDensityGrid(nil, unit, 0, 5) != nil {
		t.Error("expected nil grid for zero width")
	}
}

func TestToASCII(t *testing.T) {
	ps := dynamo.Particles{{X: -0.5, Y: 0.5}, {X: -0.5, Y: 0.5}, {X: 0.5, Y: -0.5}}
	out := NewDensityGrid(ps, unit, 2, 2).ToASCII()
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	if len(lines) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(lines))
	}
	if []rune(lines[0])[0] != '@' {
		t.Errorf("densest cell should use the last ramp rune, got %q", lines[0])
	}
	if []rune(lines[0])[1] != ' ' {
		t.Errorf("empty cell should be blank, got %q", lines[0])
	}
}

func TestRadialProfileUniformDisc(t *testing.T) {
	src := dynamo.NewJitter(5)
	ps, err := plate.Seed(20000, plate.Circle, unit, src)
	if err != nil {
		t.Fatal(err)
	}
	prof := RadialProfile(ps, unit, 4)
	if len(prof.Edges) != 5 || len(prof.Density) != 4 {
		t.Fatalf("unexpected profile shape: %d edges, %d bins", len(prof.Edges), len(prof.Density))
	}
	for i, d := range prof.Density {
		if math.Abs(d-1/math.Pi) > 0.05 {
			t.Errorf("bin %d: expected about %.3f, got %.3f", i, 1/math.Pi, d)
		}
	}
}

func TestRadialProfileEmpty(t *testing.T) {
	prof := RadialProfile(nil, unit, 3)
	for _, d := range prof.Density {
		if d != 0 {
			t.Error("empty collection should give a zero profile")
		}
	}
	if RadialProfile(nil, unit, 0) != nil {
		t.Error("expected nil for zero bins")
	}
}

func TestConverged(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
		window int
		tol    float64
		want   bool
	}{
		{"flat tail", []float64{5, 3, 1, 1.0005, 1.0001, 1}, 3, 1e-3, true},
		{"still moving", []float64{5, 4, 3, 2}, 3, 1e-3, false},
		{"too short", []float64{1}, 3, 1, false},
		{"zero window", []float64{1, 1}, 0, 1, false},
		{"nan", []float64{1, math.NaN(), 1}, 3, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Converged(tt.series, tt.window, tt.tol); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
