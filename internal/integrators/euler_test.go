package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/chladni/internal/dynamo"
	"github.com/san-kum/chladni/internal/physics"
	"github.com/san-kum/chladni/internal/plate"
)

func seed(t *testing.T, n int, s plate.Shape, a plate.Aspect) dynamo.Particles {
	t.Helper()
	ps, err := plate.Seed(n, s, a, dynamo.NewJitter(42))
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return ps
}

func TestEulerContainment(t *testing.T) {
	mode := physics.Mode{N: 4, M: 3, A: 1, B: -0.5}
	params := dynamo.StepParams{Dt: 0.05, KForce: 0.5, Jitter: 5}
	src := dynamo.NewJitter(7)
	integ := NewEuler()

	for _, s := range plate.Shapes() {
		a := plate.DefaultAspect(s)
		ps := seed(t, 300, s, a)
		for step := 0; step < 50; step++ {
			ps = integ.Step(ps, mode, params, s, a, src)
			if len(ps) != 300 {
				t.Fatalf("%s: step %d changed count to %d", s, step, len(ps))
			}
			for i, p := range ps {
				if !plate.Contains(s, p, a) {
					t.Fatalf("%s: step %d particle %d escaped: %+v", s, step, i, p)
				}
			}
		}
	}
}

func TestEulerZeroForceIsIdentity(t *testing.T) {
	a := plate.Aspect{X: 1, Y: 1}
	ps := seed(t, 100, plate.Circle, a)
	params := dynamo.StepParams{Dt: 3.5, KForce: 0, Jitter: 0}

	next := NewEuler().Step(ps, physics.Mode{N: 4, M: 4, A: 1, B: 1}, params, plate.Circle, a, nil)
	for i := range ps {
		if next[i] != ps[i] {
			t.Fatalf("particle %d moved: %+v -> %+v", i, ps[i], next[i])
		}
	}
}

func TestEulerDeterministicWithoutJitter(t *testing.T) {
	a := plate.DefaultAspect(plate.Hexagon)
	ps := seed(t, 200, plate.Hexagon, a)
	mode := physics.Mode{N: 3, M: 5, A: 1, B: 1}
	params := dynamo.StepParams{Dt: 0.01, KForce: 0.1}

	first := NewEuler().Step(ps, mode, params, plate.Hexagon, a, dynamo.NewJitter(1))
	second := NewEuler().Step(ps, mode, params, plate.Hexagon, a, dynamo.NewJitter(99))
	for i := range first {
		if math.Float64bits(first[i].X) != math.Float64bits(second[i].X) ||
			math.Float64bits(first[i].Y) != math.Float64bits(second[i].Y) {
			t.Fatalf("particle %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestEulerDoesNotMutateInput(t *testing.T) {
	a := plate.Aspect{X: 1, Y: 1}
	ps := seed(t, 50, plate.Square, a)
	orig := ps.Clone()

	NewEuler().Step(ps, physics.Mode{N: 2, M: 3, A: 1, B: 1}, dynamo.StepParams{Dt: 0.1, KForce: 1, Jitter: 1}, plate.Square, a, dynamo.NewJitter(3))
	for i := range ps {
		if ps[i] != orig[i] {
			t.Fatalf("input particle %d mutated", i)
		}
	}
}

func TestEulerRejectsNonFinite(t *testing.T) {
	a := plate.Aspect{X: 1, Y: 1}
	ps := seed(t, 20, plate.Circle, a)
	good := physics.Mode{N: 4, M: 4, A: 1, B: 1}
	nan := math.NaN()
	inf := math.Inf(1)

	tests := []struct {
		name   string
		mode   physics.Mode
		params dynamo.StepParams
		aspect plate.Aspect
	}{
		{"NaN n", physics.Mode{N: nan, M: 4, A: 1, B: 1}, dynamo.StepParams{Dt: 0.01, KForce: 1}, a},
		{"Inf b", physics.Mode{N: 4, M: 4, A: 1, B: inf}, dynamo.StepParams{Dt: 0.01, KForce: 1}, a},
		{"NaN dt", good, dynamo.StepParams{Dt: nan, KForce: 1}, a},
		{"Inf force", good, dynamo.StepParams{Dt: 0.01, KForce: inf}, a},
		{"NaN jitter", good, dynamo.StepParams{Dt: 0.01, KForce: 1, Jitter: nan}, a},
		{"negative dt", good, dynamo.StepParams{Dt: -0.01, KForce: 1}, a},
		{"NaN scale", good, dynamo.StepParams{Dt: 0.01, KForce: 1}, plate.Aspect{X: nan, Y: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := NewEuler().Step(ps, tt.mode, tt.params, plate.Circle, tt.aspect, dynamo.NewJitter(1))
			if len(next) != len(ps) {
				t.Fatalf("expected %d particles, got %d", len(ps), len(next))
			}
			for i := range ps {
				if next[i] != ps[i] {
					t.Fatalf("particle %d changed on rejected step", i)
				}
			}
		})
	}
}

func TestEulerDisplacementBounded(t *testing.T) {
	a := plate.Aspect{X: 1, Y: 1}
	ps := seed(t, 100, plate.Circle, a)
	mode := physics.Mode{N: 4, M: 4, A: 1, B: 1}
	params := dynamo.StepParams{Dt: 0.01, KForce: 0.01}

	next := NewEuler().Step(ps, mode, params, plate.Circle, a, nil)
	bound := params.Dt * params.KForce * physics.NewField(mode).MaxPotentialGradient()

	total := 0.0
	for i := range ps {
		d := math.Hypot(next[i].X-ps[i].X, next[i].Y-ps[i].Y)
		if d > bound+1e-12 {
			t.Errorf("particle %d moved %v, bound %v", i, d, bound)
		}
		total += d
	}
	if mean := total / float64(len(ps)); mean > bound {
		t.Errorf("mean displacement %v exceeds bound %v", mean, bound)
	}
}

func TestEulerSettlesOnNodalLines(t *testing.T) {
	a := plate.Aspect{X: 1, Y: 1}
	ps := seed(t, 400, plate.Square, a)
	mode := physics.Mode{N: 2, M: 1, A: 1, B: 1}
	params := dynamo.StepParams{Dt: 0.01, KForce: 0.2}

	residual := func(ps dynamo.Particles) float64 {
		sum := 0.0
		for _, p := range ps {
			sum += math.Abs(physics.Height(p.X, p.Y, mode))
		}
		return sum / float64(len(ps))
	}

	before := residual(ps)
	integ := NewEuler()
	for i := 0; i < 500; i++ {
		ps = integ.Step(ps, mode, params, plate.Square, a, nil)
	}
	after := residual(ps)

	if after > 0.5*before {
		t.Errorf("expected particles to approach nodal lines: residual %v -> %v", before, after)
	}
}

func TestParallelEulerMatchesSequentialWithoutJitter(t *testing.T) {
	a := plate.DefaultAspect(plate.RectangleWide)
	ps := seed(t, 2000, plate.RectangleWide, a)
	mode := physics.Mode{N: 5, M: 2, A: 1, B: -1}
	params := dynamo.StepParams{Dt: 0.01, KForce: 0.3}

	seq := NewEuler().Step(ps, mode, params, plate.RectangleWide, a, nil)
	par := NewParallelEuler(4).Step(ps, mode, params, plate.RectangleWide, a, nil)
	for i := range seq {
		if seq[i] != par[i] {
			t.Fatalf("particle %d differs: %+v vs %+v", i, seq[i], par[i])
		}
	}
}

func TestParallelEulerReproducibleWithJitter(t *testing.T) {
	a := plate.Aspect{X: 1, Y: 1}
	ps := seed(t, 2000, plate.Circle, a)
	mode := physics.Mode{N: 3, M: 3, A: 1, B: 0.5}
	params := dynamo.StepParams{Dt: 0.01, KForce: 0.3, Jitter: 0.8}

	first := NewParallelEuler(4).Step(ps, mode, params, plate.Circle, a, dynamo.NewJitter(5))
	second := NewParallelEuler(4).Step(ps, mode, params, plate.Circle, a, dynamo.NewJitter(5))
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("particle %d differs between identical runs", i)
		}
		if !plate.Contains(plate.Circle, first[i], a) {
			t.Fatalf("particle %d escaped", i)
		}
	}
}
