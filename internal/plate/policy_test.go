package plate_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chladni/internal/dynamo"
	"github.com/san-kum/chladni/internal/plate"
)

var unit = plate.Aspect{X: 1, Y: 1}

var _ = Describe("Contains", func() {
	DescribeTable("membership on the unit aspect",
		func(s plate.Shape, x, y float64, inside bool) {
			Expect(plate.Contains(s, dynamo.Particle{X: x, Y: y}, unit)).To(Equal(inside))
		},
		Entry("square corner is inclusive", plate.Square, 1.0, 1.0, true),
		Entry("square just outside", plate.Square, 1.0001, 0.0, false),
		Entry("circle just inside", plate.Circle, 0.7071, 0.7071, true),
		Entry("circle outside diagonal", plate.Circle, 0.8, 0.8, false),
		Entry("circle on axis boundary", plate.Circle, 0.0, -1.0, true),
		Entry("hexagon vertex", plate.Hexagon, 1.0, 0.0, true),
		Entry("hexagon upper vertex", plate.Hexagon, 0.5, math.Sqrt(3)/2, true),
		Entry("hexagon below flat top", plate.Hexagon, 0.0, 0.86, true),
		Entry("hexagon above flat top", plate.Hexagon, 0.0, 0.87, false),
		Entry("hexagon outside slanted edge", plate.Hexagon, 0.76, 0.5, false),
		Entry("hexagon box corner", plate.Hexagon, 0.99, 0.99, false),
		Entry("NaN is never inside", plate.Square, math.NaN(), 0.0, false),
		Entry("NaN is never inside the circle", plate.Circle, math.NaN(), 0.0, false),
		Entry("NaN is never inside the hexagon", plate.Hexagon, math.NaN(), 0.0, false),
		Entry("NaN y is never inside the hexagon", plate.Hexagon, 0.0, math.NaN(), false),
		Entry("infinity is never inside the hexagon", plate.Hexagon, math.Inf(1), 0.0, false),
	)

	It("stretches the box by the aspect ratio", func() {
		wide := plate.DefaultAspect(plate.RectangleWide)
		Expect(plate.Contains(plate.RectangleWide, dynamo.Particle{X: 1.9, Y: 0.9}, wide)).To(BeTrue())
		Expect(plate.Contains(plate.RectangleWide, dynamo.Particle{X: 0.5, Y: 1.1}, wide)).To(BeFalse())

		tall := plate.DefaultAspect(plate.RectangleTall)
		Expect(plate.Contains(plate.RectangleTall, dynamo.Particle{X: 0.9, Y: 1.9}, tall)).To(BeTrue())
		Expect(plate.Contains(plate.RectangleTall, dynamo.Particle{X: 1.1, Y: 0}, tall)).To(BeFalse())
	})

	It("stretches the circle into an ellipse", func() {
		a := plate.Aspect{X: 2, Y: 1}
		Expect(plate.Contains(plate.Circle, dynamo.Particle{X: 1.9, Y: 0}, a)).To(BeTrue())
		Expect(plate.Contains(plate.Circle, dynamo.Particle{X: 0, Y: 1.1}, a)).To(BeFalse())
	})

	It("collapses a zero-scale axis onto the centre line", func() {
		a := plate.Aspect{X: 0, Y: 1}
		for _, s := range plate.Shapes() {
			Expect(plate.Contains(s, dynamo.Particle{X: 0, Y: 0.5}, a)).To(BeTrue(), s.String())
			Expect(plate.Contains(s, dynamo.Particle{X: 1e-9, Y: 0}, a)).To(BeFalse(), s.String())
		}
	})
})

var _ = Describe("Correct", func() {
	aspects := []plate.Aspect{
		{X: 1, Y: 1},
		{X: 2, Y: 1},
		{X: 1, Y: 2},
		{X: 0.3, Y: 1.7},
		{X: 0, Y: 1},
		{X: 0, Y: 0},
	}

	It("returns in-domain points unchanged", func() {
		p := dynamo.Particle{X: 0.1, Y: -0.2}
		for _, s := range plate.Shapes() {
			Expect(plate.Correct(s, p, dynamo.Particle{}, unit)).To(Equal(p))
		}
	})

	It("always lands inside the plate", func() {
		src := dynamo.NewJitter(11)
		for _, s := range plate.Shapes() {
			for _, a := range aspects {
				for i := 0; i < 500; i++ {
					p := dynamo.Particle{X: src.Uniform(-5, 5), Y: src.Uniform(-5, 5)}
					q := plate.Correct(s, p, dynamo.Particle{}, a)
					Expect(plate.Contains(s, q, a)).To(BeTrue(), "%s %+v: %+v -> %+v", s, a, p, q)
				}
			}
		}
	})

	It("clamps the box to the nearest edge point", func() {
		q := plate.Correct(plate.Square, dynamo.Particle{X: 1.5, Y: 0.3}, dynamo.Particle{}, unit)
		Expect(q.X).To(Equal(1.0))
		Expect(q.Y).To(Equal(0.3))
	})

	It("pulls circle points radially onto the rim", func() {
		q := plate.Correct(plate.Circle, dynamo.Particle{X: 3, Y: 4}, dynamo.Particle{}, unit)
		Expect(q.X).To(BeNumerically("~", 0.6, 1e-9))
		Expect(q.Y).To(BeNumerically("~", 0.8, 1e-9))
	})

	It("projects hexagon points onto the nearest edge", func() {
		q := plate.Correct(plate.Hexagon, dynamo.Particle{X: 0.2, Y: 2}, dynamo.Particle{}, unit)
		Expect(q.X).To(BeNumerically("~", 0.2, 1e-9))
		Expect(q.Y).To(BeNumerically("~", math.Sqrt(3)/2, 1e-9))

		v := plate.Correct(plate.Hexagon, dynamo.Particle{X: 3, Y: 0}, dynamo.Particle{}, unit)
		Expect(v.X).To(BeNumerically("~", 1, 1e-9))
		Expect(v.Y).To(BeNumerically("~", 0, 1e-9))
	})

	It("falls back to the previous position for non-finite input", func() {
		prev := dynamo.Particle{X: 0.25, Y: 0.25}
		q := plate.Correct(plate.Circle, dynamo.Particle{X: math.NaN(), Y: 0}, prev, unit)
		Expect(q).To(Equal(prev))
	})

	It("falls back to the centroid when nothing else is inside", func() {
		bad := dynamo.Particle{X: math.Inf(1), Y: 0}
		q := plate.Correct(plate.Hexagon, bad, bad, unit)
		Expect(q).To(Equal(dynamo.Particle{}))
	})
})
