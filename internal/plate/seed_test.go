package plate_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chladni/internal/dynamo"
	"github.com/san-kum/chladni/internal/plate"
)

var _ = Describe("Seed", func() {
	It("places every particle on the plate", func() {
		for _, s := range plate.Shapes() {
			a := plate.DefaultAspect(s)
			ps, err := plate.Seed(2000, s, a, dynamo.NewJitter(3))
			Expect(err).NotTo(HaveOccurred())
			Expect(ps).To(HaveLen(2000))
			for _, p := range ps {
				Expect(plate.Contains(s, p, a)).To(BeTrue(), "%s: %+v", s, p)
			}
		}
	})

	It("spreads particles over the domain rather than the fallback", func() {
		ps, err := plate.Seed(500, plate.Hexagon, unit, dynamo.NewJitter(5))
		Expect(err).NotTo(HaveOccurred())
		atCentre := 0
		for _, p := range ps {
			if p == (dynamo.Particle{}) {
				atCentre++
			}
		}
		Expect(atCentre).To(BeNumerically("<", 5))
	})

	It("is reproducible for a fixed seed", func() {
		a, _ := plate.Seed(50, plate.Circle, unit, dynamo.NewJitter(9))
		b, _ := plate.Seed(50, plate.Circle, unit, dynamo.NewJitter(9))
		Expect(a).To(Equal(b))
	})

	It("returns an empty collection for zero particles", func() {
		ps, err := plate.Seed(0, plate.Square, unit, dynamo.NewJitter(1))
		Expect(err).NotTo(HaveOccurred())
		Expect(ps).To(BeEmpty())
	})

	It("terminates on a degenerate domain", func() {
		ps, err := plate.Seed(100, plate.Hexagon, plate.Aspect{}, dynamo.NewJitter(1))
		Expect(err).NotTo(HaveOccurred())
		Expect(ps).To(HaveLen(100))
		for _, p := range ps {
			Expect(p.X).To(BeZero())
			Expect(p.Y).To(BeZero())
		}
	})

	DescribeTable("refuses invalid configuration",
		func(count int, s plate.Shape, a plate.Aspect, target error) {
			_, err := plate.Seed(count, s, a, dynamo.NewJitter(1))
			Expect(errors.Is(err, target)).To(BeTrue(), "got %v", err)
		},
		Entry("negative count", -1, plate.Square, unit, dynamo.ErrInvalidConfig),
		Entry("unknown shape", 10, plate.Shape(9), unit, dynamo.ErrInvalidShape),
		Entry("negative scale", 10, plate.Circle, plate.Aspect{X: -1, Y: 1}, dynamo.ErrInvalidConfig),
	)
})
