package plate

import (
	"fmt"

	"github.com/san-kum/chladni/internal/dynamo"
)

// MaxSeedAttempts caps rejection-sampling draws per particle.
const MaxSeedAttempts = 64

// Seed places count particles uniformly at random on the plate by rejection
// sampling inside the bounding box. A particle that is not accepted within
// MaxSeedAttempts draws is placed at the centroid.
func Seed(count int, s Shape, a Aspect, src dynamo.JitterSource) (dynamo.Particles, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: particle count %d", dynamo.ErrInvalidConfig, count)
	}
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", dynamo.ErrInvalidShape, uint8(s))
	}
	if !a.Valid() {
		return nil, fmt.Errorf("%w: aspect %+v", dynamo.ErrInvalidConfig, a)
	}

	minX, maxX, minY, maxY := Bounds(a)
	ps := make(dynamo.Particles, count)
	for i := range ps {
		ps[i] = dynamo.Particle{}
		for attempt := 0; attempt < MaxSeedAttempts; attempt++ {
			p := dynamo.Particle{X: src.Uniform(minX, maxX), Y: src.Uniform(minY, maxY)}
			if Contains(s, p, a) {
				ps[i] = p
				break
			}
		}
	}
	return ps, nil
}
