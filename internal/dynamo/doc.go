// Package dynamo provides the core value types shared by the Chladni
// simulation packages.
//
// The package defines the particle collection and the parameters that drive
// a single integration step:
//
//   - [Particle]: a position in plate-local coordinates
//   - [Particles]: the ordered, fixed-length particle collection
//   - [StepParams]: time step, force gain and jitter magnitude
//   - [JitterSource]: the only randomness consumed by a step
//
// # Example
//
//	ps, _ := plate.Seed(1000, plate.Circle, plate.DefaultAspect(plate.Circle), src)
//	next := integrators.NewEuler().Step(ps, mode, params, plate.Circle, aspect, src)
//	buf := next.Flatten()
//
// # Thread Safety
//
// Particles values are plain slices and are not safe for concurrent
// mutation. A step never mutates its input; it always returns a new
// collection. JitterSource implementations are NOT thread-safe; use
// [ParallelFor] with one source per chunk.
package dynamo
