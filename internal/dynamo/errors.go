package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfig indicates a refused configuration (negative count,
	// non-finite or negative scale factors, bad raster dimensions).
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrInvalidShape indicates a plate shape code outside the known enumeration.
	ErrInvalidShape = errors.New("dynamo: unknown plate shape")

	// ErrInvalidState indicates a particle buffer containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrOddBuffer indicates a flat coordinate buffer with an odd length.
	ErrOddBuffer = errors.New("dynamo: flat buffer length must be even")

	// ErrStepRejected indicates a step whose inputs were non-finite; the
	// previous collection was kept.
	ErrStepRejected = errors.New("dynamo: step rejected (non-finite parameters)")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
