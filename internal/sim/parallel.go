package sim

import (
	"context"
	"sync"
)

// Ensemble runs the same configuration under consecutive seeds in parallel.
// Each run gets its own Simulator from the factory since metrics are stateful.
type Ensemble struct {
	factory   func() *Simulator
	numRuns   int
	seedStart uint64
}

func NewEnsemble(factory func() *Simulator, numRuns int, seedStart uint64) *Ensemble {
	return &Ensemble{factory: factory, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + uint64(idx)

			results[idx], errs[idx] = e.factory().Run(ctx, cfgCopy)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
