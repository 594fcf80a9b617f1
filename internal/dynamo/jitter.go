package dynamo

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// PCGJitter draws jitter from a seeded PCG stream through gonum's uniform
// distribution.
type PCGJitter struct {
	src *rand.PCG
}

func NewJitter(seed uint64) *PCGJitter {
	return &PCGJitter{src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)}
}

func (j *PCGJitter) Uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return distuv.Uniform{Min: lo, Max: hi, Src: j.src}.Rand()
}

func (j *PCGJitter) Uint64() uint64 {
	return j.src.Uint64()
}

// Split derives n independent sources from src. The parent is advanced
// sequentially, so the children are reproducible for a fixed seed and n.
func Split(src JitterSource, n int) []JitterSource {
	out := make([]JitterSource, n)
	for i := range out {
		out[i] = NewJitter(src.Uint64())
	}
	return out
}
