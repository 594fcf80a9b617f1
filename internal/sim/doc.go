// Package sim is the boundary between the numerical core and its callers.
//
// [Engine] implements the two stateless flat-buffer entry points,
// InitParticles and UpdateParticles, that a renderer calls once per frame.
// [Simulator] drives batch runs on top of the same step for the CLI,
// recording snapshots and metric series; [Ensemble] fans a run out over
// several seeds.
package sim
