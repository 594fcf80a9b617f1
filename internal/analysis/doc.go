// Package analysis summarizes particle collections after a run.
//
//   - [NewDensityGrid]: 2D histogram of particle positions over the plate
//   - [DensityGrid.ToASCII]: terminal rendering of a grid
//   - [RadialProfile]: particle density by normalized radius
//   - [Converged]: settling test on a metric series
//
// # Convergence
//
// A run has settled when the nodal residual stops moving:
//
//	if analysis.Converged(res.Series["nodal_residual"], 50, 1e-3) {
//	    // pattern formed
//	}
package analysis
