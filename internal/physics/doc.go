// Package physics evaluates the Chladni standing-wave field.
//
// The field on the normalized plate [-1, 1]×[-1, 1] is
//
//	h(x, y) = a·sin(nπx)·sin(mπy) + b·sin(mπx)·sin(nπy)
//
// [Height] and [Gradient] are pure closed-form functions; particles migrate
// down [PotentialGradient] (the gradient of h²) toward the nodal lines where
// h = 0. [RenderPattern] rasterizes the nodal set directly without particles.
//
//	mode := physics.Mode{N: 4, M: 3, A: 1, B: -1}
//	rgba, _ := physics.RenderPattern(512, 512, mode, 0.05)
package physics
