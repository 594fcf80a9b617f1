// Package viz is the terminal viewer for a running plate.
//
// [Model] is a Bubble Tea model that steps the particles on every tick and
// draws them on a Braille [Canvas], optionally over the nodal pattern.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	n m a b k j - Raise mode numbers, amplitudes, force, jitter (Shift lowers)
//	S     - Next plate shape (reseeds)
//	+ -   - Double/halve particle count (reseeds)
//	P     - Toggle nodal overlay
//	T     - Cycle color themes
//	R     - Reseed
//	?     - Show help
package viz
