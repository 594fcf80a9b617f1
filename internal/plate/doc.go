// Package plate defines the plate boundary shapes, the domain policy that
// keeps particles on the plate, and the rejection-sampling initializer.
//
// All shapes are a unit shape stretched by an [Aspect] (scaleX, scaleY):
//
//   - Square, RectangleWide, RectangleTall: the box |x|<=sx, |y|<=sy
//   - Circle: the ellipse (x/sx)²+(y/sy)²<=1
//   - Hexagon: a flat-topped regular hexagon with vertices at (±1, 0) and
//     (±½, ±√3/2) in normalized coordinates (x/sx, y/sy)
//
// Out-of-domain points are clamped: projected onto the nearest boundary point
// of the unit shape in normalized coordinates, then scaled back.
package plate
