package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/chladni/internal/dynamo"
	"github.com/san-kum/chladni/internal/plate"
)

// ParticlesToSVG draws the plate outline and one dot per particle. size is
// the longer side of the image in pixels; the other side follows the aspect.
func ParticlesToSVG(ps dynamo.Particles, s plate.Shape, a plate.Aspect, size int, dotColor string) (string, error) {
	if !s.Valid() {
		return "", fmt.Errorf("%w: %d", dynamo.ErrInvalidShape, uint8(s))
	}
	if !a.Valid() || size <= 0 {
		return "", fmt.Errorf("%w: aspect %+v size %d", dynamo.ErrInvalidConfig, a, size)
	}

	// Degenerate axes still get a few pixels so the outline is visible.
	sx, sy := math.Max(a.X, 1e-3), math.Max(a.Y, 1e-3)
	scale := float64(size) / (2 * math.Max(sx, sy))
	pad := 8.0
	width := 2*sx*scale + 2*pad
	height := 2*sy*scale + 2*pad

	toX := func(x float64) float64 { return pad + (x+sx)*scale }
	toY := func(y float64) float64 { return pad + (sy-y)*scale }

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	sb.WriteString(outline(s, sx, sy, toX, toY))

	dotRadius := math.Max(0.6, float64(size)/400)
	sb.WriteString(fmt.Sprintf("<g fill=\"%s\">\n", dotColor))
	for _, p := range ps {
		if !p.IsFinite() {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, toX(p.X), toY(p.Y), dotRadius))
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String(), nil
}

func outline(s plate.Shape, sx, sy float64, toX, toY func(float64) float64) string {
	const style = `fill="#161616" stroke="#444444" stroke-width="1"`
	switch s {
	case plate.Circle:
		return fmt.Sprintf("<ellipse cx=\"%.1f\" cy=\"%.1f\" rx=\"%.1f\" ry=\"%.1f\" %s/>\n",
			toX(0), toY(0), toX(sx)-toX(0), toY(0)-toY(sy), style)
	case plate.Hexagon:
		var pts []string
		for k := 0; k < 6; k++ {
			angle := float64(k) * math.Pi / 3
			pts = append(pts, fmt.Sprintf("%.1f,%.1f", toX(sx*math.Cos(angle)), toY(sy*math.Sin(angle))))
		}
		return fmt.Sprintf("<polygon points=\"%s\" %s/>\n", strings.Join(pts, " "), style)
	default:
		return fmt.Sprintf("<rect x=\"%.1f\" y=\"%.1f\" width=\"%.1f\" height=\"%.1f\" %s/>\n",
			toX(-sx), toY(sy), toX(sx)-toX(-sx), toY(-sy)-toY(sy), style)
	}
}
