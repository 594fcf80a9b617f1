package export

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/chladni/internal/dynamo"
	"github.com/san-kum/chladni/internal/physics"
)

const paletteSize = 256

// Heat-map hues for negative and positive displacement.
const (
	hueNegative = 210.0
	huePositive = 25.0
)

var (
	negTable [paletteSize]color.RGBA
	posTable [paletteSize]color.RGBA
)

func init() {
	for i := 0; i < paletteSize; i++ {
		v := float64(i) / (paletteSize - 1)
		v = v * v
		negTable[i] = toRGBA(colorful.Hsv(hueNegative, 0.8, v))
		posTable[i] = toRGBA(colorful.Hsv(huePositive, 0.8, v))
	}
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// fieldColor maps a signed height, scaled to [-1, 1], onto the heat map.
func fieldColor(h float64) color.RGBA {
	idx := int(math.Min(1, math.Abs(h)) * (paletteSize - 1))
	if h < 0 {
		return negTable[idx]
	}
	return posTable[idx]
}

// PatternImage renders the field over [-1,1]² as a heat map with nodal
// pixels (|h| < threshold) drawn white.
func PatternImage(width, height int, mode physics.Mode, threshold float64) (*image.RGBA, error) {
	if width <= 0 || height <= 0 || !mode.IsFinite() || !dynamo.IsFinite(threshold) {
		return nil, fmt.Errorf("%w: pattern %dx%d", dynamo.ErrInvalidConfig, width, height)
	}

	peak := math.Abs(mode.A) + math.Abs(mode.B)
	if peak == 0 {
		peak = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	physics.Sample(width, height, func(i, j int, x, y float64) {
		h := physics.Height(x, y, mode)
		if math.Abs(h) < threshold {
			img.SetRGBA(i, j, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			return
		}
		img.SetRGBA(i, j, fieldColor(h/peak))
	})
	return img, nil
}

func PatternPNG(w io.Writer, width, height int, mode physics.Mode, threshold float64) error {
	img, err := PatternImage(width, height, mode, threshold)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
