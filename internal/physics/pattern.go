package physics

import (
	"fmt"

	"github.com/san-kum/chladni/internal/dynamo"
)

// Pixel values for the raster pattern.
var (
	OnPixel  = [4]byte{255, 255, 255, 255}
	OffPixel = [4]byte{0, 0, 0, 255}
)

// RenderPattern rasterizes the nodal set of mode into a width×height RGBA
// buffer (4 bytes per pixel, row-major, top row first). A pixel is on when
// |Height| at its centre is below threshold.
func RenderPattern(width, height int, mode Mode, threshold float64) ([]byte, error) {
	mask, err := NodalMask(width, height, mode, threshold)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 4*len(mask))
	for i, on := range mask {
		px := OffPixel
		if on {
			px = OnPixel
		}
		copy(buf[4*i:], px[:])
	}
	return buf, nil
}

// NodalMask is RenderPattern without the colour channels.
func NodalMask(width, height int, mode Mode, threshold float64) ([]bool, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: raster %dx%d", dynamo.ErrInvalidConfig, width, height)
	}
	if !mode.IsFinite() || !dynamo.IsFinite(threshold) {
		return nil, fmt.Errorf("%w: non-finite pattern parameters", dynamo.ErrInvalidConfig)
	}

	mask := make([]bool, width*height)
	Sample(width, height, func(i, j int, x, y float64) {
		h := Height(x, y, mode)
		if h < 0 {
			h = -h
		}
		mask[j*width+i] = h < threshold
	})
	return mask, nil
}

// Sample calls fn for every pixel with the normalized coordinates of its
// centre: x runs -1→1 left to right, y runs 1→-1 top to bottom.
func Sample(width, height int, fn func(i, j int, x, y float64)) {
	for j := 0; j < height; j++ {
		y := 1 - 2*(float64(j)+0.5)/float64(height)
		for i := 0; i < width; i++ {
			x := -1 + 2*(float64(i)+0.5)/float64(width)
			fn(i, j, x, y)
		}
	}
}
