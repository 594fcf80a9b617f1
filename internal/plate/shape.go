package plate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/chladni/internal/dynamo"
)

// Shape is the plate boundary. The numeric values are a wire contract and
// must not be renumbered.
type Shape uint8

const (
	Square        Shape = 0
	Circle        Shape = 1
	RectangleWide Shape = 2
	RectangleTall Shape = 3
	Hexagon       Shape = 4
)

var shapeNames = [...]string{
	Square:        "square",
	Circle:        "circle",
	RectangleWide: "rectangle_wide",
	RectangleTall: "rectangle_tall",
	Hexagon:       "hexagon",
}

// Shapes lists every shape in wire order.
func Shapes() []Shape {
	return []Shape{Square, Circle, RectangleWide, RectangleTall, Hexagon}
}

func (s Shape) Valid() bool {
	return s <= Hexagon
}

func (s Shape) String() string {
	if !s.Valid() {
		return fmt.Sprintf("shape(%d)", uint8(s))
	}
	return shapeNames[s]
}

// FromCode converts a raw wire integer.
func FromCode(code int) (Shape, error) {
	if code < 0 || code > int(Hexagon) {
		return 0, fmt.Errorf("%w: %d", dynamo.ErrInvalidShape, code)
	}
	return Shape(code), nil
}

// ParseShape accepts a shape name ("circle", "rectangle-wide", "wide") or
// its wire code ("1").
func ParseShape(name string) (Shape, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	if code, err := strconv.Atoi(key); err == nil {
		return FromCode(code)
	}
	switch key {
	case "wide":
		return RectangleWide, nil
	case "tall":
		return RectangleTall, nil
	case "hex":
		return Hexagon, nil
	}
	for i, n := range shapeNames {
		if n == key {
			return Shape(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", dynamo.ErrInvalidShape, name)
}

func (s Shape) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", dynamo.ErrInvalidShape, uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Shape) UnmarshalText(text []byte) error {
	parsed, err := ParseShape(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Aspect stretches the unit domain of a shape.
type Aspect struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Valid reports whether both scale factors are finite and non-negative.
// Zero is allowed and yields a degenerate domain.
func (a Aspect) Valid() bool {
	return dynamo.IsFinite(a.X, a.Y) && a.X >= 0 && a.Y >= 0
}

// DefaultAspect is the aspect ratio each shape is shown with by default.
func DefaultAspect(s Shape) Aspect {
	switch s {
	case RectangleWide:
		return Aspect{X: 2, Y: 1}
	case RectangleTall:
		return Aspect{X: 1, Y: 2}
	default:
		return Aspect{X: 1, Y: 1}
	}
}

// Bounds returns the bounding box [-X, X]×[-Y, Y] rejection sampling draws from.
func Bounds(a Aspect) (minX, maxX, minY, maxY float64) {
	return -a.X, a.X, -a.Y, a.Y
}

// Area of the shape's domain.
func Area(s Shape, a Aspect) float64 {
	switch s {
	case Circle:
		return math.Pi * a.X * a.Y
	case Hexagon:
		return 3 * math.Sqrt(3) / 2 * a.X * a.Y
	default:
		return 4 * a.X * a.Y
	}
}
