package physics

import (
	"math"

	"github.com/san-kum/chladni/internal/dynamo"
)

// Mode is one standing-wave field instance: mode numbers N, M and
// amplitude coefficients A, B.
type Mode struct {
	N float64 `yaml:"n" json:"n"`
	M float64 `yaml:"m" json:"m"`
	A float64 `yaml:"a" json:"a"`
	B float64 `yaml:"b" json:"b"`
}

func (m Mode) IsFinite() bool {
	return dynamo.IsFinite(m.N, m.M, m.A, m.B)
}

// Height evaluates a·sin(nπx)·sin(mπy) + b·sin(mπx)·sin(nπy) on the
// normalized domain.
func Height(x, y float64, mode Mode) float64 {
	snx, smy := math.Sin(mode.N*math.Pi*x), math.Sin(mode.M*math.Pi*y)
	smx, sny := math.Sin(mode.M*math.Pi*x), math.Sin(mode.N*math.Pi*y)
	return mode.A*snx*smy + mode.B*smx*sny
}

// Gradient returns the analytic partial derivatives of Height.
func Gradient(x, y float64, mode Mode) (dx, dy float64) {
	kn, km := mode.N*math.Pi, mode.M*math.Pi
	snx, cnx := math.Sincos(kn * x)
	smy, cmy := math.Sincos(km * y)
	smx, cmx := math.Sincos(km * x)
	sny, cny := math.Sincos(kn * y)

	dx = mode.A*kn*cnx*smy + mode.B*km*cmx*sny
	dy = mode.A*km*snx*cmy + mode.B*kn*smx*cny
	return dx, dy
}

// PotentialGradient returns the gradient of Height², which points away from
// the nearest nodal line regardless of the field's sign.
func PotentialGradient(x, y float64, mode Mode) (dx, dy float64) {
	h := Height(x, y, mode)
	gx, gy := Gradient(x, y, mode)
	return 2 * h * gx, 2 * h * gy
}

// Field binds a Mode so it can be passed around as a value.
type Field struct {
	Mode Mode
}

func NewField(mode Mode) Field {
	return Field{Mode: mode}
}

func (f Field) Height(x, y float64) float64 { return Height(x, y, f.Mode) }

func (f Field) Gradient(x, y float64) (float64, float64) { return Gradient(x, y, f.Mode) }

// MaxGradient bounds |∇Height| over the whole plane.
func (f Field) MaxGradient() float64 {
	kn, km := math.Abs(f.Mode.N*math.Pi), math.Abs(f.Mode.M*math.Pi)
	a, b := math.Abs(f.Mode.A), math.Abs(f.Mode.B)
	gx := a*kn + b*km
	gy := a*km + b*kn
	return math.Hypot(gx, gy)
}

// MaxPotentialGradient bounds |∇Height²| over the whole plane.
func (f Field) MaxPotentialGradient() float64 {
	return 2 * (math.Abs(f.Mode.A) + math.Abs(f.Mode.B)) * f.MaxGradient()
}
