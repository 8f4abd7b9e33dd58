package sketch

import (
	"fmt"
	"math"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/part"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Plane is the pair of in-plane directions a profile is drawn along.
type Plane struct {
	XDir, YDir v3.Vec
}

var (
	XY = Plane{XDir: v3.Vec{X: 1}, YDir: v3.Vec{Y: 1}}
	YZ = Plane{XDir: v3.Vec{Y: 1}, YDir: v3.Vec{Z: 1}}
	ZX = Plane{XDir: v3.Vec{Z: 1}, YDir: v3.Vec{X: 1}}
)

func unit(v v3.Vec) v3.Vec {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.MulScalar(1 / l)
}

// TriangleNames labels the sides of RightAngleTriangle.
type TriangleNames struct {
	Hypotenuse string
	Adjacent   string
	Opposite   string
}

// RightAngleTriangle draws a closed wire with hypotenuse hypot at angle
// radians from the adjacent side, which runs along the plane's x
// direction from the origin.
func RightAngleTriangle(k kernel.Kernel, hypot, angle float64, names TriangleNames, pl Plane) (*part.Part, error) {
	da := unit(pl.XDir).MulScalar(hypot * math.Cos(angle))
	do := unit(pl.YDir).MulScalar(hypot * math.Sin(angle))
	return New(k, v3.Vec{}).
		LineTo(At(da), Label(names.Adjacent)).
		LineTo(At(da.Add(do)), Label(names.Opposite)).
		Close(Label(names.Hypotenuse)).
		WirePart()
}

// SquareNames labels the sides of SquareCentered.
type SquareNames struct {
	XMin, XMax string
	YMin, YMax string
}

// SquareCentered draws a dx by dy rectangle centred on the origin in the
// XY plane, filled with a face when fill is set.
func SquareCentered(k kernel.Kernel, dx, dy float64, names SquareNames, fill bool) (*part.Part, error) {
	hx, hy := dx/2, dy/2
	s := New(k, v3.Vec{X: -hx, Y: -hy}).
		LineTo(X(hx), Y(-hy), Label(names.YMin)).
		LineTo(X(hx), Y(hy), Label(names.XMax)).
		LineTo(X(-hx), Y(hy), Label(names.YMax)).
		Close(Label(names.XMin))
	if fill {
		return s.FacePart()
	}
	return s.WirePart()
}

// Polygon draws a regular polygon with the given circumradius, its first
// corner on the positive x axis.
func Polygon(k kernel.Kernel, radius float64, segments int) (*part.Part, error) {
	if segments < 3 {
		return nil, fmt.Errorf("sketch: polygon: need at least 3 segments, got %d", segments)
	}
	step := 2 * math.Pi / float64(segments)
	s := New(k, v3.Vec{X: radius})
	for i := 1; i < segments; i++ {
		a := step * float64(i)
		s.LineTo(X(radius*math.Cos(a)), Y(radius*math.Sin(a)), Z(0))
	}
	return s.Close().WirePart()
}

// XLine, YLine and ZLine draw a single edge of length along one axis from
// the origin, or centred on it when symmetric.
func XLine(k kernel.Kernel, length float64, symmetric bool) (*part.Part, error) {
	return axisLine(k, X(length), "x_mid_to", symmetric)
}

func YLine(k kernel.Kernel, length float64, symmetric bool) (*part.Part, error) {
	return axisLine(k, Y(length), "y_mid_to", symmetric)
}

func ZLine(k kernel.Kernel, length float64, symmetric bool) (*part.Part, error) {
	return axisLine(k, Z(length), "z_mid_to", symmetric)
}

func axisLine(k kernel.Kernel, to Arg, align string, symmetric bool) (*part.Part, error) {
	p, err := New(k, v3.Vec{}).LineTo(to).WirePart()
	if err != nil || !symmetric {
		return p, err
	}
	al, err := p.Align(align)
	if err != nil {
		return nil, err
	}
	return al.ToPoint(v3.Vec{})
}
