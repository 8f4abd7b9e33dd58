package part

import (
	"fmt"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/topo"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Transform applies the affine map m to a copy of the root.
func (p *Part) Transform(m sdf.M44) (*Part, error) {
	return p.Perform("transform", p.k.Transform(p.root, m), 0)
}

func (p *Part) Translate(dx, dy, dz float64) (*Part, error) {
	return p.Transform(sdf.Translate3d(v3.Vec{X: dx, Y: dy, Z: dz}))
}

// TranslateVec is Translate for a vector.
func (p *Part) TranslateVec(d v3.Vec) (*Part, error) {
	return p.Transform(sdf.Translate3d(d))
}

// Rotate turns the part by angle radians about the line through origin
// along axis.
func (p *Part) Rotate(axis v3.Vec, angle float64, origin v3.Vec) (*Part, error) {
	if axis.Length() == 0 {
		return nil, &GeometryError{Op: "rotate", Msg: "zero rotation axis"}
	}
	m := sdf.Translate3d(origin).Mul(sdf.Rotate3d(axis, angle)).Mul(sdf.Translate3d(origin.MulScalar(-1)))
	return p.Transform(m)
}

// Scale scales uniformly by factor about origin.
func (p *Part) Scale(factor float64, origin v3.Vec) (*Part, error) {
	m := sdf.Translate3d(origin).
		Mul(sdf.Scale3d(v3.Vec{X: factor, Y: factor, Z: factor})).
		Mul(sdf.Translate3d(origin.MulScalar(-1)))
	return p.Transform(m)
}

// ScaleAxis scales each axis independently about the world origin.
func (p *Part) ScaleAxis(fx, fy, fz float64) (*Part, error) {
	return p.Transform(sdf.Scale3d(v3.Vec{X: fx, Y: fy, Z: fz}))
}

// ScaleToSpan scales the part so its span along axis becomes span. With
// uniform set the other axes get the same factor.
func (p *Part) ScaleToSpan(axis topo.Axis, span float64, uniform bool) (*Part, error) {
	cur := p.Extents().Span(axis)
	if cur == 0 {
		return nil, &GeometryError{Op: "scale", Msg: fmt.Sprintf("part has no %s span", axis)}
	}
	f := span / cur
	other := 1.0
	if uniform {
		other = f
	}
	fs := [3]float64{other, other, other}
	fs[axis] = f
	return p.ScaleAxis(fs[0], fs[1], fs[2])
}

// Mirror reflects the part through the plane normal to axis at the world
// origin. With union set the reflection is fused with the original.
func (p *Part) Mirror(axis topo.Axis, union bool) (*Part, error) {
	fs := [3]float64{1, 1, 1}
	fs[axis] = -1
	m, err := p.ScaleAxis(fs[0], fs[1], fs[2])
	if err != nil {
		return nil, err
	}
	if !union {
		return m, nil
	}
	return p.Union(m)
}

// Align starts an alignment of p described by pattern, for example
// "xy_mid_to_min" or "z_min_to".
func (p *Part) Align(pattern string) (*Aligner, error) {
	al, err := topo.ParseAlignment(pattern)
	if err != nil {
		return nil, fmt.Errorf("part: align: %w", err)
	}
	return &Aligner{p: p, src: p.Extents(), al: al}, nil
}

// AlignSubshape is Align measured on the entities under label instead of
// the whole part. The whole part moves.
func (p *Part) AlignSubshape(label, pattern string) (*Aligner, error) {
	c, err := p.GetCompound(label)
	if err != nil {
		return nil, err
	}
	al, err := topo.ParseAlignment(pattern)
	if err != nil {
		return nil, fmt.Errorf("part: align: %w", err)
	}
	return &Aligner{p: p, src: topo.Of(c), al: al}, nil
}

// Aligner moves a part so a moment of its extents lands on a target.
type Aligner struct {
	p   *Part
	src topo.Extents
	al  topo.Alignment
}

// To aligns onto the extents of dest. A pattern without a destination
// moment aligns onto dest's origin coordinates instead.
func (a *Aligner) To(dest *Part) (*Part, error) {
	return a.ToExtents(dest.Extents())
}

// ToShape aligns onto the extents of a kernel shape.
func (a *Aligner) ToShape(s kernel.Shape) (*Part, error) {
	return a.ToExtents(topo.Of(s))
}

func (a *Aligner) ToExtents(dest topo.Extents) (*Part, error) {
	if !a.al.HasTo {
		return a.ToPoint(v3.Vec{})
	}
	return a.p.TranslateVec(a.al.Offset(a.src, dest))
}

// ToPoint aligns onto plain coordinates.
func (a *Aligner) ToPoint(p v3.Vec) (*Part, error) {
	return a.p.TranslateVec(a.al.OffsetTo(a.src, p))
}
