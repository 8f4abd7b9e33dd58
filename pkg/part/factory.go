package part

import (
	"fmt"

	"github.com/chazu/facet/pkg/history"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/naming"
	"github.com/chazu/facet/pkg/topo"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// BoxNames labels the faces of a box. Empty fields add no label.
type BoxNames struct {
	XMin, XMax string
	YMin, YMax string
	ZMin, ZMax string
}

// DirectionalBoxNames labels faces by the direction they face, with x
// running back to front and y left to right.
var DirectionalBoxNames = BoxNames{
	XMin: "back", XMax: "front",
	YMin: "left", YMax: "right",
	ZMin: "bottom", ZMax: "top",
}

// Box builds a dx by dy by dz box with one corner at the origin.
func Box(k kernel.Kernel, dx, dy, dz float64, names BoxNames) (*Part, error) {
	b := k.Box(dx, dy, dz)
	if _, err := history.FromMakeShape("box", b); err != nil {
		return nil, fmt.Errorf("part: %w", err)
	}
	var m naming.Map
	for _, side := range []struct {
		label string
		side  kernel.BoxSide
	}{
		{names.XMin, kernel.XMin}, {names.XMax, kernel.XMax},
		{names.YMin, kernel.YMin}, {names.YMax, kernel.YMax},
		{names.ZMin, kernel.ZMin}, {names.ZMax, kernel.ZMax},
	} {
		if side.label != "" {
			m = m.With(side.label, b.Face(side.side))
		}
	}
	return New(k, b.Shape(), m), nil
}

// BoxCentered is Box centred on the origin.
func BoxCentered(k kernel.Kernel, dx, dy, dz float64, names BoxNames) (*Part, error) {
	b, err := Box(k, dx, dy, dz, names)
	if err != nil {
		return nil, err
	}
	return b.Translate(-dx/2, -dy/2, -dz/2)
}

// BoxSurrounding builds a box around p's extents, grown by clearance on
// every side of each axis.
func BoxSurrounding(p *Part, clearance v3.Vec, names BoxNames) (*Part, error) {
	size := p.Extents().Size().Add(clearance.MulScalar(2))
	b, err := Box(p.k, size.X, size.Y, size.Z, names)
	if err != nil {
		return nil, err
	}
	al, err := b.Align("xyz_mid_to_mid")
	if err != nil {
		return nil, err
	}
	return al.To(p)
}

// Vertex builds a vertex at pt, labelled name unless name is empty.
func Vertex(k kernel.Kernel, pt v3.Vec, name string) *Part {
	v := k.Vertex(pt)
	if name == "" {
		return New(k, v, naming.Map{})
	}
	return Named(k, v, name)
}

// Compound adds parts together.
func Compound(parts ...*Part) (*Part, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("part: compound: %w", ErrNoOperands)
	}
	return parts[0].Add(parts[1:]...), nil
}

// Union fuses parts together.
func Union(parts ...*Part) (*Part, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("part: union: %w", ErrNoOperands)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return parts[0].Union(parts[1:]...)
}

// Arrange lays parts out along x, each starting spacing after the end of
// the one before, and compounds them.
func Arrange(spacing float64, parts ...*Part) (*Part, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("part: arrange: %w", ErrNoOperands)
	}
	out := []*Part{parts[0]}
	xMax := parts[0].Extents().Max(topo.X) + spacing
	for _, p := range parts[1:] {
		q, err := p.Translate(xMax-p.Extents().Min(topo.X), 0, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
		xMax = q.Extents().Max(topo.X) + spacing
	}
	return Compound(out...)
}

// Face builds a face bounded by outer with the given holes. Labels of the
// wires carry over to the face's boundary.
func Face(outer *Part, holes ...*Part) (*Part, error) {
	o, err := outer.MakeWire()
	if err != nil {
		return nil, err
	}
	maps := []naming.Map{o.names}
	var hs []kernel.Shape
	for _, h := range holes {
		w, err := h.MakeWire()
		if err != nil {
			return nil, err
		}
		hs = append(hs, w.root)
		maps = append(maps, w.names)
	}
	h, err := history.FromMakeShape("face", o.k.Face(o.root, hs...))
	if err != nil {
		return nil, fmt.Errorf("part: %w", err)
	}
	return propagated(o.k, naming.Merge(maps...), h, naming.MatchPartner), nil
}

// ArrayOnVertsOf places a copy of p at every vertex of other and
// compounds the copies.
func (p *Part) ArrayOnVertsOf(other *Part) (*Part, error) {
	var copies []*Part
	for _, v := range topo.ExploreUnique(other.root, kernel.Vertex) {
		pt, err := p.k.Point(v)
		if err != nil {
			return nil, fmt.Errorf("part: array: %w", err)
		}
		c, err := p.TranslateVec(pt)
		if err != nil {
			return nil, err
		}
		copies = append(copies, c)
	}
	return Compound(copies...)
}
