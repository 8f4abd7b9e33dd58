package part

import (
	"fmt"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/topo"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Tolerance is the length below which Validate treats an edge as
// degenerate.
const Tolerance = 1e-6

// FaceNormal returns a point on, and the unit normal of, the face the root
// makes.
func (p *Part) FaceNormal() (origin, normal v3.Vec, err error) {
	f, err := p.MakeFace()
	if err != nil {
		return v3.Vec{}, v3.Vec{}, err
	}
	return p.k.FaceNormal(f.root)
}

// Validate checks the root for degenerate geometry: zero length edges and
// face boundaries that do not close. It returns p unchanged when clean.
func (p *Part) Validate() (*Part, error) {
	for _, e := range topo.ExploreUnique(p.root, kernel.Edge) {
		if err := p.checkEdge(e); err != nil {
			return nil, err
		}
	}
	for _, f := range topo.ExploreUnique(p.root, kernel.Face) {
		for _, w := range topo.Explore(f, kernel.Wire) {
			if !topo.IsClosedWire(w) {
				return nil, &GeometryError{Op: "validate", Msg: "wire is not closed"}
			}
		}
	}
	return p, nil
}

func (p *Part) checkEdge(e kernel.Shape) error {
	vs := topo.Explore(e, kernel.Vertex)
	if len(vs) != 2 || vs[0].IsSame(vs[1]) {
		return &GeometryError{Op: "validate", Msg: "edge is zero length"}
	}
	a, err := p.k.Point(vs[0])
	if err != nil {
		return fmt.Errorf("part: validate: %w", err)
	}
	b, err := p.k.Point(vs[1])
	if err != nil {
		return fmt.Errorf("part: validate: %w", err)
	}
	if b.Sub(a).Length() < Tolerance {
		return &GeometryError{Op: "validate", Msg: "edge is zero length"}
	}
	return nil
}
