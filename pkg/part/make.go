package part

import (
	"fmt"

	"github.com/chazu/facet/pkg/history"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/naming"
	"github.com/chazu/facet/pkg/topo"
)

// MakeFace turns the root into a face. A face is returned as is; a wire,
// an edge or a compound of edges is first chained into a wire.
func (p *Part) MakeFace() (*Part, error) {
	switch p.root.Kind() {
	case kernel.Face:
		return p, nil
	case kernel.Wire:
	default:
		w, err := p.MakeWire()
		if err != nil {
			return nil, err
		}
		p = w
	}
	return p.Perform("make face", p.k.Face(p.root), naming.MatchPartner)
}

// MakeWire turns the root into a wire: a wire is returned as is, an edge
// or every edge of a compound is chained.
func (p *Part) MakeWire() (*Part, error) {
	switch p.root.Kind() {
	case kernel.Wire:
		return p, nil
	case kernel.Edge:
		return p.Perform("make wire", p.k.Wire(p.root), naming.MatchPartner)
	case kernel.Compound:
		var edges []kernel.Shape
		for _, s := range topo.AllSubshapes(p.root) {
			if s.Kind() == kernel.Edge {
				edges = append(edges, s)
			}
		}
		return p.Perform("make wire", p.k.Wire(topo.Dedupe(edges)...), 0)
	}
	return nil, &GeometryError{Op: "make wire", Msg: fmt.Sprintf("cannot convert a %s to a wire", p.root.Kind())}
}

// CleanupOptions selects what Cleanup merges.
type CleanupOptions struct {
	UnifyEdges bool
	UnifyFaces bool
}

// DefaultCleanup merges both edges and faces.
var DefaultCleanup = CleanupOptions{UnifyEdges: true, UnifyFaces: true}

// Cleanup merges coplanar neighbouring faces and collinear edge runs.
// Merged entities carry all of their predecessors' labels.
func (p *Part) Cleanup(opts CleanupOptions) (*Part, error) {
	h, err := history.FromHistory("cleanup", p.k.Unify(p.root, opts.UnifyEdges, opts.UnifyFaces))
	if err != nil {
		return nil, fmt.Errorf("part: %w", err)
	}
	return p.derive(h, 0), nil
}

// FuseWires chains the wires of a compound into one wire.
func (p *Part) FuseWires() (*Part, error) {
	if p.root.Kind() == kernel.Wire {
		return p, nil
	}
	if p.root.Kind() != kernel.Compound {
		return nil, fmt.Errorf("part: fuse wires: %w: got %s", ErrNotCompound, p.root.Kind())
	}
	var edges []kernel.Shape
	for _, w := range p.root.Children() {
		if w.Kind() != kernel.Wire {
			return nil, &GeometryError{Op: "fuse wires", Msg: "only wires can be fused"}
		}
		edges = append(edges, topo.Explore(w, kernel.Edge)...)
	}
	return p.Perform("fuse wires", p.k.Wire(edges...), naming.MatchPartner|naming.MatchSame)
}

// SewFaces welds the faces of the root into shells, and solids where they
// close.
func (p *Part) SewFaces() (*Part, error) {
	faces := topo.ExploreUnique(p.root, kernel.Face)
	h, err := history.FromHistory("sew", p.k.Sew(faces, 0))
	if err != nil {
		return nil, fmt.Errorf("part: %w", err)
	}
	return p.derive(h, 0), nil
}
