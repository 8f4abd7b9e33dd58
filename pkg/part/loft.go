package part

import (
	"errors"
	"fmt"

	"github.com/chazu/facet/pkg/history"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/naming"
	"github.com/chazu/facet/pkg/topo"
)

// LoftOptions configures Loft.
type LoftOptions struct {
	// Solid caps the ends and closes the skin into a solid.
	Solid bool
	SweepNames
}

// Loft skins profiles (wires, or faces through their outer wire) in order.
// The profile maps are merged and carried through the loft.
func Loft(k kernel.Kernel, profiles []*Part, opts LoftOptions) (*Part, error) {
	if len(profiles) < 2 {
		return nil, errors.New("part: loft: Must specify at least 2 wires")
	}
	shapes := make([]kernel.Shape, len(profiles))
	maps := make([]naming.Map, len(profiles))
	for i, pr := range profiles {
		shapes[i] = pr.root
		if pr.root.Kind() == kernel.Face {
			shapes[i] = topo.Explore(pr.root, kernel.Wire)[0]
		}
		maps[i] = pr.names
	}
	s := k.Loft(shapes, opts.Solid)
	h, err := history.FromMakeShape("loft", s)
	if err != nil {
		return nil, fmt.Errorf("part: %w", err)
	}
	out := propagated(k, naming.Merge(maps...), h, 0)

	var rails []kernel.Shape
	if opts.Profile != "" {
		for _, sh := range shapes {
			for _, e := range topo.Explore(sh, kernel.Edge) {
				rails = append(rails, s.Generated(e)...)
			}
		}
	}
	return out.with(naming.Merge(out.names, opts.extras(s, rails))), nil
}

// LoftBetween lofts from the single entity under from to the one under to.
// Unless opts says otherwise the caps are labelled from and to.
func (p *Part) LoftBetween(from, to string, opts LoftOptions) (*Part, error) {
	a, err := p.SingleSubpart(from)
	if err != nil {
		return nil, err
	}
	b, err := p.SingleSubpart(to)
	if err != nil {
		return nil, err
	}
	if opts.First == "" {
		opts.First = from
	}
	if opts.Last == "" {
		opts.Last = to
	}
	return Loft(p.k, []*Part{a.with(naming.Map{}), b.with(naming.Map{})}, opts)
}
