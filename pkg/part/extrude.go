package part

import (
	"fmt"

	"github.com/chazu/facet/pkg/history"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/naming"
	"github.com/chazu/facet/pkg/topo"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

// SweepNames optionally labels the start cap, end cap and the side
// entities a sweep produces. Empty fields add no label.
type SweepNames struct {
	First   string
	Last    string
	Profile string
}

// extras returns the labels sw asks for, given the side entities.
func (sw SweepNames) extras(s kernel.Sweep, profile []kernel.Shape) naming.Map {
	var m naming.Map
	if sw.First != "" {
		m = m.With(sw.First, s.FirstShape())
	}
	if sw.Last != "" {
		m = m.With(sw.Last, s.LastShape())
	}
	if sw.Profile != "" {
		m = m.With(sw.Profile, profile...)
	}
	return m
}

// Prism sweeps the root along d. Vertices become edges, edges faces and
// faces solids; labels follow what each entity swept into.
func (p *Part) Prism(d v3.Vec, names SweepNames) (*Part, error) {
	s := p.k.Prism(p.root, d)
	h, err := history.FromMakeShape("prism", s)
	if err != nil {
		return nil, fmt.Errorf("part: %w", err)
	}
	out := p.derive(h, 0)
	var profile []kernel.Shape
	if names.Profile != "" {
		set := &topo.Set{}
		for _, e := range topo.AllSubshapes(p.root) {
			for _, g := range s.Generated(e) {
				if set.Add(g) {
					profile = append(profile, g)
				}
			}
		}
	}
	return out.with(naming.Merge(out.names, names.extras(s, profile))), nil
}

// SymmetricPrism sweeps d both ways from the root and fuses the halves.
func (p *Part) SymmetricPrism(d v3.Vec, names SweepNames) (*Part, error) {
	a, err := p.Prism(d, names)
	if err != nil {
		return nil, err
	}
	b, err := p.Prism(d.MulScalar(-1), names)
	if err != nil {
		return nil, err
	}
	return a.Union(b)
}

// NormalPrism sweeps length along the normal of the face the root makes.
func (p *Part) NormalPrism(length float64, names SweepNames) (*Part, error) {
	_, n, err := p.FaceNormal()
	if err != nil {
		return nil, err
	}
	return p.Prism(n.MulScalar(length), names)
}

// NormalSymmetricPrism is SymmetricPrism along the face normal.
func (p *Part) NormalSymmetricPrism(length float64, names SweepNames) (*Part, error) {
	_, n, err := p.FaceNormal()
	if err != nil {
		return nil, err
	}
	return p.SymmetricPrism(n.MulScalar(length), names)
}

// Offset shifts every wire of the root sideways by amount and adds the
// results together. Positive amounts grow closed loops. Each label lists an
// entity once even though every wire's result carries the whole map.
func (p *Part) Offset(amount float64, join kernel.JoinType, open bool) (*Part, error) {
	wires := topo.Explore(p.root, kernel.Wire)
	if len(wires) == 0 {
		return nil, fmt.Errorf("part: offset: %w: %s has no wires", ErrNoOperands, p.root.Kind())
	}
	var out *Part
	for _, w := range wires {
		h, err := history.FromOffset("offset", p.k.Offset(w, amount, join, open))
		if err != nil {
			return nil, fmt.Errorf("part: %w", err)
		}
		q := p.derive(h, 0)
		if out == nil {
			out = q
		} else {
			out = out.Add(q)
		}
	}
	zap.L().Named("part").Debug("offset", zap.Int("wires", len(wires)), zap.Float64("amount", amount))
	return out.with(out.names.Deduped()), nil
}
