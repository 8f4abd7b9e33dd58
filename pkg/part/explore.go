package part

import (
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/topo"
)

// Explorer lists the entities of one kind under a part's root as Parts
// that share the parent's label map.
type Explorer struct {
	p     *Part
	inner *topo.Explorer
}

// Explore starts a listing of the entities of kind under the root.
func (p *Part) Explore(kind kernel.ShapeKind) *Explorer {
	return &Explorer{p: p, inner: topo.NewExplorer(p.root, kind)}
}

// Filter keeps the parts pred accepts. Filters compose with AND.
func (e *Explorer) Filter(pred func(*Part) bool) *Explorer {
	e.inner.Filter(func(s kernel.Shape) bool { return pred(e.p.wrap(s)) })
	return e
}

// FilterShapes is Filter over raw entities.
func (e *Explorer) FilterShapes(pred func(kernel.Shape) bool) *Explorer {
	e.inner.Filter(pred)
	return e
}

// Labelled keeps entities held under label.
func (e *Explorer) Labelled(label string) *Explorer {
	set := topo.NewSet(e.p.names.Lookup(label)...)
	e.inner.Filter(set.Contains)
	return e
}

// OrderBy sorts by key. Only the last key applies.
func (e *Explorer) OrderBy(key func(*Part) float64) *Explorer {
	e.inner.OrderBy(func(s kernel.Shape) float64 { return key(e.p.wrap(s)) })
	return e
}

// Get returns the listing; it may be empty.
func (e *Explorer) Get() []*Part {
	shapes := e.inner.Get()
	out := make([]*Part, len(shapes))
	for i, s := range shapes {
		out[i] = e.p.wrap(s)
	}
	return out
}

// Shapes returns the listing as raw entities.
func (e *Explorer) Shapes() []kernel.Shape {
	return e.inner.Get()
}

// GetSingle returns the only part in the listing.
func (e *Explorer) GetSingle() (*Part, error) {
	s, err := e.inner.GetSingle()
	if err != nil {
		return nil, err
	}
	return e.p.wrap(s), nil
}

// GetMin and GetMax return the part with the smallest or largest key.
func (e *Explorer) GetMin(key func(*Part) float64) (*Part, bool) {
	parts := e.OrderBy(key).Get()
	if len(parts) == 0 {
		return nil, false
	}
	return parts[0], true
}

func (e *Explorer) GetMax(key func(*Part) float64) (*Part, bool) {
	parts := e.OrderBy(key).Get()
	if len(parts) == 0 {
		return nil, false
	}
	return parts[len(parts)-1], true
}

// Compound returns a part rooted at a compound of the listing.
func (e *Explorer) Compound() *Part {
	return e.p.wrap(e.p.k.Compound(e.inner.Get()...))
}
