// Package part provides Part, an immutable pairing of a kernel root shape
// with the label map naming its sub-shapes, and the operation facades that
// keep those names attached while the kernel rebuilds the shape.
//
// Every facade follows the same five steps: run the kernel operation,
// reject it if it did not complete, wrap its history, propagate the label
// map through that history and return a new Part. A Part is never mutated
// after construction and is safe to share between goroutines.
package part

import (
	"fmt"
	"sync"

	"github.com/chazu/facet/pkg/history"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/naming"
	"github.com/chazu/facet/pkg/topo"
)

// Part is a root shape plus its label map.
type Part struct {
	k     kernel.Kernel
	root  kernel.Shape
	names naming.Map

	extOnce sync.Once
	ext     topo.Extents
}

// New wraps root with names. The map is not checked against root: labels
// may name entities root no longer contains until Pruned is called.
func New(k kernel.Kernel, root kernel.Shape, names naming.Map) *Part {
	return &Part{k: k, root: root, names: names}
}

// Named wraps root with a single label naming it.
func Named(k kernel.Kernel, root kernel.Shape, label string) *Part {
	return New(k, root, naming.Of(label, root))
}

func (p *Part) Shape() kernel.Shape       { return p.root }
func (p *Part) Kernel() kernel.Kernel     { return p.k }
func (p *Part) Subshapes() naming.Map     { return p.names }
func (p *Part) Labels() []string          { return p.names.Labels() }
func (p *Part) Kind() kernel.ShapeKind    { return p.root.Kind() }
func (p *Part) with(m naming.Map) *Part   { return New(p.k, p.root, m) }
func (p *Part) wrap(s kernel.Shape) *Part { return New(p.k, s, p.names) }

// Extents returns the bounding box of the root, computed on first use.
func (p *Part) Extents() topo.Extents {
	p.extOnce.Do(func() { p.ext = topo.Of(p.root) })
	return p.ext
}

func (p *Part) String() string {
	return fmt.Sprintf("Part(%s, %d labels, %s)", p.root.Kind(), p.names.Len(), p.Extents())
}

// ---------------------------------------------------------------------------
// Label lookup
// ---------------------------------------------------------------------------

// Get returns the entities under label.
func (p *Part) Get(label string) ([]kernel.Shape, error) {
	return p.names.Get(label)
}

// GetSingle returns the only entity under label.
func (p *Part) GetSingle(label string) (kernel.Shape, error) {
	l, err := p.names.Get(label)
	if err != nil {
		return nil, err
	}
	if len(l) != 1 {
		return nil, fmt.Errorf("%w: label %q holds %d entities", ErrNotSingle, label, len(l))
	}
	return l[0], nil
}

// GetCompound returns a compound of the entities under label.
func (p *Part) GetCompound(label string) (kernel.Shape, error) {
	l, err := p.names.Get(label)
	if err != nil {
		return nil, err
	}
	return p.k.Compound(l...), nil
}

// SingleSubpart re-roots the part at the only entity under label. The map
// is carried over unchanged.
func (p *Part) SingleSubpart(label string) (*Part, error) {
	s, err := p.GetSingle(label)
	if err != nil {
		return nil, err
	}
	return p.wrap(s), nil
}

// CompoundSubpart re-roots the part at a compound of the entities under
// label.
func (p *Part) CompoundSubpart(label string) (*Part, error) {
	s, err := p.GetCompound(label)
	if err != nil {
		return nil, err
	}
	return p.wrap(s), nil
}

// ---------------------------------------------------------------------------
// Pure map transforms
// ---------------------------------------------------------------------------

// Pruned drops every named entity the root no longer reaches, and every
// label left empty.
func (p *Part) Pruned() *Part {
	return p.with(p.names.Prune(p.root))
}

// StaleLabels lists, in order, the labels Pruned would drop: empty ones and
// those naming nothing below the root. A label holding only the root is
// stale.
func (p *Part) StaleLabels() []string {
	kept := p.names.Prune(p.root)
	var out []string
	for _, l := range p.names.Labels() {
		if !kept.Has(l) {
			out = append(out, l)
		}
	}
	return out
}

// RenameSubshape moves the list under from to to.
func (p *Part) RenameSubshape(from, to string) (*Part, error) {
	m, err := p.names.Rename(from, to)
	if err != nil {
		return nil, fmt.Errorf("part: rename: %w", err)
	}
	return p.with(m), nil
}

// Subpart keeps only the labels starting with prefix, stripping it when
// trim is set. The root is unchanged.
func (p *Part) Subpart(prefix string, trim bool) *Part {
	return p.with(p.names.Subpart(prefix, trim))
}

// WithLabel names the root. It fails when another label already holds
// exactly the root; otherwise the root is appended under name.
func (p *Part) WithLabel(name string) (*Part, error) {
	if other, ok := p.names.LabelOfExactly(p.root); ok && other != name {
		return nil, fmt.Errorf("%w: as %q", ErrAlreadyNamed, other)
	}
	return p.with(p.names.With(name, p.root)), nil
}

// Name moves the root from whatever labels hold it to name alone.
func (p *Part) Name(name string) *Part {
	return p.with(p.names.Without(p.root).Replace(name, p.root))
}

// WithLabelRecursive is Name that also files every sub-entity accepted by
// filter under name, in traversal order. A nil filter accepts everything.
func (p *Part) WithLabelRecursive(name string, filter func(kernel.Shape) bool) *Part {
	list := []kernel.Shape{p.root}
	for _, s := range topo.AllSubshapes(p.root) {
		if filter == nil || filter(s) {
			list = append(list, s)
		}
	}
	return p.with(p.names.Without(p.root).Replace(name, list...))
}

// ---------------------------------------------------------------------------
// Composition
// ---------------------------------------------------------------------------

// Do applies fn to p.
func (p *Part) Do(fn func(*Part) (*Part, error)) (*Part, error) {
	return fn(p)
}

// DoAndAdd adds the result of fn(p) to p.
func (p *Part) DoAndAdd(fn func(*Part) (*Part, error)) (*Part, error) {
	q, err := fn(p)
	if err != nil {
		return nil, err
	}
	return p.Add(q), nil
}

// Add returns a compound of p and others. Label maps are merged with p's
// entries first; nothing is rebuilt, so no propagation is needed.
func (p *Part) Add(others ...*Part) *Part {
	return p.AddPrefixed("", others...)
}

// AddPrefixed is Add with prefix prepended to every label of others.
func (p *Part) AddPrefixed(prefix string, others ...*Part) *Part {
	shapes := []kernel.Shape{p.root}
	maps := []naming.Map{p.names}
	for _, o := range others {
		shapes = append(shapes, o.root)
		maps = append(maps, o.names.Prefixed(prefix))
	}
	return New(p.k, p.k.Compound(shapes...), naming.Merge(maps...))
}

// Pattern applies fn to p for every index and adds the results together.
// No indices is an error.
func (p *Part) Pattern(indices []int, fn func(i int, p *Part) (*Part, error)) (*Part, error) {
	var out *Part
	for _, i := range indices {
		q, err := fn(i, p)
		if err != nil {
			return nil, fmt.Errorf("part: pattern: index %d: %w", i, err)
		}
		if out == nil {
			out = q
		} else {
			out = out.Add(q)
		}
	}
	if out == nil {
		return nil, ErrEmptyPattern
	}
	return out, nil
}

// Range returns the indices [0, n).
func Range(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// ---------------------------------------------------------------------------
// Propagation
// ---------------------------------------------------------------------------

// derive builds the Part produced by the operation behind h, carrying p's
// names through it.
func (p *Part) derive(h history.OperationHistory, match naming.Match) *Part {
	return propagated(p.k, p.names, h, match)
}

func propagated(k kernel.Kernel, names naming.Map, h history.OperationHistory, match naming.Match) *Part {
	root := h.Shape()
	return New(k, root, naming.Propagate(names, root, h, match))
}

// Perform carries p's labels through a make-shape operation run on its
// root, failing when the operation did not complete. match enables the
// identity fallbacks of naming.Propagate.
func (p *Part) Perform(op string, m kernel.MakeShape, match naming.Match) (*Part, error) {
	h, err := history.FromMakeShape(op, m)
	if err != nil {
		return nil, fmt.Errorf("part: %w", err)
	}
	return p.derive(h, match), nil
}
