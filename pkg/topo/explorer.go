package topo

import (
	"fmt"
	"sort"

	"github.com/chazu/facet/pkg/kernel"
)

// Explorer is a filterable, orderable listing of the entities of one kind
// under a root. Filters compose with AND; the last OrderBy wins.
type Explorer struct {
	root  kernel.Shape
	kind  kernel.ShapeKind
	preds []func(kernel.Shape) bool
	key   func(kernel.Shape) float64
}

// NewExplorer lists entities of kind under root.
func NewExplorer(root kernel.Shape, kind kernel.ShapeKind) *Explorer {
	return &Explorer{root: root, kind: kind}
}

// Filter narrows the listing to entities satisfying pred.
func (e *Explorer) Filter(pred func(kernel.Shape) bool) *Explorer {
	e.preds = append(e.preds, pred)
	return e
}

// OrderBy sorts the listing by key, stably, replacing any earlier key.
func (e *Explorer) OrderBy(key func(kernel.Shape) float64) *Explorer {
	e.key = key
	return e
}

// Get returns the filtered, ordered listing. An empty result is not an error.
func (e *Explorer) Get() []kernel.Shape {
	var out []kernel.Shape
outer:
	for _, s := range Explore(e.root, e.kind) {
		for _, p := range e.preds {
			if !p(s) {
				continue outer
			}
		}
		out = append(out, s)
	}
	if e.key != nil {
		keys := make([]float64, len(out))
		idx := make([]int, len(out))
		for i, s := range out {
			idx[i] = i
			keys[i] = e.key(s)
		}
		sort.SliceStable(idx, func(a, b int) bool { return keys[idx[a]] < keys[idx[b]] })
		sorted := make([]kernel.Shape, len(out))
		for i, j := range idx {
			sorted[i] = out[j]
		}
		out = sorted
	}
	return out
}

// GetSingle returns the only entity in the listing.
func (e *Explorer) GetSingle() (kernel.Shape, error) {
	res := e.Get()
	if len(res) != 1 {
		return nil, fmt.Errorf("%w: expected result of explore to be a single element, was instead %d", ErrNotSingle, len(res))
	}
	return res[0], nil
}

// ExtentsKey orders by a quantity derived from each entity's extents.
func ExtentsKey(fn func(Extents) float64) func(kernel.Shape) float64 {
	return func(s kernel.Shape) float64 { return fn(Of(s)) }
}

// ExtentsFilter keeps entities whose extents satisfy fn.
func ExtentsFilter(fn func(Extents) bool) func(kernel.Shape) bool {
	return func(s kernel.Shape) bool { return fn(Of(s)) }
}

// LineFilter keeps entities that are thin along every axis but axis.
func LineFilter(axis Axis, tol float64) func(kernel.Shape) bool {
	return ExtentsFilter(func(e Extents) bool {
		for a := X; a <= Z; a++ {
			span := e.Span(a)
			if a == axis && span <= tol {
				return false
			}
			if a != axis && span >= tol {
				return false
			}
		}
		return true
	})
}

// DepthMid orders by the middle of the z range.
func DepthMid(s kernel.Shape) float64 {
	return Of(s).Mid(Z)
}
