package part

import (
	"fmt"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/topo"
)

// Selector picks entities during a facade call. A nil Selector picks all.
type Selector func(kernel.Shape) bool

func (s Selector) pick(list []kernel.Shape) []kernel.Shape {
	if s == nil {
		return list
	}
	var out []kernel.Shape
	for _, e := range list {
		if s(e) {
			out = append(out, e)
		}
	}
	return out
}

// FilletEdges rounds the selected edges. Faces created by the fillet
// inherit the labels of the edge they round.
func (p *Part) FilletEdges(radius float64, sel Selector) (*Part, error) {
	return p.fillet(radius, sel.pick(topo.ExploreUnique(p.root, kernel.Edge)))
}

// ChamferEdges bevels the selected edges.
func (p *Part) ChamferEdges(dist float64, sel Selector) (*Part, error) {
	return p.chamfer(dist, sel.pick(topo.ExploreUnique(p.root, kernel.Edge)))
}

// FilletFaces rounds every edge of the selected faces.
func (p *Part) FilletFaces(radius float64, sel Selector) (*Part, error) {
	return p.fillet(radius, edgesOf(sel.pick(topo.ExploreUnique(p.root, kernel.Face))...))
}

// ChamferFaces bevels every edge of the selected faces.
func (p *Part) ChamferFaces(dist float64, sel Selector) (*Part, error) {
	return p.chamfer(dist, edgesOf(sel.pick(topo.ExploreUnique(p.root, kernel.Face))...))
}

// FilletByName rounds the entities under the given labels: edges directly,
// anything else through its edges.
func (p *Part) FilletByName(radius float64, labels ...string) (*Part, error) {
	edges, err := p.labelledEdges("fillet", labels)
	if err != nil {
		return nil, err
	}
	return p.fillet(radius, edges)
}

// ChamferByName is FilletByName for chamfers.
func (p *Part) ChamferByName(dist float64, labels ...string) (*Part, error) {
	edges, err := p.labelledEdges("chamfer", labels)
	if err != nil {
		return nil, err
	}
	return p.chamfer(dist, edges)
}

// FilletByQuery rounds the edges of whatever q selects.
func (p *Part) FilletByQuery(radius float64, q string) (*Part, error) {
	found, err := p.QueryShapes(q)
	if err != nil {
		return nil, err
	}
	return p.fillet(radius, edgesOf(found...))
}

func (p *Part) labelledEdges(op string, labels []string) ([]kernel.Shape, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("part: %s: %w: no labels given", op, ErrNoOperands)
	}
	var shapes []kernel.Shape
	for _, l := range labels {
		list, err := p.names.Get(l)
		if err != nil {
			return nil, fmt.Errorf("part: %s: %w", op, err)
		}
		shapes = append(shapes, list...)
	}
	return edgesOf(shapes...), nil
}

func (p *Part) fillet(radius float64, edges []kernel.Shape) (*Part, error) {
	return p.Perform("fillet", p.k.Fillet(p.root, radius, edges), 0)
}

func (p *Part) chamfer(dist float64, edges []kernel.Shape) (*Part, error) {
	return p.Perform("chamfer", p.k.Chamfer(p.root, dist, edges), 0)
}

// edgesOf collects the unique edges of shapes, an edge standing for itself.
func edgesOf(shapes ...kernel.Shape) []kernel.Shape {
	set := &topo.Set{}
	var out []kernel.Shape
	for _, s := range shapes {
		for _, e := range topo.Explore(s, kernel.Edge) {
			if set.Add(e) {
				out = append(out, e)
			}
		}
	}
	return out
}
