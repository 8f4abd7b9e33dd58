package poly

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/chazu/facet/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// tshapeCounter hands out entity ids. Ids only need to be unique within
// the process; they feed HashCode.
var tshapeCounter atomic.Uint64

// tshape is the shared topological entity. Handles (shape values) point
// at it; two handles are the same entity iff they share the pointer.
type tshape struct {
	id       uint64
	kind     kernel.ShapeKind
	children []shape
	pt       v3.Vec // vertices only
}

// shape is an oriented handle to a tshape.
type shape struct {
	t      *tshape
	orient kernel.Orientation
}

var _ kernel.Shape = shape{}

func newTShape(kind kernel.ShapeKind, children ...shape) *tshape {
	return &tshape{id: tshapeCounter.Add(1), kind: kind, children: children}
}

func newVertex(p v3.Vec) shape {
	t := newTShape(kernel.Vertex)
	t.pt = p
	return shape{t: t}
}

// newEdge creates a straight edge. Following the usual B-Rep convention
// the start vertex is stored forward and the end vertex reversed.
func newEdge(a, b shape) shape {
	return shape{t: newTShape(kernel.Edge,
		shape{t: a.t},
		shape{t: b.t, orient: kernel.Reversed})}
}

func newWire(edges ...shape) shape {
	return shape{t: newTShape(kernel.Wire, edges...)}
}

func newFace(outer shape, holes ...shape) shape {
	children := append([]shape{outer}, holes...)
	return shape{t: newTShape(kernel.Face, children...)}
}

func newShell(faces ...shape) shape {
	return shape{t: newTShape(kernel.Shell, faces...)}
}

func newSolid(shells ...shape) shape {
	return shape{t: newTShape(kernel.Solid, shells...)}
}

func newCompound(children ...shape) shape {
	return shape{t: newTShape(kernel.Compound, children...)}
}

// ---------------------------------------------------------------------------
// kernel.Shape
// ---------------------------------------------------------------------------

func (s shape) Kind() kernel.ShapeKind { return s.t.kind }

func (s shape) Orientation() kernel.Orientation { return s.orient }

func (s shape) Reversed() kernel.Shape { return s.reversed() }

func (s shape) reversed() shape { return shape{t: s.t, orient: s.orient.Reverse()} }

func (s shape) IsSame(other kernel.Shape) bool {
	o, ok := other.(shape)
	return ok && o.t == s.t
}

// IsPartner is identical to IsSame: this kernel has no located instances,
// so two handles sharing topology always share placement too.
func (s shape) IsPartner(other kernel.Shape) bool {
	return s.IsSame(other)
}

func (s shape) HashCode(upper int) int {
	if upper <= 0 {
		return 0
	}
	return int(s.t.id % uint64(upper))
}

func (s shape) Children() []kernel.Shape {
	out := make([]kernel.Shape, len(s.t.children))
	for i, c := range s.t.children {
		out[i] = c.composed(s.orient)
	}
	return out
}

func (s shape) BoundingBox() (min, max [3]float64) {
	lo := v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := v3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	found := false
	for _, v := range collect(s, kernel.Vertex) {
		p := v.t.pt
		lo = v3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = v3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
		found = true
	}
	if !found {
		return min, max
	}
	return [3]float64{lo.X, lo.Y, lo.Z}, [3]float64{hi.X, hi.Y, hi.Z}
}

func (s shape) String() string {
	if s.t == nil {
		return "<nil>"
	}
	if s.t.kind == kernel.Vertex {
		return fmt.Sprintf("vertex#%d(%g, %g, %g)", s.t.id, s.t.pt.X, s.t.pt.Y, s.t.pt.Z)
	}
	return fmt.Sprintf("%s#%d", s.t.kind, s.t.id)
}

// ---------------------------------------------------------------------------
// Topology accessors
// ---------------------------------------------------------------------------

func (s shape) composed(parent kernel.Orientation) shape {
	return shape{t: s.t, orient: s.orient.Compose(parent)}
}

func (s shape) child(i int) shape {
	return s.t.children[i].composed(s.orient)
}

// ends returns the start and end vertex of an edge in traversal order.
func (s shape) ends() (start, end shape) {
	a := shape{t: s.t.children[0].t}
	b := shape{t: s.t.children[1].t}
	if s.orient == kernel.Reversed {
		return b, a
	}
	return a, b
}

// segment returns the oriented end points of an edge.
func (s shape) segment() (v3.Vec, v3.Vec) {
	a, b := s.ends()
	return a.t.pt, b.t.pt
}

// orientedEdges returns the edges of a wire in traversal order.
func (s shape) orientedEdges() []shape {
	n := len(s.t.children)
	out := make([]shape, n)
	for i := range s.t.children {
		out[i] = s.child(i)
	}
	if s.orient == kernel.Reversed {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// loopVertices returns the start vertex of each edge of a wire.
func (s shape) loopVertices() []shape {
	edges := s.orientedEdges()
	out := make([]shape, len(edges))
	for i, e := range edges {
		out[i], _ = e.ends()
	}
	return out
}

func (s shape) loopPoints() []v3.Vec {
	vs := s.loopVertices()
	out := make([]v3.Vec, len(vs))
	for i, v := range vs {
		out[i] = v.t.pt
	}
	return out
}

// isClosed reports whether a wire ends where it starts.
func (s shape) isClosed() bool {
	edges := s.orientedEdges()
	if len(edges) == 0 {
		return false
	}
	first, _ := edges[0].ends()
	_, last := edges[len(edges)-1].ends()
	return first.t == last.t
}

// wires returns the wires of a face, outer first.
func (s shape) wires() []shape {
	out := make([]shape, len(s.t.children))
	for i := range s.t.children {
		out[i] = s.child(i)
	}
	return out
}

func (s shape) outerWire() shape {
	return s.child(0)
}

// loops returns the point loops of a face, outer first.
func (s shape) loops() [][]v3.Vec {
	ws := s.wires()
	out := make([][]v3.Vec, len(ws))
	for i, w := range ws {
		out[i] = w.loopPoints()
	}
	return out
}

// normal returns the unit normal of a face, honouring its orientation.
func (s shape) normal() v3.Vec {
	return unit(newell(s.outerWire().loopPoints()))
}

// usesEdge returns the oriented use of edge e inside face f, if any.
func (s shape) usesEdge(e shape) (shape, bool) {
	for _, w := range s.wires() {
		for _, oe := range w.orientedEdges() {
			if oe.t == e.t {
				return oe, true
			}
		}
	}
	return shape{}, false
}

// ---------------------------------------------------------------------------
// Traversal
// ---------------------------------------------------------------------------

// walk visits every distinct entity reachable from s, s included, depth
// first. Orientation is composed along the first path reaching an entity.
func walk(s shape, fn func(shape)) {
	seen := make(map[*tshape]bool)
	var visit func(shape)
	visit = func(c shape) {
		if seen[c.t] {
			return
		}
		seen[c.t] = true
		fn(c)
		for i := range c.t.children {
			visit(c.child(i))
		}
	}
	visit(s)
}

// collect returns the distinct entities of the given kind reachable from s.
func collect(s shape, kind kernel.ShapeKind) []shape {
	var out []shape
	walk(s, func(c shape) {
		if kind == kernel.AnyShape || c.t.kind == kind {
			out = append(out, c)
		}
	})
	return out
}

func collectAll(shapes []shape, kind kernel.ShapeKind) []shape {
	seen := make(map[*tshape]bool)
	var out []shape
	for _, s := range shapes {
		for _, c := range collect(s, kind) {
			if !seen[c.t] {
				seen[c.t] = true
				out = append(out, c)
			}
		}
	}
	return out
}
