package topo

import "github.com/chazu/facet/pkg/kernel"

// AllSubshapes returns every entity reachable from s, depth first, s itself
// excluded. Shared entities appear once per occurrence.
func AllSubshapes(s kernel.Shape) []kernel.Shape {
	var out []kernel.Shape
	var walk func(kernel.Shape)
	walk = func(p kernel.Shape) {
		for _, c := range p.Children() {
			out = append(out, c)
			walk(c)
		}
	}
	walk(s)
	return out
}

// Closure returns the identity set of s and everything reachable from it.
func Closure(s kernel.Shape) *Set {
	set := NewSet(s)
	for _, c := range AllSubshapes(s) {
		set.Add(c)
	}
	return set
}

// Explore lists the entities of kind under s in traversal order. The search
// stops descending at the first match on every branch, and s itself is
// returned when it already has the kind. No deduplication is done: an edge
// shared by two faces of a solid is listed twice. AnyShape lists the full
// closure below s.
func Explore(s kernel.Shape, kind kernel.ShapeKind) []kernel.Shape {
	if kind == kernel.AnyShape {
		return AllSubshapes(s)
	}
	var out []kernel.Shape
	var walk func(kernel.Shape)
	walk = func(p kernel.Shape) {
		if p.Kind() == kind {
			out = append(out, p)
			return
		}
		if p.Kind() > kind {
			return
		}
		for _, c := range p.Children() {
			walk(c)
		}
	}
	walk(s)
	return out
}

// ExploreUnique is Explore with repeats of the same entity removed.
func ExploreUnique(s kernel.Shape, kind kernel.ShapeKind) []kernel.Shape {
	return Dedupe(Explore(s, kind))
}

// IsClosedWire reports whether every vertex of w bounds exactly two of its
// edges.
func IsClosedWire(w kernel.Shape) bool {
	edges := Explore(w, kernel.Edge)
	if len(edges) == 0 {
		return false
	}
	var verts []kernel.Shape
	for _, e := range edges {
		verts = append(verts, Explore(e, kernel.Vertex)...)
	}
	for _, v := range Dedupe(verts) {
		n := 0
		for _, o := range verts {
			if o.IsSame(v) {
				n++
			}
		}
		if n != 2 {
			return false
		}
	}
	return true
}
