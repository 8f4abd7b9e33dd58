package poly

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Constructive solid geometry on convex polygon soups using BSP trees.
// Every polygon carries the index of the patch it was cut from so the
// rebuilt faces can be traced back to their inputs.

const csgEpsilon = 1e-5

type csgPlane struct {
	n v3.Vec
	w float64
}

func (p csgPlane) flipped() csgPlane {
	return csgPlane{n: p.n.MulScalar(-1), w: -p.w}
}

type csgPolygon struct {
	pts   []v3.Vec
	plane csgPlane
	src   int
}

func newCSGPolygon(pts []v3.Vec, src int) (csgPolygon, bool) {
	n := unit(newell(pts))
	if n.Length() == 0 {
		return csgPolygon{}, false
	}
	return csgPolygon{pts: pts, plane: csgPlane{n: n, w: n.Dot(centroid(pts))}, src: src}, true
}

func (p csgPolygon) flipped() csgPolygon {
	return csgPolygon{pts: reversePoints(p.pts), plane: p.plane.flipped(), src: p.src}
}

const (
	csgCoplanar = 0
	csgFront    = 1
	csgBack     = 2
	csgSpanning = 3
)

// split sorts poly into the four lists relative to the plane, cutting it
// when it spans.
func (pl csgPlane) split(poly csgPolygon, coFront, coBack, front, back *[]csgPolygon) {
	polyType := 0
	types := make([]int, len(poly.pts))
	for i, v := range poly.pts {
		t := pl.n.Dot(v) - pl.w
		typ := csgCoplanar
		if t < -csgEpsilon {
			typ = csgBack
		} else if t > csgEpsilon {
			typ = csgFront
		}
		polyType |= typ
		types[i] = typ
	}

	switch polyType {
	case csgCoplanar:
		if pl.n.Dot(poly.plane.n) > 0 {
			*coFront = append(*coFront, poly)
		} else {
			*coBack = append(*coBack, poly)
		}
	case csgFront:
		*front = append(*front, poly)
	case csgBack:
		*back = append(*back, poly)
	default:
		var f, b []v3.Vec
		n := len(poly.pts)
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			ti, tj := types[i], types[j]
			vi, vj := poly.pts[i], poly.pts[j]
			if ti != csgBack {
				f = append(f, vi)
			}
			if ti != csgFront {
				b = append(b, vi)
			}
			if ti|tj == csgSpanning {
				t := (pl.w - pl.n.Dot(vi)) / pl.n.Dot(vj.Sub(vi))
				v := lerp(vi, vj, t)
				f = append(f, v)
				b = append(b, v)
			}
		}
		if len(f) >= 3 {
			*front = append(*front, csgPolygon{pts: f, plane: poly.plane, src: poly.src})
		}
		if len(b) >= 3 {
			*back = append(*back, csgPolygon{pts: b, plane: poly.plane, src: poly.src})
		}
	}
}

type bspNode struct {
	plane       *csgPlane
	front, back *bspNode
	polys       []csgPolygon
}

func newBSP(polys []csgPolygon) *bspNode {
	n := &bspNode{}
	n.build(polys)
	return n
}

func (n *bspNode) invert() {
	for i := range n.polys {
		n.polys[i] = n.polys[i].flipped()
	}
	if n.plane != nil {
		f := n.plane.flipped()
		n.plane = &f
	}
	if n.front != nil {
		n.front.invert()
	}
	if n.back != nil {
		n.back.invert()
	}
	n.front, n.back = n.back, n.front
}

// clipPolygons removes the parts of polys inside this tree.
func (n *bspNode) clipPolygons(polys []csgPolygon) []csgPolygon {
	if n.plane == nil {
		return append([]csgPolygon(nil), polys...)
	}
	var front, back []csgPolygon
	for _, p := range polys {
		n.plane.split(p, &front, &back, &front, &back)
	}
	if n.front != nil {
		front = n.front.clipPolygons(front)
	}
	if n.back != nil {
		back = n.back.clipPolygons(back)
	} else {
		back = nil
	}
	return append(front, back...)
}

func (n *bspNode) clipTo(o *bspNode) {
	n.polys = o.clipPolygons(n.polys)
	if n.front != nil {
		n.front.clipTo(o)
	}
	if n.back != nil {
		n.back.clipTo(o)
	}
}

func (n *bspNode) allPolygons() []csgPolygon {
	out := append([]csgPolygon(nil), n.polys...)
	if n.front != nil {
		out = append(out, n.front.allPolygons()...)
	}
	if n.back != nil {
		out = append(out, n.back.allPolygons()...)
	}
	return out
}

func (n *bspNode) build(polys []csgPolygon) {
	if len(polys) == 0 {
		return
	}
	if n.plane == nil {
		p := polys[0].plane
		n.plane = &p
	}
	var front, back []csgPolygon
	for _, p := range polys {
		n.plane.split(p, &n.polys, &n.polys, &front, &back)
	}
	if len(front) > 0 {
		if n.front == nil {
			n.front = &bspNode{}
		}
		n.front.build(front)
	}
	if len(back) > 0 {
		if n.back == nil {
			n.back = &bspNode{}
		}
		n.back.build(back)
	}
}

func csgUnion(a, b []csgPolygon) []csgPolygon {
	na, nb := newBSP(a), newBSP(b)
	na.clipTo(nb)
	nb.clipTo(na)
	nb.invert()
	nb.clipTo(na)
	nb.invert()
	na.build(nb.allPolygons())
	return na.allPolygons()
}

func csgSubtract(a, b []csgPolygon) []csgPolygon {
	na, nb := newBSP(a), newBSP(b)
	na.invert()
	na.clipTo(nb)
	nb.clipTo(na)
	nb.invert()
	nb.clipTo(na)
	nb.invert()
	na.build(nb.allPolygons())
	na.invert()
	return na.allPolygons()
}

func csgIntersect(a, b []csgPolygon) []csgPolygon {
	na, nb := newBSP(a), newBSP(b)
	na.invert()
	nb.clipTo(na)
	nb.invert()
	na.clipTo(nb)
	nb.clipTo(na)
	na.build(nb.allPolygons())
	na.invert()
	return na.allPolygons()
}
