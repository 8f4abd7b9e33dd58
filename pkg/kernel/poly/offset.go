package poly

import (
	"github.com/chazu/facet/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

// Offset shifts a planar wire (or a face's outer wire) sideways by amount.
// Positive amounts move closed loops outward. Corners are always mitred;
// join only changes the log output since every edge here is straight.
func (k *Kernel) Offset(s kernel.Shape, amount float64, join kernel.JoinType, open bool) kernel.OffsetAlgo {
	src, err := unwrap(s)
	if err != nil {
		return &offsetOp{code: kernel.OffsetBadInput}
	}
	var w shape
	var n v3.Vec
	switch src.t.kind {
	case kernel.Wire:
		w = src
	case kernel.Face:
		w = src.outerWire()
		n = src.normal()
	default:
		return &offsetOp{code: kernel.OffsetBadInput}
	}

	edges := w.orientedEdges()
	closed := w.isClosed()
	if !closed && !open {
		return &offsetOp{code: kernel.OffsetUnsupported}
	}
	pts := w.loopPoints()
	if !closed {
		_, last := edges[len(edges)-1].ends()
		pts = append(pts, last.t.pt)
	}

	if n.Length() == 0 {
		if closed {
			n = unit(newell(pts))
		} else {
			for i := 0; i+2 < len(pts) && n.Length() == 0; i++ {
				n = unit(pts[i+1].Sub(pts[i]).Cross(pts[i+2].Sub(pts[i+1])))
			}
		}
	}
	if n.Length() == 0 || planeDeviation(pts, pts[0], n) > k.tol {
		return &offsetOp{code: kernel.OffsetNotPlanar}
	}

	m := len(edges)
	dirs := make([]v3.Vec, m)
	shifted := make([]v3.Vec, m)
	for i, e := range edges {
		a, b := e.segment()
		dirs[i] = unit(b.Sub(a))
		shifted[i] = a.Add(dirs[i].Cross(n).MulScalar(amount))
	}

	corner := func(prev, next int, at v3.Vec) v3.Vec {
		if p, ok := lineIntersect(shifted[prev], dirs[prev], shifted[next], dirs[next], n); ok {
			return p
		}
		return at.Add(dirs[next].Cross(n).MulScalar(amount))
	}
	var newPts []v3.Vec
	if closed {
		for j := 0; j < m; j++ {
			newPts = append(newPts, corner((j+m-1)%m, j, pts[j]))
		}
	} else {
		newPts = append(newPts, shifted[0])
		for j := 1; j < m; j++ {
			newPts = append(newPts, corner(j-1, j, pts[j]))
		}
		newPts = append(newPts, pts[m].Add(dirs[m-1].Cross(n).MulScalar(amount)))
	}

	rec := newRecord(src)
	verts := make([]shape, len(newPts))
	oldVerts := w.loopVertices()
	if !closed {
		_, last := edges[m-1].ends()
		oldVerts = append(oldVerts, last)
	}
	for i, p := range newPts {
		verts[i] = newVertex(p)
		rec.modify(oldVerts[i], verts[i])
	}
	newEdges := make([]shape, m)
	for i, e := range edges {
		a, b := verts[i], verts[(i+1)%len(verts)]
		if b.t.pt.Sub(a.t.pt).Dot(dirs[i]) <= k.tol {
			k.log.Debug("offset collapsed an edge", zap.Int("edge", i), zap.Float64("amount", amount))
			return &offsetOp{code: kernel.OffsetCannotTrim}
		}
		newEdges[i] = newEdge(a, b)
		rec.modify(e, newEdges[i])
	}
	nw := newWire(newEdges...)
	rec.modify(w, nw)
	rec.setResult(nw)
	k.log.Debug("offset", zap.Float64("amount", amount), zap.Int("join", int(join)), zap.Bool("closed", closed))
	return &offsetOp{rec: rec}
}
