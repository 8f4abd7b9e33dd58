package poly

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ---------------------------------------------------------------------------
// Prism
// ---------------------------------------------------------------------------

type prismer struct {
	d     v3.Vec
	rec   *record
	base  *copier
	top   *copier
	ruled map[*tshape]shape
	sides map[*tshape]shape
}

// Prism sweeps s along d. Vertices become edges, edges faces, wires
// shells, faces solids. The base is a copy of s and the top a translated
// copy; ruled edges and side faces are generated from the entities that
// swept them.
func (k *Kernel) Prism(s kernel.Shape, d v3.Vec) kernel.Sweep {
	src, err := unwrap(s)
	if err != nil {
		return failed(fmt.Errorf("poly: prism: %w", err))
	}
	if d.Length() <= k.tol {
		return failed(errors.New("poly: prism: zero length direction"))
	}
	p := &prismer{
		d:     d,
		rec:   newRecord(src),
		base:  newCopier(sdf.Identity3d()),
		top:   newCopier(sdf.Translate3d(d)),
		ruled: make(map[*tshape]shape),
		sides: make(map[*tshape]shape),
	}
	out, first, last, err := p.sweep(src)
	if err != nil {
		return failed(fmt.Errorf("poly: prism: %w", err))
	}
	p.rec.setResult(out)
	p.base.recordCopies(p.rec)
	return &makeShapeOp{rec: p.rec, first: first, last: last}
}

func (p *prismer) sweep(s shape) (out, first, last shape, err error) {
	switch s.t.kind {
	case kernel.Vertex:
		e := p.ruledEdge(s)
		return e, p.base.copy(s), p.top.copy(s), nil
	case kernel.Edge:
		f := p.sideFace(s, false)
		return f, p.base.copy(s), p.top.copy(s), nil
	case kernel.Wire:
		var faces []shape
		for _, e := range s.orientedEdges() {
			faces = append(faces, p.sideFace(e, false))
		}
		sh := newShell(faces...)
		p.rec.generate(s, sh)
		return sh, p.base.copy(s), p.top.copy(s), nil
	case kernel.Face:
		return p.sweepFace(s)
	case kernel.Compound:
		var outs, firsts, lasts []shape
		for i := range s.t.children {
			o, f, l, err := p.sweep(s.child(i))
			if err != nil {
				return shape{}, shape{}, shape{}, err
			}
			outs = append(outs, o)
			firsts = append(firsts, f)
			lasts = append(lasts, l)
		}
		c := newCompound(outs...)
		return c, newCompound(firsts...), newCompound(lasts...), nil
	}
	return shape{}, shape{}, shape{}, fmt.Errorf("cannot sweep a %s", s.t.kind)
}

func (p *prismer) sweepFace(f shape) (out, first, last shape, err error) {
	n := f.normal()
	up := p.d.Dot(n) > 0
	if math.Abs(p.d.Dot(n)) < 1e-12 {
		return shape{}, shape{}, shape{}, errors.New("direction lies in the face plane")
	}
	bottom := p.base.copy(f)
	top := p.top.copy(f)
	if up {
		bottom = bottom.reversed()
	} else {
		top = top.reversed()
	}
	faces := []shape{bottom}
	for _, w := range f.wires() {
		for _, e := range w.orientedEdges() {
			faces = append(faces, p.sideFace(e, !up))
		}
	}
	faces = append(faces, top)
	so := newSolid(newShell(faces...))
	p.rec.generate(f, so)
	return so, bottom, top, nil
}

// ruledEdge returns the edge swept by vertex v.
func (p *prismer) ruledEdge(v shape) shape {
	if e, ok := p.ruled[v.t]; ok {
		return e
	}
	e := newEdge(p.base.copy(shape{t: v.t}), p.top.copy(shape{t: v.t}))
	p.ruled[v.t] = e
	p.rec.generate(v, e)
	return e
}

// sideFace returns the face swept by oriented edge e. The face normal is
// edge direction x sweep direction, inverted when flip is set.
func (p *prismer) sideFace(e shape, flip bool) shape {
	f, ok := p.sides[e.t]
	if !ok {
		fwd := shape{t: e.t}
		a, b := fwd.ends()
		f = newFace(newWire(
			p.base.copy(fwd),
			p.ruledEdge(b),
			p.top.copy(fwd).reversed(),
			p.ruledEdge(a).reversed(),
		))
		p.sides[e.t] = f
		p.rec.generate(fwd, f)
	}
	if (e.orient == kernel.Reversed) != flip {
		return f.reversed()
	}
	return f
}

// ---------------------------------------------------------------------------
// Loft
// ---------------------------------------------------------------------------

type loftProfile struct {
	wire   shape
	edges  []shape
	verts  []shape
	pts    []v3.Vec
	params []float64 // normalised arc length at each vertex, plus 1
}

func newLoftProfile(w shape) (*loftProfile, error) {
	if !w.isClosed() {
		return nil, errors.New("profile wire is not closed")
	}
	lp := &loftProfile{wire: w, edges: w.orientedEdges()}
	lp.verts = w.loopVertices()
	lp.pts = w.loopPoints()
	total := 0.0
	lens := make([]float64, len(lp.edges))
	for i, e := range lp.edges {
		a, b := e.segment()
		lens[i] = b.Sub(a).Length()
		total += lens[i]
	}
	if total == 0 {
		return nil, errors.New("profile wire has zero length")
	}
	acc := 0.0
	for _, l := range lens {
		lp.params = append(lp.params, acc/total)
		acc += l
	}
	lp.params = append(lp.params, 1)
	return lp, nil
}

const paramEps = 1e-9

// at returns the point at normalised parameter t, the edge it lies on and
// the vertex sitting exactly there (if any).
func (lp *loftProfile) at(t float64) (v3.Vec, int, *shape) {
	for j := range lp.edges {
		t0, t1 := lp.params[j], lp.params[j+1]
		if math.Abs(t-t0) < paramEps {
			return lp.pts[j], j, &lp.verts[j]
		}
		if t > t0 && t < t1 {
			a, b := lp.edges[j].segment()
			return lerp(a, b, (t-t0)/(t1-t0)), j, nil
		}
	}
	last := len(lp.edges) - 1
	a, b := lp.edges[last].segment()
	return lerp(a, b, (t-lp.params[last])/(1-lp.params[last])), last, nil
}

// Loft skins closed profile wires with ruled faces. Profiles are resampled
// at the union of their normalised arc-length breakpoints so every pair of
// consecutive profiles has matching vertex counts.
func (k *Kernel) Loft(profiles []kernel.Shape, solid bool) kernel.Sweep {
	if len(profiles) < 2 {
		return failed(errors.New("poly: loft: at least 2 profiles are required"))
	}
	var inputs []shape
	var lps []*loftProfile
	for i, s := range profiles {
		w, err := unwrapKind(s, kernel.Wire, kernel.Face)
		if err != nil {
			return failed(fmt.Errorf("poly: loft: profile %d: %w", i, err))
		}
		inputs = append(inputs, w)
		if w.t.kind == kernel.Face {
			w = w.outerWire()
		}
		lp, err := newLoftProfile(w)
		if err != nil {
			return failed(fmt.Errorf("poly: loft: profile %d: %w", i, err))
		}
		lps = append(lps, lp)
	}

	var ts []float64
	for _, lp := range lps {
		ts = append(ts, lp.params[:len(lp.params)-1]...)
	}
	sort.Float64s(ts)
	uniq := ts[:0]
	for _, t := range ts {
		if len(uniq) == 0 || t-uniq[len(uniq)-1] > paramEps {
			uniq = append(uniq, t)
		}
	}
	ts = uniq
	n, m := len(lps), len(ts)

	rec := newRecord(inputs...)
	verts := make([][]shape, n)
	srcEdge := make([][]shape, n)
	srcVert := make([][]*shape, n)
	for i, lp := range lps {
		verts[i] = make([]shape, m)
		srcEdge[i] = make([]shape, m)
		srcVert[i] = make([]*shape, m)
		for j, t := range ts {
			p, ei, v := lp.at(t)
			verts[i][j] = newVertex(p)
			srcEdge[i][j] = lp.edges[ei]
			srcVert[i][j] = v
			if v != nil {
				rec.modify(*v, verts[i][j])
			}
		}
	}

	// Profile sub-edges and ruling edges.
	ring := make([][]shape, n)
	for i := range lps {
		ring[i] = make([]shape, m)
		for j := 0; j < m; j++ {
			ring[i][j] = newEdge(verts[i][j], verts[i][(j+1)%m])
			rec.modify(srcEdge[i][j], ring[i][j])
		}
	}
	rails := make([][]shape, n-1)
	for i := 0; i < n-1; i++ {
		rails[i] = make([]shape, m)
		for j := 0; j < m; j++ {
			a, b := verts[i][j], verts[i+1][j]
			if near(a.t.pt, b.t.pt, k.tol) {
				return failed(errors.New("poly: loft: consecutive profiles touch"))
			}
			rails[i][j] = newEdge(a, b)
			for _, v := range []*shape{srcVert[i][j], srcVert[i+1][j]} {
				if v != nil {
					rec.generate(*v, rails[i][j])
				}
			}
		}
	}

	var sides []shape
	for i := 0; i < n-1; i++ {
		for j := 0; j < m; j++ {
			j1 := (j + 1) % m
			a, b := verts[i][j], verts[i][j1]
			c, d := verts[i+1][j1], verts[i+1][j]
			var fs []shape
			quad := []v3.Vec{a.t.pt, b.t.pt, c.t.pt, d.t.pt}
			nq := unit(newell(quad))
			if planeDeviation(quad, a.t.pt, nq) <= k.tol {
				fs = append(fs, newFace(newWire(ring[i][j], rails[i][j1], ring[i+1][j].reversed(), rails[i][j].reversed())))
			} else {
				diag := newEdge(a, c)
				fs = append(fs,
					newFace(newWire(ring[i][j], rails[i][j1], diag.reversed())),
					newFace(newWire(diag, ring[i+1][j].reversed(), rails[i][j].reversed())))
			}
			rec.generate(srcEdge[i][j], fs...)
			rec.generate(srcEdge[i+1][j], fs...)
			sides = append(sides, fs...)
		}
	}

	bottomWire := newWire(ring[0]...)
	topWire := newWire(ring[n-1]...)
	rec.modify(lps[0].wire, bottomWire)
	rec.modify(lps[n-1].wire, topWire)

	if !solid {
		sh := newShell(sides...)
		rec.setResult(sh)
		return &makeShapeOp{rec: rec, first: bottomWire, last: topWire}
	}

	bottom := newFace(bottomWire).reversed()
	top := newFace(topWire)
	faces := append([]shape{bottom}, sides...)
	faces = append(faces, top)
	var loops [][]v3.Vec
	for _, f := range faces {
		loops = append(loops, f.outerWire().loopPoints())
	}
	if signedVolume(loops) < 0 {
		for i := range faces {
			faces[i] = faces[i].reversed()
		}
		bottom, top = faces[0], faces[len(faces)-1]
	}
	rec.setResult(newSolid(newShell(faces...)))
	return &makeShapeOp{rec: rec, first: bottom, last: top}
}
