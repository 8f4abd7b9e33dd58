package poly

import (
	"math"
	"sort"

	"github.com/chazu/facet/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Rebuilding turns polygon patches (CSG fragments, sewn faces, merged
// face domains) back into shared B-Rep topology and records where every
// new face came from.

// source is the provenance of a patch.
type source struct {
	faces []shape // modified into the rebuilt faces
	edges []shape // generated the rebuilt faces
}

// patch is a planar polygon, outer loop first.
type patch struct {
	loops  [][]v3.Vec
	normal v3.Vec
	src    int
}

type faceSpec struct {
	loops [][]int
	src   int
}

type rebuildOptions struct {
	weldTol       float64
	mergeBySource bool
	dropCollinear bool
}

// welder snaps points within tol of each other to one index.
type welder struct {
	tol  float64
	pts  []v3.Vec
	grid map[[3]int64][]int
}

func newWelder(tol float64) *welder {
	return &welder{tol: tol, grid: make(map[[3]int64][]int)}
}

func (w *welder) cell(p v3.Vec) [3]int64 {
	s := w.tol * 4
	return [3]int64{int64(math.Floor(p.X / s)), int64(math.Floor(p.Y / s)), int64(math.Floor(p.Z / s))}
}

func (w *welder) index(p v3.Vec) int {
	c := w.cell(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, i := range w.grid[[3]int64{c[0] + dx, c[1] + dy, c[2] + dz}] {
					if near(w.pts[i], p, w.tol) {
						return i
					}
				}
			}
		}
	}
	i := len(w.pts)
	w.pts = append(w.pts, p)
	w.grid[c] = append(w.grid[c], i)
	return i
}

func (w *welder) loop(pts []v3.Vec) []int {
	var out []int
	for _, p := range pts {
		i := w.index(p)
		if len(out) > 0 && out[len(out)-1] == i {
			continue
		}
		out = append(out, i)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

func loopPts(pts []v3.Vec, idx []int) []v3.Vec {
	out := make([]v3.Vec, len(idx))
	for i, v := range idx {
		out[i] = pts[v]
	}
	return out
}

// rebuildFaces welds, repairs and optionally merges patches into face
// specifications over a shared point list.
func rebuildFaces(patches []patch, opts rebuildOptions) ([]v3.Vec, []faceSpec) {
	w := newWelder(opts.weldTol)
	type wloop struct {
		idx    []int
		patch  int
		isHole bool
	}
	var loops []wloop
	for pi, p := range patches {
		for li, l := range p.loops {
			idx := w.loop(l)
			if len(idx) < 3 {
				continue
			}
			if newell(loopPts(w.pts, idx)).Length() <= opts.weldTol*opts.weldTol {
				continue
			}
			loops = append(loops, wloop{idx: idx, patch: pi, isHole: li > 0})
		}
	}
	pts := w.pts

	// T-junctions: split every loop edge at welded points lying on it.
	tjTol := math.Max(opts.weldTol*10, csgEpsilon)
	for li := range loops {
		idx := loops[li].idx
		var out []int
		for i := range idx {
			a, b := idx[i], idx[(i+1)%len(idx)]
			out = append(out, a)
			type hit struct {
				t float64
				v int
			}
			var hits []hit
			for v := range pts {
				if v == a || v == b {
					continue
				}
				if t, ok := onSegment(pts[v], pts[a], pts[b], tjTol); ok {
					hits = append(hits, hit{t, v})
				}
			}
			sort.Slice(hits, func(i, j int) bool { return hits[i].t < hits[j].t })
			for _, h := range hits {
				out = append(out, h.v)
			}
		}
		loops[li].idx = out
	}

	var specs []faceSpec
	if !opts.mergeBySource {
		byPatch := make(map[int]int)
		for _, l := range loops {
			if l.isHole {
				if si, ok := byPatch[l.patch]; ok {
					specs[si].loops = append(specs[si].loops, l.idx)
				}
				continue
			}
			byPatch[l.patch] = len(specs)
			specs = append(specs, faceSpec{loops: [][]int{l.idx}, src: patches[l.patch].src})
		}
	} else {
		// A source may span several planes (fillet facets), so fragments
		// merge per source and plane.
		type group struct {
			src    int
			normal v3.Vec
			origin v3.Vec
			loops  [][]int
		}
		var groups []*group
		for _, l := range loops {
			p := patches[l.patch]
			origin := pts[l.idx[0]]
			var g *group
			for _, cand := range groups {
				if cand.src == p.src && cand.normal.Dot(p.normal) > 1-1e-6 &&
					math.Abs(origin.Sub(cand.origin).Dot(cand.normal)) <= csgEpsilon {
					g = cand
					break
				}
			}
			if g == nil {
				g = &group{src: p.src, normal: p.normal, origin: origin}
				groups = append(groups, g)
			}
			g.loops = append(g.loops, l.idx)
		}
		for _, g := range groups {
			for _, fl := range mergeLoops(g.loops, pts, g.normal) {
				specs = append(specs, faceSpec{loops: fl, src: g.src})
			}
		}
	}

	if opts.dropCollinear {
		dropCollinearVertices(specs, pts, opts.weldTol)
	}
	return pts, specs
}

// mergeLoops fuses coplanar loops sharing edges by cancelling opposite
// half-edges and chaining what remains. The result groups outer loops with
// the holes they contain.
func mergeLoops(loops [][]int, pts []v3.Vec, n v3.Vec) [][][]int {
	type half struct{ a, b int }
	var order []half
	count := make(map[half]int)
	for _, l := range loops {
		for i := range l {
			h := half{l[i], l[(i+1)%len(l)]}
			rev := half{h.b, h.a}
			if count[rev] > 0 {
				count[rev]--
				continue
			}
			if count[h] == 0 {
				order = append(order, h)
			}
			count[h]++
		}
	}
	out := make(map[int][]int)
	for _, h := range order {
		for c := 0; c < count[h]; c++ {
			out[h.a] = append(out[h.a], h.b)
		}
	}

	var chained [][]int
	for _, h := range order {
		for len(out[h.a]) > 0 && contains(out[h.a], h.b) {
			start := h.a
			loop := []int{start}
			removeOne(out, start, h.b)
			cur := h.b
			for steps := 0; cur != start && steps < len(pts)+len(order); steps++ {
				loop = append(loop, cur)
				nexts := out[cur]
				if len(nexts) == 0 {
					break
				}
				next := nexts[0]
				removeOne(out, cur, next)
				cur = next
			}
			if cur == start && len(loop) >= 3 {
				chained = append(chained, loop)
			}
		}
	}

	proj := projector(n)
	type ring struct {
		idx  []int
		flat []pt2
		area float64
	}
	var outers, holes []ring
	for _, l := range chained {
		flat := make([]pt2, len(l))
		for i, v := range l {
			flat[i] = proj(pts[v])
		}
		r := ring{idx: l, flat: flat, area: area2(flat)}
		if newell(loopPts(pts, l)).Dot(n) > 0 {
			outers = append(outers, r)
		} else {
			holes = append(holes, r)
		}
	}
	result := make([][][]int, len(outers))
	for i, o := range outers {
		result[i] = [][]int{o.idx}
	}
	for _, h := range holes {
		best := -1
		for i, o := range outers {
			if !pointInPolygon(h.flat[0], o.flat) && !pointInPolygon(centroid2(h.flat), o.flat) {
				continue
			}
			if best < 0 || math.Abs(o.area) < math.Abs(outers[best].area) {
				best = i
			}
		}
		if best >= 0 {
			result[best] = append(result[best], h.idx)
		}
	}
	return result
}

func centroid2(pts []pt2) pt2 {
	var c pt2
	for _, p := range pts {
		c.x += p.x
		c.y += p.y
	}
	c.x /= float64(len(pts))
	c.y /= float64(len(pts))
	return c
}

func contains(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func removeOne(out map[int][]int, a, b int) {
	l := out[a]
	for i, x := range l {
		if x == b {
			out[a] = append(l[:i], l[i+1:]...)
			return
		}
	}
}

// dropCollinearVertices removes vertices that are not a corner of any loop.
func dropCollinearVertices(specs []faceSpec, pts []v3.Vec, tol float64) {
	corner := make(map[int]bool)
	for _, s := range specs {
		for _, l := range s.loops {
			for i := range l {
				prev, cur, next := l[(i+len(l)-1)%len(l)], l[i], l[(i+1)%len(l)]
				if !collinear(pts[prev], pts[cur], pts[next], tol) {
					corner[cur] = true
				}
			}
		}
	}
	for si := range specs {
		for li, l := range specs[si].loops {
			var kept []int
			for _, v := range l {
				if corner[v] {
					kept = append(kept, v)
				}
			}
			specs[si].loops[li] = kept
		}
	}
}

// assemble builds faces, shells and solids from face specs. Closed
// connected face sets become solids; a single component is returned
// directly, several are wrapped in a compound.
func assemble(pts []v3.Vec, specs []faceSpec, srcs []source, rec *record) shape {
	verts := make(map[int]shape)
	vertex := func(i int) shape {
		v, ok := verts[i]
		if !ok {
			v = newVertex(pts[i])
			verts[i] = v
		}
		return v
	}
	b := newBuilder()

	var faces []shape
	var faceKeys [][][2]int
	for _, s := range specs {
		var wires []shape
		var keys [][2]int
		for _, l := range s.loops {
			if len(l) < 3 {
				continue
			}
			vs := make([]shape, len(l))
			for i, v := range l {
				vs[i] = vertex(v)
				a, c := v, l[(i+1)%len(l)]
				if a > c {
					a, c = c, a
				}
				keys = append(keys, [2]int{a, c})
			}
			wires = append(wires, b.wire(vs))
		}
		if len(wires) == 0 {
			continue
		}
		f := newFace(wires[0], wires[1:]...)
		if s.src >= 0 && s.src < len(srcs) {
			for _, in := range srcs[s.src].faces {
				rec.modify(in, f)
			}
			for _, in := range srcs[s.src].edges {
				rec.generate(in, f)
			}
		}
		faces = append(faces, f)
		faceKeys = append(faceKeys, keys)
	}

	// Connected components over shared edges.
	parent := make([]int, len(faces))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	owner := make(map[[2]int]int)
	for fi, keys := range faceKeys {
		for _, k := range keys {
			if o, ok := owner[k]; ok {
				parent[find(fi)] = find(o)
			} else {
				owner[k] = fi
			}
		}
	}
	var roots []int
	members := make(map[int][]int)
	for fi := range faces {
		r := find(fi)
		if _, ok := members[r]; !ok {
			roots = append(roots, r)
		}
		members[r] = append(members[r], fi)
	}

	var parts []shape
	for _, r := range roots {
		uses := make(map[[2]int]int)
		var fs []shape
		for _, fi := range members[r] {
			fs = append(fs, faces[fi])
			for _, k := range faceKeys[fi] {
				uses[k]++
			}
		}
		closed := true
		for _, c := range uses {
			if c != 2 {
				closed = false
				break
			}
		}
		sh := newShell(fs...)
		if closed {
			parts = append(parts, newSolid(sh))
		} else {
			parts = append(parts, sh)
		}
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return newCompound(parts...)
}

// mapByGeometry derives edge, vertex, wire, shell, solid and compound
// history from the recorded face history and from geometric coincidence.
func mapByGeometry(rec *record, inputs []shape, out shape, tol float64) {
	outEdges := collect(out, kernel.Edge)
	for _, e := range collectAll(inputs, kernel.Edge) {
		a, b := e.segment()
		for _, oe := range outEdges {
			c, d := oe.segment()
			if segmentsOverlap(a, b, c, d, tol) {
				rec.modify(e, oe)
			}
		}
	}

	outVerts := collect(out, kernel.Vertex)
	for _, v := range collectAll(inputs, kernel.Vertex) {
		for _, ov := range outVerts {
			if near(v.t.pt, ov.t.pt, tol) {
				rec.modify(v, ov)
			}
		}
	}

	for _, f := range collectAll(inputs, kernel.Face) {
		ws := f.wires()
		for _, nf := range rec.modified[f.t] {
			nws := nf.wires()
			rec.modify(ws[0], nws[0])
			for _, h := range ws[1:] {
				rec.modify(h, nws[1:]...)
			}
		}
	}

	for _, kind := range []kernel.ShapeKind{kernel.Shell, kernel.Solid} {
		outs := collect(out, kind)
		for _, in := range collectAll(inputs, kind) {
			successors := make(map[*tshape]bool)
			for _, f := range collect(in, kernel.Face) {
				for _, nf := range rec.modified[f.t] {
					successors[nf.t] = true
				}
			}
			for _, o := range outs {
				for _, of := range collect(o, kernel.Face) {
					if successors[of.t] {
						rec.modify(in, o)
						break
					}
				}
			}
		}
	}

	for _, in := range inputs {
		if in.t.kind == kernel.Compound {
			rec.modify(in, out)
		}
	}
}

// facePatches converts faces to patches, one source per face.
func facePatches(faces []shape, srcs *[]source) []patch {
	out := make([]patch, 0, len(faces))
	for _, f := range faces {
		*srcs = append(*srcs, source{faces: []shape{f}})
		out = append(out, patch{loops: f.loops(), normal: f.normal(), src: len(*srcs) - 1})
	}
	return out
}

// csgPolygons triangulates patches into convex CSG input.
func csgPolygons(patches []patch) []csgPolygon {
	var out []csgPolygon
	for _, p := range patches {
		if len(p.loops) == 0 {
			continue
		}
		for _, tri := range triangulate(p.loops[0], p.loops[1:], p.normal) {
			if cp, ok := newCSGPolygon([]v3.Vec{tri[0], tri[1], tri[2]}, p.src); ok {
				out = append(out, cp)
			}
		}
	}
	return out
}

// csgPatches converts CSG output back into patches, carrying each source
// patch's normal.
func csgPatches(polys []csgPolygon) []patch {
	out := make([]patch, len(polys))
	for i, p := range polys {
		out[i] = patch{loops: [][]v3.Vec{p.pts}, normal: p.plane.n, src: p.src}
	}
	return out
}
