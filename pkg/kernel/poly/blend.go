package poly

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/facet/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

// Chamfer bevels convex edges at distance dist from each adjacent face.
func (k *Kernel) Chamfer(s kernel.Shape, dist float64, edges []kernel.Shape) kernel.MakeShape {
	return k.blend("chamfer", s, dist, edges, false)
}

// Fillet rounds convex edges with the given radius. The arc is
// approximated by flat facets.
func (k *Kernel) Fillet(s kernel.Shape, radius float64, edges []kernel.Shape) kernel.MakeShape {
	return k.blend("fillet", s, radius, edges, true)
}

// blend removes a prismatic tool along every selected edge. The tool's
// faces are generated by the edge, so the new blend surfaces inherit the
// edge's history.
func (k *Kernel) blend(name string, s kernel.Shape, size float64, edges []kernel.Shape, round bool) kernel.MakeShape {
	src, err := unwrap(s)
	if err != nil {
		return failed(fmt.Errorf("poly: %s: %w", name, err))
	}
	if size <= k.tol {
		return failed(fmt.Errorf("poly: %s: size must be positive, got %g", name, size))
	}
	if len(edges) == 0 {
		return failed(fmt.Errorf("poly: %s: no edges given", name))
	}
	faces := solidFaces(src)
	if len(faces) == 0 {
		return failed(fmt.Errorf("poly: %s: shape contains no solid", name))
	}

	var srcs []source
	polys := csgPolygons(facePatches(faces, &srcs))
	for _, es := range edges {
		e, err := unwrapKind(es, kernel.Edge)
		if err != nil {
			return failed(fmt.Errorf("poly: %s: %w", name, err))
		}
		var adj []shape
		var uses []shape
		for _, f := range faces {
			if u, ok := f.usesEdge(e); ok {
				adj = append(adj, f)
				uses = append(uses, u)
			}
		}
		if len(adj) != 2 {
			return failed(fmt.Errorf("poly: %s: edge %s is bounded by %d faces, want 2", name, e, len(adj)))
		}
		srcs = append(srcs, source{edges: []shape{e}})
		tool, err := k.blendTool(adj, uses, size, round, len(srcs)-1)
		if err != nil {
			return failed(fmt.Errorf("poly: %s: edge %s: %w", name, e, err))
		}
		polys = csgSubtract(polys, tool)
	}

	rec := k.rebuild(csgPatches(polys), srcs, []shape{src}, true, true)
	k.log.Debug(name, zap.Int("edges", len(edges)), zap.Float64("size", size))
	return done(rec)
}

// blendTool builds the material to remove along an edge given its two
// adjacent faces and the oriented use of the edge in each.
func (k *Kernel) blendTool(adj, uses []shape, size float64, round bool, src int) ([]csgPolygon, error) {
	n1, n2 := adj[0].normal(), adj[1].normal()
	p0, p1 := uses[0].segment()
	t1 := unit(p1.Sub(p0))
	q0, q1 := uses[1].segment()
	t2 := unit(q1.Sub(q0))
	// Face interiors lie to the left of their loops.
	u1 := unit(n1.Cross(t1))
	u2 := unit(n2.Cross(t2))
	if u2.Dot(n1) >= -1e-9 || u1.Dot(n2) >= -1e-9 {
		return nil, errors.New("edge is not convex")
	}

	// Section profile relative to a point on the edge.
	m := size
	var profile []v3.Vec
	if round {
		a := size / -u1.Dot(n2)
		b := size / -u2.Dot(n1)
		c := u1.MulScalar(a).Add(u2.MulScalar(b))
		theta := math.Acos(math.Max(-1, math.Min(1, n1.Dot(n2))))
		segs := k.filletSegments
		for i := 0; i <= segs; i++ {
			f := float64(i) / float64(segs)
			var dir v3.Vec
			if theta < 1e-9 {
				dir = n1
			} else {
				dir = n1.MulScalar(math.Sin((1-f)*theta)).Add(n2.MulScalar(math.Sin(f*theta))).MulScalar(1 / math.Sin(theta))
			}
			profile = append(profile, c.Add(dir.MulScalar(size)))
		}
		last := profile[len(profile)-1]
		first := profile[0]
		profile = append(profile, last.Add(n2.MulScalar(m)), n1.Add(n2).MulScalar(m), first.Add(n1.MulScalar(m)))
	} else {
		a := u1.MulScalar(size)
		b := u2.MulScalar(size)
		profile = []v3.Vec{a, b, b.Add(n2.MulScalar(m)), n1.Add(n2).MulScalar(m), a.Add(n1.MulScalar(m))}
	}

	length := p1.Sub(p0).Length()
	base := p0.Sub(t1.MulScalar(m))
	axis := t1.MulScalar(length + 2*m)
	bottom := make([]v3.Vec, len(profile))
	top := make([]v3.Vec, len(profile))
	for i, p := range profile {
		bottom[i] = base.Add(p)
		top[i] = bottom[i].Add(axis)
	}

	var tool []csgPolygon
	addTris := func(loop []v3.Vec) {
		n := unit(newell(loop))
		for _, tri := range triangulate(loop, nil, n) {
			if cp, ok := newCSGPolygon([]v3.Vec{tri[0], tri[1], tri[2]}, src); ok {
				tool = append(tool, cp)
			}
		}
	}
	addTris(reversePoints(bottom))
	addTris(top)
	for i := range profile {
		j := (i + 1) % len(profile)
		addTris([]v3.Vec{bottom[i], bottom[j], top[j], top[i]})
	}

	var loops [][]v3.Vec
	for _, p := range tool {
		loops = append(loops, p.pts)
	}
	if signedVolume(loops) < 0 {
		for i := range tool {
			tool[i] = tool[i].flipped()
		}
	}
	return tool, nil
}
