package poly

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/facet/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

// Sew welds the faces of the given shapes into shells, closing them into
// solids where every edge ends up shared by exactly two faces.
func (k *Kernel) Sew(shapes []kernel.Shape, tolerance float64) kernel.HistoryAlgo {
	in, err := unwrapAll(shapes)
	if err != nil {
		return &historyOp{err: fmt.Errorf("poly: sew: %w", err)}
	}
	faces := collectAll(in, kernel.Face)
	if len(faces) == 0 {
		return &historyOp{err: errors.New("poly: sew: no faces to sew")}
	}
	tol := tolerance
	if tol <= 0 {
		tol = k.tol
	}
	var srcs []source
	patches := facePatches(faces, &srcs)
	pts, specs := rebuildFaces(patches, rebuildOptions{weldTol: tol})
	rec := newRecord(in...)
	out := assemble(pts, specs, srcs, rec)
	rec.setResult(out)
	mapByGeometry(rec, in, out, tol)
	k.log.Debug("sew", zap.Int("faces", len(faces)), zap.Stringer("result", out.t.kind))
	return &historyOp{rec: rec}
}

// Unify merges adjacent coplanar faces (faces) and removes vertices that
// only split straight runs of edges (edges).
func (k *Kernel) Unify(s kernel.Shape, edges, faces bool) kernel.HistoryAlgo {
	src, err := unwrap(s)
	if err != nil {
		return &historyOp{err: fmt.Errorf("poly: unify: %w", err)}
	}
	fs := collect(src, kernel.Face)
	if len(fs) == 0 {
		rec := newRecord(src)
		rec.setResult(src)
		return &historyOp{rec: rec}
	}

	parent := make([]int, len(fs))
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
	if faces {
		normals := make([]v3.Vec, len(fs))
		origins := make([]v3.Vec, len(fs))
		edgeSets := make([]map[*tshape]bool, len(fs))
		for i, f := range fs {
			normals[i] = f.normal()
			origins[i] = f.outerWire().loopPoints()[0]
			edgeSets[i] = make(map[*tshape]bool)
			for _, e := range collect(f, kernel.Edge) {
				edgeSets[i][e.t] = true
			}
		}
		for i := range fs {
			for j := i + 1; j < len(fs); j++ {
				if normals[i].Dot(normals[j]) < 1-1e-9 {
					continue
				}
				if math.Abs(origins[j].Sub(origins[i]).Dot(normals[i])) > k.tol {
					continue
				}
				if !sharesEdge(edgeSets[i], edgeSets[j]) {
					continue
				}
				parent[find(j)] = find(i)
			}
		}
	}

	domain := make(map[int]int)
	var srcs []source
	var patches []patch
	for i, f := range fs {
		r := find(i)
		d, ok := domain[r]
		if !ok {
			d = len(srcs)
			domain[r] = d
			srcs = append(srcs, source{})
		}
		srcs[d].faces = append(srcs[d].faces, f)
		patches = append(patches, patch{loops: f.loops(), normal: f.normal(), src: d})
	}

	rec := k.rebuild(patches, srcs, []shape{src}, faces, edges)
	k.log.Debug("unify", zap.Int("faces_in", len(fs)), zap.Int("domains", len(srcs)))
	return &historyOp{rec: rec}
}

func sharesEdge(a, b map[*tshape]bool) bool {
	for e := range a {
		if b[e] {
			return true
		}
	}
	return false
}
