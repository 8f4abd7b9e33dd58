package poly

import (
	"fmt"

	"github.com/chazu/facet/pkg/kernel"
	"go.uber.org/zap"
)

// Boolean combines solids. Arguments are fused together first, then the
// tools; the operation is applied between the two groups. Faces are traced
// through the CSG by provenance, the remaining history by coincidence.
func (k *Kernel) Boolean(op kernel.BoolOp, args, tools []kernel.Shape) kernel.BooleanAlgo {
	var alerts []string
	a, err := unwrapAll(args)
	if err != nil {
		return &booleanOp{alerts: []string{err.Error()}}
	}
	t, err := unwrapAll(tools)
	if err != nil {
		return &booleanOp{alerts: []string{err.Error()}}
	}
	if len(a) == 0 {
		alerts = append(alerts, "no arguments given")
	}
	if op != kernel.Fuse && len(t) == 0 {
		alerts = append(alerts, fmt.Sprintf("%s requires at least one tool", op))
	}
	for _, s := range append(append([]shape(nil), a...), t...) {
		if len(collect(s, kernel.Solid)) == 0 {
			alerts = append(alerts, fmt.Sprintf("operand %s contains no solid", s))
		}
	}
	if len(alerts) > 0 {
		k.log.Debug("boolean rejected", zap.Stringer("op", op), zap.Strings("alerts", alerts))
		return &booleanOp{alerts: alerts}
	}

	var srcs []source
	group := func(shapes []shape) []csgPolygon {
		var acc []csgPolygon
		for i, s := range shapes {
			polys := csgPolygons(facePatches(solidFaces(s), &srcs))
			if i == 0 {
				acc = polys
				continue
			}
			acc = csgUnion(acc, polys)
		}
		return acc
	}
	pa := group(a)
	pt := group(t)

	var result []csgPolygon
	switch {
	case len(t) == 0:
		result = pa
	case op == kernel.Fuse:
		result = csgUnion(pa, pt)
	case op == kernel.Cut:
		result = csgSubtract(pa, pt)
	case op == kernel.Common:
		result = csgIntersect(pa, pt)
	default:
		return &booleanOp{alerts: []string{fmt.Sprintf("unsupported boolean %d", op)}}
	}

	inputs := append(append([]shape(nil), a...), t...)
	out := k.rebuild(csgPatches(result), srcs, inputs, true, true)
	k.log.Debug("boolean",
		zap.Stringer("op", op),
		zap.Int("polygons", len(result)),
		zap.Int("faces", len(collect(out.result, kernel.Face))))
	return &booleanOp{rec: out}
}

// solidFaces returns the outward oriented faces of every solid in s.
func solidFaces(s shape) []shape {
	var faces []shape
	for _, so := range collect(s, kernel.Solid) {
		faces = append(faces, collect(so, kernel.Face)...)
	}
	return faces
}

// rebuild assembles patches into a result and records its history.
func (k *Kernel) rebuild(patches []patch, srcs []source, inputs []shape, merge, dropCollinear bool) *record {
	pts, specs := rebuildFaces(patches, rebuildOptions{
		weldTol:       k.tol,
		mergeBySource: merge,
		dropCollinear: dropCollinear,
	})
	rec := newRecord(inputs...)
	out := assemble(pts, specs, srcs, rec)
	rec.setResult(out)
	mapByGeometry(rec, inputs, out, k.tol*10)
	return rec
}
