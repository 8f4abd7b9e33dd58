package naming

import (
	"github.com/chazu/facet/pkg/history"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/topo"
	"go.uber.org/zap"
)

// Match enables identity fallbacks that scan the new root for entities
// related to each named one.
type Match int

const (
	MatchSame Match = 1 << iota
	MatchPartner
)

// Propagate recomputes m for newRoot after the operation described by h.
//
// For every label, each entity in order is dropped when h deleted it.
// Otherwise its replacements are the identity matches found in newRoot
// (when enabled) plus h.Modified; with no replacement the entity stands
// for itself. Entities generated from it are appended either way. Nothing
// is emitted twice under one label, and labels that end up empty are kept.
func Propagate(m Map, newRoot kernel.Shape, h history.OperationHistory, match Match) Map {
	var scan []kernel.Shape
	if match != 0 {
		scan = topo.AllSubshapes(newRoot)
	}

	out := Map{entries: make(map[string][]kernel.Shape, len(m.keys))}
	in, emitted := 0, 0
	for _, label := range m.keys {
		seen := &topo.Set{}
		list := []kernel.Shape{}
		for _, e := range m.entries[label] {
			in++
			if h.IsDeleted(e) {
				continue
			}
			var cands []kernel.Shape
			if match&MatchSame != 0 {
				for _, s := range scan {
					if s.IsSame(e) {
						cands = append(cands, s)
					}
				}
			}
			if match&MatchPartner != 0 {
				for _, s := range scan {
					if s.IsPartner(e) {
						cands = append(cands, s)
					}
				}
			}
			cands = append(cands, h.Modified(e)...)
			if len(cands) == 0 {
				cands = []kernel.Shape{e}
			}
			cands = append(cands, h.Generated(e)...)
			for _, c := range cands {
				if seen.Add(c) {
					list = append(list, c)
				}
			}
		}
		emitted += len(list)
		out.set(label, list)
	}
	zap.L().Named("naming").Debug("propagated",
		zap.Stringer("kind", h.Kind()),
		zap.Int("labels", len(m.keys)),
		zap.Int("in", in),
		zap.Int("out", emitted))
	return out
}
