package part

import (
	"fmt"
	"sort"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/topo"
)

// SuggestQueries proposes query strings that select the given entities of
// p, grouped by kind in order of first appearance. For each kind it offers
// "*t" when the selection is every entity of that kind, one positional
// query per contiguous run when every selected entity is present, and a
// label query when all of them share a single label.
func SuggestQueries(p *Part, selection ...kernel.Shape) []string {
	var kinds []kernel.ShapeKind
	groups := map[kernel.ShapeKind][]kernel.Shape{}
	for _, s := range selection {
		k := s.Kind()
		if _, ok := groups[k]; !ok {
			kinds = append(kinds, k)
		}
		groups[k] = append(groups[k], s)
	}

	var out []string
	for _, k := range kinds {
		t := k.Mnemonic()
		sel := topo.NewSet(groups[k]...)
		all := topo.Explore(p.root, k)
		allSet := topo.NewSet(all...)

		subset := true
		for _, s := range sel.Shapes() {
			if !allSet.Contains(s) {
				subset = false
				break
			}
		}
		if subset && sel.Len() == allSet.Len() {
			out = append(out, "*"+t)
		}
		if subset {
			for _, r := range indexRanges(sel.Shapes(), all) {
				if r[0] == r[1] {
					out = append(out, fmt.Sprintf("[%d]%s", r[0], t))
				} else {
					out = append(out, fmt.Sprintf("[%d:%d]%s", r[0], r[1]+1, t))
				}
			}
		}

		labels := map[string]bool{}
		for _, s := range sel.Shapes() {
			if l, ok := lastLabelOf(p, s); ok {
				labels[l] = true
			}
		}
		if len(labels) == 1 {
			for l := range labels {
				out = append(out, fmt.Sprintf("*%s,l(%s)", t, l))
			}
		}
	}
	return out
}

// indexRanges returns the inclusive runs of consecutive first-occurrence
// indices of sub within super.
func indexRanges(sub, super []kernel.Shape) [][2]int {
	idx := make([]int, 0, len(sub))
	for _, s := range sub {
		idx = append(idx, topo.Index(super, s))
	}
	sort.Ints(idx)
	var out [][2]int
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && idx[j+1] == idx[j]+1 {
			j++
		}
		out = append(out, [2]int{idx[i], idx[j]})
		i = j + 1
	}
	return out
}

// lastLabelOf returns the last label, in map order, whose list holds s.
func lastLabelOf(p *Part, s kernel.Shape) (string, bool) {
	labels := p.names.LabelsOf(s)
	if len(labels) == 0 {
		return "", false
	}
	return labels[len(labels)-1], true
}
