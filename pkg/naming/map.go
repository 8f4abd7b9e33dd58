// Package naming keeps labels attached to kernel entities across operations
// that rebuild them. A Map is the ledger of label to entity list; Propagate
// carries a Map through one kernel operation.
package naming

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/topo"
	"go.uber.org/zap"
)

var (
	// ErrUnknownLabel is returned when a label is not in the map.
	ErrUnknownLabel = errors.New("unknown subshape")
	// ErrLabelInUse is returned when renaming onto an existing label.
	ErrLabelInUse = errors.New("name already in use")
)

// Map is an insertion-ordered mapping from label to an ordered list of
// entities. The same entity may sit under several labels and a label may
// hold repeats. Maps are values: every method returns a new Map and never
// touches the receiver.
type Map struct {
	keys    []string
	entries map[string][]kernel.Shape
}

// Of returns a map holding shapes under label.
func Of(label string, shapes ...kernel.Shape) Map {
	return Map{}.With(label, shapes...)
}

// Len returns the number of labels, empty ones included.
func (m Map) Len() int { return len(m.keys) }

// Labels returns the labels in insertion order.
func (m Map) Labels() []string {
	return append([]string(nil), m.keys...)
}

// Has reports whether label is present, even with an empty list.
func (m Map) Has(label string) bool {
	_, ok := m.entries[label]
	return ok
}

// Get returns a copy of the list under label.
func (m Map) Get(label string) ([]kernel.Shape, error) {
	l, ok := m.entries[label]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLabel, label)
	}
	return append([]kernel.Shape{}, l...), nil
}

// Lookup is Get without the error.
func (m Map) Lookup(label string) []kernel.Shape {
	return append([]kernel.Shape(nil), m.entries[label]...)
}

// Clone copies the map structure. Entities are shared.
func (m Map) Clone() Map {
	out := Map{keys: append([]string(nil), m.keys...), entries: make(map[string][]kernel.Shape, len(m.keys))}
	for _, k := range m.keys {
		out.entries[k] = append([]kernel.Shape{}, m.entries[k]...)
	}
	return out
}

// set replaces the list under label, keeping its position when present.
func (m *Map) set(label string, shapes []kernel.Shape) {
	if m.entries == nil {
		m.entries = make(map[string][]kernel.Shape)
	}
	if _, ok := m.entries[label]; !ok {
		m.keys = append(m.keys, label)
	}
	m.entries[label] = shapes
}

// With appends shapes under label, creating it if needed.
func (m Map) With(label string, shapes ...kernel.Shape) Map {
	out := m.Clone()
	out.set(label, append(out.entries[label], shapes...))
	return out
}

// Replace sets the list under label, keeping its position when present.
func (m Map) Replace(label string, shapes ...kernel.Shape) Map {
	out := m.Clone()
	out.set(label, append([]kernel.Shape{}, shapes...))
	return out
}

// Without drops every occurrence of s from every list. Labels left empty
// are kept.
func (m Map) Without(s kernel.Shape) Map {
	out := Map{entries: make(map[string][]kernel.Shape, len(m.keys))}
	for _, k := range m.keys {
		kept := []kernel.Shape{}
		for _, e := range m.entries[k] {
			if !e.IsSame(s) {
				kept = append(kept, e)
			}
		}
		out.set(k, kept)
	}
	return out
}

// Merge concatenates maps key-wise: lists under a shared label are joined
// in argument order, and labels keep their first-seen position.
func Merge(maps ...Map) Map {
	var out Map
	for _, m := range maps {
		for _, k := range m.keys {
			out.set(k, append(out.entries[k], m.entries[k]...))
		}
	}
	if out.entries == nil {
		out.entries = map[string][]kernel.Shape{}
	}
	return out
}

// Deduped returns m with later repeats of an entity dropped from every list.
func (m Map) Deduped() Map {
	out := Map{entries: make(map[string][]kernel.Shape, len(m.keys))}
	for _, k := range m.keys {
		out.set(k, topo.Dedupe(m.entries[k]))
	}
	return out
}

// Prefixed returns m with prefix prepended to every label.
func (m Map) Prefixed(prefix string) Map {
	if prefix == "" {
		return m.Clone()
	}
	var out Map
	for _, k := range m.keys {
		out.set(prefix+k, append([]kernel.Shape{}, m.entries[k]...))
	}
	return out
}

// Rename moves the list under from to to, keeping its position.
func (m Map) Rename(from, to string) (Map, error) {
	if m.Has(to) {
		return Map{}, fmt.Errorf("%w: %s", ErrLabelInUse, to)
	}
	if !m.Has(from) {
		return Map{}, fmt.Errorf("%w: %s", ErrUnknownLabel, from)
	}
	out := m.Clone()
	for i, k := range out.keys {
		if k == from {
			out.keys[i] = to
		}
	}
	out.entries[to] = out.entries[from]
	delete(out.entries, from)
	return out, nil
}

// Subpart keeps the labels starting with prefix, stripping the prefix when
// trim is set. When trimming folds two labels together the later one wins.
func (m Map) Subpart(prefix string, trim bool) Map {
	out := Map{entries: map[string][]kernel.Shape{}}
	for _, k := range m.keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		name := k
		if trim {
			name = k[len(prefix):]
		}
		out.set(name, append([]kernel.Shape{}, m.entries[k]...))
	}
	return out
}

// Matching returns the labels selected by a filter: the exact label, or
// every label with the given prefix when pattern ends in '*'.
func (m Map) Matching(pattern string) []string {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		var out []string
		for _, k := range m.keys {
			if strings.HasPrefix(k, prefix) {
				out = append(out, k)
			}
		}
		return out
	}
	if m.Has(pattern) {
		return []string{pattern}
	}
	return nil
}

// LabelsOf returns the labels whose list holds an entity the same as s.
func (m Map) LabelsOf(s kernel.Shape) []string {
	var out []string
	for _, k := range m.keys {
		if topo.Contains(m.entries[k], s) {
			out = append(out, k)
		}
	}
	return out
}

// LabelOfExactly returns a label whose list is exactly [s], if any.
func (m Map) LabelOfExactly(s kernel.Shape) (string, bool) {
	for _, k := range m.keys {
		if l := m.entries[k]; len(l) == 1 && l[0].IsSame(s) {
			return k, true
		}
	}
	return "", false
}

// Prune keeps only entities reachable below root, and drops labels left
// empty. The root itself is not below root, so a label naming it is dropped.
func (m Map) Prune(root kernel.Shape) Map {
	log := zap.L().Named("naming")
	live := topo.NewSet(topo.AllSubshapes(root)...)
	out := Map{entries: map[string][]kernel.Shape{}}
	for _, k := range m.keys {
		var kept []kernel.Shape
		for _, s := range m.entries[k] {
			if live.Contains(s) {
				log.Debug("preserving", zap.String("label", k), zap.Stringer("kind", s.Kind()))
				kept = append(kept, s)
			} else {
				log.Debug("discarding", zap.String("label", k), zap.Stringer("kind", s.Kind()))
			}
		}
		if len(kept) > 0 {
			out.set(k, kept)
		}
	}
	return out
}

// Equal reports whether both maps hold the same labels in the same order
// with lists of the same entities in the same order.
func (m Map) Equal(o Map) bool {
	if len(m.keys) != len(o.keys) {
		return false
	}
	for i, k := range m.keys {
		if o.keys[i] != k {
			return false
		}
		a, b := m.entries[k], o.entries[k]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if !a[j].IsSame(b[j]) {
				return false
			}
		}
	}
	return true
}

// Counts returns the size of every list, keyed by label.
func (m Map) Counts() map[string]int {
	out := make(map[string]int, len(m.keys))
	for _, k := range m.keys {
		out[k] = len(m.entries[k])
	}
	return out
}
