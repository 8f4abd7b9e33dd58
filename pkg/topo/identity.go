// Package topo holds the kernel-independent helpers every layer above the
// kernel needs: identity-keyed sets, traversal, the Explorer and Extents.
package topo

import "github.com/chazu/facet/pkg/kernel"

// hashBound bounds the hash table; collisions only cost extra IsSame checks.
const hashBound = 10000

// Set is an insertion-ordered set of entities keyed by kernel identity.
// Two handles to the same underlying entity are one member regardless of
// orientation. The zero value is ready to use.
type Set struct {
	buckets map[int][]kernel.Shape
	order   []kernel.Shape
}

// NewSet returns a set holding shapes, first occurrence wins.
func NewSet(shapes ...kernel.Shape) *Set {
	s := &Set{}
	for _, sh := range shapes {
		s.Add(sh)
	}
	return s
}

// Add inserts sh and reports whether it was absent.
func (s *Set) Add(sh kernel.Shape) bool {
	if s.buckets == nil {
		s.buckets = make(map[int][]kernel.Shape)
	}
	h := sh.HashCode(hashBound)
	for _, o := range s.buckets[h] {
		if o.IsSame(sh) {
			return false
		}
	}
	s.buckets[h] = append(s.buckets[h], sh)
	s.order = append(s.order, sh)
	return true
}

// Contains reports whether an entity the same as sh is a member.
func (s *Set) Contains(sh kernel.Shape) bool {
	if s == nil {
		return false
	}
	for _, o := range s.buckets[sh.HashCode(hashBound)] {
		if o.IsSame(sh) {
			return true
		}
	}
	return false
}

// Len returns the number of members.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Shapes returns the members in insertion order.
func (s *Set) Shapes() []kernel.Shape {
	if s == nil {
		return nil
	}
	out := make([]kernel.Shape, len(s.order))
	copy(out, s.order)
	return out
}

// Index returns the position of the first element of list that is the
// same entity as sh, or -1.
func Index(list []kernel.Shape, sh kernel.Shape) int {
	for i, o := range list {
		if o.IsSame(sh) {
			return i
		}
	}
	return -1
}

// Contains reports whether list holds an entity the same as sh.
func Contains(list []kernel.Shape, sh kernel.Shape) bool {
	return Index(list, sh) >= 0
}

// Dedupe drops later repeats of the same entity, keeping first-seen order.
func Dedupe(list []kernel.Shape) []kernel.Shape {
	return NewSet(list...).Shapes()
}
