package engine

import (
	"fmt"

	"github.com/chazu/facet/pkg/part"
)

// NamedPart is a part registered with defpart.
type NamedPart struct {
	Name string
	Part *part.Part
}

// Design collects the parts a script defines. It is built during one
// evaluation and never mutated afterwards, so cached designs may be shared.
type Design struct {
	parts []NamedPart
	index map[string]int
}

func newDesign() *Design {
	return &Design{index: make(map[string]int)}
}

// define registers p under name. Redefining a name replaces the part but
// keeps its original position.
func (d *Design) define(name string, p *part.Part) {
	if i, ok := d.index[name]; ok {
		d.parts[i].Part = p
		return
	}
	d.index[name] = len(d.parts)
	d.parts = append(d.parts, NamedPart{Name: name, Part: p})
}

// Lookup returns the part defined under name, or nil.
func (d *Design) Lookup(name string) *part.Part {
	i, ok := d.index[name]
	if !ok {
		return nil
	}
	return d.parts[i].Part
}

// MustLookup returns the part defined under name, or panics.
func (d *Design) MustLookup(name string) *part.Part {
	p := d.Lookup(name)
	if p == nil {
		panic(fmt.Sprintf("engine: no part named %q", name))
	}
	return p
}

// Parts returns the defined parts in definition order.
func (d *Design) Parts() []NamedPart {
	return append([]NamedPart(nil), d.parts...)
}

// PartCount returns the number of defined parts.
func (d *Design) PartCount() int {
	return len(d.parts)
}
