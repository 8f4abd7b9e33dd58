package part

import (
	"fmt"

	"github.com/chazu/facet/pkg/history"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/naming"
)

// Union fuses p with others. Called with no others on a compound it fuses
// the compound's direct children together instead.
func (p *Part) Union(others ...*Part) (*Part, error) {
	if len(others) > 0 {
		return boolean(kernel.Fuse, []*Part{p}, others)
	}
	if p.root.Kind() != kernel.Compound {
		return nil, fmt.Errorf("part: union: %w: argumentless union needs a compound, got %s", ErrNotCompound, p.root.Kind())
	}
	children := p.root.Children()
	if len(children) == 0 {
		return nil, fmt.Errorf("part: union: %w: compound is empty", ErrNoOperands)
	}
	parts := make([]*Part, len(children))
	for i, c := range children {
		parts[i] = p.wrap(c)
	}
	// Every child carries the whole map; one copy is enough since
	// propagation drops repeats within a label.
	return booleanWith(kernel.Fuse, parts[:1], parts[1:], p.names)
}

// Cut removes others from p.
func (p *Part) Cut(others ...*Part) (*Part, error) {
	if len(others) == 0 {
		return nil, fmt.Errorf("part: cut: %w", ErrNoOperands)
	}
	return boolean(kernel.Cut, []*Part{p}, others)
}

// Common keeps the volume p shares with others.
func (p *Part) Common(others ...*Part) (*Part, error) {
	if len(others) == 0 {
		return nil, fmt.Errorf("part: common: %w", ErrNoOperands)
	}
	return boolean(kernel.Common, []*Part{p}, others)
}

// boolean merges the maps of args, then tools, and propagates the merged
// map through the operation.
func boolean(op kernel.BoolOp, args, tools []*Part) (*Part, error) {
	maps := make([]naming.Map, 0, len(args)+len(tools))
	for _, a := range args {
		maps = append(maps, a.names)
	}
	for _, t := range tools {
		maps = append(maps, t.names)
	}
	return booleanWith(op, args, tools, naming.Merge(maps...))
}

func booleanWith(op kernel.BoolOp, args, tools []*Part, names naming.Map) (*Part, error) {
	k := args[0].k
	algo := k.Boolean(op, roots(args), roots(tools))
	h, err := history.FromBoolean("bool op", algo)
	if err != nil {
		return nil, fmt.Errorf("part: %s: %w", op, err)
	}
	return propagated(k, names, h, 0), nil
}

func roots(parts []*Part) []kernel.Shape {
	out := make([]kernel.Shape, len(parts))
	for i, p := range parts {
		out[i] = p.root
	}
	return out
}
