package poly

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// copier deep-copies topology through an affine map, sharing the copy of
// every entity reached more than once.
type copier struct {
	m    sdf.M44
	flip bool
	memo map[*tshape]*tshape
}

func newCopier(m sdf.M44) *copier {
	return &copier{m: m, flip: linearDet(m) < 0, memo: make(map[*tshape]*tshape)}
}

// linearDet returns the determinant of the linear part of m.
func linearDet(m sdf.M44) float64 {
	o := m.MulPosition(v3.Vec{})
	ex := m.MulPosition(v3.Vec{X: 1}).Sub(o)
	ey := m.MulPosition(v3.Vec{Y: 1}).Sub(o)
	ez := m.MulPosition(v3.Vec{Z: 1}).Sub(o)
	return ex.Dot(ey.Cross(ez))
}

func (c *copier) copy(s shape) shape {
	nt, ok := c.memo[s.t]
	if !ok {
		nt = newTShape(s.t.kind)
		if s.t.kind == kernel.Vertex {
			nt.pt = c.m.MulPosition(s.t.pt)
		}
		nt.children = make([]shape, len(s.t.children))
		for i, ch := range s.t.children {
			nt.children[i] = c.copy(ch)
		}
		c.memo[s.t] = nt
	}
	o := s.orient
	// A mirror turns faces inside out; flip them back.
	if c.flip && s.t.kind == kernel.Face {
		o = o.Reverse()
	}
	return shape{t: nt, orient: o}
}

// recordCopies marks every copied entity as modified into its copy.
func (c *copier) recordCopies(rec *record) {
	for old, nt := range c.memo {
		rec.modify(shape{t: old}, shape{t: nt})
	}
}

func (k *Kernel) Transform(s kernel.Shape, m sdf.M44) kernel.MakeShape {
	src, err := unwrap(s)
	if err != nil {
		return failed(fmt.Errorf("poly: transform: %w", err))
	}
	if math.Abs(linearDet(m)) < 1e-12 {
		return failed(errors.New("poly: transform: matrix is singular"))
	}
	c := newCopier(m)
	out := c.copy(src)
	rec := newRecord(src)
	rec.setResult(out)
	c.recordCopies(rec)
	return done(rec)
}
