package poly

import (
	"github.com/chazu/facet/pkg/kernel"
)

// record accumulates what an operation did to its inputs.
type record struct {
	result    shape
	inputs    map[*tshape]bool
	present   map[*tshape]bool
	modified  map[*tshape][]shape
	generated map[*tshape][]shape
}

func newRecord(inputs ...shape) *record {
	r := &record{
		inputs:    make(map[*tshape]bool),
		modified:  make(map[*tshape][]shape),
		generated: make(map[*tshape][]shape),
	}
	for _, in := range inputs {
		walk(in, func(c shape) { r.inputs[c.t] = true })
	}
	return r
}

func (r *record) setResult(s shape) {
	r.result = s
	r.present = make(map[*tshape]bool)
	walk(s, func(c shape) { r.present[c.t] = true })
}

func appendUnique(list []shape, items ...shape) []shape {
next:
	for _, it := range items {
		for _, l := range list {
			if l.t == it.t {
				continue next
			}
		}
		list = append(list, it)
	}
	return list
}

func (r *record) modify(old shape, news ...shape) {
	for _, n := range news {
		if n.t != old.t {
			r.modified[old.t] = appendUnique(r.modified[old.t], n)
		}
	}
}

func (r *record) generate(old shape, news ...shape) {
	r.generated[old.t] = appendUnique(r.generated[old.t], news...)
}

// deleted: an input entity that did not survive and left no successor.
func (r *record) deleted(s kernel.Shape) bool {
	ps, ok := s.(shape)
	if !ok || !r.inputs[ps.t] || r.present[ps.t] {
		return false
	}
	return len(r.modified[ps.t]) == 0 && len(r.generated[ps.t]) == 0
}

func toKernel(list []shape) []kernel.Shape {
	if len(list) == 0 {
		return nil
	}
	out := make([]kernel.Shape, len(list))
	for i, s := range list {
		out[i] = s
	}
	return out
}

func (r *record) modifiedOf(s kernel.Shape) []kernel.Shape {
	ps, ok := s.(shape)
	if !ok {
		return nil
	}
	return toKernel(r.modified[ps.t])
}

func (r *record) generatedOf(s kernel.Shape) []kernel.Shape {
	ps, ok := s.(shape)
	if !ok {
		return nil
	}
	return toKernel(r.generated[ps.t])
}

// ---------------------------------------------------------------------------
// Operation objects
// ---------------------------------------------------------------------------

// makeShapeOp serves MakeShape, Sweep and BoxMaker.
type makeShapeOp struct {
	rec         *record
	err         error
	first, last shape
	sides       map[kernel.BoxSide]shape
}

var (
	_ kernel.Sweep    = (*makeShapeOp)(nil)
	_ kernel.BoxMaker = (*makeShapeOp)(nil)
)

func failed(err error) *makeShapeOp { return &makeShapeOp{err: err} }

func done(rec *record) *makeShapeOp { return &makeShapeOp{rec: rec} }

func (o *makeShapeOp) IsDone() bool { return o.err == nil && o.rec != nil }

func (o *makeShapeOp) Check() error { return o.err }

func (o *makeShapeOp) Shape() kernel.Shape {
	if !o.IsDone() {
		return nil
	}
	return o.rec.result
}

func (o *makeShapeOp) IsDeleted(s kernel.Shape) bool {
	return o.IsDone() && o.rec.deleted(s)
}

func (o *makeShapeOp) Modified(s kernel.Shape) []kernel.Shape {
	if !o.IsDone() {
		return nil
	}
	return o.rec.modifiedOf(s)
}

func (o *makeShapeOp) Generated(s kernel.Shape) []kernel.Shape {
	if !o.IsDone() {
		return nil
	}
	return o.rec.generatedOf(s)
}

func (o *makeShapeOp) FirstShape() kernel.Shape { return handleOrNil(o.first) }

func (o *makeShapeOp) LastShape() kernel.Shape { return handleOrNil(o.last) }

func (o *makeShapeOp) Face(side kernel.BoxSide) kernel.Shape {
	return handleOrNil(o.sides[side])
}

func handleOrNil(s shape) kernel.Shape {
	if s.t == nil {
		return nil
	}
	return s
}

// recordHistory exposes a record as a standalone kernel.History.
type recordHistory struct{ rec *record }

func (h recordHistory) IsRemoved(s kernel.Shape) bool {
	return h.rec != nil && h.rec.deleted(s)
}

func (h recordHistory) Modified(s kernel.Shape) []kernel.Shape {
	if h.rec == nil {
		return nil
	}
	return h.rec.modifiedOf(s)
}

func (h recordHistory) Generated(s kernel.Shape) []kernel.Shape {
	if h.rec == nil {
		return nil
	}
	return h.rec.generatedOf(s)
}

type booleanOp struct {
	rec    *record
	alerts []string
}

func (o *booleanOp) HasErrors() bool { return len(o.alerts) > 0 }

func (o *booleanOp) Alerts() []string { return append([]string(nil), o.alerts...) }

func (o *booleanOp) Shape() kernel.Shape {
	if o.rec == nil {
		return nil
	}
	return o.rec.result
}

func (o *booleanOp) History() kernel.History { return recordHistory{o.rec} }

type historyOp struct {
	rec *record
	err error
}

func (o *historyOp) IsDone() bool { return o.err == nil && o.rec != nil }

func (o *historyOp) Check() error { return o.err }

func (o *historyOp) Shape() kernel.Shape {
	if !o.IsDone() {
		return nil
	}
	return o.rec.result
}

func (o *historyOp) History() kernel.History { return recordHistory{o.rec} }

type offsetOp struct {
	rec  *record
	code kernel.OffsetError
}

func (o *offsetOp) IsDone() bool { return o.code == kernel.OffsetNoError && o.rec != nil }

func (o *offsetOp) Error() kernel.OffsetError { return o.code }

func (o *offsetOp) Shape() kernel.Shape {
	if !o.IsDone() {
		return nil
	}
	return o.rec.result
}

func (o *offsetOp) IsDeleted(s kernel.Shape) bool { return o.IsDone() && o.rec.deleted(s) }

func (o *offsetOp) Modified(s kernel.Shape) []kernel.Shape {
	if !o.IsDone() {
		return nil
	}
	return o.rec.modifiedOf(s)
}
