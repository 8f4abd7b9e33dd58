// Package poly is a polyhedral B-Rep kernel. Every edge is a straight
// segment and every face a planar polygon with optional holes, which keeps
// the topology exact while still exercising the full operation history
// protocol (modified, generated and deleted sub-shapes).
package poly

import (
	"errors"
	"fmt"

	"github.com/chazu/facet/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

// Defaults used when no option overrides them.
const (
	DefaultTolerance      = 1e-6
	DefaultFilletSegments = 8
)

var (
	ErrForeignShape = errors.New("poly: shape was not created by this kernel")
	ErrWrongKind    = errors.New("poly: wrong shape kind")
)

// Kernel implements kernel.Kernel. The zero value is not usable; call New.
type Kernel struct {
	tol            float64
	filletSegments int
	log            *zap.Logger
}

var _ kernel.Kernel = (*Kernel)(nil)

// Option configures a Kernel.
type Option func(*Kernel)

// WithTolerance sets the linear tolerance used for welding and planarity.
func WithTolerance(tol float64) Option {
	return func(k *Kernel) {
		if tol > 0 {
			k.tol = tol
		}
	}
}

// WithFilletSegments sets how many flat facets approximate a fillet arc.
func WithFilletSegments(n int) Option {
	return func(k *Kernel) {
		if n > 0 {
			k.filletSegments = n
		}
	}
}

// WithLogger sets the logger for operation diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(k *Kernel) {
		if l != nil {
			k.log = l
		}
	}
}

// New creates a polyhedral kernel.
func New(opts ...Option) *Kernel {
	k := &Kernel{
		tol:            DefaultTolerance,
		filletSegments: DefaultFilletSegments,
		log:            zap.NewNop(),
	}
	for _, o := range opts {
		o(k)
	}
	return k
}

// Tolerance returns the kernel's linear tolerance.
func (k *Kernel) Tolerance() float64 { return k.tol }

func unwrap(s kernel.Shape) (shape, error) {
	ps, ok := s.(shape)
	if !ok || ps.t == nil {
		return shape{}, ErrForeignShape
	}
	return ps, nil
}

func unwrapKind(s kernel.Shape, kinds ...kernel.ShapeKind) (shape, error) {
	ps, err := unwrap(s)
	if err != nil {
		return shape{}, err
	}
	for _, k := range kinds {
		if ps.t.kind == k {
			return ps, nil
		}
	}
	return shape{}, fmt.Errorf("%w: got %s, want %v", ErrWrongKind, ps.t.kind, kinds)
}

func unwrapAll(in []kernel.Shape) ([]shape, error) {
	out := make([]shape, 0, len(in))
	for _, s := range in {
		ps, err := unwrap(s)
		if err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

func (k *Kernel) Vertex(p v3.Vec) kernel.Shape { return newVertex(p) }

func (k *Kernel) Edge(v0, v1 kernel.Shape) kernel.MakeShape {
	a, err := unwrapKind(v0, kernel.Vertex)
	if err != nil {
		return failed(fmt.Errorf("poly: edge: %w", err))
	}
	b, err := unwrapKind(v1, kernel.Vertex)
	if err != nil {
		return failed(fmt.Errorf("poly: edge: %w", err))
	}
	if a.t == b.t || near(a.t.pt, b.t.pt, k.tol) {
		return failed(fmt.Errorf("poly: edge: zero length edge at %v", a.t.pt))
	}
	rec := newRecord(a, b)
	rec.setResult(newEdge(a, b))
	return done(rec)
}

// Wire chains edges (or the edges of wires) end to end. Edges may be given
// in any order and orientation. Coincident but distinct vertices are merged,
// which replaces the affected edges.
func (k *Kernel) Wire(edges ...kernel.Shape) kernel.MakeShape {
	in, err := unwrapAll(edges)
	if err != nil {
		return failed(fmt.Errorf("poly: wire: %w", err))
	}
	var pool []shape
	for _, s := range in {
		switch s.t.kind {
		case kernel.Edge:
			pool = append(pool, s)
		case kernel.Wire:
			pool = append(pool, s.orientedEdges()...)
		default:
			return failed(fmt.Errorf("poly: wire: %w: %s", ErrWrongKind, s.t.kind))
		}
	}
	if len(pool) == 0 {
		return failed(errors.New("poly: wire: no edges"))
	}

	rec := newRecord(in...)
	used := make([]bool, len(pool))
	chain := []shape{pool[0]}
	used[0] = true
	start, end := pool[0].ends()

	// matches reports how e attaches to v: 1 forward, -1 reversed, 0 not at all.
	matches := func(e shape, v shape) int {
		a, b := e.ends()
		switch {
		case a.t == v.t:
			return 1
		case b.t == v.t:
			return -1
		case near(a.t.pt, v.t.pt, k.tol):
			return 2
		case near(b.t.pt, v.t.pt, k.tol):
			return -2
		}
		return 0
	}

	// next finds the first unused edge attached to v.
	next := func(v shape) (int, int) {
		for i, e := range pool {
			if used[i] {
				continue
			}
			if m := matches(e, v); m != 0 {
				return i, m
			}
		}
		return -1, 0
	}

	for len(chain) < len(pool) {
		i, m := next(end)
		if i < 0 && len(chain) == 1 {
			// The first edge may have been given backwards.
			if i, m = next(start); i >= 0 {
				chain[0] = chain[0].reversed()
				start, end = chain[0].ends()
			}
		}
		if i < 0 {
			return failed(errors.New("poly: wire: edges are not connected"))
		}
		e := pool[i]
		if m < 0 {
			e = e.reversed()
		}
		if m == 2 || m == -2 {
			e = k.reattach(rec, e, end, true)
		}
		chain = append(chain, e)
		used[i] = true
		_, end = e.ends()
	}

	// Close the loop when the last vertex only coincides geometrically.
	if end.t != start.t && len(chain) > 2 && near(end.t.pt, start.t.pt, k.tol) {
		last := len(chain) - 1
		chain[last] = k.reattach(rec, chain[last], start, false)
	}

	w := newWire(chain...)
	rec.setResult(w)
	return done(rec)
}

// reattach rebuilds oriented edge e so that its start (or end) is vertex v.
func (k *Kernel) reattach(rec *record, e shape, v shape, atStart bool) shape {
	a, b := e.ends()
	var ne shape
	if atStart {
		ne = newEdge(v, b)
		rec.modify(a, v)
	} else {
		ne = newEdge(a, v)
		rec.modify(b, v)
	}
	rec.modify(e, ne)
	return ne
}

func (k *Kernel) Face(outer kernel.Shape, holes ...kernel.Shape) kernel.MakeShape {
	w, err := unwrapKind(outer, kernel.Wire)
	if err != nil {
		return failed(fmt.Errorf("poly: face: %w", err))
	}
	if !w.isClosed() {
		return failed(errors.New("poly: face: wire is not closed"))
	}
	pts := w.loopPoints()
	n := newell(pts)
	if n.Length() <= k.tol*k.tol {
		return failed(errors.New("poly: face: wire encloses no area"))
	}
	n = unit(n)
	if planeDeviation(pts, pts[0], n) > k.tol {
		return failed(errors.New("poly: face: wire is not planar"))
	}

	inputs := []shape{w}
	var hs []shape
	for _, h := range holes {
		hw, err := unwrapKind(h, kernel.Wire)
		if err != nil {
			return failed(fmt.Errorf("poly: face: hole: %w", err))
		}
		if !hw.isClosed() {
			return failed(errors.New("poly: face: hole wire is not closed"))
		}
		hp := hw.loopPoints()
		if planeDeviation(hp, pts[0], n) > k.tol {
			return failed(errors.New("poly: face: hole is not in the face plane"))
		}
		if newell(hp).Dot(n) > 0 {
			hw = hw.reversed()
		}
		inputs = append(inputs, hw)
		hs = append(hs, hw)
	}

	rec := newRecord(inputs...)
	rec.setResult(newFace(w, hs...))
	return done(rec)
}

func (k *Kernel) Compound(shapes ...kernel.Shape) kernel.Shape {
	children := make([]shape, 0, len(shapes))
	for _, s := range shapes {
		ps, err := unwrap(s)
		if err != nil {
			k.log.Warn("compound: skipping shape", zap.Error(err))
			continue
		}
		children = append(children, ps)
	}
	return newCompound(children...)
}

// Box builds an axis-aligned box with one corner at the origin.
func (k *Kernel) Box(dx, dy, dz float64) kernel.BoxMaker {
	if dx <= k.tol || dy <= k.tol || dz <= k.tol {
		return failed(fmt.Errorf("poly: box: dimensions must be positive, got %g x %g x %g", dx, dy, dz))
	}
	var v [8]shape
	for i := range v {
		p := v3.Vec{}
		if i&1 != 0 {
			p.X = dx
		}
		if i&2 != 0 {
			p.Y = dy
		}
		if i&4 != 0 {
			p.Z = dz
		}
		v[i] = newVertex(p)
	}
	// Corner loops wind counter-clockwise seen from outside.
	loops := [6][4]int{
		kernel.XMin: {0, 4, 6, 2},
		kernel.XMax: {1, 3, 7, 5},
		kernel.YMin: {0, 1, 5, 4},
		kernel.YMax: {2, 6, 7, 3},
		kernel.ZMin: {0, 2, 3, 1},
		kernel.ZMax: {4, 5, 7, 6},
	}
	b := newBuilder()
	sides := make(map[kernel.BoxSide]shape, 6)
	faces := make([]shape, 0, 6)
	for side, loop := range loops {
		vs := []shape{v[loop[0]], v[loop[1]], v[loop[2]], v[loop[3]]}
		f := newFace(b.wire(vs))
		sides[kernel.BoxSide(side)] = f
		faces = append(faces, f)
	}
	rec := newRecord()
	rec.setResult(newSolid(newShell(faces...)))
	return &makeShapeOp{rec: rec, sides: sides}
}

// ---------------------------------------------------------------------------
// Interrogation
// ---------------------------------------------------------------------------

func (k *Kernel) Point(vertex kernel.Shape) (v3.Vec, error) {
	v, err := unwrapKind(vertex, kernel.Vertex)
	if err != nil {
		return v3.Vec{}, fmt.Errorf("poly: point: %w", err)
	}
	return v.t.pt, nil
}

func (k *Kernel) FaceNormal(face kernel.Shape) (origin, normal v3.Vec, err error) {
	f, err := unwrapKind(face, kernel.Face)
	if err != nil {
		return v3.Vec{}, v3.Vec{}, fmt.Errorf("poly: face normal: %w", err)
	}
	pts := f.outerWire().loopPoints()
	return centroid(pts), unit(newell(pts)), nil
}

// ---------------------------------------------------------------------------
// Shared edge builder
// ---------------------------------------------------------------------------

// builder shares edges between faces by vertex pair.
type builder struct {
	edges map[[2]uint64]shape
}

func newBuilder() *builder {
	return &builder{edges: make(map[[2]uint64]shape)}
}

// edge returns the edge between a and b oriented from a to b.
func (b *builder) edge(a, c shape) shape {
	key := [2]uint64{a.t.id, c.t.id}
	if key[0] > key[1] {
		key[0], key[1] = key[1], key[0]
	}
	if e, ok := b.edges[key]; ok {
		if e.t.children[0].t == a.t {
			return shape{t: e.t}
		}
		return shape{t: e.t, orient: kernel.Reversed}
	}
	e := newEdge(a, c)
	b.edges[key] = e
	return e
}

// wire returns a closed wire through vs.
func (b *builder) wire(vs []shape) shape {
	edges := make([]shape, len(vs))
	for i := range vs {
		edges[i] = b.edge(vs[i], vs[(i+1)%len(vs)])
	}
	return newWire(edges...)
}
