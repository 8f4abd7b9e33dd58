// Package sketch draws labelled straight-edge wires and faces, and builds
// the common 2D profiles on top of them.
package sketch

import (
	"errors"
	"fmt"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/naming"
	"github.com/chazu/facet/pkg/part"
	"github.com/chazu/facet/pkg/topo"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Tolerance is the default minimum edge length.
const Tolerance = 1e-6

var (
	ErrZeroLength = errors.New("edge is zero length")
	ErrTooShort   = errors.New("sketch does not contain enough edges to close")
	ErrEmpty      = errors.New("wire does not contain any edges")
	ErrNotClosed  = errors.New("wire is not closed")
)

type entry struct {
	edge, v0, v1            kernel.Shape
	label, v0Label, v1Label string
}

// Sketcher chains straight edges from a start point. Each edge and each of
// its end vertices may be labelled; the labels survive into the wire and
// face parts. The first error is kept and turns every later call into a
// no-op, so a chain of calls needs one check at the end.
type Sketcher struct {
	k       kernel.Kernel
	tol     float64
	initial kernel.Shape
	start   v3.Vec
	last    kernel.Shape
	lastPt  v3.Vec
	entries []entry
	err     error
}

// New starts a sketch at p.
func New(k kernel.Kernel, p v3.Vec) *Sketcher {
	v := k.Vertex(p)
	return &Sketcher{k: k, tol: Tolerance, initial: v, start: p, last: v, lastPt: p}
}

// Arg describes one line segment: target coordinates and labels.
type Arg func(*spec)

type spec struct {
	x, y, z                 *float64
	label, v0Label, v1Label string
}

func X(v float64) Arg { return func(s *spec) { s.x = &v } }
func Y(v float64) Arg { return func(s *spec) { s.y = &v } }
func Z(v float64) Arg { return func(s *spec) { s.z = &v } }

// At sets all three coordinates.
func At(p v3.Vec) Arg { return func(s *spec) { s.x, s.y, s.z = &p.X, &p.Y, &p.Z } }

// Label names the edge; V0Label and V1Label name its start and end.
func Label(l string) Arg   { return func(s *spec) { s.label = l } }
func V0Label(l string) Arg { return func(s *spec) { s.v0Label = l } }
func V1Label(l string) Arg { return func(s *spec) { s.v1Label = l } }

func collect(args []Arg) spec {
	var s spec
	for _, a := range args {
		a(&s)
	}
	return s
}

func orDefault(p *float64, d float64) float64 {
	if p == nil {
		return d
	}
	return *p
}

// LineTo draws to an absolute point. Coordinates left out keep the value
// of the current point.
func (s *Sketcher) LineTo(args ...Arg) *Sketcher {
	sp := collect(args)
	to := v3.Vec{
		X: orDefault(sp.x, s.lastPt.X),
		Y: orDefault(sp.y, s.lastPt.Y),
		Z: orDefault(sp.z, s.lastPt.Z),
	}
	return s.line(to, sp)
}

// LineBy draws by a relative offset. Coordinates left out are zero.
func (s *Sketcher) LineBy(args ...Arg) *Sketcher {
	sp := collect(args)
	d := v3.Vec{X: orDefault(sp.x, 0), Y: orDefault(sp.y, 0), Z: orDefault(sp.z, 0)}
	return s.line(s.lastPt.Add(d), sp)
}

func (s *Sketcher) line(to v3.Vec, sp spec) *Sketcher {
	if s.err != nil {
		return s
	}
	if to.Sub(s.lastPt).Length() < s.tol {
		s.err = fmt.Errorf("sketch: line to %v: %w", to, ErrZeroLength)
		return s
	}
	next := s.initial
	if to != s.start {
		next = s.k.Vertex(to)
	}
	s.addEdge(next, to, sp)
	return s
}

func (s *Sketcher) addEdge(next kernel.Shape, to v3.Vec, sp spec) {
	op := s.k.Edge(s.last, next)
	if !op.IsDone() {
		s.err = fmt.Errorf("sketch: edge: %w", op.Check())
		return
	}
	s.entries = append(s.entries, entry{
		edge: op.Shape(), v0: s.last, v1: next,
		label: sp.label, v0Label: sp.v0Label, v1Label: sp.v1Label,
	})
	s.last, s.lastPt = next, to
}

// Close draws back to the start point unless the sketch is already there.
// Only labels are read from args.
func (s *Sketcher) Close(args ...Arg) *Sketcher {
	if s.err != nil {
		return s
	}
	if len(s.entries) < 2 {
		s.err = fmt.Errorf("sketch: close: %w", ErrTooShort)
		return s
	}
	if s.lastPt.Sub(s.start).Length() > s.tol {
		s.addEdge(s.initial, s.start, collect(args))
	}
	return s
}

// Err returns the first error the sketch hit.
func (s *Sketcher) Err() error { return s.err }

// Current returns the point the next segment starts from.
func (s *Sketcher) Current() v3.Vec { return s.lastPt }

func (s *Sketcher) names() naming.Map {
	var m naming.Map
	for _, e := range s.entries {
		if e.label != "" {
			m = m.With(e.label, e.edge)
		}
		if e.v0Label != "" {
			m = m.With(e.v0Label, e.v0)
		}
		if e.v1Label != "" {
			m = m.With(e.v1Label, e.v1)
		}
	}
	return m
}

// WirePart chains the edges into a wire part carrying the labels.
func (s *Sketcher) WirePart() (*part.Part, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.entries) == 0 {
		return nil, fmt.Errorf("sketch: %w", ErrEmpty)
	}
	edges := make([]kernel.Shape, len(s.entries))
	for i, e := range s.entries {
		edges[i] = e.edge
	}
	seed := part.New(s.k, edges[0], s.names())
	return seed.Perform("sketch wire", s.k.Wire(edges...), 0)
}

// FacePart fills the closed wire with a face.
func (s *Sketcher) FacePart() (*part.Part, error) {
	w, err := s.WirePart()
	if err != nil {
		return nil, err
	}
	if !topo.IsClosedWire(w.Shape()) {
		return nil, fmt.Errorf("sketch: face: %w", ErrNotClosed)
	}
	return w.Perform("sketch face", s.k.Face(w.Shape()), naming.MatchPartner)
}
