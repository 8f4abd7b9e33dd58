package topo

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Axis selects one coordinate.
type Axis int

const (
	X Axis = iota
	Y
	Z
)

func (a Axis) String() string {
	return [...]string{"x", "y", "z"}[a]
}

func (a Axis) of(v v3.Vec) float64 {
	switch a {
	case X:
		return v.X
	case Y:
		return v.Y
	}
	return v.Z
}

// Moment selects a derived quantity of one axis of an Extents.
type Moment int

const (
	Min Moment = iota
	Mid
	Max
	Span
)

var momentNames = map[string]Moment{"min": Min, "mid": Mid, "max": Max, "span": Span}

func (m Moment) String() string {
	return [...]string{"min", "mid", "max", "span"}[m]
}

// Extents is the axis-aligned bounding box of an entity.
type Extents struct {
	box sdf.Box3
}

// Of computes the extents of s.
func Of(s kernel.Shape) Extents {
	lo, hi := s.BoundingBox()
	return Extents{box: sdf.Box3{
		Min: v3.Vec{X: lo[0], Y: lo[1], Z: lo[2]},
		Max: v3.Vec{X: hi[0], Y: hi[1], Z: hi[2]},
	}}
}

// FromBox wraps an existing box.
func FromBox(b sdf.Box3) Extents {
	return Extents{box: b}
}

// Box returns the underlying box.
func (e Extents) Box() sdf.Box3 { return e.box }

func (e Extents) Min(a Axis) float64  { return a.of(e.box.Min) }
func (e Extents) Max(a Axis) float64  { return a.of(e.box.Max) }
func (e Extents) Span(a Axis) float64 { return e.Max(a) - e.Min(a) }

// Mid is computed as min + (max-min)/2 so equal boxes give identical results.
func (e Extents) Mid(a Axis) float64 {
	lo, hi := e.Min(a), e.Max(a)
	return lo + 0.5*(hi-lo)
}

// Moment returns the requested quantity along a.
func (e Extents) Moment(a Axis, m Moment) float64 {
	switch m {
	case Min:
		return e.Min(a)
	case Mid:
		return e.Mid(a)
	case Max:
		return e.Max(a)
	}
	return e.Span(a)
}

func (e Extents) vec(m Moment) v3.Vec {
	return v3.Vec{X: e.Moment(X, m), Y: e.Moment(Y, m), Z: e.Moment(Z, m)}
}

func (e Extents) MinPoint() v3.Vec { return e.vec(Min) }
func (e Extents) MidPoint() v3.Vec { return e.vec(Mid) }
func (e Extents) MaxPoint() v3.Vec { return e.vec(Max) }
func (e Extents) Size() v3.Vec     { return e.vec(Span) }

// Grow returns the extents pushed outward by plus on the max side and
// minus on the min side of each axis.
func (e Extents) Grow(plus, minus v3.Vec) Extents {
	return Extents{box: sdf.Box3{Min: e.box.Min.Sub(minus), Max: e.box.Max.Add(plus)}}
}

func (e Extents) String() string {
	return fmt.Sprintf("[%g %g %g]..[%g %g %g]",
		e.box.Min.X, e.box.Min.Y, e.box.Min.Z, e.box.Max.X, e.box.Max.Y, e.box.Max.Z)
}

var swizzleRe = regexp.MustCompile(`^([xyz]+)_(mid|min|max|span)$`)

// Swizzle is a parsed accessor like "zxx_min": a list of axes read at one
// moment.
type Swizzle struct {
	Axes   []Axis
	Moment Moment
}

// ParseSwizzle parses a pattern such as "xy_mid".
func ParseSwizzle(pattern string) (Swizzle, error) {
	m := swizzleRe.FindStringSubmatch(pattern)
	if m == nil {
		return Swizzle{}, fmt.Errorf("%w: swizzle %q", ErrBadPattern, pattern)
	}
	return Swizzle{Axes: parseAxes(m[1]), Moment: momentNames[m[2]]}, nil
}

// Swizzle reads the axes of sw in order.
func (e Extents) Swizzle(sw Swizzle) []float64 {
	out := make([]float64, len(sw.Axes))
	for i, a := range sw.Axes {
		out[i] = e.Moment(a, sw.Moment)
	}
	return out
}

func parseAxes(s string) []Axis {
	axes := make([]Axis, 0, len(s))
	for _, c := range s {
		axes = append(axes, Axis(strings.IndexRune("xyz", c)))
	}
	return axes
}

var alignRe = regexp.MustCompile(`^([xyz]+)_(min|mid|max)_to(?:_(min|mid|max))?$`)

// Alignment is a parsed pattern like "xy_mid_to_min": move the From moment
// of the selected axes onto the To moment of a destination. Without a To
// moment the destination is a plain coordinate.
type Alignment struct {
	Axes  [3]bool
	From  Moment
	To    Moment
	HasTo bool
}

// ParseAlignment parses an align pattern.
func ParseAlignment(pattern string) (Alignment, error) {
	m := alignRe.FindStringSubmatch(pattern)
	if m == nil {
		return Alignment{}, fmt.Errorf("%w: alignment %q", ErrBadPattern, pattern)
	}
	var al Alignment
	for _, a := range parseAxes(m[1]) {
		al.Axes[a] = true
	}
	al.From = momentNames[m[2]]
	if m[3] != "" {
		al.To = momentNames[m[3]]
		al.HasTo = true
	}
	return al, nil
}

// Offset returns the translation that moves src's From moment onto dst's
// To moment along the selected axes.
func (al Alignment) Offset(src, dst Extents) v3.Vec {
	return al.OffsetTo(src, dst.vec(al.To))
}

// OffsetTo returns the translation that moves src's From moment onto the
// coordinates of p along the selected axes.
func (al Alignment) OffsetTo(src Extents, p v3.Vec) v3.Vec {
	from := src.vec(al.From)
	var d v3.Vec
	if al.Axes[X] {
		d.X = p.X - from.X
	}
	if al.Axes[Y] {
		d.Y = p.Y - from.Y
	}
	if al.Axes[Z] {
		d.Z = p.Z - from.Z
	}
	return d
}
