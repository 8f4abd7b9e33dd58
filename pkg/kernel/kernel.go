// Package kernel defines the abstract B-Rep geometry kernel seam.
// Implementations own every topological entity; the rest of the system
// only holds Shape handles and asks the kernel what its operations did
// to them. The kernel has no notion of persistent names.
package kernel

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Shape is an opaque handle to a kernel entity (vertex, edge, wire,
// face, shell, solid or compound). Two distinct handles may refer to the
// same underlying entity; IsSame is the only meaningful equality.
type Shape interface {
	Kind() ShapeKind
	Orientation() Orientation
	// Reversed returns a handle to the same entity with the opposite orientation.
	Reversed() Shape

	// IsSame reports whether both handles share the same underlying
	// topology. Orientation is ignored.
	IsSame(other Shape) bool
	// IsPartner reports whether both handles share the same underlying
	// topology regardless of placement.
	IsPartner(other Shape) bool
	// HashCode returns a hash in [0, upper) consistent with IsSame.
	HashCode(upper int) int

	// Children returns the direct sub-entities, with orientation composed
	// with this handle's orientation.
	Children() []Shape

	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// BoolOp selects a boolean operation.
type BoolOp int

const (
	Fuse BoolOp = iota
	Cut
	Common
)

func (op BoolOp) String() string {
	switch op {
	case Fuse:
		return "fuse"
	case Cut:
		return "cut"
	case Common:
		return "common"
	}
	return "unknown"
}

// JoinType controls how offset segments are joined at corners.
type JoinType int

const (
	JoinArc JoinType = iota
	JoinTangent
	JoinIntersection
)

// BoxSide names one face of a box primitive.
type BoxSide int

const (
	XMin BoxSide = iota
	XMax
	YMin
	YMax
	ZMin
	ZMax
)

// Kernel is the abstract geometry kernel interface. Every operation that
// produces a new shape from existing ones returns a native operation
// object that reports success and history.
type Kernel interface {
	// Construction
	Vertex(p v3.Vec) Shape
	Edge(v0, v1 Shape) MakeShape
	Wire(edges ...Shape) MakeShape
	Face(outer Shape, holes ...Shape) MakeShape
	Compound(shapes ...Shape) Shape
	Box(dx, dy, dz float64) BoxMaker

	// Modification
	Transform(s Shape, m sdf.M44) MakeShape
	Prism(s Shape, d v3.Vec) Sweep
	Loft(profiles []Shape, solid bool) Sweep
	Boolean(op BoolOp, args, tools []Shape) BooleanAlgo
	Fillet(s Shape, radius float64, edges []Shape) MakeShape
	Chamfer(s Shape, dist float64, edges []Shape) MakeShape
	Offset(s Shape, amount float64, join JoinType, open bool) OffsetAlgo
	Sew(shapes []Shape, tolerance float64) HistoryAlgo
	Unify(s Shape, edges, faces bool) HistoryAlgo

	// Interrogation
	Point(vertex Shape) (v3.Vec, error)
	FaceNormal(face Shape) (origin, normal v3.Vec, err error)

	// Mesh output
	ToMesh(s Shape) (*Mesh, error)
}
