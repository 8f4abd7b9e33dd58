package kernel

import "fmt"

// ShapeKind is the topological kind of an entity, ordered from the most
// to the least complex.
type ShapeKind int

const (
	Compound ShapeKind = iota
	Solid
	Shell
	Face
	Wire
	Edge
	Vertex
	// AnyShape matches every kind.
	AnyShape
)

var kindNames = [...]string{
	Compound: "compound",
	Solid:    "solid",
	Shell:    "shell",
	Face:     "face",
	Wire:     "wire",
	Edge:     "edge",
	Vertex:   "vertex",
	AnyShape: "shape",
}

func (k ShapeKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
	return kindNames[k]
}

// Mnemonic returns the short form used by the query language.
func (k ShapeKind) Mnemonic() string {
	switch k {
	case Compound:
		return "c"
	case Solid:
		return "so"
	case Shell:
		return "sh"
	case Face:
		return "f"
	case Wire:
		return "w"
	case Edge:
		return "e"
	case Vertex:
		return "v"
	}
	return "s"
}

// ParseKind resolves a query-language mnemonic.
func ParseKind(mnemonic string) (ShapeKind, error) {
	switch mnemonic {
	case "v":
		return Vertex, nil
	case "e":
		return Edge, nil
	case "w":
		return Wire, nil
	case "f":
		return Face, nil
	case "sh":
		return Shell, nil
	case "so":
		return Solid, nil
	case "c":
		return Compound, nil
	case "s":
		return AnyShape, nil
	}
	return 0, fmt.Errorf("kernel: unrecognized shape type %q", mnemonic)
}

// Orientation of a handle relative to its underlying entity.
type Orientation int

const (
	Forward Orientation = iota
	Reversed
)

// Reverse returns the opposite orientation.
func (o Orientation) Reverse() Orientation {
	if o == Forward {
		return Reversed
	}
	return Forward
}

// Compose returns o as seen through a parent with orientation parent.
func (o Orientation) Compose(parent Orientation) Orientation {
	if parent == Reversed {
		return o.Reverse()
	}
	return o
}

func (o Orientation) String() string {
	if o == Reversed {
		return "reversed"
	}
	return "forward"
}
