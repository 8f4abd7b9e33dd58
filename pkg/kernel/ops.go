package kernel

// ---------------------------------------------------------------------------
// Native operation protocols
//
// A kernel reports what an operation did to its inputs through one of three
// history shapes. Callers normalise them with package history.
// ---------------------------------------------------------------------------

// MakeShape is a completed (or failed) construction operation that answers
// history queries directly.
type MakeShape interface {
	IsDone() bool
	// Check returns the failure diagnostic, or nil when done.
	Check() error
	Shape() Shape

	IsDeleted(s Shape) bool
	Modified(s Shape) []Shape
	Generated(s Shape) []Shape
}

// Sweep is a MakeShape that also exposes the start and end caps.
type Sweep interface {
	MakeShape
	FirstShape() Shape
	LastShape() Shape
}

// BoxMaker is a MakeShape for a box primitive.
type BoxMaker interface {
	MakeShape
	Face(side BoxSide) Shape
}

// History is an operation history kept apart from the algorithm.
type History interface {
	IsRemoved(s Shape) bool
	Modified(s Shape) []Shape
	Generated(s Shape) []Shape
}

// BooleanAlgo is a general boolean operation. Failure is reported as a
// list of alerts rather than a done flag.
type BooleanAlgo interface {
	HasErrors() bool
	Alerts() []string
	Shape() Shape
	History() History
}

// HistoryAlgo is a repair or simplification pass (sewing, unifying
// same-domain faces) whose history lives in a separate History.
type HistoryAlgo interface {
	IsDone() bool
	Check() error
	Shape() Shape
	History() History
}

// OffsetAlgo is a planar offset. It reports deletions and modifications
// but never generated entities.
type OffsetAlgo interface {
	IsDone() bool
	Error() OffsetError
	Shape() Shape

	IsDeleted(s Shape) bool
	Modified(s Shape) []Shape
}

// OffsetError is the status code of an OffsetAlgo.
type OffsetError int

const (
	OffsetNoError OffsetError = iota
	OffsetNotPlanar
	OffsetCannotTrim
	OffsetUnsupported
	OffsetBadInput
)

func (e OffsetError) String() string {
	switch e {
	case OffsetNoError:
		return "NoError"
	case OffsetNotPlanar:
		return "NotPlanar"
	case OffsetCannotTrim:
		return "CannotTrim"
	case OffsetUnsupported:
		return "Unsupported"
	case OffsetBadInput:
		return "BadInput"
	}
	return "Unknown"
}
