package part

import (
	"errors"
	"fmt"

	"github.com/chazu/facet/pkg/naming"
	"github.com/chazu/facet/pkg/topo"
)

var (
	ErrUnknownLabel = naming.ErrUnknownLabel
	ErrLabelInUse   = naming.ErrLabelInUse
	ErrNotSingle    = topo.ErrNotSingle

	// ErrAlreadyNamed is returned by WithLabel when another label already
	// names exactly the root.
	ErrAlreadyNamed    = errors.New("root already named")
	ErrEmptyPattern    = errors.New("pattern produced no parts")
	ErrNoOperands      = errors.New("no operands")
	ErrNotCompound     = errors.New("shape is not a compound")
	ErrUnexpectedCount = errors.New("unexpected number of results")
)

// QueryError reports a malformed query string. Pos is the byte offset of
// the offending input.
type QueryError struct {
	Query string
	Pos   int
	Msg   string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %q: at %d: %s", e.Query, e.Pos, e.Msg)
}

// GeometryError reports degenerate geometry caught before it reaches the
// kernel.
type GeometryError struct {
	Op  string
	Msg string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}
