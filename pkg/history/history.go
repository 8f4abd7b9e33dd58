// Package history normalises the history protocols of kernel operations
// into one OperationHistory. An adapter is chosen at the call site, where
// the concrete operation type is known, and is only ever built over an
// operation that succeeded.
package history

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/facet/pkg/kernel"
	"go.uber.org/zap"
)

// Kind identifies which native protocol an adapter wraps.
type Kind int

const (
	MakeShape Kind = iota
	BooleanAlgo
	OffsetAlgo
	HistoryAlgo
)

func (k Kind) String() string {
	switch k {
	case MakeShape:
		return "make-shape"
	case BooleanAlgo:
		return "boolean"
	case OffsetAlgo:
		return "offset"
	case HistoryAlgo:
		return "history"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// OperationHistory answers, for an input entity of a completed operation,
// whether the operation deleted it and which result entities replace or
// were generated from it.
type OperationHistory interface {
	Kind() Kind
	Shape() kernel.Shape
	IsDeleted(s kernel.Shape) bool
	Modified(s kernel.Shape) []kernel.Shape
	Generated(s kernel.Shape) []kernel.Shape
}

// ErrNotDone is wrapped by every FailedError.
var ErrNotDone = errors.New("operation not done")

// FailedError reports a kernel operation that did not complete.
type FailedError struct {
	Kind   Kind
	Op     string
	Reason string
	Alerts []string
}

func (e *FailedError) Error() string {
	if len(e.Alerts) > 0 {
		return fmt.Sprintf("%s failed with the following alerts: [%s]", e.Op, strings.Join(e.Alerts, ", "))
	}
	if e.Reason == "" {
		return e.Op + " failed"
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Reason)
}

func (e *FailedError) Unwrap() error { return ErrNotDone }

func fail(e *FailedError) error {
	zap.L().Named("history").Debug("kernel operation failed",
		zap.Stringer("kind", e.Kind),
		zap.String("op", e.Op),
		zap.String("reason", e.Reason),
		zap.Strings("alerts", e.Alerts))
	return e
}

type makeShape struct{ m kernel.MakeShape }

// FromMakeShape adapts a construction operation. Sweeps and box makers
// are make-shape operations too.
func FromMakeShape(op string, m kernel.MakeShape) (OperationHistory, error) {
	if !m.IsDone() {
		reason := "not done"
		if err := m.Check(); err != nil {
			reason = err.Error()
		}
		return nil, fail(&FailedError{Kind: MakeShape, Op: op, Reason: reason})
	}
	return makeShape{m}, nil
}

func (h makeShape) Kind() Kind                              { return MakeShape }
func (h makeShape) Shape() kernel.Shape                     { return h.m.Shape() }
func (h makeShape) IsDeleted(s kernel.Shape) bool           { return h.m.IsDeleted(s) }
func (h makeShape) Modified(s kernel.Shape) []kernel.Shape  { return h.m.Modified(s) }
func (h makeShape) Generated(s kernel.Shape) []kernel.Shape { return h.m.Generated(s) }

type separate struct {
	kind  Kind
	shape kernel.Shape
	h     kernel.History
}

// FromBoolean adapts a general boolean operation. Alerts make it fail.
func FromBoolean(op string, b kernel.BooleanAlgo) (OperationHistory, error) {
	if b.HasErrors() {
		return nil, fail(&FailedError{Kind: BooleanAlgo, Op: op, Alerts: b.Alerts()})
	}
	return separate{kind: BooleanAlgo, shape: b.Shape(), h: b.History()}, nil
}

// FromHistory adapts a repair pass whose history lives apart from it.
func FromHistory(op string, a kernel.HistoryAlgo) (OperationHistory, error) {
	if !a.IsDone() {
		reason := "not done"
		if err := a.Check(); err != nil {
			reason = err.Error()
		}
		return nil, fail(&FailedError{Kind: HistoryAlgo, Op: op, Reason: reason})
	}
	return separate{kind: HistoryAlgo, shape: a.Shape(), h: a.History()}, nil
}

func (h separate) Kind() Kind                              { return h.kind }
func (h separate) Shape() kernel.Shape                     { return h.shape }
func (h separate) IsDeleted(s kernel.Shape) bool           { return h.h.IsRemoved(s) }
func (h separate) Modified(s kernel.Shape) []kernel.Shape  { return h.h.Modified(s) }
func (h separate) Generated(s kernel.Shape) []kernel.Shape { return h.h.Generated(s) }

type offset struct{ o kernel.OffsetAlgo }

// FromOffset adapts a planar offset. Offsets never generate entities.
func FromOffset(op string, o kernel.OffsetAlgo) (OperationHistory, error) {
	if !o.IsDone() {
		return nil, fail(&FailedError{Kind: OffsetAlgo, Op: op, Reason: o.Error().String()})
	}
	return offset{o}, nil
}

func (h offset) Kind() Kind                             { return OffsetAlgo }
func (h offset) Shape() kernel.Shape                    { return h.o.Shape() }
func (h offset) IsDeleted(s kernel.Shape) bool          { return h.o.IsDeleted(s) }
func (h offset) Modified(s kernel.Shape) []kernel.Shape { return h.o.Modified(s) }
func (h offset) Generated(kernel.Shape) []kernel.Shape  { return nil }
