package topo

import "errors"

var (
	// ErrNotSingle is returned when exactly one entity was expected.
	ErrNotSingle = errors.New("not exactly one element")
	// ErrBadPattern is returned for malformed swizzle or align patterns.
	ErrBadPattern = errors.New("invalid pattern")
)
