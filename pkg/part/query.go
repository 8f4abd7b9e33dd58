package part

import (
	"fmt"
	"strconv"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/topo"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Query is a compiled selection over a part's entities, for example
//
//	*f             every face
//	6f             every face, failing unless there are exactly six
//	[0:2]e         the first two edges
//	[-1]v          the last vertex
//	*f,l(top)      faces labelled "top"
//	*e,l(hole/*)   edges under any label starting with "hole/"
//
// Entities are listed in kernel traversal order, narrowed by each label
// filter in turn, then cut down by the quantity. A Query holds no state
// and may be evaluated against any number of parts.
type Query struct {
	src     string
	kind    kernel.ShapeKind
	q       quantity
	filters []labelFilter
}

type quantityKind int

const (
	quantityAll quantityKind = iota
	quantityExact
	quantityIndex
	quantitySlice
)

type quantity struct {
	kind         quantityKind
	n            int
	lo, hi       int
	hasLo, hasHi bool
}

type labelFilter struct {
	label  string
	prefix bool
}

// queryCacheSize bounds the compiled query cache.
const queryCacheSize = 256

var compiled = mustLRU[string, *Query](queryCacheSize)

func mustLRU[K comparable, V any](size int) *lru.Cache[K, V] {
	c, err := lru.New[K, V](size)
	if err != nil {
		panic(fmt.Sprintf("part: query cache: %v", err))
	}
	return c
}

// ParseQuery compiles src. Compiled queries are cached by source.
func ParseQuery(src string) (*Query, error) {
	if q, ok := compiled.Get(src); ok {
		return q, nil
	}
	ps := &queryParser{src: src}
	q, err := ps.parse()
	if err != nil {
		return nil, err
	}
	compiled.Add(src, q)
	return q, nil
}

// MustParseQuery is ParseQuery for queries known to be valid.
func MustParseQuery(src string) *Query {
	q, err := ParseQuery(src)
	if err != nil {
		panic(err)
	}
	return q
}

func (q *Query) String() string { return q.src }

// Shapes evaluates q against p.
func (q *Query) Shapes(p *Part) ([]kernel.Shape, error) {
	shapes := topo.Explore(p.root, q.kind)
	for _, f := range q.filters {
		var labels []string
		if f.prefix {
			labels = p.names.Matching(f.label + "*")
		} else {
			if !p.names.Has(f.label) {
				return nil, fmt.Errorf("part: query %q: %w: label %q is not present in the part", q.src, ErrUnknownLabel, f.label)
			}
			labels = []string{f.label}
		}
		cands := &topo.Set{}
		for _, l := range labels {
			for _, s := range p.names.Lookup(l) {
				cands.Add(s)
			}
		}
		kept := shapes[:0:0]
		for _, s := range shapes {
			if cands.Contains(s) {
				kept = append(kept, s)
			}
		}
		shapes = kept
	}
	return q.q.apply(q.src, shapes)
}

func (qt quantity) apply(src string, shapes []kernel.Shape) ([]kernel.Shape, error) {
	n := len(shapes)
	switch qt.kind {
	case quantityExact:
		if n != qt.n {
			return nil, fmt.Errorf("part: query %q: %w: want %d, got %d", src, ErrUnexpectedCount, qt.n, n)
		}
	case quantityIndex:
		i := qt.n
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return []kernel.Shape{}, nil
		}
		return []kernel.Shape{shapes[i]}, nil
	case quantitySlice:
		lo, hi := 0, n
		if qt.hasLo {
			lo = clampIndex(qt.lo, n)
		}
		if qt.hasHi {
			hi = clampIndex(qt.hi, n)
		}
		if lo >= hi {
			return []kernel.Shape{}, nil
		}
		return append([]kernel.Shape{}, shapes[lo:hi]...), nil
	}
	return append([]kernel.Shape{}, shapes...), nil
}

// clampIndex resolves a possibly negative slice bound against length n.
func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	return min(max(i, 0), n)
}

// Query returns a part rooted at a compound of the entities q selects,
// carrying p's whole label map.
func (p *Part) Query(q string) (*Part, error) {
	shapes, err := p.QueryShapes(q)
	if err != nil {
		return nil, err
	}
	return p.wrap(p.k.Compound(shapes...)), nil
}

// QueryShapes returns the entities q selects.
func (p *Part) QueryShapes(q string) ([]kernel.Shape, error) {
	cq, err := ParseQuery(q)
	if err != nil {
		return nil, err
	}
	return cq.Shapes(p)
}

// ---------------------------------------------------------------------------
// Parser
// ---------------------------------------------------------------------------

type queryParser struct {
	src string
	pos int
}

func (ps *queryParser) fail(format string, args ...any) error {
	return &QueryError{Query: ps.src, Pos: ps.pos, Msg: fmt.Sprintf(format, args...)}
}

func (ps *queryParser) peek() byte {
	if ps.pos >= len(ps.src) {
		return 0
	}
	return ps.src[ps.pos]
}

func (ps *queryParser) accept(s string) bool {
	if len(ps.src)-ps.pos >= len(s) && ps.src[ps.pos:ps.pos+len(s)] == s {
		ps.pos += len(s)
		return true
	}
	return false
}

func (ps *queryParser) parse() (*Query, error) {
	q := &Query{src: ps.src}
	var err error
	if q.q, err = ps.quantity(); err != nil {
		return nil, err
	}
	if q.kind, err = ps.shapeKind(); err != nil {
		return nil, err
	}
	for ps.pos < len(ps.src) {
		if !ps.accept(",") {
			return nil, ps.fail("expected ',' before filter")
		}
		f, err := ps.filter()
		if err != nil {
			return nil, err
		}
		q.filters = append(q.filters, f)
	}
	return q, nil
}

func (ps *queryParser) quantity() (quantity, error) {
	switch c := ps.peek(); {
	case c == '*':
		ps.pos++
		return quantity{kind: quantityAll}, nil
	case isDigit(c):
		n, err := ps.integer(false)
		return quantity{kind: quantityExact, n: n}, err
	case c == '[':
		ps.pos++
		return ps.bracket()
	}
	return quantity{}, ps.fail("expected '*', a count or a bracketed range")
}

// bracket parses the body of [a:b], [a:], [:b], [:] or [a].
func (ps *queryParser) bracket() (quantity, error) {
	var qt quantity
	if c := ps.peek(); isDigit(c) || c == '-' {
		n, err := ps.integer(true)
		if err != nil {
			return qt, err
		}
		qt.lo, qt.hasLo = n, true
	}
	if ps.accept("]") {
		if !qt.hasLo {
			return qt, ps.fail("empty range")
		}
		return quantity{kind: quantityIndex, n: qt.lo}, nil
	}
	if !ps.accept(":") {
		return qt, ps.fail("expected ':' or ']'")
	}
	qt.kind = quantitySlice
	if c := ps.peek(); isDigit(c) || c == '-' {
		n, err := ps.integer(true)
		if err != nil {
			return qt, err
		}
		qt.hi, qt.hasHi = n, true
	}
	if !ps.accept("]") {
		return qt, ps.fail("expected ']'")
	}
	return qt, nil
}

func (ps *queryParser) integer(signed bool) (int, error) {
	start := ps.pos
	if signed && ps.peek() == '-' {
		ps.pos++
	}
	digits := ps.pos
	for isDigit(ps.peek()) {
		ps.pos++
	}
	if ps.pos == digits {
		return 0, ps.fail("expected digits")
	}
	n, err := strconv.Atoi(ps.src[start:ps.pos])
	if err != nil {
		ps.pos = start
		return 0, ps.fail("bad integer: %v", err)
	}
	return n, nil
}

func (ps *queryParser) shapeKind() (kernel.ShapeKind, error) {
	for _, m := range []string{"sh", "so", "v", "e", "w", "f", "c", "s"} {
		if ps.accept(m) {
			return kernel.ParseKind(m)
		}
	}
	return 0, ps.fail("unrecognized shape type")
}

func (ps *queryParser) filter() (labelFilter, error) {
	if !ps.accept("l(") {
		return labelFilter{}, ps.fail("expected label filter 'l('")
	}
	start := ps.pos
	if !isLetter(ps.peek()) {
		return labelFilter{}, ps.fail("label must start with a letter")
	}
	for isLabelByte(ps.peek()) {
		ps.pos++
	}
	f := labelFilter{label: ps.src[start:ps.pos]}
	if ps.accept("*") {
		f.prefix = true
	}
	if !ps.accept(")") {
		return labelFilter{}, ps.fail("expected ')'")
	}
	return f, nil
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

func isLabelByte(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_' || c == '/' || c == '-' || c == '.' || c == ' '
}
