package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/part"
	"github.com/chazu/facet/pkg/sketch"
	"github.com/chazu/facet/pkg/topo"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms facet Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: line-to -> line_to
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpPart wraps a *part.Part so it can be passed between builtins.
type sexpPart struct {
	p *part.Part
}

func (s *sexpPart) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(part %s %d labels)", s.p.Kind(), len(s.p.Labels()))
}
func (s *sexpPart) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpSegment is one step of a (sketch ...) form.
type sexpSegment struct {
	op   string // "to", "by" or "close"
	args []sketch.Arg
}

func (s *sexpSegment) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(line-%s)", s.op)
}
func (s *sexpSegment) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		switch {
		case !ok:
			result.positional = append(result.positional, args[i])
		case i+1 < len(args):
			result.kw[name] = args[i+1]
			i++
		default:
			// Trailing keyword with no value is a flag.
			result.kw[name] = &zygo.SexpBool{Val: true}
		}
	}
	return result
}

func (a kwArgs) float(name string, def float64) (float64, error) {
	v, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

func (a kwArgs) str(name string) (string, error) {
	v, ok := a.kw[name]
	if !ok {
		return "", nil
	}
	s, err := toKeywordString(v)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

func (a kwArgs) flag(name string) (bool, error) {
	v, ok := a.kw[name]
	if !ok {
		return false, nil
	}
	b, err := toBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", name, err)
	}
	return b, nil
}

// strs reads several string keywords, stopping at the first error.
func (a kwArgs) strs(names ...string) ([]string, error) {
	out := make([]string, len(names))
	for i, n := range names {
		s, err := a.str(n)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func (a kwArgs) sweepNames() (part.SweepNames, error) {
	s, err := a.strs("first", "last", "profile")
	if err != nil {
		return part.SweepNames{}, err
	}
	return part.SweepNames{First: s[0], Last: s[1], Profile: s[2]}, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toBool(s zygo.Sexp) (bool, error) {
	if v, ok := s.(*zygo.SexpBool); ok {
		return v.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toAxis converts a keyword or string to a topo.Axis.
func toAxis(s zygo.Sexp) (topo.Axis, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected axis keyword (:x, :y, :z): %w", err)
	}
	switch name {
	case "x":
		return topo.X, nil
	case "y":
		return topo.Y, nil
	case "z":
		return topo.Z, nil
	}
	return 0, fmt.Errorf("invalid axis %q, expected x, y, or z", name)
}

func toPart(s zygo.Sexp) (*part.Part, error) {
	if p, ok := s.(*sexpPart); ok {
		return p.p, nil
	}
	return nil, fmt.Errorf("expected part, got %T (%s)", s, s.SexpString(nil))
}

func toParts(args []zygo.Sexp) ([]*part.Part, error) {
	out := make([]*part.Part, len(args))
	for i, a := range args {
		p, err := toPart(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = p
	}
	return out, nil
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toStrings(args []zygo.Sexp) ([]string, error) {
	out := make([]string, len(args))
	for i, a := range args {
		s, err := toString(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = s
	}
	return out, nil
}

func stringList(items []string) zygo.Sexp {
	out := make([]zygo.Sexp, len(items))
	for i, s := range items {
		out[i] = &zygo.SexpStr{S: s}
	}
	return zygo.MakeList(out)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtin is the body of a DSL function. Errors are prefixed with the
// function's DSL name on the way out.
type builtin func(pa kwArgs) (zygo.Sexp, error)

// partOp is a builtin whose first positional argument is a part.
type partOp func(p *part.Part, pa kwArgs) (*part.Part, error)

var errArity = errors.New("wrong number of arguments")

func needPositional(pa kwArgs, n int, usage string) error {
	if len(pa.positional) < n {
		return fmt.Errorf("%w: usage %s", errArity, usage)
	}
	return nil
}

// registerBuiltins installs all facet DSL builtins into a zygomys
// environment. Parts are built on k; defpart records them in d.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens are converted to recognizable string
// literals and kebab-case names match the underscore registrations.
func registerBuiltins(env *zygo.Zlisp, k kernel.Kernel, d *Design) {
	add := func(dslName string, fn builtin) {
		env.AddFunction(strings.ReplaceAll(dslName, "-", "_"), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			out, err := fn(parseArgs(args))
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", dslName, err)
			}
			return out, nil
		})
	}
	addPartOp := func(dslName, usage string, fn partOp) {
		add(dslName, func(pa kwArgs) (zygo.Sexp, error) {
			if err := needPositional(pa, 1, usage); err != nil {
				return nil, err
			}
			p, err := toPart(pa.positional[0])
			if err != nil {
				return nil, err
			}
			q, err := fn(p, pa)
			if err != nil {
				return nil, err
			}
			return &sexpPart{p: q}, nil
		})
	}

	registerValues(add)
	registerFactories(add, k)
	registerSketch(add, k)
	registerTransforms(addPartOp)
	registerOps(add, addPartOp, k)
	registerNaming(add, addPartOp, d)
}

// registerValues installs (vec3 x y z).
func registerValues(add func(string, builtin)) {
	add("vec3", func(pa kwArgs) (zygo.Sexp, error) {
		if len(pa.positional) != 3 {
			return nil, fmt.Errorf("requires exactly 3 arguments, got %d", len(pa.positional))
		}
		var c [3]float64
		for i, a := range pa.positional {
			f, err := toFloat64(a)
			if err != nil {
				return nil, fmt.Errorf("%c: %w", "xyz"[i], err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})
}

// registerFactories installs the solid and profile constructors.
func registerFactories(add func(string, builtin), k kernel.Kernel) {
	// (box 10 20 30 :top "lid" :centered true)
	// (box 10 20 30 :directional true)
	add("box", func(pa kwArgs) (zygo.Sexp, error) {
		if err := needPositional(pa, 3, "(box dx dy dz)"); err != nil {
			return nil, err
		}
		var dims [3]float64
		for i := range dims {
			f, err := toFloat64(pa.positional[i])
			if err != nil {
				return nil, fmt.Errorf("size %d: %w", i+1, err)
			}
			dims[i] = f
		}
		sides, err := pa.strs("xmin", "xmax", "ymin", "ymax", "zmin", "zmax")
		if err != nil {
			return nil, err
		}
		names := part.BoxNames{XMin: sides[0], XMax: sides[1], YMin: sides[2], YMax: sides[3], ZMin: sides[4], ZMax: sides[5]}
		if dir, err := pa.flag("directional"); err != nil {
			return nil, err
		} else if dir {
			names = part.DirectionalBoxNames
		}
		centered, err := pa.flag("centered")
		if err != nil {
			return nil, err
		}
		mk := part.Box
		if centered {
			mk = part.BoxCentered
		}
		p, err := mk(k, dims[0], dims[1], dims[2], names)
		if err != nil {
			return nil, err
		}
		return &sexpPart{p: p}, nil
	})

	// (vertex (vec3 1 2 3) "tip")
	add("vertex", func(pa kwArgs) (zygo.Sexp, error) {
		if err := needPositional(pa, 1, "(vertex (vec3 x y z) [name])"); err != nil {
			return nil, err
		}
		at, err := toVec3(pa.positional[0])
		if err != nil {
			return nil, err
		}
		var name string
		if len(pa.positional) > 1 {
			if name, err = toString(pa.positional[1]); err != nil {
				return nil, err
			}
		}
		return &sexpPart{p: part.Vertex(k, at, name)}, nil
	})

	// (square 10 20 :fill true :xmin "w" ...)
	add("square", func(pa kwArgs) (zygo.Sexp, error) {
		if err := needPositional(pa, 2, "(square dx dy)"); err != nil {
			return nil, err
		}
		dx, err := toFloat64(pa.positional[0])
		if err != nil {
			return nil, err
		}
		dy, err := toFloat64(pa.positional[1])
		if err != nil {
			return nil, err
		}
		sides, err := pa.strs("xmin", "xmax", "ymin", "ymax")
		if err != nil {
			return nil, err
		}
		fill, err := pa.flag("fill")
		if err != nil {
			return nil, err
		}
		names := sketch.SquareNames{XMin: sides[0], XMax: sides[1], YMin: sides[2], YMax: sides[3]}
		p, err := sketch.SquareCentered(k, dx, dy, names, fill)
		if err != nil {
			return nil, err
		}
		return &sexpPart{p: p}, nil
	})

	// (polygon 5 6)
	add("polygon", func(pa kwArgs) (zygo.Sexp, error) {
		if err := needPositional(pa, 2, "(polygon radius segments)"); err != nil {
			return nil, err
		}
		r, err := toFloat64(pa.positional[0])
		if err != nil {
			return nil, err
		}
		n, err := toInt(pa.positional[1])
		if err != nil {
			return nil, err
		}
		p, err := sketch.Polygon(k, r, n)
		if err != nil {
			return nil, err
		}
		return &sexpPart{p: p}, nil
	})

	// (triangle 5 30 :hypotenuse "h" :adjacent "a" :opposite "o"), angle in degrees
	add("triangle", func(pa kwArgs) (zygo.Sexp, error) {
		if err := needPositional(pa, 2, "(triangle hypotenuse angle)"); err != nil {
			return nil, err
		}
		h, err := toFloat64(pa.positional[0])
		if err != nil {
			return nil, err
		}
		deg, err := toFloat64(pa.positional[1])
		if err != nil {
			return nil, err
		}
		s, err := pa.strs("hypotenuse", "adjacent", "opposite")
		if err != nil {
			return nil, err
		}
		names := sketch.TriangleNames{Hypotenuse: s[0], Adjacent: s[1], Opposite: s[2]}
		p, err := sketch.RightAngleTriangle(k, h, deg*math.Pi/180, names, sketch.XY)
		if err != nil {
			return nil, err
		}
		return &sexpPart{p: p}, nil
	})

	// (loft a b c :solid true :first "base" :last "cap" :profile "skin")
	add("loft", func(pa kwArgs) (zygo.Sexp, error) {
		profiles, err := toParts(pa.positional)
		if err != nil {
			return nil, err
		}
		solid, err := pa.flag("solid")
		if err != nil {
			return nil, err
		}
		sw, err := pa.sweepNames()
		if err != nil {
			return nil, err
		}
		p, err := part.Loft(k, profiles, part.LoftOptions{Solid: solid, SweepNames: sw})
		if err != nil {
			return nil, err
		}
		return &sexpPart{p: p}, nil
	})
}

// registerSketch installs (sketch start seg...) and its segments:
//
//	(sketch (vec3 0 0 0)
//	  (line-to :x 5 :label "bottom")
//	  (line-by :y 5)
//	  (close :label "hyp")
//	  :face true)
func registerSketch(add func(string, builtin), k kernel.Kernel) {
	segment := func(op string) builtin {
		return func(pa kwArgs) (zygo.Sexp, error) {
			var args []sketch.Arg
			for name, mk := range map[string]func(float64) sketch.Arg{"x": sketch.X, "y": sketch.Y, "z": sketch.Z} {
				if _, ok := pa.kw[name]; !ok {
					continue
				}
				f, err := pa.float(name, 0)
				if err != nil {
					return nil, err
				}
				args = append(args, mk(f))
			}
			for name, mk := range map[string]func(string) sketch.Arg{"label": sketch.Label, "v0": sketch.V0Label, "v1": sketch.V1Label} {
				s, err := pa.str(name)
				if err != nil {
					return nil, err
				}
				if s != "" {
					args = append(args, mk(s))
				}
			}
			return &sexpSegment{op: op, args: args}, nil
		}
	}
	add("line-to", segment("to"))
	add("line-by", segment("by"))
	add("close", segment("close"))

	add("sketch", func(pa kwArgs) (zygo.Sexp, error) {
		if err := needPositional(pa, 2, "(sketch (vec3 x y z) segment...)"); err != nil {
			return nil, err
		}
		start, err := toVec3(pa.positional[0])
		if err != nil {
			return nil, err
		}
		s := sketch.New(k, start)
		for i, a := range pa.positional[1:] {
			seg, ok := a.(*sexpSegment)
			if !ok {
				return nil, fmt.Errorf("segment %d: expected line-to, line-by or close, got %T", i+1, a)
			}
			switch seg.op {
			case "to":
				s.LineTo(seg.args...)
			case "by":
				s.LineBy(seg.args...)
			case "close":
				s.Close(seg.args...)
			}
		}
		face, err := pa.flag("face")
		if err != nil {
			return nil, err
		}
		var p *part.Part
		if face {
			p, err = s.FacePart()
		} else {
			p, err = s.WirePart()
		}
		if err != nil {
			return nil, err
		}
		return &sexpPart{p: p}, nil
	})
}

// registerTransforms installs the placement builtins. Angles are degrees.
func registerTransforms(addPartOp func(string, string, partOp)) {
	// (translate p (vec3 0 0 10))
	addPartOp("translate", "(translate part (vec3 dx dy dz))", func(p *part.Part, pa kwArgs) (*part.Part, error) {
		if err := needPositional(pa, 2, "(translate part (vec3 dx dy dz))"); err != nil {
			return nil, err
		}
		d, err := toVec3(pa.positional[1])
		if err != nil {
			return nil, err
		}
		return p.TranslateVec(d)
	})

	// (rotate p 90 :axis (vec3 0 0 1) :origin (vec3 0 0 0))
	addPartOp("rotate", "(rotate part degrees)", func(p *part.Part, pa kwArgs) (*part.Part, error) {
		if err := needPositional(pa, 2, "(rotate part degrees)"); err != nil {
			return nil, err
		}
		deg, err := toFloat64(pa.positional[1])
		if err != nil {
			return nil, err
		}
		axis := v3.Vec{Z: 1}
		if v, ok := pa.kw["axis"]; ok {
			if axis, err = toVec3(v); err != nil {
				return nil, fmt.Errorf("axis: %w", err)
			}
		}
		var origin v3.Vec
		if v, ok := pa.kw["origin"]; ok {
			if origin, err = toVec3(v); err != nil {
				return nil, fmt.Errorf("origin: %w", err)
			}
		}
		return p.Rotate(axis, deg*math.Pi/180, origin)
	})

	// (scale p 2)
	addPartOp("scale", "(scale part factor)", func(p *part.Part, pa kwArgs) (*part.Part, error) {
		if err := needPositional(pa, 2, "(scale part factor)"); err != nil {
			return nil, err
		}
		f, err := toFloat64(pa.positional[1])
		if err != nil {
			return nil, err
		}
		return p.Scale(f, v3.Vec{})
	})

	// (mirror p :axis :x :union true)
	addPartOp("mirror", "(mirror part :axis :x)", func(p *part.Part, pa kwArgs) (*part.Part, error) {
		v, ok := pa.kw["axis"]
		if !ok {
			return nil, fmt.Errorf("%w: usage (mirror part :axis :x)", errArity)
		}
		axis, err := toAxis(v)
		if err != nil {
			return nil, err
		}
		union, err := pa.flag("union")
		if err != nil {
			return nil, err
		}
		return p.Mirror(axis, union)
	})

	// (align p "z_min_to_max" other) or (align p "x_mid_to" (vec3 0 0 0))
	addPartOp("align", "(align part pattern target)", func(p *part.Part, pa kwArgs) (*part.Part, error) {
		if err := needPositional(pa, 3, "(align part pattern target)"); err != nil {
			return nil, err
		}
		pattern, err := toString(pa.positional[1])
		if err != nil {
			return nil, err
		}
		al, err := p.Align(pattern)
		if err != nil {
			return nil, err
		}
		switch t := pa.positional[2].(type) {
		case *sexpPart:
			return al.To(t.p)
		case *sexpVec3:
			return al.ToPoint(t.vec)
		}
		return nil, fmt.Errorf("target: expected part or vec3, got %T", pa.positional[2])
	})
}

// registerOps installs the builtins that rebuild geometry.
func registerOps(add func(string, builtin), addPartOp func(string, string, partOp), k kernel.Kernel) {
	booleans := map[string]func(*part.Part, ...*part.Part) (*part.Part, error){
		"union":  (*part.Part).Union,
		"cut":    (*part.Part).Cut,
		"common": (*part.Part).Common,
	}
	for name, fn := range booleans {
		addPartOp(name, "("+name+" part others...)", func(p *part.Part, pa kwArgs) (*part.Part, error) {
			others, err := toParts(pa.positional[1:])
			if err != nil {
				return nil, err
			}
			return fn(p, others...)
		})
	}

	// (add p q ...) makes a compound without rebuilding.
	addPartOp("add", "(add part others...)", func(p *part.Part, pa kwArgs) (*part.Part, error) {
		others, err := toParts(pa.positional[1:])
		if err != nil {
			return nil, err
		}
		return p.Add(others...), nil
	})

	// (fillet p 2 "ridge" "rim") and (chamfer p 1 "ridge")
	for name, fn := range map[string]func(*part.Part, float64, ...string) (*part.Part, error){
		"fillet":  (*part.Part).FilletByName,
		"chamfer": (*part.Part).ChamferByName,
	} {
		usage := "(" + name + " part size label...)"
		addPartOp(name, usage, func(p *part.Part, pa kwArgs) (*part.Part, error) {
			if err := needPositional(pa, 3, usage); err != nil {
				return nil, err
			}
			size, err := toFloat64(pa.positional[1])
			if err != nil {
				return nil, err
			}
			labels, err := toStrings(pa.positional[2:])
			if err != nil {
				return nil, err
			}
			return fn(p, size, labels...)
		})
	}

	// (prism face (vec3 0 0 10) :symmetric true :first "bottom" :last "top")
	addPartOp("prism", "(prism part (vec3 dx dy dz))", func(p *part.Part, pa kwArgs) (*part.Part, error) {
		if err := needPositional(pa, 2, "(prism part (vec3 dx dy dz))"); err != nil {
			return nil, err
		}
		d, err := toVec3(pa.positional[1])
		if err != nil {
			return nil, err
		}
		sw, err := pa.sweepNames()
		if err != nil {
			return nil, err
		}
		sym, err := pa.flag("symmetric")
		if err != nil {
			return nil, err
		}
		if sym {
			return p.SymmetricPrism(d, sw)
		}
		return p.Prism(d, sw)
	})

	// (offset wire 1.5 :open true)
	addPartOp("offset", "(offset part amount)", func(p *part.Part, pa kwArgs) (*part.Part, error) {
		if err := needPositional(pa, 2, "(offset part amount)"); err != nil {
			return nil, err
		}
		amount, err := toFloat64(pa.positional[1])
		if err != nil {
			return nil, err
		}
		open, err := pa.flag("open")
		if err != nil {
			return nil, err
		}
		return p.Offset(amount, kernel.JoinIntersection, open)
	})

	addPartOp("make-face", "(make-face part)", func(p *part.Part, _ kwArgs) (*part.Part, error) {
		return p.MakeFace()
	})

	// (cleanup p :edges false)
	addPartOp("cleanup", "(cleanup part)", func(p *part.Part, pa kwArgs) (*part.Part, error) {
		opts := part.DefaultCleanup
		for name, dst := range map[string]*bool{"edges": &opts.UnifyEdges, "faces": &opts.UnifyFaces} {
			if v, ok := pa.kw[name]; ok {
				b, err := toBool(v)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", name, err)
				}
				*dst = b
			}
		}
		return p.Cleanup(opts)
	})

	// (arrange 5 a b c)
	add("arrange", func(pa kwArgs) (zygo.Sexp, error) {
		if err := needPositional(pa, 2, "(arrange spacing part...)"); err != nil {
			return nil, err
		}
		spacing, err := toFloat64(pa.positional[0])
		if err != nil {
			return nil, err
		}
		parts, err := toParts(pa.positional[1:])
		if err != nil {
			return nil, err
		}
		p, err := part.Arrange(spacing, parts...)
		if err != nil {
			return nil, err
		}
		return &sexpPart{p: p}, nil
	})
}

// registerNaming installs the label and selection builtins and the design
// registry.
func registerNaming(add func(string, builtin), addPartOp func(string, string, partOp), d *Design) {
	// (label p "body")
	addPartOp("label", "(label part name)", func(p *part.Part, pa kwArgs) (*part.Part, error) {
		if err := needPositional(pa, 2, "(label part name)"); err != nil {
			return nil, err
		}
		name, err := toString(pa.positional[1])
		if err != nil {
			return nil, err
		}
		return p.WithLabel(name)
	})

	// (rename p "from" "to")
	addPartOp("rename", "(rename part from to)", func(p *part.Part, pa kwArgs) (*part.Part, error) {
		if err := needPositional(pa, 3, "(rename part from to)"); err != nil {
			return nil, err
		}
		names, err := toStrings(pa.positional[1:3])
		if err != nil {
			return nil, err
		}
		return p.RenameSubshape(names[0], names[1])
	})

	addPartOp("prune", "(prune part)", func(p *part.Part, _ kwArgs) (*part.Part, error) {
		return p.Pruned(), nil
	})

	// (subpart p "left/" :trim true)
	addPartOp("subpart", "(subpart part prefix)", func(p *part.Part, pa kwArgs) (*part.Part, error) {
		if err := needPositional(pa, 2, "(subpart part prefix)"); err != nil {
			return nil, err
		}
		prefix, err := toString(pa.positional[1])
		if err != nil {
			return nil, err
		}
		trim, err := pa.flag("trim")
		if err != nil {
			return nil, err
		}
		return p.Subpart(prefix, trim), nil
	})

	// (query p "*f,l(top)")
	addPartOp("query", "(query part q)", func(p *part.Part, pa kwArgs) (*part.Part, error) {
		if err := needPositional(pa, 2, "(query part q)"); err != nil {
			return nil, err
		}
		q, err := toString(pa.positional[1])
		if err != nil {
			return nil, err
		}
		return p.Query(q)
	})

	// (count p "*e") returns the number of entities a query selects.
	add("count", func(pa kwArgs) (zygo.Sexp, error) {
		if err := needPositional(pa, 2, "(count part q)"); err != nil {
			return nil, err
		}
		p, err := toPart(pa.positional[0])
		if err != nil {
			return nil, err
		}
		q, err := toString(pa.positional[1])
		if err != nil {
			return nil, err
		}
		found, err := p.QueryShapes(q)
		if err != nil {
			return nil, err
		}
		return &zygo.SexpInt{Val: int64(len(found))}, nil
	})

	// (labels p) returns the part's labels in order.
	add("labels", func(pa kwArgs) (zygo.Sexp, error) {
		if err := needPositional(pa, 1, "(labels part)"); err != nil {
			return nil, err
		}
		p, err := toPart(pa.positional[0])
		if err != nil {
			return nil, err
		}
		return stringList(p.Labels()), nil
	})

	// (defpart "name" p) records p in the design and returns it.
	add("defpart", func(pa kwArgs) (zygo.Sexp, error) {
		if err := needPositional(pa, 2, "(defpart name part)"); err != nil {
			return nil, err
		}
		name, err := toString(pa.positional[0])
		if err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		p, err := toPart(pa.positional[1])
		if err != nil {
			return nil, err
		}
		d.define(name, p)
		return &sexpPart{p: p}, nil
	})

	// (part "name") looks up an earlier defpart.
	add("part", func(pa kwArgs) (zygo.Sexp, error) {
		if err := needPositional(pa, 1, "(part name)"); err != nil {
			return nil, err
		}
		name, err := toString(pa.positional[0])
		if err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		p := d.Lookup(name)
		if p == nil {
			return nil, fmt.Errorf("no part named %q", name)
		}
		return &sexpPart{p: p}, nil
	})
}
