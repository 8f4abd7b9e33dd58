package engine

import (
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/topo"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(box 1 2 3 :zmax "top")`,
			expect: `(box 1 2 3 "__kw_zmax" "top")`,
		},
		{
			name:   "multiple keywords",
			input:  `(prism f v :first "a" :last "b")`,
			expect: `(prism f v "__kw_first" "a" "__kw_last" "b")`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "query string preserved",
			input:  `(query p "*f,l(x-min)")`,
			expect: `(query p "*f,l(x-min)")`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(make-face w :v0 "start")`,
			expect: `(make_face w "__kw_v0" "start")`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:fillet-segments`,
			expect: `"__kw_fillet-segments"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// evalErrorContaining evaluates source and checks that it fails with a
// message containing want.
func evalErrorContaining(t *testing.T, source, want string) {
	t.Helper()
	res, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if len(res.Errors) == 0 {
		t.Fatalf("expected eval error containing %q", want)
	}
	if !strings.Contains(res.Errors[0].Message, want) {
		t.Errorf("error = %q, want containing %q", res.Errors[0].Message, want)
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

// ---------------------------------------------------------------------------
// Factories
// ---------------------------------------------------------------------------

func TestBoxWithLabels(t *testing.T) {
	res := mustEvaluate(t, NewEngine(), `(defpart "block" (box 10 20 30 :zmin "bottom" :zmax "top"))`)

	p := res.Design.MustLookup("block")
	if got := p.Labels(); !slices.Equal(got, []string{"bottom", "top"}) {
		t.Errorf("labels = %v, want [bottom top]", got)
	}
	top, err := p.GetSingle("top")
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if z := topo.Of(top).Min(topo.Z); !near(z, 30) {
		t.Errorf("top face at z=%g, want 30", z)
	}
	if size := p.Extents().Size(); !near(size.X, 10) || !near(size.Y, 20) || !near(size.Z, 30) {
		t.Errorf("size = %v, want 10x20x30", size)
	}
}

func TestCenteredBoxBecomesMain(t *testing.T) {
	res := mustEvaluate(t, NewEngine(), `(box 2 4 6 :centered true)`)

	p := res.Design.Lookup("main")
	if p == nil {
		t.Fatal("a script ending in a part should define main")
	}
	ex := p.Extents()
	if !near(ex.Min(topo.X), -1) || !near(ex.Max(topo.Z), 3) {
		t.Errorf("extents = %v, want centred on the origin", ex)
	}
}

func TestNoMainWhenScriptEndsElsewhere(t *testing.T) {
	res := mustEvaluate(t, NewEngine(), `
(def b (box 1 1 1))
(+ 1 2)
`)
	if res.Design.PartCount() != 0 {
		t.Errorf("expected no parts, got %d", res.Design.PartCount())
	}
}

func TestBoxErrors(t *testing.T) {
	evalErrorContaining(t, `(box 1 2)`, "wrong number of arguments")
	evalErrorContaining(t, `(box 1 "two" 3)`, "expected number")
	evalErrorContaining(t, `(box 1 2 3 :zmax 4)`, "zmax")
	evalErrorContaining(t, `(box 1 2 3 :centered 1)`, "expected true or false")
}

func TestVec3(t *testing.T) {
	res := mustEvaluate(t, NewEngine(), `(defpart "v" (vertex (vec3 1 2.5 -3) "tip"))`)

	p := res.Design.MustLookup("v")
	if p.Kind() != kernel.Vertex {
		t.Fatalf("kind = %s, want vertex", p.Kind())
	}
	if got := p.Extents().MinPoint(); !near(got.X, 1) || !near(got.Y, 2.5) || !near(got.Z, -3) {
		t.Errorf("vertex at %v", got)
	}
	if !slices.Equal(p.Labels(), []string{"tip"}) {
		t.Errorf("labels = %v, want [tip]", p.Labels())
	}

	evalErrorContaining(t, `(vec3 1 2)`, "requires exactly 3 arguments")
	evalErrorContaining(t, `(vec3 1 2 "z")`, "z: expected number")
}

func TestProfiles(t *testing.T) {
	res := mustEvaluate(t, NewEngine(), `
(defpart "sq" (square 4 2 :xmin "w" :xmax "e" :fill true))
(defpart "hex" (polygon 5 6))
(defpart "tri" (triangle 10 30 :hypotenuse "h" :adjacent "a" :opposite "o"))
`)
	sq := res.Design.MustLookup("sq")
	if sq.Kind() != kernel.Face {
		t.Errorf("filled square kind = %s, want face", sq.Kind())
	}
	if !slices.Equal(sq.Labels(), []string{"e", "w"}) {
		t.Errorf("square labels = %v", sq.Labels())
	}

	hex := res.Design.MustLookup("hex")
	if n := len(topo.ExploreUnique(hex.Shape(), kernel.Edge)); n != 6 {
		t.Errorf("hexagon has %d edges, want 6", n)
	}

	tri := res.Design.MustLookup("tri")
	a, err := tri.GetSingle("a")
	if err != nil {
		t.Fatalf("adjacent: %v", err)
	}
	// 30 degrees: the adjacent side is h*cos(30).
	if span := topo.Of(a).Span(topo.X); !near(span, 10*math.Cos(math.Pi/6)) {
		t.Errorf("adjacent span = %g", span)
	}
}

// ---------------------------------------------------------------------------
// Sketches and sweeps
// ---------------------------------------------------------------------------

func TestSketchAndPrism(t *testing.T) {
	res := mustEvaluate(t, NewEngine(), `
;; right triangle in XY, extruded up
(defpart "tri" (sketch (vec3 0 0 0)
  (line-to :x 4 :label "base" :v0 "origin")
  (line-to :y 3 :label "upright")
  (close :label "hyp")
  :face true))
(defpart "wedge" (prism (part "tri") (vec3 0 0 2) :first "floor" :last "roof"))
`)
	tri := res.Design.MustLookup("tri")
	if tri.Kind() != kernel.Face {
		t.Fatalf("sketch with :face is %s, want face", tri.Kind())
	}
	if want := []string{"base", "origin", "upright", "hyp"}; !slices.Equal(tri.Labels(), want) {
		t.Errorf("sketch labels = %v, want %v", tri.Labels(), want)
	}
	hyp, err := tri.GetSingle("hyp")
	if err != nil {
		t.Fatalf("hyp: %v", err)
	}
	if !near(topo.Of(hyp).Span(topo.X), 4) || !near(topo.Of(hyp).Span(topo.Y), 3) {
		t.Errorf("hypotenuse extents = %v", topo.Of(hyp))
	}

	wedge := res.Design.MustLookup("wedge")
	for _, l := range []string{"base", "hyp", "floor", "roof"} {
		if !slices.Contains(wedge.Labels(), l) {
			t.Errorf("wedge is missing label %q (has %v)", l, wedge.Labels())
		}
	}
	roof, err := wedge.GetSingle("roof")
	if err != nil {
		t.Fatalf("roof: %v", err)
	}
	if z := topo.Of(roof).Min(topo.Z); !near(z, 2) {
		t.Errorf("roof at z=%g, want 2", z)
	}
}

func TestSketchRejectsNonSegments(t *testing.T) {
	evalErrorContaining(t, `(sketch (vec3 0 0 0) (box 1 1 1))`, "expected line-to, line-by or close")
	evalErrorContaining(t, `(sketch (vec3 0 0 0) (line-by :x 1) :face true)`, "sketch")
}

func TestLoft(t *testing.T) {
	res := mustEvaluate(t, NewEngine(), `
(def lower (square 4 4))
(def upper (translate (square 2 2) (vec3 0 0 5)))
(defpart "frustum" (loft lower upper :solid true :first "base" :last "cap"))
`)
	p := res.Design.MustLookup("frustum")
	if n := len(topo.ExploreUnique(p.Shape(), kernel.Face)); n != 6 {
		t.Errorf("frustum has %d faces, want 6", n)
	}
	if !near(p.Extents().Span(topo.Z), 5) {
		t.Errorf("frustum height = %g", p.Extents().Span(topo.Z))
	}
	evalErrorContaining(t, `(loft (square 1 1))`, "loft")
}

// ---------------------------------------------------------------------------
// Transforms and operations
// ---------------------------------------------------------------------------

func TestTransforms(t *testing.T) {
	res := mustEvaluate(t, NewEngine(), `
(def b (box 2 2 2 :zmax "top"))
(defpart "moved" (translate b (vec3 0 0 10)))
(defpart "turned" (rotate b 90 :axis (vec3 0 0 1)))
(defpart "big" (scale b 3))
(defpart "flipped" (mirror b :axis :x))
(defpart "stacked" (align (box 1 1 1) "z_min_to_max" b))
`)
	d := res.Design
	top, err := d.MustLookup("moved").GetSingle("top")
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if z := topo.Of(top).Min(topo.Z); !near(z, 12) {
		t.Errorf("moved top at z=%g, want 12", z)
	}
	if x := d.MustLookup("turned").Extents().Min(topo.X); !near(x, -2) {
		t.Errorf("turned min x = %g, want -2", x)
	}
	if s := d.MustLookup("big").Extents().Span(topo.Y); !near(s, 6) {
		t.Errorf("scaled span = %g, want 6", s)
	}
	if x := d.MustLookup("flipped").Extents().Max(topo.X); !near(x, 0) {
		t.Errorf("mirrored max x = %g, want 0", x)
	}
	if z := d.MustLookup("stacked").Extents().Min(topo.Z); !near(z, 2) {
		t.Errorf("aligned min z = %g, want 2", z)
	}

	evalErrorContaining(t, `(mirror (box 1 1 1) :axis :w)`, `invalid axis "w"`)
	evalErrorContaining(t, `(mirror (box 1 1 1))`, "usage (mirror")
	evalErrorContaining(t, `(align (box 1 1 1) "z_min_to_max" 3)`, "expected part or vec3")
}

func TestBooleans(t *testing.T) {
	res := mustEvaluate(t, NewEngine(), `
(def body (box 2 2 2 :directional true))
(def tool (translate (box 2 2 2 :zmin "notch-floor") (vec3 1 1 1)))
(defpart "notched" (cut body tool))
(defpart "overlap" (common body tool))
(defpart "both" (union body (translate (box 2 2 2) (vec3 2 0 0))))
(defpart "pair" (add body tool))
`)
	d := res.Design
	notched := d.MustLookup("notched")
	floors, err := notched.Get("notch-floor")
	if err != nil {
		t.Fatalf("notch-floor: %v", err)
	}
	if len(floors) == 0 {
		t.Fatal("the tool's labelled face should survive the cut")
	}
	if size := d.MustLookup("overlap").Extents().Size(); !near(size.X, 1) || !near(size.Z, 1) {
		t.Errorf("common size = %v, want 1x1x1", size)
	}
	if span := d.MustLookup("both").Extents().Span(topo.X); !near(span, 4) {
		t.Errorf("union x span = %g, want 4", span)
	}
	pair := d.MustLookup("pair")
	if pair.Kind() != kernel.Compound {
		t.Errorf("add kind = %s, want compound", pair.Kind())
	}
	if !slices.Contains(pair.Labels(), "notch-floor") || !slices.Contains(pair.Labels(), "top") {
		t.Errorf("add should merge both maps, got %v", pair.Labels())
	}

	evalErrorContaining(t, `(cut (box 1 1 1) 5)`, "argument 1: expected part")
}

func TestBlendErrors(t *testing.T) {
	evalErrorContaining(t, `(chamfer (box 10 10 10) 1 "nope")`, "chamfer")
	evalErrorContaining(t, `(fillet (box 10 10 10) 1)`, "usage (fillet")
}

// ---------------------------------------------------------------------------
// Naming builtins
// ---------------------------------------------------------------------------

func TestLabelRenameSubpart(t *testing.T) {
	res := mustEvaluate(t, NewEngine(), `
(def b (label (box 1 1 1 :zmax "top" :zmin "bottom") "body"))
(defpart "renamed" (rename b "top" "lid"))
(defpart "prefixed" (subpart (rename b "bottom" "base/bottom") "base/" :trim true))
`)
	if got := res.Design.MustLookup("renamed").Labels(); !slices.Equal(got, []string{"bottom", "lid", "body"}) {
		t.Errorf("renamed labels = %v", got)
	}
	if got := res.Design.MustLookup("prefixed").Labels(); !slices.Equal(got, []string{"bottom"}) {
		t.Errorf("subpart labels = %v", got)
	}

	evalErrorContaining(t, `(rename (box 1 1 1) "a" "b")`, "rename")
	evalErrorContaining(t, `(label (label (box 1 1 1) "a") "b")`, "label")

	// A face label of the same name does not block naming the root.
	res = mustEvaluate(t, NewEngine(), `(defpart "p" (label (box 1 1 1 :zmax "top") "top"))`)
	if got, _ := res.Design.MustLookup("p").Get("top"); len(got) != 2 {
		t.Errorf("top holds %d entities, want face and root", len(got))
	}
}

func TestQueryAndCount(t *testing.T) {
	res := mustEvaluate(t, NewEngine(), `
(def b (box 1 1 1 :directional true))
(cond (and (== (count b "*f") 6) (== (count b "*e") 24))
  (defpart "ok" b)
  (defpart "bad" b))
(defpart "lid" (query b "1f,l(top)"))
`)
	if res.Design.Lookup("ok") == nil {
		t.Error("count returned unexpected values")
	}
	lid := res.Design.MustLookup("lid")
	if lid.Kind() != kernel.Compound {
		t.Errorf("query kind = %s, want compound", lid.Kind())
	}
	if z := lid.Extents().Min(topo.Z); !near(z, 1) {
		t.Errorf("queried face at z=%g, want 1", z)
	}

	evalErrorContaining(t, `(query (box 1 1 1) "5f")`, "want 5, got 6")
	evalErrorContaining(t, `(count (box 1 1 1) "[]f")`, "query")
}

func TestLabelsReturnsList(t *testing.T) {
	res := mustEvaluate(t, NewEngine(), `
(def b (box 1 1 1 :xmin "a" :xmax "b"))
(cond (== (len (labels b)) 2)
  (defpart "ok" b)
  (defpart "bad" b))
`)
	if res.Design.Lookup("ok") == nil {
		t.Errorf("labels returned the wrong length, parts = %v", res.Design.Parts())
	}
}

func TestStaleLabelWarnings(t *testing.T) {
	res := mustEvaluate(t, NewEngine(), `
(def b (box 1 1 1 :directional true))
(defpart "lid" (query b "1f,l(top)"))
(defpart "clean" (prune (query b "1f,l(top)")))
`)
	if len(res.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", res.Warnings)
	}
	w := res.Warnings[0]
	if w.Part != "lid" || !strings.HasPrefix(w.Message, "5 labels") {
		t.Errorf("warning = %s", w)
	}
	if got := res.Design.MustLookup("clean").Labels(); !slices.Equal(got, []string{"top"}) {
		t.Errorf("pruned labels = %v, want [top]", got)
	}
}

func TestRootLabelWarningMatchesPrune(t *testing.T) {
	res := mustEvaluate(t, NewEngine(), `
(defpart "named" (label (box 1 1 1 :zmax "top") "body"))
(defpart "pruned" (prune (part "named")))
`)
	if len(res.Warnings) != 1 || res.Warnings[0].Part != "named" || !strings.HasPrefix(res.Warnings[0].Message, "1 labels") {
		t.Fatalf("warnings = %v, want one for named", res.Warnings)
	}
	if got := res.Design.MustLookup("pruned").Labels(); !slices.Equal(got, []string{"top"}) {
		t.Errorf("pruned labels = %v, want [top]", got)
	}
}

func TestPartLookupError(t *testing.T) {
	evalErrorContaining(t, `(part "nope")`, `no part named "nope"`)
	evalErrorContaining(t, `(defpart 3 (box 1 1 1))`, "name: expected string")
	evalErrorContaining(t, `(defpart "x" 3)`, "expected part")
}

func TestArithmeticStillWorks(t *testing.T) {
	res := mustEvaluate(t, NewEngine(), `
(def w 10)
(defpart "panel" (box (* w 2) (/ w 2) (- w 9)))
`)
	size := res.Design.MustLookup("panel").Extents().Size()
	if !near(size.X, 20) || !near(size.Y, 5) || !near(size.Z, 1) {
		t.Errorf("size = %v, want 20x5x1", size)
	}
}
