package part

import (
	"errors"
	"testing"

	"github.com/chazu/facet/pkg/history"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/kernel/poly"
	"github.com/chazu/facet/pkg/naming"
	"github.com/chazu/facet/pkg/topo"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBox(t *testing.T, k kernel.Kernel, dx, dy, dz float64, names BoxNames) *Part {
	t.Helper()
	p, err := Box(k, dx, dy, dz, names)
	require.NoError(t, err)
	return p
}

func single(t *testing.T, p *Part, label string) kernel.Shape {
	t.Helper()
	s, err := p.GetSingle(label)
	require.NoError(t, err)
	return s
}

func TestTranslateLeavesOriginalUntouched(t *testing.T) {
	p0 := newBox(t, poly.New(), 1, 1, 1, BoxNames{})

	p1, err := p0.Translate(1, 0, 0)
	require.NoError(t, err)

	assert.False(t, p0.Shape().IsSame(p1.Shape()))
	assert.Equal(t, v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, p0.Extents().MidPoint())
	assert.Equal(t, v3.Vec{X: 1.5, Y: 0.5, Z: 0.5}, p1.Extents().MidPoint())
}

func TestTransformCarriesLabels(t *testing.T) {
	p := newBox(t, poly.New(), 2, 2, 2, DirectionalBoxNames)

	moved, err := p.Translate(0, 0, 5)
	require.NoError(t, err)

	top := single(t, moved, "top")
	assert.InDelta(t, 7, topo.Of(top).Min(topo.Z), 1e-9)
	assert.False(t, top.IsSame(single(t, p, "top")))
	if diff := cmp.Diff(p.Labels(), moved.Labels()); diff != "" {
		t.Errorf("labels changed (-before +after):\n%s", diff)
	}
}

func TestRotateAndScale(t *testing.T) {
	p := newBox(t, poly.New(), 2, 1, 1, BoxNames{})

	r, err := p.Rotate(v3.Vec{Z: 1}, 1.5707963267948966, v3.Vec{})
	require.NoError(t, err)
	assert.InDelta(t, 1, r.Extents().Span(topo.X), 1e-9)
	assert.InDelta(t, 2, r.Extents().Span(topo.Y), 1e-9)

	s, err := p.Scale(2, v3.Vec{X: 1})
	require.NoError(t, err)
	assert.InDelta(t, -1, s.Extents().Min(topo.X), 1e-9)
	assert.InDelta(t, 4, s.Extents().Span(topo.X), 1e-9)

	span, err := p.ScaleToSpan(topo.X, 6, false)
	require.NoError(t, err)
	assert.InDelta(t, 6, span.Extents().Span(topo.X), 1e-9)
	assert.InDelta(t, 1, span.Extents().Span(topo.Y), 1e-9)

	uniform, err := p.ScaleToSpan(topo.X, 6, true)
	require.NoError(t, err)
	assert.InDelta(t, 3, uniform.Extents().Span(topo.Z), 1e-9)

	_, err = p.Rotate(v3.Vec{}, 1, v3.Vec{})
	var gerr *GeometryError
	assert.ErrorAs(t, err, &gerr)
}

func TestMirror(t *testing.T) {
	p := newBox(t, poly.New(), 1, 1, 1, DirectionalBoxNames)

	m, err := p.Mirror(topo.X, false)
	require.NoError(t, err)
	assert.InDelta(t, -1, m.Extents().Min(topo.X), 1e-9)
	assert.InDelta(t, 0, m.Extents().Max(topo.X), 1e-9)

	both, err := p.Mirror(topo.X, true)
	require.NoError(t, err)
	assert.InDelta(t, 2, both.Extents().Span(topo.X), 1e-9)
	assert.Equal(t, kernel.Solid, topo.Explore(both.Shape(), kernel.Solid)[0].Kind())
}

func TestAlign(t *testing.T) {
	k := poly.New()
	a := newBox(t, k, 2, 2, 2, BoxNames{})
	b, err := newBox(t, k, 4, 4, 4, BoxNames{}).Translate(10, 10, 10)
	require.NoError(t, err)

	al, err := a.Align("xyz_mid_to_mid")
	require.NoError(t, err)
	got, err := al.To(b)
	require.NoError(t, err)
	assert.Equal(t, b.Extents().MidPoint(), got.Extents().MidPoint())

	al, err = a.Align("z_min_to_max")
	require.NoError(t, err)
	got, err = al.To(b)
	require.NoError(t, err)
	assert.InDelta(t, 14, got.Extents().Min(topo.Z), 1e-9)
	assert.InDelta(t, 0, got.Extents().Min(topo.X), 1e-9)

	al, err = a.Align("x_max_to")
	require.NoError(t, err)
	got, err = al.ToPoint(v3.Vec{X: -1})
	require.NoError(t, err)
	assert.InDelta(t, -1, got.Extents().Max(topo.X), 1e-9)

	_, err = a.Align("xyz_middle")
	assert.ErrorIs(t, err, topo.ErrBadPattern)
}

func TestAlignSubshape(t *testing.T) {
	p := newBox(t, poly.New(), 2, 2, 2, DirectionalBoxNames)

	al, err := p.AlignSubshape("top", "z_min_to")
	require.NoError(t, err)
	got, err := al.ToPoint(v3.Vec{})
	require.NoError(t, err)
	assert.InDelta(t, -2, got.Extents().Min(topo.Z), 1e-9)
	assert.InDelta(t, 0, got.Extents().Max(topo.Z), 1e-9)

	_, err = p.AlignSubshape("nope", "z_min_to")
	assert.ErrorIs(t, err, ErrUnknownLabel)
}

func TestWithLabel(t *testing.T) {
	p := newBox(t, poly.New(), 1, 1, 1, BoxNames{})

	named, err := p.WithLabel("body")
	require.NoError(t, err)
	assert.True(t, single(t, named, "body").IsSame(p.Shape()))

	again, err := named.WithLabel("body")
	require.NoError(t, err)
	l, err := again.Get("body")
	require.NoError(t, err)
	assert.Len(t, l, 2)

	_, err = named.WithLabel("other")
	assert.ErrorIs(t, err, ErrAlreadyNamed)

	renamed := named.Name("other")
	assert.Equal(t, []string{"body", "other"}, renamed.Labels())
	l, _ = renamed.Get("body")
	assert.Empty(t, l)
}

func TestWithLabelRecursive(t *testing.T) {
	p := newBox(t, poly.New(), 1, 1, 1, BoxNames{})

	faces := p.WithLabelRecursive("all", func(s kernel.Shape) bool { return s.Kind() == kernel.Face })
	l, err := faces.Get("all")
	require.NoError(t, err)
	require.Len(t, l, 7)
	assert.True(t, l[0].IsSame(p.Shape()))
}

func TestRenameSubshape(t *testing.T) {
	p := newBox(t, poly.New(), 1, 1, 1, DirectionalBoxNames)

	r, err := p.RenameSubshape("top", "lid")
	require.NoError(t, err)
	assert.Equal(t, []string{"back", "front", "left", "right", "bottom", "lid"}, r.Labels())
	assert.True(t, single(t, r, "lid").IsSame(single(t, p, "top")))
	assert.Contains(t, p.Labels(), "top")

	_, err = p.RenameSubshape("top", "front")
	assert.ErrorIs(t, err, ErrLabelInUse)
	_, err = p.RenameSubshape("lid", "cap")
	assert.ErrorIs(t, err, ErrUnknownLabel)
}

func TestGetSingle(t *testing.T) {
	k := poly.New()
	a := newBox(t, k, 1, 1, 1, BoxNames{ZMax: "top"})
	b := newBox(t, k, 1, 1, 1, BoxNames{ZMax: "top"})
	both := a.Add(b)

	_, err := both.GetSingle("top")
	assert.ErrorIs(t, err, ErrNotSingle)
	_, err = both.GetSingle("missing")
	assert.ErrorIs(t, err, ErrUnknownLabel)

	c, err := both.CompoundSubpart("top")
	require.NoError(t, err)
	assert.Equal(t, kernel.Compound, c.Kind())
	assert.Len(t, topo.Explore(c.Shape(), kernel.Face), 2)
}

func TestAddMergesInOrder(t *testing.T) {
	k := poly.New()
	a := newBox(t, k, 1, 1, 1, BoxNames{ZMax: "x"})
	b := newBox(t, k, 1, 1, 1, BoxNames{ZMax: "x", ZMin: "y"})

	sum := a.Add(b)
	l, err := sum.Get("x")
	require.NoError(t, err)
	require.Len(t, l, 2)
	assert.True(t, l[0].IsSame(single(t, a, "x")))
	assert.True(t, l[1].IsSame(single(t, b, "x")))
	assert.Equal(t, []string{"x", "y"}, sum.Labels())

	pre := a.AddPrefixed("b/", b)
	// Box files labels in XMin..ZMax order, so b holds [y x].
	assert.Equal(t, []string{"x", "b/y", "b/x"}, pre.Labels())
	assert.Equal(t, kernel.Compound, pre.Kind())
}

func TestPattern(t *testing.T) {
	p := newBox(t, poly.New(), 1, 1, 1, BoxNames{ZMax: "top"})

	row, err := p.Pattern(Range(3), func(i int, q *Part) (*Part, error) {
		return q.Translate(float64(2*i), 0, 0)
	})
	require.NoError(t, err)
	assert.InDelta(t, 5, row.Extents().Span(topo.X), 1e-9)
	l, _ := row.Get("top")
	assert.Len(t, l, 3)

	_, err = p.Pattern(nil, func(int, *Part) (*Part, error) { return p, nil })
	assert.ErrorIs(t, err, ErrEmptyPattern)

	boom := errors.New("boom")
	_, err = p.Pattern(Range(2), func(int, *Part) (*Part, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestDoAndAdd(t *testing.T) {
	p := newBox(t, poly.New(), 1, 1, 1, BoxNames{})
	out, err := p.DoAndAdd(func(q *Part) (*Part, error) { return q.Translate(0, 0, 3) })
	require.NoError(t, err)
	assert.InDelta(t, 4, out.Extents().Span(topo.Z), 1e-9)
}

func TestPrunedIsIdempotent(t *testing.T) {
	k := poly.New()
	a := newBox(t, k, 1, 1, 1, DirectionalBoxNames)
	b := newBox(t, k, 1, 1, 1, BoxNames{ZMax: "other_top"})
	both := a.Add(b)

	onlyA, err := both.CompoundSubpart("top")
	require.NoError(t, err)
	pruned := onlyA.Pruned()
	assert.Equal(t, []string{"top"}, pruned.Labels())
	assert.True(t, pruned.Subshapes().Equal(pruned.Pruned().Subshapes()))

	aa := a.Pruned()
	assert.Len(t, aa.Labels(), 6)
	assert.True(t, aa.Subshapes().Equal(aa.Pruned().Subshapes()))
}

func TestStaleLabels(t *testing.T) {
	k := poly.New()
	a := newBox(t, k, 1, 1, 1, BoxNames{ZMax: "top"})
	named, err := a.WithLabel("body")
	require.NoError(t, err)
	assert.Empty(t, a.StaleLabels())
	assert.Equal(t, []string{"body"}, named.StaleLabels())
	assert.Equal(t, []string{"top"}, named.Pruned().Labels())

	both := a.Add(newBox(t, k, 1, 1, 1, BoxNames{ZMin: "other"}))
	onlyA, err := both.CompoundSubpart("top")
	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, onlyA.StaleLabels())
	assert.Empty(t, onlyA.Pruned().StaleLabels())
}

func TestSubpart(t *testing.T) {
	k := poly.New()
	a := newBox(t, k, 1, 1, 1, DirectionalBoxNames)
	both := a.AddPrefixed("a/", a)

	sub := both.Subpart("a/", true)
	assert.Equal(t, []string{"back", "front", "left", "right", "bottom", "top"}, sub.Labels())
	assert.True(t, sub.Shape().IsSame(both.Shape()))

	kept := both.Subpart("a/", false)
	assert.Equal(t, "a/back", kept.Labels()[0])
}

func TestUnionCarriesBothMaps(t *testing.T) {
	k := poly.New()
	a := newBox(t, k, 10, 10, 10, BoxNames{ZMax: "top", XMax: "joint"})
	b0 := newBox(t, k, 10, 10, 10, BoxNames{ZMax: "top", XMin: "joint_b"})
	b, err := b0.Translate(10, 0, 0)
	require.NoError(t, err)

	u, err := a.Union(b)
	require.NoError(t, err)
	tops, err := u.Get("top")
	require.NoError(t, err)
	assert.Len(t, tops, 2)
	joint, _ := u.Get("joint")
	assert.Empty(t, joint, "faces on the fused plane are removed")

	clean, err := u.Cleanup(DefaultCleanup)
	require.NoError(t, err)
	tops, _ = clean.Get("top")
	require.Len(t, tops, 1)
	assert.InDelta(t, 20, topo.Of(tops[0]).Span(topo.X), 1e-9)
	assert.Len(t, topo.ExploreUnique(clean.Shape(), kernel.Face), 6)
}

func TestArgumentlessUnion(t *testing.T) {
	k := poly.New()
	a := newBox(t, k, 2, 2, 2, BoxNames{ZMax: "top"})
	b, err := a.Translate(1, 0, 0)
	require.NoError(t, err)

	u, err := a.Add(b).Union()
	require.NoError(t, err)
	assert.Equal(t, kernel.Solid, topo.Explore(u.Shape(), kernel.Solid)[0].Kind())
	assert.InDelta(t, 3, u.Extents().Span(topo.X), 1e-9)

	_, err = a.Union()
	assert.ErrorIs(t, err, ErrNotCompound)
}

func TestCutAndCommon(t *testing.T) {
	k := poly.New()
	body := newBox(t, k, 2, 2, 2, DirectionalBoxNames)
	tool0 := newBox(t, k, 2, 2, 2, BoxNames{ZMin: "notch_floor"})
	tool, err := tool0.Translate(1, 1, 1)
	require.NoError(t, err)

	cut, err := body.Cut(tool)
	require.NoError(t, err)
	top := single(t, cut, "top")
	assert.InDelta(t, 2, topo.Of(top).Max(topo.Z), 1e-9)
	floors, err := cut.Get("notch_floor")
	require.NoError(t, err)
	require.NotEmpty(t, floors)
	for _, f := range floors {
		assert.InDelta(t, 1, topo.Of(f).Max(topo.Z), 1e-9)
	}

	common, err := body.Common(tool)
	require.NoError(t, err)
	assert.Equal(t, v3.Vec{X: 1, Y: 1, Z: 1}, common.Extents().Size())

	_, err = body.Cut()
	assert.ErrorIs(t, err, ErrNoOperands)
	_, err = body.Common()
	assert.ErrorIs(t, err, ErrNoOperands)
}

func TestBooleanFailureReportsAlerts(t *testing.T) {
	k := poly.New()
	body := newBox(t, k, 1, 1, 1, BoxNames{})
	face := body.Explore(kernel.Face).Get()[0]

	_, err := body.Cut(face)
	var ferr *history.FailedError
	require.ErrorAs(t, err, &ferr)
	assert.ErrorIs(t, err, history.ErrNotDone)
	assert.Contains(t, err.Error(), "bool op failed with the following alerts: [")
}

func TestChamferByName(t *testing.T) {
	k := poly.New()
	b := newBox(t, k, 10, 10, 10, DirectionalBoxNames)
	top, front := single(t, b, "top"), single(t, b, "front")
	var edge kernel.Shape
	for _, e := range topo.Explore(top, kernel.Edge) {
		if topo.Contains(topo.Explore(front, kernel.Edge), e) {
			edge = e
		}
	}
	require.NotNil(t, edge)
	b = New(k, b.Shape(), b.Subshapes().With("ridge", edge))

	out, err := b.ChamferByName(1, "ridge")
	require.NoError(t, err)
	ridge, err := out.Pruned().Get("ridge")
	require.NoError(t, err)
	require.Len(t, ridge, 1, "the removed edge leaves only the bevel")
	assert.Equal(t, kernel.Face, ridge[0].Kind())
	assert.InDelta(t, 9, topo.Of(single(t, out, "top")).Span(topo.X), 1e-9)
	assert.Len(t, topo.ExploreUnique(out.Shape(), kernel.Face), 7)

	_, err = b.ChamferByName(1)
	assert.ErrorIs(t, err, ErrNoOperands)
	_, err = b.ChamferByName(1, "nope")
	assert.ErrorIs(t, err, ErrUnknownLabel)
}

func TestFilletEdgesSelector(t *testing.T) {
	k := poly.New(poly.WithFilletSegments(3))
	b := newBox(t, k, 10, 10, 10, DirectionalBoxNames)
	vertical := func(e kernel.Shape) bool {
		ex := topo.Of(e)
		return ex.Span(topo.Z) > 0 && ex.Max(topo.X) == 10 && ex.Max(topo.Y) == 10
	}

	out, err := b.FilletEdges(2, vertical)
	require.NoError(t, err)
	assert.Len(t, topo.ExploreUnique(out.Shape(), kernel.Face), 9)

	_, err = b.FilletEdges(2, func(kernel.Shape) bool { return false })
	var ferr *history.FailedError
	assert.ErrorAs(t, err, &ferr)
}

func TestMakeFaceAndWire(t *testing.T) {
	k := poly.New()
	b := newBox(t, k, 1, 1, 1, DirectionalBoxNames)
	top, err := b.SingleSubpart("top")
	require.NoError(t, err)

	same, err := top.MakeFace()
	require.NoError(t, err)
	assert.Same(t, top, same)

	edges, err := top.Query("*e")
	require.NoError(t, err)
	w, err := edges.MakeWire()
	require.NoError(t, err)
	assert.Equal(t, kernel.Wire, w.Kind())
	assert.True(t, topo.IsClosedWire(w.Shape()))

	f, err := w.MakeFace()
	require.NoError(t, err)
	assert.Equal(t, kernel.Face, f.Kind())
	_, n, err := f.FaceNormal()
	require.NoError(t, err)
	assert.InDelta(t, 1, n.Length(), 1e-9)

	_, err = b.MakeWire()
	var gerr *GeometryError
	assert.ErrorAs(t, err, &gerr)
}

func TestPrismNamesCapsAndSides(t *testing.T) {
	k := poly.New()
	b := newBox(t, k, 2, 2, 2, DirectionalBoxNames)
	top, err := b.SingleSubpart("top")
	require.NoError(t, err)
	face := New(k, top.Shape(), naming.Of("lid", top.Shape()))

	s, err := face.Prism(v3.Vec{Z: 3}, SweepNames{First: "base", Last: "cap", Profile: "side"})
	require.NoError(t, err)
	assert.Equal(t, kernel.Solid, s.Kind())
	assert.InDelta(t, 3, s.Extents().Span(topo.Z), 1e-9)

	base, cap := single(t, s, "base"), single(t, s, "cap")
	assert.InDelta(t, 2, topo.Of(base).Max(topo.Z), 1e-9)
	assert.InDelta(t, 5, topo.Of(cap).Max(topo.Z), 1e-9)

	sides, err := s.Get("side")
	require.NoError(t, err)
	var faces int
	for _, sd := range sides {
		assert.False(t, sd.IsSame(base))
		assert.False(t, sd.IsSame(cap))
		if sd.Kind() == kernel.Face {
			faces++
		}
	}
	assert.Equal(t, 4, faces)

	sym, err := face.SymmetricPrism(v3.Vec{Z: 1}, SweepNames{})
	require.NoError(t, err)
	assert.InDelta(t, 2, sym.Extents().Span(topo.Z), 1e-9)

	np, err := face.NormalPrism(1, SweepNames{})
	require.NoError(t, err)
	assert.InDelta(t, 3, np.Extents().Max(topo.Z), 1e-9)
}

func TestOffsetPerWire(t *testing.T) {
	k := poly.New()
	b := newBox(t, k, 4, 4, 4, DirectionalBoxNames)
	top, err := b.SingleSubpart("top")
	require.NoError(t, err)

	grown, err := top.Offset(1, kernel.JoinIntersection, false)
	require.NoError(t, err)
	assert.InDelta(t, 6, grown.Extents().Span(topo.X), 1e-9)

	_, err = top.Offset(-3, kernel.JoinIntersection, false)
	var ferr *history.FailedError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "offset failed: CannotTrim", ferr.Error())

	v := Vertex(k, v3.Vec{}, "origin")
	_, err = v.Offset(1, kernel.JoinArc, false)
	assert.ErrorIs(t, err, ErrNoOperands)
}

func TestOffsetListsEachEntityOnce(t *testing.T) {
	k := poly.New()
	b := newBox(t, k, 4, 4, 4, BoxNames{XMin: "back", ZMin: "caps", ZMax: "caps"})
	caps, err := b.CompoundSubpart("caps")
	require.NoError(t, err)

	grown, err := caps.Offset(1, kernel.JoinIntersection, false)
	require.NoError(t, err)
	assert.Len(t, topo.Explore(grown.Shape(), kernel.Wire), 2)
	assert.InDelta(t, 4, grown.Extents().Span(topo.Z), 1e-9)

	back, err := grown.Get("back")
	require.NoError(t, err)
	assert.Len(t, back, 1)
}

func TestValidate(t *testing.T) {
	b := newBox(t, poly.New(), 1, 1, 1, BoxNames{})
	got, err := b.Validate()
	require.NoError(t, err)
	assert.Same(t, b, got)
}

func TestFactories(t *testing.T) {
	k := poly.New()

	c, err := BoxCentered(k, 2, 4, 6, BoxNames{})
	require.NoError(t, err)
	assert.Equal(t, v3.Vec{}, c.Extents().MidPoint())

	s, err := BoxSurrounding(c, v3.Vec{X: 1, Y: 1, Z: 1}, BoxNames{})
	require.NoError(t, err)
	assert.Equal(t, v3.Vec{X: 4, Y: 6, Z: 8}, s.Extents().Size())
	assert.InDeltaSlice(t, []float64{0, 0, 0}, vec(s.Extents().MidPoint()), 1e-9)

	_, err = Box(k, 0, 1, 1, BoxNames{})
	assert.ErrorIs(t, err, history.ErrNotDone)

	arr, err := Arrange(1, c, c, c)
	require.NoError(t, err)
	assert.InDelta(t, 8, arr.Extents().Span(topo.X), 1e-9)

	_, err = Compound()
	assert.ErrorIs(t, err, ErrNoOperands)
	_, err = Union()
	assert.ErrorIs(t, err, ErrNoOperands)
	one, err := Union(c)
	require.NoError(t, err)
	assert.Same(t, c, one)
}

func TestArrayOnVertsOf(t *testing.T) {
	k := poly.New()
	small := newBox(t, k, 1, 1, 1, BoxNames{ZMax: "top"})
	grid := newBox(t, k, 10, 10, 10, BoxNames{})

	arr, err := small.ArrayOnVertsOf(grid)
	require.NoError(t, err)
	assert.Len(t, arr.Shape().Children(), 8)
	tops, _ := arr.Get("top")
	assert.Len(t, tops, 8)
	assert.Equal(t, v3.Vec{X: 11, Y: 11, Z: 11}, arr.Extents().Size())
}

func TestExplorer(t *testing.T) {
	b := newBox(t, poly.New(), 1, 2, 3, DirectionalBoxNames)

	faces := b.Explore(kernel.Face).Get()
	assert.Len(t, faces, 6)
	for _, f := range faces {
		assert.Equal(t, b.Labels(), f.Labels(), "explored parts keep the parent map")
	}

	highest, ok := b.Explore(kernel.Face).GetMax(func(p *Part) float64 { return p.Extents().Mid(topo.Z) })
	require.True(t, ok)
	assert.True(t, highest.Shape().IsSame(single(t, b, "top")))

	top, err := b.Explore(kernel.Face).Labelled("top").GetSingle()
	require.NoError(t, err)
	assert.True(t, top.Shape().IsSame(single(t, b, "top")))

	_, err = b.Explore(kernel.Face).
		Filter(func(p *Part) bool { return p.Extents().Span(topo.Z) == 0 }).
		GetSingle()
	assert.ErrorIs(t, err, ErrNotSingle)

	none := b.Explore(kernel.Face).FilterShapes(func(kernel.Shape) bool { return false })
	assert.Empty(t, none.Get())
	_, ok = none.GetMin(func(*Part) float64 { return 0 })
	assert.False(t, ok)
}

func vec(v v3.Vec) []float64 { return []float64{v.X, v.Y, v.Z} }
