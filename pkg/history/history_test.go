package history

import (
	"errors"
	"testing"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/kernel/poly"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMakeShape(t *testing.T) {
	k := poly.New()
	b := k.Box(1, 1, 1)
	top := b.Face(kernel.ZMax)

	h, err := FromMakeShape("translate", k.Transform(b.Shape(), sdf.Translate3d(v3.Vec{X: 1})))
	require.NoError(t, err)
	assert.Equal(t, MakeShape, h.Kind())
	assert.False(t, h.IsDeleted(top))
	mods := h.Modified(top)
	require.Len(t, mods, 1)
	assert.False(t, mods[0].IsSame(top))
	assert.Empty(t, h.Generated(top))
}

func TestFromMakeShapeNotDone(t *testing.T) {
	k := poly.New()
	v := k.Vertex(v3.Vec{})
	_, err := FromMakeShape("edge", k.Edge(v, k.Vertex(v3.Vec{})))
	require.Error(t, err)

	var fe *FailedError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, MakeShape, fe.Kind)
	assert.Equal(t, "edge", fe.Op)
	assert.NotEmpty(t, fe.Reason)
	assert.True(t, errors.Is(err, ErrNotDone))
}

func TestFromBoolean(t *testing.T) {
	k := poly.New()
	a := k.Box(2, 2, 2).Shape()
	b := k.Transform(k.Box(2, 2, 2).Shape(), sdf.Translate3d(v3.Vec{X: 1, Y: 1, Z: 1})).Shape()

	h, err := FromBoolean("bool op", k.Boolean(kernel.Cut, []kernel.Shape{a}, []kernel.Shape{b}))
	require.NoError(t, err)
	assert.Equal(t, BooleanAlgo, h.Kind())
	assert.Equal(t, kernel.Solid, h.Shape().Kind())

	_, err = FromBoolean("bool op", k.Boolean(kernel.Cut, nil, nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotDone)
	assert.Contains(t, err.Error(), "bool op failed with the following alerts: [")
}

func TestFromOffset(t *testing.T) {
	k := poly.New()
	face := k.Box(2, 2, 2).Face(kernel.ZMin)

	h, err := FromOffset("offset", k.Offset(face, 1, kernel.JoinIntersection, false))
	require.NoError(t, err)
	assert.Equal(t, OffsetAlgo, h.Kind())
	assert.Nil(t, h.Generated(face))

	_, err = FromOffset("offset", k.Offset(face, -5, kernel.JoinIntersection, false))
	var fe *FailedError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "CannotTrim", fe.Reason)
	assert.Equal(t, "offset failed: CannotTrim", err.Error())
}

func TestFromHistory(t *testing.T) {
	k := poly.New()
	_, err := FromHistory("sew", k.Sew(nil, 0))
	assert.ErrorIs(t, err, ErrNotDone)

	box := k.Box(1, 1, 1)
	h, err := FromHistory("unify", k.Unify(box.Shape(), true, true))
	require.NoError(t, err)
	assert.Equal(t, HistoryAlgo, h.Kind())
	assert.False(t, h.IsDeleted(box.Face(kernel.XMin)))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "boolean", BooleanAlgo.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
