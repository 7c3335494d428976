package geometry

import (
	"testing"

	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// square builds an open counter-clockwise ring from (x, y) with the given side.
func square(x, y, side float64) geom.Polygon {
	return geom.Polygon{{
		{X: x, Y: y},
		{X: x + side, Y: y},
		{X: x + side, Y: y + side},
		{X: x, Y: y + side},
	}}
}

func TestIntersectOverlappingSquares(t *testing.T) {
	svc := NewService()

	a := square(0, 0, 1)
	b := square(0.5, 0.5, 1)

	got := svc.Intersect(a, b)
	require.False(t, svc.IsEmpty(got))
	assert.InDelta(t, 0.25, got.Area(), 1e-9)
}

func TestIntersectDisjointIsEmptyPolygon(t *testing.T) {
	svc := NewService()

	a := square(0, 0, 1)
	b := square(10, 10, 1)

	got := svc.Intersect(a, b)
	assert.True(t, svc.IsEmpty(got))
	// Must be a usable value, not nil rings with garbage.
	assert.NotNil(t, got)

	// Empty results propagate through further intersections.
	again := svc.Intersect(got, a)
	assert.True(t, svc.IsEmpty(again))
}

func TestIntersectTouchingEdgeIsDegenerate(t *testing.T) {
	svc := NewService()

	// Squares sharing a single edge: the intersection is a line, which must
	// normalize to the empty polygon.
	a := square(0, 0, 1)
	b := square(1, 0, 1)

	got := svc.Intersect(a, b)
	assert.True(t, svc.IsEmpty(got))
}

func TestUnionGrowsArea(t *testing.T) {
	svc := NewService()

	a := square(0, 0, 1)
	b := square(10, 10, 1)

	got := svc.Union(a, b)
	assert.InDelta(t, 2.0, got.Area(), 1e-9)
}

func TestContains(t *testing.T) {
	svc := NewService()
	p := square(0, 0, 1)

	assert.True(t, svc.Contains(p, 0.5, 0.5))
	assert.False(t, svc.Contains(p, 2, 2))
	assert.False(t, svc.Contains(geom.Polygon{}, 0.5, 0.5))
}

func TestSimplifyDropsCollinearVertices(t *testing.T) {
	svc := NewService()

	// Unit square with redundant midpoints on every edge.
	p := geom.Polygon{{
		{X: 0, Y: 0}, {X: 0.5, Y: 0},
		{X: 1, Y: 0}, {X: 1, Y: 0.5},
		{X: 1, Y: 1}, {X: 0.5, Y: 1},
		{X: 0, Y: 1}, {X: 0, Y: 0.5},
	}}

	got := svc.Simplify(p, 0.001)
	require.False(t, svc.IsEmpty(got))
	assert.InDelta(t, 1.0, got.Area(), 1e-6)
	assert.Less(t, len(got[0]), len(p[0]))
}

func TestCloneDoesNotAlias(t *testing.T) {
	p := square(0, 0, 1)
	c := Clone(p)
	c[0][0].X = 99

	assert.Equal(t, 0.0, p[0][0].X)
}
