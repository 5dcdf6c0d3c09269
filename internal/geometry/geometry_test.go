package geometry

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectangleAroundPointOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		cx, cy := rng.Float64()*1000-500, rng.Float64()*1000-500
		w, h := rng.Float64()*300, rng.Float64()*300

		pts := RectangleAroundPoint(cx, cy, w, h)
		require.Len(t, pts, 4)
		ul, ur, lr, ll := pts[0], pts[1], pts[2], pts[3]

		assert.InDelta(t, cx-w/2, ul.X, 1e-9)
		assert.InDelta(t, cx-w/2, ll.X, 1e-9)
		assert.InDelta(t, cx+w/2, ur.X, 1e-9)
		assert.InDelta(t, cx+w/2, lr.X, 1e-9)
		assert.InDelta(t, cy-h/2, ul.Y, 1e-9)
		assert.InDelta(t, cy-h/2, ur.Y, 1e-9)
		assert.InDelta(t, cy+h/2, ll.Y, 1e-9)
		assert.InDelta(t, cy+h/2, lr.Y, 1e-9)
	}
}

func TestSquareAroundPoint(t *testing.T) {
	assert.Equal(t, RectangleAroundPoint(10, 20, 15, 15), SquareAroundPoint(10, 20, 15))
}

func TestPointsToPath(t *testing.T) {
	pts := RectangleAroundPoint(200, 150, 100, 100)
	assert.Equal(t, "M150,100 L250,100 L250,200 L150,200 Z", PointsToPath(pts))
	assert.Equal(t, "", PointsToPath(nil))
	assert.Equal(t, "M0.5,-1.25 Z", PointsToPath([]Point{{X: 0.5, Y: -1.25}}))
}

func TestParsePathRoundTrip(t *testing.T) {
	outer := RectangleAroundPoint(200, 150, 400, 300)
	inner := Reverse(RectangleAroundPoint(200, 150, 100, 80))

	rings, err := ParsePath(PointsToPath(outer) + PointsToPath(inner))
	require.NoError(t, err)
	require.Len(t, rings, 2)
	assert.Equal(t, outer, rings[0])
	assert.Equal(t, inner, rings[1])
}

func TestParsePathErrors(t *testing.T) {
	for _, d := range []string{"Q1,2", "L1,2 Z", "M1 Z", "M1,x Z"} {
		_, err := ParsePath(d)
		assert.ErrorIs(t, err, ErrBadPath, d)
	}
}

func TestContainsEvenOdd(t *testing.T) {
	rings := [][]Point{
		RectangleAroundPoint(200, 150, 400, 300),
		Reverse(RectangleAroundPoint(200, 150, 100, 100)),
	}
	assert.True(t, Contains(rings, Point{X: 10, Y: 10}))
	assert.False(t, Contains(rings, Point{X: 200, Y: 150}), "hole")
	assert.False(t, Contains(rings, Point{X: 500, Y: 150}))
}

func TestScaleAboutKeepsAnchor(t *testing.T) {
	m := Translate(13, -7).Then(ScaleAbout(1.5, 0.25, 150, 100))
	anchor := Point{X: 150, Y: 100}
	before := Translate(13, -7).Apply(Point{X: 137, Y: 107})
	assert.True(t, NearlyEqual(anchor, before, 1e-9))
	assert.True(t, NearlyEqual(anchor, m.Apply(Point{X: 137, Y: 107}), 1e-9))

	p := ScaleAbout(2, 3, 10, 10).Apply(Point{X: 20, Y: 20})
	assert.Equal(t, Point{X: 30, Y: 40}, p)
}

func TestMatrixThenOrder(t *testing.T) {
	m := ScaleAbout(2, 2, 0, 0).Then(Translate(5, 0))
	assert.Equal(t, Point{X: 7, Y: 2}, m.Apply(Point{X: 1, Y: 1}))
	assert.True(t, Identity().Multiply(Translate(0, 0)).IsIdentity())
}

func TestRectIntersect(t *testing.T) {
	r := Rect{X: -10, Y: 5, W: 30, H: 30}
	s := Rect{X: 0, Y: 0, W: 15, H: 15}
	assert.Equal(t, Rect{X: 0, Y: 5, W: 15, H: 10}, r.Intersect(s))
	assert.True(t, r.Intersect(Rect{X: 100, Y: 100, W: 1, H: 1}).Empty())
	assert.Equal(t, Point{X: 5, Y: 20}, r.Center())
}
