// Package geometry holds the plane math shared by the crop viewport and the
// scene surface: points, rectangles, path strings and affine matrices.
package geometry

import "math"

// Point is a location in paper coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Midpoint returns the point halfway between p and q.
func Midpoint(p, q Point) Point {
	return Point{X: p.X + (q.X-p.X)/2, Y: p.Y + (q.Y-p.Y)/2}
}

// NearlyEqual reports whether p and q are within eps on both axes.
func NearlyEqual(p, q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// RectangleAroundPoint returns the corners of the axis-aligned rectangle of
// size w×h centred on (cx, cy), clockwise from the upper left:
// upper-left, upper-right, lower-right, lower-left.
func RectangleAroundPoint(cx, cy, w, h float64) []Point {
	hw, hh := w/2, h/2
	return []Point{
		{X: cx - hw, Y: cy - hh},
		{X: cx + hw, Y: cy - hh},
		{X: cx + hw, Y: cy + hh},
		{X: cx - hw, Y: cy + hh},
	}
}

// SquareAroundPoint is RectangleAroundPoint with equal sides.
func SquareAroundPoint(cx, cy, side float64) []Point {
	return RectangleAroundPoint(cx, cy, side, side)
}

// Reverse returns a copy of points in reverse order. Reversing a ring flips
// its winding, which is how a hole is cut out of an enclosing ring.
func Reverse(points []Point) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[len(points)-1-i] = p
	}
	return out
}

// Contains reports whether p lies inside the region described by rings
// using the even-odd rule.
func Contains(rings [][]Point, p Point) bool {
	inside := false
	for _, ring := range rings {
		n := len(ring)
		for i, j := 0, n-1; i < n; j, i = i, i+1 {
			a, b := ring[i], ring[j]
			if (a.Y > p.Y) != (b.Y > p.Y) &&
				p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
				inside = !inside
			}
		}
	}
	return inside
}
