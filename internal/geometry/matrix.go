package geometry

import (
	"fmt"
	"math"
)

// Matrix is a 2D affine transformation in row-major order:
//
//	| A  B  C |
//	| D  E  F |
//
// mapping (x, y) to (A*x + B*y + C, D*x + E*y + F).
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transformation.
func Identity() Matrix {
	return Matrix{A: 1, E: 1}
}

// Translate returns a translation by (dx, dy).
func Translate(dx, dy float64) Matrix {
	return Matrix{A: 1, C: dx, E: 1, F: dy}
}

// ScaleAbout returns a scale by (sx, sy) that keeps (cx, cy) fixed.
func ScaleAbout(sx, sy, cx, cy float64) Matrix {
	return Matrix{
		A: sx, C: cx - sx*cx,
		E: sy, F: cy - sy*cy,
	}
}

// Multiply returns m·o, the transform applying o first and then m.
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		A: m.A*o.A + m.B*o.D,
		B: m.A*o.B + m.B*o.E,
		C: m.A*o.C + m.B*o.F + m.C,
		D: m.D*o.A + m.E*o.D,
		E: m.D*o.B + m.E*o.E,
		F: m.D*o.C + m.E*o.F + m.F,
	}
}

// Then returns the transform applying m first and then o.
func (m Matrix) Then(o Matrix) Matrix {
	return o.Multiply(m)
}

// Apply maps p through m.
func (m Matrix) Apply(p Point) Point {
	return Point{X: m.X(p.X, p.Y), Y: m.Y(p.X, p.Y)}
}

// ApplyAll maps every point through m.
func (m Matrix) ApplyAll(points []Point) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = m.Apply(p)
	}
	return out
}

// X returns the transformed x coordinate of (x, y).
func (m Matrix) X(x, y float64) float64 {
	return m.A*x + m.B*y + m.C
}

// Y returns the transformed y coordinate of (x, y).
func (m Matrix) Y(x, y float64) float64 {
	return m.D*x + m.E*y + m.F
}

// IsIdentity reports whether m is the identity within floating point noise.
func (m Matrix) IsIdentity() bool {
	const eps = 1e-12
	return math.Abs(m.A-1) < eps && math.Abs(m.B) < eps && math.Abs(m.C) < eps &&
		math.Abs(m.D) < eps && math.Abs(m.E-1) < eps && math.Abs(m.F) < eps
}

// String renders m in SVG transform notation.
func (m Matrix) String() string {
	return fmt.Sprintf("matrix(%g,%g,%g,%g,%g,%g)", m.A, m.D, m.B, m.E, m.C, m.F)
}
