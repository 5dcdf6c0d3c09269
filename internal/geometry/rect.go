package geometry

import (
	"image"
	"math"
)

// Rect is an axis-aligned rectangle given by its upper-left corner and size.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// RectFromImage converts an integer image rectangle.
func RectFromImage(r image.Rectangle) Rect {
	return Rect{X: float64(r.Min.X), Y: float64(r.Min.Y), W: float64(r.Dx()), H: float64(r.Dy())}
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Center returns the centre of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Intersect returns the largest rectangle contained by both r and s.
func (r Rect) Intersect(s Rect) Rect {
	x0 := math.Max(r.X, s.X)
	y0 := math.Max(r.Y, s.Y)
	x1 := math.Min(r.X+r.W, s.X+s.W)
	y1 := math.Min(r.Y+r.H, s.Y+s.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Image rounds r outward to pixel boundaries.
func (r Rect) Image() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.W)), int(math.Ceil(r.Y+r.H)),
	)
}
