package scene

import (
	"croptastic/internal/geometry"
	"croptastic/internal/surface"
)

// Shape is a filled path.
type Shape struct {
	node

	d       string
	rings   [][]geometry.Point
	matrix  geometry.Matrix
	fill    string
	stroke  string
	opacity float64
	cursor  string

	onMove  surface.DragMoveFunc
	onStart surface.DragStartFunc
	onEnd   surface.DragEndFunc
}

var _ surface.Shape = (*Shape)(nil)

func (s *Shape) ID() int { return s.id }

func (s *Shape) Path() string { return s.d }

func (s *Shape) Matrix() geometry.Matrix { return s.matrix }

func (s *Shape) Fill() string { return s.fill }

func (s *Shape) Opacity() float64 { return s.opacity }

func (s *Shape) Cursor() string { return s.cursor }

func (s *Shape) SetFill(color string) { s.fill = color }

func (s *Shape) SetOpacity(opacity float64) { s.opacity = opacity }

func (s *Shape) SetCursor(cursor string) { s.cursor = cursor }

// SetStroke sets the outline color; "none" disables the outline.
func (s *Shape) SetStroke(color string) { s.stroke = color }

// Removed reports whether the shape is no longer on its paper.
func (s *Shape) Removed() bool { return s.removed }

// Transform implements surface.Shape.
func (s *Shape) Transform(m geometry.Matrix) {
	s.matrix = s.matrix.Then(m)
}

func (s *Shape) ToFront() { s.paper.toFront(&s.node) }

func (s *Shape) ToBack() { s.paper.toBack(&s.node) }

func (s *Shape) Remove() { s.paper.remove(&s.node) }

// Points returns the untransformed vertices of the first ring.
func (s *Shape) Points() []geometry.Point {
	if len(s.rings) == 0 {
		return nil
	}
	return s.rings[0]
}

// Drag implements surface.Shape. Later calls replace earlier callbacks.
func (s *Shape) Drag(move surface.DragMoveFunc, start surface.DragStartFunc, end surface.DragEndFunc) {
	s.onMove, s.onStart, s.onEnd = move, start, end
}

// Contains reports whether the paper-local point p hits the shape. Shapes
// without a fill still receive pointer events inside their outline.
func (s *Shape) Contains(p geometry.Point) bool {
	return geometry.Contains(s.transformed(), p)
}

func (s *Shape) draggable() bool {
	return s.onMove != nil || s.onStart != nil || s.onEnd != nil
}

func (s *Shape) transformed() [][]geometry.Point {
	out := make([][]geometry.Point, len(s.rings))
	for i, r := range s.rings {
		out[i] = s.matrix.ApplyAll(r)
	}
	return out
}

// ImageShape is a picture stretched over a box on the paper.
type ImageShape struct {
	node

	src     string
	box     geometry.Rect
	picture surface.Picture
}

var _ surface.ImageShape = (*ImageShape)(nil)

func (s *ImageShape) ID() int { return s.id }

func (s *ImageShape) Src() string { return s.src }

func (s *ImageShape) Box() geometry.Rect { return s.box }

// Size implements surface.ImageShape.
func (s *ImageShape) Size() (w, h float64) { return s.box.W, s.box.H }

func (s *ImageShape) Picture() surface.Picture { return s.picture }

func (s *ImageShape) ToFront() { s.paper.toFront(&s.node) }

func (s *ImageShape) ToBack() { s.paper.toBack(&s.node) }

func (s *ImageShape) Remove() { s.paper.remove(&s.node) }
