// Package surface declares the drawing and host capabilities the crop
// viewport consumes. Implementations live elsewhere; see package scene for
// the in-memory one.
package surface

import (
	"image"

	"croptastic/internal/geometry"
)

// DragMoveFunc receives the pointer offset accumulated since the drag
// started and the absolute pointer position.
type DragMoveFunc func(dx, dy, x, y float64)

// DragStartFunc receives the absolute pointer position at drag start.
type DragStartFunc func(x, y float64)

// DragEndFunc is called once the pointer is released.
type DragEndFunc func()

// Paper is a retained-mode vector drawing surface.
type Paper interface {
	// Clear removes every element from the paper.
	Clear()
	// Path draws the shape described by a path string (see
	// geometry.PointsToPath).
	Path(d string) (Shape, error)
	// Image places the picture at src stretched to the given box.
	Image(src string, x, y, w, h float64) (ImageShape, error)
	// Group bundles shapes so they can be transformed together.
	Group(shapes ...Shape) Group
}

// Shape is a drawn element.
type Shape interface {
	// Path returns the untransformed path string of the shape.
	Path() string
	// Points returns the untransformed vertices of the first ring.
	Points() []geometry.Point
	// Matrix returns the accumulated transform of the shape.
	Matrix() geometry.Matrix
	// Transform composes m after the current transform.
	Transform(m geometry.Matrix)
	SetFill(color string)
	SetOpacity(opacity float64)
	Cursor() string
	SetCursor(cursor string)
	ToFront()
	ToBack()
	Remove()
	// Drag attaches gesture callbacks; any of them may be nil.
	Drag(move DragMoveFunc, start DragStartFunc, end DragEndFunc)
}

// ImageShape is a picture placed on the paper.
type ImageShape interface {
	ToFront()
	ToBack()
	Remove()
	// Size returns the rendered width and height.
	Size() (w, h float64)
	Picture() Picture
}

// Group transforms its members as one rigid body.
type Group interface {
	Transform(m geometry.Matrix)
	Len() int
}

// Picture is a possibly still loading source image.
type Picture interface {
	// NaturalSize returns the pixel size of the decoded image, or zero while
	// the image is not available yet.
	NaturalSize() (w, h float64)
	// Image returns the decoded image, or nil while loading.
	Image() image.Image
}

// Element is a host element such as the container around the paper.
type Element interface {
	TagName() string
	// BoundingRect returns the element box relative to the viewport of
	// the host document.
	BoundingRect() geometry.Rect
	Cursor() string
	SetCursor(cursor string)
}

// Document is the host page.
type Document interface {
	Body() Element
	// Scroll returns the current scroll offset of the page.
	Scroll() geometry.Point
}

// Canvas is an element accepting raster blits.
type Canvas interface {
	Element
	// Size returns the drawing buffer size in pixels.
	Size() (w, h int)
	Clear()
	// DrawImage draws the src region of img stretched over dst.
	DrawImage(img image.Image, src, dst geometry.Rect)
}
