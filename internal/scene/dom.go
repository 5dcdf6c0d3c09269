package scene

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"croptastic/internal/geometry"
	"croptastic/internal/surface"
)

// Element is a plain host element with a box and a cursor.
type Element struct {
	tag    string
	rect   geometry.Rect
	cursor string
}

var _ surface.Element = (*Element)(nil)

// NewElement returns an element with the given tag name and page box.
func NewElement(tag string, rect geometry.Rect) *Element {
	return &Element{tag: tag, rect: rect}
}

func (e *Element) TagName() string { return e.tag }

func (e *Element) BoundingRect() geometry.Rect { return e.rect }

func (e *Element) Cursor() string { return e.cursor }

func (e *Element) SetCursor(cursor string) { e.cursor = cursor }

// Move changes the element box, as a host layout change would.
func (e *Element) Move(rect geometry.Rect) { e.rect = rect }

// Document is a host page with a body element and a scroll offset.
type Document struct {
	body   *Element
	scroll geometry.Point
}

var _ surface.Document = (*Document)(nil)

// NewDocument returns a document scrolled by scroll.
func NewDocument(scroll geometry.Point) *Document {
	return &Document{body: NewElement("body", geometry.Rect{}), scroll: scroll}
}

func (d *Document) Body() surface.Element { return d.body }

func (d *Document) Scroll() geometry.Point { return d.scroll }

// Canvas is a raster element backed by an RGBA buffer.
type Canvas struct {
	Element
	img *image.RGBA
}

var _ surface.Canvas = (*Canvas)(nil)

// NewCanvas returns a transparent w×h canvas.
func NewCanvas(w, h int) *Canvas {
	return &Canvas{
		Element: Element{tag: "canvas", rect: geometry.Rect{W: float64(w), H: float64(h)}},
		img:     image.NewRGBA(image.Rect(0, 0, w, h)),
	}
}

// Size implements surface.Canvas.
func (c *Canvas) Size() (w, h int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// Image returns the canvas buffer.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Clear implements surface.Canvas.
func (c *Canvas) Clear() {
	draw.Draw(c.img, c.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// DrawImage implements surface.Canvas. Parts of src outside img are
// skipped and the matching part of dst is left untouched.
func (c *Canvas) DrawImage(img image.Image, src, dst geometry.Rect) {
	if img == nil || src.Empty() || dst.Empty() {
		return
	}
	clipped := src.Intersect(geometry.RectFromImage(img.Bounds()))
	if clipped.Empty() {
		return
	}
	sx, sy := dst.W/src.W, dst.H/src.H
	target := geometry.Rect{
		X: dst.X + (clipped.X-src.X)*sx,
		Y: dst.Y + (clipped.Y-src.Y)*sy,
		W: clipped.W * sx,
		H: clipped.H * sy,
	}
	draw.BiLinear.Scale(c.img, roundRect(target), img, roundRect(clipped), draw.Over, nil)
}

func roundRect(r geometry.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)), int(math.Round(r.Y)),
		int(math.Round(r.X+r.W)), int(math.Round(r.Y+r.H)),
	)
}
