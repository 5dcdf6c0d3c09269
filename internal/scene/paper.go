// Package scene is an in-memory implementation of the drawing surface: a
// z-ordered list of paths and images with affine transforms, pointer
// dispatch with drag callbacks, and rasterization into an RGBA buffer.
package scene

import (
	"fmt"
	"slices"

	"croptastic/internal/geometry"
	"croptastic/internal/surface"
)

// Paper is a retained-mode drawing surface of a fixed size placed at an
// origin on the host page. It is not safe for concurrent use.
type Paper struct {
	origin geometry.Point
	width  float64
	height float64
	loader Loader

	items  []item
	nextID int

	drag *dragState
}

type item interface {
	base() *node
}

// node carries what every element shares: identity and its place in the
// paper's stacking order.
type node struct {
	id      int
	paper   *Paper
	removed bool
}

func (n *node) base() *node { return n }

// NewPaper returns an empty paper of size w×h whose upper-left corner is at
// origin in page coordinates. Images are resolved through loader.
func NewPaper(origin geometry.Point, w, h float64, loader Loader) *Paper {
	return &Paper{origin: origin, width: w, height: h, loader: loader}
}

// Size returns the paper dimensions.
func (p *Paper) Size() (w, h float64) {
	return p.width, p.height
}

// Origin returns the page position of the paper's upper-left corner.
func (p *Paper) Origin() geometry.Point {
	return p.origin
}

// Clear implements surface.Paper.
func (p *Paper) Clear() {
	for _, it := range p.items {
		it.base().removed = true
	}
	p.items = nil
}

// Path implements surface.Paper.
func (p *Paper) Path(d string) (surface.Shape, error) {
	rings, err := geometry.ParsePath(d)
	if err != nil {
		return nil, fmt.Errorf("failed to draw path: %w", err)
	}
	s := &Shape{
		node:    p.newNode(),
		d:       d,
		rings:   rings,
		matrix:  geometry.Identity(),
		fill:    "none",
		stroke:  "#000",
		opacity: 1,
	}
	p.items = append(p.items, s)
	return s, nil
}

// Image implements surface.Paper.
func (p *Paper) Image(src string, x, y, w, h float64) (surface.ImageShape, error) {
	if p.loader == nil {
		return nil, fmt.Errorf("no image loader for %q", src)
	}
	pic, err := p.loader.Load(src)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %q: %w", src, err)
	}
	img := &ImageShape{
		node:    p.newNode(),
		src:     src,
		box:     geometry.Rect{X: x, Y: y, W: w, H: h},
		picture: pic,
	}
	p.items = append(p.items, img)
	return img, nil
}

// Group implements surface.Paper.
func (p *Paper) Group(shapes ...surface.Shape) surface.Group {
	return &Group{shapes: slices.Clone(shapes)}
}

// Len returns the number of elements on the paper.
func (p *Paper) Len() int {
	return len(p.items)
}

func (p *Paper) newNode() node {
	p.nextID++
	return node{id: p.nextID, paper: p}
}

func (p *Paper) index(n *node) int {
	return slices.IndexFunc(p.items, func(it item) bool { return it.base() == n })
}

func (p *Paper) toFront(n *node) {
	i := p.index(n)
	if i < 0 {
		return
	}
	it := p.items[i]
	p.items = append(slices.Delete(p.items, i, i+1), it)
}

func (p *Paper) toBack(n *node) {
	i := p.index(n)
	if i < 0 {
		return
	}
	it := p.items[i]
	p.items = slices.Insert(slices.Delete(p.items, i, i+1), 0, it)
}

func (p *Paper) remove(n *node) {
	if i := p.index(n); i >= 0 {
		p.items = slices.Delete(p.items, i, i+1)
	}
	n.removed = true
}

// Group is a set of shapes moved together.
type Group struct {
	shapes []surface.Shape
}

// Transform implements surface.Group.
func (g *Group) Transform(m geometry.Matrix) {
	for _, s := range g.shapes {
		s.Transform(m)
	}
}

// Len implements surface.Group.
func (g *Group) Len() int {
	return len(g.shapes)
}
