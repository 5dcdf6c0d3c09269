package scene

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"croptastic/internal/geometry"
)

// Render rasterizes the paper into a new RGBA image of the paper's size.
func (p *Paper) Render() *image.RGBA {
	w, h := int(math.Ceil(p.width)), int(math.Ceil(p.height))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	p.RenderTo(dst)
	return dst
}

// RenderTo draws every element bottom to top over dst.
func (p *Paper) RenderTo(dst draw.Image) {
	for _, it := range p.items {
		switch el := it.(type) {
		case *ImageShape:
			renderImage(dst, el)
		case *Shape:
			renderShape(dst, el)
		}
	}
}

func renderImage(dst draw.Image, s *ImageShape) {
	src := s.picture.Image()
	if src == nil {
		return
	}
	draw.ApproxBiLinear.Scale(dst, s.box.Image(), src, src.Bounds(), draw.Over, nil)
}

func renderShape(dst draw.Image, s *Shape) {
	rings := s.transformed()
	b := dst.Bounds()

	if fill, ok := parseColor(s.fill, s.opacity); ok {
		z := vector.NewRasterizer(b.Dx(), b.Dy())
		for _, ring := range rings {
			addRing(z, ring)
		}
		z.Draw(dst, b, image.NewUniform(fill), image.Point{})
	}

	if stroke, ok := parseColor(s.stroke, s.opacity); ok {
		z := vector.NewRasterizer(b.Dx(), b.Dy())
		for _, ring := range rings {
			for i := range ring {
				addSegment(z, ring[i], ring[(i+1)%len(ring)], 0.5)
			}
		}
		z.Draw(dst, b, image.NewUniform(stroke), image.Point{})
	}
}

// addRing adds a closed ring. The rasterizer accumulates signed area, so a
// ring wound opposite to its enclosing ring cuts a hole into it.
func addRing(z *vector.Rasterizer, ring []geometry.Point) {
	if len(ring) < 3 {
		return
	}
	z.MoveTo(float32(ring[0].X), float32(ring[0].Y))
	for _, pt := range ring[1:] {
		z.LineTo(float32(pt.X), float32(pt.Y))
	}
	z.ClosePath()
}

// addSegment adds the segment a→b as a quad of the given half width.
func addSegment(z *vector.Rasterizer, a, b geometry.Point, half float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*half, dx/l*half
	z.MoveTo(float32(a.X+nx), float32(a.Y+ny))
	z.LineTo(float32(b.X+nx), float32(b.Y+ny))
	z.LineTo(float32(b.X-nx), float32(b.Y-ny))
	z.LineTo(float32(a.X-nx), float32(a.Y-ny))
	z.ClosePath()
}

// parseColor understands "#rgb", "#rrggbb" and SVG color names. It reports
// false for "none", "transparent" and anything it cannot read.
func parseColor(s string, opacity float64) (color.NRGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	var c color.NRGBA
	switch {
	case s == "", s == "none", s == "transparent":
		return c, false
	case strings.HasPrefix(s, "#"):
		rgb, err := parseHex(s[1:])
		if err != nil {
			return c, false
		}
		c = rgb
	default:
		named, ok := colornames.Map[s]
		if !ok {
			return c, false
		}
		c = color.NRGBA{R: named.R, G: named.G, B: named.B, A: named.A}
	}
	c.A = uint8(math.Round(float64(c.A) * math.Max(0, math.Min(1, opacity))))
	return c, true
}

func parseHex(h string) (color.NRGBA, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.NRGBA{}, fmt.Errorf("bad color %q", h)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("bad color %q: %w", h, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
