package viewport

import (
	"fmt"

	"croptastic/internal/geometry"
)

type shadeStyle struct {
	fill    string
	opacity float64
}

var shadeStyles = [...]shadeStyle{
	{fill: "#949393", opacity: 0.7},
	{fill: "#000000", opacity: 1.0},
}

func (s shadeStyle) next() shadeStyle {
	if s == shadeStyles[0] {
		return shadeStyles[1]
	}
	return shadeStyles[0]
}

// ShadeStyle returns the current shade fill color and opacity.
func (v *Viewport) ShadeStyle() (fill string, opacity float64) {
	return v.style.fill, v.style.opacity
}

// RedrawShade replaces the shade mask: the container rectangle with the
// viewport cut out of it. The picture stays below the mask and the mask
// below everything else.
func (v *Viewport) RedrawShade() error {
	if v.shade != nil {
		v.shade.Remove()
		v.shade = nil
	}

	outer := []geometry.Point{
		{X: 0, Y: 0},
		{X: v.width, Y: 0},
		{X: v.width, Y: v.height},
		{X: 0, Y: v.height},
	}
	// The inner ring runs counter-clockwise so it is subtracted from the
	// outer one.
	inner := geometry.Reverse(geometry.RectangleAroundPoint(v.center.X, v.center.Y, v.size.W, v.size.H))

	shade, err := v.paper.Path(geometry.PointsToPath(outer) + geometry.PointsToPath(inner))
	if err != nil {
		return fmt.Errorf("failed to draw shade: %w", err)
	}
	shade.SetFill(v.style.fill)
	shade.SetOpacity(v.style.opacity)
	v.shade = shade

	shade.ToBack()
	if v.image != nil {
		v.image.ToBack()
	}
	return nil
}
