package viewport

import (
	"math"

	"croptastic/internal/geometry"
)

// UpdatePreview redraws the preview canvas with the pixels under the
// rectangle. It does nothing without a preview canvas, and skips the call
// while the picture has not finished loading.
func (v *Viewport) UpdatePreview() {
	if v.preview == nil {
		return
	}
	src, ok := v.SourceRect()
	if !ok {
		return
	}
	w, h := v.preview.Size()
	v.preview.Clear()
	v.preview.DrawImage(v.image.Picture().Image(), src, geometry.Rect{W: float64(w), H: float64(h)})
}

// SourceRect returns the rectangle in source picture pixels. It reports
// false until the picture has loaded.
func (v *Viewport) SourceRect() (geometry.Rect, bool) {
	if !v.multipliers() {
		return geometry.Rect{}, false
	}
	return geometry.Rect{
		X: (v.center.X - v.size.W/2) * v.widthMultiplier,
		Y: (v.center.Y - v.size.H/2) * v.heightMultiplier,
		W: v.size.W * v.widthMultiplier,
		H: v.size.H * v.heightMultiplier,
	}, true
}

// multipliers fills in the natural-to-rendered size ratios once the
// picture reports a size. A zero ratio means the picture is still loading
// and is not kept.
func (v *Viewport) multipliers() bool {
	if v.image == nil {
		return false
	}
	if v.widthMultiplier == 0 {
		nw, _ := v.image.Picture().NaturalSize()
		rw, _ := v.image.Size()
		v.widthMultiplier = ratio(nw, rw)
		if v.widthMultiplier == 0 {
			return false
		}
	}
	if v.heightMultiplier == 0 {
		_, nh := v.image.Picture().NaturalSize()
		_, rh := v.image.Size()
		v.heightMultiplier = ratio(nh, rh)
		if v.heightMultiplier == 0 {
			return false
		}
	}
	return true
}

func ratio(natural, rendered float64) float64 {
	r := natural / rendered
	if rendered == 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}
