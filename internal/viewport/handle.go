package viewport

import (
	"fmt"
	"math"

	"croptastic/internal/geometry"
	"croptastic/internal/surface"
)

const (
	handleFill    = "#949393"
	handleOpacity = 0.7
)

// handle is one resize handle. All eight share this type and differ only in
// their descriptor.
type handle struct {
	vp   *Viewport
	pos  Position
	desc descriptor
	side float64

	shape surface.Shape
}

func newHandle(vp *Viewport, pos Position, side float64) (*handle, error) {
	desc, err := pos.descriptor()
	if err != nil {
		return nil, err
	}
	return &handle{vp: vp, pos: pos, desc: desc, side: side}, nil
}

// targetCenter is where the handle centre belongs for the current
// rectangle.
func (h *handle) targetCenter() geometry.Point {
	at := h.vp.coordinates(h.desc)
	half := h.side / 2
	return geometry.Point{
		X: h.desc.offsetX(at.X, half),
		Y: h.desc.offsetY(at.Y, half),
	}
}

// center is where the handle currently is. Handles are only ever
// translated, so the transformed first vertex is the upper-left corner of
// the square.
func (h *handle) center() geometry.Point {
	ul := h.shape.Matrix().Apply(h.shape.Points()[0])
	return geometry.Point{X: ul.X + h.side/2, Y: ul.Y + h.side/2}
}

// setCursor shows cursor over the handle; the empty string restores the
// handle's own cursor.
func (h *handle) setCursor(cursor string) {
	if cursor == "" {
		cursor = h.desc.cursor
	}
	h.shape.SetCursor(cursor)
}

func (h *handle) draw() error {
	c := h.targetCenter()
	shape, err := h.vp.paper.Path(geometry.PointsToPath(geometry.SquareAroundPoint(c.X, c.Y, h.side)))
	if err != nil {
		return fmt.Errorf("failed to draw %s handle: %w", h.pos, err)
	}
	shape.SetFill(handleFill)
	shape.SetOpacity(handleOpacity)
	h.shape = shape
	h.setCursor("")
	shape.Drag(h.dragMove, h.dragStart, h.dragEnd)
	shape.ToFront()
	return nil
}

// reposition moves the handle to its target with a translation, keeping
// the shape and its drag bindings.
func (h *handle) reposition() {
	d := h.targetCenter().Sub(h.center())
	if math.Abs(d.X) < 1e-9 && math.Abs(d.Y) < 1e-9 {
		return
	}
	h.shape.Transform(geometry.Translate(d.X, d.Y))
}

func (h *handle) gesture() Gesture {
	return Gesture{Kind: DraggingHandle, Position: h.pos}
}

func (h *handle) dragStart(x, y float64) {
	if !h.vp.begin(h.gesture()) {
		return
	}
	// Keep the dragged handle on top so it stays the one under the pointer
	// when it passes over another handle.
	h.shape.ToFront()
	h.vp.SetCursorsForResize(h.shape.Cursor())
}

func (h *handle) dragMove(_, _, x, y float64) {
	if h.vp.gesture != h.gesture() {
		return
	}
	h.dragTo(h.vp.toLocal(x, y))
}

func (h *handle) dragEnd() {
	if h.vp.gesture != h.gesture() {
		return
	}
	h.vp.end()
}

// dragTo resizes the viewport so that this handle follows the paper-local
// pointer position. It reports false if the move was dropped.
func (h *handle) dragTo(local geometry.Point) bool {
	size, ok := h.candidate(local)
	if !ok {
		h.vp.log.Debug().
			Stringer("handle", h.pos).
			Float64("x", local.X).
			Float64("y", local.Y).
			Msg("resize below minimum on both axes, dropped")
		return false
	}
	anchor := h.vp.coordinates(descriptors[h.desc.anchor])
	h.vp.Scale(size, anchor)
	h.vp.RepositionHandles()
	if err := h.vp.RedrawShade(); err != nil {
		h.vp.log.Error().Err(err).Msg("cannot redraw shade")
	}
	h.vp.UpdatePreview()
	return true
}

// candidate computes the size the viewport takes when this handle is moved
// to local. Axes the handle cannot resize are left zero. Pushing both sides
// below the threshold is refused; pushing one clamps it.
func (h *handle) candidate(local geometry.Point) (Size, bool) {
	var (
		th    = h.vp.threshold
		cur   = h.vp.size
		w, ht = cur.W, cur.H
		c     = h.center()
	)
	if h.desc.horizontal {
		d := local.X - c.X
		if h.desc.inwardX {
			d = -d
		}
		w += d
	}
	if h.desc.vertical {
		d := local.Y - c.Y
		if h.desc.inwardY {
			d = -d
		}
		ht += d
	}

	if w < th && ht < th {
		return Size{}, false
	}
	if w < th {
		w = th
	} else if ht < th {
		ht = th
	}

	var size Size
	if h.desc.horizontal {
		size.W = w
	}
	if h.desc.vertical {
		size.H = ht
	}
	return size, true
}
