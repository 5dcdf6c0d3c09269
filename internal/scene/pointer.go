package scene

import "croptastic/internal/geometry"

type dragState struct {
	shape  *Shape
	startX float64
	startY float64
}

// PointerDown delivers a button press at page position (x, y). The topmost
// shape under the pointer receives it; if that shape has drag callbacks a
// drag starts and true is returned.
func (p *Paper) PointerDown(x, y float64) bool {
	if p.drag != nil {
		return false
	}
	s := p.ShapeAt(x, y)
	if s == nil || !s.draggable() {
		return false
	}
	p.drag = &dragState{shape: s, startX: x, startY: y}
	if s.onStart != nil {
		s.onStart(x, y)
	}
	return true
}

// PointerMove delivers pointer motion to the shape being dragged, if any.
// The callback sees the offset from the press position, not from the last
// move.
func (p *Paper) PointerMove(x, y float64) {
	if p.drag == nil {
		return
	}
	if fn := p.drag.shape.onMove; fn != nil {
		fn(x-p.drag.startX, y-p.drag.startY, x, y)
	}
}

// PointerUp ends the active drag. The end callback runs even when the shape
// was removed during the drag.
func (p *Paper) PointerUp() {
	d := p.drag
	if d == nil {
		return
	}
	p.drag = nil
	if fn := d.shape.onEnd; fn != nil {
		fn()
	}
}

// Dragging reports whether a drag is in progress.
func (p *Paper) Dragging() bool {
	return p.drag != nil
}

// ShapeAt returns the topmost shape containing page position (x, y).
func (p *Paper) ShapeAt(x, y float64) *Shape {
	local := geometry.Point{X: x - p.origin.X, Y: y - p.origin.Y}
	for i := len(p.items) - 1; i >= 0; i-- {
		s, ok := p.items[i].(*Shape)
		if !ok {
			continue
		}
		if s.Contains(local) {
			return s
		}
	}
	return nil
}

// CursorAt returns the cursor shown when hovering page position (x, y).
func (p *Paper) CursorAt(x, y float64) string {
	if s := p.ShapeAt(x, y); s != nil {
		return s.cursor
	}
	return ""
}
