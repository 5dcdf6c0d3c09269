package viewport

import "croptastic/internal/surface"

// CursorGrab holds the cursors replaced for the duration of a resize and
// puts them back on Release.
type CursorGrab struct {
	vp       *Viewport
	body     surface.Element
	rect     surface.Shape
	handles  []*handle
	oldBody  string
	oldRect  string
	released bool
}

// SetCursorsForResize shows cursor on the page body, the rectangle and all
// handles, so it does not flicker while the pointer crosses other elements
// mid-drag. A grab still held is released first.
func (v *Viewport) SetCursorsForResize(cursor string) *CursorGrab {
	if v.grab != nil {
		v.grab.Release()
	}
	g := &CursorGrab{vp: v, rect: v.rect, handles: v.handles}
	if v.doc != nil {
		g.body = v.doc.Body()
		g.oldBody = g.body.Cursor()
		g.body.SetCursor(cursor)
	}
	if g.rect != nil {
		g.oldRect = g.rect.Cursor()
		g.rect.SetCursor(cursor)
	}
	for _, h := range g.handles {
		h.setCursor(cursor)
	}
	v.grab = g
	return g
}

// Release restores the saved cursors. It is safe to call more than once.
func (g *CursorGrab) Release() {
	if g == nil || g.released {
		return
	}
	g.released = true
	if g.body != nil {
		g.body.SetCursor(g.oldBody)
	}
	if g.rect != nil {
		g.rect.SetCursor(g.oldRect)
	}
	for _, h := range g.handles {
		h.setCursor("")
	}
	if g.vp.grab == g {
		g.vp.grab = nil
	}
}

// Released reports whether Release has run.
func (g *CursorGrab) Released() bool {
	return g.released
}
