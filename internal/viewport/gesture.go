package viewport

import "fmt"

// GestureKind tells what, if anything, is being dragged.
type GestureKind int

const (
	Idle GestureKind = iota
	DraggingBody
	DraggingHandle
)

// Gesture is the active drag. Position is only meaningful for
// DraggingHandle.
type Gesture struct {
	Kind     GestureKind
	Position Position
}

func (g Gesture) String() string {
	switch g.Kind {
	case Idle:
		return "idle"
	case DraggingBody:
		return "dragging body"
	case DraggingHandle:
		return fmt.Sprintf("dragging %s handle", g.Position)
	default:
		return fmt.Sprintf("Gesture(%d)", int(g.Kind))
	}
}

// Gesture returns the drag in progress.
func (v *Viewport) Gesture() Gesture {
	return v.gesture
}

// begin starts g. Only one gesture runs at a time; a second start is
// refused.
func (v *Viewport) begin(g Gesture) bool {
	if v.gesture.Kind != Idle {
		v.log.Warn().
			Stringer("active", v.gesture).
			Stringer("refused", g).
			Msg("gesture already in progress")
		return false
	}
	v.gesture = g
	v.log.Debug().Stringer("gesture", g).Msg("gesture started")
	return true
}

// end finishes the active gesture and gives back the cursors.
func (v *Viewport) end() {
	if v.grab != nil {
		v.grab.Release()
	}
	v.log.Debug().Stringer("gesture", v.gesture).Msg("gesture ended")
	v.gesture = Gesture{}
}
