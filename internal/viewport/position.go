package viewport

import (
	"errors"
	"fmt"
)

// ErrInvalidPosition is returned for a Position outside the eight handle
// positions.
var ErrInvalidPosition = errors.New("invalid handle position")

// Position identifies one of the eight resize handles.
type Position int

const (
	UpperLeft Position = iota
	UpperRight
	LowerRight
	LowerLeft
	CenterTop
	CenterRight
	CenterBottom
	CenterLeft
)

// Positions lists every handle position in drawing order.
var Positions = [...]Position{
	UpperLeft, UpperRight, LowerRight, LowerLeft,
	CenterTop, CenterRight, CenterBottom, CenterLeft,
}

// offsetFunc moves a handle centre off the point it is attached to by half
// the handle side.
type offsetFunc func(coord, half float64) float64

func add(coord, half float64) float64      { return coord + half }
func subtract(coord, half float64) float64 { return coord - half }
func identity(coord, _ float64) float64    { return coord }

type descriptor struct {
	name string

	// horizontal and vertical tell which axes the handle resizes.
	horizontal bool
	vertical   bool
	// inwardX and inwardY are set when moving the handle towards larger
	// coordinates shrinks the rectangle on that axis.
	inwardX bool
	inwardY bool

	offsetX offsetFunc
	offsetY offsetFunc
	cursor  string

	// corner is the index into the rectangle's corner list, or -1 for
	// edge midpoints, which sit halfway between the corners in between.
	corner  int
	between [2]Position

	// anchor stays put while this handle is dragged.
	anchor Position
}

var descriptors = [...]descriptor{
	UpperLeft: {
		name:       "upper-left",
		horizontal: true,
		vertical:   true,
		inwardX:    true,
		inwardY:    true,
		offsetX:    add,
		offsetY:    add,
		cursor:     "nwse-resize",
		corner:     0,
		anchor:     LowerRight,
	},
	UpperRight: {
		name:       "upper-right",
		horizontal: true,
		vertical:   true,
		inwardY:    true,
		offsetX:    subtract,
		offsetY:    add,
		cursor:     "nesw-resize",
		corner:     1,
		anchor:     LowerLeft,
	},
	LowerRight: {
		name:       "lower-right",
		horizontal: true,
		vertical:   true,
		offsetX:    subtract,
		offsetY:    subtract,
		cursor:     "nwse-resize",
		corner:     2,
		anchor:     UpperLeft,
	},
	LowerLeft: {
		name:       "lower-left",
		horizontal: true,
		vertical:   true,
		inwardX:    true,
		offsetX:    add,
		offsetY:    subtract,
		cursor:     "nesw-resize",
		corner:     3,
		anchor:     UpperRight,
	},
	CenterTop: {
		name:     "center-top",
		vertical: true,
		inwardY:  true,
		offsetX:  identity,
		offsetY:  add,
		cursor:   "ns-resize",
		corner:   -1,
		between:  [2]Position{UpperLeft, UpperRight},
		anchor:   LowerLeft,
	},
	CenterRight: {
		name:       "center-right",
		horizontal: true,
		offsetX:    subtract,
		offsetY:    identity,
		cursor:     "ew-resize",
		corner:     -1,
		between:    [2]Position{UpperRight, LowerRight},
		anchor:     UpperLeft,
	},
	CenterBottom: {
		name:     "center-bottom",
		vertical: true,
		offsetX:  identity,
		offsetY:  subtract,
		cursor:   "ns-resize",
		corner:   -1,
		between:  [2]Position{LowerLeft, LowerRight},
		anchor:   UpperLeft,
	},
	CenterLeft: {
		name:       "center-left",
		horizontal: true,
		inwardX:    true,
		offsetX:    add,
		offsetY:    identity,
		cursor:     "ew-resize",
		corner:     -1,
		between:    [2]Position{UpperLeft, LowerLeft},
		anchor:     UpperRight,
	},
}

func (p Position) descriptor() (descriptor, error) {
	if !p.Valid() {
		return descriptor{}, fmt.Errorf("%w: %d", ErrInvalidPosition, int(p))
	}
	return descriptors[p], nil
}

// Valid reports whether p is one of the eight handle positions.
func (p Position) Valid() bool {
	return p >= UpperLeft && p <= CenterLeft
}

func (p Position) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Position(%d)", int(p))
	}
	return descriptors[p].name
}

// Cursor returns the cursor shown over the handle at p.
func (p Position) Cursor() string {
	if !p.Valid() {
		return ""
	}
	return descriptors[p].cursor
}

// IsCorner reports whether p is one of the four corners.
func (p Position) IsCorner() bool {
	return p.Valid() && descriptors[p].corner >= 0
}

// Anchor returns the position that does not move while the handle at p is
// dragged: the opposite corner for corners, and for edge midpoints a corner
// on the far side of the free axis.
func (p Position) Anchor() (Position, error) {
	d, err := p.descriptor()
	if err != nil {
		return 0, err
	}
	return d.anchor, nil
}

// ParsePosition returns the position named s, e.g. "lower-right".
func ParsePosition(s string) (Position, error) {
	for _, p := range Positions {
		if descriptors[p].name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Position) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPosition, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Position) UnmarshalText(b []byte) error {
	v, err := ParsePosition(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
