package scene

import (
	"strings"

	"croptastic/internal/geometry"
)

// Snapshot is the serializable state of a paper, bottom element first.
type Snapshot struct {
	Width    float64        `json:"width"`
	Height   float64        `json:"height"`
	Elements []ElementState `json:"elements"`
}

// ElementState describes one element with its transform already applied.
type ElementState struct {
	ID      int            `json:"id"`
	Kind    string         `json:"kind"`
	D       string         `json:"d,omitempty"`
	Fill    string         `json:"fill,omitempty"`
	Stroke  string         `json:"stroke,omitempty"`
	Opacity float64        `json:"opacity"`
	Cursor  string         `json:"cursor,omitempty"`
	Src     string         `json:"src,omitempty"`
	Box     *geometry.Rect `json:"box,omitempty"`
}

// Snapshot captures the current paper contents.
func (p *Paper) Snapshot() Snapshot {
	snap := Snapshot{Width: p.width, Height: p.height, Elements: make([]ElementState, 0, len(p.items))}
	for _, it := range p.items {
		switch el := it.(type) {
		case *ImageShape:
			box := el.box
			snap.Elements = append(snap.Elements, ElementState{
				ID:      el.id,
				Kind:    "image",
				Opacity: 1,
				Src:     el.src,
				Box:     &box,
			})
		case *Shape:
			var sb strings.Builder
			for _, ring := range el.transformed() {
				sb.WriteString(geometry.PointsToPath(ring))
			}
			snap.Elements = append(snap.Elements, ElementState{
				ID:      el.id,
				Kind:    "path",
				D:       sb.String(),
				Fill:    el.fill,
				Stroke:  el.stroke,
				Opacity: el.opacity,
				Cursor:  el.cursor,
			})
		}
	}
	return snap
}
