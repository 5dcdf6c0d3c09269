// Package viewport implements the crop viewport: a resizable, draggable
// rectangle drawn over a picture on a surface.Paper, the shade mask around
// it, eight resize handles and a live preview of the covered pixels.
//
// A Viewport is driven by the drag callbacks it registers on its shapes and
// is not safe for concurrent use. Hosts deliver pointer events one at a
// time.
package viewport

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"croptastic/internal/geometry"
	"croptastic/internal/surface"
)

const (
	DefaultThreshold  = 20
	DefaultWidth      = 100
	DefaultHeight     = 100
	DefaultHandleSize = 15

	bodyCursor = "grabbing"
)

var (
	ErrNoPaper     = errors.New("viewport needs a paper")
	ErrNoContainer = errors.New("viewport needs a container element")
	ErrBadConfig   = errors.New("invalid viewport configuration")
	ErrNotDrawn    = errors.New("viewport is not initialized")
)

// Config configures a Viewport. Zero values select the defaults.
type Config struct {
	Paper     surface.Paper
	Container surface.Element
	// Document is used for the page scroll offset and the body cursor.
	Document surface.Document
	// Preview receives the cropped pixels. It must be a surface.Canvas;
	// anything else is reported through Warn and ignored.
	Preview surface.Element

	Threshold     float64
	DefaultWidth  float64
	DefaultHeight float64
	HandleSize    float64

	Logger *zerolog.Logger
	// Warn reports problems to the user. Defaults to a logged warning.
	Warn func(msg string)
}

// Size is a width and height. A zero field passed to Scale leaves that
// axis unchanged.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Viewport is the crop rectangle controller.
type Viewport struct {
	paper     surface.Paper
	container surface.Element
	doc       surface.Document
	preview   surface.Canvas
	log       zerolog.Logger
	warn      func(string)

	threshold   float64
	defaultSize Size
	handleSize  float64

	// offset is the page position of the paper origin, measured once at
	// Initialize.
	offset geometry.Point
	width  float64
	height float64

	center geometry.Point
	size   Size

	image   surface.ImageShape
	rect    surface.Shape
	handles []*handle
	group   surface.Group
	shade   surface.Shape
	style   shadeStyle

	widthMultiplier  float64
	heightMultiplier float64

	gesture Gesture
	grab    *CursorGrab
	last    geometry.Point
}

// New validates cfg and returns an uninitialized viewport.
func New(cfg Config) (*Viewport, error) {
	if cfg.Paper == nil {
		return nil, ErrNoPaper
	}
	if cfg.Container == nil {
		return nil, ErrNoContainer
	}
	if cfg.Threshold < 0 || cfg.DefaultWidth < 0 || cfg.DefaultHeight < 0 || cfg.HandleSize < 0 {
		return nil, fmt.Errorf("%w: negative size", ErrBadConfig)
	}

	v := &Viewport{
		paper:       cfg.Paper,
		container:   cfg.Container,
		doc:         cfg.Document,
		threshold:   orDefault(cfg.Threshold, DefaultThreshold),
		defaultSize: Size{W: orDefault(cfg.DefaultWidth, DefaultWidth), H: orDefault(cfg.DefaultHeight, DefaultHeight)},
		handleSize:  orDefault(cfg.HandleSize, DefaultHandleSize),
		style:       shadeStyles[0],
	}
	if v.defaultSize.W < v.threshold && v.defaultSize.H < v.threshold {
		return nil, fmt.Errorf("%w: default size %vx%v below threshold %v",
			ErrBadConfig, v.defaultSize.W, v.defaultSize.H, v.threshold)
	}

	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	v.log = logger.With().Str("component", "viewport").Logger()
	v.warn = cfg.Warn
	if v.warn == nil {
		v.warn = func(msg string) { v.log.Warn().Msg(msg) }
	}

	if cfg.Preview != nil {
		c, ok := cfg.Preview.(surface.Canvas)
		if !ok || !strings.EqualFold(cfg.Preview.TagName(), "canvas") {
			v.warn("Preview widget needs to be canvas")
		} else {
			v.preview = c
		}
	}
	return v, nil
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// Initialize draws the picture at src over the whole container, places a
// default-sized viewport in the middle and primes the preview. It may be
// called again to start over with a new picture.
func (v *Viewport) Initialize(src string) error {
	if v.grab != nil {
		v.grab.Release()
	}
	v.gesture = Gesture{}

	v.paper.Clear()
	v.rect, v.handles, v.group, v.shade = nil, nil, nil, nil
	v.widthMultiplier, v.heightMultiplier = 0, 0

	box := v.container.BoundingRect()
	var scroll geometry.Point
	if v.doc != nil {
		scroll = v.doc.Scroll()
	}
	v.offset = geometry.Point{X: box.X + scroll.X, Y: box.Y + scroll.Y}
	v.width, v.height = box.W, box.H

	img, err := v.paper.Image(src, 0, 0, v.width, v.height)
	if err != nil {
		return fmt.Errorf("failed to set up viewport: %w", err)
	}
	v.image = img

	v.center = geometry.Point{X: v.width / 2, Y: v.height / 2}
	v.size = v.defaultSize

	if err := v.RedrawShade(); err != nil {
		return err
	}
	if err := v.draw(); err != nil {
		return err
	}
	v.UpdatePreview()

	v.log.Debug().
		Str("src", src).
		Float64("width", v.width).
		Float64("height", v.height).
		Msg("viewport initialized")
	return nil
}

// draw creates the rectangle and its handles from scratch.
func (v *Viewport) draw() error {
	if v.rect != nil {
		v.rect.Remove()
		v.rect = nil
	}
	for _, h := range v.handles {
		h.shape.Remove()
	}
	v.handles = nil

	pts := geometry.RectangleAroundPoint(v.center.X, v.center.Y, v.size.W, v.size.H)
	rect, err := v.paper.Path(geometry.PointsToPath(pts))
	if err != nil {
		return fmt.Errorf("failed to draw viewport: %w", err)
	}
	rect.SetFill("transparent")
	v.rect = rect

	shapes := []surface.Shape{rect}
	for _, pos := range Positions {
		h, err := newHandle(v, pos, v.handleSize)
		if err != nil {
			return err
		}
		if err := h.draw(); err != nil {
			return err
		}
		v.handles = append(v.handles, h)
		shapes = append(shapes, h.shape)
	}

	rect.Drag(v.bodyMove, v.bodyStart, v.bodyEnd)
	v.group = v.paper.Group(shapes...)
	rect.SetCursor(bodyCursor)
	return nil
}

// Scale resizes the rectangle to size while keeping anchor, in paper
// coordinates, where it is. The centre is recomputed on changed axes only.
func (v *Viewport) Scale(size Size, anchor geometry.Point) {
	if v.rect == nil {
		return
	}
	mx, my := 1.0, 1.0
	if size.W != 0 {
		mx = size.W / v.size.W
		v.size.W = size.W
	}
	if size.H != 0 {
		my = size.H / v.size.H
		v.size.H = size.H
	}
	v.rect.Transform(geometry.ScaleAbout(mx, my, anchor.X, anchor.Y))

	ul := v.cornerCoordinates(descriptors[UpperLeft].corner)
	if size.W != 0 {
		v.center.X = ul.X + size.W/2
	}
	if size.H != 0 {
		v.center.Y = ul.Y + size.H/2
	}
}

// MoveBy translates the rectangle and its handles as one body.
func (v *Viewport) MoveBy(dx, dy float64) {
	if v.group == nil {
		return
	}
	v.center.X += dx
	v.center.Y += dy
	v.group.Transform(geometry.Translate(dx, dy))
	v.UpdatePreview()
}

// RepositionHandles moves every handle to where the current rectangle puts
// it.
func (v *Viewport) RepositionHandles() {
	for _, h := range v.handles {
		h.reposition()
	}
}

// PositionCoordinates returns the current paper coordinates of the corner
// or edge midpoint at pos.
func (v *Viewport) PositionCoordinates(pos Position) (geometry.Point, error) {
	d, err := pos.descriptor()
	if err != nil {
		return geometry.Point{}, err
	}
	if v.rect == nil {
		return geometry.Point{}, ErrNotDrawn
	}
	return v.coordinates(d), nil
}

func (v *Viewport) coordinates(d descriptor) geometry.Point {
	if d.corner >= 0 {
		return v.cornerCoordinates(d.corner)
	}
	a := v.coordinates(descriptors[d.between[0]])
	b := v.coordinates(descriptors[d.between[1]])
	return geometry.Midpoint(a, b)
}

func (v *Viewport) cornerCoordinates(i int) geometry.Point {
	return v.rect.Matrix().Apply(v.rect.Points()[i])
}

// HandleCenter returns the current centre of the handle at pos.
func (v *Viewport) HandleCenter(pos Position) (geometry.Point, error) {
	if !pos.Valid() {
		return geometry.Point{}, fmt.Errorf("%w: %d", ErrInvalidPosition, int(pos))
	}
	for _, h := range v.handles {
		if h.pos == pos {
			return h.center(), nil
		}
	}
	return geometry.Point{}, ErrNotDrawn
}

// Center returns the centre of the rectangle in paper coordinates.
func (v *Viewport) Center() geometry.Point { return v.center }

// Size returns the rectangle size.
func (v *Viewport) Size() Size { return v.size }

// Threshold returns the minimum side length.
func (v *Viewport) Threshold() float64 { return v.threshold }

// Offset returns the page position of the paper origin as measured by the
// last Initialize.
func (v *Viewport) Offset() geometry.Point { return v.offset }

// Bounds returns the rectangle in paper coordinates.
func (v *Viewport) Bounds() geometry.Rect {
	return geometry.Rect{
		X: v.center.X - v.size.W/2,
		Y: v.center.Y - v.size.H/2,
		W: v.size.W,
		H: v.size.H,
	}
}

// Region returns the rectangle relative to the container, each field as a
// fraction of the container width or height.
func (v *Viewport) Region() geometry.Rect {
	if v.width == 0 || v.height == 0 {
		return geometry.Rect{}
	}
	b := v.Bounds()
	return geometry.Rect{
		X: b.X / v.width,
		Y: b.Y / v.height,
		W: b.W / v.width,
		H: b.H / v.height,
	}
}

// toLocal converts a page position to paper coordinates.
//
// TODO: the offset goes stale when the container scrolls or moves after
// Initialize; re-measure it at gesture start.
func (v *Viewport) toLocal(x, y float64) geometry.Point {
	return geometry.Point{X: x - v.offset.X, Y: y - v.offset.Y}
}

func (v *Viewport) bodyStart(x, y float64) {
	if !v.begin(Gesture{Kind: DraggingBody}) {
		return
	}
	v.last = geometry.Point{X: x, Y: y}
}

// bodyMove receives offsets from the drag start; the rectangle moves by
// the change since the previous event.
func (v *Viewport) bodyMove(_, _, x, y float64) {
	if v.gesture.Kind != DraggingBody {
		return
	}
	dx, dy := x-v.last.X, y-v.last.Y
	v.last = geometry.Point{X: x, Y: y}
	v.MoveBy(dx, dy)
	if err := v.RedrawShade(); err != nil {
		v.log.Error().Err(err).Msg("cannot redraw shade")
	}
}

func (v *Viewport) bodyEnd() {
	if v.gesture.Kind != DraggingBody {
		return
	}
	v.end()
}

// KeyDown handles a key press. "e" switches between the two shade styles.
// It reports whether the key was used.
func (v *Viewport) KeyDown(key string) bool {
	if key != "e" {
		return false
	}
	v.style = v.style.next()
	if v.rect == nil {
		return true
	}
	if err := v.RedrawShade(); err != nil {
		v.log.Error().Err(err).Msg("cannot redraw shade")
	}
	return true
}

// Close ends any gesture in progress and restores cursors.
func (v *Viewport) Close() {
	if v.grab != nil {
		v.grab.Release()
	}
	v.gesture = Gesture{}
}
