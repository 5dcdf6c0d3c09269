package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"croptastic/internal/geometry"
	"croptastic/internal/scene"
	"croptastic/internal/viewport"
)

var (
	ErrBadSession      = errors.New("invalid session request")
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownEvent    = errors.New("unknown event kind")
	ErrNoPreview       = errors.New("session has no preview canvas")
)

// PreviewTarget describes the element the browser wants the preview drawn
// into. Only a canvas can receive it.
type PreviewTarget struct {
	Tag    string `json:"tag"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// SessionRequest is the page layout the browser measured around the
// container holding the picture.
type SessionRequest struct {
	File    string        `json:"file"`
	Left    float64       `json:"left"`
	Top     float64       `json:"top"`
	Width   float64       `json:"width"`
	Height  float64       `json:"height"`
	ScrollX float64       `json:"scroll_x"`
	ScrollY float64       `json:"scroll_y"`
	Preview PreviewTarget `json:"preview"`
}

// Event is a pointer or key event in page coordinates.
type Event struct {
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Key  string  `json:"key,omitempty"`
}

// SessionState is what the browser needs to repaint after an event.
type SessionState struct {
	ID       string         `json:"id"`
	File     string         `json:"file"`
	Gesture  string         `json:"gesture"`
	Cursor   string         `json:"cursor"`
	Center   geometry.Point `json:"center"`
	Size     viewport.Size  `json:"size"`
	Region   geometry.Rect  `json:"region"`
	Warnings []string       `json:"warnings"`
	Scene    scene.Snapshot `json:"scene"`
}

// Session is one crop viewport living on the server. Events are applied
// one at a time.
type Session struct {
	ID   string
	File string

	mu       sync.Mutex
	paper    *scene.Paper
	doc      *scene.Document
	preview  *scene.Canvas
	vp       *viewport.Viewport
	warnings []string
}

// NewSession loads the picture through loader, sets up a viewport over it
// and waits for decoding so the first preview is drawn.
func NewSession(ctx context.Context, loader scene.Loader, req SessionRequest) (*Session, error) {
	if req.File == "" {
		return nil, fmt.Errorf("%w: missing file", ErrBadSession)
	}
	if req.Width <= 0 || req.Height <= 0 {
		return nil, fmt.Errorf("%w: container is %vx%v", ErrBadSession, req.Width, req.Height)
	}

	s := &Session{ID: uuid.NewString(), File: req.File}
	logger := log.Ctx(ctx).With().Str("session", s.ID).Str("file", req.File).Logger()

	pic, err := loader.Load(req.File)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", req.File, err)
	}

	s.doc = scene.NewDocument(geometry.Point{X: req.ScrollX, Y: req.ScrollY})
	container := scene.NewElement("div", geometry.Rect{X: req.Left, Y: req.Top, W: req.Width, H: req.Height})
	origin := geometry.Point{X: req.Left + req.ScrollX, Y: req.Top + req.ScrollY}
	s.paper = scene.NewPaper(origin, req.Width, req.Height, scene.MapLoader{req.File: pic})

	cfg := viewport.Config{
		Paper:     s.paper,
		Container: container,
		Document:  s.doc,
		Logger:    &logger,
		Warn: func(msg string) {
			logger.Warn().Msg(msg)
			s.warnings = append(s.warnings, msg)
		},
	}
	switch {
	case req.Preview.Tag == "":
	case strings.EqualFold(req.Preview.Tag, "canvas"):
		if req.Preview.Width <= 0 || req.Preview.Height <= 0 {
			return nil, fmt.Errorf("%w: preview is %dx%d", ErrBadSession, req.Preview.Width, req.Preview.Height)
		}
		s.preview = scene.NewCanvas(req.Preview.Width, req.Preview.Height)
		cfg.Preview = s.preview
	default:
		cfg.Preview = scene.NewElement(req.Preview.Tag, geometry.Rect{
			W: float64(req.Preview.Width),
			H: float64(req.Preview.Height),
		})
	}

	vp, err := viewport.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create viewport: %w", err)
	}
	if err := vp.Initialize(req.File); err != nil {
		return nil, err
	}
	s.vp = vp

	if p, ok := pic.(*scene.Picture); ok {
		if err := p.Wait(ctx); err != nil {
			vp.Close()
			return nil, fmt.Errorf("failed to load %s: %w", req.File, err)
		}
	}
	// the first attempt ran before decoding finished
	vp.UpdatePreview()

	logger.Debug().Msg("session started")
	return s, nil
}

// Dispatch applies ev to the viewport.
func (s *Session) Dispatch(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Kind {
	case "down":
		s.paper.PointerDown(ev.X, ev.Y)
	case "move":
		s.paper.PointerMove(ev.X, ev.Y)
	case "up":
		s.paper.PointerUp()
	case "key":
		s.vp.KeyDown(ev.Key)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}
	return nil
}

// State captures the session for the browser.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SessionState{
		ID:       s.ID,
		File:     s.File,
		Gesture:  s.vp.Gesture().String(),
		Cursor:   s.doc.Body().Cursor(),
		Center:   s.vp.Center(),
		Size:     s.vp.Size(),
		Region:   s.vp.Region(),
		Warnings: append([]string{}, s.warnings...),
		Scene:    s.paper.Snapshot(),
	}
}

// Crop returns the current viewport as a crop of the whole picture.
func (s *Session) Crop() Crop {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CropFromRegion(s.vp.Region())
}

// WritePreview encodes the preview canvas as PNG.
func (s *Session) WritePreview(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.preview == nil {
		return ErrNoPreview
	}
	return imaging.Encode(w, s.preview.Image(), imaging.PNG)
}

// WriteSnapshot encodes the rendered paper as PNG.
func (s *Session) WriteSnapshot(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return imaging.Encode(w, s.paper.Render(), imaging.PNG)
}

// Close ends any gesture in progress.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vp.Close()
}

// Sessions is the set of live sessions of a web app.
type Sessions struct {
	mu sync.RWMutex
	m  map[string]*Session
}

func NewSessions() *Sessions {
	return &Sessions{m: make(map[string]*Session)}
}

func (ss *Sessions) Add(s *Session) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.m[s.ID] = s
}

func (ss *Sessions) Get(id string) (*Session, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	s, ok := ss.m[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Remove closes and forgets the session.
func (ss *Sessions) Remove(id string) error {
	ss.mu.Lock()
	s, ok := ss.m[id]
	delete(ss.m, id)
	ss.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.Close()
	return nil
}

func (ss *Sessions) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.m)
}

// CloseAll closes every session.
func (ss *Sessions) CloseAll() {
	ss.mu.Lock()
	sessions := ss.m
	ss.m = make(map[string]*Session)
	ss.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}

// ResolveCrops fills in crop operations that point at a session: the
// filename defaults to the session's picture and an empty crop takes the
// current viewport.
func (ss *Sessions) ResolveCrops(ops Operations) error {
	for _, op := range ops {
		c := op.Crop
		if c == nil || c.Session == "" {
			continue
		}
		s, err := ss.Get(c.Session)
		if err != nil {
			return err
		}
		if c.Filename == "" {
			c.Filename = s.File
		}
		if c.Crop == (Crop{}) {
			c.Crop = s.Crop()
		}
	}
	return nil
}
