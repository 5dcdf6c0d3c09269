package scene

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"

	"croptastic/internal/surface"
)

// Loader resolves image sources for Paper.Image.
type Loader interface {
	Load(src string) (surface.Picture, error)
}

// Picture is an image that may still be decoding. It is safe for concurrent
// use: decoding happens on its own goroutine while the paper reads it.
type Picture struct {
	mu   sync.Mutex
	img  image.Image
	err  error
	done chan struct{}
}

var _ surface.Picture = (*Picture)(nil)

// NewPicture returns a picture that is already loaded.
func NewPicture(img image.Image) *Picture {
	p := NewPendingPicture()
	p.Resolve(img)
	return p
}

// NewPendingPicture returns a picture with nothing loaded yet.
func NewPendingPicture() *Picture {
	return &Picture{done: make(chan struct{})}
}

// Resolve publishes the decoded image.
func (p *Picture) Resolve(img image.Image) {
	p.finish(img, nil)
}

// Fail records a decoding error.
func (p *Picture) Fail(err error) {
	p.finish(nil, err)
}

func (p *Picture) finish(img image.Image, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.done:
		return
	default:
	}
	p.img, p.err = img, err
	close(p.done)
}

// NaturalSize implements surface.Picture.
func (p *Picture) NaturalSize() (w, h float64) {
	img := p.Image()
	if img == nil {
		return 0, 0
	}
	b := img.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

// Image implements surface.Picture.
func (p *Picture) Image() image.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.img
}

// Wait blocks until the picture is loaded or failed, or ctx is done.
func (p *Picture) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FileLoader reads images from a directory. The file must exist when Load
// is called; decoding continues in the background.
type FileLoader struct {
	Root string
}

// Load implements Loader.
func (l FileLoader) Load(src string) (surface.Picture, error) {
	path, err := l.resolve(src)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}

	pic := NewPendingPicture()
	go func() {
		img, err := imaging.Open(path, imaging.AutoOrientation(true))
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("cannot decode image")
			pic.Fail(fmt.Errorf("failed to decode image: %w", err))
			return
		}
		pic.Resolve(img)
	}()
	return pic, nil
}

func (l FileLoader) resolve(src string) (string, error) {
	if l.Root == "" {
		return filepath.Clean(src), nil
	}
	root, err := filepath.Abs(l.Root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root: %w", err)
	}
	// Cleaning against "/" drops any ".." that would climb above root.
	return filepath.Join(root, filepath.FromSlash(filepath.Clean("/"+src))), nil
}

// MapLoader serves pictures registered under a source name.
type MapLoader map[string]surface.Picture

// Load implements Loader.
func (m MapLoader) Load(src string) (surface.Picture, error) {
	pic, ok := m[src]
	if !ok {
		return nil, fmt.Errorf("image %q: %w", src, os.ErrNotExist)
	}
	return pic, nil
}
