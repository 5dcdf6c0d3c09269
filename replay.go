package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"croptastic/internal/scene"
)

type replayCmd struct {
	Image   string  `arg:"" help:"Picture to crop" type:"existingfile"`
	Events  string  `help:"JSON lines file of pointer and key events, - reads stdin" default:"-" short:"e"`
	Width   float64 `help:"Container width in pixels" default:"400"`
	Height  float64 `help:"Container height in pixels" default:"300"`
	Preview string  `help:"Preview canvas size as WIDTHxHEIGHT, empty for none" default:"100x100"`
	Out     string  `help:"Directory for snapshot.png, preview.png and the crop" default:"." type:"path"`
	Crop    bool    `help:"Also crop the picture to the final viewport"`
	Verbose bool    `help:"Enable verbose logging" default:"false"`
}

func (cmd *replayCmd) Run() error {
	setupLogging(cmd.Verbose)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx = log.Logger.WithContext(ctx)

	state, err := cmd.replay(ctx, os.Stdin)
	if err != nil {
		return err
	}
	printJSONL([]SessionState{state})
	return nil
}

// replay runs the events against a fresh session and writes its outputs.
func (cmd *replayCmd) replay(ctx context.Context, stdin io.Reader) (SessionState, error) {
	preview, err := parsePreview(cmd.Preview)
	if err != nil {
		return SessionState{}, err
	}

	events, err := cmd.readEvents(stdin)
	if err != nil {
		return SessionState{}, err
	}

	dir, file := filepath.Split(cmd.Image)
	s, err := NewSession(ctx, scene.FileLoader{Root: dir}, SessionRequest{
		File:    file,
		Width:   cmd.Width,
		Height:  cmd.Height,
		Preview: preview,
	})
	if err != nil {
		return SessionState{}, err
	}
	defer s.Close()

	for i, ev := range events {
		if err := s.Dispatch(ev); err != nil {
			return SessionState{}, fmt.Errorf("event %d: %w", i+1, err)
		}
	}
	log.Ctx(ctx).Info().Int("events", len(events)).Stringer("crop", s.Crop()).Msg("replayed")

	if err := os.MkdirAll(cmd.Out, 0o755); err != nil {
		return SessionState{}, fmt.Errorf("failed to create output directory %s: %w", cmd.Out, err)
	}

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(context.Context) error {
		return writeFile(filepath.Join(cmd.Out, "snapshot.png"), s.WriteSnapshot)
	})
	if preview.Tag != "" {
		p.Go(func(context.Context) error {
			return writeFile(filepath.Join(cmd.Out, "preview.png"), s.WritePreview)
		})
	}
	if cmd.Crop {
		p.Go(func(ctx context.Context) error {
			executor := OperationExecutor{BaseDir: dir, OutputDir: cmd.Out, Cropper: NewImagingCropper()}
			return executor.Exec(ctx, Operations{{Crop: &CropOperation{Filename: file, Crop: s.Crop()}}})
		})
	}
	if err := p.Wait(); err != nil {
		return SessionState{}, err
	}
	return s.State(), nil
}

func (cmd *replayCmd) readEvents(stdin io.Reader) ([]Event, error) {
	if cmd.Events == "-" {
		return readEvents(stdin)
	}
	f, err := os.Open(cmd.Events)
	if err != nil {
		return nil, fmt.Errorf("failed to open events: %w", err)
	}
	defer f.Close()
	return readEvents(f)
}

// readEvents parses one JSON event per line. Blank lines and lines
// starting with # are skipped.
func readEvents(r io.Reader) ([]Event, error) {
	var events []Event
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(text), &ev); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}

// parsePreview reads WIDTHxHEIGHT into a canvas target.
func parsePreview(s string) (PreviewTarget, error) {
	if s == "" {
		return PreviewTarget{}, nil
	}
	var w, h int
	if _, err := fmt.Sscanf(strings.ToLower(s), "%dx%d", &w, &h); err != nil || w <= 0 || h <= 0 {
		return PreviewTarget{}, fmt.Errorf("invalid preview size %q, want WIDTHxHEIGHT", s)
	}
	return PreviewTarget{Tag: "canvas", Width: w, Height: h}, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
