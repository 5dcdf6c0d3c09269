package main

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"croptastic/internal/geometry"
)

var ErrEmptyOperation = errors.New("operation has neither crop nor pick")

type Operations = []Operation

// Operation is one thing to do with a picture once the user saves. Exactly
// one of the fields is set.
type Operation struct {
	Crop *CropOperation
	Pick *PickOperation
}

func (o *Operation) UnmarshalJSON(data []byte) error {
	var op struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &op); err != nil {
		return fmt.Errorf("failed to unmarshal operation: %w", err)
	}

	switch op.Type {
	case "crop":
		var crop CropOperation
		if err := json.Unmarshal(data, &crop); err != nil {
			return fmt.Errorf("failed to unmarshal crop operation: %w", err)
		}
		o.Crop = &crop
	case "pick":
		var pick PickOperation
		if err := json.Unmarshal(data, &pick); err != nil {
			return fmt.Errorf("failed to unmarshal pick operation: %w", err)
		}
		o.Pick = &pick
	default:
		return fmt.Errorf("unknown operation %q", op.Type)
	}
	return nil
}

// MarshalJSON writes the same tagged form UnmarshalJSON reads.
func (o Operation) MarshalJSON() ([]byte, error) {
	switch {
	case o.Crop != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			CropOperation
		}{"crop", *o.Crop})
	case o.Pick != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			PickOperation
		}{"pick", *o.Pick})
	default:
		return nil, ErrEmptyOperation
	}
}

// Crop is a region of a picture. All fields are fractions of the picture
// width or height, so a crop made on a scaled-down view applies to the
// full-size file.
type Crop struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

// CropFromRegion converts a viewport region relative to its container.
func CropFromRegion(r geometry.Rect) Crop {
	return Crop{X: r.X, Y: r.Y, Width: r.W, Height: r.H}
}

func (c Crop) String() string {
	return fmt.Sprintf("crop(x=%.2f,y=%.2f,w=%.2f,h=%.2f)", c.X, c.Y, c.Width, c.Height)
}

// ID names the crop in output files. Crops equal to two decimals share it.
func (c Crop) ID() string {
	return fmt.Sprintf("%x", md5.Sum([]byte(c.String())))
}

type CropOperation struct {
	Filename string `json:"filename"`
	Crop     Crop   `json:"crop"`
	// Session names a live viewport to take the filename and crop from
	// when they are left empty.
	Session string `json:"session,omitempty"`
}

type PickOperation struct {
	Filename string `json:"filename"`
}

type Cropper interface {
	Crop(ctx context.Context, r io.Reader, w io.Writer, crop Crop) error
}

// OperationExecutor applies operations to files under BaseDir and writes
// results to OutputDir.
type OperationExecutor struct {
	BaseDir   string
	OutputDir string
	Cropper   Cropper
}

func (r OperationExecutor) Exec(ctx context.Context, ops []Operation) error {
	if len(ops) == 0 {
		log.Ctx(ctx).Warn().Msg("no operations to execute")
		return nil
	}

	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", r.OutputDir, err)
	}

	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(runtime.NumCPU())
	for _, op := range ops {
		p.Go(func(ctx context.Context) error {
			if err := r.executeOperation(ctx, op); err != nil {
				log.Ctx(ctx).Error().Err(err).
					Interface("op", op).
					Msg("failed to execute operation")
				return err
			}
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		log.Ctx(ctx).Error().
			Err(err).
			Msg("finished with errors")
		return err
	}
	return nil
}

func (r OperationExecutor) executeOperation(ctx context.Context, op Operation) error {
	switch {
	case op.Crop != nil:
		return r.executeCrop(ctx, *op.Crop)
	case op.Pick != nil:
		return r.executePick(ctx, *op.Pick)
	default:
		return ErrEmptyOperation
	}
}

// CropPath returns where the result of op is written.
func (r OperationExecutor) CropPath(op CropOperation) string {
	return filepath.Join(r.OutputDir, fmt.Sprintf("%s-%s.jpg", filepath.Base(op.Filename), op.Crop.ID()))
}

func (r OperationExecutor) executeCrop(ctx context.Context, op CropOperation) error {
	log.Ctx(ctx).Info().Str("filename", op.Filename).Stringer("crop", op.Crop).Msg("cropping")
	sourcePath := filepath.Join(r.BaseDir, op.Filename)
	f, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", sourcePath, err)
	}
	defer f.Close()

	var b bytes.Buffer
	if err := r.Cropper.Crop(ctx, f, &b, op.Crop); err != nil {
		return fmt.Errorf("failed to crop %s: %w", op.Filename, err)
	}

	croppedPath := r.CropPath(op)
	if err := os.WriteFile(croppedPath, b.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write cropped file %s: %w", croppedPath, err)
	}
	return nil
}

func (r OperationExecutor) executePick(ctx context.Context, op PickOperation) error {
	log.Ctx(ctx).Info().Str("filename", op.Filename).Msg("picking")
	sourcePath := filepath.Join(r.BaseDir, op.Filename)
	savePath := filepath.Join(r.OutputDir, filepath.Base(op.Filename))
	if err := copyFile(sourcePath, savePath); err != nil {
		return fmt.Errorf("failed to pick file %s: %w", op.Filename, err)
	}
	return nil
}

func copyFile(sourcePath, destPath string) error {
	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", sourcePath, err)
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", destPath, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("failed to copy file from %s to %s: %w", sourcePath, destPath, err)
	}
	return dst.Close()
}
