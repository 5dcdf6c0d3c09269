package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"
)

var ErrCropOutside = errors.New("crop rectangle is outside image bounds")

// ImagingCropper cuts relative crops out of decoded pictures and re-encodes
// them.
type ImagingCropper struct {
	Format  imaging.Format
	Quality int
}

// NewImagingCropper returns a cropper writing JPEG at quality 90.
func NewImagingCropper() *ImagingCropper {
	return &ImagingCropper{Format: imaging.JPEG, Quality: 90}
}

// Crop decodes r honoring EXIF orientation, so the crop matches what the
// browser showed, and writes the cropped picture to w.
func (c *ImagingCropper) Crop(ctx context.Context, r io.Reader, w io.Writer, crop Crop) error {
	src, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	rect, err := cropRect(src.Bounds(), crop)
	if err != nil {
		return err
	}
	return imaging.Encode(w, imaging.Crop(src, rect), c.Format, imaging.JPEGQuality(c.Quality))
}

// cropRect converts crop to pixels of bounds, trimmed to fit.
func cropRect(bounds image.Rectangle, crop Crop) (image.Rectangle, error) {
	iw, ih := float64(bounds.Dx()), float64(bounds.Dy())
	x := bounds.Min.X + int(math.Round(crop.X*iw))
	y := bounds.Min.Y + int(math.Round(crop.Y*ih))
	width := int(math.Round(crop.Width * iw))
	height := int(math.Round(crop.Height * ih))
	if width <= 0 || height <= 0 {
		return image.Rectangle{}, fmt.Errorf("invalid crop dimensions: width=%d, height=%d", width, height)
	}

	rect := image.Rect(x, y, x+width, y+height).Intersect(bounds)
	if rect.Empty() {
		return image.Rectangle{}, ErrCropOutside
	}
	return rect, nil
}
