package main

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// imageExtensions are the files listed for cropping. Every one has a
// decoder registered above.
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

type ImageInfo struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

type FileInfo struct {
	Name       string    `json:"name"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at"`
	URL        string    `json:"url"`
	Image      ImageInfo `json:"image"`
}

type Directory struct {
	Name  string     `json:"name"`
	Files []FileInfo `json:"files"`
}

func isImage(path string) bool {
	return slices.Contains(imageExtensions, strings.ToLower(filepath.Ext(path)))
}

// walkImages lists the pictures below rootPath, skipping outputDir. Files
// whose header cannot be read are listed without dimensions.
func walkImages(ctx context.Context, rootPath, outputDir string) (Directory, error) {
	var files []FileInfo

	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if outputDir != "" && filepath.Clean(path) == filepath.Clean(outputDir) {
				return filepath.SkipDir
			}
			return nil
		}
		if !isImage(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to get file info: %w", err)
		}
		relPath, err := filepath.Rel(rootPath, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		files = append(files, FileInfo{
			Name:       filepath.ToSlash(relPath),
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return Directory{}, err
	}

	for i := range files {
		img, err := readImageInfo(filepath.Join(rootPath, filepath.FromSlash(files[i].Name)))
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("filename", files[i].Name).Msg("cannot read image dimensions")
			continue
		}
		files[i].Image = img
	}

	return Directory{
		Name:  filepath.Base(rootPath),
		Files: files,
	}, nil
}

// readImageInfo reads the dimensions from the image header without
// decoding the pixels.
func readImageInfo(path string) (ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("failed to read image header: %w", err)
	}
	return ImageInfo{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}
