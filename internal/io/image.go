package ioutils

import (
	"bufio"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"os"

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// ImageInfo describes a decoded image header.
type ImageInfo struct {
	// Format is the registered decoder name, e.g. "jpeg" or "webp".
	Format string

	Width  int
	Height int
}

// String returns e.g. "jpeg 3000x3000".
func (i ImageInfo) String() string {
	return fmt.Sprintf("%s %dx%d", i.Format, i.Width, i.Height)
}

// ImageService inspects downloaded cover art.
//
// Example usage:
//
//	svc := NewImageService()
//	info, err := svc.ProbeFile(coverPath)
//	if err == nil {
//	    fmt.Printf("saved %s\n", info)
//	}
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// ProbeFile reads the image header at path and returns its format and
// dimensions. Only the header is decoded; pixel data is never read.
//
// Returns an error if the file cannot be opened or is not in a registered
// image format (JPEG, PNG, GIF, WebP, BMP, TIFF).
func (s *ImageService) ProbeFile(path string) (ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImageInfo{}, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(bufio.NewReader(f))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("probe %s: %w", path, err)
	}

	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
