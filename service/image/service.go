package image

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/hmaddocks/raytracing/runtime/render"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

// Supported output formats.
const (
	FormatPPM = "ppm"
	FormatPNG = "png"
)

// Service encodes framebuffers into image files written through the abstract
// file system, so outputs can target local disk, memory or object storage.
type Service struct {
	fs afs.Service
}

// New creates an image service
func New(fs afs.Service) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs}
}

// Encode writes the framebuffer to the destination URL, choosing the format
// from the file extension. An unknown or missing extension defaults to PPM.
func (s *Service) Encode(ctx context.Context, URL string, fb *render.Framebuffer) error {
	if fb == nil {
		return fmt.Errorf("framebuffer was nil")
	}
	var buf bytes.Buffer
	switch FormatOf(URL) {
	case FormatPNG:
		if err := EncodePNG(&buf, fb); err != nil {
			return fmt.Errorf("failed to encode png: %w", err)
		}
	default:
		if err := EncodePPM(&buf, fb); err != nil {
			return fmt.Errorf("failed to encode ppm: %w", err)
		}
	}
	if err := s.fs.Upload(ctx, URL, file.DefaultFileOsMode, &buf); err != nil {
		return fmt.Errorf("failed to write image to %s: %w", URL, err)
	}
	return nil
}

// FormatOf maps a destination URL to an output format.
func FormatOf(URL string) string {
	switch strings.ToLower(filepath.Ext(URL)) {
	case ".png":
		return FormatPNG
	default:
		return FormatPPM
	}
}

// EncodePPM writes the framebuffer as a plain-text P3 PPM image, one pixel
// per line, gamma corrected.
func EncodePPM(w io.Writer, fb *render.Framebuffer) error {
	width, height := fb.Width(), fb.Height()
	if _, err := fmt.Fprintf(w, "P3\n%d %d\n255\n", width, height); err != nil {
		return err
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b := fb.At(x, y).Gamma().Bytes()
			if _, err := fmt.Fprintf(w, "%d %d %d\n", r, g, b); err != nil {
				return err
			}
		}
	}
	return nil
}

// EncodePNG writes the framebuffer as a PNG image.
func EncodePNG(w io.Writer, fb *render.Framebuffer) error {
	return png.Encode(w, fb.Image())
}
