package render

import (
	"image"
	"image/color"
	"sync"

	"github.com/hmaddocks/raytracing/model/geom"
)

// Framebuffer accumulates averaged pixel colors in linear space. Workers
// write disjoint tile regions concurrently; the lock keeps reads during
// encoding consistent with late writers.
type Framebuffer struct {
	width  int
	height int
	pixels []geom.Color
	mux    sync.RWMutex
}

// NewFramebuffer allocates a black width x height buffer.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		width:  width,
		height: height,
		pixels: make([]geom.Color, width*height),
	}
}

func (f *Framebuffer) Width() int  { return f.width }
func (f *Framebuffer) Height() int { return f.height }

// Set stores the color at (x, y); out-of-bounds writes are ignored.
func (f *Framebuffer) Set(x, y int, c geom.Color) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	f.mux.Lock()
	f.pixels[y*f.width+x] = c
	f.mux.Unlock()
}

// At returns the color at (x, y).
func (f *Framebuffer) At(x, y int) geom.Color {
	f.mux.RLock()
	defer f.mux.RUnlock()
	return f.pixels[y*f.width+x]
}

// Image converts the buffer to an 8-bit RGBA image with gamma-2 correction.
func (f *Framebuffer) Image() *image.RGBA {
	f.mux.RLock()
	defer f.mux.RUnlock()
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			r, g, b := f.pixels[y*f.width+x].Gamma().Bytes()
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}
