package image

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"github.com/hmaddocks/raytracing/model/geom"
	"github.com/hmaddocks/raytracing/runtime/render"
	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	_ "github.com/viant/afs/mem"
)

func testFramebuffer() *render.Framebuffer {
	fb := render.NewFramebuffer(2, 2)
	fb.Set(0, 0, geom.RGB(1, 0, 0))
	fb.Set(1, 0, geom.RGB(0, 1, 0))
	fb.Set(0, 1, geom.RGB(0, 0, 1))
	fb.Set(1, 1, geom.RGB(0.25, 0.25, 0.25))
	return fb
}

func TestEncodePPM(t *testing.T) {
	var buf bytes.Buffer
	err := EncodePPM(&buf, testFramebuffer())
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "P3", lines[0])
	assert.Equal(t, "2 2", lines[1])
	assert.Equal(t, "255", lines[2])
	assert.Equal(t, 7, len(lines))
	// Gamma-2 correction: channel 1.0 stays 255, 0.25 becomes sqrt -> 0.5 -> 128.
	assert.Equal(t, "255 0 0", lines[3])
	assert.Equal(t, "128 128 128", lines[6])
}

func TestEncodePNG(t *testing.T) {
	var buf bytes.Buffer
	err := EncodePNG(&buf, testFramebuffer())
	assert.NoError(t, err)

	img, err := png.Decode(&buf)
	assert.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
}

func TestService_Encode(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	service := New(fs)
	fb := testFramebuffer()

	ppmURL := "mem://localhost/render/out.ppm"
	assert.NoError(t, service.Encode(ctx, ppmURL, fb))
	data, err := fs.DownloadWithURL(ctx, ppmURL)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "P3\n2 2\n255\n"))

	pngURL := "mem://localhost/render/out.png"
	assert.NoError(t, service.Encode(ctx, pngURL, fb))
	data, err = fs.DownloadWithURL(ctx, pngURL)
	assert.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatPNG, FormatOf("out.png"))
	assert.Equal(t, FormatPNG, FormatOf("mem://localhost/a/b.PNG"))
	assert.Equal(t, FormatPPM, FormatOf("out.ppm"))
	assert.Equal(t, FormatPPM, FormatOf("out"))
}
