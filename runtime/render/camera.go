package render

import (
	"math"
	"math/rand"

	"github.com/hmaddocks/raytracing/model"
	"github.com/hmaddocks/raytracing/model/geom"
	"github.com/hmaddocks/raytracing/model/shape"
)

// Camera default values applied when the scene leaves a setting at zero.
const (
	defaultAspectRatio     = 1.0
	defaultImageWidth      = 100
	defaultSamplesPerPixel = 100
	defaultMaxDepth        = 10
	defaultVerticalFOV     = 90.0
)

var (
	defaultLookFrom = geom.P(-2, 2, 1)
	defaultLookAt   = geom.P(0, 0, -1)
	defaultVUp      = geom.V(0, 1, 0)
)

// Camera converts image coordinates into world-space rays and traces them
// through a scene. All fields are derived once at construction; the camera is
// immutable and safe for concurrent use given per-worker random generators.
type Camera struct {
	imageWidth        int
	imageHeight       int
	samplesPerPixel   int
	maxDepth          int
	pixelSamplesScale float64
	center            geom.Point3
	pixel00           geom.Point3
	pixelDeltaU       geom.Vec3
	pixelDeltaV       geom.Vec3
	defocusAngle      float64
	defocusDiskU      geom.Vec3
	defocusDiskV      geom.Vec3
	shutterOpen       float64
	shutterClose      float64
}

// NewCamera derives the full viewport geometry from a camera spec, filling in
// defaults for any zero-valued setting.
func NewCamera(spec model.CameraSpec) *Camera {
	aspectRatio := spec.AspectRatio
	if aspectRatio == 0 {
		aspectRatio = defaultAspectRatio
	}
	imageWidth := spec.ImageWidth
	if imageWidth == 0 {
		imageWidth = defaultImageWidth
	}
	samplesPerPixel := spec.SamplesPerPixel
	if samplesPerPixel == 0 {
		samplesPerPixel = defaultSamplesPerPixel
	}
	maxDepth := spec.MaxDepth
	if maxDepth == 0 {
		maxDepth = defaultMaxDepth
	}
	verticalFOV := spec.VerticalFOV
	if verticalFOV == 0 {
		verticalFOV = defaultVerticalFOV
	}
	focusDistance := spec.FocusDistance
	if focusDistance == 0 {
		focusDistance = 1.0
	}
	lookFrom := tripleOr(spec.LookFrom, defaultLookFrom)
	lookAt := tripleOr(spec.LookAt, defaultLookAt)
	vup := tripleOr(spec.VUp, defaultVUp)

	imageHeight := int(float64(imageWidth) / aspectRatio)
	if imageHeight < 1 {
		imageHeight = 1
	}

	center := lookFrom

	theta := geom.DegreesToRadians(verticalFOV)
	h := math.Tan(theta / 2)
	viewportHeight := 2 * h * focusDistance
	viewportWidth := viewportHeight * (float64(imageWidth) / float64(imageHeight))

	w := lookFrom.Sub(lookAt).Unit()
	u := vup.Cross(w).Unit()
	v := w.Cross(u).Unit()

	viewportU := u.Scale(viewportWidth)
	viewportV := v.Neg().Scale(viewportHeight)

	pixelDeltaU := viewportU.Div(float64(imageWidth))
	pixelDeltaV := viewportV.Div(float64(imageHeight))

	viewportUpperLeft := center.
		Sub(w.Scale(focusDistance)).
		Sub(viewportU.Div(2)).
		Sub(viewportV.Div(2))
	pixel00 := viewportUpperLeft.Add(pixelDeltaU.Scale(0.5)).Add(pixelDeltaV.Scale(0.5))

	defocusRadius := focusDistance * math.Tan(geom.DegreesToRadians(spec.DefocusAngle)/2)

	return &Camera{
		imageWidth:        imageWidth,
		imageHeight:       imageHeight,
		samplesPerPixel:   samplesPerPixel,
		maxDepth:          maxDepth,
		pixelSamplesScale: 1.0 / float64(samplesPerPixel),
		center:            center,
		pixel00:           pixel00,
		pixelDeltaU:       pixelDeltaU,
		pixelDeltaV:       pixelDeltaV,
		defocusAngle:      spec.DefocusAngle,
		defocusDiskU:      u.Scale(defocusRadius),
		defocusDiskV:      v.Scale(defocusRadius),
		shutterOpen:       spec.ShutterOpen,
		shutterClose:      spec.ShutterClose,
	}
}

func tripleOr(v []float64, fallback geom.Vec3) geom.Vec3 {
	if len(v) != 3 {
		return fallback
	}
	return geom.V(v[0], v[1], v[2])
}

// Width returns the image width in pixels.
func (c *Camera) Width() int { return c.imageWidth }

// Height returns the image height in pixels.
func (c *Camera) Height() int { return c.imageHeight }

// SamplesPerPixel returns the per-pixel sample count.
func (c *Camera) SamplesPerPixel() int { return c.samplesPerPixel }

// ray builds a jittered camera ray through pixel (i, j), originating on the
// defocus disk when depth of field is enabled, at a random shutter time.
func (c *Camera) ray(rng *rand.Rand, i, j int) geom.Ray {
	offset := geom.SampleSquare(rng)
	pixelSample := c.pixel00.
		Add(c.pixelDeltaU.Scale(float64(i) + offset.X)).
		Add(c.pixelDeltaV.Scale(float64(j) + offset.Y))

	origin := c.center
	if c.defocusAngle > 0 {
		origin = c.defocusDiskSample(rng)
	}
	time := c.shutterOpen
	if c.shutterClose > c.shutterOpen {
		time = geom.RandomFloat(rng, c.shutterOpen, c.shutterClose)
	}
	return geom.Ray{Origin: origin, Dir: pixelSample.Sub(origin), Time: time}
}

func (c *Camera) defocusDiskSample(rng *rand.Rand) geom.Point3 {
	p := geom.RandomInUnitDisk(rng)
	return c.center.Add(c.defocusDiskU.Scale(p.X)).Add(c.defocusDiskV.Scale(p.Y))
}

// rayColor traces a ray through the world, following scattered bounces up to
// the depth budget. Exhausted depth contributes no light.
func (c *Camera) rayColor(rng *rand.Rand, r geom.Ray, depth int, world shape.Hittable) geom.Color {
	if depth <= 0 {
		return geom.Black
	}

	// 0.001 skips self-intersections caused by floating point error.
	if hit, ok := world.Hit(r, geom.NewInterval(0.001, math.Inf(1))); ok {
		if hit.Material == nil {
			return geom.Black
		}
		attenuation, scattered, ok := hit.Material.Scatter(rng, r, hit)
		if !ok {
			return geom.Black
		}
		return c.rayColor(rng, scattered, depth-1, world).Mul(attenuation)
	}

	// Background: vertical white to light blue gradient.
	unitDir := r.Dir.Unit()
	a := 0.5 * (unitDir.Y + 1.0)
	return geom.White.Scale(1 - a).Add(geom.RGB(0.5, 0.7, 1.0).Scale(a))
}

// RenderPixel traces all samples for pixel (i, j) and returns the average.
func (c *Camera) RenderPixel(rng *rand.Rand, world shape.Hittable, i, j int) geom.Color {
	pixel := geom.Black
	for s := 0; s < c.samplesPerPixel; s++ {
		pixel = pixel.Add(c.rayColor(rng, c.ray(rng, i, j), c.maxDepth, world))
	}
	return pixel.Scale(c.pixelSamplesScale)
}

// RenderTile renders every pixel of the tile into the framebuffer.
func (c *Camera) RenderTile(rng *rand.Rand, world shape.Hittable, fb *Framebuffer, tile *Tile) {
	for j := tile.Y0; j < tile.Y1; j++ {
		for i := tile.X0; i < tile.X1; i++ {
			fb.Set(i, j, c.RenderPixel(rng, world, i, j))
		}
	}
}
