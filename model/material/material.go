package material

import (
	"math"
	"math/rand"

	"github.com/hmaddocks/raytracing/model/geom"
	"github.com/hmaddocks/raytracing/model/shape"
)

// Lambertian is a diffuse surface; scatter direction is the surface normal
// perturbed by a random unit vector, attenuated by the texture.
type Lambertian struct {
	Texture Texture
}

// NewLambertian creates a diffuse material over a texture.
func NewLambertian(texture Texture) *Lambertian {
	return &Lambertian{Texture: texture}
}

// NewLambertianColor creates a diffuse material with a solid albedo.
func NewLambertianColor(albedo geom.Color) *Lambertian {
	return &Lambertian{Texture: NewSolidColor(albedo)}
}

func (m *Lambertian) Scatter(rng *rand.Rand, in geom.Ray, hit *shape.Hit) (geom.Color, geom.Ray, bool) {
	direction := hit.Normal.Add(geom.RandomUnitVec(rng))
	// A random vector opposite the normal can cancel it out; fall back to the
	// normal itself.
	if direction.NearZero() {
		direction = hit.Normal
	}
	scattered := geom.Ray{Origin: hit.Point, Dir: direction, Time: in.Time}
	attenuation := m.Texture.Value(hit.U, hit.V, hit.Point)
	return attenuation, scattered, true
}

// Metal reflects rays about the normal, with optional fuzz roughening the
// reflection. Fuzz is clamped to [0, 1].
type Metal struct {
	Albedo geom.Color
	Fuzz   float64
}

// NewMetal creates a reflective material; fuzz outside [0, 1] is clamped.
func NewMetal(albedo geom.Color, fuzz float64) *Metal {
	return &Metal{Albedo: albedo, Fuzz: math.Min(math.Max(fuzz, 0), 1)}
}

func (m *Metal) Scatter(rng *rand.Rand, in geom.Ray, hit *shape.Hit) (geom.Color, geom.Ray, bool) {
	reflected := in.Dir.Reflect(hit.Normal)
	reflected = reflected.Unit().Add(geom.RandomUnitVec(rng).Scale(m.Fuzz))
	scattered := geom.Ray{Origin: hit.Point, Dir: reflected, Time: in.Time}
	// Fuzz can push the reflection under the surface; absorb those rays.
	ok := scattered.Dir.Dot(hit.Normal) > 0
	return m.Albedo, scattered, ok
}

// Dielectric refracts rays through a transparent medium, reflecting when
// refraction is impossible or when Schlick reflectance wins the coin toss.
type Dielectric struct {
	RefractionIndex float64
}

// NewDielectric creates a transparent material with the given refractive index.
func NewDielectric(refractionIndex float64) *Dielectric {
	return &Dielectric{RefractionIndex: refractionIndex}
}

func (m *Dielectric) Scatter(rng *rand.Rand, in geom.Ray, hit *shape.Hit) (geom.Color, geom.Ray, bool) {
	ri := m.RefractionIndex
	if hit.FrontFace {
		ri = 1.0 / m.RefractionIndex
	}

	unitDir := in.Dir.Unit()
	cosTheta := math.Min(unitDir.Neg().Dot(hit.Normal), 1.0)
	sinTheta := math.Sqrt(1.0 - cosTheta*cosTheta)

	var direction geom.Vec3
	cannotRefract := ri*sinTheta > 1.0
	if cannotRefract || reflectance(cosTheta, ri) > rng.Float64() {
		direction = unitDir.Reflect(hit.Normal)
	} else {
		direction = unitDir.Refract(hit.Normal, ri)
	}

	scattered := geom.Ray{Origin: hit.Point, Dir: direction, Time: in.Time}
	return geom.White, scattered, true
}

// reflectance is Schlick's polynomial approximation.
func reflectance(cosine, refractionIndex float64) float64 {
	r0 := (1 - refractionIndex) / (1 + refractionIndex)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}

// Normal is a diagnostic material that scatters along the surface normal with
// white attenuation; useful for inspecting geometry without shading.
type Normal struct{}

// NewNormal creates the diagnostic material.
func NewNormal() *Normal {
	return &Normal{}
}

func (m *Normal) Scatter(_ *rand.Rand, in geom.Ray, hit *shape.Hit) (geom.Color, geom.Ray, bool) {
	scattered := geom.Ray{Origin: hit.Point, Dir: hit.Normal, Time: in.Time}
	return geom.White, scattered, true
}

var (
	_ shape.Material = (*Lambertian)(nil)
	_ shape.Material = (*Metal)(nil)
	_ shape.Material = (*Dielectric)(nil)
	_ shape.Material = (*Normal)(nil)
)
