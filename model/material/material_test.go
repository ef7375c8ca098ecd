package material

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmaddocks/raytracing/model/geom"
	"github.com/hmaddocks/raytracing/model/shape"
)

func surfaceHit() *shape.Hit {
	return &shape.Hit{
		Point:     geom.P(0, 0, 0),
		Normal:    geom.V(0, 1, 0),
		FrontFace: true,
	}
}

func TestLambertian_Scatter(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := NewLambertianColor(geom.RGB(0.8, 0.2, 0.2))
	in := geom.Ray{Origin: geom.P(0, 1, 1), Dir: geom.V(0, -1, -1), Time: 0.3}

	for i := 0; i < 100; i++ {
		attenuation, scattered, ok := m.Scatter(rng, in, surfaceHit())
		require.True(t, ok)
		assert.Equal(t, geom.RGB(0.8, 0.2, 0.2), attenuation)
		assert.Equal(t, geom.P(0, 0, 0), scattered.Origin)
		assert.Equal(t, in.Time, scattered.Time)
		// direction = normal + unit vector, so it never points into the surface
		assert.Greater(t, scattered.Dir.Dot(geom.V(0, 1, 0)), -1e-9)
		assert.False(t, scattered.Dir.NearZero())
	}
}

func TestMetal_Scatter(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := NewMetal(geom.RGB(0.9, 0.9, 0.9), 0)
	in := geom.Ray{Origin: geom.P(-1, 1, 0), Dir: geom.V(1, -1, 0).Unit()}

	attenuation, scattered, ok := m.Scatter(rng, in, surfaceHit())
	require.True(t, ok)
	assert.Equal(t, geom.RGB(0.9, 0.9, 0.9), attenuation)

	// perfect mirror: incidence angle equals reflection angle
	expected := geom.V(1, 1, 0).Unit()
	assert.InDelta(t, expected.X, scattered.Dir.X, 1e-9)
	assert.InDelta(t, expected.Y, scattered.Dir.Y, 1e-9)
}

func TestMetal_FuzzClamped(t *testing.T) {
	assert.Equal(t, 1.0, NewMetal(geom.White, 5).Fuzz)
	assert.Equal(t, 0.0, NewMetal(geom.White, -1).Fuzz)
}

func TestMetal_GrazingAbsorbed(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := NewMetal(geom.White, 1)
	// grazing incidence: full fuzz frequently pushes the ray under the surface
	in := geom.Ray{Origin: geom.P(-1, 0.001, 0), Dir: geom.V(1, -0.001, 0).Unit()}

	absorbed := 0
	for i := 0; i < 200; i++ {
		if _, _, ok := m.Scatter(rng, in, surfaceHit()); !ok {
			absorbed++
		}
	}
	assert.Greater(t, absorbed, 0)
}

func TestDielectric_Scatter(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := NewDielectric(1.5)

	// head-on rays always refract straight through
	in := geom.Ray{Origin: geom.P(0, 1, 0), Dir: geom.V(0, -1, 0)}
	attenuation, scattered, ok := m.Scatter(rng, in, surfaceHit())
	require.True(t, ok)
	assert.Equal(t, geom.White, attenuation)
	assert.Less(t, scattered.Dir.Y, 0.0)
}

func TestDielectric_TotalInternalReflection(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := NewDielectric(1.5)

	// exiting the dense medium at a shallow angle forces reflection
	hit := surfaceHit()
	hit.FrontFace = false
	in := geom.Ray{Origin: geom.P(-1, 0.2, 0), Dir: geom.V(1, -0.2, 0).Unit()}

	_, scattered, ok := m.Scatter(rng, in, hit)
	require.True(t, ok)
	assert.Greater(t, scattered.Dir.Y, 0.0)
}

func TestNormal_Scatter(t *testing.T) {
	m := NewNormal()
	in := geom.Ray{Origin: geom.P(0, 1, 0), Dir: geom.V(0, -1, 0), Time: 0.7}

	attenuation, scattered, ok := m.Scatter(nil, in, surfaceHit())
	require.True(t, ok)
	assert.Equal(t, geom.White, attenuation)
	assert.Equal(t, geom.V(0, 1, 0), scattered.Dir)
	assert.Equal(t, in.Time, scattered.Time)
}

func TestSolidColor(t *testing.T) {
	tex := NewSolidColor(geom.RGB(0.1, 0.2, 0.3))
	assert.Equal(t, geom.RGB(0.1, 0.2, 0.3), tex.Value(0, 0, geom.P(0, 0, 0)))
	assert.Equal(t, geom.RGB(0.1, 0.2, 0.3), tex.Value(1, 1, geom.P(9, 9, 9)))
}

func TestChecker(t *testing.T) {
	odd := geom.RGB(1, 0, 0)
	even := geom.RGB(0, 1, 0)
	tex := NewChecker(NewSolidColor(odd), NewSolidColor(even))

	// sin(10x)sin(10y)sin(10z) at a point with all sines positive
	phase := math.Pi / 2 / checkerFrequency
	assert.Equal(t, even, tex.Value(0, 0, geom.P(phase, phase, phase)))
	// flipping one axis flips the sign
	assert.Equal(t, odd, tex.Value(0, 0, geom.P(-phase, phase, phase)))
}

func TestReflectance(t *testing.T) {
	// normal incidence matches the Fresnel r0 term
	r0 := math.Pow((1-1.5)/(1+1.5), 2)
	assert.InDelta(t, r0, reflectance(1, 1.5), 1e-9)
	// grazing incidence approaches total reflection
	assert.InDelta(t, 1, reflectance(0, 1.5), 1e-9)
}
