package geom

import (
	"math"
	"math/rand"
)

// Sampling helpers take an explicit *rand.Rand so that render workers can own
// independent generators and stay free of shared-state contention.

// RandomFloat returns a value in [min, max).
func RandomFloat(rng *rand.Rand, min, max float64) float64 {
	return min + (max-min)*rng.Float64()
}

// DegreesToRadians converts an angle in degrees to radians.
func DegreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

// RandomVec returns a vector with every component in [min, max).
func RandomVec(rng *rand.Rand, min, max float64) Vec3 {
	return Vec3{
		X: RandomFloat(rng, min, max),
		Y: RandomFloat(rng, min, max),
		Z: RandomFloat(rng, min, max),
	}
}

// RandomUnitVec returns a uniformly distributed unit vector, rejecting
// candidates outside the unit sphere and degenerate near-zero lengths.
func RandomUnitVec(rng *rand.Rand) Vec3 {
	for {
		p := RandomVec(rng, -1, 1)
		lengthSquared := p.LengthSquared()
		if 1e-160 < lengthSquared && lengthSquared <= 1.0 {
			return p.Div(math.Sqrt(lengthSquared))
		}
	}
}

// RandomOnHemisphere returns a unit vector in the hemisphere around normal.
func RandomOnHemisphere(rng *rand.Rand, normal Vec3) Vec3 {
	onUnitSphere := RandomUnitVec(rng)
	if onUnitSphere.Dot(normal) > 0 {
		return onUnitSphere
	}
	return onUnitSphere.Neg()
}

// RandomInUnitDisk returns a vector inside the unit disk on the XY plane.
func RandomInUnitDisk(rng *rand.Rand) Vec3 {
	for {
		p := Vec3{X: RandomFloat(rng, -1, 1), Y: RandomFloat(rng, -1, 1)}
		if p.LengthSquared() < 1 {
			return p
		}
	}
}

// SampleSquare returns a jitter offset in [-0.5, 0.5) x [-0.5, 0.5).
func SampleSquare(rng *rand.Rand) Vec3 {
	return Vec3{X: rng.Float64() - 0.5, Y: rng.Float64() - 0.5}
}
