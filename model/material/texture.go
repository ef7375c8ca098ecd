package material

import (
	"math"

	"github.com/hmaddocks/raytracing/model/geom"
)

// Texture resolves a surface color from texture coordinates and the hit point.
type Texture interface {
	Value(u, v float64, p geom.Point3) geom.Color
}

// SolidColor is a uniform texture.
type SolidColor struct {
	Color geom.Color
}

// NewSolidColor creates a uniform texture.
func NewSolidColor(c geom.Color) *SolidColor {
	return &SolidColor{Color: c}
}

func (s *SolidColor) Value(_, _ float64, _ geom.Point3) geom.Color {
	return s.Color
}

// checkerFrequency controls the spatial period of the checker pattern.
const checkerFrequency = 10.0

// Checker alternates between two textures based on the sign of a
// three-dimensional sine product at the hit point.
type Checker struct {
	Odd  Texture
	Even Texture
}

// NewChecker creates a checker texture from its two phases.
func NewChecker(odd, even Texture) *Checker {
	return &Checker{Odd: odd, Even: even}
}

func (c *Checker) Value(u, v float64, p geom.Point3) geom.Color {
	sines := math.Sin(checkerFrequency*p.X) * math.Sin(checkerFrequency*p.Y) * math.Sin(checkerFrequency*p.Z)
	if sines < 0 {
		return c.Odd.Value(u, v, p)
	}
	return c.Even.Value(u, v, p)
}
