package geom

import "math"

// Color is a linear RGB triple with components nominally in [0, 1]; sampling
// accumulates above 1 until averaged.
type Color struct {
	R float64
	G float64
	B float64
}

// RGB is a shorthand constructor.
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b}
}

var (
	Black = Color{}
	White = Color{R: 1, G: 1, B: 1}
)

func (c Color) Add(o Color) Color {
	return Color{R: c.R + o.R, G: c.G + o.G, B: c.B + o.B}
}

// Scale multiplies every channel by s.
func (c Color) Scale(s float64) Color {
	return Color{R: c.R * s, G: c.G * s, B: c.B * s}
}

// Mul is the channel-wise product, used to attenuate bounced light.
func (c Color) Mul(o Color) Color {
	return Color{R: c.R * o.R, G: c.G * o.G, B: c.B * o.B}
}

// Gamma applies gamma-2 correction (square root per channel, negatives to 0).
func (c Color) Gamma() Color {
	root := func(v float64) float64 {
		if v > 0 {
			return math.Sqrt(v)
		}
		return 0
	}
	return Color{R: root(c.R), G: root(c.G), B: root(c.B)}
}

// intensity bounds a channel before byte conversion so that 1.0 maps to 255.
var intensity = Interval{Min: 0.000, Max: 0.999}

// Bytes converts the color to 8-bit channels, clamping each to [0, 0.999]
// and scaling by 256.
func (c Color) Bytes() (r, g, b uint8) {
	r = uint8(256 * intensity.Clamp(c.R))
	g = uint8(256 * intensity.Clamp(c.G))
	b = uint8(256 * intensity.Clamp(c.B))
	return r, g, b
}
