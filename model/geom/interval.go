package geom

import "math"

// Interval is a closed range on the real line.
type Interval struct {
	Min float64
	Max float64
}

// NewInterval returns the interval [min, max].
func NewInterval(min, max float64) Interval {
	return Interval{Min: min, Max: max}
}

// EmptyInterval contains nothing; UniverseInterval contains everything.
var (
	EmptyInterval    = Interval{Min: math.Inf(1), Max: math.Inf(-1)}
	UniverseInterval = Interval{Min: math.Inf(-1), Max: math.Inf(1)}
)

func (i Interval) Size() float64 {
	return i.Max - i.Min
}

// Contains reports whether value lies in the closed interval.
func (i Interval) Contains(value float64) bool {
	return i.Min <= value && value <= i.Max
}

// Surrounds reports whether value lies strictly inside the interval.
func (i Interval) Surrounds(value float64) bool {
	return i.Min < value && value < i.Max
}

// Clamp limits value to the interval bounds.
func (i Interval) Clamp(value float64) float64 {
	if value < i.Min {
		return i.Min
	}
	if value > i.Max {
		return i.Max
	}
	return value
}

// Expand grows the interval by delta, half on each side.
func (i Interval) Expand(delta float64) Interval {
	padding := delta / 2
	return Interval{Min: i.Min - padding, Max: i.Max + padding}
}
