package geom

// AABB is an axis-aligned bounding box expressed as one interval per axis.
type AABB struct {
	X Interval
	Y Interval
	Z Interval
}

// NewAABB builds a box from its three axis intervals.
func NewAABB(x, y, z Interval) AABB {
	return AABB{X: x, Y: y, Z: z}
}

// AABBFromPoints builds the box spanned by two opposite corners; per-axis
// ordering of the corners does not matter.
func AABBFromPoints(a, b Point3) AABB {
	ordered := func(lo, hi float64) Interval {
		if lo < hi {
			return Interval{Min: lo, Max: hi}
		}
		return Interval{Min: hi, Max: lo}
	}
	return AABB{
		X: ordered(a.X, b.X),
		Y: ordered(a.Y, b.Y),
		Z: ordered(a.Z, b.Z),
	}
}

// SurroundingBox returns the smallest box enclosing both arguments.
func SurroundingBox(a, b AABB) AABB {
	merge := func(p, q Interval) Interval {
		out := p
		if q.Min < out.Min {
			out.Min = q.Min
		}
		if q.Max > out.Max {
			out.Max = q.Max
		}
		return out
	}
	return AABB{X: merge(a.X, b.X), Y: merge(a.Y, b.Y), Z: merge(a.Z, b.Z)}
}

// AxisInterval returns the interval for axis index 0..2.
func (b AABB) AxisInterval(axis int) Interval {
	switch axis {
	case 0:
		return b.X
	case 1:
		return b.Y
	default:
		return b.Z
	}
}

// Hit performs the slab test and reports whether the ray crosses the box
// within rayT. The interval collapses to empty when tMax <= tMin.
func (b AABB) Hit(r Ray, rayT Interval) bool {
	tMin, tMax := rayT.Min, rayT.Max
	for axis := 0; axis < 3; axis++ {
		interval := b.AxisInterval(axis)
		invD := 1.0 / r.Dir.Axis(axis)
		origin := r.Origin.Axis(axis)

		t0 := (interval.Min - origin) * invD
		t1 := (interval.Max - origin) * invD
		if invD < 0 {
			t0, t1 = t1, t0
		}

		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMax <= tMin {
			return false
		}
	}
	return true
}
