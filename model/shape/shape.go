package shape

import (
	"math/rand"

	"github.com/hmaddocks/raytracing/model/geom"
)

// Material scatters an incoming ray at a surface intersection. ok is false
// when the ray is absorbed. Implementations live in model/material; the
// interface is declared here, on the consumer side, so shapes can reference
// materials without an import cycle.
type Material interface {
	Scatter(rng *rand.Rand, in geom.Ray, hit *Hit) (attenuation geom.Color, scattered geom.Ray, ok bool)
}

// Hit describes a ray-surface intersection.
type Hit struct {
	Point     geom.Point3
	Normal    geom.Vec3
	T         float64
	U         float64
	V         float64
	FrontFace bool
	Material  Material
}

// SetFaceNormal orients the stored normal against the ray. outward is assumed
// to have unit length.
func (h *Hit) SetFaceNormal(r geom.Ray, outward geom.Vec3) {
	h.FrontFace = r.Dir.Dot(outward) < 0
	if h.FrontFace {
		h.Normal = outward
	} else {
		h.Normal = outward.Neg()
	}
}

// Hittable is anything a ray can intersect.
type Hittable interface {
	// Hit returns the closest intersection with ray parameter strictly inside
	// rayT, or ok=false when the ray misses.
	Hit(r geom.Ray, rayT geom.Interval) (*Hit, bool)

	// Bounds returns the bounding box covering the shape over [time0, time1].
	// ok is false for unbounded shapes.
	Bounds(time0, time1 float64) (geom.AABB, bool)
}
