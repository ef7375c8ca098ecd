package shape

import (
	"math"

	"github.com/hmaddocks/raytracing/model/geom"
)

// Sphere is a static sphere; the squared radius is precomputed because the
// intersection test needs it on every ray.
type Sphere struct {
	Center        geom.Point3
	Radius        float64
	Material      Material
	radiusSquared float64
}

// NewSphere creates a sphere; negative radii collapse to zero.
func NewSphere(center geom.Point3, radius float64, material Material) *Sphere {
	radius = math.Max(radius, 0)
	return &Sphere{
		Center:        center,
		Radius:        radius,
		Material:      material,
		radiusSquared: radius * radius,
	}
}

func (s *Sphere) Hit(r geom.Ray, rayT geom.Interval) (*Hit, bool) {
	return sphereHit(r, rayT, s.Center, s.Radius, s.radiusSquared, s.Material)
}

func (s *Sphere) Bounds(_, _ float64) (geom.AABB, bool) {
	extent := geom.V(s.Radius, s.Radius, s.Radius)
	return geom.AABBFromPoints(s.Center.Sub(extent), s.Center.Add(extent)), true
}

// MovingSphere translates linearly from Center0 at Time0 to Center1 at Time1;
// the ray's time selects the interpolated center.
type MovingSphere struct {
	Center0       geom.Point3
	Center1       geom.Point3
	Time0         float64
	Time1         float64
	Radius        float64
	Material      Material
	radiusSquared float64
}

// NewMovingSphere creates a sphere in motion over [time0, time1].
func NewMovingSphere(center0, center1 geom.Point3, time0, time1, radius float64, material Material) *MovingSphere {
	radius = math.Max(radius, 0)
	return &MovingSphere{
		Center0:       center0,
		Center1:       center1,
		Time0:         time0,
		Time1:         time1,
		Radius:        radius,
		Material:      material,
		radiusSquared: radius * radius,
	}
}

// CenterAt returns the interpolated center at the supplied time.
func (s *MovingSphere) CenterAt(time float64) geom.Point3 {
	return s.Center0.Add(s.Center1.Sub(s.Center0).Scale((time - s.Time0) / (s.Time1 - s.Time0)))
}

func (s *MovingSphere) Hit(r geom.Ray, rayT geom.Interval) (*Hit, bool) {
	return sphereHit(r, rayT, s.CenterAt(r.Time), s.Radius, s.radiusSquared, s.Material)
}

func (s *MovingSphere) Bounds(time0, time1 float64) (geom.AABB, bool) {
	extent := geom.V(s.Radius, s.Radius, s.Radius)
	c0 := s.CenterAt(time0)
	c1 := s.CenterAt(time1)
	box0 := geom.AABBFromPoints(c0.Sub(extent), c0.Add(extent))
	box1 := geom.AABBFromPoints(c1.Sub(extent), c1.Add(extent))
	return geom.SurroundingBox(box0, box1), true
}

// sphereHit solves the quadratic |o + t·d - c|² = r² using the half-b
// optimization and keeps the nearest root strictly inside rayT.
func sphereHit(r geom.Ray, rayT geom.Interval, center geom.Point3, radius, radiusSquared float64, material Material) (*Hit, bool) {
	oc := r.Origin.Sub(center)
	a := r.Dir.LengthSquared()
	halfB := oc.Dot(r.Dir)
	c := oc.LengthSquared() - radiusSquared

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return nil, false
	}
	sqrtD := math.Sqrt(discriminant)

	root := (-halfB - sqrtD) / a
	if !rayT.Surrounds(root) {
		root = (-halfB + sqrtD) / a
		if !rayT.Surrounds(root) {
			return nil, false
		}
	}

	point := r.At(root)
	outward := point.Sub(center).Div(radius)
	u, v := sphereUV(outward)

	hit := &Hit{
		Point:    point,
		T:        root,
		U:        u,
		V:        v,
		Material: material,
	}
	hit.SetFaceNormal(r, outward)
	return hit, true
}

// sphereUV maps a point on the unit sphere to texture coordinates: u is the
// angle around the Y axis from X=-1, v the angle from Y=-1 to Y=+1.
func sphereUV(p geom.Vec3) (u, v float64) {
	theta := math.Acos(-p.Y)
	phi := math.Atan2(-p.Z, p.X) + math.Pi
	return phi / (2 * math.Pi), theta / math.Pi
}
