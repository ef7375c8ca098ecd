package geom

// Ray is a half-line with an associated time used for motion blur; shapes in
// motion interpolate their position at the ray's time.
type Ray struct {
	Origin Point3
	Dir    Vec3
	Time   float64
}

// NewRay creates a ray at time zero.
func NewRay(origin Point3, dir Vec3) Ray {
	return Ray{Origin: origin, Dir: dir}
}

// At returns the point the ray reaches at parameter t.
func (r Ray) At(t float64) Point3 {
	return r.Origin.Add(r.Dir.Scale(t))
}
