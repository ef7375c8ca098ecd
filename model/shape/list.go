package shape

import "github.com/hmaddocks/raytracing/model/geom"

// List is a flat collection of hittables searched linearly for the closest
// intersection.
type List struct {
	Objects []Hittable
}

// NewList creates a list from the supplied objects.
func NewList(objects ...Hittable) *List {
	return &List{Objects: objects}
}

// Add appends an object to the list.
func (l *List) Add(object Hittable) {
	l.Objects = append(l.Objects, object)
}

func (l *List) Hit(r geom.Ray, rayT geom.Interval) (*Hit, bool) {
	var closest *Hit
	closestSoFar := rayT.Max

	for _, object := range l.Objects {
		if hit, ok := object.Hit(r, geom.NewInterval(rayT.Min, closestSoFar)); ok {
			closestSoFar = hit.T
			closest = hit
		}
	}
	return closest, closest != nil
}

func (l *List) Bounds(time0, time1 float64) (geom.AABB, bool) {
	if len(l.Objects) == 0 {
		return geom.AABB{}, false
	}
	var out geom.AABB
	for i, object := range l.Objects {
		box, ok := object.Bounds(time0, time1)
		if !ok {
			return geom.AABB{}, false
		}
		if i == 0 {
			out = box
		} else {
			out = geom.SurroundingBox(out, box)
		}
	}
	return out, true
}
