// Package shape defines the Hittable surface abstraction plus the concrete
// geometry the renderer intersects: static and moving spheres, flat lists and
// a bounding volume hierarchy.
package shape
