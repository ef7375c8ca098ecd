// Package geom provides the vector math core shared by every rendering
// component: vectors, points, rays, intervals, colors and axis-aligned
// bounding boxes, plus the random sampling helpers used by materials and the
// camera.
package geom
