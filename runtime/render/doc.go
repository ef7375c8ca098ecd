// Package render holds the rendering runtime: cameras, ray tracing, render
// jobs and their tiles, and the shared framebuffer tiles are written into.
// Scene compilation lives here too, bridging the declarative model to
// traversable geometry.
package render
