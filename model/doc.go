// Package model contains the in-memory representation of scene definitions
// and supporting types used by the render engine.
//
// A scene is typically loaded from a YAML or JSON document into the Scene
// structure defined here; vector math, geometry and materials live in the
// `geom`, `shape` and `material` sub-packages. The compiled, renderable form
// of a scene is produced by runtime/render.
package model
