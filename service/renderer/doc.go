// Package renderer hosts the workers that render individual tiles. Every
// worker consumes tiles from the job queue, traces them against the compiled
// scene and updates the tile and job state so that callers can observe
// progress and collect the finished framebuffer.
package renderer
