// Package raytracing provides an embeddable, concurrent path tracing engine.
//
// Scenes are defined declaratively in YAML and rendered as tiled jobs by a
// worker pool. The engine is composed of pluggable service layers:
//
//   - scene    – loading and caching of scene definitions
//   - renderer – tile scheduling, retries and the worker pool
//   - image    – encoding framebuffers to PPM or PNG
//   - event    – job and tile lifecycle notifications
//
// End-users typically interact with the engine via the high-level Service
// facade exposed by the root package:
//
//	srv, _ := raytracing.New()
//	rt := srv.Runtime()
//	rt.Start(ctx)
//	scene, _ := rt.LoadScene(ctx, "scene.yaml")
//	_, wait, _ := rt.StartRender(ctx, scene)
//	job, _ := wait(ctx, time.Minute)
//	_ = rt.Encode(ctx, job.ID, "out.png")
//
// For more details see the README and individual sub-packages.
package raytracing
