package raytracing

import (
	"context"
	"fmt"
	"time"

	"github.com/hmaddocks/raytracing/model"
	"github.com/hmaddocks/raytracing/progress"
	"github.com/hmaddocks/raytracing/runtime/render"
	"github.com/hmaddocks/raytracing/service/dao"
	"github.com/hmaddocks/raytracing/service/image"
	"github.com/hmaddocks/raytracing/service/messaging"
	"github.com/hmaddocks/raytracing/service/renderer"
	"github.com/hmaddocks/raytracing/service/scene"
	"go.uber.org/zap"
)

// Runtime represents a render engine runtime
type Runtime struct {
	renderer     *renderer.Service
	sceneService *scene.Service
	imageService *image.Service
	jobDAO       dao.Service[string, render.Job]
	tileDAO      dao.Service[string, render.Tile]
	// queue is the shared tile queue (renderer inbound)
	queue  messaging.Queue[render.Tile]
	logger *zap.Logger
}

// Wait blocks until the render job reaches a terminal state or the timeout
// elapses, returning the final job.
type Wait func(ctx context.Context, timeout time.Duration) (*render.Job, error)

// ---------------------------------------------------------------------------
// Scene hot-swap helpers
// ---------------------------------------------------------------------------

// RefreshScene discards any cached copy of the scene definition located at
// the given URL/location. The next LoadScene call will reload the file via
// the configured scene service (i.e. one extra disk/cloud round-trip).
func (r *Runtime) RefreshScene(location string) error {
	if r == nil || r.sceneService == nil {
		return fmt.Errorf("runtime not fully initialised, sceneService missing")
	}
	r.sceneService.Refresh(location)
	return nil
}

// UpsertSceneDefinition parses the supplied YAML bytes and stores the
// resulting scene definition in the in-memory cache under the specified
// location. When data is nil the call falls back to RefreshScene, causing a
// lazy reload on next use.
func (r *Runtime) UpsertSceneDefinition(location string, data []byte) error {
	if r == nil || r.sceneService == nil {
		return fmt.Errorf("runtime not fully initialised, sceneService missing")
	}

	if data == nil {
		return r.RefreshScene(location)
	}

	aScene, err := r.sceneService.DecodeYAML(data)
	if err != nil {
		return fmt.Errorf("failed to decode scene YAML: %w", err)
	}
	r.sceneService.Upsert(location, aScene)
	return nil
}

// LoadScene loads a scene definition
func (r *Runtime) LoadScene(ctx context.Context, location string) (*model.Scene, error) {
	return r.sceneService.Load(ctx, location)
}

// DecodeYAMLScene decodes a scene definition from YAML bytes
func (r *Runtime) DecodeYAMLScene(data []byte) (*model.Scene, error) {
	return r.sceneService.DecodeYAML(data)
}

// StartRender starts a render job for the supplied scene. The returned Wait
// function blocks until the job finishes.
func (r *Runtime) StartRender(ctx context.Context, aScene *model.Scene) (*render.Job, Wait, error) {
	job, err := r.renderer.StartJob(ctx, aScene)
	if err != nil {
		return nil, nil, err
	}
	wait := func(ctx context.Context, timeout time.Duration) (*render.Job, error) {
		return r.waitForJob(ctx, job.ID, timeout)
	}
	return job, wait, nil
}

// Render is a convenience helper that loads a scene, renders it and encodes
// the result to the destination URL. It blocks until the render finishes.
func (r *Runtime) Render(ctx context.Context, location, destURL string, timeout time.Duration) (*render.Job, error) {
	aScene, err := r.LoadScene(ctx, location)
	if err != nil {
		return nil, err
	}
	job, wait, err := r.StartRender(ctx, aScene)
	if err != nil {
		return nil, err
	}
	job, err = wait(ctx, timeout)
	if err != nil {
		return job, err
	}
	if job.GetState() != render.JobStateCompleted {
		return job, fmt.Errorf("render job %s finished in state %s", job.ID, job.GetState())
	}
	if err := r.Encode(ctx, job.ID, destURL); err != nil {
		return job, err
	}
	return job, nil
}

// Encode writes the framebuffer of a finished (or in-flight) job to the
// destination URL; the format follows the URL extension.
func (r *Runtime) Encode(ctx context.Context, jobID, destURL string) error {
	fb, ok := r.renderer.Framebuffer(jobID)
	if !ok {
		return fmt.Errorf("framebuffer for job %s not found", jobID)
	}
	return r.imageService.Encode(ctx, destURL, fb)
}

// Progress returns a snapshot of the job's tile counters.
func (r *Runtime) Progress(jobID string) (progress.Snapshot, bool) {
	return r.renderer.Progress(jobID)
}

// Framebuffer returns the live pixel buffer of a job known to this runtime.
func (r *Runtime) Framebuffer(jobID string) (*render.Framebuffer, bool) {
	return r.renderer.Framebuffer(jobID)
}

// CancelJob stops a running render job.
func (r *Runtime) CancelJob(ctx context.Context, jobID string) error {
	return r.renderer.CancelJob(ctx, jobID)
}

// Job returns a render job
func (r *Runtime) Job(ctx context.Context, id string) (*render.Job, error) {
	return r.jobDAO.Load(ctx, id)
}

// Jobs returns a list of render jobs
func (r *Runtime) Jobs(ctx context.Context, parameter ...*dao.Parameter) ([]*render.Job, error) {
	return r.jobDAO.List(ctx, parameter...)
}

// Tile returns a render tile
func (r *Runtime) Tile(ctx context.Context, id string) (*render.Tile, error) {
	return r.tileDAO.Load(ctx, id)
}

// Start starts the runtime workers
func (r *Runtime) Start(ctx context.Context) error {
	return r.renderer.Start(ctx)
}

// Shutdown stops the runtime workers
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.renderer.Shutdown()
	return nil
}

func (r *Runtime) waitForJob(ctx context.Context, jobID string, timeout time.Duration) (*render.Job, error) {
	deadline := time.Now().Add(timeout)
	for {
		job, err := r.jobDAO.Load(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if job.GetState().IsTerminal() {
			return job, nil
		}
		if time.Now().After(deadline) {
			return job, fmt.Errorf("timeout waiting for job %q", jobID)
		}
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}
