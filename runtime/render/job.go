package render

import (
	"sync"
	"time"

	"github.com/hmaddocks/raytracing/internal/clock"
)

// Job tracks the lifecycle of one render: the image dimensions, tile
// accounting and terminal outcome. The pixel data itself lives in a
// Framebuffer held by the renderer service.
type Job struct {
	ID        string            `json:"id"`
	SceneName string            `json:"sceneName"`
	State     JobState          `json:"state"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	TileSize  int               `json:"tileSize"`
	Tiles     int               `json:"tiles"`
	Errors    map[string]string `json:"errors,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	StartedAt *time.Time        `json:"startedAt,omitempty"`
	EndedAt   *time.Time        `json:"endedAt,omitempty"`

	completed int
	mux       sync.RWMutex
}

// NewJob creates a pending job for an image of the given dimensions.
func NewJob(id, sceneName string, width, height, tileSize int) *Job {
	return &Job{
		ID:        id,
		SceneName: sceneName,
		State:     JobStatePending,
		Width:     width,
		Height:    height,
		TileSize:  tileSize,
		Errors:    map[string]string{},
		CreatedAt: clock.Now(),
	}
}

// GetState returns the current state.
func (j *Job) GetState() JobState {
	j.mux.RLock()
	defer j.mux.RUnlock()
	return j.State
}

// SetState transitions the job to the supplied state.
func (j *Job) SetState(state JobState) {
	j.mux.Lock()
	defer j.mux.Unlock()
	j.State = state
}

// Start marks the job as running.
func (j *Job) Start() {
	j.mux.Lock()
	defer j.mux.Unlock()
	now := clock.Now()
	j.StartedAt = &now
	j.State = JobStateRunning
}

// TileCompleted records one finished tile and returns true when it was the
// last one, transitioning the job to completed.
func (j *Job) TileCompleted() bool {
	j.mux.Lock()
	defer j.mux.Unlock()
	j.completed++
	if j.completed < j.Tiles || j.State != JobStateRunning {
		return false
	}
	now := clock.Now()
	j.EndedAt = &now
	j.State = JobStateCompleted
	return true
}

// CompletedTiles returns the number of tiles finished so far.
func (j *Job) CompletedTiles() int {
	j.mux.RLock()
	defer j.mux.RUnlock()
	return j.completed
}

// Fail records a tile error and transitions the job to failed unless it
// already reached a terminal state.
func (j *Job) Fail(tileID string, err error) {
	j.mux.Lock()
	defer j.mux.Unlock()
	if err != nil {
		j.Errors[tileID] = err.Error()
	}
	if j.State.IsTerminal() {
		return
	}
	now := clock.Now()
	j.EndedAt = &now
	j.State = JobStateFailed
}

// Cancel transitions the job to cancelled unless it already finished.
func (j *Job) Cancel() {
	j.mux.Lock()
	defer j.mux.Unlock()
	if j.State.IsTerminal() {
		return
	}
	now := clock.Now()
	j.EndedAt = &now
	j.State = JobStateCancelled
}

// Snapshot returns a consistent copy of the job's exported fields, safe to
// share outside the renderer (events, API responses).
func (j *Job) Snapshot() Job {
	j.mux.RLock()
	defer j.mux.RUnlock()
	errors := make(map[string]string, len(j.Errors))
	for k, v := range j.Errors {
		errors[k] = v
	}
	return Job{
		ID:        j.ID,
		SceneName: j.SceneName,
		State:     j.State,
		Width:     j.Width,
		Height:    j.Height,
		TileSize:  j.TileSize,
		Tiles:     j.Tiles,
		Errors:    errors,
		CreatedAt: j.CreatedAt,
		StartedAt: j.StartedAt,
		EndedAt:   j.EndedAt,
		completed: j.completed,
	}
}

// Elapsed returns the wall time between start and end, or zero when the job
// has not finished.
func (j *Job) Elapsed() time.Duration {
	j.mux.RLock()
	defer j.mux.RUnlock()
	if j.StartedAt == nil || j.EndedAt == nil {
		return 0
	}
	return j.EndedAt.Sub(*j.StartedAt)
}
