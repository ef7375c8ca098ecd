// Package progress provides a lightweight tracker that keeps aggregated
// render counters (tiles total, completed, failed, …) for a single render
// job. The tracker instance lives in the job context so every component that
// receives the context can atomically update the counters via the Delta
// helper without requiring a global registry.

package progress

import (
	"context"
	"sync"
	"time"
)

// Delta represents an incremental counter change emitted by the renderer or
// its workers. The fields are signed and therefore can be either positive
// (increment) or negative (decrement).
type Delta struct {
	Total     int
	Completed int
	Failed    int
	Running   int
	Pending   int
	Samples   int64
}

// Snapshot is a point-in-time copy of the tracker counters, safe to hand to
// callbacks and encoders.
type Snapshot struct {
	RootJobID string
	Scene     string
	StartedAt time.Time

	TotalTiles     int
	CompletedTiles int
	FailedTiles    int
	RunningTiles   int
	PendingTiles   int
	SamplesTraced  int64
}

// Progress keeps aggregated tile counters for a render job. It is safe for
// concurrent use.
type Progress struct {
	rootJobID string
	scene     string
	startedAt time.Time

	totalTiles     int
	completedTiles int
	failedTiles    int
	runningTiles   int
	pendingTiles   int
	samplesTraced  int64

	mux      sync.Mutex
	onChange func(Snapshot)
}

// Update applies the supplied delta to the tracker. It is safe to call from
// multiple goroutines. A registered onChange callback is invoked with a copy
// of the updated counters outside the critical section so the callback can
// perform slow operations (JSON encoding, I/O) without blocking the renderer.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}

	p.mux.Lock()

	p.totalTiles += d.Total
	p.completedTiles += d.Completed
	p.failedTiles += d.Failed
	p.runningTiles += d.Running
	p.pendingTiles += d.Pending
	p.samplesTraced += d.Samples

	snapshot := p.snapshotLocked()
	cb := p.onChange

	p.mux.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

func (p *Progress) snapshotLocked() Snapshot {
	return Snapshot{
		RootJobID:      p.rootJobID,
		Scene:          p.scene,
		StartedAt:      p.startedAt,
		TotalTiles:     p.totalTiles,
		CompletedTiles: p.completedTiles,
		FailedTiles:    p.failedTiles,
		RunningTiles:   p.runningTiles,
		PendingTiles:   p.pendingTiles,
		SamplesTraced:  p.samplesTraced,
	}
}

// Snapshot returns a copy of the counters suitable for read-only inspection.
func (p *Progress) Snapshot() Snapshot {
	if p == nil {
		return Snapshot{}
	}
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.snapshotLocked()
}

// OnChange registers a callback that is invoked after every successful
// Update. Passing nil disables the callback. Only one callback can be
// active; subsequent calls overwrite the previous value.
func (p *Progress) OnChange(cb func(Snapshot)) {
	if p == nil {
		return
	}
	p.mux.Lock()
	p.onChange = cb
	p.mux.Unlock()
}

// ----------------------------------------------------------------------------
// Context helpers
// ----------------------------------------------------------------------------

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker creates a new Progress tracker, embeds it in a derived
// context and returns both. The caller may optionally pass an onChange
// callback that will be invoked after every counter update.
func WithNewTracker(ctx context.Context, rootJobID, scene string, onChange func(Snapshot)) (context.Context, *Progress) {
	if ctx == nil {
		ctx = context.Background()
	}
	tr := &Progress{
		rootJobID: rootJobID,
		scene:     scene,
		startedAt: time.Now(),
		onChange:  onChange,
	}
	return context.WithValue(ctx, trackerKey, tr), tr
}

// FromContext extracts the Progress tracker from ctx. The second return value
// is false when the context carries no tracker.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok
}

// GetSnapshot is a convenience wrapper that combines FromContext and
// Snapshot. The boolean return value is false when the context does not
// carry a tracker.
func GetSnapshot(ctx context.Context) (Snapshot, bool) {
	if tr, ok := FromContext(ctx); ok {
		return tr.Snapshot(), true
	}
	return Snapshot{}, false
}

// UpdateCtx looks up the tracker in ctx (if any) and applies the supplied
// delta.
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}
