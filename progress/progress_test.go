package progress

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress_Update(t *testing.T) {
	_, tracker := WithNewTracker(context.Background(), "scene/j1", "scene", nil)

	tracker.Update(Delta{Total: 8, Pending: 8})
	tracker.Update(Delta{Running: 1, Pending: -1})
	tracker.Update(Delta{Running: -1, Completed: 1, Samples: 4096})

	snap := tracker.Snapshot()
	assert.Equal(t, "scene/j1", snap.RootJobID)
	assert.Equal(t, "scene", snap.Scene)
	assert.Equal(t, 8, snap.TotalTiles)
	assert.Equal(t, 7, snap.PendingTiles)
	assert.Equal(t, 0, snap.RunningTiles)
	assert.Equal(t, 1, snap.CompletedTiles)
	assert.EqualValues(t, 4096, snap.SamplesTraced)
	assert.False(t, snap.StartedAt.IsZero())
}

func TestProgress_OnChange(t *testing.T) {
	var seen []Snapshot
	_, tracker := WithNewTracker(context.Background(), "j1", "scene", func(s Snapshot) {
		seen = append(seen, s)
	})

	tracker.Update(Delta{Total: 2, Pending: 2})
	tracker.Update(Delta{Completed: 1, Pending: -1})

	require.Len(t, seen, 2)
	assert.Equal(t, 2, seen[0].TotalTiles)
	assert.Equal(t, 1, seen[1].CompletedTiles)

	// a nil callback disables notifications
	tracker.OnChange(nil)
	tracker.Update(Delta{Completed: 1, Pending: -1})
	assert.Len(t, seen, 2)
}

func TestProgress_ConcurrentUpdates(t *testing.T) {
	_, tracker := WithNewTracker(context.Background(), "j1", "scene", nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Update(Delta{Completed: 1, Samples: 10})
		}()
	}
	wg.Wait()

	snap := tracker.Snapshot()
	assert.Equal(t, 50, snap.CompletedTiles)
	assert.EqualValues(t, 500, snap.SamplesTraced)
}

func TestProgress_NilReceiver(t *testing.T) {
	var tracker *Progress
	tracker.Update(Delta{Total: 1})
	tracker.OnChange(func(Snapshot) {})
	assert.Equal(t, Snapshot{}, tracker.Snapshot())
}

func TestContextHelpers(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
	_, ok = GetSnapshot(context.Background())
	assert.False(t, ok)

	// UpdateCtx without a tracker is a no-op
	UpdateCtx(context.Background(), Delta{Total: 1})

	ctx, tracker := WithNewTracker(context.Background(), "j1", "scene", nil)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, tracker, got)

	UpdateCtx(ctx, Delta{Total: 3})
	snap, ok := GetSnapshot(ctx)
	require.True(t, ok)
	assert.Equal(t, 3, snap.TotalTiles)
}
