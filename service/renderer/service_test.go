package renderer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmaddocks/raytracing/model"
	"github.com/hmaddocks/raytracing/runtime/render"
	"github.com/hmaddocks/raytracing/service/dao"
	jfs "github.com/hmaddocks/raytracing/service/dao/job/fs"
	jmemory "github.com/hmaddocks/raytracing/service/dao/job/memory"
	tmemory "github.com/hmaddocks/raytracing/service/dao/tile/memory"
	mmemory "github.com/hmaddocks/raytracing/service/messaging/memory"
	"github.com/hmaddocks/raytracing/tracing"
)

func testScene() *model.Scene {
	return &model.Scene{
		Name: "test",
		Camera: model.CameraSpec{
			AspectRatio:     2.0,
			ImageWidth:      32,
			SamplesPerPixel: 2,
			MaxDepth:        4,
		},
		Materials: map[string]*model.MaterialSpec{
			"matte": {Kind: model.MaterialLambertian, Albedo: []float64{0.5, 0.5, 0.5}},
			"steel": {Kind: model.MaterialMetal, Albedo: []float64{0.8, 0.8, 0.8}, Fuzz: 0.1},
		},
		Objects: []*model.ObjectSpec{
			{Sphere: &model.SphereSpec{Center: []float64{0, -100.5, -1}, Radius: 100, Material: "matte"}},
			{Sphere: &model.SphereSpec{Center: []float64{0, 0, -1}, Radius: 0.5, Material: "steel"}},
		},
	}
}

func newTestService(t *testing.T, options ...Option) *Service {
	t.Helper()
	base := []Option{
		WithJobDAO(jmemory.New()),
		WithTileDAO(tmemory.New()),
		WithMessageQueue(mmemory.NewQueue[render.Tile](mmemory.DefaultConfig())),
		WithWorkers(2),
		WithTileSize(8),
		WithSeed(7),
	}
	svc, err := New(append(base, options...)...)
	require.NoError(t, err)
	return svc
}

func waitForJob(t *testing.T, svc *Service, jobID string, timeout time.Duration) *render.Job {
	t.Helper()
	ctx := context.Background()
	deadline := time.Now().Add(timeout)
	for {
		job, err := svc.Job(ctx, jobID)
		require.NoError(t, err)
		if job.GetState().IsTerminal() {
			return job
		}
		require.False(t, time.Now().After(deadline), "job %s did not finish in %s", jobID, timeout)
		time.Sleep(10 * time.Millisecond)
	}
}

func TestService_StartJob(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Start(ctx))
	defer svc.Shutdown()

	job, err := svc.StartJob(ctx, testScene())
	require.NoError(t, err)
	assert.Equal(t, 32, job.Width)
	assert.Equal(t, 16, job.Height)
	assert.Equal(t, 8, job.Tiles) // 4x2 grid of 8px tiles

	job = waitForJob(t, svc, job.ID, 30*time.Second)
	assert.Equal(t, render.JobStateCompleted, job.GetState())
	assert.Equal(t, job.Tiles, job.CompletedTiles())

	snapshot, ok := svc.Progress(job.ID)
	require.True(t, ok)
	assert.EqualValues(t, 8, snapshot.TotalTiles)
	assert.EqualValues(t, 8, snapshot.CompletedTiles)
	assert.Zero(t, snapshot.PendingTiles)
	assert.Zero(t, snapshot.RunningTiles)
	assert.EqualValues(t, 32*16*2, snapshot.SamplesTraced)

	fb, ok := svc.Framebuffer(job.ID)
	require.True(t, ok)
	// the background gradient guarantees non-black pixels at the top
	top := fb.At(0, 0)
	assert.True(t, top.R > 0 || top.G > 0 || top.B > 0)
}

func TestService_Reproducible(t *testing.T) {
	ctx := context.Background()

	renderOnce := func() *render.Framebuffer {
		svc := newTestService(t)
		require.NoError(t, svc.Start(ctx))
		defer svc.Shutdown()
		job, err := svc.StartJob(ctx, testScene())
		require.NoError(t, err)
		waitForJob(t, svc, job.ID, 30*time.Second)
		fb, ok := svc.Framebuffer(job.ID)
		require.True(t, ok)
		return fb
	}

	first := renderOnce()
	second := renderOnce()
	for y := 0; y < first.Height(); y++ {
		for x := 0; x < first.Width(); x++ {
			require.Equal(t, first.At(x, y), second.At(x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestService_CancelJob(t *testing.T) {
	// no workers started, so tiles stay queued and the job never progresses
	svc := newTestService(t)
	ctx := context.Background()

	job, err := svc.StartJob(ctx, testScene())
	require.NoError(t, err)

	require.NoError(t, svc.CancelJob(ctx, job.ID))
	stored, err := svc.Job(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, render.JobStateCancelled, stored.GetState())

	// cancelling a finished job is an error
	assert.Error(t, svc.CancelJob(ctx, job.ID))
}

func TestService_CancelJobWithDurableStore(t *testing.T) {
	ctx := context.Background()
	jobDAO, err := jfs.New(t.TempDir())
	require.NoError(t, err)
	queue := mmemory.NewQueue[render.Tile](mmemory.DefaultConfig())
	svc := newTestService(t, WithJobDAO(jobDAO), WithMessageQueue(queue))

	job, err := svc.StartJob(ctx, testScene())
	require.NoError(t, err)
	require.NoError(t, svc.CancelJob(ctx, job.ID))

	// Workers started after the cancel must discard every queued tile rather
	// than render them and mark the job completed.
	require.NoError(t, svc.Start(ctx))
	defer svc.Shutdown()
	require.Eventually(t, func() bool { return queue.Size() == 0 }, 10*time.Second, 10*time.Millisecond)
	assert.Never(t, func() bool {
		stored, err := svc.Job(ctx, job.ID)
		return err == nil && stored.GetState() == render.JobStateCompleted
	}, 300*time.Millisecond, 50*time.Millisecond)

	stored, err := svc.Job(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, render.JobStateCancelled, stored.GetState())

	snapshot, ok := svc.Progress(job.ID)
	require.True(t, ok)
	assert.Zero(t, snapshot.CompletedTiles)
}

func TestService_FailedTileFailsJob(t *testing.T) {
	ctx := context.Background()
	queue := mmemory.NewQueue[render.Tile](mmemory.DefaultConfig())
	svc := newTestService(t,
		WithMessageQueue(queue),
		WithConfig(Config{
			WorkerCount: 2,
			TileSize:    8,
			Retry:       RetryPolicy{MaxRetries: 1, Delay: 10 * time.Millisecond},
		}))
	svc.renderFn = func(ctx context.Context, rt *jobRuntime, tile *render.Tile) error {
		return errors.New("sampler exploded")
	}

	require.NoError(t, svc.Start(ctx))
	defer svc.Shutdown()

	job, err := svc.StartJob(ctx, testScene())
	require.NoError(t, err)

	job = waitForJob(t, svc, job.ID, 30*time.Second)
	assert.Equal(t, render.JobStateFailed, job.GetState())
	snap := job.Snapshot()
	require.NotEmpty(t, snap.Errors)
	for _, msg := range snap.Errors {
		assert.Contains(t, msg, "sampler exploded")
	}

	// The tile that failed the job was retried once before giving up.
	failed, err := svc.tileDAO.List(ctx, &dao.Parameter{Name: "State", Value: string(render.TileStateFailed)})
	require.NoError(t, err)
	require.NotEmpty(t, failed)
	for _, tile := range failed {
		assert.Equal(t, 1, tile.Attempts)
		assert.Contains(t, tile.Error, "sampler exploded")
	}

	// Remaining work is drained from the queue without being rendered.
	require.Eventually(t, func() bool { return queue.Size() == 0 }, 10*time.Second, 10*time.Millisecond)
	snapshot, ok := svc.Progress(job.ID)
	require.True(t, ok)
	assert.Zero(t, snapshot.CompletedTiles)
	assert.GreaterOrEqual(t, snapshot.FailedTiles, 1)
}

func TestService_RenderContextCarriesJobAndTile(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	var mu sync.Mutex
	var jobs []*render.Job
	var tiles []*render.Tile
	inner := svc.renderFn
	svc.renderFn = func(ctx context.Context, rt *jobRuntime, tile *render.Tile) error {
		mu.Lock()
		jobs = append(jobs, render.ContextValue[*render.Job](ctx))
		tiles = append(tiles, render.ContextValue[*render.Tile](ctx))
		mu.Unlock()
		return inner(ctx, rt, tile)
	}

	require.NoError(t, svc.Start(ctx))
	defer svc.Shutdown()

	job, err := svc.StartJob(ctx, testScene())
	require.NoError(t, err)
	waitForJob(t, svc, job.ID, 30*time.Second)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, tiles, job.Tiles)
	for i := range tiles {
		require.NotNil(t, jobs[i])
		require.NotNil(t, tiles[i])
		assert.Equal(t, job.ID, jobs[i].ID)
		assert.Equal(t, job.ID, tiles[i].JobID)
	}
}

func TestService_TileRenderSpans(t *testing.T) {
	traceFile := filepath.Join(t.TempDir(), "trace.json")
	require.NoError(t, tracing.Init("renderer-test", "0.0.1", traceFile))

	ctx := context.Background()
	svc := newTestService(t)
	require.NoError(t, svc.Start(ctx))
	defer svc.Shutdown()

	job, err := svc.StartJob(ctx, testScene())
	require.NoError(t, err)
	waitForJob(t, svc, job.ID, 30*time.Second)

	data, err := os.ReadFile(traceFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "renderer.StartJob")
	assert.Contains(t, string(data), "renderer.renderTile")
}

func TestService_StartJob_InvalidScene(t *testing.T) {
	svc := newTestService(t)
	scene := testScene()
	scene.Objects[0].Sphere.Material = "missing"

	_, err := svc.StartJob(context.Background(), scene)
	assert.Error(t, err)
}

func TestService_ShouldRetry(t *testing.T) {
	testCases := []struct {
		name     string
		policy   RetryPolicy
		attempts int
		expect   bool
		delay    time.Duration
	}{
		{
			name:     "fixed below limit",
			policy:   RetryPolicy{MaxRetries: 2, Delay: time.Second},
			attempts: 1,
			expect:   true,
			delay:    time.Second,
		},
		{
			name:     "fixed at limit",
			policy:   RetryPolicy{MaxRetries: 2, Delay: time.Second},
			attempts: 2,
			expect:   false,
		},
		{
			name:     "none",
			policy:   RetryPolicy{Type: "none", MaxRetries: 5},
			attempts: 0,
			expect:   false,
		},
		{
			name:     "exponential backoff",
			policy:   RetryPolicy{Type: "exponential", MaxRetries: 5, Delay: time.Second, Multiplier: 2},
			attempts: 2,
			expect:   true,
			delay:    4 * time.Second,
		},
		{
			name:     "exponential capped",
			policy:   RetryPolicy{Type: "exponential", MaxRetries: 5, Delay: time.Second, Multiplier: 2, MaxDelay: 3 * time.Second},
			attempts: 2,
			expect:   true,
			delay:    3 * time.Second,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(t, WithConfig(Config{
				WorkerCount: 1,
				TileSize:    8,
				Retry:       tc.policy,
			}))
			retry, delay := svc.shouldRetry(tc.attempts)
			assert.Equal(t, tc.expect, retry)
			if tc.expect {
				assert.Equal(t, tc.delay, delay)
			}
		})
	}
}

func TestService_TileSeed(t *testing.T) {
	svc := newTestService(t)
	a := &render.Tile{ID: "job/tile-0001"}
	b := &render.Tile{ID: "job/tile-0002"}

	assert.Equal(t, svc.tileSeed(a), svc.tileSeed(a))
	assert.NotEqual(t, svc.tileSeed(a), svc.tileSeed(b))

	retried := &render.Tile{ID: a.ID, Attempts: 1}
	assert.NotEqual(t, svc.tileSeed(a), svc.tileSeed(retried))
}
