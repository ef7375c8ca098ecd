package raytracing_test

import (
	"bytes"
	"context"
	"embed"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	_ "github.com/viant/afs/embed"
	_ "github.com/viant/afs/mem"

	"github.com/hmaddocks/raytracing"
	"github.com/hmaddocks/raytracing/runtime/render"
)

//go:embed testdata/*
var embedFS embed.FS

func newTestService(t *testing.T) *raytracing.Service {
	t.Helper()
	srv, err := raytracing.New(
		raytracing.WithSceneFsOptions(&embedFS),
		raytracing.WithSceneBaseURL("embed:///testdata"),
		raytracing.WithWorkers(4),
		raytracing.WithTileSize(16),
		raytracing.WithSeed(42),
	)
	require.NoError(t, err)
	return srv
}

func TestService_Render(t *testing.T) {
	srv := newTestService(t)
	rt := srv.Runtime()

	ctx := context.Background()
	require.NoError(t, rt.Start(ctx))
	defer rt.Shutdown(ctx)

	aScene, err := rt.LoadScene(ctx, "cover")
	require.NoError(t, err)
	require.Equal(t, "cover", aScene.Name)

	job, wait, err := rt.StartRender(ctx, aScene)
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)

	job, err = wait(ctx, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, render.JobStateCompleted, job.GetState())
	assert.Equal(t, job.Tiles, job.CompletedTiles())

	snapshot, ok := rt.Progress(job.ID)
	require.True(t, ok)
	assert.EqualValues(t, job.Tiles, snapshot.TotalTiles)
	assert.EqualValues(t, job.Tiles, snapshot.CompletedTiles)
	assert.Zero(t, snapshot.FailedTiles)

	fb, ok := rt.Framebuffer(job.ID)
	require.True(t, ok)
	assert.Equal(t, job.Width, fb.Width())
	assert.Equal(t, job.Height, fb.Height())

	destURL := "mem://localhost/render/cover.ppm"
	require.NoError(t, rt.Encode(ctx, job.ID, destURL))

	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, destURL)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("P3\n")))
}

func TestService_RenderConvenience(t *testing.T) {
	srv := newTestService(t)
	rt := srv.Runtime()

	ctx := context.Background()
	require.NoError(t, rt.Start(ctx))
	defer rt.Shutdown(ctx)

	destURL := "mem://localhost/render/cover.png"
	job, err := rt.Render(ctx, "cover", destURL, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, render.JobStateCompleted, job.GetState())

	ok, err := afs.New().Exists(ctx, destURL)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRuntime_UpsertSceneDefinition(t *testing.T) {
	srv := newTestService(t)
	rt := srv.Runtime()
	ctx := context.Background()

	definition := []byte(`
name: inline
camera:
  imageWidth: 8
  samplesPerPixel: 1
  maxDepth: 2
materials:
  matte:
    kind: lambertian
    albedo: [0.5, 0.5, 0.5]
objects:
  - sphere:
      center: [0, 0, -1]
      radius: 0.5
      material: matte
`)
	require.NoError(t, rt.UpsertSceneDefinition("inline.yaml", definition))

	aScene, err := rt.LoadScene(ctx, "inline.yaml")
	require.NoError(t, err)
	assert.Equal(t, "inline", aScene.Name)

	// nil data discards the cached copy; the next load hits storage and fails
	require.NoError(t, rt.UpsertSceneDefinition("inline.yaml", nil))
	_, err = rt.LoadScene(ctx, "inline.yaml")
	assert.Error(t, err)
}
