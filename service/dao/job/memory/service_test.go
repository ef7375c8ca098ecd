package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmaddocks/raytracing/runtime/render"
	"github.com/hmaddocks/raytracing/service/dao"
)

func TestService_SaveLoadDelete(t *testing.T) {
	svc := New()
	ctx := context.Background()

	job := render.NewJob("scene/j1", "scene", 100, 50, 32)
	require.NoError(t, svc.Save(ctx, job))

	loaded, err := svc.Load(ctx, "scene/j1")
	require.NoError(t, err)
	// the store hands back the live object, not a copy
	assert.Same(t, job, loaded)

	require.NoError(t, svc.Delete(ctx, "scene/j1"))
	_, err = svc.Load(ctx, "scene/j1")
	assert.ErrorIs(t, err, dao.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "scene/j1"), dao.ErrNotFound)
}

func TestService_Validation(t *testing.T) {
	svc := New()
	ctx := context.Background()

	assert.ErrorIs(t, svc.Save(ctx, nil), dao.ErrNilEntity)
	assert.ErrorIs(t, svc.Save(ctx, &render.Job{}), dao.ErrInvalidID)

	_, err := svc.Load(ctx, "")
	assert.ErrorIs(t, err, dao.ErrInvalidID)
	assert.ErrorIs(t, svc.Delete(ctx, ""), dao.ErrInvalidID)
}

func TestService_ListByState(t *testing.T) {
	svc := New()
	ctx := context.Background()

	running := render.NewJob("scene/j1", "scene", 10, 10, 5)
	running.Start()
	pending := render.NewJob("scene/j2", "scene", 10, 10, 5)
	require.NoError(t, svc.Save(ctx, running))
	require.NoError(t, svc.Save(ctx, pending))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	jobs, err := svc.List(ctx, &dao.Parameter{Name: "State", Value: string(render.JobStateRunning)})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "scene/j1", jobs[0].ID)

	jobs, err = svc.List(ctx, &dao.Parameter{
		Name:  "State",
		Value: []string{string(render.JobStateRunning), string(render.JobStatePending)},
	})
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}
