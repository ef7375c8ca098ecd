package scene

import (
	"context"
	"embed"
	"os"
	"testing"

	"github.com/hmaddocks/raytracing/model"
	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	_ "github.com/viant/afs/embed"
)

//go:embed testdata/*
var testFS embed.FS

func TestService_Load(t *testing.T) {
	ctx := context.Background()
	service := New(afs.New(), "embed:///testdata", &testFS)

	scene, err := service.Load(ctx, "three_spheres")
	assert.NoError(t, err)
	assert.NotNil(t, scene)
	assert.Equal(t, "three-spheres", scene.Name)
	assert.Equal(t, 64, scene.Camera.ImageWidth)
	assert.Equal(t, 4, len(scene.Materials))
	assert.Equal(t, 4, len(scene.Objects))
	assert.Equal(t, "embed:///testdata/three_spheres.yaml", scene.Source.URL)

	// Second load comes from cache and returns the same instance.
	again, err := service.Load(ctx, "three_spheres")
	assert.NoError(t, err)
	assert.Same(t, scene, again)

	// Refresh drops the cache entry.
	service.Refresh("three_spheres")
	reloaded, err := service.Load(ctx, "three_spheres")
	assert.NoError(t, err)
	assert.NotSame(t, scene, reloaded)
}

func TestService_LoadEnvExpansion(t *testing.T) {
	os.Setenv("SCENE_NAME", "from-env")
	defer os.Unsetenv("SCENE_NAME")

	service := New(afs.New(), "embed:///testdata", &testFS)
	scene, err := service.Load(context.Background(), "env_scene")
	assert.NoError(t, err)
	assert.Equal(t, "from-env", scene.Name)
}

func TestService_LoadInvalid(t *testing.T) {
	service := New(afs.New(), "embed:///testdata", &testFS)

	_, err := service.Load(context.Background(), "invalid")
	assert.Error(t, err)

	_, err = service.Load(context.Background(), "no_such_scene")
	assert.Error(t, err)
}

func TestService_Upsert(t *testing.T) {
	service := New(afs.New(), "")
	scene := &model.Scene{
		Name: "synthetic",
		Materials: map[string]*model.MaterialSpec{
			"flat": {Kind: model.MaterialNormal},
		},
		Objects: []*model.ObjectSpec{
			{Sphere: &model.SphereSpec{Center: []float64{0, 0, -1}, Radius: 0.5, Material: "flat"}},
		},
	}
	service.Upsert("mem://localhost/scenes/synthetic.yaml", scene)

	loaded, err := service.Load(context.Background(), "mem://localhost/scenes/synthetic.yaml")
	assert.NoError(t, err)
	assert.Same(t, scene, loaded)
}

func TestService_DecodeYAML(t *testing.T) {
	service := New(nil, "")

	scene, err := service.DecodeYAML([]byte(`
name: inline
materials:
  flat:
    kind: normal
objects:
  - sphere:
      center: [0, 0, -1]
      radius: 0.5
      material: flat
`))
	assert.NoError(t, err)
	assert.Equal(t, "inline", scene.Name)

	_, err = service.DecodeYAML([]byte(`objects: [{sphere: {center: [0], radius: 1, material: missing}}]`))
	assert.Error(t, err)
}
