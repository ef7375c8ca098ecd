package render

import (
	"fmt"
	"math/rand"

	"github.com/hmaddocks/raytracing/model"
	"github.com/hmaddocks/raytracing/model/geom"
	"github.com/hmaddocks/raytracing/model/material"
	"github.com/hmaddocks/raytracing/model/shape"
)

// CompileScene turns a declarative scene into a camera and traversable world.
// Scenes with more than two objects are wrapped in a BVH unless the scene
// overrides the choice.
func CompileScene(scene *model.Scene) (*Camera, shape.Hittable, error) {
	if scene == nil {
		return nil, nil, fmt.Errorf("scene was nil")
	}
	if issues := scene.Validate(); len(issues) > 0 {
		return nil, nil, fmt.Errorf("invalid scene %q: %w", scene.Name, issues[0])
	}

	materials := make(map[string]shape.Material, len(scene.Materials))
	for name, spec := range scene.Materials {
		mat, err := compileMaterial(spec)
		if err != nil {
			return nil, nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = mat
	}

	world := shape.NewList()
	for i, object := range scene.Objects {
		hittable, err := compileObject(object, materials)
		if err != nil {
			return nil, nil, fmt.Errorf("object %d: %w", i, err)
		}
		world.Add(hittable)
	}

	camera := NewCamera(scene.Camera)

	useBVH := len(world.Objects) > 2
	if scene.UseBVH != nil {
		useBVH = *scene.UseBVH
	}
	if useBVH && len(world.Objects) > 0 {
		// Splitting axes are chosen at random; a fixed seed keeps the tree
		// deterministic for a given scene.
		rng := rand.New(rand.NewSource(int64(len(world.Objects))))
		bvh, err := shape.NewBVH(rng, world.Objects)
		if err != nil {
			return camera, world, nil
		}
		return camera, bvh, nil
	}
	return camera, world, nil
}

func compileMaterial(spec *model.MaterialSpec) (shape.Material, error) {
	switch spec.Kind {
	case model.MaterialLambertian:
		if spec.Checker != nil {
			odd := material.NewSolidColor(colorFromTriple(spec.Checker.Odd))
			even := material.NewSolidColor(colorFromTriple(spec.Checker.Even))
			return material.NewLambertian(material.NewChecker(odd, even)), nil
		}
		return material.NewLambertianColor(colorFromTriple(spec.Albedo)), nil
	case model.MaterialMetal:
		return material.NewMetal(colorFromTriple(spec.Albedo), spec.Fuzz), nil
	case model.MaterialDielectric:
		return material.NewDielectric(spec.RefractionIndex), nil
	case model.MaterialNormal:
		return &material.Normal{}, nil
	}
	return nil, fmt.Errorf("unknown kind %q", spec.Kind)
}

func compileObject(object *model.ObjectSpec, materials map[string]shape.Material) (shape.Hittable, error) {
	sphere := object.Sphere
	mat, ok := materials[sphere.Material]
	if !ok {
		return nil, fmt.Errorf("unknown material %q", sphere.Material)
	}
	center := pointFromTriple(sphere.Center)
	if sphere.Moving() {
		centerEnd := pointFromTriple(sphere.CenterEnd)
		return shape.NewMovingSphere(center, centerEnd, sphere.TimeStart, sphere.TimeEnd, sphere.Radius, mat), nil
	}
	return shape.NewSphere(center, sphere.Radius, mat), nil
}

func colorFromTriple(v []float64) geom.Color {
	if len(v) != 3 {
		return geom.Black
	}
	return geom.RGB(v[0], v[1], v[2])
}

func pointFromTriple(v []float64) geom.Point3 {
	if len(v) != 3 {
		return geom.Point3{}
	}
	return geom.P(v[0], v[1], v[2])
}
