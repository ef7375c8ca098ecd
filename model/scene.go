package model

import "fmt"

// Source provides information about the origin of the scene definition.
type Source struct {
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Scene is a declarative scene definition, typically decoded from YAML.
type Scene struct {
	// Source provides information about the origin of the scene
	Source *Source `json:"source,omitempty" yaml:"source,omitempty"`

	// Name is the unique identifier for the scene
	Name string `json:"name" yaml:"name"`

	// Description provides a human-readable description of the scene
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Camera configures viewpoint, image dimensions and sampling
	Camera CameraSpec `json:"camera,omitempty" yaml:"camera,omitempty"`

	// Materials define named surface responses referenced by objects
	Materials map[string]*MaterialSpec `json:"materials,omitempty" yaml:"materials,omitempty"`

	// Objects lists the renderable geometry
	Objects []*ObjectSpec `json:"objects,omitempty" yaml:"objects,omitempty"`

	// UseBVH overrides the acceleration-structure default (on for scenes with
	// more than two objects)
	UseBVH *bool `json:"useBVH,omitempty" yaml:"useBVH,omitempty"`
}

// CameraSpec configures the camera. Zero values inherit the package defaults
// applied at compile time.
type CameraSpec struct {
	AspectRatio     float64   `json:"aspectRatio,omitempty" yaml:"aspectRatio,omitempty"`
	ImageWidth      int       `json:"imageWidth,omitempty" yaml:"imageWidth,omitempty"`
	SamplesPerPixel int       `json:"samplesPerPixel,omitempty" yaml:"samplesPerPixel,omitempty"`
	MaxDepth        int       `json:"maxDepth,omitempty" yaml:"maxDepth,omitempty"`
	VerticalFOV     float64   `json:"verticalFov,omitempty" yaml:"verticalFov,omitempty"`
	LookFrom        []float64 `json:"lookFrom,omitempty" yaml:"lookFrom,omitempty"`
	LookAt          []float64 `json:"lookAt,omitempty" yaml:"lookAt,omitempty"`
	VUp             []float64 `json:"vup,omitempty" yaml:"vup,omitempty"`
	DefocusAngle    float64   `json:"defocusAngle,omitempty" yaml:"defocusAngle,omitempty"`
	FocusDistance   float64   `json:"focusDistance,omitempty" yaml:"focusDistance,omitempty"`
	ShutterOpen     float64   `json:"shutterOpen,omitempty" yaml:"shutterOpen,omitempty"`
	ShutterClose    float64   `json:"shutterClose,omitempty" yaml:"shutterClose,omitempty"`
}

// Material kinds accepted by MaterialSpec.
const (
	MaterialLambertian = "lambertian"
	MaterialMetal      = "metal"
	MaterialDielectric = "dielectric"
	MaterialNormal     = "normal"
)

// MaterialSpec defines a named material.
type MaterialSpec struct {
	Kind            string       `json:"kind" yaml:"kind"`
	Albedo          []float64    `json:"albedo,omitempty" yaml:"albedo,omitempty"`
	Checker         *CheckerSpec `json:"checker,omitempty" yaml:"checker,omitempty"`
	Fuzz            float64      `json:"fuzz,omitempty" yaml:"fuzz,omitempty"`
	RefractionIndex float64      `json:"refractionIndex,omitempty" yaml:"refractionIndex,omitempty"`
}

// CheckerSpec defines the two phases of a checker texture.
type CheckerSpec struct {
	Odd  []float64 `json:"odd" yaml:"odd"`
	Even []float64 `json:"even" yaml:"even"`
}

// ObjectSpec describes one renderable object; exactly one member is set.
type ObjectSpec struct {
	Sphere *SphereSpec `json:"sphere,omitempty" yaml:"sphere,omitempty"`
}

// SphereSpec describes a sphere; setting CenterEnd together with a time range
// produces a moving sphere.
type SphereSpec struct {
	Center    []float64 `json:"center" yaml:"center"`
	Radius    float64   `json:"radius" yaml:"radius"`
	Material  string    `json:"material" yaml:"material"`
	CenterEnd []float64 `json:"centerEnd,omitempty" yaml:"centerEnd,omitempty"`
	TimeStart float64   `json:"timeStart,omitempty" yaml:"timeStart,omitempty"`
	TimeEnd   float64   `json:"timeEnd,omitempty" yaml:"timeEnd,omitempty"`
}

// Moving reports whether the spec describes a sphere in motion.
func (s *SphereSpec) Moving() bool {
	return len(s.CenterEnd) > 0
}

// Validate performs a best-effort structural validation of the scene. The
// returned slice is empty when the scene is sound; otherwise it contains
// human-readable error descriptions. No geometry is compiled here, only
// static properties are checked.
func (s *Scene) Validate() []error {
	var issues []error

	checkTriple := func(name string, v []float64, optional bool) {
		if len(v) == 0 && optional {
			return
		}
		if len(v) != 3 {
			issues = append(issues, fmt.Errorf("%s must have exactly 3 components, got %d", name, len(v)))
		}
	}

	// Zero means "use the default"; only negative values are rejected.
	if s.Camera.ImageWidth < 0 {
		issues = append(issues, fmt.Errorf("camera.imageWidth must not be negative"))
	}
	if s.Camera.SamplesPerPixel < 0 {
		issues = append(issues, fmt.Errorf("camera.samplesPerPixel must not be negative"))
	}
	if s.Camera.MaxDepth < 0 {
		issues = append(issues, fmt.Errorf("camera.maxDepth must not be negative"))
	}
	checkTriple("camera.lookFrom", s.Camera.LookFrom, true)
	checkTriple("camera.lookAt", s.Camera.LookAt, true)
	checkTriple("camera.vup", s.Camera.VUp, true)

	for name, m := range s.Materials {
		if m == nil {
			issues = append(issues, fmt.Errorf("material %q is empty", name))
			continue
		}
		switch m.Kind {
		case MaterialLambertian:
			if m.Checker != nil {
				checkTriple(fmt.Sprintf("material %q checker.odd", name), m.Checker.Odd, false)
				checkTriple(fmt.Sprintf("material %q checker.even", name), m.Checker.Even, false)
			} else {
				checkTriple(fmt.Sprintf("material %q albedo", name), m.Albedo, false)
			}
		case MaterialMetal:
			checkTriple(fmt.Sprintf("material %q albedo", name), m.Albedo, false)
		case MaterialDielectric:
			if m.RefractionIndex <= 0 {
				issues = append(issues, fmt.Errorf("material %q refractionIndex must be positive", name))
			}
		case MaterialNormal:
		default:
			issues = append(issues, fmt.Errorf("material %q has unknown kind %q", name, m.Kind))
		}
	}

	for i, object := range s.Objects {
		if object == nil || object.Sphere == nil {
			issues = append(issues, fmt.Errorf("object %d defines no geometry", i))
			continue
		}
		sphere := object.Sphere
		checkTriple(fmt.Sprintf("object %d center", i), sphere.Center, false)
		if sphere.Radius < 0 {
			issues = append(issues, fmt.Errorf("object %d radius must not be negative", i))
		}
		if sphere.Material == "" {
			issues = append(issues, fmt.Errorf("object %d references no material", i))
		} else if _, ok := s.Materials[sphere.Material]; !ok {
			issues = append(issues, fmt.Errorf("object %d references unknown material %q", i, sphere.Material))
		}
		if sphere.Moving() {
			checkTriple(fmt.Sprintf("object %d centerEnd", i), sphere.CenterEnd, false)
			if sphere.TimeEnd <= sphere.TimeStart {
				issues = append(issues, fmt.Errorf("object %d time range is empty", i))
			}
		}
	}

	return issues
}
