package scene

import (
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera         *renderer.Camera
	CameraConfig   renderer.CameraConfig
	World          *geometry.ShapeList // Objects in the scene
	SamplingConfig renderer.SamplingConfig
}

// NewScene creates an empty scene. The image height is derived from the
// sampling width and the camera aspect ratio.
func NewScene(cameraConfig renderer.CameraConfig, samplingConfig renderer.SamplingConfig) (*Scene, error) {
	camera, err := renderer.NewCamera(cameraConfig)
	if err != nil {
		return nil, err
	}

	samplingConfig.Height = renderer.HeightForAspect(samplingConfig.Width, cameraConfig.AspectRatio)
	if err := samplingConfig.Validate(); err != nil {
		return nil, err
	}

	return &Scene{
		Camera:         camera,
		CameraConfig:   cameraConfig,
		World:          geometry.NewShapeList(),
		SamplingConfig: samplingConfig,
	}, nil
}

// AddSphere adds a sphere with the given material. Passing the same material
// to several spheres shares one instance between them.
func (s *Scene) AddSphere(center core.Vec3, radius float32, mat material.Material) {
	s.World.Add(geometry.NewSphere(center, radius, mat))
}

// ApplySamplingOverrides applies the non-zero fields of override. A new width
// recomputes the height from the camera aspect ratio.
func (s *Scene) ApplySamplingOverrides(override renderer.SamplingConfig) error {
	merged := renderer.MergeSamplingConfig(s.SamplingConfig, override)
	if override.Width != 0 && override.Height == 0 {
		merged.Height = renderer.HeightForAspect(merged.Width, s.CameraConfig.AspectRatio)
	}
	if err := merged.Validate(); err != nil {
		return fmt.Errorf("sampling overrides: %w", err)
	}
	s.SamplingConfig = merged
	return nil
}

// GetCamera returns the scene camera
func (s *Scene) GetCamera() *renderer.Camera {
	return s.Camera
}

// GetWorld returns the aggregate of every shape in the scene
func (s *Scene) GetWorld() geometry.Shape {
	return s.World
}

// GetSamplingConfig returns the image and sampling settings
func (s *Scene) GetSamplingConfig() renderer.SamplingConfig {
	return s.SamplingConfig
}

// GetShapeCount returns the number of shapes in the scene
func (s *Scene) GetShapeCount() int {
	return s.World.Len()
}
