package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// NewDarkSphereScene creates a single black diffuse sphere in front of a
// pinhole camera. Every ray that hits it is absorbed, so it renders as a
// black disc on the sky gradient.
func NewDarkSphereScene() (*Scene, error) {
	cameraConfig := renderer.DefaultCameraConfig()
	cameraConfig.AspectRatio = 1.0

	samplingConfig := renderer.SamplingConfig{
		Width:           64,
		SamplesPerPixel: 16,
		MaxDepth:        10,
	}

	s, err := NewScene(cameraConfig, samplingConfig)
	if err != nil {
		return nil, err
	}

	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0, 0, 0)))
	return s, nil
}
