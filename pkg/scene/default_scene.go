package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// NewDefaultScene creates a small still life: a red diffuse sphere, a hollow
// glass sphere and a mirror sphere in a row, two tiny diffuse marbles, and a
// large brown ground sphere, seen with a shallow depth of field
func NewDefaultScene() (*Scene, error) {
	eye := core.NewVec3(-5, 0.5, 0.75)

	cameraConfig := renderer.CameraConfig{
		Center:      eye,
		LookAt:      core.NewVec3(1, -0.25, -1), // Look at far ball
		Up:          core.NewVec3(0, 1, 0),
		VFov:        20.0,
		AspectRatio: 16.0 / 9.0,
		Aperture:    0.1,
		// Focus on the near (mirror) ball
		FocusDistance: core.NewVec3(-1, 0, -1).Subtract(eye).Length(),
	}

	samplingConfig := renderer.SamplingConfig{
		Width:           400,
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}

	s, err := NewScene(cameraConfig, samplingConfig)
	if err != nil {
		return nil, err
	}

	earthBrown := core.NewVec3(112.0/256, 72.0/256, 60.0/256).Multiply(1.2)
	materialGround := material.NewLambertian(earthBrown)
	materialDiffuse := material.NewLambertian(core.NewVec3(1, 0.2, 0.2))
	materialMetal := material.NewMetal(core.NewVec3(0.8, 0.8, 0.8), 0)
	materialGlass := material.NewDielectric(1.5)

	const marbleRadius = 1.0 / 16

	s.AddSphere(core.NewVec3(1, 0, -1), 0.5, materialDiffuse)
	// Hollow glass: the inner sphere's negative radius flips its normal inward
	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, materialGlass)
	s.AddSphere(core.NewVec3(0, 0, -1), -0.49, materialGlass)
	s.AddSphere(core.NewVec3(-1, 0, -1), 0.5, materialMetal)
	s.AddSphere(core.NewVec3(-1, -0.5+marbleRadius, -1+0.75), marbleRadius, materialDiffuse)
	s.AddSphere(core.NewVec3(-1-0.75, -0.5+marbleRadius, -1), marbleRadius, materialDiffuse)

	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, materialGround)

	return s, nil
}
