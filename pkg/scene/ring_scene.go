package scene

import (
	"github.com/chewxy/math32"
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// NewRingScene creates a glass and a mirror sphere inside a ring of 24 diffuse
// spheres whose size and color vary around the circle
func NewRingScene() (*Scene, error) {
	eye := core.NewVec3(10, 2.5, 5)
	target := core.NewVec3(-4, 0, -2)

	cameraConfig := renderer.CameraConfig{
		Center:        eye,
		LookAt:        target,
		Up:            core.NewVec3(0, 1, 0),
		VFov:          20.0,
		AspectRatio:   2.0,
		Aperture:      0.05,
		FocusDistance: eye.Subtract(target).Length(),
	}

	samplingConfig := renderer.SamplingConfig{
		Width:           600,
		SamplesPerPixel: 50,
		MaxDepth:        50,
	}

	s, err := NewScene(cameraConfig, samplingConfig)
	if err != nil {
		return nil, err
	}

	s.AddSphere(core.NewVec3(0, -1000, 0), 1000, material.NewLambertian(core.NewVec3(0.88, 0.96, 0.7)))
	s.AddSphere(core.NewVec3(1.5, 1, 0), 1, material.NewDielectric(1.5))
	s.AddSphere(core.NewVec3(-1.5, 1, 0), 1, material.NewMetal(core.NewVec3(0.8, 0.9, 0.8), 0))

	const ringRadius = 3.0
	for deg := 0; deg < 360; deg += 15 {
		angle := mgl32.DegToRad(float32(deg))
		x, z := math32.Sin(angle), math32.Cos(angle)
		radius := 0.33 + x*z/9

		albedo := core.NewVec3(math32.Abs(x), 0.5+x*z/2, math32.Abs(z))
		s.AddSphere(core.NewVec3(ringRadius*x, radius, ringRadius*z), radius, material.NewLambertian(albedo))
	}

	return s, nil
}
