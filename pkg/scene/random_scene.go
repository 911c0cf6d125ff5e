package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// NewRandomScene creates the classic cover image: a gray ground, a 22x22 grid
// of small randomly placed spheres (80% diffuse, 15% metal, 5% glass) and three
// large spheres. The same seed always produces the same scene.
func NewRandomScene(seed int64) (*Scene, error) {
	cameraConfig := renderer.CameraConfig{
		Center:        core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          20.0,
		AspectRatio:   3.0 / 2.0,
		Aperture:      0.1,
		FocusDistance: 10.0,
	}

	samplingConfig := renderer.SamplingConfig{
		Width:           600,
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}

	s, err := NewScene(cameraConfig, samplingConfig)
	if err != nil {
		return nil, err
	}

	sampler := core.NewSeededSampler(seed)
	random := func(lo, hi float32) float32 {
		return lo + (hi-lo)*sampler.Get1D()
	}
	randomColor := func(lo, hi float32) core.Vec3 {
		return core.NewVec3(random(lo, hi), random(lo, hi), random(lo, hi))
	}

	s.AddSphere(core.NewVec3(0, -1000, 0), 1000, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))

	// Keep the small spheres clear of the big metal sphere
	clearing := core.NewVec3(4, 0.2, 0)

	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := sampler.Get1D()
			center := core.NewVec3(float32(a)+0.9*sampler.Get1D(), 0.2, float32(b)+0.9*sampler.Get1D())

			if center.Subtract(clearing).Length() <= 0.9 {
				continue
			}

			var sphereMaterial material.Material
			switch {
			case chooseMat < 0.8:
				albedo := randomColor(0, 1).MultiplyVec(randomColor(0, 1))
				sphereMaterial = material.NewLambertian(albedo)
			case chooseMat < 0.95:
				sphereMaterial = material.NewMetal(randomColor(0.5, 1), random(0, 0.5))
			default:
				sphereMaterial = material.NewDielectric(1.5)
			}
			s.AddSphere(center, 0.2, sphereMaterial)
		}
	}

	s.AddSphere(core.NewVec3(0, 1, 0), 1.0, material.NewDielectric(1.5))
	s.AddSphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1)))
	s.AddSphere(core.NewVec3(4, 1, 0), 1.0, material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0))

	return s, nil
}

