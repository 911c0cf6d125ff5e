package scene

import (
	"fmt"

	"github.com/df07/go-pathtracer/pkg/loaders"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// NewFileScene loads a JSON scene file
func NewFileScene(filename string) (*Scene, error) {
	sceneFile, err := loaders.LoadSceneFile(filename)
	if err != nil {
		return nil, err
	}
	return NewSceneFromFile(sceneFile)
}

// NewSceneFromFile builds a scene from a parsed scene description. Spheres that
// name the same material share a single material instance.
func NewSceneFromFile(sceneFile *loaders.SceneFile) (*Scene, error) {
	cameraConfig := sceneFile.Camera.CameraConfig()
	samplingConfig := sceneFile.Sampling.SamplingConfig(renderer.DefaultSamplingConfig())

	s, err := NewScene(cameraConfig, samplingConfig)
	if err != nil {
		return nil, fmt.Errorf("scene %q: %w", sceneFile.Name, err)
	}

	materials := make(map[string]material.Material, len(sceneFile.Materials))
	for _, name := range sceneFile.MaterialNames() {
		mat, err := sceneFile.Materials[name].Build()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = mat
	}

	for i, sphere := range sceneFile.Spheres {
		mat, ok := materials[sphere.Material]
		if !ok {
			return nil, fmt.Errorf("sphere %d: %w %q", i, loaders.ErrUnknownMaterial, sphere.Material)
		}
		s.AddSphere(sphere.Center.Vec(), sphere.Radius, mat)
	}

	return s, nil
}
