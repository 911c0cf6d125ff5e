package loaders

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

var (
	// ErrUnknownMaterial is returned when a sphere references a material name that is not defined
	ErrUnknownMaterial = errors.New("unknown material")
	// ErrUnknownMaterialType is returned for a material type other than lambertian, metal or dielectric
	ErrUnknownMaterialType = errors.New("unknown material type")
	// ErrUnknownColor is returned for an unrecognised color name
	ErrUnknownColor = errors.New("unknown color name")
	// ErrInvalidScene is returned for structurally invalid scene descriptions
	ErrInvalidScene = errors.New("invalid scene")
)

// Material types understood by the loader
const (
	MaterialLambertian = "lambertian"
	MaterialMetal      = "metal"
	MaterialDielectric = "dielectric"
)

// SceneFile is the JSON description of a sphere scene
type SceneFile struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Camera      CameraSpec              `json:"camera"`
	Sampling    SamplingSpec            `json:"sampling"`
	Materials   map[string]MaterialSpec `json:"materials"`
	Spheres     []SphereSpec            `json:"spheres"`
}

// CameraSpec describes the camera. Omitted fields fall back to renderer.DefaultCameraConfig.
type CameraSpec struct {
	LookFrom      *Vec3   `json:"lookFrom"`
	LookAt        *Vec3   `json:"lookAt"`
	Up            *Vec3   `json:"up"`
	VFov          float32 `json:"vfov"`
	AspectRatio   float32 `json:"aspectRatio"`
	Aperture      float32 `json:"aperture"`
	FocusDistance float32 `json:"focusDistance"`
}

// SamplingSpec holds optional image and sampling settings; zero means "use the default"
type SamplingSpec struct {
	Width           int `json:"width"`
	SamplesPerPixel int `json:"samplesPerPixel"`
	MaxDepth        int `json:"maxDepth"`
}

// MaterialSpec describes one named material
type MaterialSpec struct {
	Type            string  `json:"type"`
	Albedo          *Color  `json:"albedo"`
	Fuzz            float32 `json:"fuzz"`
	RefractiveIndex float32 `json:"ior"`
}

// SphereSpec places a sphere with a named material. A negative radius makes a hollow shell.
type SphereSpec struct {
	Center   Vec3    `json:"center"`
	Radius   float32 `json:"radius"`
	Material string  `json:"material"`
}

// LoadSceneFile loads and parses a JSON scene file
func LoadSceneFile(filename string) (*SceneFile, error) {
	if err := validateFilePath(filename); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	sceneFile, err := ParseScene(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return sceneFile, nil
}

// ParseScene decodes and validates a JSON scene description
func ParseScene(reader io.Reader) (*SceneFile, error) {
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()

	var sceneFile SceneFile
	if err := decoder.Decode(&sceneFile); err != nil {
		return nil, fmt.Errorf("error decoding scene: %w", err)
	}

	if err := sceneFile.Validate(); err != nil {
		return nil, err
	}
	return &sceneFile, nil
}

// Validate checks material definitions and sphere references
func (sf *SceneFile) Validate() error {
	if len(sf.Spheres) == 0 {
		return fmt.Errorf("%w: no spheres", ErrInvalidScene)
	}

	for _, name := range sf.MaterialNames() {
		if err := sf.Materials[name].Validate(); err != nil {
			return fmt.Errorf("material %q: %w", name, err)
		}
	}

	for i, sphere := range sf.Spheres {
		if sphere.Radius == 0 {
			return fmt.Errorf("%w: sphere %d has zero radius", ErrInvalidScene, i)
		}
		if _, ok := sf.Materials[sphere.Material]; !ok {
			return fmt.Errorf("sphere %d: %w %q", i, ErrUnknownMaterial, sphere.Material)
		}
	}

	s := sf.Sampling
	if s.Width < 0 || s.SamplesPerPixel < 0 || s.MaxDepth < 0 {
		return fmt.Errorf("%w: sampling values must not be negative", ErrInvalidScene)
	}
	return nil
}

// MaterialNames returns the defined material names in sorted order
func (sf *SceneFile) MaterialNames() []string {
	names := make([]string, 0, len(sf.Materials))
	for name := range sf.Materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that the material type is known and has what it needs
func (m MaterialSpec) Validate() error {
	switch m.Type {
	case MaterialLambertian, MaterialMetal:
		if m.Albedo == nil {
			return fmt.Errorf("%w: %s requires an albedo", ErrInvalidScene, m.Type)
		}
	case MaterialDielectric:
		if m.RefractiveIndex <= 0 {
			return fmt.Errorf("%w: dielectric requires a positive ior", ErrInvalidScene)
		}
	default:
		return fmt.Errorf("%w %q", ErrUnknownMaterialType, m.Type)
	}
	return nil
}

// Build creates the material instance
func (m MaterialSpec) Build() (material.Material, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	switch m.Type {
	case MaterialLambertian:
		return material.NewLambertian(m.Albedo.Vec()), nil
	case MaterialMetal:
		return material.NewMetal(m.Albedo.Vec(), m.Fuzz), nil
	default:
		return material.NewDielectric(m.RefractiveIndex), nil
	}
}

// CameraConfig merges the camera description over the default camera
func (c CameraSpec) CameraConfig() renderer.CameraConfig {
	config := renderer.DefaultCameraConfig()
	if c.LookFrom != nil {
		config.Center = c.LookFrom.Vec()
	}
	if c.LookAt != nil {
		config.LookAt = c.LookAt.Vec()
	}
	if c.Up != nil {
		config.Up = c.Up.Vec()
	}
	if c.VFov != 0 {
		config.VFov = c.VFov
	}
	if c.AspectRatio != 0 {
		config.AspectRatio = c.AspectRatio
	}
	config.Aperture = c.Aperture
	config.FocusDistance = c.FocusDistance
	return config
}

// SamplingConfig merges the sampling description over base
func (s SamplingSpec) SamplingConfig(base renderer.SamplingConfig) renderer.SamplingConfig {
	return renderer.MergeSamplingConfig(base, renderer.SamplingConfig{
		Width:           s.Width,
		SamplesPerPixel: s.SamplesPerPixel,
		MaxDepth:        s.MaxDepth,
	})
}

// validateFilePath validates a scene file path
func validateFilePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	// Check for null bytes (could indicate path manipulation)
	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("invalid file path: null bytes not allowed")
	}

	cleanPath := filepath.Clean(filename)
	if len(cleanPath) > 512 {
		return fmt.Errorf("file path too long: maximum 512 characters allowed")
	}

	if !strings.EqualFold(filepath.Ext(cleanPath), ".json") {
		return fmt.Errorf("invalid file type: only .json scene files are allowed")
	}

	return nil
}
