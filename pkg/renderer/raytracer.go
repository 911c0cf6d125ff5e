package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/integrator"
)

// ErrInvalidSampling is returned for unusable image or sampling settings
var ErrInvalidSampling = errors.New("invalid sampling configuration")

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int // Image width in pixels
	Height          int // Image height in pixels
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}
}

// Validate checks that the configuration describes a renderable image
func (c SamplingConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: image size %dx%d must be positive", ErrInvalidSampling, c.Width, c.Height)
	}
	if c.SamplesPerPixel <= 0 {
		return fmt.Errorf("%w: samples per pixel %d must be positive", ErrInvalidSampling, c.SamplesPerPixel)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max depth %d must not be negative", ErrInvalidSampling, c.MaxDepth)
	}
	return nil
}

// MergeSamplingConfig returns base with every non-zero field of override applied
func MergeSamplingConfig(base, override SamplingConfig) SamplingConfig {
	if override.Width != 0 {
		base.Width = override.Width
	}
	if override.Height != 0 {
		base.Height = override.Height
	}
	if override.SamplesPerPixel != 0 {
		base.SamplesPerPixel = override.SamplesPerPixel
	}
	if override.MaxDepth != 0 {
		base.MaxDepth = override.MaxDepth
	}
	return base
}

// HeightForAspect returns the image height matching width at the given aspect ratio
func HeightForAspect(width int, aspectRatio float32) int {
	return max(1, int(float32(width)/aspectRatio))
}

// Scene interface to avoid circular imports
type Scene interface {
	GetCamera() *Camera
	GetWorld() geometry.Shape
	GetSamplingConfig() SamplingConfig
}

// Raytracer turns camera samples into pixel colors using an integrator
type Raytracer struct {
	scene      Scene
	integrator integrator.Integrator
	width      int
	height     int
	config     SamplingConfig
}

// NewRaytracer creates a raytracer using path tracing with the scene's sampling config
func NewRaytracer(scene Scene) *Raytracer {
	config := scene.GetSamplingConfig()
	return NewRaytracerWithIntegrator(scene, integrator.NewPathTracingIntegrator(config.MaxDepth))
}

// NewRaytracerWithIntegrator creates a raytracer with a custom integrator
func NewRaytracerWithIntegrator(scene Scene, integ integrator.Integrator) *Raytracer {
	config := scene.GetSamplingConfig()
	return &Raytracer{
		scene:      scene,
		integrator: integ,
		width:      config.Width,
		height:     config.Height,
		config:     config,
	}
}

// RenderBounds renders pixels within the specified bounds until each one holds
// targetSamples samples. Pixels that already have enough samples are left as is,
// which is what lets progressive passes build on each other.
func (rt *Raytracer) RenderBounds(bounds image.Rectangle, pixelStats [][]PixelStats, sampler core.Sampler, targetSamples int) RenderStats {
	camera := rt.scene.GetCamera()
	world := rt.scene.GetWorld()
	stats := newRenderStats(bounds.Dx()*bounds.Dy(), targetSamples)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			samplesUsed := rt.samplePixel(camera, world, x, y, &pixelStats[y][x], sampler, targetSamples)
			stats.update(samplesUsed)
		}
	}

	stats.finalize()
	return stats
}

// samplePixel takes jittered samples for pixel (x, y), with y = 0 the top row
func (rt *Raytracer) samplePixel(camera *Camera, world geometry.Shape, x, y int, ps *PixelStats, sampler core.Sampler, targetSamples int) int {
	initialSampleCount := ps.SampleCount

	for ps.SampleCount < targetSamples {
		s := (float32(x) + sampler.Get1D()) / float32(rt.width)
		t := (float32(rt.height-1-y) + sampler.Get1D()) / float32(rt.height)

		ray := camera.GetRay(s, t, sampler)
		ps.AddSample(rt.integrator.RayColor(ray, world, sampler))
	}

	return ps.SampleCount - initialSampleCount
}

// RenderImage renders the whole image at the configured samples per pixel on
// the calling goroutine. The context is checked between rows.
func (rt *Raytracer) RenderImage(ctx context.Context, sampler core.Sampler) (*image.RGBA, RenderStats, error) {
	pixelStats := NewPixelStatsGrid(rt.width, rt.height)
	stats := newRenderStats(0, rt.config.SamplesPerPixel)

	for y := 0; y < rt.height; y++ {
		if err := ctx.Err(); err != nil {
			return nil, RenderStats{}, err
		}
		row := image.Rect(0, y, rt.width, y+1)
		stats.merge(rt.RenderBounds(row, pixelStats, sampler, rt.config.SamplesPerPixel))
	}

	stats.finalize()
	return ImageFromPixelStats(pixelStats), stats, nil
}

// ImageFromPixelStats converts accumulated pixel statistics into an 8-bit image
func ImageFromPixelStats(pixelStats [][]PixelStats) *image.RGBA {
	height := len(pixelStats)
	width := 0
	if height > 0 {
		width = len(pixelStats[0])
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, ColorToRGBA(pixelStats[y][x].GetColor()))
		}
	}
	return img
}

// ColorToRGBA converts a linear mean color to RGBA: gamma 2 (square root),
// clamp to [0, 0.999], then scale by 256 so every channel lands in [0, 255]
func ColorToRGBA(colorVec core.Vec3) color.RGBA {
	// Negative or NaN components would turn into NaN under the square root
	if !colorVec.IsFinite() {
		colorVec = core.Vec3{}
	}
	colorVec = colorVec.Clamp(0, math32.MaxFloat32).Sqrt().Clamp(0, 0.999)

	return color.RGBA{
		R: uint8(256 * colorVec.X),
		G: uint8(256 * colorVec.Y),
		B: uint8(256 * colorVec.Z),
		A: 255,
	}
}
