package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/output"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

func main() {
	// Parse command line flags
	sceneType := flag.String("scene", "default", "Scene: a built-in scene ID or a path to a .json scene file")
	scenesDir := flag.String("scenes-dir", "scenes", "Directory searched for .json scene files by -list")
	width := flag.Int("width", 0, "Image width in pixels (0 = scene default; height follows the aspect ratio)")
	samples := flag.Int("samples", 0, "Samples per pixel (0 = scene default)")
	depth := flag.Int("depth", 0, "Maximum ray bounces (0 = scene default)")
	passes := flag.Int("passes", 7, "Number of progressive passes")
	workers := flag.Int("workers", 0, "Number of parallel workers (0 = CPU count)")
	tileSize := flag.Int("tile", 64, "Tile size in pixels")
	seed := flag.Int64("seed", 42, "Random seed for sampling and random scenes")
	out := flag.String("out", "", "Output file (.png or .ppm), '-' for PPM on stdout (default output/<scene>/render_<timestamp>.png)")
	list := flag.Bool("list", false, "List available scenes and exit")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	logger := renderer.NewDefaultLogger()

	if *help {
		showHelp()
		return
	}

	if *list {
		if err := listScenes(*scenesDir); err != nil {
			logger.Printf("Error listing scenes: %v\n", err)
			os.Exit(1)
		}
		return
	}

	selectedScene, err := createScene(*sceneType, *seed)
	if err != nil {
		logger.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	err = selectedScene.ApplySamplingOverrides(renderer.SamplingConfig{
		Width:           *width,
		SamplesPerPixel: *samples,
		MaxDepth:        *depth,
	})
	if err != nil {
		logger.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	config := renderer.DefaultProgressiveConfig()
	config.MaxSamplesPerPixel = selectedScene.GetSamplingConfig().SamplesPerPixel
	config.MaxPasses = *passes
	config.NumWorkers = *workers
	config.TileSize = *tileSize
	config.Seed = *seed

	filename := *out
	if filename == "" {
		filename = defaultOutputPath(*sceneType, time.Now())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := render(ctx, selectedScene, config, filename, logger); err != nil {
		logger.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// createScene creates a built-in scene or loads a scene file
func createScene(sceneType string, seed int64) (*scene.Scene, error) {
	if sceneType == "" {
		return nil, fmt.Errorf("scene name cannot be empty")
	}
	return scene.CreateScene(sceneType, seed)
}

// render runs the progressive passes and saves the last finished image. If the
// render is interrupted, the most recent pass is still saved.
func render(ctx context.Context, s *scene.Scene, config renderer.ProgressiveConfig, filename string, logger core.Logger) error {
	sampling := s.GetSamplingConfig()
	logger.Printf("Rendering %dx%d, %d samples per pixel, max depth %d\n",
		sampling.Width, sampling.Height, sampling.SamplesPerPixel, sampling.MaxDepth)

	raytracer, err := renderer.NewProgressiveRaytracer(s, config, logger)
	if err != nil {
		return err
	}

	startTime := time.Now()
	passChan, errChan := raytracer.RenderProgressive(ctx)

	var last *renderer.PassResult
	for result := range passChan {
		last = &result
	}
	renderErr := <-errChan

	if last == nil {
		if renderErr == nil {
			renderErr = errors.New("no passes were rendered")
		}
		return renderErr
	}

	logger.Printf("Render completed in %v\n", time.Since(startTime))
	logger.Printf("Samples per pixel: %.1f (range %d - %d)\n",
		last.Stats.AverageSamples, last.Stats.MinSamples, last.Stats.MaxSamplesUsed)

	if err := output.Save(filename, last.Image); err != nil {
		return err
	}
	if filename != output.Stdout {
		logger.Printf("Render saved as %s\n", filename)
	}

	if renderErr != nil && !errors.Is(renderErr, context.Canceled) {
		return renderErr
	}
	return nil
}

// defaultOutputPath returns output/<scene>/render_<timestamp>.png
func defaultOutputPath(sceneType string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(sceneType), filepath.Ext(sceneType))
	timestamp := now.Format("20060102_150405")
	return filepath.Join("output", name, fmt.Sprintf("render_%s.png", timestamp))
}

func listScenes(dir string) error {
	groups, err := scene.ListAllScenes(dir)
	if err != nil {
		return err
	}
	for _, group := range groups {
		fmt.Printf("%s:\n", group.Name)
		for _, info := range group.Scenes {
			fmt.Printf("  %-16s %s", info.ID, info.Name)
			if info.Description != "" {
				fmt.Printf(" - %s", info.Description)
			}
			fmt.Println()
		}
	}
	return nil
}

func showHelp() {
	fmt.Println("Sphere Path Tracer")
	fmt.Println("Usage: pathtracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	for _, info := range scene.BuiltInScenes() {
		fmt.Printf("  %-12s - %s\n", info.ID, info.Description)
	}
	fmt.Println("  <file>.json  - JSON scene file")
	fmt.Println()
	fmt.Println("Output is saved to output/<scene>/render_<timestamp>.png unless -out is given")
}
