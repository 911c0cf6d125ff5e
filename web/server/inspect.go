package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/chewxy/math32"
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType,omitempty"`
	Point        [3]float32             `json:"point"`
	Normal       [3]float32             `json:"normal"`
	Distance     float32                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Background   [3]float32             `json:"background"` // Sky color along the ray
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

func vec(v core.Vec3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// materialInfo describes a material for display
func materialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = vec(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		return "lambertian", properties

	case *material.Metal:
		properties["albedo"] = vec(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		properties["fuzzness"] = m.Fuzzness
		return "metal", properties

	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["color"] = "#ffffff"
		return "dielectric", properties

	default:
		return "unknown", properties
	}
}

// InspectResult is what an inspection ray found
type InspectResult struct {
	Ray    core.Ray
	Hit    *material.HitRecord // nil on a miss
	Sphere *geometry.Sphere    // The sphere that produced Hit
}

// inspectPixel casts an unjittered pinhole ray through the center of pixel
// (x, y), y = 0 being the top row, and reports the nearest sphere it hits
func inspectPixel(sceneObj *scene.Scene, pixelX, pixelY int) InspectResult {
	config := sceneObj.GetSamplingConfig()
	s := (float32(pixelX) + 0.5) / float32(config.Width)
	t := (float32(config.Height-1-pixelY) + 0.5) / float32(config.Height)

	// A lens sample at the disk center keeps the ray on the pinhole path
	sampler := core.NewSequenceSampler(nil, []core.Vec2{core.NewVec2(0.5, 0.5)}, nil)
	ray := sceneObj.GetCamera().GetRay(s, t, sampler)

	result := InspectResult{Ray: ray}
	closest := math32.Inf(1)
	for _, shape := range sceneObj.World.Shapes {
		hit, ok := shape.Hit(ray, integrator.ShadowAcneEpsilon, closest)
		if !ok {
			continue
		}
		closest = hit.T
		result.Hit = hit
		result.Sphere, _ = shape.(*geometry.Sphere)
	}

	return result
}

// handleInspect reports the surface seen through one pixel
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	req, err := parseRenderRequest(values)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	pixelX, err := strconv.Atoi(values.Get("x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(values.Get("y"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}

	sceneObj, err := s.createScene(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	config := sceneObj.GetSamplingConfig()
	if pixelX < 0 || pixelX >= config.Width || pixelY < 0 || pixelY >= config.Height {
		writeError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	result := inspectPixel(sceneObj, pixelX, pixelY)
	response := InspectResponse{Background: vec(integrator.BackgroundGradient(result.Ray))}
	if result.Hit == nil {
		writeJSON(w, http.StatusOK, response)
		return
	}

	materialType, materialProps := materialInfo(result.Hit.Material)
	geometryProps := map[string]interface{}{}
	if result.Sphere != nil {
		geometryProps["center"] = vec(result.Sphere.Center)
		geometryProps["radius"] = result.Sphere.Radius
	}

	response.Hit = true
	response.MaterialType = materialType
	response.Point = vec(result.Hit.Point)
	response.Normal = vec(result.Hit.Normal)
	response.Distance = result.Hit.T
	response.FrontFace = result.Hit.FrontFace
	response.Properties = map[string]interface{}{
		"material": materialProps,
		"geometry": geometryProps,
	}

	writeJSON(w, http.StatusOK, response)
}
