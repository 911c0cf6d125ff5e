package loaders

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/df07/go-pathtracer/pkg/core"
	"golang.org/x/image/colornames"
)

// Vec3 is a JSON three-element array [x, y, z]
type Vec3 core.Vec3

// UnmarshalJSON decodes [x, y, z]
func (v *Vec3) UnmarshalJSON(data []byte) error {
	var values []float32
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("vector must be an array of 3 numbers: %w", err)
	}
	if len(values) != 3 {
		return fmt.Errorf("vector must have 3 components, got %d", len(values))
	}
	*v = Vec3{X: values[0], Y: values[1], Z: values[2]}
	return nil
}

// Vec returns the value as a core vector
func (v Vec3) Vec() core.Vec3 {
	return core.Vec3(v)
}

// Color is a linear RGB color, written in JSON either as [r, g, b] with
// components in [0, 1] or as a CSS/SVG color name such as "steelblue"
type Color core.Vec3

// UnmarshalJSON decodes an RGB array or a named color
func (c *Color) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		rgb, err := ParseNamedColor(name)
		if err != nil {
			return err
		}
		*c = Color(rgb)
		return nil
	}

	var v Vec3
	if err := v.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("color must be [r, g, b] or a color name: %w", err)
	}
	*c = Color(v)
	return nil
}

// Vec returns the color as a core vector
func (c Color) Vec() core.Vec3 {
	return core.Vec3(c)
}

// ParseNamedColor resolves a CSS/SVG color name to RGB in [0, 1]
func ParseNamedColor(name string) (core.Vec3, error) {
	rgba, ok := colornames.Map[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return core.Vec3{}, fmt.Errorf("%w: %q", ErrUnknownColor, name)
	}
	return core.NewVec3(float32(rgba.R)/255, float32(rgba.G)/255, float32(rgba.B)/255), nil
}
