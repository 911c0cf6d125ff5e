package renderer

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidCamera is returned when a camera configuration cannot define a view
var ErrInvalidCamera = errors.New("invalid camera configuration")

// CameraConfig contains all camera configuration parameters
type CameraConfig struct {
	Center        core.Vec3 // Camera position (eye)
	LookAt        core.Vec3 // Point the camera looks at
	Up            core.Vec3 // Up hint, need not be orthogonal to the view direction
	VFov          float32   // Vertical field of view in degrees
	AspectRatio   float32   // Width / height
	Aperture      float32   // Lens diameter; 0 is a pinhole camera
	FocusDistance float32   // Distance to the focus plane; 0 = auto (distance to LookAt)
}

// DefaultCameraConfig returns a pinhole camera at the origin looking down -Z
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90.0,
		AspectRatio: 16.0 / 9.0,
	}
}

// Validate reports configurations that would produce NaN or degenerate rays
func (c CameraConfig) Validate() error {
	switch {
	case !(c.AspectRatio > 0) || math32.IsInf(c.AspectRatio, 0):
		return fmt.Errorf("%w: aspect ratio %v must be positive", ErrInvalidCamera, c.AspectRatio)
	case !(c.VFov > 0 && c.VFov < 180):
		return fmt.Errorf("%w: vertical fov %v must be in (0, 180) degrees", ErrInvalidCamera, c.VFov)
	case !(c.Aperture >= 0) || math32.IsInf(c.Aperture, 0):
		return fmt.Errorf("%w: aperture %v must be finite and not negative", ErrInvalidCamera, c.Aperture)
	case math32.IsNaN(c.FocusDistance) || math32.IsInf(c.FocusDistance, 0):
		// Zero or negative still selects the distance to LookAt
		return fmt.Errorf("%w: focus distance %v must be finite", ErrInvalidCamera, c.FocusDistance)
	case !c.Center.IsFinite() || !c.LookAt.IsFinite() || !c.Up.IsFinite():
		return fmt.Errorf("%w: camera vectors must be finite", ErrInvalidCamera)
	case c.Center.Subtract(c.LookAt).NearZero():
		return fmt.Errorf("%w: eye and target coincide at %v", ErrInvalidCamera, c.Center)
	case c.Up.Cross(c.Center.Subtract(c.LookAt)).NearZero():
		return fmt.Errorf("%w: up vector %v is parallel to the view direction", ErrInvalidCamera, c.Up)
	}
	return nil
}

// Camera generates rays for rendering, with thin lens depth of field
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3 // Camera basis vectors
	lensRadius      float32
	config          CameraConfig
}

// NewCamera creates a camera from the given configuration
func NewCamera(config CameraConfig) (*Camera, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	theta := mgl32.DegToRad(config.VFov)
	halfHeight := math32.Tan(theta / 2)
	viewportHeight := 2.0 * halfHeight
	viewportWidth := config.AspectRatio * viewportHeight

	// Orthonormal basis: w points backwards, away from the target
	w := config.Center.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	focusDistance := config.FocusDistance
	if focusDistance <= 0 {
		focusDistance = config.Center.Subtract(config.LookAt).Length()
	}

	origin := config.Center
	horizontal := u.Multiply(viewportWidth * focusDistance)
	vertical := v.Multiply(viewportHeight * focusDistance)
	lowerLeftCorner := origin.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w.Multiply(focusDistance))

	return &Camera{
		origin:          origin,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      config.Aperture / 2,
		config:          config,
	}, nil
}

// GetRay generates a ray for screen coordinates (s, t), where (0, 0) is the
// bottom-left of the viewport and (1, 1) the top-right. The sampler is only
// consulted when the camera has an aperture.
func (c *Camera) GetRay(s, t float32, sampler core.Sampler) core.Ray {
	origin := c.origin
	if c.lensRadius > 0 {
		lens := core.RandomInUnitDisk(sampler).Multiply(c.lensRadius)
		origin = origin.Add(c.u.Multiply(lens.X)).Add(c.v.Multiply(lens.Y))
	}

	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(origin)

	return core.NewRay(origin, direction)
}

// GetCameraForward returns the unit direction the camera looks in
func (c *Camera) GetCameraForward() core.Vec3 {
	return c.w.Negate()
}

// GetConfig returns the configuration the camera was built from
func (c *Camera) GetConfig() CameraConfig {
	return c.config
}
