package geometry

import (
	"github.com/chewxy/math32"
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Sphere represents a sphere shape. A negative radius keeps the same surface
// but flips the outward normal inward, which is how hollow glass shells are built.
type Sphere struct {
	Center   core.Vec3
	Radius   float32
	Material material.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float32, mat material.Material) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: mat,
	}
}

// quadratic returns the half-b form coefficients of |O + tD - C|² = R²
func (s *Sphere) quadratic(ray core.Ray) (a, halfB, discriminant float32) {
	oc := ray.Origin.Subtract(s.Center)
	a = ray.Direction.LengthSquared()
	halfB = oc.Dot(ray.Direction)
	c := oc.LengthSquared() - s.Radius*s.Radius
	return a, halfB, halfB*halfB - a*c
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float32) (*material.HitRecord, bool) {
	a, halfB, discriminant := s.quadratic(ray)

	// A zero-length direction would divide by zero below
	if a == 0 || discriminant < 0 {
		return nil, false
	}

	sqrtD := math32.Sqrt(discriminant)

	// Try the closer intersection point first; NaN roots fail both range checks
	root := (-halfB - sqrtD) / a
	if !(root >= tMin && root <= tMax) {
		root = (-halfB + sqrtD) / a
		if !(root >= tMin && root <= tMax) {
			return nil, false
		}
	}

	hitRecord := &material.HitRecord{
		T:        root,
		Point:    ray.At(root),
		Material: s.Material,
	}

	// Dividing by the signed radius flips the normal for negative radii
	outwardNormal := hitRecord.Point.Subtract(s.Center).Divide(s.Radius)
	hitRecord.SetFaceNormal(ray, outwardNormal)

	return hitRecord, true
}
