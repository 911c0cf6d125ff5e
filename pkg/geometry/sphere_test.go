package geometry

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)
	ray := core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))

	hit, isHit := sphere.Hit(ray, 0.001, 1000.0)
	if isHit {
		t.Errorf("Expected miss, but got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_FrontAndBackFace(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float32
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{
			name:           "front face hit",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectedT:      1.0,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "back face hit",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.NewVec3(0, 0, 1),
			expectedT:      1.0,
			expectedFront:  false,
			expectedNormal: core.NewVec3(0, 0, -1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)
			hit, isHit := sphere.Hit(ray, 0.001, 1000.0)

			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}
			if math32.Abs(hit.T-tt.expectedT) > 1e-6 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected front face %t, got %t", tt.expectedFront, hit.FrontFace)
			}
			if !hit.Normal.ApproxEquals(tt.expectedNormal, 1e-6) {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
		})
	}
}

func TestSphere_Hit_Tangent(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)
	ray := core.NewRay(core.NewVec3(1, 0, 2), core.NewVec3(0, 0, -1))

	_, _, discriminant := sphere.quadratic(ray)
	if math32.Abs(discriminant) > 1e-6 {
		t.Errorf("Tangent ray should have discriminant ~0, got %g", discriminant)
	}

	hit, isHit := sphere.Hit(ray, 0.001, 1000.0)
	if !isHit {
		t.Fatal("Expected tangent hit, but got miss")
	}
	if !hit.Point.ApproxEquals(core.NewVec3(1, 0, 0), 1e-5) {
		t.Errorf("Expected tangent point (1,0,0), got %v", hit.Point)
	}
}

func TestSphere_Hit_RootSelection(t *testing.T) {
	// Roots at t=4 (entry) and t=6 (exit)
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))

	tests := []struct {
		name      string
		tMin      float32
		tMax      float32
		expectHit bool
		expectedT float32
	}{
		{"smaller root preferred", 0.001, 10, true, 4},
		{"larger root when smaller below tMin", 5, 10, true, 6},
		{"both roots below tMin", 7, 10, false, 0},
		{"both roots above tMax", 0.001, 3, false, 0},
		{"range between roots", 4.5, 5.5, false, 0},
		{"inclusive bound", 4, 4, true, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := sphere.Hit(ray, tt.tMin, tt.tMax)
			if isHit != tt.expectHit {
				t.Fatalf("Expected hit=%t, got %t", tt.expectHit, isHit)
			}
			if isHit && math32.Abs(hit.T-tt.expectedT) > 1e-5 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
		})
	}
}

func TestSphere_Hit_NormalOpposesRay(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0.3, -0.2, 0.1), 1.5, nil)
	sampler := core.NewSeededSampler(42)

	hits := 0
	for i := 0; i < 2000; i++ {
		origin := core.RandomInUnitSphere(sampler).Multiply(4)
		direction := core.RandomUnitVector(sampler)
		ray := core.NewRay(origin, direction)

		hit, isHit := sphere.Hit(ray, 0.001, math32.Inf(1))
		if !isHit {
			continue
		}
		hits++
		if ray.Direction.Dot(hit.Normal) > 0 {
			t.Fatalf("Normal %v does not oppose ray direction %v", hit.Normal, ray.Direction)
		}
		if math32.Abs(hit.Normal.Length()-1) > 1e-4 {
			t.Fatalf("Normal should be unit length, got %f", hit.Normal.Length())
		}
	}

	if hits == 0 {
		t.Fatal("Expected some random rays to hit the sphere")
	}
}

func TestSphere_Hit_NegativeRadius(t *testing.T) {
	positive := NewSphere(core.NewVec3(0, 0, 0), 0.5, nil)
	negative := NewSphere(core.NewVec3(0, 0, 0), -0.5, nil)
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	posHit, posOK := positive.Hit(ray, 0.001, 100)
	negHit, negOK := negative.Hit(ray, 0.001, 100)
	if !posOK || !negOK {
		t.Fatalf("Both spheres should be hit, got positive=%t negative=%t", posOK, negOK)
	}

	// Same surface, same t
	if posHit.T != negHit.T {
		t.Errorf("Negative radius should not move the surface: %f vs %f", posHit.T, negHit.T)
	}

	// Outward normal is flipped, so the ray now arrives from the "inside"
	if !posHit.FrontFace {
		t.Error("Positive sphere should be hit on its front face")
	}
	if negHit.FrontFace {
		t.Error("Negative sphere should report a back face hit")
	}

	// The oriented normal still opposes the ray
	if !negHit.Normal.ApproxEquals(core.NewVec3(0, 0, 1), 1e-6) {
		t.Errorf("Expected oriented normal (0,0,1), got %v", negHit.Normal)
	}
}

func TestSphere_Hit_ZeroDirection(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 0))

	if _, isHit := sphere.Hit(ray, 0.001, 1000); isHit {
		t.Error("A zero-length ray direction should never hit")
	}
}

func TestSphere_Hit_NonFiniteDirection(t *testing.T) {
	nan := math32.NaN()
	inf := math32.Inf(1)

	tests := []struct {
		name      string
		center    core.Vec3
		direction core.Vec3
	}{
		{"NaN direction far sphere", core.NewVec3(100, 100, 100), core.NewVec3(nan, nan, nan)},
		{"NaN direction enclosing sphere", core.NewVec3(0, 0, 0), core.NewVec3(nan, nan, nan)},
		{"single NaN component", core.NewVec3(0, 0, -5), core.NewVec3(0, nan, -1)},
		{"infinite direction", core.NewVec3(0, 0, -5), core.NewVec3(0, 0, -inf)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sphere := NewSphere(tt.center, 1.0, nil)
			ray := core.NewRay(core.NewVec3(0, 0, 0), tt.direction)

			if hit, isHit := sphere.Hit(ray, 0.001, math32.Inf(1)); isHit {
				t.Errorf("Expected miss for direction %v, got hit at t=%f", tt.direction, hit.T)
			}
		})
	}
}

func TestSphere_Hit_AttachesSharedMaterial(t *testing.T) {
	mat := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	a := NewSphere(core.NewVec3(-2, 0, 0), 1, mat)
	b := NewSphere(core.NewVec3(2, 0, 0), 1, mat)

	hitA, okA := a.Hit(core.NewRay(core.NewVec3(-2, 0, 5), core.NewVec3(0, 0, -1)), 0.001, 100)
	hitB, okB := b.Hit(core.NewRay(core.NewVec3(2, 0, 5), core.NewVec3(0, 0, -1)), 0.001, 100)
	if !okA || !okB {
		t.Fatal("Expected both spheres to be hit")
	}
	if hitA.Material != material.Material(mat) || hitB.Material != material.Material(mat) {
		t.Error("Hit records should reference the shared material instance")
	}
}
