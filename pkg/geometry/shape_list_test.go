package geometry

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

func TestShapeList_Empty(t *testing.T) {
	list := NewShapeList()
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	if _, isHit := list.Hit(ray, 0.001, math32.Inf(1)); isHit {
		t.Error("Empty shape list should never be hit")
	}
}

func TestShapeList_ConcentricShell(t *testing.T) {
	glass := material.NewDielectric(1.5)
	outer := NewSphere(core.NewVec3(0, 0, -1), 0.5, glass)
	inner := NewSphere(core.NewVec3(0, 0, -1), -0.49, glass)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	orders := map[string]*ShapeList{
		"outer first": NewShapeList(outer, inner),
		"inner first": NewShapeList(inner, outer),
	}

	for name, list := range orders {
		t.Run(name, func(t *testing.T) {
			hit, isHit := list.Hit(ray, 0.001, math32.Inf(1))
			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}
			if math32.Abs(hit.T-0.5) > 1e-5 {
				t.Errorf("Expected the outer surface at t=0.5, got t=%f", hit.T)
			}
			if !hit.FrontFace {
				t.Error("Outer surface should be hit on its front face")
			}
		})
	}

	// Starting past the outer surface, the inner shell is next
	hit, isHit := NewShapeList(outer, inner).Hit(ray, 0.505, math32.Inf(1))
	if !isHit {
		t.Fatal("Expected the inner shell to be hit")
	}
	if math32.Abs(hit.T-0.51) > 1e-5 {
		t.Errorf("Expected the inner shell at t=0.51, got t=%f", hit.T)
	}
	if hit.FrontFace {
		t.Error("Inner shell has an inward normal so the ray should hit its back face")
	}
}

func TestShapeList_NaNDirectionMisses(t *testing.T) {
	nan := math32.NaN()
	list := NewShapeList(
		NewSphere(core.NewVec3(100, 100, 100), 1, nil),
		NewSphere(core.NewVec3(0, 0, -3), 1, nil),
		NewSphere(core.NewVec3(0, -100.5, -1), 100, nil),
	)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(nan, nan, nan))

	if hit, isHit := list.Hit(ray, 0.001, math32.Inf(1)); isHit {
		t.Errorf("NaN ray should miss every shape, got hit at t=%f", hit.T)
	}
}

func TestShapeList_ClosestHitWins(t *testing.T) {
	near := material.NewLambertian(core.NewVec3(1, 0, 0))
	far := material.NewLambertian(core.NewVec3(0, 0, 1))

	list := NewShapeList()
	list.Add(NewSphere(core.NewVec3(0, 0, -10), 1, far))
	list.Add(NewSphere(core.NewVec3(0, 0, -3), 1, near))
	list.Add(NewSphere(core.NewVec3(5, 0, -3), 1, far))

	if list.Len() != 3 {
		t.Fatalf("Expected 3 shapes, got %d", list.Len())
	}

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	hit, isHit := list.Hit(ray, 0.001, math32.Inf(1))
	if !isHit {
		t.Fatal("Expected hit, but got miss")
	}
	if hit.Material != material.Material(near) {
		t.Error("Expected the nearer sphere's material")
	}
	if math32.Abs(hit.T-2) > 1e-5 {
		t.Errorf("Expected t=2, got t=%f", hit.T)
	}

	// Narrow range excludes the near sphere
	hit, isHit = list.Hit(ray, 5, math32.Inf(1))
	if !isHit || math32.Abs(hit.T-9) > 1e-5 {
		t.Errorf("Expected the far sphere at t=9, got hit=%t", isHit)
	}
}
