// Package shadow computes the light-space transform for the shadow depth pass.
package shadow

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Bounds describes the region that must fit inside the shadow map.
type Bounds interface {
	Center() mgl32.Vec3
	Radius() float32
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Center returns the center point of the AABB.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Radius returns the distance from center to corner (half-diagonal).
func (b AABB) Radius() float32 {
	return b.Max.Sub(b.Min).Len() / 2
}

// Transform returns the box enclosing b after applying m.
func (b AABB) Transform(m mgl32.Mat4) AABB {
	out := AABB{
		Min: mgl32.Vec3{1e30, 1e30, 1e30},
		Max: mgl32.Vec3{-1e30, -1e30, -1e30},
	}
	for i := 0; i < 8; i++ {
		corner := b.Min
		if i&1 != 0 {
			corner[0] = b.Max[0]
		}
		if i&2 != 0 {
			corner[1] = b.Max[1]
		}
		if i&4 != 0 {
			corner[2] = b.Max[2]
		}
		p := mgl32.TransformCoordinate(corner, m)
		for k := 0; k < 3; k++ {
			out.Min[k] = min(out.Min[k], p[k])
			out.Max[k] = max(out.Max[k], p[k])
		}
	}
	return out
}

// DirectionalLightMatrix computes the view-projection for the shadow map.
// lightDir is the normalized direction TO the light. The orthographic
// volume encloses the bounding sphere of bounds.
func DirectionalLightMatrix(lightDir mgl32.Vec3, bounds Bounds) mgl32.Mat4 {
	center := bounds.Center()
	radius := bounds.Radius()
	if radius <= 0 {
		radius = 1
	}

	// Light sits outside the scene along lightDir
	lightDistance := radius * 2.0
	lightPos := center.Add(lightDir.Mul(lightDistance))

	// Avoid an up vector parallel with the light
	up := mgl32.Vec3{0, 1, 0}
	if abs32(lightDir.Y()) > 0.99 {
		up = mgl32.Vec3{0, 0, 1}
	}

	view := mgl32.LookAtV(lightPos, center, up)

	padding := radius * 0.1
	halfSize := radius + padding
	near := float32(0.1)
	far := lightDistance + radius + padding

	proj := mgl32.Ortho(-halfSize, halfSize, -halfSize, halfSize, near, far)

	return proj.Mul4(view)
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
