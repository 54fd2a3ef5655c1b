// Package camera provides the orbit camera used by the viewer.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCamera orbits around a target point.
type OrbitCamera struct {
	Target mgl32.Vec3

	// Spherical coordinates
	Distance float32
	Pitch    float32 // vertical angle, radians
	Yaw      float32 // horizontal angle, radians

	// Projection
	FovY float32 // degrees
	Near float32
	Far  float32

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates an orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        12.0,
		Pitch:           0.2,
		FovY:            45,
		Near:            0.1,
		Far:             500,
		MinDistance:     1.0,
		MaxDistance:     200.0,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// NewOrbitCameraFromEye creates an orbit camera positioned at eye looking at target.
func NewOrbitCameraFromEye(eye, target mgl32.Vec3) *OrbitCamera {
	c := NewOrbitCamera()
	c.LookFrom(eye, target)
	return c
}

// LookFrom places the camera at eye and aims it at target. Distance and
// pitch are clamped to the camera's limits.
func (c *OrbitCamera) LookFrom(eye, target mgl32.Vec3) {
	c.Target = target
	offset := eye.Sub(target)
	d := offset.Len()
	if d == 0 {
		c.Distance = c.MinDistance
		return
	}
	c.Distance = d
	c.Pitch = float32(math.Asin(float64(offset.Y() / d)))
	c.Yaw = float32(math.Atan2(float64(offset.X()), float64(offset.Z())))
	c.clamp()
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	pitch, yaw := float64(c.Pitch), float64(c.Yaw)
	offset := mgl32.Vec3{
		float32(math.Cos(pitch) * math.Sin(yaw)),
		float32(math.Sin(pitch)),
		float32(math.Cos(pitch) * math.Cos(yaw)),
	}
	return c.Target.Add(offset.Mul(c.Distance))
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}

// Projection returns the perspective projection for the given aspect ratio.
func (c *OrbitCamera) Projection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch += deltaY * c.DragSensitivity
	c.clamp()
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.clamp()
}

func (c *OrbitCamera) clamp() {
	c.Pitch = mgl32.Clamp(c.Pitch, c.MinPitch, c.MaxPitch)
	c.Distance = mgl32.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
}
