package render

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

// Camera is a right-handed perspective camera looking down its local -Z
// axis. Orientation is stored as yaw and pitch; roll is not supported.
type Camera struct {
	Origin math3d.Vec3
	Pitch  float64 // radians, positive looks up
	Yaw    float64 // radians, positive turns left

	FOV    float64 // vertical field of view in radians
	Aspect float64 // width / height
	Near   float64
	Far    float64
}

// NewCamera creates a camera at origin looking down -Z.
func NewCamera(origin math3d.Vec3, fovDegrees, aspect, near, far float64) *Camera {
	return &Camera{
		Origin: origin,
		FOV:    fovDegrees * math.Pi / 180,
		Aspect: aspect,
		Near:   near,
		Far:    far,
	}
}

// Forward returns the unit viewing direction.
func (c *Camera) Forward() math3d.Vec3 {
	return math3d.V3(
		-math.Sin(c.Yaw)*math.Cos(c.Pitch),
		math.Sin(c.Pitch),
		-math.Cos(c.Yaw)*math.Cos(c.Pitch),
	)
}

// Right returns the unit right vector. It is always horizontal.
func (c *Camera) Right() math3d.Vec3 {
	return math3d.V3(math.Cos(c.Yaw), 0, -math.Sin(c.Yaw))
}

// Up returns the unit up vector.
func (c *Camera) Up() math3d.Vec3 {
	return c.Right().Cross(c.Forward())
}

// InverseViewMatrix returns the camera-to-world transform: the orthonormal
// basis (right, up, back) positioned at Origin.
func (c *Camera) InverseViewMatrix() math3d.Mat4 {
	return math3d.Basis(c.Right(), c.Up(), c.Forward().Negate(), c.Origin)
}

// ViewMatrix returns the world-to-camera transform.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	r, u, b := c.Right(), c.Up(), c.Forward().Negate()
	o := c.Origin
	return math3d.Mat4{
		r.X, u.X, b.X, 0,
		r.Y, u.Y, b.Y, 0,
		r.Z, u.Z, b.Z, 0,
		-r.Dot(o), -u.Dot(o), -b.Dot(o), 1,
	}
}

// ProjectionMatrix returns the zero-to-one depth perspective projection.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	return math3d.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}

// ViewProjectionMatrix returns projection · view.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// SetAspect updates the aspect ratio, e.g. after a resize.
func (c *Camera) SetAspect(width, height int) {
	if height <= 0 {
		return
	}
	c.Aspect = float64(width) / float64(height)
}

// MoveForward moves the camera along its viewing direction.
func (c *Camera) MoveForward(distance float64) {
	c.Origin = c.Origin.Add(c.Forward().Scale(distance))
}

// MoveRight strafes the camera.
func (c *Camera) MoveRight(distance float64) {
	c.Origin = c.Origin.Add(c.Right().Scale(distance))
}

// MoveUp moves the camera along world up.
func (c *Camera) MoveUp(distance float64) {
	c.Origin = c.Origin.Add(math3d.Up().Scale(distance))
}

// Rotate adds to pitch and yaw. Pitch is clamped short of straight up or
// down so the basis stays well defined.
func (c *Camera) Rotate(deltaPitch, deltaYaw float64) {
	const maxPitch = math.Pi/2 - 0.01

	c.Pitch = max(-maxPitch, min(maxPitch, c.Pitch+deltaPitch))
	c.Yaw += deltaYaw
}

// LookAt orients the camera towards target.
func (c *Camera) LookAt(target math3d.Vec3) {
	dir := target.Sub(c.Origin).Normalize()
	if dir == (math3d.Vec3{}) {
		return
	}
	c.Pitch = math.Asin(dir.Y)
	c.Yaw = math.Atan2(-dir.X, -dir.Z)
}

// WorldToScreen projects a world point to pixel coordinates and NDC depth.
// visible is false when the point is outside the view volume.
func (c *Camera) WorldToScreen(p math3d.Vec3, width, height int) (x, y, depth float64, visible bool) {
	clip := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(p, 1))
	if !InViewVolume(clip) {
		return 0, 0, 0, false
	}
	ndc := clip.PerspectiveDivide()
	x = (ndc.X + 1) * 0.5 * float64(width)
	y = (1 - ndc.Y) * 0.5 * float64(height)
	return x, y, ndc.Z, true
}
