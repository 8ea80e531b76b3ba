// Package scene holds what the viewer draws between frames: a camera, the
// meshes and the turntable animation applied to their world matrices.
package scene

import (
	"github.com/charmbracelet/harmonica"
	"github.com/taigrr/prism/pkg/input"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
)

// Controls tune how input moves the camera and how fast the turntable spins.
type Controls struct {
	MoveSpeed       float64 // world units per second
	SpeedMultiplier float64 // applied while input.State.Fast is set
	LookSpeed       float64 // radians per cell of pointer motion
	RotationSpeed   float64 // turntable radians per second
}

// DefaultControls returns the viewer's default tuning.
func DefaultControls() Controls {
	return Controls{
		MoveSpeed:       5,
		SpeedMultiplier: 4,
		LookSpeed:       1.0 / 32,
		RotationSpeed:   1,
	}
}

// turntable spins about the world Y axis. Its angular velocity follows a
// critically damped spring towards the target speed, so starting and
// stopping ease in and out.
type turntable struct {
	Angle    float64
	Velocity float64
	accel    float64
	spring   harmonica.Spring
}

func newTurntable(fps int) turntable {
	return turntable{spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

func (t *turntable) update(dt, target float64) {
	t.Velocity, t.accel = t.spring.Update(t.Velocity, t.accel, target)
	t.Angle += t.Velocity * dt
}

// Scene implements render.Scene.
type Scene struct {
	Rotating bool
	Controls Controls

	camera    *render.Camera
	meshes    []*render.Mesh
	base      []math3d.Mat4
	turntable turntable
}

var _ render.Scene = (*Scene)(nil)

// New creates a scene. fps is the expected update rate used by the
// turntable spring. The meshes' current world matrices become their rest
// pose.
func New(camera *render.Camera, fps int, meshes ...*render.Mesh) *Scene {
	s := &Scene{
		Rotating:  true,
		Controls:  DefaultControls(),
		camera:    camera,
		turntable: newTurntable(max(fps, 1)),
	}
	for _, m := range meshes {
		s.Add(m)
	}
	return s
}

// Add appends a mesh, using its current world matrix as the rest pose.
func (s *Scene) Add(m *render.Mesh) {
	s.meshes = append(s.meshes, m)
	s.base = append(s.base, m.World)
}

// Camera returns the scene camera.
func (s *Scene) Camera() *render.Camera { return s.camera }

// Meshes returns the meshes in submission order.
func (s *Scene) Meshes() []*render.Mesh { return s.meshes }

// Angle returns the current turntable angle in radians.
func (s *Scene) Angle() float64 { return s.turntable.Angle }

// SetAngle places the turntable at angle and stops it.
func (s *Scene) SetAngle(angle float64) {
	s.turntable.Angle = angle
	s.turntable.Velocity = 0
	s.turntable.accel = 0
	s.apply()
}

// Update advances the scene by dt seconds: it moves and turns the camera
// according to in and spins the turntable while Rotating is set.
func (s *Scene) Update(dt float64, in *input.State) {
	if in != nil {
		speed := s.Controls.MoveSpeed * dt
		if in.Fast {
			speed *= s.Controls.SpeedMultiplier
		}
		s.camera.MoveForward(in.Move.Z * speed)
		s.camera.MoveRight(in.Move.X * speed)
		s.camera.MoveUp(in.Move.Y * speed)
		s.camera.Rotate(-in.Look.Y*s.Controls.LookSpeed, -in.Look.X*s.Controls.LookSpeed)
	}

	var target float64
	if s.Rotating {
		target = s.Controls.RotationSpeed
	}
	s.turntable.update(dt, target)
	s.apply()
}

func (s *Scene) apply() {
	spin := math3d.RotateY(s.turntable.Angle)
	for i, m := range s.meshes {
		m.World = spin.Mul(s.base[i])
	}
}
