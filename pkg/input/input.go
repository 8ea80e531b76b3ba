// Package input turns per-frame key state into camera motion and one-shot
// mode toggles. It knows nothing about where the key state comes from.
package input

import "github.com/taigrr/prism/pkg/math3d"

// Action names something the viewer can do in response to a key.
type Action string

const (
	ToggleDepth     Action = "toggle-depth"
	ToggleRotation  Action = "toggle-rotation"
	ToggleNormalMap Action = "toggle-normal-map"
	CycleShading    Action = "cycle-shading"
	CycleRender     Action = "cycle-render"
)

// Toggles lists the one-shot actions in the order they are checked.
var Toggles = []Action{ToggleDepth, ToggleRotation, ToggleNormalMap, CycleShading, CycleRender}

// DefaultBindings maps key names to toggle actions.
func DefaultBindings() map[string]Action {
	return map[string]Action{
		"f4": ToggleDepth,
		"f5": ToggleRotation,
		"f6": ToggleNormalMap,
		"f7": CycleShading,
		"f8": CycleRender,
	}
}

// State is the input sampled for one frame.
type State struct {
	// Move is the requested camera motion: X right, Y up, Z forward.
	// Each component is -1, 0 or 1.
	Move math3d.Vec3
	// Look is the accumulated pointer motion in cells since the last frame.
	// X turns right, Y turns down.
	Look math3d.Vec2
	// Fast applies the speed multiplier.
	Fast bool

	held map[Action]bool
}

// Hold marks action as held during this frame.
func (s *State) Hold(a Action) {
	if s.held == nil {
		s.held = make(map[Action]bool)
	}
	s.held[a] = true
}

// Held reports whether action was held during this frame.
func (s *State) Held(a Action) bool {
	return s.held[a]
}

// Reset clears the state for the next frame.
func (s *State) Reset() {
	s.Move = math3d.Vec3{}
	s.Look = math3d.Vec2{}
	s.Fast = false
	clear(s.held)
}
