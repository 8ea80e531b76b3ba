package input

import (
	"slices"
	"testing"
)

func TestEdgeDetectorUpdate(t *testing.T) {
	tests := []struct {
		name   string
		frames []bool
		want   []bool
	}{
		{"never pressed", []bool{false, false, false}, []bool{false, false, false}},
		{"held", []bool{true, true, true}, []bool{true, false, false}},
		{"tapped twice", []bool{true, false, true, false}, []bool{true, false, true, false}},
		{"released then held", []bool{false, true, true, false, true}, []bool{false, true, false, false, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewEdgeDetector()
			for i, down := range tt.frames {
				if got := d.Update(ToggleDepth, down); got != tt.want[i] {
					t.Errorf("frame %d: Update(%v) = %v, want %v", i, down, got, tt.want[i])
				}
			}
		})
	}
}

func TestEdgeDetectorIndependentActions(t *testing.T) {
	var d EdgeDetector // zero value is usable
	if !d.Update(ToggleDepth, true) {
		t.Fatal("first press should fire")
	}
	if !d.Update(CycleShading, true) {
		t.Error("a different action should fire independently")
	}
	if d.Update(ToggleDepth, true) {
		t.Error("held action fired twice")
	}
}

func TestEdgeDetectorPressed(t *testing.T) {
	d := NewEdgeDetector()
	var s State

	s.Hold(ToggleRotation)
	s.Hold(CycleShading)
	if got := d.Pressed(&s, Toggles...); !slices.Equal(got, []Action{ToggleRotation, CycleShading}) {
		t.Errorf("first frame fired %v", got)
	}
	if got := d.Pressed(&s, Toggles...); len(got) != 0 {
		t.Errorf("held keys fired again: %v", got)
	}

	s.Reset()
	if got := d.Pressed(&s, Toggles...); len(got) != 0 {
		t.Errorf("released frame fired %v", got)
	}
	s.Hold(CycleShading)
	if got := d.Pressed(&s, Toggles...); !slices.Equal(got, []Action{CycleShading}) {
		t.Errorf("second press fired %v", got)
	}
}

func TestStateReset(t *testing.T) {
	var s State
	s.Move.Z = 1
	s.Look.X = 3
	s.Fast = true
	s.Hold(ToggleNormalMap)

	s.Reset()
	if s.Move.Z != 0 || s.Look.X != 0 || s.Fast || s.Held(ToggleNormalMap) {
		t.Errorf("state not reset: %+v", s)
	}
}

func TestDefaultBindings(t *testing.T) {
	b := DefaultBindings()
	for _, a := range Toggles {
		found := false
		for _, bound := range b {
			if bound == a {
				found = true
			}
		}
		if !found {
			t.Errorf("action %q has no key", a)
		}
	}
}
