package input

// EdgeDetector reports the frame on which an action goes from released to
// held. Holding a key fires once, not every frame.
type EdgeDetector struct {
	down map[Action]bool
}

// NewEdgeDetector creates a detector with every action released.
func NewEdgeDetector() *EdgeDetector {
	return &EdgeDetector{down: make(map[Action]bool)}
}

// Update records the current state of action and reports whether it just
// went down.
func (d *EdgeDetector) Update(a Action, down bool) bool {
	if d.down == nil {
		d.down = make(map[Action]bool)
	}
	was := d.down[a]
	d.down[a] = down
	return down && !was
}

// Pressed updates every action in actions from s and returns those that
// went down this frame, in order.
func (d *EdgeDetector) Pressed(s *State, actions ...Action) []Action {
	var fired []Action
	for _, a := range actions {
		if d.Update(a, s.Held(a)) {
			fired = append(fired, a)
		}
	}
	return fired
}
