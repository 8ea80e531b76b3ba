package render

import "math"

// DepthBuffer records the nearest accepted depth per pixel for one frame.
// Values are row-major (x + y*Width). After Reset every cell holds +Inf;
// during the frame a cell only ever decreases and accepted values lie in
// [0, 1].
type DepthBuffer struct {
	Width  int
	Height int
	Values []float64
}

// NewDepthBuffer creates a depth buffer already reset to +Inf.
func NewDepthBuffer(width, height int) *DepthBuffer {
	db := &DepthBuffer{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}
	db.Reset()
	return db
}

// Reset fills the buffer with the "no hit" sentinel. Call once per frame,
// before the first mesh.
func (db *DepthBuffer) Reset() {
	n := len(db.Values)
	if n == 0 {
		return
	}
	// copy-doubling fill
	db.Values[0] = math.Inf(1)
	for i := 1; i < n; i *= 2 {
		copy(db.Values[i:], db.Values[:i])
	}
}

// Test reports whether depth z would be accepted at pixel index i: z must lie
// in [0, 1] and be strictly less than the stored value.
func (db *DepthBuffer) Test(i int, z float64) bool {
	if z < 0 || z > 1 {
		return false
	}
	return z < db.Values[i]
}

// Commit stores z at pixel index i. Callers must Test first.
func (db *DepthBuffer) Commit(i int, z float64) {
	db.Values[i] = z
}

// At returns the depth at (x, y), or +Inf outside the buffer.
func (db *DepthBuffer) At(x, y int) float64 {
	if x < 0 || x >= db.Width || y < 0 || y >= db.Height {
		return math.Inf(1)
	}
	return db.Values[y*db.Width+x]
}
