package render

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

// InViewVolume tests a pre-divide clip position against the canonical view
// volume |x| <= w, |y| <= w, 0 <= z <= w. Points with w <= 0 lie on or
// behind the camera plane and are always outside.
func InViewVolume(clip math3d.Vec4) bool {
	w := clip.W
	if w <= 0 {
		return false
	}
	return math.Abs(clip.X) <= w && math.Abs(clip.Y) <= w && clip.Z >= 0 && clip.Z <= w
}

// TriangleVisible reports whether all three vertices lie inside the view
// volume. A single failing vertex drops the whole triangle; nothing is
// clipped.
func TriangleVisible(v0, v1, v2 TransformedVertex) bool {
	return InViewVolume(v0.Clip()) && InViewVolume(v1.Clip()) && InViewVolume(v2.Clip())
}
