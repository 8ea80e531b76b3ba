// Package render implements a CPU triangle rasterization pipeline: vertex
// transform, triangle assembly, view-volume rejection, edge-function
// rasterization with perspective-correct interpolation, depth testing and
// textured Lambert/Phong shading.
package render

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

// CullMode selects which triangle windings are rasterized.
type CullMode int

const (
	// CullBack rasterizes only triangles whose screen-space signed area is
	// positive (clockwise in y-up NDC).
	CullBack CullMode = iota
	// CullNone rasterizes both windings.
	CullNone
)

// Interpolation selects the depth and attribute interpolation formula.
type Interpolation int

const (
	// InterpolateViewW writes screen-linear NDC depth and weights attributes
	// by the reciprocal clip w. This is exact for planar triangles.
	InterpolateViewW Interpolation = iota
	// InterpolateNDCZ weights depth and attributes by the reciprocal NDC z.
	// It is an approximation kept for comparison.
	InterpolateNDCZ
)

// Stats counts what happened to the geometry of a frame.
type Stats struct {
	Meshes        int // meshes submitted
	MeshesCulled  int // meshes whose bounds were outside the frustum
	Triangles     int // triangles assembled, degenerate ones included
	Degenerate    int // triangles dropped for repeated indices
	Clipped       int // triangles with a vertex outside the view volume
	BackFacing    int // triangles rejected by the cull mode
	ZeroArea      int // triangles with no screen area
	Fragments     int // fragments shaded and written
	DepthRejected int // covered pixels that lost the depth test
}

func (s *Stats) add(o Stats) {
	s.Meshes += o.Meshes
	s.MeshesCulled += o.MeshesCulled
	s.Triangles += o.Triangles
	s.Degenerate += o.Degenerate
	s.Clipped += o.Clipped
	s.BackFacing += o.BackFacing
	s.ZeroArea += o.ZeroArea
	s.Fragments += o.Fragments
	s.DepthRejected += o.DepthRejected
}

// Rasterizer converts transformed triangles into shaded pixels.
type Rasterizer struct {
	fb            *Framebuffer
	depth         *DepthBuffer
	Cull          CullMode
	Interpolation Interpolation
	Stats         Stats
}

// NewRasterizer creates a rasterizer writing to fb and depth, which must
// have the same dimensions.
func NewRasterizer(fb *Framebuffer, depth *DepthBuffer) *Rasterizer {
	return &Rasterizer{fb: fb, depth: depth}
}

// Width returns the target width in pixels.
func (r *Rasterizer) Width() int {
	return r.fb.Width
}

// Height returns the target height in pixels.
func (r *Rasterizer) Height() int {
	return r.fb.Height
}

// ToScreen maps an NDC position to pixel coordinates: x from [-1,1] to
// [0,W] and y from [-1,1] to [H,0].
func (r *Rasterizer) ToScreen(ndc math3d.Vec4) math3d.Vec2 {
	return math3d.V2(
		(ndc.X+1)*0.5*float64(r.fb.Width),
		(1-ndc.Y)*0.5*float64(r.fb.Height),
	)
}

// DrawTriangle rasterizes one triangle over the whole target. The vertices
// must already have passed the visibility test.
func (r *Rasterizer) DrawTriangle(sh *Shader, v0, v1, v2 *TransformedVertex) {
	t, ok := r.setup(v0, v1, v2, &r.Stats)
	if !ok {
		return
	}
	r.fill(&t, sh, 0, r.fb.Height, &r.Stats)
}

// screenTriangle is a triangle prepared for scan conversion.
type screenTriangle struct {
	v       [3]*TransformedVertex
	p       [3]math3d.Vec2
	invArea float64

	minX, maxX int // columns [minX, maxX)
	minY, maxY int // rows [minY, maxY)
}

// setup maps a triangle to the screen, applies the cull mode and computes
// the clamped bounding box. The reciprocal area is computed here once.
func (r *Rasterizer) setup(v0, v1, v2 *TransformedVertex, stats *Stats) (screenTriangle, bool) {
	t := screenTriangle{
		v: [3]*TransformedVertex{v0, v1, v2},
		p: [3]math3d.Vec2{
			r.ToScreen(v0.Position),
			r.ToScreen(v1.Position),
			r.ToScreen(v2.Position),
		},
	}

	area := t.p[1].Sub(t.p[0]).Cross(t.p[2].Sub(t.p[0]))
	if area == 0 || math.IsNaN(area) {
		stats.ZeroArea++
		return t, false
	}
	if area < 0 && r.Cull == CullBack {
		stats.BackFacing++
		return t, false
	}
	t.invArea = 1 / area

	w, h := r.fb.Width, r.fb.Height
	t.minX = clampInt(int(math.Floor(min(t.p[0].X, t.p[1].X, t.p[2].X)))-1, 0, w)
	t.maxX = clampInt(int(math.Ceil(max(t.p[0].X, t.p[1].X, t.p[2].X)))+1, 0, w)
	t.minY = clampInt(int(math.Floor(min(t.p[0].Y, t.p[1].Y, t.p[2].Y)))-1, 0, h)
	t.maxY = clampInt(int(math.Ceil(max(t.p[0].Y, t.p[1].Y, t.p[2].Y)))+1, 0, h)
	return t, true
}

// fill scan converts t over rows [y0, y1).
func (r *Rasterizer) fill(t *screenTriangle, sh *Shader, y0, y1 int, stats *Stats) {
	y0 = max(y0, t.minY)
	y1 = min(y1, t.maxY)

	for y := y0; y < y1; y++ {
		for x := t.minX; x < t.maxX; x++ {
			b0, b1, b2 := t.barycentric(math3d.V2(float64(x)+0.5, float64(y)+0.5))
			if b0 < 0 || b1 < 0 || b2 < 0 {
				continue
			}

			depth, a0, a1, a2, ok := r.weights(t, b0, b1, b2)
			if !ok {
				continue
			}

			i := x + y*r.fb.Width
			if !r.depth.Test(i, depth) {
				stats.DepthRejected++
				continue
			}
			r.depth.Commit(i, depth)

			frag := interpolate(t, a0, a1, a2)
			frag.X, frag.Y, frag.Depth = x, y, depth
			r.fb.Pixels[i] = sh.Shade(&frag)
			stats.Fragments++
		}
	}
}

// barycentric returns the screen-space weights of p. They sum to one, and
// normalizing by the signed area makes all three non-negative for a point
// inside a triangle of either winding.
func (t *screenTriangle) barycentric(p math3d.Vec2) (b0, b1, b2 float64) {
	p0, p1, p2 := t.p[0], t.p[1], t.p[2]
	b0 = p2.Sub(p1).Cross(p.Sub(p1)) * t.invArea
	b1 = p0.Sub(p2).Cross(p.Sub(p2)) * t.invArea
	b2 = p1.Sub(p0).Cross(p.Sub(p0)) * t.invArea
	return b0, b1, b2
}

// weights returns the fragment depth and the perspective-correct attribute
// weights for screen-space barycentrics b0..b2.
func (r *Rasterizer) weights(t *screenTriangle, b0, b1, b2 float64) (depth, a0, a1, a2 float64, ok bool) {
	v0, v1, v2 := t.v[0].Position, t.v[1].Position, t.v[2].Position

	var q0, q1, q2 float64
	switch r.Interpolation {
	case InterpolateNDCZ:
		q0, q1, q2 = b0/v0.Z, b1/v1.Z, b2/v2.Z
	default:
		q0, q1, q2 = b0/v0.W, b1/v1.W, b2/v2.W
	}

	sum := q0 + q1 + q2
	if !(sum > 0) || math.IsInf(sum, 0) {
		return 0, 0, 0, 0, false
	}
	inv := 1 / sum

	if r.Interpolation == InterpolateNDCZ {
		depth = inv
	} else {
		depth = b0*v0.Z + b1*v1.Z + b2*v2.Z
	}
	return depth, q0 * inv, q1 * inv, q2 * inv, true
}

func interpolate(t *screenTriangle, a0, a1, a2 float64) Fragment {
	v0, v1, v2 := t.v[0], t.v[1], t.v[2]
	return Fragment{
		Normal:  math3d.Barycentric(v0.Normal, v1.Normal, v2.Normal, a0, a1, a2),
		Tangent: math3d.Barycentric(v0.Tangent, v1.Tangent, v2.Tangent, a0, a1, a2),
		ViewDir: math3d.Barycentric(v0.ViewDir, v1.ViewDir, v2.ViewDir, a0, a1, a2),
		Color: added(added(
			scaled(v0.Color, a0),
			scaled(v1.Color, a1)),
			scaled(v2.Color, a2)),
		UV: v0.UV.Scale(a0).Add(v1.UV.Scale(a1)).Add(v2.UV.Scale(a2)),
	}
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
