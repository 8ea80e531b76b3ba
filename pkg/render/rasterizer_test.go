package render

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/taigrr/prism/pkg/math3d"
)

func newTestRasterizer(width, height int) *Rasterizer {
	return NewRasterizer(NewFramebuffer(width, height), NewDepthBuffer(width, height))
}

func unlitShader() *Shader {
	sh := NewShader()
	sh.Render = RenderUnlit
	return &sh
}

// ndcVertex places a vertex directly in NDC with clip w = 1.
func ndcVertex(x, y, z float64, c Color) *TransformedVertex {
	return &TransformedVertex{
		Position: math3d.V4(x, y, z, 1),
		Normal:   math3d.V3(0, 0, 1),
		Color:    linear(c),
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestEdgeWeightsSumToOne(t *testing.T) {
	r := newTestRasterizer(200, 100)
	rng := rand.New(rand.NewPCG(1, 2))

	r.Cull = CullNone
	for range 200 {
		v := [3]*TransformedVertex{}
		for i := range v {
			v[i] = ndcVertex(rng.Float64()*2-1, rng.Float64()*2-1, 0.5, ColorWhite)
		}
		tri, ok := r.setup(v[0], v[1], v[2], &Stats{})
		if !ok || math.Abs(1/tri.invArea) < 1 {
			continue
		}
		for range 20 {
			p := math3d.V2(rng.Float64()*200, rng.Float64()*100)
			b0, b1, b2 := tri.barycentric(p)
			if sum := b0 + b1 + b2; math.Abs(sum-1) > 1e-9 {
				t.Fatalf("weights sum to %v at %v", sum, p)
			}
		}
	}
}

func TestBarycentricAtVertices(t *testing.T) {
	r := newTestRasterizer(100, 100)
	tri, ok := r.setup(
		ndcVertex(0, 0.5, 0.5, ColorWhite),
		ndcVertex(0.5, -0.5, 0.5, ColorWhite),
		ndcVertex(-0.5, -0.5, 0.5, ColorWhite),
		&Stats{},
	)
	if !ok {
		t.Fatal("triangle rejected")
	}

	for i, want := range [][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
		b0, b1, b2 := tri.barycentric(tri.p[i])
		if math.Abs(b0-want[0]) > 1e-12 || math.Abs(b1-want[1]) > 1e-12 || math.Abs(b2-want[2]) > 1e-12 {
			t.Errorf("vertex %d: got (%v, %v, %v)", i, b0, b1, b2)
		}
	}

	b0, b1, b2 := tri.barycentric(math3d.V2(0, 0))
	if b0 >= 0 && b1 >= 0 && b2 >= 0 {
		t.Error("corner of the screen should be outside")
	}
}

func TestDegenerateTriangleWritesNothing(t *testing.T) {
	tests := []struct {
		name       string
		v0, v1, v2 *TransformedVertex
	}{
		{"collinear", ndcVertex(-0.5, -0.5, 0.5, ColorWhite), ndcVertex(0, 0, 0.5, ColorWhite), ndcVertex(0.5, 0.5, 0.5, ColorWhite)},
		{"coincident", ndcVertex(0.1, 0.1, 0.5, ColorWhite), ndcVertex(0.1, 0.1, 0.5, ColorWhite), ndcVertex(0.1, 0.1, 0.5, ColorWhite)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRasterizer(64, 64)
			r.Cull = CullNone
			r.DrawTriangle(unlitShader(), tt.v0, tt.v1, tt.v2)

			if r.Stats.Fragments != 0 || r.Stats.ZeroArea != 1 {
				t.Errorf("unexpected stats %+v", r.Stats)
			}
			for i, d := range r.depth.Values {
				if !math.IsInf(d, 1) {
					t.Fatalf("pixel %d written", i)
				}
			}
		})
	}
}

func TestCoverageApproximatesArea(t *testing.T) {
	tests := []struct {
		name string
		v    [3][2]float64
	}{
		{"centered", [3][2]float64{{0, 0.5}, {0.5, -0.5}, {-0.5, -0.5}}},
		{"large", [3][2]float64{{-0.9, 0.9}, {0.9, 0.8}, {-0.7, -0.95}}},
		{"thin", [3][2]float64{{-0.9, 0.05}, {0.9, 0}, {-0.9, -0.05}}},
		{"partly off screen", [3][2]float64{{-1, 1}, {1, 1}, {-1, -1}}},
	}

	const w, h = 160, 120
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRasterizer(w, h)
			var v [3]*TransformedVertex
			var p [3]math3d.Vec2
			for i, c := range tt.v {
				v[i] = ndcVertex(c[0], c[1], 0.5, ColorWhite)
				p[i] = r.ToScreen(v[i].Position)
			}
			r.DrawTriangle(unlitShader(), v[0], v[1], v[2])

			area := math.Abs(p[1].Sub(p[0]).Cross(p[2].Sub(p[0]))) / 2
			perimeter := 0.0
			for i := range 3 {
				d := p[(i+1)%3].Sub(p[i])
				perimeter += math.Hypot(d.X, d.Y)
			}

			if diff := math.Abs(float64(r.Stats.Fragments) - area); diff > perimeter {
				t.Errorf("covered %d pixels, area %.1f (tolerance %.1f)", r.Stats.Fragments, area, perimeter)
			}
		})
	}
}

func TestBackFaceCulling(t *testing.T) {
	cw := [3]*TransformedVertex{
		ndcVertex(0, 0.5, 0.5, ColorWhite),
		ndcVertex(0.5, -0.5, 0.5, ColorWhite),
		ndcVertex(-0.5, -0.5, 0.5, ColorWhite),
	}
	ccw := [3]*TransformedVertex{cw[0], cw[2], cw[1]}

	front := newTestRasterizer(100, 100)
	front.DrawTriangle(unlitShader(), cw[0], cw[1], cw[2])
	if front.Stats.Fragments == 0 {
		t.Fatal("front face not drawn")
	}

	back := newTestRasterizer(100, 100)
	back.DrawTriangle(unlitShader(), ccw[0], ccw[1], ccw[2])
	if back.Stats.Fragments != 0 || back.Stats.BackFacing != 1 {
		t.Errorf("back face drawn: %+v", back.Stats)
	}

	both := newTestRasterizer(100, 100)
	both.Cull = CullNone
	both.DrawTriangle(unlitShader(), ccw[0], ccw[1], ccw[2])
	if both.Stats.Fragments != front.Stats.Fragments {
		t.Errorf("CullNone covered %d pixels, front face %d", both.Stats.Fragments, front.Stats.Fragments)
	}
}

// The red/green/blue triangle: its centroid pixel is
// an even mix and everything outside keeps the clear color.
func TestColorTriangleCentroid(t *testing.T) {
	r := newTestRasterizer(100, 100)
	r.fb.Clear(ColorBlack)
	r.DrawTriangle(unlitShader(),
		ndcVertex(0, 0.5, 0.5, ColorRed),
		ndcVertex(0.5, -0.5, 0.5, ColorGreen),
		ndcVertex(-0.5, -0.5, 0.5, ColorBlue),
	)

	// centroid at screen (50, 58.3)
	c := r.fb.GetPixel(50, 58)
	for name, ch := range map[string]uint8{"r": c.R, "g": c.G, "b": c.B} {
		if absDiff(ch, 85) > 6 {
			t.Errorf("channel %s = %d, want about 85 (%v)", name, ch, c)
		}
	}

	for _, p := range [][2]int{{0, 0}, {99, 99}, {10, 50}, {50, 10}} {
		if got := r.fb.GetPixel(p[0], p[1]); got != ColorBlack {
			t.Errorf("pixel %v outside the triangle is %v", p, got)
		}
	}

	if top := r.fb.GetPixel(50, 27); top.R < 200 || top.G > 50 || top.B > 50 {
		t.Errorf("pixel near the red vertex is %v", top)
	}
}

func TestDrawOrderIndependence(t *testing.T) {
	near := [3]*TransformedVertex{
		ndcVertex(-0.6, 0.6, 0.3, ColorRed),
		ndcVertex(0.4, 0.2, 0.3, ColorRed),
		ndcVertex(-0.6, -0.6, 0.3, ColorRed),
	}
	far := [3]*TransformedVertex{
		ndcVertex(-0.2, 0.7, 0.6, ColorGreen),
		ndcVertex(0.7, -0.7, 0.6, ColorGreen),
		ndcVertex(-0.7, -0.5, 0.6, ColorGreen),
	}

	draw := func(first, second [3]*TransformedVertex) *Rasterizer {
		r := newTestRasterizer(80, 80)
		sh := unlitShader()
		r.DrawTriangle(sh, first[0], first[1], first[2])
		r.DrawTriangle(sh, second[0], second[1], second[2])
		return r
	}

	a := draw(near, far)
	b := draw(far, near)
	if !slices.Equal(a.fb.Pixels, b.fb.Pixels) {
		t.Error("color buffers differ with draw order")
	}
	if !slices.Equal(a.depth.Values, b.depth.Values) {
		t.Error("depth buffers differ with draw order")
	}
	if c := a.fb.GetPixel(34, 40); c != ColorRed {
		t.Errorf("overlap pixel should show the nearer triangle, got %v", c)
	}
}

func TestDepthOutsideRangeRejected(t *testing.T) {
	r := newTestRasterizer(32, 32)
	r.DrawTriangle(unlitShader(),
		ndcVertex(0, 0.5, 1.5, ColorWhite),
		ndcVertex(0.5, -0.5, 1.5, ColorWhite),
		ndcVertex(-0.5, -0.5, 1.5, ColorWhite),
	)
	if r.Stats.Fragments != 0 || r.Stats.DepthRejected == 0 {
		t.Errorf("expected every fragment rejected, got %+v", r.Stats)
	}
}

// rampTriangle is a strongly slanted triangle seen by testCamera, reaching
// from near the camera to far away.
func rampTriangle() [3]math3d.Vec3 {
	return [3]math3d.Vec3{
		math3d.V3(0, 3, -30),
		math3d.V3(1, -0.8, 7),
		math3d.V3(-1, -0.8, 7),
	}
}

// reprojectionError interpolates world positions with the given formula
// and measures how far each one lands from the pixel center it was
// computed for. Perspective-correct weights put every interpolated point
// exactly on the pixel's view ray.
func reprojectionError(t *testing.T, mode Interpolation) (screenErr, depthErr float64) {
	t.Helper()

	cam := testCamera()
	vp := cam.ViewProjectionMatrix()
	world := rampTriangle()
	mesh := triangleMesh(world[0], world[1], world[2])
	verts := TransformVertices(mesh, vp)
	if !TriangleVisible(verts[0], verts[1], verts[2]) {
		t.Fatal("ramp triangle not visible")
	}

	r := newTestRasterizer(64, 64)
	r.Interpolation = mode
	tri, ok := r.setup(&verts[0], &verts[1], &verts[2], &Stats{})
	if !ok {
		t.Fatal("ramp triangle rejected")
	}

	samples := 0
	for y := tri.minY; y < tri.maxY; y++ {
		for x := tri.minX; x < tri.maxX; x++ {
			center := math3d.V2(float64(x)+0.5, float64(y)+0.5)
			b0, b1, b2 := tri.barycentric(center)
			if b0 < 0 || b1 < 0 || b2 < 0 {
				continue
			}
			depth, a0, a1, a2, ok := r.weights(&tri, b0, b1, b2)
			if !ok {
				continue
			}
			samples++

			p := math3d.Barycentric(world[0], world[1], world[2], a0, a1, a2)
			ndc := vp.MulVec4(math3d.V4FromV3(p, 1)).PerspectiveDivide()
			s := r.ToScreen(ndc)

			screenErr = max(screenErr, math.Hypot(s.X-center.X, s.Y-center.Y))
			depthErr = max(depthErr, math.Abs(ndc.Z-depth))
		}
	}
	if samples < 100 {
		t.Fatalf("only %d samples", samples)
	}
	return screenErr, depthErr
}

func TestInterpolationMatchesRayPlaneReference(t *testing.T) {
	screenErr, depthErr := reprojectionError(t, InterpolateViewW)
	if screenErr > 1e-6 {
		t.Errorf("w-weighted attributes off the view ray by %g pixels", screenErr)
	}
	if depthErr > 1e-9 {
		t.Errorf("screen-linear depth off by %g", depthErr)
	}
}

func TestNDCZInterpolationIsApproximate(t *testing.T) {
	exact, _ := reprojectionError(t, InterpolateViewW)
	approx, _ := reprojectionError(t, InterpolateNDCZ)
	if approx <= exact || approx < 1e-3 {
		t.Errorf("expected the z-weighted formula to drift, got %g vs %g", approx, exact)
	}
}

func BenchmarkDrawTriangle(b *testing.B) {
	r := newTestRasterizer(320, 240)
	sh := NewShader()
	v0 := ndcVertex(0, 0.9, 0.5, ColorRed)
	v1 := ndcVertex(0.9, -0.9, 0.5, ColorGreen)
	v2 := ndcVertex(-0.9, -0.9, 0.5, ColorBlue)

	for b.Loop() {
		r.depth.Reset()
		r.DrawTriangle(&sh, v0, v1, v2)
	}
}
