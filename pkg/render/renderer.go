package render

import (
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Scene is what the renderer draws: a camera and an ordered list of meshes.
type Scene interface {
	Camera() *Camera
	Meshes() []*Mesh
}

// Options configure a Renderer.
type Options struct {
	Cull          CullMode
	Interpolation Interpolation
	// Workers > 1 splits the screen into that many horizontal bands
	// rasterized concurrently. The image is identical to the serial one.
	Workers    int
	Background Color
}

// DefaultOptions returns back-face culling, w-weighted interpolation,
// serial rasterization and a gray background.
func DefaultOptions() Options {
	return Options{
		Cull:          CullBack,
		Interpolation: InterpolateViewW,
		Workers:       1,
		Background:    ColorGray,
	}
}

// Renderer owns the color and depth targets and drives one frame at a time.
type Renderer struct {
	Framebuffer *Framebuffer
	Depth       *DepthBuffer
	Shader      Shader
	Options     Options

	raster *Rasterizer
	tris   [][3]uint32
	setups []screenTriangle
}

// NewRenderer creates a renderer with width x height targets.
func NewRenderer(width, height int, opts Options) *Renderer {
	r := &Renderer{
		Shader:  NewShader(),
		Options: opts,
	}
	r.Resize(width, height)
	return r
}

// Resize reallocates the targets.
func (r *Renderer) Resize(width, height int) {
	r.Framebuffer = NewFramebuffer(width, height)
	r.Depth = NewDepthBuffer(width, height)
	r.raster = NewRasterizer(r.Framebuffer, r.Depth)
}

// Render draws s into the framebuffer. The depth buffer is reset once at
// the start of the frame, so meshes occlude each other regardless of
// submission order.
func (r *Renderer) Render(s Scene) Stats {
	var stats Stats

	r.raster.Cull = r.Options.Cull
	r.raster.Interpolation = r.Options.Interpolation

	r.Depth.Reset()
	r.Framebuffer.Clear(r.Options.Background)

	cam := s.Camera()
	viewProj := cam.ViewProjectionMatrix()
	frustum := NewFrustum(viewProj)

	for _, mesh := range s.Meshes() {
		stats.Meshes++

		lo, hi := mesh.Bounds()
		if len(mesh.Vertices) == 0 || !frustum.IntersectAABB(AABB{Min: lo, Max: hi}.Transform(mesh.World)) {
			stats.MeshesCulled++
			continue
		}

		verts := TransformVertices(mesh, viewProj)

		var degenerate int
		r.tris, degenerate = AppendTriangles(r.tris[:0], mesh.Topology, mesh.Indices)
		stats.Triangles += len(r.tris) + degenerate
		stats.Degenerate += degenerate

		r.setups = r.setups[:0]
		for _, tri := range r.tris {
			v0, v1, v2 := &verts[tri[0]], &verts[tri[1]], &verts[tri[2]]
			if !TriangleVisible(*v0, *v1, *v2) {
				stats.Clipped++
				continue
			}
			if t, ok := r.raster.setup(v0, v1, v2, &stats); ok {
				r.setups = append(r.setups, t)
			}
		}

		sh := r.Shader
		sh.Material = mesh.Material
		r.rasterize(&sh, &stats)
	}

	Logger().Debug("frame rendered",
		slog.Int("meshes", stats.Meshes),
		slog.Int("meshes_culled", stats.MeshesCulled),
		slog.Int("triangles", stats.Triangles),
		slog.Int("clipped", stats.Clipped),
		slog.Int("back_facing", stats.BackFacing),
		slog.Int("fragments", stats.Fragments),
	)
	return stats
}

// rasterize scan converts the prepared triangles of one mesh. With several
// workers every band replays all triangles in order, so each pixel sees
// the same sequence of depth tests as in the serial path.
func (r *Renderer) rasterize(sh *Shader, stats *Stats) {
	h := r.Framebuffer.Height
	bands := min(max(r.Options.Workers, 1), h)
	if bands <= 1 {
		for i := range r.setups {
			r.raster.fill(&r.setups[i], sh, 0, h, stats)
		}
		return
	}

	partial := make([]Stats, bands)
	var g errgroup.Group
	for b := range bands {
		y0 := b * h / bands
		y1 := (b + 1) * h / bands
		g.Go(func() error {
			for i := range r.setups {
				r.raster.fill(&r.setups[i], sh, y0, y1, &partial[b])
			}
			return nil
		})
	}
	_ = g.Wait() // bands never fail

	for _, p := range partial {
		stats.add(p)
	}
}
