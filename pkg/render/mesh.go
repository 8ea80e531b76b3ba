package render

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/prism/pkg/math3d"
)

// Vertex is an immutable mesh vertex in local space.
type Vertex struct {
	Position math3d.Vec3
	Color    Color
	UV       math3d.Vec2
	Normal   math3d.Vec3
	Tangent  math3d.Vec3
}

// TransformedVertex is the per-frame output of the vertex stage.
type TransformedVertex struct {
	// Position holds x/w, y/w, z/w and the untouched clip w. The pre-divide
	// clip coordinates are Position.{X,Y,Z}*W.
	Position math3d.Vec4
	Normal   math3d.Vec3 // world space, not renormalized
	Tangent  math3d.Vec3 // world space, not renormalized
	ViewDir  math3d.Vec3
	Color    colorful.Color
	UV       math3d.Vec2
}

// Clip reconstructs the pre-divide homogeneous clip position.
func (v TransformedVertex) Clip() math3d.Vec4 {
	w := v.Position.W
	if w == 0 {
		return v.Position
	}
	return math3d.V4(v.Position.X*w, v.Position.Y*w, v.Position.Z*w, w)
}

// Material binds the textures the shader samples. Nil samplers fall back to
// neutral values: white diffuse, black specular, zero gloss, no normal map.
type Material struct {
	Diffuse    Sampler
	Specular   Sampler
	Glossiness Sampler
	Normal     Sampler
}

// Mesh owns its vertex and index buffers, its world transform and the
// per-frame transformed vertex cache.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Topology Topology
	World    math3d.Mat4
	Material Material

	transformed []TransformedVertex
}

// NewMesh creates a mesh with an identity world transform.
func NewMesh(name string, vertices []Vertex, indices []uint32, topology Topology) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
		Topology: topology,
		World:    math3d.Identity(),
	}
}

// Transformed returns the vertex cache written by the last TransformVertices
// call. The slice is reused across frames.
func (m *Mesh) Transformed() []TransformedVertex {
	return m.transformed
}

// Bounds returns the local-space axis-aligned bounding box.
func (m *Mesh) Bounds() (lo, hi math3d.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	lo, hi = m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		lo = lo.Min(v.Position)
		hi = hi.Max(v.Position)
	}
	return lo, hi
}
