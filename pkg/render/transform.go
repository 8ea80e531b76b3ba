package render

import (
	"github.com/taigrr/prism/pkg/math3d"
)

// TransformVertices runs the vertex stage for mesh: every vertex is taken
// from local space to clip space through viewProj·World, x/y/z are divided by
// w (w itself is kept for perspective-correct weighting), and the shading
// attributes are carried forward. Normals and tangents go through the world
// matrix only. The mesh cache is overwritten unconditionally and has the same
// length and order as mesh.Vertices.
func TransformVertices(mesh *Mesh, viewProj math3d.Mat4) []TransformedVertex {
	wvp := viewProj.Mul(mesh.World)

	if cap(mesh.transformed) < len(mesh.Vertices) {
		mesh.transformed = make([]TransformedVertex, len(mesh.Vertices))
	}
	out := mesh.transformed[:len(mesh.Vertices)]

	for i, v := range mesh.Vertices {
		clip := wvp.MulVec4(math3d.V4FromV3(v.Position, 1))
		out[i] = TransformedVertex{
			Position: clip.PerspectiveDivide(),
			Normal:   mesh.World.MulDir(v.Normal),
			Tangent:  mesh.World.MulDir(v.Tangent),
			ViewDir:  clip.Vec3().Normalize(),
			Color:    linear(v.Color),
			UV:       v.UV,
		}
	}

	mesh.transformed = out
	return out
}
