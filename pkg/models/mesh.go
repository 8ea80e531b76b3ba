// Package models provides mesh provisioning for the renderer: procedural
// builders, glTF loading and normal/tangent generation.
package models

import (
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
)

// Front faces are emitted clockwise as seen from outside, matching the
// rasterizer's positive screen-space area.

// Quad builds a square of side size in the XY plane facing +Z, with UV (0,0)
// at the top-left corner.
func Quad(size float64) *render.Mesh {
	h := size / 2
	var vb vertexBuilder
	vb.face(math3d.V3(0, 0, 0), math3d.V3(0, 0, 1), math3d.V3(h, 0, 0), math3d.V3(0, h, 0))
	return render.NewMesh("quad", vb.vertices, vb.indices, render.TriangleList)
}

// Cube builds an axis-aligned cube of side size centered on the origin with
// per-face normals, tangents and UVs.
func Cube(size float64) *render.Mesh {
	h := size / 2
	x, y, z := math3d.V3(1, 0, 0), math3d.V3(0, 1, 0), math3d.V3(0, 0, 1)

	var vb vertexBuilder
	faces := []struct{ n, r, u math3d.Vec3 }{
		{z, x, y},
		{z.Negate(), x.Negate(), y},
		{x, z.Negate(), y},
		{x.Negate(), z, y},
		{y, x, z.Negate()},
		{y.Negate(), x, z},
	}
	for _, f := range faces {
		vb.face(f.n.Scale(h), f.n, f.r.Scale(h), f.u.Scale(h))
	}
	return render.NewMesh("cube", vb.vertices, vb.indices, render.TriangleList)
}

// Strip builds a horizontal band of segments quads, size units tall and
// segments*size wide, centered on the origin and facing +Z. It is indexed as
// a triangle strip.
func Strip(segments int, size float64) *render.Mesh {
	h := size / 2
	left := -float64(segments) * h

	vertices := make([]render.Vertex, 0, 2*(segments+1))
	indices := make([]uint32, 0, 2*(segments+1))
	for i := range segments + 1 {
		x := left + float64(i)*size
		u := float64(i) / float64(max(segments, 1))
		// bottom then top keeps every strip triangle clockwise
		for _, row := range []struct{ y, v float64 }{{-h, 1}, {h, 0}} {
			indices = append(indices, uint32(len(vertices)))
			vertices = append(vertices, render.Vertex{
				Position: math3d.V3(x, row.y, 0),
				Color:    render.ColorWhite,
				UV:       math3d.V2(u, row.v),
				Normal:   math3d.V3(0, 0, 1),
				Tangent:  math3d.V3(1, 0, 0),
			})
		}
	}
	return render.NewMesh("strip", vertices, indices, render.TriangleStrip)
}

type vertexBuilder struct {
	vertices []render.Vertex
	indices  []uint32
}

// face appends a quad centered at c with outward normal n, half extents r
// (right) and u (up) as seen from outside.
func (b *vertexBuilder) face(c, n, r, u math3d.Vec3) {
	base := uint32(len(b.vertices))
	corners := [4]struct {
		p  math3d.Vec3
		uv math3d.Vec2
	}{
		{c.Sub(r).Add(u), math3d.V2(0, 0)},
		{c.Add(r).Add(u), math3d.V2(1, 0)},
		{c.Add(r).Sub(u), math3d.V2(1, 1)},
		{c.Sub(r).Sub(u), math3d.V2(0, 1)},
	}
	for _, k := range corners {
		b.vertices = append(b.vertices, render.Vertex{
			Position: k.p,
			Color:    render.ColorWhite,
			UV:       k.uv,
			Normal:   n.Normalize(),
			Tangent:  r.Normalize(),
		})
	}
	b.indices = append(b.indices, base, base+1, base+2, base, base+2, base+3)
}

// Bounds returns the world-space box enclosing all meshes.
func Bounds(meshes []*render.Mesh) (render.AABB, bool) {
	var box render.AABB
	found := false
	for _, m := range meshes {
		if len(m.Vertices) == 0 {
			continue
		}
		lo, hi := m.Bounds()
		b := render.AABB{Min: lo, Max: hi}.Transform(m.World)
		if !found {
			box, found = b, true
			continue
		}
		box.Min = box.Min.Min(b.Min)
		box.Max = box.Max.Max(b.Max)
	}
	return box, found
}

// Fit centers the meshes on the origin and scales them uniformly so their
// largest dimension equals size. The change is folded into each World.
func Fit(meshes []*render.Mesh, size float64) {
	box, ok := Bounds(meshes)
	if !ok {
		return
	}
	ext := box.Max.Sub(box.Min)
	maxDim := max(ext.X, ext.Y, ext.Z)
	if maxDim <= 0 {
		return
	}
	s := size / maxDim
	fit := math3d.Scale(math3d.V3(s, s, s)).Mul(math3d.Translate(box.Center().Negate()))
	for _, m := range meshes {
		m.World = fit.Mul(m.World)
	}
}

// ComputeNormals replaces the vertex normals with area-weighted averages of
// the adjacent face normals. Faces are wound clockwise from the front.
func ComputeNormals(m *render.Mesh) {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}

	tris, _ := render.AppendTriangles(nil, m.Topology, m.Indices)
	for _, t := range tris {
		p0 := m.Vertices[t[0]].Position
		p1 := m.Vertices[t[1]].Position
		p2 := m.Vertices[t[2]].Position

		// clockwise winding: e2 x e1 points out of the front face
		n := p2.Sub(p0).Cross(p1.Sub(p0))
		for _, i := range t {
			m.Vertices[i].Normal = m.Vertices[i].Normal.Add(n)
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}
