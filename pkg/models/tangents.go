package models

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
)

// ComputeTangents derives per-vertex tangents from positions and UVs so the
// shader can build a (T, N×T, N) basis for normal mapping. Tangents are
// orthogonalized against the vertex normal. Triangles with no UV area add
// nothing; vertices left without a tangent get an arbitrary one
// perpendicular to the normal.
func ComputeTangents(m *render.Mesh) {
	for i := range m.Vertices {
		m.Vertices[i].Tangent = math3d.Zero3()
	}

	tris, _ := render.AppendTriangles(nil, m.Topology, m.Indices)
	for _, t := range tris {
		v0, v1, v2 := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)
		d1 := v1.UV.Sub(v0.UV)
		d2 := v2.UV.Sub(v0.UV)

		denom := d1.Cross(d2)
		if denom == 0 {
			continue
		}
		tangent := e1.Scale(d2.Y).Sub(e2.Scale(d1.Y)).Scale(1 / denom)
		for _, i := range t {
			m.Vertices[i].Tangent = m.Vertices[i].Tangent.Add(tangent)
		}
	}

	for i := range m.Vertices {
		n := m.Vertices[i].Normal
		t := m.Vertices[i].Tangent

		// Gram-Schmidt: T = normalize(T - N(N·T))
		t = t.Sub(n.Scale(n.Dot(t)))
		if t.Dot(t) < 1e-12 {
			if math.Abs(n.X) < 0.9 {
				t = math3d.V3(1, 0, 0).Sub(n.Scale(n.X))
			} else {
				t = math3d.V3(0, 1, 0).Sub(n.Scale(n.Y))
			}
		}
		m.Vertices[i].Tangent = t.Normalize()
	}
}
