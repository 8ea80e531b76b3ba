package render

import (
	"slices"
	"testing"

	"github.com/taigrr/prism/pkg/math3d"
)

func TestAppendTriangles(t *testing.T) {
	tests := []struct {
		name       string
		topology   Topology
		indices    []uint32
		want       [][3]uint32
		degenerate int
	}{
		{
			name:     "list",
			topology: TriangleList,
			indices:  []uint32{0, 1, 2, 2, 1, 3},
			want:     [][3]uint32{{0, 1, 2}, {2, 1, 3}},
		},
		{
			name:     "list ignores a partial triple",
			topology: TriangleList,
			indices:  []uint32{0, 1, 2, 3, 4},
			want:     [][3]uint32{{0, 1, 2}},
		},
		{
			name:     "strip alternates winding",
			topology: TriangleStrip,
			indices:  []uint32{0, 1, 2, 3, 4},
			want:     [][3]uint32{{0, 1, 2}, {3, 2, 1}, {2, 3, 4}},
		},
		{
			name:       "list drops repeated indices",
			topology:   TriangleList,
			indices:    []uint32{0, 0, 1, 1, 2, 3, 4, 5, 4},
			want:       [][3]uint32{{1, 2, 3}},
			degenerate: 2,
		},
		{
			name:       "strip drops restart triangles",
			topology:   TriangleStrip,
			indices:    []uint32{0, 1, 2, 2, 3, 4},
			want:       [][3]uint32{{0, 1, 2}, {4, 3, 2}},
			degenerate: 2,
		},
		{
			name:     "too short",
			topology: TriangleStrip,
			indices:  []uint32{0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, degenerate := AppendTriangles(nil, tt.topology, tt.indices)
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if degenerate != tt.degenerate {
				t.Errorf("degenerate = %d, want %d", degenerate, tt.degenerate)
			}
		})
	}
}

func TestAppendTrianglesAppends(t *testing.T) {
	dst := [][3]uint32{{7, 8, 9}}
	dst, _ = AppendTriangles(dst, TriangleList, []uint32{0, 1, 2})
	if len(dst) != 2 || dst[0] != [3]uint32{7, 8, 9} {
		t.Errorf("existing triangles must be kept, got %v", dst)
	}
}

// A zigzag strip of coplanar points must assemble into triangles that all
// wind the same way.
func TestStripWindingConsistent(t *testing.T) {
	var points []math3d.Vec2
	var indices []uint32
	for i := range 10 {
		points = append(points, math3d.V2(float64(i), 0), math3d.V2(float64(i)+0.3, 1))
		indices = append(indices, uint32(2*i), uint32(2*i+1))
	}

	tris, _ := AppendTriangles(nil, TriangleStrip, indices)
	if len(tris) != len(indices)-2 {
		t.Fatalf("expected %d triangles, got %d", len(indices)-2, len(tris))
	}

	first := 0.0
	for i, tri := range tris {
		p0, p1, p2 := points[tri[0]], points[tri[1]], points[tri[2]]
		area := p1.Sub(p0).Cross(p2.Sub(p0))
		if i == 0 {
			first = area
			continue
		}
		if area*first <= 0 {
			t.Errorf("triangle %d %v winds opposite to the first", i, tri)
		}
	}
}

func TestTopologyString(t *testing.T) {
	if TriangleList.String() != "list" || TriangleStrip.String() != "strip" || Topology(9).String() != "unknown" {
		t.Error("unexpected topology names")
	}
}
