package render

// Topology is the rule for grouping an index buffer into triangles.
type Topology int

const (
	// TriangleList groups indices into disjoint triples.
	TriangleList Topology = iota
	// TriangleStrip slides a window of three over the indices, alternating
	// winding every step so all triangles face the same way.
	TriangleStrip
)

func (t Topology) String() string {
	switch t {
	case TriangleList:
		return "list"
	case TriangleStrip:
		return "strip"
	default:
		return "unknown"
	}
}

// AppendTriangles resolves indices under topology and appends the resulting
// vertex-index triples to dst in order. Degenerate triangles (two equal
// resolved indices) are dropped; the number dropped is returned.
func AppendTriangles(dst [][3]uint32, topology Topology, indices []uint32) ([][3]uint32, int) {
	degenerate := 0
	push := func(a, b, c uint32) {
		if a == b || b == c || a == c {
			degenerate++
			return
		}
		dst = append(dst, [3]uint32{a, b, c})
	}

	switch topology {
	case TriangleStrip:
		for k := 0; k+2 < len(indices); k++ {
			flip := k % 2
			push(indices[k+2*flip], indices[k+1], indices[k+2*(1-flip)])
		}
	default:
		for k := 0; k+2 < len(indices); k += 3 {
			push(indices[k], indices[k+1], indices[k+2])
		}
	}
	return dst, degenerate
}
