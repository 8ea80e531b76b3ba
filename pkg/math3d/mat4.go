package math3d

import "math"

// Mat4 is a 4x4 matrix stored in column-major order and applied to column
// vectors, so a.Mul(b) transforms by b first and then by a.
//
// Memory layout (indices):
// | 0  4  8  12 |
// | 1  5  9  13 |
// | 2  6  10 14 |
// | 3  7  11 15 |
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = v.X, v.Y, v.Z
	return m
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// RotateX creates a rotation matrix around the X axis.
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY creates a rotation matrix around the Y axis.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotateZ creates a rotation matrix around the Z axis.
func RotateZ(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Basis builds the matrix whose columns are the given axes and origin.
// For a camera this is the inverse view matrix (camera-to-world).
func Basis(right, up, back, origin Vec3) Mat4 {
	return Mat4{
		right.X, right.Y, right.Z, 0,
		up.X, up.Y, up.Z, 0,
		back.X, back.Y, back.Z, 0,
		origin.X, origin.Y, origin.Z, 1,
	}
}

// LookAt creates a right-handed view matrix looking from eye towards center.
// The camera looks down its local -Z axis.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)

	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

// Perspective creates a right-handed perspective projection with a
// zero-to-one depth range: view depth near maps to clip z = 0 and far maps
// to clip z = w. Clip w equals the positive view-space distance along the
// viewing axis.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	f := 1.0 / math.Tan(fovy/2)
	nf := 1.0 / (near - far)

	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, far * nf, -1,
		0, 0, far * near * nf, 0,
	}
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		for row := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row+k*4] * b[k+col*4]
			}
			m[row+col*4] = sum
		}
	}
	return m
}

// MulVec4 transforms a Vec4.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// MulPoint transforms v as a point (w=1) without a perspective divide.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return m.MulVec4(V4FromV3(v, 1)).Vec3()
}

// MulDir transforms v as a direction (w=0, no translation).
func (m Mat4) MulDir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for row := range 4 {
		for col := range 4 {
			t[col+row*4] = m[row+col*4]
		}
	}
	return t
}

// Inverse returns the inverse of m using Gauss-Jordan elimination with
// partial pivoting. ok is false when m is singular, in which case the
// identity is returned.
func (m Mat4) Inverse() (inv Mat4, ok bool) {
	a := m
	inv = Identity()

	for col := range 4 {
		pivot := col
		for row := col + 1; row < 4; row++ {
			if math.Abs(a.Get(row, col)) > math.Abs(a.Get(pivot, col)) {
				pivot = row
			}
		}
		if math.Abs(a.Get(pivot, col)) < 1e-12 {
			return Identity(), false
		}
		a.swapRows(col, pivot)
		inv.swapRows(col, pivot)

		p := 1 / a.Get(col, col)
		for k := range 4 {
			a.Set(col, k, a.Get(col, k)*p)
			inv.Set(col, k, inv.Get(col, k)*p)
		}

		for row := range 4 {
			if row == col {
				continue
			}
			f := a.Get(row, col)
			if f == 0 {
				continue
			}
			for k := range 4 {
				a.Set(row, k, a.Get(row, k)-f*a.Get(col, k))
				inv.Set(row, k, inv.Get(row, k)-f*inv.Get(col, k))
			}
		}
	}
	return inv, true
}

func (m *Mat4) swapRows(i, j int) {
	if i == j {
		return
	}
	for col := range 4 {
		m[i+col*4], m[j+col*4] = m[j+col*4], m[i+col*4]
	}
}

// Get returns the element at (row, col).
func (m Mat4) Get(row, col int) float64 {
	return m[row+col*4]
}

// Set sets the element at (row, col).
func (m *Mat4) Set(row, col int, val float64) {
	m[row+col*4] = val
}

// Translation extracts the translation component.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}
