package sam

import "math"

// Matrix is a 3x3 affine transform, m[row][col]. The last row is the
// homogeneous row and stays 0,0,1 for anything the decoder produces.
type Matrix [3][3]float32

func Identity() Matrix {
	return Matrix{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

func Translation(tx, ty float32) Matrix {
	m := Identity()
	m[0][2] = tx
	m[1][2] = ty
	return m
}

func Rotation(rad float64) Matrix {
	sin, cos := math.Sincos(rad)
	m := Identity()
	m[0][0] = float32(cos)
	m[0][1] = float32(sin)
	m[1][0] = float32(-sin)
	m[1][1] = float32(cos)
	return m
}

// Mul returns m × o
func (m Matrix) Mul(o Matrix) (r Matrix) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float32
			for k := 0; k < 3; k++ {
				sum += m[i][k] * o[k][j]
			}
			r[i][j] = sum
		}
	}
	return
}

// Coefficients returns the 9 terms in row-major order
func (m Matrix) Coefficients() [9]float32 {
	return [9]float32{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	}
}
