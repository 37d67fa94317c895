package mot

import (
	"math"
)

// Fixed-size algebra for the SORT filter. Every shape used by the filter is
// known at compile time: 7-D state, 4-D measurement.

// Vec4 is a measurement-space vector: [cx, cy, s, r].
type Vec4 [4]float64

// Vec7 is a state-space vector: [cx, cy, s, r, cx', cy', s'].
type Vec7 [7]float64

// Mat4 is a 4x4 matrix in measurement space.
type Mat4 [4][4]float64

// Mat7 is a 7x7 matrix in state space.
type Mat7 [7][7]float64

// Mat4x7 maps state space to measurement space.
type Mat4x7 [4][7]float64

// Mat7x4 maps measurement space to state space.
type Mat7x4 [7][4]float64

// singularRelTol is the pivot magnitude, relative to the largest entry of the
// matrix, below which a system is considered singular.
const singularRelTol = 1e-12

// Identity7 returns the 7x7 identity matrix.
func Identity7() Mat7 {
	var m Mat7
	for i := 0; i < 7; i++ {
		m[i][i] = 1
	}
	return m
}

// Diag7 builds a diagonal 7x7 matrix.
func Diag7(d Vec7) Mat7 {
	var m Mat7
	for i := 0; i < 7; i++ {
		m[i][i] = d[i]
	}
	return m
}

// Diag4 builds a diagonal 4x4 matrix.
func Diag4(d Vec4) Mat4 {
	var m Mat4
	for i := 0; i < 4; i++ {
		m[i][i] = d[i]
	}
	return m
}

func (v Vec7) Add(o Vec7) Vec7 {
	for i := range v {
		v[i] += o[i]
	}
	return v
}

func (v Vec4) Sub(o Vec4) Vec4 {
	for i := range v {
		v[i] -= o[i]
	}
	return v
}

// IsFinite reports whether no component is NaN or ±Inf.
func (v Vec7) IsFinite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// IsFinite reports whether no component is NaN or ±Inf.
func (v Vec4) IsFinite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func (m Mat7) MulVec(v Vec7) Vec7 {
	var out Vec7
	for i := 0; i < 7; i++ {
		sum := 0.0
		for k := 0; k < 7; k++ {
			sum += m[i][k] * v[k]
		}
		out[i] = sum
	}
	return out
}

func (m Mat7) Mul(o Mat7) Mat7 {
	var out Mat7
	for i := 0; i < 7; i++ {
		for j := 0; j < 7; j++ {
			sum := 0.0
			for k := 0; k < 7; k++ {
				sum += m[i][k] * o[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

func (m Mat7) T() Mat7 {
	var out Mat7
	for i := 0; i < 7; i++ {
		for j := 0; j < 7; j++ {
			out[j][i] = m[i][j]
		}
	}
	return out
}

func (m Mat7) Add(o Mat7) Mat7 {
	for i := 0; i < 7; i++ {
		for j := 0; j < 7; j++ {
			m[i][j] += o[i][j]
		}
	}
	return m
}

func (m Mat7) Sub(o Mat7) Mat7 {
	for i := 0; i < 7; i++ {
		for j := 0; j < 7; j++ {
			m[i][j] -= o[i][j]
		}
	}
	return m
}

// IsFinite reports whether no entry is NaN or ±Inf.
func (m Mat7) IsFinite() bool {
	for i := 0; i < 7; i++ {
		for j := 0; j < 7; j++ {
			if math.IsNaN(m[i][j]) || math.IsInf(m[i][j], 0) {
				return false
			}
		}
	}
	return true
}

func (m Mat4) Add(o Mat4) Mat4 {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m[i][j] += o[i][j]
		}
	}
	return m
}

func (m Mat4) T() Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[j][i] = m[i][j]
		}
	}
	return out
}

func (h Mat4x7) MulVec(v Vec7) Vec4 {
	var out Vec4
	for i := 0; i < 4; i++ {
		sum := 0.0
		for k := 0; k < 7; k++ {
			sum += h[i][k] * v[k]
		}
		out[i] = sum
	}
	return out
}

func (h Mat4x7) T() Mat7x4 {
	var out Mat7x4
	for i := 0; i < 4; i++ {
		for j := 0; j < 7; j++ {
			out[j][i] = h[i][j]
		}
	}
	return out
}

// MulMat7x4 returns h·b (4x4).
func (h Mat4x7) MulMat7x4(b Mat7x4) Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			sum := 0.0
			for k := 0; k < 7; k++ {
				sum += h[i][k] * b[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// MulMat7x4 returns m·b (7x4).
func (m Mat7) MulMat7x4(b Mat7x4) Mat7x4 {
	var out Mat7x4
	for i := 0; i < 7; i++ {
		for j := 0; j < 4; j++ {
			sum := 0.0
			for k := 0; k < 7; k++ {
				sum += m[i][k] * b[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

func (k Mat7x4) T() Mat4x7 {
	var out Mat4x7
	for i := 0; i < 7; i++ {
		for j := 0; j < 4; j++ {
			out[j][i] = k[i][j]
		}
	}
	return out
}

// MulVec returns k·v (7-D).
func (k Mat7x4) MulVec(v Vec4) Vec7 {
	var out Vec7
	for i := 0; i < 7; i++ {
		sum := 0.0
		for j := 0; j < 4; j++ {
			sum += k[i][j] * v[j]
		}
		out[i] = sum
	}
	return out
}

// MulMat4x7 returns k·h (7x7).
func (k Mat7x4) MulMat4x7(h Mat4x7) Mat7 {
	var out Mat7
	for i := 0; i < 7; i++ {
		for j := 0; j < 7; j++ {
			sum := 0.0
			for l := 0; l < 4; l++ {
				sum += k[i][l] * h[l][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// solve4 solves a·X = b for X using Gaussian elimination with partial
// pivoting. It returns ErrSingularInnovation when a pivot collapses relative
// to the scale of a.
func solve4(a Mat4, b Mat4x7) (Mat4x7, error) {
	scale := 0.0
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			v := math.Abs(a[i][j])
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return Mat4x7{}, ErrNonFinite
			}
			if v > scale {
				scale = v
			}
		}
	}
	if scale == 0 {
		return Mat4x7{}, ErrSingularInnovation
	}
	tol := scale * singularRelTol

	for col := 0; col < 4; col++ {
		pivot := col
		for row := col + 1; row < 4; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) <= tol {
			return Mat4x7{}, ErrSingularInnovation
		}
		if pivot != col {
			a[pivot], a[col] = a[col], a[pivot]
			b[pivot], b[col] = b[col], b[pivot]
		}
		for row := col + 1; row < 4; row++ {
			f := a[row][col] / a[col][col]
			if f == 0 {
				continue
			}
			for k := col; k < 4; k++ {
				a[row][k] -= f * a[col][k]
			}
			for k := 0; k < 7; k++ {
				b[row][k] -= f * b[col][k]
			}
		}
	}

	var x Mat4x7
	for k := 0; k < 7; k++ {
		for row := 3; row >= 0; row-- {
			sum := b[row][k]
			for j := row + 1; j < 4; j++ {
				sum -= a[row][j] * x[j][k]
			}
			x[row][k] = sum / a[row][row]
		}
	}
	return x, nil
}
