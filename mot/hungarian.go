package mot

import (
	"math"

	"github.com/pkg/errors"
)

// HungarianAssign solves the rectangular minimum-cost assignment problem for
// an n×m cost matrix with the Kuhn-Munkres algorithm (shortest augmenting
// paths with row/column potentials, O(n²·m)). Every row of the smaller
// dimension gets matched.
//
// It returns assignments[i] = column assigned to row i, or -1 when row i is
// left over (only possible if n > m).
func HungarianAssign(cost [][]float64) ([]int, error) {
	n := len(cost)
	if n == 0 {
		return []int{}, nil
	}
	m := len(cost[0])
	for i, row := range cost {
		if len(row) != m {
			return nil, errors.Wrapf(ErrInvalidCost, "row %d has %d columns, expected %d", i, len(row), m)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.Wrapf(ErrInvalidCost, "entry (%d, %d) is %v", i, j, v)
			}
		}
	}
	result := make([]int, n)
	for i := range result {
		result[i] = -1
	}
	if m == 0 {
		return result, nil
	}

	if n <= m {
		return hungarianRowsLEQCols(cost, n, m), nil
	}

	// More rows than columns: solve the transposed problem so that every
	// column gets a row, then invert the mapping.
	transposed := make([][]float64, m)
	for j := 0; j < m; j++ {
		transposed[j] = make([]float64, n)
		for i := 0; i < n; i++ {
			transposed[j][i] = cost[i][j]
		}
	}
	colAssign := hungarianRowsLEQCols(transposed, m, n)
	for j, i := range colAssign {
		if i >= 0 {
			result[i] = j
		}
	}
	return result, nil
}

// hungarianRowsLEQCols requires n <= m. Uses 1-indexed arrays internally,
// index 0 being the virtual column.
func hungarianRowsLEQCols(c [][]float64, n, m int) []int {
	inf := math.Inf(1)

	u := make([]float64, n+1) // Row potentials
	v := make([]float64, m+1) // Column potentials
	p := make([]int, m+1)     // p[j] = row assigned to column j
	way := make([]int, m+1)   // way[j] = previous column in augmenting path
	minv := make([]float64, m+1)
	used := make([]bool, m+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		for j := 0; j <= m; j++ {
			minv[j] = inf
			used[j] = false
		}

		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := 0
			for j := 1; j <= m; j++ {
				if used[j] {
					continue
				}
				cur := c[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= m; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}

		// Augment along the path.
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	rowAssign := make([]int, n)
	for i := range rowAssign {
		rowAssign[i] = -1
	}
	for j := 1; j <= m; j++ {
		if p[j] > 0 {
			rowAssign[p[j]-1] = j - 1
		}
	}
	return rowAssign
}
