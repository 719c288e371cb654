// Package linalg provides the two linear-algebra primitives the solver is
// built on: a dense row-major Matrix with the row operations needed by
// Gaussian elimination and simplex pivoting, and a sparse LinearEquation
// over variable indices.
package linalg

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ZeroTolerance is the magnitude below which an eliminated entry may be
// snapped to exactly zero.
const ZeroTolerance = 1e-9

// Matrix is a dense row-major matrix. Rows are views into a single flat
// buffer (offset = r*cols + c).
type Matrix struct {
	rows, cols int
	data       []float64
}

// NewMatrix returns a rows×cols zero matrix. Zero-sized shapes are allowed.
func NewMatrix(rows, cols int) *Matrix {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("linalg: invalid matrix shape %dx%d", rows, cols))
	}
	return &Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// Rows returns the row count.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the column count.
func (m *Matrix) Cols() int { return m.cols }

func (m *Matrix) checkRow(r int) {
	if r < 0 || r >= m.rows {
		panic(fmt.Sprintf("linalg: row %d out of range [0,%d)", r, m.rows))
	}
}

func (m *Matrix) checkCol(c int) {
	if c < 0 || c >= m.cols {
		panic(fmt.Sprintf("linalg: column %d out of range [0,%d)", c, m.cols))
	}
}

// At returns entry (r, c).
func (m *Matrix) At(r, c int) float64 {
	m.checkRow(r)
	m.checkCol(c)
	return m.data[r*m.cols+c]
}

// Set stores v at (r, c).
func (m *Matrix) Set(r, c int, v float64) {
	m.checkRow(r)
	m.checkCol(c)
	m.data[r*m.cols+c] = v
}

// Row returns a view of row r; writes go through to the matrix.
func (m *Matrix) Row(r int) []float64 {
	m.checkRow(r)
	return m.data[r*m.cols : (r+1)*m.cols : (r+1)*m.cols]
}

// SetRow copies vals into row r.
func (m *Matrix) SetRow(r int, vals []float64) {
	if len(vals) != m.cols {
		panic(fmt.Sprintf("linalg: row length %d != %d columns", len(vals), m.cols))
	}
	copy(m.Row(r), vals)
}

// Clone returns an independent copy.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{rows: m.rows, cols: m.cols, data: make([]float64, len(m.data))}
	copy(c.data, m.data)
	return c
}

// SwapRows exchanges rows a and b.
func (m *Matrix) SwapRows(a, b int) {
	if a == b {
		return
	}
	ra, rb := m.Row(a), m.Row(b)
	for i := range ra {
		ra[i], rb[i] = rb[i], ra[i]
	}
}

// ScaleRow multiplies row r by f.
func (m *Matrix) ScaleRow(r int, f float64) {
	floats.Scale(f, m.Row(r))
}

// ScaleReduce performs row[dst] -= f * row[src]. Results that are tiny both
// in absolute terms and relative to the operands that produced them are
// snapped to exactly zero, so cancellation noise does not survive as a
// nonzero coefficient.
func (m *Matrix) ScaleReduce(dst, src int, f float64) {
	if f == 0 {
		return
	}
	ScaleReduce(m.Row(dst), m.Row(src), f)
}

// ScaleReduce performs dst -= f*src on raw rows with zero snapping.
func ScaleReduce(dst, src []float64, f float64) {
	if len(dst) != len(src) {
		panic(fmt.Sprintf("linalg: ScaleReduce length mismatch %d != %d", len(dst), len(src)))
	}
	floats.AddScaled(dst, -f, src)
	for j, v := range dst {
		if v == 0 || math.Abs(v) >= ZeroTolerance {
			continue
		}
		fb := f * src[j]
		a := v + fb
		if math.Abs(v) <= ZeroTolerance*math.Max(math.Abs(a), math.Abs(fb)) {
			dst[j] = 0
		}
	}
}

// ZeroColumn clears column c in every row.
func (m *Matrix) ZeroColumn(c int) {
	m.checkCol(c)
	for r := 0; r < m.rows; r++ {
		m.data[r*m.cols+c] = 0
	}
}

// ColumnIsZero reports whether every entry of column c is zero.
func (m *Matrix) ColumnIsZero(c int) bool {
	m.checkCol(c)
	for r := 0; r < m.rows; r++ {
		if m.data[r*m.cols+c] != 0 {
			return false
		}
	}
	return true
}

// CountNonZero returns the number of nonzero entries among the first n
// columns of row r.
func (m *Matrix) CountNonZero(r, n int) int {
	row := m.Row(r)[:n]
	count := 0
	for _, v := range row {
		if v != 0 {
			count++
		}
	}
	return count
}

// Dot returns the dot product of the first len(x) entries of row r with x.
func (m *Matrix) Dot(r int, x []float64) float64 {
	return floats.Dot(m.Row(r)[:len(x)], x)
}

// RowNorm returns the max-norm of the first n entries of row r.
func (m *Matrix) RowNorm(r, n int) float64 {
	if n == 0 {
		return 0
	}
	return floats.Norm(m.Row(r)[:n], math.Inf(1))
}

// Pivot scales row r so entry (r, c) becomes 1 and eliminates column c from
// every other row.
func (m *Matrix) Pivot(r, c int) {
	p := m.At(r, c)
	if p == 0 {
		panic(fmt.Sprintf("linalg: pivot on zero entry (%d,%d)", r, c))
	}
	m.ScaleRow(r, 1/p)
	m.data[r*m.cols+c] = 1
	for i := 0; i < m.rows; i++ {
		if i == r {
			continue
		}
		f := m.data[i*m.cols+c]
		if f == 0 {
			continue
		}
		m.ScaleReduce(i, r, f)
		m.data[i*m.cols+c] = 0
	}
}

func (m *Matrix) String() string {
	var sb strings.Builder
	for r := 0; r < m.rows; r++ {
		sb.WriteByte('[')
		for c, v := range m.Row(r) {
			if c > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%g", v)
		}
		sb.WriteString("]\n")
	}
	return sb.String()
}
