package bitset

import (
	"fmt"
	"strings"
)

// BitMatrix is a rows×cols matrix of bits stored row-major, one word-aligned
// BitSet per row.
type BitMatrix struct {
	rows, cols int
	stride     int
	words      []uint64
}

// NewMatrix returns an all-zero rows×cols bit matrix.
func NewMatrix(rows, cols int) *BitMatrix {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("bitset: invalid matrix shape %dx%d", rows, cols))
	}
	stride := wordsFor(cols)
	return &BitMatrix{rows: rows, cols: cols, stride: stride, words: make([]uint64, rows*stride)}
}

// Rows returns the row count.
func (m *BitMatrix) Rows() int { return m.rows }

// Cols returns the column count.
func (m *BitMatrix) Cols() int { return m.cols }

func (m *BitMatrix) checkRow(r int) {
	if r < 0 || r >= m.rows {
		panic(fmt.Sprintf("bitset: row %d out of range [0,%d)", r, m.rows))
	}
}

// Row returns a view of row r. Mutating the view mutates the matrix.
func (m *BitMatrix) Row(r int) *BitSet {
	m.checkRow(r)
	off := r * m.stride
	return &BitSet{words: m.words[off : off+m.stride : off+m.stride], n: m.cols}
}

// Get reports whether bit (r, c) is set.
func (m *BitMatrix) Get(r, c int) bool {
	return m.Row(r).Get(c)
}

// Set sets bit (r, c).
func (m *BitMatrix) Set(r, c int) {
	m.Row(r).Set(c)
}

// Clear clears bit (r, c).
func (m *BitMatrix) Clear(r, c int) {
	m.Row(r).Clear(c)
}

// SetRow overwrites row r with s.
func (m *BitMatrix) SetRow(r int, s *BitSet) {
	m.Row(r).CopyFrom(s)
}

// ClearRow zeroes row r.
func (m *BitMatrix) ClearRow(r int) {
	m.Row(r).ClearAll()
}

// ClearColumn zeroes column c in every row.
func (m *BitMatrix) ClearColumn(c int) {
	if c < 0 || c >= m.cols {
		panic(fmt.Sprintf("bitset: column %d out of range [0,%d)", c, m.cols))
	}
	w, mask := c/wordBits, uint64(1)<<(uint(c)%wordBits)
	for r := 0; r < m.rows; r++ {
		m.words[r*m.stride+w] &^= mask
	}
}

// ClearColumns zeroes every column that is a member of cols.
func (m *BitMatrix) ClearColumns(cols *BitSet) {
	if cols.Len() != m.cols {
		panic(fmt.Sprintf("bitset: column mask capacity %d != %d", cols.Len(), m.cols))
	}
	for r := 0; r < m.rows; r++ {
		m.Row(r).AndNot(cols)
	}
}

// Column returns a copy of column c as a set over row indices.
func (m *BitMatrix) Column(c int) *BitSet {
	out := New(m.rows)
	for r := 0; r < m.rows; r++ {
		if m.Get(r, c) {
			out.Set(r)
		}
	}
	return out
}

// Clone returns an independent copy.
func (m *BitMatrix) Clone() *BitMatrix {
	c := &BitMatrix{rows: m.rows, cols: m.cols, stride: m.stride, words: make([]uint64, len(m.words))}
	copy(c.words, m.words)
	return c
}

// Equal reports whether both matrices have the same shape and bits.
func (m *BitMatrix) Equal(o *BitMatrix) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i, w := range m.words {
		if w != o.words[i] {
			return false
		}
	}
	return true
}

// FillUpperDiagonal sets every bit (r, c) with c > r. The matrix must be
// square.
func (m *BitMatrix) FillUpperDiagonal() {
	if m.rows != m.cols {
		panic(fmt.Sprintf("bitset: FillUpperDiagonal needs a square matrix, got %dx%d", m.rows, m.cols))
	}
	for r := 0; r < m.rows; r++ {
		row := m.Row(r)
		row.ClearAll()
		row.SetRange(r+1, m.cols)
	}
}

// RemoveUnequalColumns clears from candidates (a set over columns) every
// column whose bits differ from column col. It walks the rows once and
// updates the candidates a word at a time.
func (m *BitMatrix) RemoveUnequalColumns(col int, candidates *BitSet) {
	if candidates.Len() != m.cols {
		panic(fmt.Sprintf("bitset: candidate capacity %d != %d columns", candidates.Len(), m.cols))
	}
	for r := 0; r < m.rows; r++ {
		row := m.Row(r)
		if row.Get(col) {
			candidates.And(row)
		} else {
			candidates.AndNot(row)
		}
	}
}

// RemoveUnequalRows treats m as a square candidate matrix over the rows of
// adj and clears every bit (i, j) for which rows i and j of adj differ.
func (m *BitMatrix) RemoveUnequalRows(adj *BitMatrix) {
	if m.rows != adj.rows || m.cols != adj.rows {
		panic(fmt.Sprintf("bitset: candidate matrix %dx%d does not match %d adjacency rows", m.rows, m.cols, adj.rows))
	}
	for c := 0; c < adj.cols; c++ {
		col := adj.Column(c)
		for r := 0; r < m.rows; r++ {
			if col.Get(r) {
				m.Row(r).And(col)
			} else {
				m.Row(r).AndNot(col)
			}
		}
	}
}

func (m *BitMatrix) String() string {
	var sb strings.Builder
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			if m.Get(r, c) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
