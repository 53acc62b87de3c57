// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sparse implements cytosim's symmetric sparse matrix: a
// column-authoring form with O(1) (amortized) element insertion, and a
// compiled CSR-like form used for fast matrix-vector products. Grounded
// directly on original_source/src/math/matsparsesym1.{h,cc}
// (MatrixSparseSymmetric1), per spec.md §4.1.
package sparse

import "github.com/cpmech/gosl/chk"

// element is one off-diagonal (or diagonal, for index 0 of a column)
// stored entry: value at row `row` of some column j>=row.
type element struct {
	row int
	val float64
}

// Symmetric is a square symmetric matrix stored by columns; for column j,
// entries (i,val) with i>=j are kept, diagonal first, matching the
// teacher's struct Element{val,line} per-column arrays.
type Symmetric struct {
	n    int
	cols [][]element // authoring form, per column

	// compiled form, built by PrepareForMultiply
	compiled bool
	diag     []float64 // sa[0..n-1]
	ija      []int     // off-diagonal row indices, column-major ranges
	sa       []float64 // off-diagonal values, parallel to ija
	colStart []int     // colStart[j]..colStart[j+1] indexes into ija/sa for column j
	colF     []int     // colF[j] = index of first non-empty column >= j
}

// NewSymmetric allocates an n x n symmetric matrix with no entries.
func NewSymmetric(n int) *Symmetric {
	return &Symmetric{n: n, cols: make([][]element, n)}
}

// Size returns the matrix dimension.
func (m *Symmetric) Size() int { return m.n }

// MakeZero resets every column's length without freeing the backing
// arrays, matching matsparsesym1.cc's O(columns) makeZero().
func (m *Symmetric) MakeZero() {
	for j := range m.cols {
		m.cols[j] = m.cols[j][:0]
	}
	m.compiled = false
}

// Put adds `val` to element (i,j) (i,j interchangeable since the matrix
// is symmetric), inserting a new entry if none exists yet at that
// position. The diagonal entry of a column, if present, is always kept
// first to match the teacher's "val at (i=j) appears first" invariant.
func (m *Symmetric) Put(i, j int, val float64) {
	if i > j {
		i, j = j, i
	}
	col := m.cols[j]
	if i == j {
		if len(col) > 0 && col[0].row == j {
			col[0].val += val
			m.cols[j] = col
			m.compiled = false
			return
		}
		// insert diagonal at front, preserving existing entries
		col = append(col, element{})
		copy(col[1:], col[:len(col)-1])
		col[0] = element{row: j, val: val}
		m.cols[j] = col
		m.compiled = false
		return
	}
	for k := range col {
		if col[k].row == i {
			col[k].val += val
			m.compiled = false
			return
		}
	}
	m.cols[j] = append(col, element{row: i, val: val})
	m.compiled = false
}

// Get returns the stored value at (i,j), or 0 if absent.
func (m *Symmetric) Get(i, j int) float64 {
	if i > j {
		i, j = j, i
	}
	for _, e := range m.cols[j] {
		if e.row == i {
			return e.val
		}
	}
	return 0
}

// NNZ returns the number of stored (i,j) pairs (upper-triangle only,
// diagonal counted once).
func (m *Symmetric) NNZ() int {
	n := 0
	for _, c := range m.cols {
		n += len(c)
	}
	return n
}

// PrepareForMultiply compiles the authoring form into the CSR-like layout
// (diag/ija/sa/colF), matching matsparsesym1.cc's prepareForMultiply().
// Must be called after the last Put() and before any VecMulAdd.
func (m *Symmetric) PrepareForMultiply() {
	m.diag = make([]float64, m.n)
	m.colStart = make([]int, m.n+1)
	nnzOff := 0
	for j := 0; j < m.n; j++ {
		for _, e := range m.cols[j] {
			if e.row == j {
				m.diag[j] += e.val
			} else {
				nnzOff++
			}
		}
	}
	m.ija = make([]int, nnzOff)
	m.sa = make([]float64, nnzOff)
	pos := 0
	for j := 0; j < m.n; j++ {
		m.colStart[j] = pos
		for _, e := range m.cols[j] {
			if e.row != j {
				m.ija[pos] = e.row
				m.sa[pos] = e.val
				pos++
			}
		}
	}
	m.colStart[m.n] = pos

	// colF[j] = first column index >= j with at least one off-diagonal
	// entry or a nonzero diagonal; this is the "next non-empty column"
	// skip list the teacher uses to fast-forward vecMulAdd over empty
	// stretches of the matrix.
	m.colF = make([]int, m.n+1)
	next := m.n
	for j := m.n - 1; j >= 0; j-- {
		if m.diag[j] != 0 || m.colStart[j] != m.colStart[j+1] {
			next = j
		}
		m.colF[j] = next
	}
	m.colF[m.n] = m.n
	m.compiled = true
}

// VecMulAdd computes Y <- Y + M*X using the compiled form, matching
// matsparsesym1.cc's vecMulAdd(): for each column's off-diagonal (i,val)
// it updates Y[i] and Y[j] symmetrically in one pass.
func (m *Symmetric) VecMulAdd(x, y []float64) {
	if !m.compiled {
		chk.Panic("sparse.Symmetric: VecMulAdd called before PrepareForMultiply")
	}
	j := m.colF[0]
	for j < m.n {
		y[j] += m.diag[j] * x[j]
		for k := m.colStart[j]; k < m.colStart[j+1]; k++ {
			i := m.ija[k]
			v := m.sa[k]
			y[i] += v * x[j]
			y[j] += v * x[i]
		}
		j = m.colF[j+1]
	}
}

// VecMulAddIso multiplies the isotropic DIM-strided blocks: X and Y are
// laid out as DIM consecutive reals per point, and every entry of M
// applies identically to all DIM axes. Matches vecMulAddIso2D/3D.
func (m *Symmetric) VecMulAddIso(x, y []float64, dim int) {
	if !m.compiled {
		chk.Panic("sparse.Symmetric: VecMulAddIso called before PrepareForMultiply")
	}
	j := m.colF[0]
	for j < m.n {
		dj := m.diag[j]
		for d := 0; d < dim; d++ {
			y[dim*j+d] += dj * x[dim*j+d]
		}
		for k := m.colStart[j]; k < m.colStart[j+1]; k++ {
			i := m.ija[k]
			v := m.sa[k]
			for d := 0; d < dim; d++ {
				y[dim*i+d] += v * x[dim*j+d]
				y[dim*j+d] += v * x[dim*i+d]
			}
		}
		j = m.colF[j+1]
	}
}

// IsSymmetric verifies that stored entries do not duplicate across the
// implied transpose (by construction Symmetric only ever stores the
// upper triangle, so this is a structural sanity check used by the
// testable property "matrix symmetry", spec.md §8 item 2): every (i,j)
// with i<j must be retrievable identically whichever order is queried.
func (m *Symmetric) IsSymmetric() bool {
	for j := 0; j < m.n; j++ {
		for _, e := range m.cols[j] {
			if e.row > j {
				return false // invariant violated: stored below diagonal
			}
		}
	}
	return true
}
