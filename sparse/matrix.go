// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sparse provides the direct solve pipeline used for large sparse
// symmetric systems: compressed row storage, a nested-dissection fill-reducing
// ordering with its separator tree, symbolic elimination analysis, a
// regularized 𝐋𝐃𝐋ᵀ factorization and triangular solves with optional
// iterative refinement.
package sparse

import (
	"errors"
	"math"
	"sort"
)

// Matrix is an immutable sparse matrix in compressed row storage.
// Column indices are sorted within each row and duplicates are summed
// during construction.
//
// The factorization routines additionally require the matrix to be square
// and structurally symmetric with both triangles stored explicitly, which
// every system assembled by this module satisfies by construction.
type Matrix struct {
	rows, cols int
	ptr        []int
	ind        []int
	val        []float64
}

// New assembles an r×c sparse matrix from coordinate triplets.
// Entries sharing a coordinate are summed.
func New(r, c int, ri, ci []int, v []float64) (*Matrix, error) {
	if r <= 0 || c <= 0 {
		return nil, errors.New("sparse: matrix dimensions must be positive")
	}
	if len(ri) != len(ci) || len(ri) != len(v) {
		return nil, errors.New("sparse: triplet slices must have equal length")
	}
	for k, i := range ri {
		if i < 0 || i >= r || ci[k] < 0 || ci[k] >= c {
			return nil, errors.New("sparse: triplet coordinate out of range")
		}
	}

	// Counting sort by row keeps assembly linear in the number of entries.
	ptr := make([]int, r+1)
	for _, i := range ri {
		ptr[i+1]++
	}
	for i := 0; i < r; i++ {
		ptr[i+1] += ptr[i]
	}
	ind := make([]int, len(ci))
	val := make([]float64, len(v))
	next := make([]int, r)
	copy(next, ptr[:r])
	for k, i := range ri {
		p := next[i]
		ind[p] = ci[k]
		val[p] = v[k]
		next[i]++
	}

	m := &Matrix{rows: r, cols: c, ptr: ptr, ind: ind, val: val}
	m.compress()
	return m, nil
}

// compress sorts each row by column and merges duplicate coordinates.
func (m *Matrix) compress() {
	out := 0
	start := 0
	for i := 0; i < m.rows; i++ {
		end := m.ptr[i+1]
		row := rowView{m.ind[start:end], m.val[start:end]}
		sort.Sort(row)
		rowOut := out
		for p := start; p < end; p++ {
			if out > rowOut && m.ind[out-1] == m.ind[p] {
				m.val[out-1] += m.val[p]
			} else {
				m.ind[out] = m.ind[p]
				m.val[out] = m.val[p]
				out++
			}
		}
		start = end
		m.ptr[i+1] = out
	}
	m.ind = m.ind[:out]
	m.val = m.val[:out]
}

type rowView struct {
	ind []int
	val []float64
}

func (r rowView) Len() int           { return len(r.ind) }
func (r rowView) Less(i, j int) bool { return r.ind[i] < r.ind[j] }
func (r rowView) Swap(i, j int) {
	r.ind[i], r.ind[j] = r.ind[j], r.ind[i]
	r.val[i], r.val[j] = r.val[j], r.val[i]
}

// Dims returns the matrix dimensions.
func (m *Matrix) Dims() (r, c int) { return m.rows, m.cols }

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int { return len(m.val) }

// MaxNorm returns the largest absolute entry value.
func (m *Matrix) MaxNorm() (norm float64) {
	for _, v := range m.val {
		norm = math.Max(norm, math.Abs(v))
	}
	return norm
}

// MulVecAdd computes y += α·M·x.
func (m *Matrix) MulVecAdd(alpha float64, x, y []float64) {
	if len(x) != m.cols || len(y) != m.rows {
		panic("sparse: dimension mismatch")
	}
	for i := 0; i < m.rows; i++ {
		sum := 0.0
		for p := m.ptr[i]; p < m.ptr[i+1]; p++ {
			sum += m.val[p] * x[m.ind[p]]
		}
		y[i] += alpha * sum
	}
}

// MulTransVecAdd computes x += α·Mᵀ·y.
func (m *Matrix) MulTransVecAdd(alpha float64, y, x []float64) {
	if len(x) != m.cols || len(y) != m.rows {
		panic("sparse: dimension mismatch")
	}
	for i := 0; i < m.rows; i++ {
		ay := alpha * y[i]
		if ay == 0 {
			continue
		}
		for p := m.ptr[i]; p < m.ptr[i+1]; p++ {
			x[m.ind[p]] += ay * m.val[p]
		}
	}
}

// DoNonZero calls fn once for every stored entry in row-major order.
func (m *Matrix) DoNonZero(fn func(i, j int, v float64)) {
	for i := 0; i < m.rows; i++ {
		for p := m.ptr[i]; p < m.ptr[i+1]; p++ {
			fn(i, m.ind[p], m.val[p])
		}
	}
}

// Diag copies the diagonal of a square matrix into d, with zeros for
// structurally missing entries.
func (m *Matrix) Diag(d []float64) {
	for i := 0; i < m.rows && i < m.cols; i++ {
		d[i] = 0
		for p := m.ptr[i]; p < m.ptr[i+1]; p++ {
			if m.ind[p] == i {
				d[i] = m.val[p]
				break
			}
		}
	}
}
