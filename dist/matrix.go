// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dist

import "errors"

// Dense is an m×n dense matrix distributed by contiguous row blocks,
// stored row-major locally.
type Dense struct {
	c          *Comm
	m, n       int
	first, cnt int
	rows       []float64
}

// NewDense creates a distributed dense matrix of global size m×n.
func NewDense(c *Comm, m, n int) *Dense {
	first, cnt := blockRange(m, c.Size(), c.Rank())
	return &Dense{c: c, m: m, n: n, first: first, cnt: cnt, rows: make([]float64, cnt*n)}
}

// Dims returns the global dimensions.
func (a *Dense) Dims() (m, n int) { return a.m, a.n }

// Comm returns the communicator the matrix is distributed over.
func (a *Dense) Comm() *Comm { return a.c }

// SetFromGlobal copies this rank's row block out of a full row-major matrix.
func (a *Dense) SetFromGlobal(full []float64) {
	if len(full) != a.m*a.n {
		panic("dist: global size mismatch")
	}
	copy(a.rows, full[a.first*a.n:(a.first+a.cnt)*a.n])
}

// GatherRows returns the full row-major matrix on every rank. Collective.
func (a *Dense) GatherRows(dst []float64) []float64 {
	return a.c.AllGather(dst[:0], a.rows)
}

// Sparse is an m×n sparse matrix distributed by contiguous row blocks and
// held locally in coordinate form.
type Sparse struct {
	c          *Comm
	m, n       int
	first, cnt int
	ri, ci     []int
	val        []float64
}

// NewSparse creates a distributed sparse matrix of global size m×n.
func NewSparse(c *Comm, m, n int) *Sparse {
	first, cnt := blockRange(m, c.Size(), c.Rank())
	return &Sparse{c: c, m: m, n: n, first: first, cnt: cnt}
}

// Dims returns the global dimensions.
func (a *Sparse) Dims() (m, n int) { return a.m, a.n }

// Comm returns the communicator the matrix is distributed over.
func (a *Sparse) Comm() *Comm { return a.c }

// Owned returns the contiguous global row block this rank owns.
func (a *Sparse) Owned() (first, count int) { return a.first, a.cnt }

// Append adds an entry to a locally owned row, identified by its global
// coordinates.
func (a *Sparse) Append(i, j int, v float64) error {
	if i < a.first || i >= a.first+a.cnt {
		return errors.New("dist: row not owned by this rank")
	}
	if j < 0 || j >= a.n {
		return errors.New("dist: column index out of range")
	}
	a.ri = append(a.ri, i)
	a.ci = append(a.ci, j)
	a.val = append(a.val, v)
	return nil
}

// Gather returns the complete triplet list, ordered by owning rank, on
// every rank. Collective.
func (a *Sparse) Gather() (ri, ci []int, val []float64) {
	ri = a.c.AllGatherInts(nil, a.ri)
	ci = a.c.AllGatherInts(nil, a.ci)
	val = a.c.AllGather(nil, a.val)
	return ri, ci, val
}
