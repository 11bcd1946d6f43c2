// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dist

// blockRange computes the contiguous row block owned by a rank under the
// balanced block-row distribution.
func blockRange(n, size, rank int) (first, count int) {
	first = rank * n / size
	count = (rank+1)*n/size - first
	return first, count
}

// Vec is a dense vector distributed by contiguous row blocks. Each rank
// owns rows [First, First+len(Local())).
type Vec struct {
	c     *Comm
	n     int
	first int
	loc   []float64
}

// NewVec creates a distributed vector of global length n.
func NewVec(c *Comm, n int) *Vec {
	first, count := blockRange(n, c.Size(), c.Rank())
	return &Vec{c: c, n: n, first: first, loc: make([]float64, count)}
}

// Len returns the global length.
func (v *Vec) Len() int { return v.n }

// Comm returns the communicator the vector is distributed over.
func (v *Vec) Comm() *Comm { return v.c }

// First returns the global index of the first locally owned row.
func (v *Vec) First() int { return v.first }

// Local returns the locally owned block. Mutating it mutates the vector.
func (v *Vec) Local() []float64 { return v.loc }

// SetFromGlobal copies this rank's block out of a full global vector.
// Non-collective; full must be identical on all ranks that call it.
func (v *Vec) SetFromGlobal(full []float64) {
	if len(full) != v.n {
		panic("dist: global length mismatch")
	}
	copy(v.loc, full[v.first:v.first+len(v.loc)])
}

// Gather returns the full global vector on every rank. Collective.
func (v *Vec) Gather(dst []float64) []float64 {
	return v.c.AllGather(dst[:0], v.loc)
}
