// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparse

// Symbolic holds the elimination analysis of a permuted symmetric matrix:
// the elimination tree and the exact column pointers of the 𝐋 factor.
// It depends only on the sparsity pattern and is reused across repeated
// factorizations of matrices sharing that pattern.
type Symbolic struct {
	Parent []int // elimination tree over permuted indices, -1 at roots
	ColPtr []int // column pointers of L, len n+1
}

// NNZ returns the number of below-diagonal entries of 𝐋.
func (s *Symbolic) NNZ() int { return s.ColPtr[len(s.ColPtr)-1] }

// Analyze computes the elimination tree and column counts of the factor of
// P·m·Pᵀ for the permutation carried by ord. The matrix must be square and
// structurally symmetric.
//
// Joseph Liu, "The role of elimination trees in sparse factorization".
// SIAM J. Matrix Anal. Appl. 11, 1990.
func Analyze(m *Matrix, ord *Ordering) *Symbolic {
	r, c := m.Dims()
	if r != c {
		panic("sparse: symbolic analysis requires a square matrix")
	}
	n := r

	parent := make([]int, n)
	ancestor := make([]int, n)
	count := make([]int, n)
	flag := make([]int, n)
	for k := 0; k < n; k++ {
		parent[k] = -1
		ancestor[k] = -1
		flag[k] = -1
	}

	// Build the elimination tree with path compression, walking the upper
	// triangle of the permuted matrix one row at a time.
	for k := 0; k < n; k++ {
		row := ord.Perm[k]
		for p := m.ptr[row]; p < m.ptr[row+1]; p++ {
			i := ord.Inv[m.ind[p]]
			for i < k {
				next := ancestor[i]
				ancestor[i] = k
				if next == -1 {
					parent[i] = k
					break
				}
				i = next
			}
		}
	}

	// Column counts: row k of L has the pattern of the etree reach of the
	// upper entries of permuted row k, each reached column gaining one entry.
	for k := 0; k < n; k++ {
		flag[k] = k
		row := ord.Perm[k]
		for p := m.ptr[row]; p < m.ptr[row+1]; p++ {
			i := ord.Inv[m.ind[p]]
			for ; i < k && flag[i] != k; i = parent[i] {
				count[i]++
				flag[i] = k
			}
		}
	}

	colPtr := make([]int, n+1)
	for k := 0; k < n; k++ {
		colPtr[k+1] = colPtr[k] + count[k]
	}
	return &Symbolic{Parent: parent, ColPtr: colPtr}
}
