// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparse

import (
	"fmt"
	"math"
)

// BreakdownError reports that the factorization could not produce a usable
// pivot even after regularization. Col is the original (unpermuted) index of
// the offending column.
type BreakdownError struct {
	Col int
}

func (e *BreakdownError) Error() string {
	return fmt.Sprintf("sparse: factorization broke down at pivot %d", e.Col)
}

// Factor is a numeric regularized 𝐋𝐃𝐋ᵀ factorization of a permuted
// symmetric matrix: P·(M + R)·Pᵀ = 𝐋𝐃𝐋ᵀ with unit lower triangular 𝐋,
// diagonal 𝐃 and the realized regularization R, a diagonal perturbation
// applied only where pivots fell below the tolerance.
type Factor struct {
	n      int
	ord    *Ordering
	colPtr []int
	rowIdx []int
	val    []float64
	d      []float64
	reg    []float64 // realized regularization, original index order
}

// Realized returns the regularization that was actually applied, indexed in
// original order. Entries are zero wherever the pivot was acceptable on its
// own.
func (f *Factor) Realized() []float64 { return f.reg }

// Factorize computes the regularized 𝐋𝐃𝐋ᵀ factorization of the square
// structurally symmetric matrix m using the ordering and symbolic analysis
// computed for its pattern.
//
// A pivot whose magnitude is at most pivTol is perturbed by the a priori
// candidate regCand for its (original) index; the candidate sign encodes the
// expected inertia of the unknown block. A zero or non-finite pivot after
// perturbation is a fatal BreakdownError. regCand may be nil to disable
// regularization.
//
// The numeric phase is the up-looking row algorithm: row k of 𝐋 is the
// sparse triangular solve of the upper entries of permuted row k against the
// already-computed columns, with the pattern given by the elimination tree
// reach.
func Factorize(m *Matrix, ord *Ordering, sym *Symbolic, pivTol float64, regCand []float64) (*Factor, error) {
	r, c := m.Dims()
	if r != c {
		panic("sparse: factorization requires a square matrix")
	}
	n := r

	f := &Factor{
		n:      n,
		ord:    ord,
		colPtr: sym.ColPtr,
		rowIdx: make([]int, sym.NNZ()),
		val:    make([]float64, sym.NNZ()),
		d:      make([]float64, n),
		reg:    make([]float64, n),
	}

	y := make([]float64, n)
	pattern := make([]int, n)
	flag := make([]int, n)
	lnz := make([]int, n)
	for i := range flag {
		flag[i] = -1
	}

	for k := 0; k < n; k++ {
		top := n
		flag[k] = k
		row := ord.Perm[k]
		for p := m.ptr[row]; p < m.ptr[row+1]; p++ {
			i := ord.Inv[m.ind[p]]
			if i > k {
				continue
			}
			y[i] += m.val[p]
			// Walk up the etree to collect the reach in topological order.
			length := 0
			for ; flag[i] != k; i = sym.Parent[i] {
				pattern[length] = i
				length++
				flag[i] = k
			}
			for length > 0 {
				length--
				top--
				pattern[top] = pattern[length]
			}
		}

		dk := y[k]
		y[k] = 0
		for ; top < n; top++ {
			i := pattern[top]
			yi := y[i]
			y[i] = 0
			p2 := f.colPtr[i] + lnz[i]
			for p := f.colPtr[i]; p < p2; p++ {
				y[f.rowIdx[p]] -= f.val[p] * yi
			}
			lki := yi / f.d[i]
			dk -= lki * yi
			f.rowIdx[p2] = k
			f.val[p2] = lki
			lnz[i]++
		}

		if math.Abs(dk) <= pivTol && regCand != nil {
			cand := regCand[row]
			dk += cand
			f.reg[row] = cand
		}
		if dk == 0 || math.IsNaN(dk) || math.IsInf(dk, 0) {
			return nil, &BreakdownError{Col: row}
		}
		f.d[k] = dk
	}
	return f, nil
}
