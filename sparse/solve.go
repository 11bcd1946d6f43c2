// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparse

import "math"

// Solve overwrites b with the solution of the factored system. The
// right-hand side is permuted into elimination order, pushed through the
// unit-lower, diagonal and transposed triangular stages, and permuted back.
func (f *Factor) Solve(b []float64) {
	if len(b) != f.n {
		panic("sparse: right-hand side dimension mismatch")
	}
	w := make([]float64, f.n)
	for k := 0; k < f.n; k++ {
		w[k] = b[f.ord.Perm[k]]
	}
	// 𝐋w = w
	for j := 0; j < f.n; j++ {
		wj := w[j]
		if wj == 0 {
			continue
		}
		for p := f.colPtr[j]; p < f.colPtr[j+1]; p++ {
			w[f.rowIdx[p]] -= f.val[p] * wj
		}
	}
	// 𝐃w = w
	for j := 0; j < f.n; j++ {
		w[j] /= f.d[j]
	}
	// 𝐋ᵀw = w
	for j := f.n - 1; j >= 0; j-- {
		sum := 0.0
		for p := f.colPtr[j]; p < f.colPtr[j+1]; p++ {
			sum += f.val[p] * w[f.rowIdx[p]]
		}
		w[j] -= sum
	}
	for k := 0; k < f.n; k++ {
		b[f.ord.Perm[k]] = w[k]
	}
}

// SolveRefined solves against b in place and then applies bounded iterative
// refinement on the regularized system M+R, where R is the realized
// regularization of the factorization. Each refinement step must shrink the
// residual norm by at least minReduction, otherwise the step is discarded
// and refinement aborts early. The number of accepted refinement steps is
// returned.
func (f *Factor) SolveRefined(m *Matrix, b []float64, minReduction float64, maxIts int) int {
	rhs := make([]float64, f.n)
	copy(rhs, b)
	f.Solve(b)

	r := make([]float64, f.n)
	trial := make([]float64, f.n)
	rNrm := f.residual(m, b, rhs, r)

	steps := 0
	for ; steps < maxIts && rNrm > 0; steps++ {
		copy(trial, r)
		f.Solve(trial)
		for i := range trial {
			trial[i] += b[i]
		}
		newNrm := f.residual(m, trial, rhs, r)
		if newNrm*minReduction > rNrm {
			break
		}
		copy(b, trial)
		rNrm = newNrm
	}
	return steps
}

// residual computes r = rhs − (M+R)x and returns ‖r‖₂.
func (f *Factor) residual(m *Matrix, x, rhs, r []float64) float64 {
	for i := range r {
		r[i] = rhs[i] - f.reg[i]*x[i]
	}
	m.MulVecAdd(-1, x, r)
	sum := 0.0
	for _, v := range r {
		sum += v * v
	}
	return math.Sqrt(sum)
}
