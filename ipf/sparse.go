// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipf

import (
	"errors"
	"math"

	"github.com/curioloop/conic/sparse"
)

const machEps = 0x1p-52

// sparseSolver factors the configured reduction of a full sparse constraint
// matrix through the regularized 𝐋𝐃𝐋ᵀ pipeline. The fill-reducing ordering
// and the symbolic analysis depend only on the pattern, which is invariant
// across iterations, so both are computed once and reused. An ordering
// seeded from the starting-point solve (whose system shares the augmented
// pattern) skips even the first analysis.
type sparseSolver struct {
	a      *sparse.Matrix
	sys    KKTSystem
	refine RefineCtrl
	ord    *sparse.Ordering
	sym    *sparse.Symbolic
}

func (s *sparseSolver) step(x, z, rb, rc, rmu, dx, dy, dz []float64) error {
	m, n := s.a.Dims()

	var j *sparse.Matrix
	var err error
	switch s.sys {
	case FullKKT:
		j, err = sparseFullKKT(s.a, x, z)
	case AugmentedKKT:
		j, err = sparseAugKKT(s.a, x, z)
	case NormalKKT:
		j, err = sparseNormalKKT(s.a, x, z)
	}
	if err != nil {
		return &BreakdownError{System: s.sys, Cause: err}
	}
	if s.ord == nil {
		s.ord = sparse.NestedDissection(j)
		s.sym = sparse.Analyze(j, s.ord)
	}

	pivTol := machEps * j.MaxNorm()
	f, err := sparse.Factorize(j, s.ord, s.sym, pivTol, regCandidates(s.sys, m, n))
	if err != nil {
		return &BreakdownError{System: s.sys, Cause: err}
	}

	solve := func(d []float64) {
		// The regularized factor solves a perturbed system; the normal
		// equations are refined regardless since the elimination of both
		// variable blocks amplifies the perturbation the most.
		if s.sys == NormalKKT || s.refine.Enabled {
			f.SolveRefined(j, d, s.refine.MinReduction, s.refine.MaxIts)
		} else {
			f.Solve(d)
		}
	}

	switch s.sys {
	case FullKKT:
		d := make([]float64, 2*n+m)
		fullKKTRHS(rc, rb, rmu, z, d)
		solve(d)
		expandFull(m, n, d, dx, dy, dz)

	case AugmentedKKT:
		d := make([]float64, n+m)
		augKKTRHS(x, rc, rb, rmu, d)
		solve(d)
		expandAugmented(x, z, rmu, d, dx, dy, dz)

	case NormalKKT:
		w := make([]float64, n)
		normalRHSWork(x, z, rc, rmu, w)
		copy(dy, rb)
		s.a.MulVecAdd(1, w, dy)
		solve(dy)
		copy(dz, rc)
		s.a.MulTransVecAdd(1, dy, dz)
		expandNormalDx(x, z, rmu, dz, dx)
	}

	if !allFinite(dx) || !allFinite(dy) || !allFinite(dz) {
		return &BreakdownError{System: s.sys, Cause: errors.New("non-finite direction")}
	}
	return nil
}

// regCandidates returns the a priori diagonal regularization of a reduction,
// indexed in original order. The sign of each candidate matches the inertia
// the block contributes: positive on primal diagonals, negative on the
// Lagrangian and dual blocks of the indefinite shapes.
func regCandidates(sys KKTSystem, m, n int) []float64 {
	primal := math.Pow(machEps, 0.75)
	dual := -math.Sqrt(machEps)
	var reg []float64
	switch sys {
	case FullKKT:
		reg = make([]float64, 2*n+m)
		for i := range reg {
			if i < n {
				reg[i] = primal
			} else {
				reg[i] = dual
			}
		}
	case AugmentedKKT:
		reg = make([]float64, n+m)
		for i := range reg {
			if i < n {
				reg[i] = primal
			} else {
				reg[i] = dual
			}
		}
	case NormalKKT:
		reg = make([]float64, m)
		for i := range reg {
			reg[i] = primal
		}
	}
	return reg
}

// sparseFullKKT assembles the (n+m+n)-dimensional full KKT matrix.
func sparseFullKKT(a *sparse.Matrix, x, z []float64) (*sparse.Matrix, error) {
	m, n := a.Dims()
	dim := 2*n + m
	nz := 2*a.NNZ() + 3*n
	ri := make([]int, 0, nz)
	ci := make([]int, 0, nz)
	v := make([]float64, 0, nz)
	a.DoNonZero(func(i, j int, val float64) {
		ri = append(ri, n+i, j)
		ci = append(ci, j, n+i)
		v = append(v, val, val)
	})
	for i := 0; i < n; i++ {
		ri = append(ri, i, n+m+i, n+m+i)
		ci = append(ci, n+m+i, i, n+m+i)
		v = append(v, -1, -1, -x[i]/z[i])
	}
	return sparse.New(dim, dim, ri, ci, v)
}

// sparseAugKKT assembles the (n+m)-dimensional augmented KKT matrix.
func sparseAugKKT(a *sparse.Matrix, x, z []float64) (*sparse.Matrix, error) {
	m, n := a.Dims()
	dim := n + m
	nz := 2*a.NNZ() + n
	ri := make([]int, 0, nz)
	ci := make([]int, 0, nz)
	v := make([]float64, 0, nz)
	for i := 0; i < n; i++ {
		ri = append(ri, i)
		ci = append(ci, i)
		v = append(v, z[i]/x[i])
	}
	a.DoNonZero(func(i, j int, val float64) {
		ri = append(ri, n+i, j)
		ci = append(ci, j, n+i)
		v = append(v, val, val)
	})
	return sparse.New(dim, dim, ri, ci, v)
}

// sparseNormalKKT assembles 𝐀·diag(𝐱/𝐳)·𝐀ᵀ by expanding the outer product
// of every column of 𝐀 with itself, scaled by the corresponding diagonal
// entry. Coincident products merge during matrix assembly.
func sparseNormalKKT(a *sparse.Matrix, x, z []float64) (*sparse.Matrix, error) {
	m, n := a.Dims()
	type entry struct {
		row int
		val float64
	}
	cols := make([][]entry, n)
	a.DoNonZero(func(i, j int, val float64) {
		cols[j] = append(cols[j], entry{i, val})
	})
	var ri, ci []int
	var v []float64
	for k, col := range cols {
		d := x[k] / z[k]
		for p, e := range col {
			for _, f := range col[p:] {
				val := e.val * d * f.val
				ri = append(ri, e.row)
				ci = append(ci, f.row)
				v = append(v, val)
				if e.row != f.row {
					ri = append(ri, f.row)
					ci = append(ci, e.row)
					v = append(v, val)
				}
			}
		}
	}
	return sparse.New(m, m, ri, ci, v)
}

// sparseUnitAug assembles the augmented matrix with a unit primal diagonal,
// the system both starting-point solves factor.
func sparseUnitAug(a *sparse.Matrix) (*sparse.Matrix, error) {
	_, n := a.Dims()
	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	return sparseAugKKT(a, ones, ones)
}
