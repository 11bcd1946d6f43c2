// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipf

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/conic/sparse"
)

// The cold-start iterate comes from two solves against the augmented matrix
// with a unit primal diagonal:
//
//	⎡ 𝐈  𝐀ᵀ ⎤ ⎡ u ⎤   ⎡ 0 ⎤                ⎡ 𝐈  𝐀ᵀ ⎤ ⎡ u ⎤   ⎡ −𝐜 ⎤
//	⎣ 𝐀  0  ⎦ ⎣ v ⎦ = ⎣ 𝐛 ⎦ ,  𝐱 = u       ⎣ 𝐀  0  ⎦ ⎣ v ⎦ = ⎣ 0  ⎦ ,  𝐲 = v
//
// giving the least-norm primal solution of 𝐀𝐱 = 𝐛 and the least-squares
// dual of 𝐀ᵀ𝐲 ≈ −𝐜, after which 𝐳 = 𝐜 + 𝐀ᵀ𝐲 zeroes the dual residual.
// Both 𝐱 and 𝐳 are then translated into the strict interior if needed.

// denseInit computes the cold-start iterate from a dense constraint matrix.
func denseInit(a *mat.Dense, b, c, x, y, z []float64) error {
	m, n := a.Dims()
	dim := n + m
	j := mat.NewDense(dim, dim, nil)
	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	denseAugKKT(a, ones, ones, j)
	var lu mat.LU
	lu.Factorize(j)

	d := make([]float64, dim)
	copy(d[n:], b)
	if err := luSolveFactored(AugmentedKKT, &lu, d); err != nil {
		return err
	}
	copy(x, d[:n])

	for i := range d {
		d[i] = 0
	}
	for i, v := range c {
		d[i] = -v
	}
	if err := luSolveFactored(AugmentedKKT, &lu, d); err != nil {
		return err
	}
	copy(y, d[n:])

	copy(z, c)
	tmp := mat.NewVecDense(n, nil)
	tmp.MulVec(a.T(), mat.NewVecDense(m, y))
	floats.Add(z, tmp.RawVector().Data)

	shiftInterior(x)
	shiftInterior(z)
	return nil
}

// sparseInit computes the cold-start iterate from a full sparse constraint
// matrix through the regularized 𝐋𝐃𝐋ᵀ pipeline, returning the ordering and
// symbolic analysis of the factored pattern so an augmented-system solve can
// reuse them.
func sparseInit(a *sparse.Matrix, b, c, x, y, z []float64, refine RefineCtrl) (*sparse.Ordering, *sparse.Symbolic, error) {
	m, n := a.Dims()
	j, err := sparseUnitAug(a)
	if err != nil {
		return nil, nil, &BreakdownError{System: AugmentedKKT, Cause: err}
	}
	ord := sparse.NestedDissection(j)
	sym := sparse.Analyze(j, ord)

	pivTol := machEps * j.MaxNorm()
	f, err := sparse.Factorize(j, ord, sym, pivTol, regCandidates(AugmentedKKT, m, n))
	if err != nil {
		return nil, nil, &BreakdownError{System: AugmentedKKT, Cause: err}
	}

	d := make([]float64, n+m)
	copy(d[n:], b)
	f.SolveRefined(j, d, refine.MinReduction, refine.MaxIts)
	copy(x, d[:n])

	for i := range d {
		d[i] = 0
	}
	for i, v := range c {
		d[i] = -v
	}
	f.SolveRefined(j, d, refine.MinReduction, refine.MaxIts)
	copy(y, d[n:])

	copy(z, c)
	a.MulTransVecAdd(1, y, z)

	shiftInterior(x)
	shiftInterior(z)
	return ord, sym, nil
}

// shiftInterior translates v to be strictly positive when any entry is not.
func shiftInterior(v []float64) {
	if len(v) == 0 {
		return
	}
	if mn := floats.Min(v); mn <= 0 {
		floats.AddConst(1-mn, v)
	}
}
