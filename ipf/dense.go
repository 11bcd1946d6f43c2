// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipf

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// denseNewtonStep builds the configured reduction from a dense constraint
// matrix and full-length vectors, solves it directly, and expands the
// direction triple. Indefinite shapes go through a pivoted LU, the normal
// equations through a Cholesky factorization; any numerical breakdown is
// fatal, there is no recovery attempt on the dense path.
func denseNewtonStep(a *mat.Dense, sys KKTSystem, x, z, rb, rc, rmu, dx, dy, dz []float64) error {
	m, n := a.Dims()
	switch sys {
	case FullKKT:
		dim := 2*n + m
		j := mat.NewDense(dim, dim, nil)
		denseFullKKT(a, x, z, j)
		d := make([]float64, dim)
		fullKKTRHS(rc, rb, rmu, z, d)
		if err := luSolve(sys, j, d); err != nil {
			return err
		}
		expandFull(m, n, d, dx, dy, dz)

	case AugmentedKKT:
		dim := n + m
		j := mat.NewDense(dim, dim, nil)
		denseAugKKT(a, x, z, j)
		d := make([]float64, dim)
		augKKTRHS(x, rc, rb, rmu, d)
		if err := luSolve(sys, j, d); err != nil {
			return err
		}
		expandAugmented(x, z, rmu, d, dx, dy, dz)

	case NormalKKT:
		j := mat.NewSymDense(m, nil)
		denseNormalKKT(a, x, z, j)
		w := make([]float64, n)
		normalRHSWork(x, z, rc, rmu, w)
		copy(dy, rb)
		tmp := mat.NewVecDense(m, nil)
		tmp.MulVec(a, mat.NewVecDense(n, w))
		floats.Add(dy, tmp.RawVector().Data)

		var ch mat.Cholesky
		if !ch.Factorize(j) {
			return &BreakdownError{System: sys, Cause: errors.New("normal matrix is not positive definite")}
		}
		sol := mat.NewVecDense(m, nil)
		if err := ch.SolveVecTo(sol, mat.NewVecDense(m, dy)); err != nil {
			return &BreakdownError{System: sys, Cause: err}
		}
		copy(dy, sol.RawVector().Data)

		copy(dz, rc)
		tmpn := mat.NewVecDense(n, nil)
		tmpn.MulVec(a.T(), sol)
		floats.Add(dz, tmpn.RawVector().Data)
		expandNormalDx(x, z, rmu, dz, dx)
	}

	if !allFinite(dx) || !allFinite(dy) || !allFinite(dz) {
		return &BreakdownError{System: sys, Cause: errors.New("non-finite direction")}
	}
	return nil
}

// luSolve overwrites d with J⁻¹d through a partially pivoted LU. A
// near-singularity condition warning is tolerated; exact singularity or a
// non-finite solution is a breakdown.
func luSolve(sys KKTSystem, j *mat.Dense, d []float64) error {
	var lu mat.LU
	lu.Factorize(j)
	return luSolveFactored(sys, &lu, d)
}

func luSolveFactored(sys KKTSystem, lu *mat.LU, d []float64) error {
	sol := mat.NewVecDense(len(d), nil)
	if err := lu.SolveVecTo(sol, false, mat.NewVecDense(len(d), d)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return &BreakdownError{System: sys, Cause: err}
		}
	}
	copy(d, sol.RawVector().Data)
	if !allFinite(d) {
		return &BreakdownError{System: sys, Cause: errors.New("non-finite solution")}
	}
	return nil
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// denseKernel is the serial dense representation: local blocks are the
// global vectors and every reduction is a plain loop.
type denseKernel struct {
	a    *mat.Dense
	m, n int
	sys  KKTSystem
}

func newDenseKernel(a *mat.Dense, sys KKTSystem) *denseKernel {
	m, n := a.Dims()
	return &denseKernel{a: a, m: m, n: n, sys: sys}
}

func (k *denseKernel) dims() (m, n int)  { return k.m, k.n }
func (k *denseKernel) xLen() int         { return k.n }
func (k *denseKernel) yLen() int         { return k.m }
func (k *denseKernel) coordinator() bool { return true }

func (k *denseKernel) dot(u, v []float64) float64 { return floats.Dot(u, v) }
func (k *denseKernel) nrm2(v []float64) float64   { return floats.Norm(v, 2) }
func (k *denseKernel) nonPos(v []float64) int     { return localNonPos(v) }

func (k *denseKernel) matVec(alpha float64, x, y []float64) {
	tmp := mat.NewVecDense(k.m, nil)
	tmp.MulVec(k.a, mat.NewVecDense(k.n, x))
	floats.AddScaled(y, alpha, tmp.RawVector().Data)
}

func (k *denseKernel) matTVec(alpha float64, y, x []float64) {
	tmp := mat.NewVecDense(k.n, nil)
	tmp.MulVec(k.a.T(), mat.NewVecDense(k.m, y))
	floats.AddScaled(x, alpha, tmp.RawVector().Data)
}

func (k *denseKernel) step(st *iterState) error {
	return denseNewtonStep(k.a, k.sys, st.x, st.z, st.rb, st.rc, st.rmu, st.dx, st.dy, st.dz)
}
