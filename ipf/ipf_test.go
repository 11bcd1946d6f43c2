// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipf

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// min x₁ + 2x₂  s.t.  x₁ + x₂ = 1, x ≥ 0 has the unique optimum (1,0)
// with multiplier y = −1 and dual slacks z = (0,1).
func knownOptimumProblem() (a *mat.Dense, b, c []float64) {
	return mat.NewDense(1, 2, []float64{1, 1}), []float64{1}, []float64{1, 2}
}

func TestSolveKnownOptimum(t *testing.T) {
	a, b, c := knownOptimumProblem()

	for _, sys := range []KKTSystem{FullKKT, AugmentedKKT, NormalKKT} {
		ctrl := DefaultCtrl()
		ctrl.Initialized = true
		ctrl.MaxIts = 50
		ctrl.Centering = 0.1
		ctrl.System = sys

		x := []float64{0.5, 0.5}
		y := []float64{0}
		z := []float64{1, 2}
		require.NoError(t, Solve(a, b, c, x, y, z, &ctrl), sys)

		require.InDelta(t, 1, x[0], 1e-6, "%v: x[0]", sys)
		require.InDelta(t, 0, x[1], 1e-6, "%v: x[1]", sys)
		require.InDelta(t, -1, y[0], 1e-6, "%v: y", sys)
		require.InDelta(t, 1, floats.Dot(c, x), 1e-6, "%v: objective", sys)
	}
}

func TestSolveColdStart(t *testing.T) {
	a, b, c := knownOptimumProblem()
	x := make([]float64, 2)
	y := make([]float64, 1)
	z := make([]float64, 2)
	require.NoError(t, Solve(a, b, c, x, y, z, nil))
	require.InDelta(t, 1, x[0], 1e-6)
	require.InDelta(t, 0, x[1], 1e-6)
}

// A problem constructed around a strictly feasible primal-dual pair has an
// attained optimum, and the optimal value does not depend on which reduction
// the solver factors.
func TestFormulationObjectiveAgreement(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m, n := 3, 7
	raw := make([]float64, m*n)
	for i := range raw {
		raw[i] = rng.NormFloat64()
	}
	a := mat.NewDense(m, n, raw)

	xFeas := make([]float64, n)
	zFeas := make([]float64, n)
	for i := range xFeas {
		xFeas[i] = 0.5 + rng.Float64()
		zFeas[i] = 0.5 + rng.Float64()
	}
	yFeas := make([]float64, m)
	for i := range yFeas {
		yFeas[i] = rng.NormFloat64()
	}

	b := make([]float64, m)
	av := mat.NewVecDense(m, b)
	av.MulVec(a, mat.NewVecDense(n, xFeas))

	// c = z − 𝐀ᵀy makes (x,y,z) strictly feasible for both problems.
	c := make([]float64, n)
	copy(c, zFeas)
	cv := mat.NewVecDense(n, nil)
	cv.MulVec(a.T(), mat.NewVecDense(m, yFeas))
	floats.AddScaled(c, -1, cv.RawVector().Data)

	var objs []float64
	for _, sys := range []KKTSystem{FullKKT, AugmentedKKT, NormalKKT} {
		ctrl := DefaultCtrl()
		ctrl.System = sys
		x := make([]float64, n)
		y := make([]float64, m)
		z := make([]float64, n)
		require.NoError(t, Solve(a, b, c, x, y, z, &ctrl), sys)

		rb := make([]float64, m)
		copy(rb, b)
		rv := mat.NewVecDense(m, nil)
		rv.MulVec(a, mat.NewVecDense(n, x))
		floats.AddScaled(rb, -1, rv.RawVector().Data)
		require.Less(t, floats.Norm(rb, 2), 1e-6, "%v: primal residual", sys)

		objs = append(objs, floats.Dot(c, x))
	}
	require.InDelta(t, objs[0], objs[1], 1e-6)
	require.InDelta(t, objs[0], objs[2], 1e-6)
}

func TestSolveIterLimit(t *testing.T) {
	a, b, c := knownOptimumProblem()
	ctrl := DefaultCtrl()
	ctrl.Initialized = true
	ctrl.MaxIts = 0

	x := []float64{0.5, 0.5}
	y := []float64{0}
	z := []float64{1, 2}
	err := Solve(a, b, c, x, y, z, &ctrl)

	var lim *IterLimitError
	require.ErrorAs(t, err, &lim)
	require.Equal(t, 0, lim.MaxIts)
	require.Equal(t, []float64{0.5, 0.5}, x, "iterate must be untouched")
	require.Equal(t, []float64{1, 2}, z, "iterate must be untouched")
}

func TestSolveOutsideCone(t *testing.T) {
	a, b, c := knownOptimumProblem()
	ctrl := DefaultCtrl()
	ctrl.Initialized = true

	x := []float64{-0.5, 0}
	y := []float64{0}
	z := []float64{1, -2}
	err := Solve(a, b, c, x, y, z, &ctrl)

	var inf *InfeasibleError
	require.ErrorAs(t, err, &inf)
	require.Equal(t, 2, inf.XNonPos)
	require.Equal(t, 1, inf.ZNonPos)
}

func TestSolveSparseSerial(t *testing.T) {
	a, b, c := knownOptimumProblem()
	s := testSparseMatrix(t, a)
	err := SolveSparse(s, b, c, make([]float64, 2), make([]float64, 1), make([]float64, 2), nil)
	require.ErrorIs(t, err, ErrSparseSerial)
}

func TestSolveBadArguments(t *testing.T) {
	a, b, c := knownOptimumProblem()
	x := make([]float64, 2)
	y := make([]float64, 1)
	z := make([]float64, 2)

	require.Error(t, Solve(a, b[:0], c, x, y, z, nil), "short b")
	require.Error(t, Solve(a, b, c[:1], x, y, z, nil), "short c")
	require.Error(t, Solve(a, b, c, x[:1], y, z, nil), "short x")
	require.Error(t, Solve(a, b, c, x, y, z[:1], nil), "short z")

	ctrl := DefaultCtrl()
	ctrl.Tol = 0
	require.Error(t, Solve(a, b, c, x, y, z, &ctrl), "invalid tolerance")
	ctrl = DefaultCtrl()
	ctrl.Centering = 1.5
	require.Error(t, Solve(a, b, c, x, y, z, &ctrl), "invalid centering")
	ctrl = DefaultCtrl()
	ctrl.System = KKTSystem(42)
	require.Error(t, Solve(a, b, c, x, y, z, &ctrl), "invalid system")
}

func TestCtrlValidate(t *testing.T) {
	ctrl := DefaultCtrl()
	require.NoError(t, ctrl.validate())

	bad := []func(*Ctrl){
		func(c *Ctrl) { c.MaxIts = -1 },
		func(c *Ctrl) { c.LineSearch.Gamma = 1 },
		func(c *Ctrl) { c.LineSearch.StepRatio = 0 },
		func(c *Ctrl) { c.LineSearch.MaxIts = 0 },
		func(c *Ctrl) { c.Refine.MinReduction = 1 },
	}
	for i, mutate := range bad {
		c := DefaultCtrl()
		mutate(&c)
		require.Error(t, c.validate(), "case %d", i)
	}
}
