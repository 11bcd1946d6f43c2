// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparse

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func factorPipeline(t *testing.T, m *Matrix, pivTol float64, regCand []float64) *Factor {
	t.Helper()
	ord := NestedDissection(m)
	sym := Analyze(m, ord)
	f, err := Factorize(m, ord, sym, pivTol, regCand)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestFactorizeLaplacian(t *testing.T) {
	n := 150
	m := laplacian1D(t, n)
	f := factorPipeline(t, m, 0, nil)

	rng := rand.New(rand.NewSource(1))
	want := make([]float64, n)
	for i := range want {
		want[i] = rng.NormFloat64()
	}
	b := make([]float64, n)
	m.MulVecAdd(1, want, b)

	f.Solve(b)
	if d := maxAbsDiff(b, want); d > 1e-10 {
		t.Fatalf("solution error %v", d)
	}
	for _, r := range f.Realized() {
		if r != 0 {
			t.Fatal("unexpected regularization of a definite matrix")
		}
	}
}

func TestFactorizeIndefinite(t *testing.T) {
	// A saddle-point shape with an empty trailing diagonal block:
	// [ I  B ; Bᵀ 0 ] with B the incidence of a chain.
	n, k := 6, 3
	var ri, ci []int
	var v []float64
	for i := 0; i < n; i++ {
		ri = append(ri, i)
		ci = append(ci, i)
		v = append(v, 1)
	}
	for j := 0; j < k; j++ {
		for _, i := range []int{j, j + 1} {
			ri = append(ri, i, n+j)
			ci = append(ci, n+j, i)
			v = append(v, 1, 1)
		}
	}
	m, err := New(n+k, n+k, ri, ci, v)
	if err != nil {
		t.Fatal(err)
	}
	f := factorPipeline(t, m, 0, nil)

	want := []float64{1, -2, 3, -4, 5, -6, 1, 2, 3}
	b := make([]float64, n+k)
	m.MulVecAdd(1, want, b)
	f.Solve(b)
	if d := maxAbsDiff(b, want); d > 1e-10 {
		t.Fatalf("solution error %v", d)
	}
}

func TestFactorizeBreakdown(t *testing.T) {
	// Structurally zero leading pivot and no candidate to fall back on.
	m, err := New(2, 2,
		[]int{0, 1},
		[]int{1, 0},
		[]float64{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	ord := NestedDissection(m)
	sym := Analyze(m, ord)
	_, err = Factorize(m, ord, sym, 0, nil)
	var bd *BreakdownError
	if !errors.As(err, &bd) {
		t.Fatalf("expected breakdown, got %v", err)
	}
}

func TestFactorizeRegularized(t *testing.T) {
	m, err := New(2, 2,
		[]int{0, 1},
		[]int{1, 0},
		[]float64{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	ord := NestedDissection(m)
	sym := Analyze(m, ord)
	cand := []float64{0.5, -0.5}
	f, err := Factorize(m, ord, sym, 0, cand)
	if err != nil {
		t.Fatal(err)
	}

	nReg := 0
	for i, r := range f.Realized() {
		if r != 0 {
			nReg++
			if r != cand[i] {
				t.Fatalf("realized %v at %d, want %v", r, i, cand[i])
			}
		}
	}
	if nReg == 0 {
		t.Fatal("expected at least one regularized pivot")
	}

	// The factor solves the perturbed system M+R exactly.
	want := []float64{3, -7}
	b := make([]float64, 2)
	m.MulVecAdd(1, want, b)
	for i := range b {
		b[i] += f.Realized()[i] * want[i]
	}
	f.Solve(b)
	if d := maxAbsDiff(b, want); d > 1e-12 {
		t.Fatalf("solution error %v", d)
	}
}

func TestSolveRefined(t *testing.T) {
	n := 100
	m := laplacian1D(t, n)

	// A crude tolerance pushes every pivot through regularization; the
	// refined solve must still answer for the perturbed system M+R and
	// must never accept a step that grows the residual.
	cand := make([]float64, n)
	for i := range cand {
		cand[i] = 1e-4
	}
	f := factorPipeline(t, m, 10, cand)

	want := make([]float64, n)
	for i := range want {
		want[i] = math.Sin(float64(i))
	}
	rhs := make([]float64, n)
	m.MulVecAdd(1, want, rhs)
	for i := range rhs {
		rhs[i] += f.Realized()[i] * want[i]
	}

	b := make([]float64, n)
	copy(b, rhs)
	steps := f.SolveRefined(m, b, 2, 10)
	if steps < 0 || steps > 10 {
		t.Fatalf("unexpected refinement count %d", steps)
	}
	if d := maxAbsDiff(b, want); d > 1e-8 {
		t.Fatalf("refined solution error %v", d)
	}
}
