// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipf

import (
	"gonum.org/v1/gonum/floats"
)

// solveLoop is the iteration controller shared by every representation.
// Each pass ensures the iterate is strictly inside the cone, checks the
// three convergence ratios, enforces the iteration cap, then builds and
// solves the Newton system through the kernel, searches for a step length
// and updates (𝐱,𝐲,𝐳) in place. Returns nil on convergence.
func solveLoop(k kernel, ctrl *Ctrl, x, y, z, b, c []float64) error {
	diag := ctrl.Diag
	if diag == nil {
		diag = NopDiagnostics{}
	}
	_, n := k.dims()
	bNrm2 := k.nrm2(b)
	cNrm2 := k.nrm2(c)
	st := newIterState(k, x, y, z)

	for numIts := 0; ; numIts++ {
		// Ensure that x and z are in the cone.
		xNonPos := k.nonPos(x)
		zNonPos := k.nonPos(z)
		if xNonPos > 0 || zNonPos > 0 {
			return &InfeasibleError{XNonPos: xNonPos, ZNonPos: zNonPos}
		}

		objConv, rbConv, rcConv := evalResiduals(k, st, b, c, bNrm2, cNrm2)
		if objConv <= ctrl.Tol && rbConv <= ctrl.Tol && rcConv <= ctrl.Tol {
			return nil
		}
		if ctrl.Print && k.coordinator() {
			diag.Progress(numIts, objConv, rbConv, rcConv)
		}
		if numIts == ctrl.MaxIts {
			return &IterLimitError{MaxIts: ctrl.MaxIts}
		}

		// Duality measure and centrality residual 𝐫μ = 𝐱∘𝐳 − σμ𝟙.
		mu := k.dot(x, z) / float64(n)
		for i := range st.rmu {
			st.rmu[i] = x[i] * z[i]
		}
		floats.AddConst(-ctrl.Centering*mu, st.rmu)
		st.mu = mu

		if err := k.step(st); err != nil {
			return err
		}
		if ctrl.Verify {
			dxErr, dyErr, dzErr := verifyDirection(k, st)
			if ctrl.Print && k.coordinator() {
				diag.Verify(numIts, dxErr, dyErr, dzErr)
			}
		}

		alpha := lineSearch(k, ctrl, st, bNrm2, cNrm2)
		if ctrl.Print && k.coordinator() {
			diag.Step(numIts, alpha)
		}
		floats.AddScaled(x, alpha, st.dx)
		floats.AddScaled(y, alpha, st.dy)
		floats.AddScaled(z, alpha, st.dz)
	}
}
