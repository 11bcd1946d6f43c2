// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipf

import (
	"gonum.org/v1/gonum/floats"
)

// lineSearch backtracks from a full step to a length α ∈ (0,1] that keeps
// the trial iterate strictly inside the cone and makes adequate progress on
// the path-following merit conditions:
//
//   - strict positivity: 𝐱+αd𝐱 > 0 and 𝐳+αd𝐳 > 0
//   - centrality: (𝐱+αd𝐱)∘(𝐳+αd𝐳) ≥ γ·μ(α) elementwise
//   - complementarity decrease: μ(α) ≤ (1 − α(1−σ)/100)·μ
//   - feasibility decrease: ‖𝐫𝐛(α)‖ ≤ (1 − α/2)‖𝐫𝐛‖ + tol·(1+‖𝐛‖) and
//     the analogous bound on ‖𝐫𝐜(α)‖
//
// The residual trajectories are affine in α, so one matrix product with d𝐱
// and one with d𝐲 up front suffice for every trial. If no trial satisfies
// the merit conditions within the budget, the largest positivity-preserving
// step found is returned so the loop keeps its cone invariant.
func lineSearch(k kernel, ctrl *Ctrl, st *iterState, bNrm2, cNrm2 float64) float64 {
	ls := ctrl.LineSearch
	bTol := ctrl.Tol * (1 + bNrm2)
	cTol := ctrl.Tol * (1 + cNrm2)

	_, n := k.dims()
	adx := make([]float64, k.yLen())
	k.matVec(1, st.dx, adx)
	atdy := make([]float64, k.xLen())
	k.matTVec(1, st.dy, atdy)
	floats.AddScaled(atdy, -1, st.dz)

	rbNrm := k.nrm2(st.rb)
	rcNrm := k.nrm2(st.rc)

	xt := make([]float64, k.xLen())
	zt := make([]float64, k.xLen())
	w := make([]float64, k.xLen())
	rbt := make([]float64, k.yLen())
	rct := make([]float64, k.xLen())

	positive := func(alpha float64) bool {
		copy(xt, st.x)
		floats.AddScaled(xt, alpha, st.dx)
		copy(zt, st.z)
		floats.AddScaled(zt, alpha, st.dz)
		return k.nonPos(xt) == 0 && k.nonPos(zt) == 0
	}
	merit := func(alpha float64) bool {
		muT := k.dot(xt, zt) / float64(n)
		if muT > (1-0.01*alpha*(1-ctrl.Centering))*st.mu {
			return false
		}
		for i := range w {
			w[i] = xt[i]*zt[i] - ls.Gamma*muT
		}
		if k.nonPos(w) > 0 {
			return false
		}
		copy(rbt, st.rb)
		floats.AddScaled(rbt, alpha, adx)
		if k.nrm2(rbt) > (1-alpha/2)*rbNrm+bTol {
			return false
		}
		copy(rct, st.rc)
		floats.AddScaled(rct, alpha, atdy)
		return k.nrm2(rct) <= (1-alpha/2)*rcNrm+cTol
	}

	alpha := 1.0
	posAlpha := 0.0
	for it := 0; it < ls.MaxIts; it++ {
		if positive(alpha) {
			if posAlpha == 0 {
				posAlpha = alpha
			}
			if merit(alpha) {
				return alpha
			}
		}
		alpha *= ls.StepRatio
	}
	if posAlpha > 0 {
		return posAlpha
	}
	// The boundary is closer than the whole trial budget; shrink until the
	// cone is safe. If even that fails the direction is corrupt and the next
	// cone check reports it.
	for it := 0; it < ls.MaxIts; it++ {
		if positive(alpha) {
			return alpha
		}
		alpha *= ls.StepRatio
	}
	return alpha
}
