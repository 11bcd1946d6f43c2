// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipf

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// evalResiduals computes the primal/dual objectives and the feasibility
// residuals of the current iterate, leaving 𝐫𝐛 = 𝐀𝐱 − 𝐛 and
// 𝐫𝐜 = 𝐀ᵀ𝐲 − 𝐳 + 𝐜 in st for reuse as Newton right-hand side material.
// The returned ratios are the three convergence measures:
//
//	|primal − dual| / (1 + |primal|)
//	‖𝐫𝐛‖₂ / (1 + ‖𝐛‖₂)
//	‖𝐫𝐜‖₂ / (1 + ‖𝐜‖₂)
func evalResiduals(k kernel, st *iterState, b, c []float64, bNrm2, cNrm2 float64) (objConv, rbConv, rcConv float64) {
	primObj := k.dot(c, st.x)
	dualObj := -k.dot(b, st.y)
	objConv = math.Abs(primObj-dualObj) / (1 + math.Abs(primObj))

	copy(st.rb, b)
	floats.Scale(-1, st.rb)
	k.matVec(1, st.x, st.rb)
	rbConv = k.nrm2(st.rb) / (1 + bNrm2)

	copy(st.rc, c)
	k.matTVec(1, st.y, st.rc)
	floats.AddScaled(st.rc, -1, st.z)
	rcConv = k.nrm2(st.rc) / (1 + cNrm2)
	return objConv, rbConv, rcConv
}

// verifyDirection recomputes the three Newton equations from the expanded
// direction and returns the relative mismatch of each. With an exact solve
// all three vanish; a large ratio indicates a logic error in the reduction
// or expansion, not a runtime condition.
func verifyDirection(k kernel, st *iterState) (dxErr, dyErr, dzErr float64) {
	rbNrm := k.nrm2(st.rb)
	rcNrm := k.nrm2(st.rc)
	rmuNrm := k.nrm2(st.rmu)

	e := make([]float64, k.xLen())
	for i := range e {
		e[i] = st.rmu[i] + st.x[i]*st.dz[i] + st.z[i]*st.dx[i]
	}
	dzErr = k.nrm2(e) / (1 + rmuNrm)

	copy(e, st.rc)
	k.matTVec(1, st.dy, e)
	floats.AddScaled(e, -1, st.dz)
	dyErr = k.nrm2(e) / (1 + rcNrm)

	ey := make([]float64, k.yLen())
	copy(ey, st.rb)
	k.matVec(1, st.dx, ey)
	dxErr = k.nrm2(ey) / (1 + rbNrm)
	return dxErr, dyErr, dzErr
}
