// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipf


// kernel is the capability surface a problem representation supplies to the
// iteration controller. Vector arguments are the representation's local
// blocks; for serial representations local and global coincide. All methods
// taking vectors of both primal (n) and constraint (m) length must accept
// either, and every method whose result is global (dots, norms, counts,
// matrix products, the Newton step) is collective: all ranks call it in the
// same order with their own blocks.
type kernel interface {
	// dims returns the global constraint count m and variable count n.
	dims() (m, n int)
	// xLen and yLen return the local block lengths of n- and m-vectors.
	xLen() int
	yLen() int
	// coordinator reports whether this rank emits diagnostics.
	coordinator() bool
	// dot returns the global inner product of two equally distributed vectors.
	dot(u, v []float64) float64
	// nrm2 returns the global Euclidean norm.
	nrm2(v []float64) float64
	// nonPos returns the global count of entries ≤ 0.
	nonPos(v []float64) int
	// matVec computes y += α𝐀x.
	matVec(alpha float64, x, y []float64)
	// matTVec computes x += α𝐀ᵀy.
	matTVec(alpha float64, y, x []float64)
	// step builds the configured Newton system from the iterate and
	// residuals in st, solves it, and expands the result into the
	// direction triple (st.dx, st.dy, st.dz).
	step(st *iterState) error
}

// iterState carries the solve-call-scoped buffers threaded through one
// iteration: the iterate blocks (aliasing the caller's storage), the
// residual blocks, the duality measure and the direction triple. Buffers
// are owned by the controller and reused in place across iterations.
type iterState struct {
	mu float64

	x, y, z     []float64
	rb, rc, rmu []float64
	dx, dy, dz  []float64
}

func newIterState(k kernel, x, y, z []float64) *iterState {
	xn, ym := k.xLen(), k.yLen()
	return &iterState{
		x: x, y: y, z: z,
		rb: make([]float64, ym), rc: make([]float64, xn), rmu: make([]float64, xn),
		dx: make([]float64, xn), dy: make([]float64, ym), dz: make([]float64, xn),
	}
}

func localNonPos(v []float64) (cnt int) {
	for _, x := range v {
		if x <= 0 {
			cnt++
		}
	}
	return cnt
}
