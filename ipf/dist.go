// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipf

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/conic/dist"
	"github.com/curioloop/conic/sparse"
)

// The distributed representations keep the iterate, residual and direction
// vectors block-distributed and reduce dots, norms and cone counts
// collectively, while the Newton solve itself is gather-redundant: every
// rank gathers the full iterate, factors the identical system, and keeps
// its own block of the direction. Redundant factorization trades memory for
// the absence of any cross-rank pivoting protocol, and since every rank
// performs bitwise identical arithmetic the ranks cannot diverge.

// distOps supplies the collective vector reductions shared by both
// distributed kernels. Vector arguments are local blocks.
type distOps struct {
	c          *dist.Comm
	m, n       int
	xCnt, yCnt int
	xf, yf     []float64 // gather scratch
}

func newDistOps(c *dist.Comm, m, n, xCnt, yCnt int) distOps {
	return distOps{c: c, m: m, n: n, xCnt: xCnt, yCnt: yCnt}
}

func (o *distOps) dims() (m, n int)  { return o.m, o.n }
func (o *distOps) xLen() int         { return o.xCnt }
func (o *distOps) yLen() int         { return o.yCnt }
func (o *distOps) coordinator() bool { return o.c.Rank() == 0 }

func (o *distOps) dot(u, v []float64) float64 {
	return o.c.AllSum(floats.Dot(u, v))
}

func (o *distOps) nrm2(v []float64) float64 {
	return math.Sqrt(o.c.AllSum(floats.Dot(v, v)))
}

func (o *distOps) nonPos(v []float64) int {
	return o.c.AllSumInt(localNonPos(v))
}

// gatherX and gatherY return the full vector behind a local block, valid
// until the next gather through the same scratch slot.
func (o *distOps) gatherX(v []float64) []float64 {
	o.xf = o.c.AllGather(o.xf[:0], v)
	return o.xf
}

func (o *distOps) gatherY(v []float64) []float64 {
	o.yf = o.c.AllGather(o.yf[:0], v)
	return o.yf
}

// distDenseKernel is the distributed dense representation. The full
// constraint matrix is gathered once at construction.
type distDenseKernel struct {
	distOps
	a      *mat.Dense
	yFirst int
	xFirst int
	sys    KKTSystem

	full struct {
		x, z, rb, rc, rmu []float64
		dx, dy, dz        []float64
	}
}

func newDistDenseKernel(a *dist.Dense, x, y *dist.Vec, sys KKTSystem) *distDenseKernel {
	m, n := a.Dims()
	k := &distDenseKernel{
		distOps: newDistOps(a.Comm(), m, n, len(x.Local()), len(y.Local())),
		a:       mat.NewDense(m, n, a.GatherRows(nil)),
		xFirst:  x.First(),
		yFirst:  y.First(),
		sys:     sys,
	}
	k.full.x = make([]float64, n)
	k.full.z = make([]float64, n)
	k.full.rc = make([]float64, n)
	k.full.rmu = make([]float64, n)
	k.full.rb = make([]float64, m)
	k.full.dx = make([]float64, n)
	k.full.dz = make([]float64, n)
	k.full.dy = make([]float64, m)
	return k
}

func (k *distDenseKernel) matVec(alpha float64, x, y []float64) {
	xf := k.gatherX(x)
	tmp := mat.NewVecDense(k.m, nil)
	tmp.MulVec(k.a, mat.NewVecDense(k.n, xf))
	floats.AddScaled(y, alpha, tmp.RawVector().Data[k.yFirst:k.yFirst+k.yCnt])
}

func (k *distDenseKernel) matTVec(alpha float64, y, x []float64) {
	yf := k.gatherY(y)
	tmp := mat.NewVecDense(k.n, nil)
	tmp.MulVec(k.a.T(), mat.NewVecDense(k.m, yf))
	floats.AddScaled(x, alpha, tmp.RawVector().Data[k.xFirst:k.xFirst+k.xCnt])
}

func (k *distDenseKernel) step(st *iterState) error {
	f := &k.full
	copy(f.x, k.gatherX(st.x))
	copy(f.z, k.gatherX(st.z))
	copy(f.rc, k.gatherX(st.rc))
	copy(f.rmu, k.gatherX(st.rmu))
	copy(f.rb, k.gatherY(st.rb))
	err := denseNewtonStep(k.a, k.sys, f.x, f.z, f.rb, f.rc, f.rmu, f.dx, f.dy, f.dz)
	if err != nil {
		return err
	}
	copy(st.dx, f.dx[k.xFirst:k.xFirst+k.xCnt])
	copy(st.dz, f.dz[k.xFirst:k.xFirst+k.xCnt])
	copy(st.dy, f.dy[k.yFirst:k.yFirst+k.yCnt])
	return nil
}

// distSparseKernel is the distributed sparse representation. The triplets
// are gathered once at construction and the full matrix assembled on every
// rank; each step runs the sparse direct pipeline redundantly.
type distSparseKernel struct {
	distOps
	a      *sparse.Matrix
	solver sparseSolver
	yFirst int
	xFirst int

	full struct {
		x, z, rb, rc, rmu []float64
		dx, dy, dz        []float64
	}
}

func newDistSparseKernel(a *dist.Sparse, x, y *dist.Vec, sys KKTSystem, refine RefineCtrl) (*distSparseKernel, error) {
	m, n := a.Dims()
	ri, ci, val := a.Gather()
	full, err := sparse.New(m, n, ri, ci, val)
	if err != nil {
		return nil, err
	}
	k := &distSparseKernel{
		distOps: newDistOps(a.Comm(), m, n, len(x.Local()), len(y.Local())),
		a:       full,
		solver:  sparseSolver{a: full, sys: sys, refine: refine},
		xFirst:  x.First(),
		yFirst:  y.First(),
	}
	k.full.x = make([]float64, n)
	k.full.z = make([]float64, n)
	k.full.rc = make([]float64, n)
	k.full.rmu = make([]float64, n)
	k.full.rb = make([]float64, m)
	k.full.dx = make([]float64, n)
	k.full.dz = make([]float64, n)
	k.full.dy = make([]float64, m)
	return k, nil
}

func (k *distSparseKernel) matVec(alpha float64, x, y []float64) {
	xf := k.gatherX(x)
	tmp := make([]float64, k.m)
	k.a.MulVecAdd(1, xf, tmp)
	floats.AddScaled(y, alpha, tmp[k.yFirst:k.yFirst+k.yCnt])
}

func (k *distSparseKernel) matTVec(alpha float64, y, x []float64) {
	yf := k.gatherY(y)
	tmp := make([]float64, k.n)
	k.a.MulTransVecAdd(1, yf, tmp)
	floats.AddScaled(x, alpha, tmp[k.xFirst:k.xFirst+k.xCnt])
}

func (k *distSparseKernel) step(st *iterState) error {
	f := &k.full
	copy(f.x, k.gatherX(st.x))
	copy(f.z, k.gatherX(st.z))
	copy(f.rc, k.gatherX(st.rc))
	copy(f.rmu, k.gatherX(st.rmu))
	copy(f.rb, k.gatherY(st.rb))
	err := k.solver.step(f.x, f.z, f.rb, f.rc, f.rmu, f.dx, f.dy, f.dz)
	if err != nil {
		return err
	}
	copy(st.dx, f.dx[k.xFirst:k.xFirst+k.xCnt])
	copy(st.dz, f.dz[k.xFirst:k.xFirst+k.xCnt])
	copy(st.dy, f.dy[k.yFirst:k.yFirst+k.yCnt])
	return nil
}
