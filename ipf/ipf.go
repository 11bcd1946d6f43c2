// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipf

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/conic/dist"
	"github.com/curioloop/conic/sparse"
)

// Solve minimizes 𝐜ᵀ𝐱 subject to 𝐀𝐱 = 𝐛, 𝐱 ≥ 0 for a dense constraint
// matrix, overwriting x, y and z with the converged primal and dual
// iterates. When ctrl.Initialized is set the supplied (x,y,z) is used as
// the starting point and must be strictly interior; otherwise a starting
// point is computed and the inputs are overwritten. A nil ctrl means
// DefaultCtrl.
//
// On success x holds an approximate primal solution, y the Lagrange
// multipliers of the equality constraints and z the dual slacks. The
// iterates are left at their final values on every error so a caller can
// inspect how far the solve progressed.
func Solve(a *mat.Dense, b, c, x, y, z []float64, ctrl *Ctrl) error {
	m, n := a.Dims()
	if err := checkDims(m, n, len(b), len(c), len(x), len(y), len(z)); err != nil {
		return err
	}
	ctrl, err := checkCtrl(ctrl)
	if err != nil {
		return err
	}
	if !ctrl.Initialized {
		if err := denseInit(a, b, c, x, y, z); err != nil {
			return err
		}
	}
	return solveLoop(newDenseKernel(a, ctrl.System), ctrl, x, y, z, b, c)
}

// SolveSparse is the sequential sparse counterpart of Solve. Sequential
// sparse-direct factorization is not supported; it always returns
// ErrSparseSerial. Use SolveDistSparse, which hosts ranks in-process.
func SolveSparse(a *sparse.Matrix, b, c, x, y, z []float64, ctrl *Ctrl) error {
	return ErrSparseSerial
}

// SolveDist is the distributed counterpart of Solve. It is collective: all
// ranks of the communicator behind the arguments must call it with the same
// ctrl, and the distributed arguments must share one communicator.
func SolveDist(a *dist.Dense, b, c, x, y, z *dist.Vec, ctrl *Ctrl) error {
	m, n := a.Dims()
	if err := checkDims(m, n, b.Len(), c.Len(), x.Len(), y.Len(), z.Len()); err != nil {
		return err
	}
	ctrl, err := checkCtrl(ctrl)
	if err != nil {
		return err
	}
	k := newDistDenseKernel(a, x, y, ctrl.System)
	if !ctrl.Initialized {
		bf := b.Gather(nil)
		cf := c.Gather(nil)
		xf := make([]float64, n)
		yf := make([]float64, m)
		zf := make([]float64, n)
		if err := denseInit(k.a, bf, cf, xf, yf, zf); err != nil {
			return err
		}
		x.SetFromGlobal(xf)
		y.SetFromGlobal(yf)
		z.SetFromGlobal(zf)
	}
	return solveLoop(k, ctrl, x.Local(), y.Local(), z.Local(), b.Local(), c.Local())
}

// SolveDistSparse is the distributed sparse counterpart of Solve, backed by
// the nested-dissection ordered, regularized 𝐋𝐃𝐋ᵀ pipeline. It is
// collective in the same sense as SolveDist. When a starting point is
// computed and the augmented formulation is selected, the ordering and
// symbolic analysis of the starting-point system carry over to the
// iteration, whose system shares the same pattern.
func SolveDistSparse(a *dist.Sparse, b, c, x, y, z *dist.Vec, ctrl *Ctrl) error {
	m, n := a.Dims()
	if err := checkDims(m, n, b.Len(), c.Len(), x.Len(), y.Len(), z.Len()); err != nil {
		return err
	}
	ctrl, err := checkCtrl(ctrl)
	if err != nil {
		return err
	}
	k, err := newDistSparseKernel(a, x, y, ctrl.System, ctrl.Refine)
	if err != nil {
		return err
	}
	if !ctrl.Initialized {
		bf := b.Gather(nil)
		cf := c.Gather(nil)
		xf := make([]float64, n)
		yf := make([]float64, m)
		zf := make([]float64, n)
		ord, sym, err := sparseInit(k.a, bf, cf, xf, yf, zf, ctrl.Refine)
		if err != nil {
			return err
		}
		if ctrl.System == AugmentedKKT {
			k.solver.ord, k.solver.sym = ord, sym
		}
		x.SetFromGlobal(xf)
		y.SetFromGlobal(yf)
		z.SetFromGlobal(zf)
	}
	return solveLoop(k, ctrl, x.Local(), y.Local(), z.Local(), b.Local(), c.Local())
}

func checkDims(m, n, bn, cn, xn, yn, zn int) error {
	switch {
	case m <= 0 || n <= 0:
		return errors.New("ipf: constraint matrix dimensions must be positive")
	case bn != m:
		return errors.New("ipf: length of b must equal the constraint count")
	case cn != n:
		return errors.New("ipf: length of c must equal the variable count")
	case xn != n || zn != n:
		return errors.New("ipf: lengths of x and z must equal the variable count")
	case yn != m:
		return errors.New("ipf: length of y must equal the constraint count")
	}
	return nil
}

func checkCtrl(ctrl *Ctrl) (*Ctrl, error) {
	if ctrl == nil {
		def := DefaultCtrl()
		return &def, nil
	}
	if err := ctrl.validate(); err != nil {
		return nil, err
	}
	return ctrl, nil
}
