// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ipf implements an infeasible path-following interior point method
// for linear programs in primal conic form:
//
//	minimize 𝐜ᵀ𝐱 subject to 𝐀𝐱 = 𝐛, 𝐱 ≥ 0
//
// as opposed to the more general dual conic form with explicit slacks.
// Each iteration linearizes the perturbed optimality conditions
//
//   - 𝐀ᵀ𝐲 − 𝐳 + 𝐜 = 0
//   - 𝐀𝐱 − 𝐛 = 0
//   - 𝐱 ∘ 𝐳 = σμ𝟙
//
// around the current strictly interior iterate (𝐱,𝐲,𝐳), solves one of three
// equivalent symmetric reductions of the resulting Newton system, and takes
// a damped step preserving 𝐱 > 0, 𝐳 > 0.
//
// Four problem representations share one iteration controller: dense serial,
// dense distributed, sparse serial (unsupported) and sparse distributed.
//
// Stephen Wright: "Primal-Dual Interior-Point Methods". SIAM, 1997.
package ipf

import (
	"errors"
	"math"
)

// KKTSystem selects which symmetric reduction of the Newton system is
// factored each iteration. The three formulations are algebraically
// equivalent and trade matrix size against conditioning: FullKKT is the
// largest and best conditioned, NormalKKT the most compact but implicitly
// squares the condition number.
type KKTSystem int

const (
	// FullKKT solves the (n+m+n)-dimensional indefinite system coupling
	// stationarity, feasibility and complementarity directly.
	FullKKT KKTSystem = iota
	// AugmentedKKT eliminates the 𝐳 block through the complementarity
	// relation, leaving an (n+m)-dimensional quasi-definite system.
	AugmentedKKT
	// NormalKKT further eliminates the 𝐱 block, leaving the m-dimensional
	// positive definite normal equations. Requires 𝐀 of full row rank.
	NormalKKT
)

func (s KKTSystem) String() string {
	switch s {
	case FullKKT:
		return "full-kkt"
	case AugmentedKKT:
		return "augmented-kkt"
	case NormalKKT:
		return "normal-kkt"
	}
	return "unknown-kkt"
}

// LineSearchCtrl configures the merit backtracking search for the step
// length (see §"line search" in the package documentation).
type LineSearchCtrl struct {
	// Gamma is the centrality neighbourhood parameter: every accepted step
	// keeps xᵢzᵢ ≥ Gamma·μ. 0 < Gamma < 1.
	Gamma float64
	// StepRatio is the backtracking shrink factor in (0,1).
	StepRatio float64
	// MaxIts caps the number of backtracking trials.
	MaxIts int
}

// RefineCtrl configures the bounded iterative refinement applied after a
// regularized sparse solve. Refinement aborts as soon as a step fails to
// shrink the residual of the regularized system by MinReduction.
type RefineCtrl struct {
	// Enabled forces refinement on every formulation. The normal-equation
	// sparse path refines regardless.
	Enabled bool
	// MaxIts caps the number of refinement steps.
	MaxIts int
	// MinReduction is the residual shrink factor each step must achieve.
	MinReduction float64
}

// Ctrl configures one solve call. The zero value is not usable; start from
// DefaultCtrl.
type Ctrl struct {
	// Initialized indicates the caller supplies a strictly interior
	// starting iterate in (x,y,z). When false the solver computes one.
	Initialized bool
	// Tol is the convergence tolerance applied to the objective-gap,
	// primal-residual and dual-residual ratios.
	Tol float64
	// MaxIts is the iteration cap.
	MaxIts int
	// Centering in [0,1] damps the complementarity target σμ each iteration.
	Centering float64
	// System selects the Newton system reduction.
	System KKTSystem
	// Print emits per-iteration diagnostics to Diag on the coordinating rank.
	Print bool
	// Verify recomputes the three Newton residual equations from the
	// expanded direction each iteration and reports the mismatch ratios.
	Verify bool
	// LineSearch configures the step length search.
	LineSearch LineSearchCtrl
	// Refine configures sparse-path iterative refinement.
	Refine RefineCtrl
	// Diag receives diagnostics; nil means none.
	Diag Diagnostics
}

// DefaultCtrl returns the control settings used when the caller has no
// opinion: a cold start, tolerance 1e-8, 1000 iterations, centering 0.9 and
// the augmented formulation.
func DefaultCtrl() Ctrl {
	return Ctrl{
		Tol:       1e-8,
		MaxIts:    1000,
		Centering: 0.9,
		System:    AugmentedKKT,
		LineSearch: LineSearchCtrl{
			Gamma:     1e-3,
			StepRatio: 0.5,
			MaxIts:    30,
		},
		Refine: RefineCtrl{
			MaxIts:       10,
			MinReduction: 2,
		},
	}
}

func (c *Ctrl) validate() error {
	switch {
	case !(c.Tol > 0):
		return errors.New("ipf: tolerance must be greater than 0")
	case c.MaxIts < 0:
		return errors.New("ipf: iteration cap must not be negative")
	case math.IsNaN(c.Centering) || c.Centering < 0 || c.Centering > 1:
		return errors.New("ipf: centering must lie in [0,1]")
	case c.System != FullKKT && c.System != AugmentedKKT && c.System != NormalKKT:
		return errors.New("ipf: unknown KKT system")
	case !(c.LineSearch.Gamma > 0) || c.LineSearch.Gamma >= 1:
		return errors.New("ipf: line search gamma must lie in (0,1)")
	case !(c.LineSearch.StepRatio > 0) || c.LineSearch.StepRatio >= 1:
		return errors.New("ipf: line search step ratio must lie in (0,1)")
	case c.LineSearch.MaxIts <= 0:
		return errors.New("ipf: line search iteration cap must be positive")
	case c.Refine.MaxIts < 0:
		return errors.New("ipf: refinement iteration cap must not be negative")
	case c.Refine.MinReduction <= 1:
		return errors.New("ipf: refinement reduction factor must exceed 1")
	}
	return nil
}
