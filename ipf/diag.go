// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipf

import "go.uber.org/zap"

// Diagnostics receives the per-iteration trajectory of a solve. All methods
// are invoked from the coordinating rank only, before any fatal error is
// raised, so a caller can always see the path that led to a failure.
type Diagnostics interface {
	// Progress reports the convergence ratios of an iteration that did not
	// yet meet the tolerance.
	Progress(iter int, objConv, rbConv, rcConv float64)
	// Step reports the accepted step length of an iteration.
	Step(iter int, alpha float64)
	// Verify reports the relative residuals of the three Newton equations
	// recomputed from the expanded direction (only under Ctrl.Verify).
	Verify(iter int, dxErr, dyErr, dzErr float64)
}

// NopDiagnostics discards everything.
type NopDiagnostics struct{}

func (NopDiagnostics) Progress(int, float64, float64, float64) {}
func (NopDiagnostics) Step(int, float64)                       {}
func (NopDiagnostics) Verify(int, float64, float64, float64)   {}

// ZapDiagnostics reports the trajectory through a structured logger.
type ZapDiagnostics struct {
	Log *zap.Logger
}

func (d ZapDiagnostics) Progress(iter int, objConv, rbConv, rcConv float64) {
	d.Log.Info("iteration",
		zap.Int("iter", iter),
		zap.Float64("objConv", objConv),
		zap.Float64("rbConv", rbConv),
		zap.Float64("rcConv", rcConv))
}

func (d ZapDiagnostics) Step(iter int, alpha float64) {
	d.Log.Info("step", zap.Int("iter", iter), zap.Float64("alpha", alpha))
}

func (d ZapDiagnostics) Verify(iter int, dxErr, dyErr, dzErr float64) {
	d.Log.Info("newton residuals",
		zap.Int("iter", iter),
		zap.Float64("dxError", dxErr),
		zap.Float64("dyError", dyErr),
		zap.Float64("dzError", dzErr))
}
