// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipf

import (
	"errors"
	"fmt"
)

// ErrSparseSerial is returned by SolveSparse: sequential sparse-direct
// solvers are not supported, only the distributed sparse representation is.
var ErrSparseSerial = errors.New("ipf: sequential sparse-direct solvers are not supported")

// InfeasibleError reports that the iterate left the cone: some entries of x
// or z were nonpositive at the top of an iteration. It signals upstream
// misuse (a bad starting point or a corrupted direction), not a condition
// the solver can recover from.
type InfeasibleError struct {
	XNonPos, ZNonPos int
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("ipf: %d entries of x and %d entries of z were nonpositive",
		e.XNonPos, e.ZNonPos)
}

// IterLimitError reports that the iteration cap was reached before the
// convergence tolerances were met.
type IterLimitError struct {
	MaxIts int
}

func (e *IterLimitError) Error() string {
	return fmt.Sprintf("ipf: maximum number of iterations (%d) exceeded", e.MaxIts)
}

// BreakdownError reports that a direct factorization of the Newton system
// failed to produce a finite result.
type BreakdownError struct {
	System KKTSystem
	Cause  error
}

func (e *BreakdownError) Error() string {
	return fmt.Sprintf("ipf: %v factorization broke down: %v", e.System, e.Cause)
}

func (e *BreakdownError) Unwrap() error { return e.Cause }
