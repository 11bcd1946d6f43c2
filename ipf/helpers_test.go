// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipf

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/conic/sparse"
)

func testSparseMatrix(t *testing.T, a *mat.Dense) *sparse.Matrix {
	t.Helper()
	m, n := a.Dims()
	var ri, ci []int
	var v []float64
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			if val := a.At(i, j); val != 0 {
				ri = append(ri, i)
				ci = append(ci, j)
				v = append(v, val)
			}
		}
	}
	s, err := sparse.New(m, n, ri, ci, v)
	require.NoError(t, err)
	return s
}

func requireSparseEqual(t *testing.T, want mat.Matrix, got *sparse.Matrix) {
	t.Helper()
	wr, wc := want.Dims()
	gr, gc := got.Dims()
	require.Equal(t, wr, gr)
	require.Equal(t, wc, gc)
	dense := mat.NewDense(gr, gc, nil)
	got.DoNonZero(func(i, j int, v float64) {
		dense.Set(i, j, dense.At(i, j)+v)
	})
	for i := 0; i < wr; i++ {
		for j := 0; j < wc; j++ {
			require.InDelta(t, want.At(i, j), dense.At(i, j), 1e-12, "entry (%d,%d)", i, j)
		}
	}
}
