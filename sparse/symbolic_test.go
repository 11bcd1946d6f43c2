// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparse

import "testing"

func identityOrdering(n int) *Ordering {
	ord := &Ordering{Perm: make([]int, n), Inv: make([]int, n)}
	for i := range ord.Perm {
		ord.Perm[i] = i
		ord.Inv[i] = i
	}
	return ord
}

func TestAnalyzeChain(t *testing.T) {
	// A tridiagonal matrix in natural order has the path as its
	// elimination tree and one below-diagonal entry per column.
	n := 20
	m := laplacian1D(t, n)
	sym := Analyze(m, identityOrdering(n))

	for k := 0; k < n-1; k++ {
		if sym.Parent[k] != k+1 {
			t.Fatalf("parent[%d] = %d, want %d", k, sym.Parent[k], k+1)
		}
	}
	if sym.Parent[n-1] != -1 {
		t.Fatalf("root parent = %d", sym.Parent[n-1])
	}
	if sym.NNZ() != n-1 {
		t.Fatalf("factor nnz = %d, want %d", sym.NNZ(), n-1)
	}
}

func TestAnalyzeArrow(t *testing.T) {
	// An arrowhead coupling every vertex to the last has a star tree and a
	// dense last column of the lower factor, all hanging off the root.
	n := 12
	var ri, ci []int
	var v []float64
	for i := 0; i < n; i++ {
		ri = append(ri, i)
		ci = append(ci, i)
		v = append(v, float64(n))
		if i < n-1 {
			ri = append(ri, i, n-1)
			ci = append(ci, n-1, i)
			v = append(v, 1, 1)
		}
	}
	m, err := New(n, n, ri, ci, v)
	if err != nil {
		t.Fatal(err)
	}
	sym := Analyze(m, identityOrdering(n))
	for k := 0; k < n-1; k++ {
		if sym.Parent[k] != n-1 {
			t.Fatalf("parent[%d] = %d, want %d", k, sym.Parent[k], n-1)
		}
	}
	if sym.NNZ() != n-1 {
		t.Fatalf("factor nnz = %d, want %d", sym.NNZ(), n-1)
	}
}
