// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparse

import (
	"testing"
)

func checkOrdering(t *testing.T, ord *Ordering, n int) {
	t.Helper()
	if len(ord.Perm) != n || len(ord.Inv) != n {
		t.Fatalf("ordering has %d/%d entries, want %d", len(ord.Perm), len(ord.Inv), n)
	}
	seen := make([]bool, n)
	for k, v := range ord.Perm {
		switch {
		case v < 0 || v >= n:
			t.Fatalf("perm[%d] = %d out of range", k, v)
		case seen[v]:
			t.Fatalf("perm repeats vertex %d", v)
		case ord.Inv[v] != k:
			t.Fatalf("inverse maps %d to %d, want %d", v, ord.Inv[v], k)
		}
		seen[v] = true
	}
}

func TestNestedDissectionSmall(t *testing.T) {
	// Below the leaf size everything lands in a single unsplit node.
	m := laplacian1D(t, 10)
	ord := NestedDissection(m)
	checkOrdering(t, ord, 10)
	if len(ord.Tree.Nodes) != 1 {
		t.Fatalf("expected a single leaf, got %d nodes", len(ord.Tree.Nodes))
	}
}

func TestNestedDissectionChain(t *testing.T) {
	n := 200
	m := laplacian1D(t, n)
	ord := NestedDissection(m)
	checkOrdering(t, ord, n)

	tree := &ord.Tree
	if len(tree.Nodes) < 3 {
		t.Fatalf("expected a split, got %d nodes", len(tree.Nodes))
	}
	// Children precede their parent and the root owns the last vertices in
	// elimination order.
	total := 0
	for i, nd := range tree.Nodes {
		total += len(nd.Verts)
		for _, kid := range nd.Kids {
			if kid >= 0 && kid >= i {
				t.Fatalf("node %d lists child %d out of order", i, kid)
			}
		}
	}
	if total != n {
		t.Fatalf("tree owns %d vertices, want %d", total, n)
	}
	root := tree.Nodes[tree.Root()]
	last := ord.Perm[n-1]
	found := false
	for _, v := range root.Verts {
		if v == last {
			found = true
		}
	}
	if !found {
		t.Fatal("last eliminated vertex is not owned by the root separator")
	}
}

func TestNestedDissectionDisconnected(t *testing.T) {
	// Two 40-vertex chains with no edges between them.
	var ri, ci []int
	var v []float64
	for b := 0; b < 2; b++ {
		off := b * 40
		for i := 0; i < 40; i++ {
			ri = append(ri, off+i)
			ci = append(ci, off+i)
			v = append(v, 2)
			if i+1 < 40 {
				ri = append(ri, off+i, off+i+1)
				ci = append(ci, off+i+1, off+i)
				v = append(v, -1, -1)
			}
		}
	}
	m, err := New(80, 80, ri, ci, v)
	if err != nil {
		t.Fatal(err)
	}
	ord := NestedDissection(m)
	checkOrdering(t, ord, 80)
}
