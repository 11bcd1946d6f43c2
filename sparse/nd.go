// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparse

// SepNode is one vertex separator in the dissection tree. Leaves carry the
// vertices ordered without further splitting and have no children.
type SepNode struct {
	Verts []int  // original vertex indices owned by this node
	Kids  [2]int // child node indices, -1 for leaves
}

// SepTree is the separator tree produced by nested dissection. Nodes are
// stored in elimination order: both children of a node always precede it,
// and the root is the last node.
type SepTree struct {
	Nodes []SepNode
}

// Root returns the index of the root separator.
func (t *SepTree) Root() int { return len(t.Nodes) - 1 }

// Ordering is a fill-reducing symmetric permutation together with the
// separator tree it was derived from. Perm[k] is the original index of the
// k-th eliminated vertex and Inv is its inverse map.
type Ordering struct {
	Perm []int
	Inv  []int
	Tree SepTree
}

const ndLeafSize = 32

// NestedDissection computes a nested-dissection ordering of the sparsity
// graph of the square matrix m. The graph is split recursively by a vertex
// separator found on a breadth-first level structure; both halves are
// ordered before the separator, which bounds fill-in during the subsequent
// 𝐋𝐃𝐋ᵀ factorization to the separator boundaries.
func NestedDissection(m *Matrix) *Ordering {
	r, c := m.Dims()
	if r != c {
		panic("sparse: nested dissection requires a square matrix")
	}
	nd := &dissector{
		m:     m,
		stamp: make([]int, r),
		level: make([]int, r),
		queue: make([]int, 0, r),
		ord:   &Ordering{Perm: make([]int, 0, r), Inv: make([]int, r)},
	}
	for i := range nd.stamp {
		nd.stamp[i] = -1
	}
	all := make([]int, r)
	for i := range all {
		all[i] = i
	}
	nd.dissect(all)
	for k, v := range nd.ord.Perm {
		nd.ord.Inv[v] = k
	}
	return nd.ord
}

type dissector struct {
	m     *Matrix
	stamp []int // membership generation marks
	level []int // BFS levels, valid for vertices of the current generation
	queue []int
	gen   int
	ord   *Ordering
}

// dissect orders the vertex set and returns the index of its tree node.
func (nd *dissector) dissect(verts []int) int {
	if len(verts) <= ndLeafSize {
		return nd.leaf(verts)
	}

	left, right := nd.bisect(verts)
	if len(left) == 0 || len(right) == 0 {
		// Level structure too flat to split, e.g. a near-clique.
		return nd.leaf(verts)
	}

	// Vertices of the right half adjacent to the left half form the
	// separator; removing them disconnects the two halves.
	nd.gen++
	for _, v := range left {
		nd.stamp[v] = nd.gen
	}
	var sep []int
	keep := right[:0]
	for _, v := range right {
		boundary := false
		for p := nd.m.ptr[v]; p < nd.m.ptr[v+1]; p++ {
			if w := nd.m.ind[p]; w != v && nd.stamp[w] == nd.gen {
				boundary = true
				break
			}
		}
		if boundary {
			sep = append(sep, v)
		} else {
			keep = append(keep, v)
		}
	}
	right = keep
	if len(right) == 0 {
		return nd.leaf(verts)
	}

	k0 := nd.dissect(left)
	k1 := nd.dissect(right)
	nd.ord.Perm = append(nd.ord.Perm, sep...)
	nd.ord.Tree.Nodes = append(nd.ord.Tree.Nodes, SepNode{Verts: sep, Kids: [2]int{k0, k1}})
	return len(nd.ord.Tree.Nodes) - 1
}

func (nd *dissector) leaf(verts []int) int {
	nd.ord.Perm = append(nd.ord.Perm, verts...)
	nd.ord.Tree.Nodes = append(nd.ord.Tree.Nodes, SepNode{Verts: verts, Kids: [2]int{-1, -1}})
	return len(nd.ord.Tree.Nodes) - 1
}

// bisect splits verts into two halves along a BFS level structure grown from
// a pseudo-peripheral vertex. A disconnected subgraph splits into the first
// reached component and the remainder.
func (nd *dissector) bisect(verts []int) (left, right []int) {
	reached := nd.bfs(verts, verts[0])
	if len(reached) < len(verts) {
		nd.gen++
		for _, v := range reached {
			nd.stamp[v] = nd.gen
		}
		for _, v := range verts {
			if nd.stamp[v] != nd.gen {
				right = append(right, v)
			}
		}
		return reached, right
	}

	// Restart from the deepest vertex to stretch the level structure.
	reached = nd.bfs(verts, reached[len(reached)-1])
	half := len(reached) / 2
	left = append(left, reached[:half]...)
	right = append(right, reached[half:]...)
	return left, right
}

// bfs traverses the subgraph induced by verts from start, recording levels,
// and returns the reached vertices in visit order.
func (nd *dissector) bfs(verts []int, start int) []int {
	nd.gen++
	member := nd.gen
	for _, v := range verts {
		nd.stamp[v] = member
	}
	nd.gen++
	seen := nd.gen

	nd.queue = nd.queue[:0]
	nd.queue = append(nd.queue, start)
	nd.stamp[start] = seen
	nd.level[start] = 0
	for head := 0; head < len(nd.queue); head++ {
		v := nd.queue[head]
		for p := nd.m.ptr[v]; p < nd.m.ptr[v+1]; p++ {
			w := nd.m.ind[p]
			if w == v || nd.stamp[w] != member {
				continue
			}
			nd.stamp[w] = seen
			nd.level[w] = nd.level[v] + 1
			nd.queue = append(nd.queue, w)
		}
	}
	out := make([]int, len(nd.queue))
	copy(out, nd.queue)
	return out
}
