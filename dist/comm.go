// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dist provides the data-parallel collaborator for the distributed
// solver representations: a collective communicator over in-process worker
// ranks, plus block-row distributed vectors and matrices.
//
// Every collective is blocking and synchronous; all ranks must invoke the
// same collectives in the same order, and ordering across ranks is implicit
// in the collective semantics. There is no point-to-point messaging.
package dist

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// Comm is one rank's handle on a communicator group.
type Comm struct {
	rank int
	g    *group
}

type group struct {
	size int
	bar  barrier
	f64  []float64
	i64  []int
	fsl  [][]float64
	isl  [][]int
}

// New creates a communicator group of p ranks.
func New(p int) []*Comm {
	if p <= 0 {
		panic("dist: group size must be positive")
	}
	g := &group{
		size: p,
		f64:  make([]float64, p),
		i64:  make([]int, p),
		fsl:  make([][]float64, p),
		isl:  make([][]int, p),
	}
	g.bar.init(p)
	cs := make([]*Comm, p)
	for r := range cs {
		cs[r] = &Comm{rank: r, g: g}
	}
	return cs
}

// Run spawns fn on every rank of a fresh p-rank group and waits for all of
// them, returning the first error. It is the harness used to host a
// distributed solve in a single process.
func Run(p int, fn func(c *Comm) error) error {
	var eg errgroup.Group
	for _, c := range New(p) {
		c := c
		eg.Go(func() error { return fn(c) })
	}
	return eg.Wait()
}

// Rank returns this rank's index within the group.
func (c *Comm) Rank() int { return c.rank }

// Size returns the number of ranks in the group.
func (c *Comm) Size() int { return c.g.size }

// Barrier blocks until every rank has entered it.
func (c *Comm) Barrier() { c.g.bar.await() }

// AllSum reduces v by summation across all ranks.
func (c *Comm) AllSum(v float64) float64 {
	g := c.g
	g.f64[c.rank] = v
	g.bar.await()
	sum := 0.0
	for _, w := range g.f64 {
		sum += w
	}
	g.bar.await()
	return sum
}

// AllSumInt reduces v by summation across all ranks.
func (c *Comm) AllSumInt(v int) int {
	g := c.g
	g.i64[c.rank] = v
	g.bar.await()
	sum := 0
	for _, w := range g.i64 {
		sum += w
	}
	g.bar.await()
	return sum
}

// AllSumVec elementwise-sums equally sized vectors across ranks, overwriting
// v on every rank with the reduction.
func (c *Comm) AllSumVec(v []float64) {
	g := c.g
	g.fsl[c.rank] = v
	g.bar.await()
	tmp := make([]float64, len(v))
	for _, w := range g.fsl {
		for i, x := range w {
			tmp[i] += x
		}
	}
	g.bar.await()
	copy(v, tmp)
	g.bar.await()
}

// AllGather concatenates the per-rank blocks in rank order and returns the
// full vector on every rank, appended to dst.
func (c *Comm) AllGather(dst, block []float64) []float64 {
	g := c.g
	g.fsl[c.rank] = block
	g.bar.await()
	for _, w := range g.fsl {
		dst = append(dst, w...)
	}
	g.bar.await()
	return dst
}

// AllGatherInts concatenates the per-rank blocks in rank order.
func (c *Comm) AllGatherInts(dst, block []int) []int {
	g := c.g
	g.isl[c.rank] = block
	g.bar.await()
	for _, w := range g.isl {
		dst = append(dst, w...)
	}
	g.bar.await()
	return dst
}

// barrier is a reusable phase barrier.
type barrier struct {
	mu    sync.Mutex
	cond  *sync.Cond
	size  int
	count int
	phase uint64
}

func (b *barrier) init(size int) {
	b.size = size
	b.cond = sync.NewCond(&b.mu)
}

func (b *barrier) await() {
	b.mu.Lock()
	phase := b.phase
	b.count++
	if b.count == b.size {
		b.count = 0
		b.phase++
		b.cond.Broadcast()
	} else {
		for phase == b.phase {
			b.cond.Wait()
		}
	}
	b.mu.Unlock()
}
