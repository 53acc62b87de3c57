// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mecable defines the common contract every mechanical object
// (Fiber, Bead, Solid, Sphere) implements, and the vertex array they all
// share, per spec.md §3 "Vertex array (of a Mecable)".
package mecable

import "github.com/cpmech/gosl/chk"

// chunkPoints is the power-of-two point-count granularity vertex arrays
// grow by, matching the teacher's utl.Alloc-style chunked growth used
// throughout gofem for node/element slices.
const chunkPoints = 8

// Points is a DIM-stranded, column-major vertex array: point i's
// coordinates occupy data[dim*i : dim*i+dim]. Capacity is rounded up to
// a chunk of chunkPoints points so that small per-step length changes
// (fiber growth) do not reallocate every step.
type Points struct {
	dim  int
	data []float64
	n    int // number of live points (n*dim <= len(data))
}

// NewPoints allocates a vertex array for `dim` spatial dimensions with
// `n` initial points, all zeroed.
func NewPoints(dim, n int) *Points {
	if dim < 1 || dim > 3 {
		chk.Panic("mecable: invalid dimension %d", dim)
	}
	p := &Points{dim: dim}
	p.Resize(n)
	return p
}

// Dim returns the spatial dimension.
func (p *Points) Dim() int { return p.dim }

// N returns the number of live points.
func (p *Points) N() int { return p.n }

// Data returns the flat backing array (length Dim()*N(), may exceed it
// in capacity).
func (p *Points) Data() []float64 { return p.data[:p.dim*p.n] }

// Point returns point i's coordinates as a slice view (not a copy).
func (p *Points) Point(i int) []float64 {
	o := i * p.dim
	return p.data[o : o+p.dim]
}

// Resize grows or shrinks the live point count, allocating a new chunk
// only when the requested size exceeds current capacity, matching
// spec.md §3's "capacity is rounded to a small power-of-two chunk".
func (p *Points) Resize(n int) {
	if n < 0 {
		chk.Panic("mecable: negative point count %d", n)
	}
	need := n * p.dim
	if need > cap(p.data) {
		newCap := chunkCeil(n) * p.dim
		nd := make([]float64, newCap)
		copy(nd, p.data)
		p.data = nd[:need]
	} else {
		p.data = p.data[:need]
	}
	p.n = n
}

func chunkCeil(n int) int {
	return ((n + chunkPoints - 1) / chunkPoints) * chunkPoints
}

// InsertAt inserts a new point at index i (shifting points i..N-1 up by
// one), used when a fiber resegments by adding a joint (spec.md §3).
func (p *Points) InsertAt(i int, coords []float64) {
	old := p.n
	p.Resize(old + 1)
	d := p.dim
	copy(p.data[(i+1)*d:(old+1)*d], p.data[i*d:old*d])
	copy(p.data[i*d:(i+1)*d], coords)
}

// RemoveAt deletes point i (shifting points i+1..N-1 down by one).
func (p *Points) RemoveAt(i int) {
	d := p.dim
	copy(p.data[i*d:(p.n-1)*d], p.data[(i+1)*d:p.n*d])
	p.Resize(p.n - 1)
}
