// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grid

import "math"

// RasterizeSegment enumerates every cell that the cylinder of radius W
// around segment [P,Q] intersects, invoking visit(cellIndex) once per
// cell. Implemented generically over the grid's dimension by sweeping
// a bounding box aligned with the segment's own axis-aligned extent
// inflated by W — the simplification spec.md §4.2 names for 3D ("a
// swept bounding box aligned with the segment") generalized down to 1D
// and 2D, since a tight oriented sweep is an optimization and the
// completeness contract (spec.md §8 item 4) only requires that no
// cell within range is skipped, never that none extra is visited.
func RasterizeSegment[T any](g *Generic[T], p, q []float64, w float64, visit func(int)) {
	dim := g.dim
	lo := make([]float64, dim)
	hi := make([]float64, dim)
	for d := 0; d < dim; d++ {
		a, b := p[d], q[d]
		if a > b {
			a, b = b, a
		}
		lo[d] = a - w
		hi[d] = b + w
	}
	visited := make(map[int]bool)
	var rec func(d int, idx []int)
	rec = func(d int, idx []int) {
		if d == dim {
			flat := 0
			stride := 1
			for k := 0; k < dim; k++ {
				flat += idx[k] * stride
				stride *= g.ncells[k]
			}
			if !visited[flat] {
				visited[flat] = true
				visit(flat)
			}
			return
		}
		iLo := g.index(d, lo[d])
		iHi := g.index(d, hi[d])
		if iLo > iHi {
			iLo, iHi = iHi, iLo
		}
		for i := iLo; i <= iHi; i++ {
			rec(d+1, append(idx, i))
		}
	}
	rec(0, make([]int, 0, dim))
}

// DistancePointSegment returns the squared orthogonal distance between
// point x and the segment [p,q], and the clamped projection parameter
// in [0,1] along the segment, matching fiber_locus.cc's
// distance-to-segment computation used by the fiber grid's tryToAttach.
func DistancePointSegment(x, p, q []float64) (distSqr, param float64) {
	dim := len(x)
	d := make([]float64, dim)
	v := make([]float64, dim)
	var vv float64
	for i := 0; i < dim; i++ {
		v[i] = q[i] - p[i]
		vv += v[i] * v[i]
	}
	if vv < 1e-300 {
		for i := 0; i < dim; i++ {
			d[i] = x[i] - p[i]
			distSqr += d[i] * d[i]
		}
		return distSqr, 0
	}
	var xv float64
	for i := 0; i < dim; i++ {
		d[i] = x[i] - p[i]
		xv += d[i] * v[i]
	}
	t := xv / vv
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	for i := 0; i < dim; i++ {
		c := p[i] + t*v[i] - x[i]
		distSqr += c * c
	}
	return distSqr, t
}

// ClosestApproachSegments finds the parameters (s,t) in [0,1]^2 that
// minimize the distance between segment [p1,q1] and segment [p2,q2],
// clipped to the unit square, matching point_grid.h's checkLL
// segment-segment closest approach.
func ClosestApproachSegments(p1, q1, p2, q2 []float64) (s, t float64) {
	dim := len(p1)
	d1 := make([]float64, dim)
	d2 := make([]float64, dim)
	r := make([]float64, dim)
	var a, e, f, c, b float64
	for i := 0; i < dim; i++ {
		d1[i] = q1[i] - p1[i]
		d2[i] = q2[i] - p2[i]
		r[i] = p1[i] - p2[i]
		a += d1[i] * d1[i]
		e += d2[i] * d2[i]
		b += d1[i] * d2[i]
		c += d1[i] * r[i]
		f += d2[i] * r[i]
	}
	const eps = 1e-300
	denom := a*e - b*b
	if denom > eps {
		s = clamp01((b*f - c*e) / denom)
	} else {
		s = 0
	}
	t = (b*s + f) / e
	if t < 0 {
		t = 0
		s = clamp01(-c / a)
	} else if t > 1 {
		t = 1
		s = clamp01((b - c) / a)
	}
	return s, t
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
