// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stericgrid implements the pairwise-contact grid of spec.md
// §4.4: point-point, point-segment, and segment-segment contact tests,
// scanned once per step over a cell and its neighbour half-shell,
// upper-triangular within a cell. Grounded on
// original_source/src/sim/point_grid.h (FatPoint/FatLocus, the steric
// object wrappers carrying an equilibrium radius and interaction range).
package stericgrid

import (
	"github.com/nedelec/cytosim/internal/grid"
)

// Kind distinguishes the two steric primitive shapes point_grid.h
// tracks: a FatPoint (bead/sphere vertex) or a FatLocus (fiber segment).
type Kind int

const (
	KindPoint Kind = iota
	KindSegment
)

// Object is one steric entity: either a point (Q unused) or a segment
// [P,Q], each carrying an equilibrium Radius (force-free distance) and
// interaction Range (cutoff), per FatPoint/FatLocus.
type Object struct {
	ID     int
	Kind   Kind
	P, Q   []float64 // Q is nil/unused for KindPoint
	Radius float64
	Range  float64
}

type cell struct {
	objs []int // indices into the Grid's object slice
}

// Grid is the steric-contact grid.
type Grid struct {
	g    *grid.Generic[cell]
	objs []Object
}

// NewGrid creates a grid with cell side at least the largest
// interaction diameter, per spec.md §4.4.
func NewGrid(inf, sup []float64, periodic []bool, minCellStep float64) *Grid {
	return &Grid{g: grid.NewGeneric(inf, sup, periodic, minCellStep, func() cell { return cell{} })}
}

// At returns the registered Object at index i, e.g. to recover its
// Radius when turning a Contact into a Meca push distance.
func (sg *Grid) At(i int) Object { return sg.objs[i] }

// Clear empties every cell and drops the registered object list.
func (sg *Grid) Clear() {
	sg.g.Clear(func(c *cell) { c.objs = c.objs[:0] })
	sg.objs = sg.objs[:0]
}

// Add registers one steric object, painting it into every cell its
// inflated footprint touches (a single cell for a point, a rasterized
// range for a segment).
func (sg *Grid) Add(o Object) {
	id := len(sg.objs)
	o.ID = id
	sg.objs = append(sg.objs, o)
	switch o.Kind {
	case KindPoint:
		idx := sg.g.CellIndex(o.P)
		c := sg.g.CellAt(idx)
		c.objs = append(c.objs, id)
	case KindSegment:
		grid.RasterizeSegment(sg.g, o.P, o.Q, o.Range, func(cellIdx int) {
			c := sg.g.CellAt(cellIdx)
			c.objs = append(c.objs, id)
		})
	}
}

// Contact is a detected pair within max(r1+r2, pushRange), ready to be
// fed to Meca as a linearized spring (spec.md §4.4): interCoulomb-style
// push when DistSqr < (r1+r2)^2, interLink-style pull otherwise.
type Contact struct {
	A, B    int
	DistSqr float64
	ParamA  float64 // segment parameter in [0,1], 0 for a point
	ParamB  float64
}

// FindContacts scans every occupied cell against its neighbour
// half-shell (spec.md §4.4's "exactly once" discipline, via
// grid.NeighborOffsets(_, halfOnly=true)), testing every object pair
// whose canonical cell ordering places them together, and returns
// every pair within pushRange of each other or within the sum of their
// equilibrium radii.
func (sg *Grid) FindContacts(pushRange float64) []Contact {
	if !sg.g.HasCells() {
		return nil
	}
	n := sg.g.NCells()
	offsets := sg.g.NeighborOffsets(1, true)
	seen := make(map[[2]int]bool)
	var out []Contact
	for base := 0; base < n; base++ {
		baseCell := sg.g.CellAt(base)
		for _, off := range offsets {
			other := sg.g.OffsetIndex(base, off)
			if other < 0 {
				continue
			}
			sg.scanPair(baseCell.objs, sg.g.CellAt(other).objs, base == other, pushRange, seen, &out)
		}
	}
	return out
}

func (sg *Grid) scanPair(listA, listB []int, sameCell bool, pushRange float64, seen map[[2]int]bool, out *[]Contact) {
	for ia, a := range listA {
		startB := 0
		if sameCell {
			startB = ia + 1
		}
		for ib := startB; ib < len(listB); ib++ {
			b := listB[ib]
			if a == b {
				continue
			}
			key := [2]int{a, b}
			if a > b {
				key = [2]int{b, a}
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			if c, ok := sg.test(a, b, pushRange); ok {
				*out = append(*out, c)
			}
		}
	}
}

func (sg *Grid) test(ai, bi int, pushRange float64) (Contact, bool) {
	oa, ob := sg.objs[ai], sg.objs[bi]
	maxDist := oa.Radius + ob.Radius
	if pushRange > maxDist {
		maxDist = pushRange
	}
	switch {
	case oa.Kind == KindPoint && ob.Kind == KindPoint:
		d2 := distSqr(oa.P, ob.P)
		if d2 <= maxDist*maxDist {
			return Contact{A: ai, B: bi, DistSqr: d2}, true
		}
	case oa.Kind == KindPoint && ob.Kind == KindSegment:
		d2, t := grid.DistancePointSegment(oa.P, ob.P, ob.Q)
		if d2 <= maxDist*maxDist {
			return Contact{A: ai, B: bi, DistSqr: d2, ParamB: t}, true
		}
	case oa.Kind == KindSegment && ob.Kind == KindPoint:
		d2, t := grid.DistancePointSegment(ob.P, oa.P, oa.Q)
		if d2 <= maxDist*maxDist {
			return Contact{A: ai, B: bi, DistSqr: d2, ParamA: t}, true
		}
	default: // segment-segment: closest approach on two lines, clipped to [0,1]
		s, t := grid.ClosestApproachSegments(oa.P, oa.Q, ob.P, ob.Q)
		pa := lerp(oa.P, oa.Q, s)
		pb := lerp(ob.P, ob.Q, t)
		d2 := distSqr(pa, pb)
		if d2 <= maxDist*maxDist {
			return Contact{A: ai, B: bi, DistSqr: d2, ParamA: s, ParamB: t}, true
		}
	}
	return Contact{}, false
}

func distSqr(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func lerp(p, q []float64, t float64) []float64 {
	out := make([]float64, len(p))
	for i := range p {
		out[i] = p[i] + t*(q[i]-p[i])
	}
	return out
}
