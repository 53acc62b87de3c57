// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fibergrid implements the divide-and-conquer attachment grid
// of spec.md §4.3: paint every fiber segment once per step, then
// answer "what is within max_range of X" in (amortized) constant time.
// Grounded on original_source/src/sim/fiber_grid.h/.cc; built on top of
// internal/grid's shared uniform-grid machinery.
package fibergrid

import (
	"math"

	"github.com/nedelec/cytosim/internal/grid"
	"github.com/nedelec/cytosim/internal/rnd"
)

// Segment identifies one rod segment of one fiber: points
// Index and Index+1 of fiber FiberID, matching FiberLocus's
// (fiber, point-index) identity.
type Segment struct {
	FiberID int
	Index   int // index of the segment's first point
}

type cell struct {
	segs []Segment
}

// Grid is the fiber-attachment grid; Cell T = cell (a slice of
// Segment), shared machinery from internal/grid.Generic.
type Grid struct {
	g        *grid.Generic[cell]
	gridRange float64
}

// NewGrid creates a grid covering [inf,sup] with cells no larger than
// maxStep, mirroring FiberGrid::setGrid.
func NewGrid(inf, sup []float64, periodic []bool, maxStep float64) *Grid {
	return &Grid{
		g: grid.NewGeneric(inf, sup, periodic, maxStep, func() cell { return cell{} }),
	}
}

// Clear empties every cell's segment list, reusing backing arrays
// (FiberGrid::clear()).
func (fg *Grid) Clear() {
	fg.g.Clear(func(c *cell) { c.segs = c.segs[:0] })
}

// SegmentPositions supplies the two endpoint coordinates of a segment;
// implemented by the fiber package's point accessor in practice.
type SegmentPositions func(s Segment) (p, q []float64)

// Paint registers every segment of every fiber in `segments` into
// every grid cell its max_range-inflated bounding box intersects,
// mirroring FiberGrid::paintGrid's rasterization pass.
func (fg *Grid) Paint(segments []Segment, pos SegmentPositions, maxRange float64) {
	fg.gridRange = maxRange
	for _, s := range segments {
		p, q := pos(s)
		grid.RasterizeSegment(fg.g, p, q, maxRange, func(cellIdx int) {
			c := fg.g.CellAt(cellIdx)
			c.segs = append(c.segs, s)
		})
	}
}

// Candidate is one segment found within range, annotated with the
// precise (squared distance, parameter along segment) the caller needs
// to evaluate a Hand's binding probability.
type Candidate struct {
	Segment
	DistSqr float64
	Param   float64
}

// NearbySegments returns every segment within D of point x, each once
// even when it is painted in several scanned cells, in a
// shuffled order (spec.md §4.3: "shuffling ensures unbiased selection
// when more than one segment competes"), mirroring
// FiberGrid::nearbySegments + tryToAttach's randomized scan order.
func (fg *Grid) NearbySegments(x []float64, d float64, pos SegmentPositions, rng *rnd.MT19937, exclude func(Segment) bool) []Candidate {
	if !fg.g.HasCells() {
		return nil
	}
	base := fg.g.CellIndex(x)
	radiusCells := 1
	minCell := math.Inf(1)
	for _, w := range fg.g.CellSize() {
		if w < minCell {
			minCell = w
		}
	}
	if minCell > 0 && d > minCell {
		radiusCells = int(d/minCell) + 1
	}
	offsets := fg.g.NeighborOffsets(radiusCells, false)

	var out []Candidate
	seen := make(map[Segment]bool)
	dd := d * d
	for _, off := range offsets {
		idx := fg.g.OffsetIndex(base, off)
		if idx < 0 {
			continue
		}
		c := fg.g.CellAt(idx)
		for _, s := range c.segs {
			if seen[s] {
				continue
			}
			seen[s] = true
			if exclude != nil && exclude(s) {
				continue
			}
			p, q := pos(s)
			distSqr, param := grid.DistancePointSegment(x, p, q)
			if distSqr <= dd {
				out = append(out, Candidate{Segment: s, DistSqr: distSqr, Param: param})
			}
		}
	}
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// HasGrid reports whether setGrid-equivalent initialization occurred.
func (fg *Grid) HasGrid() bool { return fg.g.HasCells() }
