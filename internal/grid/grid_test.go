// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grid

import (
	"math"
	"testing"
)

type intList struct{ vals []int }

func TestRasterizeSegmentCompleteness(t *testing.T) {
	g := NewGeneric[intList]([]float64{0, 0}, []float64{10, 10}, []bool{false, false}, 1.0,
		func() intList { return intList{} })

	const w = 0.5
	p := []float64{1.2, 1.2}
	q := []float64{5.7, 2.3}
	visited := map[int]bool{}
	RasterizeSegment(g, p, q, w, func(idx int) { visited[idx] = true })

	// brute-force: every cell center within w of the segment must be visited
	for cy := 0; cy < g.ncells[1]; cy++ {
		for cx := 0; cx < g.ncells[0]; cx++ {
			center := []float64{
				g.inf[0] + (float64(cx)+0.5)*g.cellw[0],
				g.inf[1] + (float64(cy)+0.5)*g.cellw[1],
			}
			d2, _ := DistancePointSegment(center, p, q)
			// a conservative margin: a cell whose center is within w minus
			// half the cell diagonal must certainly be swept
			margin := math.Hypot(g.cellw[0], g.cellw[1]) / 2
			if math.Sqrt(d2) < w-margin {
				flat := cy*g.ncells[0] + cx
				if !visited[flat] {
					t.Fatalf("cell (%d,%d) within range was not visited", cx, cy)
				}
			}
		}
	}
}

func TestDistancePointSegmentClampsParam(t *testing.T) {
	p := []float64{0, 0}
	q := []float64{1, 0}
	d2, param := DistancePointSegment([]float64{2, 0}, p, q)
	if param != 1 {
		t.Fatalf("expected clamped param 1, got %v", param)
	}
	if math.Abs(d2-1) > 1e-12 {
		t.Fatalf("expected distance^2 1, got %v", d2)
	}
}

func TestClosestApproachParallelSegments(t *testing.T) {
	s, tt := ClosestApproachSegments(
		[]float64{0, 0}, []float64{1, 0},
		[]float64{0, 1}, []float64{1, 1},
	)
	if s < 0 || s > 1 || tt < 0 || tt > 1 {
		t.Fatalf("params must stay within [0,1], got s=%v t=%v", s, tt)
	}
}

func TestNeighborOffsetsHalfShellCount2D(t *testing.T) {
	g := NewGeneric[intList]([]float64{0, 0}, []float64{3, 3}, []bool{false, false}, 1.0,
		func() intList { return intList{} })
	offs := g.NeighborOffsets(1, true)
	// half shell of a Moore neighborhood (3x3=9) keeps the self cell plus
	// half of the remaining 8, i.e. 5 entries
	if len(offs) != 5 {
		t.Fatalf("expected 5 half-shell offsets, got %d: %v", len(offs), offs)
	}
}

func TestCellIndexPeriodicWraps(t *testing.T) {
	g := NewGeneric[intList]([]float64{0}, []float64{10}, []bool{true}, 2.0,
		func() intList { return intList{} })
	i1 := g.CellIndex([]float64{-0.5})
	i2 := g.CellIndex([]float64{9.5})
	if i1 != i2 {
		t.Fatalf("periodic wrap should alias -0.5 and 9.5 to the same cell, got %d vs %d", i1, i2)
	}
}
