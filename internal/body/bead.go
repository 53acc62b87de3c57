// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package body implements the point-like and rigid-cluster Mecable
// objects of spec.md §3: Bead, Solid, Sphere. Grounded on
// original_source/src/sim/solid.cc (rigid-body projector) and
// bead_set.cc / sphere_set.h (single-point and shell variants).
package body

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/nedelec/cytosim/internal/mecable"
)

// Bead is a single massive point with isotropic Stokes drag and no
// internal constraint: its projector is the identity scaled by
// mobility, matching the teacher's single-PointSet Mecable pattern
// (ele/solid's single-node elements) generalized to a 1-point cluster.
type Bead struct {
	pts    *mecable.Points
	Radius float64
	drag   float64
}

// NewBead creates a Bead of the given radius centered at pos, with drag
// set by Stokes' law muT = 6*pi*viscosity*radius (solid.cc setDragCoefficient).
func NewBead(dim int, pos []float64, radius, viscosity float64) *Bead {
	if radius <= 0 {
		chk.Panic("body: bead radius must be positive, got %v", radius)
	}
	p := mecable.NewPoints(dim, 1)
	copy(p.Point(0), pos)
	return &Bead{pts: p, Radius: radius, drag: 6 * math.Pi * viscosity * radius}
}

func (b *Bead) NPoints() int               { return 1 }
func (b *Bead) PointsRef() *mecable.Points { return b.pts }
func (b *Bead) Drag(i int) float64         { return b.drag }

// AddRigidity is a no-op: a Bead has no internal elasticity.
func (b *Bead) AddRigidity(add func(a, b int, coef float64)) {}

// SetSpeedsFromForces applies the trivial projector speed = force/drag.
func (b *Bead) SetSpeedsFromForces(force, speed []float64) {
	inv := 1 / b.drag
	for i := range force {
		speed[i] = inv * force[i]
	}
}

// Reshape is a no-op: a single point has no shape to restore.
func (b *Bead) Reshape() {}
