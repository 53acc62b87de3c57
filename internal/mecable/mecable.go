// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mecable

// Mecable is the contract every object participating in the mechanical
// system implements: Fiber, Bead, Solid, Sphere. Meca treats a Mecable
// as an opaque supplier of DOFs, drag, internal-force deposit, and a
// projector callback — spec.md §9 "Projection as operator": the
// projector is never materialized as a dense matrix, only invoked.
type Mecable interface {
	// NPoints returns the number of points this object contributes.
	NPoints() int

	// PointsRef exposes the live vertex array (copied into Meca's vPTS
	// by Prepare, and written back by Solve).
	PointsRef() *Points

	// Drag returns the (possibly anisotropic, but here isotropic-per-point)
	// drag coefficient of point i, relating force to velocity under Stokes
	// drag (spec.md Glossary "Drag coefficient").
	Drag(i int) float64

	// AddRigidity deposits this object's internal stiffness (e.g. fiber
	// bending) into the assembler through the given callback, which
	// receives (pointIndexA, pointIndexB, coefficient) triples to add to
	// the isotropic block mB, exactly mirroring how ele/solid/elastrod.go's
	// AddToKb scatters a small local matrix into the global Triplet.
	AddRigidity(add func(a, b int, coef float64))

	// SetSpeedsFromForces applies this object's projector (identity for
	// Bead, the inextensibility projector for Fiber, the rigid-body
	// constraint projector for Solid and for Sphere, which inherits it
	// from Solid) to map a force vector into a speed
	// vector: speed = mobility * P * force. Both slices have length
	// Dim()*NPoints() and belong to this object's point range.
	SetSpeedsFromForces(force, speed []float64)

	// Reshape restores exact shape after integration: segment-length
	// correction for Fiber, rigid-body re-fit for Solid, a no-op for Bead.
	Reshape()
}
