// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package meca implements the central mechanical assembler of spec.md
// §4.6: it collects every registered Mecable's degrees of freedom into
// one flat point array, lets Mecables and active Hand/Single/Couple
// links deposit stiffness and base-force contributions through a
// family of inter* primitives, then solves the implicit-Euler step by
// BiCGStab. Grounded on original_source/src/sim/meca.h (field layout,
// primitive catalogue, dynamic equation) and
// original_source/src/math/bicgstab.h (the Solver::BCGS/BCGSP
// iteration, Monitor contract).
package meca

import (
	"math"

	"github.com/nedelec/cytosim/internal/linalg"
	"github.com/nedelec/cytosim/internal/mecable"
	"github.com/nedelec/cytosim/internal/rnd"
	"github.com/nedelec/cytosim/internal/sparse"
)

// Meca assembles and solves one step's linear system. One instance is
// reused across steps; Clear resets it without freeing backing arrays,
// mirroring meca.h's own reuse-in-place discipline.
type Meca struct {
	dim  int
	objs []mecable.Mecable

	// offset[i] is the first global point index belonging to objs[i].
	offset []int
	nbPts  int

	vPTS []float64 // current positions, size dim*nbPts
	vBAS []float64 // base (constant) force term
	vRHS []float64 // right-hand side of the final linear system
	vFOR []float64 // computed forces (with Brownian component)
	vTMP []float64 // scratch
	vSOL []float64 // positions at the start of the step

	// mB is the isotropic part: coefficients apply identically to every
	// spatial axis (interLink, interLongLink, interSideLink,
	// interSlidingLink, interClamp, interCoulomb all reduce to this,
	// since their "arm"/direction vectors are frozen at assembly time —
	// see primitives.go).
	mB *sparse.Symmetric

	// mC is the non-isotropic part: genuine cross-axis coupling, needed
	// only by interPlane (projects along a fixed normal) and
	// interTorque2D (angular coupling between two direction vectors).
	mC *sparse.Symmetric
}

// New creates an assembler for a DIM-dimensional system.
func New(dim int) *Meca {
	return &Meca{dim: dim}
}

// Dim returns the spatial dimension.
func (m *Meca) Dim() int { return m.dim }

// Add registers a Mecable, assigning it a contiguous block of global
// point indices; must be called after Clear and before Prepare.
func (m *Meca) Add(ob mecable.Mecable) {
	m.objs = append(m.objs, ob)
	m.offset = append(m.offset, m.nbPts)
	m.nbPts += ob.NPoints()
}

// Clear empties the object list; the work buffers are left as they
// are until Prepare resizes them and zeros vBAS. meca.h's clear()
// step "sets vPTS from the current positions of every registered
// Mecable" happens once Add has repopulated objs, in Prepare.
func (m *Meca) Clear() {
	m.objs = m.objs[:0]
	m.offset = m.offset[:0]
	m.nbPts = 0
}

// NPoints returns the total number of points across every registered
// Mecable.
func (m *Meca) NPoints() int { return m.nbPts }

// Size returns the number of scalar degrees of freedom, DIM*NPoints().
func (m *Meca) Size() int { return m.dim * m.nbPts }

// globalIndex returns the absolute point index of local point `local`
// within object index `oi`.
func (m *Meca) globalIndex(oi, local int) int { return m.offset[oi] + local }

// Base returns the accumulated base-force component of point index ix
// on axis d (vBAS(DIM*ix+d) in meca.h's terms).
func (m *Meca) Base(ix, d int) float64 { return m.vBAS[m.dim*ix+d] }

// addBase adds to the base-force accumulator at point ix, axis d.
func (m *Meca) addBase(ix, d int, v float64) { m.vBAS[m.dim*ix+d] += v }

// Pos returns the current position of point ix.
func (m *Meca) Pos(ix int) []float64 { return m.vPTS[m.dim*ix : m.dim*ix+m.dim] }

// ForceAlong projects the most recently solved total force (vFOR: the
// linearized mB+mC+vBAS force Solve computes before applying mobility)
// on the given Mecable's local point `index` onto direction dir,
// returning a scalar reading consumers like fiber.ClassicEnd use as the
// antagonistic-force term of spec.md §4.8's force-sensitive growth
// rate. Only valid after a Solve call on the same assembly.
func (m *Meca) ForceAlong(ob mecable.Mecable, index int, dir []float64) float64 {
	oi := m.objIndexOf(ob)
	ix := m.globalIndex(oi, index)
	var f float64
	for d := 0; d < m.dim && d < len(dir); d++ {
		f += m.vFOR[m.dim*ix+d] * dir[d]
	}
	return f
}

// Prepare allocates work buffers sized to the registered points,
// copies every Mecable's current point positions into vPTS, deposits
// internal rigidity (AddRigidity), and compiles mB/mC for multiply.
// Mirrors meca.h's clear()+prepare() split collapsed into one call
// since this module has no separate "add Mecables, then later compile"
// phase distinction worth keeping separate.
func (m *Meca) Prepare() {
	n := m.Size()
	m.vPTS = grow(m.vPTS, n)
	m.vBAS = grow(m.vBAS, n)
	m.vRHS = grow(m.vRHS, n)
	m.vFOR = grow(m.vFOR, n)
	m.vTMP = grow(m.vTMP, n)
	m.vSOL = grow(m.vSOL, n)
	for i := range m.vBAS {
		m.vBAS[i] = 0
	}

	for oi, ob := range m.objs {
		pts := ob.PointsRef()
		base := m.offset[oi] * m.dim
		copy(m.vPTS[base:base+ob.NPoints()*m.dim], pts.Data())
	}
	linalg.VecCopy(m.vSOL, m.vPTS)

	m.mB = sparse.NewSymmetric(m.nbPts)
	m.mC = sparse.NewSymmetric(m.Size())

	for oi, ob := range m.objs {
		off := m.offset[oi]
		ob.AddRigidity(func(a, b int, coef float64) {
			m.mB.Put(off+a, off+b, coef)
		})
	}
}

// grow returns x resized to length n, reusing backing storage when it
// already has enough capacity (meca.h's own "allocated" high-water
// mark discipline).
func grow(x []float64, n int) []float64 {
	if cap(x) >= n {
		return x[:n]
	}
	return make([]float64, n)
}

// BrownianForcing adds the thermal-noise term
// vBAS += sqrt(2*drag/dt)*eta, eta standard Gaussian per DOF, per
// spec.md §4.6 step 4. Drag is queried per-object, local-point-indexed,
// from each Mecable directly.
func (m *Meca) BrownianForcing(dt float64, g *rnd.Gaussian) {
	for oi, ob := range m.objs {
		off := m.offset[oi]
		for p := 0; p < ob.NPoints(); p++ {
			amp := math.Sqrt(2 * ob.Drag(p) / dt)
			ix := off + p
			for d := 0; d < m.dim; d++ {
				m.addBase(ix, d, amp*g.Next())
			}
		}
	}
}
