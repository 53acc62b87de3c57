// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package meca

import (
	"fmt"
	"math"

	"github.com/nedelec/cytosim/internal/linalg"
)

// DivergenceError is returned by Solve when BiCGStab fails to converge
// (NaN residual, zero pivot, or stagnation), per spec.md §4.6 step 6.
type DivergenceError struct {
	Flag       int
	Iterations int
	Residual   float64
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("meca: BiCGStab did not converge (flag=%d, iterations=%d, residual=%e)",
		e.Flag, e.Iterations, e.Residual)
}

// Monitor tracks BiCGStab convergence, ported from
// original_source/src/math/bicgstab.h's Solver::Monitor: infinity-norm
// residual, an iteration cap, and a 32-iteration stagnation window.
type Monitor struct {
	maxIter   int
	tolerance float64

	iter      int
	flag      int
	residual  float64
	bestResid float64
	sinceBest int
}

// NewMonitor creates a Monitor with the given iteration cap and
// convergence tolerance on the infinity-norm residual.
func NewMonitor(maxIter int, tolerance float64) *Monitor {
	return &Monitor{maxIter: maxIter, tolerance: tolerance, residual: math.Inf(1), bestResid: math.Inf(1)}
}

// Finished evaluates the residual vector r and records convergence
// state; returns true once iteration should stop (converged, diverged,
// hit the cap, or stagnated for 32 consecutive iterations without
// improvement — spec.md §4.6 step 6).
func (mon *Monitor) Finished(r []float64) bool {
	mon.residual = linalg.VecNormInf(r)
	if math.IsNaN(mon.residual) {
		mon.flag = -1
		return true
	}
	if mon.residual < mon.bestResid {
		mon.bestResid = mon.residual
		mon.sinceBest = 0
	} else {
		mon.sinceBest++
	}
	if mon.residual < mon.tolerance {
		mon.flag = 0
		return true
	}
	if mon.iter >= mon.maxIter {
		mon.flag = 1
		return true
	}
	if mon.sinceBest >= 32 {
		mon.flag = 2
		return true
	}
	return false
}

// Converged reports whether the last Finished call indicated success.
func (mon *Monitor) Converged() bool { return mon.flag == 0 }

// Iterations returns the number of completed BiCGStab iterations.
func (mon *Monitor) Iterations() int { return mon.iter }

// Residual returns the last computed infinity-norm residual.
func (mon *Monitor) Residual() float64 { return mon.residual }

// multiplyLinear computes y = (mB+mC)*x, the linear (homogeneous) part
// of the assembled forces, mirroring meca.h's addLinearForces.
func (m *Meca) multiplyLinear(x, y []float64) {
	for i := range y {
		y[i] = 0
	}
	m.mB.VecMulAddIso(x, y, m.dim)
	m.mC.VecMulAdd(x, y)
}

// applyMobility writes speed[block] = object.SetSpeedsFromForces(force[block])
// for every registered Mecable, implementing meca.h's block-wise
// projector application (mP in the header's dynamic equation) without
// ever materializing mP as a matrix, per spec.md §9 "Projection as
// operator".
func (m *Meca) applyMobility(force, speed []float64) {
	for oi, ob := range m.objs {
		lo := m.dim * m.offset[oi]
		hi := lo + m.dim*ob.NPoints()
		ob.SetSpeedsFromForces(force[lo:hi], speed[lo:hi])
	}
}

// systemMultiply implements the BiCGStab linear operator
// Y = X - dt*Mobility*(mB+mC)*X, the left-hand side of spec.md §4.6
// step 5's implicit-Euler system.
func (m *Meca) systemMultiply(dt float64, x, y []float64) {
	m.multiplyLinear(x, m.vTMP)
	m.applyMobility(m.vTMP, y)
	for i := range y {
		y[i] = x[i] - dt*y[i]
	}
}

// Solve performs the full per-step assembly-to-integration sequence of
// spec.md §4.6 steps 5-7: builds the right-hand side
// M*(vBAS + (mB+mC)*vPTS), runs (preconditioner-free) BiCGStab per
// original_source/src/math/bicgstab.h's Solver::BCGS, integrates
// x += dt*V, and calls every Mecable's Reshape. Returns the velocity
// solution and a *DivergenceError if the Monitor did not converge.
func (m *Meca) Solve(dt float64, mon *Monitor) ([]float64, error) {
	m.mB.PrepareForMultiply()
	m.mC.PrepareForMultiply()

	n := m.Size()
	// vFOR holds (mB+mC)*vPTS + vBAS, the total linearized force;
	// vRHS holds its image under the mobility/projection operator, the
	// right-hand side of the implicit system (spec.md §4.6 step 5).
	m.multiplyLinear(m.vPTS, m.vFOR)
	linalg.VecAdd(m.vFOR, 1, m.vBAS)
	m.applyMobility(m.vFOR, m.vRHS)

	v := make([]float64, n) // initial guess: zero velocity
	r := make([]float64, n)
	rtilde := make([]float64, n)
	p := make([]float64, n)
	t := make([]float64, n)
	vv := make([]float64, n)

	linalg.VecCopy(r, m.vRHS)
	m.systemMultiply(dt, v, t)
	for i := range r {
		r[i] -= t[i]
	}
	linalg.VecCopy(rtilde, r)

	rho1, rho2, alpha, omega, beta := 1.0, 1.0, 0.0, 1.0, 0.0

	for !mon.Finished(r) {
		mon.iter++
		rho2 = rho1
		rho1 = linalg.VecDot(rtilde, r)
		if rho1 == 0 {
			mon.flag = 2
			break
		}
		beta = (rho1 / rho2) * (alpha / omega)
		if beta == 0 {
			linalg.VecCopy(p, r)
		} else {
			linalg.VecAdd(p, -omega, vv)
			linalg.VecScale(p, beta)
			linalg.VecAdd(p, 1, r)
		}
		m.systemMultiply(dt, p, vv)
		denom := linalg.VecDot(rtilde, vv)
		if denom == 0 {
			mon.flag = 2
			break
		}
		alpha = rho1 / denom
		linalg.VecAdd(r, -alpha, vv)
		linalg.VecAdd(v, alpha, p)

		m.systemMultiply(dt, r, t)
		tdt := linalg.VecDot(t, t)
		if tdt == 0 {
			mon.flag = 0
			break
		}
		omega = linalg.VecDot(t, r) / tdt
		if omega == 0 {
			mon.flag = 3
			break
		}
		linalg.VecAdd(v, omega, r)
		linalg.VecAdd(r, -omega, t)
	}

	if !mon.Converged() {
		return v, &DivergenceError{Flag: mon.flag, Iterations: mon.iter, Residual: mon.residual}
	}

	for oi, ob := range m.objs {
		lo := m.dim * m.offset[oi]
		hi := lo + m.dim*ob.NPoints()
		for i := lo; i < hi; i++ {
			m.vPTS[i] += dt * v[i]
		}
		pts := ob.PointsRef()
		copy(pts.Data(), m.vPTS[lo:hi])
		ob.Reshape()
	}

	return v, nil
}
