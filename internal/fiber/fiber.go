// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fiber implements RigidFiber, the jointed-chain filament of
// spec.md §4.5: fixed segment length, bending stiffness, and an
// inextensibility projector applied every assembly instead of carried
// as a dense matrix (spec.md §9 "Projection as operator"). Grounded on
// original_source/src/sim/fiber_locus.h (segment/tangent bookkeeping)
// and fibers/classic_fiber.cc, dynamic_fiber.cc, treadmilling_fiber.cc
// for the end-state transition functions of §4.8. The inextensibility
// projector itself follows spec.md §4.5's prose directly (a Cholesky
// factorization on the tridiagonal normal-equations system JJ^T, J
// being the Jacobian of the per-segment length constraints) since the
// filtered original_source pack did not include fiber.cc's own
// projectForces().
package fiber

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/nedelec/cytosim/internal/mecable"
	"github.com/nedelec/cytosim/internal/rnd"
)

// Fiber is a chain of N points held at fixed segment length L by the
// inextensibility projector, with bending resistance `Rigidity`.
type Fiber struct {
	pts      *mecable.Points
	drag     float64 // isotropic per-point drag (uniform along the rod, spec.md §4.5)
	Rigidity float64
	RestLen  float64 // target segment length L

	// Tip drives spec.md §4.8's dynamic-instability end states; nil for a
	// static (non-dynamic) fiber, in which case StepDynamics is a no-op.
	Tip TipDynamics

	reshapeTimer   int
	reshapeCadence int // K=8, spec.md §4.5 "Reshape"

	// scratch buffers for the projector, sized to N-1 constraints.
	tangent []float64 // flattened dim-vectors, one per segment
	diag    []float64
	off     []float64 // sub/super-diagonal of JJ^T
}

// NewFiber allocates a straight fiber of n points spaced restLen apart
// along axis 0, starting at start.
func NewFiber(dim, n int, start []float64, restLen, rigidity, drag float64) *Fiber {
	if n < 2 {
		chk.Panic("fiber: needs at least 2 points, got %d", n)
	}
	p := mecable.NewPoints(dim, n)
	for i := 0; i < n; i++ {
		pt := p.Point(i)
		copy(pt, start)
		pt[0] += float64(i) * restLen
	}
	return &Fiber{
		pts:            p,
		drag:           drag,
		Rigidity:       rigidity,
		RestLen:        restLen,
		reshapeCadence: 8,
	}
}

func (f *Fiber) NPoints() int               { return f.pts.N() }
func (f *Fiber) PointsRef() *mecable.Points { return f.pts }
func (f *Fiber) Drag(i int) float64         { return f.drag }
func (f *Fiber) Length() float64            { return float64(f.pts.N()-1) * f.RestLen }

// HasDynamics reports whether this fiber carries a dynamic-instability
// end-state model (spec.md §4.8); static fibers (Tip == nil) skip
// StepDynamics entirely.
func (f *Fiber) HasDynamics() bool { return f.Tip != nil }

// StepDynamics advances the configured end-state model by one dt, given
// the axial force read back at the plus and minus ends (negative =
// compressive, opposing growth), then resegments the chain to apply the
// resulting length change. Returns true when the fiber's Fate calls for
// destruction (spec.md §4.8 "fate" on catastrophic disassembly).
func (f *Fiber) StepDynamics(forceP, forceM float64, rng *rnd.Context) (destroy bool) {
	if f.Tip == nil {
		return false
	}
	deltaP, deltaM, destroy := f.Tip.Step(forceP, forceM, f.Length(), rng)
	f.GrowPlus(deltaP)
	f.GrowMinus(deltaM)
	return destroy
}

// GrowPlus extends (delta>0) or retracts (delta<0) the plus end by
// delta, then resegments so every boundary segment stays within
// [0.5,1.5)*RestLen, the same tolerance Reshape's staggered correction
// works toward (spec.md §4.5 "Reshape", §4.8 "Elongation").
func (f *Fiber) GrowPlus(delta float64) {
	if delta == 0 {
		return
	}
	n := f.pts.N()
	dir := f.Direction(n - 2)
	last := f.pts.Point(n - 1)
	for d := range last {
		last[d] += dir[d] * delta
	}
	f.resegmentPlus()
}

// GrowMinus extends (delta>0) or retracts (delta<0) the minus end by
// delta, symmetric to GrowPlus but at point index 0.
func (f *Fiber) GrowMinus(delta float64) {
	if delta == 0 {
		return
	}
	dir := f.Direction(0)
	first := f.pts.Point(0)
	for d := range first {
		first[d] -= dir[d] * delta
	}
	f.resegmentMinus()
}

func segLength(a, b []float64) float64 {
	var s float64
	for d := range a {
		diff := b[d] - a[d]
		s += diff * diff
	}
	return math.Sqrt(s)
}

// resegmentPlus inserts or removes the boundary point near the plus end
// until the last segment's length is back within tolerance of RestLen,
// mirroring fiber_locus.h's own "add/remove a point" growth bookkeeping.
func (f *Fiber) resegmentPlus() {
	for {
		n := f.pts.N()
		if n < 2 {
			return
		}
		a, b := f.pts.Point(n-2), f.pts.Point(n-1)
		l := segLength(a, b)
		switch {
		case l > 1.5*f.RestLen:
			mid := make([]float64, f.pts.Dim())
			for d := range mid {
				mid[d] = a[d] + (b[d]-a[d])*f.RestLen/l
			}
			f.pts.InsertAt(n-1, mid)
		case l < 0.5*f.RestLen && n > 2:
			f.pts.RemoveAt(n - 2)
		default:
			return
		}
	}
}

// resegmentMinus is resegmentPlus's mirror image at point index 0.
func (f *Fiber) resegmentMinus() {
	for {
		n := f.pts.N()
		if n < 2 {
			return
		}
		a, b := f.pts.Point(0), f.pts.Point(1)
		l := segLength(a, b)
		switch {
		case l > 1.5*f.RestLen:
			mid := make([]float64, f.pts.Dim())
			for d := range mid {
				mid[d] = a[d] + (b[d]-a[d])*f.RestLen/l
			}
			f.pts.InsertAt(1, mid)
		case l < 0.5*f.RestLen && n > 2:
			f.pts.RemoveAt(1)
		default:
			return
		}
	}
}

// AbscissaM returns the minus-end arc-length coordinate, always 0: this
// package anchors abscissa at point index 0 rather than tracking a
// separately-growing minus-end offset.
func (f *Fiber) AbscissaM() float64 { return 0 }

// AbscissaP returns the plus-end arc-length coordinate, equal to Length().
func (f *Fiber) AbscissaP() float64 { return f.Length() }

// AbscissaOf converts a (segment index, param-along-segment) pair —
// fibergrid.Candidate's own coordinates — into an arc-length
// abscissa, the inverse of PointAtAbscissa.
func (f *Fiber) AbscissaOf(index int, param float64) float64 {
	return (float64(index) + param) * f.RestLen
}

// Within reports whether abscissa a falls within this fiber's current
// range, mirroring fiber_binder.cc's checkFiberRange bounds test.
func (f *Fiber) Within(a float64) bool {
	return a >= f.AbscissaM()-1e-9 && a <= f.AbscissaP()+1e-9
}

// PointAtAbscissa converts an arc-length coordinate into the (point
// index, interpolation coefficient) pair meca.Meca.Interpolated needs,
// following directly from this package's fixed-RestLen segment spacing
// (fiber.h's own interpolate() was not present in the filtered original
// source; fiber_binder.cc's call site `f->interpolate(a)` is the only
// grounding available for this operation's existence).
func (f *Fiber) PointAtAbscissa(a float64) (index int, coef float64) {
	n := f.pts.N()
	maxIdx := n - 2
	if a <= 0 {
		return 0, 0
	}
	idx := int(a / f.RestLen)
	if idx >= maxIdx {
		return maxIdx, 1
	}
	rem := a - float64(idx)*f.RestLen
	return idx, rem / f.RestLen
}

// PosAtAbscissa returns the world position at arc-length a.
func (f *Fiber) PosAtAbscissa(a float64) []float64 {
	idx, coef := f.PointAtAbscissa(a)
	p, q := f.pts.Point(idx), f.pts.Point(idx+1)
	out := make([]float64, f.pts.Dim())
	for d := range out {
		out[d] = (1-coef)*p[d] + coef*q[d]
	}
	return out
}

// Direction returns the unit tangent vector of segment `index` (from
// point index toward index+1).
func (f *Fiber) Direction(index int) []float64 {
	p, q := f.pts.Point(index), f.pts.Point(index+1)
	dim := f.pts.Dim()
	out := make([]float64, dim)
	var norm float64
	for d := 0; d < dim; d++ {
		out[d] = q[d] - p[d]
		norm += out[d] * out[d]
	}
	norm = math.Sqrt(norm)
	if norm < 1e-12 {
		return out
	}
	for d := range out {
		out[d] /= norm
	}
	return out
}

// AddRigidity deposits the pentadiagonal bending block: each interior
// joint penalizes ||x_{i-1} - 2x_i + x_{i+1}||^2 weighted by
// rigidity/L^3 (spec.md §4.5 "Bending"), as five-point stencil
// coefficients (2nd-difference operator squared) added once per axis
// via the generic `add(a,b,coef)` callback, matching the DIM-repeated
// deposit pattern of ele/solid/elastrod.go's AddToKb.
func (f *Fiber) AddRigidity(add func(a, b int, coef float64)) {
	n := f.pts.N()
	if n < 3 || f.Rigidity == 0 {
		return
	}
	// D^2 (second-difference) operator has stencil [1,-2,1] per interior
	// row; the bending energy is k/2 * ||D2 x||^2, whose Hessian is
	// k * D2^T D2, a pentadiagonal matrix. We add it entry by entry,
	// negated like the attracting inter* primitives of internal/meca, so
	// the deposited force -k * D2^T D2 * x straightens the chain.
	k := -f.Rigidity / (f.RestLen * f.RestLen * f.RestLen)
	for i := 1; i < n-1; i++ {
		add(i-1, i-1, k*1)
		add(i, i, k*4)
		add(i+1, i+1, k*1)
		add(i-1, i, k*-2)
		add(i, i+1, k*-2)
		add(i-1, i+1, k*1)
	}
}

// updateTangents recomputes the segment tangent vectors and the
// tridiagonal JJ^T system from the current point positions, the first
// step of Solve's Cholesky-on-normal-equations factorization.
func (f *Fiber) updateTangents() {
	dim := f.pts.Dim()
	n := f.pts.N()
	m := n - 1 // number of constraints/segments
	if cap(f.tangent) < m*dim {
		f.tangent = make([]float64, m*dim)
	}
	f.tangent = f.tangent[:m*dim]
	for i := 0; i < m; i++ {
		a, b := f.pts.Point(i), f.pts.Point(i+1)
		for d := 0; d < dim; d++ {
			f.tangent[i*dim+d] = b[d] - a[d]
		}
	}
	if cap(f.diag) < m {
		f.diag = make([]float64, m)
		f.off = make([]float64, m)
	}
	f.diag = f.diag[:m]
	f.off = f.off[:m]
	for i := 0; i < m; i++ {
		ti := f.tangent[i*dim : i*dim+dim]
		f.diag[i] = 8 * dotv(ti, ti)
		if i+1 < m {
			tj := f.tangent[(i+1)*dim : (i+1)*dim+dim]
			f.off[i] = -4 * dotv(ti, tj)
		} else {
			f.off[i] = 0
		}
	}
}

func dotv(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// Project applies P = I - J^T(JJ^T)^-1 J to the force vector `in`,
// writing the tangential (inextensibility-consistent) part to `out`.
// Both slices are length dim*N for this fiber's own point range.
func (f *Fiber) Project(in, out []float64) {
	dim := f.pts.Dim()
	n := f.pts.N()
	m := n - 1
	copy(out, in)
	if m == 0 {
		return
	}
	f.updateTangents()

	jx := make([]float64, m)
	for i := 0; i < m; i++ {
		ti := f.tangent[i*dim : i*dim+dim]
		var s float64
		for d := 0; d < dim; d++ {
			s += ti[d] * (in[(i+1)*dim+d] - in[i*dim+d])
		}
		jx[i] = 2 * s
	}

	lambda := solveTridiagSym(f.diag, f.off, jx)

	for i := 0; i < m; i++ {
		ti := f.tangent[i*dim : i*dim+dim]
		l := lambda[i]
		for d := 0; d < dim; d++ {
			out[i*dim+d] -= -2 * ti[d] * l
			out[(i+1)*dim+d] -= 2 * ti[d] * l
		}
	}
}

// solveTridiagSym solves a symmetric tridiagonal system (diag, off)
// with the Thomas algorithm — equivalent in spirit to a Cholesky
// factorization of the normal-equations matrix JJ^T, specialized to
// its banded structure (spec.md §4.5).
func solveTridiagSym(diag, off, rhs []float64) []float64 {
	n := len(diag)
	if n == 0 {
		return nil
	}
	cp := make([]float64, n)
	dp := make([]float64, n)
	cp[0] = off[0] / diag[0]
	dp[0] = rhs[0] / diag[0]
	for i := 1; i < n; i++ {
		denom := diag[i] - off[i-1]*cp[i-1]
		if math.Abs(denom) < 1e-300 {
			chk.Panic("fiber: singular inextensibility system at segment %d", i)
		}
		if i < n-1 {
			cp[i] = off[i] / denom
		}
		dp[i] = (rhs[i] - off[i-1]*dp[i-1]) / denom
	}
	x := make([]float64, n)
	x[n-1] = dp[n-1]
	for i := n - 2; i >= 0; i-- {
		x[i] = dp[i] - cp[i]*x[i+1]
	}
	return x
}

// SetSpeedsFromForces applies speed = drag^-1 * P * force, the
// Mecable.Mecable contract (spec.md §9).
func (f *Fiber) SetSpeedsFromForces(force, speed []float64) {
	f.Project(force, speed)
	inv := 1 / f.drag
	for i := range speed {
		speed[i] *= inv
	}
}

// Reshape restores every segment to RestLen once every reshapeCadence
// calls (other calls do nothing), by repeating local pairwise rescale
// passes until the largest length error falls below 1e-12*RestLen,
// mirroring solid.cc's staggered reshape schedule and spec.md §4.5's
// "every K steps (K=8 cycling per object)".
func (f *Fiber) Reshape() {
	f.reshapeTimer++
	if f.reshapeTimer < f.reshapeCadence {
		return
	}
	f.reshapeTimer = 0
	dim := f.pts.Dim()
	n := f.pts.N()
	for pass := 0; pass < 100; pass++ {
		worst := 0.0
		for i := 0; i < n-1; i++ {
			a, b := f.pts.Point(i), f.pts.Point(i+1)
			d := make([]float64, dim)
			var norm float64
			for k := 0; k < dim; k++ {
				d[k] = b[k] - a[k]
				norm += d[k] * d[k]
			}
			norm = math.Sqrt(norm)
			if norm < 1e-12 {
				continue
			}
			worst = math.Max(worst, math.Abs(f.RestLen-norm))
			correction := (f.RestLen - norm) / norm * 0.5
			for k := 0; k < dim; k++ {
				shift := d[k] * correction
				a[k] -= shift
				b[k] += shift
			}
		}
		if worst <= 1e-12*f.RestLen {
			break
		}
	}
}

var _ mecable.Mecable = (*Fiber)(nil)
