// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hand implements the Hand binding unit of spec.md §4.7: the
// per-fiber attachment point a Single or Couple arm mediates through.
// No hand.h/hand.cc file exists in the retrieved original_source pack
// (an exhaustive search of the example tree turned up none), so this
// package is grounded on spec.md §4.3/§4.7's prose plus the call-site
// contract visible in original_source/src/sim/couple.cc,
// singles/picket.cc and singles/wrist.cc (stepFree, stepUnloaded,
// stepLoaded, attach, attached, pos, fiber, dirFiber, abscissa,
// interpolation) and fiber_binder.cc's abscissa/attach/detach
// bookkeeping, rather than ported line-by-line from a teacher file.
package hand

import (
	"math"

	"github.com/nedelec/cytosim/internal/fiber"
	"github.com/nedelec/cytosim/internal/meca"
	"github.com/nedelec/cytosim/internal/rnd"
)

// MotorModel selects whether a Hand advances along its fiber once
// bound. NonMotor hands (most crosslinkers) stay at their bound
// abscissa until detachment.
type MotorModel int

const (
	NonMotor MotorModel = iota
	LinearMotor
)

// Prop holds one Hand class's rate constants, grounded on spec.md
// §4.3 (binding_rate, binding_range) and §4.7 (unbinding_rate,
// unbinding_force, the Kramers form's force scale). UnloadedSpeed and
// StallForce parametrize LinearMotor's force-velocity law
// speed = UnloadedSpeed*(1 - axialForce/StallForce), the standard
// Hill-type linear relation; since no hand_prop.h survived into the
// filtered original_source, this exact functional form is a design
// decision recorded in DESIGN.md rather than a transcribed constant.
type Prop struct {
	BindingRate    float64
	BindingRange   float64
	UnbindingRate  float64
	UnbindingForce float64 // +Inf disables force-accelerated detachment

	Motor         MotorModel
	UnloadedSpeed float64 // signed: positive moves toward the plus end
	StallForce    float64 // 0 disables load-dependence (constant speed)
}

// MaxRange returns the binding radius fibergrid.Paint must inflate
// segments by so this Hand's attachment queries stay complete
// (spec.md §4.3).
func (p *Prop) MaxRange() float64 { return p.BindingRange }

// Hand is one binding unit: unattached until Attach is called, after
// which it tracks a fiber and an arc-length coordinate along it.
type Hand struct {
	prop *Prop

	fib      *fiber.Fiber
	fiberID  int
	abscissa float64
}

// New creates an unattached Hand of the given class.
func New(prop *Prop) *Hand {
	return &Hand{prop: prop}
}

// Prop returns this Hand's class.
func (h *Hand) Prop() *Prop { return h.prop }

// Attached reports whether this Hand currently binds a fiber.
func (h *Hand) Attached() bool { return h.fib != nil }

// Fiber returns the bound fiber, or nil if unattached.
func (h *Hand) Fiber() *fiber.Fiber { return h.fib }

// FiberID returns the identity of the bound fiber as seen by the
// fiber grid (fibergrid.Segment.FiberID), or -1 if unattached.
func (h *Hand) FiberID() int {
	if h.fib == nil {
		return -1
	}
	return h.fiberID
}

// Abscissa returns the arc-length coordinate of the binding site.
func (h *Hand) Abscissa() float64 { return h.abscissa }

// Pos returns the world position of the binding site; panics if
// unattached (callers must check Attached first, per the teacher's
// own assert_true(fbFiber) discipline in fiber_binder.cc).
func (h *Hand) Pos() []float64 { return h.fib.PosAtAbscissa(h.abscissa) }

// DirFiber returns the unit tangent of the fiber at the binding site.
func (h *Hand) DirFiber() []float64 {
	idx, _ := h.fib.PointAtAbscissa(h.abscissa)
	return h.fib.Direction(idx)
}

// Interpolation resolves this Hand's binding site to a
// meca.PointInterpolated against the already-registered fiber
// Mecable, for use with the meca inter* primitives (couple.cc's
// `cHand->interpolation()` passed straight into meca.interLink).
func (h *Hand) Interpolation(m *meca.Meca) meca.PointInterpolated {
	idx, coef := h.fib.PointAtAbscissa(h.abscissa)
	return m.Interpolated(h.fib, idx, coef)
}

// Attach binds this Hand to f (identified externally by fiberID, the
// fibergrid.Segment.FiberID the caller resolved it from) at the given
// arc-length coordinate, clamped to the fiber's current range.
func (h *Hand) Attach(fiberID int, f *fiber.Fiber, abscissa float64) {
	h.fiberID = fiberID
	h.fib = f
	h.abscissa = clampAbscissa(f, abscissa)
}

// Detach unbinds this Hand.
func (h *Hand) Detach() {
	h.fib = nil
	h.fiberID = 0
}

func clampAbscissa(f *fiber.Fiber, a float64) float64 {
	if a < f.AbscissaM() {
		return f.AbscissaM()
	}
	if a > f.AbscissaP() {
		return f.AbscissaP()
	}
	return a
}

// TryAttach evaluates spec.md §4.3's binding acceptance test — "final
// binding with probability binding_rate·dt" — for a single already
// range-filtered candidate site, and attaches on success. Callers
// (internal/single, internal/couple) are responsible for the fiber
// grid query and any class-specific specificity/stiffness veto before
// calling this.
func (h *Hand) TryAttach(rng *rnd.Context, dt float64, fiberID int, f *fiber.Fiber, abscissa float64) bool {
	if h.Attached() {
		return false
	}
	if !rng.FiresWithin(h.prop.BindingRate, dt) {
		return false
	}
	h.Attach(fiberID, f, abscissa)
	return true
}

// StepUnloaded advances a bound Hand by one step in the absence of any
// mechanical load: LinearMotor hands move at their unloaded speed, and
// spontaneous (force-free) detachment is evaluated at the base
// unbinding_rate. Grounded on the stepUnloaded call sites in
// couple.cc's stepAF/stepFA (the still-free-diffusing hand of a
// half-bound Couple steps via stepFree, its bound partner via
// stepUnloaded).
func (h *Hand) StepUnloaded(rng *rnd.Context, dt float64) {
	if !h.Attached() {
		return
	}
	if rng.FiresWithin(h.prop.UnbindingRate, dt) {
		h.Detach()
		return
	}
	h.advance(dt, 0)
}

// StepLoaded evaluates force-accelerated (Kramers) detachment given
// the force vector the mediated link currently exerts on this Hand,
// then advances a LinearMotor hand at its load-dependent velocity.
// Detachment probability is spec.md §4.7's
// p = 1 − exp(−dt·unbinding_rate·exp(|F|/unbinding_force)), clipped to
// [0,1] by rnd.Context.FiresWithin's own Expm1-based formula.
func (h *Hand) StepLoaded(rng *rnd.Context, dt float64, force []float64) {
	if !h.Attached() {
		return
	}
	mag := vecNorm(force)
	rate := h.prop.UnbindingRate
	if !math.IsInf(h.prop.UnbindingForce, 1) && h.prop.UnbindingForce != 0 {
		rate *= math.Exp(mag / h.prop.UnbindingForce)
	}
	if rng.FiresWithin(rate, dt) {
		h.Detach()
		return
	}
	h.advance(dt, h.axialForce(force))
}

// axialForce projects force onto the fiber's tangent at the binding
// site, signed so a positive value opposes motion toward the plus
// end — the load term LinearMotor's force-velocity law consumes.
func (h *Hand) axialForce(force []float64) float64 {
	dir := h.DirFiber()
	var s float64
	for i := range dir {
		s += dir[i] * force[i]
	}
	return -s
}

// advance moves a LinearMotor hand along its fiber by
// UnloadedSpeed*(1 - axialForce/StallForce)*dt, clamped at both fiber
// ends (spec.md §4.7: "clamped at fiber ends"); a no-op for NonMotor
// hands.
func (h *Hand) advance(dt, axialForce float64) {
	if h.prop.Motor != LinearMotor {
		return
	}
	speed := h.prop.UnloadedSpeed
	if h.prop.StallForce != 0 {
		speed *= 1 - axialForce/h.prop.StallForce
	}
	h.abscissa = clampAbscissa(h.fib, h.abscissa+speed*dt)
}

func vecNorm(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}
